package detection

import (
	"strings"

	"github.com/theomatrix/PhishPolice/internal/domain"
)

// suspiciousSubdomainKeywords flag hosts that dress a throwaway domain up
// as an account or security page. Evidence only: the keyword itself carries
// no score weight.
var suspiciousSubdomainKeywords = []string{
	"secure", "login", "signin", "account", "verify", "update", "confirm",
	"banking", "paypal", "amazon", "google", "microsoft", "apple",
	"netflix", "facebook", "instagram", "support", "help",
}

// suspiciousTLDs are zones where free or near-free registration keeps
// phishing campaign costs at zero
var suspiciousTLDs = []string{
	"tk", "ml", "ga", "cf", "gq", "xyz", "top", "work", "click", "link",
	"buzz", "online", "site", "website", "space", "fun",
}

// InspectHostname derives the local, network-free domain heuristics
func InspectHostname(hostname string) domain.DomainInfo {
	parts := domain.SplitHost(hostname)
	info := domain.DomainInfo{
		Hostname:    parts.Hostname,
		Domain:      parts.Label,
		Subdomain:   parts.Subdomain,
		Suffix:      parts.Suffix,
		Registrable: parts.Registrable,
		IsIPAddress: parts.IsIP,
	}
	if info.IsIPAddress || info.Hostname == "" {
		return info
	}

	if info.Subdomain != "" {
		info.HasSuspiciousSubdomain = containsAny(strings.ToLower(info.Subdomain), suspiciousSubdomainKeywords)
		info.SubdomainCount = strings.Count(info.Subdomain, ".") + 1
		info.HasManySubdomains = info.SubdomainCount > 2
	}

	for _, tld := range suspiciousTLDs {
		if info.Suffix == tld {
			info.HasSuspiciousTLD = true
			break
		}
	}

	return info
}
