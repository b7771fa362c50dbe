package domain

import (
	"net"
	"strings"

	"golang.org/x/net/idna"
	"golang.org/x/net/publicsuffix"
)

// HostParts is a hostname decomposed around its public suffix
type HostParts struct {
	Hostname    string // normalized input
	Label       string // label immediately left of the public suffix
	Subdomain   string // labels left of Label, dot-joined
	Suffix      string // public suffix, e.g. "com" or "co.uk"
	Registrable string // eTLD+1
	IsIP        bool
}

// NormalizeHostname lowercases, trims whitespace and the trailing dot, and
// converts internationalized hostnames to their ASCII (punycode) form.
// Inputs the IDNA profile rejects fall back to the plain lowercased string.
func NormalizeHostname(hostname string) string {
	h := strings.ToLower(strings.TrimSpace(hostname))
	h = strings.TrimSuffix(h, ".")
	if ascii, err := idna.Lookup.ToASCII(h); err == nil && ascii != "" {
		h = ascii
	}
	return h
}

// SplitHost decomposes a hostname using the public suffix list. It is a
// total function: IP literals, single labels, bare suffixes and garbage all
// return a partial result instead of an error.
func SplitHost(hostname string) HostParts {
	h := NormalizeHostname(hostname)
	parts := HostParts{Hostname: h}
	if h == "" {
		return parts
	}

	if ip := net.ParseIP(strings.Trim(h, "[]")); ip != nil {
		parts.IsIP = true
		return parts
	}

	suffix, _ := publicsuffix.PublicSuffix(h)
	if suffix == "" || suffix == h {
		// Single label or a bare public suffix: nothing registrable
		return parts
	}

	registrable, err := publicsuffix.EffectiveTLDPlusOne(h)
	if err != nil {
		// The suffix list could not help; fall back to a naive split
		labels := strings.Split(h, ".")
		if len(labels) < 2 {
			return parts
		}
		parts.Suffix = labels[len(labels)-1]
		parts.Label = labels[len(labels)-2]
		parts.Subdomain = strings.Join(labels[:len(labels)-2], ".")
		parts.Registrable = parts.Label + "." + parts.Suffix
		return parts
	}

	parts.Registrable = registrable
	parts.Suffix = suffix
	parts.Label = strings.TrimSuffix(registrable, "."+suffix)
	if h != registrable {
		parts.Subdomain = strings.TrimSuffix(h, "."+registrable)
	}
	return parts
}
