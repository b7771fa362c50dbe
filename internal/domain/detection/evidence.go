package detection

import (
	"fmt"
	"sort"
	"strings"

	"github.com/theomatrix/PhishPolice/internal/domain"
)

// Evidence priorities. Lower sorts first; the badge popup shows the list
// top to bottom, so typosquat findings must lead and the closing remark
// must trail.
const (
	prioTyposquat = 10
	prioAge       = 20
	prioVisual    = 30
	prioTLS       = 40
	prioCT        = 50
	prioDomain    = 60
	prioForms     = 70
	prioDOM       = 80
	prioClosing   = 90
)

// EvidenceInput carries every payload the formatter reads. Zero-value
// fields are skipped, so callers pass whatever subset they collected.
type EvidenceInput struct {
	Typosquat domain.TyposquatResult
	TLS       domain.TLSInfo
	Domain    domain.DomainInfo
	Age       domain.DomainAgeInfo
	CT        domain.CTInfo
	Visual    domain.VisualInfo
	Forms     []domain.FormInfo
	DOM       domain.DOMAnalysis
}

// BuildEvidence renders human-readable findings, ordered by priority.
// The list is independent of the numeric score: it explains, it does not
// weigh. The closing all-clear remark only appears when nothing negative
// was found anywhere.
func BuildEvidence(in EvidenceInput) []domain.EvidenceEntry {
	var entries []domain.EvidenceEntry
	negatives := 0

	add := func(priority int, text string) {
		entries = append(entries, domain.EvidenceEntry{Text: text, Priority: priority})
	}
	warn := func(priority int, text string) {
		negatives++
		add(priority, text)
	}

	if in.Typosquat.IsTyposquat {
		warn(prioTyposquat, fmt.Sprintf("🚨 TYPOSQUAT: Mimics '%s' (%d%% match)", in.Typosquat.SuspectedBrand, in.Typosquat.SimilarityScore))
	}

	if in.Age.Checked && in.Age.AgeDays != nil {
		age := *in.Age.AgeDays
		switch {
		case age < 30:
			warn(prioAge, fmt.Sprintf("🚨 NEW DOMAIN: Registered only %d days ago!", age))
		case age < 90:
			warn(prioAge, fmt.Sprintf("⚠️ Young domain: Only %d days old", age))
		case age >= 365:
			add(prioAge, fmt.Sprintf("✓ Established domain: %d+ years old", age/365))
		}
	}

	if in.Visual.Analyzed {
		if in.Visual.DetectedBrand != "" {
			warn(prioVisual, fmt.Sprintf("👁️ Visual: Detected %s branding (%d%% match)", in.Visual.DetectedBrand, in.Visual.BrandConfidence))
		}
		if in.Visual.HasUrgency {
			warn(prioVisual, "⚠️ Visual urgency/fear elements detected")
		}
		if in.Visual.IsLoginPage {
			warn(prioVisual, "🔐 Login page detected by visual analysis")
		}
		shown := 0
		for _, finding := range in.Visual.Findings {
			if shown >= 2 {
				break
			}
			if strings.HasPrefix(finding, "Visual") {
				continue
			}
			add(prioVisual, fmt.Sprintf("👁️ %s", finding))
			shown++
		}
	}

	if in.TLS.Checked {
		text, negative := tlsSummary(in.TLS)
		if negative {
			warn(prioTLS, text)
		} else {
			add(prioTLS, text)
		}
	}

	if in.CT.Checked {
		switch in.CT.Warning {
		case domain.CTWarnNoCerts:
			warn(prioCT, "⚠️ No certificates found in transparency logs")
		case domain.CTWarnManyIssuers:
			warn(prioCT, fmt.Sprintf("⚠️ Multiple cert issuers (%d)", len(in.CT.Issuers)))
		case domain.CTWarnReissuance:
			warn(prioCT, fmt.Sprintf("⚠️ Frequent cert reissuance (%d in 30 days)", in.CT.CertsLast30Days))
		}
	}

	if in.Domain.HasSuspiciousSubdomain {
		warn(prioDomain, fmt.Sprintf("⚠️ Suspicious subdomain: %s", in.Domain.Subdomain))
	}
	if in.Domain.HasSuspiciousTLD {
		warn(prioDomain, fmt.Sprintf("⚠️ High-risk TLD: .%s", in.Domain.Suffix))
	}
	if in.Domain.IsIPAddress {
		warn(prioDomain, "⚠️ Uses IP address instead of domain name")
	}

	passwordForms, externalForms := 0, 0
	for _, f := range in.Forms {
		if f.HasPassword {
			passwordForms++
		}
		if f.SubmitsToDifferentDomain {
			externalForms++
		}
	}
	if passwordForms > 0 {
		warn(prioForms, fmt.Sprintf("🔐 %d form(s) collecting passwords", passwordForms))
	}
	if externalForms > 0 {
		warn(prioForms, fmt.Sprintf("⚠️ %d form(s) submitting to external domains", externalForms))
	}

	if in.DOM.HiddenIframes > 0 {
		warn(prioDOM, "⚠️ Hidden iframes detected")
	}

	if !in.Typosquat.IsTyposquat && in.TLS.IsValid && in.Visual.DetectedBrand == "" && negatives == 0 {
		add(prioClosing, "✓ No brand impersonation detected")
	}

	// Emission above already follows priority order; the sort pins the
	// contract down even if a branch is reordered later.
	sort.SliceStable(entries, func(i, j int) bool {
		return entries[i].Priority < entries[j].Priority
	})
	return entries
}

// tlsSummary renders the one-line certificate verdict and reports whether
// it counts as a negative finding.
func tlsSummary(info domain.TLSInfo) (string, bool) {
	if info.PlainHTTP {
		return "⚠️ Site uses HTTP (unencrypted) - not HTTPS", true
	}
	if !info.HasSSL {
		errText := info.CertificateError
		if errText == "" {
			errText = "Unknown error"
		}
		return fmt.Sprintf("❌ No SSL: %s", errText), true
	}
	if !info.IsValid {
		errText := info.CertificateError
		if errText == "" {
			errText = "Certificate validation failed"
		}
		return fmt.Sprintf("❌ Invalid SSL certificate: %s", errText), true
	}

	var parts []string
	negative := false
	switch {
	case info.IsExpired:
		parts = append(parts, "❌ EXPIRED certificate")
		negative = true
	case info.IsExpiringSoon && info.ExpiresInDays != nil:
		parts = append(parts, fmt.Sprintf("⚠️ Expires in %d days", *info.ExpiresInDays))
		negative = true
	case info.ExpiresInDays != nil:
		parts = append(parts, fmt.Sprintf("✅ Valid SSL (%d days remaining)", *info.ExpiresInDays))
	default:
		parts = append(parts, "✅ Valid SSL")
	}

	if info.IsSelfSigned {
		parts = append(parts, "⚠️ Self-signed certificate")
		negative = true
	} else if info.Issuer != "" {
		parts = append(parts, fmt.Sprintf("Issuer: %s", info.Issuer))
	}

	if info.IssuedDaysAgo != nil && *info.IssuedDaysAgo < 30 {
		parts = append(parts, fmt.Sprintf("⚠️ Newly issued (%d days ago)", *info.IssuedDaysAgo))
		negative = true
	}

	return strings.Join(parts, " | "), negative
}
