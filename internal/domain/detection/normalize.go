package detection

import (
	"fmt"
	"math"
	"strings"

	"github.com/theomatrix/PhishPolice/internal/domain"
)

// Local cap groups. Signals sharing a category and cap are summed and
// clipped at the cap before the scorer's category ceiling applies.
const (
	capTLSFlags  = 0.12
	capTLSTier   = 0.10
	capDomain    = 0.08
	capCT        = 0.10
	capDomainAge = 0.20
	capVisual    = 0.25
	capForm      = 0.17
	capDOM       = 0.13
)

// severityFor applies the house rule: double-digit weights are critical,
// anything positive is a warning
func severityFor(weight float64) domain.Severity {
	if weight >= 0.10 {
		return domain.SeverityCritical
	}
	return domain.SeverityWarn
}

// signal is the shared constructor for all normalizers
func signal(category domain.SignalCategory, weight, cap float64, label string) domain.CanonicalSignal {
	return domain.CanonicalSignal{
		Category: category,
		Weight:   weight,
		Cap:      cap,
		Label:    label,
		Severity: severityFor(weight),
	}
}

// NormalizeTLS maps a TLS probe payload onto weighted signals. Flag signals
// share one cap group; the posture tier carries its own, so a weak score
// stacks with at most two flags before the category ceiling cuts in.
// An unchecked payload normalizes to nothing.
func NormalizeTLS(info domain.TLSInfo) []domain.CanonicalSignal {
	if !info.Checked {
		return nil
	}

	var signals []domain.CanonicalSignal
	if !info.HasSSL {
		signals = append(signals, signal(domain.CategoryTLS, 0.06, capTLSFlags, "no TLS certificate"))
	} else if !info.IsValid {
		signals = append(signals, signal(domain.CategoryTLS, 0.06, capTLSFlags, "invalid TLS certificate"))
	}
	if info.IsSelfSigned {
		signals = append(signals, signal(domain.CategoryTLS, 0.05, capTLSFlags, "self-signed certificate"))
	}
	if info.IsExpired {
		signals = append(signals, signal(domain.CategoryTLS, 0.05, capTLSFlags, "expired certificate"))
	}

	switch {
	case info.SecurityScore < 30:
		signals = append(signals, signal(domain.CategoryTLS, 0.10, capTLSTier, fmt.Sprintf("weak TLS posture (score %d)", info.SecurityScore)))
	case info.SecurityScore < 50:
		signals = append(signals, signal(domain.CategoryTLS, 0.05, capTLSTier, fmt.Sprintf("below-average TLS posture (score %d)", info.SecurityScore)))
	case info.SecurityScore < 70:
		signals = append(signals, signal(domain.CategoryTLS, 0.02, capTLSTier, fmt.Sprintf("middling TLS posture (score %d)", info.SecurityScore)))
	}

	return signals
}

// NormalizeDomain maps hostname heuristics onto weighted signals. The
// suspicious-subdomain keyword flag is deliberately weightless: it shows in
// evidence but proves nothing on its own.
func NormalizeDomain(info domain.DomainInfo) []domain.CanonicalSignal {
	var signals []domain.CanonicalSignal
	if info.IsIPAddress {
		signals = append(signals, signal(domain.CategoryDomain, 0.05, capDomain, "IP address instead of a hostname"))
	}
	if info.HasSuspiciousTLD {
		signals = append(signals, signal(domain.CategoryDomain, 0.04, capDomain, fmt.Sprintf("high-risk TLD .%s", info.Suffix)))
	}
	if info.HasManySubdomains {
		signals = append(signals, signal(domain.CategoryDomain, 0.02, capDomain, fmt.Sprintf("%d nested subdomains", info.SubdomainCount)))
	}
	return signals
}

// NormalizeCT maps the transparency lookup onto at most one signal: the
// collector already resolved the mutually exclusive warning states.
func NormalizeCT(info domain.CTInfo) []domain.CanonicalSignal {
	if !info.Checked {
		return nil
	}
	switch info.Warning {
	case domain.CTWarnNoCerts:
		return []domain.CanonicalSignal{signal(domain.CategoryCertTransparency, 0.10, capCT, "no certificates in transparency logs")}
	case domain.CTWarnManyIssuers:
		return []domain.CanonicalSignal{signal(domain.CategoryCertTransparency, 0.08, capCT, "multiple certificate issuers")}
	case domain.CTWarnReissuance:
		return []domain.CanonicalSignal{signal(domain.CategoryCertTransparency, 0.05, capCT, "frequent certificate reissuance")}
	}
	return nil
}

// NormalizeDomainAge maps registration age onto a single stepped signal.
// The day count arrives in the payload; this function never reads a clock.
func NormalizeDomainAge(info domain.DomainAgeInfo) []domain.CanonicalSignal {
	if !info.Checked || info.AgeDays == nil {
		return nil
	}
	age := *info.AgeDays

	var weight float64
	switch {
	case age < 7:
		weight = 0.20
	case age < 30:
		weight = 0.15
	case age < 90:
		weight = 0.10
	case age < 180:
		weight = 0.05
	case age < 365:
		weight = 0.02
	default:
		return nil
	}
	return []domain.CanonicalSignal{signal(domain.CategoryDomainAge, weight, capDomainAge, fmt.Sprintf("domain registered %d days ago", age))}
}

// NormalizeVisual maps screenshot analysis onto weighted signals. The cap
// here is the collector-local ceiling; the scorer applies a tighter
// aggregate ceiling on top.
func NormalizeVisual(info domain.VisualInfo) []domain.CanonicalSignal {
	if !info.Analyzed {
		return nil
	}

	var signals []domain.CanonicalSignal
	if info.DetectedBrand != "" && info.BrandConfidence > 70 {
		signals = append(signals, signal(domain.CategoryVisual, 0.15, capVisual, fmt.Sprintf("%s branding detected (%d%% confidence)", info.DetectedBrand, info.BrandConfidence)))
	}
	if info.IsLoginPage {
		signals = append(signals, signal(domain.CategoryVisual, 0.05, capVisual, "login page layout"))
	}
	if info.HasUrgency {
		signals = append(signals, signal(domain.CategoryVisual, 0.08, capVisual, "urgency or fear cues on screen"))
	}
	return signals
}

// NormalizeForms maps the page's form inventory onto weighted signals
func NormalizeForms(forms []domain.FormInfo) []domain.CanonicalSignal {
	passwordForms, externalForms := 0, 0
	for _, f := range forms {
		if f.HasPassword {
			passwordForms++
		}
		if f.SubmitsToDifferentDomain {
			externalForms++
		}
	}

	var signals []domain.CanonicalSignal
	if passwordForms > 0 {
		signals = append(signals, signal(domain.CategoryForm, 0.06, capForm, fmt.Sprintf("%d password form(s)", passwordForms)))
	}
	if passwordForms > 1 {
		signals = append(signals, signal(domain.CategoryForm, 0.03, capForm, "multiple password forms"))
	}
	if externalForms > 0 {
		signals = append(signals, signal(domain.CategoryForm, 0.08, capForm, fmt.Sprintf("%d form(s) posting to a different domain", externalForms)))
	}
	return signals
}

// NormalizeDOM maps DOM behavior onto weighted signals. Urgency patterns
// stack at 0.02 apiece up to 0.06 so a wall of countdown banners cannot
// dominate the score.
func NormalizeDOM(patterns []string, dom domain.DOMAnalysis) []domain.CanonicalSignal {
	urgency := 0
	for _, p := range patterns {
		if strings.Contains(strings.ToLower(p), "urgency") {
			urgency++
		}
	}

	var signals []domain.CanonicalSignal
	if urgency > 0 {
		weight := math.Min(0.06, 0.02*float64(urgency))
		signals = append(signals, signal(domain.CategoryDOMBehavior, weight, capDOM, fmt.Sprintf("%d urgency pattern(s) in page text", urgency)))
	}
	if dom.HiddenIframes > 0 {
		signals = append(signals, signal(domain.CategoryDOMBehavior, 0.04, capDOM, "hidden iframes present"))
	}
	if dom.ExternalLinkRatio > 0.8 {
		signals = append(signals, signal(domain.CategoryDOMBehavior, 0.03, capDOM, "links point mostly off-domain"))
	}
	return signals
}
