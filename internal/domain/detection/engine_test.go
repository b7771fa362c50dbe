package detection

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/theomatrix/PhishPolice/internal/domain"
)

func TestAnalyze_PhishingScenario(t *testing.T) {
	// Freshly registered free-TLD host with a brand embedded in the label,
	// no TLS, no CT history, and a credential form posting off-domain.
	bundle := Bundle{
		Hostname: "secure-login.paypal-verify.tk",
		TLS: domain.TLSInfo{
			Checked:          true,
			PlainHTTP:        true,
			CertificateError: "Not using HTTPS",
			SecurityScore:    20,
		},
		Domain: InspectHostname("secure-login.paypal-verify.tk"),
		CT:     domain.CTInfo{Checked: true, Warning: domain.CTWarnNoCerts},
		Age:    domain.DomainAgeInfo{Checked: true, AgeDays: intPtr(3), AgeCategory: domain.AgeVeryNew},
		Forms:  []domain.FormInfo{{HasPassword: true, SubmitsToDifferentDomain: true}},
	}

	result := Analyze(bundle)

	assert.True(t, result.Typosquat.IsTyposquat, "Should flag the embedded brand")
	assert.Equal(t, "paypal", result.Typosquat.SuspectedBrand)
	assert.Equal(t, 100, result.Typosquat.SimilarityScore)

	// 0.35 typosquat + 0.16 TLS + 0.04 TLD + 0.10 CT + 0.20 age + 0.14 forms
	assert.InDelta(t, 0.99, result.Score.Value, 0.0001, "Risk score mismatch")
	assert.Equal(t, domain.VerdictPhish, result.Score.Verdict, "Verdict mismatch")

	texts := entryTexts(result.Evidence)
	assert.Equal(t, "🚨 TYPOSQUAT: Mimics 'paypal' (100% match)", texts[0], "Typosquat must lead the evidence")
	assert.Equal(t, "🚨 NEW DOMAIN: Registered only 3 days ago!", texts[1], "Fresh registration comes second")
	assert.Contains(t, texts, "⚠️ Site uses HTTP (unencrypted) - not HTTPS")
	assert.Contains(t, texts, "⚠️ Suspicious subdomain: secure-login")
	assert.Contains(t, texts, "⚠️ High-risk TLD: .tk")
	assert.NotContains(t, texts, "✓ No brand impersonation detected")
}

func TestAnalyze_SafeScenario(t *testing.T) {
	bundle := Bundle{
		Hostname: "paypal.com",
		TLS: domain.TLSInfo{
			Checked:       true,
			HasSSL:        true,
			IsValid:       true,
			Issuer:        "DigiCert Inc",
			ExpiresInDays: intPtr(200),
			SecurityScore: 85,
		},
		Domain: InspectHostname("paypal.com"),
		CT:     domain.CTInfo{Checked: true, CertsFound: 40, IssuerCount: 2},
		Age:    domain.DomainAgeInfo{Checked: true, AgeDays: intPtr(9000), AgeCategory: domain.AgeMature},
	}

	result := Analyze(bundle)

	assert.False(t, result.Typosquat.IsTyposquat, "The real domain must never be flagged")
	assert.InDelta(t, 0.0, result.Score.Value, 0.0001, "Nothing should contribute risk")
	assert.Equal(t, domain.VerdictSafe, result.Score.Verdict)

	assert.Equal(t, []string{
		"✓ Established domain: 24+ years old",
		"✅ Valid SSL (200 days remaining) | Issuer: DigiCert Inc",
		"✓ No brand impersonation detected",
	}, entryTexts(result.Evidence), "Evidence mismatch")
}

func TestAnalyze_Deterministic(t *testing.T) {
	bundle := Bundle{
		Hostname: "g00gle.com",
		TLS:      domain.TLSInfo{Checked: true, SecurityScore: 20},
		Domain:   InspectHostname("g00gle.com"),
		Age:      domain.DomainAgeInfo{Checked: true, AgeDays: intPtr(14)},
	}

	first := Analyze(bundle)
	second := Analyze(bundle)

	assert.Equal(t, first, second, "Same bundle must produce identical results")
}

func TestCollectSignals_FixedCategoryOrder(t *testing.T) {
	bundle := Bundle{
		TLS:      domain.TLSInfo{Checked: true, SecurityScore: 20},
		Domain:   domain.DomainInfo{HasSuspiciousTLD: true, Suffix: "xyz"},
		CT:       domain.CTInfo{Checked: true, Warning: domain.CTWarnReissuance},
		Age:      domain.DomainAgeInfo{Checked: true, AgeDays: intPtr(45)},
		Visual:   domain.VisualInfo{Analyzed: true, IsLoginPage: true},
		Forms:    []domain.FormInfo{{HasPassword: true}},
		Patterns: []string{"urgency_banner"},
		DOM:      domain.DOMAnalysis{HiddenIframes: 1},
	}

	signals := CollectSignals(bundle)

	categories := make([]domain.SignalCategory, 0, len(signals))
	for _, s := range signals {
		categories = append(categories, s.Category)
	}
	assert.Equal(t, []domain.SignalCategory{
		domain.CategoryTLS,
		domain.CategoryTLS,
		domain.CategoryDomain,
		domain.CategoryCertTransparency,
		domain.CategoryDomainAge,
		domain.CategoryVisual,
		domain.CategoryForm,
		domain.CategoryDOMBehavior,
		domain.CategoryDOMBehavior,
	}, categories, "Normalization order must be fixed")
}
