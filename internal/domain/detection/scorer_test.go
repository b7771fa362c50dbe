package detection

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/theomatrix/PhishPolice/internal/domain"
)

func TestScore(t *testing.T) {
	tests := []struct {
		name            string
		signals         []domain.CanonicalSignal
		typosquat       domain.TyposquatResult
		expectedScore   float64
		expectedVerdict domain.Verdict
	}{
		{
			name:            "No signals - zero score",
			expectedScore:   0.0,
			expectedVerdict: domain.VerdictSafe,
		},
		{
			name:            "Typosquat base alone",
			typosquat:       domain.TyposquatResult{IsTyposquat: true},
			expectedScore:   0.35,
			expectedVerdict: domain.VerdictSuspicious,
		},
		{
			name: "Flags and tier land exactly on the category ceiling",
			signals: []domain.CanonicalSignal{
				signal(domain.CategoryTLS, 0.05, capTLSFlags, "self-signed certificate"),
				signal(domain.CategoryTLS, 0.05, capTLSFlags, "expired certificate"),
				signal(domain.CategoryTLS, 0.10, capTLSTier, "weak TLS posture"),
			},
			expectedScore:   0.20,
			expectedVerdict: domain.VerdictSafe,
		},
		{
			name: "Extra flags cannot push TLS past its ceiling",
			signals: []domain.CanonicalSignal{
				signal(domain.CategoryTLS, 0.06, capTLSFlags, "invalid TLS certificate"),
				signal(domain.CategoryTLS, 0.05, capTLSFlags, "self-signed certificate"),
				signal(domain.CategoryTLS, 0.05, capTLSFlags, "expired certificate"),
				signal(domain.CategoryTLS, 0.10, capTLSTier, "weak TLS posture"),
			},
			expectedScore:   0.20, // flags clip at 0.12, tier adds 0.10, ceiling clips at 0.20
			expectedVerdict: domain.VerdictSafe,
		},
		{
			name: "Visual stack clips at the aggregate ceiling",
			signals: []domain.CanonicalSignal{
				signal(domain.CategoryVisual, 0.15, capVisual, "branding detected"),
				signal(domain.CategoryVisual, 0.05, capVisual, "login page layout"),
				signal(domain.CategoryVisual, 0.08, capVisual, "urgency cues"),
			},
			expectedScore:   0.20, // 0.28 raw, 0.25 local cap, 0.20 ceiling
			expectedVerdict: domain.VerdictSafe,
		},
		{
			name: "Categories accumulate independently",
			signals: []domain.CanonicalSignal{
				signal(domain.CategoryTLS, 0.10, capTLSTier, "weak TLS posture"),
				signal(domain.CategoryDomainAge, 0.20, capDomainAge, "registered 3 days ago"),
			},
			expectedScore:   0.30,
			expectedVerdict: domain.VerdictSuspicious,
		},
		{
			name: "Just under the suspicious threshold",
			signals: []domain.CanonicalSignal{
				signal(domain.CategoryDomainAge, 0.15, capDomainAge, "registered 10 days ago"),
				signal(domain.CategoryForm, 0.06, capForm, "password form"),
				signal(domain.CategoryForm, 0.03, capForm, "multiple password forms"),
			},
			expectedScore:   0.24,
			expectedVerdict: domain.VerdictSafe,
		},
		{
			name: "Suspicious verdict exactly at the threshold",
			signals: []domain.CanonicalSignal{
				signal(domain.CategoryDomainAge, 0.15, capDomainAge, "registered 10 days ago"),
				signal(domain.CategoryCertTransparency, 0.10, capCT, "no certificates in logs"),
			},
			expectedScore:   0.25,
			expectedVerdict: domain.VerdictSuspicious,
		},
		{
			name: "Just under the phish threshold",
			signals: []domain.CanonicalSignal{
				signal(domain.CategoryForm, 0.06, capForm, "password form"),
				signal(domain.CategoryForm, 0.03, capForm, "multiple password forms"),
				signal(domain.CategoryForm, 0.08, capForm, "cross-domain submission"),
				signal(domain.CategoryTLS, 0.02, capTLSTier, "middling TLS posture"),
			},
			typosquat:       domain.TyposquatResult{IsTyposquat: true},
			expectedScore:   0.54,
			expectedVerdict: domain.VerdictSuspicious,
		},
		{
			name: "Phish verdict exactly at the threshold",
			signals: []domain.CanonicalSignal{
				signal(domain.CategoryDomainAge, 0.20, capDomainAge, "registered 2 days ago"),
			},
			typosquat:       domain.TyposquatResult{IsTyposquat: true},
			expectedScore:   0.55,
			expectedVerdict: domain.VerdictPhish,
		},
		{
			name: "Saturated bundle clamps at the score ceiling",
			signals: []domain.CanonicalSignal{
				signal(domain.CategoryTLS, 1, 1, "saturated"),
				signal(domain.CategoryDomain, 1, 1, "saturated"),
				signal(domain.CategoryCertTransparency, 1, 1, "saturated"),
				signal(domain.CategoryDomainAge, 1, 1, "saturated"),
				signal(domain.CategoryVisual, 1, 1, "saturated"),
				signal(domain.CategoryForm, 1, 1, "saturated"),
				signal(domain.CategoryDOMBehavior, 1, 1, "saturated"),
			},
			typosquat:       domain.TyposquatResult{IsTyposquat: true},
			expectedScore:   0.99, // ceilings sum to 1.08, base adds 0.35, clamped
			expectedVerdict: domain.VerdictPhish,
		},
		{
			name: "Half a cent rounds up",
			signals: []domain.CanonicalSignal{
				signal(domain.CategoryDOMBehavior, 0.125, capDOM, "synthetic"),
			},
			expectedScore:   0.13,
			expectedVerdict: domain.VerdictSafe,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			score := Score(tt.signals, tt.typosquat)

			assert.InDelta(t, tt.expectedScore, score.Value, 0.0001, "Risk score mismatch")
			assert.Equal(t, tt.expectedVerdict, score.Verdict, "Verdict mismatch")
		})
	}
}

func TestScore_OrderIndependent(t *testing.T) {
	signals := []domain.CanonicalSignal{
		signal(domain.CategoryTLS, 0.06, capTLSFlags, "no TLS certificate"),
		signal(domain.CategoryTLS, 0.10, capTLSTier, "weak TLS posture"),
		signal(domain.CategoryDomainAge, 0.15, capDomainAge, "registered 10 days ago"),
		signal(domain.CategoryForm, 0.08, capForm, "cross-domain submission"),
	}
	reversed := make([]domain.CanonicalSignal, len(signals))
	for i, s := range signals {
		reversed[len(signals)-1-i] = s
	}

	forward := Score(signals, domain.TyposquatResult{})
	backward := Score(reversed, domain.TyposquatResult{})

	assert.Equal(t, forward.Value, backward.Value, "Signal order must not change the score")
	assert.Equal(t, forward.Verdict, backward.Verdict)
}

func TestScore_AddingSignalsNeverLowersScore(t *testing.T) {
	base := []domain.CanonicalSignal{
		signal(domain.CategoryDomainAge, 0.15, capDomainAge, "registered 10 days ago"),
	}
	grown := append(append([]domain.CanonicalSignal{}, base...),
		signal(domain.CategoryCertTransparency, 0.10, capCT, "no certificates in logs"),
		signal(domain.CategoryDomain, 0.04, capDomain, "high-risk TLD"),
	)

	baseScore := Score(base, domain.TyposquatResult{})
	grownScore := Score(grown, domain.TyposquatResult{})

	assert.GreaterOrEqual(t, grownScore.Value, baseScore.Value, "More signals must never lower the score")
}
