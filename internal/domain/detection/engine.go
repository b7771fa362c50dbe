package detection

import (
	"github.com/theomatrix/PhishPolice/internal/domain"
)

// Bundle is everything the engine reads for one page: the hostname plus
// whichever collector payloads were gathered. The engine itself performs
// no I/O and reads no clock, so a bundle fully determines the result.
type Bundle struct {
	Hostname string
	TLS      domain.TLSInfo
	Domain   domain.DomainInfo
	CT       domain.CTInfo
	Age      domain.DomainAgeInfo
	Visual   domain.VisualInfo
	Forms    []domain.FormInfo
	Patterns []string
	DOM      domain.DOMAnalysis
}

// Result is the engine's complete output for one bundle
type Result struct {
	Typosquat domain.TyposquatResult
	Signals   []domain.CanonicalSignal
	Score     domain.RiskScore
	Evidence  []domain.EvidenceEntry
}

// CollectSignals normalizes every payload in a fixed category order so
// the signal slice, and therefore the score, is reproducible across runs.
func CollectSignals(b Bundle) []domain.CanonicalSignal {
	var signals []domain.CanonicalSignal
	signals = append(signals, NormalizeTLS(b.TLS)...)
	signals = append(signals, NormalizeDomain(b.Domain)...)
	signals = append(signals, NormalizeCT(b.CT)...)
	signals = append(signals, NormalizeDomainAge(b.Age)...)
	signals = append(signals, NormalizeVisual(b.Visual)...)
	signals = append(signals, NormalizeForms(b.Forms)...)
	signals = append(signals, NormalizeDOM(b.Patterns, b.DOM)...)
	return signals
}

// Analyze runs the full detection pipeline on one bundle: typosquat
// check, signal normalization, scoring, and evidence rendering.
func Analyze(b Bundle) Result {
	typosquat := DetectTyposquat(b.Hostname)
	signals := CollectSignals(b)
	score := Score(signals, typosquat)
	evidence := BuildEvidence(EvidenceInput{
		Typosquat: typosquat,
		TLS:       b.TLS,
		Domain:    b.Domain,
		Age:       b.Age,
		CT:        b.CT,
		Visual:    b.Visual,
		Forms:     b.Forms,
		DOM:       b.DOM,
	})
	return Result{
		Typosquat: typosquat,
		Signals:   signals,
		Score:     score,
		Evidence:  evidence,
	}
}
