package collectors

import (
	"context"

	"github.com/theomatrix/PhishPolice/internal/domain"
)

// NoopAnalyzer stands in for the Gemini adapters when no API key is
// configured. Payloads come back unanalyzed, so the engine simply scores
// without visual or prose input.
type NoopAnalyzer struct{}

func (NoopAnalyzer) AnalyzeScreenshot(_ context.Context, _, _ string) (domain.VisualInfo, error) {
	return domain.VisualInfo{}, nil
}

func (NoopAnalyzer) Summarize(_ context.Context, _ domain.SummaryInput) (domain.LLMAnalysis, error) {
	return domain.LLMAnalysis{}, nil
}
