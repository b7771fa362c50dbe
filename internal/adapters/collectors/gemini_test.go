package collectors

import (
	"context"
	"encoding/base64"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/theomatrix/PhishPolice/internal/domain"
)

func TestParseVisionResponse(t *testing.T) {
	raw := `BRAND: PayPal
CONFIDENCE: 92
IS_LOGIN: yes
HAS_URGENCY: no
RISK: Critical
FINDINGS: Fake padlock icon; Blurred logo; none
SUMMARY: The page imitates the PayPal sign-in screen.`

	info := parseVisionResponse(raw)

	assert.True(t, info.Analyzed)
	assert.Equal(t, "PayPal", info.DetectedBrand)
	assert.Equal(t, 92, info.BrandConfidence)
	assert.True(t, info.IsLoginPage)
	assert.False(t, info.HasUrgency)
	assert.Equal(t, 0.6, info.RiskRating)
	assert.Equal(t, []string{"Fake padlock icon", "Blurred logo"}, info.Findings, "The none entry is dropped")
	assert.Equal(t, "The page imitates the PayPal sign-in screen.", info.Summary)
}

func TestParseVisionResponse_NoBrand(t *testing.T) {
	raw := `BRAND: none
CONFIDENCE: 0
IS_LOGIN: no
HAS_URGENCY: no
RISK: Low
FINDINGS: none
SUMMARY: Ordinary content page.`

	info := parseVisionResponse(raw)

	assert.True(t, info.Analyzed)
	assert.Empty(t, info.DetectedBrand)
	assert.Empty(t, info.Findings)
	assert.Equal(t, 0.1, info.RiskRating)
}

func TestParseVisionResponse_Malformed(t *testing.T) {
	info := parseVisionResponse("I am unable to analyze this image.")

	assert.True(t, info.Analyzed)
	assert.Empty(t, info.DetectedBrand)
	assert.Zero(t, info.BrandConfidence)
	assert.False(t, info.IsLoginPage)
	assert.False(t, info.HasUrgency)
	assert.Zero(t, info.RiskRating)
}

func TestParseVisionResponse_ConfidenceWithSuffix(t *testing.T) {
	info := parseVisionResponse("CONFIDENCE: 87% (approximately)")

	assert.Equal(t, 87, info.BrandConfidence, "Digits are read even with trailing text")
}

func TestRiskRating(t *testing.T) {
	tests := []struct {
		raw      string
		expected float64
	}{
		{" Low", 0.1},
		{" Medium", 0.25},
		{" high", 0.4},
		{" CRITICAL", 0.6},
		{" somewhat risky", 0.1},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.expected, riskRating(tt.raw), "Rating mismatch for %q", tt.raw)
	}
}

func TestFirstInt(t *testing.T) {
	tests := []struct {
		raw      string
		expected int
	}{
		{" 92", 92},
		{" 87% match", 87},
		{"about 60 or so", 60},
		{"none", 0},
		{" 400", 100},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.expected, firstInt(tt.raw), "Extraction mismatch for %q", tt.raw)
	}
}

func TestParseSummaryResponse(t *testing.T) {
	raw := `SUMMARY: This site impersonates PayPal and was registered three days ago.
RISK_FACTORS: Brand impersonation; Fresh registration; None identified
RECOMMENDATION: Do not enter credentials on this page.`

	analysis := parseSummaryResponse(raw)

	assert.Equal(t, "This site impersonates PayPal and was registered three days ago.", analysis.Summary)
	assert.Equal(t, []string{"Brand impersonation", "Fresh registration"}, analysis.RiskFactors)
	assert.Equal(t, "Do not enter credentials on this page.", analysis.Recommendation)
}

func TestParseSummaryResponse_Fallback(t *testing.T) {
	raw := strings.Repeat("The model rambled instead of following the format. ", 10)

	analysis := parseSummaryResponse(raw)

	assert.Len(t, analysis.Summary, 150, "Fallback truncates the raw reply")
	assert.Empty(t, analysis.RiskFactors)
	assert.Empty(t, analysis.Recommendation)
}

func TestDecodeScreenshot(t *testing.T) {
	payload := base64.StdEncoding.EncodeToString([]byte("fake image bytes"))

	t.Run("Raw base64 defaults to png", func(t *testing.T) {
		data, mime, err := decodeScreenshot(payload)

		assert.NoError(t, err)
		assert.Equal(t, []byte("fake image bytes"), data)
		assert.Equal(t, "image/png", mime)
	})

	t.Run("Data URL carries its own mime type", func(t *testing.T) {
		data, mime, err := decodeScreenshot("data:image/jpeg;base64," + payload)

		assert.NoError(t, err)
		assert.Equal(t, []byte("fake image bytes"), data)
		assert.Equal(t, "image/jpeg", mime)
	})

	t.Run("Data URL without payload fails", func(t *testing.T) {
		_, _, err := decodeScreenshot("data:image/png;base64")

		assert.Error(t, err)
	})

	t.Run("Invalid base64 fails", func(t *testing.T) {
		_, _, err := decodeScreenshot("!!! definitely not base64 !!!")

		assert.Error(t, err)
	})
}

func TestAnalyzeScreenshot_SkipsTinyPayloads(t *testing.T) {
	analyzer := &GeminiAnalyzer{model: "gemini-2.5-flash-lite"}

	info, err := analyzer.AnalyzeScreenshot(context.Background(), "example.com", "tiny")

	assert.NoError(t, err)
	assert.False(t, info.Analyzed, "Nothing useful fits in a sub-100-char payload")
}

func TestNoopAnalyzer(t *testing.T) {
	var noop NoopAnalyzer

	visual, err := noop.AnalyzeScreenshot(context.Background(), "example.com", "ignored")
	assert.NoError(t, err)
	assert.False(t, visual.Analyzed)

	analysis, err := noop.Summarize(context.Background(), domain.SummaryInput{Hostname: "example.com"})
	assert.NoError(t, err)
	assert.Empty(t, analysis.Summary)
}
