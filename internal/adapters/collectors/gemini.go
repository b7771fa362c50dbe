package collectors

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"google.golang.org/genai"

	"github.com/theomatrix/PhishPolice/internal/domain"
	"github.com/theomatrix/PhishPolice/internal/domain/detection"
)

const (
	visionMaxTokens  = 400
	summaryMaxTokens = 300

	summaryMaxRetries  = 2
	summaryBackoffStep = 3 * time.Second
)

// GeminiAnalyzer implements ports.ScreenshotAnalyzer and ports.ReportWriter
// on the Gemini API
type GeminiAnalyzer struct {
	client *genai.Client
	model  string
}

// NewGeminiAnalyzer creates an analyzer bound to one model
func NewGeminiAnalyzer(ctx context.Context, apiKey, model string) (*GeminiAnalyzer, error) {
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("creating gemini client: %w", err)
	}
	return &GeminiAnalyzer{client: client, model: model}, nil
}

// AnalyzeScreenshot asks the vision model what the page is visually
// pretending to be. Tiny payloads are skipped: they cannot hold a real
// screenshot and burn quota for nothing.
func (g *GeminiAnalyzer) AnalyzeScreenshot(ctx context.Context, hostname, imageB64 string) (domain.VisualInfo, error) {
	if len(imageB64) < 100 {
		return domain.VisualInfo{}, nil
	}

	data, mime, err := decodeScreenshot(imageB64)
	if err != nil {
		return domain.VisualInfo{Error: err.Error()}, err
	}

	contents := []*genai.Content{
		genai.NewContentFromParts([]*genai.Part{
			genai.NewPartFromText(visionPrompt(hostname)),
			genai.NewPartFromBytes(data, mime),
		}, genai.RoleUser),
	}
	config := &genai.GenerateContentConfig{
		Temperature:     genai.Ptr[float32](0.1),
		TopP:            genai.Ptr[float32](0.8),
		MaxOutputTokens: visionMaxTokens,
	}

	resp, err := g.client.Models.GenerateContent(ctx, g.model, contents, config)
	if err != nil {
		return domain.VisualInfo{Error: err.Error()}, err
	}

	info := parseVisionResponse(resp.Text())
	if info.DetectedBrand != "" {
		if canonical, ok := detection.CanonicalBrand(info.DetectedBrand); ok {
			info.CanonicalBrand = canonical
		}
	}
	return info, nil
}

// Summarize renders the collected findings as a short report for the badge
// popup. Rate-limited calls are retried twice with a linear backoff; every
// other failure surfaces immediately.
func (g *GeminiAnalyzer) Summarize(ctx context.Context, in domain.SummaryInput) (domain.LLMAnalysis, error) {
	config := &genai.GenerateContentConfig{
		Temperature:     genai.Ptr[float32](0.2),
		TopP:            genai.Ptr[float32](0.8),
		MaxOutputTokens: summaryMaxTokens,
	}
	prompt := genai.Text(summaryPrompt(in))

	var lastErr error
	for attempt := 0; attempt <= summaryMaxRetries; attempt++ {
		if attempt > 0 {
			select {
			case <-ctx.Done():
				return domain.LLMAnalysis{}, ctx.Err()
			case <-time.After(time.Duration(attempt) * summaryBackoffStep):
			}
		}

		resp, err := g.client.Models.GenerateContent(ctx, g.model, prompt, config)
		if err != nil {
			lastErr = err
			if isRateLimited(err) {
				continue
			}
			return domain.LLMAnalysis{}, err
		}
		return parseSummaryResponse(resp.Text()), nil
	}
	return domain.LLMAnalysis{}, lastErr
}

// isRateLimited reports whether the API rejected the call with HTTP 429
func isRateLimited(err error) bool {
	var apiErr genai.APIError
	return errors.As(err, &apiErr) && apiErr.Code == 429
}

// decodeScreenshot accepts both raw base64 and data-URL screenshots
func decodeScreenshot(imageB64 string) ([]byte, string, error) {
	mime := "image/png"
	payload := imageB64
	if strings.HasPrefix(payload, "data:") {
		header, rest, found := strings.Cut(payload, ",")
		if !found {
			return nil, "", errors.New("malformed data url")
		}
		payload = rest
		header = strings.TrimPrefix(header, "data:")
		if m, _, ok := strings.Cut(header, ";"); ok && m != "" {
			mime = m
		}
	}

	data, err := base64.StdEncoding.DecodeString(payload)
	if err != nil {
		return nil, "", fmt.Errorf("decoding screenshot: %w", err)
	}
	return data, mime, nil
}

func visionPrompt(hostname string) string {
	return fmt.Sprintf(`You are a phishing detection expert. Analyze this screenshot of the website "%s".

Respond with EXACTLY these lines and nothing else:
BRAND: <brand the page visually imitates, or "none">
CONFIDENCE: <0-100>
IS_LOGIN: <yes or no - does the page ask for credentials>
HAS_URGENCY: <yes or no - countdowns, threats, account-locked warnings>
RISK: <Low, Medium, High or Critical>
FINDINGS: <semicolon-separated visual red flags, or "none">
SUMMARY: <one sentence>`, hostname)
}

// parseVisionResponse reads the model's line-oriented reply. It is total:
// missing or malformed lines leave their fields at the zero value.
func parseVisionResponse(raw string) domain.VisualInfo {
	info := domain.VisualInfo{Analyzed: true}

	for _, line := range strings.Split(raw, "\n") {
		line = strings.TrimSpace(line)
		switch {
		case strings.HasPrefix(line, "BRAND:"):
			brand := strings.TrimSpace(strings.TrimPrefix(line, "BRAND:"))
			if !isNoneValue(brand) {
				info.DetectedBrand = brand
			}
		case strings.HasPrefix(line, "CONFIDENCE:"):
			info.BrandConfidence = firstInt(strings.TrimPrefix(line, "CONFIDENCE:"))
		case strings.HasPrefix(line, "IS_LOGIN:"):
			info.IsLoginPage = parseYes(strings.TrimPrefix(line, "IS_LOGIN:"))
		case strings.HasPrefix(line, "HAS_URGENCY:"):
			info.HasUrgency = parseYes(strings.TrimPrefix(line, "HAS_URGENCY:"))
		case strings.HasPrefix(line, "RISK:"):
			info.RiskRating = riskRating(strings.TrimPrefix(line, "RISK:"))
		case strings.HasPrefix(line, "FINDINGS:"):
			for _, finding := range strings.Split(strings.TrimPrefix(line, "FINDINGS:"), ";") {
				finding = strings.TrimSpace(finding)
				if !isNoneValue(finding) {
					info.Findings = append(info.Findings, finding)
				}
			}
		case strings.HasPrefix(line, "SUMMARY:"):
			info.Summary = strings.TrimSpace(strings.TrimPrefix(line, "SUMMARY:"))
		}
	}
	return info
}

func summaryPrompt(in domain.SummaryInput) string {
	var b strings.Builder
	b.WriteString("You are a security analyst. Summarize the phishing risk of a website for a non-technical user.\n\n")
	b.WriteString("Respond with EXACTLY these lines and nothing else:\n")
	b.WriteString("SUMMARY: <at most two sentences>\n")
	b.WriteString("RISK_FACTORS: <semicolon-separated list, or \"none\">\n")
	b.WriteString("RECOMMENDATION: <one short imperative sentence>\n\n")
	b.WriteString("Collected facts:\n")

	fmt.Fprintf(&b, "- URL: %s\n", in.URL)
	fmt.Fprintf(&b, "- Hostname: %s\n", in.Hostname)
	if in.Typosquat.IsTyposquat {
		fmt.Fprintf(&b, "- Typosquatting: imitates '%s' (%d%% match, %s)\n",
			in.Typosquat.SuspectedBrand, in.Typosquat.SimilarityScore, in.Typosquat.Technique)
	}
	if in.TLS.Checked {
		fmt.Fprintf(&b, "- TLS: has_certificate=%t valid=%t security_score=%d\n",
			in.TLS.HasSSL, in.TLS.IsValid, in.TLS.SecurityScore)
	}
	if in.Domain.HasSuspiciousSubdomain {
		fmt.Fprintf(&b, "- Suspicious subdomain: %s\n", in.Domain.Subdomain)
	}
	if in.Domain.HasSuspiciousTLD {
		fmt.Fprintf(&b, "- High-risk TLD: .%s\n", in.Domain.Suffix)
	}
	if in.Age.Checked && in.Age.AgeDays != nil {
		fmt.Fprintf(&b, "- Domain age: %d days (%s)\n", *in.Age.AgeDays, in.Age.AgeCategory)
	}
	passwordForms := 0
	for _, f := range in.Forms {
		if f.HasPassword {
			passwordForms++
		}
	}
	if passwordForms > 0 {
		fmt.Fprintf(&b, "- Password forms on page: %d\n", passwordForms)
	}
	if len(in.Patterns) > 0 {
		fmt.Fprintf(&b, "- Suspicious page patterns: %s\n", strings.Join(in.Patterns, ", "))
	}
	if in.DOM.HiddenIframes > 0 {
		fmt.Fprintf(&b, "- Hidden iframes: %d\n", in.DOM.HiddenIframes)
	}
	return b.String()
}

// parseSummaryResponse reads the line-oriented summary reply, falling back
// to the raw text when the model ignored the format
func parseSummaryResponse(raw string) domain.LLMAnalysis {
	var analysis domain.LLMAnalysis

	for _, line := range strings.Split(raw, "\n") {
		line = strings.TrimSpace(line)
		switch {
		case strings.HasPrefix(line, "SUMMARY:"):
			analysis.Summary = strings.TrimSpace(strings.TrimPrefix(line, "SUMMARY:"))
		case strings.HasPrefix(line, "RISK_FACTORS:"):
			for _, factor := range strings.Split(strings.TrimPrefix(line, "RISK_FACTORS:"), ";") {
				factor = strings.TrimSpace(factor)
				if !isNoneValue(factor) {
					analysis.RiskFactors = append(analysis.RiskFactors, factor)
				}
			}
		case strings.HasPrefix(line, "RECOMMENDATION:"):
			analysis.Recommendation = strings.TrimSpace(strings.TrimPrefix(line, "RECOMMENDATION:"))
		}
	}

	if analysis.Summary == "" {
		fallback := strings.TrimSpace(raw)
		if len(fallback) > 150 {
			fallback = fallback[:150]
		}
		analysis.Summary = fallback
	}
	return analysis
}

// firstInt extracts the first run of digits, clamped to 0-100
func firstInt(raw string) int {
	digits := ""
	for _, r := range raw {
		if r >= '0' && r <= '9' {
			digits += string(r)
		} else if digits != "" {
			break
		}
	}
	n, err := strconv.Atoi(digits)
	if err != nil {
		return 0
	}
	if n > 100 {
		n = 100
	}
	return n
}

func parseYes(raw string) bool {
	return strings.Contains(strings.ToLower(raw), "yes")
}

// riskRating maps the model's qualitative rating onto the passthrough
// weight the popup displays
func riskRating(raw string) float64 {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "critical":
		return 0.6
	case "high":
		return 0.4
	case "medium":
		return 0.25
	}
	return 0.1
}

// isNoneValue recognizes the model's ways of reporting an empty field
func isNoneValue(s string) bool {
	switch strings.ToLower(strings.TrimSpace(strings.TrimRight(s, "."))) {
	case "", "none", "n/a", "unknown", "none identified", "none detected":
		return true
	}
	return false
}
