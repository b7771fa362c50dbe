package application

import (
	"context"
	"log"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/theomatrix/PhishPolice/internal/domain"
	"github.com/theomatrix/PhishPolice/internal/domain/detection"
	"github.com/theomatrix/PhishPolice/internal/metrics"
	"github.com/theomatrix/PhishPolice/internal/ports"
)

// summaryFallback replaces the narrated report when the writer failed or
// no writer is configured. The popup always has something to show.
const (
	summaryFallback        = "AI analysis unavailable. Verdict based on security checks only."
	recommendationFallback = "Review the evidence list below"
)

// CollectorBudgets bounds each outbound call independently so one slow
// collector cannot eat the whole analysis window
type CollectorBudgets struct {
	Overall time.Duration // whole analysis, collectors plus summary
	Network time.Duration // TLS probe, CT lookup, RDAP lookup
	Vision  time.Duration
	Summary time.Duration
}

// DefaultBudgets returns the production deadlines
func DefaultBudgets() CollectorBudgets {
	return CollectorBudgets{
		Overall: 35 * time.Second,
		Network: 10 * time.Second,
		Vision:  30 * time.Second,
		Summary: 25 * time.Second,
	}
}

// AnalysisService orchestrates evidence collection and risk scoring for
// one submitted page
type AnalysisService struct {
	tls     ports.CertificateProber
	ct      ports.TransparencyChecker
	rdap    ports.RegistrationChecker
	vision  ports.ScreenshotAnalyzer
	writer  ports.ReportWriter
	budgets CollectorBudgets
}

// NewAnalysisService creates the service with dependency injection
func NewAnalysisService(
	tls ports.CertificateProber,
	ct ports.TransparencyChecker,
	rdap ports.RegistrationChecker,
	vision ports.ScreenshotAnalyzer,
	writer ports.ReportWriter,
	budgets CollectorBudgets,
) *AnalysisService {
	return &AnalysisService{
		tls:     tls,
		ct:      ct,
		rdap:    rdap,
		vision:  vision,
		writer:  writer,
		budgets: budgets,
	}
}

// Analyze runs the full pipeline for one submitted page
// Degradation strategy:
//   - Network collectors run concurrently, each under its own deadline
//   - A failed collector is logged and contributes whatever partial payload
//     it produced; scoring proceeds on the evidence that did arrive
//   - Only cancellation of the caller's context aborts the analysis
func (s *AnalysisService) Analyze(ctx context.Context, page domain.PageSignals) (*domain.AnalysisReport, error) {
	collectCtx, cancel := context.WithTimeout(ctx, s.budgets.Overall)
	defer cancel()

	hostname := domain.NormalizeHostname(page.Hostname)
	log.Printf("Analyzing %s (%d forms, %d patterns)", hostname, len(page.Forms), len(page.SuspiciousPatterns))

	var (
		tlsInfo domain.TLSInfo
		ctInfo  domain.CTInfo
		ageInfo domain.DomainAgeInfo
		visual  domain.VisualInfo
	)
	var wg sync.WaitGroup
	wg.Add(4)
	go func() { defer wg.Done(); tlsInfo = s.probeTLS(collectCtx, page.URL) }()
	go func() { defer wg.Done(); ctInfo = s.lookupCT(collectCtx, hostname) }()
	go func() { defer wg.Done(); ageInfo = s.lookupAge(collectCtx, hostname) }()
	go func() { defer wg.Done(); visual = s.analyzeScreenshot(collectCtx, hostname, page.Screenshot) }()
	wg.Wait()

	bundle := detection.Bundle{
		Hostname: hostname,
		TLS:      tlsInfo,
		Domain:   detection.InspectHostname(hostname),
		CT:       ctInfo,
		Age:      ageInfo,
		Visual:   visual,
		Forms:    page.Forms,
		Patterns: page.SuspiciousPatterns,
		DOM:      deriveDOMAnalysis(page),
	}
	result := detection.Analyze(bundle)

	llm := s.summarize(collectCtx, domain.SummaryInput{
		URL:       page.URL,
		Hostname:  hostname,
		Typosquat: result.Typosquat,
		TLS:       bundle.TLS,
		Domain:    bundle.Domain,
		Age:       bundle.Age,
		Forms:     page.Forms,
		Patterns:  page.SuspiciousPatterns,
		DOM:       bundle.DOM,
	})

	report := &domain.AnalysisReport{
		ScanID:     uuid.New().String(),
		Verdict:    result.Score.Verdict,
		Score:      result.Score.Value,
		Evidence:   domain.EvidenceTexts(result.Evidence),
		SSLInfo:    domain.SummarizeTLS(bundle.TLS),
		DomainInfo: domain.SummarizeDomain(bundle.Domain, result.Typosquat, bundle.Age),
		CTInfo:     domain.SummarizeCT(bundle.CT),
		VisualInfo: domain.SummarizeVisual(bundle.Visual),
		LLM:        llm,
	}

	if report.Verdict == domain.VerdictPhish {
		log.Printf("🚨 PHISHING DETECTED:")
		log.Printf("  Hostname: %s", hostname)
		log.Printf("  Risk Score: %.2f", report.Score)
		if result.Typosquat.IsTyposquat {
			log.Printf("  Mimics: %s (%d%% similarity, %s)",
				result.Typosquat.SuspectedBrand, result.Typosquat.SimilarityScore, result.Typosquat.Technique)
		}
		for _, text := range report.Evidence {
			log.Printf("    - %s", text)
		}
	} else {
		log.Printf("Verdict for %s: %s (score %.2f)", hostname, report.Verdict, report.Score)
	}
	metrics.AnalysesTotal.WithLabelValues(string(report.Verdict)).Inc()

	// A degraded report is still a report; only the caller going away makes
	// it undeliverable
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return report, nil
}

func (s *AnalysisService) probeTLS(ctx context.Context, rawURL string) domain.TLSInfo {
	ctx, cancel := context.WithTimeout(ctx, s.budgets.Network)
	defer cancel()

	start := time.Now()
	info, err := s.tls.Probe(ctx, rawURL)
	metrics.CollectorDuration.WithLabelValues("tls_probe").Observe(time.Since(start).Seconds())
	if err != nil {
		metrics.CollectorFailures.WithLabelValues("tls_probe").Inc()
		log.Printf("TLS probe failed for %s: %v", rawURL, err)
	}
	return info
}

func (s *AnalysisService) lookupCT(ctx context.Context, hostname string) domain.CTInfo {
	ctx, cancel := context.WithTimeout(ctx, s.budgets.Network)
	defer cancel()

	start := time.Now()
	info, err := s.ct.Lookup(ctx, hostname)
	metrics.CollectorDuration.WithLabelValues("ct_log").Observe(time.Since(start).Seconds())
	if err != nil {
		metrics.CollectorFailures.WithLabelValues("ct_log").Inc()
		log.Printf("CT lookup failed for %s: %v", hostname, err)
	}
	return info
}

func (s *AnalysisService) lookupAge(ctx context.Context, hostname string) domain.DomainAgeInfo {
	ctx, cancel := context.WithTimeout(ctx, s.budgets.Network)
	defer cancel()

	start := time.Now()
	info, err := s.rdap.Age(ctx, hostname)
	metrics.CollectorDuration.WithLabelValues("rdap").Observe(time.Since(start).Seconds())
	if err != nil {
		metrics.CollectorFailures.WithLabelValues("rdap").Inc()
		log.Printf("Domain age lookup failed for %s: %v", hostname, err)
	}
	return info
}

func (s *AnalysisService) analyzeScreenshot(ctx context.Context, hostname, imageB64 string) domain.VisualInfo {
	ctx, cancel := context.WithTimeout(ctx, s.budgets.Vision)
	defer cancel()

	start := time.Now()
	info, err := s.vision.AnalyzeScreenshot(ctx, hostname, imageB64)
	metrics.CollectorDuration.WithLabelValues("vision").Observe(time.Since(start).Seconds())
	if err != nil {
		metrics.CollectorFailures.WithLabelValues("vision").Inc()
		log.Printf("Visual analysis failed for %s: %v", hostname, err)
	}
	return info
}

func (s *AnalysisService) summarize(ctx context.Context, in domain.SummaryInput) domain.LLMAnalysis {
	ctx, cancel := context.WithTimeout(ctx, s.budgets.Summary)
	defer cancel()

	start := time.Now()
	analysis, err := s.writer.Summarize(ctx, in)
	metrics.CollectorDuration.WithLabelValues("summary").Observe(time.Since(start).Seconds())
	if err != nil {
		metrics.CollectorFailures.WithLabelValues("summary").Inc()
		log.Printf("Summary generation failed for %s: %v", in.Hostname, err)
	}
	if analysis.Summary == "" {
		analysis.Summary = summaryFallback
		if analysis.Recommendation == "" {
			analysis.Recommendation = recommendationFallback
		}
	}
	return analysis
}

// deriveDOMAnalysis distills the raw client-side capture into the numbers
// the engine consumes. Hidden iframes arrive encoded as pattern strings,
// not as a dedicated field.
func deriveDOMAnalysis(page domain.PageSignals) domain.DOMAnalysis {
	d := domain.DOMAnalysis{
		SignatureLength: len(page.DOMSignature),
		ExternalLinks:   page.ExternalLinks.External,
		TotalLinks:      page.ExternalLinks.Total,
	}
	total := d.TotalLinks
	if total < 1 {
		total = 1
	}
	d.ExternalLinkRatio = float64(d.ExternalLinks) / float64(total)

	for _, pattern := range page.SuspiciousPatterns {
		if strings.Contains(strings.ToLower(pattern), "hidden_iframe") {
			d.HiddenIframes++
		}
	}
	return d
}
