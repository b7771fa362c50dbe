package ports

import (
	"context"

	"github.com/theomatrix/PhishPolice/internal/domain"
)

// CertificateProber defines the contract for live TLS inspection of a page URL
type CertificateProber interface {
	// Probe inspects the certificate presented at rawURL. The returned
	// payload is always usable: on failure it degrades to a scored
	// no-certificate form and the error exists for logging only.
	Probe(ctx context.Context, rawURL string) (domain.TLSInfo, error)
}

// TransparencyChecker defines the contract for certificate transparency lookups
type TransparencyChecker interface {
	// Lookup queries the CT log aggregator for certificates issued to hostname
	Lookup(ctx context.Context, hostname string) (domain.CTInfo, error)
}

// RegistrationChecker defines the contract for domain registration lookups
type RegistrationChecker interface {
	// Age resolves when the registrable domain of hostname was registered
	Age(ctx context.Context, hostname string) (domain.DomainAgeInfo, error)
}

// ScreenshotAnalyzer defines the contract for vision-model page analysis
type ScreenshotAnalyzer interface {
	// AnalyzeScreenshot inspects a base64 page screenshot for brand
	// impersonation, login layouts and pressure tactics
	AnalyzeScreenshot(ctx context.Context, hostname, imageB64 string) (domain.VisualInfo, error)
}

// ReportWriter defines the contract for the prose summary of an analysis
type ReportWriter interface {
	// Summarize turns collected findings into a short human-readable report
	Summarize(ctx context.Context, in domain.SummaryInput) (domain.LLMAnalysis, error)
}
