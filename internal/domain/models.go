package domain

import "time"

// Verdict is the final classification shown to the user
type Verdict string

const (
	VerdictSafe       Verdict = "safe"
	VerdictSuspicious Verdict = "suspicious"
	VerdictPhish      Verdict = "phish"
)

// VerdictFor converts a risk score to its verdict tier
func VerdictFor(score float64) Verdict {
	switch {
	case score >= 0.55:
		return VerdictPhish
	case score >= 0.25:
		return VerdictSuspicious
	default:
		return VerdictSafe
	}
}

// SignalCategory groups normalized signals by the collector family they
// came from. The scorer caps each category independently.
type SignalCategory string

const (
	CategoryTLS              SignalCategory = "tls"
	CategoryDomain           SignalCategory = "domain"
	CategoryCertTransparency SignalCategory = "certificate_transparency"
	CategoryDomainAge        SignalCategory = "domain_age"
	CategoryVisual           SignalCategory = "visual"
	CategoryForm             SignalCategory = "form"
	CategoryDOMBehavior      SignalCategory = "dom_behavior"
)

// Severity labels how alarming a single signal is on its own
type Severity string

const (
	SeverityInfo     Severity = "info"
	SeverityWarn     Severity = "warn"
	SeverityCritical Severity = "critical"
)

// CanonicalSignal is one normalized risk contribution. Signals sharing a
// category and cap form a group whose summed weight is clipped at the cap
// before the category ceiling applies.
type CanonicalSignal struct {
	Category SignalCategory
	Weight   float64
	Cap      float64
	Label    string
	Severity Severity
}

// RiskScore is the aggregated, bounded result of one scoring pass
type RiskScore struct {
	Value   float64 // 0.00 to 0.99, two decimals
	Verdict Verdict
}

// Technique names how a lookalike domain differs from the brand it imitates
type Technique string

const (
	TechniqueNone                  Technique = "none"
	TechniqueCharacterSwap         Technique = "character_swap"
	TechniqueAdjacentSwap          Technique = "adjacent_swap"
	TechniqueCharacterSubstitution Technique = "character_substitution"
	TechniqueCharacterInsertion    Technique = "character_insertion"
	TechniqueCharacterOmission     Technique = "character_omission"
	TechniqueLetterSubstitution    Technique = "letter_substitution"
	TechniqueHomoglyph             Technique = "homoglyph"
	TechniqueMultipleChanges       Technique = "multiple_changes"
)

// BrandEntry is one phishing target in the ordered corpus
type BrandEntry struct {
	Name    string
	Domains []string // legitimate apex domains for this brand
}

// TyposquatResult is the outcome of checking a hostname against the corpus
type TyposquatResult struct {
	IsTyposquat     bool
	SuspectedBrand  string
	SimilarityScore int // 0-100
	Technique       Technique
	Notes           []string
}

// EvidenceEntry is one human-readable finding. Lower priority renders first
// in the extension popup.
type EvidenceEntry struct {
	Text     string
	Priority int
}

// TLSInfo is the raw TLS probe payload. Checked stays false only when the
// probe never ran; probe failures still produce a populated payload with
// the failure encoded in CertificateError.
type TLSInfo struct {
	Checked          bool
	HasSSL           bool
	IsValid          bool
	PlainHTTP        bool // the submitted URL used http://
	Issuer           string
	Subject          string
	IsSelfSigned     bool
	IsExpired        bool
	IsExpiringSoon   bool // 30 days or less of validity left
	ExpiresInDays    *int
	IssuedDaysAgo    *int
	SecurityScore    int // 0-100 posture grade
	CertificateError string
}

// DomainInfo is the local hostname heuristics payload
type DomainInfo struct {
	Hostname               string
	Domain                 string // label left of the public suffix
	Subdomain              string
	Suffix                 string
	Registrable            string // eTLD+1
	SubdomainCount         int
	IsIPAddress            bool
	HasSuspiciousSubdomain bool
	HasManySubdomains      bool
	HasSuspiciousTLD       bool
}

// Certificate transparency warning states. At most one applies per lookup.
const (
	CTWarnNoCerts     = "no_certs_found"
	CTWarnManyIssuers = "many_issuers"
	CTWarnReissuance  = "frequent_reissuance"
)

// CTInfo is the certificate transparency lookup payload
type CTInfo struct {
	Checked         bool
	CertsFound      int
	CertsLast30Days int
	IssuerCount     int      // distinct issuers seen
	Issuers         []string // first-seen order, capped for display
	Warning         string   // one of the CTWarn constants, or empty
	Error           string
}

// Domain age categories derived from registration date
const (
	AgeVeryNew     = "very_new"    // under 30 days
	AgeNew         = "new"         // under 90 days
	AgeYoung       = "young"       // under a year
	AgeEstablished = "established" // under two years
	AgeMature      = "mature"
	AgeUnknown     = "unknown"
)

// DomainAgeInfo is the registration lookup payload. AgeDays is computed by
// the collector against its own clock; the engine never reads time itself.
type DomainAgeInfo struct {
	Checked     bool
	Domain      string
	CreatedAt   *time.Time
	AgeDays     *int
	AgeCategory string
	Registrar   string
	Error       string
}

// VisualInfo is the screenshot analysis payload
type VisualInfo struct {
	Analyzed        bool
	DetectedBrand   string // raw brand name as the model reported it
	CanonicalBrand  string // corpus name when the raw brand matches one
	BrandConfidence int    // 0-100
	IsLoginPage     bool
	HasUrgency      bool
	RiskRating      float64 // the model's own qualitative rating, passthrough only
	Findings        []string
	Summary         string
	Error           string
}

// FormInfo describes one form the extension found in the page
type FormInfo struct {
	HasPassword              bool
	HasEmail                 bool
	SubmitsToDifferentDomain bool
}

// LinkStats counts the page's outbound links
type LinkStats struct {
	External int
	Total    int
}

// DOMAnalysis distills the client-side DOM capture into the numbers the
// engine consumes
type DOMAnalysis struct {
	SignatureLength   int
	ExternalLinks     int
	TotalLinks        int
	ExternalLinkRatio float64
	HiddenIframes     int
}

// LLMAnalysis is the narrated summary included in the response. It never
// feeds back into the score.
type LLMAnalysis struct {
	Summary        string   `json:"summary"`
	RiskFactors    []string `json:"risk_factors"`
	Recommendation string   `json:"recommendation"`
}

// PageSignals is everything the extension submits for one page
type PageSignals struct {
	URL                string
	Hostname           string
	Forms              []FormInfo
	SuspiciousPatterns []string
	DOMSignature       string
	ExternalLinks      LinkStats
	Screenshot         string // base64 image, possibly a data URL
}

// SummaryInput carries the collected facts the report writer narrates
type SummaryInput struct {
	URL       string
	Hostname  string
	Typosquat TyposquatResult
	TLS       TLSInfo
	Domain    DomainInfo
	Age       DomainAgeInfo
	Forms     []FormInfo
	Patterns  []string
	DOM       DOMAnalysis
}
