package domain

// AnalysisReport is the wire response for POST /api/analyze. Field names
// are the contract with the extension and must not change.
type AnalysisReport struct {
	ScanID     string        `json:"scan_id"`
	Verdict    Verdict       `json:"verdict"`
	Score      float64       `json:"score"`
	Evidence   []string      `json:"evidence"`
	SSLInfo    SSLSummary    `json:"ssl_info"`
	DomainInfo DomainSummary `json:"domain_info"`
	CTInfo     CTSummary     `json:"ct_info"`
	VisualInfo VisualSummary `json:"visual_info"`
	LLM        LLMAnalysis   `json:"llm_analysis"`
}

// SSLSummary is the client-facing slice of the TLS payload
type SSLSummary struct {
	HasSSL        bool    `json:"has_ssl"`
	IsValid       bool    `json:"is_valid"`
	Issuer        *string `json:"issuer"`
	ExpiresInDays *int    `json:"expires_in_days"`
	SecurityScore int     `json:"security_score"`
}

// DomainSummary is the client-facing slice of the domain heuristics,
// typosquat verdict and registration age
type DomainSummary struct {
	Domain         string  `json:"domain"`
	IsSuspicious   bool    `json:"is_suspicious"`
	IsTyposquat    bool    `json:"is_typosquat"`
	SuspectedBrand *string `json:"suspected_brand"`
	AgeDays        *int    `json:"age_days"`
	AgeCategory    string  `json:"age_category"`
}

// CTSummary is the client-facing slice of the transparency lookup
type CTSummary struct {
	Checked    bool    `json:"checked"`
	CertsFound int     `json:"certs_found"`
	Warning    *string `json:"warning"`
}

// VisualSummary is the client-facing slice of the screenshot analysis
type VisualSummary struct {
	Analyzed       bool     `json:"analyzed"`
	DetectedBrand  *string  `json:"detected_brand"`
	CanonicalBrand *string  `json:"canonical_brand,omitempty"`
	IsLoginPage    bool     `json:"is_login_page"`
	HasUrgency     bool     `json:"has_urgency"`
	VisualRisk     float64  `json:"visual_risk"`
	Findings       []string `json:"findings,omitempty"`
}

// EvidenceTexts projects ordered evidence entries to the wire strings
func EvidenceTexts(entries []EvidenceEntry) []string {
	texts := make([]string, len(entries))
	for i, entry := range entries {
		texts[i] = entry.Text
	}
	return texts
}

// SummarizeTLS builds the ssl_info response block
func SummarizeTLS(t TLSInfo) SSLSummary {
	s := SSLSummary{
		HasSSL:        t.HasSSL,
		IsValid:       t.IsValid,
		ExpiresInDays: t.ExpiresInDays,
		SecurityScore: t.SecurityScore,
	}
	if t.Issuer != "" {
		s.Issuer = &t.Issuer
	}
	return s
}

// SummarizeDomain builds the domain_info response block
func SummarizeDomain(d DomainInfo, typo TyposquatResult, age DomainAgeInfo) DomainSummary {
	s := DomainSummary{
		Domain:       d.Hostname,
		IsSuspicious: d.HasSuspiciousSubdomain || d.HasSuspiciousTLD,
		IsTyposquat:  typo.IsTyposquat,
		AgeDays:      age.AgeDays,
		AgeCategory:  age.AgeCategory,
	}
	if s.AgeCategory == "" {
		s.AgeCategory = AgeUnknown
	}
	if typo.SuspectedBrand != "" {
		s.SuspectedBrand = &typo.SuspectedBrand
	}
	return s
}

// SummarizeCT builds the ct_info response block
func SummarizeCT(c CTInfo) CTSummary {
	s := CTSummary{Checked: c.Checked, CertsFound: c.CertsFound}
	if c.Warning != "" {
		s.Warning = &c.Warning
	}
	return s
}

// SummarizeVisual builds the visual_info response block
func SummarizeVisual(v VisualInfo) VisualSummary {
	s := VisualSummary{
		Analyzed:    v.Analyzed,
		IsLoginPage: v.IsLoginPage,
		HasUrgency:  v.HasUrgency,
		VisualRisk:  v.RiskRating,
		Findings:    v.Findings,
	}
	if v.DetectedBrand != "" {
		s.DetectedBrand = &v.DetectedBrand
	}
	if v.CanonicalBrand != "" {
		s.CanonicalBrand = &v.CanonicalBrand
	}
	return s
}
