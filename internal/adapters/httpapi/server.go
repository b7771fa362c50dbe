package httpapi

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log"
	"net/http"
	"net/url"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/theomatrix/PhishPolice/internal/domain"
	"github.com/theomatrix/PhishPolice/internal/metrics"
)

const (
	maxURLLength      = 2048
	maxScreenshotSize = 5 * 1024 * 1024
	maxForms          = 100

	// maxBodySize bounds the whole request: the screenshot plus headroom
	// for forms, patterns and the DOM signature
	maxBodySize = maxScreenshotSize + 1024*1024

	apiVersion = "2.2.0"
)

var features = []string{
	"ssl_check", "domain_analysis", "domain_age", "llm_analysis",
	"typosquat_scanner", "ct_monitor", "visual_analysis",
}

// Analyzer runs the full analysis pipeline for one submitted page
type Analyzer interface {
	Analyze(ctx context.Context, page domain.PageSignals) (*domain.AnalysisReport, error)
}

// Server is the HTTP boundary the browser extension talks to
type Server struct {
	analyzer Analyzer
	limiter  *ipRateLimiter
}

// NewServer creates the server with a per-IP request budget for the
// analyze endpoint
func NewServer(analyzer Analyzer, ratePerMinute int) *Server {
	return &Server{
		analyzer: analyzer,
		limiter:  newIPRateLimiter(ratePerMinute),
	}
}

// Routes wires the extension-facing API
func (s *Server) Routes() chi.Router {
	r := chi.NewRouter()
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(extensionCORS)

	r.Get("/api/health", s.handleHealth)
	r.With(s.limiter.limit).Post("/api/analyze", s.handleAnalyze)
	return r
}

// analyzeRequest is the wire format the extension submits. Key casing is
// mixed because the capture script grew organically; it is part of the
// contract now.
type analyzeRequest struct {
	URL                string        `json:"url"`
	Hostname           string        `json:"hostname"`
	Forms              []formPayload `json:"forms"`
	SuspiciousPatterns []string      `json:"suspiciousPatterns"`
	DOMSignature       string        `json:"dom_signature"`
	ExternalLinks      linkStats     `json:"externalLinks"`
	ImageB64           string        `json:"image_b64"`
}

type formPayload struct {
	HasPassword              bool `json:"hasPassword"`
	HasEmail                 bool `json:"hasEmail"`
	SubmitsToDifferentDomain bool `json:"submitsToDifferentDomain"`
}

type linkStats struct {
	External int `json:"external"`
	Total    int `json:"total"`
}

func (req analyzeRequest) validate() []string {
	var errs []string
	switch {
	case strings.TrimSpace(req.URL) == "":
		errs = append(errs, "Missing or invalid URL")
	case len(req.URL) > maxURLLength:
		errs = append(errs, "URL too long")
	default:
		parsed, err := url.Parse(req.URL)
		switch {
		case err != nil:
			errs = append(errs, "Malformed URL")
		case parsed.Scheme != "http" && parsed.Scheme != "https":
			errs = append(errs, "Invalid URL scheme")
		case parsed.Host == "":
			errs = append(errs, "Invalid URL format")
		}
	}
	if len(req.ImageB64) > maxScreenshotSize {
		errs = append(errs, "Image too large")
	}
	if len(req.Forms) > maxForms {
		errs = append(errs, "Too many forms")
	}
	return errs
}

// toPageSignals converts the wire request. A missing hostname falls back
// to the host of the already-validated URL.
func (req analyzeRequest) toPageSignals() domain.PageSignals {
	hostname := req.Hostname
	if hostname == "" {
		if parsed, err := url.Parse(req.URL); err == nil {
			hostname = parsed.Hostname()
		}
	}

	forms := make([]domain.FormInfo, len(req.Forms))
	for i, f := range req.Forms {
		forms[i] = domain.FormInfo{
			HasPassword:              f.HasPassword,
			HasEmail:                 f.HasEmail,
			SubmitsToDifferentDomain: f.SubmitsToDifferentDomain,
		}
	}

	return domain.PageSignals{
		URL:                req.URL,
		Hostname:           hostname,
		Forms:              forms,
		SuspiciousPatterns: req.SuspiciousPatterns,
		DOMSignature:       req.DOMSignature,
		ExternalLinks:      domain.LinkStats(req.ExternalLinks),
		Screenshot:         req.ImageB64,
	}
}

func (s *Server) handleAnalyze(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodySize)

	var req analyzeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		var maxErr *http.MaxBytesError
		switch {
		case errors.As(err, &maxErr):
			metrics.RejectedRequests.WithLabelValues("payload_too_large").Inc()
			writeError(w, http.StatusRequestEntityTooLarge, "Request body too large", nil)
		case errors.Is(err, io.EOF):
			metrics.RejectedRequests.WithLabelValues("missing_body").Inc()
			writeError(w, http.StatusBadRequest, "Missing request body", nil)
		default:
			metrics.RejectedRequests.WithLabelValues("invalid_json").Inc()
			writeError(w, http.StatusBadRequest, "Invalid JSON payload", nil)
		}
		return
	}

	if errs := req.validate(); len(errs) > 0 {
		metrics.RejectedRequests.WithLabelValues("validation").Inc()
		writeError(w, http.StatusBadRequest, "Validation failed", errs)
		return
	}

	page := req.toPageSignals()
	report, err := s.analyzer.Analyze(r.Context(), page)
	if err != nil {
		log.Printf("Analysis aborted for %s: %v", page.Hostname, err)
		writeError(w, http.StatusInternalServerError, "Analysis failed", nil)
		return
	}
	writeJSON(w, http.StatusOK, report)
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"status":   "healthy",
		"name":     "PhishPolice",
		"version":  apiVersion,
		"features": features,
	})
}

type errorResponse struct {
	Error   string   `json:"error"`
	Details []string `json:"details,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		log.Printf("Failed to encode response: %v", err)
	}
}

func writeError(w http.ResponseWriter, status int, msg string, details []string) {
	writeJSON(w, status, errorResponse{Error: msg, Details: details})
}
