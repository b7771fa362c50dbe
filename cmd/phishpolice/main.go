package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/theomatrix/PhishPolice/internal/adapters/collectors"
	"github.com/theomatrix/PhishPolice/internal/adapters/httpapi"
	"github.com/theomatrix/PhishPolice/internal/application"
	"github.com/theomatrix/PhishPolice/internal/config"
	"github.com/theomatrix/PhishPolice/internal/ports"
)

func main() {
	log.Println("🛡️ PhishPolice backend starting...")

	cfg := config.Load()

	// Collector adapters (driven port implementations)
	tlsProber := collectors.NewTLSProber(cfg.CollectorTimeout)
	ctClient := collectors.NewCTLogClient(cfg.CrtShBaseURL, cfg.CollectorTimeout)
	rdapClient := collectors.NewRDAPClient(cfg.RDAPBaseURL, cfg.CollectorTimeout)

	// Gemini is optional: without a key the pipeline still scores on TLS,
	// CT, domain age and the client-side signals
	var (
		vision ports.ScreenshotAnalyzer = collectors.NoopAnalyzer{}
		writer ports.ReportWriter       = collectors.NoopAnalyzer{}
	)
	if cfg.GeminiAPIKey != "" {
		gemini, err := collectors.NewGeminiAnalyzer(context.Background(), cfg.GeminiAPIKey, cfg.GeminiModel)
		if err != nil {
			log.Fatalf("Failed to create Gemini client: %v", err)
		}
		vision, writer = gemini, gemini
		log.Printf("Gemini analysis enabled (model %s)", cfg.GeminiModel)
	} else {
		log.Println("GEMINI_API_KEY not set, visual analysis and AI summaries disabled")
	}

	// Application service (dependency injection via constructor)
	service := application.NewAnalysisService(
		tlsProber, ctClient, rdapClient, vision, writer,
		application.DefaultBudgets(),
	)
	api := httpapi.NewServer(service, cfg.RatePerMinute)

	// Metrics listen on their own port so the extension-facing API exposes
	// nothing operational
	go func() {
		mux := http.NewServeMux()
		mux.Handle("/metrics", promhttp.Handler())
		log.Printf("Metrics listening on %s", cfg.MetricsAddr)
		if err := http.ListenAndServe(cfg.MetricsAddr, mux); err != nil && err != http.ErrServerClosed {
			log.Printf("Metrics server error: %v", err)
		}
	}()

	// WriteTimeout leaves headroom over the analysis budget so a slow scan
	// is not cut off mid-response
	srv := &http.Server{
		Addr:         cfg.ListenAddr,
		Handler:      api.Routes(),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 40 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.Printf("API listening on %s", cfg.ListenAddr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Server error: %v", err)
		}
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	sig := <-sigCh
	log.Printf("Received %s, shutting down...", sig)

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Printf("Shutdown error: %v", err)
	}
	log.Println("Server stopped")
}
