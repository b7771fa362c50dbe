package collectors

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/theomatrix/PhishPolice/internal/domain"
)

// ctScanLimit bounds how many log rows are inspected per lookup. Busy
// domains have tens of thousands of entries and the recent ones come first.
const ctScanLimit = 50

// ctEntry is the subset of a crt.sh JSON row the checker reads
type ctEntry struct {
	IssuerName     string `json:"issuer_name"`
	EntryTimestamp string `json:"entry_timestamp"`
}

// CTLogClient implements ports.TransparencyChecker against the crt.sh API
type CTLogClient struct {
	baseURL string
	client  *http.Client
	now     func() time.Time
}

// NewCTLogClient creates a checker for the given crt.sh-compatible base URL
func NewCTLogClient(baseURL string, timeout time.Duration) *CTLogClient {
	return &CTLogClient{
		baseURL: strings.TrimRight(baseURL, "/"),
		client:  &http.Client{Timeout: timeout},
		now:     time.Now,
	}
}

// Lookup fetches certificate issuance history for hostname. A domain with
// no CT history usually has no certificate at all; one with many issuers or
// rapid reissuance is churning through certificates the way short-lived
// phishing infrastructure does.
func (c *CTLogClient) Lookup(ctx context.Context, hostname string) (domain.CTInfo, error) {
	endpoint := fmt.Sprintf("%s/?q=%s&output=json", c.baseURL, url.QueryEscape(hostname))
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return domain.CTInfo{Error: err.Error()}, err
	}
	req.Header.Set("User-Agent", "PhishPolice/2.0")

	resp, err := c.client.Do(req)
	if err != nil {
		return domain.CTInfo{Error: err.Error()}, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		err := fmt.Errorf("crt.sh returned status %d", resp.StatusCode)
		return domain.CTInfo{Error: err.Error()}, err
	}

	var rows []ctEntry
	if err := json.NewDecoder(resp.Body).Decode(&rows); err != nil {
		return domain.CTInfo{Error: err.Error()}, err
	}

	info := domain.CTInfo{Checked: true, CertsFound: len(rows)}

	scanned := rows
	if len(scanned) > ctScanLimit {
		scanned = scanned[:ctScanLimit]
	}

	cutoff := c.now().AddDate(0, 0, -30)
	seen := make(map[string]bool)
	for _, row := range scanned {
		if row.IssuerName != "" && !seen[row.IssuerName] {
			seen[row.IssuerName] = true
			if len(info.Issuers) < 5 {
				info.Issuers = append(info.Issuers, row.IssuerName)
			}
		}
		if ts, ok := parseCTTimestamp(row.EntryTimestamp); ok && ts.After(cutoff) {
			info.CertsLast30Days++
		}
	}
	info.IssuerCount = len(seen)

	// Later assignments overwrite: reissuance is the strongest churn signal
	// when several conditions hold at once
	if info.CertsFound == 0 {
		info.Warning = domain.CTWarnNoCerts
	}
	if info.IssuerCount > 3 {
		info.Warning = domain.CTWarnManyIssuers
	}
	if info.CertsLast30Days > 5 {
		info.Warning = domain.CTWarnReissuance
	}

	return info, nil
}

// parseCTTimestamp reads crt.sh timestamps, which carry a fractional second
// but no zone
func parseCTTimestamp(raw string) (time.Time, bool) {
	if i := strings.Index(raw, "."); i >= 0 {
		raw = raw[:i]
	}
	t, err := time.Parse("2006-01-02T15:04:05", raw)
	if err != nil {
		return time.Time{}, false
	}
	return t, true
}
