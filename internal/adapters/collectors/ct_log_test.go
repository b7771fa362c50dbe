package collectors

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/theomatrix/PhishPolice/internal/domain"
)

// ctTestNow anchors the 30-day window so fixtures never age out
var ctTestNow = time.Date(2025, 7, 1, 0, 0, 0, 0, time.UTC)

func newCTClientFor(t *testing.T, handler http.HandlerFunc) *CTLogClient {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	client := NewCTLogClient(server.URL, 2*time.Second)
	client.now = func() time.Time { return ctTestNow }
	return client
}

func TestCTLookup_History(t *testing.T) {
	var gotQuery, gotUserAgent string
	client := newCTClientFor(t, func(w http.ResponseWriter, r *http.Request) {
		gotQuery = r.URL.Query().Get("q")
		gotUserAgent = r.Header.Get("User-Agent")
		w.Write([]byte(`[
			{"issuer_name": "R3", "entry_timestamp": "2025-06-20T10:00:00.123"},
			{"issuer_name": "R3", "entry_timestamp": "2025-01-15T08:30:00"},
			{"issuer_name": "GTS CA 1P5", "entry_timestamp": "2024-11-02T19:45:12.5"}
		]`))
	})

	info, err := client.Lookup(context.Background(), "example.com")

	assert.NoError(t, err)
	assert.Equal(t, "example.com", gotQuery)
	assert.Equal(t, "PhishPolice/2.0", gotUserAgent)

	assert.True(t, info.Checked)
	assert.Equal(t, 3, info.CertsFound)
	assert.Equal(t, 1, info.CertsLast30Days, "Only the June entry is within 30 days")
	assert.Equal(t, 2, info.IssuerCount)
	assert.Equal(t, []string{"R3", "GTS CA 1P5"}, info.Issuers, "Issuers keep first-seen order")
	assert.Empty(t, info.Warning)
}

func TestCTLookup_NoCerts(t *testing.T) {
	client := newCTClientFor(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`[]`))
	})

	info, err := client.Lookup(context.Background(), "secure-login.paypal-verify.tk")

	assert.NoError(t, err)
	assert.True(t, info.Checked)
	assert.Zero(t, info.CertsFound)
	assert.Equal(t, domain.CTWarnNoCerts, info.Warning)
}

func TestCTLookup_ManyIssuers(t *testing.T) {
	client := newCTClientFor(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`[
			{"issuer_name": "CA One", "entry_timestamp": "2024-01-01T00:00:00"},
			{"issuer_name": "CA Two", "entry_timestamp": "2024-02-01T00:00:00"},
			{"issuer_name": "CA Three", "entry_timestamp": "2024-03-01T00:00:00"},
			{"issuer_name": "CA Four", "entry_timestamp": "2024-04-01T00:00:00"}
		]`))
	})

	info, err := client.Lookup(context.Background(), "example.com")

	assert.NoError(t, err)
	assert.Equal(t, 4, info.IssuerCount)
	assert.Equal(t, domain.CTWarnManyIssuers, info.Warning)
}

func TestCTLookup_ReissuanceOverridesIssuerWarning(t *testing.T) {
	// Six fresh entries across four issuers trip both churn conditions;
	// the reissuance warning must win.
	client := newCTClientFor(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`[
			{"issuer_name": "CA One", "entry_timestamp": "2025-06-25T00:00:00"},
			{"issuer_name": "CA Two", "entry_timestamp": "2025-06-24T00:00:00"},
			{"issuer_name": "CA Three", "entry_timestamp": "2025-06-23T00:00:00"},
			{"issuer_name": "CA Four", "entry_timestamp": "2025-06-22T00:00:00"},
			{"issuer_name": "CA One", "entry_timestamp": "2025-06-21T00:00:00"},
			{"issuer_name": "CA Two", "entry_timestamp": "2025-06-20T00:00:00"}
		]`))
	})

	info, err := client.Lookup(context.Background(), "example.com")

	assert.NoError(t, err)
	assert.Equal(t, 6, info.CertsLast30Days)
	assert.Equal(t, domain.CTWarnReissuance, info.Warning)
}

func TestCTLookup_ServerError(t *testing.T) {
	client := newCTClientFor(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	})

	info, err := client.Lookup(context.Background(), "example.com")

	assert.Error(t, err)
	assert.False(t, info.Checked, "Failed lookups must stay unchecked")
	assert.NotEmpty(t, info.Error)
}

func TestParseCTTimestamp(t *testing.T) {
	tests := []struct {
		name     string
		raw      string
		expectOK bool
		expected time.Time
	}{
		{"With fractional seconds", "2025-06-20T10:00:00.123", true, time.Date(2025, 6, 20, 10, 0, 0, 0, time.UTC)},
		{"Without fraction", "2025-06-20T10:00:00", true, time.Date(2025, 6, 20, 10, 0, 0, 0, time.UTC)},
		{"Empty", "", false, time.Time{}},
		{"Garbage", "not-a-date", false, time.Time{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := parseCTTimestamp(tt.raw)

			assert.Equal(t, tt.expectOK, ok)
			assert.True(t, got.Equal(tt.expected), "Parsed time mismatch: %v", got)
		})
	}
}
