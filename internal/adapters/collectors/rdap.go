package collectors

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/theomatrix/PhishPolice/internal/domain"
)

// rdapEvent is one lifecycle event in an RDAP domain record
type rdapEvent struct {
	Action string `json:"eventAction"`
	Date   string `json:"eventDate"`
}

// rdapEntity is one contact attached to an RDAP domain record
type rdapEntity struct {
	Roles  []string `json:"roles"`
	Handle string   `json:"handle"`
}

type rdapResponse struct {
	Events   []rdapEvent  `json:"events"`
	Entities []rdapEntity `json:"entities"`
}

// RDAPClient implements ports.RegistrationChecker against an RDAP bootstrap
// service such as rdap.org
type RDAPClient struct {
	baseURL string
	client  *http.Client
	now     func() time.Time
}

// NewRDAPClient creates a checker for the given RDAP base URL
func NewRDAPClient(baseURL string, timeout time.Duration) *RDAPClient {
	return &RDAPClient{
		baseURL: strings.TrimRight(baseURL, "/"),
		client:  &http.Client{Timeout: timeout},
		now:     time.Now,
	}
}

// Age resolves the registration date of hostname's registrable domain.
// Hosts without one (IP literals, bare labels) and domains the registry
// does not expose come back unchecked with the age left unknown.
func (c *RDAPClient) Age(ctx context.Context, hostname string) (domain.DomainAgeInfo, error) {
	parts := domain.SplitHost(hostname)
	info := domain.DomainAgeInfo{Domain: parts.Registrable, AgeCategory: domain.AgeUnknown}
	if parts.IsIP || parts.Registrable == "" {
		info.Domain = hostname
		return info, nil
	}

	endpoint := fmt.Sprintf("%s/domain/%s", c.baseURL, parts.Registrable)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		info.Error = err.Error()
		return info, err
	}
	req.Header.Set("Accept", "application/rdap+json")
	req.Header.Set("User-Agent", "PhishPolice/2.1")

	resp, err := c.client.Do(req)
	if err != nil {
		info.Error = err.Error()
		return info, err
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		// Registry has no public record; unknown age, not a failure
		return info, nil
	}
	if resp.StatusCode != http.StatusOK {
		err := fmt.Errorf("rdap returned status %d", resp.StatusCode)
		info.Error = err.Error()
		return info, err
	}

	var record rdapResponse
	if err := json.NewDecoder(resp.Body).Decode(&record); err != nil {
		info.Error = err.Error()
		return info, err
	}

	info.Checked = true

	for _, entity := range record.Entities {
		if hasRole(entity.Roles, "registrar") && entity.Handle != "" {
			info.Registrar = entity.Handle
			if len(info.Registrar) > 100 {
				info.Registrar = info.Registrar[:100]
			}
			break
		}
	}

	for _, event := range record.Events {
		if event.Action != "registration" {
			continue
		}
		created, ok := parseRDAPDate(event.Date)
		if !ok {
			continue
		}
		ageDays := int(c.now().Sub(created).Hours() / 24)
		info.CreatedAt = &created
		info.AgeDays = &ageDays
		info.AgeCategory = ageCategory(ageDays)
		break
	}

	return info, nil
}

// parseRDAPDate reads an RDAP event date. Registries disagree on
// fractional seconds and zone suffixes, so everything past the seconds
// field is cut before parsing.
func parseRDAPDate(raw string) (time.Time, bool) {
	raw = strings.TrimSpace(raw)
	if len(raw) > 19 {
		raw = raw[:19]
	}
	for _, layout := range []string{"2006-01-02T15:04:05", "2006-01-02"} {
		if t, err := time.Parse(layout, raw); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

// ageCategory buckets a registration age the way the popup displays it
func ageCategory(ageDays int) string {
	switch {
	case ageDays < 30:
		return domain.AgeVeryNew
	case ageDays < 90:
		return domain.AgeNew
	case ageDays < 365:
		return domain.AgeYoung
	case ageDays < 730:
		return domain.AgeEstablished
	}
	return domain.AgeMature
}

// hasRole reports whether an RDAP entity carries the given role
func hasRole(roles []string, want string) bool {
	for _, role := range roles {
		if strings.EqualFold(role, want) {
			return true
		}
	}
	return false
}
