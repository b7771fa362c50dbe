package collectors

import (
	"context"
	"crypto/tls"
	"crypto/x509"
	"errors"
	"fmt"
	"net"
	"net/url"
	"strings"
	"syscall"
	"time"

	"github.com/theomatrix/PhishPolice/internal/domain"
)

// trustedIssuers earn a certificate a posture bonus when their name appears
// in the issuer string
var trustedIssuers = []string{
	"let's encrypt", "digicert", "comodo", "godaddy", "globalsign",
	"sectigo", "entrust", "geotrust", "thawte", "verisign", "google",
}

// TLSProber implements ports.CertificateProber with a live handshake
type TLSProber struct {
	timeout time.Duration
	now     func() time.Time
}

// NewTLSProber creates a prober with the given handshake timeout
func NewTLSProber(timeout time.Duration) *TLSProber {
	return &TLSProber{timeout: timeout, now: time.Now}
}

// Probe performs a verifying TLS handshake against the URL's host. Every
// failure mode degrades to a scored payload so the engine can still weigh
// the result; the returned error is for logging only.
func (p *TLSProber) Probe(ctx context.Context, rawURL string) (domain.TLSInfo, error) {
	u, err := url.Parse(rawURL)
	if err != nil || u.Hostname() == "" {
		if err == nil {
			err = fmt.Errorf("no hostname in url %q", rawURL)
		}
		return domain.TLSInfo{Checked: true, SecurityScore: 20, CertificateError: "Invalid URL"}, err
	}

	if u.Scheme != "https" {
		// Expected for plain-http pages, not a collector failure
		return domain.TLSInfo{
			Checked:          true,
			PlainHTTP:        true,
			SecurityScore:    20,
			CertificateError: "Not using HTTPS",
		}, nil
	}

	host := u.Hostname()
	port := u.Port()
	if port == "" {
		port = "443"
	}

	dialer := &net.Dialer{Timeout: p.timeout}
	if deadline, ok := ctx.Deadline(); ok {
		dialer.Deadline = deadline
	}
	conn, err := tls.DialWithDialer(dialer, "tcp", net.JoinHostPort(host, port), &tls.Config{ServerName: host})
	if err != nil {
		return classifyDialError(err), err
	}
	defer conn.Close()

	certs := conn.ConnectionState().PeerCertificates
	if len(certs) == 0 {
		return domain.TLSInfo{Checked: true, SecurityScore: 20, CertificateError: "No certificate presented"}, errors.New("handshake succeeded without peer certificates")
	}
	cert := certs[0]

	now := p.now()
	expiresIn := int(cert.NotAfter.Sub(now).Hours() / 24)
	issuedAgo := int(now.Sub(cert.NotBefore).Hours() / 24)

	info := domain.TLSInfo{
		Checked:       true,
		HasSSL:        true,
		IsValid:       true,
		Issuer:        issuerName(cert),
		Subject:       cert.Subject.CommonName,
		IsExpired:     now.After(cert.NotAfter),
		ExpiresInDays: &expiresIn,
		IssuedDaysAgo: &issuedAgo,
	}
	info.IsSelfSigned = info.Issuer != "" && info.Issuer == info.Subject
	info.IsExpiringSoon = !info.IsExpired && expiresIn <= 30
	info.SecurityScore = securityScore(info)

	return info, nil
}

// classifyDialError maps a handshake failure onto a degraded payload whose
// security score reflects how bad the failure is. A host that refuses or
// times out scores worse than one with a broken certificate chain.
func classifyDialError(err error) domain.TLSInfo {
	info := domain.TLSInfo{Checked: true, CertificateError: err.Error()}

	var verifyErr *tls.CertificateVerificationError
	var hostnameErr x509.HostnameError
	var authorityErr x509.UnknownAuthorityError
	var invalidErr x509.CertificateInvalidError
	if errors.As(err, &verifyErr) || errors.As(err, &hostnameErr) ||
		errors.As(err, &authorityErr) || errors.As(err, &invalidErr) {
		info.HasSSL = true
		info.SecurityScore = 15
		return info
	}

	var dnsErr *net.DNSError
	if errors.As(err, &dnsErr) {
		info.SecurityScore = 25
		return info
	}

	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		info.SecurityScore = 30
		return info
	}

	if errors.Is(err, syscall.ECONNREFUSED) {
		info.SecurityScore = 20
		return info
	}

	info.SecurityScore = 10
	return info
}

// issuerName prefers the issuing organization over its common name
func issuerName(cert *x509.Certificate) string {
	if len(cert.Issuer.Organization) > 0 {
		return cert.Issuer.Organization[0]
	}
	return cert.Issuer.CommonName
}

// securityScore grades a successfully fetched certificate on a 0-100 scale
func securityScore(info domain.TLSInfo) int {
	score := 60

	if info.IsSelfSigned {
		score -= 30
	}
	if info.IsExpired {
		score -= 40
	}
	if info.IsExpiringSoon {
		score -= 10
	}
	if info.IssuedDaysAgo != nil {
		switch {
		case *info.IssuedDaysAgo < 7:
			score -= 15
		case *info.IssuedDaysAgo < 30:
			score -= 5
		}
	}

	issuer := strings.ToLower(info.Issuer)
	for _, trusted := range trustedIssuers {
		if strings.Contains(issuer, trusted) {
			score += 20
			break
		}
	}

	if info.ExpiresInDays != nil {
		switch {
		case *info.ExpiresInDays > 180:
			score += 10
		case *info.ExpiresInDays > 90:
			score += 5
		}
	}

	if score < 0 {
		score = 0
	}
	if score > 100 {
		score = 100
	}
	return score
}
