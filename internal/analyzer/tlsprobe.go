package analyzer

import (
	"context"
	"crypto/tls"
	"crypto/x509"
	"net"
	"strings"
	"time"

	"github.com/riskhound/riskhound/internal/model"
)

// TLSProber inspects the target's certificate with a verifying
// handshake on port 443.
type TLSProber struct {
	timeout    time.Duration
	trustedCAs []string

	// dial is injectable so tests can point the probe at an httptest
	// TLS server instead of host:443.
	dial func(ctx context.Context, host string) (*tls.Conn, error)

	// now is injectable for deterministic validity arithmetic in tests.
	now func() time.Time
}

// NewTLSProber creates a TLSProber with the given handshake timeout and
// trusted CA list.
func NewTLSProber(timeout time.Duration, trustedCAs []string) *TLSProber {
	p := &TLSProber{
		timeout:    timeout,
		trustedCAs: trustedCAs,
		now:        time.Now,
	}
	p.dial = func(ctx context.Context, host string) (*tls.Conn, error) {
		dialer := &tls.Dialer{
			NetDialer: &net.Dialer{Timeout: p.timeout},
		}
		conn, err := dialer.DialContext(ctx, "tcp", net.JoinHostPort(host, "443"))
		if err != nil {
			return nil, err
		}
		return conn.(*tls.Conn), nil
	}
	return p
}

// Probe performs a verifying handshake with host and records the
// certificate features. Any failure, connection refused, timeout, or an
// unverifiable chain, leaves the TLS block at its defaults: a site
// whose certificate cannot be verified scores the same as one without
// TLS at all.
func (p *TLSProber) Probe(ctx context.Context, host string, fv *model.FeatureVector) {
	conn, err := p.dial(ctx, host)
	if err != nil {
		p.applyFailureDefaults(fv)
		return
	}
	defer conn.Close()

	certs := conn.ConnectionState().PeerCertificates
	if len(certs) == 0 {
		fv.HasSSL = 1
		fv.SSLValid = 0
		return
	}
	cert := certs[0]

	fv.HasSSL = 1
	fv.SSLValid = 1

	issuer := strings.Join(cert.Issuer.Organization, " ")
	for _, ca := range p.trustedCAs {
		if strings.Contains(issuer, ca) {
			fv.TrustedCA = 1
			break
		}
	}

	now := p.now()
	fv.CertValidDays = int(cert.NotAfter.Sub(now).Hours() / 24)
	fv.CertTooNew = boolFlag(now.Sub(cert.NotBefore).Hours()/24 < 7)

	p.recordSubject(cert, host, fv)
}

// recordSubject records the common-name features.
func (p *TLSProber) recordSubject(cert *x509.Certificate, host string, fv *model.FeatureVector) {
	cn := cert.Subject.CommonName
	fv.SSLDomainMatch = boolFlag(cn != "" && strings.Contains(cn, host))
	fv.WildcardCert = boolFlag(strings.Contains(cn, "*"))
}

// applyFailureDefaults restores the TLS block to its documented defaults.
func (p *TLSProber) applyFailureDefaults(fv *model.FeatureVector) {
	fv.HasSSL = 0
	fv.SSLValid = 0
	fv.TrustedCA = 0
	fv.CertValidDays = -1
	fv.CertTooNew = 0
	fv.SSLDomainMatch = 0
	fv.WildcardCert = 0
}
