package analyzer

import (
	"context"
	"crypto/tls"
	"net"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/riskhound/riskhound/internal/model"
)

// dialTestServer returns a dial func that performs the handshake
// against a local TLS test server instead of host:443.
func dialTestServer(addr string) func(ctx context.Context, host string) (*tls.Conn, error) {
	return func(ctx context.Context, _ string) (*tls.Conn, error) {
		raw, err := (&net.Dialer{Timeout: time.Second}).DialContext(ctx, "tcp", addr)
		if err != nil {
			return nil, err
		}
		conn := tls.Client(raw, &tls.Config{InsecureSkipVerify: true})
		if err := conn.HandshakeContext(ctx); err != nil {
			raw.Close()
			return nil, err
		}
		return conn, nil
	}
}

func TestTLSProberProbe(t *testing.T) {
	t.Parallel()

	srv := httptest.NewTLSServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {}))
	defer srv.Close()

	// The httptest certificate is issued by "Acme Co".
	p := NewTLSProber(time.Second, []string{"Acme Co"})
	p.dial = dialTestServer(srv.Listener.Addr().String())

	fv := model.NewFeatureVector("https://example.com/", nil)
	p.Probe(context.Background(), "example.com", fv)

	if fv.HasSSL != 1 || fv.SSLValid != 1 {
		t.Errorf("HasSSL/SSLValid = %d/%d, want 1/1", fv.HasSSL, fv.SSLValid)
	}
	if fv.TrustedCA != 1 {
		t.Errorf("TrustedCA = %d, want 1 for listed issuer", fv.TrustedCA)
	}
	if fv.CertValidDays <= 0 {
		t.Errorf("CertValidDays = %d, want positive", fv.CertValidDays)
	}
	if fv.CertTooNew != 0 {
		t.Errorf("CertTooNew = %d, want 0 for the long-lived test cert", fv.CertTooNew)
	}
}

func TestTLSProberUntrustedIssuer(t *testing.T) {
	t.Parallel()

	srv := httptest.NewTLSServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {}))
	defer srv.Close()

	p := NewTLSProber(time.Second, []string{"DigiCert"})
	p.dial = dialTestServer(srv.Listener.Addr().String())

	fv := model.NewFeatureVector("https://example.com/", nil)
	p.Probe(context.Background(), "example.com", fv)

	if fv.TrustedCA != 0 {
		t.Errorf("TrustedCA = %d, want 0 for unlisted issuer", fv.TrustedCA)
	}
}

func TestTLSProberFailure(t *testing.T) {
	t.Parallel()

	p := NewTLSProber(100*time.Millisecond, nil)

	fv := model.NewFeatureVector("https://example.invalid/", nil)
	fv.HasSSL = 1 // probe must reset on failure
	p.Probe(context.Background(), "example.invalid", fv)

	if fv.HasSSL != 0 || fv.SSLValid != 0 {
		t.Errorf("HasSSL/SSLValid = %d/%d, want 0/0", fv.HasSSL, fv.SSLValid)
	}
	if fv.CertValidDays != -1 {
		t.Errorf("CertValidDays = %d, want -1", fv.CertValidDays)
	}
}
