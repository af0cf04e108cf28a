package analyzer

import (
	"context"
	"net"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/miekg/dns"

	"github.com/riskhound/riskhound/internal/model"
	"github.com/riskhound/riskhound/internal/store"
)

// startDNSServer runs a local DNS server for the test and returns its
// address.
func startDNSServer(t *testing.T, handler dns.Handler) string {
	t.Helper()

	pc, err := net.ListenPacket("udp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("listen udp: %v", err)
	}
	srv := &dns.Server{PacketConn: pc, Handler: handler}
	go srv.ActivateAndServe() //nolint:errcheck
	t.Cleanup(func() { srv.Shutdown() }) //nolint:errcheck
	return pc.LocalAddr().String()
}

// answeringHandler responds to A, MX, and TXT queries for any name.
func answeringHandler(t *testing.T) dns.Handler {
	t.Helper()

	return dns.HandlerFunc(func(w dns.ResponseWriter, r *dns.Msg) {
		m := new(dns.Msg)
		m.SetReply(r)
		name := r.Question[0].Name

		switch r.Question[0].Qtype {
		case dns.TypeA:
			for _, ip := range []string{"1.2.3.4", "5.6.7.8"} {
				rr, err := dns.NewRR(name + " 300 IN A " + ip)
				if err != nil {
					t.Errorf("NewRR: %v", err)
					return
				}
				m.Answer = append(m.Answer, rr)
			}
		case dns.TypeMX:
			rr, err := dns.NewRR(name + " 300 IN MX 10 mail." + name)
			if err != nil {
				t.Errorf("NewRR: %v", err)
				return
			}
			m.Answer = append(m.Answer, rr)
		case dns.TypeTXT:
			rr, err := dns.NewRR(name + ` 300 IN TXT "v=spf1 include:_spf.example.com ~all"`)
			if err != nil {
				t.Errorf("NewRR: %v", err)
				return
			}
			m.Answer = append(m.Answer, rr)
		}
		w.WriteMsg(m) //nolint:errcheck
	})
}

func TestNetworkAnalyzerAnalyze(t *testing.T) {
	t.Parallel()

	dnsAddr := startDNSServer(t, answeringHandler(t))

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Server", "nginx")
		w.Header().Set("X-Powered-By", "PHP/8.2")
		w.Header().Set("X-Frame-Options", "DENY")
		w.Header().Set("Content-Security-Policy", "default-src 'self'")
	}))
	defer srv.Close()

	blacklist := store.NewBlacklist([]string{"1.2.3.4"}, nil)
	a := NewNetworkAnalyzer(srv.Client(), dnsAddr, blacklist, "test-agent", testLogger())

	fv := model.NewFeatureVector(srv.URL+"/", nil)
	if err := a.Analyze(context.Background(), srv.URL+"/", fv); err != nil {
		t.Fatalf("Analyze() = %v, want nil", err)
	}

	if fv.DNSResolved != 1 || fv.IPCount != 2 {
		t.Errorf("dns = (%d, %d), want (1, 2)", fv.DNSResolved, fv.IPCount)
	}
	if fv.FirstIP != "1.2.3.4" {
		t.Errorf("FirstIP = %q, want 1.2.3.4", fv.FirstIP)
	}
	if fv.BlacklistedIP != 1 {
		t.Errorf("BlacklistedIP = %d, want 1", fv.BlacklistedIP)
	}
	if fv.HasMX != 1 || fv.MXCount != 1 {
		t.Errorf("mx = (%d, %d), want (1, 1)", fv.HasMX, fv.MXCount)
	}
	if fv.HasSPF != 1 {
		t.Errorf("HasSPF = %d, want 1", fv.HasSPF)
	}
	if fv.WebAccessible != 1 || fv.HTTPStatus != http.StatusOK {
		t.Errorf("probe = (%d, %d), want (1, 200)", fv.WebAccessible, fv.HTTPStatus)
	}
	if fv.ResponseTime < 0 {
		t.Errorf("ResponseTime = %v, want >= 0", fv.ResponseTime)
	}
	if fv.ServerHeader != "nginx" || fv.PoweredBy != "PHP/8.2" {
		t.Errorf("headers = (%q, %q)", fv.ServerHeader, fv.PoweredBy)
	}
	if fv.XFrameOptions != 1 || fv.CSP != 1 {
		t.Errorf("XFrameOptions/CSP = %d/%d, want 1/1", fv.XFrameOptions, fv.CSP)
	}
	if fv.HSTS != 0 || fv.XContentType != 0 || fv.XXSSProtection != 0 {
		t.Error("absent security headers must stay 0")
	}
}

func TestNetworkAnalyzerDNSFailure(t *testing.T) {
	t.Parallel()

	// Server answers nothing, so no name resolves.
	dnsAddr := startDNSServer(t, dns.HandlerFunc(func(w dns.ResponseWriter, r *dns.Msg) {
		m := new(dns.Msg)
		m.SetReply(r)
		m.Rcode = dns.RcodeNameError
		w.WriteMsg(m) //nolint:errcheck
	}))

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {}))
	defer srv.Close()

	a := NewNetworkAnalyzer(srv.Client(), dnsAddr, store.NewBlacklist(nil, nil), "test-agent", testLogger())
	fv := model.NewFeatureVector(srv.URL+"/", nil)
	if err := a.Analyze(context.Background(), srv.URL+"/", fv); err != nil {
		t.Fatal(err)
	}

	if fv.DNSResolved != 0 || fv.IPCount != 0 || fv.FirstIP != "" {
		t.Errorf("dns block = (%d, %d, %q), want defaults", fv.DNSResolved, fv.IPCount, fv.FirstIP)
	}
	// The HEAD probe still ran.
	if fv.WebAccessible != 1 {
		t.Errorf("WebAccessible = %d, want 1", fv.WebAccessible)
	}
}

func TestNetworkAnalyzerProbeFailureClearsBlacklistedIP(t *testing.T) {
	t.Parallel()

	dnsAddr := startDNSServer(t, answeringHandler(t))

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {}))
	client := srv.Client()
	target := srv.URL + "/"
	srv.Close()

	blacklist := store.NewBlacklist([]string{"1.2.3.4"}, nil)
	a := NewNetworkAnalyzer(client, dnsAddr, blacklist, "test-agent", testLogger())

	fv := model.NewFeatureVector(target, nil)
	if err := a.Analyze(context.Background(), target, fv); err != nil {
		t.Fatal(err)
	}

	if fv.WebAccessible != 0 || fv.ResponseTime != -1 || fv.HTTPStatus != 0 {
		t.Errorf("probe = (%d, %v, %d), want failure defaults", fv.WebAccessible, fv.ResponseTime, fv.HTTPStatus)
	}
	if fv.BlacklistedIP != 0 {
		t.Errorf("BlacklistedIP = %d, want 0 after failed probe", fv.BlacklistedIP)
	}
}
