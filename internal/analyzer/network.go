package analyzer

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/miekg/dns"

	"github.com/riskhound/riskhound/internal/model"
	"github.com/riskhound/riskhound/internal/store"
)

// securityHeaders maps response header names to their feature setters.
var securityHeaders = []string{
	"Strict-Transport-Security",
	"X-Frame-Options",
	"X-Content-Type-Options",
	"X-Xss-Protection",
	"Content-Security-Policy",
}

// NetworkAnalyzer extracts DNS and availability features: A/MX/TXT
// records, IP blacklist membership, and a timed HEAD probe with
// security header inspection.
//
// Design decision: We query DNS directly with miekg/dns instead of
// net.Resolver because we need the raw record sets: the A record count
// is itself a feature, and TXT records are scanned for SPF markers.
type NetworkAnalyzer struct {
	dnsClient  *dns.Client
	dnsServer  string
	httpClient *http.Client
	blacklist  *store.Blacklist
	userAgent  string
	logger     *slog.Logger
}

// NewNetworkAnalyzer creates a NetworkAnalyzer. The HTTP client is used
// for the HEAD probe and should carry the probe timeout and not follow
// redirects, so the first hop's status code is recorded. An empty
// dnsServer falls back to the system resolver configuration.
func NewNetworkAnalyzer(httpClient *http.Client, dnsServer string, blacklist *store.Blacklist, userAgent string, logger *slog.Logger) *NetworkAnalyzer {
	if dnsServer == "" {
		dnsServer = systemResolver()
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &NetworkAnalyzer{
		dnsClient:  new(dns.Client),
		dnsServer:  dnsServer,
		httpClient: httpClient,
		blacklist:  blacklist,
		userAgent:  userAgent,
		logger:     logger,
	}
}

// systemResolver returns the first nameserver from resolv.conf, or a
// public resolver when none can be read.
func systemResolver() string {
	conf, err := dns.ClientConfigFromFile("/etc/resolv.conf")
	if err == nil && len(conf.Servers) > 0 {
		return conf.Servers[0] + ":" + conf.Port
	}
	return "8.8.8.8:53"
}

// Name implements Analyzer.
func (a *NetworkAnalyzer) Name() string { return "network" }

// Analyze implements Analyzer.
func (a *NetworkAnalyzer) Analyze(ctx context.Context, target string, fv *model.FeatureVector) error {
	parsed, err := url.Parse(target)
	if err != nil {
		return fmt.Errorf("analyzer: parse url %s: %w", target, err)
	}

	a.resolveDNS(ctx, parsed.Hostname(), fv)
	a.probeHead(ctx, target, fv)
	return nil
}

// resolveDNS records the DNS feature block. No A records means the
// whole block stays at its defaults; MX and TXT are not queried for a
// host that does not resolve.
func (a *NetworkAnalyzer) resolveDNS(ctx context.Context, domain string, fv *model.FeatureVector) {
	ips := a.queryA(ctx, domain)
	if len(ips) == 0 {
		return
	}

	fv.DNSResolved = 1
	fv.IPCount = len(ips)
	fv.FirstIP = ips[0]
	fv.BlacklistedIP = boolFlag(a.blacklist.ContainsIP(ips[0]))

	if mxCount := a.queryMX(ctx, domain); mxCount > 0 {
		fv.HasMX = 1
		fv.MXCount = mxCount
	}
	fv.HasSPF = boolFlag(a.querySPF(ctx, domain))
}

// queryA returns the A record addresses for domain, nil on any failure.
func (a *NetworkAnalyzer) queryA(ctx context.Context, domain string) []string {
	m := new(dns.Msg)
	m.SetQuestion(dns.Fqdn(domain), dns.TypeA)
	resp, _, err := a.dnsClient.ExchangeContext(ctx, m, a.dnsServer)
	if err != nil {
		a.logger.Debug("dns A query failed", "domain", domain, "error", err)
		return nil
	}

	var ips []string
	for _, rr := range resp.Answer {
		if record, ok := rr.(*dns.A); ok {
			ips = append(ips, record.A.String())
		}
	}
	return ips
}

// queryMX returns the number of MX records for domain.
func (a *NetworkAnalyzer) queryMX(ctx context.Context, domain string) int {
	m := new(dns.Msg)
	m.SetQuestion(dns.Fqdn(domain), dns.TypeMX)
	resp, _, err := a.dnsClient.ExchangeContext(ctx, m, a.dnsServer)
	if err != nil {
		return 0
	}

	count := 0
	for _, rr := range resp.Answer {
		if _, ok := rr.(*dns.MX); ok {
			count++
		}
	}
	return count
}

// querySPF reports whether any TXT record carries an SPF marker.
func (a *NetworkAnalyzer) querySPF(ctx context.Context, domain string) bool {
	m := new(dns.Msg)
	m.SetQuestion(dns.Fqdn(domain), dns.TypeTXT)
	resp, _, err := a.dnsClient.ExchangeContext(ctx, m, a.dnsServer)
	if err != nil {
		return false
	}

	for _, rr := range resp.Answer {
		record, ok := rr.(*dns.TXT)
		if !ok {
			continue
		}
		if strings.Contains(strings.ToLower(strings.Join(record.Txt, " ")), "spf") {
			return true
		}
	}
	return false
}

// probeHead performs the timed HEAD request and records availability,
// response time, and security headers.
//
// A failed probe also clears BlacklistedIP even when DNS resolved: an
// unreachable host's IP evidence is considered stale and the
// availability rules already penalize it.
func (a *NetworkAnalyzer) probeHead(ctx context.Context, target string, fv *model.FeatureVector) {
	req, err := http.NewRequestWithContext(ctx, http.MethodHead, target, nil)
	if err != nil {
		a.applyProbeFailureDefaults(fv)
		return
	}
	req.Header.Set("User-Agent", a.userAgent)

	start := time.Now()
	resp, err := a.httpClient.Do(req)
	if err != nil {
		a.logger.Debug("head probe failed", "url", target, "error", err)
		a.applyProbeFailureDefaults(fv)
		return
	}
	defer resp.Body.Close()

	fv.ResponseTime = round2(time.Since(start).Seconds())
	fv.HTTPStatus = resp.StatusCode
	fv.WebAccessible = 1
	fv.ServerHeader = resp.Header.Get("Server")
	fv.PoweredBy = resp.Header.Get("X-Powered-By")

	present := make([]int, len(securityHeaders))
	for i, h := range securityHeaders {
		if _, ok := resp.Header[http.CanonicalHeaderKey(h)]; ok {
			present[i] = 1
		}
	}
	fv.HSTS = present[0]
	fv.XFrameOptions = present[1]
	fv.XContentType = present[2]
	fv.XXSSProtection = present[3]
	fv.CSP = present[4]
}

// applyProbeFailureDefaults records an unreachable site.
func (a *NetworkAnalyzer) applyProbeFailureDefaults(fv *model.FeatureVector) {
	fv.ResponseTime = -1
	fv.HTTPStatus = 0
	fv.WebAccessible = 0
	fv.ServerHeader = ""
	fv.PoweredBy = ""
	fv.HSTS = 0
	fv.XFrameOptions = 0
	fv.XContentType = 0
	fv.XXSSProtection = 0
	fv.CSP = 0
	fv.BlacklistedIP = 0
}
