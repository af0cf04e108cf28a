package analyzer

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"unicode/utf8"

	"github.com/riskhound/riskhound/internal/crawler"
	"github.com/riskhound/riskhound/internal/model"
	"github.com/riskhound/riskhound/internal/store"
)

// contactPhrases mark a page that offers a way to reach its operator.
var contactPhrases = []string{"联系我们", "contact", "电话", "邮箱"}

// privacyPhrases mark a page that carries a privacy policy or terms.
var privacyPhrases = []string{"隐私政策", "privacy", "条款"}

// riskyScriptTokens are the inline-script APIs counted as suspicious.
var riskyScriptTokens = []string{"eval", "document.write", "unescape"}

// ContentAnalyzer fetches the target page and extracts its content
// features: size, structure, sensitive keyword hits, quality markers,
// script analysis, redirect behavior, and the TLS certificate probe.
//
// The TLS fields belong to this analyzer rather than the network one
// because the certificate is only probed when the page itself was
// fetchable; an unreachable site keeps every TLS field at its default.
type ContentAnalyzer struct {
	client      *http.Client
	keywords    *store.KeywordStore
	prober      *TLSProber
	userAgent   string
	maxBodySize int64
	logger      *slog.Logger
}

// NewContentAnalyzer creates a ContentAnalyzer. The client should
// follow redirects and carry the page fetch timeout.
func NewContentAnalyzer(client *http.Client, keywords *store.KeywordStore, prober *TLSProber, userAgent string, maxBodySize int64, logger *slog.Logger) *ContentAnalyzer {
	if logger == nil {
		logger = slog.Default()
	}
	return &ContentAnalyzer{
		client:      client,
		keywords:    keywords,
		prober:      prober,
		userAgent:   userAgent,
		maxBodySize: maxBodySize,
		logger:      logger,
	}
}

// Name implements Analyzer.
func (a *ContentAnalyzer) Name() string { return "content" }

// Analyze implements Analyzer.
func (a *ContentAnalyzer) Analyze(ctx context.Context, target string, fv *model.FeatureVector) error {
	parsed, err := url.Parse(target)
	if err != nil {
		return fmt.Errorf("analyzer: parse url %s: %w", target, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		return fmt.Errorf("analyzer: build request %s: %w", target, err)
	}
	req.Header.Set("User-Agent", a.userAgent)
	req.Header.Set("Accept", "text/html,application/xhtml+xml,application/xml;q=0.9,*/*;q=0.8")

	resp, err := a.client.Do(req)
	if err != nil {
		return fmt.Errorf("analyzer: fetch %s: %w", target, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, a.maxBodySize))
	if err != nil {
		return fmt.Errorf("analyzer: read body %s: %w", target, err)
	}

	parser, err := crawler.NewParser(target)
	if err != nil {
		return fmt.Errorf("analyzer: parser for %s: %w", target, err)
	}
	page, err := parser.Parse(bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("analyzer: parse html %s: %w", target, err)
	}

	fv.ContentLength = len(body)
	fv.TextLength = utf8.RuneCountInString(page.Text)
	fv.ImageCount = len(page.ImageSrcs)
	fv.LinkCount = page.AnchorCount
	fv.FormCount = page.FormCount

	external := 0
	for _, href := range page.RawHrefs {
		if strings.HasPrefix(href, "http") && !strings.Contains(href, parsed.Host) {
			external++
		}
	}
	fv.ExternalLinks = external

	a.countKeywords(ctx, page.Text, fv)

	fv.HasTitle = boolFlag(page.Title != "")
	fv.TitleLength = utf8.RuneCountInString(page.Title)
	_, hasDescription := page.MetaTags["description"]
	fv.HasDescription = boolFlag(hasDescription)
	_, hasKeywords := page.MetaTags["keywords"]
	fv.HasKeywords = boolFlag(hasKeywords)
	_, hasRobots := page.MetaTags["robots"]
	fv.HasRobots = boolFlag(hasRobots)

	text := strings.ToLower(page.Text)
	fv.HasLoginForm = boolFlag(page.HasPasswordInput)
	fv.HasContactInfo = boolFlag(containsAny(text, contactPhrases))
	fv.HasPrivacyPolicy = boolFlag(containsAny(text, privacyPhrases))

	suspiciousImages := 0
	for _, src := range page.ImageSrcs {
		if src == "" || strings.HasPrefix(src, "data:") {
			suspiciousImages++
		}
	}
	fv.SuspiciousImages = suspiciousImages

	fv.ScriptCount = page.ScriptCount
	suspiciousScripts := 0
	for _, script := range page.InlineScripts {
		if containsAny(strings.ToLower(script), riskyScriptTokens) {
			suspiciousScripts++
		}
	}
	fv.SuspiciousScripts = suspiciousScripts

	fv.RedirectCount = countRedirects(resp)
	fv.FinalURL = resp.Request.URL.String()
	fv.DomainChanged = boolFlag(!strings.EqualFold(resp.Request.URL.Host, parsed.Host))

	// The certificate probe runs only for pages that were fetchable;
	// its own failures fall back to the TLS defaults, not an error.
	a.prober.Probe(ctx, parsed.Hostname(), fv)

	return nil
}

// countKeywords tallies sensitive keyword hits per category over the
// page text. A keyword dictionary failure degrades to zero hits.
func (a *ContentAnalyzer) countKeywords(ctx context.Context, text string, fv *model.FeatureVector) {
	categories, err := a.keywords.Categories(ctx)
	if err != nil {
		a.logger.Warn("keyword dictionary unavailable, skipping keyword features", "error", err)
		categories = map[string][]string{}
	}

	lower := strings.ToLower(text)
	total := 0
	for category, keywords := range categories {
		count := 0
		for _, kw := range keywords {
			if strings.Contains(lower, strings.ToLower(kw)) {
				count++
			}
		}
		fv.SensitiveCategories[category] = count
		total += count
	}
	fv.SensitiveKeywordCount = total

	words := len(strings.Fields(lower))
	if words < 1 {
		words = 1
	}
	fv.SensitiveKeywordRatio = round2(float64(total) / float64(words))
}

// countRedirects walks the response chain back to the original request.
func countRedirects(resp *http.Response) int {
	count := 0
	for req := resp.Request; req != nil && req.Response != nil; req = req.Response.Request {
		count++
	}
	return count
}

// containsAny reports whether s contains any of the given substrings.
func containsAny(s string, tokens []string) bool {
	for _, token := range tokens {
		if strings.Contains(s, token) {
			return true
		}
	}
	return false
}
