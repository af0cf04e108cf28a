package crawler

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
)

// Spider collects and fetches same-origin subpages of a seed URL.
// It fetches the seed page, extracts internal links as subpage
// candidates, and then fetches each candidate once.
//
// Design decision: We collect the full candidate list before fetching
// any subpage rather than interleaving discovery and fetching because:
//  1. The subpage cap applies to discovered candidates, making the
//     crawl size predictable before the first subpage request
//  2. Subpages found on subpages are out of scope, only links on the
//     seed page count
//  3. A deterministic candidate list makes results reproducible
type Spider struct {
	// client is the HTTP client used for all fetches.
	client *http.Client

	// maxSubpages caps the number of subpage candidates collected.
	maxSubpages int

	// userAgent is the User-Agent header to use.
	userAgent string

	// maxBodySize limits the size of response bodies to read.
	maxBodySize int64
}

// SpiderOption configures a Spider.
type SpiderOption func(*Spider)

// WithMaxSubpages sets the subpage candidate cap.
func WithMaxSubpages(n int) SpiderOption {
	return func(s *Spider) {
		s.maxSubpages = n
	}
}

// WithSpiderUserAgent sets a custom User-Agent header.
func WithSpiderUserAgent(ua string) SpiderOption {
	return func(s *Spider) {
		s.userAgent = ua
	}
}

// WithSpiderMaxBodySize sets the maximum response body size.
func WithSpiderMaxBodySize(size int64) SpiderOption {
	return func(s *Spider) {
		s.maxBodySize = size
	}
}

// NewSpider creates a new Spider with the given HTTP client.
//
// Design decision: We require an external client because:
//  1. Timeout policy belongs to the caller
//  2. Consistent with the other fetching components
//  3. Allows httptest clients in tests
func NewSpider(client *http.Client, opts ...SpiderOption) *Spider {
	s := &Spider{
		client:      client,
		maxSubpages: 50,
		userAgent:   "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/91.0.4472.124 Safari/537.36",
		maxBodySize: 5 * 1024 * 1024, // 5MB
	}

	for _, opt := range opts {
		opt(s)
	}

	return s
}

// FetchedPage is one successfully fetched and parsed subpage.
type FetchedPage struct {
	// URL is the normalized subpage URL.
	URL string

	// Page holds the parsed content.
	Page *ParseResult
}

// CrawlResult is the outcome of a subpage crawl.
type CrawlResult struct {
	// SubpageURLs lists every collected candidate, fetched or not.
	SubpageURLs []string

	// Pages holds the subpages that were fetched and parsed. Failed
	// fetches are skipped, so len(Pages) <= len(SubpageURLs).
	Pages []FetchedPage
}

// Crawl fetches the seed page, collects its same-origin links as
// subpage candidates, and fetches each candidate. Individual subpage
// failures are skipped; only a failed seed fetch is an error.
func (s *Spider) Crawl(ctx context.Context, seedURL string) (*CrawlResult, error) {
	candidates, err := s.CollectSubpages(ctx, seedURL)
	if err != nil {
		return nil, err
	}

	result := &CrawlResult{
		SubpageURLs: candidates,
		Pages:       make([]FetchedPage, 0, len(candidates)),
	}

	for _, candidate := range candidates {
		select {
		case <-ctx.Done():
			return result, ctx.Err()
		default:
		}

		page, err := s.fetchPage(ctx, candidate)
		if err != nil {
			// Some subpages will fail; the crawl continues.
			continue
		}
		result.Pages = append(result.Pages, FetchedPage{URL: candidate, Page: page})
	}

	return result, nil
}

// CollectSubpages fetches the seed page and returns its same-origin
// links, normalized and deduplicated, up to the subpage cap. The seed
// URL itself is excluded.
func (s *Spider) CollectSubpages(ctx context.Context, seedURL string) ([]string, error) {
	seed, err := url.Parse(seedURL)
	if err != nil {
		return nil, fmt.Errorf("invalid seed URL: %w", err)
	}

	page, err := s.fetchPage(ctx, seedURL)
	if err != nil {
		return nil, fmt.Errorf("fetch seed page: %w", err)
	}

	seen := make(map[string]bool)
	candidates := make([]string, 0)
	for _, link := range page.InternalLinks {
		u, err := url.Parse(link)
		if err != nil {
			continue
		}
		if !strings.EqualFold(u.Host, seed.Host) {
			continue
		}

		// Drop query and fragment so /page?a=1 and /page?a=2 count once.
		normalized := u.Scheme + "://" + u.Host + u.Path
		if normalized == seedURL || seen[normalized] {
			continue
		}
		seen[normalized] = true
		candidates = append(candidates, normalized)

		if len(candidates) >= s.maxSubpages {
			break
		}
	}

	return candidates, nil
}

// fetchPage fetches a single page and parses its content.
func (s *Spider) fetchPage(ctx context.Context, pageURL string) (*ParseResult, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, pageURL, nil)
	if err != nil {
		return nil, err
	}

	req.Header.Set("User-Agent", s.userAgent)
	req.Header.Set("Accept", "text/html,application/xhtml+xml,application/xml;q=0.9,*/*;q=0.8")
	req.Header.Set("Accept-Language", "zh-CN,zh;q=0.9,en;q=0.8")

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, s.maxBodySize))
	if err != nil {
		return nil, err
	}

	parser, err := NewParser(pageURL)
	if err != nil {
		return nil, err
	}
	return parser.Parse(bytes.NewReader(body))
}
