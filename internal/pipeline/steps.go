package pipeline

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/riskhound/riskhound/internal/analyzer"
	"github.com/riskhound/riskhound/internal/config"
	"github.com/riskhound/riskhound/internal/crawler"
	"github.com/riskhound/riskhound/internal/model"
	"github.com/riskhound/riskhound/internal/store"
)

// AnalyzeStep adapts a single analyzer into a pipeline step.
//
// Design decision: The domain, whois, network, and subpage analyzers
// already absorb their own soft failures and leave sentinel defaults in
// the vector, so the step passes their errors straight through; an
// error here means something structural (an unparseable target) rather
// than a network condition.
type AnalyzeStep struct {
	analyzer analyzer.Analyzer
}

// NewAnalyzeStep wraps an analyzer as a pipeline step.
func NewAnalyzeStep(a analyzer.Analyzer) *AnalyzeStep {
	return &AnalyzeStep{analyzer: a}
}

// Name returns the wrapped analyzer's name.
func (s *AnalyzeStep) Name() string {
	return s.analyzer.Name()
}

// Do executes the wrapped analyzer.
func (s *AnalyzeStep) Do(ctx context.Context, target string, fv *model.FeatureVector) error {
	return s.analyzer.Analyze(ctx, target, fv)
}

// ContentStep runs the content analyzer and converts fetch failures
// into their documented feature defaults.
//
// Design decision: A failed page fetch is not a pipeline failure: the
// network step still probes reachability independently, and the scorer
// reads the content block's reset defaults (no title, no keywords, no
// certificate) together with the network block's accessibility flags.
type ContentStep struct {
	analyzer *analyzer.ContentAnalyzer
	logger   *slog.Logger
}

// NewContentStep creates the content extraction step.
func NewContentStep(a *analyzer.ContentAnalyzer, logger *slog.Logger) *ContentStep {
	if logger == nil {
		logger = slog.Default()
	}
	return &ContentStep{analyzer: a, logger: logger}
}

// Name returns the step name.
func (s *ContentStep) Name() string {
	return s.analyzer.Name()
}

// Do executes the content analyzer. On failure the content block is
// reset to its defaults and the error is swallowed.
func (s *ContentStep) Do(ctx context.Context, target string, fv *model.FeatureVector) error {
	if err := s.analyzer.Analyze(ctx, target, fv); err != nil {
		s.logger.Debug("content extraction failed, applying defaults",
			"url", target, "error", err)
		fv.ResetContentDefaults()
	}
	return nil
}

// DefaultPipeline creates a pipeline with every extraction step wired
// from the configuration, in the fixed order the scorer expects the
// vector to be filled: domain, whois, content (with the TLS probe),
// network, subpages.
//
// Design decision: We provide a default pipeline because:
// 1. Most users want all checks
// 2. Reduces boilerplate in CLI
// 3. Ensures consistent ordering
func DefaultPipeline(cfg *config.Config, blacklist *store.Blacklist, keywords *store.KeywordStore, logger *slog.Logger, opts ...Option) *Pipeline {
	if logger == nil {
		logger = slog.Default()
	}

	pageClient := &http.Client{Timeout: cfg.Timeout}
	headClient := &http.Client{
		Timeout: cfg.HeadTimeout,
		// The probe records the first hop's status code, so redirects
		// are not followed.
		CheckRedirect: func(*http.Request, []*http.Request) error {
			return http.ErrUseLastResponse
		},
	}
	subpageClient := &http.Client{Timeout: cfg.SubpageTimeout}

	prober := analyzer.NewTLSProber(cfg.Timeout, cfg.TrustedCAs)
	spider := crawler.NewSpider(subpageClient,
		crawler.WithMaxSubpages(cfg.MaxSubpages),
		crawler.WithSpiderUserAgent(cfg.UserAgent),
		crawler.WithSpiderMaxBodySize(cfg.MaxBodySize),
	)

	p := New(append([]Option{WithLogger(logger)}, opts...)...)
	p.AddSteps(
		NewAnalyzeStep(analyzer.NewDomainAnalyzer(cfg.SuspiciousTLDs, cfg.BrandKeywords, cfg.SuspiciousCombos, blacklist)),
		NewAnalyzeStep(analyzer.NewWhoisAnalyzer(nil, cfg.SuspiciousRegistrars, cfg.Timeout, logger)),
		NewContentStep(analyzer.NewContentAnalyzer(pageClient, keywords, prober, cfg.UserAgent, cfg.MaxBodySize, logger), logger),
		NewAnalyzeStep(analyzer.NewNetworkAnalyzer(headClient, "", blacklist, cfg.UserAgent, logger)),
		NewAnalyzeStep(analyzer.NewSubpageAnalyzer(spider, keywords, logger)),
	)

	return p
}
