package analyzer

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/riskhound/riskhound/internal/crawler"
	"github.com/riskhound/riskhound/internal/model"
	"github.com/riskhound/riskhound/internal/store"
)

// Subpage mini-score weights. These are part of the assessment
// semantics; the per-subpage score feeds the top-level rules through
// the suspicious-subpage count and the average.
const (
	subpageRiskHighKeywords   = 80 // more than 5 keyword hits
	subpageRiskMediumKeywords = 50 // more than 2 keyword hits
	subpageRiskPlaintextLogin = 30 // password form served over http
	subpageRiskHeavyScripts   = 20 // more than 5 scripts
	subpageSuspiciousCutoff   = 60 // mini-score above this marks the subpage
)

// SubpageAnalyzer sweeps the target's same-origin subpages and records
// the aggregated subpage risk features.
type SubpageAnalyzer struct {
	spider   *crawler.Spider
	keywords *store.KeywordStore
	logger   *slog.Logger
}

// NewSubpageAnalyzer creates a SubpageAnalyzer over the given spider
// and keyword store.
func NewSubpageAnalyzer(spider *crawler.Spider, keywords *store.KeywordStore, logger *slog.Logger) *SubpageAnalyzer {
	if logger == nil {
		logger = slog.Default()
	}
	return &SubpageAnalyzer{
		spider:   spider,
		keywords: keywords,
		logger:   logger,
	}
}

// Name implements Analyzer.
func (a *SubpageAnalyzer) Name() string { return "subpage" }

// Analyze implements Analyzer.
//
// The average risk divides by the number of collected candidates, not
// the number of successful fetches: a site whose subpages cannot be
// fetched dilutes its own average instead of inflating it.
func (a *SubpageAnalyzer) Analyze(ctx context.Context, target string, fv *model.FeatureVector) error {
	result, err := a.spider.Crawl(ctx, target)
	if err != nil {
		return fmt.Errorf("analyzer: subpage crawl %s: %w", target, err)
	}

	categories, err := a.keywords.Categories(ctx)
	if err != nil {
		a.logger.Warn("keyword dictionary unavailable for subpage sweep", "error", err)
		categories = map[string][]string{}
	}

	fv.SubpageCount = len(result.SubpageURLs)
	totalRisk := 0

	for _, fetched := range result.Pages {
		record := a.scoreSubpage(fetched, categories, fv)
		totalRisk += record.RiskScore
		if record.RiskScore > subpageSuspiciousCutoff {
			fv.SuspiciousSubpages++
		}
		fv.Subpages = append(fv.Subpages, record)
	}

	if fv.SubpageCount > 0 {
		fv.AvgSubpageRisk = float64(totalRisk) / float64(fv.SubpageCount)
	}
	return nil
}

// scoreSubpage computes one subpage's mini-score and keyword tally,
// updating the vector's aggregate keyword map and sensitive flag.
func (a *SubpageAnalyzer) scoreSubpage(fetched crawler.FetchedPage, categories map[string][]string, fv *model.FeatureVector) model.SubpageRecord {
	text := strings.ToLower(fetched.Page.Text)

	keywordCount := 0
	keywordStats := make(map[string]int, len(categories))
	for category, keywords := range categories {
		count := 0
		for _, kw := range keywords {
			if strings.Contains(text, strings.ToLower(kw)) {
				count++
			}
		}
		keywordStats[category] = count
		keywordCount += count
	}

	risk := 0
	switch {
	case keywordCount > 5:
		risk = subpageRiskHighKeywords
		fv.HasSensitiveSubpage = 1
	case keywordCount > 2:
		risk = subpageRiskMediumKeywords
	}

	hasLoginForm := fetched.Page.HasPasswordInput
	if hasLoginForm && !strings.HasPrefix(fetched.URL, "https://") {
		risk += subpageRiskPlaintextLogin
	}
	if fetched.Page.ScriptCount > 5 {
		risk += subpageRiskHeavyScripts
	}
	risk = min(100, max(0, risk))

	for category, count := range keywordStats {
		if count > 0 {
			fv.SubpageKeywords[category] += count
		}
	}

	return model.SubpageRecord{
		URL:          fetched.URL,
		RiskScore:    risk,
		KeywordCount: keywordCount,
		HasLoginForm: hasLoginForm,
		ScriptCount:  fetched.Page.ScriptCount,
	}
}
