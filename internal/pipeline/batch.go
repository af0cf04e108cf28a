package pipeline

import (
	"context"
	"fmt"
	"log/slog"
	"maps"
	"slices"
	"strings"

	"golang.org/x/sync/errgroup"

	"github.com/riskhound/riskhound/internal/model"
	"github.com/riskhound/riskhound/internal/scoring"
	"github.com/riskhound/riskhound/internal/store"
)

// Orchestrator fans the per-URL pipeline out over a batch of targets
// with bounded concurrency.
//
// Design decision: Workers share one pipeline instance instead of each
// building their own because steps are stateless after construction;
// everything mutable lives in the per-target feature vector.
type Orchestrator struct {
	pipeline *Pipeline
	scorer   scoring.Strategy
	keywords *store.KeywordStore
	workers  int
	logger   *slog.Logger
}

// NewOrchestrator creates a batch orchestrator. keywords may be nil
// when no keyword source is configured; vectors then start without
// pre-seeded category counters.
func NewOrchestrator(p *Pipeline, scorer scoring.Strategy, keywords *store.KeywordStore, workers int, logger *slog.Logger) *Orchestrator {
	if workers < 1 {
		workers = 1
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Orchestrator{
		pipeline: p,
		scorer:   scorer,
		keywords: keywords,
		workers:  workers,
		logger:   logger,
	}
}

// NormalizeTarget prefixes bare hosts with http:// so every target is
// a fetchable URL. Already-schemed targets pass through unchanged.
func NormalizeTarget(target string) string {
	target = strings.TrimSpace(target)
	if strings.HasPrefix(target, "http://") || strings.HasPrefix(target, "https://") {
		return target
	}
	return "http://" + target
}

// Run assesses every target and returns exactly one assessment per
// input, in input order. Individual failures become FAILED assessments;
// Run itself never fails.
func (o *Orchestrator) Run(ctx context.Context, targets []string) ([]*model.RiskAssessment, model.BatchSummary) {
	results := make([]*model.RiskAssessment, len(targets))

	// One dictionary snapshot for the whole batch so every vector has
	// the same category shape.
	var categories []string
	if o.keywords != nil {
		if dict, err := o.keywords.Categories(ctx); err == nil {
			categories = slices.Sorted(maps.Keys(dict))
		} else {
			o.logger.Warn("keyword dictionary unavailable for batch", "error", err)
		}
	}

	g := new(errgroup.Group)
	g.SetLimit(o.workers)

	for i, target := range targets {
		g.Go(func() error {
			results[i] = o.assess(ctx, target, categories)
			return nil
		})
	}

	// Workers convert their own failures to FAILED assessments and
	// never return an error.
	_ = g.Wait()

	return results, model.Summarize(results)
}

// assess runs the pipeline and scorer for one target. A panic anywhere
// in the pipeline is converted into a FAILED assessment so a single bad
// page cannot take down the batch.
func (o *Orchestrator) assess(ctx context.Context, target string, categories []string) (result *model.RiskAssessment) {
	normalized := NormalizeTarget(target)
	fv := model.NewFeatureVector(normalized, categories)

	defer func() {
		if r := recover(); r != nil {
			o.logger.Error("assessment panicked",
				"url", normalized,
				"panic", r,
			)
			result = model.NewFailedAssessment(normalized, fv, fmt.Errorf("panic: %v", r))
		}
	}()

	if err := o.pipeline.Execute(ctx, normalized, fv); err != nil {
		return model.NewFailedAssessment(normalized, fv, err)
	}

	assessment := o.scorer.Score(fv)
	return &assessment
}
