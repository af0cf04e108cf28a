package analyzer

import (
	"context"

	"github.com/riskhound/riskhound/internal/model"
)

// Analyzer fills one block of a feature vector for a target URL.
//
// Design decision: Analyzers mutate a shared vector rather than
// returning partial results because the vector's sentinel defaults are
// the failure contract: whatever an analyzer does not touch keeps its
// documented default, and the pipeline can run analyzers independently
// without a merge step.
type Analyzer interface {
	// Name identifies the analyzer in logs.
	Name() string

	// Analyze extracts this analyzer's features for the target URL into fv.
	Analyze(ctx context.Context, target string, fv *model.FeatureVector) error
}
