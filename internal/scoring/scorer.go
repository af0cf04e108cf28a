package scoring

import (
	"time"

	"github.com/riskhound/riskhound/internal/model"
)

// Strategy scores a fully extracted feature vector.
//
// Design decision: Strategies return a complete assessment rather than
// bare numbers because the factor list is produced during rule
// evaluation; assembling it afterward would force a second pass over
// the same predicates and risk the two drifting apart.
type Strategy interface {
	// Score evaluates the vector and returns the assessment. It must be
	// deterministic: identical vectors yield identical assessments up to
	// the timestamp.
	Score(fv *model.FeatureVector) model.RiskAssessment
}

// Classifier is the contract a trained model must satisfy to drive the
// classifier strategy.
type Classifier interface {
	// Predict takes the fixed-order numeric vector (model.ModelVector)
	// and returns the predicted class (1 for illegal content) and the
	// calibrated probability of the positive class. A probability
	// outside [0,1] marks the prediction as uncalibrated.
	Predict(vector []float64) (class int, probability float64, err error)
}

// newAssessment assembles an assessment from a scoring outcome.
func newAssessment(fv *model.FeatureVector, score int, factors []string) model.RiskAssessment {
	return model.RiskAssessment{
		URL:       fv.URL,
		Tier:      model.TierForScore(score),
		Score:     score,
		Factors:   factors,
		Timestamp: time.Now(),
		Features:  fv.Clone(),
	}
}
