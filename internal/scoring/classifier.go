package scoring

import (
	"fmt"
	"log/slog"

	"github.com/riskhound/riskhound/internal/model"
)

// uncalibratedScore is used when the classifier yields no usable
// probability for the positive class.
const uncalibratedScore = 50

// ClassifierScorer scores with a trained model over the fixed-order
// numeric vector, falling back to the rule strategy when the model
// errors.
type ClassifierScorer struct {
	classifier Classifier
	fallback   *RuleScorer
	logger     *slog.Logger
}

// NewClassifierScorer creates the classifier strategy.
func NewClassifierScorer(classifier Classifier, logger *slog.Logger) *ClassifierScorer {
	if logger == nil {
		logger = slog.Default()
	}
	return &ClassifierScorer{
		classifier: classifier,
		fallback:   NewRuleScorer(),
		logger:     logger,
	}
}

// Score implements Strategy.
//
// The score is the positive-class probability scaled to [0,100], or 50
// when the probability is uncalibrated (outside [0,1]). A positive
// prediction maps to HIGH above 70 and MEDIUM otherwise; a negative
// prediction is always LOW regardless of score.
func (s *ClassifierScorer) Score(fv *model.FeatureVector) model.RiskAssessment {
	class, probability, err := s.classifier.Predict(fv.ModelVector())
	if err != nil {
		s.logger.Warn("classifier prediction failed, falling back to rules",
			"url", fv.URL, "error", err)
		return s.fallback.Score(fv)
	}

	score := uncalibratedScore
	if probability >= 0 && probability <= 1 {
		score = int(probability * 100)
	}

	var tier model.Tier
	switch {
	case class == 1 && score > 70:
		tier = model.TierHigh
	case class == 1:
		tier = model.TierMedium
	default:
		tier = model.TierLow
	}

	assessment := newAssessment(fv, score, []string{
		fmt.Sprintf("模型评估违法内容概率为 %d%%", score),
	})
	assessment.Tier = tier
	return assessment
}
