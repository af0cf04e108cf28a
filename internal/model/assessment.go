package model

import "time"

// Tier is the coarse-grained risk classification derived from the
// numeric score.
//
// Design decision: We use iota-based constants rather than string
// constants for efficient comparison and sorting; String() provides the
// serialized form.
type Tier int

const (
	// TierLow marks sites scoring below 40.
	TierLow Tier = iota

	// TierMedium marks sites scoring 40 to 69.
	TierMedium

	// TierHigh marks sites scoring 70 and above.
	TierHigh

	// TierFailed marks inputs whose whole pipeline failed. This is an
	// expected outcome, not an abort condition.
	TierFailed
)

// String returns the serialized tier name.
func (t Tier) String() string {
	switch t {
	case TierLow:
		return "LOW"
	case TierMedium:
		return "MEDIUM"
	case TierHigh:
		return "HIGH"
	case TierFailed:
		return "FAILED"
	default:
		return "UNKNOWN"
	}
}

// MarshalText implements encoding.TextMarshaler so tiers serialize as
// their names in JSON and CSV output.
func (t Tier) MarshalText() ([]byte, error) {
	return []byte(t.String()), nil
}

// ParseTier maps a serialized tier name back to its value. Unknown
// labels come back as TierFailed so a corrupted row never reads as safe.
func ParseTier(s string) Tier {
	switch s {
	case "LOW":
		return TierLow
	case "MEDIUM":
		return TierMedium
	case "HIGH":
		return TierHigh
	default:
		return TierFailed
	}
}

// TierForScore maps a clamped score to its tier using the fixed 70/40
// thresholds. The mapping is deterministic and monotonic in the score.
func TierForScore(score int) Tier {
	switch {
	case score >= 70:
		return TierHigh
	case score >= 40:
		return TierMedium
	default:
		return TierLow
	}
}

// RiskAssessment is the scoring engine's verdict for one URL.
// It is produced exactly once per input and never mutated afterwards.
type RiskAssessment struct {
	// URL is the normalized input URL.
	URL string `json:"url"`

	// Tier is the coarse risk classification.
	Tier Tier `json:"risk_level"`

	// Score is the numeric risk score, always clamped to [0,100].
	Score int `json:"risk_score"`

	// Factors lists the human-readable contributions of every fired rule,
	// in fixed rule-evaluation order so output is diffable across runs.
	Factors []string `json:"factors"`

	// Timestamp records when the assessment was produced.
	Timestamp time.Time `json:"timestamp"`

	// Features is the full merged vector the score was derived from,
	// carried for audit and storage.
	Features *FeatureVector `json:"features,omitempty"`

	// ErrorMessage carries the failure text for TierFailed assessments.
	ErrorMessage string `json:"error,omitempty"`
}

// NewFailedAssessment synthesizes the assessment the orchestrator emits
// when a whole task fails. It still carries the (possibly partial)
// feature vector for diagnosis.
func NewFailedAssessment(url string, fv *FeatureVector, err error) *RiskAssessment {
	msg := ""
	if err != nil {
		msg = err.Error()
	}
	if fv != nil {
		fv = fv.Clone()
	}
	return &RiskAssessment{
		URL:          url,
		Tier:         TierFailed,
		Score:        0,
		Factors:      []string{"检测过程中发生错误: " + msg},
		Timestamp:    time.Now(),
		Features:     fv,
		ErrorMessage: msg,
	}
}

// BatchSummary aggregates per-tier counts over a batch run.
type BatchSummary struct {
	Total  int `json:"total"`
	High   int `json:"high"`
	Medium int `json:"medium"`
	Low    int `json:"low"`
	Failed int `json:"failed"`
}

// Summarize counts assessments per tier.
func Summarize(assessments []*RiskAssessment) BatchSummary {
	s := BatchSummary{Total: len(assessments)}
	for _, a := range assessments {
		if a == nil {
			continue
		}
		switch a.Tier {
		case TierHigh:
			s.High++
		case TierMedium:
			s.Medium++
		case TierLow:
			s.Low++
		case TierFailed:
			s.Failed++
		}
	}
	return s
}
