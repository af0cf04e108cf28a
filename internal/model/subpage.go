package model

// SubpageRecord is the light assessment of one same-origin subpage.
// Records are owned by the parent FeatureVector's subpage block and are
// never promoted to top-level RiskAssessments.
type SubpageRecord struct {
	// URL is the normalized subpage URL.
	URL string `json:"url"`

	// RiskScore is the fixed-rule mini-score in [0,100].
	RiskScore int `json:"risk_score"`

	// KeywordCount is the raw sensitive keyword total on the subpage.
	KeywordCount int `json:"keyword_count"`

	// HasLoginForm is true when the subpage contains a password input.
	HasLoginForm bool `json:"has_login_form"`

	// ScriptCount is the number of script elements on the subpage.
	ScriptCount int `json:"script_count"`
}
