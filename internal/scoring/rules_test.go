package scoring

import (
	"slices"
	"testing"

	"github.com/riskhound/riskhound/internal/model"
)

// healthyVector returns a vector for a reachable, TLS-enabled site with
// every trust signal present and no risk signal fired.
func healthyVector() *model.FeatureVector {
	fv := model.NewFeatureVector("https://example.com/", nil)
	fv.DNSResolved = 1
	fv.IPCount = 1
	fv.WebAccessible = 1
	fv.HTTPStatus = 200
	fv.ResponseTime = 0.5
	fv.HasSSL = 1
	fv.SSLValid = 1
	fv.TrustedCA = 1
	fv.CertValidDays = 200
	fv.HasContactInfo = 1
	fv.HasPrivacyPolicy = 1
	fv.HasMX = 1
	fv.DomainAgeDays = 1000
	fv.HSTS = 1
	fv.XFrameOptions = 1
	fv.XContentType = 1
	return fv
}

func TestRuleScorerHealthySite(t *testing.T) {
	t.Parallel()

	assessment := NewRuleScorer().Score(healthyVector())

	// Only trust signals fire; the raw total is negative and clamps to 0.
	if assessment.Score != 0 {
		t.Errorf("Score = %d, want 0", assessment.Score)
	}
	if assessment.Tier != model.TierLow {
		t.Errorf("Tier = %v, want LOW", assessment.Tier)
	}
	if len(assessment.Factors) != 5 {
		t.Errorf("len(Factors) = %d, want 5 trust factors: %v", len(assessment.Factors), assessment.Factors)
	}
}

func TestRuleScorerDefaultVector(t *testing.T) {
	t.Parallel()

	// A vector left entirely at extraction defaults describes an
	// unreachable, unresolvable site with no certificate: the fired
	// rules sum past 100 and clamp.
	assessment := NewRuleScorer().Score(model.NewFeatureVector("http://example.invalid/", nil))

	if assessment.Score != 100 {
		t.Errorf("Score = %d, want 100", assessment.Score)
	}
	if assessment.Tier != model.TierHigh {
		t.Errorf("Tier = %v, want HIGH", assessment.Tier)
	}
}

func TestRuleScorerBlacklistFactor(t *testing.T) {
	t.Parallel()

	fv := healthyVector()
	fv.InBlacklist = 1
	assessment := NewRuleScorer().Score(fv)

	if !slices.Contains(assessment.Factors, "域名在已知恶意域名黑名单中") {
		t.Errorf("Factors = %v, want blacklist factor", assessment.Factors)
	}
	// +50 blacklist, -46 trust signals.
	if assessment.Score != 4 {
		t.Errorf("Score = %d, want 4", assessment.Score)
	}
}

func TestRuleScorerPhishingDomain(t *testing.T) {
	t.Parallel()

	// Lexically hostile domain on an otherwise healthy site: entropy,
	// brand similarity, and the phishing flag fire; the suspicious TLD
	// itself carries no rule.
	fv := healthyVector()
	fv.Entropy = 4.5
	fv.SuspiciousTLD = 1
	fv.PotentialPhishing = 1
	fv.BrandSimilarity = 0.85
	assessment := NewRuleScorer().Score(fv)

	// +25 phishing, +20 similarity, +15 entropy, -46 trust signals.
	if assessment.Score != 14 {
		t.Errorf("Score = %d, want 14", assessment.Score)
	}
}

func TestRuleScorerSensitiveContentSteps(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		count int
		want  int
	}{
		{"none", 0, 0},
		{"few", 3, 10},
		{"more", 7, 20},
		{"many", 15, 30},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			base := NewRuleScorer().Score(healthyVector()).Score
			fv := healthyVector()
			fv.SensitiveKeywordCount = tt.count
			got := NewRuleScorer().Score(fv).Score

			if got-base != tt.want {
				t.Errorf("delta = %d, want %d", got-base, tt.want)
			}
		})
	}
}

func TestRuleScorerSubpageRules(t *testing.T) {
	t.Parallel()

	fv := healthyVector()
	fv.HasSensitiveSubpage = 1
	fv.SuspiciousSubpages = 3
	fv.AvgSubpageRisk = 60
	assessment := NewRuleScorer().Score(fv)

	// +30 sensitive subpage, +30 for three suspicious subpages, +15
	// average, -46 trust signals.
	if assessment.Score != 29 {
		t.Errorf("Score = %d, want 29", assessment.Score)
	}
	if !slices.Contains(assessment.Factors, "发现 3 个可疑子页面") {
		t.Errorf("Factors = %v, want counted subpage factor", assessment.Factors)
	}
}

func TestRuleScorerCertSentinelFires(t *testing.T) {
	t.Parallel()

	// CertValidDays stays at its -1 sentinel when no certificate was
	// inspected; the expiry rule fires on it like on a real short value.
	fv := healthyVector()
	fv.CertValidDays = -1
	with := NewRuleScorer().Score(fv).Score

	fv2 := healthyVector()
	fv2.CertValidDays = 29
	short := NewRuleScorer().Score(fv2).Score

	if with != short {
		t.Errorf("sentinel score %d != short-expiry score %d", with, short)
	}
}

func TestRuleScorerDeterministic(t *testing.T) {
	t.Parallel()

	fv := model.NewFeatureVector("http://secure-login-bank.tk/", nil)
	fv.SuspiciousCombo = 3
	fv.SensitiveKeywordCount = 8
	fv.HasLoginForm = 1

	s := NewRuleScorer()
	first := s.Score(fv)
	second := s.Score(fv)

	if first.Score != second.Score || first.Tier != second.Tier {
		t.Errorf("non-deterministic score: %d/%v vs %d/%v",
			first.Score, first.Tier, second.Score, second.Tier)
	}
	if !slices.Equal(first.Factors, second.Factors) {
		t.Errorf("non-deterministic factors: %v vs %v", first.Factors, second.Factors)
	}
}

func TestRuleScorerClampUpper(t *testing.T) {
	t.Parallel()

	fv := model.NewFeatureVector("http://bad.example.com/", nil)
	fv.InBlacklist = 1
	fv.HomographAttack = 1
	fv.BlacklistedIP = 1
	fv.HasSensitiveSubpage = 1
	fv.SuspiciousSubpages = 10

	assessment := NewRuleScorer().Score(fv)
	if assessment.Score != 100 {
		t.Errorf("Score = %d, want clamp at 100", assessment.Score)
	}
	if assessment.Tier != model.TierHigh {
		t.Errorf("Tier = %v, want HIGH", assessment.Tier)
	}
}
