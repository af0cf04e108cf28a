package scoring

import (
	"fmt"

	"github.com/riskhound/riskhound/internal/model"
)

// RuleScorer is the default scoring strategy: a fixed ordered rule
// table of point deltas over feature predicates.
//
// The deltas and their evaluation order are fixed configuration
// constants from the risk triage policy, not tunables; changing either
// changes every downstream tier decision. Trust signals subtract after
// all risk additions, then the total clamps to [0,100].
type RuleScorer struct{}

// NewRuleScorer creates the rule-based strategy.
func NewRuleScorer() *RuleScorer {
	return &RuleScorer{}
}

// tally accumulates the score and the per-rule factor list in rule
// order.
type tally struct {
	score   int
	factors []string
}

func (t *tally) add(points int, factor string) {
	t.score += points
	t.factors = append(t.factors, factor)
}

// Score implements Strategy.
func (s *RuleScorer) Score(fv *model.FeatureVector) model.RiskAssessment {
	t := &tally{factors: make([]string, 0, 8)}

	// Subpage rules.
	if fv.HasSensitiveSubpage == 1 {
		t.add(30, "子页面中发现高敏感内容")
	}
	if fv.SuspiciousSubpages > 0 {
		t.add(fv.SuspiciousSubpages*10, fmt.Sprintf("发现 %d 个可疑子页面", fv.SuspiciousSubpages))
	}
	if fv.AvgSubpageRisk > 50 {
		t.add(15, "子页面平均风险较高")
	}

	// Domain rules.
	if fv.InBlacklist == 1 {
		t.add(50, "域名在已知恶意域名黑名单中")
	}
	if fv.HomographAttack == 1 {
		t.add(30, "检测到同形异义字符攻击（钓鱼域名）")
	}
	if fv.PotentialPhishing == 1 {
		t.add(25, "疑似品牌钓鱼网站")
	}
	if fv.BrandSimilarity > 0.8 {
		t.add(20, "域名与知名品牌高度相似")
	}
	if fv.Entropy > 4.0 {
		t.add(15, "域名字符随机性过高（疑似随机生成）")
	}
	if fv.IsVeryNewDomain == 1 {
		t.add(5, "域名注册时间极短（7天内）")
	}
	if fv.ShortRegistration == 1 {
		t.add(5, "域名注册期限过短（少于1年）")
	}
	if fv.SuspiciousRegistrar == 1 {
		t.add(10, "域名注册商存在不良记录")
	}
	if fv.SuspiciousCombo > 2 {
		t.add(15, "域名包含多个可疑关键词")
	}

	// Content rules. The sensitive total spans every keyword category
	// the dictionary defines.
	switch total := fv.SensitiveKeywordCount; {
	case total > 10:
		t.add(30, "页面包含大量敏感内容")
	case total > 5:
		t.add(20, "页面包含较多敏感内容")
	case total > 0:
		t.add(10, "页面包含敏感内容")
	}
	if fv.SensitiveKeywordRatio > 0.1 {
		t.add(15, "敏感词占比过高")
	}
	if fv.HasLoginForm == 1 && fv.HasSSL == 0 {
		t.add(25, "登录表单未使用加密传输")
	}
	if fv.SuspiciousScripts > 3 {
		t.add(15, "页面包含多个可疑脚本")
	}
	if fv.DomainChanged == 1 {
		t.add(20, "访问过程中发生跨域名跳转")
	}

	// TLS rules. CertValidDays fires on its -1 sentinel too: a site
	// whose certificate could not be inspected carries the same delta
	// as one about to expire.
	if fv.HasSSL == 0 {
		t.add(15, "网站未启用HTTPS加密")
	}
	if fv.SSLValid == 0 {
		t.add(20, "SSL证书无效或已过期")
	}
	if fv.TrustedCA == 0 {
		t.add(10, "SSL证书颁发机构不受信任")
	}
	if fv.CertTooNew == 1 {
		t.add(10, "SSL证书签发时间过短")
	}
	if fv.CertValidDays < 30 {
		t.add(10, "SSL证书即将过期")
	}

	// Network rules.
	if fv.BlacklistedIP == 1 {
		t.add(40, "服务器IP地址在黑名单中")
	}
	if fv.WebAccessible == 0 {
		t.add(30, "网站无法访问")
	}
	if fv.DNSResolved == 0 {
		t.add(25, "域名无法解析")
	}
	if fv.ResponseTime > 5 {
		t.add(10, "网站响应速度过慢")
	}
	if fv.HTTPStatus >= 400 {
		t.add(15, "网站返回错误状态码")
	}

	// Trust signals subtract after all risk additions.
	if headers := fv.SecurityHeaderCount(); headers > 0 {
		t.add(-headers*2, fmt.Sprintf("配置了 %d 项安全响应头", headers))
	}
	if fv.HasContactInfo == 1 {
		t.add(-10, "页面提供了联系方式")
	}
	if fv.HasPrivacyPolicy == 1 {
		t.add(-10, "页面提供了隐私政策")
	}
	if fv.HasMX == 1 {
		t.add(-5, "域名配置了邮件服务")
	}
	if fv.DomainAgeDays > 365 {
		t.add(-15, "域名注册历史较长")
	}

	score := min(100, max(0, t.score))
	return newAssessment(fv, score, t.factors)
}
