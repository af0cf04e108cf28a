package model

import (
	"maps"
	"slices"
)

// FeatureVector holds every signal extracted for a single URL, merged
// from the domain, content, network, and subpage analyzers.
//
// Design decision: We use a struct with explicit fields rather than a
// map[string]any because:
// 1. The scoring engine references a fixed set of metrics; typos become
//    compile errors instead of silent zero reads
// 2. Serialization to JSON and SQLite columns is direct
// 3. Sentinel defaults live in one constructor instead of scattered
//    existence checks
//
// Every field has a documented default (0, -1, or "") that NewFeatureVector
// installs, so the scorer never needs to distinguish "missing" from
// "extracted as zero". Analyzers overwrite only their own block; a failed
// analyzer simply leaves its block at the defaults.
type FeatureVector struct {
	// URL is the normalized input URL this vector describes.
	URL string `json:"url"`

	// === Domain (lexical + WHOIS) ===

	// DomainLength is the length of the URL's host component.
	DomainLength int `json:"domain_length"`

	// SubdomainCount is the number of dots in the host.
	SubdomainCount int `json:"subdomain_count"`

	// HasHyphen is 1 if the host contains a hyphen.
	HasHyphen int `json:"has_hyphen"`

	// HasDigits is 1 if the host contains any digit.
	HasDigits int `json:"has_digits"`

	// SuspiciousTLD is 1 if the host's suffix is on the suspicious TLD list.
	SuspiciousTLD int `json:"suspicious_tld"`

	// DigitRatio is the fraction of host characters that are digits.
	DigitRatio float64 `json:"digit_ratio"`

	// SpecialCharRatio is the fraction of non-alphanumeric host characters,
	// rounded to 2 decimals.
	SpecialCharRatio float64 `json:"special_char_ratio"`

	// ConsonantRatio is the fraction of consonant characters, rounded to
	// 2 decimals.
	ConsonantRatio float64 `json:"consonant_ratio"`

	// Entropy is the Shannon entropy of the host's character distribution,
	// rounded to 2 decimals. High values indicate randomly generated names.
	Entropy float64 `json:"entropy"`

	// InBlacklist is 1 if the host appears in the domain blacklist.
	InBlacklist int `json:"in_blacklist"`

	// BrandSimilarity is the maximum normalized Levenshtein similarity
	// between the host and any protected brand token, in [0,1].
	BrandSimilarity float64 `json:"brand_similarity"`

	// PotentialPhishing is 1 when BrandSimilarity exceeds 0.7.
	PotentialPhishing int `json:"potential_phishing"`

	// HomographAttack is 1 when confusable-character normalization
	// changes the host string.
	HomographAttack int `json:"homograph_attack"`

	// SuspiciousCombo counts high-risk tokens (login, verify, ...) found
	// inside the host.
	SuspiciousCombo int `json:"suspicious_combo"`

	// DomainAgeDays is the age of the domain registration in days.
	// -1 when WHOIS is unavailable.
	DomainAgeDays int `json:"domain_age_days"`

	// IsNewDomain is 1 when the domain is younger than 30 days.
	IsNewDomain int `json:"is_new_domain"`

	// IsVeryNewDomain is 1 when the domain is younger than 7 days.
	IsVeryNewDomain int `json:"is_very_new_domain"`

	// DaysToExpire is the number of days until the registration expires.
	// -1 when WHOIS is unavailable.
	DaysToExpire int `json:"days_to_expire"`

	// ShortRegistration is 1 when the registration expires in under a year.
	ShortRegistration int `json:"short_registration"`

	// SuspiciousRegistrar is 1 when the registrar matches the watch list.
	SuspiciousRegistrar int `json:"suspicious_registrar"`

	// === Content ===

	// ContentLength is the raw response body size in bytes.
	ContentLength int `json:"content_length"`

	// TextLength is the visible text length after markup removal.
	TextLength int `json:"text_length"`

	// ImageCount is the number of img elements.
	ImageCount int `json:"image_count"`

	// LinkCount is the number of anchor elements.
	LinkCount int `json:"link_count"`

	// FormCount is the number of form elements.
	FormCount int `json:"form_count"`

	// ExternalLinks counts anchors whose host differs from the page's host.
	ExternalLinks int `json:"external_links"`

	// SensitiveCategories maps keyword category name to the number of
	// keyword occurrences in the page text. Category names are opaque
	// pass-through identifiers from the keyword store.
	SensitiveCategories map[string]int `json:"sensitive_categories"`

	// SensitiveKeywordCount is the total across all categories.
	SensitiveKeywordCount int `json:"sensitive_keyword_count"`

	// SensitiveKeywordRatio is SensitiveKeywordCount divided by the word
	// count (minimum 1), rounded to 2 decimals.
	SensitiveKeywordRatio float64 `json:"sensitive_keyword_ratio"`

	// HasTitle is 1 when the page has a non-empty title element.
	HasTitle int `json:"has_title"`

	// TitleLength is the title text length.
	TitleLength int `json:"title_length"`

	// HasDescription is 1 when a description meta tag is present.
	HasDescription int `json:"has_description"`

	// HasKeywords is 1 when a keywords meta tag is present.
	HasKeywords int `json:"has_keywords"`

	// HasRobots is 1 when a robots meta tag is present.
	HasRobots int `json:"has_robots"`

	// HasLoginForm is 1 when a password-type input exists on the page.
	HasLoginForm int `json:"has_login_form"`

	// HasContactInfo is 1 when contact phrases appear in the text.
	HasContactInfo int `json:"has_contact_info"`

	// HasPrivacyPolicy is 1 when privacy-policy phrases appear in the text.
	HasPrivacyPolicy int `json:"has_privacy_policy"`

	// SuspiciousImages counts images with an empty or data: source.
	SuspiciousImages int `json:"suspicious_images"`

	// ScriptCount is the number of script elements.
	ScriptCount int `json:"script_count"`

	// SuspiciousScripts counts inline scripts referencing risky APIs
	// (dynamic eval, inline document writes, unescape).
	SuspiciousScripts int `json:"suspicious_scripts"`

	// RedirectCount is the number of redirect hops the fetch followed.
	RedirectCount int `json:"redirect_count"`

	// FinalURL is the URL after following redirects.
	FinalURL string `json:"final_url"`

	// DomainChanged is 1 when the final host differs from the requested host.
	DomainChanged int `json:"domain_changed"`

	// === TLS ===

	// HasSSL is 1 when a TLS handshake to port 443 succeeded.
	HasSSL int `json:"has_ssl"`

	// SSLValid is 1 when the handshake produced a verifiable certificate.
	SSLValid int `json:"ssl_valid"`

	// TrustedCA is 1 when the issuer organization matches the trusted CA list.
	TrustedCA int `json:"trusted_ca"`

	// CertValidDays is the number of days until the certificate expires.
	// -1 when no certificate could be inspected.
	CertValidDays int `json:"cert_valid_days"`

	// CertTooNew is 1 when the certificate was issued less than 7 days ago.
	CertTooNew int `json:"cert_too_new"`

	// SSLDomainMatch is 1 when the certificate common name covers the host.
	SSLDomainMatch int `json:"ssl_domain_match"`

	// WildcardCert is 1 when the common name contains a wildcard marker.
	WildcardCert int `json:"wildcard_cert"`

	// === Network ===

	// DNSResolved is 1 when at least one A record resolved.
	DNSResolved int `json:"dns_resolved"`

	// IPCount is the number of A records.
	IPCount int `json:"ip_count"`

	// FirstIP is the first resolved address, empty on failure.
	FirstIP string `json:"first_ip"`

	// BlacklistedIP is 1 when FirstIP appears in the IP blacklist.
	BlacklistedIP int `json:"blacklisted_ip"`

	// HasMX is 1 when the domain has MX records.
	HasMX int `json:"has_mx"`

	// MXCount is the number of MX records.
	MXCount int `json:"mx_count"`

	// HasSPF is 1 when a TXT record carries an SPF token.
	HasSPF int `json:"has_spf"`

	// ResponseTime is the HEAD probe elapsed time in seconds, rounded to
	// 2 decimals. -1 when the probe failed.
	ResponseTime float64 `json:"response_time"`

	// HTTPStatus is the HEAD probe status code, 0 on failure.
	HTTPStatus int `json:"http_status"`

	// WebAccessible is 1 when the HEAD probe completed.
	WebAccessible int `json:"web_accessible"`

	// ServerHeader is the Server response header value.
	ServerHeader string `json:"server_header"`

	// PoweredBy is the X-Powered-By response header value.
	PoweredBy string `json:"powered_by"`

	// Security header presence flags.
	HSTS           int `json:"hsts"`
	XFrameOptions  int `json:"x_frame_options"`
	XContentType   int `json:"x_content_type"`
	XXSSProtection int `json:"x_xss_protection"`
	CSP            int `json:"csp"`

	// === Subpages ===

	// SubpageCount is the number of same-origin subpages collected.
	SubpageCount int `json:"subpage_count"`

	// SuspiciousSubpages counts subpages whose mini-score exceeds 60.
	SuspiciousSubpages int `json:"suspicious_subpages"`

	// AvgSubpageRisk is the mean subpage mini-score.
	AvgSubpageRisk float64 `json:"avg_subpage_risk"`

	// HasSensitiveSubpage is 1 when any subpage had more than 5 raw
	// keyword hits.
	HasSensitiveSubpage int `json:"has_sensitive_subpage"`

	// SubpageKeywords is the merged per-category keyword tally across all
	// subpages. Only categories with at least one hit are present.
	SubpageKeywords map[string]int `json:"subpage_keywords"`

	// Subpages holds the per-subpage records.
	Subpages []SubpageRecord `json:"subpage_details"`
}

// NewFeatureVector creates a vector with every sentinel default installed.
// categories pre-seeds a zero entry per known keyword category so the
// vector's shape is stable regardless of fetch outcome.
func NewFeatureVector(url string, categories []string) *FeatureVector {
	fv := &FeatureVector{
		URL:                 url,
		DomainAgeDays:       -1,
		DaysToExpire:        -1,
		CertValidDays:       -1,
		ResponseTime:        -1,
		FinalURL:            url,
		SensitiveCategories: make(map[string]int, len(categories)),
		SubpageKeywords:     make(map[string]int),
		Subpages:            make([]SubpageRecord, 0),
	}
	for _, c := range categories {
		fv.SensitiveCategories[c] = 0
	}
	return fv
}

// Clone returns a deep copy. Assessments hold the copy so later writes
// to the working vector cannot change a result already handed out.
func (fv *FeatureVector) Clone() *FeatureVector {
	c := *fv
	c.SensitiveCategories = maps.Clone(fv.SensitiveCategories)
	c.SubpageKeywords = maps.Clone(fv.SubpageKeywords)
	c.Subpages = slices.Clone(fv.Subpages)
	return &c
}

// ModelVectorSize is the length of the fixed-order numeric vector passed
// to a trained classifier.
const ModelVectorSize = 27

// ModelVector returns the fixed-order numeric slice consumed by the
// classifier strategy. The order is part of the trained model's contract
// and must not change.
func (fv *FeatureVector) ModelVector() []float64 {
	return []float64{
		float64(fv.DomainLength),
		float64(fv.SubdomainCount),
		float64(fv.HasHyphen),
		float64(fv.HasDigits),
		float64(fv.SuspiciousTLD),
		fv.DigitRatio,
		fv.SpecialCharRatio,
		float64(fv.DomainAgeDays),
		float64(fv.IsNewDomain),
		float64(fv.DaysToExpire),
		float64(fv.ContentLength),
		float64(fv.TextLength),
		float64(fv.ImageCount),
		float64(fv.LinkCount),
		float64(fv.FormCount),
		float64(fv.SensitiveKeywordCount),
		fv.SensitiveKeywordRatio,
		float64(fv.HasTitle),
		float64(fv.HasDescription),
		float64(fv.HasKeywords),
		float64(fv.HasSSL),
		float64(fv.SSLValid),
		float64(fv.SSLDomainMatch),
		float64(fv.DNSResolved),
		float64(fv.IPCount),
		fv.ResponseTime,
		float64(fv.HTTPStatus),
	}
}

// SecurityHeaderCount returns how many of the five tracked security
// headers the probe observed.
func (fv *FeatureVector) SecurityHeaderCount() int {
	return fv.HSTS + fv.XFrameOptions + fv.XContentType + fv.XXSSProtection + fv.CSP
}

// ResetContentDefaults restores the entire content block (including the
// TLS probe fields the content analyzer owns) to its documented defaults.
// The pipeline calls this when the content analyzer fails part-way, so a
// half-populated block never reaches the scorer.
func (fv *FeatureVector) ResetContentDefaults() {
	fv.ContentLength = 0
	fv.TextLength = 0
	fv.ImageCount = 0
	fv.LinkCount = 0
	fv.FormCount = 0
	fv.ExternalLinks = 0
	for c := range fv.SensitiveCategories {
		fv.SensitiveCategories[c] = 0
	}
	fv.SensitiveKeywordCount = 0
	fv.SensitiveKeywordRatio = 0
	fv.HasTitle = 0
	fv.TitleLength = 0
	fv.HasDescription = 0
	fv.HasKeywords = 0
	fv.HasRobots = 0
	fv.HasLoginForm = 0
	fv.HasContactInfo = 0
	fv.HasPrivacyPolicy = 0
	fv.SuspiciousImages = 0
	fv.ScriptCount = 0
	fv.SuspiciousScripts = 0
	fv.RedirectCount = 0
	fv.FinalURL = fv.URL
	fv.DomainChanged = 0
	fv.HasSSL = 0
	fv.SSLValid = 0
	fv.TrustedCA = 0
	fv.CertValidDays = -1
	fv.CertTooNew = 0
	fv.SSLDomainMatch = 0
	fv.WildcardCert = 0
}
