package config

import (
	"path/filepath"
	"time"

	"github.com/adrg/xdg"
)

// Default configuration values.
// These mirror the operational defaults the detection service has run
// with in production; change them only together with the scoring rules
// they interact with.
const (
	// DefaultTimeout is the connection timeout for a top-level page fetch.
	DefaultTimeout = 10 * time.Second

	// DefaultSubpageTimeout bounds each subpage fetch. It is deliberately
	// shorter than the top-level timeout so a slow site cannot multiply
	// its slowness by the subpage cap.
	DefaultSubpageTimeout = 8 * time.Second

	// DefaultHeadTimeout bounds the availability HEAD probe. The probe
	// also feeds the response-time feature, so it stays short.
	DefaultHeadTimeout = 5 * time.Second

	// DefaultMaxSubpages caps how many same-origin subpages are collected
	// from the seed page. This bounds both crawl time and memory.
	DefaultMaxSubpages = 50

	// DefaultWorkers is the number of URLs assessed concurrently in a
	// batch run. Higher values increase throughput but also the load
	// placed on DNS and WHOIS infrastructure.
	DefaultWorkers = 10

	// DefaultKeywordTTL is how long a keyword snapshot stays valid before
	// the store refreshes it from its source.
	DefaultKeywordTTL = 3600 * time.Second

	// DefaultUserAgent is sent with every page fetch. A browser-like
	// agent is required because several site classes serve different
	// content to obvious bots.
	DefaultUserAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/91.0.4472.124 Safari/537.36"

	// DefaultMaxBodySize limits how much of a response body is read.
	// 5MB covers any realistic HTML page while preventing memory
	// exhaustion from decoy payloads.
	DefaultMaxBodySize = 5 * 1024 * 1024

	// AppName is used for XDG directory paths.
	AppName = "riskhound"
)

// DefaultSuspiciousTLDs lists top-level domains with a documented
// over-representation in abuse feeds. Membership is a feature, not a
// verdict; the scorer decides what it is worth.
var DefaultSuspiciousTLDs = []string{
	".tk", ".ml", ".ga", ".cf", ".gq", ".top", ".wang", ".ren",
	".click", ".download", ".link", ".work", ".party", ".racing",
	".date", ".accountant", ".science", ".trade", ".review",
}

// DefaultBrandKeywords lists protected brand tokens checked for
// typosquatting via edit-distance similarity.
var DefaultBrandKeywords = []string{
	"alipay", "taobao", "tmall", "jd", "qq", "wechat", "bank",
	"icbc", "ccb", "abc", "boc", "unionpay", "paypal", "amazon",
	"microsoft", "google", "apple", "facebook", "instagram",
}

// DefaultTrustedCAs lists certificate issuer organizations treated as
// reputable. Matching is substring-based against the issuer O field.
var DefaultTrustedCAs = []string{
	"Let's Encrypt", "DigiCert", "GlobalSign", "Sectigo", "GoDaddy",
	"Amazon", "Google Trust Services", "Cloudflare", "Entrust",
}

// DefaultSuspiciousRegistrars lists registrar name fragments that
// raise the registrar feature flag. These registrars are popular with
// legitimate owners too, which is why the flag carries a small weight.
var DefaultSuspiciousRegistrars = []string{
	"namecheap", "godaddy", "publicdomainregistry",
}

// DefaultSuspiciousCombos lists high-risk tokens counted inside the
// domain string itself.
var DefaultSuspiciousCombos = []string{
	"login", "signin", "verify", "secure", "bank", "update", "confirm",
	"security", "account", "auth", "password", "credential",
}

// Config holds all options for a riskhound run. It is populated from
// CLI flags plus an optional YAML file and passed through the
// application by dependency injection rather than global state.
type Config struct {
	// Timeout is the top-level page fetch timeout.
	Timeout time.Duration

	// SubpageTimeout is the per-subpage fetch timeout.
	SubpageTimeout time.Duration

	// HeadTimeout is the availability probe timeout.
	HeadTimeout time.Duration

	// MaxSubpages caps the same-origin subpage crawl.
	MaxSubpages int

	// Workers is the batch concurrency bound.
	Workers int

	// KeywordTTL is the keyword store refresh interval.
	KeywordTTL time.Duration

	// UserAgent is sent with every HTTP request.
	UserAgent string

	// MaxBodySize limits response body reads, in bytes.
	MaxBodySize int64

	// Verbose switches logging from warnings-only to debug.
	Verbose bool

	// ConfigFilePath is the explicit YAML config file path, if any.
	ConfigFilePath string

	// SuspiciousTLDs, BrandKeywords, TrustedCAs, SuspiciousRegistrars,
	// and SuspiciousCombos are the fixed lists the domain and content
	// analyzers test against. Defaults may be extended via the config file.
	SuspiciousTLDs       []string
	BrandKeywords        []string
	TrustedCAs           []string
	SuspiciousRegistrars []string
	SuspiciousCombos     []string

	// BlacklistIPFile and BlacklistDomainFile are plain-text blacklist
	// sources, one entry per line. Missing files yield empty sets.
	BlacklistIPFile     string
	BlacklistDomainFile string

	// KeywordFile is a JSON file mapping category name to keyword list,
	// used when no database source is available.
	KeywordFile string

	// DBDir is the directory holding the SQLite database.
	DBDir string

	// SaveToDB enables assessment persistence.
	SaveToDB bool

	// JSONReport, MarkdownReport, and CSVFile select report output.
	// JSON and Markdown are mutually exclusive; CSVFile is additive.
	JSONReport     bool
	MarkdownReport bool
	CSVFile        string

	// ReportFile redirects the report from stdout to a file.
	ReportFile string

	// Targets is the list of URLs to assess.
	Targets []string
}

// NewConfig creates a Config with every default installed.
//
// Design decision: We use a constructor instead of relying on zero
// values because most defaults are non-zero, and the constructor doubles
// as documentation of what they are.
func NewConfig() *Config {
	return &Config{
		Timeout:              DefaultTimeout,
		SubpageTimeout:       DefaultSubpageTimeout,
		HeadTimeout:          DefaultHeadTimeout,
		MaxSubpages:          DefaultMaxSubpages,
		Workers:              DefaultWorkers,
		KeywordTTL:           DefaultKeywordTTL,
		UserAgent:            DefaultUserAgent,
		MaxBodySize:          DefaultMaxBodySize,
		SuspiciousTLDs:       DefaultSuspiciousTLDs,
		BrandKeywords:        DefaultBrandKeywords,
		TrustedCAs:           DefaultTrustedCAs,
		SuspiciousRegistrars: DefaultSuspiciousRegistrars,
		SuspiciousCombos:     DefaultSuspiciousCombos,
	}
}

// Validate checks the configuration for inconsistencies.
func (c *Config) Validate() error {
	if c.Timeout <= 0 || c.SubpageTimeout <= 0 || c.HeadTimeout <= 0 {
		return ErrInvalidTimeout
	}
	if c.Workers <= 0 {
		return ErrInvalidWorkers
	}
	if c.MaxSubpages < 0 {
		return ErrInvalidSubpageCap
	}
	if c.JSONReport && c.MarkdownReport {
		return ErrConflictingReportFormats
	}
	if c.MaxBodySize < 0 {
		return ErrInvalidMaxBodySize
	}
	return nil
}

// XDGDataDir returns the XDG data directory for riskhound.
// On Linux: ~/.local/share/riskhound
func XDGDataDir() string {
	return filepath.Join(xdg.DataHome, AppName)
}

// XDGConfigDir returns the XDG config directory for riskhound.
func XDGConfigDir() string {
	return filepath.Join(xdg.ConfigHome, AppName)
}
