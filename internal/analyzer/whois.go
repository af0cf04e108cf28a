package analyzer

import (
	"context"
	"log/slog"
	"net/url"
	"strings"
	"time"

	"github.com/likexian/whois"
	whoisparser "github.com/likexian/whois-parser"

	"github.com/riskhound/riskhound/internal/model"
)

// LookupFunc performs a raw WHOIS query for a domain. Split out so
// tests can supply canned responses without network access.
type LookupFunc func(domain string) (string, error)

// WhoisAnalyzer extracts registration features: domain age, time to
// expiry, and registrar reputation.
//
// Design decision: WHOIS runs as its own analyzer instead of inside the
// lexical domain analysis because its failure mode is different. WHOIS
// servers rate-limit and time out routinely; when that happens only the
// registration fields fall back to their defaults and every lexical
// feature stays intact.
type WhoisAnalyzer struct {
	lookup     LookupFunc
	registrars []string
	logger     *slog.Logger

	// now is injectable for deterministic age arithmetic in tests.
	now func() time.Time
}

// NewWhoisAnalyzer creates a WhoisAnalyzer using the given registrar
// watch list. A nil lookup uses a real WHOIS client with the given
// timeout.
func NewWhoisAnalyzer(lookup LookupFunc, registrars []string, timeout time.Duration, logger *slog.Logger) *WhoisAnalyzer {
	if lookup == nil {
		client := whois.NewClient()
		client.SetTimeout(timeout)
		lookup = func(domain string) (string, error) {
			return client.Whois(domain)
		}
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &WhoisAnalyzer{
		lookup:     lookup,
		registrars: registrars,
		logger:     logger,
		now:        time.Now,
	}
}

// Name implements Analyzer.
func (a *WhoisAnalyzer) Name() string { return "whois" }

// Analyze implements Analyzer.
//
// A record without a creation date is treated as a brand-new domain:
// registries hide creation dates most often on domains registered
// moments ago, before zone data propagates. A failed lookup, by
// contrast, says nothing about the domain, so every flag stays 0.
func (a *WhoisAnalyzer) Analyze(_ context.Context, target string, fv *model.FeatureVector) error {
	parsed, err := url.Parse(target)
	if err != nil || parsed.Hostname() == "" {
		a.applyFailureDefaults(fv)
		return nil
	}
	domain := parsed.Hostname()

	raw, err := a.lookup(domain)
	if err != nil {
		a.logger.Debug("whois lookup failed", "domain", domain, "error", err)
		a.applyFailureDefaults(fv)
		return nil
	}

	info, err := whoisparser.Parse(raw)
	if err != nil {
		a.logger.Debug("whois parse failed", "domain", domain, "error", err)
		a.applyFailureDefaults(fv)
		return nil
	}

	now := a.now()
	if info.Domain != nil && info.Domain.CreatedDateInTime != nil {
		age := int(now.Sub(*info.Domain.CreatedDateInTime).Hours() / 24)
		fv.DomainAgeDays = age
		fv.IsNewDomain = boolFlag(age < 30)
		fv.IsVeryNewDomain = boolFlag(age < 7)
	} else {
		fv.DomainAgeDays = -1
		fv.IsNewDomain = 1
		fv.IsVeryNewDomain = 1
	}

	if info.Domain != nil && info.Domain.ExpirationDateInTime != nil {
		days := int(info.Domain.ExpirationDateInTime.Sub(now).Hours() / 24)
		fv.DaysToExpire = days
		fv.ShortRegistration = boolFlag(days < 365)
	} else {
		fv.DaysToExpire = -1
		fv.ShortRegistration = 1
	}

	if info.Registrar != nil {
		registrar := strings.ToLower(info.Registrar.Name)
		for _, watch := range a.registrars {
			if strings.Contains(registrar, watch) {
				fv.SuspiciousRegistrar = 1
				break
			}
		}
	}

	return nil
}

// applyFailureDefaults records that WHOIS told us nothing.
func (a *WhoisAnalyzer) applyFailureDefaults(fv *model.FeatureVector) {
	fv.DomainAgeDays = -1
	fv.IsNewDomain = 0
	fv.IsVeryNewDomain = 0
	fv.DaysToExpire = -1
	fv.ShortRegistration = 0
	fv.SuspiciousRegistrar = 0
}
