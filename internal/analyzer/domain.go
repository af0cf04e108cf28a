package analyzer

import (
	"context"
	"fmt"
	"math"
	"net/url"
	"strings"
	"unicode"

	"golang.org/x/text/unicode/norm"

	"github.com/riskhound/riskhound/internal/model"
	"github.com/riskhound/riskhound/internal/store"
)

// consonants are the characters counted for the consonant ratio.
const consonants = "bcdfghjklmnpqrstvwxyz"

// confusableReplacer maps Cyrillic characters that render identically
// to Latin ones. Applied after lowercasing, so only lowercase pairs are
// listed.
var confusableReplacer = strings.NewReplacer(
	"а", "a",
	"в", "b",
	"е", "e",
	"н", "h",
	"к", "k",
	"м", "m",
	"о", "o",
	"р", "p",
	"с", "c",
	"т", "t",
	"у", "y",
	"х", "x",
)

// DomainAnalyzer extracts the lexical features of a URL's host: length
// and character distribution, entropy, blacklist membership, brand
// similarity, homograph detection, and suspicious token counts.
// It performs no network I/O.
type DomainAnalyzer struct {
	suspiciousTLDs   []string
	brandKeywords    []string
	suspiciousCombos []string
	blacklist        *store.Blacklist
}

// NewDomainAnalyzer creates a DomainAnalyzer over the given detection
// lists and blacklist snapshot.
func NewDomainAnalyzer(suspiciousTLDs, brandKeywords, suspiciousCombos []string, blacklist *store.Blacklist) *DomainAnalyzer {
	return &DomainAnalyzer{
		suspiciousTLDs:   suspiciousTLDs,
		brandKeywords:    brandKeywords,
		suspiciousCombos: suspiciousCombos,
		blacklist:        blacklist,
	}
}

// Name implements Analyzer.
func (a *DomainAnalyzer) Name() string { return "domain" }

// Analyze implements Analyzer.
func (a *DomainAnalyzer) Analyze(_ context.Context, target string, fv *model.FeatureVector) error {
	parsed, err := url.Parse(target)
	if err != nil {
		return fmt.Errorf("analyzer: parse url %s: %w", target, err)
	}
	domain := parsed.Host
	if domain == "" {
		return fmt.Errorf("analyzer: url %s has no host", target)
	}
	runes := []rune(domain)
	lower := strings.ToLower(domain)

	fv.DomainLength = len(runes)
	fv.SubdomainCount = strings.Count(domain, ".")
	fv.HasHyphen = boolFlag(strings.Contains(domain, "-"))
	fv.HasDigits = boolFlag(strings.ContainsFunc(domain, unicode.IsDigit))

	if i := strings.LastIndexByte(domain, '.'); i >= 0 {
		tld := domain[i:]
		for _, s := range a.suspiciousTLDs {
			if tld == s {
				fv.SuspiciousTLD = 1
				break
			}
		}
	}

	var digits, special, consonantCount int
	for _, r := range runes {
		if unicode.IsDigit(r) {
			digits++
		}
		if !unicode.IsLetter(r) && !unicode.IsDigit(r) {
			special++
		}
		if strings.ContainsRune(consonants, unicode.ToLower(r)) {
			consonantCount++
		}
	}
	n := float64(len(runes))
	fv.DigitRatio = float64(digits) / n
	fv.SpecialCharRatio = round2(float64(special) / n)
	fv.ConsonantRatio = round2(float64(consonantCount) / n)
	fv.Entropy = round2(shannonEntropy(lower))

	fv.InBlacklist = boolFlag(a.blacklist.ContainsDomain(domain))

	similarity := 0.0
	for _, brand := range a.brandKeywords {
		dist := levenshteinDistance(lower, brand)
		longer := max(len([]rune(lower)), len([]rune(brand)))
		s := 1 - float64(dist)/float64(longer)
		similarity = max(similarity, max(s, 0))
	}
	fv.BrandSimilarity = round2(similarity)
	fv.PotentialPhishing = boolFlag(similarity > 0.7)

	fv.HomographAttack = boolFlag(hasHomograph(domain))

	combo := 0
	for _, token := range a.suspiciousCombos {
		if strings.Contains(lower, token) {
			combo++
		}
	}
	fv.SuspiciousCombo = combo

	return nil
}

// shannonEntropy computes the Shannon entropy of s's character
// distribution in bits per character.
func shannonEntropy(s string) float64 {
	runes := []rune(s)
	if len(runes) == 0 {
		return 0
	}
	counts := make(map[rune]int, len(runes))
	for _, r := range runes {
		counts[r]++
	}
	n := float64(len(runes))
	entropy := 0.0
	for _, count := range counts {
		p := float64(count) / n
		entropy -= p * math.Log2(p)
	}
	return entropy
}

// levenshteinDistance computes the edit distance between two strings,
// counted in runes.
//
// Design decision: We keep a single previous row instead of the full
// matrix; domain-vs-brand comparisons run for every brand on every URL
// and the full matrix buys nothing here.
func levenshteinDistance(s1, s2 string) int {
	r1, r2 := []rune(s1), []rune(s2)
	if len(r1) < len(r2) {
		r1, r2 = r2, r1
	}
	if len(r2) == 0 {
		return len(r1)
	}

	previous := make([]int, len(r2)+1)
	for j := range previous {
		previous[j] = j
	}
	current := make([]int, len(r2)+1)
	for i, c1 := range r1 {
		current[0] = i + 1
		for j, c2 := range r2 {
			insertion := previous[j+1] + 1
			deletion := current[j] + 1
			substitution := previous[j]
			if c1 != c2 {
				substitution++
			}
			current[j+1] = min(insertion, deletion, substitution)
		}
		previous, current = current, previous
	}
	return previous[len(r2)]
}

// hasHomograph reports whether the host reads differently after
// compatibility normalization and confusable replacement. NFKC folds
// fullwidth and stylistic variants, the replacer covers the Cyrillic
// look-alikes NFKC leaves alone.
func hasHomograph(domain string) bool {
	lower := strings.ToLower(domain)
	normalized := confusableReplacer.Replace(norm.NFKC.String(lower))
	return normalized != lower
}

// boolFlag converts a condition into the vector's 0/1 encoding.
func boolFlag(b bool) int {
	if b {
		return 1
	}
	return 0
}

// round2 rounds to 2 decimal places, the vector's precision for ratios.
func round2(f float64) float64 {
	return math.Round(f*100) / 100
}
