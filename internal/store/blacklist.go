package store

import (
	"bufio"
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strings"
)

// ipPattern matches a dotted-quad IPv4 address.
var ipPattern = regexp.MustCompile(`^(?:(?:25[0-5]|2[0-4][0-9]|[01]?[0-9][0-9]?)\.){3}(?:25[0-5]|2[0-4][0-9]|[01]?[0-9][0-9]?)$`)

// domainPattern matches a hostname with at least one alphabetic TLD label.
var domainPattern = regexp.MustCompile(`^[a-zA-Z0-9][a-zA-Z0-9-]{0,61}[a-zA-Z0-9](?:\.[a-zA-Z]{2,})+$`)

// IsIPAddress reports whether text is an IPv4 address literal.
func IsIPAddress(text string) bool {
	return ipPattern.MatchString(text)
}

// IsDomainName reports whether text looks like a registrable hostname.
func IsDomainName(text string) bool {
	return domainPattern.MatchString(text)
}

// ExtractHost strips scheme, path, query, and port from a URL-ish
// string and returns the bare host. It is deliberately tolerant: the
// blacklist source mixes full URLs, bare domains, and IP literals.
func ExtractHost(raw string) string {
	raw = strings.TrimPrefix(raw, "http://")
	raw = strings.TrimPrefix(raw, "https://")
	if i := strings.IndexAny(raw, "/?"); i >= 0 {
		raw = raw[:i]
	}
	if i := strings.IndexByte(raw, ':'); i >= 0 {
		raw = raw[:i]
	}
	return raw
}

// Blacklist is an immutable set of known-bad IP addresses and domains.
//
// Design decision: We load the lists once into plain maps instead of
// querying a database per lookup because a batch run performs two
// lookups per URL and the lists change on the order of hours, not
// seconds. Immutability makes the snapshot safe to share across the
// batch workers without synchronization.
type Blacklist struct {
	ips     map[string]struct{}
	domains map[string]struct{}
}

// NewBlacklist builds a Blacklist from explicit entry lists.
// Entries are used verbatim; callers normalize beforehand.
func NewBlacklist(ips, domains []string) *Blacklist {
	b := &Blacklist{
		ips:     make(map[string]struct{}, len(ips)),
		domains: make(map[string]struct{}, len(domains)),
	}
	for _, ip := range ips {
		b.ips[ip] = struct{}{}
	}
	for _, d := range domains {
		b.domains[d] = struct{}{}
	}
	return b
}

// LoadBlacklistFiles reads the IP and domain blacklist files, one entry
// per line. A missing or empty path yields an empty set rather than an
// error; running without blacklists is a degraded but valid mode.
func LoadBlacklistFiles(ipPath, domainPath string) (*Blacklist, error) {
	ips, err := readLines(ipPath)
	if err != nil {
		return nil, fmt.Errorf("store: read ip blacklist: %w", err)
	}
	domains, err := readLines(domainPath)
	if err != nil {
		return nil, fmt.Errorf("store: read domain blacklist: %w", err)
	}
	return NewBlacklist(ips, domains), nil
}

// readLines returns the non-blank lines of path, trimmed. A missing
// file or empty path returns nil without error.
func readLines(path string) ([]string, error) {
	if path == "" {
		return nil, nil
	}
	f, err := os.Open(filepath.Clean(path))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, err
	}
	defer f.Close()

	var lines []string
	sc := bufio.NewScanner(f)
	for sc.Scan() {
		line := strings.TrimSpace(sc.Text())
		if line != "" {
			lines = append(lines, line)
		}
	}
	return lines, sc.Err()
}

// ContainsIP reports whether ip is blacklisted.
func (b *Blacklist) ContainsIP(ip string) bool {
	_, ok := b.ips[ip]
	return ok
}

// ContainsDomain reports whether domain is blacklisted. Matching is
// exact; subdomains of a blacklisted domain are not implied.
func (b *Blacklist) ContainsDomain(domain string) bool {
	_, ok := b.domains[domain]
	return ok
}

// Len returns the number of IP and domain entries.
func (b *Blacklist) Len() (ips, domains int) {
	return len(b.ips), len(b.domains)
}

// RefreshBlacklistFiles pulls the reported URLs from the database and
// rewrites the two blacklist files, classifying each entry as an IP or
// a domain. Entries that are neither are dropped. It returns the number
// of IPs and domains written.
func RefreshBlacklistFiles(ctx context.Context, db *sql.DB, ipPath, domainPath string) (int, int, error) {
	rows, err := db.QueryContext(ctx, `SELECT url FROM blacklist_urls`)
	if err != nil {
		return 0, 0, fmt.Errorf("store: query blacklist urls: %w", err)
	}
	defer rows.Close()

	ips := make(map[string]struct{})
	domains := make(map[string]struct{})
	for rows.Next() {
		var raw string
		if err := rows.Scan(&raw); err != nil {
			return 0, 0, fmt.Errorf("store: scan blacklist url: %w", err)
		}
		host := raw
		if !IsIPAddress(host) && !IsDomainName(host) {
			host = ExtractHost(raw)
		}
		switch {
		case IsIPAddress(host):
			ips[host] = struct{}{}
		case IsDomainName(host):
			domains[host] = struct{}{}
		}
	}
	if err := rows.Err(); err != nil {
		return 0, 0, fmt.Errorf("store: iterate blacklist urls: %w", err)
	}

	if err := writeLines(ipPath, ips); err != nil {
		return 0, 0, fmt.Errorf("store: write ip blacklist: %w", err)
	}
	if err := writeLines(domainPath, domains); err != nil {
		return 0, 0, fmt.Errorf("store: write domain blacklist: %w", err)
	}
	return len(ips), len(domains), nil
}

// writeLines writes the set's entries to path in sorted order, one per line.
func writeLines(path string, set map[string]struct{}) error {
	entries := make([]string, 0, len(set))
	for e := range set {
		entries = append(entries, e)
	}
	sort.Strings(entries)

	var sb strings.Builder
	for _, e := range entries {
		sb.WriteString(e)
		sb.WriteByte('\n')
	}
	return os.WriteFile(path, []byte(sb.String()), 0o600)
}
