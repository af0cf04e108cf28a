package store

import (
	"context"
	"database/sql"
	"os"
	"path/filepath"
	"testing"

	_ "modernc.org/sqlite"
)

func TestIsIPAddress(t *testing.T) {
	t.Parallel()

	tests := []struct {
		text string
		want bool
	}{
		{"192.168.1.1", true},
		{"8.8.8.8", true},
		{"255.255.255.255", true},
		{"256.1.1.1", false},
		{"example.com", false},
		{"1.2.3", false},
		{"", false},
	}

	for _, tt := range tests {
		t.Run(tt.text, func(t *testing.T) {
			t.Parallel()

			if got := IsIPAddress(tt.text); got != tt.want {
				t.Errorf("IsIPAddress(%q) = %v, want %v", tt.text, got, tt.want)
			}
		})
	}
}

func TestIsDomainName(t *testing.T) {
	t.Parallel()

	tests := []struct {
		text string
		want bool
	}{
		{"example.com", true},
		{"sub.example.co.uk", true},
		{"xn--fiq228c.cn", true},
		{"localhost", false},
		{"-bad.com", false},
		{"", false},
	}

	for _, tt := range tests {
		t.Run(tt.text, func(t *testing.T) {
			t.Parallel()

			if got := IsDomainName(tt.text); got != tt.want {
				t.Errorf("IsDomainName(%q) = %v, want %v", tt.text, got, tt.want)
			}
		})
	}
}

func TestExtractHost(t *testing.T) {
	t.Parallel()

	tests := []struct {
		raw  string
		want string
	}{
		{"https://example.com/path?q=1", "example.com"},
		{"http://example.com:8080/x", "example.com"},
		{"example.com/page", "example.com"},
		{"192.168.1.1:443", "192.168.1.1"},
		{"example.com", "example.com"},
	}

	for _, tt := range tests {
		t.Run(tt.raw, func(t *testing.T) {
			t.Parallel()

			if got := ExtractHost(tt.raw); got != tt.want {
				t.Errorf("ExtractHost(%q) = %q, want %q", tt.raw, got, tt.want)
			}
		})
	}
}

func TestLoadBlacklistFiles(t *testing.T) {
	t.Parallel()

	t.Run("loads entries", func(t *testing.T) {
		t.Parallel()

		dir := t.TempDir()
		ipPath := filepath.Join(dir, "blacklist_ips.txt")
		domainPath := filepath.Join(dir, "blacklist_domains.txt")
		if err := os.WriteFile(ipPath, []byte("1.2.3.4\n\n5.6.7.8\n"), 0o600); err != nil {
			t.Fatal(err)
		}
		if err := os.WriteFile(domainPath, []byte("bad.example.com\n"), 0o600); err != nil {
			t.Fatal(err)
		}

		b, err := LoadBlacklistFiles(ipPath, domainPath)
		if err != nil {
			t.Fatalf("LoadBlacklistFiles() = %v, want nil", err)
		}
		if !b.ContainsIP("1.2.3.4") || !b.ContainsIP("5.6.7.8") {
			t.Error("expected listed IPs to be contained")
		}
		if b.ContainsIP("9.9.9.9") {
			t.Error("unlisted IP must not be contained")
		}
		if !b.ContainsDomain("bad.example.com") {
			t.Error("expected listed domain to be contained")
		}
		if b.ContainsDomain("sub.bad.example.com") {
			t.Error("subdomain of listed domain must not match")
		}
	})

	t.Run("missing files yield empty sets", func(t *testing.T) {
		t.Parallel()

		dir := t.TempDir()
		b, err := LoadBlacklistFiles(filepath.Join(dir, "none1"), filepath.Join(dir, "none2"))
		if err != nil {
			t.Fatalf("LoadBlacklistFiles() = %v, want nil", err)
		}
		ips, domains := b.Len()
		if ips != 0 || domains != 0 {
			t.Errorf("Len() = (%d, %d), want (0, 0)", ips, domains)
		}
	})
}

func TestRefreshBlacklistFiles(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	db, err := sql.Open("sqlite", filepath.Join(dir, "test.db"))
	if err != nil {
		t.Fatal(err)
	}
	defer db.Close()

	ctx := context.Background()
	if _, err := db.ExecContext(ctx, `CREATE TABLE blacklist_urls (url TEXT)`); err != nil {
		t.Fatal(err)
	}
	entries := []string{
		"https://bad.example.com/login",
		"1.2.3.4",
		"evil.example.org",
		"http://5.6.7.8:8080/x",
		"not a url at all",
	}
	for _, e := range entries {
		if _, err := db.ExecContext(ctx, `INSERT INTO blacklist_urls (url) VALUES (?)`, e); err != nil {
			t.Fatal(err)
		}
	}

	ipPath := filepath.Join(dir, "blacklist_ips.txt")
	domainPath := filepath.Join(dir, "blacklist_domains.txt")
	ips, domains, err := RefreshBlacklistFiles(ctx, db, ipPath, domainPath)
	if err != nil {
		t.Fatalf("RefreshBlacklistFiles() = %v, want nil", err)
	}
	if ips != 2 {
		t.Errorf("ips = %d, want 2", ips)
	}
	if domains != 2 {
		t.Errorf("domains = %d, want 2", domains)
	}

	b, err := LoadBlacklistFiles(ipPath, domainPath)
	if err != nil {
		t.Fatal(err)
	}
	if !b.ContainsIP("1.2.3.4") || !b.ContainsIP("5.6.7.8") {
		t.Error("expected classified IPs in rewritten file")
	}
	if !b.ContainsDomain("bad.example.com") || !b.ContainsDomain("evil.example.org") {
		t.Error("expected classified domains in rewritten file")
	}
}
