package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestNewConfig(t *testing.T) {
	t.Parallel()

	c := NewConfig()
	if c.Timeout != DefaultTimeout {
		t.Errorf("Timeout = %v, want %v", c.Timeout, DefaultTimeout)
	}
	if c.SubpageTimeout != DefaultSubpageTimeout {
		t.Errorf("SubpageTimeout = %v, want %v", c.SubpageTimeout, DefaultSubpageTimeout)
	}
	if c.MaxSubpages != DefaultMaxSubpages {
		t.Errorf("MaxSubpages = %d, want %d", c.MaxSubpages, DefaultMaxSubpages)
	}
	if c.Workers != DefaultWorkers {
		t.Errorf("Workers = %d, want %d", c.Workers, DefaultWorkers)
	}
	if len(c.SuspiciousTLDs) == 0 || len(c.BrandKeywords) == 0 || len(c.TrustedCAs) == 0 {
		t.Error("detection lists must not be empty by default")
	}
	if err := c.Validate(); err != nil {
		t.Errorf("Validate() on defaults = %v, want nil", err)
	}
}

func TestConfigValidate(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr error
	}{
		{
			name:    "zero timeout",
			mutate:  func(c *Config) { c.Timeout = 0 },
			wantErr: ErrInvalidTimeout,
		},
		{
			name:    "negative subpage timeout",
			mutate:  func(c *Config) { c.SubpageTimeout = -time.Second },
			wantErr: ErrInvalidTimeout,
		},
		{
			name:    "zero workers",
			mutate:  func(c *Config) { c.Workers = 0 },
			wantErr: ErrInvalidWorkers,
		},
		{
			name:    "negative subpage cap",
			mutate:  func(c *Config) { c.MaxSubpages = -1 },
			wantErr: ErrInvalidSubpageCap,
		},
		{
			name: "conflicting report formats",
			mutate: func(c *Config) {
				c.JSONReport = true
				c.MarkdownReport = true
			},
			wantErr: ErrConflictingReportFormats,
		},
		{
			name:    "zero subpage cap is allowed",
			mutate:  func(c *Config) { c.MaxSubpages = 0 },
			wantErr: nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			c := NewConfig()
			tt.mutate(c)
			if err := c.Validate(); !errors.Is(err, tt.wantErr) {
				t.Errorf("Validate() = %v, want %v", err, tt.wantErr)
			}
		})
	}
}

func TestLoadFile(t *testing.T) {
	t.Parallel()

	t.Run("overlays values", func(t *testing.T) {
		t.Parallel()

		dir := t.TempDir()
		path := filepath.Join(dir, ".riskhound")
		data := []byte("timeout_seconds: 20\nworkers: 3\nmax_subpages: 5\nsuspicious_tlds: [\".xyz\"]\n")
		if err := os.WriteFile(path, data, 0o600); err != nil {
			t.Fatal(err)
		}

		c := NewConfig()
		c.ConfigFilePath = path
		if err := LoadFile(c); err != nil {
			t.Fatalf("LoadFile() = %v, want nil", err)
		}
		if c.Timeout != 20*time.Second {
			t.Errorf("Timeout = %v, want 20s", c.Timeout)
		}
		if c.Workers != 3 {
			t.Errorf("Workers = %d, want 3", c.Workers)
		}
		if c.MaxSubpages != 5 {
			t.Errorf("MaxSubpages = %d, want 5", c.MaxSubpages)
		}
		if len(c.SuspiciousTLDs) != 1 || c.SuspiciousTLDs[0] != ".xyz" {
			t.Errorf("SuspiciousTLDs = %v, want [.xyz]", c.SuspiciousTLDs)
		}
		// Untouched fields keep their defaults.
		if c.SubpageTimeout != DefaultSubpageTimeout {
			t.Errorf("SubpageTimeout = %v, want default", c.SubpageTimeout)
		}
	})

	t.Run("explicit missing file is an error", func(t *testing.T) {
		t.Parallel()

		c := NewConfig()
		c.ConfigFilePath = filepath.Join(t.TempDir(), "nope.yml")
		if err := LoadFile(c); !errors.Is(err, ErrConfigFileNotFound) {
			t.Errorf("LoadFile() = %v, want ErrConfigFileNotFound", err)
		}
	})

	t.Run("invalid yaml", func(t *testing.T) {
		t.Parallel()

		dir := t.TempDir()
		path := filepath.Join(dir, ".riskhound")
		if err := os.WriteFile(path, []byte("timeout_seconds: [broken"), 0o600); err != nil {
			t.Fatal(err)
		}

		c := NewConfig()
		c.ConfigFilePath = path
		if err := LoadFile(c); !errors.Is(err, ErrInvalidConfigFile) {
			t.Errorf("LoadFile() = %v, want ErrInvalidConfigFile", err)
		}
	})

	t.Run("zero max_subpages from file disables crawl", func(t *testing.T) {
		t.Parallel()

		dir := t.TempDir()
		path := filepath.Join(dir, ".riskhound")
		if err := os.WriteFile(path, []byte("max_subpages: 0\n"), 0o600); err != nil {
			t.Fatal(err)
		}

		c := NewConfig()
		c.ConfigFilePath = path
		if err := LoadFile(c); err != nil {
			t.Fatalf("LoadFile() = %v, want nil", err)
		}
		if c.MaxSubpages != 0 {
			t.Errorf("MaxSubpages = %d, want 0", c.MaxSubpages)
		}
	})
}
