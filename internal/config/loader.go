package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"
)

// File is the YAML representation of a riskhound configuration file.
// Every field is optional; unset fields keep their defaults. Durations
// are expressed in seconds.
type File struct {
	TimeoutSeconds        int      `yaml:"timeout_seconds"`
	SubpageTimeoutSeconds int      `yaml:"subpage_timeout_seconds"`
	HeadTimeoutSeconds    int      `yaml:"head_timeout_seconds"`
	MaxSubpages           *int     `yaml:"max_subpages"`
	Workers               int      `yaml:"workers"`
	KeywordTTLSeconds     int      `yaml:"keyword_ttl_seconds"`
	UserAgent             string   `yaml:"user_agent"`
	SuspiciousTLDs        []string `yaml:"suspicious_tlds"`
	BrandKeywords         []string `yaml:"brand_keywords"`
	TrustedCAs            []string `yaml:"trusted_cas"`
	SuspiciousRegistrars  []string `yaml:"suspicious_registrars"`
	SuspiciousCombos      []string `yaml:"suspicious_combos"`
	BlacklistIPFile       string   `yaml:"blacklist_ip_file"`
	BlacklistDomainFile   string   `yaml:"blacklist_domain_file"`
	KeywordFile           string   `yaml:"keyword_file"`
	DBDir                 string   `yaml:"db_dir"`
}

// ConfigFileName is the default name looked up in the working
// directory and the XDG config directory.
const ConfigFileName = ".riskhound"

// LoadFile reads a YAML config file and overlays it onto c. An
// explicit path that does not exist is an error; the implicit default
// locations are only applied when present.
func LoadFile(c *Config) error {
	path := c.ConfigFilePath
	explicit := path != ""
	if !explicit {
		path = findDefaultFile()
		if path == "" {
			return nil
		}
	}

	data, err := os.ReadFile(filepath.Clean(path))
	if err != nil {
		if explicit && errors.Is(err, os.ErrNotExist) {
			return fmt.Errorf("%w: %s", ErrConfigFileNotFound, path)
		}
		if !explicit {
			return nil
		}
		return fmt.Errorf("config: read %s: %w", path, err)
	}

	var f File
	if err := yaml.Unmarshal(data, &f); err != nil {
		return fmt.Errorf("%w: %s", ErrInvalidConfigFile, err)
	}
	f.apply(c)
	return nil
}

// findDefaultFile returns the first existing default config file,
// preferring the working directory over the XDG config directory.
func findDefaultFile() string {
	candidates := []string{
		ConfigFileName,
		filepath.Join(XDGConfigDir(), ConfigFileName),
	}
	for _, p := range candidates {
		if info, err := os.Stat(p); err == nil && !info.IsDir() {
			return p
		}
	}
	return ""
}

// apply overlays non-empty file values onto c. List fields replace the
// defaults wholesale so a file can also shrink a list.
func (f *File) apply(c *Config) {
	if f.TimeoutSeconds > 0 {
		c.Timeout = time.Duration(f.TimeoutSeconds) * time.Second
	}
	if f.SubpageTimeoutSeconds > 0 {
		c.SubpageTimeout = time.Duration(f.SubpageTimeoutSeconds) * time.Second
	}
	if f.HeadTimeoutSeconds > 0 {
		c.HeadTimeout = time.Duration(f.HeadTimeoutSeconds) * time.Second
	}
	if f.MaxSubpages != nil {
		c.MaxSubpages = *f.MaxSubpages
	}
	if f.Workers > 0 {
		c.Workers = f.Workers
	}
	if f.KeywordTTLSeconds > 0 {
		c.KeywordTTL = time.Duration(f.KeywordTTLSeconds) * time.Second
	}
	if f.UserAgent != "" {
		c.UserAgent = f.UserAgent
	}
	if len(f.SuspiciousTLDs) > 0 {
		c.SuspiciousTLDs = f.SuspiciousTLDs
	}
	if len(f.BrandKeywords) > 0 {
		c.BrandKeywords = f.BrandKeywords
	}
	if len(f.TrustedCAs) > 0 {
		c.TrustedCAs = f.TrustedCAs
	}
	if len(f.SuspiciousRegistrars) > 0 {
		c.SuspiciousRegistrars = f.SuspiciousRegistrars
	}
	if len(f.SuspiciousCombos) > 0 {
		c.SuspiciousCombos = f.SuspiciousCombos
	}
	if f.BlacklistIPFile != "" {
		c.BlacklistIPFile = f.BlacklistIPFile
	}
	if f.BlacklistDomainFile != "" {
		c.BlacklistDomainFile = f.BlacklistDomainFile
	}
	if f.KeywordFile != "" {
		c.KeywordFile = f.KeywordFile
	}
	if f.DBDir != "" {
		c.DBDir = f.DBDir
	}
}
