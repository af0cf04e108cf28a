package config

import "errors"

var (
	// ErrInvalidTimeout is returned when a timeout is zero or negative.
	ErrInvalidTimeout = errors.New("config: timeout must be positive")

	// ErrInvalidWorkers is returned when the batch concurrency is not
	// at least one.
	ErrInvalidWorkers = errors.New("config: workers must be at least 1")

	// ErrInvalidSubpageCap is returned when the subpage cap is negative.
	ErrInvalidSubpageCap = errors.New("config: max subpages must not be negative")

	// ErrInvalidMaxBodySize is returned when the body size limit is negative.
	ErrInvalidMaxBodySize = errors.New("config: max body size must not be negative")

	// ErrConflictingReportFormats is returned when more than one
	// exclusive report format is selected.
	ErrConflictingReportFormats = errors.New("config: json and markdown reports are mutually exclusive")

	// ErrConfigFileNotFound is returned when an explicitly requested
	// config file does not exist.
	ErrConfigFileNotFound = errors.New("config: config file not found")

	// ErrInvalidConfigFile is returned when the config file cannot be parsed.
	ErrInvalidConfigFile = errors.New("config: invalid config file")
)
