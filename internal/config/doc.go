// Package config defines riskhound's runtime configuration: fetch
// timeouts, crawl limits, batch concurrency, the fixed detection lists,
// and report selection. Configuration flows from defaults, then an
// optional YAML file, then CLI flags, with later layers winning.
package config
