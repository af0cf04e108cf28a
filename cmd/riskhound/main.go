// Package main provides the entry point for the riskhound CLI.
//
// riskhound is a batch URL risk-assessment tool. It fetches each target,
// extracts domain, content, certificate, network, and subpage features,
// and scores the result into LOW/MEDIUM/HIGH risk tiers.
//
// Usage:
//
//	riskhound scan <url> [url...]
//
// See --help for all available options.
package main

// main is the entry point for riskhound.
func main() {
	Execute()
}
