// Package model defines the core data structures for riskhound.
// It contains the feature vector built by the analyzers, the risk
// assessment produced by the scoring engine, and the per-subpage
// records collected by the crawler.
package model
