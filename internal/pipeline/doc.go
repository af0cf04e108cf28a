// Package pipeline orchestrates feature extraction for a single URL and
// fans the per-URL pipeline out over a batch of targets.
//
// A Pipeline runs an ordered list of steps against one feature vector;
// each step wraps one analyzer. The Orchestrator runs a pipeline per
// target with bounded concurrency and turns panics and hard failures
// into FAILED assessments instead of losing the slot.
package pipeline
