// Package scoring converts a feature vector into a risk assessment.
//
// Two interchangeable strategies exist. The rule scorer, used whenever
// no trained classifier is configured, walks a fixed ordered rule table
// and accumulates point deltas, emitting one factor string per fired
// rule. The classifier scorer delegates to a trained model over the
// fixed-order numeric vector and falls back to the rules when the model
// errors. Both are pure functions of the vector: scoring the same
// vector twice yields an identical tier, score, and factor list.
package scoring
