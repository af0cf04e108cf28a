// Package analyzer implements the feature extractors that fill a
// model.FeatureVector: domain lexical analysis, WHOIS registration
// data, page content, TLS certificate inspection, DNS and availability
// probing, and the same-origin subpage sweep.
//
// Each analyzer owns one block of the vector and overwrites only its
// own fields. Analyzers never decide risk; they record observations and
// leave judgment to the scoring package. A failed analyzer leaves its
// block at the vector's documented defaults, so partial extraction
// degrades the assessment instead of aborting it.
package analyzer
