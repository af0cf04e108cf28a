// Package crawler provides the subpage crawl used during an assessment.
//
// # Architecture
//
// The crawler package is designed around the Spider type. The Spider
// fetches the seed page, collects its same-origin links as subpage
// candidates up to a fixed cap, and then fetches each candidate once.
// Parsing is handled by the Parser type, which extracts the links,
// forms, scripts, images, and metadata the analyzers consume.
//
// Design decision: We implement our own crawler rather than using a
// third-party library because:
//  1. The crawl is breadth-1 by definition: only links on the seed
//     page are candidates, never links found on subpages
//  2. The candidate cap and URL normalization rules are part of the
//     assessment semantics and must match them exactly
//  3. Reduces external dependencies and potential security issues
//
// # Components
//
//   - Spider: collects and fetches same-origin subpages
//   - Parser: HTML parser that extracts links, forms, and page features
package crawler
