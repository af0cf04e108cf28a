// Package database provides SQLite-based storage for riskhound.
//
// This package implements the RiskDB, which stores:
//   - Risk assessments, one latest row per assessed URL
//   - Known-malicious URLs feeding the blacklist files
//   - Sensitive keyword dictionaries by category
//
// Design decision: We use SQLite (via modernc.org/sqlite) instead of other
// databases because:
// 1. No external dependencies - the database is a single file
// 2. CGO-free implementation allows easy cross-compilation
// 3. Sufficient performance for our use case
// 4. WAL mode provides good concurrent read performance
package database
