// Package store provides the reference data the analyzers consult
// during an assessment: IP and domain blacklists and the sensitive
// keyword dictionary grouped by category.
//
// Blacklists are loaded once per run into an immutable snapshot, so
// lookups during a batch need no locking. The keyword store refreshes
// itself from its source on a TTL, swapping whole snapshots atomically
// so readers never observe a partially loaded dictionary.
package store
