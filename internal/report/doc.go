// Package report renders batch assessment results in several formats.
//
// This package implements Writers for:
//   - Plain text console output with color-coded risk tiers
//   - JSON for tool integration
//   - Markdown for documentation and sharing
//   - CSV for spreadsheet import
//
// All writers consume the same assessment slice and batch summary, so
// one run can feed several outputs through MultiWriter.
package report
