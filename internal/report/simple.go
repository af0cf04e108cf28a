package report

import (
	"fmt"
	"io"
	"strings"

	"github.com/fatih/color"

	"github.com/riskhound/riskhound/internal/model"
)

// SimpleWriter outputs human-readable text reports.
// This format is designed for terminal display with color-coded risk
// tiers and clear section formatting.
//
// Design decision: Color comes from fatih/color rather than raw ANSI
// sequences because the library disables itself automatically when the
// output is not a terminal, so piping the report to a file stays clean.
type SimpleWriter struct {
	baseWriter

	// verbose enables the per-assessment factor listing.
	verbose bool
}

// SimpleWriterOption configures a SimpleWriter.
type SimpleWriterOption func(*SimpleWriter)

// WithVerbose enables verbose output listing every risk factor.
func WithVerbose(verbose bool) SimpleWriterOption {
	return func(w *SimpleWriter) {
		w.verbose = verbose
	}
}

// NewSimpleWriter creates a SimpleWriter that outputs to the given writer.
func NewSimpleWriter(output io.Writer, opts ...SimpleWriterOption) *SimpleWriter {
	w := &SimpleWriter{
		baseWriter: newBaseWriter(output),
		verbose:    false,
	}

	for _, opt := range opts {
		opt(w)
	}

	return w
}

// tierColors maps each tier to its terminal color.
var tierColors = map[model.Tier]*color.Color{
	model.TierHigh:   color.New(color.FgRed, color.Bold),
	model.TierMedium: color.New(color.FgYellow),
	model.TierLow:    color.New(color.FgGreen),
	model.TierFailed: color.New(color.FgHiBlack),
}

// colorTier renders the tier name in its color.
func colorTier(t model.Tier) string {
	c, ok := tierColors[t]
	if !ok {
		return t.String()
	}
	return c.Sprint(t.String())
}

// Write outputs the batch results in human-readable format.
func (w *SimpleWriter) Write(assessments []*model.RiskAssessment, summary model.BatchSummary) (int, error) {
	var sb strings.Builder

	w.writeHeader(&sb, summary)
	w.writeAssessments(&sb, assessments)
	w.writeSummary(&sb, summary)

	return w.output.Write([]byte(sb.String()))
}

// writeHeader writes the report header.
func (w *SimpleWriter) writeHeader(sb *strings.Builder, summary model.BatchSummary) {
	sb.WriteString("\n")
	sb.WriteString(strings.Repeat("=", 70))
	sb.WriteString("\n")
	sb.WriteString("                        RISKHOUND REPORT\n")
	sb.WriteString(strings.Repeat("=", 70))
	sb.WriteString("\n\n")
	sb.WriteString(fmt.Sprintf("URLs Assessed:  %d\n", summary.Total))
	sb.WriteString("\n")
}

// writeAssessments writes one block per assessed URL.
func (w *SimpleWriter) writeAssessments(sb *strings.Builder, assessments []*model.RiskAssessment) {
	sb.WriteString(strings.Repeat("-", 70))
	sb.WriteString("\n")
	sb.WriteString("RESULTS\n")
	sb.WriteString(strings.Repeat("-", 70))
	sb.WriteString("\n\n")

	for _, a := range assessments {
		if a == nil {
			continue
		}

		if a.Tier == model.TierFailed {
			sb.WriteString(fmt.Sprintf("  [%s] %s\n", colorTier(a.Tier), a.URL))
			sb.WriteString(fmt.Sprintf("      Error: %s\n", a.ErrorMessage))
			continue
		}

		sb.WriteString(fmt.Sprintf("  [%s] %3d  %s\n", colorTier(a.Tier), a.Score, a.URL))

		if w.verbose {
			for _, factor := range a.Factors {
				sb.WriteString(fmt.Sprintf("      - %s\n", factor))
			}
		}
	}
	sb.WriteString("\n")
}

// writeSummary writes the per-tier counts.
func (w *SimpleWriter) writeSummary(sb *strings.Builder, summary model.BatchSummary) {
	sb.WriteString(strings.Repeat("-", 70))
	sb.WriteString("\n")
	sb.WriteString("SUMMARY\n")
	sb.WriteString(strings.Repeat("-", 70))
	sb.WriteString("\n\n")

	sb.WriteString(fmt.Sprintf("  %s:   %d\n", colorTier(model.TierHigh), summary.High))
	sb.WriteString(fmt.Sprintf("  %s: %d\n", colorTier(model.TierMedium), summary.Medium))
	sb.WriteString(fmt.Sprintf("  %s:    %d\n", colorTier(model.TierLow), summary.Low))
	sb.WriteString(fmt.Sprintf("  %s: %d\n", colorTier(model.TierFailed), summary.Failed))
	sb.WriteString("\n")
	sb.WriteString(strings.Repeat("=", 70))
	sb.WriteString("\n")
}
