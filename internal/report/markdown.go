package report

import (
	"io"
	"strconv"
	"strings"

	"github.com/nao1215/markdown"
	"github.com/nao1215/markdown/mermaid/piechart"

	"github.com/riskhound/riskhound/internal/model"
)

// MarkdownWriter outputs reports in Markdown format.
// This format is designed for documentation and sharing.
//
// Design decision: We use the nao1215/markdown library for fluent markdown
// generation which provides:
// 1. Type-safe markdown generation
// 2. Support for tables, lists, and code blocks
// 3. GitHub-flavored markdown alerts
type MarkdownWriter struct {
	baseWriter
}

// NewMarkdownWriter creates a MarkdownWriter that outputs to the given writer.
func NewMarkdownWriter(output io.Writer) *MarkdownWriter {
	return &MarkdownWriter{
		baseWriter: newBaseWriter(output),
	}
}

// Write outputs the batch results in Markdown format.
func (w *MarkdownWriter) Write(assessments []*model.RiskAssessment, summary model.BatchSummary) (int, error) {
	md := markdown.NewMarkdown(w.output)

	w.writeHeader(md, summary)
	w.writeSummary(md, summary)
	w.writeResults(md, assessments)
	w.writeDetails(md, assessments)
	w.writeFooter(md)

	return len(md.String()), md.Build()
}

// writeHeader writes the report title.
func (w *MarkdownWriter) writeHeader(md *markdown.Markdown, summary model.BatchSummary) {
	md.H1("Riskhound Report")
	md.PlainText("")
	md.PlainTextf("%d URLs assessed.", summary.Total)
	md.PlainText("")
}

// writeSummary writes the per-tier summary table and alert.
func (w *MarkdownWriter) writeSummary(md *markdown.Markdown, summary model.BatchSummary) {
	md.H2("Risk Summary")
	md.PlainText("")

	md.Table(markdown.TableSet{
		Header: []string{"Risk Level", "Count"},
		Rows: [][]string{
			{"🔴 High", strconv.Itoa(summary.High)},
			{"🟡 Medium", strconv.Itoa(summary.Medium)},
			{"🟢 Low", strconv.Itoa(summary.Low)},
			{"⚪ Failed", strconv.Itoa(summary.Failed)},
			{"**Total**", "**" + strconv.Itoa(summary.Total) + "**"},
		},
	})
	md.PlainText("")

	if summary.Total > 0 {
		w.writePieChart(md, summary)
	}

	w.writeAlert(md, summary)
}

// writePieChart writes a mermaid pie chart for the tier distribution.
func (w *MarkdownWriter) writePieChart(md *markdown.Markdown, summary model.BatchSummary) {
	chart := piechart.NewPieChart(
		io.Discard,
		piechart.WithTitle("Risk Level Distribution"),
		piechart.WithShowData(true),
	)

	if summary.High > 0 {
		chart.LabelAndIntValue("High", uint64(summary.High))
	}
	if summary.Medium > 0 {
		chart.LabelAndIntValue("Medium", uint64(summary.Medium))
	}
	if summary.Low > 0 {
		chart.LabelAndIntValue("Low", uint64(summary.Low))
	}
	if summary.Failed > 0 {
		chart.LabelAndIntValue("Failed", uint64(summary.Failed))
	}

	md.PlainText("")
	md.CodeBlocks(markdown.SyntaxHighlightMermaid, chart.String())
	md.PlainText("")
}

// writeAlert writes an appropriate alert based on tier counts.
func (w *MarkdownWriter) writeAlert(md *markdown.Markdown, summary model.BatchSummary) {
	switch {
	case summary.High > 0:
		md.Cautionf(
			"High risk sites detected! %d URL(s) are likely hosting illegal or fraudulent content.",
			summary.High,
		)
	case summary.Medium > 0:
		md.Warningf(
			"Medium risk sites detected. %d URL(s) should be reviewed manually.",
			summary.Medium,
		)
	case summary.Failed > 0 && summary.Low == 0:
		md.Importantf(
			"All %d assessment(s) failed. Check connectivity and try again.",
			summary.Failed,
		)
	default:
		md.Tip("No elevated risk detected in this batch.")
	}
	md.PlainText("")
}

// writeResults writes the per-URL results table.
func (w *MarkdownWriter) writeResults(md *markdown.Markdown, assessments []*model.RiskAssessment) {
	md.H2("Results")
	md.PlainText("")

	if len(assessments) == 0 {
		md.PlainText("No URLs were assessed.")
		md.PlainText("")
		return
	}

	rows := make([][]string, 0, len(assessments))
	for _, a := range assessments {
		if a == nil {
			continue
		}
		rows = append(rows, []string{
			"`" + truncateString(a.URL, 60) + "`",
			a.Tier.String(),
			strconv.Itoa(a.Score),
			strconv.Itoa(len(a.Factors)),
		})
	}

	md.Table(markdown.TableSet{
		Header: []string{"URL", "Risk Level", "Score", "Factors"},
		Rows:   rows,
	})
	md.PlainText("")
}

// writeDetails writes a collapsible factor list per URL.
func (w *MarkdownWriter) writeDetails(md *markdown.Markdown, assessments []*model.RiskAssessment) {
	for _, a := range assessments {
		if a == nil || len(a.Factors) == 0 {
			continue
		}

		var body strings.Builder
		for _, factor := range a.Factors {
			body.WriteString("- ")
			body.WriteString(factor)
			body.WriteString("\n")
		}
		md.Details(a.URL, body.String())
	}
	md.PlainText("")
}

// writeFooter writes the report footer.
func (w *MarkdownWriter) writeFooter(md *markdown.Markdown) {
	md.HorizontalRule()
	md.PlainText("")
	md.PlainTextf("*Report generated by [riskhound](https://github.com/riskhound/riskhound)*")
}

// truncateString truncates a string to maxLen characters with ellipsis.
func truncateString(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	if maxLen <= 3 {
		return s[:maxLen]
	}
	return s[:maxLen-3] + "..."
}
