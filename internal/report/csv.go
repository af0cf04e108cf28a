package report

import (
	"encoding/csv"
	"io"
	"strconv"
	"strings"

	"github.com/riskhound/riskhound/internal/model"
)

// csvHeader is the fixed column layout of the CSV output.
var csvHeader = []string{"url", "risk_level", "risk_score", "factors", "error", "timestamp"}

// CSVWriter outputs one row per assessed URL for spreadsheet import.
//
// Design decision: Factors are joined with "; " into a single column
// instead of spreading into dynamic columns, so the header stays fixed
// and rows from different runs remain comparable.
type CSVWriter struct {
	baseWriter
}

// NewCSVWriter creates a CSVWriter that outputs to the given writer.
func NewCSVWriter(output io.Writer) *CSVWriter {
	return &CSVWriter{
		baseWriter: newBaseWriter(output),
	}
}

// Write outputs the header row plus one row per assessment.
func (w *CSVWriter) Write(assessments []*model.RiskAssessment, _ model.BatchSummary) (int, error) {
	counter := &countingWriter{w: w.output}
	cw := csv.NewWriter(counter)

	if err := cw.Write(csvHeader); err != nil {
		return counter.n, err
	}

	for _, a := range assessments {
		if a == nil {
			continue
		}

		row := []string{
			a.URL,
			a.Tier.String(),
			strconv.Itoa(a.Score),
			strings.Join(a.Factors, "; "),
			a.ErrorMessage,
			a.Timestamp.Format("2006-01-02 15:04:05"),
		}
		if err := cw.Write(row); err != nil {
			return counter.n, err
		}
	}

	cw.Flush()
	return counter.n, cw.Error()
}

// countingWriter tracks bytes written so CSVWriter can satisfy the
// Writer interface's byte count.
type countingWriter struct {
	w io.Writer
	n int
}

func (c *countingWriter) Write(p []byte) (int, error) {
	n, err := c.w.Write(p)
	c.n += n
	return n, err
}
