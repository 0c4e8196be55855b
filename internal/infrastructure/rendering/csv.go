package rendering

import (
	"bytes"
	"context"
	"encoding/csv"

	"github.com/ipms/backend/internal/domain/report"
)

// CSVRenderer serializes reports into a single CSV document. Sections are
// separated by blank lines so the output stays readable in a plain viewer
// while remaining parseable row by row.
type CSVRenderer struct{}

// NewCSVRenderer creates a CSV renderer
func NewCSVRenderer() *CSVRenderer {
	return &CSVRenderer{}
}

// Format returns the output format this renderer produces
func (r *CSVRenderer) Format() report.Format {
	return report.FormatCSV
}

// Render writes the report as CSV
func (r *CSVRenderer) Render(ctx context.Context, data *report.ReportData) ([]byte, error) {
	if data == nil {
		return nil, NewRenderError(ErrCodeInvalidData, "report data is nil", nil)
	}

	var buf bytes.Buffer
	w := csv.NewWriter(&buf)

	records := [][]string{
		{data.Title},
		{"Period", formatDate(data.Meta.PeriodStart) + " - " + formatDate(data.Meta.PeriodEnd)},
		{"Generated", formatDateTime(data.Meta.GeneratedAt)},
	}
	if data.Meta.GeneratedBy != "" {
		records = append(records, []string{"Generated By", data.Meta.GeneratedBy})
	}

	if len(data.KeyFigures) > 0 {
		records = append(records, []string{}, []string{"Metric", "Value"})
		for _, kf := range data.KeyFigures {
			records = append(records, []string{kf.Label, kf.Value})
		}
	}

	for _, table := range data.Tables {
		records = append(records, []string{}, []string{table.Title}, table.Columns)
		records = append(records, table.Rows...)
	}

	if err := w.WriteAll(records); err != nil {
		return nil, NewRenderError(ErrCodeRenderFailed, "failed to write csv", err)
	}
	return buf.Bytes(), nil
}
