package report

import "time"

// Metadata identifies a built report: what it covers, when and for whom
// it was generated.
type Metadata struct {
	ReportType  Type      `json:"report_type"`
	PeriodStart time.Time `json:"period_start"`
	PeriodEnd   time.Time `json:"period_end"`
	GeneratedAt time.Time `json:"generated_at"`
	GeneratedBy string    `json:"generated_by"`
}

// KeyFigure is one headline number of a report, already formatted for
// presentation.
type KeyFigure struct {
	Label string `json:"label"`
	Value string `json:"value"`
}

// Table is one tabular section of a report. Rows carry presentation
// strings; all business formatting happens before the data reaches a
// renderer.
type Table struct {
	Title   string     `json:"title"`
	Columns []string   `json:"columns"`
	Rows    [][]string `json:"rows"`
}

// ReportData is the transient aggregate handed to a renderer. It is
// built once per generation, consumed once, and never persisted. Given
// identical ReportData, every renderer must produce deterministic
// output.
type ReportData struct {
	Meta       Metadata    `json:"metadata"`
	Title      string      `json:"title"`
	KeyFigures []KeyFigure `json:"key_figures"`
	Tables     []Table     `json:"tables"`
}
