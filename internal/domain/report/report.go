package report

import (
	"time"

	"github.com/ipms/backend/internal/domain/shared"
)

// Type identifies which aggregates a report is built from
type Type string

const (
	TypeFinancialSummary      Type = "financial_summary"
	TypeFinancialTransactions Type = "financial_transactions"
	TypePolicyPerformance     Type = "policy_performance"
	TypeClientPortfolio       Type = "client_portfolio"
)

// AllTypes returns every supported report type
func AllTypes() []Type {
	return []Type{
		TypeFinancialSummary,
		TypeFinancialTransactions,
		TypePolicyPerformance,
		TypeClientPortfolio,
	}
}

// IsValid reports whether t is a known report type
func (t Type) IsValid() bool {
	switch t {
	case TypeFinancialSummary, TypeFinancialTransactions, TypePolicyPerformance, TypeClientPortfolio:
		return true
	}
	return false
}

// Format is the output artifact format
type Format string

const (
	FormatPDF   Format = "pdf"
	FormatExcel Format = "excel"
	FormatCSV   Format = "csv"
)

// IsValid reports whether f is a supported output format
func (f Format) IsValid() bool {
	switch f {
	case FormatPDF, FormatExcel, FormatCSV:
		return true
	}
	return false
}

// Extension returns the file extension (with dot) for the format
func (f Format) Extension() string {
	switch f {
	case FormatExcel:
		return ".xlsx"
	case FormatCSV:
		return ".csv"
	default:
		return ".pdf"
	}
}

// Granularity controls how time-series aggregates are bucketed
type Granularity string

const (
	GranularityDay     Granularity = "day"
	GranularityWeek    Granularity = "week"
	GranularityMonth   Granularity = "month"
	GranularityQuarter Granularity = "quarter"
	GranularityYear    Granularity = "year"
)

// IsValid reports whether g is a known granularity
func (g Granularity) IsValid() bool {
	switch g {
	case GranularityDay, GranularityWeek, GranularityMonth, GranularityQuarter, GranularityYear:
		return true
	}
	return false
}

// TruncUnit returns the date_trunc unit for the granularity
func (g Granularity) TruncUnit() string {
	switch g {
	case GranularityDay:
		return "day"
	case GranularityWeek:
		return "week"
	case GranularityQuarter:
		return "quarter"
	case GranularityYear:
		return "year"
	default:
		return "month"
	}
}

// BucketLayout returns the time layout used to label a period bucket
func (g Granularity) BucketLayout() string {
	switch g {
	case GranularityDay:
		return "2006-01-02"
	case GranularityWeek:
		return "2006-01-02"
	case GranularityYear:
		return "2006"
	default:
		return "2006-01"
	}
}

// DateRange is a closed reporting period
type DateRange struct {
	Start time.Time `json:"start"`
	End   time.Time `json:"end"`
}

// Validate checks that the range is usable for collection
func (r DateRange) Validate() error {
	if r.Start.IsZero() || r.End.IsZero() {
		return shared.NewDomainError("INVALID_INPUT", "report date range is required")
	}
	if r.End.Before(r.Start) {
		return shared.NewDomainError("INVALID_INPUT", "report date range end precedes start")
	}
	return nil
}

// Previous returns the immediately preceding window of equal length,
// used for growth-rate comparisons.
func (r DateRange) Previous() DateRange {
	length := r.End.Sub(r.Start)
	return DateRange{
		Start: r.Start.Add(-length - time.Nanosecond),
		End:   r.Start.Add(-time.Nanosecond),
	}
}
