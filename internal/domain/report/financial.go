package report

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// FinancialTotals holds the headline figures of a financial summary.
// NetIncome is always recomputed from its inputs, never stored.
type FinancialTotals struct {
	PremiumIncome    decimal.Decimal `json:"premium_income"`
	ClaimPayments    decimal.Decimal `json:"claim_payments"`
	NetIncome        decimal.Decimal `json:"net_income"`
	TransactionCount int64           `json:"transaction_count"`
}

// PaymentMethodShare is one row of the payment-method distribution
type PaymentMethodShare struct {
	Method     string          `json:"method"`
	Count      int64           `json:"count"`
	Amount     decimal.Decimal `json:"amount"`
	Percentage decimal.Decimal `json:"percentage"` // Count / total count * 100, 1dp
}

// PeriodAmount is one time-series bucket of an amount aggregate
type PeriodAmount struct {
	Period string          `json:"period"` // bucket label, layout per Granularity
	Count  int64           `json:"count"`
	Amount decimal.Decimal `json:"amount"`
}

// FinancialSummary is the read model for the financial_summary report
type FinancialSummary struct {
	PeriodStart     time.Time            `json:"period_start"`
	PeriodEnd       time.Time            `json:"period_end"`
	Totals          FinancialTotals      `json:"totals"`
	PaymentMethods  []PaymentMethodShare `json:"payment_method_distribution"`
	PremiumByPeriod []PeriodAmount       `json:"premium_income_by_period"`
	ClaimsByPeriod  []PeriodAmount       `json:"claim_payments_by_period"`
}

// TransactionRow is one row-level transaction joined to its policy/client/claim
type TransactionRow struct {
	ID           uuid.UUID       `json:"id"`
	Date         time.Time       `json:"date"`
	Amount       decimal.Decimal `json:"amount"`
	Method       string          `json:"method"`
	Status       string          `json:"status"`
	PolicyNumber string          `json:"policy_number"`
	ClientName   string          `json:"client_name"`
	ClaimID      *uuid.UUID      `json:"claim_id,omitempty"`
}

// FinancialTransactions is the read model for the financial_transactions report
type FinancialTransactions struct {
	PeriodStart     time.Time        `json:"period_start"`
	PeriodEnd       time.Time        `json:"period_end"`
	PremiumPayments []TransactionRow `json:"premium_payments"`
	ClaimPayments   []TransactionRow `json:"claim_payments"`
	Summary         FinancialTotals  `json:"summary"`
}

// FinancialFilter scopes financial report collection
type FinancialFilter struct {
	Range       DateRange
	Granularity Granularity
}

// FinancialReportRepository defines the collector contract for financial reports.
// Implementations aggregate in SQL (SUM/COUNT/GROUP BY) and compute derived
// fields from the scanned decimals; they apply no other business rules.
type FinancialReportRepository interface {
	// GetFinancialSummary returns totals, payment-method distribution and
	// per-period premium/claim buckets for the range
	GetFinancialSummary(ctx context.Context, filter FinancialFilter) (*FinancialSummary, error)

	// GetFinancialTransactions returns row-level premium and claim
	// transactions for the range, newest first
	GetFinancialTransactions(ctx context.Context, filter FinancialFilter) (*FinancialTransactions, error)
}
