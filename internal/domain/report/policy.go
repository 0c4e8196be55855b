package report

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
)

// PolicyMetrics are the headline policy-performance figures with growth
// rates against the immediately preceding window of equal length
type PolicyMetrics struct {
	NewPolicies       int64           `json:"new_policies"`
	NewPoliciesGrowth decimal.Decimal `json:"new_policies_growth"`
	TotalPremium      decimal.Decimal `json:"total_premium"`
	PremiumGrowth     decimal.Decimal `json:"premium_growth"`
	ClaimsRatio       decimal.Decimal `json:"claims_ratio"` // claim payments / premium income * 100
	RenewalRate       decimal.Decimal `json:"renewal_rate"`
}

// StatusCount is one row of a status distribution
type StatusCount struct {
	Status     string          `json:"status"`
	Count      int64           `json:"count"`
	Percentage decimal.Decimal `json:"percentage"`
}

// ProductStats aggregates performance per product type
type ProductStats struct {
	Product      string          `json:"product"`
	PolicyCount  int64           `json:"policy_count"`
	TotalPremium decimal.Decimal `json:"total_premium"`
	AvgPremium   decimal.Decimal `json:"avg_premium"`
	ClaimsRatio  decimal.Decimal `json:"claims_ratio"`
}

// ClaimTypeStats aggregates claims per claim type
type ClaimTypeStats struct {
	Type        string          `json:"type"`
	Count       int64           `json:"count"`
	TotalAmount decimal.Decimal `json:"total_amount"`
	AvgAmount   decimal.Decimal `json:"avg_amount"`
}

// ClaimsAnalysis breaks claims down by type and status
type ClaimsAnalysis struct {
	TotalClaims    int64            `json:"total_claims"`
	TotalAmount    decimal.Decimal  `json:"total_amount"`
	ApprovedAmount decimal.Decimal  `json:"approved_amount"`
	ByType         []ClaimTypeStats `json:"by_type"`
	ByStatus       []StatusCount    `json:"by_status"`
}

// RenewalAnalysis summarizes how expiring policies were renewed in the period
type RenewalAnalysis struct {
	Expiring    int64           `json:"expiring"`
	Renewed     int64           `json:"renewed"`
	RenewalRate decimal.Decimal `json:"renewal_rate"`
}

// PolicyPerformance is the read model for the policy_performance report
type PolicyPerformance struct {
	PeriodStart        time.Time       `json:"period_start"`
	PeriodEnd          time.Time       `json:"period_end"`
	Metrics            PolicyMetrics   `json:"metrics"`
	StatusDistribution []StatusCount   `json:"policy_status_distribution"`
	ProductPerformance []ProductStats  `json:"product_performance"`
	Claims             ClaimsAnalysis  `json:"claims_analysis"`
	Renewals           RenewalAnalysis `json:"renewal_analysis"`
}

// PolicyReportRepository defines the collector contract for policy reports
type PolicyReportRepository interface {
	// GetPolicyPerformance returns policy metrics for the range, including
	// growth rates computed against the preceding window of equal length
	GetPolicyPerformance(ctx context.Context, filter FinancialFilter) (*PolicyPerformance, error)
}
