package persistence

import (
	"context"

	"github.com/ipms/backend/internal/domain/report"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// GormPolicyReportRepository implements PolicyReportRepository using GORM
type GormPolicyReportRepository struct {
	db *gorm.DB
}

// NewGormPolicyReportRepository creates a new GormPolicyReportRepository
func NewGormPolicyReportRepository(db *gorm.DB) *GormPolicyReportRepository {
	return &GormPolicyReportRepository{db: db}
}

// GetPolicyPerformance returns policy metrics for the range. Growth rates
// compare against the preceding window of equal length.
func (r *GormPolicyReportRepository) GetPolicyPerformance(ctx context.Context, filter report.FinancialFilter) (*report.PolicyPerformance, error) {
	db := r.db.WithContext(ctx)
	cur := filter.Range
	prev := cur.Previous()

	newPolicies, curPremium, err := r.policyCounts(db, cur)
	if err != nil {
		return nil, err
	}
	prevPolicies, prevPremium, err := r.policyCounts(db, prev)
	if err != nil {
		return nil, err
	}

	premiumIncome, claimPayments, err := r.paymentTotals(db, cur)
	if err != nil {
		return nil, err
	}

	statusDist, err := r.statusDistribution(db, cur)
	if err != nil {
		return nil, err
	}

	products, err := r.productPerformance(db, cur)
	if err != nil {
		return nil, err
	}

	claims, err := r.claimsAnalysis(db, cur)
	if err != nil {
		return nil, err
	}

	renewals, err := r.renewalAnalysis(db, cur)
	if err != nil {
		return nil, err
	}

	return &report.PolicyPerformance{
		PeriodStart: cur.Start,
		PeriodEnd:   cur.End,
		Metrics: report.PolicyMetrics{
			NewPolicies:       newPolicies,
			NewPoliciesGrowth: report.GrowthRate(decimal.NewFromInt(newPolicies), decimal.NewFromInt(prevPolicies)),
			TotalPremium:      curPremium,
			PremiumGrowth:     report.GrowthRate(curPremium, prevPremium),
			ClaimsRatio:       report.Ratio(claimPayments, premiumIncome),
			RenewalRate:       renewals.RenewalRate,
		},
		StatusDistribution: statusDist,
		ProductPerformance: products,
		Claims:             claims,
		Renewals:           *renewals,
	}, nil
}

func (r *GormPolicyReportRepository) policyCounts(db *gorm.DB, dr report.DateRange) (int64, decimal.Decimal, error) {
	var count int64
	if err := db.Table("policies").
		Where("created_at BETWEEN ? AND ?", dr.Start, dr.End).
		Count(&count).Error; err != nil {
		return 0, decimal.Zero, err
	}

	var premium decimal.Decimal
	if err := db.Table("policies").
		Select("COALESCE(SUM(premium), 0)").
		Where("created_at BETWEEN ? AND ?", dr.Start, dr.End).
		Scan(&premium).Error; err != nil {
		return 0, decimal.Zero, err
	}
	return count, premium, nil
}

func (r *GormPolicyReportRepository) paymentTotals(db *gorm.DB, dr report.DateRange) (decimal.Decimal, decimal.Decimal, error) {
	var premiumIncome decimal.Decimal
	if err := db.Table("payments").
		Select("COALESCE(SUM(amount), 0)").
		Where("transaction_type = ?", "premium").
		Where("payment_date BETWEEN ? AND ?", dr.Start, dr.End).
		Where("status = ?", "completed").
		Scan(&premiumIncome).Error; err != nil {
		return decimal.Zero, decimal.Zero, err
	}

	var claimPayments decimal.Decimal
	if err := db.Table("payments").
		Select("COALESCE(SUM(amount), 0)").
		Where("transaction_type = ?", "claim").
		Where("payment_date BETWEEN ? AND ?", dr.Start, dr.End).
		Where("status = ?", "completed").
		Scan(&claimPayments).Error; err != nil {
		return decimal.Zero, decimal.Zero, err
	}
	return premiumIncome, claimPayments, nil
}

func (r *GormPolicyReportRepository) statusDistribution(db *gorm.DB, dr report.DateRange) ([]report.StatusCount, error) {
	type statusRow struct {
		Status string
		Count  int64
	}
	var rows []statusRow
	if err := db.Table("policies").
		Select("status, COUNT(*) as count").
		Where("created_at <= ?", dr.End).
		Group("status").
		Order("count DESC").
		Scan(&rows).Error; err != nil {
		return nil, err
	}

	var total int64
	for _, row := range rows {
		total += row.Count
	}

	dist := make([]report.StatusCount, len(rows))
	for i, row := range rows {
		dist[i] = report.StatusCount{
			Status:     row.Status,
			Count:      row.Count,
			Percentage: report.Share(row.Count, total),
		}
	}
	return dist, nil
}

func (r *GormPolicyReportRepository) productPerformance(db *gorm.DB, dr report.DateRange) ([]report.ProductStats, error) {
	type productRow struct {
		Product      string
		PolicyCount  int64
		TotalPremium decimal.Decimal
		ClaimAmount  decimal.Decimal
	}
	// Claims are pre-aggregated per policy so the join stays one row per
	// policy and premiums sum without deduplication.
	var rows []productRow
	if err := db.Table("policies po").
		Select(`po.product_type as product,
			COUNT(po.id) as policy_count,
			COALESCE(SUM(po.premium), 0) as total_premium,
			COALESCE(SUM(cl.claim_amount), 0) as claim_amount`).
		Joins(`LEFT JOIN (
			SELECT policy_id, SUM(amount) as claim_amount
			FROM claims
			WHERE date_filed BETWEEN ? AND ?
			GROUP BY policy_id
		) cl ON cl.policy_id = po.id`, dr.Start, dr.End).
		Where("po.created_at BETWEEN ? AND ?", dr.Start, dr.End).
		Group("po.product_type").
		Order("total_premium DESC").
		Scan(&rows).Error; err != nil {
		return nil, err
	}

	stats := make([]report.ProductStats, len(rows))
	for i, row := range rows {
		avg := decimal.Zero
		if row.PolicyCount > 0 {
			avg = row.TotalPremium.Div(decimal.NewFromInt(row.PolicyCount)).Round(2)
		}
		stats[i] = report.ProductStats{
			Product:      row.Product,
			PolicyCount:  row.PolicyCount,
			TotalPremium: row.TotalPremium,
			AvgPremium:   avg,
			ClaimsRatio:  report.Ratio(row.ClaimAmount, row.TotalPremium),
		}
	}
	return stats, nil
}

func (r *GormPolicyReportRepository) claimsAnalysis(db *gorm.DB, dr report.DateRange) (report.ClaimsAnalysis, error) {
	var analysis report.ClaimsAnalysis

	if err := db.Table("claims").
		Where("date_filed BETWEEN ? AND ?", dr.Start, dr.End).
		Count(&analysis.TotalClaims).Error; err != nil {
		return analysis, err
	}

	if err := db.Table("claims").
		Select("COALESCE(SUM(amount), 0)").
		Where("date_filed BETWEEN ? AND ?", dr.Start, dr.End).
		Scan(&analysis.TotalAmount).Error; err != nil {
		return analysis, err
	}

	if err := db.Table("claims").
		Select("COALESCE(SUM(amount), 0)").
		Where("date_filed BETWEEN ? AND ?", dr.Start, dr.End).
		Where("status = ?", "approved").
		Scan(&analysis.ApprovedAmount).Error; err != nil {
		return analysis, err
	}

	type typeRow struct {
		Type        string
		Count       int64
		TotalAmount decimal.Decimal
	}
	var typeRows []typeRow
	if err := db.Table("claims").
		Select("claim_type as type, COUNT(*) as count, COALESCE(SUM(amount), 0) as total_amount").
		Where("date_filed BETWEEN ? AND ?", dr.Start, dr.End).
		Group("claim_type").
		Order("total_amount DESC").
		Scan(&typeRows).Error; err != nil {
		return analysis, err
	}
	analysis.ByType = make([]report.ClaimTypeStats, len(typeRows))
	for i, row := range typeRows {
		avg := decimal.Zero
		if row.Count > 0 {
			avg = row.TotalAmount.Div(decimal.NewFromInt(row.Count)).Round(2)
		}
		analysis.ByType[i] = report.ClaimTypeStats{
			Type:        row.Type,
			Count:       row.Count,
			TotalAmount: row.TotalAmount,
			AvgAmount:   avg,
		}
	}

	type statusRow struct {
		Status string
		Count  int64
	}
	var statusRows []statusRow
	if err := db.Table("claims").
		Select("status, COUNT(*) as count").
		Where("date_filed BETWEEN ? AND ?", dr.Start, dr.End).
		Group("status").
		Order("count DESC").
		Scan(&statusRows).Error; err != nil {
		return analysis, err
	}
	analysis.ByStatus = make([]report.StatusCount, len(statusRows))
	for i, row := range statusRows {
		analysis.ByStatus[i] = report.StatusCount{
			Status:     row.Status,
			Count:      row.Count,
			Percentage: report.Share(row.Count, analysis.TotalClaims),
		}
	}

	return analysis, nil
}

func (r *GormPolicyReportRepository) renewalAnalysis(db *gorm.DB, dr report.DateRange) (*report.RenewalAnalysis, error) {
	var expiring int64
	if err := db.Table("policies").
		Where("expiry_date BETWEEN ? AND ?", dr.Start, dr.End).
		Count(&expiring).Error; err != nil {
		return nil, err
	}

	var renewed int64
	if err := db.Table("policies").
		Where("expiry_date BETWEEN ? AND ?", dr.Start, dr.End).
		Where("renewal_status = ?", "renewed").
		Count(&renewed).Error; err != nil {
		return nil, err
	}

	return &report.RenewalAnalysis{
		Expiring:    expiring,
		Renewed:     renewed,
		RenewalRate: report.Share(renewed, expiring),
	}, nil
}
