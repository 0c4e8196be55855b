package persistence

import (
	"context"
	"fmt"
	"time"

	"github.com/ipms/backend/internal/domain/report"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// GormFinancialReportRepository implements FinancialReportRepository using GORM
type GormFinancialReportRepository struct {
	db *gorm.DB
}

// NewGormFinancialReportRepository creates a new GormFinancialReportRepository
func NewGormFinancialReportRepository(db *gorm.DB) *GormFinancialReportRepository {
	return &GormFinancialReportRepository{db: db}
}

// GetFinancialSummary returns totals, the payment-method distribution and
// per-period premium/claim buckets for the range
func (r *GormFinancialReportRepository) GetFinancialSummary(ctx context.Context, filter report.FinancialFilter) (*report.FinancialSummary, error) {
	db := r.db.WithContext(ctx)

	premiumIncome, err := r.sumAmount(db, "premium", filter.Range)
	if err != nil {
		return nil, err
	}
	claimPayments, err := r.sumAmount(db, "claim", filter.Range)
	if err != nil {
		return nil, err
	}

	var txCount int64
	if err := db.Table("payments").
		Where("payment_date BETWEEN ? AND ?", filter.Range.Start, filter.Range.End).
		Where("status = ?", "completed").
		Count(&txCount).Error; err != nil {
		return nil, err
	}

	methods, err := r.paymentMethodDistribution(db, filter.Range, txCount)
	if err != nil {
		return nil, err
	}

	granularity := filter.Granularity
	if !granularity.IsValid() {
		granularity = report.GranularityMonth
	}
	premiumByPeriod, err := r.amountsByPeriod(db, "premium", filter.Range, granularity)
	if err != nil {
		return nil, err
	}
	claimsByPeriod, err := r.amountsByPeriod(db, "claim", filter.Range, granularity)
	if err != nil {
		return nil, err
	}

	return &report.FinancialSummary{
		PeriodStart: filter.Range.Start,
		PeriodEnd:   filter.Range.End,
		Totals: report.FinancialTotals{
			PremiumIncome:    premiumIncome,
			ClaimPayments:    claimPayments,
			NetIncome:        premiumIncome.Sub(claimPayments),
			TransactionCount: txCount,
		},
		PaymentMethods:  methods,
		PremiumByPeriod: premiumByPeriod,
		ClaimsByPeriod:  claimsByPeriod,
	}, nil
}

// GetFinancialTransactions returns row-level premium and claim transactions
// for the range, newest first
func (r *GormFinancialReportRepository) GetFinancialTransactions(ctx context.Context, filter report.FinancialFilter) (*report.FinancialTransactions, error) {
	db := r.db.WithContext(ctx)

	premiums, err := r.transactionRows(db, "premium", filter.Range)
	if err != nil {
		return nil, err
	}
	claims, err := r.transactionRows(db, "claim", filter.Range)
	if err != nil {
		return nil, err
	}

	premiumIncome := decimal.Zero
	for _, row := range premiums {
		premiumIncome = premiumIncome.Add(row.Amount)
	}
	claimPayments := decimal.Zero
	for _, row := range claims {
		claimPayments = claimPayments.Add(row.Amount)
	}

	return &report.FinancialTransactions{
		PeriodStart:     filter.Range.Start,
		PeriodEnd:       filter.Range.End,
		PremiumPayments: premiums,
		ClaimPayments:   claims,
		Summary: report.FinancialTotals{
			PremiumIncome:    premiumIncome,
			ClaimPayments:    claimPayments,
			NetIncome:        premiumIncome.Sub(claimPayments),
			TransactionCount: int64(len(premiums) + len(claims)),
		},
	}, nil
}

func (r *GormFinancialReportRepository) sumAmount(db *gorm.DB, txType string, dr report.DateRange) (decimal.Decimal, error) {
	var total decimal.Decimal
	err := db.Table("payments").
		Select("COALESCE(SUM(amount), 0)").
		Where("transaction_type = ?", txType).
		Where("payment_date BETWEEN ? AND ?", dr.Start, dr.End).
		Where("status = ?", "completed").
		Scan(&total).Error
	if err != nil {
		return decimal.Zero, err
	}
	return total, nil
}

func (r *GormFinancialReportRepository) paymentMethodDistribution(db *gorm.DB, dr report.DateRange, total int64) ([]report.PaymentMethodShare, error) {
	type methodRow struct {
		Method string
		Count  int64
		Amount decimal.Decimal
	}
	var rows []methodRow
	if err := db.Table("payments").
		Select("payment_method as method, COUNT(*) as count, COALESCE(SUM(amount), 0) as amount").
		Where("payment_date BETWEEN ? AND ?", dr.Start, dr.End).
		Where("status = ?", "completed").
		Group("payment_method").
		Order("count DESC").
		Scan(&rows).Error; err != nil {
		return nil, err
	}

	shares := make([]report.PaymentMethodShare, len(rows))
	for i, row := range rows {
		shares[i] = report.PaymentMethodShare{
			Method:     row.Method,
			Count:      row.Count,
			Amount:     row.Amount,
			Percentage: report.Share(row.Count, total),
		}
	}
	return shares, nil
}

func (r *GormFinancialReportRepository) amountsByPeriod(db *gorm.DB, txType string, dr report.DateRange, g report.Granularity) ([]report.PeriodAmount, error) {
	type periodRow struct {
		Period time.Time
		Count  int64
		Amount decimal.Decimal
	}
	trunc := fmt.Sprintf("date_trunc('%s', payment_date)", g.TruncUnit())

	var rows []periodRow
	if err := db.Table("payments").
		Select(trunc+" as period, COUNT(*) as count, COALESCE(SUM(amount), 0) as amount").
		Where("transaction_type = ?", txType).
		Where("payment_date BETWEEN ? AND ?", dr.Start, dr.End).
		Where("status = ?", "completed").
		Group(trunc).
		Order("period ASC").
		Scan(&rows).Error; err != nil {
		return nil, err
	}

	buckets := make([]report.PeriodAmount, len(rows))
	for i, row := range rows {
		buckets[i] = report.PeriodAmount{
			Period: row.Period.Format(g.BucketLayout()),
			Count:  row.Count,
			Amount: row.Amount,
		}
	}
	return buckets, nil
}

func (r *GormFinancialReportRepository) transactionRows(db *gorm.DB, txType string, dr report.DateRange) ([]report.TransactionRow, error) {
	var rows []report.TransactionRow
	err := db.Table("payments p").
		Select(`p.id, p.payment_date as date, p.amount, p.payment_method as method, p.status,
			COALESCE(po.policy_number, '') as policy_number,
			COALESCE(c.name, '') as client_name,
			p.claim_id`).
		Joins("LEFT JOIN policies po ON po.id = p.policy_id").
		Joins("LEFT JOIN clients c ON c.id = p.client_id").
		Where("p.transaction_type = ?", txType).
		Where("p.payment_date BETWEEN ? AND ?", dr.Start, dr.End).
		Order("p.payment_date DESC").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	return rows, nil
}
