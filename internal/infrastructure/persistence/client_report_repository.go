package persistence

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/ipms/backend/internal/domain/report"
	"github.com/ipms/backend/internal/domain/shared"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// GormClientReportRepository implements ClientReportRepository using GORM
type GormClientReportRepository struct {
	db *gorm.DB
}

// NewGormClientReportRepository creates a new GormClientReportRepository
func NewGormClientReportRepository(db *gorm.DB) *GormClientReportRepository {
	return &GormClientReportRepository{db: db}
}

// GetClientPortfolio returns the full portfolio for one client, including
// the weighted risk assessment
func (r *GormClientReportRepository) GetClientPortfolio(ctx context.Context, clientID uuid.UUID) (*report.ClientPortfolio, error) {
	db := r.db.WithContext(ctx)

	var client report.ClientSummary
	if err := db.Table("clients").
		Select("id, name, email, phone, risk_profile, created_at").
		Where("id = ?", clientID).
		Take(&client).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}

	var policies []report.PortfolioPolicy
	if err := db.Table("policies").
		Select("id, policy_number, product_type, premium, coverage_amount, status, start_date, expiry_date").
		Where("client_id = ?", clientID).
		Order("start_date DESC").
		Scan(&policies).Error; err != nil {
		return nil, err
	}

	var payments []report.TransactionRow
	if err := db.Table("payments p").
		Select(`p.id, p.payment_date as date, p.amount, p.payment_method as method, p.status,
			COALESCE(po.policy_number, '') as policy_number,
			'' as client_name,
			p.claim_id`).
		Joins("LEFT JOIN policies po ON po.id = p.policy_id").
		Where("p.client_id = ?", clientID).
		Order("p.payment_date DESC").
		Scan(&payments).Error; err != nil {
		return nil, err
	}

	var claims []report.PortfolioClaim
	if err := db.Table("claims cl").
		Select("cl.id, po.policy_number, cl.claim_type, cl.amount, cl.status, cl.date_filed").
		Joins("JOIN policies po ON po.id = cl.policy_id").
		Where("po.client_id = ?", clientID).
		Order("cl.date_filed DESC").
		Scan(&claims).Error; err != nil {
		return nil, err
	}

	risk, err := r.riskAssessment(db, clientID)
	if err != nil {
		return nil, err
	}

	return &report.ClientPortfolio{
		Client:   client,
		Policies: policies,
		Payments: payments,
		Claims:   claims,
		Risk:     *risk,
	}, nil
}

func (r *GormClientReportRepository) riskAssessment(db *gorm.DB, clientID uuid.UUID) (*report.RiskAssessment, error) {
	type factorRow struct {
		Factor string
		Score  decimal.Decimal
		Weight decimal.Decimal
		Notes  string
	}
	var rows []factorRow
	if err := db.Table("client_risk_assessments").
		Select("factor, score, weight, COALESCE(notes, '') as notes").
		Where("client_id = ?", clientID).
		Order("factor ASC").
		Scan(&rows).Error; err != nil {
		return nil, err
	}

	assessment := &report.RiskAssessment{
		Factors:    make([]report.RiskFactor, len(rows)),
		TotalScore: decimal.Zero,
	}
	for i, row := range rows {
		weighted := row.Score.Mul(row.Weight).Round(2)
		assessment.Factors[i] = report.RiskFactor{
			Factor:   row.Factor,
			Score:    row.Score,
			Weight:   row.Weight,
			Weighted: weighted,
			Notes:    row.Notes,
		}
		assessment.TotalScore = assessment.TotalScore.Add(weighted)
	}
	assessment.Level = report.RiskLevel(assessment.TotalScore)
	return assessment, nil
}
