package report

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// ClientSummary is the client record carried into a portfolio report
type ClientSummary struct {
	ID          uuid.UUID `json:"id"`
	Name        string    `json:"name"`
	Email       string    `json:"email"`
	Phone       string    `json:"phone"`
	RiskProfile string    `json:"risk_profile"`
	CreatedAt   time.Time `json:"created_at"`
}

// PortfolioPolicy is one policy row of a client portfolio
type PortfolioPolicy struct {
	ID             uuid.UUID       `json:"id"`
	PolicyNumber   string          `json:"policy_number"`
	ProductType    string          `json:"product_type"`
	Premium        decimal.Decimal `json:"premium"`
	CoverageAmount decimal.Decimal `json:"coverage_amount"`
	Status         string          `json:"status"`
	StartDate      time.Time       `json:"start_date"`
	ExpiryDate     time.Time       `json:"expiry_date"`
}

// PortfolioClaim is one claim row of a client portfolio
type PortfolioClaim struct {
	ID           uuid.UUID       `json:"id"`
	PolicyNumber string          `json:"policy_number"`
	ClaimType    string          `json:"claim_type"`
	Amount       decimal.Decimal `json:"amount"`
	Status       string          `json:"status"`
	DateFiled    time.Time       `json:"date_filed"`
}

// RiskFactor is one weighted risk-assessment factor
type RiskFactor struct {
	Factor   string          `json:"factor"`
	Score    decimal.Decimal `json:"score"`
	Weight   decimal.Decimal `json:"weight"`
	Weighted decimal.Decimal `json:"weighted"` // Score * Weight
	Notes    string          `json:"notes,omitempty"`
}

// RiskAssessment aggregates weighted factor scores into a classified total
type RiskAssessment struct {
	Factors    []RiskFactor    `json:"factors"`
	TotalScore decimal.Decimal `json:"total_score"`
	Level      string          `json:"level"` // Low / Medium / High
}

// ClientPortfolio is the read model for the client_portfolio report
type ClientPortfolio struct {
	Client   ClientSummary     `json:"client"`
	Policies []PortfolioPolicy `json:"policies"`
	Payments []TransactionRow  `json:"payments"`
	Claims   []PortfolioClaim  `json:"claims"`
	Risk     RiskAssessment    `json:"risk_assessment"`
}

// ClientReportRepository defines the collector contract for client portfolios
type ClientReportRepository interface {
	// GetClientPortfolio returns the full portfolio for one client,
	// including the weighted risk assessment
	GetClientPortfolio(ctx context.Context, clientID uuid.UUID) (*ClientPortfolio, error)
}
