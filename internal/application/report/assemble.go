package report

import (
	"fmt"
	"strconv"
	"time"

	"github.com/ipms/backend/internal/domain/report"
	"github.com/shopspring/decimal"
)

// Assemblers turn collected read models into the presentation-ready
// ReportData handed to a renderer. All number and date formatting happens
// here so every renderer stays a deterministic serializer.

func newMetadata(reportType report.Type, dr report.DateRange, generatedBy string) report.Metadata {
	return report.Metadata{
		ReportType:  reportType,
		PeriodStart: dr.Start,
		PeriodEnd:   dr.End,
		GeneratedAt: time.Now(),
		GeneratedBy: generatedBy,
	}
}

func assembleFinancialSummary(s *report.FinancialSummary, meta report.Metadata) *report.ReportData {
	data := &report.ReportData{
		Meta:  meta,
		Title: "Financial Summary",
		KeyFigures: []report.KeyFigure{
			{Label: "Premium Income", Value: formatMoney(s.Totals.PremiumIncome)},
			{Label: "Claim Payments", Value: formatMoney(s.Totals.ClaimPayments)},
			{Label: "Net Income", Value: formatMoney(s.Totals.NetIncome)},
			{Label: "Transactions", Value: formatCount(s.Totals.TransactionCount)},
		},
	}

	methods := report.Table{
		Title:   "Payment Method Distribution",
		Columns: []string{"Method", "Count", "Amount", "Share"},
	}
	for _, m := range s.PaymentMethods {
		methods.Rows = append(methods.Rows, []string{
			m.Method, formatCount(m.Count), formatMoney(m.Amount), formatPercent(m.Percentage),
		})
	}
	data.Tables = append(data.Tables, methods)

	data.Tables = append(data.Tables,
		periodTable("Premium Income by Period", s.PremiumByPeriod),
		periodTable("Claim Payments by Period", s.ClaimsByPeriod),
	)
	return data
}

func periodTable(title string, buckets []report.PeriodAmount) report.Table {
	t := report.Table{
		Title:   title,
		Columns: []string{"Period", "Count", "Amount"},
	}
	for _, b := range buckets {
		t.Rows = append(t.Rows, []string{b.Period, formatCount(b.Count), formatMoney(b.Amount)})
	}
	return t
}

func assembleFinancialTransactions(tx *report.FinancialTransactions, meta report.Metadata) *report.ReportData {
	data := &report.ReportData{
		Meta:  meta,
		Title: "Financial Transactions",
		KeyFigures: []report.KeyFigure{
			{Label: "Premium Income", Value: formatMoney(tx.Summary.PremiumIncome)},
			{Label: "Claim Payments", Value: formatMoney(tx.Summary.ClaimPayments)},
			{Label: "Net Income", Value: formatMoney(tx.Summary.NetIncome)},
			{Label: "Transactions", Value: formatCount(tx.Summary.TransactionCount)},
		},
		Tables: []report.Table{
			transactionTable("Premium Payments", tx.PremiumPayments),
			transactionTable("Claim Payments", tx.ClaimPayments),
		},
	}
	return data
}

func transactionTable(title string, rows []report.TransactionRow) report.Table {
	t := report.Table{
		Title:   title,
		Columns: []string{"Date", "Policy", "Client", "Method", "Status", "Amount"},
	}
	for _, r := range rows {
		t.Rows = append(t.Rows, []string{
			formatDay(r.Date), r.PolicyNumber, r.ClientName, r.Method, r.Status, formatMoney(r.Amount),
		})
	}
	return t
}

func assemblePolicyPerformance(p *report.PolicyPerformance, meta report.Metadata) *report.ReportData {
	data := &report.ReportData{
		Meta:  meta,
		Title: "Policy Performance",
		KeyFigures: []report.KeyFigure{
			{Label: "New Policies", Value: formatCount(p.Metrics.NewPolicies)},
			{Label: "Policy Growth", Value: formatPercent(p.Metrics.NewPoliciesGrowth)},
			{Label: "Total Premium", Value: formatMoney(p.Metrics.TotalPremium)},
			{Label: "Premium Growth", Value: formatPercent(p.Metrics.PremiumGrowth)},
			{Label: "Claims Ratio", Value: formatPercent(p.Metrics.ClaimsRatio)},
			{Label: "Renewal Rate", Value: formatPercent(p.Metrics.RenewalRate)},
		},
	}

	status := report.Table{
		Title:   "Policy Status Distribution",
		Columns: []string{"Status", "Count", "Share"},
	}
	for _, s := range p.StatusDistribution {
		status.Rows = append(status.Rows, []string{s.Status, formatCount(s.Count), formatPercent(s.Percentage)})
	}
	data.Tables = append(data.Tables, status)

	products := report.Table{
		Title:   "Product Performance",
		Columns: []string{"Product", "Policies", "Total Premium", "Avg Premium", "Claims Ratio"},
	}
	for _, pr := range p.ProductPerformance {
		products.Rows = append(products.Rows, []string{
			pr.Product, formatCount(pr.PolicyCount), formatMoney(pr.TotalPremium),
			formatMoney(pr.AvgPremium), formatPercent(pr.ClaimsRatio),
		})
	}
	data.Tables = append(data.Tables, products)

	claims := report.Table{
		Title:   "Claims by Type",
		Columns: []string{"Type", "Count", "Total Amount", "Avg Amount"},
	}
	for _, c := range p.Claims.ByType {
		claims.Rows = append(claims.Rows, []string{
			c.Type, formatCount(c.Count), formatMoney(c.TotalAmount), formatMoney(c.AvgAmount),
		})
	}
	data.Tables = append(data.Tables, claims)

	claimStatus := report.Table{
		Title:   "Claims by Status",
		Columns: []string{"Status", "Count", "Share"},
	}
	for _, c := range p.Claims.ByStatus {
		claimStatus.Rows = append(claimStatus.Rows, []string{c.Status, formatCount(c.Count), formatPercent(c.Percentage)})
	}
	data.Tables = append(data.Tables, claimStatus)

	renewals := report.Table{
		Title:   "Renewals",
		Columns: []string{"Expiring", "Renewed", "Renewal Rate"},
		Rows: [][]string{{
			formatCount(p.Renewals.Expiring),
			formatCount(p.Renewals.Renewed),
			formatPercent(p.Renewals.RenewalRate),
		}},
	}
	data.Tables = append(data.Tables, renewals)
	return data
}

func assembleClientPortfolio(cp *report.ClientPortfolio, meta report.Metadata) *report.ReportData {
	data := &report.ReportData{
		Meta:  meta,
		Title: "Client Portfolio: " + cp.Client.Name,
		KeyFigures: []report.KeyFigure{
			{Label: "Client", Value: cp.Client.Name},
			{Label: "Risk Profile", Value: cp.Client.RiskProfile},
			{Label: "Risk Score", Value: cp.Risk.TotalScore.StringFixed(1)},
			{Label: "Risk Level", Value: cp.Risk.Level},
			{Label: "Policies", Value: strconv.Itoa(len(cp.Policies))},
			{Label: "Claims", Value: strconv.Itoa(len(cp.Claims))},
		},
	}

	policies := report.Table{
		Title:   "Policies",
		Columns: []string{"Policy", "Product", "Premium", "Coverage", "Status", "Start", "Expiry"},
	}
	for _, p := range cp.Policies {
		policies.Rows = append(policies.Rows, []string{
			p.PolicyNumber, p.ProductType, formatMoney(p.Premium), formatMoney(p.CoverageAmount),
			p.Status, formatDay(p.StartDate), formatDay(p.ExpiryDate),
		})
	}
	data.Tables = append(data.Tables, policies)

	data.Tables = append(data.Tables, transactionTable("Payment History", cp.Payments))

	claims := report.Table{
		Title:   "Claims",
		Columns: []string{"Policy", "Type", "Amount", "Status", "Filed"},
	}
	for _, c := range cp.Claims {
		claims.Rows = append(claims.Rows, []string{
			c.PolicyNumber, c.ClaimType, formatMoney(c.Amount), c.Status, formatDay(c.DateFiled),
		})
	}
	data.Tables = append(data.Tables, claims)

	risk := report.Table{
		Title:   "Risk Assessment",
		Columns: []string{"Factor", "Score", "Weight", "Weighted", "Notes"},
	}
	for _, f := range cp.Risk.Factors {
		risk.Rows = append(risk.Rows, []string{
			f.Factor, f.Score.StringFixed(1), f.Weight.StringFixed(2), f.Weighted.StringFixed(2), f.Notes,
		})
	}
	data.Tables = append(data.Tables, risk)
	return data
}

func formatMoney(d decimal.Decimal) string {
	return "$" + d.StringFixed(2)
}

func formatPercent(d decimal.Decimal) string {
	return d.StringFixed(1) + "%"
}

func formatCount(n int64) string {
	return fmt.Sprintf("%d", n)
}

func formatDay(t time.Time) string {
	return t.Format("2006-01-02")
}
