package report

import "github.com/shopspring/decimal"

var hundred = decimal.NewFromInt(100)

// Risk level thresholds. Boundaries are inclusive: a total score of
// exactly 30 is Low and exactly 70 is Medium.
var (
	riskLowMax    = decimal.NewFromInt(30)
	riskMediumMax = decimal.NewFromInt(70)
)

// GrowthRate returns the percentage change of current versus previous,
// rounded to one decimal place. A zero previous value yields zero, never
// an infinite or NaN result.
func GrowthRate(current, previous decimal.Decimal) decimal.Decimal {
	if previous.IsZero() {
		return decimal.Zero
	}
	return current.Sub(previous).Div(previous).Mul(hundred).Round(1)
}

// Share returns count/total*100 rounded to one decimal place, or zero
// when total is zero.
func Share(count, total int64) decimal.Decimal {
	if total == 0 {
		return decimal.Zero
	}
	return decimal.NewFromInt(count).Div(decimal.NewFromInt(total)).Mul(hundred).Round(1)
}

// Ratio returns part/whole*100 rounded to one decimal place, or zero
// when whole is zero.
func Ratio(part, whole decimal.Decimal) decimal.Decimal {
	if whole.IsZero() {
		return decimal.Zero
	}
	return part.Div(whole).Mul(hundred).Round(1)
}

// RiskLevel classifies a weighted total risk score
func RiskLevel(totalScore decimal.Decimal) string {
	switch {
	case totalScore.LessThanOrEqual(riskLowMax):
		return "Low"
	case totalScore.LessThanOrEqual(riskMediumMax):
		return "Medium"
	default:
		return "High"
	}
}
