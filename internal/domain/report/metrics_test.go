package report

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func TestGrowthRate(t *testing.T) {
	tests := []struct {
		name     string
		current  string
		previous string
		expected string
	}{
		{"increase", "150", "100", "50"},
		{"decrease", "75", "100", "-25"},
		{"flat", "100", "100", "0"},
		{"zero previous", "500", "0", "0"},
		{"both zero", "0", "0", "0"},
		{"rounded to one decimal", "1000", "300", "233.3"},
		{"negative previous", "50", "-100", "-150"},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			cur := decimal.RequireFromString(tc.current)
			prev := decimal.RequireFromString(tc.previous)
			got := GrowthRate(cur, prev)
			assert.True(t, got.Equal(decimal.RequireFromString(tc.expected)),
				"expected %s, got %s", tc.expected, got)
		})
	}
}

func TestShare(t *testing.T) {
	tests := []struct {
		name     string
		count    int64
		total    int64
		expected string
	}{
		{"half", 5, 10, "50"},
		{"third rounded", 1, 3, "33.3"},
		{"full", 10, 10, "100"},
		{"zero total", 7, 0, "0"},
		{"zero count", 0, 10, "0"},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got := Share(tc.count, tc.total)
			assert.True(t, got.Equal(decimal.RequireFromString(tc.expected)),
				"expected %s, got %s", tc.expected, got)
		})
	}
}

func TestShare_SumsToHundred(t *testing.T) {
	counts := []int64{7, 11, 2}
	var total int64
	for _, c := range counts {
		total += c
	}

	sum := decimal.Zero
	for _, c := range counts {
		sum = sum.Add(Share(c, total))
	}

	// rounding each share to one decimal keeps the sum within tolerance
	diff := sum.Sub(decimal.NewFromInt(100)).Abs()
	assert.True(t, diff.LessThanOrEqual(decimal.RequireFromString("0.2")),
		"shares sum to %s", sum)
}

func TestRatio(t *testing.T) {
	tests := []struct {
		name     string
		part     string
		whole    string
		expected string
	}{
		{"claims ratio", "400", "1000", "40"},
		{"rounded", "1", "3", "33.3"},
		{"zero whole", "100", "0", "0"},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got := Ratio(decimal.RequireFromString(tc.part), decimal.RequireFromString(tc.whole))
			assert.True(t, got.Equal(decimal.RequireFromString(tc.expected)),
				"expected %s, got %s", tc.expected, got)
		})
	}
}

func TestRiskLevel_Boundaries(t *testing.T) {
	tests := []struct {
		score    string
		expected string
	}{
		{"0", "Low"},
		{"30", "Low"},
		{"30.01", "Medium"},
		{"70", "Medium"},
		{"70.01", "High"},
		{"100", "High"},
	}

	for _, tc := range tests {
		t.Run(tc.score, func(t *testing.T) {
			assert.Equal(t, tc.expected, RiskLevel(decimal.RequireFromString(tc.score)))
		})
	}
}
