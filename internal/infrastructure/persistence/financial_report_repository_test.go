package persistence

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/ipms/backend/internal/domain/report"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

// newMockFinancialReportRepository creates a GormFinancialReportRepository with a mocked SQL connection
func newMockFinancialReportRepository(t *testing.T) (*GormFinancialReportRepository, sqlmock.Sqlmock, *sql.DB) {
	mockDB, mock, err := sqlmock.New()
	require.NoError(t, err)

	dialector := postgres.New(postgres.Config{
		Conn:       mockDB,
		DriverName: "postgres",
	})

	gormDB, err := gorm.Open(dialector, &gorm.Config{
		SkipDefaultTransaction: true,
	})
	require.NoError(t, err)

	return NewGormFinancialReportRepository(gormDB), mock, mockDB
}

func testFilter() report.FinancialFilter {
	return report.FinancialFilter{
		Range: report.DateRange{
			Start: time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC),
			End:   time.Date(2025, 1, 31, 23, 59, 59, 0, time.UTC),
		},
		Granularity: report.GranularityMonth,
	}
}

func TestGormFinancialReportRepository_GetFinancialSummary(t *testing.T) {
	t.Run("computes net income from premium and claims", func(t *testing.T) {
		repo, mock, mockDB := newMockFinancialReportRepository(t)
		defer mockDB.Close()

		filter := testFilter()

		// premium income
		mock.ExpectQuery(`SELECT COALESCE\(SUM\(amount\), 0\) FROM "payments"`).
			WillReturnRows(sqlmock.NewRows([]string{"coalesce"}).AddRow("1000"))
		// claim payments
		mock.ExpectQuery(`SELECT COALESCE\(SUM\(amount\), 0\) FROM "payments"`).
			WillReturnRows(sqlmock.NewRows([]string{"coalesce"}).AddRow("400"))
		// transaction count
		mock.ExpectQuery(`SELECT count\(\*\) FROM "payments"`).
			WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(12))
		// payment method distribution
		mock.ExpectQuery(`SELECT payment_method as method, COUNT\(\*\) as count, COALESCE\(SUM\(amount\), 0\) as amount FROM "payments"`).
			WillReturnRows(sqlmock.NewRows([]string{"method", "count", "amount"}).
				AddRow("credit_card", 9, "900").
				AddRow("bank_transfer", 3, "500"))
		// premium by period
		mock.ExpectQuery(`SELECT date_trunc\('month', payment_date\) as period`).
			WillReturnRows(sqlmock.NewRows([]string{"period", "count", "amount"}).
				AddRow(time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC), 9, "1000"))
		// claims by period
		mock.ExpectQuery(`SELECT date_trunc\('month', payment_date\) as period`).
			WillReturnRows(sqlmock.NewRows([]string{"period", "count", "amount"}).
				AddRow(time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC), 3, "400"))

		summary, err := repo.GetFinancialSummary(context.Background(), filter)

		require.NoError(t, err)
		assert.True(t, summary.Totals.PremiumIncome.Equal(decimal.NewFromInt(1000)))
		assert.True(t, summary.Totals.ClaimPayments.Equal(decimal.NewFromInt(400)))
		assert.True(t, summary.Totals.NetIncome.Equal(decimal.NewFromInt(600)))
		assert.Equal(t, int64(12), summary.Totals.TransactionCount)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("payment method percentages use transaction count", func(t *testing.T) {
		repo, mock, mockDB := newMockFinancialReportRepository(t)
		defer mockDB.Close()

		mock.ExpectQuery(`SELECT COALESCE\(SUM\(amount\), 0\) FROM "payments"`).
			WillReturnRows(sqlmock.NewRows([]string{"coalesce"}).AddRow("0"))
		mock.ExpectQuery(`SELECT COALESCE\(SUM\(amount\), 0\) FROM "payments"`).
			WillReturnRows(sqlmock.NewRows([]string{"coalesce"}).AddRow("0"))
		mock.ExpectQuery(`SELECT count\(\*\) FROM "payments"`).
			WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(4))
		mock.ExpectQuery(`SELECT payment_method as method`).
			WillReturnRows(sqlmock.NewRows([]string{"method", "count", "amount"}).
				AddRow("credit_card", 3, "300").
				AddRow("cash", 1, "100"))
		mock.ExpectQuery(`SELECT date_trunc`).
			WillReturnRows(sqlmock.NewRows([]string{"period", "count", "amount"}))
		mock.ExpectQuery(`SELECT date_trunc`).
			WillReturnRows(sqlmock.NewRows([]string{"period", "count", "amount"}))

		summary, err := repo.GetFinancialSummary(context.Background(), testFilter())

		require.NoError(t, err)
		require.Len(t, summary.PaymentMethods, 2)
		assert.True(t, summary.PaymentMethods[0].Percentage.Equal(decimal.NewFromInt(75)),
			"got %s", summary.PaymentMethods[0].Percentage)
		assert.True(t, summary.PaymentMethods[1].Percentage.Equal(decimal.NewFromInt(25)),
			"got %s", summary.PaymentMethods[1].Percentage)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("empty range yields zero totals and no distribution", func(t *testing.T) {
		repo, mock, mockDB := newMockFinancialReportRepository(t)
		defer mockDB.Close()

		mock.ExpectQuery(`SELECT COALESCE\(SUM\(amount\), 0\) FROM "payments"`).
			WillReturnRows(sqlmock.NewRows([]string{"coalesce"}).AddRow("0"))
		mock.ExpectQuery(`SELECT COALESCE\(SUM\(amount\), 0\) FROM "payments"`).
			WillReturnRows(sqlmock.NewRows([]string{"coalesce"}).AddRow("0"))
		mock.ExpectQuery(`SELECT count\(\*\) FROM "payments"`).
			WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(0))
		mock.ExpectQuery(`SELECT payment_method as method`).
			WillReturnRows(sqlmock.NewRows([]string{"method", "count", "amount"}))
		mock.ExpectQuery(`SELECT date_trunc`).
			WillReturnRows(sqlmock.NewRows([]string{"period", "count", "amount"}))
		mock.ExpectQuery(`SELECT date_trunc`).
			WillReturnRows(sqlmock.NewRows([]string{"period", "count", "amount"}))

		summary, err := repo.GetFinancialSummary(context.Background(), testFilter())

		require.NoError(t, err)
		assert.True(t, summary.Totals.NetIncome.IsZero())
		assert.Empty(t, summary.PaymentMethods)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("propagates query error", func(t *testing.T) {
		repo, mock, mockDB := newMockFinancialReportRepository(t)
		defer mockDB.Close()

		mock.ExpectQuery(`SELECT COALESCE\(SUM\(amount\), 0\) FROM "payments"`).
			WillReturnError(assert.AnError)

		summary, err := repo.GetFinancialSummary(context.Background(), testFilter())

		assert.Error(t, err)
		assert.Nil(t, summary)
	})
}

func TestGormFinancialReportRepository_GetFinancialTransactions(t *testing.T) {
	t.Run("returns premium and claim rows with summary", func(t *testing.T) {
		repo, mock, mockDB := newMockFinancialReportRepository(t)
		defer mockDB.Close()

		premiumDate := time.Date(2025, 1, 20, 0, 0, 0, 0, time.UTC)
		claimDate := time.Date(2025, 1, 10, 0, 0, 0, 0, time.UTC)

		mock.ExpectQuery(`SELECT p\.id, p\.payment_date as date`).
			WillReturnRows(sqlmock.NewRows([]string{"id", "date", "amount", "method", "status", "policy_number", "client_name", "claim_id"}).
				AddRow("6ba7b810-9dad-11d1-80b4-00c04fd430c8", premiumDate, "250", "credit_card", "completed", "POL-001", "Jane Doe", nil))
		mock.ExpectQuery(`SELECT p\.id, p\.payment_date as date`).
			WillReturnRows(sqlmock.NewRows([]string{"id", "date", "amount", "method", "status", "policy_number", "client_name", "claim_id"}).
				AddRow("6ba7b811-9dad-11d1-80b4-00c04fd430c8", claimDate, "100", "bank_transfer", "completed", "POL-002", "John Roe", "6ba7b812-9dad-11d1-80b4-00c04fd430c8"))

		txns, err := repo.GetFinancialTransactions(context.Background(), testFilter())

		require.NoError(t, err)
		require.Len(t, txns.PremiumPayments, 1)
		require.Len(t, txns.ClaimPayments, 1)
		assert.Equal(t, "POL-001", txns.PremiumPayments[0].PolicyNumber)
		assert.NotNil(t, txns.ClaimPayments[0].ClaimID)
		assert.True(t, txns.Summary.NetIncome.Equal(decimal.NewFromInt(150)))
		assert.Equal(t, int64(2), txns.Summary.TransactionCount)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}
