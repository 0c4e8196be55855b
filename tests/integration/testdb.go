// Package integration provides integration testing utilities for the report
// service. It uses testcontainers to spin up real PostgreSQL databases for
// testing.
package integration

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"sync"
	"testing"
	"time"

	"github.com/golang-migrate/migrate/v4"
	mpg "github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	tcpostgres "github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"
	gormpostgres "gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

var (
	// Shared container for all tests in a package
	sharedContainer    testcontainers.Container
	sharedContainerMu  sync.Mutex
	sharedContainerDSN string
)

// TestDB represents a test database connection
type TestDB struct {
	DB        *gorm.DB
	SqlDB     *sql.DB
	Container testcontainers.Container
	DSN       string
	t         *testing.T
}

// NewTestDB creates a new PostgreSQL container for testing.
// This creates a fresh container for each test, providing complete isolation.
func NewTestDB(t *testing.T) *TestDB {
	t.Helper()

	ctx := context.Background()

	// Create PostgreSQL container
	container, err := tcpostgres.Run(ctx,
		"postgres:16-alpine",
		tcpostgres.WithDatabase("ipms_test"),
		tcpostgres.WithUsername("postgres"),
		tcpostgres.WithPassword("admin123"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(60*time.Second)),
	)
	require.NoError(t, err, "Failed to start PostgreSQL container")

	// Get connection string
	dsn, err := container.ConnectionString(ctx, "sslmode=disable")
	require.NoError(t, err, "Failed to get connection string")

	// Connect with GORM
	db, sqlDB := connectToDatabase(t, dsn)

	// Run migrations
	runMigrations(t, sqlDB)

	testDB := &TestDB{
		DB:        db,
		SqlDB:     sqlDB,
		Container: container,
		DSN:       dsn,
		t:         t,
	}

	// Register cleanup
	t.Cleanup(func() {
		testDB.Close()
	})

	return testDB
}

// NewSharedTestDB returns a shared PostgreSQL container for tests that can share state.
// This is more efficient for read-only tests or tests that clean up after themselves.
func NewSharedTestDB(t *testing.T) *TestDB {
	t.Helper()

	sharedContainerMu.Lock()
	defer sharedContainerMu.Unlock()

	ctx := context.Background()

	// Initialize shared container if not exists
	if sharedContainer == nil {
		container, err := tcpostgres.Run(ctx,
			"postgres:16-alpine",
			tcpostgres.WithDatabase("ipms_shared_test"),
			tcpostgres.WithUsername("postgres"),
			tcpostgres.WithPassword("admin123"),
			testcontainers.WithWaitStrategy(
				wait.ForLog("database system is ready to accept connections").
					WithOccurrence(2).
					WithStartupTimeout(60*time.Second)),
		)
		require.NoError(t, err, "Failed to start shared PostgreSQL container")

		dsn, err := container.ConnectionString(ctx, "sslmode=disable")
		require.NoError(t, err, "Failed to get connection string")

		sharedContainer = container
		sharedContainerDSN = dsn

		// Connect and run migrations once
		db, sqlDB := connectToDatabase(t, dsn)
		runMigrations(t, sqlDB)
		sqlDB.Close()
		_ = db // Let it be garbage collected
	}

	// Each test gets a fresh connection
	db, sqlDB := connectToDatabase(t, sharedContainerDSN)

	testDB := &TestDB{
		DB:        db,
		SqlDB:     sqlDB,
		Container: sharedContainer,
		DSN:       sharedContainerDSN,
		t:         t,
	}

	// Note: For shared container, we don't register cleanup for the container itself
	// Only close the database connection
	t.Cleanup(func() {
		if testDB.SqlDB != nil {
			testDB.SqlDB.Close()
		}
	})

	return testDB
}

// Close closes the database connection and terminates the container
func (tdb *TestDB) Close() {
	ctx := context.Background()

	if tdb.SqlDB != nil {
		tdb.SqlDB.Close()
	}

	// Only terminate if this is not the shared container
	if tdb.Container != nil && tdb.Container != sharedContainer {
		if err := tdb.Container.Terminate(ctx); err != nil {
			tdb.t.Logf("Warning: Failed to terminate container: %v", err)
		}
	}
}

// CleanTables truncates all tables in the database
func (tdb *TestDB) CleanTables() {
	tdb.t.Helper()

	// Get all table names
	var tables []string
	err := tdb.DB.Raw(`
		SELECT tablename FROM pg_tables
		WHERE schemaname = 'public'
		AND tablename != 'schema_migrations'
	`).Scan(&tables).Error
	require.NoError(tdb.t, err, "Failed to get table names")

	if len(tables) == 0 {
		return
	}

	for _, table := range tables {
		err := tdb.DB.Exec(fmt.Sprintf("TRUNCATE TABLE %s CASCADE", table)).Error
		if err != nil {
			tdb.t.Logf("Warning: Failed to truncate table %s: %v", table, err)
		}
	}
}

// WithTransaction runs a function within a transaction that is automatically rolled back.
// This is useful for tests that need to be isolated without truncating tables.
func (tdb *TestDB) WithTransaction(fn func(tx *gorm.DB)) {
	tdb.t.Helper()

	tx := tdb.DB.Begin()
	require.NoError(tdb.t, tx.Error, "Failed to begin transaction")

	defer func() {
		tx.Rollback()
	}()

	fn(tx)
}

// connectToDatabase establishes a GORM connection to the database
func connectToDatabase(t *testing.T, dsn string) (*gorm.DB, *sql.DB) {
	t.Helper()

	// Configure GORM with minimal logging for tests
	gormConfig := &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	}

	// Enable debug logging if TEST_DB_DEBUG is set
	if os.Getenv("TEST_DB_DEBUG") != "" {
		gormConfig.Logger = logger.Default.LogMode(logger.Info)
	}

	db, err := gorm.Open(gormpostgres.Open(dsn), gormConfig)
	require.NoError(t, err, "Failed to connect to database")

	sqlDB, err := db.DB()
	require.NoError(t, err, "Failed to get underlying SQL DB")

	// Configure connection pool for tests
	sqlDB.SetMaxOpenConns(5)
	sqlDB.SetMaxIdleConns(2)
	sqlDB.SetConnMaxLifetime(5 * time.Minute)

	return db, sqlDB
}

// runMigrations applies all database migrations
func runMigrations(t *testing.T, sqlDB *sql.DB) {
	t.Helper()

	// Find migrations directory
	migrationsPath := findMigrationsPath()
	require.NotEmpty(t, migrationsPath, "Could not find migrations directory")

	// Create migration driver
	driver, err := mpg.WithInstance(sqlDB, &mpg.Config{})
	require.NoError(t, err, "Failed to create migration driver")

	// Create migrate instance
	m, err := migrate.NewWithDatabaseInstance(
		"file://"+migrationsPath,
		"postgres",
		driver,
	)
	require.NoError(t, err, "Failed to create migrate instance")

	// Run migrations
	err = m.Up()
	if err != nil && err != migrate.ErrNoChange {
		require.NoError(t, err, "Failed to run migrations")
	}
}

// findMigrationsPath locates the migrations directory
func findMigrationsPath() string {
	// Get the directory of this file
	_, filename, _, ok := runtime.Caller(0)
	if !ok {
		return ""
	}

	// Navigate from tests/integration to the repository root
	dir := filepath.Dir(filename)
	for i := 0; i < 5; i++ {
		migrationsPath := filepath.Join(dir, "migrations")
		if _, err := os.Stat(migrationsPath); err == nil {
			return migrationsPath
		}
		dir = filepath.Dir(dir)
	}

	// Try relative path from working directory
	if wd, err := os.Getwd(); err == nil {
		paths := []string{
			filepath.Join(wd, "migrations"),
			filepath.Join(wd, "..", "migrations"),
			filepath.Join(wd, "..", "..", "migrations"),
		}
		for _, p := range paths {
			if _, err := os.Stat(p); err == nil {
				return p
			}
		}
	}

	return ""
}

// CleanupSharedContainer terminates the shared container.
// This should be called in TestMain if using shared containers.
func CleanupSharedContainer() {
	sharedContainerMu.Lock()
	defer sharedContainerMu.Unlock()

	if sharedContainer != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		sharedContainer.Terminate(ctx)
		sharedContainer = nil
		sharedContainerDSN = ""
	}
}

// PolicyFixture describes a policy row to seed for a test. Zero-valued
// fields get sensible defaults.
type PolicyFixture struct {
	ID            uuid.UUID
	ClientID      uuid.UUID
	Number        string
	ProductType   string
	Premium       string
	Coverage      string
	Status        string
	RenewalStatus string
	StartDate     time.Time
	ExpiryDate    time.Time
	CreatedAt     time.Time
}

// PaymentFixture describes a payment row to seed for a test
type PaymentFixture struct {
	ID              uuid.UUID
	PolicyID        uuid.UUID
	ClientID        uuid.UUID
	ClaimID         *uuid.UUID
	TransactionType string
	Method          string
	Amount          string
	Status          string
	Date            time.Time
}

// ClaimFixture describes a claim row to seed for a test
type ClaimFixture struct {
	ID        uuid.UUID
	PolicyID  uuid.UUID
	ClaimType string
	Amount    string
	Status    string
	DateFiled time.Time
}

// CreateTestClient inserts a client record for testing
func (tdb *TestDB) CreateTestClient(id uuid.UUID, name string) {
	tdb.t.Helper()

	email := fmt.Sprintf("%s@example.com", id.String()[:8])
	err := tdb.DB.Exec(`
		INSERT INTO clients (id, name, email, phone, risk_profile)
		VALUES (?, ?, ?, '', 'standard')
		ON CONFLICT (id) DO NOTHING
	`, id.String(), name, email).Error
	require.NoError(tdb.t, err, "Failed to create test client")
}

// CreateTestPolicy inserts a policy record for testing
func (tdb *TestDB) CreateTestPolicy(f PolicyFixture) {
	tdb.t.Helper()

	if f.Number == "" {
		f.Number = fmt.Sprintf("POL-%s", f.ID.String()[:8])
	}
	if f.ProductType == "" {
		f.ProductType = "auto"
	}
	if f.Premium == "" {
		f.Premium = "1000.00"
	}
	if f.Coverage == "" {
		f.Coverage = "100000.00"
	}
	if f.Status == "" {
		f.Status = "active"
	}
	if f.RenewalStatus == "" {
		f.RenewalStatus = "pending"
	}
	if f.CreatedAt.IsZero() {
		f.CreatedAt = f.StartDate
	}

	err := tdb.DB.Exec(`
		INSERT INTO policies (id, policy_number, client_id, product_type, premium,
			coverage_amount, status, renewal_status, start_date, expiry_date, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT (id) DO NOTHING
	`, f.ID.String(), f.Number, f.ClientID.String(), f.ProductType, f.Premium,
		f.Coverage, f.Status, f.RenewalStatus, f.StartDate, f.ExpiryDate, f.CreatedAt).Error
	require.NoError(tdb.t, err, "Failed to create test policy")
}

// CreateTestClaim inserts a claim record for testing
func (tdb *TestDB) CreateTestClaim(f ClaimFixture) {
	tdb.t.Helper()

	if f.ClaimType == "" {
		f.ClaimType = "collision"
	}
	if f.Amount == "" {
		f.Amount = "500.00"
	}
	if f.Status == "" {
		f.Status = "filed"
	}

	err := tdb.DB.Exec(`
		INSERT INTO claims (id, policy_id, claim_type, amount, status, date_filed)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT (id) DO NOTHING
	`, f.ID.String(), f.PolicyID.String(), f.ClaimType, f.Amount, f.Status, f.DateFiled).Error
	require.NoError(tdb.t, err, "Failed to create test claim")
}

// CreateTestPayment inserts a payment record for testing
func (tdb *TestDB) CreateTestPayment(f PaymentFixture) {
	tdb.t.Helper()

	if f.TransactionType == "" {
		f.TransactionType = "premium"
	}
	if f.Method == "" {
		f.Method = "bank_transfer"
	}
	if f.Amount == "" {
		f.Amount = "100.00"
	}
	if f.Status == "" {
		f.Status = "completed"
	}

	var claimID any
	if f.ClaimID != nil {
		claimID = f.ClaimID.String()
	}

	err := tdb.DB.Exec(`
		INSERT INTO payments (id, policy_id, client_id, claim_id, transaction_type,
			payment_method, amount, status, payment_date)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, f.ID.String(), f.PolicyID.String(), f.ClientID.String(), claimID,
		f.TransactionType, f.Method, f.Amount, f.Status, f.Date).Error
	require.NoError(tdb.t, err, "Failed to create test payment")
}

// CreateTestRiskFactor inserts a risk assessment factor for testing
func (tdb *TestDB) CreateTestRiskFactor(clientID uuid.UUID, factor, score, weight, notes string) {
	tdb.t.Helper()

	err := tdb.DB.Exec(`
		INSERT INTO client_risk_assessments (id, client_id, factor, score, weight, notes)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT (client_id, factor) DO NOTHING
	`, uuid.New().String(), clientID.String(), factor, score, weight, notes).Error
	require.NoError(tdb.t, err, "Failed to create test risk factor")
}
