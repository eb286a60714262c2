package postgresql_test

import (
	"context"
	"fmt"
	"os"
	"testing"

	"github.com/cmlabs-hris/payroll-backend-go/internal/pkg/database"
	"github.com/cmlabs-hris/payroll-backend-go/internal/repository/postgresql"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
)

// TestDatabaseSetup holds a migrated connection to the test database.
type TestDatabaseSetup struct {
	DB *database.DB
}

// NewTestDatabase connects to TEST_DATABASE_URL and applies migrations.
// The test is skipped when the variable is unset.
func NewTestDatabase(t *testing.T) *TestDatabaseSetup {
	t.Helper()

	dsn := os.Getenv("TEST_DATABASE_URL")
	if dsn == "" {
		t.Skip("TEST_DATABASE_URL not set")
	}

	ctx := context.Background()
	db, err := database.NewPostgreSQLDB(ctx, dsn, database.PoolOptions{MaxConns: 5, MinConns: 1})
	require.NoError(t, err)
	require.NoError(t, postgresql.Migrate(ctx, db))

	setup := &TestDatabaseSetup{DB: db}
	require.NoError(t, setup.TruncateAllTables(ctx))
	t.Cleanup(setup.Close)
	return setup
}

// TruncateAllTables removes all rows written by the tests
func (s *TestDatabaseSetup) TruncateAllTables(ctx context.Context) error {
	tx, err := s.DB.BeginTx(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	tables := []string{
		"thirteenth_month",
		"payroll_deductions",
		"payroll_allowances",
		"payroll_records",
		"payroll_periods",
		"loans",
		"loan_types",
		"employee_benefits",
		"benefit_types",
		"employee_allowances",
		"allowance_types",
		"employees",
		"positions",
		"departments",
	}

	for _, table := range tables {
		if _, err := tx.Exec(ctx, fmt.Sprintf("TRUNCATE TABLE %s CASCADE", table)); err != nil {
			return fmt.Errorf("failed to truncate table %s: %w", table, err)
		}
	}

	return tx.Commit(ctx)
}

// SeedEmployee inserts an active employee with the given daily rate.
func (s *TestDatabaseSetup) SeedEmployee(t *testing.T, code, name, baseSalary string) string {
	t.Helper()

	id := uuid.NewString()
	_, err := s.DB.Exec(context.Background(), `
		INSERT INTO employees (id, employee_code, full_name, base_salary)
		VALUES ($1, $2, $3, $4::numeric)
	`, id, code, name, baseSalary)
	require.NoError(t, err)
	return id
}

// SeedAllowance grants a monthly allowance to the employee.
func (s *TestDatabaseSetup) SeedAllowance(t *testing.T, employeeID, name, amount string, active bool) string {
	t.Helper()
	ctx := context.Background()

	typeID := uuid.NewString()
	_, err := s.DB.Exec(ctx, `INSERT INTO allowance_types (id, name) VALUES ($1, $2)`, typeID, name)
	require.NoError(t, err)

	_, err = s.DB.Exec(ctx, `
		INSERT INTO employee_allowances (id, employee_id, allowance_type_id, amount, is_active)
		VALUES ($1, $2, $3, $4::numeric, $5)
	`, uuid.NewString(), employeeID, typeID, amount, active)
	require.NoError(t, err)
	return typeID
}

// Close closes the pool
func (s *TestDatabaseSetup) Close() {
	s.DB.Close()
}
