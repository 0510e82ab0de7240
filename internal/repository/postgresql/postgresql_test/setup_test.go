package postgresql_test

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/require"

	"github.com/cmlabs-hris/hris-lifecycle-go/internal/pkg/database"
	"github.com/cmlabs-hris/hris-lifecycle-go/internal/repository/postgresql"
)

// testDB stays nil when TEST_DATABASE_URL is unset and every test skips.
var testDB *database.DB

const migrationsDir = "../../../../migrations"

func TestMain(m *testing.M) {
	dsn := os.Getenv("TEST_DATABASE_URL")
	if dsn == "" {
		os.Exit(m.Run())
	}

	ctx := context.Background()
	db, err := database.NewPostgreSQLDB(ctx, dsn, 8, 1)
	if err != nil {
		fmt.Fprintln(os.Stderr, "connect test database:", err)
		os.Exit(1)
	}
	if err := migrate(ctx, db); err != nil {
		db.Close()
		fmt.Fprintln(os.Stderr, "migrate test database:", err)
		os.Exit(1)
	}
	testDB = db

	code := m.Run()
	db.Close()
	os.Exit(code)
}

// migrate recreates the schema from the checked-in migrations.
func migrate(ctx context.Context, db *database.DB) error {
	for _, name := range []string{"0001_lifecycle.down.sql", "0001_lifecycle.up.sql"} {
		sql, err := os.ReadFile(filepath.Join(migrationsDir, name))
		if err != nil {
			return err
		}
		if _, err := db.Exec(ctx, string(sql)); err != nil {
			return fmt.Errorf("%s: %w", name, err)
		}
	}
	return nil
}

// setupTestDB skips without a database and empties every table otherwise.
func setupTestDB(t *testing.T) *database.DB {
	t.Helper()
	if testDB == nil {
		t.Skip("TEST_DATABASE_URL not set")
	}

	ctx := context.Background()
	tx, err := testDB.BeginTx(ctx)
	require.NoError(t, err)
	defer tx.Rollback(ctx)

	rows, err := tx.Query(ctx, `SELECT tablename FROM pg_tables WHERE schemaname = current_schema()`)
	require.NoError(t, err)
	var tables []string
	for rows.Next() {
		var name string
		require.NoError(t, rows.Scan(&name))
		tables = append(tables, name)
	}
	require.NoError(t, rows.Err())

	for _, table := range tables {
		_, err := tx.Exec(ctx, fmt.Sprintf("TRUNCATE TABLE %s CASCADE", table))
		require.NoError(t, err, "truncate %s", table)
	}
	require.NoError(t, tx.Commit(ctx))
	return testDB
}

func newID() string {
	return uuid.Must(uuid.NewV7()).String()
}

func date(s string) time.Time {
	d, err := time.Parse("2006-01-02", s)
	if err != nil {
		panic(err)
	}
	return d
}

func seedEmployee(t *testing.T, db *database.DB, companyID, name string) string {
	t.Helper()
	id := newID()
	_, err := db.Exec(context.Background(), `
		INSERT INTO employees (id, company_id, employee_code, full_name, hire_date, employment_type)
		VALUES ($1, $2, $3, $4, $5, 'permanent')
	`, id, companyID, "EMP-"+id, name, date("2024-01-01"))
	require.NoError(t, err)
	return id
}

func seedLeaveType(t *testing.T, db *database.DB, companyID, name string) string {
	t.Helper()
	id := newID()
	_, err := db.Exec(context.Background(), `
		INSERT INTO leave_types (id, company_id, name) VALUES ($1, $2, $3)
	`, id, companyID, name)
	require.NoError(t, err)
	return id
}

// contended runs fn in its own transaction with a short lock_timeout, so a
// lock held elsewhere surfaces as an error instead of a hang.
func contended(t *testing.T, db *database.DB, fn func(ctx context.Context) error) error {
	t.Helper()
	return postgresql.NewTransactor(db).WithinTransaction(context.Background(), func(ctx context.Context) error {
		if _, err := postgresql.GetQuerier(ctx, db).Exec(ctx, `SET LOCAL lock_timeout = '200ms'`); err != nil {
			return err
		}
		return fn(ctx)
	})
}

func isLockTimeout(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "55P03"
}
