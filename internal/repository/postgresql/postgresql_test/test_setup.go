package postgresqltest

import (
	"context"
	"fmt"
	"os"
	"testing"

	"github.com/cmlabs-hris/guardforce-backend-go/internal/pkg/database"
)

// schema is the subset of the production tables the repositories touch.
const schema = `
CREATE TABLE IF NOT EXISTS clients (
	id uuid PRIMARY KEY DEFAULT gen_random_uuid(),
	company_id uuid NOT NULL,
	name text NOT NULL
);
CREATE TABLE IF NOT EXISTS sites (
	id uuid PRIMARY KEY DEFAULT gen_random_uuid(),
	company_id uuid NOT NULL,
	client_id uuid NOT NULL REFERENCES clients(id),
	name text NOT NULL,
	timezone text
);
CREATE TABLE IF NOT EXISTS guards (
	id uuid PRIMARY KEY DEFAULT gen_random_uuid(),
	company_id uuid NOT NULL,
	full_name text NOT NULL
);
CREATE TABLE IF NOT EXISTS shifts (
	id uuid PRIMARY KEY DEFAULT gen_random_uuid(),
	company_id uuid NOT NULL,
	site_id uuid NOT NULL REFERENCES sites(id),
	client_id uuid NOT NULL REFERENCES clients(id),
	date date NOT NULL,
	start_time time NOT NULL,
	end_time time NOT NULL,
	hourly_rate numeric(12,2),
	created_at timestamptz NOT NULL DEFAULT NOW(),
	updated_at timestamptz NOT NULL DEFAULT NOW()
);
CREATE TABLE IF NOT EXISTS shift_assignments (
	id uuid PRIMARY KEY DEFAULT gen_random_uuid(),
	company_id uuid NOT NULL,
	shift_id uuid NOT NULL REFERENCES shifts(id),
	guard_id uuid NOT NULL REFERENCES guards(id),
	check_in_time timestamptz,
	check_out_time timestamptz,
	break_minutes integer NOT NULL DEFAULT 0,
	status text NOT NULL DEFAULT 'assigned',
	timesheet_status text NOT NULL DEFAULT 'pending',
	reviewed_by uuid,
	reviewed_at timestamptz,
	rejection_reason text,
	created_at timestamptz NOT NULL DEFAULT NOW(),
	updated_at timestamptz NOT NULL DEFAULT NOW()
);
CREATE TABLE IF NOT EXISTS invoices (
	id uuid PRIMARY KEY,
	company_id uuid NOT NULL,
	client_id uuid NOT NULL REFERENCES clients(id),
	number text NOT NULL,
	issue_date date NOT NULL,
	due_date date NOT NULL,
	subtotal numeric(14,2) NOT NULL,
	tax_rate_percent numeric(6,3) NOT NULL,
	tax_amount numeric(14,2) NOT NULL,
	total numeric(14,2) NOT NULL,
	status text NOT NULL DEFAULT 'draft',
	notes text,
	sent_at timestamptz,
	paid_at timestamptz,
	created_by uuid,
	created_at timestamptz NOT NULL DEFAULT NOW(),
	updated_at timestamptz NOT NULL DEFAULT NOW(),
	CONSTRAINT invoices_company_id_number_key UNIQUE (company_id, number)
);
CREATE TABLE IF NOT EXISTS invoice_line_items (
	id uuid PRIMARY KEY DEFAULT gen_random_uuid(),
	invoice_id uuid NOT NULL REFERENCES invoices(id) ON DELETE CASCADE,
	shift_id uuid NOT NULL REFERENCES shifts(id),
	assignment_id uuid NOT NULL REFERENCES shift_assignments(id),
	description text NOT NULL,
	quantity numeric(8,2) NOT NULL,
	rate numeric(12,2) NOT NULL,
	amount numeric(14,2) NOT NULL,
	position integer NOT NULL,
	CONSTRAINT invoice_line_items_assignment_id_key UNIQUE (assignment_id)
);
`

// TestDatabaseSetup holds the connection shared by repository tests
type TestDatabaseSetup struct {
	DB *database.DB
}

// NewTestDatabase connects to TEST_DATABASE_URL and creates the tables.
// Tests are skipped when the variable is unset or the database is down.
func NewTestDatabase(t *testing.T) *TestDatabaseSetup {
	t.Helper()

	dsn := os.Getenv("TEST_DATABASE_URL")
	if dsn == "" {
		t.Skip("TEST_DATABASE_URL not set")
	}

	ctx := context.Background()
	db, err := database.NewPostgreSQLDB(ctx, dsn, database.PoolOptions{MaxConns: 4, MinConns: 1})
	if err != nil {
		t.Skipf("test database unavailable: %v", err)
	}

	if _, err := db.Exec(ctx, schema); err != nil {
		db.Close()
		t.Fatalf("failed to create schema: %v", err)
	}

	setup := &TestDatabaseSetup{DB: db}
	if err := setup.TruncateAllTables(ctx); err != nil {
		db.Close()
		t.Fatalf("failed to truncate tables: %v", err)
	}
	t.Cleanup(setup.Close)

	return setup
}

// TruncateAllTables removes all rows from the tables
func (s *TestDatabaseSetup) TruncateAllTables(ctx context.Context) error {
	tx, err := s.DB.BeginTx(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	tables := []string{
		"invoice_line_items",
		"invoices",
		"shift_assignments",
		"shifts",
		"guards",
		"sites",
		"clients",
	}

	for _, table := range tables {
		if _, err := tx.Exec(ctx, fmt.Sprintf("TRUNCATE TABLE %s CASCADE", table)); err != nil {
			return fmt.Errorf("failed to truncate table %s: %w", table, err)
		}
	}

	return tx.Commit(ctx)
}

// Close closes the database connection
func (s *TestDatabaseSetup) Close() {
	s.DB.Close()
}
