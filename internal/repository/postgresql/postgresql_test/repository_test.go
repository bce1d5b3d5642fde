package postgresqltest

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/cmlabs-hris/guardforce-backend-go/internal/domain/billing"
	"github.com/cmlabs-hris/guardforce-backend-go/internal/domain/timesheet"
	"github.com/cmlabs-hris/guardforce-backend-go/internal/repository/postgresql"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type seeded struct {
	companyID  string
	clientID   string
	guardID    string
	dayShift   string
	nightShift string
	worked     string // completed day assignment
	missed     string // never checked in, day shift
	night      string // never checked in, night shift
}

func seed(t *testing.T, setup *TestDatabaseSetup) seeded {
	t.Helper()
	ctx := context.Background()
	db := setup.DB

	s := seeded{companyID: uuid.NewString()}

	require.NoError(t, db.QueryRow(ctx,
		`INSERT INTO clients (company_id, name) VALUES ($1, 'Harbour Holdings') RETURNING id`,
		s.companyID).Scan(&s.clientID))

	var siteID string
	require.NoError(t, db.QueryRow(ctx,
		`INSERT INTO sites (company_id, client_id, name, timezone) VALUES ($1, $2, 'Harbour Gate', 'Europe/London') RETURNING id`,
		s.companyID, s.clientID).Scan(&siteID))

	require.NoError(t, db.QueryRow(ctx,
		`INSERT INTO guards (company_id, full_name) VALUES ($1, 'Sam Reyes') RETURNING id`,
		s.companyID).Scan(&s.guardID))

	require.NoError(t, db.QueryRow(ctx,
		`INSERT INTO shifts (company_id, site_id, client_id, date, start_time, end_time, hourly_rate)
		 VALUES ($1, $2, $3, '2024-03-04', '09:00', '17:00', 32.50) RETURNING id`,
		s.companyID, siteID, s.clientID).Scan(&s.dayShift))

	require.NoError(t, db.QueryRow(ctx,
		`INSERT INTO shifts (company_id, site_id, client_id, date, start_time, end_time)
		 VALUES ($1, $2, $3, '2024-03-04', '22:00', '06:00') RETURNING id`,
		s.companyID, siteID, s.clientID).Scan(&s.nightShift))

	checkIn := time.Date(2024, 3, 4, 9, 7, 0, 0, time.UTC)
	checkOut := time.Date(2024, 3, 4, 17, 2, 0, 0, time.UTC)
	require.NoError(t, db.QueryRow(ctx,
		`INSERT INTO shift_assignments (company_id, shift_id, guard_id, check_in_time, check_out_time, break_minutes, status)
		 VALUES ($1, $2, $3, $4, $5, 30, 'completed') RETURNING id`,
		s.companyID, s.dayShift, s.guardID, checkIn, checkOut).Scan(&s.worked))

	require.NoError(t, db.QueryRow(ctx,
		`INSERT INTO shift_assignments (company_id, shift_id, guard_id) VALUES ($1, $2, $3) RETURNING id`,
		s.companyID, s.dayShift, s.guardID).Scan(&s.missed))

	require.NoError(t, db.QueryRow(ctx,
		`INSERT INTO shift_assignments (company_id, shift_id, guard_id) VALUES ($1, $2, $3) RETURNING id`,
		s.companyID, s.nightShift, s.guardID).Scan(&s.night))

	return s
}

func TestShiftRepository_GetByIDs(t *testing.T) {
	setup := NewTestDatabase(t)
	s := seed(t, setup)
	repo := postgresql.NewShiftRepository(setup.DB)
	ctx := context.Background()

	shifts, err := repo.GetByIDs(ctx, []string{s.nightShift, "not-a-uuid", s.dayShift}, s.companyID)
	require.NoError(t, err)
	require.Len(t, shifts, 2)
	assert.Equal(t, s.nightShift, shifts[0].ID)
	assert.Equal(t, "22:00", shifts[0].StartTime)
	assert.Equal(t, "06:00", shifts[0].EndTime)
	assert.Nil(t, shifts[0].HourlyRate)

	day := shifts[1]
	require.NotNil(t, day.HourlyRate)
	assert.Equal(t, "32.50", day.HourlyRate.StringFixed(2))
	require.NotNil(t, day.Location)
	assert.Equal(t, "Europe/London", day.Location.String())
	require.NotNil(t, day.SiteName)
	assert.Equal(t, "Harbour Gate", *day.SiteName)

	other, err := repo.GetByIDs(ctx, []string{s.dayShift}, uuid.NewString())
	require.NoError(t, err)
	assert.Empty(t, other)

	_, err = repo.GetByID(ctx, uuid.NewString(), s.companyID)
	assert.ErrorIs(t, err, timesheet.ErrShiftNotFound)
}

func TestAttendanceRepository_ListAndUpdate(t *testing.T) {
	setup := NewTestDatabase(t)
	s := seed(t, setup)
	repo := postgresql.NewAttendanceRepository(setup.DB)
	ctx := context.Background()

	all, total, err := repo.List(ctx, s.companyID, timesheet.TimesheetQuery{SortBy: "date", SortOrder: "asc"})
	require.NoError(t, err)
	assert.Equal(t, int64(3), total)
	assert.Len(t, all, 3)

	completed := timesheet.AssignmentStatusCompleted
	done, total, err := repo.List(ctx, s.companyID, timesheet.TimesheetQuery{AssignmentState: &completed})
	require.NoError(t, err)
	assert.Equal(t, int64(1), total)
	require.Len(t, done, 1)
	assert.Equal(t, s.worked, done[0].Record.ID)
	require.NotNil(t, done[0].Record.GuardName)
	assert.Equal(t, "Sam Reyes", *done[0].Record.GuardName)
	assert.Equal(t, 30, done[0].Record.BreakMinutes)
	assert.Equal(t, "09:00", done[0].Shift.StartTime)

	page, total, err := repo.List(ctx, s.companyID, timesheet.TimesheetQuery{Limit: 2, Offset: 2})
	require.NoError(t, err)
	assert.Equal(t, int64(3), total)
	assert.Len(t, page, 1)

	ts, err := repo.GetByID(ctx, s.missed, s.companyID)
	require.NoError(t, err)
	assert.Nil(t, ts.Record.CheckInTime)

	checkIn := time.Date(2024, 3, 4, 9, 0, 0, 0, time.UTC)
	ts.Record.CheckInTime = &checkIn
	ts.Record.Status = timesheet.AssignmentStatusCheckedIn
	require.NoError(t, repo.Update(ctx, ts.Record))

	updated, err := repo.GetByID(ctx, s.missed, s.companyID)
	require.NoError(t, err)
	require.NotNil(t, updated.Record.CheckInTime)
	assert.True(t, checkIn.Equal(*updated.Record.CheckInTime))
	assert.Equal(t, timesheet.AssignmentStatusCheckedIn, updated.Record.Status)

	ts.Record.ID = uuid.NewString()
	assert.ErrorIs(t, repo.Update(ctx, ts.Record), timesheet.ErrTimesheetNotFound)

	records, err := repo.ListByShiftIDs(ctx, []string{s.dayShift}, s.companyID)
	require.NoError(t, err)
	assert.Len(t, records, 2)
}

func TestAttendanceRepository_MarkNoShows(t *testing.T) {
	setup := NewTestDatabase(t)
	s := seed(t, setup)
	repo := postgresql.NewAttendanceRepository(setup.DB)
	ctx := context.Background()

	// Day shift ends 17:00 London (UTC in March), night shift ends 06:00 the next day.
	marked, err := repo.MarkNoShows(ctx, time.Date(2024, 3, 4, 18, 0, 0, 0, time.UTC))
	require.NoError(t, err)
	assert.Equal(t, int64(1), marked)

	missed, err := repo.GetByID(ctx, s.missed, s.companyID)
	require.NoError(t, err)
	assert.Equal(t, timesheet.AssignmentStatusNoShow, missed.Record.Status)

	night, err := repo.GetByID(ctx, s.night, s.companyID)
	require.NoError(t, err)
	assert.Equal(t, timesheet.AssignmentStatusAssigned, night.Record.Status)

	marked, err = repo.MarkNoShows(ctx, time.Date(2024, 3, 5, 7, 0, 0, 0, time.UTC))
	require.NoError(t, err)
	assert.Equal(t, int64(1), marked)

	worked, err := repo.GetByID(ctx, s.worked, s.companyID)
	require.NoError(t, err)
	assert.Equal(t, timesheet.AssignmentStatusCompleted, worked.Record.Status)
}

func TestInvoiceRepository_Lifecycle(t *testing.T) {
	setup := NewTestDatabase(t)
	s := seed(t, setup)
	repo := postgresql.NewInvoiceRepository(setup.DB)
	ctx := context.Background()

	id := uuid.Must(uuid.NewV7()).String()
	invoice := billing.Invoice{
		ID:        id,
		CompanyID: s.companyID,
		ClientID:  s.clientID,
		Number:    "INV-20240305-TEST0001",
		IssueDate: time.Date(2024, 3, 5, 0, 0, 0, 0, time.UTC),
		DueDate:   time.Date(2024, 4, 4, 0, 0, 0, 0, time.UTC),
		Totals: billing.Totals{
			Subtotal:       decimal.RequireFromString("257.40"),
			TaxRatePercent: decimal.RequireFromString("20"),
			TaxAmount:      decimal.RequireFromString("51.48"),
			Total:          decimal.RequireFromString("308.88"),
		},
		Status: billing.InvoiceStatusDraft,
		Items: []billing.InvoiceLineItem{{
			ShiftID:      s.dayShift,
			AssignmentID: s.worked,
			Description:  "Sam Reyes – Harbour Gate – 2024-03-04",
			Quantity:     decimal.RequireFromString("7.92"),
			Rate:         decimal.RequireFromString("32.50"),
			Amount:       decimal.RequireFromString("257.40"),
			Position:     1,
		}},
	}

	created, err := repo.Create(ctx, invoice)
	require.NoError(t, err)
	require.NotEmpty(t, created.Items[0].ID)
	assert.False(t, created.CreatedAt.IsZero())

	got, err := repo.GetByID(ctx, id, s.companyID)
	require.NoError(t, err)
	assert.Equal(t, "308.88", got.Totals.Total.StringFixed(2))
	require.NotNil(t, got.ClientName)
	assert.Equal(t, "Harbour Holdings", *got.ClientName)
	require.Len(t, got.Items, 1)
	assert.Equal(t, "7.92", got.Items[0].Quantity.StringFixed(2))

	invoiced, err := repo.InvoicedAssignmentIDs(ctx, []string{s.worked, s.missed}, s.companyID)
	require.NoError(t, err)
	assert.Equal(t, []string{s.worked}, invoiced)

	now := time.Now().UTC().Truncate(time.Second)
	got.Status = billing.InvoiceStatusSent
	got.SentAt = &now
	require.NoError(t, repo.UpdateStatus(ctx, got))

	sent := "sent"
	list, total, err := repo.List(ctx, s.companyID, billing.InvoiceFilter{Status: &sent, Page: 1, Limit: 20})
	require.NoError(t, err)
	assert.Equal(t, int64(1), total)
	require.Len(t, list, 1)
	assert.Nil(t, list[0].Items)
	require.NotNil(t, list[0].SentAt)

	_, err = repo.GetByID(ctx, uuid.NewString(), s.companyID)
	assert.ErrorIs(t, err, billing.ErrInvoiceNotFound)
}

func TestInvoiceRepository_DuplicateAssignmentRollsBack(t *testing.T) {
	setup := NewTestDatabase(t)
	s := seed(t, setup)
	repo := postgresql.NewInvoiceRepository(setup.DB)
	tx := postgresql.NewTransactor(setup.DB)
	ctx := context.Background()

	newInvoice := func(number string) billing.Invoice {
		return billing.Invoice{
			ID:        uuid.Must(uuid.NewV7()).String(),
			CompanyID: s.companyID,
			ClientID:  s.clientID,
			Number:    number,
			IssueDate: time.Date(2024, 3, 5, 0, 0, 0, 0, time.UTC),
			DueDate:   time.Date(2024, 4, 4, 0, 0, 0, 0, time.UTC),
			Status:    billing.InvoiceStatusDraft,
			Items: []billing.InvoiceLineItem{{
				ShiftID: s.dayShift, AssignmentID: s.worked, Description: "x",
				Quantity: decimal.NewFromInt(1), Rate: decimal.NewFromInt(1), Amount: decimal.NewFromInt(1), Position: 1,
			}},
		}
	}

	err := tx.RunInTx(ctx, func(txCtx context.Context) error {
		_, err := repo.Create(txCtx, newInvoice("INV-A"))
		return err
	})
	require.NoError(t, err)

	second := newInvoice("INV-B")
	err = tx.RunInTx(ctx, func(txCtx context.Context) error {
		_, err := repo.Create(txCtx, second)
		return err
	})
	assert.True(t, errors.Is(err, billing.ErrAlreadyInvoiced))

	_, err = repo.GetByID(ctx, second.ID, s.companyID)
	assert.ErrorIs(t, err, billing.ErrInvoiceNotFound)

	_, err = repo.Create(ctx, newInvoice("INV-A"))
	assert.ErrorIs(t, err, billing.ErrInvoiceNumberExists)
}
