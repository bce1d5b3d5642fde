package postgresql

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/cmlabs-hris/guardforce-backend-go/internal/domain/timesheet"
	"github.com/cmlabs-hris/guardforce-backend-go/internal/pkg/database"
	"github.com/jackc/pgx/v5"
)

type attendanceRepository struct {
	db *database.DB
}

func NewAttendanceRepository(db *database.DB) timesheet.AttendanceRepository {
	return &attendanceRepository{db: db}
}

const timesheetColumns = `
	sa.id, sa.company_id, sa.shift_id, sa.guard_id,
	sa.check_in_time, sa.check_out_time, sa.break_minutes,
	sa.status, sa.timesheet_status, sa.reviewed_by, sa.reviewed_at, sa.rejection_reason,
	sa.created_at, sa.updated_at,
	g.full_name AS guard_name,
	` + shiftColumns

const timesheetFrom = `
	FROM shift_assignments sa
	JOIN shifts s ON s.id = sa.shift_id
	LEFT JOIN guards g ON g.id = sa.guard_id
	LEFT JOIN sites st ON st.id = s.site_id
	LEFT JOIN clients c ON c.id = s.client_id`

func scanTimesheet(row pgx.Row) (timesheet.Timesheet, error) {
	var ts timesheet.Timesheet
	r := &ts.Record

	var scanned scannedShift
	err := row.Scan(
		&r.ID, &r.CompanyID, &r.ShiftID, &r.GuardID,
		&r.CheckInTime, &r.CheckOutTime, &r.BreakMinutes,
		&r.Status, &r.TimesheetStatus, &r.ReviewedBy, &r.ReviewedAt, &r.RejectionReason,
		&r.CreatedAt, &r.UpdatedAt,
		&r.GuardName,
		&scanned.ID, &scanned.CompanyID, &scanned.Date, &scanned.StartTime, &scanned.EndTime,
		&scanned.SiteID, &scanned.ClientID, &scanned.HourlyRate, &scanned.CreatedAt, &scanned.UpdatedAt,
		&scanned.SiteName, &scanned.timezone, &scanned.ClientName,
	)
	if err != nil {
		return timesheet.Timesheet{}, err
	}

	ts.Shift = scanned.toDomain()
	return ts, nil
}

// GetByID implements timesheet.AttendanceRepository.
func (a *attendanceRepository) GetByID(ctx context.Context, id string, companyID string) (timesheet.Timesheet, error) {
	q := GetQuerier(ctx, a.db)

	query := `SELECT ` + timesheetColumns + timesheetFrom + `
		WHERE sa.id = $1 AND sa.company_id = $2`

	ts, err := scanTimesheet(q.QueryRow(ctx, query, id, companyID))
	if err != nil {
		if err == pgx.ErrNoRows {
			return timesheet.Timesheet{}, timesheet.ErrTimesheetNotFound
		}
		return timesheet.Timesheet{}, fmt.Errorf("failed to get timesheet: %w", err)
	}

	return ts, nil
}

// List implements timesheet.AttendanceRepository.
func (a *attendanceRepository) List(ctx context.Context, companyID string, query timesheet.TimesheetQuery) ([]timesheet.Timesheet, int64, error) {
	q := GetQuerier(ctx, a.db)

	baseWhere := "sa.company_id = $1"
	args := []interface{}{companyID}
	argIdx := 2

	addFilter := func(clause string, value interface{}) {
		baseWhere += fmt.Sprintf(" AND "+clause, argIdx)
		args = append(args, value)
		argIdx++
	}

	if query.GuardID != nil && *query.GuardID != "" {
		addFilter("sa.guard_id = $%d", *query.GuardID)
	}
	if query.SiteID != nil && *query.SiteID != "" {
		addFilter("s.site_id = $%d", *query.SiteID)
	}
	if query.ClientID != nil && *query.ClientID != "" {
		addFilter("s.client_id = $%d", *query.ClientID)
	}
	if query.StartDate != nil && *query.StartDate != "" {
		addFilter("s.date >= $%d", *query.StartDate)
	}
	if query.EndDate != nil && *query.EndDate != "" {
		addFilter("s.date <= $%d", *query.EndDate)
	}
	if query.TimesheetStatus != nil && *query.TimesheetStatus != "" {
		addFilter("sa.timesheet_status = $%d", *query.TimesheetStatus)
	}
	if query.AssignmentState != nil {
		addFilter("sa.status = $%d", string(*query.AssignmentState))
	}

	countQuery := `SELECT COUNT(*)` + timesheetFrom + ` WHERE ` + baseWhere
	var total int64
	if err := q.QueryRow(ctx, countQuery, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("failed to count timesheets: %w", err)
	}

	orderByField := "s.date"
	switch query.SortBy {
	case "guard_name":
		orderByField = "g.full_name"
	case "check_in_time":
		orderByField = "sa.check_in_time"
	}
	sortOrder := "DESC"
	if strings.ToLower(query.SortOrder) == "asc" {
		sortOrder = "ASC"
	}

	selectQuery := fmt.Sprintf(`SELECT %s %s
		WHERE %s
		ORDER BY %s %s, s.start_time %s, sa.id`,
		timesheetColumns, timesheetFrom, baseWhere, orderByField, sortOrder, sortOrder)

	if query.Limit > 0 {
		selectQuery += fmt.Sprintf(" LIMIT $%d OFFSET $%d", argIdx, argIdx+1)
		args = append(args, query.Limit, query.Offset)
	}

	rows, err := q.Query(ctx, selectQuery, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to query timesheets: %w", err)
	}
	defer rows.Close()

	timesheets := make([]timesheet.Timesheet, 0)
	for rows.Next() {
		ts, err := scanTimesheet(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("failed to scan timesheet: %w", err)
		}
		timesheets = append(timesheets, ts)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("failed to iterate timesheets: %w", err)
	}

	return timesheets, total, nil
}

// ListByShiftIDs implements timesheet.AttendanceRepository.
func (a *attendanceRepository) ListByShiftIDs(ctx context.Context, shiftIDs []string, companyID string) ([]timesheet.AttendanceRecord, error) {
	q := GetQuerier(ctx, a.db)

	query := `
		SELECT sa.id, sa.company_id, sa.shift_id, sa.guard_id,
			   sa.check_in_time, sa.check_out_time, sa.break_minutes,
			   sa.status, sa.timesheet_status, sa.reviewed_by, sa.reviewed_at, sa.rejection_reason,
			   sa.created_at, sa.updated_at,
			   g.full_name AS guard_name
		FROM shift_assignments sa
		LEFT JOIN guards g ON g.id = sa.guard_id
		WHERE sa.shift_id::text = ANY($1) AND sa.company_id = $2
		ORDER BY sa.shift_id, sa.created_at, sa.id
	`

	rows, err := q.Query(ctx, query, shiftIDs, companyID)
	if err != nil {
		return nil, fmt.Errorf("failed to query shift assignments: %w", err)
	}
	defer rows.Close()

	records := make([]timesheet.AttendanceRecord, 0)
	for rows.Next() {
		var r timesheet.AttendanceRecord
		if err := rows.Scan(
			&r.ID, &r.CompanyID, &r.ShiftID, &r.GuardID,
			&r.CheckInTime, &r.CheckOutTime, &r.BreakMinutes,
			&r.Status, &r.TimesheetStatus, &r.ReviewedBy, &r.ReviewedAt, &r.RejectionReason,
			&r.CreatedAt, &r.UpdatedAt,
			&r.GuardName,
		); err != nil {
			return nil, fmt.Errorf("failed to scan shift assignment: %w", err)
		}
		records = append(records, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate shift assignments: %w", err)
	}

	return records, nil
}

// Update implements timesheet.AttendanceRepository.
func (a *attendanceRepository) Update(ctx context.Context, record timesheet.AttendanceRecord) error {
	q := GetQuerier(ctx, a.db)

	query := `
		UPDATE shift_assignments
		SET check_in_time = $3,
			check_out_time = $4,
			break_minutes = $5,
			status = $6,
			timesheet_status = $7,
			reviewed_by = $8,
			reviewed_at = $9,
			rejection_reason = $10,
			updated_at = NOW()
		WHERE id = $1 AND company_id = $2
	`

	commandTag, err := q.Exec(ctx, query,
		record.ID,
		record.CompanyID,
		record.CheckInTime,
		record.CheckOutTime,
		record.BreakMinutes,
		string(record.Status),
		string(record.TimesheetStatus),
		record.ReviewedBy,
		record.ReviewedAt,
		record.RejectionReason,
	)
	if err != nil {
		return fmt.Errorf("failed to update shift assignment: %w", err)
	}

	if commandTag.RowsAffected() == 0 {
		return timesheet.ErrTimesheetNotFound
	}

	return nil
}

// MarkNoShows implements timesheet.AttendanceRepository. The shift end is
// resolved in the site time zone and rolls into the next day when the end
// clock time is before the start.
func (a *attendanceRepository) MarkNoShows(ctx context.Context, cutoff time.Time) (int64, error) {
	q := GetQuerier(ctx, a.db)

	query := `
		UPDATE shift_assignments sa
		SET status = 'no-show', updated_at = NOW()
		FROM shifts s
		LEFT JOIN sites st ON st.id = s.site_id
		WHERE sa.shift_id = s.id
		  AND sa.status = 'assigned'
		  AND sa.check_in_time IS NULL
		  AND ((s.date + s.end_time
				+ CASE WHEN s.end_time < s.start_time THEN INTERVAL '1 day' ELSE INTERVAL '0' END)
			   AT TIME ZONE COALESCE(st.timezone, 'UTC')) < $1
	`

	commandTag, err := q.Exec(ctx, query, cutoff)
	if err != nil {
		return 0, fmt.Errorf("failed to mark no-show assignments: %w", err)
	}

	return commandTag.RowsAffected(), nil
}
