package postgresql

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/cmlabs-hris/guardforce-backend-go/internal/domain/timesheet"
	"github.com/cmlabs-hris/guardforce-backend-go/internal/pkg/database"
	"github.com/jackc/pgx/v5"
)

type shiftRepository struct {
	db *database.DB
}

func NewShiftRepository(db *database.DB) timesheet.ShiftRepository {
	return &shiftRepository{db: db}
}

// shiftColumns expects shifts as s, sites as st and clients as c.
const shiftColumns = `
	s.id, s.company_id, s.date,
	to_char(s.start_time, 'HH24:MI'), to_char(s.end_time, 'HH24:MI'),
	s.site_id, s.client_id, s.hourly_rate, s.created_at, s.updated_at,
	st.name AS site_name, st.timezone AS site_timezone, c.name AS client_name`

const shiftFrom = `
	FROM shifts s
	LEFT JOIN sites st ON st.id = s.site_id
	LEFT JOIN clients c ON c.id = s.client_id`

type scannedShift struct {
	timesheet.ShiftSchedule
	timezone *string
}

func (s scannedShift) toDomain() timesheet.ShiftSchedule {
	shift := s.ShiftSchedule
	if s.timezone != nil && *s.timezone != "" {
		loc, err := time.LoadLocation(*s.timezone)
		if err != nil {
			slog.Warn("unknown site time zone, using UTC", "shift_id", shift.ID, "timezone", *s.timezone)
		} else {
			shift.Location = loc
		}
	}
	return shift
}

func scanShift(row pgx.Row) (timesheet.ShiftSchedule, error) {
	var s scannedShift
	err := row.Scan(
		&s.ID, &s.CompanyID, &s.Date, &s.StartTime, &s.EndTime,
		&s.SiteID, &s.ClientID, &s.HourlyRate, &s.CreatedAt, &s.UpdatedAt,
		&s.SiteName, &s.timezone, &s.ClientName,
	)
	if err != nil {
		return timesheet.ShiftSchedule{}, err
	}
	return s.toDomain(), nil
}

// GetByID implements timesheet.ShiftRepository.
func (r *shiftRepository) GetByID(ctx context.Context, id string, companyID string) (timesheet.ShiftSchedule, error) {
	q := GetQuerier(ctx, r.db)

	query := `SELECT ` + shiftColumns + shiftFrom + ` WHERE s.id = $1 AND s.company_id = $2`

	shift, err := scanShift(q.QueryRow(ctx, query, id, companyID))
	if err != nil {
		if err == pgx.ErrNoRows {
			return timesheet.ShiftSchedule{}, timesheet.ErrShiftNotFound
		}
		return timesheet.ShiftSchedule{}, fmt.Errorf("failed to get shift: %w", err)
	}

	return shift, nil
}

// GetByIDs implements timesheet.ShiftRepository.
func (r *shiftRepository) GetByIDs(ctx context.Context, ids []string, companyID string) ([]timesheet.ShiftSchedule, error) {
	q := GetQuerier(ctx, r.db)

	query := `SELECT ` + shiftColumns + shiftFrom + `
		JOIN unnest($1::text[]) WITH ORDINALITY AS wanted(id, ord) ON wanted.id = s.id::text
		WHERE s.company_id = $2
		ORDER BY wanted.ord`

	rows, err := q.Query(ctx, query, ids, companyID)
	if err != nil {
		return nil, fmt.Errorf("failed to query shifts: %w", err)
	}
	defer rows.Close()

	shifts := make([]timesheet.ShiftSchedule, 0, len(ids))
	for rows.Next() {
		shift, err := scanShift(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan shift: %w", err)
		}
		shifts = append(shifts, shift)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate shifts: %w", err)
	}

	return shifts, nil
}
