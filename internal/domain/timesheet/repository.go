package timesheet

import (
	"context"
	"time"
)

// ShiftRepository defines read access to scheduled shifts.
// All methods include companyID parameter to prevent cross-company data access attacks.
type ShiftRepository interface {
	// GetByID retrieves a shift with its site time zone and joined names
	GetByID(ctx context.Context, id string, companyID string) (ShiftSchedule, error)

	// GetByIDs retrieves shifts in the order of ids; unknown ids are skipped
	GetByIDs(ctx context.Context, ids []string, companyID string) ([]ShiftSchedule, error)
}

// AttendanceRepository defines data access for shift assignments.
// All methods include companyID parameter to prevent cross-company data access attacks.
type AttendanceRepository interface {
	// GetByID retrieves an assignment joined with its shift
	GetByID(ctx context.Context, id string, companyID string) (Timesheet, error)

	// List retrieves assignments joined with their shifts
	List(ctx context.Context, companyID string, query TimesheetQuery) ([]Timesheet, int64, error)

	// ListByShiftIDs retrieves all assignments of the given shifts
	ListByShiftIDs(ctx context.Context, shiftIDs []string, companyID string) ([]AttendanceRecord, error)

	// Update persists clock times, break minutes, statuses and review fields
	Update(ctx context.Context, record AttendanceRecord) error

	// MarkNoShows stores no-show for assignments never checked in whose shift
	// ended before cutoff. Runs across companies.
	MarkNoShows(ctx context.Context, cutoff time.Time) (int64, error)
}
