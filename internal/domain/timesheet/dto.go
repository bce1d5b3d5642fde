package timesheet

import (
	"strings"
	"time"

	"github.com/cmlabs-hris/guardforce-backend-go/internal/pkg/validator"
)

// ========================================
// TIMESHEET DTOs
// ========================================

type ViolationResponse struct {
	Kind    string `json:"kind"`
	Message string `json:"message"`
}

type TimesheetResponse struct {
	ID               string              `json:"id"`
	ShiftID          string              `json:"shift_id"`
	GuardID          string              `json:"guard_id"`
	GuardName        string              `json:"guard_name"`
	SiteID           string              `json:"site_id"`
	SiteName         *string             `json:"site_name,omitempty"`
	ClientID         string              `json:"client_id"`
	ClientName       *string             `json:"client_name,omitempty"`
	Date             string              `json:"date"`
	ScheduledStart   string              `json:"scheduled_start"`
	ScheduledEnd     string              `json:"scheduled_end"`
	CheckInTime      *string             `json:"check_in_time,omitempty"`
	CheckOutTime     *string             `json:"check_out_time,omitempty"`
	BreakMinutes     int                 `json:"break_minutes"`
	AssignmentStatus string              `json:"assignment_status"`
	TimesheetStatus  string              `json:"timesheet_status"`
	Status           string              `json:"status"`
	StatusLabel      string              `json:"status_label"`
	ScheduledHours   float64             `json:"scheduled_hours"`
	ActualHours      Hours               `json:"actual_hours"`
	Violations       []ViolationResponse `json:"violations"`
	ReviewedBy       *string             `json:"reviewed_by,omitempty"`
	ReviewedAt       *string             `json:"reviewed_at,omitempty"`
	RejectionReason  *string             `json:"rejection_reason,omitempty"`
}

type TimesheetFilter struct {
	// Search & Filter
	GuardID         *string `json:"guard_id,omitempty"`
	SiteID          *string `json:"site_id,omitempty"`
	ClientID        *string `json:"client_id,omitempty"`
	StartDate       *string `json:"start_date,omitempty"` // YYYY-MM-DD
	EndDate         *string `json:"end_date,omitempty"`   // YYYY-MM-DD
	TimesheetStatus *string `json:"timesheet_status,omitempty"`
	Status          *string `json:"status,omitempty"` // computed status

	// Pagination
	Page  int `json:"page"`
	Limit int `json:"limit"`

	// Sorting
	SortBy    string `json:"sort_by"`    // date, guard_name, check_in_time
	SortOrder string `json:"sort_order"` // asc, desc
}

func (f *TimesheetFilter) Validate() error {
	var errs validator.ValidationErrors

	if f.Page < 0 {
		errs = append(errs, validator.ValidationError{
			Field:   "page",
			Message: "page must be a positive number",
		})
	}
	if f.Page == 0 {
		f.Page = 1
	}

	if f.Limit < 0 {
		errs = append(errs, validator.ValidationError{
			Field:   "limit",
			Message: "limit must be a positive number",
		})
	}
	if f.Limit == 0 {
		f.Limit = 20
	}
	if f.Limit > 100 {
		errs = append(errs, validator.ValidationError{
			Field:   "limit",
			Message: "limit must not exceed 100",
		})
	}

	if f.TimesheetStatus != nil && !validator.IsInSlice(*f.TimesheetStatus, ReviewStatusValues) {
		errs = append(errs, validator.ValidationError{
			Field:   "timesheet_status",
			Message: "timesheet_status must be one of: " + strings.Join(ReviewStatusValues, ", "),
		})
	}

	if f.Status != nil && !validator.IsInSlice(*f.Status, StatusValues) {
		errs = append(errs, validator.ValidationError{
			Field:   "status",
			Message: "status must be one of: " + strings.Join(StatusValues, ", "),
		})
	}

	if f.StartDate != nil && *f.StartDate != "" {
		if _, valid := validator.IsValidDate(*f.StartDate); !valid {
			errs = append(errs, validator.ValidationError{
				Field:   "start_date",
				Message: "start_date must be in YYYY-MM-DD format",
			})
		}
	}

	if f.EndDate != nil && *f.EndDate != "" {
		if _, valid := validator.IsValidDate(*f.EndDate); !valid {
			errs = append(errs, validator.ValidationError{
				Field:   "end_date",
				Message: "end_date must be in YYYY-MM-DD format",
			})
		}
	}

	if f.SortBy != "" {
		validSortFields := []string{"date", "guard_name", "check_in_time"}
		if !validator.IsInSlice(f.SortBy, validSortFields) {
			errs = append(errs, validator.ValidationError{
				Field:   "sort_by",
				Message: "sort_by must be one of: date, guard_name, check_in_time",
			})
		}
	} else {
		f.SortBy = "date"
	}

	if f.SortOrder != "" {
		if !validator.IsInSlice(strings.ToLower(f.SortOrder), []string{"asc", "desc"}) {
			errs = append(errs, validator.ValidationError{
				Field:   "sort_order",
				Message: "sort_order must be one of: asc, desc",
			})
		}
	} else {
		f.SortOrder = "desc"
	}

	if len(errs) > 0 {
		return errs
	}

	return nil
}

// Query converts the filter into repository search parameters. The computed
// status cannot be filtered in storage, so it is applied by the service.
func (f TimesheetFilter) Query() TimesheetQuery {
	return TimesheetQuery{
		GuardID:         f.GuardID,
		SiteID:          f.SiteID,
		ClientID:        f.ClientID,
		StartDate:       f.StartDate,
		EndDate:         f.EndDate,
		TimesheetStatus: f.TimesheetStatus,
		SortBy:          f.SortBy,
		SortOrder:       f.SortOrder,
	}
}

// TimesheetQuery is what the repository can filter on. Limit 0 means no limit.
type TimesheetQuery struct {
	GuardID         *string
	SiteID          *string
	ClientID        *string
	StartDate       *string
	EndDate         *string
	TimesheetStatus *string
	AssignmentState *AssignmentStatus
	SortBy          string
	SortOrder       string
	Limit           int
	Offset          int
}

type ListTimesheetResponse struct {
	TotalCount int64               `json:"total_count"`
	Page       int                 `json:"page"`
	Limit      int                 `json:"limit"`
	TotalPages int                 `json:"total_pages"`
	Showing    string              `json:"showing"`
	Timesheets []TimesheetResponse `json:"timesheets"`
}

type SummaryResponse struct {
	TotalRecords        int            `json:"total_records"`
	ByStatus            map[string]int `json:"by_status"`
	ByViolation         map[string]int `json:"by_violation"`
	TotalScheduledHours float64        `json:"total_scheduled_hours"`
	TotalActualHours    float64        `json:"total_actual_hours"`
	UnavailableHours    int            `json:"unavailable_hours_count"`
}

// ========================================
// CLOCK EVENT DTOs
// ========================================

type CheckOutRequest struct {
	ID           string `json:"-"`
	BreakMinutes *int   `json:"break_minutes,omitempty"`
}

func (r *CheckOutRequest) Validate() error {
	var errs validator.ValidationErrors

	if r.BreakMinutes != nil && *r.BreakMinutes < 0 {
		errs = append(errs, validator.ValidationError{
			Field:   "break_minutes",
			Message: "break_minutes must be non-negative",
		})
	}

	if len(errs) > 0 {
		return errs
	}
	return nil
}

// ========================================
// REVIEW DTOs
// ========================================

// UpdateTimesheetRequest lets a manager correct clock data, e.g. a guard forgot to check out.
type UpdateTimesheetRequest struct {
	ID           string  `json:"-"`
	CheckInTime  *string `json:"check_in_time,omitempty"`  // RFC3339 or site-local "YYYY-MM-DD HH:MM[:SS]"
	CheckOutTime *string `json:"check_out_time,omitempty"` // RFC3339 or site-local "YYYY-MM-DD HH:MM[:SS]"
	BreakMinutes *int    `json:"break_minutes,omitempty"`
	Status       *string `json:"status,omitempty"` // assignment status
}

func (r *UpdateTimesheetRequest) Validate() error {
	var errs validator.ValidationErrors

	if r.CheckInTime != nil && *r.CheckInTime != "" {
		if _, valid := validator.ParseDateTimeIn(*r.CheckInTime, nil); !valid {
			errs = append(errs, validator.ValidationError{
				Field:   "check_in_time",
				Message: "check_in_time must be an ISO8601 timestamp",
			})
		}
	}

	if r.CheckOutTime != nil && *r.CheckOutTime != "" {
		if _, valid := validator.ParseDateTimeIn(*r.CheckOutTime, nil); !valid {
			errs = append(errs, validator.ValidationError{
				Field:   "check_out_time",
				Message: "check_out_time must be an ISO8601 timestamp",
			})
		}
	}

	if r.BreakMinutes != nil && *r.BreakMinutes < 0 {
		errs = append(errs, validator.ValidationError{
			Field:   "break_minutes",
			Message: "break_minutes must be non-negative",
		})
	}

	if r.Status != nil && !validator.IsInSlice(*r.Status, AssignmentStatusValues) {
		errs = append(errs, validator.ValidationError{
			Field:   "status",
			Message: "status must be one of: " + strings.Join(AssignmentStatusValues, ", "),
		})
	}

	if len(errs) > 0 {
		return errs
	}

	return nil
}

type RejectTimesheetRequest struct {
	ID     string `json:"-"`
	Reason string `json:"reason"`
}

func (r *RejectTimesheetRequest) Validate() error {
	var errs validator.ValidationErrors

	if validator.IsEmpty(r.Reason) {
		errs = append(errs, validator.ValidationError{
			Field:   "reason",
			Message: "rejection reason is required",
		})
	}

	if len(errs) > 0 {
		return errs
	}

	return nil
}

// ========================================
// AD-HOC EVALUATION DTOs
// ========================================

type EvaluateShift struct {
	Date      string `json:"date" yaml:"date"`             // YYYY-MM-DD
	StartTime string `json:"start_time" yaml:"start_time"` // HH:MM
	EndTime   string `json:"end_time" yaml:"end_time"`     // HH:MM
	Timezone  string `json:"timezone,omitempty" yaml:"timezone,omitempty"`
}

type EvaluateRecord struct {
	CheckInTime  *string `json:"check_in_time,omitempty" yaml:"check_in_time,omitempty"`
	CheckOutTime *string `json:"check_out_time,omitempty" yaml:"check_out_time,omitempty"`
	BreakMinutes int     `json:"break_minutes" yaml:"break_minutes"`
	Status       string  `json:"status,omitempty" yaml:"status,omitempty"`
}

// EvaluateRequest runs the rule engine against data that is not stored.
// Malformed times are treated as absent rather than rejected.
type EvaluateRequest struct {
	Shift  EvaluateShift  `json:"shift"`
	Record EvaluateRecord `json:"record"`
	Rules  *RuleConfig    `json:"rules,omitempty"`
}

func (r *EvaluateRequest) Validate() error {
	var errs validator.ValidationErrors

	if r.Shift.Timezone != "" {
		if _, ok := validator.IsValidTimezone(r.Shift.Timezone); !ok {
			errs = append(errs, validator.ValidationError{
				Field:   "shift.timezone",
				Message: "timezone must be an IANA zone name",
			})
		}
	}

	if r.Record.BreakMinutes < 0 {
		errs = append(errs, validator.ValidationError{
			Field:   "record.break_minutes",
			Message: "break_minutes must be non-negative",
		})
	}

	if r.Rules != nil {
		if err := r.Rules.Validate(); err != nil {
			if ruleErrs, ok := err.(validator.ValidationErrors); ok {
				for _, e := range ruleErrs {
					errs = append(errs, validator.ValidationError{Field: "rules." + e.Field, Message: e.Message})
				}
			}
		}
	}

	if len(errs) > 0 {
		return errs
	}
	return nil
}

type EvaluationResponse struct {
	Status         string              `json:"status"`
	StatusLabel    string              `json:"status_label"`
	ScheduledHours float64             `json:"scheduled_hours"`
	ActualHours    Hours               `json:"actual_hours"`
	Violations     []ViolationResponse `json:"violations"`
}

// ToDomain converts the request into engine inputs, leniently.
func (r EvaluateRequest) ToDomain() (AttendanceRecord, ShiftSchedule) {
	loc, ok := validator.IsValidTimezone(r.Shift.Timezone)
	if !ok {
		loc = time.UTC
	}

	shift := ShiftSchedule{
		StartTime: r.Shift.StartTime,
		EndTime:   r.Shift.EndTime,
		Location:  loc,
	}
	if date, ok := validator.IsValidDate(r.Shift.Date); ok {
		shift.Date = date
	}

	record := AttendanceRecord{
		CheckInTime:  parseOptionalTime(r.Record.CheckInTime, loc),
		CheckOutTime: parseOptionalTime(r.Record.CheckOutTime, loc),
		BreakMinutes: r.Record.BreakMinutes,
		Status:       AssignmentStatus(r.Record.Status),
	}
	return record, shift
}

func parseOptionalTime(s *string, loc *time.Location) *time.Time {
	if s == nil {
		return nil
	}
	t, ok := validator.ParseDateTimeIn(*s, loc)
	if !ok {
		return nil
	}
	return &t
}
