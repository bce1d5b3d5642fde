package timesheet

import (
	"context"
	"errors"
	"fmt"
	"math"
	"time"

	"github.com/cmlabs-hris/guardforce-backend-go/internal/domain/timesheet"
	"github.com/cmlabs-hris/guardforce-backend-go/internal/domain/user"
	"github.com/cmlabs-hris/guardforce-backend-go/internal/pkg/validator"
)

type TimesheetServiceImpl struct {
	attendanceRepo timesheet.AttendanceRepository
	engine         *RuleEngine
	rules          timesheet.RuleConfig
	now            func() time.Time
}

func NewTimesheetService(
	attendanceRepo timesheet.AttendanceRepository,
	engine *RuleEngine,
	rules timesheet.RuleConfig,
) timesheet.Service {
	if engine == nil {
		engine = NewRuleEngine()
	}
	return &TimesheetServiceImpl{
		attendanceRepo: attendanceRepo,
		engine:         engine,
		rules:          rules,
		now:            time.Now,
	}
}

// Rules implements timesheet.Service.
func (s *TimesheetServiceImpl) Rules() timesheet.RuleConfig {
	return s.rules
}

// ListTimesheets implements timesheet.Service.
func (s *TimesheetServiceImpl) ListTimesheets(ctx context.Context, filter timesheet.TimesheetFilter) (timesheet.ListTimesheetResponse, error) {
	if err := filter.Validate(); err != nil {
		return timesheet.ListTimesheetResponse{}, err
	}

	claims, err := user.ClaimsFromContext(ctx)
	if err != nil {
		return timesheet.ListTimesheetResponse{}, err
	}
	if claims.IsGuard() {
		filter.GuardID = claims.GuardID
	}

	query := filter.Query()
	offset := (filter.Page - 1) * filter.Limit

	// The computed status only exists after evaluation, so that filter
	// loads every candidate and pages in memory.
	if filter.Status == nil {
		query.Limit = filter.Limit
		query.Offset = offset
	}

	rows, total, err := s.attendanceRepo.List(ctx, claims.CompanyID, query)
	if err != nil {
		return timesheet.ListTimesheetResponse{}, fmt.Errorf("failed to list timesheets: %w", err)
	}

	responses := make([]timesheet.TimesheetResponse, 0, len(rows))
	for _, row := range rows {
		resp := s.mapTimesheetToResponse(row)
		if filter.Status != nil && resp.Status != *filter.Status {
			continue
		}
		responses = append(responses, resp)
	}

	if filter.Status != nil {
		total = int64(len(responses))
		if offset >= len(responses) {
			responses = []timesheet.TimesheetResponse{}
		} else {
			responses = responses[offset:min(offset+filter.Limit, len(responses))]
		}
	}

	totalPages := int(math.Ceil(float64(total) / float64(filter.Limit)))
	showing := fmt.Sprintf("%d-%d of %d", offset+1, min(filter.Page*filter.Limit, int(total)), total)
	if total == 0 {
		showing = "0 of 0"
	}

	return timesheet.ListTimesheetResponse{
		TotalCount: total,
		Page:       filter.Page,
		Limit:      filter.Limit,
		TotalPages: totalPages,
		Showing:    showing,
		Timesheets: responses,
	}, nil
}

// GetTimesheet implements timesheet.Service.
func (s *TimesheetServiceImpl) GetTimesheet(ctx context.Context, id string) (timesheet.TimesheetResponse, error) {
	claims, err := user.ClaimsFromContext(ctx)
	if err != nil {
		return timesheet.TimesheetResponse{}, err
	}

	ts, err := s.getOwned(ctx, id, claims)
	if err != nil {
		return timesheet.TimesheetResponse{}, err
	}

	return s.mapTimesheetToResponse(ts), nil
}

// Summary implements timesheet.Service.
func (s *TimesheetServiceImpl) Summary(ctx context.Context, filter timesheet.TimesheetFilter) (timesheet.SummaryResponse, error) {
	if err := filter.Validate(); err != nil {
		return timesheet.SummaryResponse{}, err
	}

	claims, err := user.ClaimsFromContext(ctx)
	if err != nil {
		return timesheet.SummaryResponse{}, err
	}
	if claims.IsGuard() {
		filter.GuardID = claims.GuardID
	}

	rows, _, err := s.attendanceRepo.List(ctx, claims.CompanyID, filter.Query())
	if err != nil {
		return timesheet.SummaryResponse{}, fmt.Errorf("failed to list timesheets: %w", err)
	}

	summary := timesheet.SummaryResponse{
		ByStatus:    make(map[string]int, len(timesheet.StatusValues)),
		ByViolation: map[string]int{},
	}
	for _, st := range timesheet.StatusValues {
		summary.ByStatus[st] = 0
	}
	for _, kind := range []timesheet.ViolationKind{
		timesheet.ViolationLate,
		timesheet.ViolationEarlyLeave,
		timesheet.ViolationOvertime,
		timesheet.ViolationBreak,
	} {
		summary.ByViolation[string(kind)] = 0
	}

	var scheduled, actual float64
	for _, row := range rows {
		eval := s.engine.Evaluate(row.Record, row.Shift, s.rules)
		if filter.Status != nil && string(eval.Status) != *filter.Status {
			continue
		}

		summary.TotalRecords++
		summary.ByStatus[string(eval.Status)]++
		for _, v := range eval.Violations {
			summary.ByViolation[string(v.Kind)]++
		}

		scheduled += eval.ScheduledHours
		actual += eval.ActualHours.Float()
		if row.Record.CheckOutTime != nil && !eval.ActualHours.Available() {
			summary.UnavailableHours++
		}
	}
	summary.TotalScheduledHours = timesheet.Round2(scheduled)
	summary.TotalActualHours = timesheet.Round2(actual)

	return summary, nil
}

// CheckIn implements timesheet.Service.
func (s *TimesheetServiceImpl) CheckIn(ctx context.Context, id string) (timesheet.TimesheetResponse, error) {
	claims, err := user.ClaimsFromContext(ctx)
	if err != nil {
		return timesheet.TimesheetResponse{}, err
	}

	ts, err := s.getOwned(ctx, id, claims)
	if err != nil {
		return timesheet.TimesheetResponse{}, err
	}

	if ts.Record.Status == timesheet.AssignmentStatusNoShow {
		return timesheet.TimesheetResponse{}, timesheet.ErrMarkedNoShow
	}
	if ts.Record.CheckInTime != nil {
		return timesheet.TimesheetResponse{}, timesheet.ErrAlreadyCheckedIn
	}

	// Absolute instants are stored in UTC
	nowUTC := s.now().UTC()
	ts.Record.CheckInTime = &nowUTC
	ts.Record.Status = timesheet.AssignmentStatusCheckedIn

	if err := s.attendanceRepo.Update(ctx, ts.Record); err != nil {
		return timesheet.TimesheetResponse{}, fmt.Errorf("failed to check in: %w", err)
	}

	return s.mapTimesheetToResponse(ts), nil
}

// CheckOut implements timesheet.Service.
func (s *TimesheetServiceImpl) CheckOut(ctx context.Context, req timesheet.CheckOutRequest) (timesheet.TimesheetResponse, error) {
	if err := req.Validate(); err != nil {
		return timesheet.TimesheetResponse{}, err
	}

	claims, err := user.ClaimsFromContext(ctx)
	if err != nil {
		return timesheet.TimesheetResponse{}, err
	}

	ts, err := s.getOwned(ctx, req.ID, claims)
	if err != nil {
		return timesheet.TimesheetResponse{}, err
	}

	if ts.Record.CheckInTime == nil {
		return timesheet.TimesheetResponse{}, timesheet.ErrNotCheckedIn
	}
	if ts.Record.CheckOutTime != nil {
		return timesheet.TimesheetResponse{}, timesheet.ErrAlreadyCheckedOut
	}

	nowUTC := s.now().UTC()
	ts.Record.CheckOutTime = &nowUTC
	ts.Record.Status = timesheet.AssignmentStatusCompleted
	if req.BreakMinutes != nil {
		ts.Record.BreakMinutes = *req.BreakMinutes
	}

	if err := s.attendanceRepo.Update(ctx, ts.Record); err != nil {
		return timesheet.TimesheetResponse{}, fmt.Errorf("failed to check out: %w", err)
	}

	return s.mapTimesheetToResponse(ts), nil
}

// UpdateTimesheet implements timesheet.Service. Any correction sends the
// timesheet back to pending review.
func (s *TimesheetServiceImpl) UpdateTimesheet(ctx context.Context, req timesheet.UpdateTimesheetRequest) (timesheet.TimesheetResponse, error) {
	if err := req.Validate(); err != nil {
		return timesheet.TimesheetResponse{}, err
	}

	claims, err := user.ClaimsFromContext(ctx)
	if err != nil {
		return timesheet.TimesheetResponse{}, err
	}

	ts, err := s.getOwned(ctx, req.ID, claims)
	if err != nil {
		return timesheet.TimesheetResponse{}, err
	}

	// Timestamps without an offset are site-local
	loc := ts.Shift.Location
	if req.CheckInTime != nil {
		ts.Record.CheckInTime = parseCorrection(*req.CheckInTime, loc)
	}
	if req.CheckOutTime != nil {
		ts.Record.CheckOutTime = parseCorrection(*req.CheckOutTime, loc)
	}
	if req.BreakMinutes != nil {
		ts.Record.BreakMinutes = *req.BreakMinutes
	}
	if req.Status != nil {
		ts.Record.Status = timesheet.AssignmentStatus(*req.Status)
	}

	var errs validator.ValidationErrors
	if ts.Record.CheckInTime != nil && ts.Record.CheckOutTime != nil && ts.Record.CheckOutTime.Before(*ts.Record.CheckInTime) {
		errs = append(errs, validator.ValidationError{
			Field:   "check_out_time",
			Message: "check_out_time must not be before check_in_time",
		})
	}
	if ts.Record.CheckOutTime != nil && ts.Record.CheckInTime == nil {
		errs = append(errs, validator.ValidationError{
			Field:   "check_in_time",
			Message: "check_in_time is required when check_out_time is set",
		})
	}
	if len(errs) > 0 {
		return timesheet.TimesheetResponse{}, errs
	}

	ts.Record.TimesheetStatus = timesheet.ReviewStatusPending
	ts.Record.ReviewedBy = nil
	ts.Record.ReviewedAt = nil
	ts.Record.RejectionReason = nil

	if err := s.attendanceRepo.Update(ctx, ts.Record); err != nil {
		return timesheet.TimesheetResponse{}, fmt.Errorf("failed to update timesheet: %w", err)
	}

	return s.mapTimesheetToResponse(ts), nil
}

// ApproveTimesheet implements timesheet.Service.
func (s *TimesheetServiceImpl) ApproveTimesheet(ctx context.Context, id string) (timesheet.TimesheetResponse, error) {
	claims, err := user.ClaimsFromContext(ctx)
	if err != nil {
		return timesheet.TimesheetResponse{}, err
	}

	ts, err := s.getReviewable(ctx, id, claims)
	if err != nil {
		return timesheet.TimesheetResponse{}, err
	}

	now := s.now().UTC()
	ts.Record.TimesheetStatus = timesheet.ReviewStatusApproved
	ts.Record.ReviewedBy = &claims.UserID
	ts.Record.ReviewedAt = &now
	ts.Record.RejectionReason = nil

	if err := s.attendanceRepo.Update(ctx, ts.Record); err != nil {
		return timesheet.TimesheetResponse{}, fmt.Errorf("failed to approve timesheet: %w", err)
	}

	return s.mapTimesheetToResponse(ts), nil
}

// RejectTimesheet implements timesheet.Service.
func (s *TimesheetServiceImpl) RejectTimesheet(ctx context.Context, req timesheet.RejectTimesheetRequest) (timesheet.TimesheetResponse, error) {
	if err := req.Validate(); err != nil {
		return timesheet.TimesheetResponse{}, err
	}

	claims, err := user.ClaimsFromContext(ctx)
	if err != nil {
		return timesheet.TimesheetResponse{}, err
	}

	ts, err := s.getReviewable(ctx, req.ID, claims)
	if err != nil {
		return timesheet.TimesheetResponse{}, err
	}

	now := s.now().UTC()
	ts.Record.TimesheetStatus = timesheet.ReviewStatusRejected
	ts.Record.ReviewedBy = &claims.UserID
	ts.Record.ReviewedAt = &now
	ts.Record.RejectionReason = &req.Reason

	if err := s.attendanceRepo.Update(ctx, ts.Record); err != nil {
		return timesheet.TimesheetResponse{}, fmt.Errorf("failed to reject timesheet: %w", err)
	}

	return s.mapTimesheetToResponse(ts), nil
}

// Evaluate implements timesheet.Service.
func (s *TimesheetServiceImpl) Evaluate(ctx context.Context, req timesheet.EvaluateRequest) (timesheet.EvaluationResponse, error) {
	if err := req.Validate(); err != nil {
		return timesheet.EvaluationResponse{}, err
	}

	rules := s.rules
	if req.Rules != nil {
		rules = *req.Rules
	}

	record, shift := req.ToDomain()
	eval := s.engine.Evaluate(record, shift, rules)

	return timesheet.EvaluationResponse{
		Status:         string(eval.Status),
		StatusLabel:    eval.Status.Label(),
		ScheduledHours: eval.ScheduledHours,
		ActualHours:    eval.ActualHours,
		Violations:     mapViolations(eval.Violations),
	}, nil
}

func (s *TimesheetServiceImpl) getOwned(ctx context.Context, id string, claims user.Claims) (timesheet.Timesheet, error) {
	ts, err := s.attendanceRepo.GetByID(ctx, id, claims.CompanyID)
	if err != nil {
		if errors.Is(err, timesheet.ErrTimesheetNotFound) {
			return timesheet.Timesheet{}, timesheet.ErrTimesheetNotFound
		}
		return timesheet.Timesheet{}, fmt.Errorf("failed to get timesheet: %w", err)
	}

	if !claims.OwnsAssignment(ts.Record.GuardID) {
		return timesheet.Timesheet{}, timesheet.ErrUnauthorized
	}

	return ts, nil
}

func (s *TimesheetServiceImpl) getReviewable(ctx context.Context, id string, claims user.Claims) (timesheet.Timesheet, error) {
	ts, err := s.getOwned(ctx, id, claims)
	if err != nil {
		return timesheet.Timesheet{}, err
	}

	if ts.Record.TimesheetStatus != timesheet.ReviewStatusPending {
		return timesheet.Timesheet{}, timesheet.ErrTimesheetAlreadyReviewed
	}
	if ts.Record.CheckInTime != nil && ts.Record.CheckOutTime == nil {
		return timesheet.Timesheet{}, timesheet.ErrTimesheetInProgress
	}

	return ts, nil
}

// parseCorrection turns an edited timestamp into a stored instant; an empty
// string clears the field.
func parseCorrection(s string, loc *time.Location) *time.Time {
	if s == "" {
		return nil
	}
	t, ok := validator.ParseDateTimeIn(s, loc)
	if !ok {
		return nil
	}
	t = t.UTC()
	return &t
}

// mapTimesheetToResponse evaluates a record against its shift and renders it
func (s *TimesheetServiceImpl) mapTimesheetToResponse(ts timesheet.Timesheet) timesheet.TimesheetResponse {
	eval := s.engine.Evaluate(ts.Record, ts.Shift, s.rules)

	loc := ts.Shift.Location
	if loc == nil {
		loc = time.UTC
	}

	var guardName string
	if ts.Record.GuardName != nil {
		guardName = *ts.Record.GuardName
	}

	return timesheet.TimesheetResponse{
		ID:               ts.Record.ID,
		ShiftID:          ts.Record.ShiftID,
		GuardID:          ts.Record.GuardID,
		GuardName:        guardName,
		SiteID:           ts.Shift.SiteID,
		SiteName:         ts.Shift.SiteName,
		ClientID:         ts.Shift.ClientID,
		ClientName:       ts.Shift.ClientName,
		Date:             ts.Shift.Date.Format("2006-01-02"),
		ScheduledStart:   ts.Shift.StartTime,
		ScheduledEnd:     ts.Shift.EndTime,
		CheckInTime:      formatInstant(ts.Record.CheckInTime, loc),
		CheckOutTime:     formatInstant(ts.Record.CheckOutTime, loc),
		BreakMinutes:     ts.Record.BreakMinutes,
		AssignmentStatus: string(ts.Record.Status),
		TimesheetStatus:  string(ts.Record.TimesheetStatus),
		Status:           string(eval.Status),
		StatusLabel:      eval.Status.Label(),
		ScheduledHours:   eval.ScheduledHours,
		ActualHours:      eval.ActualHours,
		Violations:       mapViolations(eval.Violations),
		ReviewedBy:       ts.Record.ReviewedBy,
		ReviewedAt:       formatInstant(ts.Record.ReviewedAt, loc),
		RejectionReason:  ts.Record.RejectionReason,
	}
}

func mapViolations(violations []timesheet.Violation) []timesheet.ViolationResponse {
	out := make([]timesheet.ViolationResponse, 0, len(violations))
	for _, v := range violations {
		out = append(out, timesheet.ViolationResponse{
			Kind:    string(v.Kind),
			Message: v.String(),
		})
	}
	return out
}

// formatInstant renders t in the site time zone as ISO8601.
func formatInstant(t *time.Time, loc *time.Location) *string {
	if t == nil {
		return nil
	}
	formatted := t.In(loc).Format(time.RFC3339)
	return &formatted
}
