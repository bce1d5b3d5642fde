package timesheet

import (
	"context"
	"sort"
	"sync"
	"testing"
	"time"

	"github.com/cmlabs-hris/guardforce-backend-go/internal/domain/timesheet"
	"github.com/cmlabs-hris/guardforce-backend-go/internal/pkg/validator"
	"github.com/go-chi/jwtauth/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testCompanyID = "company-1"

var testTokenAuth = jwtauth.New("HS256", []byte("test-secret-key-for-jwt"), nil)

// memoryAttendanceRepo is an in-memory timesheet.AttendanceRepository.
type memoryAttendanceRepo struct {
	mu      sync.Mutex
	records map[string]timesheet.AttendanceRecord
	shifts  map[string]timesheet.ShiftSchedule
	updates int
}

func newMemoryAttendanceRepo() *memoryAttendanceRepo {
	return &memoryAttendanceRepo{
		records: map[string]timesheet.AttendanceRecord{},
		shifts:  map[string]timesheet.ShiftSchedule{},
	}
}

func (m *memoryAttendanceRepo) add(shift timesheet.ShiftSchedule, record timesheet.AttendanceRecord) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if shift.CompanyID == "" {
		shift.CompanyID = testCompanyID
	}
	if record.CompanyID == "" {
		record.CompanyID = testCompanyID
	}
	if record.TimesheetStatus == "" {
		record.TimesheetStatus = timesheet.ReviewStatusPending
	}
	if record.Status == "" {
		record.Status = timesheet.AssignmentStatusAssigned
	}
	record.ShiftID = shift.ID
	m.shifts[shift.ID] = shift
	m.records[record.ID] = record
}

func (m *memoryAttendanceRepo) GetByID(ctx context.Context, id string, companyID string) (timesheet.Timesheet, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	record, ok := m.records[id]
	if !ok || record.CompanyID != companyID {
		return timesheet.Timesheet{}, timesheet.ErrTimesheetNotFound
	}
	return timesheet.Timesheet{Record: record, Shift: m.shifts[record.ShiftID]}, nil
}

func (m *memoryAttendanceRepo) List(ctx context.Context, companyID string, query timesheet.TimesheetQuery) ([]timesheet.Timesheet, int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	var out []timesheet.Timesheet
	for _, record := range m.records {
		if record.CompanyID != companyID {
			continue
		}
		if query.GuardID != nil && record.GuardID != *query.GuardID {
			continue
		}
		if query.TimesheetStatus != nil && string(record.TimesheetStatus) != *query.TimesheetStatus {
			continue
		}
		out = append(out, timesheet.Timesheet{Record: record, Shift: m.shifts[record.ShiftID]})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Record.ID < out[j].Record.ID })

	total := int64(len(out))
	if query.Limit > 0 {
		if query.Offset >= len(out) {
			return []timesheet.Timesheet{}, total, nil
		}
		out = out[query.Offset:min(query.Offset+query.Limit, len(out))]
	}
	return out, total, nil
}

func (m *memoryAttendanceRepo) ListByShiftIDs(ctx context.Context, shiftIDs []string, companyID string) ([]timesheet.AttendanceRecord, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []timesheet.AttendanceRecord
	for _, id := range shiftIDs {
		for _, record := range m.records {
			if record.ShiftID == id && record.CompanyID == companyID {
				out = append(out, record)
			}
		}
	}
	return out, nil
}

func (m *memoryAttendanceRepo) Update(ctx context.Context, record timesheet.AttendanceRecord) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.records[record.ID]; !ok {
		return timesheet.ErrTimesheetNotFound
	}
	m.records[record.ID] = record
	m.updates++
	return nil
}

func (m *memoryAttendanceRepo) MarkNoShows(ctx context.Context, cutoff time.Time) (int64, error) {
	return 0, nil
}

func (m *memoryAttendanceRepo) get(id string) timesheet.AttendanceRecord {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.records[id]
}

func managerCtx(t *testing.T) context.Context {
	t.Helper()
	return tokenCtx(t, map[string]interface{}{
		"user_id":    "manager-1",
		"company_id": testCompanyID,
		"role":       "manager",
		"type":       "access",
	})
}

func guardCtx(t *testing.T, guardID string) context.Context {
	t.Helper()
	return tokenCtx(t, map[string]interface{}{
		"user_id":    "user-" + guardID,
		"company_id": testCompanyID,
		"role":       "guard",
		"guard_id":   guardID,
		"type":       "access",
	})
}

func tokenCtx(t *testing.T, claims map[string]interface{}) context.Context {
	t.Helper()
	token, _, err := testTokenAuth.Encode(claims)
	require.NoError(t, err)
	return jwtauth.NewContext(context.Background(), token, nil)
}

func shiftOn(id, start, end string) timesheet.ShiftSchedule {
	return timesheet.ShiftSchedule{
		ID:        id,
		Date:      time.Date(2024, 3, 4, 0, 0, 0, 0, time.UTC),
		StartTime: start,
		EndTime:   end,
		SiteID:    "site-1",
		ClientID:  "client-1",
	}
}

func newTestService(repo *memoryAttendanceRepo, now time.Time) *TimesheetServiceImpl {
	svc := NewTimesheetService(repo, NewRuleEngine(), timesheet.DefaultRuleConfig()).(*TimesheetServiceImpl)
	svc.now = func() time.Time { return now }
	return svc
}

func TestTimesheetService_CheckInAndOut(t *testing.T) {
	repo := newMemoryAttendanceRepo()
	repo.add(shiftOn("shift-1", "09:00", "17:00"), timesheet.AttendanceRecord{ID: "a-1", GuardID: "guard-1"})
	svc := newTestService(repo, time.Date(2024, 3, 4, 9, 7, 0, 0, time.UTC))
	ctx := guardCtx(t, "guard-1")

	resp, err := svc.CheckIn(ctx, "a-1")
	require.NoError(t, err)
	assert.Equal(t, "in-progress", resp.Status)
	assert.Equal(t, "checked-in", resp.AssignmentStatus)
	require.Len(t, resp.Violations, 1)
	assert.Equal(t, "Late by 7m", resp.Violations[0].Message)
	assert.False(t, resp.ActualHours.Available())

	_, err = svc.CheckIn(ctx, "a-1")
	assert.ErrorIs(t, err, timesheet.ErrAlreadyCheckedIn)

	svc.now = func() time.Time { return time.Date(2024, 3, 4, 17, 2, 0, 0, time.UTC) }
	breakMinutes := 30
	resp, err = svc.CheckOut(ctx, timesheet.CheckOutRequest{ID: "a-1", BreakMinutes: &breakMinutes})
	require.NoError(t, err)
	assert.Equal(t, "complete", resp.Status)
	assert.Equal(t, "Complete", resp.StatusLabel)
	assert.Equal(t, 7.92, resp.ActualHours.Rounded())
	assert.Equal(t, 30, resp.BreakMinutes)

	stored := repo.get("a-1")
	assert.Equal(t, timesheet.AssignmentStatusCompleted, stored.Status)
	require.NotNil(t, stored.CheckOutTime)

	_, err = svc.CheckOut(ctx, timesheet.CheckOutRequest{ID: "a-1"})
	assert.ErrorIs(t, err, timesheet.ErrAlreadyCheckedOut)
}

func TestTimesheetService_CheckIn_Errors(t *testing.T) {
	repo := newMemoryAttendanceRepo()
	repo.add(shiftOn("shift-1", "09:00", "17:00"), timesheet.AttendanceRecord{ID: "a-1", GuardID: "guard-1"})
	repo.add(shiftOn("shift-2", "09:00", "17:00"), timesheet.AttendanceRecord{ID: "a-2", GuardID: "guard-1", Status: timesheet.AssignmentStatusNoShow})
	svc := newTestService(repo, time.Date(2024, 3, 4, 9, 0, 0, 0, time.UTC))

	_, err := svc.CheckIn(guardCtx(t, "guard-2"), "a-1")
	assert.ErrorIs(t, err, timesheet.ErrUnauthorized)

	_, err = svc.CheckIn(guardCtx(t, "guard-1"), "a-2")
	assert.ErrorIs(t, err, timesheet.ErrMarkedNoShow)

	_, err = svc.CheckIn(guardCtx(t, "guard-1"), "missing")
	assert.ErrorIs(t, err, timesheet.ErrTimesheetNotFound)

	_, err = svc.CheckOut(guardCtx(t, "guard-1"), timesheet.CheckOutRequest{ID: "a-1"})
	assert.ErrorIs(t, err, timesheet.ErrNotCheckedIn)

	negative := -5
	_, err = svc.CheckOut(guardCtx(t, "guard-1"), timesheet.CheckOutRequest{ID: "a-1", BreakMinutes: &negative})
	var verrs validator.ValidationErrors
	assert.ErrorAs(t, err, &verrs)

	// a manager may clock in on a guard's behalf
	_, err = svc.CheckIn(managerCtx(t), "a-1")
	assert.NoError(t, err)

	assert.Equal(t, 1, repo.updates)
}

func TestTimesheetService_UpdateTimesheet(t *testing.T) {
	london, err := time.LoadLocation("Europe/London")
	if err != nil {
		t.Skip("tzdata not available")
	}

	repo := newMemoryAttendanceRepo()
	shift := shiftOn("shift-1", "09:00", "17:00")
	shift.Date = time.Date(2024, 7, 1, 0, 0, 0, 0, time.UTC)
	shift.Location = london
	reviewedAt := time.Date(2024, 7, 2, 8, 0, 0, 0, time.UTC)
	reviewer := "manager-0"
	repo.add(shift, timesheet.AttendanceRecord{
		ID:              "a-1",
		GuardID:         "guard-1",
		TimesheetStatus: timesheet.ReviewStatusApproved,
		ReviewedBy:      &reviewer,
		ReviewedAt:      &reviewedAt,
	})
	svc := newTestService(repo, time.Date(2024, 7, 2, 9, 0, 0, 0, time.UTC))

	in := "2024-07-01 09:00"
	out := "2024-07-01T17:00:00+01:00"
	breakMinutes := 45
	status := "completed"
	resp, err := svc.UpdateTimesheet(managerCtx(t), timesheet.UpdateTimesheetRequest{
		ID:           "a-1",
		CheckInTime:  &in,
		CheckOutTime: &out,
		BreakMinutes: &breakMinutes,
		Status:       &status,
	})

	require.NoError(t, err)
	assert.Equal(t, "complete", resp.Status)
	assert.Empty(t, resp.Violations)
	assert.Equal(t, "pending", resp.TimesheetStatus)
	require.NotNil(t, resp.CheckInTime)
	assert.Equal(t, "2024-07-01T09:00:00+01:00", *resp.CheckInTime)

	stored := repo.get("a-1")
	require.NotNil(t, stored.CheckInTime)
	assert.True(t, stored.CheckInTime.Equal(time.Date(2024, 7, 1, 8, 0, 0, 0, time.UTC)))
	assert.Nil(t, stored.ReviewedBy)
	assert.Equal(t, 45, stored.BreakMinutes)
}

func TestTimesheetService_UpdateTimesheet_RejectsInvertedTimes(t *testing.T) {
	repo := newMemoryAttendanceRepo()
	repo.add(shiftOn("shift-1", "09:00", "17:00"), timesheet.AttendanceRecord{ID: "a-1", GuardID: "guard-1"})
	svc := newTestService(repo, time.Now())

	in := "2024-03-04T17:00:00Z"
	out := "2024-03-04T09:00:00Z"
	_, err := svc.UpdateTimesheet(managerCtx(t), timesheet.UpdateTimesheetRequest{ID: "a-1", CheckInTime: &in, CheckOutTime: &out})

	var verrs validator.ValidationErrors
	require.ErrorAs(t, err, &verrs)
	assert.Equal(t, "check_out_time", verrs[0].Field)
	assert.Equal(t, 0, repo.updates)
}

func TestTimesheetService_Review(t *testing.T) {
	repo := newMemoryAttendanceRepo()
	repo.add(shiftOn("shift-1", "09:00", "17:00"), timesheet.AttendanceRecord{
		ID: "done", GuardID: "guard-1",
		CheckInTime:  timePtr(time.Date(2024, 3, 4, 9, 0, 0, 0, time.UTC)),
		CheckOutTime: timePtr(time.Date(2024, 3, 4, 17, 0, 0, 0, time.UTC)),
		BreakMinutes: 30,
		Status:       timesheet.AssignmentStatusCompleted,
	})
	repo.add(shiftOn("shift-2", "09:00", "17:00"), timesheet.AttendanceRecord{
		ID: "working", GuardID: "guard-2",
		CheckInTime: timePtr(time.Date(2024, 3, 4, 9, 0, 0, 0, time.UTC)),
		Status:      timesheet.AssignmentStatusCheckedIn,
	})
	repo.add(shiftOn("shift-3", "09:00", "17:00"), timesheet.AttendanceRecord{ID: "absent", GuardID: "guard-3", Status: timesheet.AssignmentStatusNoShow})
	svc := newTestService(repo, time.Date(2024, 3, 5, 8, 0, 0, 0, time.UTC))
	ctx := managerCtx(t)

	resp, err := svc.ApproveTimesheet(ctx, "done")
	require.NoError(t, err)
	assert.Equal(t, "approved", resp.TimesheetStatus)
	require.NotNil(t, resp.ReviewedBy)
	assert.Equal(t, "manager-1", *resp.ReviewedBy)

	_, err = svc.ApproveTimesheet(ctx, "done")
	assert.ErrorIs(t, err, timesheet.ErrTimesheetAlreadyReviewed)

	_, err = svc.ApproveTimesheet(ctx, "working")
	assert.ErrorIs(t, err, timesheet.ErrTimesheetInProgress)

	_, err = svc.RejectTimesheet(ctx, timesheet.RejectTimesheetRequest{ID: "absent"})
	var verrs validator.ValidationErrors
	assert.ErrorAs(t, err, &verrs)

	resp, err = svc.RejectTimesheet(ctx, timesheet.RejectTimesheetRequest{ID: "absent", Reason: "confirmed absence"})
	require.NoError(t, err)
	assert.Equal(t, "rejected", resp.TimesheetStatus)
	require.NotNil(t, resp.RejectionReason)
	assert.Equal(t, "confirmed absence", *resp.RejectionReason)
}

func seedMixedDay(repo *memoryAttendanceRepo) {
	day := func(h, m int) *time.Time { return timePtr(time.Date(2024, 3, 4, h, m, 0, 0, time.UTC)) }

	repo.add(shiftOn("s-1", "09:00", "17:00"), timesheet.AttendanceRecord{ID: "a-1", GuardID: "guard-1", CheckInTime: day(9, 7), CheckOutTime: day(17, 2), BreakMinutes: 30})
	repo.add(shiftOn("s-2", "08:00", "16:00"), timesheet.AttendanceRecord{ID: "a-2", GuardID: "guard-2", CheckInTime: day(8, 0), CheckOutTime: day(18, 30)})
	repo.add(shiftOn("s-3", "09:00", "17:00"), timesheet.AttendanceRecord{ID: "a-3", GuardID: "guard-1", CheckInTime: day(9, 0)})
	repo.add(shiftOn("s-4", "09:00", "17:00"), timesheet.AttendanceRecord{ID: "a-4", GuardID: "guard-3"})
	repo.add(shiftOn("s-5", "09:00", "17:00"), timesheet.AttendanceRecord{ID: "a-5", GuardID: "guard-2", CheckInTime: day(9, 0), CheckOutTime: day(15, 0), BreakMinutes: 30})
	repo.add(shiftOn("s-6", "09:00", "17:00"), timesheet.AttendanceRecord{ID: "a-6", GuardID: "guard-3", CheckInTime: day(17, 0), CheckOutTime: day(9, 0)})
}

func TestTimesheetService_ListTimesheets(t *testing.T) {
	repo := newMemoryAttendanceRepo()
	seedMixedDay(repo)
	svc := newTestService(repo, time.Now())

	t.Run("paged in storage", func(t *testing.T) {
		resp, err := svc.ListTimesheets(managerCtx(t), timesheet.TimesheetFilter{Page: 2, Limit: 4})
		require.NoError(t, err)
		assert.Equal(t, int64(6), resp.TotalCount)
		assert.Equal(t, 2, resp.TotalPages)
		assert.Equal(t, "5-6 of 6", resp.Showing)
		require.Len(t, resp.Timesheets, 2)
		assert.Equal(t, "a-5", resp.Timesheets[0].ID)
		assert.Equal(t, "short", resp.Timesheets[0].Status)
	})

	t.Run("computed status filter", func(t *testing.T) {
		status := "pending"
		resp, err := svc.ListTimesheets(managerCtx(t), timesheet.TimesheetFilter{Status: &status, Limit: 1})
		require.NoError(t, err)
		// not started and inverted times both classify as pending
		assert.Equal(t, int64(2), resp.TotalCount)
		assert.Equal(t, 2, resp.TotalPages)
		require.Len(t, resp.Timesheets, 1)
		assert.Equal(t, "a-4", resp.Timesheets[0].ID)
		assert.Equal(t, "Not Started", resp.Timesheets[0].StatusLabel)
	})

	t.Run("guard sees own only", func(t *testing.T) {
		resp, err := svc.ListTimesheets(guardCtx(t, "guard-1"), timesheet.TimesheetFilter{})
		require.NoError(t, err)
		assert.Equal(t, int64(2), resp.TotalCount)
		for _, ts := range resp.Timesheets {
			assert.Equal(t, "guard-1", ts.GuardID)
		}
	})

	t.Run("empty page", func(t *testing.T) {
		status := "overtime"
		resp, err := svc.ListTimesheets(managerCtx(t), timesheet.TimesheetFilter{Status: &status, Page: 3})
		require.NoError(t, err)
		assert.Empty(t, resp.Timesheets)
		assert.Equal(t, int64(1), resp.TotalCount)
	})

	t.Run("invalid filter", func(t *testing.T) {
		status := "sleeping"
		_, err := svc.ListTimesheets(managerCtx(t), timesheet.TimesheetFilter{Status: &status})
		var verrs validator.ValidationErrors
		assert.ErrorAs(t, err, &verrs)
	})
}

func TestTimesheetService_Summary(t *testing.T) {
	repo := newMemoryAttendanceRepo()
	seedMixedDay(repo)
	svc := newTestService(repo, time.Now())

	summary, err := svc.Summary(managerCtx(t), timesheet.TimesheetFilter{})

	require.NoError(t, err)
	assert.Equal(t, 6, summary.TotalRecords)
	assert.Equal(t, map[string]int{
		"pending":     2,
		"in-progress": 1,
		"no-show":     0,
		"short":       1,
		"overtime":    1,
		"complete":    1,
	}, summary.ByStatus)
	assert.Equal(t, 2, summary.ByViolation["late"])
	assert.Equal(t, 2, summary.ByViolation["early_leave"])
	assert.Equal(t, 1, summary.ByViolation["overtime"])
	assert.Equal(t, 1, summary.ByViolation["break"])
	assert.Equal(t, 48.0, summary.TotalScheduledHours)
	// 7.92 + 10.5 + 6
	assert.Equal(t, 24.42, summary.TotalActualHours)
	assert.Equal(t, 1, summary.UnavailableHours)
}

func TestTimesheetService_Evaluate(t *testing.T) {
	svc := newTestService(newMemoryAttendanceRepo(), time.Now())
	in := "2024-03-04T08:00:00Z"
	out := "2024-03-04T18:30:00Z"
	rules := timesheet.DefaultRuleConfig()
	rules.OvertimeThresholdHours = 8

	resp, err := svc.Evaluate(context.Background(), timesheet.EvaluateRequest{
		Shift:  timesheet.EvaluateShift{Date: "2024-03-04", StartTime: "08:00", EndTime: "16:00"},
		Record: timesheet.EvaluateRecord{CheckInTime: &in, CheckOutTime: &out},
		Rules:  &rules,
	})

	require.NoError(t, err)
	assert.Equal(t, "overtime", resp.Status)
	assert.Equal(t, 8.0, resp.ScheduledHours)
	assert.Equal(t, 10.5, resp.ActualHours.Rounded())
	require.Len(t, resp.Violations, 2)
	assert.Equal(t, "Overtime 2.50h", resp.Violations[0].Message)
	assert.Equal(t, "Break short/missing (0/30m)", resp.Violations[1].Message)
}

func TestTimesheetService_Evaluate_MalformedTimesDegrade(t *testing.T) {
	svc := newTestService(newMemoryAttendanceRepo(), time.Now())
	in := "not a time"

	resp, err := svc.Evaluate(context.Background(), timesheet.EvaluateRequest{
		Shift:  timesheet.EvaluateShift{Date: "2024-03-04", StartTime: "25:00", EndTime: "16:00"},
		Record: timesheet.EvaluateRecord{CheckInTime: &in},
	})

	require.NoError(t, err)
	assert.Equal(t, "pending", resp.Status)
	assert.Equal(t, 0.0, resp.ScheduledHours)
	assert.Empty(t, resp.Violations)
}

func TestTimesheetService_Evaluate_InvalidRules(t *testing.T) {
	svc := newTestService(newMemoryAttendanceRepo(), time.Now())
	rules := timesheet.DefaultRuleConfig()
	rules.ShortHoursRatio = 2

	_, err := svc.Evaluate(context.Background(), timesheet.EvaluateRequest{Rules: &rules})

	var verrs validator.ValidationErrors
	require.ErrorAs(t, err, &verrs)
	assert.Equal(t, "rules.short_hours_ratio", verrs[0].Field)
}

func timePtr(t time.Time) *time.Time {
	return &t
}
