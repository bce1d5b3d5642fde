package timesheet

import (
	"math"
	"time"

	"github.com/cmlabs-hris/guardforce-backend-go/internal/domain/timesheet"
	"github.com/cmlabs-hris/guardforce-backend-go/internal/pkg/validator"
)

// RuleEngine classifies attendance records against their shifts. It holds no
// state; configuration is passed on every call so concurrent callers never
// share mutable data.
type RuleEngine struct {
}

func NewRuleEngine() *RuleEngine {
	return &RuleEngine{}
}

// ComputeScheduledHours returns the wall-clock length of a shift in hours.
// Missing or unparsable times yield 0. An end time earlier than the start
// time is an overnight shift and rolls over midnight.
func (e *RuleEngine) ComputeScheduledHours(startTime, endTime string) float64 {
	startMin, ok := clockMinutes(startTime)
	if !ok {
		return 0
	}
	endMin, ok := clockMinutes(endTime)
	if !ok {
		return 0
	}

	diff := endMin - startMin
	if diff < 0 {
		diff += 24 * 60
	}
	return float64(diff) / 60
}

// ComputeActualHours returns worked hours at full precision, or unavailable
// when either timestamp is missing or check-out precedes check-in.
func (e *RuleEngine) ComputeActualHours(checkIn, checkOut *time.Time) timesheet.Hours {
	if checkIn == nil || checkOut == nil || checkIn.IsZero() || checkOut.IsZero() {
		return timesheet.UnavailableHours()
	}
	if checkOut.Before(*checkIn) {
		return timesheet.UnavailableHours()
	}
	return timesheet.HoursOf(checkOut.Sub(*checkIn).Hours())
}

// DetectViolations checks lateness, early departure, overtime and break
// rules, in that order. A rule whose inputs are absent is skipped.
func (e *RuleEngine) DetectViolations(record timesheet.AttendanceRecord, schedule timesheet.ShiftSchedule, cfg timesheet.RuleConfig) []timesheet.Violation {
	violations := make([]timesheet.Violation, 0)

	scheduledStart, scheduledEnd, hasWindow := e.scheduledWindow(schedule)

	if record.CheckInTime != nil && hasWindow {
		lateMinutes := int(math.Floor(record.CheckInTime.Sub(scheduledStart).Minutes()))
		if lateMinutes > cfg.LatenessGraceMinutes {
			violations = append(violations, timesheet.Violation{
				Kind:    timesheet.ViolationLate,
				Minutes: lateMinutes,
			})
		}
	}

	if record.CheckOutTime != nil && hasWindow {
		earlyMinutes := int(math.Floor(scheduledEnd.Sub(*record.CheckOutTime).Minutes()))
		if earlyMinutes > cfg.EarlyGraceMinutes {
			violations = append(violations, timesheet.Violation{
				Kind:    timesheet.ViolationEarlyLeave,
				Minutes: earlyMinutes,
			})
		}
	}

	actualHours, ok := e.ComputeActualHours(record.CheckInTime, record.CheckOutTime).Value()
	if !ok {
		return violations
	}
	scheduledHours, hasSchedule := e.scheduledHours(schedule)

	if hasSchedule && (actualHours > scheduledHours+cfg.OvertimeSlackHours || actualHours > cfg.OvertimeThresholdHours) {
		extra := actualHours - scheduledHours
		// Only the absolute threshold fired on a shift scheduled longer than it.
		if extra <= 0 {
			extra = actualHours - cfg.OvertimeThresholdHours
		}
		violations = append(violations, timesheet.Violation{
			Kind:  timesheet.ViolationOvertime,
			Hours: timesheet.Round2(extra),
		})
	}

	if actualHours >= cfg.BreakMinHours && record.BreakMinutes < cfg.BreakMinutesRequired {
		violations = append(violations, timesheet.Violation{
			Kind:          timesheet.ViolationBreak,
			BreakTaken:    record.BreakMinutes,
			BreakRequired: cfg.BreakMinutesRequired,
		})
	}

	return violations
}

// ClassifyStatus derives the display status from current field values.
// Rules are evaluated top-down and the first match wins.
func (e *RuleEngine) ClassifyStatus(record timesheet.AttendanceRecord, schedule timesheet.ShiftSchedule, cfg timesheet.RuleConfig) timesheet.Status {
	if record.CheckInTime == nil {
		return timesheet.StatusPending
	}
	if record.CheckOutTime == nil {
		return timesheet.StatusInProgress
	}
	if record.Status == timesheet.AssignmentStatusNoShow {
		return timesheet.StatusNoShow
	}

	actualHours, ok := e.ComputeActualHours(record.CheckInTime, record.CheckOutTime).Value()
	if !ok {
		// needs manual correction, not a status judgement
		return timesheet.StatusPending
	}

	scheduledHours := e.ComputeScheduledHours(schedule.StartTime, schedule.EndTime)
	if scheduledHours <= 0 {
		return timesheet.StatusComplete
	}

	shortRatio := cfg.ShortHoursRatio
	if shortRatio <= 0 {
		shortRatio = timesheet.DefaultShortHoursRatio
	}
	overtimeRatio := cfg.OvertimeHoursRatio
	if overtimeRatio <= 0 {
		overtimeRatio = timesheet.DefaultOvertimeHoursRatio
	}

	if actualHours < scheduledHours*shortRatio {
		return timesheet.StatusShort
	}
	if actualHours > scheduledHours*overtimeRatio {
		return timesheet.StatusOvertime
	}
	return timesheet.StatusComplete
}

// Evaluate runs every rule for one record.
func (e *RuleEngine) Evaluate(record timesheet.AttendanceRecord, schedule timesheet.ShiftSchedule, cfg timesheet.RuleConfig) timesheet.Evaluation {
	return timesheet.Evaluation{
		ScheduledHours: e.ComputeScheduledHours(schedule.StartTime, schedule.EndTime),
		ActualHours:    e.ComputeActualHours(record.CheckInTime, record.CheckOutTime),
		Status:         e.ClassifyStatus(record, schedule, cfg),
		Violations:     e.DetectViolations(record, schedule, cfg),
	}
}

// scheduledHours reports false when either clock time is missing or
// unparsable, so rules measured against the schedule can be skipped.
func (e *RuleEngine) scheduledHours(schedule timesheet.ShiftSchedule) (float64, bool) {
	if _, ok := clockMinutes(schedule.StartTime); !ok {
		return 0, false
	}
	if _, ok := clockMinutes(schedule.EndTime); !ok {
		return 0, false
	}
	return e.ComputeScheduledHours(schedule.StartTime, schedule.EndTime), true
}

// ScheduledEnd returns the absolute end of a shift, used by the no-show job.
func (e *RuleEngine) ScheduledEnd(schedule timesheet.ShiftSchedule) (time.Time, bool) {
	_, end, ok := e.scheduledWindow(schedule)
	return end, ok
}

// scheduledWindow anchors the shift's wall-clock times on its date in the
// site time zone.
func (e *RuleEngine) scheduledWindow(schedule timesheet.ShiftSchedule) (time.Time, time.Time, bool) {
	if schedule.Date.IsZero() {
		return time.Time{}, time.Time{}, false
	}
	startMin, ok := clockMinutes(schedule.StartTime)
	if !ok {
		return time.Time{}, time.Time{}, false
	}
	if _, ok := clockMinutes(schedule.EndTime); !ok {
		return time.Time{}, time.Time{}, false
	}

	loc := schedule.Location
	if loc == nil {
		loc = time.UTC
	}

	start := time.Date(
		schedule.Date.Year(), schedule.Date.Month(), schedule.Date.Day(),
		startMin/60, startMin%60, 0, 0,
		loc,
	)
	hours := e.ComputeScheduledHours(schedule.StartTime, schedule.EndTime)
	end := start.Add(time.Duration(hours * float64(time.Hour)))
	return start, end, true
}

func clockMinutes(s string) (int, bool) {
	t, ok := validator.IsValidClockTime(s)
	if !ok {
		return 0, false
	}
	return t.Hour()*60 + t.Minute(), true
}
