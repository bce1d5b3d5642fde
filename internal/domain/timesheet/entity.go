package timesheet

import (
	"time"

	"github.com/shopspring/decimal"
)

// ShiftSchedule is a planned work window at a client site.
type ShiftSchedule struct {
	ID         string
	CompanyID  string
	Date       time.Time // calendar date, time-of-day ignored
	StartTime  string    // HH:MM wall clock
	EndTime    string    // HH:MM wall clock
	SiteID     string
	ClientID   string
	HourlyRate *decimal.Decimal
	Location   *time.Location // site time zone, nil means UTC
	CreatedAt  time.Time
	UpdatedAt  time.Time

	// Joined fields
	SiteName   *string
	ClientName *string
}

// AssignmentStatus is the stored attendance lifecycle of an assignment.
type AssignmentStatus string

const (
	AssignmentStatusAssigned  AssignmentStatus = "assigned"
	AssignmentStatusCheckedIn AssignmentStatus = "checked-in"
	AssignmentStatusCompleted AssignmentStatus = "completed"
	AssignmentStatusNoShow    AssignmentStatus = "no-show"
)

var AssignmentStatusValues = []string{
	string(AssignmentStatusAssigned),
	string(AssignmentStatusCheckedIn),
	string(AssignmentStatusCompleted),
	string(AssignmentStatusNoShow),
}

// ReviewStatus is the human approval state of a timesheet.
type ReviewStatus string

const (
	ReviewStatusPending  ReviewStatus = "pending"
	ReviewStatusApproved ReviewStatus = "approved"
	ReviewStatusRejected ReviewStatus = "rejected"
)

var ReviewStatusValues = []string{
	string(ReviewStatusPending),
	string(ReviewStatusApproved),
	string(ReviewStatusRejected),
}

// AttendanceRecord is one guard's actual presence against one shift.
type AttendanceRecord struct {
	ID              string
	CompanyID       string
	ShiftID         string
	GuardID         string
	CheckInTime     *time.Time
	CheckOutTime    *time.Time
	BreakMinutes    int
	Status          AssignmentStatus
	TimesheetStatus ReviewStatus
	ReviewedBy      *string
	ReviewedAt      *time.Time
	RejectionReason *string
	CreatedAt       time.Time
	UpdatedAt       time.Time

	// Joined fields
	GuardName *string
}

// Status is the computed display classification of a record.
type Status string

const (
	StatusPending    Status = "pending"
	StatusInProgress Status = "in-progress"
	StatusNoShow     Status = "no-show"
	StatusShort      Status = "short"
	StatusOvertime   Status = "overtime"
	StatusComplete   Status = "complete"
)

var StatusValues = []string{
	string(StatusPending),
	string(StatusInProgress),
	string(StatusNoShow),
	string(StatusShort),
	string(StatusOvertime),
	string(StatusComplete),
}

// Label returns the human readable form shown in timesheet views.
func (s Status) Label() string {
	switch s {
	case StatusPending:
		return "Not Started"
	case StatusInProgress:
		return "In Progress"
	case StatusNoShow:
		return "No Show"
	case StatusShort:
		return "Short Hours"
	case StatusOvertime:
		return "Overtime"
	case StatusComplete:
		return "Complete"
	}
	return string(s)
}

// Evaluation bundles everything the rule engine derives for one record.
type Evaluation struct {
	ScheduledHours float64
	ActualHours    Hours
	Status         Status
	Violations     []Violation
}

// Timesheet is an attendance record paired with its shift.
type Timesheet struct {
	Record AttendanceRecord
	Shift  ShiftSchedule
}
