package timesheet

import "errors"

var (
	// Clock event errors
	ErrAlreadyCheckedIn  = errors.New("guard has already checked in for this shift")
	ErrNotCheckedIn      = errors.New("guard has not checked in yet")
	ErrAlreadyCheckedOut = errors.New("guard has already checked out")
	ErrMarkedNoShow      = errors.New("assignment is marked as no-show")

	// General errors
	ErrTimesheetNotFound        = errors.New("timesheet not found")
	ErrShiftNotFound            = errors.New("shift not found")
	ErrUnauthorized             = errors.New("unauthorized to access this timesheet")
	ErrTimesheetAlreadyReviewed = errors.New("timesheet has already been approved or rejected")
	ErrTimesheetInProgress      = errors.New("timesheet cannot be reviewed while the shift is in progress")
)
