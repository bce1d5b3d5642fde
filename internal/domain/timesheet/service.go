package timesheet

import (
	"context"
)

// Service defines business logic for timesheet review and clock events
type Service interface {
	// ListTimesheets retrieves evaluated timesheets with filters
	ListTimesheets(ctx context.Context, filter TimesheetFilter) (ListTimesheetResponse, error)

	// GetTimesheet retrieves a single evaluated timesheet
	GetTimesheet(ctx context.Context, id string) (TimesheetResponse, error)

	// Summary aggregates computed statuses and violations over the filter
	Summary(ctx context.Context, filter TimesheetFilter) (SummaryResponse, error)

	// CheckIn records the guard's arrival
	CheckIn(ctx context.Context, id string) (TimesheetResponse, error)

	// CheckOut records the guard's departure and break minutes
	CheckOut(ctx context.Context, req CheckOutRequest) (TimesheetResponse, error)

	// UpdateTimesheet lets a manager fix clock data
	UpdateTimesheet(ctx context.Context, req UpdateTimesheetRequest) (TimesheetResponse, error)

	ApproveTimesheet(ctx context.Context, id string) (TimesheetResponse, error)
	RejectTimesheet(ctx context.Context, req RejectTimesheetRequest) (TimesheetResponse, error)

	// Evaluate runs the rule engine on unsaved data
	Evaluate(ctx context.Context, req EvaluateRequest) (EvaluationResponse, error)

	// Rules returns the active rule configuration
	Rules() RuleConfig
}
