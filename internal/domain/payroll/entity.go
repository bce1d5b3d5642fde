package payroll

import (
	"time"

	"github.com/shopspring/decimal"
)

// ShiftHours is one completed assignment split into paid hour bands.
type ShiftHours struct {
	AssignmentID   string
	ShiftID        string
	Date           time.Time
	ScheduledHours float64
	ActualHours    float64
	RegularHours   float64 // up to the scheduled length
	OvertimeHours  float64 // beyond the scheduled length
}

// Rates are the pay parameters an estimate was computed with.
type Rates struct {
	HourlyRate         decimal.Decimal
	OvertimeMultiplier decimal.Decimal
	TaxPercent         decimal.Decimal
	NIPercent          decimal.Decimal
}
