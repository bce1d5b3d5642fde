package payroll

import (
	"github.com/cmlabs-hris/guardforce-backend-go/internal/pkg/validator"
	"github.com/shopspring/decimal"
)

// MaxPeriodDays bounds a single estimate.
const MaxPeriodDays = 62

// ========== ESTIMATE DTOs ==========

type EstimatePayrollRequest struct {
	GuardID   string `json:"guard_id"`
	StartDate string `json:"start_date"` // YYYY-MM-DD
	EndDate   string `json:"end_date"`   // YYYY-MM-DD, inclusive

	// Overrides, default to the billing configuration
	HourlyRate         *decimal.Decimal `json:"hourly_rate,omitempty"`
	OvertimeMultiplier *decimal.Decimal `json:"overtime_multiplier,omitempty"`
	TaxPercent         *decimal.Decimal `json:"tax_percent,omitempty"`
	NIPercent          *decimal.Decimal `json:"ni_percent,omitempty"`
}

func (r *EstimatePayrollRequest) Validate() error {
	var errs validator.ValidationErrors

	if validator.IsEmpty(r.GuardID) {
		errs = append(errs, validator.ValidationError{Field: "guard_id", Message: "guard_id is required"})
	}

	start, startOK := validator.IsValidDate(r.StartDate)
	if !startOK {
		errs = append(errs, validator.ValidationError{Field: "start_date", Message: "start_date must be in YYYY-MM-DD format"})
	}
	end, endOK := validator.IsValidDate(r.EndDate)
	if !endOK {
		errs = append(errs, validator.ValidationError{Field: "end_date", Message: "end_date must be in YYYY-MM-DD format"})
	}
	if startOK && endOK {
		if end.Before(start) {
			errs = append(errs, validator.ValidationError{Field: "end_date", Message: "end_date must not be before start_date"})
		} else if end.Sub(start).Hours()/24 >= MaxPeriodDays {
			errs = append(errs, validator.ValidationError{Field: "end_date", Message: "period must not exceed 62 days"})
		}
	}

	if r.HourlyRate != nil && r.HourlyRate.IsNegative() {
		errs = append(errs, validator.ValidationError{Field: "hourly_rate", Message: "must be non-negative"})
	}
	if r.OvertimeMultiplier != nil && r.OvertimeMultiplier.LessThan(decimal.NewFromInt(1)) {
		errs = append(errs, validator.ValidationError{Field: "overtime_multiplier", Message: "must be at least 1"})
	}
	if r.TaxPercent != nil && !validPercent(*r.TaxPercent) {
		errs = append(errs, validator.ValidationError{Field: "tax_percent", Message: "must be between 0 and 100"})
	}
	if r.NIPercent != nil && !validPercent(*r.NIPercent) {
		errs = append(errs, validator.ValidationError{Field: "ni_percent", Message: "must be between 0 and 100"})
	}

	if len(errs) > 0 {
		return errs
	}
	return nil
}

func validPercent(d decimal.Decimal) bool {
	return !d.IsNegative() && d.LessThanOrEqual(decimal.NewFromInt(100))
}

type PayrollShiftResponse struct {
	AssignmentID   string  `json:"assignment_id"`
	ShiftID        string  `json:"shift_id"`
	Date           string  `json:"date"`
	ScheduledHours float64 `json:"scheduled_hours"`
	ActualHours    float64 `json:"actual_hours"`
	RegularHours   float64 `json:"regular_hours"`
	OvertimeHours  float64 `json:"overtime_hours"`
}

type PayrollEstimateResponse struct {
	GuardID   string  `json:"guard_id"`
	GuardName *string `json:"guard_name,omitempty"`
	StartDate string  `json:"start_date"`
	EndDate   string  `json:"end_date"`

	ShiftsWorked  int     `json:"shifts_worked"`
	RegularHours  float64 `json:"regular_hours"`
	OvertimeHours float64 `json:"overtime_hours"`

	HourlyRate         string `json:"hourly_rate"`
	OvertimeMultiplier string `json:"overtime_multiplier"`
	TaxPercent         string `json:"tax_percent"`
	NIPercent          string `json:"ni_percent"`

	RegularPay        string `json:"regular_pay"`
	OvertimePay       string `json:"overtime_pay"`
	GrossPay          string `json:"gross_pay"`
	Tax               string `json:"tax"`
	NationalInsurance string `json:"national_insurance"`
	NetPay            string `json:"net_pay"`

	Shifts []PayrollShiftResponse `json:"shifts"`
}
