package billing

import (
	"fmt"
	"math"

	"github.com/cmlabs-hris/guardforce-backend-go/internal/domain/billing"
	"github.com/cmlabs-hris/guardforce-backend-go/internal/domain/timesheet"
	timesheetService "github.com/cmlabs-hris/guardforce-backend-go/internal/service/timesheet"
	"github.com/shopspring/decimal"
)

var hundred = decimal.NewFromInt(100)

// Deriver turns worked shifts into invoice line items, totals and payroll
// figures. Like the rule engine it holds no mutable state.
type Deriver struct {
	engine *timesheetService.RuleEngine
}

func NewDeriver(engine *timesheetService.RuleEngine) *Deriver {
	if engine == nil {
		engine = timesheetService.NewRuleEngine()
	}
	return &Deriver{engine: engine}
}

// DeriveLineItems produces one item per (shift, assignment) pair with
// positive worked hours, in shift order then assignment order. Inputs are
// never modified.
func (d *Deriver) DeriveLineItems(
	shifts []timesheet.ShiftSchedule,
	assignmentsByShift map[string][]timesheet.AttendanceRecord,
	defaultRate decimal.Decimal,
) []billing.InvoiceLineItem {
	items := make([]billing.InvoiceLineItem, 0)

	for _, shift := range shifts {
		rate := defaultRate
		if shift.HourlyRate != nil {
			rate = *shift.HourlyRate
		}

		for _, record := range assignmentsByShift[shift.ID] {
			if record.CheckInTime == nil || record.CheckOutTime == nil {
				continue
			}
			hours, ok := d.engine.ComputeActualHours(record.CheckInTime, record.CheckOutTime).Value()
			if !ok || hours <= 0 {
				continue
			}

			quantity := decimal.NewFromFloat(hours).Round(2)
			if !quantity.IsPositive() {
				continue
			}

			items = append(items, billing.InvoiceLineItem{
				ShiftID:      shift.ID,
				AssignmentID: record.ID,
				Description:  describe(record, shift),
				Quantity:     quantity,
				Rate:         rate,
				Amount:       quantity.Mul(rate).Round(2),
				Position:     len(items) + 1,
			})
		}
	}

	return items
}

// AggregateTotals sums the already rounded item amounts and applies tax.
func (d *Deriver) AggregateTotals(items []billing.InvoiceLineItem, taxRatePercent decimal.Decimal) billing.Totals {
	subtotal := decimal.Zero
	for _, item := range items {
		subtotal = subtotal.Add(item.Amount)
	}
	subtotal = subtotal.Round(2)

	taxAmount := subtotal.Mul(taxRatePercent).Div(hundred).Round(2)

	return billing.Totals{
		Subtotal:       subtotal,
		TaxRatePercent: taxRatePercent,
		TaxAmount:      taxAmount,
		Total:          subtotal.Add(taxAmount),
	}
}

// ComputePayrollGross applies pay rates and flat percentage deductions.
// Negative or non-finite hours count as zero.
func (d *Deriver) ComputePayrollGross(in billing.PayrollInput) billing.PayrollGross {
	regularHours := decimal.NewFromFloat(safeHours(in.RegularHours))
	overtimeHours := decimal.NewFromFloat(safeHours(in.OvertimeHours))

	regularPay := regularHours.Mul(in.HourlyRate).Round(2)
	overtimePay := overtimeHours.Mul(in.HourlyRate).Mul(in.OvertimeMultiplier).Round(2)
	grossPay := regularPay.Add(overtimePay)

	tax := grossPay.Mul(in.TaxPercent).Div(hundred).Round(2)
	ni := grossPay.Mul(in.NIPercent).Div(hundred).Round(2)

	return billing.PayrollGross{
		RegularPay:        regularPay,
		OvertimePay:       overtimePay,
		GrossPay:          grossPay,
		Tax:               tax,
		NationalInsurance: ni,
		NetPay:            grossPay.Sub(tax).Sub(ni),
	}
}

func safeHours(h float64) float64 {
	if math.IsNaN(h) || math.IsInf(h, 0) || h < 0 {
		return 0
	}
	return h
}

func describe(record timesheet.AttendanceRecord, shift timesheet.ShiftSchedule) string {
	guard := record.GuardID
	if record.GuardName != nil && *record.GuardName != "" {
		guard = *record.GuardName
	}
	site := shift.SiteID
	if shift.SiteName != nil && *shift.SiteName != "" {
		site = *shift.SiteName
	}
	return fmt.Sprintf("%s – %s – %s", guard, site, shift.Date.Format("2006-01-02"))
}
