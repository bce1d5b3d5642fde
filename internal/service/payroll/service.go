package payroll

import (
	"context"
	"fmt"

	"github.com/cmlabs-hris/guardforce-backend-go/internal/domain/billing"
	"github.com/cmlabs-hris/guardforce-backend-go/internal/domain/payroll"
	"github.com/cmlabs-hris/guardforce-backend-go/internal/domain/timesheet"
	"github.com/cmlabs-hris/guardforce-backend-go/internal/domain/user"
	billingService "github.com/cmlabs-hris/guardforce-backend-go/internal/service/billing"
	timesheetService "github.com/cmlabs-hris/guardforce-backend-go/internal/service/timesheet"
)

type PayrollServiceImpl struct {
	attendanceRepo timesheet.AttendanceRepository
	engine         *timesheetService.RuleEngine
	deriver        *billingService.Deriver
	config         billing.BillingConfig
}

func NewPayrollService(
	attendanceRepo timesheet.AttendanceRepository,
	engine *timesheetService.RuleEngine,
	deriver *billingService.Deriver,
	config billing.BillingConfig,
) payroll.PayrollService {
	if engine == nil {
		engine = timesheetService.NewRuleEngine()
	}
	if deriver == nil {
		deriver = billingService.NewDeriver(engine)
	}
	return &PayrollServiceImpl{
		attendanceRepo: attendanceRepo,
		engine:         engine,
		deriver:        deriver,
		config:         config,
	}
}

// EstimatePayroll implements payroll.PayrollService.
func (s *PayrollServiceImpl) EstimatePayroll(ctx context.Context, req payroll.EstimatePayrollRequest) (payroll.PayrollEstimateResponse, error) {
	if err := req.Validate(); err != nil {
		return payroll.PayrollEstimateResponse{}, err
	}

	claims, err := user.ClaimsFromContext(ctx)
	if err != nil {
		return payroll.PayrollEstimateResponse{}, err
	}
	if !claims.OwnsAssignment(req.GuardID) {
		return payroll.PayrollEstimateResponse{}, user.ErrInsufficientPermissions
	}

	completed := timesheet.AssignmentStatusCompleted
	rows, _, err := s.attendanceRepo.List(ctx, claims.CompanyID, timesheet.TimesheetQuery{
		GuardID:         &req.GuardID,
		StartDate:       &req.StartDate,
		EndDate:         &req.EndDate,
		AssignmentState: &completed,
		SortBy:          "date",
		SortOrder:       "asc",
	})
	if err != nil {
		return payroll.PayrollEstimateResponse{}, fmt.Errorf("failed to load completed shifts: %w", err)
	}

	rates := s.resolveRates(req)

	var guardName *string
	shifts := make([]payroll.ShiftHours, 0, len(rows))
	var regularTotal, overtimeTotal float64
	for _, row := range rows {
		if row.Record.TimesheetStatus == timesheet.ReviewStatusRejected {
			continue
		}
		split, ok := s.splitHours(row)
		if !ok {
			continue
		}
		if guardName == nil {
			guardName = row.Record.GuardName
		}
		regularTotal += split.RegularHours
		overtimeTotal += split.OvertimeHours
		shifts = append(shifts, split)
	}
	regularTotal = timesheet.Round2(regularTotal)
	overtimeTotal = timesheet.Round2(overtimeTotal)

	gross := s.deriver.ComputePayrollGross(billing.PayrollInput{
		RegularHours:       regularTotal,
		OvertimeHours:      overtimeTotal,
		HourlyRate:         rates.HourlyRate,
		OvertimeMultiplier: rates.OvertimeMultiplier,
		TaxPercent:         rates.TaxPercent,
		NIPercent:          rates.NIPercent,
	})

	return payroll.PayrollEstimateResponse{
		GuardID:            req.GuardID,
		GuardName:          guardName,
		StartDate:          req.StartDate,
		EndDate:            req.EndDate,
		ShiftsWorked:       len(shifts),
		RegularHours:       regularTotal,
		OvertimeHours:      overtimeTotal,
		HourlyRate:         rates.HourlyRate.StringFixed(2),
		OvertimeMultiplier: rates.OvertimeMultiplier.String(),
		TaxPercent:         rates.TaxPercent.String(),
		NIPercent:          rates.NIPercent.String(),
		RegularPay:         gross.RegularPay.StringFixed(2),
		OvertimePay:        gross.OvertimePay.StringFixed(2),
		GrossPay:           gross.GrossPay.StringFixed(2),
		Tax:                gross.Tax.StringFixed(2),
		NationalInsurance:  gross.NationalInsurance.StringFixed(2),
		NetPay:             gross.NetPay.StringFixed(2),
		Shifts:             mapShiftHours(shifts),
	}, nil
}

// splitHours rounds worked hours to two decimals, then pays up to the
// scheduled length at the regular rate and the rest as overtime.
func (s *PayrollServiceImpl) splitHours(row timesheet.Timesheet) (payroll.ShiftHours, bool) {
	actual, ok := s.engine.ComputeActualHours(row.Record.CheckInTime, row.Record.CheckOutTime).Value()
	if !ok || actual <= 0 {
		return payroll.ShiftHours{}, false
	}
	actual = timesheet.Round2(actual)
	scheduled := s.engine.ComputeScheduledHours(row.Shift.StartTime, row.Shift.EndTime)

	regular := actual
	overtime := 0.0
	if scheduled > 0 && actual > scheduled {
		regular = scheduled
		overtime = timesheet.Round2(actual - scheduled)
	}

	return payroll.ShiftHours{
		AssignmentID:   row.Record.ID,
		ShiftID:        row.Shift.ID,
		Date:           row.Shift.Date,
		ScheduledHours: timesheet.Round2(scheduled),
		ActualHours:    actual,
		RegularHours:   timesheet.Round2(regular),
		OvertimeHours:  overtime,
	}, true
}

func (s *PayrollServiceImpl) resolveRates(req payroll.EstimatePayrollRequest) payroll.Rates {
	rates := payroll.Rates{
		HourlyRate:         s.config.DefaultHourlyRate,
		OvertimeMultiplier: s.config.OvertimeMultiplier,
		TaxPercent:         s.config.PayrollTaxPercent,
		NIPercent:          s.config.PayrollNIPercent,
	}
	if req.HourlyRate != nil {
		rates.HourlyRate = *req.HourlyRate
	}
	if req.OvertimeMultiplier != nil {
		rates.OvertimeMultiplier = *req.OvertimeMultiplier
	}
	if req.TaxPercent != nil {
		rates.TaxPercent = *req.TaxPercent
	}
	if req.NIPercent != nil {
		rates.NIPercent = *req.NIPercent
	}
	return rates
}

func mapShiftHours(shifts []payroll.ShiftHours) []payroll.PayrollShiftResponse {
	result := make([]payroll.PayrollShiftResponse, 0, len(shifts))
	for _, sh := range shifts {
		result = append(result, payroll.PayrollShiftResponse{
			AssignmentID:   sh.AssignmentID,
			ShiftID:        sh.ShiftID,
			Date:           sh.Date.Format("2006-01-02"),
			ScheduledHours: sh.ScheduledHours,
			ActualHours:    sh.ActualHours,
			RegularHours:   sh.RegularHours,
			OvertimeHours:  sh.OvertimeHours,
		})
	}
	return result
}
