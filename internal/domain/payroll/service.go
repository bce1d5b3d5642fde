package payroll

import "context"

type PayrollService interface {
	// EstimatePayroll prices a guard's completed shifts over a date range
	EstimatePayroll(ctx context.Context, req EstimatePayrollRequest) (PayrollEstimateResponse, error)
}
