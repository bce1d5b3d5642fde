package http

import (
	"encoding/json"
	"net/http"

	"github.com/cmlabs-hris/guardforce-backend-go/internal/domain/payroll"
	"github.com/cmlabs-hris/guardforce-backend-go/internal/handler/http/response"
)

type PayrollHandler interface {
	Estimate(w http.ResponseWriter, r *http.Request)
}

type payrollHandlerImpl struct {
	payrollService payroll.PayrollService
}

func NewPayrollHandler(payrollService payroll.PayrollService) PayrollHandler {
	return &payrollHandlerImpl{
		payrollService: payrollService,
	}
}

// Estimate implements PayrollHandler.
func (h *payrollHandlerImpl) Estimate(w http.ResponseWriter, r *http.Request) {
	var req payroll.EstimatePayrollRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "Invalid request format", nil)
		return
	}

	if err := req.Validate(); err != nil {
		response.HandleError(w, err)
		return
	}

	result, err := h.payrollService.EstimatePayroll(r.Context(), req)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Success(w, result)
}
