package response

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/cmlabs-hris/guardforce-backend-go/internal/domain/billing"
	"github.com/cmlabs-hris/guardforce-backend-go/internal/domain/timesheet"
	"github.com/cmlabs-hris/guardforce-backend-go/internal/domain/user"
	"github.com/cmlabs-hris/guardforce-backend-go/internal/pkg/validator"
)

// HandleError maps domain errors to HTTP responses
func HandleError(w http.ResponseWriter, err error) {
	// Check if it's a validation error
	var validationErrs validator.ValidationErrors
	if errors.As(err, &validationErrs) {
		ValidationError(w, validationErrs.ToMap())
		return
	}

	switch {
	// User domain errors
	case errors.Is(err, user.ErrInvalidToken),
		errors.Is(err, user.ErrCompanyIDRequired),
		errors.Is(err, user.ErrGuardIDRequired):
		Unauthorized(w, err.Error())
	case errors.Is(err, user.ErrOwnerAccessRequired),
		errors.Is(err, user.ErrManagerAccessRequired),
		errors.Is(err, user.ErrInsufficientPermissions),
		errors.Is(err, user.ErrUnknownRole):
		Forbidden(w, err.Error())

	// Timesheet domain errors
	case errors.Is(err, timesheet.ErrTimesheetNotFound):
		NotFound(w, "Timesheet not found")
	case errors.Is(err, timesheet.ErrShiftNotFound):
		NotFound(w, "Shift not found")
	case errors.Is(err, timesheet.ErrUnauthorized):
		Forbidden(w, err.Error())
	case errors.Is(err, timesheet.ErrAlreadyCheckedIn),
		errors.Is(err, timesheet.ErrAlreadyCheckedOut),
		errors.Is(err, timesheet.ErrNotCheckedIn),
		errors.Is(err, timesheet.ErrMarkedNoShow),
		errors.Is(err, timesheet.ErrTimesheetAlreadyReviewed),
		errors.Is(err, timesheet.ErrTimesheetInProgress):
		Conflict(w, err.Error())

	// Billing domain errors
	case errors.Is(err, billing.ErrInvoiceNotFound):
		NotFound(w, "Invoice not found")
	case errors.Is(err, billing.ErrShiftNotFound):
		NotFound(w, err.Error())
	case errors.Is(err, billing.ErrShiftClientMismatch),
		errors.Is(err, billing.ErrNoBillableItems):
		BadRequest(w, err.Error(), nil)
	case errors.Is(err, billing.ErrInvoiceNumberExists),
		errors.Is(err, billing.ErrAlreadyInvoiced),
		errors.Is(err, billing.ErrInvalidStatusTransition):
		Conflict(w, err.Error())

	// Default
	default:
		slog.Error("unhandled error", "error", err)
		InternalServerError(w, "An unexpected error occurred")
	}
}
