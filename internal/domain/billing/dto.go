package billing

import (
	"strings"

	"github.com/cmlabs-hris/guardforce-backend-go/internal/pkg/validator"
	"github.com/shopspring/decimal"
)

// ========================================
// INVOICE DTOs
// ========================================

// InvoiceRequest selects the shifts to bill for one client.
type InvoiceRequest struct {
	ClientID       string           `json:"client_id"`
	ShiftIDs       []string         `json:"shift_ids"`
	TaxRatePercent *decimal.Decimal `json:"tax_rate_percent,omitempty"` // defaults to config
	IssueDate      *string          `json:"issue_date,omitempty"`       // YYYY-MM-DD, defaults to today
	DueDate        *string          `json:"due_date,omitempty"`         // YYYY-MM-DD, defaults to issue + due days
	Notes          *string          `json:"notes,omitempty"`
}

func (r *InvoiceRequest) Validate() error {
	var errs validator.ValidationErrors

	if validator.IsEmpty(r.ClientID) {
		errs = append(errs, validator.ValidationError{
			Field:   "client_id",
			Message: "client_id is required",
		})
	}

	if len(r.ShiftIDs) == 0 {
		errs = append(errs, validator.ValidationError{
			Field:   "shift_ids",
			Message: "at least one shift is required",
		})
	}
	if len(r.ShiftIDs) > 500 {
		errs = append(errs, validator.ValidationError{
			Field:   "shift_ids",
			Message: "at most 500 shifts per invoice",
		})
	}
	for _, id := range r.ShiftIDs {
		if validator.IsEmpty(id) {
			errs = append(errs, validator.ValidationError{
				Field:   "shift_ids",
				Message: "shift ids must not be empty",
			})
			break
		}
	}

	if r.TaxRatePercent != nil {
		if r.TaxRatePercent.IsNegative() || r.TaxRatePercent.GreaterThan(decimal.NewFromInt(100)) {
			errs = append(errs, validator.ValidationError{
				Field:   "tax_rate_percent",
				Message: "tax_rate_percent must be between 0 and 100",
			})
		}
	}

	var issueOK, dueOK bool
	var issue, due string
	if r.IssueDate != nil && *r.IssueDate != "" {
		if _, issueOK = validator.IsValidDate(*r.IssueDate); !issueOK {
			errs = append(errs, validator.ValidationError{
				Field:   "issue_date",
				Message: "issue_date must be in YYYY-MM-DD format",
			})
		}
		issue = *r.IssueDate
	}
	if r.DueDate != nil && *r.DueDate != "" {
		if _, dueOK = validator.IsValidDate(*r.DueDate); !dueOK {
			errs = append(errs, validator.ValidationError{
				Field:   "due_date",
				Message: "due_date must be in YYYY-MM-DD format",
			})
		}
		due = *r.DueDate
	}
	if issueOK && dueOK && due < issue {
		errs = append(errs, validator.ValidationError{
			Field:   "due_date",
			Message: "due_date must not be before issue_date",
		})
	}

	if len(errs) > 0 {
		return errs
	}
	return nil
}

// UniqueShiftIDs returns the shift ids without duplicates, in request order.
func (r InvoiceRequest) UniqueShiftIDs() []string {
	seen := make(map[string]bool, len(r.ShiftIDs))
	ids := make([]string, 0, len(r.ShiftIDs))
	for _, id := range r.ShiftIDs {
		id = strings.TrimSpace(id)
		if seen[id] {
			continue
		}
		seen[id] = true
		ids = append(ids, id)
	}
	return ids
}

type LineItemResponse struct {
	ID           string `json:"id,omitempty"`
	ShiftID      string `json:"shift_id"`
	AssignmentID string `json:"assignment_id"`
	Description  string `json:"description"`
	Quantity     string `json:"quantity"`
	Rate         string `json:"rate"`
	Amount       string `json:"amount"`
}

type TotalsResponse struct {
	Subtotal       string `json:"subtotal"`
	TaxRatePercent string `json:"tax_rate_percent"`
	TaxAmount      string `json:"tax_amount"`
	Total          string `json:"total"`
}

type InvoicePreviewResponse struct {
	ClientID string             `json:"client_id"`
	Items    []LineItemResponse `json:"items"`
	Totals   TotalsResponse     `json:"totals"`
	// Assignments that were selected but had no billable hours
	Skipped int `json:"skipped"`
}

type InvoiceResponse struct {
	ID         string             `json:"id"`
	Number     string             `json:"number"`
	ClientID   string             `json:"client_id"`
	ClientName *string            `json:"client_name,omitempty"`
	IssueDate  string             `json:"issue_date"`
	DueDate    string             `json:"due_date"`
	Status     string             `json:"status"`
	Notes      *string            `json:"notes,omitempty"`
	Items      []LineItemResponse `json:"items,omitempty"`
	Totals     TotalsResponse     `json:"totals"`
	SentAt     *string            `json:"sent_at,omitempty"`
	PaidAt     *string            `json:"paid_at,omitempty"`
	CreatedAt  string             `json:"created_at"`
}

type InvoiceFilter struct {
	ClientID  *string `json:"client_id,omitempty"`
	Status    *string `json:"status,omitempty"`
	StartDate *string `json:"start_date,omitempty"` // issue date, YYYY-MM-DD
	EndDate   *string `json:"end_date,omitempty"`   // issue date, YYYY-MM-DD

	Page  int `json:"page"`
	Limit int `json:"limit"`
}

func (f *InvoiceFilter) Validate() error {
	var errs validator.ValidationErrors

	if f.Page < 0 {
		errs = append(errs, validator.ValidationError{
			Field:   "page",
			Message: "page must be a positive number",
		})
	}
	if f.Page == 0 {
		f.Page = 1
	}

	if f.Limit < 0 {
		errs = append(errs, validator.ValidationError{
			Field:   "limit",
			Message: "limit must be a positive number",
		})
	}
	if f.Limit == 0 {
		f.Limit = 20
	}
	if f.Limit > 100 {
		errs = append(errs, validator.ValidationError{
			Field:   "limit",
			Message: "limit must not exceed 100",
		})
	}

	if f.Status != nil && !validator.IsInSlice(*f.Status, InvoiceStatusValues) {
		errs = append(errs, validator.ValidationError{
			Field:   "status",
			Message: "status must be one of: " + strings.Join(InvoiceStatusValues, ", "),
		})
	}

	if f.StartDate != nil && *f.StartDate != "" {
		if _, valid := validator.IsValidDate(*f.StartDate); !valid {
			errs = append(errs, validator.ValidationError{
				Field:   "start_date",
				Message: "start_date must be in YYYY-MM-DD format",
			})
		}
	}
	if f.EndDate != nil && *f.EndDate != "" {
		if _, valid := validator.IsValidDate(*f.EndDate); !valid {
			errs = append(errs, validator.ValidationError{
				Field:   "end_date",
				Message: "end_date must be in YYYY-MM-DD format",
			})
		}
	}

	if len(errs) > 0 {
		return errs
	}
	return nil
}

type ListInvoiceResponse struct {
	TotalCount int64             `json:"total_count"`
	Page       int               `json:"page"`
	Limit      int               `json:"limit"`
	TotalPages int               `json:"total_pages"`
	Showing    string            `json:"showing"`
	Invoices   []InvoiceResponse `json:"invoices"`
}

type UpdateInvoiceStatusRequest struct {
	ID     string `json:"-"`
	Status string `json:"status"`
}

func (r *UpdateInvoiceStatusRequest) Validate() error {
	var errs validator.ValidationErrors

	if !validator.IsInSlice(r.Status, InvoiceStatusValues) {
		errs = append(errs, validator.ValidationError{
			Field:   "status",
			Message: "status must be one of: " + strings.Join(InvoiceStatusValues, ", "),
		})
	}

	if len(errs) > 0 {
		return errs
	}
	return nil
}
