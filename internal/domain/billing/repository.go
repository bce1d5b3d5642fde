package billing

import "context"

// InvoiceRepository defines data access for invoices and their line items.
// All methods include companyID parameter to prevent cross-company data access attacks.
type InvoiceRepository interface {
	// Create inserts the invoice and all of its items
	Create(ctx context.Context, invoice Invoice) (Invoice, error)

	// GetByID retrieves an invoice with its items
	GetByID(ctx context.Context, id string, companyID string) (Invoice, error)

	// List retrieves invoices without items
	List(ctx context.Context, companyID string, filter InvoiceFilter) ([]Invoice, int64, error)

	// UpdateStatus persists a status change and its timestamp
	UpdateStatus(ctx context.Context, invoice Invoice) error

	// InvoicedAssignmentIDs returns which of the given assignments already
	// appear on an invoice
	InvoicedAssignmentIDs(ctx context.Context, assignmentIDs []string, companyID string) ([]string, error)
}
