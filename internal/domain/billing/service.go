package billing

import "context"

// InvoiceService defines business logic for client invoicing
type InvoiceService interface {
	// PreviewInvoice derives line items and totals without saving anything
	PreviewInvoice(ctx context.Context, req InvoiceRequest) (InvoicePreviewResponse, error)

	// CreateInvoice derives and persists an invoice in one transaction
	CreateInvoice(ctx context.Context, req InvoiceRequest) (InvoiceResponse, error)

	GetInvoice(ctx context.Context, id string) (InvoiceResponse, error)
	ListInvoices(ctx context.Context, filter InvoiceFilter) (ListInvoiceResponse, error)

	// UpdateInvoiceStatus moves an invoice forward through draft, sent and paid
	UpdateInvoiceStatus(ctx context.Context, req UpdateInvoiceStatusRequest) (InvoiceResponse, error)
}
