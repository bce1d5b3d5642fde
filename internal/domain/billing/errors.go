package billing

import "errors"

var (
	ErrInvoiceNotFound         = errors.New("invoice not found")
	ErrInvoiceNumberExists     = errors.New("invoice number already exists")
	ErrNoBillableItems         = errors.New("selected shifts have no billable hours")
	ErrInvalidStatusTransition = errors.New("invoice status cannot move backwards")
	ErrShiftClientMismatch     = errors.New("all shifts must belong to the invoiced client")
	ErrShiftNotFound           = errors.New("one or more shifts not found")
	ErrAlreadyInvoiced         = errors.New("one or more assignments are already invoiced")
)
