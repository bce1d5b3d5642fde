package billing

import (
	"time"

	"github.com/shopspring/decimal"
)

// BillingConfig holds the money defaults used when a shift or request does
// not carry its own figures.
type BillingConfig struct {
	DefaultHourlyRate     decimal.Decimal
	DefaultTaxRatePercent decimal.Decimal
	OvertimeMultiplier    decimal.Decimal
	PayrollTaxPercent     decimal.Decimal
	PayrollNIPercent      decimal.Decimal
	InvoiceDueDays        int
}

func DefaultBillingConfig() BillingConfig {
	return BillingConfig{
		DefaultHourlyRate:     decimal.NewFromInt(25),
		DefaultTaxRatePercent: decimal.NewFromInt(20),
		OvertimeMultiplier:    decimal.NewFromFloat(1.5),
		PayrollTaxPercent:     decimal.NewFromInt(20),
		PayrollNIPercent:      decimal.NewFromInt(12),
		InvoiceDueDays:        30,
	}
}

// InvoiceLineItem is one billable (shift, assignment) pair.
type InvoiceLineItem struct {
	ID           string
	InvoiceID    string
	ShiftID      string
	AssignmentID string
	Description  string
	Quantity     decimal.Decimal // hours, 2dp
	Rate         decimal.Decimal
	Amount       decimal.Decimal // Quantity x Rate, 2dp
	Position     int
}

// Totals is always recomputed from the full item list.
type Totals struct {
	Subtotal       decimal.Decimal
	TaxRatePercent decimal.Decimal
	TaxAmount      decimal.Decimal
	Total          decimal.Decimal
}

// InvoiceStatus enum
type InvoiceStatus string

const (
	InvoiceStatusDraft InvoiceStatus = "draft"
	InvoiceStatusSent  InvoiceStatus = "sent"
	InvoiceStatusPaid  InvoiceStatus = "paid"
)

var InvoiceStatusValues = []string{
	string(InvoiceStatusDraft),
	string(InvoiceStatusSent),
	string(InvoiceStatusPaid),
}

func (s InvoiceStatus) rank() int {
	switch s {
	case InvoiceStatusDraft:
		return 0
	case InvoiceStatusSent:
		return 1
	case InvoiceStatusPaid:
		return 2
	}
	return -1
}

// CanTransitionTo reports whether an invoice may move from s to next.
// Invoices only move forward; a draft may be marked paid directly.
func (s InvoiceStatus) CanTransitionTo(next InvoiceStatus) bool {
	if s.rank() < 0 || next.rank() < 0 {
		return false
	}
	return next.rank() > s.rank()
}

// Invoice - persisted client invoice
type Invoice struct {
	ID        string
	CompanyID string
	ClientID  string
	Number    string
	IssueDate time.Time
	DueDate   time.Time
	Totals    Totals
	Status    InvoiceStatus
	Notes     *string
	SentAt    *time.Time
	PaidAt    *time.Time
	CreatedBy *string
	CreatedAt time.Time
	UpdatedAt time.Time

	Items []InvoiceLineItem

	// Joined fields
	ClientName *string
}

// PayrollInput is the hours and rates one payroll estimate is computed from.
// Percentages are whole numbers, 20 means 20%.
type PayrollInput struct {
	RegularHours       float64
	OvertimeHours      float64
	HourlyRate         decimal.Decimal
	OvertimeMultiplier decimal.Decimal
	TaxPercent         decimal.Decimal
	NIPercent          decimal.Decimal
}

// PayrollGross - gross-to-net breakdown, every figure rounded to 2dp
type PayrollGross struct {
	RegularPay        decimal.Decimal
	OvertimePay       decimal.Decimal
	GrossPay          decimal.Decimal
	Tax               decimal.Decimal
	NationalInsurance decimal.Decimal
	NetPay            decimal.Decimal
}
