package billing

import (
	"context"
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/cmlabs-hris/guardforce-backend-go/internal/domain/billing"
	"github.com/cmlabs-hris/guardforce-backend-go/internal/domain/timesheet"
	"github.com/cmlabs-hris/guardforce-backend-go/internal/domain/user"
	"github.com/google/uuid"
)

// Transactor runs fn inside one database transaction.
type Transactor interface {
	RunInTx(ctx context.Context, fn func(ctx context.Context) error) error
}

type InvoiceServiceImpl struct {
	tx             Transactor
	shiftRepo      timesheet.ShiftRepository
	attendanceRepo timesheet.AttendanceRepository
	invoiceRepo    billing.InvoiceRepository
	deriver        *Deriver
	config         billing.BillingConfig
	now            func() time.Time
}

func NewInvoiceService(
	tx Transactor,
	shiftRepo timesheet.ShiftRepository,
	attendanceRepo timesheet.AttendanceRepository,
	invoiceRepo billing.InvoiceRepository,
	deriver *Deriver,
	config billing.BillingConfig,
) billing.InvoiceService {
	if deriver == nil {
		deriver = NewDeriver(nil)
	}
	return &InvoiceServiceImpl{
		tx:             tx,
		shiftRepo:      shiftRepo,
		attendanceRepo: attendanceRepo,
		invoiceRepo:    invoiceRepo,
		deriver:        deriver,
		config:         config,
		now:            time.Now,
	}
}

// derivation is the unsaved result of billing a set of shifts.
type derivation struct {
	items   []billing.InvoiceLineItem
	totals  billing.Totals
	skipped int
}

// PreviewInvoice implements billing.InvoiceService.
func (s *InvoiceServiceImpl) PreviewInvoice(ctx context.Context, req billing.InvoiceRequest) (billing.InvoicePreviewResponse, error) {
	if err := req.Validate(); err != nil {
		return billing.InvoicePreviewResponse{}, err
	}

	claims, err := user.ClaimsFromContext(ctx)
	if err != nil {
		return billing.InvoicePreviewResponse{}, err
	}

	result, err := s.derive(ctx, claims.CompanyID, req)
	if err != nil {
		return billing.InvoicePreviewResponse{}, err
	}

	return billing.InvoicePreviewResponse{
		ClientID: req.ClientID,
		Items:    mapLineItems(result.items),
		Totals:   mapTotals(result.totals),
		Skipped:  result.skipped,
	}, nil
}

// CreateInvoice implements billing.InvoiceService.
func (s *InvoiceServiceImpl) CreateInvoice(ctx context.Context, req billing.InvoiceRequest) (billing.InvoiceResponse, error) {
	if err := req.Validate(); err != nil {
		return billing.InvoiceResponse{}, err
	}

	claims, err := user.ClaimsFromContext(ctx)
	if err != nil {
		return billing.InvoiceResponse{}, err
	}

	issueDate, dueDate := s.invoiceDates(req)

	id, err := uuid.NewV7()
	if err != nil {
		return billing.InvoiceResponse{}, fmt.Errorf("failed to generate invoice id: %w", err)
	}

	var created billing.Invoice
	err = s.tx.RunInTx(ctx, func(txCtx context.Context) error {
		result, err := s.derive(txCtx, claims.CompanyID, req)
		if err != nil {
			return err
		}
		if len(result.items) == 0 {
			return billing.ErrNoBillableItems
		}

		assignmentIDs := make([]string, 0, len(result.items))
		for _, item := range result.items {
			assignmentIDs = append(assignmentIDs, item.AssignmentID)
		}
		invoiced, err := s.invoiceRepo.InvoicedAssignmentIDs(txCtx, assignmentIDs, claims.CompanyID)
		if err != nil {
			return fmt.Errorf("failed to check invoiced assignments: %w", err)
		}
		if len(invoiced) > 0 {
			return fmt.Errorf("%w: %s", billing.ErrAlreadyInvoiced, strings.Join(invoiced, ", "))
		}

		userID := claims.UserID
		created, err = s.invoiceRepo.Create(txCtx, billing.Invoice{
			ID:        id.String(),
			CompanyID: claims.CompanyID,
			ClientID:  req.ClientID,
			Number:    invoiceNumber(issueDate, id),
			IssueDate: issueDate,
			DueDate:   dueDate,
			Totals:    result.totals,
			Status:    billing.InvoiceStatusDraft,
			Notes:     req.Notes,
			CreatedBy: &userID,
			Items:     result.items,
		})
		if err != nil {
			return fmt.Errorf("failed to create invoice: %w", err)
		}
		return nil
	})
	if err != nil {
		return billing.InvoiceResponse{}, err
	}

	return mapInvoiceToResponse(created), nil
}

// GetInvoice implements billing.InvoiceService.
func (s *InvoiceServiceImpl) GetInvoice(ctx context.Context, id string) (billing.InvoiceResponse, error) {
	claims, err := user.ClaimsFromContext(ctx)
	if err != nil {
		return billing.InvoiceResponse{}, err
	}

	invoice, err := s.invoiceRepo.GetByID(ctx, id, claims.CompanyID)
	if err != nil {
		return billing.InvoiceResponse{}, err
	}

	return mapInvoiceToResponse(invoice), nil
}

// ListInvoices implements billing.InvoiceService.
func (s *InvoiceServiceImpl) ListInvoices(ctx context.Context, filter billing.InvoiceFilter) (billing.ListInvoiceResponse, error) {
	if err := filter.Validate(); err != nil {
		return billing.ListInvoiceResponse{}, err
	}

	claims, err := user.ClaimsFromContext(ctx)
	if err != nil {
		return billing.ListInvoiceResponse{}, err
	}

	invoices, totalCount, err := s.invoiceRepo.List(ctx, claims.CompanyID, filter)
	if err != nil {
		return billing.ListInvoiceResponse{}, fmt.Errorf("failed to list invoices: %w", err)
	}

	responses := make([]billing.InvoiceResponse, 0, len(invoices))
	for _, inv := range invoices {
		resp := mapInvoiceToResponse(inv)
		resp.Items = nil
		responses = append(responses, resp)
	}

	totalPages := int(math.Ceil(float64(totalCount) / float64(filter.Limit)))
	showing := "0 of 0"
	if totalCount > 0 {
		start := (filter.Page-1)*filter.Limit + 1
		end := start + len(responses) - 1
		showing = fmt.Sprintf("%d-%d of %d", start, end, totalCount)
	}

	return billing.ListInvoiceResponse{
		TotalCount: totalCount,
		Page:       filter.Page,
		Limit:      filter.Limit,
		TotalPages: totalPages,
		Showing:    showing,
		Invoices:   responses,
	}, nil
}

// UpdateInvoiceStatus implements billing.InvoiceService.
func (s *InvoiceServiceImpl) UpdateInvoiceStatus(ctx context.Context, req billing.UpdateInvoiceStatusRequest) (billing.InvoiceResponse, error) {
	if err := req.Validate(); err != nil {
		return billing.InvoiceResponse{}, err
	}

	claims, err := user.ClaimsFromContext(ctx)
	if err != nil {
		return billing.InvoiceResponse{}, err
	}

	invoice, err := s.invoiceRepo.GetByID(ctx, req.ID, claims.CompanyID)
	if err != nil {
		return billing.InvoiceResponse{}, err
	}

	next := billing.InvoiceStatus(req.Status)
	if !invoice.Status.CanTransitionTo(next) {
		return billing.InvoiceResponse{}, fmt.Errorf("%w: %s to %s", billing.ErrInvalidStatusTransition, invoice.Status, next)
	}

	now := s.now().UTC()
	invoice.Status = next
	switch next {
	case billing.InvoiceStatusSent:
		invoice.SentAt = &now
	case billing.InvoiceStatusPaid:
		invoice.PaidAt = &now
	}
	invoice.UpdatedAt = now

	if err := s.invoiceRepo.UpdateStatus(ctx, invoice); err != nil {
		return billing.InvoiceResponse{}, fmt.Errorf("failed to update invoice status: %w", err)
	}

	return mapInvoiceToResponse(invoice), nil
}

// derive loads the requested shifts and their assignments and prices them.
// Rejected timesheets are never billed.
func (s *InvoiceServiceImpl) derive(ctx context.Context, companyID string, req billing.InvoiceRequest) (derivation, error) {
	ids := req.UniqueShiftIDs()

	shifts, err := s.shiftRepo.GetByIDs(ctx, ids, companyID)
	if err != nil {
		return derivation{}, fmt.Errorf("failed to load shifts: %w", err)
	}
	if len(shifts) != len(ids) {
		found := make(map[string]bool, len(shifts))
		for _, shift := range shifts {
			found[shift.ID] = true
		}
		missing := make([]string, 0)
		for _, id := range ids {
			if !found[id] {
				missing = append(missing, id)
			}
		}
		return derivation{}, fmt.Errorf("%w: %s", billing.ErrShiftNotFound, strings.Join(missing, ", "))
	}
	for _, shift := range shifts {
		if shift.ClientID != req.ClientID {
			return derivation{}, fmt.Errorf("%w: %s", billing.ErrShiftClientMismatch, shift.ID)
		}
	}

	records, err := s.attendanceRepo.ListByShiftIDs(ctx, ids, companyID)
	if err != nil {
		return derivation{}, fmt.Errorf("failed to load assignments: %w", err)
	}

	candidates := 0
	byShift := make(map[string][]timesheet.AttendanceRecord, len(shifts))
	for _, record := range records {
		if record.TimesheetStatus == timesheet.ReviewStatusRejected {
			continue
		}
		candidates++
		byShift[record.ShiftID] = append(byShift[record.ShiftID], record)
	}

	taxRate := s.config.DefaultTaxRatePercent
	if req.TaxRatePercent != nil {
		taxRate = *req.TaxRatePercent
	}

	items := s.deriver.DeriveLineItems(shifts, byShift, s.config.DefaultHourlyRate)
	return derivation{
		items:   items,
		totals:  s.deriver.AggregateTotals(items, taxRate),
		skipped: candidates - len(items),
	}, nil
}

func (s *InvoiceServiceImpl) invoiceDates(req billing.InvoiceRequest) (time.Time, time.Time) {
	now := s.now().UTC()
	issue := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
	if req.IssueDate != nil && *req.IssueDate != "" {
		if parsed, err := time.Parse("2006-01-02", *req.IssueDate); err == nil {
			issue = parsed
		}
	}

	due := issue.AddDate(0, 0, s.config.InvoiceDueDays)
	if req.DueDate != nil && *req.DueDate != "" {
		if parsed, err := time.Parse("2006-01-02", *req.DueDate); err == nil {
			due = parsed
		}
	}
	return issue, due
}

// invoiceNumber is INV-YYYYMMDD- followed by the random tail of the id.
func invoiceNumber(issueDate time.Time, id uuid.UUID) string {
	s := strings.ReplaceAll(id.String(), "-", "")
	return fmt.Sprintf("INV-%s-%s", issueDate.Format("20060102"), strings.ToUpper(s[len(s)-8:]))
}

func mapLineItems(items []billing.InvoiceLineItem) []billing.LineItemResponse {
	result := make([]billing.LineItemResponse, 0, len(items))
	for _, item := range items {
		result = append(result, billing.LineItemResponse{
			ID:           item.ID,
			ShiftID:      item.ShiftID,
			AssignmentID: item.AssignmentID,
			Description:  item.Description,
			Quantity:     item.Quantity.StringFixed(2),
			Rate:         item.Rate.StringFixed(2),
			Amount:       item.Amount.StringFixed(2),
		})
	}
	return result
}

func mapTotals(t billing.Totals) billing.TotalsResponse {
	return billing.TotalsResponse{
		Subtotal:       t.Subtotal.StringFixed(2),
		TaxRatePercent: t.TaxRatePercent.String(),
		TaxAmount:      t.TaxAmount.StringFixed(2),
		Total:          t.Total.StringFixed(2),
	}
}

func mapInvoiceToResponse(inv billing.Invoice) billing.InvoiceResponse {
	var sentAt, paidAt *string
	if inv.SentAt != nil {
		str := inv.SentAt.Format(time.RFC3339)
		sentAt = &str
	}
	if inv.PaidAt != nil {
		str := inv.PaidAt.Format(time.RFC3339)
		paidAt = &str
	}

	return billing.InvoiceResponse{
		ID:         inv.ID,
		Number:     inv.Number,
		ClientID:   inv.ClientID,
		ClientName: inv.ClientName,
		IssueDate:  inv.IssueDate.Format("2006-01-02"),
		DueDate:    inv.DueDate.Format("2006-01-02"),
		Status:     string(inv.Status),
		Notes:      inv.Notes,
		Items:      mapLineItems(inv.Items),
		Totals:     mapTotals(inv.Totals),
		SentAt:     sentAt,
		PaidAt:     paidAt,
		CreatedAt:  inv.CreatedAt.Format(time.RFC3339),
	}
}
