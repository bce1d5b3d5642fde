package postgresql

import (
	"context"
	"errors"
	"fmt"

	"github.com/cmlabs-hris/guardforce-backend-go/internal/domain/billing"
	"github.com/cmlabs-hris/guardforce-backend-go/internal/pkg/database"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

type invoiceRepository struct {
	db *database.DB
}

func NewInvoiceRepository(db *database.DB) billing.InvoiceRepository {
	return &invoiceRepository{db: db}
}

const invoiceColumns = `
	i.id, i.company_id, i.client_id, i.number, i.issue_date, i.due_date,
	i.subtotal, i.tax_rate_percent, i.tax_amount, i.total,
	i.status, i.notes, i.sent_at, i.paid_at, i.created_by, i.created_at, i.updated_at,
	c.name AS client_name`

func scanInvoice(row pgx.Row) (billing.Invoice, error) {
	var inv billing.Invoice
	err := row.Scan(
		&inv.ID, &inv.CompanyID, &inv.ClientID, &inv.Number, &inv.IssueDate, &inv.DueDate,
		&inv.Totals.Subtotal, &inv.Totals.TaxRatePercent, &inv.Totals.TaxAmount, &inv.Totals.Total,
		&inv.Status, &inv.Notes, &inv.SentAt, &inv.PaidAt, &inv.CreatedBy, &inv.CreatedAt, &inv.UpdatedAt,
		&inv.ClientName,
	)
	return inv, err
}

func isUniqueViolation(err error, constraint string) bool {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == "23505" {
		return constraint == "" || pgErr.ConstraintName == constraint
	}
	return false
}

// Create implements billing.InvoiceRepository. Items are written in
// position order and get their ids from the database.
func (r *invoiceRepository) Create(ctx context.Context, invoice billing.Invoice) (billing.Invoice, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		INSERT INTO invoices (
			id, company_id, client_id, number, issue_date, due_date,
			subtotal, tax_rate_percent, tax_amount, total, status, notes, created_by
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
		RETURNING created_at, updated_at
	`

	err := q.QueryRow(ctx, query,
		invoice.ID,
		invoice.CompanyID,
		invoice.ClientID,
		invoice.Number,
		invoice.IssueDate,
		invoice.DueDate,
		invoice.Totals.Subtotal,
		invoice.Totals.TaxRatePercent,
		invoice.Totals.TaxAmount,
		invoice.Totals.Total,
		string(invoice.Status),
		invoice.Notes,
		invoice.CreatedBy,
	).Scan(&invoice.CreatedAt, &invoice.UpdatedAt)
	if err != nil {
		if isUniqueViolation(err, "invoices_company_id_number_key") {
			return billing.Invoice{}, billing.ErrInvoiceNumberExists
		}
		return billing.Invoice{}, fmt.Errorf("failed to create invoice: %w", err)
	}

	itemQuery := `
		INSERT INTO invoice_line_items (
			invoice_id, shift_id, assignment_id, description, quantity, rate, amount, position
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING id
	`

	for i := range invoice.Items {
		item := &invoice.Items[i]
		item.InvoiceID = invoice.ID
		err := q.QueryRow(ctx, itemQuery,
			item.InvoiceID,
			item.ShiftID,
			item.AssignmentID,
			item.Description,
			item.Quantity,
			item.Rate,
			item.Amount,
			item.Position,
		).Scan(&item.ID)
		if err != nil {
			if isUniqueViolation(err, "invoice_line_items_assignment_id_key") {
				return billing.Invoice{}, fmt.Errorf("%w: %s", billing.ErrAlreadyInvoiced, item.AssignmentID)
			}
			return billing.Invoice{}, fmt.Errorf("failed to create invoice line item: %w", err)
		}
	}

	return invoice, nil
}

// GetByID implements billing.InvoiceRepository.
func (r *invoiceRepository) GetByID(ctx context.Context, id string, companyID string) (billing.Invoice, error) {
	q := GetQuerier(ctx, r.db)

	query := `SELECT ` + invoiceColumns + `
		FROM invoices i
		LEFT JOIN clients c ON c.id = i.client_id
		WHERE i.id = $1 AND i.company_id = $2`

	inv, err := scanInvoice(q.QueryRow(ctx, query, id, companyID))
	if err != nil {
		if err == pgx.ErrNoRows {
			return billing.Invoice{}, billing.ErrInvoiceNotFound
		}
		return billing.Invoice{}, fmt.Errorf("failed to get invoice: %w", err)
	}

	itemsQuery := `
		SELECT id, invoice_id, shift_id, assignment_id, description, quantity, rate, amount, position
		FROM invoice_line_items
		WHERE invoice_id = $1
		ORDER BY position
	`

	rows, err := q.Query(ctx, itemsQuery, inv.ID)
	if err != nil {
		return billing.Invoice{}, fmt.Errorf("failed to query invoice line items: %w", err)
	}
	defer rows.Close()

	inv.Items = make([]billing.InvoiceLineItem, 0)
	for rows.Next() {
		var item billing.InvoiceLineItem
		if err := rows.Scan(
			&item.ID, &item.InvoiceID, &item.ShiftID, &item.AssignmentID, &item.Description,
			&item.Quantity, &item.Rate, &item.Amount, &item.Position,
		); err != nil {
			return billing.Invoice{}, fmt.Errorf("failed to scan invoice line item: %w", err)
		}
		inv.Items = append(inv.Items, item)
	}
	if err := rows.Err(); err != nil {
		return billing.Invoice{}, fmt.Errorf("failed to iterate invoice line items: %w", err)
	}

	return inv, nil
}

// List implements billing.InvoiceRepository. Items are not loaded.
func (r *invoiceRepository) List(ctx context.Context, companyID string, filter billing.InvoiceFilter) ([]billing.Invoice, int64, error) {
	q := GetQuerier(ctx, r.db)

	baseWhere := "i.company_id = $1"
	args := []interface{}{companyID}
	argIdx := 2

	if filter.ClientID != nil && *filter.ClientID != "" {
		baseWhere += fmt.Sprintf(" AND i.client_id = $%d", argIdx)
		args = append(args, *filter.ClientID)
		argIdx++
	}
	if filter.Status != nil && *filter.Status != "" {
		baseWhere += fmt.Sprintf(" AND i.status = $%d", argIdx)
		args = append(args, *filter.Status)
		argIdx++
	}
	if filter.StartDate != nil && *filter.StartDate != "" {
		baseWhere += fmt.Sprintf(" AND i.issue_date >= $%d", argIdx)
		args = append(args, *filter.StartDate)
		argIdx++
	}
	if filter.EndDate != nil && *filter.EndDate != "" {
		baseWhere += fmt.Sprintf(" AND i.issue_date <= $%d", argIdx)
		args = append(args, *filter.EndDate)
		argIdx++
	}

	countQuery := "SELECT COUNT(*) FROM invoices i WHERE " + baseWhere
	var total int64
	if err := q.QueryRow(ctx, countQuery, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("failed to count invoices: %w", err)
	}

	selectQuery := fmt.Sprintf(`SELECT %s
		FROM invoices i
		LEFT JOIN clients c ON c.id = i.client_id
		WHERE %s
		ORDER BY i.issue_date DESC, i.number DESC
		LIMIT $%d OFFSET $%d`, invoiceColumns, baseWhere, argIdx, argIdx+1)

	limit := filter.Limit
	if limit == 0 {
		limit = 20
	}
	page := filter.Page
	if page == 0 {
		page = 1
	}
	args = append(args, limit, (page-1)*limit)

	rows, err := q.Query(ctx, selectQuery, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to query invoices: %w", err)
	}
	defer rows.Close()

	invoices := make([]billing.Invoice, 0)
	for rows.Next() {
		inv, err := scanInvoice(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("failed to scan invoice: %w", err)
		}
		invoices = append(invoices, inv)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("failed to iterate invoices: %w", err)
	}

	return invoices, total, nil
}

// UpdateStatus implements billing.InvoiceRepository.
func (r *invoiceRepository) UpdateStatus(ctx context.Context, invoice billing.Invoice) error {
	q := GetQuerier(ctx, r.db)

	query := `
		UPDATE invoices
		SET status = $3, sent_at = $4, paid_at = $5, updated_at = NOW()
		WHERE id = $1 AND company_id = $2
	`

	commandTag, err := q.Exec(ctx, query,
		invoice.ID,
		invoice.CompanyID,
		string(invoice.Status),
		invoice.SentAt,
		invoice.PaidAt,
	)
	if err != nil {
		return fmt.Errorf("failed to update invoice status: %w", err)
	}

	if commandTag.RowsAffected() == 0 {
		return billing.ErrInvoiceNotFound
	}

	return nil
}

// InvoicedAssignmentIDs implements billing.InvoiceRepository.
func (r *invoiceRepository) InvoicedAssignmentIDs(ctx context.Context, ids []string, companyID string) ([]string, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		SELECT DISTINCT li.assignment_id::text
		FROM invoice_line_items li
		JOIN invoices i ON i.id = li.invoice_id
		WHERE i.company_id = $1 AND li.assignment_id::text = ANY($2)
		ORDER BY 1
	`

	rows, err := q.Query(ctx, query, companyID, ids)
	if err != nil {
		return nil, fmt.Errorf("failed to query invoiced assignments: %w", err)
	}
	defer rows.Close()

	invoiced := make([]string, 0)
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("failed to scan invoiced assignment: %w", err)
		}
		invoiced = append(invoiced, id)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate invoiced assignments: %w", err)
	}

	return invoiced, nil
}
