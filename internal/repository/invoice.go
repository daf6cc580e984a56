package repository

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
	"github.com/paybill/paybill/internal/domain/invoice"
	ierr "github.com/paybill/paybill/internal/errors"
	"github.com/paybill/paybill/internal/logger"
	"github.com/paybill/paybill/internal/postgres"
	"github.com/paybill/paybill/internal/types"
)

type invoiceRepository struct {
	db     postgres.IClient
	logger *logger.Logger
}

func NewInvoiceRepository(db postgres.IClient, log *logger.Logger) invoice.Repository {
	return &invoiceRepository{db: db, logger: log}
}

const invoiceColumns = `id, invoice_number, client_id, billing_period_id, currency,
	subtotal, gst_amount, total, invoice_status, billing_reason, description,
	issued_at, due_date, voided_at, metadata, version,
	tenant_id, status, created_at, updated_at, created_by, updated_by`

const lineItemColumns = `id, invoice_id, client_id, billing_item_id, service_id,
	display_name, unit_type, quantity, unit_price, amount, currency,
	tenant_id, status, created_at, updated_at, created_by, updated_by`

func (r *invoiceRepository) Create(ctx context.Context, inv *invoice.Invoice) error {
	q := postgres.Querier(ctx, r.db.DB())

	_, err := sqlx.NamedExecContext(ctx, q, `
		INSERT INTO invoices (`+invoiceColumns+`)
		VALUES (:id, :invoice_number, :client_id, :billing_period_id, :currency,
			:subtotal, :gst_amount, :total, :invoice_status, :billing_reason, :description,
			:issued_at, :due_date, :voided_at, :metadata, :version,
			:tenant_id, :status, :created_at, :updated_at, :created_by, :updated_by)`,
		inv)
	if err != nil {
		if isUniqueViolation(err) {
			return ierr.WithError(err).
				WithHint("An invoice with this number already exists").
				Mark(ierr.ErrAlreadyExists)
		}
		return ierr.WithError(err).
			WithHint("Failed to create invoice").
			Mark(ierr.ErrDatabase)
	}

	if len(inv.LineItems) > 0 {
		_, err = sqlx.NamedExecContext(ctx, q, `
			INSERT INTO invoice_line_items (`+lineItemColumns+`)
			VALUES (:id, :invoice_id, :client_id, :billing_item_id, :service_id,
				:display_name, :unit_type, :quantity, :unit_price, :amount, :currency,
				:tenant_id, :status, :created_at, :updated_at, :created_by, :updated_by)`,
			inv.LineItems)
		if err != nil {
			return ierr.WithError(err).
				WithHint("Failed to create invoice line items").
				Mark(ierr.ErrDatabase)
		}
	}
	return nil
}

func (r *invoiceRepository) Get(ctx context.Context, id string) (*invoice.Invoice, error) {
	q := postgres.Querier(ctx, r.db.DB())
	var inv invoice.Invoice
	err := sqlx.GetContext(ctx, q, &inv, `
		SELECT `+invoiceColumns+` FROM invoices
		WHERE id = $1 AND tenant_id = $2 AND status != $3`,
		id, types.GetTenantID(ctx), types.StatusDeleted)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ierr.WithError(err).
				WithHintf("Invoice with ID %s was not found", id).
				Mark(ierr.ErrNotFound)
		}
		return nil, ierr.WithError(err).
			WithHint("Failed to get invoice").
			Mark(ierr.ErrDatabase)
	}

	lineItems := make([]*invoice.InvoiceLineItem, 0)
	err = sqlx.SelectContext(ctx, q, &lineItems, `
		SELECT `+lineItemColumns+` FROM invoice_line_items
		WHERE invoice_id = $1 AND tenant_id = $2 AND status != $3
		ORDER BY created_at ASC, id ASC`,
		id, types.GetTenantID(ctx), types.StatusDeleted)
	if err != nil {
		return nil, ierr.WithError(err).
			WithHint("Failed to get invoice line items").
			Mark(ierr.ErrDatabase)
	}

	inv.LineItems = lineItems
	return &inv, nil
}

// Update persists invoice state transitions guarded by an optimistic
// version check
func (r *invoiceRepository) Update(ctx context.Context, inv *invoice.Invoice) error {
	q := postgres.Querier(ctx, r.db.DB())
	result, err := q.ExecContext(ctx, `
		UPDATE invoices SET
			invoice_status = $1, description = $2, issued_at = $3, due_date = $4,
			voided_at = $5, metadata = $6, version = version + 1,
			updated_at = $7, updated_by = $8
		WHERE id = $9 AND tenant_id = $10 AND version = $11`,
		inv.InvoiceStatus, inv.Description, inv.IssuedAt, inv.DueDate,
		inv.VoidedAt, inv.Metadata,
		inv.UpdatedAt, inv.UpdatedBy,
		inv.ID, types.GetTenantID(ctx), inv.Version)
	if err != nil {
		return ierr.WithError(err).
			WithHint("Failed to update invoice").
			Mark(ierr.ErrDatabase)
	}

	affected, _ := result.RowsAffected()
	if affected == 0 {
		return ierr.NewErrorf("invoice %s was modified concurrently", inv.ID).
			WithHint("Invoice was updated by another request, please retry").
			Mark(ierr.ErrVersionConflict)
	}

	inv.Version++
	return nil
}

func (r *invoiceRepository) List(ctx context.Context, filter *types.InvoiceFilter) ([]*invoice.Invoice, error) {
	query, args := r.buildListQuery(ctx, filter, `SELECT `+invoiceColumns+` FROM invoices`, true)

	q := postgres.Querier(ctx, r.db.DB())
	invoices := make([]*invoice.Invoice, 0)
	if err := sqlx.SelectContext(ctx, q, &invoices, query, args...); err != nil {
		return nil, ierr.WithError(err).
			WithHint("Failed to list invoices").
			Mark(ierr.ErrDatabase)
	}
	return invoices, nil
}

func (r *invoiceRepository) Count(ctx context.Context, filter *types.InvoiceFilter) (int, error) {
	query, args := r.buildListQuery(ctx, filter, `SELECT COUNT(*) FROM invoices`, false)

	q := postgres.Querier(ctx, r.db.DB())
	var count int
	if err := sqlx.GetContext(ctx, q, &count, query, args...); err != nil {
		return 0, ierr.WithError(err).
			WithHint("Failed to count invoices").
			Mark(ierr.ErrDatabase)
	}
	return count, nil
}

// NextInvoiceNumber reserves the next sequence value for the tenant and
// year atomically via an upsert
func (r *invoiceRepository) NextInvoiceNumber(ctx context.Context, year string) (string, error) {
	q := postgres.Querier(ctx, r.db.DB())
	now := time.Now().UTC()

	var value int64
	err := sqlx.GetContext(ctx, q, &value, `
		INSERT INTO invoice_sequences (id, tenant_id, year, last_value, created_at, updated_at)
		VALUES ($1, $2, $3, 1, $4, $4)
		ON CONFLICT (tenant_id, year)
		DO UPDATE SET last_value = invoice_sequences.last_value + 1, updated_at = $4
		RETURNING last_value`,
		types.GenerateUUID(), types.GetTenantID(ctx), year, now)
	if err != nil {
		return "", ierr.WithError(err).
			WithHint("Failed to reserve invoice number").
			Mark(ierr.ErrDatabase)
	}

	return invoice.FormatInvoiceNumber(year, value), nil
}

func (r *invoiceRepository) buildListQuery(ctx context.Context, filter *types.InvoiceFilter, base string, paginate bool) (string, []any) {
	qb := newQueryBuilder(base)
	qb.Where("tenant_id = ?", types.GetTenantID(ctx))
	qb.Where("status = ?", filter.GetStatus())
	if filter.ClientID != "" {
		qb.Where("client_id = ?", filter.ClientID)
	}
	if filter.BillingPeriodID != "" {
		qb.Where("billing_period_id = ?", filter.BillingPeriodID)
	}
	if len(filter.InvoiceStatus) > 0 {
		statuses := make([]string, 0, len(filter.InvoiceStatus))
		for _, s := range filter.InvoiceStatus {
			statuses = append(statuses, s.String())
		}
		qb.Where("invoice_status = ANY(?)", pq.Array(statuses))
	}
	if paginate {
		qb.OrderBy(filter.GetSort(), filter.GetOrder())
		if !filter.IsUnlimited() {
			qb.Paginate(filter.GetLimit(), filter.GetOffset())
		}
	}
	return qb.Build()
}
