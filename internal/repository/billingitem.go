package repository

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
	"github.com/paybill/paybill/internal/domain/billingitem"
	ierr "github.com/paybill/paybill/internal/errors"
	"github.com/paybill/paybill/internal/logger"
	"github.com/paybill/paybill/internal/postgres"
	"github.com/paybill/paybill/internal/types"
)

type billingItemRepository struct {
	db     postgres.IClient
	logger *logger.Logger
}

func NewBillingItemRepository(db postgres.IClient, log *logger.Logger) billingitem.Repository {
	return &billingItemRepository{db: db, logger: log}
}

const billingItemColumns = `id, client_id, billing_period_id, service_id, service_name,
	unit_type, quantity, display_quantity, unit_price, amount, description, notes,
	approved, invoice_id, service_date,
	tenant_id, status, created_at, updated_at, created_by, updated_by`

const billingItemInsert = `
	INSERT INTO billing_items (` + billingItemColumns + `)
	VALUES (:id, :client_id, :billing_period_id, :service_id, :service_name,
		:unit_type, :quantity, :display_quantity, :unit_price, :amount, :description, :notes,
		:approved, :invoice_id, :service_date,
		:tenant_id, :status, :created_at, :updated_at, :created_by, :updated_by)`

func (r *billingItemRepository) Create(ctx context.Context, item *billingitem.BillingItem) error {
	q := postgres.Querier(ctx, r.db.DB())
	if _, err := sqlx.NamedExecContext(ctx, q, billingItemInsert, item); err != nil {
		return ierr.WithError(err).
			WithHint("Failed to create billing item").
			Mark(ierr.ErrDatabase)
	}
	return nil
}

func (r *billingItemRepository) CreateBulk(ctx context.Context, items []*billingitem.BillingItem) error {
	if len(items) == 0 {
		return nil
	}

	q := postgres.Querier(ctx, r.db.DB())
	if _, err := sqlx.NamedExecContext(ctx, q, billingItemInsert, items); err != nil {
		return ierr.WithError(err).
			WithHint("Failed to create billing items").
			Mark(ierr.ErrDatabase)
	}
	return nil
}

func (r *billingItemRepository) Get(ctx context.Context, id string) (*billingitem.BillingItem, error) {
	q := postgres.Querier(ctx, r.db.DB())
	var item billingitem.BillingItem
	err := sqlx.GetContext(ctx, q, &item, `
		SELECT `+billingItemColumns+` FROM billing_items
		WHERE id = $1 AND tenant_id = $2 AND status != $3`,
		id, types.GetTenantID(ctx), types.StatusDeleted)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ierr.WithError(err).
				WithHintf("Billing item with ID %s was not found", id).
				Mark(ierr.ErrNotFound)
		}
		return nil, ierr.WithError(err).
			WithHint("Failed to get billing item").
			Mark(ierr.ErrDatabase)
	}
	return &item, nil
}

func (r *billingItemRepository) Update(ctx context.Context, item *billingitem.BillingItem) error {
	q := postgres.Querier(ctx, r.db.DB())
	result, err := sqlx.NamedExecContext(ctx, q, `
		UPDATE billing_items SET
			quantity = :quantity, display_quantity = :display_quantity,
			unit_price = :unit_price, amount = :amount,
			description = :description, notes = :notes,
			approved = :approved, invoice_id = :invoice_id,
			service_date = :service_date, status = :status,
			updated_at = :updated_at, updated_by = :updated_by
		WHERE id = :id AND tenant_id = :tenant_id`,
		item)
	if err != nil {
		return ierr.WithError(err).
			WithHint("Failed to update billing item").
			Mark(ierr.ErrDatabase)
	}
	if affected, _ := result.RowsAffected(); affected == 0 {
		return ierr.NewErrorf("billing item with ID %s was not found", item.ID).
			WithHint("Billing item does not exist").
			Mark(ierr.ErrNotFound)
	}
	return nil
}

func (r *billingItemRepository) List(ctx context.Context, filter *types.BillingItemFilter) ([]*billingitem.BillingItem, error) {
	query, args := r.buildListQuery(ctx, filter, `SELECT `+billingItemColumns+` FROM billing_items`, true)

	q := postgres.Querier(ctx, r.db.DB())
	items := make([]*billingitem.BillingItem, 0)
	if err := sqlx.SelectContext(ctx, q, &items, query, args...); err != nil {
		return nil, ierr.WithError(err).
			WithHint("Failed to list billing items").
			Mark(ierr.ErrDatabase)
	}
	return items, nil
}

func (r *billingItemRepository) Count(ctx context.Context, filter *types.BillingItemFilter) (int, error) {
	query, args := r.buildListQuery(ctx, filter, `SELECT COUNT(*) FROM billing_items`, false)

	q := postgres.Querier(ctx, r.db.DB())
	var count int
	if err := sqlx.GetContext(ctx, q, &count, query, args...); err != nil {
		return 0, ierr.WithError(err).
			WithHint("Failed to count billing items").
			Mark(ierr.ErrDatabase)
	}
	return count, nil
}

func (r *billingItemRepository) AttachToInvoice(ctx context.Context, itemIDs []string, invoiceID string) error {
	if len(itemIDs) == 0 {
		return nil
	}

	q := postgres.Querier(ctx, r.db.DB())
	result, err := q.ExecContext(ctx, `
		UPDATE billing_items SET invoice_id = $1, updated_at = $2, updated_by = $3
		WHERE id = ANY($4) AND tenant_id = $5 AND invoice_id IS NULL AND approved = TRUE`,
		invoiceID, time.Now().UTC(), types.GetUserID(ctx),
		pq.Array(itemIDs), types.GetTenantID(ctx))
	if err != nil {
		return ierr.WithError(err).
			WithHint("Failed to attach billing items to invoice").
			Mark(ierr.ErrDatabase)
	}

	// every requested item must have been free to attach
	affected, _ := result.RowsAffected()
	if int(affected) != len(itemIDs) {
		return ierr.NewError("some billing items are already invoiced or unapproved").
			WithHint("One or more items could not be attached to the invoice").
			WithReportableDetails(map[string]any{
				"requested": len(itemIDs),
				"attached":  affected,
			}).
			Mark(ierr.ErrInvalidOperation)
	}
	return nil
}

func (r *billingItemRepository) DetachFromInvoice(ctx context.Context, invoiceID string) error {
	q := postgres.Querier(ctx, r.db.DB())
	_, err := q.ExecContext(ctx, `
		UPDATE billing_items SET invoice_id = NULL, updated_at = $1, updated_by = $2
		WHERE invoice_id = $3 AND tenant_id = $4`,
		time.Now().UTC(), types.GetUserID(ctx),
		invoiceID, types.GetTenantID(ctx))
	if err != nil {
		return ierr.WithError(err).
			WithHint("Failed to release billing items from invoice").
			Mark(ierr.ErrDatabase)
	}
	return nil
}

func (r *billingItemRepository) buildListQuery(ctx context.Context, filter *types.BillingItemFilter, base string, paginate bool) (string, []any) {
	qb := newQueryBuilder(base)
	qb.Where("tenant_id = ?", types.GetTenantID(ctx))
	qb.Where("status = ?", filter.GetStatus())
	if filter.ClientID != "" {
		qb.Where("client_id = ?", filter.ClientID)
	}
	if filter.BillingPeriodID != "" {
		qb.Where("billing_period_id = ?", filter.BillingPeriodID)
	}
	if filter.ApprovedOnly {
		qb.Where("approved = TRUE")
	}
	if filter.UnbilledOnly {
		qb.Where("invoice_id IS NULL")
	}
	if paginate {
		qb.OrderBy(filter.GetSort(), filter.GetOrder())
		if !filter.IsUnlimited() {
			qb.Paginate(filter.GetLimit(), filter.GetOffset())
		}
	}
	return qb.Build()
}
