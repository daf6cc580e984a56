package repository

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/paybill/paybill/internal/cache"
	domainClient "github.com/paybill/paybill/internal/domain/client"
	ierr "github.com/paybill/paybill/internal/errors"
	"github.com/paybill/paybill/internal/logger"
	"github.com/paybill/paybill/internal/postgres"
	"github.com/paybill/paybill/internal/types"
)

type clientRepository struct {
	db     postgres.IClient
	logger *logger.Logger
	cache  cache.Cache
}

func NewClientRepository(db postgres.IClient, log *logger.Logger, c cache.Cache) domainClient.Repository {
	return &clientRepository{db: db, logger: log, cache: c}
}

const clientColumns = `id, name, abn, contact_email, currency, pay_frequency, metadata,
	tenant_id, status, created_at, updated_at, created_by, updated_by`

func (r *clientRepository) Create(ctx context.Context, cl *domainClient.Client) error {
	q := postgres.Querier(ctx, r.db.DB())
	_, err := sqlx.NamedExecContext(ctx, q, `
		INSERT INTO clients (`+clientColumns+`)
		VALUES (:id, :name, :abn, :contact_email, :currency, :pay_frequency, :metadata,
			:tenant_id, :status, :created_at, :updated_at, :created_by, :updated_by)`,
		cl)
	if err != nil {
		if isUniqueViolation(err) {
			return ierr.WithError(err).
				WithHint("A client with this ID already exists").
				Mark(ierr.ErrAlreadyExists)
		}
		return ierr.WithError(err).
			WithHint("Failed to create client").
			Mark(ierr.ErrDatabase)
	}
	return nil
}

func (r *clientRepository) Get(ctx context.Context, id string) (*domainClient.Client, error) {
	if cached, ok := r.cache.Get(ctx, clientCacheKey(ctx, id)); ok {
		if cl, ok := cached.(*domainClient.Client); ok {
			return cl, nil
		}
	}

	q := postgres.Querier(ctx, r.db.DB())
	var cl domainClient.Client
	err := sqlx.GetContext(ctx, q, &cl, `
		SELECT `+clientColumns+` FROM clients
		WHERE id = $1 AND tenant_id = $2 AND status != $3`,
		id, types.GetTenantID(ctx), types.StatusDeleted)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ierr.WithError(err).
				WithHintf("Client with ID %s was not found", id).
				Mark(ierr.ErrNotFound)
		}
		return nil, ierr.WithError(err).
			WithHint("Failed to get client").
			Mark(ierr.ErrDatabase)
	}

	r.cache.Set(ctx, clientCacheKey(ctx, id), &cl, 5*time.Minute)
	return &cl, nil
}

func (r *clientRepository) Update(ctx context.Context, cl *domainClient.Client) error {
	q := postgres.Querier(ctx, r.db.DB())
	result, err := sqlx.NamedExecContext(ctx, q, `
		UPDATE clients SET
			name = :name, abn = :abn, contact_email = :contact_email,
			currency = :currency, pay_frequency = :pay_frequency,
			metadata = :metadata, status = :status,
			updated_at = :updated_at, updated_by = :updated_by
		WHERE id = :id AND tenant_id = :tenant_id`,
		cl)
	if err != nil {
		return ierr.WithError(err).
			WithHint("Failed to update client").
			Mark(ierr.ErrDatabase)
	}
	if affected, _ := result.RowsAffected(); affected == 0 {
		return ierr.NewErrorf("client with ID %s was not found", cl.ID).
			WithHint("Client does not exist").
			Mark(ierr.ErrNotFound)
	}

	r.cache.Delete(ctx, clientCacheKey(ctx, cl.ID))
	return nil
}

func (r *clientRepository) Delete(ctx context.Context, id string) error {
	q := postgres.Querier(ctx, r.db.DB())
	result, err := q.ExecContext(ctx, `
		UPDATE clients SET status = $1, updated_at = $2, updated_by = $3
		WHERE id = $4 AND tenant_id = $5 AND status != $1`,
		types.StatusDeleted, time.Now().UTC(), types.GetUserID(ctx),
		id, types.GetTenantID(ctx))
	if err != nil {
		return ierr.WithError(err).
			WithHint("Failed to delete client").
			Mark(ierr.ErrDatabase)
	}
	if affected, _ := result.RowsAffected(); affected == 0 {
		return ierr.NewErrorf("client with ID %s was not found", id).
			WithHint("Client does not exist").
			Mark(ierr.ErrNotFound)
	}

	r.cache.Delete(ctx, clientCacheKey(ctx, id))
	return nil
}

func clientCacheKey(ctx context.Context, id string) string {
	return cache.GenerateKey(cache.PrefixClient, types.GetTenantID(ctx), id)
}

func (r *clientRepository) List(ctx context.Context, filter *types.ClientFilter) ([]*domainClient.Client, error) {
	query, args := r.buildListQuery(ctx, filter, `SELECT `+clientColumns+` FROM clients`, true)

	q := postgres.Querier(ctx, r.db.DB())
	clients := make([]*domainClient.Client, 0)
	if err := sqlx.SelectContext(ctx, q, &clients, query, args...); err != nil {
		return nil, ierr.WithError(err).
			WithHint("Failed to list clients").
			Mark(ierr.ErrDatabase)
	}
	return clients, nil
}

func (r *clientRepository) Count(ctx context.Context, filter *types.ClientFilter) (int, error) {
	query, args := r.buildListQuery(ctx, filter, `SELECT COUNT(*) FROM clients`, false)

	q := postgres.Querier(ctx, r.db.DB())
	var count int
	if err := sqlx.GetContext(ctx, q, &count, query, args...); err != nil {
		return 0, ierr.WithError(err).
			WithHint("Failed to count clients").
			Mark(ierr.ErrDatabase)
	}
	return count, nil
}

func (r *clientRepository) buildListQuery(ctx context.Context, filter *types.ClientFilter, base string, paginate bool) (string, []any) {
	qb := newQueryBuilder(base)
	qb.Where("tenant_id = ?", types.GetTenantID(ctx))
	qb.Where("status = ?", filter.GetStatus())
	if filter.Name != "" {
		qb.Where("name ILIKE ?", "%"+filter.Name+"%")
	}
	if paginate {
		qb.OrderBy(filter.GetSort(), filter.GetOrder())
		if !filter.IsUnlimited() {
			qb.Paginate(filter.GetLimit(), filter.GetOffset())
		}
	}
	return qb.Build()
}
