package repository

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/paybill/paybill/internal/cache"
	"github.com/paybill/paybill/internal/domain/agreement"
	ierr "github.com/paybill/paybill/internal/errors"
	"github.com/paybill/paybill/internal/logger"
	"github.com/paybill/paybill/internal/postgres"
	"github.com/paybill/paybill/internal/types"
)

type agreementRepository struct {
	db     postgres.IClient
	logger *logger.Logger
	cache  cache.Cache
}

func NewAgreementRepository(db postgres.IClient, log *logger.Logger, c cache.Cache) agreement.Repository {
	return &agreementRepository{db: db, logger: log, cache: c}
}

const agreementColumns = `id, client_id, service_id, service_name, unit_type, rate,
	tenant_id, status, created_at, updated_at, created_by, updated_by`

func (r *agreementRepository) Create(ctx context.Context, agr *agreement.ServiceAgreement) error {
	q := postgres.Querier(ctx, r.db.DB())
	_, err := sqlx.NamedExecContext(ctx, q, `
		INSERT INTO service_agreements (`+agreementColumns+`)
		VALUES (:id, :client_id, :service_id, :service_name, :unit_type, :rate,
			:tenant_id, :status, :created_at, :updated_at, :created_by, :updated_by)`,
		agr)
	if err != nil {
		if isUniqueViolation(err) {
			return ierr.WithError(err).
				WithHint("An agreement for this client and service already exists").
				Mark(ierr.ErrAlreadyExists)
		}
		return ierr.WithError(err).
			WithHint("Failed to create service agreement").
			Mark(ierr.ErrDatabase)
	}

	r.cache.Delete(ctx, agreementCacheKey(ctx, agr.ClientID, agr.ServiceID))
	return nil
}

func (r *agreementRepository) Get(ctx context.Context, id string) (*agreement.ServiceAgreement, error) {
	q := postgres.Querier(ctx, r.db.DB())
	var agr agreement.ServiceAgreement
	err := sqlx.GetContext(ctx, q, &agr, `
		SELECT `+agreementColumns+` FROM service_agreements
		WHERE id = $1 AND tenant_id = $2 AND status != $3`,
		id, types.GetTenantID(ctx), types.StatusDeleted)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ierr.WithError(err).
				WithHintf("Service agreement with ID %s was not found", id).
				Mark(ierr.ErrNotFound)
		}
		return nil, ierr.WithError(err).
			WithHint("Failed to get service agreement").
			Mark(ierr.ErrDatabase)
	}
	return &agr, nil
}

func (r *agreementRepository) GetByClientAndService(ctx context.Context, clientID, serviceID string) (*agreement.ServiceAgreement, error) {
	key := agreementCacheKey(ctx, clientID, serviceID)
	if cached, ok := r.cache.Get(ctx, key); ok {
		if agr, ok := cached.(*agreement.ServiceAgreement); ok {
			return agr, nil
		}
	}

	q := postgres.Querier(ctx, r.db.DB())
	var agr agreement.ServiceAgreement
	err := sqlx.GetContext(ctx, q, &agr, `
		SELECT `+agreementColumns+` FROM service_agreements
		WHERE client_id = $1 AND service_id = $2 AND tenant_id = $3 AND status = $4`,
		clientID, serviceID, types.GetTenantID(ctx), types.StatusPublished)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ierr.WithError(err).
				WithHint("No agreement exists for this client and service").
				Mark(ierr.ErrNotFound)
		}
		return nil, ierr.WithError(err).
			WithHint("Failed to get service agreement").
			Mark(ierr.ErrDatabase)
	}

	r.cache.Set(ctx, key, &agr, 5*time.Minute)
	return &agr, nil
}

func (r *agreementRepository) ListByClient(ctx context.Context, clientID string) ([]*agreement.ServiceAgreement, error) {
	q := postgres.Querier(ctx, r.db.DB())
	agreements := make([]*agreement.ServiceAgreement, 0)
	err := sqlx.SelectContext(ctx, q, &agreements, `
		SELECT `+agreementColumns+` FROM service_agreements
		WHERE client_id = $1 AND tenant_id = $2 AND status = $3
		ORDER BY service_name ASC`,
		clientID, types.GetTenantID(ctx), types.StatusPublished)
	if err != nil {
		return nil, ierr.WithError(err).
			WithHint("Failed to list service agreements").
			Mark(ierr.ErrDatabase)
	}
	return agreements, nil
}

func (r *agreementRepository) Update(ctx context.Context, agr *agreement.ServiceAgreement) error {
	q := postgres.Querier(ctx, r.db.DB())
	result, err := sqlx.NamedExecContext(ctx, q, `
		UPDATE service_agreements SET
			rate = :rate, service_name = :service_name, unit_type = :unit_type,
			status = :status, updated_at = :updated_at, updated_by = :updated_by
		WHERE id = :id AND tenant_id = :tenant_id`,
		agr)
	if err != nil {
		return ierr.WithError(err).
			WithHint("Failed to update service agreement").
			Mark(ierr.ErrDatabase)
	}
	if affected, _ := result.RowsAffected(); affected == 0 {
		return ierr.NewErrorf("service agreement with ID %s was not found", agr.ID).
			WithHint("Service agreement does not exist").
			Mark(ierr.ErrNotFound)
	}

	r.cache.Delete(ctx, agreementCacheKey(ctx, agr.ClientID, agr.ServiceID))
	return nil
}

func (r *agreementRepository) Delete(ctx context.Context, id string) error {
	agr, err := r.Get(ctx, id)
	if err != nil {
		return err
	}

	q := postgres.Querier(ctx, r.db.DB())
	_, err = q.ExecContext(ctx, `
		UPDATE service_agreements SET status = $1, updated_at = $2, updated_by = $3
		WHERE id = $4 AND tenant_id = $5`,
		types.StatusDeleted, time.Now().UTC(), types.GetUserID(ctx),
		id, types.GetTenantID(ctx))
	if err != nil {
		return ierr.WithError(err).
			WithHint("Failed to delete service agreement").
			Mark(ierr.ErrDatabase)
	}

	r.cache.Delete(ctx, agreementCacheKey(ctx, agr.ClientID, agr.ServiceID))
	return nil
}

func agreementCacheKey(ctx context.Context, clientID, serviceID string) string {
	return cache.GenerateKey(cache.PrefixServiceAgreement, types.GetTenantID(ctx), clientID, serviceID)
}
