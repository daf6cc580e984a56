package repository

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/paybill/paybill/internal/domain/agreement"
	ierr "github.com/paybill/paybill/internal/errors"
	"github.com/paybill/paybill/internal/logger"
	"github.com/paybill/paybill/internal/postgres"
	"github.com/paybill/paybill/internal/types"
)

type catalogRepository struct {
	db     postgres.IClient
	logger *logger.Logger
}

func NewCatalogRepository(db postgres.IClient, log *logger.Logger) agreement.CatalogRepository {
	return &catalogRepository{db: db, logger: log}
}

const catalogColumns = `id, name, unit_type, base_rate,
	tenant_id, status, created_at, updated_at, created_by, updated_by`

func (r *catalogRepository) Create(ctx context.Context, def *agreement.ServiceDefinition) error {
	q := postgres.Querier(ctx, r.db.DB())
	_, err := sqlx.NamedExecContext(ctx, q, `
		INSERT INTO service_definitions (`+catalogColumns+`)
		VALUES (:id, :name, :unit_type, :base_rate,
			:tenant_id, :status, :created_at, :updated_at, :created_by, :updated_by)`,
		def)
	if err != nil {
		if isUniqueViolation(err) {
			return ierr.WithError(err).
				WithHint("A service with this ID already exists").
				Mark(ierr.ErrAlreadyExists)
		}
		return ierr.WithError(err).
			WithHint("Failed to create service definition").
			Mark(ierr.ErrDatabase)
	}
	return nil
}

func (r *catalogRepository) Get(ctx context.Context, id string) (*agreement.ServiceDefinition, error) {
	q := postgres.Querier(ctx, r.db.DB())
	var def agreement.ServiceDefinition
	err := sqlx.GetContext(ctx, q, &def, `
		SELECT `+catalogColumns+` FROM service_definitions
		WHERE id = $1 AND tenant_id = $2 AND status != $3`,
		id, types.GetTenantID(ctx), types.StatusDeleted)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ierr.WithError(err).
				WithHintf("Service with ID %s was not found", id).
				Mark(ierr.ErrNotFound)
		}
		return nil, ierr.WithError(err).
			WithHint("Failed to get service definition").
			Mark(ierr.ErrDatabase)
	}
	return &def, nil
}

func (r *catalogRepository) List(ctx context.Context) ([]*agreement.ServiceDefinition, error) {
	q := postgres.Querier(ctx, r.db.DB())
	defs := make([]*agreement.ServiceDefinition, 0)
	err := sqlx.SelectContext(ctx, q, &defs, `
		SELECT `+catalogColumns+` FROM service_definitions
		WHERE tenant_id = $1 AND status = $2
		ORDER BY name ASC`,
		types.GetTenantID(ctx), types.StatusPublished)
	if err != nil {
		return nil, ierr.WithError(err).
			WithHint("Failed to list service definitions").
			Mark(ierr.ErrDatabase)
	}
	return defs, nil
}

func (r *catalogRepository) Update(ctx context.Context, def *agreement.ServiceDefinition) error {
	q := postgres.Querier(ctx, r.db.DB())
	result, err := sqlx.NamedExecContext(ctx, q, `
		UPDATE service_definitions SET
			name = :name, unit_type = :unit_type, base_rate = :base_rate,
			status = :status, updated_at = :updated_at, updated_by = :updated_by
		WHERE id = :id AND tenant_id = :tenant_id`,
		def)
	if err != nil {
		return ierr.WithError(err).
			WithHint("Failed to update service definition").
			Mark(ierr.ErrDatabase)
	}
	if affected, _ := result.RowsAffected(); affected == 0 {
		return ierr.NewErrorf("service with ID %s was not found", def.ID).
			WithHint("Service does not exist").
			Mark(ierr.ErrNotFound)
	}
	return nil
}

func (r *catalogRepository) Delete(ctx context.Context, id string) error {
	q := postgres.Querier(ctx, r.db.DB())
	result, err := q.ExecContext(ctx, `
		UPDATE service_definitions SET status = $1, updated_at = $2, updated_by = $3
		WHERE id = $4 AND tenant_id = $5 AND status != $1`,
		types.StatusDeleted, time.Now().UTC(), types.GetUserID(ctx),
		id, types.GetTenantID(ctx))
	if err != nil {
		return ierr.WithError(err).
			WithHint("Failed to delete service definition").
			Mark(ierr.ErrDatabase)
	}
	if affected, _ := result.RowsAffected(); affected == 0 {
		return ierr.NewErrorf("service with ID %s was not found", id).
			WithHint("Service does not exist").
			Mark(ierr.ErrNotFound)
	}
	return nil
}
