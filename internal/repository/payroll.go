package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/jmoiron/sqlx"
	"github.com/paybill/paybill/internal/domain/payroll"
	ierr "github.com/paybill/paybill/internal/errors"
	"github.com/paybill/paybill/internal/logger"
	"github.com/paybill/paybill/internal/postgres"
	"github.com/paybill/paybill/internal/types"
)

type payrollRepository struct {
	db     postgres.IClient
	logger *logger.Logger
}

func NewPayrollRepository(db postgres.IClient, log *logger.Logger) payroll.Repository {
	return &payrollRepository{db: db, logger: log}
}

const payrollColumns = `id, client_id, billing_period_id, pay_date,
	employee_count, payslip_count, run_status,
	tenant_id, status, created_at, updated_at, created_by, updated_by`

func (r *payrollRepository) Create(ctx context.Context, run *payroll.PayrollRun) error {
	q := postgres.Querier(ctx, r.db.DB())
	_, err := sqlx.NamedExecContext(ctx, q, `
		INSERT INTO payroll_runs (`+payrollColumns+`)
		VALUES (:id, :client_id, :billing_period_id, :pay_date,
			:employee_count, :payslip_count, :run_status,
			:tenant_id, :status, :created_at, :updated_at, :created_by, :updated_by)`,
		run)
	if err != nil {
		return ierr.WithError(err).
			WithHint("Failed to create payroll run").
			Mark(ierr.ErrDatabase)
	}
	return nil
}

func (r *payrollRepository) Get(ctx context.Context, id string) (*payroll.PayrollRun, error) {
	q := postgres.Querier(ctx, r.db.DB())
	var run payroll.PayrollRun
	err := sqlx.GetContext(ctx, q, &run, `
		SELECT `+payrollColumns+` FROM payroll_runs
		WHERE id = $1 AND tenant_id = $2 AND status != $3`,
		id, types.GetTenantID(ctx), types.StatusDeleted)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ierr.WithError(err).
				WithHintf("Payroll run with ID %s was not found", id).
				Mark(ierr.ErrNotFound)
		}
		return nil, ierr.WithError(err).
			WithHint("Failed to get payroll run").
			Mark(ierr.ErrDatabase)
	}
	return &run, nil
}

func (r *payrollRepository) Update(ctx context.Context, run *payroll.PayrollRun) error {
	q := postgres.Querier(ctx, r.db.DB())
	result, err := sqlx.NamedExecContext(ctx, q, `
		UPDATE payroll_runs SET
			pay_date = :pay_date, employee_count = :employee_count,
			payslip_count = :payslip_count, run_status = :run_status,
			status = :status, updated_at = :updated_at, updated_by = :updated_by
		WHERE id = :id AND tenant_id = :tenant_id`,
		run)
	if err != nil {
		return ierr.WithError(err).
			WithHint("Failed to update payroll run").
			Mark(ierr.ErrDatabase)
	}
	if affected, _ := result.RowsAffected(); affected == 0 {
		return ierr.NewErrorf("payroll run with ID %s was not found", run.ID).
			WithHint("Payroll run does not exist").
			Mark(ierr.ErrNotFound)
	}
	return nil
}

func (r *payrollRepository) List(ctx context.Context, filter *types.PayrollRunFilter) ([]*payroll.PayrollRun, error) {
	query, args := r.buildListQuery(ctx, filter, `SELECT `+payrollColumns+` FROM payroll_runs`, true)

	q := postgres.Querier(ctx, r.db.DB())
	runs := make([]*payroll.PayrollRun, 0)
	if err := sqlx.SelectContext(ctx, q, &runs, query, args...); err != nil {
		return nil, ierr.WithError(err).
			WithHint("Failed to list payroll runs").
			Mark(ierr.ErrDatabase)
	}
	return runs, nil
}

func (r *payrollRepository) Count(ctx context.Context, filter *types.PayrollRunFilter) (int, error) {
	query, args := r.buildListQuery(ctx, filter, `SELECT COUNT(*) FROM payroll_runs`, false)

	q := postgres.Querier(ctx, r.db.DB())
	var count int
	if err := sqlx.GetContext(ctx, q, &count, query, args...); err != nil {
		return 0, ierr.WithError(err).
			WithHint("Failed to count payroll runs").
			Mark(ierr.ErrDatabase)
	}
	return count, nil
}

func (r *payrollRepository) CountByClientAndPeriod(ctx context.Context, clientID, billingPeriodID string) (int, error) {
	q := postgres.Querier(ctx, r.db.DB())
	var count int
	err := sqlx.GetContext(ctx, q, &count, `
		SELECT COUNT(*) FROM payroll_runs
		WHERE client_id = $1 AND billing_period_id = $2
			AND run_status = $3 AND tenant_id = $4 AND status = $5`,
		clientID, billingPeriodID, types.PayrollRunStatusCompleted,
		types.GetTenantID(ctx), types.StatusPublished)
	if err != nil {
		return 0, ierr.WithError(err).
			WithHint("Failed to count payroll runs").
			Mark(ierr.ErrDatabase)
	}
	return count, nil
}

func (r *payrollRepository) buildListQuery(ctx context.Context, filter *types.PayrollRunFilter, base string, paginate bool) (string, []any) {
	qb := newQueryBuilder(base)
	qb.Where("tenant_id = ?", types.GetTenantID(ctx))
	qb.Where("status = ?", filter.GetStatus())
	if filter.ClientID != "" {
		qb.Where("client_id = ?", filter.ClientID)
	}
	if filter.BillingPeriodID != "" {
		qb.Where("billing_period_id = ?", filter.BillingPeriodID)
	}
	if paginate {
		qb.OrderBy(filter.GetSort(), filter.GetOrder())
		if !filter.IsUnlimited() {
			qb.Paginate(filter.GetLimit(), filter.GetOffset())
		}
	}
	return qb.Build()
}
