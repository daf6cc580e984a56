package service

import (
	"context"
	"time"

	"github.com/paybill/paybill/internal/api/dto"
	"github.com/paybill/paybill/internal/domain/payroll"
	"github.com/paybill/paybill/internal/types"
	"github.com/samber/lo"
)

const defaultScheduleLength = 6

// PayrollService records payroll runs and derives upcoming pay schedules
type PayrollService interface {
	// CreatePayrollRun records a completed payroll execution
	CreatePayrollRun(ctx context.Context, req dto.CreatePayrollRunRequest) (*dto.PayrollRunResponse, error)

	// GetPayrollRun retrieves a payroll run by ID
	GetPayrollRun(ctx context.Context, id string) (*dto.PayrollRunResponse, error)

	// ListPayrollRuns retrieves payroll runs matching the filter
	ListPayrollRuns(ctx context.Context, filter *types.PayrollRunFilter) (*dto.ListPayrollRunsResponse, error)

	// GetSchedule derives a client's upcoming pay dates from their pay
	// frequency and most recent run
	GetSchedule(ctx context.Context, clientID string, count int) (*dto.PayScheduleResponse, error)
}

type payrollService struct {
	ServiceParams
}

func NewPayrollService(params ServiceParams) PayrollService {
	return &payrollService{
		ServiceParams: params,
	}
}

func (s *payrollService) CreatePayrollRun(ctx context.Context, req dto.CreatePayrollRunRequest) (*dto.PayrollRunResponse, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	if _, err := s.ClientRepo.Get(ctx, req.ClientID); err != nil {
		return nil, err
	}

	run := &payroll.PayrollRun{
		ID:              types.GenerateUUIDWithPrefix(types.UUID_PREFIX_PAYROLL_RUN),
		ClientID:        req.ClientID,
		BillingPeriodID: req.BillingPeriodID,
		PayDate:         req.PayDate.UTC(),
		EmployeeCount:   req.EmployeeCount,
		PayslipCount:    req.PayslipCount,
		RunStatus:       types.PayrollRunStatusCompleted,
		BaseModel:       types.GetDefaultBaseModel(ctx),
	}
	if err := run.Validate(); err != nil {
		return nil, err
	}

	if err := s.PayrollRepo.Create(ctx, run); err != nil {
		return nil, err
	}
	return &dto.PayrollRunResponse{PayrollRun: run}, nil
}

func (s *payrollService) GetPayrollRun(ctx context.Context, id string) (*dto.PayrollRunResponse, error) {
	run, err := s.PayrollRepo.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	return &dto.PayrollRunResponse{PayrollRun: run}, nil
}

func (s *payrollService) ListPayrollRuns(ctx context.Context, filter *types.PayrollRunFilter) (*dto.ListPayrollRunsResponse, error) {
	if filter == nil {
		filter = &types.PayrollRunFilter{QueryFilter: types.DefaultQueryFilter}
	}
	if err := filter.Validate(); err != nil {
		return nil, err
	}

	runs, err := s.PayrollRepo.List(ctx, filter)
	if err != nil {
		return nil, err
	}
	count, err := s.PayrollRepo.Count(ctx, filter)
	if err != nil {
		return nil, err
	}

	responses := lo.Map(runs, func(run *payroll.PayrollRun, _ int) *dto.PayrollRunResponse {
		return &dto.PayrollRunResponse{PayrollRun: run}
	})
	response := types.NewListResponse(responses, count, filter.GetLimit(), filter.GetOffset())
	return &response, nil
}

func (s *payrollService) GetSchedule(ctx context.Context, clientID string, count int) (*dto.PayScheduleResponse, error) {
	if count <= 0 {
		count = defaultScheduleLength
	}

	cl, err := s.ClientRepo.Get(ctx, clientID)
	if err != nil {
		return nil, err
	}

	// anchor on the most recent run when one exists, otherwise today
	anchor := time.Now().UTC()
	filter := &types.PayrollRunFilter{
		QueryFilter: types.QueryFilter{
			Limit:  lo.ToPtr(1),
			Sort:   lo.ToPtr("pay_date"),
			Order:  lo.ToPtr("desc"),
			Status: lo.ToPtr(types.StatusPublished),
		},
		ClientID: clientID,
	}
	runs, err := s.PayrollRepo.List(ctx, filter)
	if err != nil {
		return nil, err
	}
	if len(runs) > 0 {
		anchor = runs[0].PayDate
	}

	dates := payroll.NextPayDates(anchor, cl.PayFrequency, count)
	return dto.NewPayScheduleResponse(clientID, cl.PayFrequency, dates), nil
}
