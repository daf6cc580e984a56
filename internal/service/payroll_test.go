package service

import (
	"testing"
	"time"

	"github.com/paybill/paybill/internal/api/dto"
	"github.com/paybill/paybill/internal/domain/client"
	ierr "github.com/paybill/paybill/internal/errors"
	"github.com/paybill/paybill/internal/testutil"
	"github.com/paybill/paybill/internal/types"
	"github.com/stretchr/testify/suite"
)

type PayrollServiceSuite struct {
	testutil.BaseServiceTestSuite
	service PayrollService
}

func TestPayrollService(t *testing.T) {
	suite.Run(t, new(PayrollServiceSuite))
}

func (s *PayrollServiceSuite) SetupTest() {
	s.BaseServiceTestSuite.SetupTest()
	s.service = NewPayrollService(ServiceParams{
		Logger:          s.GetLogger(),
		Config:          s.GetConfig(),
		DB:              s.GetDB(),
		EventPublisher:  s.GetPublisher(),
		ClientRepo:      s.GetStores().ClientRepo,
		AgreementRepo:   s.GetStores().AgreementRepo,
		CatalogRepo:     s.GetStores().CatalogRepo,
		BillingItemRepo: s.GetStores().BillingItemRepo,
		InvoiceRepo:     s.GetStores().InvoiceRepo,
		PayrollRepo:     s.GetStores().PayrollRepo,
	})
}

func (s *PayrollServiceSuite) createClient(id string, frequency types.PayFrequency) {
	s.NoError(s.GetStores().ClientRepo.Create(s.GetContext(), &client.Client{
		ID:           id,
		Name:         "Acme Payroll Pty Ltd",
		Currency:     "AUD",
		PayFrequency: frequency,
		BaseModel:    types.GetDefaultBaseModel(s.GetContext()),
	}))
}

func (s *PayrollServiceSuite) createRun(clientID string, payDate time.Time) *dto.PayrollRunResponse {
	resp, err := s.service.CreatePayrollRun(s.GetContext(), dto.CreatePayrollRunRequest{
		ClientID:        clientID,
		BillingPeriodID: "2026-08",
		PayDate:         payDate,
		EmployeeCount:   12,
		PayslipCount:    12,
	})
	s.NoError(err)
	return resp
}

func (s *PayrollServiceSuite) TestCreatePayrollRun() {
	s.createClient("client-1", types.PayFrequencyMonthly)

	run := s.createRun("client-1", time.Date(2026, 8, 15, 0, 0, 0, 0, time.UTC))
	s.NotEmpty(run.ID)
	s.Equal(types.PayrollRunStatusCompleted, run.RunStatus)
	s.Equal(12, run.PayslipCount)

	fetched, err := s.service.GetPayrollRun(s.GetContext(), run.ID)
	s.NoError(err)
	s.Equal("client-1", fetched.ClientID)
}

func (s *PayrollServiceSuite) TestCreatePayrollRunUnknownClient() {
	_, err := s.service.CreatePayrollRun(s.GetContext(), dto.CreatePayrollRunRequest{
		ClientID:        "missing",
		BillingPeriodID: "2026-08",
		PayDate:         time.Date(2026, 8, 15, 0, 0, 0, 0, time.UTC),
	})
	s.Error(err)
	s.True(ierr.IsNotFound(err))
}

func (s *PayrollServiceSuite) TestListPayrollRunsByClient() {
	s.createClient("client-1", types.PayFrequencyWeekly)
	s.createClient("client-2", types.PayFrequencyWeekly)
	s.createRun("client-1", time.Date(2026, 8, 7, 0, 0, 0, 0, time.UTC))
	s.createRun("client-1", time.Date(2026, 8, 14, 0, 0, 0, 0, time.UTC))
	s.createRun("client-2", time.Date(2026, 8, 14, 0, 0, 0, 0, time.UTC))

	resp, err := s.service.ListPayrollRuns(s.GetContext(), &types.PayrollRunFilter{
		QueryFilter: types.DefaultQueryFilter,
		ClientID:    "client-1",
	})
	s.NoError(err)
	s.Equal(2, resp.Pagination.Total)
}

func (s *PayrollServiceSuite) TestScheduleWithoutRunsAnchorsOnToday() {
	s.createClient("client-1", types.PayFrequencyMonthly)

	resp, err := s.service.GetSchedule(s.GetContext(), "client-1", 0)
	s.NoError(err)
	s.Equal(types.PayFrequencyMonthly, resp.PayFrequency)
	s.Len(resp.PayDates, defaultScheduleLength)

	// first date falls roughly a month out from now
	s.WithinDuration(time.Now().UTC().AddDate(0, 1, 0), resp.PayDates[0], 72*time.Hour)
}

func (s *PayrollServiceSuite) TestScheduleAnchorsOnLatestRun() {
	s.createClient("client-1", types.PayFrequencyFortnightly)
	s.createRun("client-1", time.Date(2026, 8, 1, 0, 0, 0, 0, time.UTC))
	s.createRun("client-1", time.Date(2026, 8, 15, 0, 0, 0, 0, time.UTC))

	resp, err := s.service.GetSchedule(s.GetContext(), "client-1", 3)
	s.NoError(err)
	s.Len(resp.PayDates, 3)
	s.Equal(time.Date(2026, 8, 29, 0, 0, 0, 0, time.UTC), resp.PayDates[0])
	s.Equal(time.Date(2026, 9, 12, 0, 0, 0, 0, time.UTC), resp.PayDates[1])
	s.Equal(time.Date(2026, 9, 26, 0, 0, 0, 0, time.UTC), resp.PayDates[2])
}

func (s *PayrollServiceSuite) TestScheduleUnknownClient() {
	_, err := s.service.GetSchedule(s.GetContext(), "missing", 4)
	s.Error(err)
	s.True(ierr.IsNotFound(err))
}
