package service

import (
	"testing"

	"github.com/paybill/paybill/internal/api/dto"
	"github.com/paybill/paybill/internal/domain/billingitem"
	ierr "github.com/paybill/paybill/internal/errors"
	"github.com/paybill/paybill/internal/testutil"
	"github.com/paybill/paybill/internal/types"
	"github.com/samber/lo"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/suite"
)

type ClientServiceSuite struct {
	testutil.BaseServiceTestSuite
	service ClientService
}

func TestClientService(t *testing.T) {
	suite.Run(t, new(ClientServiceSuite))
}

func (s *ClientServiceSuite) SetupTest() {
	s.BaseServiceTestSuite.SetupTest()
	s.service = NewClientService(ServiceParams{
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

func (s *ClientServiceSuite) createClient(name string) *dto.ClientResponse {
	resp, err := s.service.CreateClient(s.GetContext(), dto.CreateClientRequest{
		Name:         name,
		PayFrequency: types.PayFrequencyMonthly,
	})
	s.NoError(err)
	return resp
}

func (s *ClientServiceSuite) createService(name string, unitType types.UnitType, rate int64) *dto.ServiceDefinitionResponse {
	resp, err := s.service.CreateServiceDefinition(s.GetContext(), dto.CreateServiceDefinitionRequest{
		Name:     name,
		UnitType: unitType,
		BaseRate: decimal.NewFromInt(rate),
	})
	s.NoError(err)
	return resp
}

func (s *ClientServiceSuite) TestCreateClientDefaultsCurrency() {
	created := s.createClient("Acme Payroll Pty Ltd")
	s.Equal("AUD", created.Currency)
	s.NotEmpty(created.ID)

	fetched, err := s.service.GetClient(s.GetContext(), created.ID)
	s.NoError(err)
	s.Equal("Acme Payroll Pty Ltd", fetched.Name)
}

func (s *ClientServiceSuite) TestCreateClientRequiresName() {
	_, err := s.service.CreateClient(s.GetContext(), dto.CreateClientRequest{
		PayFrequency: types.PayFrequencyWeekly,
	})
	s.Error(err)
}

func (s *ClientServiceSuite) TestUpdateClient() {
	created := s.createClient("Acme Payroll Pty Ltd")

	updated, err := s.service.UpdateClient(s.GetContext(), created.ID, dto.UpdateClientRequest{
		Name:         lo.ToPtr("Acme Group Pty Ltd"),
		PayFrequency: lo.ToPtr(types.PayFrequencyFortnightly),
	})
	s.NoError(err)
	s.Equal("Acme Group Pty Ltd", updated.Name)
	s.Equal(types.PayFrequencyFortnightly, updated.PayFrequency)
}

func (s *ClientServiceSuite) TestDeleteClientBlockedByUnbilledItems() {
	ctx := s.GetContext()
	created := s.createClient("Acme Payroll Pty Ltd")

	item := &billingitem.BillingItem{
		ID:              "item-1",
		ClientID:        created.ID,
		BillingPeriodID: "2026-08",
		ServiceID:       "svc-time",
		ServiceName:     "Payroll Processing",
		UnitType:        types.UnitTypeTime,
		Quantity:        decimal.NewFromInt(1),
		UnitPrice:       decimal.NewFromInt(100),
		Amount:          decimal.NewFromInt(100),
		Approved:        true,
		ServiceDate:     s.GetNow(),
		BaseModel:       types.GetDefaultBaseModel(ctx),
	}
	s.NoError(s.GetStores().BillingItemRepo.Create(ctx, item))

	err := s.service.DeleteClient(ctx, created.ID)
	s.Error(err)
	s.True(ierr.IsInvalidOperation(err))

	// once the item is invoiced the client can go
	s.NoError(s.GetStores().BillingItemRepo.AttachToInvoice(ctx, []string{item.ID}, "inv-1"))
	s.NoError(s.service.DeleteClient(ctx, created.ID))

	_, err = s.service.GetClient(ctx, created.ID)
	s.Error(err)
	s.True(ierr.IsNotFound(err))
}

func (s *ClientServiceSuite) TestCreateServiceAgreementReplacesExisting() {
	ctx := s.GetContext()
	cl := s.createClient("Acme Payroll Pty Ltd")
	def := s.createService("Payroll Processing", types.UnitTypeTime, 100)

	first, err := s.service.CreateServiceAgreement(ctx, cl.ID, dto.CreateServiceAgreementRequest{
		ServiceID: def.ID,
		Rate:      decimal.NewFromInt(150),
	})
	s.NoError(err)
	s.True(first.Rate.Equal(decimal.NewFromInt(150)))

	// setting a new rate for the same service updates in place
	second, err := s.service.CreateServiceAgreement(ctx, cl.ID, dto.CreateServiceAgreementRequest{
		ServiceID: def.ID,
		Rate:      decimal.NewFromInt(175),
	})
	s.NoError(err)
	s.Equal(first.ID, second.ID)
	s.True(second.Rate.Equal(decimal.NewFromInt(175)))

	agreements, err := s.service.ListServiceAgreements(ctx, cl.ID)
	s.NoError(err)
	s.Len(agreements, 1)
}

func (s *ClientServiceSuite) TestDeleteServiceAgreementChecksOwnership() {
	ctx := s.GetContext()
	owner := s.createClient("Acme Payroll Pty Ltd")
	other := s.createClient("Bunya Holdings")
	def := s.createService("Payroll Processing", types.UnitTypeTime, 100)

	agr, err := s.service.CreateServiceAgreement(ctx, owner.ID, dto.CreateServiceAgreementRequest{
		ServiceID: def.ID,
		Rate:      decimal.NewFromInt(150),
	})
	s.NoError(err)

	err = s.service.DeleteServiceAgreement(ctx, other.ID, agr.ID)
	s.Error(err)

	s.NoError(s.service.DeleteServiceAgreement(ctx, owner.ID, agr.ID))
}

func (s *ClientServiceSuite) TestListServiceDefinitions() {
	s.createService("Payroll Processing", types.UnitTypeTime, 100)
	s.createService("Monthly Admin Fee", types.UnitTypeFixed, 200)

	defs, err := s.service.ListServiceDefinitions(s.GetContext())
	s.NoError(err)
	s.Len(defs, 2)
}
