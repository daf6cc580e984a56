package service

import (
	"context"
	"time"

	"github.com/paybill/paybill/internal/api/dto"
	"github.com/paybill/paybill/internal/domain/agreement"
	"github.com/paybill/paybill/internal/domain/client"
	ierr "github.com/paybill/paybill/internal/errors"
	"github.com/paybill/paybill/internal/types"
	"github.com/samber/lo"
)

// ClientService manages clients, their service agreements and the shared
// service catalog
type ClientService interface {
	CreateClient(ctx context.Context, req dto.CreateClientRequest) (*dto.ClientResponse, error)
	GetClient(ctx context.Context, id string) (*dto.ClientResponse, error)
	UpdateClient(ctx context.Context, id string, req dto.UpdateClientRequest) (*dto.ClientResponse, error)
	DeleteClient(ctx context.Context, id string) error
	ListClients(ctx context.Context, filter *types.ClientFilter) (*dto.ListClientsResponse, error)

	// CreateServiceAgreement sets a client specific rate for a catalog
	// service, replacing any existing agreement for the same service
	CreateServiceAgreement(ctx context.Context, clientID string, req dto.CreateServiceAgreementRequest) (*dto.ServiceAgreementResponse, error)
	ListServiceAgreements(ctx context.Context, clientID string) ([]*dto.ServiceAgreementResponse, error)
	DeleteServiceAgreement(ctx context.Context, clientID, agreementID string) error

	CreateServiceDefinition(ctx context.Context, req dto.CreateServiceDefinitionRequest) (*dto.ServiceDefinitionResponse, error)
	ListServiceDefinitions(ctx context.Context) ([]*dto.ServiceDefinitionResponse, error)
}

type clientService struct {
	ServiceParams
}

func NewClientService(params ServiceParams) ClientService {
	return &clientService{
		ServiceParams: params,
	}
}

func (s *clientService) CreateClient(ctx context.Context, req dto.CreateClientRequest) (*dto.ClientResponse, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	currency := req.Currency
	if currency == "" {
		currency = s.Config.Billing.DefaultCurrency
	}

	cl := &client.Client{
		ID:           types.GenerateUUIDWithPrefix(types.UUID_PREFIX_CLIENT),
		Name:         req.Name,
		ABN:          req.ABN,
		ContactEmail: req.ContactEmail,
		Currency:     currency,
		PayFrequency: req.PayFrequency,
		Metadata:     req.Metadata,
		BaseModel:    types.GetDefaultBaseModel(ctx),
	}
	if err := cl.Validate(); err != nil {
		return nil, err
	}

	if err := s.ClientRepo.Create(ctx, cl); err != nil {
		return nil, err
	}
	return &dto.ClientResponse{Client: cl}, nil
}

func (s *clientService) GetClient(ctx context.Context, id string) (*dto.ClientResponse, error) {
	cl, err := s.ClientRepo.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	return &dto.ClientResponse{Client: cl}, nil
}

func (s *clientService) UpdateClient(ctx context.Context, id string, req dto.UpdateClientRequest) (*dto.ClientResponse, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	cl, err := s.ClientRepo.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	if req.Name != nil {
		cl.Name = *req.Name
	}
	if req.ABN != nil {
		cl.ABN = *req.ABN
	}
	if req.ContactEmail != nil {
		cl.ContactEmail = *req.ContactEmail
	}
	if req.PayFrequency != nil {
		cl.PayFrequency = *req.PayFrequency
	}
	if req.Metadata != nil {
		cl.Metadata = req.Metadata
	}
	cl.UpdatedAt = time.Now().UTC()
	cl.UpdatedBy = types.GetUserID(ctx)

	if err := cl.Validate(); err != nil {
		return nil, err
	}
	if err := s.ClientRepo.Update(ctx, cl); err != nil {
		return nil, err
	}
	return &dto.ClientResponse{Client: cl}, nil
}

func (s *clientService) DeleteClient(ctx context.Context, id string) error {
	unbilled, err := s.BillingItemRepo.Count(ctx, &types.BillingItemFilter{
		QueryFilter:  types.NoLimitQueryFilter,
		ClientID:     id,
		UnbilledOnly: true,
	})
	if err != nil {
		return err
	}
	if unbilled > 0 {
		return ierr.NewError("client has unbilled items").
			WithHint("Consolidate or remove the client's unbilled items first").
			WithReportableDetails(map[string]any{
				"unbilled_items": unbilled,
			}).
			Mark(ierr.ErrInvalidOperation)
	}
	return s.ClientRepo.Delete(ctx, id)
}

func (s *clientService) ListClients(ctx context.Context, filter *types.ClientFilter) (*dto.ListClientsResponse, error) {
	if filter == nil {
		filter = &types.ClientFilter{QueryFilter: types.DefaultQueryFilter}
	}
	if err := filter.Validate(); err != nil {
		return nil, err
	}

	clients, err := s.ClientRepo.List(ctx, filter)
	if err != nil {
		return nil, err
	}
	count, err := s.ClientRepo.Count(ctx, filter)
	if err != nil {
		return nil, err
	}

	responses := lo.Map(clients, func(cl *client.Client, _ int) *dto.ClientResponse {
		return &dto.ClientResponse{Client: cl}
	})
	response := types.NewListResponse(responses, count, filter.GetLimit(), filter.GetOffset())
	return &response, nil
}

func (s *clientService) CreateServiceAgreement(ctx context.Context, clientID string, req dto.CreateServiceAgreementRequest) (*dto.ServiceAgreementResponse, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	cl, err := s.ClientRepo.Get(ctx, clientID)
	if err != nil {
		return nil, err
	}
	def, err := s.CatalogRepo.Get(ctx, req.ServiceID)
	if err != nil {
		return nil, err
	}

	existing, err := s.AgreementRepo.GetByClientAndService(ctx, cl.ID, def.ID)
	if err != nil && !ierr.IsNotFound(err) {
		return nil, err
	}
	if existing != nil {
		existing.Rate = req.Rate
		existing.UpdatedAt = time.Now().UTC()
		existing.UpdatedBy = types.GetUserID(ctx)
		if err := s.AgreementRepo.Update(ctx, existing); err != nil {
			return nil, err
		}
		return &dto.ServiceAgreementResponse{ServiceAgreement: existing}, nil
	}

	agr := &agreement.ServiceAgreement{
		ID:          types.GenerateUUIDWithPrefix(types.UUID_PREFIX_SERVICE_AGREEMENT),
		ClientID:    cl.ID,
		ServiceID:   def.ID,
		ServiceName: def.Name,
		UnitType:    def.UnitType,
		Rate:        req.Rate,
		BaseModel:   types.GetDefaultBaseModel(ctx),
	}
	if err := agr.Validate(); err != nil {
		return nil, err
	}
	if err := s.AgreementRepo.Create(ctx, agr); err != nil {
		return nil, err
	}
	return &dto.ServiceAgreementResponse{ServiceAgreement: agr}, nil
}

func (s *clientService) ListServiceAgreements(ctx context.Context, clientID string) ([]*dto.ServiceAgreementResponse, error) {
	agreements, err := s.AgreementRepo.ListByClient(ctx, clientID)
	if err != nil {
		return nil, err
	}
	return lo.Map(agreements, func(agr *agreement.ServiceAgreement, _ int) *dto.ServiceAgreementResponse {
		return &dto.ServiceAgreementResponse{ServiceAgreement: agr}
	}), nil
}

func (s *clientService) DeleteServiceAgreement(ctx context.Context, clientID, agreementID string) error {
	agr, err := s.AgreementRepo.Get(ctx, agreementID)
	if err != nil {
		return err
	}
	if agr.ClientID != clientID {
		return ierr.NewError("agreement does not belong to client").
			WithHint("Agreement belongs to a different client").
			Mark(ierr.ErrPermissionDenied)
	}
	return s.AgreementRepo.Delete(ctx, agreementID)
}

func (s *clientService) CreateServiceDefinition(ctx context.Context, req dto.CreateServiceDefinitionRequest) (*dto.ServiceDefinitionResponse, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	def := &agreement.ServiceDefinition{
		ID:        types.GenerateShortIDWithPrefix("svc"),
		Name:      req.Name,
		UnitType:  req.UnitType,
		BaseRate:  req.BaseRate,
		BaseModel: types.GetDefaultBaseModel(ctx),
	}
	if err := def.Validate(); err != nil {
		return nil, err
	}
	if err := s.CatalogRepo.Create(ctx, def); err != nil {
		return nil, err
	}
	return &dto.ServiceDefinitionResponse{ServiceDefinition: def}, nil
}

func (s *clientService) ListServiceDefinitions(ctx context.Context) ([]*dto.ServiceDefinitionResponse, error) {
	defs, err := s.CatalogRepo.List(ctx)
	if err != nil {
		return nil, err
	}
	return lo.Map(defs, func(def *agreement.ServiceDefinition, _ int) *dto.ServiceDefinitionResponse {
		return &dto.ServiceDefinitionResponse{ServiceDefinition: def}
	}), nil
}
