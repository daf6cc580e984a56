package dto

import (
	"github.com/paybill/paybill/internal/domain/agreement"
	"github.com/paybill/paybill/internal/domain/client"
	"github.com/paybill/paybill/internal/types"
	"github.com/paybill/paybill/internal/validator"
	"github.com/shopspring/decimal"
)

// CreateClientRequest registers a new payroll client
type CreateClientRequest struct {
	Name         string             `json:"name" validate:"required"`
	ABN          string             `json:"abn,omitempty"`
	ContactEmail string             `json:"contact_email,omitempty" validate:"omitempty,email"`
	Currency     string             `json:"currency,omitempty" validate:"omitempty,len=3"`
	PayFrequency types.PayFrequency `json:"pay_frequency" validate:"required"`
	Metadata     types.Metadata     `json:"metadata,omitempty"`
}

func (r *CreateClientRequest) Validate() error {
	if err := validator.ValidateRequest(r); err != nil {
		return err
	}
	return r.PayFrequency.Validate()
}

// UpdateClientRequest updates mutable client fields
type UpdateClientRequest struct {
	Name         *string             `json:"name,omitempty"`
	ABN          *string             `json:"abn,omitempty"`
	ContactEmail *string             `json:"contact_email,omitempty" validate:"omitempty,email"`
	PayFrequency *types.PayFrequency `json:"pay_frequency,omitempty"`
	Metadata     types.Metadata      `json:"metadata,omitempty"`
}

func (r *UpdateClientRequest) Validate() error {
	if err := validator.ValidateRequest(r); err != nil {
		return err
	}
	if r.PayFrequency != nil {
		return r.PayFrequency.Validate()
	}
	return nil
}

// ClientResponse is the API shape of a client
type ClientResponse struct {
	*client.Client
}

// ListClientsResponse is a paginated client list
type ListClientsResponse = types.ListResponse[*ClientResponse]

// CreateServiceAgreementRequest sets a client specific rate for a service
type CreateServiceAgreementRequest struct {
	ServiceID string          `json:"service_id" validate:"required"`
	Rate      decimal.Decimal `json:"rate"`
}

func (r *CreateServiceAgreementRequest) Validate() error {
	return validator.ValidateRequest(r)
}

// ServiceAgreementResponse is the API shape of a service agreement
type ServiceAgreementResponse struct {
	*agreement.ServiceAgreement
}

// CreateServiceDefinitionRequest adds a service to the billing catalog
type CreateServiceDefinitionRequest struct {
	Name     string          `json:"name" validate:"required"`
	UnitType types.UnitType  `json:"unit_type" validate:"required"`
	BaseRate decimal.Decimal `json:"base_rate"`
}

func (r *CreateServiceDefinitionRequest) Validate() error {
	if err := validator.ValidateRequest(r); err != nil {
		return err
	}
	return r.UnitType.Validate()
}

// ServiceDefinitionResponse is the API shape of a catalog service
type ServiceDefinitionResponse struct {
	*agreement.ServiceDefinition
}
