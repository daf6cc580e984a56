package service

import (
	"github.com/paybill/paybill/internal/config"
	"github.com/paybill/paybill/internal/domain/agreement"
	"github.com/paybill/paybill/internal/domain/billingitem"
	"github.com/paybill/paybill/internal/domain/client"
	"github.com/paybill/paybill/internal/domain/invoice"
	"github.com/paybill/paybill/internal/domain/payroll"
	"github.com/paybill/paybill/internal/logger"
	"github.com/paybill/paybill/internal/postgres"
	"github.com/paybill/paybill/internal/publisher"
)

// ServiceParams holds common dependencies for services
type ServiceParams struct {
	Logger *logger.Logger
	Config *config.Configuration
	DB     postgres.IClient

	EventPublisher publisher.EventPublisher

	// Repositories
	ClientRepo      client.Repository
	AgreementRepo   agreement.Repository
	CatalogRepo     agreement.CatalogRepository
	BillingItemRepo billingitem.Repository
	InvoiceRepo     invoice.Repository
	PayrollRepo     payroll.Repository
}

// NewServiceParams creates a new ServiceParams instance for fx injection
func NewServiceParams(
	logger *logger.Logger,
	config *config.Configuration,
	db postgres.IClient,
	eventPublisher publisher.EventPublisher,
	clientRepo client.Repository,
	agreementRepo agreement.Repository,
	catalogRepo agreement.CatalogRepository,
	billingItemRepo billingitem.Repository,
	invoiceRepo invoice.Repository,
	payrollRepo payroll.Repository,
) ServiceParams {
	return ServiceParams{
		Logger:          logger,
		Config:          config,
		DB:              db,
		EventPublisher:  eventPublisher,
		ClientRepo:      clientRepo,
		AgreementRepo:   agreementRepo,
		CatalogRepo:     catalogRepo,
		BillingItemRepo: billingItemRepo,
		InvoiceRepo:     invoiceRepo,
		PayrollRepo:     payrollRepo,
	}
}
