package main

import (
	"context"
	"time"

	"github.com/gin-gonic/gin"
	govalidator "github.com/go-playground/validator/v10"
	"github.com/paybill/paybill/internal/api"
	v1 "github.com/paybill/paybill/internal/api/v1"
	"github.com/paybill/paybill/internal/cache"
	"github.com/paybill/paybill/internal/config"
	"github.com/paybill/paybill/internal/logger"
	"github.com/paybill/paybill/internal/postgres"
	"github.com/paybill/paybill/internal/publisher"
	"github.com/paybill/paybill/internal/repository"
	"github.com/paybill/paybill/internal/sentry"
	"github.com/paybill/paybill/internal/service"
	"github.com/paybill/paybill/internal/validator"
	"go.uber.org/fx"
)

// @title PayBill API
// @version 1.0
// @description Billing and consolidation service for payroll providers
// @BasePath /v1
// @schemes http https

func init() {
	// Keep all timestamps in UTC across the application
	time.Local = time.UTC
}

func main() {
	app := fx.New(
		fx.Provide(
			validator.NewValidator,
			config.NewConfig,
			logger.NewLogger,
			sentry.NewSentryService,
			provideCache,
			postgres.NewClient,
			publisher.NewEventPublisher,
			publisher.NewEventListener,

			// Repositories
			repository.NewClientRepository,
			repository.NewAgreementRepository,
			repository.NewCatalogRepository,
			repository.NewBillingItemRepository,
			repository.NewInvoiceRepository,
			repository.NewPayrollRepository,

			// Services
			service.NewServiceParams,
			service.NewBillingService,
			service.NewConsolidationService,
			service.NewInvoiceService,
			service.NewClientService,
			service.NewPayrollService,

			provideHandlers,
			provideRouter,
		),
		fx.Invoke(
			forceValidatorInit,
			sentry.RegisterHooks,
			startServer,
		),
	)

	app.Run()
}

func provideCache(log *logger.Logger) cache.Cache {
	return cache.Initialize(log)
}

// fx instantiates constructors lazily; the request validator must exist
// before the first request binds
func forceValidatorInit(_ *govalidator.Validate) {}

func provideHandlers(
	logger *logger.Logger,
	db postgres.IClient,
	billingService service.BillingService,
	consolidationService service.ConsolidationService,
	invoiceService service.InvoiceService,
	clientService service.ClientService,
	payrollService service.PayrollService,
) api.Handlers {
	return api.Handlers{
		Health:        v1.NewHealthHandler(db, logger),
		Billing:       v1.NewBillingHandler(billingService, logger),
		Consolidation: v1.NewConsolidationHandler(consolidationService, logger),
		Invoice:       v1.NewInvoiceHandler(invoiceService, logger),
		Client:        v1.NewClientHandler(clientService, logger),
		Payroll:       v1.NewPayrollHandler(payrollService, logger),
	}
}

func provideRouter(handlers api.Handlers, cfg *config.Configuration) *gin.Engine {
	return api.NewRouter(handlers, cfg)
}

func startServer(
	lc fx.Lifecycle,
	r *gin.Engine,
	cfg *config.Configuration,
	listener *publisher.EventListener,
	eventPublisher publisher.EventPublisher,
	db postgres.IClient,
	log *logger.Logger,
) {
	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			if err := listener.Start(context.Background()); err != nil {
				return err
			}

			log.Infow("starting API server", "address", cfg.Server.Address)
			go func() {
				if err := r.Run(cfg.Server.Address); err != nil {
					log.Fatalf("failed to start server: %v", err)
				}
			}()
			return nil
		},
		OnStop: func(ctx context.Context) error {
			log.Info("shutting down server")
			if err := eventPublisher.Close(); err != nil {
				log.Errorw("failed to close event publisher", "error", err)
			}
			return db.Close()
		},
	})
}
