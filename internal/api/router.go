package api

import (
	"github.com/gin-gonic/gin"
	v1 "github.com/paybill/paybill/internal/api/v1"
	"github.com/paybill/paybill/internal/config"
	"github.com/paybill/paybill/internal/rest/middleware"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
)

type Handlers struct {
	Health        *v1.HealthHandler
	Billing       *v1.BillingHandler
	Consolidation *v1.ConsolidationHandler
	Invoice       *v1.InvoiceHandler
	Client        *v1.ClientHandler
	Payroll       *v1.PayrollHandler
}

func NewRouter(handlers Handlers, cfg *config.Configuration) *gin.Engine {
	router := gin.Default()

	router.Use(
		middleware.CORSMiddleware,
		middleware.SentryMiddleware(cfg),
		middleware.RequestIDMiddleware,
		middleware.TenantMiddleware,
		middleware.ErrorHandler(),
	)

	// Swagger documentation
	router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	router.GET("/health", handlers.Health.Health)

	v1Group := router.Group("/v1")
	registerV1Routes(v1Group, handlers)

	return router
}

func registerV1Routes(router *gin.RouterGroup, handlers Handlers) {
	billing := router.Group("/billing")
	{
		billing.POST("/preview", handlers.Billing.PreviewBilling)
		billing.POST("/items", handlers.Billing.CreateBillingItems)
		billing.GET("/items", handlers.Billing.ListBillingItems)
		billing.GET("/items/:id", handlers.Billing.GetBillingItem)
		billing.POST("/items/:id/approve", handlers.Billing.ApproveBillingItem)
	}

	consolidation := router.Group("/consolidation")
	{
		consolidation.GET("/unbilled", handlers.Consolidation.GetUnbilled)
		consolidation.POST("/totals", handlers.Consolidation.GetSelectionTotals)
		consolidation.POST("/consolidate", handlers.Consolidation.Consolidate)
		consolidation.POST("/auto-generate", handlers.Consolidation.AutoGenerate)
	}

	invoices := router.Group("/invoices")
	{
		invoices.POST("", handlers.Invoice.CreateInvoice)
		invoices.GET("", handlers.Invoice.ListInvoices)
		invoices.GET("/:id", handlers.Invoice.GetInvoice)
		invoices.POST("/:id/finalize", handlers.Invoice.FinalizeInvoice)
		invoices.POST("/:id/void", handlers.Invoice.VoidInvoice)
		invoices.GET("/:id/pdf", handlers.Invoice.GetInvoicePDF)
	}

	clients := router.Group("/clients")
	{
		clients.POST("", handlers.Client.CreateClient)
		clients.GET("", handlers.Client.ListClients)
		clients.GET("/:id", handlers.Client.GetClient)
		clients.PUT("/:id", handlers.Client.UpdateClient)
		clients.DELETE("/:id", handlers.Client.DeleteClient)
		clients.POST("/:id/agreements", handlers.Client.CreateServiceAgreement)
		clients.GET("/:id/agreements", handlers.Client.ListServiceAgreements)
		clients.DELETE("/:id/agreements/:agreement_id", handlers.Client.DeleteServiceAgreement)
	}

	services := router.Group("/services")
	{
		services.POST("", handlers.Client.CreateServiceDefinition)
		services.GET("", handlers.Client.ListServiceDefinitions)
	}

	payroll := router.Group("/payroll")
	{
		payroll.POST("/runs", handlers.Payroll.CreatePayrollRun)
		payroll.GET("/runs", handlers.Payroll.ListPayrollRuns)
		payroll.GET("/runs/:id", handlers.Payroll.GetPayrollRun)
		payroll.GET("/schedule/:client_id", handlers.Payroll.GetSchedule)
	}
}
