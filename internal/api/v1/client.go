package v1

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/paybill/paybill/internal/api/dto"
	ierr "github.com/paybill/paybill/internal/errors"
	"github.com/paybill/paybill/internal/logger"
	"github.com/paybill/paybill/internal/service"
	"github.com/paybill/paybill/internal/types"
)

type ClientHandler struct {
	clientService service.ClientService
	logger        *logger.Logger
}

func NewClientHandler(clientService service.ClientService, logger *logger.Logger) *ClientHandler {
	return &ClientHandler{
		clientService: clientService,
		logger:        logger,
	}
}

// CreateClient godoc
// @Summary Create a client
// @Description Register a new payroll client
// @Tags Clients
// @Accept json
// @Produce json
// @Param client body dto.CreateClientRequest true "Client details"
// @Success 201 {object} dto.ClientResponse
// @Failure 400 {object} middleware.ErrorResponse
// @Failure 500 {object} middleware.ErrorResponse
// @Router /clients [post]
func (h *ClientHandler) CreateClient(c *gin.Context) {
	var req dto.CreateClientRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.Error(ierr.WithError(err).WithHint("invalid request").Mark(ierr.ErrValidation))
		return
	}

	client, err := h.clientService.CreateClient(c.Request.Context(), req)
	if err != nil {
		h.logger.Errorw("failed to create client", "error", err)
		c.Error(err)
		return
	}

	c.JSON(http.StatusCreated, client)
}

// GetClient godoc
// @Summary Get a client
// @Description Get a client by ID
// @Tags Clients
// @Produce json
// @Param id path string true "Client ID"
// @Success 200 {object} dto.ClientResponse
// @Failure 404 {object} middleware.ErrorResponse
// @Router /clients/{id} [get]
func (h *ClientHandler) GetClient(c *gin.Context) {
	id := c.Param("id")
	if id == "" {
		c.Error(ierr.NewError("invalid client id").
			WithHint("Client ID is required").
			Mark(ierr.ErrValidation))
		return
	}

	client, err := h.clientService.GetClient(c.Request.Context(), id)
	if err != nil {
		c.Error(err)
		return
	}

	c.JSON(http.StatusOK, client)
}

// UpdateClient godoc
// @Summary Update a client
// @Description Update mutable client fields
// @Tags Clients
// @Accept json
// @Produce json
// @Param id path string true "Client ID"
// @Param client body dto.UpdateClientRequest true "Fields to update"
// @Success 200 {object} dto.ClientResponse
// @Failure 400 {object} middleware.ErrorResponse
// @Failure 404 {object} middleware.ErrorResponse
// @Router /clients/{id} [put]
func (h *ClientHandler) UpdateClient(c *gin.Context) {
	id := c.Param("id")
	var req dto.UpdateClientRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.Error(ierr.WithError(err).WithHint("invalid request").Mark(ierr.ErrValidation))
		return
	}

	client, err := h.clientService.UpdateClient(c.Request.Context(), id, req)
	if err != nil {
		h.logger.Errorw("failed to update client", "error", err, "client_id", id)
		c.Error(err)
		return
	}

	c.JSON(http.StatusOK, client)
}

// DeleteClient godoc
// @Summary Delete a client
// @Description Soft delete a client with no unbilled items
// @Tags Clients
// @Produce json
// @Param id path string true "Client ID"
// @Success 204
// @Failure 400 {object} middleware.ErrorResponse
// @Failure 404 {object} middleware.ErrorResponse
// @Router /clients/{id} [delete]
func (h *ClientHandler) DeleteClient(c *gin.Context) {
	id := c.Param("id")
	if err := h.clientService.DeleteClient(c.Request.Context(), id); err != nil {
		h.logger.Errorw("failed to delete client", "error", err, "client_id", id)
		c.Error(err)
		return
	}

	c.Status(http.StatusNoContent)
}

// ListClients godoc
// @Summary List clients
// @Description List clients with optional name filter
// @Tags Clients
// @Produce json
// @Param filter query types.ClientFilter false "Filter"
// @Success 200 {object} dto.ListClientsResponse
// @Failure 400 {object} middleware.ErrorResponse
// @Router /clients [get]
func (h *ClientHandler) ListClients(c *gin.Context) {
	var filter types.ClientFilter
	if err := c.ShouldBindQuery(&filter); err != nil {
		c.Error(ierr.WithError(err).WithHint("invalid filter parameters").Mark(ierr.ErrValidation))
		return
	}

	clients, err := h.clientService.ListClients(c.Request.Context(), &filter)
	if err != nil {
		h.logger.Errorw("failed to list clients", "error", err)
		c.Error(err)
		return
	}

	c.JSON(http.StatusOK, clients)
}

// CreateServiceAgreement godoc
// @Summary Set a client rate
// @Description Create or replace the client specific rate for a catalog service
// @Tags Clients
// @Accept json
// @Produce json
// @Param id path string true "Client ID"
// @Param agreement body dto.CreateServiceAgreementRequest true "Agreement details"
// @Success 201 {object} dto.ServiceAgreementResponse
// @Failure 400 {object} middleware.ErrorResponse
// @Failure 404 {object} middleware.ErrorResponse
// @Router /clients/{id}/agreements [post]
func (h *ClientHandler) CreateServiceAgreement(c *gin.Context) {
	clientID := c.Param("id")
	var req dto.CreateServiceAgreementRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.Error(ierr.WithError(err).WithHint("invalid request").Mark(ierr.ErrValidation))
		return
	}

	agreement, err := h.clientService.CreateServiceAgreement(c.Request.Context(), clientID, req)
	if err != nil {
		h.logger.Errorw("failed to create service agreement", "error", err, "client_id", clientID)
		c.Error(err)
		return
	}

	c.JSON(http.StatusCreated, agreement)
}

// ListServiceAgreements godoc
// @Summary List a client's agreements
// @Description List the client specific rates for catalog services
// @Tags Clients
// @Produce json
// @Param id path string true "Client ID"
// @Success 200 {array} dto.ServiceAgreementResponse
// @Failure 404 {object} middleware.ErrorResponse
// @Router /clients/{id}/agreements [get]
func (h *ClientHandler) ListServiceAgreements(c *gin.Context) {
	clientID := c.Param("id")
	agreements, err := h.clientService.ListServiceAgreements(c.Request.Context(), clientID)
	if err != nil {
		h.logger.Errorw("failed to list service agreements", "error", err, "client_id", clientID)
		c.Error(err)
		return
	}

	c.JSON(http.StatusOK, agreements)
}

// DeleteServiceAgreement godoc
// @Summary Delete a client agreement
// @Description Remove a client specific rate so the service base rate applies again
// @Tags Clients
// @Produce json
// @Param id path string true "Client ID"
// @Param agreement_id path string true "Agreement ID"
// @Success 204
// @Failure 404 {object} middleware.ErrorResponse
// @Router /clients/{id}/agreements/{agreement_id} [delete]
func (h *ClientHandler) DeleteServiceAgreement(c *gin.Context) {
	clientID := c.Param("id")
	agreementID := c.Param("agreement_id")
	if err := h.clientService.DeleteServiceAgreement(c.Request.Context(), clientID, agreementID); err != nil {
		h.logger.Errorw("failed to delete service agreement", "error", err, "agreement_id", agreementID)
		c.Error(err)
		return
	}

	c.Status(http.StatusNoContent)
}

// CreateServiceDefinition godoc
// @Summary Add a catalog service
// @Description Add a billable service with its base rate to the shared catalog
// @Tags Services
// @Accept json
// @Produce json
// @Param service body dto.CreateServiceDefinitionRequest true "Service details"
// @Success 201 {object} dto.ServiceDefinitionResponse
// @Failure 400 {object} middleware.ErrorResponse
// @Router /services [post]
func (h *ClientHandler) CreateServiceDefinition(c *gin.Context) {
	var req dto.CreateServiceDefinitionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.Error(ierr.WithError(err).WithHint("invalid request").Mark(ierr.ErrValidation))
		return
	}

	def, err := h.clientService.CreateServiceDefinition(c.Request.Context(), req)
	if err != nil {
		h.logger.Errorw("failed to create service definition", "error", err)
		c.Error(err)
		return
	}

	c.JSON(http.StatusCreated, def)
}

// ListServiceDefinitions godoc
// @Summary List catalog services
// @Description List the billable services and their base rates
// @Tags Services
// @Produce json
// @Success 200 {array} dto.ServiceDefinitionResponse
// @Failure 500 {object} middleware.ErrorResponse
// @Router /services [get]
func (h *ClientHandler) ListServiceDefinitions(c *gin.Context) {
	defs, err := h.clientService.ListServiceDefinitions(c.Request.Context())
	if err != nil {
		h.logger.Errorw("failed to list service definitions", "error", err)
		c.Error(err)
		return
	}

	c.JSON(http.StatusOK, defs)
}
