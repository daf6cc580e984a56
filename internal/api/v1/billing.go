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

type BillingHandler struct {
	billingService service.BillingService
	logger         *logger.Logger
}

func NewBillingHandler(billingService service.BillingService, logger *logger.Logger) *BillingHandler {
	return &BillingHandler{
		billingService: billingService,
		logger:         logger,
	}
}

// PreviewBilling godoc
// @Summary Preview billing amounts
// @Description Compute line amounts, GST and summary for draft entries without persisting
// @Tags Billing
// @Accept json
// @Produce json
// @Param preview body dto.BillingPreviewRequest true "Draft entries"
// @Success 200 {object} dto.BillingPreviewResponse
// @Failure 400 {object} middleware.ErrorResponse
// @Failure 500 {object} middleware.ErrorResponse
// @Router /billing/preview [post]
func (h *BillingHandler) PreviewBilling(c *gin.Context) {
	var req dto.BillingPreviewRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Errorw("failed to bind request", "error", err)
		c.Error(ierr.WithError(err).WithHint("invalid request").Mark(ierr.ErrValidation))
		return
	}

	preview, err := h.billingService.ComputePreview(c.Request.Context(), req)
	if err != nil {
		h.logger.Errorw("failed to compute billing preview", "error", err)
		c.Error(err)
		return
	}

	c.JSON(http.StatusOK, preview)
}

// CreateBillingItems godoc
// @Summary Create billing items
// @Description Persist computed draft entries as unapproved billing items
// @Tags Billing
// @Accept json
// @Produce json
// @Param items body dto.CreateBillingItemsRequest true "Draft entries"
// @Success 201 {array} dto.BillingItemResponse
// @Failure 400 {object} middleware.ErrorResponse
// @Failure 500 {object} middleware.ErrorResponse
// @Router /billing/items [post]
func (h *BillingHandler) CreateBillingItems(c *gin.Context) {
	var req dto.CreateBillingItemsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Errorw("failed to bind request", "error", err)
		c.Error(ierr.WithError(err).WithHint("invalid request").Mark(ierr.ErrValidation))
		return
	}

	items, err := h.billingService.CreateBillingItems(c.Request.Context(), req)
	if err != nil {
		h.logger.Errorw("failed to create billing items", "error", err)
		c.Error(err)
		return
	}

	c.JSON(http.StatusCreated, items)
}

// ListBillingItems godoc
// @Summary List billing items
// @Description List billing items with optional client, period and approval filters
// @Tags Billing
// @Produce json
// @Param filter query types.BillingItemFilter false "Filter"
// @Success 200 {object} dto.ListBillingItemsResponse
// @Failure 400 {object} middleware.ErrorResponse
// @Failure 500 {object} middleware.ErrorResponse
// @Router /billing/items [get]
func (h *BillingHandler) ListBillingItems(c *gin.Context) {
	var filter types.BillingItemFilter
	if err := c.ShouldBindQuery(&filter); err != nil {
		c.Error(ierr.WithError(err).WithHint("invalid filter parameters").Mark(ierr.ErrValidation))
		return
	}

	items, err := h.billingService.ListBillingItems(c.Request.Context(), &filter)
	if err != nil {
		h.logger.Errorw("failed to list billing items", "error", err)
		c.Error(err)
		return
	}

	c.JSON(http.StatusOK, items)
}

// GetBillingItem godoc
// @Summary Get a billing item
// @Description Get a billing item by ID
// @Tags Billing
// @Produce json
// @Param id path string true "Billing item ID"
// @Success 200 {object} dto.BillingItemResponse
// @Failure 404 {object} middleware.ErrorResponse
// @Failure 500 {object} middleware.ErrorResponse
// @Router /billing/items/{id} [get]
func (h *BillingHandler) GetBillingItem(c *gin.Context) {
	id := c.Param("id")
	if id == "" {
		c.Error(ierr.NewError("invalid billing item id").
			WithHint("Billing item ID is required").
			Mark(ierr.ErrValidation))
		return
	}

	item, err := h.billingService.GetBillingItem(c.Request.Context(), id)
	if err != nil {
		h.logger.Errorw("failed to get billing item", "error", err, "billing_item_id", id)
		c.Error(err)
		return
	}

	c.JSON(http.StatusOK, item)
}

// ApproveBillingItem godoc
// @Summary Approve a billing item
// @Description Flag a billing item approved, making it eligible for consolidation
// @Tags Billing
// @Produce json
// @Param id path string true "Billing item ID"
// @Success 200 {object} dto.BillingItemResponse
// @Failure 400 {object} middleware.ErrorResponse
// @Failure 404 {object} middleware.ErrorResponse
// @Failure 500 {object} middleware.ErrorResponse
// @Router /billing/items/{id}/approve [post]
func (h *BillingHandler) ApproveBillingItem(c *gin.Context) {
	id := c.Param("id")
	if id == "" {
		c.Error(ierr.NewError("invalid billing item id").
			WithHint("Billing item ID is required").
			Mark(ierr.ErrValidation))
		return
	}

	item, err := h.billingService.ApproveBillingItem(c.Request.Context(), id)
	if err != nil {
		h.logger.Errorw("failed to approve billing item", "error", err, "billing_item_id", id)
		c.Error(err)
		return
	}

	c.JSON(http.StatusOK, item)
}
