package v1

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/paybill/paybill/internal/api/dto"
	ierr "github.com/paybill/paybill/internal/errors"
	"github.com/paybill/paybill/internal/logger"
	"github.com/paybill/paybill/internal/service"
)

type ConsolidationHandler struct {
	consolidationService service.ConsolidationService
	logger               *logger.Logger
}

func NewConsolidationHandler(consolidationService service.ConsolidationService, logger *logger.Logger) *ConsolidationHandler {
	return &ConsolidationHandler{
		consolidationService: consolidationService,
		logger:               logger,
	}
}

// GetUnbilled godoc
// @Summary List unbilled groups
// @Description List approved uninvoiced billing items grouped by client and period with eligibility status
// @Tags Consolidation
// @Produce json
// @Success 200 {object} dto.GetUnbilledResponse
// @Failure 500 {object} middleware.ErrorResponse
// @Router /consolidation/unbilled [get]
func (h *ConsolidationHandler) GetUnbilled(c *gin.Context) {
	unbilled, err := h.consolidationService.GetUnbilled(c.Request.Context())
	if err != nil {
		h.logger.Errorw("failed to get unbilled groups", "error", err)
		c.Error(err)
		return
	}

	c.JSON(http.StatusOK, unbilled)
}

// GetSelectionTotals godoc
// @Summary Compute selection totals
// @Description Compute amount, item and client totals for the selected clients and billing periods
// @Tags Consolidation
// @Accept json
// @Produce json
// @Param selection body dto.ConsolidationSelectionRequest true "Selection"
// @Success 200 {object} dto.SelectionTotalsResponse
// @Failure 400 {object} middleware.ErrorResponse
// @Failure 500 {object} middleware.ErrorResponse
// @Router /consolidation/totals [post]
func (h *ConsolidationHandler) GetSelectionTotals(c *gin.Context) {
	var req dto.ConsolidationSelectionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.Error(ierr.WithError(err).WithHint("invalid request").Mark(ierr.ErrValidation))
		return
	}

	totals, err := h.consolidationService.GetSelectionTotals(c.Request.Context(), req)
	if err != nil {
		h.logger.Errorw("failed to compute selection totals", "error", err)
		c.Error(err)
		return
	}

	c.JSON(http.StatusOK, totals)
}

// Consolidate godoc
// @Summary Consolidate unbilled items
// @Description Raise one draft invoice per client covering the selected unbilled groups
// @Tags Consolidation
// @Accept json
// @Produce json
// @Param selection body dto.ConsolidateRequest true "Selection"
// @Success 200 {object} dto.ConsolidateResponse
// @Failure 400 {object} middleware.ErrorResponse
// @Failure 500 {object} middleware.ErrorResponse
// @Router /consolidation/consolidate [post]
func (h *ConsolidationHandler) Consolidate(c *gin.Context) {
	var req dto.ConsolidateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.Error(ierr.WithError(err).WithHint("invalid request").Mark(ierr.ErrValidation))
		return
	}

	result, err := h.consolidationService.Consolidate(c.Request.Context(), req)
	if err != nil {
		h.logger.Errorw("failed to consolidate", "error", err)
		c.Error(err)
		return
	}

	c.JSON(http.StatusOK, result)
}

// AutoGenerate godoc
// @Summary Auto-generate invoices
// @Description Raise invoices for every unbilled group whose age has reached the overdue threshold
// @Tags Consolidation
// @Produce json
// @Success 200 {object} dto.AutoGenerateResponse
// @Failure 500 {object} middleware.ErrorResponse
// @Router /consolidation/auto-generate [post]
func (h *ConsolidationHandler) AutoGenerate(c *gin.Context) {
	result, err := h.consolidationService.AutoGenerate(c.Request.Context())
	if err != nil {
		h.logger.Errorw("failed to auto-generate invoices", "error", err)
		c.Error(err)
		return
	}

	c.JSON(http.StatusOK, result)
}
