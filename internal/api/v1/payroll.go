package v1

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/paybill/paybill/internal/api/dto"
	ierr "github.com/paybill/paybill/internal/errors"
	"github.com/paybill/paybill/internal/logger"
	"github.com/paybill/paybill/internal/service"
	"github.com/paybill/paybill/internal/types"
)

type PayrollHandler struct {
	payrollService service.PayrollService
	logger         *logger.Logger
}

func NewPayrollHandler(payrollService service.PayrollService, logger *logger.Logger) *PayrollHandler {
	return &PayrollHandler{
		payrollService: payrollService,
		logger:         logger,
	}
}

// CreatePayrollRun godoc
// @Summary Record a payroll run
// @Description Record a completed payroll execution with its employee and payslip counts
// @Tags Payroll
// @Accept json
// @Produce json
// @Param run body dto.CreatePayrollRunRequest true "Run details"
// @Success 201 {object} dto.PayrollRunResponse
// @Failure 400 {object} middleware.ErrorResponse
// @Failure 500 {object} middleware.ErrorResponse
// @Router /payroll/runs [post]
func (h *PayrollHandler) CreatePayrollRun(c *gin.Context) {
	var req dto.CreatePayrollRunRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.Error(ierr.WithError(err).WithHint("invalid request").Mark(ierr.ErrValidation))
		return
	}

	run, err := h.payrollService.CreatePayrollRun(c.Request.Context(), req)
	if err != nil {
		h.logger.Errorw("failed to create payroll run", "error", err)
		c.Error(err)
		return
	}

	c.JSON(http.StatusCreated, run)
}

// GetPayrollRun godoc
// @Summary Get a payroll run
// @Description Get a payroll run by ID
// @Tags Payroll
// @Produce json
// @Param id path string true "Payroll run ID"
// @Success 200 {object} dto.PayrollRunResponse
// @Failure 404 {object} middleware.ErrorResponse
// @Router /payroll/runs/{id} [get]
func (h *PayrollHandler) GetPayrollRun(c *gin.Context) {
	id := c.Param("id")
	if id == "" {
		c.Error(ierr.NewError("invalid payroll run id").
			WithHint("Payroll run ID is required").
			Mark(ierr.ErrValidation))
		return
	}

	run, err := h.payrollService.GetPayrollRun(c.Request.Context(), id)
	if err != nil {
		c.Error(err)
		return
	}

	c.JSON(http.StatusOK, run)
}

// ListPayrollRuns godoc
// @Summary List payroll runs
// @Description List payroll runs with optional client and period filters
// @Tags Payroll
// @Produce json
// @Param filter query types.PayrollRunFilter false "Filter"
// @Success 200 {object} dto.ListPayrollRunsResponse
// @Failure 400 {object} middleware.ErrorResponse
// @Router /payroll/runs [get]
func (h *PayrollHandler) ListPayrollRuns(c *gin.Context) {
	var filter types.PayrollRunFilter
	if err := c.ShouldBindQuery(&filter); err != nil {
		c.Error(ierr.WithError(err).WithHint("invalid filter parameters").Mark(ierr.ErrValidation))
		return
	}

	runs, err := h.payrollService.ListPayrollRuns(c.Request.Context(), &filter)
	if err != nil {
		h.logger.Errorw("failed to list payroll runs", "error", err)
		c.Error(err)
		return
	}

	c.JSON(http.StatusOK, runs)
}

// GetSchedule godoc
// @Summary Get a client's pay schedule
// @Description Derive upcoming pay dates from the client's pay frequency and latest run
// @Tags Payroll
// @Produce json
// @Param client_id path string true "Client ID"
// @Param count query int false "Number of dates to return"
// @Success 200 {object} dto.PayScheduleResponse
// @Failure 404 {object} middleware.ErrorResponse
// @Router /payroll/schedule/{client_id} [get]
func (h *PayrollHandler) GetSchedule(c *gin.Context) {
	clientID := c.Param("client_id")
	if clientID == "" {
		c.Error(ierr.NewError("invalid client id").
			WithHint("Client ID is required").
			Mark(ierr.ErrValidation))
		return
	}

	count, _ := strconv.Atoi(c.DefaultQuery("count", "0"))

	schedule, err := h.payrollService.GetSchedule(c.Request.Context(), clientID, count)
	if err != nil {
		h.logger.Errorw("failed to get pay schedule", "error", err, "client_id", clientID)
		c.Error(err)
		return
	}

	c.JSON(http.StatusOK, schedule)
}
