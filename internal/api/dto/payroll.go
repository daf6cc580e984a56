package dto

import (
	"time"

	"github.com/paybill/paybill/internal/domain/payroll"
	"github.com/paybill/paybill/internal/types"
	"github.com/paybill/paybill/internal/validator"
)

// CreatePayrollRunRequest records a payroll execution for a client
type CreatePayrollRunRequest struct {
	ClientID        string    `json:"client_id" validate:"required"`
	BillingPeriodID string    `json:"billing_period_id" validate:"required"`
	PayDate         time.Time `json:"pay_date" validate:"required"`
	EmployeeCount   int       `json:"employee_count" validate:"gte=0"`
	PayslipCount    int       `json:"payslip_count" validate:"gte=0"`
}

func (r *CreatePayrollRunRequest) Validate() error {
	return validator.ValidateRequest(r)
}

// PayrollRunResponse is the API shape of a payroll run
type PayrollRunResponse struct {
	*payroll.PayrollRun
}

// ListPayrollRunsResponse is a paginated payroll run list
type ListPayrollRunsResponse = types.ListResponse[*PayrollRunResponse]

// PayScheduleResponse lists a client's upcoming pay dates
type PayScheduleResponse struct {
	ClientID     string             `json:"client_id"`
	PayFrequency types.PayFrequency `json:"pay_frequency"`
	PayDates     []time.Time        `json:"pay_dates"`
}

// NewPayScheduleResponse builds the schedule response
func NewPayScheduleResponse(clientID string, frequency types.PayFrequency, dates []time.Time) *PayScheduleResponse {
	return &PayScheduleResponse{
		ClientID:     clientID,
		PayFrequency: frequency,
		PayDates:     dates,
	}
}
