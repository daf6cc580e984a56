package agreement

import (
	ierr "github.com/paybill/paybill/internal/errors"
	"github.com/paybill/paybill/internal/types"
	"github.com/shopspring/decimal"
)

// ServiceAgreement is a client-specific rate for a catalog service. When
// present it overrides the service base rate during amount calculation.
type ServiceAgreement struct {
	ID          string          `db:"id" json:"id"`
	ClientID    string          `db:"client_id" json:"client_id"`
	ServiceID   string          `db:"service_id" json:"service_id"`
	ServiceName string          `db:"service_name" json:"service_name"`
	UnitType    types.UnitType  `db:"unit_type" json:"unit_type"`
	Rate        decimal.Decimal `db:"rate" json:"rate"`
	types.BaseModel
}

func (a *ServiceAgreement) Validate() error {
	if a.ClientID == "" {
		return ierr.NewError("client_id is required").
			WithHint("Agreement must reference a client").
			Mark(ierr.ErrValidation)
	}
	if a.ServiceID == "" {
		return ierr.NewError("service_id is required").
			WithHint("Agreement must reference a service").
			Mark(ierr.ErrValidation)
	}
	if a.Rate.IsNegative() {
		return ierr.NewError("rate must be non negative").
			WithHint("Agreement rate must be non negative").
			WithReportableDetails(map[string]any{
				"rate": a.Rate.String(),
			}).
			Mark(ierr.ErrValidation)
	}
	return a.UnitType.Validate()
}
