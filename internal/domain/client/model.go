package client

import (
	ierr "github.com/paybill/paybill/internal/errors"
	"github.com/paybill/paybill/internal/types"
)

// Client represents a payroll-services client
type Client struct {
	ID           string             `db:"id" json:"id"`
	Name         string             `db:"name" json:"name"`
	ABN          string             `db:"abn" json:"abn,omitempty"`
	ContactEmail string             `db:"contact_email" json:"contact_email,omitempty"`
	Currency     string             `db:"currency" json:"currency"`
	PayFrequency types.PayFrequency `db:"pay_frequency" json:"pay_frequency"`
	Metadata     types.Metadata     `db:"metadata" json:"metadata,omitempty"`
	types.BaseModel
}

func (c *Client) Validate() error {
	if c.Name == "" {
		return ierr.NewError("client name is required").
			WithHint("Client name is required").
			Mark(ierr.ErrValidation)
	}
	if len(c.Currency) != 3 {
		return ierr.NewError("invalid currency code").
			WithHint("Currency must be a three-letter ISO code").
			WithReportableDetails(map[string]any{
				"currency": c.Currency,
			}).
			Mark(ierr.ErrValidation)
	}
	if err := c.PayFrequency.Validate(); err != nil {
		return err
	}
	return nil
}
