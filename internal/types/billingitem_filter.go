package types

// BillingItemFilter is the list filter for billing items
type BillingItemFilter struct {
	QueryFilter
	ClientID        string `json:"client_id,omitempty" form:"client_id"`
	BillingPeriodID string `json:"billing_period_id,omitempty" form:"billing_period_id"`
	// ApprovedOnly restricts results to items flagged approved
	ApprovedOnly bool `json:"approved_only,omitempty" form:"approved_only"`
	// UnbilledOnly restricts results to items not yet attached to an invoice
	UnbilledOnly bool `json:"unbilled_only,omitempty" form:"unbilled_only"`
}

func (f BillingItemFilter) Validate() error {
	return f.QueryFilter.Validate()
}
