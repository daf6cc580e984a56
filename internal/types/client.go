package types

// ClientFilter is the list filter for clients
type ClientFilter struct {
	QueryFilter
	// Name matches on a case-insensitive substring of the client name
	Name string `json:"name,omitempty" form:"name"`
}

func (f ClientFilter) Validate() error {
	return f.QueryFilter.Validate()
}
