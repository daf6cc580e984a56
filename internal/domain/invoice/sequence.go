package invoice

import (
	"fmt"
	"time"
)

// InvoiceSequence represents a tenant's invoice number sequence for a
// specific calendar year
type InvoiceSequence struct {
	ID        string
	TenantID  string
	Year      string
	LastValue int64
	CreatedAt time.Time
	UpdatedAt time.Time
}

// FormatInvoiceNumber renders the canonical invoice number for a year and
// sequence value, e.g. INV-2026-000042
func FormatInvoiceNumber(year string, value int64) string {
	return fmt.Sprintf("INV-%s-%06d", year, value)
}
