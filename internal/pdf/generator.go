// Package pdf renders invoices as PDF documents.
package pdf

import (
	"bytes"
	"fmt"
	"time"

	"github.com/jung-kurt/gofpdf"
	"github.com/paybill/paybill/internal/domain/client"
	"github.com/paybill/paybill/internal/domain/invoice"
	ierr "github.com/paybill/paybill/internal/errors"
	"github.com/paybill/paybill/internal/types"
	"github.com/shopspring/decimal"
)

// RenderOptions controls locale sensitive rendering
type RenderOptions struct {
	Locale  string
	GSTRate decimal.Decimal
}

const dateLayout = "02 Jan 2006"

// RenderInvoice renders an invoice and its line items as an A4 PDF
func RenderInvoice(inv *invoice.Invoice, cl *client.Client, opts RenderOptions) ([]byte, error) {
	doc := gofpdf.New("P", "mm", "A4", "")
	doc.SetMargins(15, 15, 15)
	doc.AddPage()

	doc.SetFont("Helvetica", "B", 22)
	doc.Cell(120, 12, "TAX INVOICE")
	doc.SetFont("Helvetica", "", 10)
	doc.CellFormat(60, 12, inv.InvoiceNumber, "", 1, "R", false, 0, "")
	doc.Ln(4)

	doc.SetFont("Helvetica", "B", 11)
	doc.CellFormat(0, 6, "Billed to", "", 1, "L", false, 0, "")
	doc.SetFont("Helvetica", "", 10)
	doc.CellFormat(0, 5, cl.Name, "", 1, "L", false, 0, "")
	if cl.ABN != "" {
		doc.CellFormat(0, 5, fmt.Sprintf("ABN %s", cl.ABN), "", 1, "L", false, 0, "")
	}
	if cl.ContactEmail != "" {
		doc.CellFormat(0, 5, cl.ContactEmail, "", 1, "L", false, 0, "")
	}
	doc.Ln(3)

	doc.SetFont("Helvetica", "", 10)
	writeDateRow(doc, "Issued", inv.IssuedAt)
	writeDateRow(doc, "Due", inv.DueDate)
	doc.CellFormat(30, 5, "Status", "", 0, "L", false, 0, "")
	doc.CellFormat(0, 5, inv.InvoiceStatus.String(), "", 1, "L", false, 0, "")
	doc.Ln(5)

	// line item table
	doc.SetFont("Helvetica", "B", 9)
	doc.SetFillColor(235, 235, 235)
	doc.CellFormat(80, 7, "Service", "1", 0, "L", true, 0, "")
	doc.CellFormat(30, 7, "Quantity", "1", 0, "R", true, 0, "")
	doc.CellFormat(30, 7, "Rate", "1", 0, "R", true, 0, "")
	doc.CellFormat(40, 7, "Amount", "1", 1, "R", true, 0, "")

	doc.SetFont("Helvetica", "", 9)
	for _, line := range inv.LineItems {
		doc.CellFormat(80, 7, line.DisplayName, "1", 0, "L", false, 0, "")
		doc.CellFormat(30, 7, line.Quantity.String(), "1", 0, "R", false, 0, "")
		doc.CellFormat(30, 7, types.FormatAmount(line.UnitPrice, line.Currency, opts.Locale, false), "1", 0, "R", false, 0, "")
		doc.CellFormat(40, 7, types.FormatAmount(line.Amount, line.Currency, opts.Locale, false), "1", 1, "R", false, 0, "")
	}
	doc.Ln(4)

	writeTotalRow(doc, "Subtotal", inv.Subtotal, inv.Currency, opts.Locale, false)
	gstLabel := fmt.Sprintf("GST (%s%%)", opts.GSTRate.Mul(decimal.NewFromInt(100)).String())
	writeTotalRow(doc, gstLabel, inv.GSTAmount, inv.Currency, opts.Locale, false)
	writeTotalRow(doc, "Total", inv.Total, inv.Currency, opts.Locale, true)

	var buf bytes.Buffer
	if err := doc.Output(&buf); err != nil {
		return nil, ierr.WithError(err).
			WithHint("Failed to render invoice PDF").
			Mark(ierr.ErrSystem)
	}
	return buf.Bytes(), nil
}

func writeDateRow(doc *gofpdf.Fpdf, label string, at *time.Time) {
	if at == nil {
		return
	}
	doc.CellFormat(30, 5, label, "", 0, "L", false, 0, "")
	doc.CellFormat(0, 5, at.Format(dateLayout), "", 1, "L", false, 0, "")
}

func writeTotalRow(doc *gofpdf.Fpdf, label string, amount decimal.Decimal, currency, locale string, bold bool) {
	style := ""
	if bold {
		style = "B"
	}
	doc.SetFont("Helvetica", style, 10)
	doc.CellFormat(140, 6, label, "", 0, "R", false, 0, "")
	doc.CellFormat(40, 6, types.FormatAmount(amount, currency, locale, false), "", 1, "R", false, 0, "")
}
