package invoice

import (
	"bytes"
	"fmt"

	"github.com/jung-kurt/gofpdf"

	"github.com/kamaudev/dukashop/internal/models"
)

// Render lays out a fixed-format invoice for a fully loaded order. The
// latest payment, if any, fills the footer.
func Render(order *models.Order, user *models.User, payment *models.Payment, setting *models.Setting) ([]byte, error) {
	currency := setting.Currency
	if currency == "" {
		currency = "KES"
	}

	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.SetAutoPageBreak(true, 20)
	pdf.AddPage()

	// Company header
	pdf.SetFont("Helvetica", "B", 18)
	pdf.Cell(0, 10, setting.CompanyName)
	pdf.Ln(8)
	pdf.SetFont("Helvetica", "", 10)
	if setting.CompanyPhone != "" {
		pdf.Cell(0, 6, "Tel: "+setting.CompanyPhone)
		pdf.Ln(5)
	}
	if setting.SupportEmail != "" {
		pdf.Cell(0, 6, setting.SupportEmail)
		pdf.Ln(5)
	}
	pdf.Ln(6)

	// Invoice metadata
	pdf.SetFont("Helvetica", "B", 14)
	pdf.Cell(0, 8, "INVOICE")
	pdf.Ln(8)
	pdf.SetFont("Helvetica", "", 10)
	pdf.Cell(0, 6, "Invoice no: "+order.Number)
	pdf.Ln(5)
	pdf.Cell(0, 6, "Date: "+order.CreatedAt.Format("02 Jan 2006"))
	pdf.Ln(10)

	// Bill-to block
	pdf.SetFont("Helvetica", "B", 11)
	pdf.Cell(0, 6, "Bill to")
	pdf.Ln(6)
	pdf.SetFont("Helvetica", "", 10)
	pdf.Cell(0, 5, user.Name)
	pdf.Ln(5)
	pdf.Cell(0, 5, user.Email)
	pdf.Ln(5)
	if user.Phone != "" {
		pdf.Cell(0, 5, user.Phone)
		pdf.Ln(5)
	}
	pdf.Ln(6)

	// Line-item table
	const (
		colDesc  = 90.0
		colQty   = 20.0
		colPrice = 35.0
		colTotal = 35.0
	)
	pdf.SetFont("Helvetica", "B", 10)
	pdf.SetFillColor(230, 230, 230)
	pdf.CellFormat(colDesc, 7, "Description", "1", 0, "L", true, 0, "")
	pdf.CellFormat(colQty, 7, "Qty", "1", 0, "R", true, 0, "")
	pdf.CellFormat(colPrice, 7, "Unit price", "1", 0, "R", true, 0, "")
	pdf.CellFormat(colTotal, 7, "Total", "1", 1, "R", true, 0, "")

	pdf.SetFont("Helvetica", "", 10)
	for _, item := range order.Items {
		pdf.CellFormat(colDesc, 7, item.ProductName, "1", 0, "L", false, 0, "")
		pdf.CellFormat(colQty, 7, fmt.Sprintf("%d", item.Quantity), "1", 0, "R", false, 0, "")
		pdf.CellFormat(colPrice, 7, money(currency, item.UnitPrice), "1", 0, "R", false, 0, "")
		pdf.CellFormat(colTotal, 7, money(currency, item.LineTotal), "1", 1, "R", false, 0, "")
	}
	pdf.Ln(4)

	// Totals block
	totals := []struct {
		label string
		value float64
	}{
		{"Subtotal", order.SubtotalAmount},
		{"Discount", -order.DiscountAmount},
		{"Shipping", order.ShippingAmount},
		{"Total", order.TotalAmount},
	}
	for i, row := range totals {
		if i == len(totals)-1 {
			pdf.SetFont("Helvetica", "B", 11)
		}
		pdf.CellFormat(colDesc+colQty, 6, "", "", 0, "L", false, 0, "")
		pdf.CellFormat(colPrice, 6, row.label, "", 0, "R", false, 0, "")
		pdf.CellFormat(colTotal, 6, money(currency, row.value), "", 1, "R", false, 0, "")
	}
	pdf.Ln(8)

	// Payment footer
	pdf.SetFont("Helvetica", "B", 11)
	pdf.Cell(0, 6, "Payment")
	pdf.Ln(6)
	pdf.SetFont("Helvetica", "", 10)
	pdf.Cell(0, 5, "Method: M-PESA")
	pdf.Ln(5)
	if payment != nil {
		pdf.Cell(0, 5, "Transaction code: "+payment.MpesaCode)
		pdf.Ln(5)
		pdf.Cell(0, 5, "Status: "+string(payment.Status))
	} else {
		pdf.Cell(0, 5, "Status: "+string(order.PaymentStatus))
	}
	pdf.Ln(5)

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, fmt.Errorf("invoice: render failed: %w", err)
	}
	return buf.Bytes(), nil
}

func money(currency string, amount float64) string {
	return fmt.Sprintf("%s %.2f", currency, amount)
}
