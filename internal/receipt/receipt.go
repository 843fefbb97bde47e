// Package receipt renders a fixed-layout A4 PDF for a single order: vendor
// header, customer block, line-item table, total and payment footer.
package receipt

import (
	"bytes"
	"errors"
	"fmt"
	"math"
	"time"

	"github.com/jung-kurt/gofpdf"

	"soltienda/internal/domain"
)

// Vendor identity printed on every receipt.
const (
	vendorName    = "SOLTIENDA"
	vendorStreet  = "Lisandro de la Torre 2662"
	vendorCity    = "Buenos Aires, Argentina"
	vendorPhone   = "Tel: (11) 3306-3086"
	vendorThanks  = "Gracias por tu compra"
	vendorContact = "Para cualquier consulta, contactanos al (11) 3306-3086"
)

// ErrTotalMismatch reports that order.Total disagrees with the independent sum
// of its line items. A receipt for such an order would be lying to someone.
var ErrTotalMismatch = errors.New("order total does not match line items")

const (
	pageBottom = 265.0 // start a new page past this Y (mm)
	rowHeight  = 9.0
)

// Build lays out the document and returns it unrendered, so callers (and
// tests) can inspect page count before serializing.
func Build(o domain.Order) (*gofpdf.Fpdf, error) {
	sum := 0.0
	for _, it := range o.Items {
		sum += it.Price * float64(it.Quantity)
	}
	if math.Abs(sum-o.Total) > 0.005 {
		return nil, fmt.Errorf("%w: order says %.2f, items sum %.2f", ErrTotalMismatch, o.Total, sum)
	}

	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.SetAutoPageBreak(false, 0)
	tr := pdf.UnicodeTranslatorFromDescriptor("")
	pdf.AddPage()

	// Header band
	pdf.SetFillColor(243, 244, 246)
	pdf.Rect(0, 0, 210, 45, "F")

	pdf.SetFont("Helvetica", "B", 24)
	pdf.SetTextColor(30, 58, 138)
	pdf.SetXY(15, 12)
	pdf.CellFormat(80, 10, vendorName, "", 0, "L", false, 0, "")

	pdf.SetFont("Helvetica", "", 9)
	pdf.SetTextColor(75, 85, 99)
	pdf.SetXY(15, 25)
	pdf.CellFormat(80, 5, tr(vendorStreet), "", 0, "L", false, 0, "")
	pdf.SetXY(15, 30)
	pdf.CellFormat(80, 5, tr(vendorCity), "", 0, "L", false, 0, "")
	pdf.SetXY(15, 35)
	pdf.CellFormat(80, 5, vendorPhone, "", 0, "L", false, 0, "")

	pdf.SetXY(130, 15)
	pdf.CellFormat(65, 5, "Orden #"+o.ID, "", 0, "L", false, 0, "")
	pdf.SetXY(130, 21)
	pdf.CellFormat(65, 5, "Fecha: "+formatDate(o.CreatedAt), "", 0, "L", false, 0, "")
	pdf.SetXY(130, 27)
	pdf.CellFormat(65, 5, "Estado: "+string(o.Status), "", 0, "L", false, 0, "")

	pdf.SetDrawColor(229, 231, 235)
	pdf.Line(15, 48, 195, 48)

	// Customer block
	pdf.SetFont("Helvetica", "B", 14)
	pdf.SetTextColor(30, 58, 138)
	pdf.SetXY(15, 55)
	pdf.CellFormat(100, 8, tr("Información del Cliente"), "", 0, "L", false, 0, "")

	customer := []struct{ label, value string }{
		{"Nombre:", o.CustomerInfo.Name},
		{"Email:", o.CustomerInfo.Email},
		{tr("Teléfono:"), o.CustomerInfo.Phone},
		{tr("Dirección:"), o.CustomerInfo.Address},
	}
	y := 66.0
	pdf.SetFont("Helvetica", "", 9)
	for _, row := range customer {
		pdf.SetTextColor(75, 85, 99)
		pdf.SetXY(15, y)
		pdf.CellFormat(30, 5, row.label, "", 0, "L", false, 0, "")
		pdf.SetTextColor(0, 0, 0)
		pdf.SetXY(48, y)
		pdf.CellFormat(140, 5, tr(row.value), "", 0, "L", false, 0, "")
		y += 6
	}

	// Line items
	pdf.SetFont("Helvetica", "B", 14)
	pdf.SetTextColor(30, 58, 138)
	pdf.SetXY(15, y+6)
	pdf.CellFormat(100, 8, "Detalles del Pedido", "", 0, "L", false, 0, "")

	y += 17
	y = tableHeader(pdf, tr, y)

	for i, it := range o.Items {
		if y > pageBottom {
			pdf.AddPage()
			y = tableHeader(pdf, tr, 20)
		}
		if i%2 == 0 {
			pdf.SetFillColor(249, 250, 251)
			pdf.Rect(15, y, 180, rowHeight, "F")
		}
		pdf.SetFont("Helvetica", "", 9)
		pdf.SetTextColor(0, 0, 0)
		pdf.SetXY(18, y+2)
		pdf.CellFormat(85, 5, tr(it.Name), "", 0, "L", false, 0, "")
		pdf.SetXY(106, y+2)
		pdf.CellFormat(22, 5, fmt.Sprintf("%d", it.Quantity), "", 0, "R", false, 0, "")
		pdf.SetXY(131, y+2)
		pdf.CellFormat(30, 5, fmt.Sprintf("$%.2f", it.Price), "", 0, "R", false, 0, "")
		pdf.SetXY(164, y+2)
		pdf.CellFormat(28, 5, fmt.Sprintf("$%.2f", it.Price*float64(it.Quantity)), "", 0, "R", false, 0, "")
		y += rowHeight
	}

	// The total and payment block needs room above the fixed footer.
	if y+20 > pageBottom {
		pdf.AddPage()
		y = 20
	}

	pdf.SetDrawColor(229, 231, 235)
	pdf.Line(15, y+3, 195, y+3)

	// Total and payment method. The displayed total is order.Total; the sum
	// check above guarantees they agree.
	pdf.SetFont("Helvetica", "", 10)
	pdf.SetTextColor(75, 85, 99)
	pdf.SetXY(15, y+9)
	pdf.CellFormat(90, 6, tr("Método de pago: "+o.PaymentMethod), "", 0, "L", false, 0, "")

	pdf.SetXY(131, y+9)
	pdf.CellFormat(30, 6, "Total:", "", 0, "R", false, 0, "")
	pdf.SetFont("Helvetica", "B", 13)
	pdf.SetTextColor(30, 58, 138)
	pdf.SetXY(160, y+8)
	pdf.CellFormat(32, 8, fmt.Sprintf("$%.2f", o.Total), "", 0, "R", false, 0, "")

	// Footer
	pdf.SetFont("Helvetica", "", 8)
	pdf.SetTextColor(156, 163, 175)
	pdf.SetXY(15, 272)
	pdf.CellFormat(180, 4, vendorThanks, "", 0, "C", false, 0, "")
	pdf.SetXY(15, 277)
	pdf.CellFormat(180, 4, tr(vendorContact), "", 0, "C", false, 0, "")

	if err := pdf.Error(); err != nil {
		return nil, err
	}
	return pdf, nil
}

// Render serializes the receipt to PDF bytes.
func Render(o domain.Order) ([]byte, error) {
	pdf, err := Build(o)
	if err != nil {
		return nil, err
	}
	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func tableHeader(pdf *gofpdf.Fpdf, tr func(string) string, y float64) float64 {
	pdf.SetFillColor(243, 244, 246)
	pdf.Rect(15, y, 180, 7, "F")
	pdf.SetFont("Helvetica", "B", 9)
	pdf.SetTextColor(75, 85, 99)
	pdf.SetXY(18, y+1)
	pdf.CellFormat(85, 5, "Producto", "", 0, "L", false, 0, "")
	pdf.SetXY(106, y+1)
	pdf.CellFormat(22, 5, "Cantidad", "", 0, "R", false, 0, "")
	pdf.SetXY(131, y+1)
	pdf.CellFormat(30, 5, "Precio Unit.", "", 0, "R", false, 0, "")
	pdf.SetXY(164, y+1)
	pdf.CellFormat(28, 5, "Total", "", 0, "R", false, 0, "")
	return y + 10
}

func formatDate(ts string) string {
	for _, layout := range []string{time.RFC3339, "2006-01-02 15:04:05"} {
		if t, err := time.Parse(layout, ts); err == nil {
			return t.Format("02/01/2006")
		}
	}
	return ts
}
