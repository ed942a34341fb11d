package pdf

import (
	"bytes"
	"fmt"

	"compras-backend/internal/model"

	"github.com/go-pdf/fpdf"
	"github.com/shopspring/decimal"
)

var hundred = decimal.NewFromInt(100)

// RenderOrder produces the printable purchase-order document: header with
// order number and status, supplier block, items table, totals and the
// approval stamp when the order has been resolved.
func RenderOrder(order *model.Order) (pdfFile []byte, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("RenderOrder panic recover: %v", r)
		}
	}()

	pdf := fpdf.New("P", "mm", "A4", "")
	pdf.AddPage()

	pdf.SetFont("Helvetica", "B", 16)
	pdf.CellFormat(0, 10, "ORDEN DE COMPRA", "", 1, "C", false, 0, "")

	pdf.SetFont("Helvetica", "B", 12)
	pdf.CellFormat(0, 8, order.OrderNumber, "", 1, "C", false, 0, "")
	pdf.SetFont("Helvetica", "", 10)
	pdf.CellFormat(0, 6, "Estado: "+order.Status.Label(), "", 1, "C", false, 0, "")
	pdf.Ln(4)

	// Supplier block
	pdf.SetFont("Helvetica", "B", 11)
	pdf.CellFormat(0, 6, "Proveedor", "", 1, "L", false, 0, "")
	pdf.SetFont("Helvetica", "", 10)
	if order.Supplier != nil {
		pdf.CellFormat(0, 5, order.Supplier.Name, "", 1, "L", false, 0, "")
		if order.Supplier.TaxID != "" {
			pdf.CellFormat(0, 5, "RUC/NIT: "+order.Supplier.TaxID, "", 1, "L", false, 0, "")
		}
		if order.Supplier.Address != "" {
			pdf.CellFormat(0, 5, order.Supplier.Address, "", 1, "L", false, 0, "")
		}
	} else {
		pdf.CellFormat(0, 5, "(sin proveedor asignado)", "", 1, "L", false, 0, "")
	}
	if order.PaymentTerm != nil {
		pdf.CellFormat(0, 5, "Condición de pago: "+order.PaymentTerm.Name, "", 1, "L", false, 0, "")
	}
	pdf.Ln(4)

	// Items table
	widths := []float64{90, 20, 20, 30, 30}
	headers := []string{"Descripción", "Cant.", "Unidad", "P. Unitario", "Total"}
	pdf.SetFont("Helvetica", "B", 9)
	pdf.SetFillColor(230, 230, 230)
	for i, h := range headers {
		pdf.CellFormat(widths[i], 7, h, "1", 0, "C", true, 0, "")
	}
	pdf.Ln(-1)

	pdf.SetFont("Helvetica", "", 9)
	for _, item := range order.Items {
		unit := ""
		if item.Unit != nil {
			unit = item.Unit.Abbreviation
		}
		pdf.CellFormat(widths[0], 6, item.Description, "1", 0, "L", false, 0, "")
		pdf.CellFormat(widths[1], 6, item.Quantity.StringFixed(2), "1", 0, "R", false, 0, "")
		pdf.CellFormat(widths[2], 6, unit, "1", 0, "C", false, 0, "")
		pdf.CellFormat(widths[3], 6, item.UnitPrice.StringFixed(2), "1", 0, "R", false, 0, "")
		pdf.CellFormat(widths[4], 6, item.Total.StringFixed(2), "1", 0, "R", false, 0, "")
		pdf.Ln(-1)
	}

	// Totals
	totalsLabelW := widths[0] + widths[1] + widths[2] + widths[3]
	pdf.SetFont("Helvetica", "", 9)
	pdf.CellFormat(totalsLabelW, 6, "Subtotal", "1", 0, "R", false, 0, "")
	pdf.CellFormat(widths[4], 6, order.Subtotal.StringFixed(2), "1", 1, "R", false, 0, "")
	pdf.CellFormat(totalsLabelW, 6, fmt.Sprintf("Impuesto (%s%%)", order.TaxRate.Mul(hundred).StringFixed(2)), "1", 0, "R", false, 0, "")
	pdf.CellFormat(widths[4], 6, order.TaxAmount.StringFixed(2), "1", 1, "R", false, 0, "")
	pdf.SetFont("Helvetica", "B", 10)
	pdf.CellFormat(totalsLabelW, 7, "TOTAL", "1", 0, "R", false, 0, "")
	pdf.CellFormat(widths[4], 7, order.Total.StringFixed(2), "1", 1, "R", false, 0, "")

	if order.Notes != "" {
		pdf.Ln(4)
		pdf.SetFont("Helvetica", "I", 9)
		pdf.MultiCell(0, 5, "Notas: "+order.Notes, "", "L", false)
	}

	// Approval stamp
	if order.ResolvedAt != nil {
		pdf.Ln(6)
		pdf.SetFont("Helvetica", "B", 10)
		verb := "Aprobada"
		if order.Status == model.StatusCancelled {
			verb = "Rechazada"
		}
		stamp := fmt.Sprintf("%s por %s el %s", verb, order.ResolvedBy, order.ResolvedAt.Format("02/01/2006 15:04"))
		pdf.CellFormat(0, 7, stamp, "", 1, "L", false, 0, "")
		if order.RejectionReason != "" {
			pdf.SetFont("Helvetica", "", 9)
			pdf.MultiCell(0, 5, "Motivo: "+order.RejectionReason, "", "L", false)
		}
	}

	buf := new(bytes.Buffer)
	if err := pdf.Output(buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
