// Package receipt renders the PDF payment receipt attached to
// confirmation mail.
package receipt

import (
	"bytes"
	"fmt"
	"time"

	"github.com/jung-kurt/gofpdf"
)

type Details struct {
	OrderID  string
	Name     string
	Email    string
	Date     string
	Slot     string
	Amount   float64
	Currency string
	PaidAt   time.Time
}

type Generator interface {
	Generate(d Details) ([]byte, error)
}

type PDFGenerator struct{}

func NewPDFGenerator() *PDFGenerator {
	return &PDFGenerator{}
}

func (g *PDFGenerator) Generate(d Details) ([]byte, error) {
	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.AddPage()

	pdf.SetFont("Helvetica", "B", 18)
	pdf.CellFormat(0, 12, "BE PEACE", "", 1, "C", false, 0, "")
	pdf.SetFont("Helvetica", "", 11)
	pdf.CellFormat(0, 8, "Payment Receipt", "", 1, "C", false, 0, "")
	pdf.Ln(6)

	rows := [][2]string{
		{"Receipt for", d.Name},
		{"Email", d.Email},
		{"Order ID", d.OrderID},
		{"Consultation date", d.Date},
		{"Consultation time", d.Slot},
		{"Amount paid", fmt.Sprintf("%.2f %s", d.Amount, d.Currency)},
		{"Paid on", d.PaidAt.Format("02 Jan 2006 15:04 MST")},
	}

	pdf.SetFont("Helvetica", "", 11)
	for _, row := range rows {
		pdf.SetFont("Helvetica", "B", 11)
		pdf.CellFormat(55, 8, row[0], "", 0, "L", false, 0, "")
		pdf.SetFont("Helvetica", "", 11)
		pdf.CellFormat(0, 8, row[1], "", 1, "L", false, 0, "")
	}

	pdf.Ln(8)
	pdf.SetFont("Helvetica", "I", 9)
	pdf.MultiCell(0, 5, "This is a computer generated receipt and does not require a signature.", "", "L", false)

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, fmt.Errorf("receipt: render pdf: %w", err)
	}
	return buf.Bytes(), nil
}

var _ Generator = (*PDFGenerator)(nil)
