package export

import (
	"io"

	"github.com/go-pdf/fpdf"
)

const (
	pdfMargin    = 14.0
	pdfTopMargin = 15.0
	pdfRowHeight = 8.0
	pdfFont      = "Helvetica"
)

// Column widths in mm; they fill an A4 page between the side margins.
var pdfColumns = []float64{35, 65, 50, 32}

// WritePDF writes an A4 document: title, generated line, stats line and a
// striped table whose header repeats on every page.
func WritePDF(w io.Writer, doc Document) error {
	return renderPDF(doc).Output(w)
}

func renderPDF(doc Document) *fpdf.Fpdf {
	pdf := fpdf.New("P", "mm", "A4", "")
	pdf.SetMargins(pdfMargin, pdfTopMargin, pdfMargin)
	pdf.SetAutoPageBreak(false, 0)
	tr := pdf.UnicodeTranslatorFromDescriptor("")
	_, pageHeight := pdf.GetPageSize()

	pdf.AddPage()
	pdf.SetFont(pdfFont, "", 18)
	pdf.Text(pdfMargin, 20, tr(doc.Title))
	pdf.SetFont(pdfFont, "", 10)
	pdf.Text(pdfMargin, 28, tr(doc.Generated))
	pdf.Text(pdfMargin, 35, tr(doc.StatsLine))

	header := func() {
		pdf.SetFont(pdfFont, "B", 10)
		pdf.SetFillColor(59, 130, 246)
		pdf.SetTextColor(255, 255, 255)
		for i, h := range doc.Header {
			pdf.CellFormat(pdfColumns[i], pdfRowHeight, tr(h), "", 0, "L", true, 0, "")
		}
		pdf.Ln(pdfRowHeight)
		pdf.SetFont(pdfFont, "", 10)
		pdf.SetTextColor(0, 0, 0)
		pdf.SetFillColor(241, 245, 249)
	}

	pdf.SetXY(pdfMargin, 42)
	header()
	for i, row := range doc.Rows {
		if pdf.GetY()+pdfRowHeight > pageHeight-pdfTopMargin {
			pdf.AddPage()
			header()
		}
		stripe := i%2 == 1
		for j, cell := range row {
			pdf.CellFormat(pdfColumns[j], pdfRowHeight, tr(cell), "", 0, "L", stripe, 0, "")
		}
		pdf.Ln(pdfRowHeight)
	}
	return pdf
}
