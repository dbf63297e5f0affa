package pdf

import (
	"fmt"
	"io"

	"github.com/jung-kurt/gofpdf"
	"github.com/pkg/errors"

	"github.com/trezcool/shule/core"
	"github.com/trezcool/shule/core/result"
)

const (
	font       = "Arial"
	rowHeight  = 7.0
	headHeight = 8.0
)

type Renderer struct {
	appName string
}

var _ result.Renderer = (*Renderer)(nil)

func NewRenderer(conf *core.Config) *Renderer {
	return &Renderer{appName: conf.AppName}
}

func (*Renderer) ContentType() string { return "application/pdf" }

func (*Renderer) Extension() string { return "pdf" }

// Render writes doc as an A4 PDF table.
func (r *Renderer) Render(w io.Writer, doc result.Document) error {
	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.SetTitle(doc.Title, true)
	pdf.SetCreator(r.appName, true)
	tr := pdf.UnicodeTranslatorFromDescriptor("")

	pdf.SetFooterFunc(func() {
		pdf.SetY(-15)
		pdf.SetFont(font, "I", 8)
		pdf.SetTextColor(100, 100, 100)
		pdf.CellFormat(0, 10, fmt.Sprintf("Page %d", pdf.PageNo()), "", 0, "C", false, 0, "")
	})
	pdf.AddPage()

	pageW, _ := pdf.GetPageSize()
	left, _, right, _ := pdf.GetMargins()
	tableW := pageW - left - right

	// header
	pdf.SetFont(font, "B", 18)
	pdf.Cell(0, 8, tr(r.appName))
	pdf.Ln(9)
	pdf.SetFont(font, "B", 14)
	pdf.Cell(0, 7, tr(doc.Title))
	pdf.Ln(7)
	if doc.Subtitle != "" {
		pdf.SetFont(font, "", 11)
		pdf.Cell(0, 6, tr(doc.Subtitle))
		pdf.Ln(6)
	}
	pdf.SetDrawColor(40, 145, 108)
	pdf.SetLineWidth(0.5)
	pdf.Line(left, pdf.GetY()+1, pageW-right, pdf.GetY()+1)
	pdf.Ln(4)

	if len(doc.Filters) > 0 {
		pdf.SetFont(font, "", 9)
		for _, f := range doc.Filters {
			pdf.Cell(0, 5, tr(f))
			pdf.Ln(5)
		}
		pdf.Ln(2)
	}

	// table
	widths := columnWidths(doc.Columns, tableW)
	header := func() {
		pdf.SetFont(font, "B", 9)
		pdf.SetFillColor(40, 145, 108)
		pdf.SetTextColor(255, 255, 255)
		for i, col := range doc.Columns {
			pdf.CellFormat(widths[i], headHeight, tr(col.Header), "1", 0, "C", true, 0, "")
		}
		pdf.Ln(-1)
		pdf.SetTextColor(0, 0, 0)
		pdf.SetFont(font, "", 9)
		pdf.SetFillColor(245, 245, 245)
	}
	header()

	_, pageH := pdf.GetPageSize()
	_, _, _, bottom := pdf.GetMargins()
	if len(doc.Rows) == 0 {
		pdf.SetFont(font, "I", 10)
		pdf.CellFormat(tableW, 10, "No results.", "1", 1, "C", false, 0, "")
	}
	for n, row := range doc.Rows {
		if pdf.GetY()+rowHeight > pageH-bottom-10 {
			pdf.AddPage()
			header()
		}
		fill := n%2 == 0
		for i, col := range doc.Columns {
			var val string
			if i < len(row) {
				val = row[i]
			}
			pdf.CellFormat(widths[i], rowHeight, tr(val), "1", 0, col.Align, fill, 0, "")
		}
		pdf.Ln(-1)
	}

	// summary
	if len(doc.Summary) > 0 {
		pdf.Ln(4)
		pdf.SetFont(font, "B", 10)
		for _, s := range doc.Summary {
			pdf.Cell(0, 6, tr(s))
			pdf.Ln(6)
		}
	}

	pdf.Ln(6)
	pdf.SetFont(font, "I", 8)
	pdf.SetTextColor(100, 100, 100)
	pdf.Cell(0, 5, fmt.Sprintf("Generated on %s", doc.GeneratedAt.Format("January 02, 2006 at 3:04 PM")))

	if err := pdf.Output(w); err != nil {
		return errors.Wrap(err, "rendering pdf")
	}
	return nil
}

// columnWidths spreads the table width according to the relative column widths.
func columnWidths(cols []result.Column, tableW float64) []float64 {
	var total float64
	for _, col := range cols {
		total += col.Width
	}
	widths := make([]float64, len(cols))
	for i, col := range cols {
		if total == 0 {
			widths[i] = tableW / float64(len(cols))
			continue
		}
		widths[i] = tableW * col.Width / total
	}
	return widths
}
