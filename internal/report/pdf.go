package report

import (
	"io"
	"strconv"
	"strings"

	"github.com/go-pdf/fpdf"
	"github.com/rotisserie/eris"
)

// PDF layout in millimetres, A4 landscape.
const (
	pdfMargin   = 15.0
	pdfLineH    = 4.5
	pdfPad      = 1.5
	pdfFont     = "Helvetica"
	pdfFontSize = 9.0
)

// pdfWidths are the column widths for Columns, filling the printable width.
var pdfWidths = []float64{15, 15, 35, 45, 45, 55, 57}

// PDFWriter renders a printable A4 landscape BOM with a "page x of y"
// footer.
type PDFWriter struct{}

func (PDFWriter) Ext() string { return "pdf" }

func (PDFWriter) Write(w io.Writer, doc Document) error {
	pdf := fpdf.New("L", "mm", "A4", "")
	pdf.SetMargins(pdfMargin, pdfMargin, pdfMargin)
	pdf.SetAutoPageBreak(false, pdfMargin)
	pdf.AliasNbPages("")
	pdf.SetTitle(doc.Header.Title, true)
	pdf.SetCreator("kibom", true)

	t := &pdfTable{pdf: pdf, tr: pdf.UnicodeTranslatorFromDescriptor("")}
	pdf.SetFooterFunc(func() {
		pdf.SetY(-pdfMargin + 5)
		pdf.SetFont(pdfFont, "", 8)
		pdf.CellFormat(0, 5, strconv.Itoa(pdf.PageNo())+" of {nb}", "", 0, "C", false, 0, "")
	})

	pdf.AddPage()
	t.titleBlock(headerRows(doc.Header))
	t.sections(Sections(doc.Groups, doc.Defaults))
	if len(doc.NoFit) > 0 {
		t.banner("Not fitted")
		t.sections(Sections(doc.NoFit, doc.Defaults))
	}

	if err := pdf.Output(w); err != nil {
		return eris.Wrap(err, "pdf: output")
	}
	return nil
}

type pdfTable struct {
	pdf *fpdf.Fpdf
	tr  func(string) string
}

func (t *pdfTable) titleBlock(rows [][2]string) {
	for _, r := range rows {
		t.pdf.SetFont(pdfFont, "B", pdfFontSize)
		t.pdf.CellFormat(25, pdfLineH+1, t.tr(r[0]), "", 0, "L", false, 0, "")
		t.pdf.SetFont(pdfFont, "", pdfFontSize)
		t.pdf.CellFormat(0, pdfLineH+1, t.tr(r[1]), "", 1, "L", false, 0, "")
	}
	t.pdf.Ln(pdfLineH)
	t.columnHeader()
}

func (t *pdfTable) columnHeader() {
	t.pdf.SetFont(pdfFont, "B", pdfFontSize)
	t.pdf.SetFillColor(211, 211, 211)
	t.row(Columns, true, "C")
	t.pdf.SetFont(pdfFont, "", pdfFontSize)
}

func (t *pdfTable) sections(sections []Section) {
	for _, s := range sections {
		heading := s.Title
		if s.Subtitle != "" {
			heading += "\n" + s.Subtitle
		}
		t.banner(heading)
		for _, r := range s.Rows {
			t.row(r, false, "L")
		}
	}
}

// banner is a full width shaded row.
func (t *pdfTable) banner(text string) {
	lines := strings.Split(text, "\n")
	h := float64(len(lines))*pdfLineH + pdfPad
	t.ensure(h)

	x, y := t.pdf.GetXY()
	width := 0.0
	for _, w := range pdfWidths {
		width += w
	}
	t.pdf.SetFillColor(211, 211, 211)
	t.pdf.Rect(x, y, width, h, "FD")
	for i, l := range lines {
		style := ""
		if i == 0 {
			style = "B"
		}
		t.pdf.SetFont(pdfFont, style, pdfFontSize)
		t.pdf.SetXY(x, y+float64(i)*pdfLineH)
		t.pdf.CellFormat(width, pdfLineH+pdfPad, t.tr(l), "", 0, "L", false, 0, "")
	}
	t.pdf.SetFont(pdfFont, "", pdfFontSize)
	t.pdf.SetXY(x, y+h)
}

// row draws one bordered table row, growing it to fit wrapped cell text.
func (t *pdfTable) row(cells []string, fill bool, align string) {
	wrapped := make([][]string, len(cells))
	n := 1
	for i, c := range cells {
		wrapped[i] = t.wrap(t.tr(c), pdfWidths[i]-2*pdfPad)
		n = max(n, len(wrapped[i]))
	}
	h := float64(n)*pdfLineH + pdfPad
	if t.ensure(h) && !fill {
		t.columnHeader()
	}

	style := "D"
	if fill {
		style = "FD"
	}
	x, y := t.pdf.GetXY()
	left := x
	for i, lines := range wrapped {
		t.pdf.Rect(x, y, pdfWidths[i], h, style)
		for j, l := range lines {
			t.pdf.SetXY(x, y+float64(j)*pdfLineH)
			t.pdf.CellFormat(pdfWidths[i], pdfLineH+pdfPad, l, "", 0, align, false, 0, "")
		}
		x += pdfWidths[i]
	}
	t.pdf.SetXY(left, y+h)
}

// ensure starts a new page when h does not fit above the bottom margin. It
// reports whether a page was added.
func (t *pdfTable) ensure(h float64) bool {
	_, pageH := t.pdf.GetPageSize()
	if t.pdf.GetY()+h <= pageH-pdfMargin-5 {
		return false
	}
	t.pdf.AddPage()
	return true
}

// wrap breaks single-byte encoded text into lines no wider than width.
// Words longer than a line are split.
func (t *pdfTable) wrap(s string, width float64) []string {
	var lines []string
	line := ""
	for _, word := range strings.Fields(s) {
		candidate := word
		if line != "" {
			candidate = line + " " + word
		}
		if t.pdf.GetStringWidth(candidate) <= width {
			line = candidate
			continue
		}
		if line != "" {
			lines = append(lines, line)
		}
		for t.pdf.GetStringWidth(word) > width && len(word) > 1 {
			cut := len(word) - 1
			for cut > 1 && t.pdf.GetStringWidth(word[:cut]) > width {
				cut--
			}
			lines = append(lines, word[:cut])
			word = word[cut:]
		}
		line = word
	}
	if line != "" {
		lines = append(lines, line)
	}
	return lines
}
