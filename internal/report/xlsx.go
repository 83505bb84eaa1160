package report

import (
	"io"
	"strconv"

	"github.com/rotisserie/eris"
	"github.com/tealeg/xlsx/v2"
)

// Sheet names used by XLSXWriter.
const (
	SheetBOM   = "BOM"
	SheetNoFit = "Not fitted"
)

// XLSXWriter writes a workbook with the fitted parts on one sheet and the
// not fitted parts, when there are any, on a second.
type XLSXWriter struct{}

func (XLSXWriter) Ext() string { return "xlsx" }

func (XLSXWriter) Write(w io.Writer, doc Document) error {
	f := xlsx.NewFile()
	bold := xlsx.NewStyle()
	bold.Font.Bold = true
	bold.ApplyFont = true

	sheet, err := f.AddSheet(SheetBOM)
	if err != nil {
		return eris.Wrap(err, "xlsx: add sheet")
	}
	for _, r := range headerRows(doc.Header) {
		row := sheet.AddRow()
		label := row.AddCell()
		label.SetString(r[0])
		label.SetStyle(bold)
		row.AddCell().SetString(r[1])
	}
	sheet.AddRow()
	writeSheetSections(sheet, Sections(doc.Groups, doc.Defaults), bold)

	if len(doc.NoFit) > 0 {
		nf, err := f.AddSheet(SheetNoFit)
		if err != nil {
			return eris.Wrap(err, "xlsx: add sheet")
		}
		writeSheetSections(nf, Sections(doc.NoFit, doc.Defaults), bold)
	}

	if err := f.Write(w); err != nil {
		return eris.Wrap(err, "xlsx: write workbook")
	}
	return nil
}

func writeSheetSections(sheet *xlsx.Sheet, sections []Section, bold *xlsx.Style) {
	head := sheet.AddRow()
	for _, col := range Columns {
		cell := head.AddCell()
		cell.SetString(col)
		cell.SetStyle(bold)
	}

	for _, s := range sections {
		row := sheet.AddRow()
		title := row.AddCell()
		title.SetString(s.Title)
		title.SetStyle(bold)
		if s.Subtitle != "" {
			row.AddCell().SetString(s.Subtitle)
		}

		for _, values := range s.Rows {
			row := sheet.AddRow()
			for i, v := range values {
				cell := row.AddCell()
				// No. and Qty. are numeric cells.
				if n, err := strconv.Atoi(v); err == nil && i < 2 {
					cell.SetInt(n)
					continue
				}
				cell.SetString(v)
			}
		}
	}
}
