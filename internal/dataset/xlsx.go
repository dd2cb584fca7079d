package dataset

import (
	"github.com/rotisserie/eris"
	"github.com/tealeg/xlsx/v2"
)

// ExportXLSX writes the full table to an XLSX workbook. This is the paid
// bundle: unlike the dashboard's teaser slice, nothing is capped or masked.
func (t *Table) ExportXLSX(path string) error {
	file := xlsx.NewFile()
	sheet, err := file.AddSheet("Jobs")
	if err != nil {
		return eris.Wrap(err, "dataset: add sheet")
	}

	headerRow := sheet.AddRow()
	for _, col := range header {
		headerRow.AddCell().Value = col
	}

	for _, rec := range t.records {
		row := sheet.AddRow()
		for _, cell := range toRow(rec) {
			row.AddCell().Value = cell
		}
	}

	if err := file.Save(path); err != nil {
		return eris.Wrapf(err, "dataset: save %s", path)
	}
	return nil
}
