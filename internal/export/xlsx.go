package export

import (
	"github.com/rotisserie/eris"
	"github.com/tealeg/xlsx/v2"

	"github.com/mymedia/leadgen-cli/internal/model"
)

// WriteXLSX writes the report to path as a single-sheet workbook.
func WriteXLSX(path, sheetName string, businesses []model.Business) error {
	f := xlsx.NewFile()
	sheet, err := f.AddSheet(sheetName)
	if err != nil {
		return eris.Wrapf(err, "export: add sheet %q", sheetName)
	}

	header := sheet.AddRow()
	for _, h := range Headers {
		header.AddCell().Value = h
	}
	for _, cells := range Rows(businesses) {
		row := sheet.AddRow()
		for _, c := range cells {
			row.AddCell().Value = c
		}
	}

	return eris.Wrap(f.Save(path), "export: save xlsx")
}
