package admin

import (
	"fmt"
	"io"

	"github.com/xuri/excelize/v2"
)

// MaxExportRows caps a spreadsheet export
const MaxExportRows = 10000

// WriteXLSX writes rows as a single-sheet workbook with one header row of
// list_display columns.
func (m *ModelAdmin) WriteXLSX(w io.Writer, rows []Row) error {
	f := excelize.NewFile()
	defer f.Close()

	sheet := m.Name
	if err := f.SetSheetName("Sheet1", sheet); err != nil {
		return fmt.Errorf("rename sheet: %w", err)
	}

	header := make([]interface{}, len(m.ListDisplay))
	for i, col := range m.ListDisplay {
		header[i] = col
	}
	if err := f.SetSheetRow(sheet, "A1", &header); err != nil {
		return fmt.Errorf("write header: %w", err)
	}

	for i, row := range rows {
		values := make([]interface{}, len(m.ListDisplay))
		for j, col := range m.ListDisplay {
			values[j] = row[col]
		}
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return err
		}
		if err := f.SetSheetRow(sheet, cell, &values); err != nil {
			return fmt.Errorf("write row %d: %w", i+1, err)
		}
	}

	if _, err := f.WriteTo(w); err != nil {
		return fmt.Errorf("write workbook: %w", err)
	}
	return nil
}
