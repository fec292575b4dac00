package sheet

import (
	"fmt"

	"github.com/xuri/excelize/v2"
)

const sampleSheet = "Addresses"

var sampleRows = [][]string{
	{"0x1234567890123456789012345678901234567890", "abcdef1234567890abcdef1234567890abcdef1234567890abcdef1234567890"},
	{"0x2345678901234567890123456789012345678901", "bcdef1234567890abcdef1234567890abcdef1234567890abcdef1234567890a"},
	{"0x3456789012345678901234567890123456789012", "cdef1234567890abcdef1234567890abcdef1234567890abcdef1234567890ab"},
}

// WriteSample creates a workbook with placeholder credentials showing the
// expected layout.
func WriteSample(path string) error {
	return WriteWorkbook(path, sampleSheet, []string{"address", "privatekey"}, sampleRows)
}

// WriteWorkbook writes a single-sheet workbook with a header row.
func WriteWorkbook(path, sheetName string, header []string, rows [][]string) error {
	book := excelize.NewFile()
	defer book.Close()

	defaultSheet := book.GetSheetName(0)
	if err := book.SetSheetName(defaultSheet, sheetName); err != nil {
		return err
	}
	if err := book.SetSheetRow(sheetName, "A1", &header); err != nil {
		return err
	}
	for i, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return err
		}
		values := row
		if err := book.SetSheetRow(sheetName, cell, &values); err != nil {
			return err
		}
	}
	if err := book.SaveAs(path); err != nil {
		return fmt.Errorf("save %s: %w", path, err)
	}
	return nil
}
