package testkit

import (
	"fmt"

	"github.com/xuri/excelize/v2"
)

// Sheet is one worksheet to write: a name and its rows, header first.
// Values may be strings, numbers or bools; nil leaves the cell blank.
type Sheet struct {
	Name string
	Rows [][]interface{}
}

// WorkbookBytes writes the sheets, in order, into an in-memory xlsx file
func WorkbookBytes(sheets ...Sheet) ([]byte, error) {
	if len(sheets) == 0 {
		return nil, fmt.Errorf("at least one sheet is required")
	}

	f := excelize.NewFile()
	defer f.Close()

	for i, sheet := range sheets {
		if i == 0 {
			if err := f.SetSheetName("Sheet1", sheet.Name); err != nil {
				return nil, fmt.Errorf("failed to rename first sheet: %w", err)
			}
		} else if _, err := f.NewSheet(sheet.Name); err != nil {
			return nil, fmt.Errorf("failed to add sheet %s: %w", sheet.Name, err)
		}

		for r, row := range sheet.Rows {
			cell, err := excelize.CoordinatesToCellName(1, r+1)
			if err != nil {
				return nil, err
			}
			values := row
			if err := f.SetSheetRow(sheet.Name, cell, &values); err != nil {
				return nil, fmt.Errorf("failed to write row %d of %s: %w", r+1, sheet.Name, err)
			}
		}
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("failed to serialize workbook: %w", err)
	}
	return buf.Bytes(), nil
}

// SalesSheet is the small product sales table used for chart and filter demos
func SalesSheet() Sheet {
	return Sheet{
		Name: "Sales Data",
		Rows: [][]interface{}{
			{"ID", "Product", "Category", "Date", "Revenue", "Cost"},
			{1, "Widget A", "Gadgets", "2023-01-01", 1000, 500},
			{2, "Widget B", "Gadgets", "2023-01-02", 1200, 600},
			{3, "Tool X", "Tools", "2023-01-03", 800, 300},
			{4, "Widget A", "Gadgets", "2023-01-04", 1100, 550},
			{5, "Tool Y", "Tools", "2023-01-05", 1500, 800},
			{6, "Widget C", "Gadgets", "2023-01-06", 950, 400},
		},
	}
}

// SampleWorkbook returns the sales table as xlsx bytes
func SampleWorkbook() ([]byte, error) {
	return WorkbookBytes(SalesSheet())
}
