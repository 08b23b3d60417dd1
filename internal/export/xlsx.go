package export

import (
	"fmt"
	"io"

	"github.com/xuri/excelize/v2"
)

const xlsxSheet = "Report"

// WriteXLSX writes a single-sheet workbook: title, generated and stats lines,
// then the table starting on row 5 with a styled header.
func WriteXLSX(w io.Writer, doc Document) error {
	f := excelize.NewFile()
	defer func() { _ = f.Close() }()

	if err := f.SetSheetName("Sheet1", xlsxSheet); err != nil {
		return fmt.Errorf("xlsx: rename sheet: %w", err)
	}
	for cell, v := range map[string]string{"A1": doc.Title, "A2": doc.Generated, "A3": doc.StatsLine} {
		if err := f.SetCellValue(xlsxSheet, cell, v); err != nil {
			return fmt.Errorf("xlsx: %s: %w", cell, err)
		}
	}

	title, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true, Size: 16}})
	if err != nil {
		return fmt.Errorf("xlsx: title style: %w", err)
	}
	if err := f.SetCellStyle(xlsxSheet, "A1", "A1", title); err != nil {
		return fmt.Errorf("xlsx: title style: %w", err)
	}
	head, err := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true, Color: "FFFFFF"},
		Fill: excelize.Fill{Type: "pattern", Color: []string{"3B82F6"}, Pattern: 1},
	})
	if err != nil {
		return fmt.Errorf("xlsx: header style: %w", err)
	}

	const firstRow = 5
	if err := setRow(f, firstRow, doc.Header); err != nil {
		return err
	}
	last, _ := excelize.CoordinatesToCellName(len(doc.Header), firstRow)
	if err := f.SetCellStyle(xlsxSheet, "A5", last, head); err != nil {
		return fmt.Errorf("xlsx: header style: %w", err)
	}
	for i, row := range doc.Rows {
		if err := setRow(f, firstRow+1+i, row); err != nil {
			return err
		}
	}
	if err := f.SetColWidth(xlsxSheet, "A", "D", 22); err != nil {
		return fmt.Errorf("xlsx: column width: %w", err)
	}

	if err := f.Write(w); err != nil {
		return fmt.Errorf("xlsx: write: %w", err)
	}
	return nil
}

func setRow(f *excelize.File, row int, values []string) error {
	cell, err := excelize.CoordinatesToCellName(1, row)
	if err != nil {
		return fmt.Errorf("xlsx: row %d: %w", row, err)
	}
	cells := make([]interface{}, len(values))
	for i, v := range values {
		cells[i] = v
	}
	if err := f.SetSheetRow(xlsxSheet, cell, &cells); err != nil {
		return fmt.Errorf("xlsx: row %d: %w", row, err)
	}
	return nil
}
