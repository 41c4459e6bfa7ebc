package export

import (
	"fmt"
	"io"

	"github.com/xuri/excelize/v2"
)

// WriteXLSX renders the export assembly as a workbook with three sheets:
// Summary, Subject Analysis, and Student Performance.
func WriteXLSX(data Data, w io.Writer) error {
	f := excelize.NewFile()
	defer f.Close()

	for i, table := range []Table{data.Summary, data.SubjectAnalysis, data.StudentPerformance} {
		if i == 0 {
			// The workbook starts with one default sheet; rename it.
			if err := f.SetSheetName("Sheet1", table.Name); err != nil {
				return fmt.Errorf("rename sheet %s: %w", table.Name, err)
			}
		} else {
			if _, err := f.NewSheet(table.Name); err != nil {
				return fmt.Errorf("create sheet %s: %w", table.Name, err)
			}
		}
		if err := writeSheet(f, table); err != nil {
			return err
		}
	}

	if err := f.Write(w); err != nil {
		return fmt.Errorf("write workbook: %w", err)
	}
	return nil
}

func writeSheet(f *excelize.File, table Table) error {
	if err := setRow(f, table.Name, 1, table.Columns); err != nil {
		return err
	}
	for i, row := range table.Rows {
		if err := setRow(f, table.Name, i+2, row); err != nil {
			return err
		}
	}
	return nil
}

func setRow(f *excelize.File, sheet string, row int, values []string) error {
	cell, err := excelize.CoordinatesToCellName(1, row)
	if err != nil {
		return fmt.Errorf("sheet %s row %d: %w", sheet, row, err)
	}
	cells := make([]interface{}, len(values))
	for i, v := range values {
		cells[i] = v
	}
	if err := f.SetSheetRow(sheet, cell, &cells); err != nil {
		return fmt.Errorf("sheet %s row %d: %w", sheet, row, err)
	}
	return nil
}
