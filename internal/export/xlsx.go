// Package export renders the catalog as a spreadsheet.
package export

import (
	"fmt"

	"github.com/xuri/excelize/v2"

	"inventory/api/internal/models"
)

const sheetName = "Inventory"

// Inventory builds an XLSX workbook with one row per item: name,
// quantity, location, and a clickable photo link when the item has one.
// Items should arrive ordered by name.
func Inventory(items []models.Item) ([]byte, error) {
	f := excelize.NewFile()
	defer f.Close()

	index, err := f.NewSheet(sheetName)
	if err != nil {
		return nil, fmt.Errorf("create sheet: %w", err)
	}
	f.SetActiveSheet(index)
	if err := f.DeleteSheet("Sheet1"); err != nil {
		return nil, fmt.Errorf("drop default sheet: %w", err)
	}

	for col, width := range map[string]float64{"A": 40, "B": 15, "C": 30, "D": 15} {
		if err := f.SetColWidth(sheetName, col, col, width); err != nil {
			return nil, fmt.Errorf("set column width: %w", err)
		}
	}

	header := []any{"Item", "Quantity", "Location", "Photo"}
	if err := f.SetSheetRow(sheetName, "A1", &header); err != nil {
		return nil, fmt.Errorf("write header: %w", err)
	}

	for i, item := range items {
		row := i + 2
		values := []any{item.Name, item.Quantity, item.Location}
		cell := fmt.Sprintf("A%d", row)
		if err := f.SetSheetRow(sheetName, cell, &values); err != nil {
			return nil, fmt.Errorf("write row %d: %w", row, err)
		}

		photoCell := fmt.Sprintf("D%d", row)
		if item.PhotoURL != nil && *item.PhotoURL != "" {
			if err := f.SetCellValue(sheetName, photoCell, "View Photo"); err != nil {
				return nil, fmt.Errorf("write photo cell: %w", err)
			}
			if err := f.SetCellHyperLink(sheetName, photoCell, *item.PhotoURL, "External"); err != nil {
				return nil, fmt.Errorf("link photo cell: %w", err)
			}
		} else {
			if err := f.SetCellValue(sheetName, photoCell, "N/A"); err != nil {
				return nil, fmt.Errorf("write photo cell: %w", err)
			}
		}
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("serialize workbook: %w", err)
	}
	return buf.Bytes(), nil
}
