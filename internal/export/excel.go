package export

import (
	"fmt"
	"io"

	"github.com/xuri/excelize/v2"

	"github.com/loomstock/loomstock/internal/reports"
)

const inventorySheet = "Inventory"

// WriteInventoryExcel renders the inventory snapshot as a workbook
// with a bold header row.
func WriteInventoryExcel(w io.Writer, rows []reports.InventoryRow) error {
	f := excelize.NewFile()
	defer f.Close()

	f.SetSheetName("Sheet1", inventorySheet)

	headerStyle, err := f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Bold: true},
		Alignment: &excelize.Alignment{Horizontal: "center"},
	})
	if err != nil {
		return fmt.Errorf("export: build header style: %w", err)
	}
	for i, h := range inventoryHeader {
		cell, err := excelize.CoordinatesToCellName(i+1, 1)
		if err != nil {
			return fmt.Errorf("export: header cell name: %w", err)
		}
		if err := f.SetCellValue(inventorySheet, cell, h); err != nil {
			return fmt.Errorf("export: write header: %w", err)
		}
		if err := f.SetCellStyle(inventorySheet, cell, cell, headerStyle); err != nil {
			return fmt.Errorf("export: style header: %w", err)
		}
	}
	if err := f.SetColWidth(inventorySheet, "A", "J", 18); err != nil {
		return fmt.Errorf("export: set column width: %w", err)
	}

	for i, row := range rows {
		price := 0.0
		if row.UnitPrice != nil {
			price = *row.UnitPrice
		}
		values := []any{
			row.ProductCode,
			row.ClothType,
			row.FabricType,
			row.Color,
			row.SizeSet,
			row.StockQuantity,
			row.LowStockThreshold,
			price,
			reports.StatusFor(row.StockQuantity, row.LowStockThreshold),
			price * float64(row.StockQuantity),
		}
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return fmt.Errorf("export: row cell name: %w", err)
		}
		if err := f.SetSheetRow(inventorySheet, cell, &values); err != nil {
			return fmt.Errorf("export: write row: %w", err)
		}
	}

	if err := f.Write(w); err != nil {
		return fmt.Errorf("export: write workbook: %w", err)
	}
	return nil
}
