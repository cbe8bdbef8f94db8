package export

import (
	"bufio"
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"time"

	"github.com/loomstock/loomstock/internal/reports"
)

const (
	csvFlushEvery = 200
	csvBufferSize = 32 * 1024
)

type csvStreamer struct {
	buf          *bufio.Writer
	csv          *csv.Writer
	flushEvery   int
	pendingLines int
}

func newCSVStreamer(w io.Writer) *csvStreamer {
	buf := bufio.NewWriterSize(w, csvBufferSize)
	writer := csv.NewWriter(buf)
	writer.UseCRLF = true
	return &csvStreamer{buf: buf, csv: writer, flushEvery: csvFlushEvery}
}

func (s *csvStreamer) writeRow(row []string) error {
	if s == nil || s.csv == nil {
		return fmt.Errorf("csv streamer not initialised")
	}
	if err := s.csv.Write(row); err != nil {
		return err
	}
	s.pendingLines++
	if s.flushEvery > 0 && s.pendingLines >= s.flushEvery {
		return s.Flush()
	}
	return nil
}

func (s *csvStreamer) Flush() error {
	if s == nil || s.csv == nil || s.buf == nil {
		return fmt.Errorf("csv streamer not initialised")
	}
	s.csv.Flush()
	if err := s.csv.Error(); err != nil {
		return err
	}
	if err := s.buf.Flush(); err != nil {
		return err
	}
	s.pendingLines = 0
	return nil
}

func (s *csvStreamer) Close() error {
	return s.Flush()
}

var inventoryHeader = []string{
	"Product_Code", "Cloth_Type", "Fabric_Type", "Color", "Size_Set",
	"Stock_Quantity", "Low_Stock_Threshold", "Unit_Price", "Status", "Total_Value",
}

var movementHeader = []string{
	"Date", "Product_Code", "Cloth_Type", "Fabric_Type", "Movement_Type",
	"Quantity", "Reason", "Created_By", "Notes",
}

var lowStockHeader = []string{
	"Product_Code", "Cloth_Type", "Fabric_Type", "Color", "Size_Set",
	"Stock_Quantity", "Low_Stock_Threshold", "Unit_Price", "Status", "Urgency",
}

// WriteInventoryCSV streams the inventory snapshot as CSV rows.
func WriteInventoryCSV(w io.Writer, rows []reports.InventoryRow) error {
	streamer := newCSVStreamer(w)
	if err := streamer.writeRow(inventoryHeader); err != nil {
		return err
	}
	for _, row := range rows {
		price := 0.0
		if row.UnitPrice != nil {
			price = *row.UnitPrice
		}
		record := []string{
			row.ProductCode,
			row.ClothType,
			row.FabricType,
			row.Color,
			row.SizeSet,
			strconv.FormatInt(row.StockQuantity, 10),
			strconv.FormatInt(row.LowStockThreshold, 10),
			formatMoney(price),
			reports.StatusFor(row.StockQuantity, row.LowStockThreshold),
			formatMoney(price * float64(row.StockQuantity)),
		}
		if err := streamer.writeRow(record); err != nil {
			return err
		}
	}
	return streamer.Close()
}

// WriteMovementsCSV streams a ledger window as CSV rows.
func WriteMovementsCSV(w io.Writer, rows []reports.MovementRow) error {
	streamer := newCSVStreamer(w)
	if err := streamer.writeRow(movementHeader); err != nil {
		return err
	}
	for _, row := range rows {
		record := []string{
			row.MovementDate.UTC().Format(time.RFC3339),
			row.ProductCode,
			row.ClothType,
			row.FabricType,
			row.MovementType,
			strconv.FormatInt(row.Quantity, 10),
			row.Reason,
			row.CreatedBy,
			row.Notes,
		}
		if err := streamer.writeRow(record); err != nil {
			return err
		}
	}
	return streamer.Close()
}

// WriteLowStockCSV streams the low stock alert report as CSV rows.
func WriteLowStockCSV(w io.Writer, entries []reports.LowStockEntry) error {
	streamer := newCSVStreamer(w)
	if err := streamer.writeRow(lowStockHeader); err != nil {
		return err
	}
	for _, entry := range entries {
		record := []string{
			entry.ProductCode,
			entry.ClothType,
			entry.FabricType,
			entry.Color,
			entry.SizeSet,
			strconv.FormatInt(entry.StockQuantity, 10),
			strconv.FormatInt(entry.LowStockThreshold, 10),
			formatMoney(entry.UnitPrice),
			entry.Status,
			entry.Urgency,
		}
		if err := streamer.writeRow(record); err != nil {
			return err
		}
	}
	return streamer.Close()
}

func formatMoney(v float64) string {
	return strconv.FormatFloat(v, 'f', 2, 64)
}
