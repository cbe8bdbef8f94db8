package export

import (
	"bytes"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/loomstock/loomstock/internal/reports"
)

func ptr(f float64) *float64 { return &f }

func snapshot() []reports.InventoryRow {
	return []reports.InventoryRow{
		{ProductCode: "DRS-001", ClothType: "DRESS", FabricType: "COTTON", Color: "Red", SizeSet: "STANDARD", UnitPrice: ptr(25), StockQuantity: 100, LowStockThreshold: 10},
		{ProductCode: "SKT-001", ClothType: "SKIRT", FabricType: "DENIM", Color: "Blue", SizeSet: "PLUS", UnitPrice: nil, StockQuantity: 0, LowStockThreshold: 5},
	}
}

func TestWriteInventoryCSV(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteInventoryCSV(&buf, snapshot()))

	out := buf.String()
	require.True(t, strings.HasPrefix(out, "Product_Code,Cloth_Type,Fabric_Type,Color,Size_Set,Stock_Quantity,Low_Stock_Threshold,Unit_Price,Status,Total_Value\r\n"))
	require.Contains(t, out, "DRS-001,DRESS,COTTON,Red,STANDARD,100,10,25.00,In Stock,2500.00\r\n")
	require.Contains(t, out, "SKT-001,SKIRT,DENIM,Blue,PLUS,0,5,0.00,Out of Stock,0.00\r\n")
}

func TestWriteMovementsCSV(t *testing.T) {
	when := time.Date(2026, 3, 1, 9, 30, 0, 0, time.UTC)
	rows := []reports.MovementRow{
		{ProductCode: "DRS-001", ClothType: "DRESS", FabricType: "COTTON", MovementType: "OUT", Quantity: 5, Reason: "SALE", CreatedBy: "worker1", Notes: "order 1042", MovementDate: when},
	}

	var buf bytes.Buffer
	require.NoError(t, WriteMovementsCSV(&buf, rows))

	out := buf.String()
	require.Contains(t, out, "Date,Product_Code,Cloth_Type,Fabric_Type,Movement_Type,Quantity,Reason,Created_By,Notes\r\n")
	require.Contains(t, out, "2026-03-01T09:30:00Z,DRS-001,DRESS,COTTON,OUT,5,SALE,worker1,order 1042\r\n")
}

func TestDateWindowDefaultsOpen(t *testing.T) {
	from, to, err := dateWindow(httptest.NewRequest(http.MethodGet, "/export/movements/csv", nil))
	require.NoError(t, err)
	require.True(t, from.IsZero())
	require.True(t, to.IsZero())

	req := httptest.NewRequest(http.MethodGet, "/export/movements/csv?startDate=2026-03-01&endDate=2026-03-05", nil)
	from, to, err = dateWindow(req)
	require.NoError(t, err)
	require.Equal(t, time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC), from)
	require.Equal(t, time.Date(2026, 3, 5, 23, 59, 59, int(time.Second-time.Nanosecond), time.UTC), to)
}

func TestWriteLowStockCSV(t *testing.T) {
	entries := reports.BuildLowStockReport(snapshot())

	var buf bytes.Buffer
	require.NoError(t, WriteLowStockCSV(&buf, entries))

	out := buf.String()
	require.Contains(t, out, "Urgency")
	require.Contains(t, out, "SKT-001")
	require.Contains(t, out, "CRITICAL")
	// The in-stock product is not part of the alert export.
	require.NotContains(t, out, "DRS-001")
}

func TestWriteInventoryExcel(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteInventoryExcel(&buf, snapshot()))

	f, err := excelize.OpenReader(&buf)
	require.NoError(t, err)
	defer f.Close()

	rows, err := f.GetRows(inventorySheet)
	require.NoError(t, err)
	require.Len(t, rows, 3)
	require.Equal(t, "Product_Code", rows[0][0])
	require.Equal(t, "DRS-001", rows[1][0])
	require.Equal(t, "Out of Stock", rows[2][8])
}
