package reports

import "sort"

// BuildInventorySummary folds an inventory snapshot into the summary
// report. A missing unit price counts as zero value.
func BuildInventorySummary(rows []InventoryRow) InventorySummary {
	summary := InventorySummary{
		ByClothType:  map[string]GroupBreakdown{},
		ByFabricType: map[string]GroupBreakdown{},
		BySizeSet:    map[string]GroupBreakdown{},
	}

	for _, row := range rows {
		value := rowValue(row)

		summary.TotalProducts++
		summary.TotalStock += row.StockQuantity
		summary.TotalValue += value
		switch StatusFor(row.StockQuantity, row.LowStockThreshold) {
		case StatusOutOfStock:
			summary.OutOfStockItems++
		case StatusLowStock:
			summary.LowStockItems++
		}

		addToGroup(summary.ByClothType, row.ClothType, row.StockQuantity, value)
		addToGroup(summary.ByFabricType, row.FabricType, row.StockQuantity, value)
		addToGroup(summary.BySizeSet, row.SizeSet, row.StockQuantity, value)
	}
	return summary
}

// BuildLowStockReport filters the snapshot down to products at or
// below their threshold, most urgent first. Out of stock products are
// CRITICAL, everything else in the report is HIGH.
func BuildLowStockReport(rows []InventoryRow) []LowStockEntry {
	entries := make([]LowStockEntry, 0)
	for _, row := range rows {
		status := StatusFor(row.StockQuantity, row.LowStockThreshold)
		if status == StatusInStock {
			continue
		}

		urgency := UrgencyHigh
		if status == StatusOutOfStock {
			urgency = UrgencyCritical
		}
		price := 0.0
		if row.UnitPrice != nil {
			price = *row.UnitPrice
		}
		entries = append(entries, LowStockEntry{
			ProductCode:       row.ProductCode,
			ClothType:         row.ClothType,
			FabricType:        row.FabricType,
			Color:             row.Color,
			SizeSet:           row.SizeSet,
			StockQuantity:     row.StockQuantity,
			LowStockThreshold: row.LowStockThreshold,
			UnitPrice:         price,
			Status:            status,
			Urgency:           urgency,
		})
	}

	sort.SliceStable(entries, func(i, j int) bool {
		if entries[i].Urgency != entries[j].Urgency {
			return entries[i].Urgency == UrgencyCritical
		}
		return entries[i].StockQuantity < entries[j].StockQuantity
	})
	return entries
}

// BuildMovementReport aggregates a ledger window into directional
// totals, per-reason counts and per-product in/out quantities.
func BuildMovementReport(rows []MovementRow) MovementReport {
	report := MovementReport{
		Summary: MovementSummary{
			MovementsByReason:  map[string]int64{},
			MovementsByProduct: map[string]DirectionTotals{},
		},
		Movements: rows,
	}
	if report.Movements == nil {
		report.Movements = []MovementRow{}
	}

	for _, row := range rows {
		report.Summary.TotalMovements++
		report.Summary.MovementsByReason[row.Reason] += row.Quantity

		totals := report.Summary.MovementsByProduct[row.ProductCode]
		if row.MovementType == "IN" {
			report.Summary.TotalIn += row.Quantity
			totals.In += row.Quantity
		} else {
			report.Summary.TotalOut += row.Quantity
			totals.Out += row.Quantity
		}
		report.Summary.MovementsByProduct[row.ProductCode] = totals
	}
	return report
}

// BuildFabricSummary groups the snapshot by fabric type.
func BuildFabricSummary(rows []InventoryRow) map[string]GroupBreakdown {
	out := map[string]GroupBreakdown{}
	for _, row := range rows {
		addToGroup(out, row.FabricType, row.StockQuantity, rowValue(row))
	}
	return out
}

func rowValue(row InventoryRow) float64 {
	if row.UnitPrice == nil {
		return 0
	}
	return *row.UnitPrice * float64(row.StockQuantity)
}

func addToGroup(groups map[string]GroupBreakdown, key string, stock int64, value float64) {
	g := groups[key]
	g.Count++
	g.TotalStock += stock
	g.TotalValue += value
	groups[key] = g
}
