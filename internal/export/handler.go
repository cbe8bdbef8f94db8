package export

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/loomstock/loomstock/internal/platform/httpx"
	"github.com/loomstock/loomstock/internal/reports"
)

// DataSource supplies the snapshots the export endpoints stream out.
// *reports.Repository satisfies it.
type DataSource interface {
	InventorySnapshot(ctx context.Context) ([]reports.InventoryRow, error)
	MovementWindow(ctx context.Context, from, to time.Time, movementType string) ([]reports.MovementRow, error)
}

type Handler struct {
	logger *slog.Logger
	source DataSource
}

func NewHandler(logger *slog.Logger, source DataSource) *Handler {
	return &Handler{logger: logger, source: source}
}

func (h *Handler) MountRoutes(r chi.Router) {
	r.Get("/export/inventory/csv", h.inventoryCSV)
	r.Get("/export/inventory/excel", h.inventoryExcel)
	r.Get("/export/movements/csv", h.movementsCSV)
	r.Get("/export/low-stock/csv", h.lowStockCSV)
}

func (h *Handler) inventoryCSV(w http.ResponseWriter, r *http.Request) {
	rows, err := h.source.InventorySnapshot(r.Context())
	if err != nil {
		h.logger.Error("inventory export failed", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}

	setAttachment(w, "text/csv", "inventory-report.csv")
	if err := WriteInventoryCSV(w, rows); err != nil {
		h.logger.Error("inventory csv stream failed", slog.Any("error", err))
	}
}

func (h *Handler) inventoryExcel(w http.ResponseWriter, r *http.Request) {
	rows, err := h.source.InventorySnapshot(r.Context())
	if err != nil {
		h.logger.Error("inventory export failed", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}

	setAttachment(w, "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet", "inventory-report.xlsx")
	if err := WriteInventoryExcel(w, rows); err != nil {
		h.logger.Error("inventory excel stream failed", slog.Any("error", err))
	}
}

func (h *Handler) movementsCSV(w http.ResponseWriter, r *http.Request) {
	from, to, err := dateWindow(r)
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Invalid Request", err.Error())
		return
	}

	rows, err := h.source.MovementWindow(r.Context(), from, to, r.URL.Query().Get("movementType"))
	if err != nil {
		h.logger.Error("movement export failed", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}

	setAttachment(w, "text/csv", "stock-movements.csv")
	if err := WriteMovementsCSV(w, rows); err != nil {
		h.logger.Error("movement csv stream failed", slog.Any("error", err))
	}
}

func (h *Handler) lowStockCSV(w http.ResponseWriter, r *http.Request) {
	rows, err := h.source.InventorySnapshot(r.Context())
	if err != nil {
		h.logger.Error("low stock export failed", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}

	setAttachment(w, "text/csv", "low-stock-alert.csv")
	if err := WriteLowStockCSV(w, reports.BuildLowStockReport(rows)); err != nil {
		h.logger.Error("low stock csv stream failed", slog.Any("error", err))
	}
}

func setAttachment(w http.ResponseWriter, contentType, filename string) {
	w.Header().Set("Content-Type", contentType)
	w.Header().Set("Content-Disposition", `attachment; filename="`+filename+`"`)
}

// dateWindow reads startDate/endDate query params. Absent params leave
// that side of the window open.
func dateWindow(r *http.Request) (time.Time, time.Time, error) {
	var from, to time.Time

	if raw := r.URL.Query().Get("startDate"); raw != "" {
		parsed, err := time.Parse("2006-01-02", raw)
		if err != nil {
			return time.Time{}, time.Time{}, err
		}
		from = parsed
	}
	if raw := r.URL.Query().Get("endDate"); raw != "" {
		parsed, err := time.Parse("2006-01-02", raw)
		if err != nil {
			return time.Time{}, time.Time{}, err
		}
		to = parsed.AddDate(0, 0, 1).Add(-time.Nanosecond)
	}
	return from, to, nil
}
