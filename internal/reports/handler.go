package reports

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/loomstock/loomstock/internal/platform/httpx"
)

type Handler struct {
	logger  *slog.Logger
	service *Service
}

func NewHandler(logger *slog.Logger, service *Service) *Handler {
	return &Handler{logger: logger, service: service}
}

func (h *Handler) MountRoutes(r chi.Router) {
	r.Get("/reports/inventory-summary", h.inventorySummary)
	r.Get("/reports/low-stock", h.lowStock)
	r.Get("/reports/stock-movements", h.stockMovements)
	r.Get("/reports/fabric-summary", h.fabricSummary)
}

func (h *Handler) inventorySummary(w http.ResponseWriter, r *http.Request) {
	summary, err := h.service.InventorySummary(r.Context())
	if err != nil {
		h.logger.Error("inventory summary failed", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, summary)
}

func (h *Handler) lowStock(w http.ResponseWriter, r *http.Request) {
	entries, err := h.service.LowStockReport(r.Context())
	if err != nil {
		h.logger.Error("low stock report failed", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, entries)
}

func (h *Handler) stockMovements(w http.ResponseWriter, r *http.Request) {
	from, to, err := movementWindowParams(r)
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Invalid Request", err.Error())
		return
	}
	movementType := r.URL.Query().Get("movementType")
	if movementType != "" && movementType != "IN" && movementType != "OUT" {
		httpx.Problem(w, http.StatusBadRequest, "Invalid Request", "movementType must be IN or OUT")
		return
	}

	report, err := h.service.MovementReport(r.Context(), from, to, movementType)
	if err != nil {
		h.logger.Error("movement report failed", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, report)
}

func (h *Handler) fabricSummary(w http.ResponseWriter, r *http.Request) {
	summary, err := h.service.FabricSummary(r.Context())
	if err != nil {
		h.logger.Error("fabric summary failed", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, summary)
}

// movementWindowParams reads startDate/endDate query params. Absent
// params leave that side of the window open; the end date is widened
// to the end of its day.
func movementWindowParams(r *http.Request) (time.Time, time.Time, error) {
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
