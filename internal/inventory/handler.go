package inventory

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"github.com/loomstock/loomstock/internal/platform/httpx"
	"github.com/loomstock/loomstock/internal/shared"
)

// Handler wires HTTP endpoints for the inventory module.
type Handler struct {
	logger    *slog.Logger
	service   *Service
	validator *validator.Validate
	admin     func(http.Handler) http.Handler
}

// NewHandler constructs the inventory handler. admin is the middleware
// guarding admin-only routes.
func NewHandler(logger *slog.Logger, service *Service, admin func(http.Handler) http.Handler) *Handler {
	return &Handler{logger: logger, service: service, validator: validator.New(), admin: admin}
}

// MountRoutes registers inventory and stock-movement routes.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Post("/stock-movements", h.createMovement)
	r.Get("/stock-movements", h.listMovements)
	r.Get("/stock-movements/product/{productID}", h.movementsByProduct)
	r.Get("/stock-movements/by-date", h.movementsByDate)

	r.Get("/inventory", h.listInventory)
	r.Get("/inventory/low-stock", h.lowStock)
	r.Get("/inventory/product/{productID}", h.inventoryByProduct)
	r.Put("/inventory/product/{productID}/stock", h.updateStock)
	r.Group(func(r chi.Router) {
		r.Use(h.admin)
		r.Post("/inventory", h.createInventory)
		r.Get("/inventory/missing", h.missingInventory)
	})
}

func (h *Handler) createMovement(w http.ResponseWriter, r *http.Request) {
	var req CreateMovementRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", "invalid request body")
		return
	}
	if err := h.validator.Struct(req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", err.Error())
		return
	}
	actor, ok := shared.ActorFromContext(r.Context())
	if !ok {
		httpx.RespondError(w, httpx.ErrUnauthorized)
		return
	}

	movement, err := h.service.RecordMovement(r.Context(), MovementInput{
		ProductID: req.ProductID,
		Type:      MovementType(req.MovementType),
		Quantity:  req.Quantity,
		Reason:    MovementReason(req.Reason),
		Notes:     req.Notes,
		Actor:     actor,
	})
	if err != nil {
		h.respondLedgerError(w, r, err)
		return
	}
	httpx.JSON(w, http.StatusCreated, toMovementResponse(movement))
}

func (h *Handler) listMovements(w http.ResponseWriter, r *http.Request) {
	movements, err := h.service.Movements(r.Context(), MovementFilter{})
	if err != nil {
		h.logger.Error("list movements", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, toMovementResponses(movements))
}

func (h *Handler) movementsByProduct(w http.ResponseWriter, r *http.Request) {
	productID, err := strconv.ParseInt(chi.URLParam(r, "productID"), 10, 64)
	if err != nil || productID <= 0 {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", "product id must be a positive integer")
		return
	}
	movements, err := h.service.Movements(r.Context(), MovementFilter{ProductID: productID})
	if err != nil {
		h.logger.Error("movements by product", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, toMovementResponses(movements))
}

func (h *Handler) movementsByDate(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	if q.Get("startDate") == "" || q.Get("endDate") == "" {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", "startDate and endDate are required")
		return
	}
	from, to, err := parseDateRange(q.Get("startDate"), q.Get("endDate"))
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", err.Error())
		return
	}
	movements, err := h.service.Movements(r.Context(), MovementFilter{From: from, To: to})
	if err != nil {
		h.logger.Error("movements by date", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, toMovementResponses(movements))
}

func (h *Handler) listInventory(w http.ResponseWriter, r *http.Request) {
	items, err := h.service.ListInventory(r.Context())
	if err != nil {
		h.logger.Error("list inventory", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, toItemResponses(items))
}

func (h *Handler) lowStock(w http.ResponseWriter, r *http.Request) {
	items, err := h.service.LowStock(r.Context())
	if err != nil {
		h.logger.Error("low stock", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, toItemResponses(items))
}

func (h *Handler) inventoryByProduct(w http.ResponseWriter, r *http.Request) {
	productID, err := strconv.ParseInt(chi.URLParam(r, "productID"), 10, 64)
	if err != nil || productID <= 0 {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", "product id must be a positive integer")
		return
	}
	item, err := h.service.GetByProduct(r.Context(), productID)
	if err != nil {
		h.respondLedgerError(w, r, err)
		return
	}
	httpx.JSON(w, http.StatusOK, toItemResponse(item))
}

func (h *Handler) updateStock(w http.ResponseWriter, r *http.Request) {
	productID, err := strconv.ParseInt(chi.URLParam(r, "productID"), 10, 64)
	if err != nil || productID <= 0 {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", "product id must be a positive integer")
		return
	}
	var req UpdateStockRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", "invalid request body")
		return
	}
	if err := h.validator.Struct(req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", err.Error())
		return
	}
	actor, ok := shared.ActorFromContext(r.Context())
	if !ok {
		httpx.RespondError(w, httpx.ErrUnauthorized)
		return
	}

	inv, err := h.service.SetStock(r.Context(), productID, *req.Quantity, actor)
	if err != nil {
		h.respondLedgerError(w, r, err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{
		"product_id":          inv.ProductID,
		"stock_quantity":      inv.StockQuantity,
		"low_stock_threshold": inv.LowStockThreshold,
	})
}

func (h *Handler) createInventory(w http.ResponseWriter, r *http.Request) {
	var req CreateInventoryRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", "invalid request body")
		return
	}
	if err := h.validator.Struct(req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", err.Error())
		return
	}
	if err := h.service.EnsureInventoryExists(r.Context(), req.ProductID); err != nil {
		h.logger.Error("create inventory", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	item, err := h.service.GetByProduct(r.Context(), req.ProductID)
	if err != nil {
		h.respondLedgerError(w, r, err)
		return
	}
	httpx.JSON(w, http.StatusCreated, toItemResponse(item))
}

func (h *Handler) missingInventory(w http.ResponseWriter, r *http.Request) {
	missing, err := h.service.ProductsMissingInventory(r.Context())
	if err != nil {
		h.logger.Error("missing inventory", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	out := make([]MissingInventoryResponse, 0, len(missing))
	for _, m := range missing {
		out = append(out, MissingInventoryResponse{ProductID: m.ProductID, ProductCode: m.ProductCode, CreatedAt: m.CreatedAt})
	}
	httpx.JSON(w, http.StatusOK, out)
}

// respondLedgerError maps ledger engine errors onto stable HTTP responses.
func (h *Handler) respondLedgerError(w http.ResponseWriter, r *http.Request, err error) {
	var insufficient *InsufficientStockError
	switch {
	case errors.Is(err, ErrInventoryNotFound):
		httpx.Problem(w, http.StatusNotFound, "Not Found", err.Error())
	case errors.As(err, &insufficient),
		errors.Is(err, ErrInvalidQuantity),
		errors.Is(err, ErrInvalidMovementType),
		errors.Is(err, ErrInvalidReason),
		errors.Is(err, ErrNegativeStock):
		httpx.Problem(w, http.StatusBadRequest, "Business Rule Violation", err.Error())
	default:
		h.logger.Error("inventory operation", slog.String("path", r.URL.Path), slog.Any("error", err))
		httpx.RespondError(w, err)
	}
}

func parseDateRange(start, end string) (time.Time, time.Time, error) {
	var from, to time.Time
	var err error
	if start != "" {
		from, err = time.Parse("2006-01-02", start)
		if err != nil {
			return time.Time{}, time.Time{}, errors.New("startDate must be YYYY-MM-DD")
		}
	}
	if end != "" {
		to, err = time.Parse("2006-01-02", end)
		if err != nil {
			return time.Time{}, time.Time{}, errors.New("endDate must be YYYY-MM-DD")
		}
		// Include the whole end day.
		to = to.Add(24*time.Hour - time.Nanosecond)
	}
	return from, to, nil
}
