package products

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"github.com/loomstock/loomstock/internal/platform/httpx"
	"github.com/loomstock/loomstock/internal/shared"
)

// Handler wires HTTP endpoints for the catalog.
type Handler struct {
	logger    *slog.Logger
	service   *Service
	validator *validator.Validate
	admin     func(http.Handler) http.Handler
}

// NewHandler constructs the products handler.
func NewHandler(logger *slog.Logger, service *Service, admin func(http.Handler) http.Handler) *Handler {
	return &Handler{logger: logger, service: service, validator: validator.New(), admin: admin}
}

// MountRoutes registers catalog routes. Reads are open to any authenticated
// user; mutations are admin-only.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Get("/products", h.list)
	r.Get("/products/search", h.search)
	r.Get("/products/{code}", h.getByCode)
	r.Group(func(r chi.Router) {
		r.Use(h.admin)
		r.Post("/products", h.create)
		r.Put("/products/{code}", h.update)
		r.Delete("/products/{code}", h.delete)
	})
}

func (h *Handler) create(w http.ResponseWriter, r *http.Request) {
	var req CreateProductRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", "invalid request body")
		return
	}
	if err := h.validator.Struct(req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", err.Error())
		return
	}
	actor, _ := shared.ActorFromContext(r.Context())

	created, err := h.service.Create(r.Context(), Product{
		ProductCode: req.ProductCode,
		ClothType:   req.ClothType,
		FabricType:  req.FabricType,
		Color:       req.Color,
		SizeSet:     req.SizeSet,
		UnitPrice:   req.UnitPrice,
		Description: req.Description,
	}, actor)
	if err != nil {
		h.respondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusCreated, toProductResponse(created))
}

func (h *Handler) list(w http.ResponseWriter, r *http.Request) {
	list, err := h.service.List(r.Context())
	if err != nil {
		h.logger.Error("list products", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, toProductResponses(list))
}

func (h *Handler) search(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	filter := SearchFilter{
		ClothType:  q.Get("cloth_type"),
		FabricType: q.Get("fabric_type"),
		SizeSet:    q.Get("size_set"),
		Code:       q.Get("product_code"),
	}
	list, err := h.service.Search(r.Context(), filter)
	if err != nil {
		h.logger.Error("search products", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, toProductResponses(list))
}

func (h *Handler) getByCode(w http.ResponseWriter, r *http.Request) {
	p, err := h.service.Get(r.Context(), chi.URLParam(r, "code"))
	if err != nil {
		h.respondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, toProductResponse(p))
}

func (h *Handler) update(w http.ResponseWriter, r *http.Request) {
	var req UpdateProductRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", "invalid request body")
		return
	}
	if err := h.validator.Struct(req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", err.Error())
		return
	}
	actor, _ := shared.ActorFromContext(r.Context())

	updated, err := h.service.Update(r.Context(), chi.URLParam(r, "code"), Product{
		ClothType:   req.ClothType,
		FabricType:  req.FabricType,
		Color:       req.Color,
		SizeSet:     req.SizeSet,
		UnitPrice:   req.UnitPrice,
		Description: req.Description,
	}, actor)
	if err != nil {
		h.respondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, toProductResponse(updated))
}

func (h *Handler) delete(w http.ResponseWriter, r *http.Request) {
	actor, _ := shared.ActorFromContext(r.Context())
	if err := h.service.Delete(r.Context(), chi.URLParam(r, "code"), actor); err != nil {
		h.respondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]string{"message": "Product deleted successfully"})
}

func (h *Handler) respondError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, ErrNotFound):
		httpx.Problem(w, http.StatusNotFound, "Not Found", err.Error())
	case errors.Is(err, ErrDuplicateCode):
		httpx.Problem(w, http.StatusConflict, "Duplicate", err.Error())
	default:
		h.logger.Error("products operation", slog.Any("error", err))
		httpx.RespondError(w, err)
	}
}
