package app

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"

	"github.com/loomstock/loomstock/internal/activity"
	"github.com/loomstock/loomstock/internal/auth"
	"github.com/loomstock/loomstock/internal/export"
	"github.com/loomstock/loomstock/internal/inventory"
	"github.com/loomstock/loomstock/internal/products"
	"github.com/loomstock/loomstock/internal/reports"
	"github.com/loomstock/loomstock/internal/shared"
	"github.com/loomstock/loomstock/jobs"
)

// RouterParams groups dependencies for building the HTTP router.
type RouterParams struct {
	Logger           *slog.Logger
	Config           *Config
	TokenIssuer      *auth.TokenIssuer
	AuthHandler      *auth.Handler
	ProductsHandler  *products.Handler
	InventoryHandler *inventory.Handler
	ReportsHandler   *reports.Handler
	ExportHandler    *export.Handler
	ActivityHandler  *activity.Handler
	JobsHandler      *jobs.Handler
}

// NewRouter constructs the chi.Router with application defaults.
func NewRouter(params RouterParams) http.Handler {
	r := chi.NewRouter()

	for _, mw := range MiddlewareStack(MiddlewareConfig{
		Logger: params.Logger,
		Config: params.Config,
	}) {
		r.Use(mw)
	}

	r.Use(chimw.Logger)

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	})

	r.Route("/api", func(r chi.Router) {
		params.AuthHandler.MountPublic(r)

		r.Group(func(r chi.Router) {
			r.Use(auth.Authenticate(params.TokenIssuer))

			params.ProductsHandler.MountRoutes(r)
			params.InventoryHandler.MountRoutes(r)
			params.ReportsHandler.MountRoutes(r)
			params.ExportHandler.MountRoutes(r)

			r.Group(func(r chi.Router) {
				r.Use(auth.RequireRole(shared.RoleAdmin))
				params.AuthHandler.MountProtected(r)
				params.ActivityHandler.MountRoutes(r)
				if params.JobsHandler != nil {
					params.JobsHandler.MountRoutes(r)
				}
			})
		})
	})

	return r
}
