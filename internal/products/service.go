package products

import (
	"context"
	"log/slog"

	"github.com/loomstock/loomstock/internal/shared"
)

// RepositoryPort abstracts catalog persistence.
type RepositoryPort interface {
	Insert(ctx context.Context, p Product) (Product, error)
	GetByCode(ctx context.Context, code string) (Product, error)
	List(ctx context.Context) ([]Product, error)
	Search(ctx context.Context, filter SearchFilter) ([]Product, error)
	Update(ctx context.Context, code string, p Product) (Product, error)
	Deactivate(ctx context.Context, code string) error
}

// InventoryProvisioner creates the inventory row for a new product. Satisfied
// by the inventory service.
type InventoryProvisioner interface {
	EnsureInventoryExists(ctx context.Context, productID int64) error
}

// ActivityPort abstracts activity logging.
type ActivityPort interface {
	Record(ctx context.Context, entry shared.ActivityEntry) error
}

// ReportCachePort drops cached report aggregates after a catalog write.
type ReportCachePort interface {
	Invalidate(ctx context.Context)
}

// Service handles catalog business logic.
type Service struct {
	repo        RepositoryPort
	provisioner InventoryProvisioner
	activity    ActivityPort
	reportCache ReportCachePort
	logger      *slog.Logger
}

// NewService builds Service.
func NewService(repo RepositoryPort, provisioner InventoryProvisioner, activity ActivityPort, logger *slog.Logger) *Service {
	return &Service{repo: repo, provisioner: provisioner, activity: activity, logger: logger}
}

// SetReportCache wires the report cache so catalog writes invalidate stale
// summaries. Optional; a nil cache is ignored.
func (s *Service) SetReportCache(cache ReportCachePort) {
	s.reportCache = cache
}

// Create inserts the product and provisions its inventory row. Provisioning
// is best-effort: a failure is logged and the product creation still
// succeeds, leaving a gap discoverable via the missing-inventory
// reconciliation query.
func (s *Service) Create(ctx context.Context, p Product, actor shared.Actor) (Product, error) {
	created, err := s.repo.Insert(ctx, p)
	if err != nil {
		return Product{}, err
	}

	if s.provisioner != nil {
		if err := s.provisioner.EnsureInventoryExists(ctx, created.ID); err != nil && s.logger != nil {
			s.logger.Warn("inventory provisioning failed",
				slog.Int64("product_id", created.ID),
				slog.String("product_code", created.ProductCode),
				slog.Any("error", err))
		}
	}

	s.invalidateReports(ctx)
	s.recordActivity(ctx, actor, "product:create", created)
	return created, nil
}

// Get loads a product by code.
func (s *Service) Get(ctx context.Context, code string) (Product, error) {
	return s.repo.GetByCode(ctx, code)
}

// List returns all active products.
func (s *Service) List(ctx context.Context) ([]Product, error) {
	return s.repo.List(ctx)
}

// Search filters active products.
func (s *Service) Search(ctx context.Context, filter SearchFilter) ([]Product, error) {
	return s.repo.Search(ctx, filter)
}

// Update saves mutable fields of the product identified by code.
func (s *Service) Update(ctx context.Context, code string, p Product, actor shared.Actor) (Product, error) {
	updated, err := s.repo.Update(ctx, code, p)
	if err != nil {
		return Product{}, err
	}
	s.invalidateReports(ctx)
	s.recordActivity(ctx, actor, "product:update", updated)
	return updated, nil
}

// Delete soft-deletes a product, retaining its movement ledger.
func (s *Service) Delete(ctx context.Context, code string, actor shared.Actor) error {
	if err := s.repo.Deactivate(ctx, code); err != nil {
		return err
	}
	s.invalidateReports(ctx)
	s.recordActivity(ctx, actor, "product:delete", Product{ProductCode: code})
	return nil
}

func (s *Service) invalidateReports(ctx context.Context) {
	if s.reportCache != nil {
		s.reportCache.Invalidate(ctx)
	}
}

func (s *Service) recordActivity(ctx context.Context, actor shared.Actor, action string, p Product) {
	if s.activity == nil {
		return
	}
	err := s.activity.Record(ctx, shared.ActivityEntry{
		UserID:   actor.ID,
		Username: actor.Username,
		Action:   action,
		Entity:   "product",
		EntityID: p.ProductCode,
		Meta:     map[string]any{"product_id": p.ID},
	})
	if err != nil && s.logger != nil {
		s.logger.Warn("record activity", slog.String("action", action), slog.Any("error", err))
	}
}
