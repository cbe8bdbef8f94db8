package inventory

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/loomstock/loomstock/internal/shared"
)

// RepositoryPort abstracts repository usage for the service.
type RepositoryPort interface {
	WithTx(ctx context.Context, fn func(context.Context, TxRepository) error) error
	EnsureInventory(ctx context.Context, productID, threshold int64) error
	GetItem(ctx context.Context, productID int64) (Item, error)
	ListItems(ctx context.Context) ([]Item, error)
	ListLowStock(ctx context.Context) ([]Item, error)
	ListMovements(ctx context.Context, filter MovementFilter) ([]StockMovement, error)
	ProductsMissingInventory(ctx context.Context) ([]MissingInventory, error)
}

// ActivityPort abstracts activity logging.
type ActivityPort interface {
	Record(ctx context.Context, entry shared.ActivityEntry) error
}

// ReportCachePort drops cached report aggregates after a stock write.
type ReportCachePort interface {
	Invalidate(ctx context.Context)
}

// Service is the single write authority for inventory stock. Every stock
// change goes through RecordMovement or the SetStock override; both hold the
// product's inventory row locked for the duration of the transaction, so
// movements on the same product serialize while unrelated products proceed.
type Service struct {
	repo             RepositoryPort
	activity         ActivityPort
	reportCache      ReportCachePort
	logger           *slog.Logger
	defaultThreshold int64
}

// ServiceConfig groups optional settings.
type ServiceConfig struct {
	DefaultLowStockThreshold int64
}

// NewService builds Service.
func NewService(repo RepositoryPort, activity ActivityPort, logger *slog.Logger, cfg ServiceConfig) *Service {
	threshold := cfg.DefaultLowStockThreshold
	if threshold < 0 {
		threshold = 0
	}
	return &Service{repo: repo, activity: activity, logger: logger, defaultThreshold: threshold}
}

// SetReportCache wires the report cache so stock writes invalidate stale
// summaries. Optional; a nil cache is ignored.
func (s *Service) SetReportCache(cache ReportCachePort) {
	s.reportCache = cache
}

// RecordMovement validates the requested movement against current stock,
// appends the ledger entry and updates the cached quantity. Both writes
// commit in one transaction; a rejected movement persists nothing.
func (s *Service) RecordMovement(ctx context.Context, input MovementInput) (StockMovement, error) {
	if !input.Type.Valid() {
		return StockMovement{}, ErrInvalidMovementType
	}
	if input.Quantity <= 0 {
		return StockMovement{}, ErrInvalidQuantity
	}
	if !input.Reason.Valid() {
		return StockMovement{}, ErrInvalidReason
	}

	now := time.Now().UTC()
	var movement StockMovement
	err := s.repo.WithTx(ctx, func(ctx context.Context, tx TxRepository) error {
		inv, err := tx.GetInventoryForUpdate(ctx, input.ProductID)
		if err != nil {
			return err
		}
		newQuantity := inv.StockQuantity + input.Quantity
		if input.Type == MovementOut {
			if input.Quantity > inv.StockQuantity {
				return &InsufficientStockError{Available: inv.StockQuantity, Requested: input.Quantity}
			}
			newQuantity = inv.StockQuantity - input.Quantity
		}
		movement = StockMovement{
			ProductID:    input.ProductID,
			Type:         input.Type,
			Quantity:     input.Quantity,
			Reason:       input.Reason,
			Notes:        input.Notes,
			CreatedBy:    input.Actor.Username,
			MovementDate: now,
		}
		id, err := tx.InsertMovement(ctx, movement)
		if err != nil {
			return err
		}
		movement.ID = id
		return tx.UpdateStockQuantity(ctx, input.ProductID, newQuantity)
	})
	if err != nil {
		return StockMovement{}, err
	}

	s.invalidateReports(ctx)
	s.recordActivity(ctx, input.Actor, fmt.Sprintf("stock:%s", input.Type), "stock_movement", fmt.Sprintf("%d", movement.ID), map[string]any{
		"product_id": input.ProductID,
		"quantity":   input.Quantity,
		"reason":     string(input.Reason),
	})
	return movement, nil
}

// SetStock sets the stock quantity directly, bypassing the movement ledger.
// It exists for corrective admin overrides and row provisioning only; the
// non-negative invariant and the row lock still apply.
func (s *Service) SetStock(ctx context.Context, productID, quantity int64, actor shared.Actor) (Inventory, error) {
	if quantity < 0 {
		return Inventory{}, ErrNegativeStock
	}
	var updated Inventory
	err := s.repo.WithTx(ctx, func(ctx context.Context, tx TxRepository) error {
		inv, err := tx.GetInventoryForUpdate(ctx, productID)
		if err != nil {
			return err
		}
		if err := tx.UpdateStockQuantity(ctx, productID, quantity); err != nil {
			return err
		}
		inv.StockQuantity = quantity
		updated = inv
		return nil
	})
	if err != nil {
		return Inventory{}, err
	}

	s.invalidateReports(ctx)
	s.recordActivity(ctx, actor, "stock:override", "inventory", fmt.Sprintf("%d", productID), map[string]any{
		"product_id": productID,
		"quantity":   quantity,
	})
	return updated, nil
}

// EnsureInventoryExists provisions the zero-stock inventory row for a newly
// created product. Safe to call repeatedly.
func (s *Service) EnsureInventoryExists(ctx context.Context, productID int64) error {
	return s.repo.EnsureInventory(ctx, productID, s.defaultThreshold)
}

// GetByProduct returns the inventory item for one product.
func (s *Service) GetByProduct(ctx context.Context, productID int64) (Item, error) {
	return s.repo.GetItem(ctx, productID)
}

// ListInventory returns inventory for all active products.
func (s *Service) ListInventory(ctx context.Context) ([]Item, error) {
	return s.repo.ListItems(ctx)
}

// LowStock returns items where stock_quantity <= low_stock_threshold.
func (s *Service) LowStock(ctx context.Context) ([]Item, error) {
	return s.repo.ListLowStock(ctx)
}

// Movements returns ledger entries matching the filter.
func (s *Service) Movements(ctx context.Context, filter MovementFilter) ([]StockMovement, error) {
	return s.repo.ListMovements(ctx, filter)
}

// ProductsMissingInventory reports products whose best-effort provisioning
// failed, so the gap is discoverable instead of silent.
func (s *Service) ProductsMissingInventory(ctx context.Context) ([]MissingInventory, error) {
	return s.repo.ProductsMissingInventory(ctx)
}

func (s *Service) invalidateReports(ctx context.Context) {
	if s.reportCache != nil {
		s.reportCache.Invalidate(ctx)
	}
}

func (s *Service) recordActivity(ctx context.Context, actor shared.Actor, action, entity, entityID string, meta map[string]any) {
	if s.activity == nil {
		return
	}
	err := s.activity.Record(ctx, shared.ActivityEntry{
		UserID:   actor.ID,
		Username: actor.Username,
		Action:   action,
		Entity:   entity,
		EntityID: entityID,
		Meta:     meta,
	})
	if err != nil && s.logger != nil {
		s.logger.Warn("record activity", slog.String("action", action), slog.Any("error", err))
	}
}
