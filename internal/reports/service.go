package reports

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"
	"golang.org/x/sync/singleflight"
)

// RepositoryPort is the snapshot source the service aggregates over.
type RepositoryPort interface {
	InventorySnapshot(ctx context.Context) ([]InventoryRow, error)
	MovementWindow(ctx context.Context, from, to time.Time, movementType string) ([]MovementRow, error)
}

const (
	cacheKeyInventorySummary = "reports:inventory-summary"
	cacheKeyFabricSummary    = "reports:fabric-summary"
	cacheTTL                 = 5 * time.Minute
)

type Service struct {
	repo   RepositoryPort
	cache  *redis.Client
	group  singleflight.Group
	logger *slog.Logger
}

func NewService(repo RepositoryPort, cache *redis.Client, logger *slog.Logger) *Service {
	return &Service{repo: repo, cache: cache, logger: logger}
}

// InventorySummary serves the cached summary when fresh and otherwise
// rebuilds it. Concurrent rebuilds for the same key collapse into one
// snapshot query.
func (s *Service) InventorySummary(ctx context.Context) (InventorySummary, error) {
	var cached InventorySummary
	if s.cacheGet(ctx, cacheKeyInventorySummary, &cached) {
		return cached, nil
	}

	result, err, _ := s.group.Do(cacheKeyInventorySummary, func() (any, error) {
		rows, err := s.repo.InventorySnapshot(ctx)
		if err != nil {
			return InventorySummary{}, err
		}
		summary := BuildInventorySummary(rows)
		s.cacheSet(ctx, cacheKeyInventorySummary, summary)
		return summary, nil
	})
	if err != nil {
		return InventorySummary{}, err
	}
	return result.(InventorySummary), nil
}

// LowStockReport is always built from a fresh snapshot. Staleness here
// would hide a restock or an urgent shortage.
func (s *Service) LowStockReport(ctx context.Context) ([]LowStockEntry, error) {
	rows, err := s.repo.InventorySnapshot(ctx)
	if err != nil {
		return nil, err
	}
	return BuildLowStockReport(rows), nil
}

// MovementReport aggregates ledger entries inside the given window.
func (s *Service) MovementReport(ctx context.Context, from, to time.Time, movementType string) (MovementReport, error) {
	rows, err := s.repo.MovementWindow(ctx, from, to, movementType)
	if err != nil {
		return MovementReport{}, err
	}
	return BuildMovementReport(rows), nil
}

// FabricSummary groups current stock by fabric type, cached like the
// inventory summary.
func (s *Service) FabricSummary(ctx context.Context) (map[string]GroupBreakdown, error) {
	var cached map[string]GroupBreakdown
	if s.cacheGet(ctx, cacheKeyFabricSummary, &cached) {
		return cached, nil
	}

	result, err, _ := s.group.Do(cacheKeyFabricSummary, func() (any, error) {
		rows, err := s.repo.InventorySnapshot(ctx)
		if err != nil {
			return nil, err
		}
		summary := BuildFabricSummary(rows)
		s.cacheSet(ctx, cacheKeyFabricSummary, summary)
		return summary, nil
	})
	if err != nil {
		return nil, err
	}
	return result.(map[string]GroupBreakdown), nil
}

// Warm rebuilds the cached summaries. The worker runs this on a
// schedule so interactive requests mostly hit warm cache.
func (s *Service) Warm(ctx context.Context) error {
	rows, err := s.repo.InventorySnapshot(ctx)
	if err != nil {
		return fmt.Errorf("reports: warm cache: %w", err)
	}
	s.cacheSet(ctx, cacheKeyInventorySummary, BuildInventorySummary(rows))
	s.cacheSet(ctx, cacheKeyFabricSummary, BuildFabricSummary(rows))
	return nil
}

// Invalidate drops the cached summaries after a write to the ledger or
// the catalog.
func (s *Service) Invalidate(ctx context.Context) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Del(ctx, cacheKeyInventorySummary, cacheKeyFabricSummary).Err(); err != nil {
		s.logger.Warn("report cache invalidate failed", slog.Any("error", err))
	}
}

func (s *Service) cacheGet(ctx context.Context, key string, target any) bool {
	if s.cache == nil {
		return false
	}
	payload, err := s.cache.Get(ctx, key).Bytes()
	if err != nil {
		return false
	}
	if err := json.Unmarshal(payload, target); err != nil {
		s.logger.Warn("report cache decode failed", slog.String("key", key), slog.Any("error", err))
		return false
	}
	return true
}

func (s *Service) cacheSet(ctx context.Context, key string, value any) {
	if s.cache == nil {
		return
	}
	payload, err := json.Marshal(value)
	if err != nil {
		s.logger.Warn("report cache encode failed", slog.String("key", key), slog.Any("error", err))
		return
	}
	if err := s.cache.Set(ctx, key, payload, cacheTTL).Err(); err != nil {
		s.logger.Warn("report cache set failed", slog.String("key", key), slog.Any("error", err))
	}
}
