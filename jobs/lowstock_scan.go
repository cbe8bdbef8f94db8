package jobs

import (
	"context"
	"encoding/json"
	"log/slog"

	"github.com/hibiken/asynq"

	"github.com/loomstock/loomstock/internal/inventory"
	"github.com/loomstock/loomstock/internal/shared"
)

// ActivityPort abstracts activity logging.
type ActivityPort interface {
	Record(ctx context.Context, entry shared.ActivityEntry) error
}

// LowStockScanJob walks current inventory and logs every product at or
// below its threshold so operators can act on the morning run.
type LowStockScanJob struct {
	service  *inventory.Service
	activity ActivityPort
	logger   *slog.Logger
}

func NewLowStockScanJob(service *inventory.Service, activity ActivityPort, logger *slog.Logger) *LowStockScanJob {
	return &LowStockScanJob{service: service, activity: activity, logger: logger}
}

// Handle processes TaskLowStockScan tasks.
func (j *LowStockScanJob) Handle(ctx context.Context, t *asynq.Task) error {
	var payload LowStockScanPayload
	if len(t.Payload()) > 0 {
		if err := json.Unmarshal(t.Payload(), &payload); err != nil {
			return asynq.SkipRetry
		}
	}

	items, err := j.service.LowStock(ctx)
	if err != nil {
		return err
	}

	logged := 0
	for _, item := range items {
		if payload.NotifyThreshold > 0 && logged >= payload.NotifyThreshold {
			break
		}
		level := slog.LevelWarn
		if item.StockQuantity == 0 {
			level = slog.LevelError
		}
		j.logger.Log(ctx, level, "low stock alert",
			slog.String("product_code", item.ProductCode),
			slog.Int64("stock_quantity", item.StockQuantity),
			slog.Int64("threshold", item.LowStockThreshold),
		)
		logged++
	}

	if j.activity != nil && len(items) > 0 {
		err := j.activity.Record(ctx, shared.ActivityEntry{
			Username: "system",
			Action:   "inventory:lowstock_scan",
			Entity:   "inventory",
			Meta:     map[string]any{"flagged": len(items)},
		})
		if err != nil {
			j.logger.Warn("record scan activity", slog.Any("error", err))
		}
	}

	j.logger.Info("low stock scan complete", slog.Int("flagged", len(items)))
	return nil
}
