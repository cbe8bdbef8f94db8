package jobs

import (
	"context"
	"log/slog"

	"github.com/hibiken/asynq"

	"github.com/loomstock/loomstock/internal/reports"
)

// ReportWarmupJob rebuilds the cached report summaries so interactive
// requests mostly hit warm cache.
type ReportWarmupJob struct {
	service *reports.Service
	logger  *slog.Logger
}

func NewReportWarmupJob(service *reports.Service, logger *slog.Logger) *ReportWarmupJob {
	return &ReportWarmupJob{service: service, logger: logger}
}

// Handle processes TaskReportWarmup tasks.
func (j *ReportWarmupJob) Handle(ctx context.Context, _ *asynq.Task) error {
	if err := j.service.Warm(ctx); err != nil {
		j.logger.Error("report warmup failed", slog.Any("error", err))
		return err
	}
	j.logger.Info("report caches warmed")
	return nil
}
