package jobs

import (
	"encoding/json"

	"github.com/hibiken/asynq"
)

const (
	// QueueDefault is the default queue name for background jobs.
	QueueDefault = "default"
	// TaskLowStockScan is the task type for the scheduled low stock scan.
	TaskLowStockScan = "inventory:lowstock_scan"
	// TaskReportWarmup is the task type for rebuilding cached report summaries.
	TaskReportWarmup = "reports:warmup"
)

// LowStockScanPayload configures a low stock scan run.
type LowStockScanPayload struct {
	// NotifyThreshold caps how many alerts get logged per run. Zero
	// means no cap.
	NotifyThreshold int `json:"notify_threshold"`
}

// NewLowStockScanTask constructs an Asynq task.
func NewLowStockScanTask(payload LowStockScanPayload) (*asynq.Task, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskLowStockScan, data), nil
}

// NewReportWarmupTask constructs an Asynq task with an empty payload.
func NewReportWarmupTask() (*asynq.Task, error) {
	return asynq.NewTask(TaskReportWarmup, nil), nil
}
