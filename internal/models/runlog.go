package models

import "time"

// Run stages and statuses recorded in the run history.
const (
	StageExtract   = "extract"
	StageTransform = "transform"

	RunStatusSuccess = "success"
	RunStatusFailed  = "failed"
)

// RunLog is one pipeline stage execution. Rows belonging to the same `run`
// invocation share a RunID.
type RunLog struct {
	ID           uint      `gorm:"primaryKey" json:"id"`
	RunID        string    `gorm:"index;not null" json:"run_id"`
	Stage        string    `gorm:"index;not null" json:"stage"`
	Status       string    `gorm:"index;not null" json:"status"`
	ItemCount    int       `json:"item_count"`
	ErrorMessage string    `gorm:"type:text" json:"error_message,omitempty"`
	StartedAt    time.Time `json:"started_at"`
	FinishedAt   time.Time `json:"finished_at"`
	CreatedAt    time.Time `json:"created_at"`
}

func (RunLog) TableName() string {
	return "run_logs"
}
