package models

import "time"

// TaskType selects which runner executes a task.
type TaskType string

const (
	HTTPTaskType       TaskType = "HTTP"
	AutomationTaskType TaskType = "AUTOMATION" // external automation backend (relative endpoint)
)

// Task is the design-time definition of a single unit of work within a job.
// Its Name doubles as the data-flow key under which the task's result is
// published to downstream tasks.
type Task struct {
	ID             int64     `json:"id" db:"id"`
	Name           string    `json:"name" db:"name"` // Descriptive name (e.g., "keyword-search"); also the data-flow key
	Type           TaskType  `json:"type" db:"type"` // Selects the TaskRunner ("HTTP", "AUTOMATION")
	ExecutionOrder int       `json:"execution_order" db:"execution_order"`
	Parameters     JSONMap   `json:"parameters,omitempty" db:"parameters"` // e.g. {"endpoint": "/search/keyword", "method": "POST"}
	Settings       JSONMap   `json:"settings,omitempty" db:"settings"`     // Per-workflow overrides, attached from Workflow.DefaultConfig
	CreatedAt      time.Time `json:"created_at" db:"created_at"`
	UpdatedAt      time.Time `json:"updated_at" db:"updated_at"`
}
