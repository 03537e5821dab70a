package models

import "time"

// Job is the design-time definition of one stage of a workflow: a named,
// ordered sequence of tasks.
type Job struct {
	ID             int64     `json:"id" db:"id"`
	Name           string    `json:"name" db:"name"` // Descriptive name (e.g., "ProductDiscovery")
	Description    string    `json:"description" db:"description"`
	IsEnabled      bool      `json:"is_enabled" db:"is_enabled"`
	ExecutionOrder int       `json:"execution_order" db:"execution_order"` // 1-based position within the workflow
	CreatedAt      time.Time `json:"created_at" db:"created_at"`
	UpdatedAt      time.Time `json:"updated_at" db:"updated_at"`
}
