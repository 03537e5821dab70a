package models

import "time"

// Workflow is the design-time definition of a pipeline: a named, ordered
// sequence of jobs. Definitions are owned by the external CRUD layer and
// are read-only to the engine.
type Workflow struct {
	ID            int64     `json:"id" db:"id"`                   // Unique identifier (PostgreSQL auto-increment)
	Name          string    `json:"name" db:"name"`               // Descriptive name (e.g., "BlogAutomation")
	Description   string    `json:"description" db:"description"` // Free-form description
	IsEnabled     bool      `json:"is_enabled" db:"is_enabled"`
	DefaultConfig JSONMap   `json:"default_config,omitempty" db:"default_config"` // Per-task settings keyed by task id
	CreatedAt     time.Time `json:"created_at" db:"created_at"`
	UpdatedAt     time.Time `json:"updated_at" db:"updated_at"`
}
