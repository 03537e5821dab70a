package models

import (
	"strings"
	"time"
)

// Schedule is a persisted cron trigger for a workflow. The schedule table is
// the source of truth: active rows are re-armed on every process start.
type Schedule struct {
	ID             int64      `json:"id" db:"id"`
	WorkflowID     int64      `json:"workflow_id" db:"workflow_id"`
	CronExpression string     `json:"cron_expression" db:"cron_expression"` // Six-field (with seconds), Quartz "?" accepted
	IsActive       bool       `json:"is_active" db:"is_active"`
	LastRunStatus  string     `json:"last_run_status,omitempty" db:"last_run_status"`
	LastRunAt      *time.Time `json:"last_run_at,omitempty" db:"last_run_at"`
	CreatedAt      time.Time  `json:"created_at" db:"created_at"`
	UpdatedAt      time.Time  `json:"updated_at" db:"updated_at"`
}

// NormalizedExpression rewrites the Quartz "no specific value" placeholder
// into the wildcard the cron parser understands.
func (s Schedule) NormalizedExpression() string {
	fields := strings.Fields(s.CronExpression)
	for i, f := range fields {
		if f == "?" {
			fields[i] = "*"
		}
	}
	return strings.Join(fields, " ")
}
