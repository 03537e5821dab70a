package models

import (
	"time"

	"github.com/google/uuid"
)

type RunStatus string

const (
	PendingRunStatus RunStatus = "PENDING"
	RunningRunStatus RunStatus = "RUNNING"
	SuccessRunStatus RunStatus = "SUCCESS"
	FailedRunStatus  RunStatus = "FAILED"
)

// TriggerType records what started a workflow run.
type TriggerType string

const (
	ManualTrigger   TriggerType = "MANUAL"
	ScheduleTrigger TriggerType = "SCHEDULE"
)

// WorkflowRun is the execution record for one invocation of a workflow.
// It is created PENDING, moved to RUNNING with a fresh trace id, and set to
// a terminal status exactly once. Terminal rows are never mutated again.
type WorkflowRun struct {
	ID          int64       `json:"id" db:"id"`
	WorkflowID  int64       `json:"workflow_id" db:"workflow_id"`
	TraceID     string      `json:"trace_id" db:"trace_id"` // Correlates all job/task records and log lines of this run
	Status      RunStatus   `json:"status" db:"status"`
	TriggerType TriggerType `json:"trigger_type" db:"trigger_type"`
	TriggerID   int64       `json:"trigger_id" db:"trigger_id"` // Schedule id for SCHEDULE runs, caller-supplied otherwise
	StartedAt   *time.Time  `json:"started_at,omitempty" db:"started_at"`
	FinishedAt  *time.Time  `json:"finished_at,omitempty" db:"finished_at"`
	CreatedBy   int64       `json:"created_by" db:"created_by"`
	CreatedAt   time.Time   `json:"created_at" db:"created_at"`
}

// NewWorkflowRun creates the PENDING record persisted before execution starts.
func NewWorkflowRun(workflowID int64, trigger TriggerType, triggerID int64) WorkflowRun {
	return WorkflowRun{
		WorkflowID:  workflowID,
		Status:      PendingRunStatus,
		TriggerType: trigger,
		TriggerID:   triggerID,
		CreatedAt:   time.Now(),
	}
}

// Begin transitions the run to RUNNING and assigns its trace id.
func (r *WorkflowRun) Begin() {
	now := time.Now()
	r.TraceID = uuid.NewString()
	r.Status = RunningRunStatus
	r.StartedAt = &now
}

// Finish sets the terminal status and stamps finishedAt exactly once.
func (r *WorkflowRun) Finish(status RunStatus) {
	now := time.Now()
	r.Status = status
	r.FinishedAt = &now
}

// JobRun is the execution record for one job within a workflow run.
type JobRun struct {
	ID             int64      `json:"id" db:"id"`
	WorkflowRunID  int64      `json:"workflow_run_id" db:"workflow_run_id"`
	JobID          int64      `json:"job_id" db:"job_id"`
	Status         RunStatus  `json:"status" db:"status"`
	ExecutionOrder int        `json:"execution_order" db:"execution_order"` // 1-based position within the run
	StartedAt      *time.Time `json:"started_at,omitempty" db:"started_at"`
	FinishedAt     *time.Time `json:"finished_at,omitempty" db:"finished_at"`
	CreatedAt      time.Time  `json:"created_at" db:"created_at"`
}

func NewJobRun(workflowRunID, jobID int64, executionOrder int) JobRun {
	return JobRun{
		WorkflowRunID:  workflowRunID,
		JobID:          jobID,
		Status:         PendingRunStatus,
		ExecutionOrder: executionOrder,
		CreatedAt:      time.Now(),
	}
}

func (r *JobRun) Begin() {
	now := time.Now()
	r.Status = RunningRunStatus
	r.StartedAt = &now
}

func (r *JobRun) Finish(status RunStatus) {
	now := time.Now()
	r.Status = status
	r.FinishedAt = &now
}

// TaskRun is the execution record for one task within a job run.
type TaskRun struct {
	ID             int64      `json:"id" db:"id"`
	JobRunID       int64      `json:"job_run_id" db:"job_run_id"`
	TaskID         int64      `json:"task_id" db:"task_id"`
	ExecutionOrder int        `json:"execution_order" db:"execution_order"`
	Status         RunStatus  `json:"status" db:"status"`
	ResultMessage  string     `json:"result_message,omitempty" db:"result_message"` // Response body on success, error on failure
	StartedAt      *time.Time `json:"started_at,omitempty" db:"started_at"`
	FinishedAt     *time.Time `json:"finished_at,omitempty" db:"finished_at"`
	CreatedAt      time.Time  `json:"created_at" db:"created_at"`
}

func NewTaskRun(jobRunID, taskID int64, executionOrder int) TaskRun {
	return TaskRun{
		JobRunID:       jobRunID,
		TaskID:         taskID,
		ExecutionOrder: executionOrder,
		Status:         PendingRunStatus,
		CreatedAt:      time.Now(),
	}
}

func (r *TaskRun) Begin() {
	now := time.Now()
	r.Status = RunningRunStatus
	r.StartedAt = &now
}

func (r *TaskRun) Finish(status RunStatus, resultMessage string) {
	now := time.Now()
	r.Status = status
	r.ResultMessage = resultMessage
	r.FinishedAt = &now
}
