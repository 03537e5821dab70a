package storage

import (
	"github.com/pkg/errors"

	"github.com/Kernel180-BE12/Final-4team-icebang-sub000/pkg/models"
)

// ErrNotFound is returned when a referenced definition or run record does
// not exist.
var ErrNotFound = errors.New("not found")

// Store defines the run-store operations consumed by the engine. Every call
// is independently committed at the call site: the engine never wraps steps
// in a larger transaction, so partial progress of a failed run stays durable.
type Store interface {
	// Definition lookups (read-only to the engine)
	GetWorkflow(id int64) (models.Workflow, error)
	FindJobIDsByWorkflowID(workflowID int64) ([]int64, error)
	FindJobByID(id int64) (models.Job, error)
	FindTasksByJobID(jobID int64) ([]models.Task, error)

	// Workflow run records
	CreateWorkflowRun(run models.WorkflowRun) (int64, error)
	UpdateWorkflowRun(run models.WorkflowRun) error
	ListWorkflowRuns(workflowID int64) ([]models.WorkflowRun, error)
	GetWorkflowRun(id int64) (models.WorkflowRun, error)

	// Job run records
	CreateJobRun(run models.JobRun) (int64, error)
	UpdateJobRun(run models.JobRun) error
	ListJobRuns(workflowRunID int64) ([]models.JobRun, error)

	// Task run records
	CreateTaskRun(run models.TaskRun) (int64, error)
	UpdateTaskRun(run models.TaskRun) error
	ListTaskRuns(jobRunID int64) ([]models.TaskRun, error)

	// Schedules
	FindActiveSchedules() ([]models.Schedule, error)
	GetSchedule(id int64) (models.Schedule, error)
	SaveSchedule(s models.Schedule) (int64, error)
	UpdateScheduleActive(id int64, active bool) error

	Close() error
}
