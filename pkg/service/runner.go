package service

import (
	"github.com/Kernel180-BE12/Final-4team-icebang-sub000/pkg/models"
)

// Logger defines the logging interface used across the service layer.
type Logger interface {
	Infof(format string, args ...interface{})
	Errorf(format string, args ...interface{})
}

// TaskExecutionResult is the standard outcome of one task execution:
// SUCCESS with the raw response body, or FAILED with an error message.
type TaskExecutionResult struct {
	Status  models.RunStatus
	Message string
}

func Success(message string) TaskExecutionResult {
	return TaskExecutionResult{Status: models.SuccessRunStatus, Message: message}
}

func Failure(message string) TaskExecutionResult {
	return TaskExecutionResult{Status: models.FailedRunStatus, Message: message}
}

func (r TaskExecutionResult) IsFailure() bool {
	return r.Status == models.FailedRunStatus
}

// TaskRunner executes a single task type. A returned error signals a
// transport-level fault and is eligible for retry; a returned failure result
// is terminal and must not be retried. Runners must not mutate shared state
// outside the returned result.
type TaskRunner interface {
	Execute(task models.Task, taskRun models.TaskRun, requestBody models.JSONMap) (TaskExecutionResult, error)
}
