package service

import (
	"fmt"
	"strings"
	"time"

	"github.com/pkg/errors"

	"github.com/Kernel180-BE12/Final-4team-icebang-sub000/pkg/models"
)

const (
	// transport faults are retried up to DefaultMaxAttempts with a fixed
	// DefaultRetryDelay between attempts
	DefaultMaxAttempts = 3
	DefaultRetryDelay  = 5 * time.Second
)

// TaskExecutor dispatches a task to the runner registered for its type and
// wraps the call with bounded retry. Only transport-level errors returned by
// a runner are retried; a runner's failure result is terminal. Exhausted
// retries are converted into a FAILED result, never propagated as an error.
type TaskExecutor struct {
	runners     map[string]TaskRunner
	maxAttempts int
	retryDelay  time.Duration
	logger      Logger
}

func NewTaskExecutor(logger Logger) *TaskExecutor {
	return &TaskExecutor{
		runners:     make(map[string]TaskRunner),
		maxAttempts: DefaultMaxAttempts,
		retryDelay:  DefaultRetryDelay,
		logger:      logger,
	}
}

// WithRetryPolicy overrides the retry bound and delay. Used by tests and by
// deployments that need a different backoff.
func (e *TaskExecutor) WithRetryPolicy(maxAttempts int, delay time.Duration) *TaskExecutor {
	if maxAttempts > 0 {
		e.maxAttempts = maxAttempts
	}
	e.retryDelay = delay
	return e
}

// Register binds a runner to a task type. Duplicate registrations are a
// configuration error and rejected so they surface at startup.
func (e *TaskExecutor) Register(taskType models.TaskType, runner TaskRunner) error {
	key := strings.ToLower(string(taskType))
	if key == "" {
		return errors.New("empty task type")
	}
	if _, exists := e.runners[key]; exists {
		return errors.Errorf("task runner already registered for type '%s'", taskType)
	}
	e.runners[key] = runner
	return nil
}

// ExecuteWithRetry resolves the runner for task.Type (case-insensitive) and
// attempts the call up to the configured bound. An unknown type fails
// immediately without any attempt.
func (e *TaskExecutor) ExecuteWithRetry(task models.Task, taskRun models.TaskRun, requestBody models.JSONMap) TaskExecutionResult {
	runner, ok := e.runners[strings.ToLower(string(task.Type))]
	if !ok {
		e.logger.Errorf("Unsupported task type '%s': TaskId=%d, TaskRunId=%d", task.Type, task.ID, taskRun.ID)
		return Failure(fmt.Sprintf("unsupported task type: %s", task.Type))
	}

	var lastErr error
	for attempt := 1; attempt <= e.maxAttempts; attempt++ {
		e.logger.Infof("Task attempt %d/%d: TaskId=%d, TaskRunId=%d", attempt, e.maxAttempts, task.ID, taskRun.ID)

		result, err := runner.Execute(task, taskRun, requestBody)
		if err == nil {
			// a result value, success or failure, is terminal
			return result
		}

		lastErr = err
		e.logger.Errorf("Task attempt %d/%d failed: TaskRunId=%d, Error=%v", attempt, e.maxAttempts, taskRun.ID, err)
		if attempt < e.maxAttempts {
			time.Sleep(e.retryDelay)
		}
	}

	e.logger.Errorf("Task failed after exhausting retries: TaskRunId=%d, Error=%v", taskRun.ID, lastErr)
	return Failure(fmt.Sprintf("max retries exceeded: %v", lastErr))
}
