package service

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	"github.com/Kernel180-BE12/Final-4team-icebang-sub000/pkg/automation"
	"github.com/Kernel180-BE12/Final-4team-icebang-sub000/pkg/models"
)

// AutomationTaskRunner executes tasks of type AUTOMATION by delegating to the
// shared automation client. The task parameters carry a relative endpoint and
// an optional method (default POST); the client owns the base URL.
type AutomationTaskRunner struct {
	client *automation.Client
	logger Logger
}

func NewAutomationTaskRunner(client *automation.Client, logger Logger) *AutomationTaskRunner {
	return &AutomationTaskRunner{client: client, logger: logger}
}

func (r *AutomationTaskRunner) Execute(task models.Task, taskRun models.TaskRun, requestBody models.JSONMap) (TaskExecutionResult, error) {
	endpoint := task.Parameters.String("endpoint", "")
	if endpoint == "" {
		return Failure(fmt.Sprintf("task %d has no endpoint parameter", task.ID)), nil
	}
	method := strings.ToUpper(task.Parameters.String("method", http.MethodPost))

	payload, err := json.Marshal(requestBody)
	if err != nil {
		return Failure(fmt.Sprintf("encode request body: %v", err)), nil
	}

	status, body, err := r.client.Call(endpoint, method, payload)
	if err != nil {
		// transport fault; the executor decides whether to retry
		return TaskExecutionResult{}, err
	}
	if status < 200 || status > 299 {
		r.logger.Errorf("Automation task failed: TaskRunId=%d, Endpoint=%s, Status=%d", taskRun.ID, endpoint, status)
		return Failure(fmt.Sprintf("automation backend returned %d: %s", status, body)), nil
	}
	return Success(body), nil
}
