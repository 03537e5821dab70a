package service

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/pkg/errors"

	"github.com/Kernel180-BE12/Final-4team-icebang-sub000/pkg/models"
)

// HTTPTaskRunner executes tasks of type HTTP against an absolute URL taken
// from the task's parameters. Transport faults are returned as errors so the
// executor retries them; a non-2xx response is a remote error, reported as a
// terminal failure result.
type HTTPTaskRunner struct {
	client *http.Client
	logger Logger
}

func NewHTTPTaskRunner(timeout time.Duration, logger Logger) *HTTPTaskRunner {
	return &HTTPTaskRunner{
		client: &http.Client{Timeout: timeout},
		logger: logger,
	}
}

func (r *HTTPTaskRunner) Execute(task models.Task, taskRun models.TaskRun, requestBody models.JSONMap) (TaskExecutionResult, error) {
	url := task.Parameters.String("url", "")
	if url == "" {
		return Failure(fmt.Sprintf("task %d has no url parameter", task.ID)), nil
	}
	method := strings.ToUpper(task.Parameters.String("method", http.MethodPost))

	payload, err := json.Marshal(requestBody)
	if err != nil {
		return Failure(fmt.Sprintf("encode request body: %v", err)), nil
	}

	req, err := http.NewRequest(method, url, bytes.NewReader(payload))
	if err != nil {
		return Failure(fmt.Sprintf("build request: %v", err)), nil
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := r.client.Do(req)
	if err != nil {
		return TaskExecutionResult{}, errors.Wrapf(err, "call %s %s", method, url)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return TaskExecutionResult{}, errors.Wrapf(err, "read response from %s", url)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		r.logger.Errorf("HTTP task failed: TaskRunId=%d, Status=%d", taskRun.ID, resp.StatusCode)
		return Failure(fmt.Sprintf("remote returned %d: %s", resp.StatusCode, string(raw))), nil
	}
	return Success(string(raw)), nil
}
