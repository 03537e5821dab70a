package http_test

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	net_http "net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"

	internal_http "github.com/Kernel180-BE12/Final-4team-icebang-sub000/internal/http"
	"github.com/Kernel180-BE12/Final-4team-icebang-sub000/pkg/models"
	"github.com/Kernel180-BE12/Final-4team-icebang-sub000/pkg/service"
	"github.com/Kernel180-BE12/Final-4team-icebang-sub000/pkg/storage"
)

type testEnv struct {
	store     *storage.MockStore
	scheduler *service.Scheduler
	srv       *httptest.Server
}

func setup(t *testing.T) *testEnv {
	logger := logrus.New()
	logger.SetOutput(io.Discard)

	store := storage.NewMockStore()
	executor := service.NewTaskExecutor(logger).WithRetryPolicy(3, 0)
	builders := service.NewBodyBuilderRegistry(service.DefaultBindings())
	svc := service.NewExecutionService(store, executor, builders, logger, 2)
	scheduler := service.NewScheduler(store, svc, logger)

	server := internal_http.NewServer(store, svc, scheduler)
	srv := httptest.NewServer(server.Handler())
	t.Cleanup(func() {
		srv.Close()
		svc.Stop()
		scheduler.Stop()
	})
	return &testEnv{store: store, scheduler: scheduler, srv: srv}
}

func postJSON(t *testing.T, url string, payload interface{}) *net_http.Response {
	t.Helper()
	var body bytes.Buffer
	if payload != nil {
		assert.NoError(t, json.NewEncoder(&body).Encode(payload))
	}
	resp, err := net_http.Post(url, "application/json", &body)
	assert.NoError(t, err)
	return resp
}

func TestServer_Health(t *testing.T) {
	env := setup(t)
	resp, err := net_http.Get(env.srv.URL + "/health")
	assert.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, net_http.StatusOK, resp.StatusCode)
}

func TestServer_TriggerRun(t *testing.T) {
	t.Run("UnknownWorkflow", func(t *testing.T) {
		env := setup(t)
		resp := postJSON(t, env.srv.URL+"/workflows/99/run", nil)
		defer resp.Body.Close()
		assert.Equal(t, net_http.StatusNotFound, resp.StatusCode)
	})

	t.Run("AcceptsAndRunsAsynchronously", func(t *testing.T) {
		env := setup(t)
		env.store.AddWorkflow(models.Workflow{ID: 1, Name: "empty"}, nil, nil)

		resp := postJSON(t, env.srv.URL+"/workflows/1/run", nil)
		defer resp.Body.Close()
		assert.Equal(t, net_http.StatusAccepted, resp.StatusCode)

		assert.Eventually(t, func() bool {
			runs, _ := env.store.ListWorkflowRuns(1)
			return len(runs) == 1 && runs[0].Status == models.SuccessRunStatus
		}, 2*time.Second, 10*time.Millisecond)
	})

	t.Run("InvalidID", func(t *testing.T) {
		env := setup(t)
		resp := postJSON(t, env.srv.URL+"/workflows/abc/run", nil)
		defer resp.Body.Close()
		assert.Equal(t, net_http.StatusBadRequest, resp.StatusCode)
	})
}

func TestServer_RunHistory(t *testing.T) {
	env := setup(t)
	env.store.AddWorkflow(models.Workflow{ID: 1, Name: "empty"}, nil, nil)

	resp := postJSON(t, env.srv.URL+"/workflows/1/run", nil)
	resp.Body.Close()
	assert.Eventually(t, func() bool {
		runs, _ := env.store.ListWorkflowRuns(1)
		return len(runs) == 1 && runs[0].Status == models.SuccessRunStatus
	}, 2*time.Second, 10*time.Millisecond)

	resp, err := net_http.Get(env.srv.URL + "/workflows/1/runs")
	assert.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, net_http.StatusOK, resp.StatusCode)

	var runs []models.WorkflowRun
	assert.NoError(t, json.NewDecoder(resp.Body).Decode(&runs))
	assert.Len(t, runs, 1)
	assert.Equal(t, models.SuccessRunStatus, runs[0].Status)

	detail, err := net_http.Get(fmt.Sprintf("%s/runs/%d", env.srv.URL, runs[0].ID))
	assert.NoError(t, err)
	defer detail.Body.Close()
	assert.Equal(t, net_http.StatusOK, detail.StatusCode)

	var payload struct {
		Run     models.WorkflowRun       `json:"run"`
		JobRuns []map[string]interface{} `json:"job_runs"`
	}
	assert.NoError(t, json.NewDecoder(detail.Body).Decode(&payload))
	assert.Equal(t, runs[0].ID, payload.Run.ID)
	assert.Len(t, payload.JobRuns, 0)

	missing, err := net_http.Get(env.srv.URL + "/runs/424242")
	assert.NoError(t, err)
	defer missing.Body.Close()
	assert.Equal(t, net_http.StatusNotFound, missing.StatusCode)
}

func TestServer_Schedules(t *testing.T) {
	t.Run("CreateActiveScheduleArmsIt", func(t *testing.T) {
		env := setup(t)
		env.store.AddWorkflow(models.Workflow{ID: 1, Name: "empty"}, nil, nil)

		resp := postJSON(t, env.srv.URL+"/schedules", map[string]interface{}{
			"workflow_id":     1,
			"cron_expression": "0 0 9 * * *",
			"is_active":       true,
		})
		defer resp.Body.Close()
		assert.Equal(t, net_http.StatusCreated, resp.StatusCode)

		var schedule models.Schedule
		assert.NoError(t, json.NewDecoder(resp.Body).Decode(&schedule))
		assert.NotZero(t, schedule.ID)
		assert.True(t, env.scheduler.Armed(1))
	})

	t.Run("InvalidExpressionIsRejected", func(t *testing.T) {
		env := setup(t)
		resp := postJSON(t, env.srv.URL+"/schedules", map[string]interface{}{
			"workflow_id":     1,
			"cron_expression": "broken",
			"is_active":       true,
		})
		defer resp.Body.Close()
		assert.Equal(t, net_http.StatusUnprocessableEntity, resp.StatusCode)
	})

	t.Run("MissingFields", func(t *testing.T) {
		env := setup(t)
		resp := postJSON(t, env.srv.URL+"/schedules", map[string]interface{}{"workflow_id": 1})
		defer resp.Body.Close()
		assert.Equal(t, net_http.StatusBadRequest, resp.StatusCode)
	})

	t.Run("ActivateAndDeactivate", func(t *testing.T) {
		env := setup(t)
		id, err := env.store.SaveSchedule(models.Schedule{
			WorkflowID:     3,
			CronExpression: "0 0 9 * * *",
			IsActive:       false,
		})
		assert.NoError(t, err)

		resp := postJSON(t, fmt.Sprintf("%s/schedules/%d/activate", env.srv.URL, id), nil)
		resp.Body.Close()
		assert.Equal(t, net_http.StatusOK, resp.StatusCode)
		assert.True(t, env.scheduler.Armed(3))

		schedule, err := env.store.GetSchedule(id)
		assert.NoError(t, err)
		assert.True(t, schedule.IsActive)

		resp = postJSON(t, fmt.Sprintf("%s/schedules/%d/deactivate", env.srv.URL, id), nil)
		resp.Body.Close()
		assert.Equal(t, net_http.StatusOK, resp.StatusCode)
		assert.False(t, env.scheduler.Armed(3))
	})

	t.Run("UnknownSchedule", func(t *testing.T) {
		env := setup(t)
		resp := postJSON(t, env.srv.URL+"/schedules/77/activate", nil)
		defer resp.Body.Close()
		assert.Equal(t, net_http.StatusNotFound, resp.StatusCode)
	})
}
