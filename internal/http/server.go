package http

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"

	"github.com/Kernel180-BE12/Final-4team-icebang-sub000/internal/log"
	"github.com/Kernel180-BE12/Final-4team-icebang-sub000/pkg/models"
	"github.com/Kernel180-BE12/Final-4team-icebang-sub000/pkg/service"
	"github.com/Kernel180-BE12/Final-4team-icebang-sub000/pkg/storage"
)

// Server exposes the engine's trigger, run-history and schedule surface.
// Triggering is asynchronous: the endpoint acknowledges with 202 and the run
// progresses in the background; callers poll the run records.
type Server struct {
	store     storage.Store
	svc       *service.ExecutionService
	scheduler *service.Scheduler
	mux       *http.ServeMux
}

func NewServer(store storage.Store, svc *service.ExecutionService, scheduler *service.Scheduler) *Server {
	s := &Server{
		store:     store,
		svc:       svc,
		scheduler: scheduler,
		mux:       http.NewServeMux(),
	}
	s.mux.HandleFunc("GET /health", healthHandler)
	s.mux.HandleFunc("POST /workflows/{id}/run", s.triggerRunHTTP)
	s.mux.HandleFunc("GET /workflows/{id}/runs", s.listRunsHTTP)
	s.mux.HandleFunc("GET /runs/{id}", s.getRunHTTP)
	s.mux.HandleFunc("POST /schedules", s.createScheduleHTTP)
	s.mux.HandleFunc("POST /schedules/{id}/activate", s.setScheduleActiveHTTP(true))
	s.mux.HandleFunc("POST /schedules/{id}/deactivate", s.setScheduleActiveHTTP(false))
	return s
}

func (s *Server) Handler() http.Handler {
	return s.mux
}

func StartServer(port string, store storage.Store, svc *service.ExecutionService, scheduler *service.Scheduler) error {
	server := NewServer(store, svc, scheduler)
	log.GetLogger().Infof("Starting engine server on :%s", port)
	return http.ListenAndServe(":"+port, server.Handler())
}

func healthHandler(w http.ResponseWriter, r *http.Request) {
	fmt.Fprintf(w, "Engine server is running")
}

func pathID(r *http.Request, name string) (int64, error) {
	return strconv.ParseInt(r.PathValue(name), 10, 64)
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.GetLogger().Errorf("Failed to encode response: %v", err)
	}
}

func (s *Server) triggerRunHTTP(w http.ResponseWriter, r *http.Request) {
	workflowID, err := pathID(r, "id")
	if err != nil {
		http.Error(w, "Invalid workflow id", http.StatusBadRequest)
		return
	}
	if _, err := s.store.GetWorkflow(workflowID); err != nil {
		if err == storage.ErrNotFound {
			http.Error(w, "Workflow not found", http.StatusNotFound)
			return
		}
		log.GetLogger().Errorf("Failed to load workflow %d: %v", workflowID, err)
		http.Error(w, "Failed to load workflow", http.StatusInternalServerError)
		return
	}
	s.svc.Execute(workflowID, models.ManualTrigger, 0)
	writeJSON(w, http.StatusAccepted, map[string]interface{}{
		"workflow_id": workflowID,
		"message":     "workflow run accepted",
	})
}

func (s *Server) listRunsHTTP(w http.ResponseWriter, r *http.Request) {
	workflowID, err := pathID(r, "id")
	if err != nil {
		http.Error(w, "Invalid workflow id", http.StatusBadRequest)
		return
	}
	runs, err := s.store.ListWorkflowRuns(workflowID)
	if err != nil {
		log.GetLogger().Errorf("Failed to list runs for workflow %d: %v", workflowID, err)
		http.Error(w, "Failed to list runs", http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, runs)
}

// getRunHTTP returns one run with its full job and task record tree.
func (s *Server) getRunHTTP(w http.ResponseWriter, r *http.Request) {
	runID, err := pathID(r, "id")
	if err != nil {
		http.Error(w, "Invalid run id", http.StatusBadRequest)
		return
	}
	run, err := s.store.GetWorkflowRun(runID)
	if err != nil {
		if err == storage.ErrNotFound {
			http.Error(w, "Run not found", http.StatusNotFound)
			return
		}
		log.GetLogger().Errorf("Failed to load run %d: %v", runID, err)
		http.Error(w, "Failed to load run", http.StatusInternalServerError)
		return
	}
	jobRuns, err := s.store.ListJobRuns(runID)
	if err != nil {
		log.GetLogger().Errorf("Failed to list job runs for run %d: %v", runID, err)
		http.Error(w, "Failed to load run", http.StatusInternalServerError)
		return
	}
	type jobRunDetail struct {
		models.JobRun
		TaskRuns []models.TaskRun `json:"task_runs"`
	}
	details := make([]jobRunDetail, 0, len(jobRuns))
	for _, jr := range jobRuns {
		taskRuns, err := s.store.ListTaskRuns(jr.ID)
		if err != nil {
			log.GetLogger().Errorf("Failed to list task runs for job run %d: %v", jr.ID, err)
			http.Error(w, "Failed to load run", http.StatusInternalServerError)
			return
		}
		details = append(details, jobRunDetail{JobRun: jr, TaskRuns: taskRuns})
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"run":      run,
		"job_runs": details,
	})
}

func (s *Server) createScheduleHTTP(w http.ResponseWriter, r *http.Request) {
	var req struct {
		WorkflowID     int64  `json:"workflow_id"`
		CronExpression string `json:"cron_expression"`
		IsActive       bool   `json:"is_active"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}
	if req.WorkflowID == 0 || req.CronExpression == "" {
		http.Error(w, "Missing 'workflow_id' or 'cron_expression'", http.StatusBadRequest)
		return
	}
	schedule := models.Schedule{
		WorkflowID:     req.WorkflowID,
		CronExpression: req.CronExpression,
		IsActive:       req.IsActive,
	}
	id, err := s.store.SaveSchedule(schedule)
	if err != nil {
		log.GetLogger().Errorf("Failed to save schedule: %v", err)
		http.Error(w, "Failed to save schedule", http.StatusInternalServerError)
		return
	}
	schedule.ID = id
	if schedule.IsActive {
		if err := s.scheduler.Arm(schedule); err != nil {
			log.GetLogger().Errorf("Failed to arm schedule %d: %v", id, err)
			http.Error(w, fmt.Sprintf("Saved but not armed: %v", err), http.StatusUnprocessableEntity)
			return
		}
	}
	writeJSON(w, http.StatusCreated, schedule)
}

func (s *Server) setScheduleActiveHTTP(active bool) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		scheduleID, err := pathID(r, "id")
		if err != nil {
			http.Error(w, "Invalid schedule id", http.StatusBadRequest)
			return
		}
		schedule, err := s.store.GetSchedule(scheduleID)
		if err != nil {
			if err == storage.ErrNotFound {
				http.Error(w, "Schedule not found", http.StatusNotFound)
				return
			}
			log.GetLogger().Errorf("Failed to load schedule %d: %v", scheduleID, err)
			http.Error(w, "Failed to load schedule", http.StatusInternalServerError)
			return
		}
		if err := s.store.UpdateScheduleActive(scheduleID, active); err != nil {
			log.GetLogger().Errorf("Failed to update schedule %d: %v", scheduleID, err)
			http.Error(w, "Failed to update schedule", http.StatusInternalServerError)
			return
		}
		schedule.IsActive = active
		if active {
			if err := s.scheduler.Arm(schedule); err != nil {
				log.GetLogger().Errorf("Failed to arm schedule %d: %v", scheduleID, err)
				http.Error(w, fmt.Sprintf("Updated but not armed: %v", err), http.StatusUnprocessableEntity)
				return
			}
		} else {
			s.scheduler.Disarm(schedule.WorkflowID)
		}
		writeJSON(w, http.StatusOK, schedule)
	}
}
