package storage

import (
	"database/sql"
	"fmt"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"

	"github.com/Kernel180-BE12/Final-4team-icebang-sub000/pkg/models"
	"github.com/Kernel180-BE12/Final-4team-icebang-sub000/pkg/storage"
)

type DBInterface interface {
	Get(dest interface{}, query string, args ...interface{}) error
	Select(dest interface{}, query string, args ...interface{}) error
	QueryRowx(query string, args ...interface{}) *sqlx.Row
	Exec(query string, args ...interface{}) (sql.Result, error)
}

// PostgresStore persists definitions and run records. Every method runs in
// its own implicit transaction; callers rely on that for independent commits.
type PostgresStore struct {
	db DBInterface
}

func NewPostgresStore(connStr string) (*PostgresStore, error) {
	db, err := sqlx.Open("postgres", connStr)
	if err != nil {
		return nil, err
	}
	if err := db.Ping(); err != nil {
		return nil, err
	}
	return &PostgresStore{db: db}, nil
}

func (s *PostgresStore) Close() error {
	if db, ok := s.db.(*sqlx.DB); ok {
		return db.Close()
	}
	return nil
}

// GetWorkflow retrieves a workflow definition by ID
func (s *PostgresStore) GetWorkflow(id int64) (models.Workflow, error) {
	var wf models.Workflow
	err := s.db.Get(&wf, "SELECT * FROM workflows WHERE id = $1", id)
	if err == sql.ErrNoRows {
		return models.Workflow{}, storage.ErrNotFound
	}
	if err != nil {
		return models.Workflow{}, fmt.Errorf("get workflow %d: %w", id, err)
	}
	return wf, nil
}

// FindJobIDsByWorkflowID returns the workflow's job ids in execution order
func (s *PostgresStore) FindJobIDsByWorkflowID(workflowID int64) ([]int64, error) {
	jobIDs := []int64{}
	err := s.db.Select(&jobIDs,
		"SELECT job_id FROM workflow_jobs WHERE workflow_id = $1 ORDER BY execution_order",
		workflowID)
	if err != nil {
		return nil, fmt.Errorf("find jobs for workflow %d: %w", workflowID, err)
	}
	return jobIDs, nil
}

func (s *PostgresStore) FindJobByID(id int64) (models.Job, error) {
	var job models.Job
	err := s.db.Get(&job, "SELECT * FROM jobs WHERE id = $1", id)
	if err == sql.ErrNoRows {
		return models.Job{}, storage.ErrNotFound
	}
	if err != nil {
		return models.Job{}, fmt.Errorf("get job %d: %w", id, err)
	}
	return job, nil
}

// FindTasksByJobID returns the job's tasks in mapping execution order
func (s *PostgresStore) FindTasksByJobID(jobID int64) ([]models.Task, error) {
	tasks := []models.Task{}
	err := s.db.Select(&tasks, `
		SELECT t.id, t.name, t.type, m.execution_order, t.parameters, t.created_at, t.updated_at
		FROM tasks t
		JOIN job_tasks m ON m.task_id = t.id
		WHERE m.job_id = $1
		ORDER BY m.execution_order`, jobID)
	if err != nil {
		return nil, fmt.Errorf("find tasks for job %d: %w", jobID, err)
	}
	return tasks, nil
}

// CreateWorkflowRun inserts a new run record and returns its ID
func (s *PostgresStore) CreateWorkflowRun(run models.WorkflowRun) (int64, error) {
	var id int64
	err := s.db.QueryRowx(`
		INSERT INTO workflow_runs (workflow_id, trace_id, status, trigger_type, trigger_id, started_at, finished_at, created_by, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9) RETURNING id`,
		run.WorkflowID, run.TraceID, run.Status, run.TriggerType, run.TriggerID,
		run.StartedAt, run.FinishedAt, run.CreatedBy, run.CreatedAt).Scan(&id)
	if err != nil {
		return 0, fmt.Errorf("create workflow run: %w", err)
	}
	return id, nil
}

func (s *PostgresStore) UpdateWorkflowRun(run models.WorkflowRun) error {
	_, err := s.db.Exec(`
		UPDATE workflow_runs
		SET trace_id = $1, status = $2, started_at = $3, finished_at = $4
		WHERE id = $5`,
		run.TraceID, run.Status, run.StartedAt, run.FinishedAt, run.ID)
	if err != nil {
		return fmt.Errorf("update workflow run %d: %w", run.ID, err)
	}
	return nil
}

func (s *PostgresStore) ListWorkflowRuns(workflowID int64) ([]models.WorkflowRun, error) {
	runs := []models.WorkflowRun{}
	err := s.db.Select(&runs,
		"SELECT * FROM workflow_runs WHERE workflow_id = $1 ORDER BY created_at DESC",
		workflowID)
	if err != nil {
		return nil, fmt.Errorf("list workflow runs for %d: %w", workflowID, err)
	}
	return runs, nil
}

func (s *PostgresStore) GetWorkflowRun(id int64) (models.WorkflowRun, error) {
	var run models.WorkflowRun
	err := s.db.Get(&run, "SELECT * FROM workflow_runs WHERE id = $1", id)
	if err == sql.ErrNoRows {
		return models.WorkflowRun{}, storage.ErrNotFound
	}
	if err != nil {
		return models.WorkflowRun{}, fmt.Errorf("get workflow run %d: %w", id, err)
	}
	return run, nil
}

func (s *PostgresStore) CreateJobRun(run models.JobRun) (int64, error) {
	var id int64
	err := s.db.QueryRowx(`
		INSERT INTO job_runs (workflow_run_id, job_id, status, execution_order, started_at, finished_at, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7) RETURNING id`,
		run.WorkflowRunID, run.JobID, run.Status, run.ExecutionOrder,
		run.StartedAt, run.FinishedAt, run.CreatedAt).Scan(&id)
	if err != nil {
		return 0, fmt.Errorf("create job run: %w", err)
	}
	return id, nil
}

func (s *PostgresStore) UpdateJobRun(run models.JobRun) error {
	_, err := s.db.Exec(`
		UPDATE job_runs
		SET status = $1, started_at = $2, finished_at = $3
		WHERE id = $4`,
		run.Status, run.StartedAt, run.FinishedAt, run.ID)
	if err != nil {
		return fmt.Errorf("update job run %d: %w", run.ID, err)
	}
	return nil
}

func (s *PostgresStore) ListJobRuns(workflowRunID int64) ([]models.JobRun, error) {
	runs := []models.JobRun{}
	err := s.db.Select(&runs,
		"SELECT * FROM job_runs WHERE workflow_run_id = $1 ORDER BY execution_order",
		workflowRunID)
	if err != nil {
		return nil, fmt.Errorf("list job runs for %d: %w", workflowRunID, err)
	}
	return runs, nil
}

func (s *PostgresStore) CreateTaskRun(run models.TaskRun) (int64, error) {
	var id int64
	err := s.db.QueryRowx(`
		INSERT INTO task_runs (job_run_id, task_id, execution_order, status, result_message, started_at, finished_at, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8) RETURNING id`,
		run.JobRunID, run.TaskID, run.ExecutionOrder, run.Status, run.ResultMessage,
		run.StartedAt, run.FinishedAt, run.CreatedAt).Scan(&id)
	if err != nil {
		return 0, fmt.Errorf("create task run: %w", err)
	}
	return id, nil
}

func (s *PostgresStore) UpdateTaskRun(run models.TaskRun) error {
	_, err := s.db.Exec(`
		UPDATE task_runs
		SET status = $1, result_message = $2, started_at = $3, finished_at = $4
		WHERE id = $5`,
		run.Status, run.ResultMessage, run.StartedAt, run.FinishedAt, run.ID)
	if err != nil {
		return fmt.Errorf("update task run %d: %w", run.ID, err)
	}
	return nil
}

func (s *PostgresStore) ListTaskRuns(jobRunID int64) ([]models.TaskRun, error) {
	runs := []models.TaskRun{}
	err := s.db.Select(&runs,
		"SELECT * FROM task_runs WHERE job_run_id = $1 ORDER BY execution_order",
		jobRunID)
	if err != nil {
		return nil, fmt.Errorf("list task runs for %d: %w", jobRunID, err)
	}
	return runs, nil
}

// FindActiveSchedules returns every schedule to arm at startup
func (s *PostgresStore) FindActiveSchedules() ([]models.Schedule, error) {
	schedules := []models.Schedule{}
	err := s.db.Select(&schedules,
		"SELECT * FROM schedules WHERE is_active = true ORDER BY id")
	if err != nil {
		return nil, fmt.Errorf("find active schedules: %w", err)
	}
	return schedules, nil
}

func (s *PostgresStore) GetSchedule(id int64) (models.Schedule, error) {
	var schedule models.Schedule
	err := s.db.Get(&schedule, "SELECT * FROM schedules WHERE id = $1", id)
	if err == sql.ErrNoRows {
		return models.Schedule{}, storage.ErrNotFound
	}
	if err != nil {
		return models.Schedule{}, fmt.Errorf("get schedule %d: %w", id, err)
	}
	return schedule, nil
}

// SaveSchedule inserts a schedule or updates it in place when ID is set
func (s *PostgresStore) SaveSchedule(sc models.Schedule) (int64, error) {
	if sc.ID != 0 {
		_, err := s.db.Exec(`
			UPDATE schedules
			SET cron_expression = $1, is_active = $2, updated_at = CURRENT_TIMESTAMP
			WHERE id = $3`,
			sc.CronExpression, sc.IsActive, sc.ID)
		if err != nil {
			return 0, fmt.Errorf("update schedule %d: %w", sc.ID, err)
		}
		return sc.ID, nil
	}
	var id int64
	err := s.db.QueryRowx(`
		INSERT INTO schedules (workflow_id, cron_expression, is_active, created_at, updated_at)
		VALUES ($1, $2, $3, CURRENT_TIMESTAMP, CURRENT_TIMESTAMP) RETURNING id`,
		sc.WorkflowID, sc.CronExpression, sc.IsActive).Scan(&id)
	if err != nil {
		return 0, fmt.Errorf("save schedule: %w", err)
	}
	return id, nil
}

func (s *PostgresStore) UpdateScheduleActive(id int64, active bool) error {
	_, err := s.db.Exec(
		"UPDATE schedules SET is_active = $1, updated_at = CURRENT_TIMESTAMP WHERE id = $2",
		active, id)
	if err != nil {
		return fmt.Errorf("update schedule %d active: %w", id, err)
	}
	return nil
}
