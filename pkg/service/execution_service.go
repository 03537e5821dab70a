package service

import (
	"strconv"

	"github.com/sirupsen/logrus"

	"github.com/Kernel180-BE12/Final-4team-icebang-sub000/pkg/models"
	"github.com/Kernel180-BE12/Final-4team-icebang-sub000/pkg/storage"
)

// ExecutionService is the workflow orchestrator. Execute is fire-and-forget:
// it queues the run on the worker pool and returns; progress is observable
// only through the run records in the store.
//
// Every state transition is its own independently committed store call.
// There is deliberately no run-level transaction and no rollback: a failure
// downstream never un-persists committed upstream records, so run history is
// append-only and forward-only.
type ExecutionService struct {
	store    storage.Store
	executor *TaskExecutor
	builders *BodyBuilderRegistry
	logger   logrus.FieldLogger
	pool     *WorkerPool
}

func NewExecutionService(
	store storage.Store,
	executor *TaskExecutor,
	builders *BodyBuilderRegistry,
	logger logrus.FieldLogger,
	workers int,
) *ExecutionService {
	return &ExecutionService{
		store:    store,
		executor: executor,
		builders: builders,
		logger:   logger,
		pool:     NewWorkerPool(workers, logger),
	}
}

// Execute starts a workflow run asynchronously and returns immediately.
// There is no mutual exclusion across runs: concurrent triggers for the same
// workflow id each get their own run record and trace id.
func (s *ExecutionService) Execute(workflowID int64, trigger models.TriggerType, triggerID int64) {
	s.pool.Submit(func() {
		s.ExecuteSync(workflowID, trigger, triggerID)
	})
}

// Stop waits for queued and in-flight runs to reach a terminal state.
func (s *ExecutionService) Stop() {
	s.pool.Stop()
}

// ExecuteSync performs one workflow run to completion on the calling
// goroutine. Exposed so tests and one-shot CLI runs can wait for the result.
func (s *ExecutionService) ExecuteSync(workflowID int64, trigger models.TriggerType, triggerID int64) {
	// commit #1: the run record exists before any work starts
	run := models.NewWorkflowRun(workflowID, trigger, triggerID)
	runID, err := s.store.CreateWorkflowRun(run)
	if err != nil {
		s.logger.Errorf("Failed to create workflow run: WorkflowId=%d, Error=%v", workflowID, err)
		return
	}
	run.ID = runID
	run.Begin()
	if err := s.store.UpdateWorkflowRun(run); err != nil {
		s.logger.Errorf("Failed to mark workflow run RUNNING: WorkflowRunId=%d, Error=%v", run.ID, err)
		return
	}

	log := s.logger.WithFields(logrus.Fields{
		"traceId":       run.TraceID,
		"sourceId":      workflowID,
		"executionType": "WORKFLOW",
	})
	log.Infof("Workflow run started: WorkflowRunId=%d, Trigger=%s", run.ID, trigger)

	failed := !s.runJobs(log, run)

	// commit #3: finalize exactly once
	if failed {
		run.Finish(models.FailedRunStatus)
	} else {
		run.Finish(models.SuccessRunStatus)
	}
	if err := s.store.UpdateWorkflowRun(run); err != nil {
		log.Errorf("Failed to finalize workflow run: WorkflowRunId=%d, Error=%v", run.ID, err)
		return
	}
	log.Infof("Workflow run finished: WorkflowRunId=%d, Status=%s", run.ID, run.Status)
}

// runJobs executes the workflow's jobs strictly sequentially. The first job
// failure aborts the loop; earlier results stay committed.
func (s *ExecutionService) runJobs(log logrus.FieldLogger, run models.WorkflowRun) bool {
	workflow, err := s.store.GetWorkflow(run.WorkflowID)
	if err != nil {
		log.Errorf("Failed to load workflow definition: WorkflowId=%d, Error=%v", run.WorkflowID, err)
		return false
	}

	jobIDs, err := s.store.FindJobIDsByWorkflowID(run.WorkflowID)
	if err != nil {
		log.Errorf("Failed to resolve jobs: WorkflowId=%d, Error=%v", run.WorkflowID, err)
		return false
	}
	log.Infof("Executing %d jobs sequentially", len(jobIDs))

	ctx := NewExecutionContext()
	for i, jobID := range jobIDs {
		// a missing job definition is an integrity error, fatal for the run
		job, err := s.store.FindJobByID(jobID)
		if err != nil {
			log.Errorf("Job definition missing: JobId=%d, Error=%v", jobID, err)
			return false
		}

		// commit #2: each job's record is committed independently
		jobRun := models.NewJobRun(run.ID, job.ID, i+1)
		jobRunID, err := s.store.CreateJobRun(jobRun)
		if err != nil {
			log.Errorf("Failed to create job run: JobId=%d, Error=%v", job.ID, err)
			return false
		}
		jobRun.ID = jobRunID
		jobRun.Begin()
		if err := s.store.UpdateJobRun(jobRun); err != nil {
			log.Errorf("Failed to mark job run RUNNING: JobRunId=%d, Error=%v", jobRun.ID, err)
			return false
		}

		jobLog := log.WithFields(logrus.Fields{"sourceId": jobRun.ID, "executionType": "JOB"})
		jobLog.Infof("Job started: JobId=%d, JobRunId=%d, Order=%d", job.ID, jobRun.ID, jobRun.ExecutionOrder)

		succeeded := s.runTasks(jobLog, jobRun, workflow.DefaultConfig, ctx)
		if succeeded {
			jobRun.Finish(models.SuccessRunStatus)
		} else {
			jobRun.Finish(models.FailedRunStatus)
		}
		if err := s.store.UpdateJobRun(jobRun); err != nil {
			jobLog.Errorf("Failed to finalize job run: JobRunId=%d, Error=%v", jobRun.ID, err)
			return false
		}

		if !succeeded {
			jobLog.Errorf("Job failed, aborting remaining jobs: JobRunId=%d", jobRun.ID)
			return false
		}
		jobLog.Infof("Job succeeded: JobRunId=%d", jobRun.ID)
	}
	return true
}

// runTasks executes all of a job's tasks in order. A failed task does not
// stop later tasks in the same job, but the job is reported failed.
func (s *ExecutionService) runTasks(log logrus.FieldLogger, jobRun models.JobRun, defaults models.JSONMap, ctx *ExecutionContext) bool {
	tasks, err := s.store.FindTasksByJobID(jobRun.JobID)
	if err != nil {
		log.Errorf("Failed to load tasks: JobId=%d, Error=%v", jobRun.JobID, err)
		return false
	}
	log.Infof("Executing %d tasks sequentially: JobRunId=%d", len(tasks), jobRun.ID)

	anyFailed := false
	for i, task := range tasks {
		if settings, ok := defaults[strconv.FormatInt(task.ID, 10)].(map[string]interface{}); ok {
			task.Settings = settings
		}

		order := task.ExecutionOrder
		if order <= 0 {
			order = i + 1
		}
		taskRun := models.NewTaskRun(jobRun.ID, task.ID, order)
		taskRunID, err := s.store.CreateTaskRun(taskRun)
		if err != nil {
			log.Errorf("Failed to create task run: TaskId=%d, Error=%v", task.ID, err)
			anyFailed = true
			continue
		}
		taskRun.ID = taskRunID
		taskRun.Begin()
		if err := s.store.UpdateTaskRun(taskRun); err != nil {
			log.Errorf("Failed to mark task run RUNNING: TaskRunId=%d, Error=%v", taskRun.ID, err)
			anyFailed = true
			continue
		}

		taskLog := log.WithFields(logrus.Fields{"sourceId": taskRun.ID, "executionType": "TASK"})
		taskLog.Infof("Task started: TaskId=%d, Name=%s", task.ID, task.Name)

		body, err := s.builders.BuildFor(task, ctx)
		var result TaskExecutionResult
		if err != nil {
			// mandatory upstream data is missing; fail before dispatch
			taskLog.Errorf("Request body build failed: TaskRunId=%d, Error=%v", taskRun.ID, err)
			result = Failure(err.Error())
		} else {
			result = s.executor.ExecuteWithRetry(task, taskRun, body)
		}

		taskRun.Finish(result.Status, result.Message)
		if err := s.store.UpdateTaskRun(taskRun); err != nil {
			taskLog.Errorf("Failed to finalize task run: TaskRunId=%d, Error=%v", taskRun.ID, err)
			anyFailed = true
			continue
		}

		if result.IsFailure() {
			taskLog.Errorf("Task failed: TaskRunId=%d, Message=%s", taskRun.ID, result.Message)
			anyFailed = true
			continue
		}

		env, err := models.ParseEnvelope(result.Message)
		if err != nil {
			taskLog.Errorf("Task response is not a result envelope: TaskRunId=%d, Error=%v", taskRun.ID, err)
			anyFailed = true
			continue
		}
		ctx.Put(task.Name, env)
		taskLog.Infof("Task succeeded: TaskRunId=%d", taskRun.ID)
	}
	return !anyFailed
}
