package service

import (
	"sync"

	"github.com/pkg/errors"
	"github.com/robfig/cron/v3"

	"github.com/Kernel180-BE12/Final-4team-icebang-sub000/pkg/models"
	"github.com/Kernel180-BE12/Final-4team-icebang-sub000/pkg/storage"
)

// Executor triggers workflow runs. Satisfied by ExecutionService.
type Executor interface {
	Execute(workflowID int64, trigger models.TriggerType, triggerID int64)
}

// Scheduler arms cron triggers for persisted workflow schedules. One trigger
// per workflow id: arming a schedule for an already-armed workflow replaces
// the previous trigger, so repeated updates never stack entries.
type Scheduler struct {
	store    storage.Store
	executor Executor
	logger   Logger

	cron *cron.Cron

	mu      sync.Mutex
	entries map[int64]cron.EntryID // workflow id -> armed entry
}

// newCron accepts the six-field, seconds-first expressions the schedule
// records carry. The Quartz "?" placeholder is normalized to "*" by the
// schedule model before parsing.
func newCron() *cron.Cron {
	return cron.New(cron.WithSeconds())
}

func NewScheduler(store storage.Store, executor Executor, logger Logger) *Scheduler {
	return &Scheduler{
		store:    store,
		executor: executor,
		logger:   logger,
		cron:     newCron(),
		entries:  make(map[int64]cron.EntryID),
	}
}

// Start arms every active persisted schedule and begins dispatching.
// Schedules deactivated while the process was down are left untouched.
func (s *Scheduler) Start() error {
	schedules, err := s.store.FindActiveSchedules()
	if err != nil {
		return errors.Wrap(err, "loading active schedules")
	}
	for _, schedule := range schedules {
		if err := s.Arm(schedule); err != nil {
			// one bad expression must not keep the rest dark
			s.logger.Errorf("Skipping schedule: ScheduleId=%d, WorkflowId=%d, Error=%v",
				schedule.ID, schedule.WorkflowID, err)
		}
	}
	s.cron.Start()
	s.logger.Infof("Scheduler started with %d active schedules", len(schedules))
	return nil
}

// Arm registers (or replaces) the cron trigger for a schedule's workflow.
func (s *Scheduler) Arm(schedule models.Schedule) error {
	workflowID := schedule.WorkflowID
	scheduleID := schedule.ID
	expr := schedule.NormalizedExpression()

	s.mu.Lock()
	defer s.mu.Unlock()

	if existing, ok := s.entries[workflowID]; ok {
		s.cron.Remove(existing)
		delete(s.entries, workflowID)
	}

	entryID, err := s.cron.AddFunc(expr, func() {
		s.logger.Infof("Schedule fired: ScheduleId=%d, WorkflowId=%d", scheduleID, workflowID)
		s.executor.Execute(workflowID, models.ScheduleTrigger, scheduleID)
	})
	if err != nil {
		return errors.Wrapf(err, "invalid cron expression %q", schedule.CronExpression)
	}
	s.entries[workflowID] = entryID
	s.logger.Infof("Schedule armed: ScheduleId=%d, WorkflowId=%d, Expression=%s", scheduleID, workflowID, expr)
	return nil
}

// Disarm removes the trigger for a workflow, if any. Disarming an unarmed
// workflow is a no-op.
func (s *Scheduler) Disarm(workflowID int64) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if entryID, ok := s.entries[workflowID]; ok {
		s.cron.Remove(entryID)
		delete(s.entries, workflowID)
		s.logger.Infof("Schedule disarmed: WorkflowId=%d", workflowID)
	}
}

// Armed reports whether a trigger is currently registered for the workflow.
func (s *Scheduler) Armed(workflowID int64) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.entries[workflowID]
	return ok
}

// Stop halts dispatching. Runs already handed to the executor keep going.
func (s *Scheduler) Stop() {
	s.cron.Stop()
	s.logger.Infof("Scheduler stopped")
}
