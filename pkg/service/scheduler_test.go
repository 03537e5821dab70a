package service_test

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/Kernel180-BE12/Final-4team-icebang-sub000/pkg/models"
	"github.com/Kernel180-BE12/Final-4team-icebang-sub000/pkg/service"
	"github.com/Kernel180-BE12/Final-4team-icebang-sub000/pkg/storage"
)

// countingExecutor records every trigger the scheduler fires.
type countingExecutor struct {
	mu    sync.Mutex
	calls []struct {
		workflowID int64
		trigger    models.TriggerType
		triggerID  int64
	}
}

func (e *countingExecutor) Execute(workflowID int64, trigger models.TriggerType, triggerID int64) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.calls = append(e.calls, struct {
		workflowID int64
		trigger    models.TriggerType
		triggerID  int64
	}{workflowID, trigger, triggerID})
}

func (e *countingExecutor) count() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return len(e.calls)
}

func TestScheduler(t *testing.T) {
	everySecond := "* * * * * *"

	t.Run("ArmRejectsInvalidExpression", func(t *testing.T) {
		sched := service.NewScheduler(storage.NewMockStore(), &countingExecutor{}, logger{})
		err := sched.Arm(models.Schedule{ID: 1, WorkflowID: 1, CronExpression: "not a cron"})
		assert.Error(t, err)
		assert.Contains(t, err.Error(), "invalid cron expression")
		assert.False(t, sched.Armed(1))
	})

	t.Run("ArmAcceptsQuartzPlaceholder", func(t *testing.T) {
		sched := service.NewScheduler(storage.NewMockStore(), &countingExecutor{}, logger{})
		err := sched.Arm(models.Schedule{ID: 1, WorkflowID: 1, CronExpression: "0 0 9 ? * ?"})
		assert.NoError(t, err)
		assert.True(t, sched.Armed(1))
		sched.Stop()
	})

	t.Run("ReArmReplacesExistingTrigger", func(t *testing.T) {
		sched := service.NewScheduler(storage.NewMockStore(), &countingExecutor{}, logger{})
		assert.NoError(t, sched.Arm(models.Schedule{ID: 1, WorkflowID: 1, CronExpression: "0 0 9 * * *"}))
		assert.NoError(t, sched.Arm(models.Schedule{ID: 2, WorkflowID: 1, CronExpression: "0 30 9 * * *"}))
		assert.True(t, sched.Armed(1))
		sched.Stop()
	})

	t.Run("DisarmRemovesTrigger", func(t *testing.T) {
		sched := service.NewScheduler(storage.NewMockStore(), &countingExecutor{}, logger{})
		assert.NoError(t, sched.Arm(models.Schedule{ID: 1, WorkflowID: 1, CronExpression: "0 0 9 * * *"}))
		sched.Disarm(1)
		assert.False(t, sched.Armed(1))
		// disarming again is harmless
		sched.Disarm(1)
		sched.Stop()
	})

	t.Run("StartArmsActiveSchedulesAndFires", func(t *testing.T) {
		store := storage.NewMockStore()
		_, err := store.SaveSchedule(models.Schedule{WorkflowID: 5, CronExpression: everySecond, IsActive: true})
		assert.NoError(t, err)
		_, err = store.SaveSchedule(models.Schedule{WorkflowID: 6, CronExpression: everySecond, IsActive: false})
		assert.NoError(t, err)

		executor := &countingExecutor{}
		sched := service.NewScheduler(store, executor, logger{})
		assert.NoError(t, sched.Start())
		defer sched.Stop()

		assert.True(t, sched.Armed(5))
		assert.False(t, sched.Armed(6))

		assert.Eventually(t, func() bool { return executor.count() >= 1 }, 3*time.Second, 50*time.Millisecond)

		executor.mu.Lock()
		defer executor.mu.Unlock()
		first := executor.calls[0]
		assert.Equal(t, int64(5), first.workflowID)
		assert.Equal(t, models.ScheduleTrigger, first.trigger)
	})

	t.Run("StartSkipsBrokenScheduleKeepsRest", func(t *testing.T) {
		store := storage.NewMockStore()
		_, err := store.SaveSchedule(models.Schedule{WorkflowID: 1, CronExpression: "broken", IsActive: true})
		assert.NoError(t, err)
		_, err = store.SaveSchedule(models.Schedule{WorkflowID: 2, CronExpression: "0 0 9 * * *", IsActive: true})
		assert.NoError(t, err)

		sched := service.NewScheduler(store, &countingExecutor{}, logger{})
		assert.NoError(t, sched.Start())
		defer sched.Stop()

		assert.False(t, sched.Armed(1))
		assert.True(t, sched.Armed(2))
	})
}
