package storage

import (
	"sort"
	"sync"

	"github.com/Kernel180-BE12/Final-4team-icebang-sub000/pkg/models"
)

// MockStore implements Store with in-memory storage. It is safe for
// concurrent use so tests can exercise overlapping runs.
type MockStore struct {
	mu sync.Mutex

	Workflows map[int64]models.Workflow
	Jobs      map[int64]models.Job
	Tasks     map[int64][]models.Task // keyed by job id
	JobOrder  map[int64][]int64       // workflow id -> ordered job ids

	WorkflowRuns map[int64]models.WorkflowRun
	JobRuns      map[int64]models.JobRun
	TaskRuns     map[int64]models.TaskRun

	Schedules map[int64]models.Schedule

	nextID int64
}

func NewMockStore() *MockStore {
	return &MockStore{
		Workflows:    make(map[int64]models.Workflow),
		Jobs:         make(map[int64]models.Job),
		Tasks:        make(map[int64][]models.Task),
		JobOrder:     make(map[int64][]int64),
		WorkflowRuns: make(map[int64]models.WorkflowRun),
		JobRuns:      make(map[int64]models.JobRun),
		TaskRuns:     make(map[int64]models.TaskRun),
		Schedules:    make(map[int64]models.Schedule),
	}
}

// AddWorkflow registers a definition with its ordered jobs and tasks.
func (m *MockStore) AddWorkflow(wf models.Workflow, jobs []models.Job, tasks map[int64][]models.Task) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Workflows[wf.ID] = wf
	for _, j := range jobs {
		m.Jobs[j.ID] = j
		m.JobOrder[wf.ID] = append(m.JobOrder[wf.ID], j.ID)
	}
	for jobID, ts := range tasks {
		m.Tasks[jobID] = ts
	}
}

func (m *MockStore) GetWorkflow(id int64) (models.Workflow, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	wf, ok := m.Workflows[id]
	if !ok {
		return models.Workflow{}, ErrNotFound
	}
	return wf, nil
}

func (m *MockStore) FindJobIDsByWorkflowID(workflowID int64) ([]int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	ids := make([]int64, len(m.JobOrder[workflowID]))
	copy(ids, m.JobOrder[workflowID])
	return ids, nil
}

func (m *MockStore) FindJobByID(id int64) (models.Job, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	job, ok := m.Jobs[id]
	if !ok {
		return models.Job{}, ErrNotFound
	}
	return job, nil
}

func (m *MockStore) FindTasksByJobID(jobID int64) ([]models.Task, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	tasks := make([]models.Task, len(m.Tasks[jobID]))
	copy(tasks, m.Tasks[jobID])
	sort.SliceStable(tasks, func(i, j int) bool {
		if tasks[i].ExecutionOrder != tasks[j].ExecutionOrder {
			return tasks[i].ExecutionOrder < tasks[j].ExecutionOrder
		}
		return tasks[i].ID < tasks[j].ID
	})
	return tasks, nil
}

func (m *MockStore) CreateWorkflowRun(run models.WorkflowRun) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.nextID++
	run.ID = m.nextID
	m.WorkflowRuns[run.ID] = run
	return run.ID, nil
}

func (m *MockStore) UpdateWorkflowRun(run models.WorkflowRun) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.WorkflowRuns[run.ID]; !ok {
		return ErrNotFound
	}
	m.WorkflowRuns[run.ID] = run
	return nil
}

func (m *MockStore) ListWorkflowRuns(workflowID int64) ([]models.WorkflowRun, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var runs []models.WorkflowRun
	for _, r := range m.WorkflowRuns {
		if r.WorkflowID == workflowID {
			runs = append(runs, r)
		}
	}
	sort.Slice(runs, func(i, j int) bool { return runs[i].ID < runs[j].ID })
	return runs, nil
}

func (m *MockStore) GetWorkflowRun(id int64) (models.WorkflowRun, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	run, ok := m.WorkflowRuns[id]
	if !ok {
		return models.WorkflowRun{}, ErrNotFound
	}
	return run, nil
}

func (m *MockStore) CreateJobRun(run models.JobRun) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.nextID++
	run.ID = m.nextID
	m.JobRuns[run.ID] = run
	return run.ID, nil
}

func (m *MockStore) UpdateJobRun(run models.JobRun) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.JobRuns[run.ID]; !ok {
		return ErrNotFound
	}
	m.JobRuns[run.ID] = run
	return nil
}

func (m *MockStore) ListJobRuns(workflowRunID int64) ([]models.JobRun, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var runs []models.JobRun
	for _, r := range m.JobRuns {
		if r.WorkflowRunID == workflowRunID {
			runs = append(runs, r)
		}
	}
	sort.Slice(runs, func(i, j int) bool { return runs[i].ExecutionOrder < runs[j].ExecutionOrder })
	return runs, nil
}

func (m *MockStore) CreateTaskRun(run models.TaskRun) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.nextID++
	run.ID = m.nextID
	m.TaskRuns[run.ID] = run
	return run.ID, nil
}

func (m *MockStore) UpdateTaskRun(run models.TaskRun) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.TaskRuns[run.ID]; !ok {
		return ErrNotFound
	}
	m.TaskRuns[run.ID] = run
	return nil
}

func (m *MockStore) ListTaskRuns(jobRunID int64) ([]models.TaskRun, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var runs []models.TaskRun
	for _, r := range m.TaskRuns {
		if r.JobRunID == jobRunID {
			runs = append(runs, r)
		}
	}
	sort.Slice(runs, func(i, j int) bool { return runs[i].ExecutionOrder < runs[j].ExecutionOrder })
	return runs, nil
}

func (m *MockStore) FindActiveSchedules() ([]models.Schedule, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []models.Schedule
	for _, s := range m.Schedules {
		if s.IsActive {
			out = append(out, s)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (m *MockStore) GetSchedule(id int64) (models.Schedule, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.Schedules[id]
	if !ok {
		return models.Schedule{}, ErrNotFound
	}
	return s, nil
}

func (m *MockStore) SaveSchedule(s models.Schedule) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if s.ID == 0 {
		m.nextID++
		s.ID = m.nextID
	}
	m.Schedules[s.ID] = s
	return s.ID, nil
}

func (m *MockStore) UpdateScheduleActive(id int64, active bool) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.Schedules[id]
	if !ok {
		return ErrNotFound
	}
	s.IsActive = active
	m.Schedules[id] = s
	return nil
}

func (m *MockStore) Close() error {
	return nil
}
