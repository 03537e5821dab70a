package service

import (
	"github.com/Kernel180-BE12/Final-4team-icebang-sub000/pkg/models"
)

// ExecutionContext is the in-memory, run-scoped store of completed task
// results, keyed by task name. It is private to one workflow run, accessed
// only from that run's worker, and discarded when the run ends — it is never
// persisted and is lost on crash.
type ExecutionContext struct {
	results map[string]models.ResultEnvelope
}

func NewExecutionContext() *ExecutionContext {
	return &ExecutionContext{results: make(map[string]models.ResultEnvelope)}
}

// Put publishes a task's result envelope under its task name, making it
// visible to later tasks in the same run.
func (c *ExecutionContext) Put(taskName string, env models.ResultEnvelope) {
	c.results[taskName] = env
}

func (c *ExecutionContext) Get(taskName string) (models.ResultEnvelope, bool) {
	env, ok := c.results[taskName]
	return env, ok
}

// Lookup walks a path into the named task's data payload, e.g.
// Lookup("keyword-search", "keyword") reads data.keyword. Absent entries and
// absent fields report ok=false rather than failing.
func (c *ExecutionContext) Lookup(taskName string, path ...string) (interface{}, bool) {
	env, ok := c.results[taskName]
	if !ok {
		return nil, false
	}
	var cur interface{} = map[string]interface{}(env.Data)
	for _, key := range path {
		m, ok := cur.(map[string]interface{})
		if !ok {
			return nil, false
		}
		cur, ok = m[key]
		if !ok {
			return nil, false
		}
	}
	return cur, true
}

// LookupString is Lookup narrowed to non-empty string values.
func (c *ExecutionContext) LookupString(taskName string, path ...string) (string, bool) {
	v, ok := c.Lookup(taskName, path...)
	if !ok {
		return "", false
	}
	s, ok := v.(string)
	if !ok || s == "" {
		return "", false
	}
	return s, true
}
