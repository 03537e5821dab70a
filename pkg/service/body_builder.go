package service

import (
	"github.com/Kernel180-BE12/Final-4team-icebang-sub000/pkg/models"
)

// TaskBodyBuilder assembles a task's request body from upstream results in
// the execution context. Missing upstream entries or fields are tolerated —
// the output field is omitted — unless a builder treats a field as
// mandatory, in which case it returns an error and the task fails before
// dispatch.
type TaskBodyBuilder interface {
	Build(task models.Task, ctx *ExecutionContext) (models.JSONMap, error)
}

// BuilderFunc adapts a function to the TaskBodyBuilder interface.
type BuilderFunc func(task models.Task, ctx *ExecutionContext) (models.JSONMap, error)

func (f BuilderFunc) Build(task models.Task, ctx *ExecutionContext) (models.JSONMap, error) {
	return f(task, ctx)
}

// BodyBuilderRegistry binds task names to builders. The wiring is by task
// name string, matching how tasks publish results into the execution
// context; the bindings table keeps that coupling in one inspectable place.
type BodyBuilderRegistry struct {
	bindings map[string]TaskBodyBuilder
}

func NewBodyBuilderRegistry(bindings map[string]TaskBodyBuilder) *BodyBuilderRegistry {
	if bindings == nil {
		bindings = make(map[string]TaskBodyBuilder)
	}
	return &BodyBuilderRegistry{bindings: bindings}
}

func (r *BodyBuilderRegistry) Bind(taskName string, builder TaskBodyBuilder) {
	r.bindings[taskName] = builder
}

func (r *BodyBuilderRegistry) Supports(taskName string) bool {
	_, ok := r.bindings[taskName]
	return ok
}

// BuildFor returns the bound builder's body, or an empty body for tasks with
// no binding.
func (r *BodyBuilderRegistry) BuildFor(task models.Task, ctx *ExecutionContext) (models.JSONMap, error) {
	builder, ok := r.bindings[task.Name]
	if !ok {
		return models.JSONMap{}, nil
	}
	return builder.Build(task, ctx)
}
