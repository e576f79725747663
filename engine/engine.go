// Package engine composes the domain services into the lead lifecycle:
// creating a lead always spawns its verification task.
package engine

import (
	"context"
	"fmt"

	"leadflow/lead"
	"leadflow/task"
)

// Engine couples the lead store with the task dispatcher.
type Engine struct {
	Leads *lead.Store
	Tasks *task.Dispatcher
}

func New(leads *lead.Store, tasks *task.Dispatcher) *Engine {
	return &Engine{Leads: leads, Tasks: tasks}
}

// CreateLead records a new lead and dispatches its verification task. The
// lead is kept even if dispatch fails, so the error is reported alongside
// the created lead.
func (e *Engine) CreateLead(ctx context.Context, form lead.FormData, createdBy string) (lead.Lead, task.Task, error) {
	created, err := e.Leads.Create(ctx, form, createdBy)
	if err != nil {
		return lead.Lead{}, task.Task{}, err
	}
	verification, err := e.Tasks.OnLeadCreated(ctx, created)
	if err != nil {
		return created, task.Task{}, fmt.Errorf("engine: dispatch verification for %s: %w", created.ID, err)
	}
	return created, verification, nil
}
