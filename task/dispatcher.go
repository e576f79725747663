package task

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"leadflow/lead"
	"leadflow/mirror"
)

// ErrNotFound signals an unknown task id.
var ErrNotFound = errors.New("task: not found")

// verificationDue is how long the confirmation team has to follow up a new lead.
const verificationDue = 24 * time.Hour

// assigneeConfirmation is the role name verification tasks are routed to.
const assigneeConfirmation = "confirmation"

// Dispatcher creates follow-up tasks for lead lifecycle events and owns task
// completion. Completion is terminal and idempotent.
type Dispatcher struct {
	mu          sync.RWMutex
	tasks       map[string]*Task
	order       []string
	mirror      *mirror.Writer
	idGenerator func() string
	now         func() time.Time
}

// NewDispatcher builds a dispatcher. writer may be nil for in-memory mode.
func NewDispatcher(writer *mirror.Writer) *Dispatcher {
	return &Dispatcher{
		tasks:       make(map[string]*Task),
		mirror:      writer,
		idGenerator: uuid.NewString,
		now:         time.Now,
	}
}

func (d *Dispatcher) WithIDGenerator(gen func() string) *Dispatcher {
	d.idGenerator = gen
	return d
}

func (d *Dispatcher) WithClock(now func() time.Time) *Dispatcher {
	d.now = now
	return d
}

// OnLeadCreated enqueues exactly one verification task for the new lead,
// due 24 hours after creation and assigned to the confirmation role.
func (d *Dispatcher) OnLeadCreated(ctx context.Context, created lead.Lead) (Task, error) {
	if created.ID == "" {
		return Task{}, fmt.Errorf("task: lead id required")
	}

	now := d.now()
	item := &Task{
		ID:           d.idGenerator(),
		Type:         TypeVerification,
		CustomerID:   created.ID,
		CustomerName: created.Name,
		Description:  fmt.Sprintf("Verify and schedule inspection for %s", created.Name),
		DueDate:      now.Add(verificationDue),
		AssignedTo:   assigneeConfirmation,
		CreatedAt:    now,
		Priority:     PriorityHigh,
	}

	d.mu.Lock()
	d.tasks[item.ID] = item
	d.order = append(d.order, item.ID)
	doc := docFromTask(item)
	d.mu.Unlock()

	d.mirror.Insert(mirror.CollectionTasks, item.ID, doc)

	return *item, nil
}

// Complete marks a task done. Re-completing is a no-op that returns the task
// unchanged; completedAt is never restamped.
func (d *Dispatcher) Complete(ctx context.Context, id, actorName string) (Task, error) {
	d.mu.Lock()
	item, ok := d.tasks[id]
	if !ok {
		d.mu.Unlock()
		return Task{}, fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	if item.Completed {
		done := *item
		d.mu.Unlock()
		return done, nil
	}

	completedAt := d.now()
	item.Completed = true
	item.CompletedBy = actorName
	item.CompletedAt = &completedAt

	done := *item
	doc := docFromTask(item)
	d.mu.Unlock()

	d.mirror.Update(mirror.CollectionTasks, id, doc)

	return done, nil
}

// Get returns a task by id.
func (d *Dispatcher) Get(ctx context.Context, id string) (Task, error) {
	d.mu.RLock()
	defer d.mu.RUnlock()

	item, ok := d.tasks[id]
	if !ok {
		return Task{}, fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	return *item, nil
}

// List returns tasks in creation order, optionally only the open ones.
func (d *Dispatcher) List(ctx context.Context, onlyOpen bool) []Task {
	d.mu.RLock()
	defer d.mu.RUnlock()

	out := make([]Task, 0, len(d.order))
	for _, id := range d.order {
		item := d.tasks[id]
		if onlyOpen && item.Completed {
			continue
		}
		out = append(out, *item)
	}
	return out
}

func docFromTask(t *Task) map[string]any {
	doc := map[string]any{
		"id":           t.ID,
		"type":         string(t.Type),
		"customerId":   t.CustomerID,
		"customerName": t.CustomerName,
		"description":  t.Description,
		"dueDate":      t.DueDate.Format(time.RFC3339Nano),
		"completed":    t.Completed,
		"assignedTo":   t.AssignedTo,
		"createdAt":    t.CreatedAt.Format(time.RFC3339Nano),
		"priority":     string(t.Priority),
	}
	if t.CompletedAt != nil {
		doc["completedBy"] = t.CompletedBy
		doc["completedAt"] = t.CompletedAt.Format(time.RFC3339Nano)
	}
	return doc
}
