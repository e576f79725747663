package task

import "time"

// Type enumerates system-generated task kinds. Verification is the only one
// this engine produces; manual task creation is out of scope.
type Type string

const TypeVerification Type = "verification"

// Priority tags the urgency of a task.
type Priority string

const PriorityHigh Priority = "high"

// Task is a follow-up item spawned by a lead lifecycle event.
// CustomerID is a non-owning lookup key into the lead store; CustomerName is
// an intentional snapshot taken at creation and never kept in sync.
type Task struct {
	ID           string
	Type         Type
	CustomerID   string
	CustomerName string
	Description  string
	DueDate      time.Time
	Completed    bool
	AssignedTo   string
	CreatedAt    time.Time
	CompletedBy  string
	CompletedAt  *time.Time
	Priority     Priority
}
