package domain

import "time"

// DomainEvent is the interface for all domain events
type DomainEvent interface {
	EventType() string
	OccurredAt() time.Time
}

// TaskCreatedEvent is published when a warehouse task is created
type TaskCreatedEvent struct {
	TaskID    string    `json:"taskId"`
	TaskType  string    `json:"taskType"`
	ItemCount int       `json:"itemCount"`
	CreatedAt time.Time `json:"createdAt"`
}

func (e *TaskCreatedEvent) EventType() string     { return "wms.task.created" }
func (e *TaskCreatedEvent) OccurredAt() time.Time { return e.CreatedAt }

// TaskAssignedEvent is published when a task is assigned to a user
type TaskAssignedEvent struct {
	TaskID     string    `json:"taskId"`
	AssignedTo string    `json:"assignedTo"`
	AssignedAt time.Time `json:"assignedAt"`
}

func (e *TaskAssignedEvent) EventType() string     { return "wms.task.assigned" }
func (e *TaskAssignedEvent) OccurredAt() time.Time { return e.AssignedAt }

// TaskStartedEvent is published when work on a task begins
type TaskStartedEvent struct {
	TaskID    string    `json:"taskId"`
	Operator  string    `json:"operator"`
	StartedAt time.Time `json:"startedAt"`
}

func (e *TaskStartedEvent) EventType() string     { return "wms.task.started" }
func (e *TaskStartedEvent) OccurredAt() time.Time { return e.StartedAt }

// TaskCompletedEvent is published when a task reaches its terminal state
type TaskCompletedEvent struct {
	TaskID         string    `json:"taskId"`
	TaskType       string    `json:"taskType"`
	AssignedTo     string    `json:"assignedTo"`
	TotalItems     int       `json:"totalItems"`
	CompletedItems int       `json:"completedItems"`
	DocumentRef    string    `json:"documentRef,omitempty"`
	ErrorCount     int       `json:"errorCount"`
	CompletedAt    time.Time `json:"completedAt"`
}

func (e *TaskCompletedEvent) EventType() string     { return "wms.task.completed" }
func (e *TaskCompletedEvent) OccurredAt() time.Time { return e.CompletedAt }

// TaskCancelledEvent is published when a task is cancelled
type TaskCancelledEvent struct {
	TaskID      string    `json:"taskId"`
	CancelledAt time.Time `json:"cancelledAt"`
}

func (e *TaskCancelledEvent) EventType() string     { return "wms.task.cancelled" }
func (e *TaskCancelledEvent) OccurredAt() time.Time { return e.CancelledAt }

// RouteAppliedEvent is published when an optimized pick route is persisted
type RouteAppliedEvent struct {
	TaskID    string    `json:"taskId"`
	ItemCount int       `json:"itemCount"`
	AppliedAt time.Time `json:"appliedAt"`
}

func (e *RouteAppliedEvent) EventType() string     { return "wms.task.route-applied" }
func (e *RouteAppliedEvent) OccurredAt() time.Time { return e.AppliedAt }
