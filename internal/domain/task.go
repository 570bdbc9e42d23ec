package domain

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Errors
var (
	ErrTaskNotPending      = errors.New("only pending tasks can be assigned")
	ErrTaskNotStartable    = errors.New("only pending or assigned tasks can be started")
	ErrTaskNotCompletable  = errors.New("only assigned or in-progress tasks can be completed")
	ErrTaskCompleted       = errors.New("task is already completed")
	ErrTaskHasNoItems      = errors.New("task has no items to complete")
	ErrAssigneeRequired    = errors.New("a user is required to assign this task")
	ErrSourceRequired      = errors.New("source warehouse is required")
	ErrTargetRequired      = errors.New("target warehouse is required")
	ErrInvalidTaskType     = errors.New("invalid task type")
)

// TaskType classifies the directed warehouse work a task represents
type TaskType string

const (
	TaskTypePutaway  TaskType = "putaway"
	TaskTypePick     TaskType = "pick"
	TaskTypePack     TaskType = "pack"
	TaskTypeCount    TaskType = "count"
	TaskTypeTransfer TaskType = "transfer"
)

// TaskStatus represents the status of a warehouse task
type TaskStatus string

const (
	TaskStatusPending    TaskStatus = "pending"
	TaskStatusAssigned   TaskStatus = "assigned"
	TaskStatusInProgress TaskStatus = "in_progress"
	TaskStatusCompleted  TaskStatus = "completed"
	TaskStatusCancelled  TaskStatus = "cancelled"
)

// RowStatus tracks a single line item through the task lifecycle
type RowStatus string

const (
	RowStatusPending   RowStatus = "pending"
	RowStatusCompleted RowStatus = "completed"
)

// DocumentRef identifies the external business document a task originates from
type DocumentRef struct {
	DocType string `bson:"docType" json:"docType"`
	DocID   string `bson:"docId" json:"docId"`
}

// Task is the aggregate root for directed warehouse work
type Task struct {
	ID               primitive.ObjectID `bson:"_id,omitempty"`
	TaskID           string             `bson:"taskId"`
	TaskType         TaskType           `bson:"taskType"`
	Status           TaskStatus         `bson:"status"`
	SourceWarehouse  string             `bson:"sourceWarehouse,omitempty"`
	TargetWarehouse  string             `bson:"targetWarehouse,omitempty"`
	AssignedTo       string             `bson:"assignedTo,omitempty"`
	Priority         int                `bson:"priority"`
	Reference        DocumentRef        `bson:"reference,omitempty"`
	Items            []LineItem         `bson:"items"`
	TotalItems       int                `bson:"totalItems"`
	CompletedItems   int                `bson:"completedItems"`
	StockDocumentRef string             `bson:"stockDocumentRef,omitempty"`
	ErrorLog         []string           `bson:"errorLog,omitempty"`
	CreatedAt        time.Time          `bson:"createdAt"`
	UpdatedAt        time.Time          `bson:"updatedAt"`
	AssignedAt       *time.Time         `bson:"assignedAt,omitempty"`
	StartedAt        *time.Time         `bson:"startedAt,omitempty"`
	CompletedAt      *time.Time         `bson:"completedAt,omitempty"`
	DomainEvents     []DomainEvent      `bson:"-"`
}

// LineItem is one item-quantity row of a task
type LineItem struct {
	ItemCode      string    `bson:"itemCode" json:"itemCode"`
	Qty           float64   `bson:"qty" json:"qty"`
	ActualQty     float64   `bson:"actualQty" json:"actualQty"`
	UOM           string    `bson:"uom,omitempty" json:"uom,omitempty"`
	SourceBin     string    `bson:"sourceBin,omitempty" json:"sourceBin,omitempty"`
	TargetBin     string    `bson:"targetBin,omitempty" json:"targetBin,omitempty"`
	BatchNo       string    `bson:"batchNo,omitempty" json:"batchNo,omitempty"`
	SerialNo      string    `bson:"serialNo,omitempty" json:"serialNo,omitempty"`
	RowStatus     RowStatus `bson:"rowStatus" json:"rowStatus"`
	DifferenceQty float64   `bson:"differenceQty" json:"differenceQty"`
	PickSequence  int       `bson:"pickSequence" json:"pickSequence"`
	ErrorMessage  string    `bson:"errorMessage,omitempty" json:"errorMessage,omitempty"`
}

// NewTask creates a new Task aggregate. Items may be empty: orchestrating
// workflows create the shell first and append rows before completion.
func NewTask(taskID string, taskType TaskType, sourceWarehouse, targetWarehouse string, items []LineItem) (*Task, error) {
	if !isValidTaskType(taskType) {
		return nil, ErrInvalidTaskType
	}
	if err := validateWarehouses(taskType, sourceWarehouse, targetWarehouse); err != nil {
		return nil, err
	}

	now := time.Now()
	for i := range items {
		if items[i].RowStatus == "" {
			items[i].RowStatus = RowStatusPending
		}
	}

	task := &Task{
		TaskID:          taskID,
		TaskType:        taskType,
		Status:          TaskStatusPending,
		SourceWarehouse: sourceWarehouse,
		TargetWarehouse: targetWarehouse,
		Priority:        5, // Default medium
		Items:           items,
		CreatedAt:       now,
		UpdatedAt:       now,
		DomainEvents:    make([]DomainEvent, 0),
	}

	task.UpdateSummary()
	task.CalculateDifferences()

	task.AddDomainEvent(&TaskCreatedEvent{
		TaskID:    taskID,
		TaskType:  string(taskType),
		ItemCount: len(items),
		CreatedAt: now,
	})

	return task, nil
}

// validateWarehouses enforces the per-type warehouse requirements:
// transfer and pick need a source, putaway and transfer need a target.
func validateWarehouses(taskType TaskType, source, target string) error {
	if (taskType == TaskTypeTransfer || taskType == TaskTypePick) && source == "" {
		return ErrSourceRequired
	}
	if (taskType == TaskTypePutaway || taskType == TaskTypeTransfer) && target == "" {
		return ErrTargetRequired
	}
	return nil
}

// UpdateSummary recalculates the total and completed row counts
func (t *Task) UpdateSummary() {
	t.TotalItems = len(t.Items)
	completed := 0
	for _, row := range t.Items {
		if row.RowStatus == RowStatusCompleted {
			completed++
		}
	}
	t.CompletedItems = completed
}

// CalculateDifferences keeps DifferenceQty current for count tasks.
// Other task types leave the field untouched.
func (t *Task) CalculateDifferences() {
	if t.TaskType != TaskTypeCount {
		return
	}
	for i := range t.Items {
		t.Items[i].DifferenceQty = t.Items[i].ActualQty - t.Items[i].Qty
	}
}

// Assign assigns the task to a user (pending -> assigned). The user may come
// from the argument or from a pre-existing assignment.
func (t *Task) Assign(user string) error {
	if t.Status != TaskStatusPending {
		return ErrTaskNotPending
	}
	if user != "" {
		t.AssignedTo = user
	} else if t.AssignedTo == "" {
		return ErrAssigneeRequired
	}

	now := time.Now()
	t.Status = TaskStatusAssigned
	t.AssignedAt = &now
	t.UpdatedAt = now

	t.AddDomainEvent(&TaskAssignedEvent{
		TaskID:     t.TaskID,
		AssignedTo: t.AssignedTo,
		AssignedAt: now,
	})

	return nil
}

// Start moves the task to in_progress. A pending task may be started
// directly; the acting operator becomes the assignee if none is set.
func (t *Task) Start(operator string) error {
	if t.Status != TaskStatusPending && t.Status != TaskStatusAssigned {
		return ErrTaskNotStartable
	}
	if t.AssignedTo == "" {
		t.AssignedTo = operator
	}

	now := time.Now()
	t.Status = TaskStatusInProgress
	t.StartedAt = &now
	t.UpdatedAt = now

	t.AddDomainEvent(&TaskStartedEvent{
		TaskID:    t.TaskID,
		Operator:  t.AssignedTo,
		StartedAt: now,
	})

	return nil
}

// CompletionResult is returned to the caller after a completion attempt
type CompletionResult struct {
	Status      TaskStatus `json:"status"`
	DocumentRef string     `json:"documentRef,omitempty"`
	Errors      []string   `json:"errors,omitempty"`
}

// Complete finishes the task: all pending rows are confirmed at once, frozen
// stock blocks the whole transition, and the per-type stock document is
// attempted. Document failures are recorded in the error log and do not
// prevent the terminal status: the physical work is done even if the
// bookkeeping needs manual follow-up.
//
// The freeze snapshot and the document service are passed in explicitly so
// the transition stays testable against synthetic collaborators.
func (t *Task) Complete(ctx context.Context, freezes []StockFreeze, documents DocumentService) (*CompletionResult, error) {
	if t.Status != TaskStatusAssigned && t.Status != TaskStatusInProgress {
		return nil, ErrTaskNotCompletable
	}
	if len(t.Items) == 0 {
		return nil, ErrTaskHasNoItems
	}

	// Freeze check first: a frozen row must leave the task untouched.
	// The freeze query dimensions are fixed before row confirmation, so
	// checking up front is observably identical to checking mid-transition.
	for _, row := range t.Items {
		query := FreezeQuery{
			ItemCode:  row.ItemCode,
			Warehouse: firstNonEmpty(t.SourceWarehouse, t.TargetWarehouse),
			Bin:       firstNonEmpty(row.SourceBin, row.TargetBin),
			BatchNo:   row.BatchNo,
		}
		if IsFrozen(freezes, query) {
			return nil, fmt.Errorf("cannot complete task: item %s is on frozen stock, release the stock freeze before proceeding", row.ItemCode)
		}
	}

	// Confirm all pending rows at once (operator confirms the whole task)
	for i := range t.Items {
		if t.Items[i].RowStatus != RowStatusPending {
			continue
		}
		if t.Items[i].ActualQty == 0 {
			t.Items[i].ActualQty = t.Items[i].Qty // Default: actual = expected
		}
		t.Items[i].RowStatus = RowStatusCompleted
		if t.TaskType == TaskTypeCount {
			t.Items[i].DifferenceQty = t.Items[i].ActualQty - t.Items[i].Qty
		}
	}

	t.UpdateSummary()

	errorLog := make([]string, 0)
	docRef := ""
	if effect, ok := completionEffects[t.TaskType]; ok && effect != nil {
		ref, err := effect(ctx, t, documents)
		if err != nil {
			errorLog = append(errorLog, err.Error())
		} else {
			docRef = ref
		}
	}

	now := time.Now()
	t.Status = TaskStatusCompleted
	t.CompletedAt = &now
	t.UpdatedAt = now
	t.StockDocumentRef = docRef
	t.ErrorLog = errorLog

	t.AddDomainEvent(&TaskCompletedEvent{
		TaskID:         t.TaskID,
		TaskType:       string(t.TaskType),
		AssignedTo:     t.AssignedTo,
		TotalItems:     t.TotalItems,
		CompletedItems: t.CompletedItems,
		DocumentRef:    docRef,
		ErrorCount:     len(errorLog),
		CompletedAt:    now,
	})

	return &CompletionResult{
		Status:      t.Status,
		DocumentRef: docRef,
		Errors:      errorLog,
	}, nil
}

// Cancel cancels the task. Any status except completed may be cancelled;
// cancelling an already-cancelled task is a no-op rather than an error.
func (t *Task) Cancel() error {
	if t.Status == TaskStatusCompleted {
		return ErrTaskCompleted
	}

	now := time.Now()
	t.Status = TaskStatusCancelled
	t.UpdatedAt = now

	t.AddDomainEvent(&TaskCancelledEvent{
		TaskID:      t.TaskID,
		CancelledAt: now,
	})

	return nil
}

// ReplaceItems rewrites the line items, used when an optimized route is
// applied. Summary and count differences are kept consistent.
func (t *Task) ReplaceItems(items []LineItem) {
	t.Items = items
	t.UpdateSummary()
	t.CalculateDifferences()
	t.UpdatedAt = time.Now()
}

// GetProgress returns the completion percentage by row count
func (t *Task) GetProgress() float64 {
	if t.TotalItems == 0 {
		return 0
	}
	return float64(t.CompletedItems) / float64(t.TotalItems) * 100
}

// IsTerminal reports whether the task reached a final status
func (t *Task) IsTerminal() bool {
	return t.Status == TaskStatusCompleted || t.Status == TaskStatusCancelled
}

// AddDomainEvent adds a domain event
func (t *Task) AddDomainEvent(event DomainEvent) {
	t.DomainEvents = append(t.DomainEvents, event)
}

// ClearDomainEvents clears all domain events
func (t *Task) ClearDomainEvents() {
	t.DomainEvents = make([]DomainEvent, 0)
}

// GetDomainEvents returns all domain events
func (t *Task) GetDomainEvents() []DomainEvent {
	return t.DomainEvents
}

func isValidTaskType(tt TaskType) bool {
	switch tt {
	case TaskTypePutaway, TaskTypePick, TaskTypePack, TaskTypeCount, TaskTypeTransfer:
		return true
	default:
		return false
	}
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
