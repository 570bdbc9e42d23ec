package application

import "github.com/wms-platform/task-service/internal/domain"

// CreateTaskCommand represents the command to create a new warehouse task
type CreateTaskCommand struct {
	TaskID          string
	TaskType        string
	SourceWarehouse string
	TargetWarehouse string
	Priority        int
	RefDocType      string
	RefDocID        string
	Items           []domain.LineItem
}

// AssignTaskCommand represents the command to assign a task to a user
type AssignTaskCommand struct {
	TaskID     string
	AssignedTo string
}

// StartTaskCommand represents the command to start a task
type StartTaskCommand struct {
	TaskID   string
	Operator string
}

// CompleteTaskCommand represents the command to complete a task
type CompleteTaskCommand struct {
	TaskID string
}

// CancelTaskCommand represents the command to cancel a task
type CancelTaskCommand struct {
	TaskID string
}

// ApplyRouteCommand represents the command to persist an optimized route
type ApplyRouteCommand struct {
	TaskID string
}

// GetTaskQuery represents the query to get a task by ID
type GetTaskQuery struct {
	TaskID string
}

// GetRouteQuery represents the query to preview a task's optimized route
type GetRouteQuery struct {
	TaskID string
}

// ListTasksQuery represents the query to list tasks with optional filters
type ListTasksQuery struct {
	Status     string
	TaskType   string
	AssignedTo string
	Warehouse  string
	Limit      int
}
