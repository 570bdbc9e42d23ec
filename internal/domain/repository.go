package domain

import "context"

// TaskRepository defines the persistence interface for warehouse tasks
type TaskRepository interface {
	// Save persists a task (insert or update)
	Save(ctx context.Context, task *Task) error

	// FindByID retrieves a task by its task ID
	FindByID(ctx context.Context, taskID string) (*Task, error)

	// FindByStatus retrieves tasks with a specific status
	FindByStatus(ctx context.Context, status TaskStatus) ([]*Task, error)

	// FindByType retrieves tasks of a specific type
	FindByType(ctx context.Context, taskType TaskType) ([]*Task, error)

	// FindByAssignee retrieves tasks assigned to a user
	FindByAssignee(ctx context.Context, user string) ([]*Task, error)

	// FindOpen retrieves non-terminal tasks, most urgent first
	FindOpen(ctx context.Context, warehouse string, limit int) ([]*Task, error)
}
