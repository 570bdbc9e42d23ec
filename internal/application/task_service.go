package application

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/wms-platform/task-service/internal/domain"
	"github.com/wms-platform/task-service/internal/routing"
	"github.com/wms-platform/task-service/pkg/errors"
	"github.com/wms-platform/task-service/pkg/kafka"
	"github.com/wms-platform/task-service/pkg/logging"
	"github.com/wms-platform/task-service/pkg/metrics"
)

const eventSource = "wms-task-service"

// TaskApplicationService handles warehouse task use cases
type TaskApplicationService struct {
	repo      domain.TaskRepository
	allocator *routing.Allocator
	router    *routing.Router
	freezes   domain.FreezeRegistry
	documents domain.DocumentService
	catalog   domain.BinCatalog
	producer  *kafka.Producer
	logger    *logging.Logger
	metrics   *metrics.Metrics
}

// NewTaskApplicationService creates a new TaskApplicationService
func NewTaskApplicationService(
	repo domain.TaskRepository,
	allocator *routing.Allocator,
	router *routing.Router,
	freezes domain.FreezeRegistry,
	documents domain.DocumentService,
	catalog domain.BinCatalog,
	producer *kafka.Producer,
	logger *logging.Logger,
	m *metrics.Metrics,
) *TaskApplicationService {
	return &TaskApplicationService{
		repo:      repo,
		allocator: allocator,
		router:    router,
		freezes:   freezes,
		documents: documents,
		catalog:   catalog,
		producer:  producer,
		logger:    logger,
		metrics:   m,
	}
}

// CreateTask creates a new warehouse task. Pick and transfer items without a
// source bin get one suggested by the allocator; allocation shortfalls are
// recorded per item, never failing the creation.
func (s *TaskApplicationService) CreateTask(ctx context.Context, cmd CreateTaskCommand) (*TaskDTO, error) {
	taskID := cmd.TaskID
	if taskID == "" {
		taskID = generateTaskID(cmd.TaskType)
	}

	existing, err := s.repo.FindByID(ctx, taskID)
	if err != nil {
		s.logger.WithError(err).Error("Failed to check for existing task", "taskId", taskID)
		return nil, fmt.Errorf("failed to check for existing task: %w", err)
	}
	if existing != nil {
		return nil, errors.ErrConflict(fmt.Sprintf("task %s already exists", taskID))
	}

	task, err := domain.NewTask(taskID, domain.TaskType(cmd.TaskType), cmd.SourceWarehouse, cmd.TargetWarehouse, cmd.Items)
	if err != nil {
		return nil, errors.ErrValidation(err.Error())
	}
	if cmd.Priority > 0 {
		task.Priority = cmd.Priority
	}
	if cmd.RefDocType != "" || cmd.RefDocID != "" {
		task.Reference = domain.DocumentRef{DocType: cmd.RefDocType, DocID: cmd.RefDocID}
	}

	if err := s.validateBins(ctx, task); err != nil {
		return nil, err
	}

	if task.TaskType == domain.TaskTypePick || task.TaskType == domain.TaskTypeTransfer {
		items, err := s.allocator.AllocateBins(ctx, task.Items, task.SourceWarehouse)
		if err != nil {
			s.logger.WithError(err).Error("Bin allocation failed", "taskId", taskID)
			return nil, fmt.Errorf("bin allocation failed: %w", err)
		}
		task.Items = items
		s.recordAllocationOutcomes(items)
	}

	if err := s.repo.Save(ctx, task); err != nil {
		s.logger.WithError(err).Error("Failed to create task", "taskId", taskID)
		return nil, fmt.Errorf("failed to create task: %w", err)
	}

	s.publishEvents(ctx, task)
	s.metrics.RecordTaskCreated(string(task.TaskType))

	s.logger.Info("Created task", "taskId", taskID, "taskType", task.TaskType, "items", task.TotalItems)
	return ToTaskDTO(task), nil
}

// GetTask retrieves a task by ID
func (s *TaskApplicationService) GetTask(ctx context.Context, query GetTaskQuery) (*TaskDTO, error) {
	task, err := s.findTask(ctx, query.TaskID)
	if err != nil {
		return nil, err
	}
	return ToTaskDTO(task), nil
}

// ListTasks retrieves tasks with optional filters. Without a filter the open
// (non-terminal) tasks are returned, most urgent first.
func (s *TaskApplicationService) ListTasks(ctx context.Context, query ListTasksQuery) ([]TaskDTO, error) {
	var tasks []*domain.Task
	var err error

	switch {
	case query.Status != "":
		tasks, err = s.repo.FindByStatus(ctx, domain.TaskStatus(query.Status))
	case query.TaskType != "":
		tasks, err = s.repo.FindByType(ctx, domain.TaskType(query.TaskType))
	case query.AssignedTo != "":
		tasks, err = s.repo.FindByAssignee(ctx, query.AssignedTo)
	default:
		limit := query.Limit
		if limit <= 0 {
			limit = 50 // Default limit
		}
		tasks, err = s.repo.FindOpen(ctx, query.Warehouse, limit)
	}

	if err != nil {
		s.logger.WithError(err).Error("Failed to list tasks", "status", query.Status, "taskType", query.TaskType)
		return nil, fmt.Errorf("failed to list tasks: %w", err)
	}

	if query.Limit > 0 && len(tasks) > query.Limit {
		tasks = tasks[:query.Limit]
	}

	return ToTaskDTOs(tasks), nil
}

// AssignTask assigns a task to a user
func (s *TaskApplicationService) AssignTask(ctx context.Context, cmd AssignTaskCommand) (*TaskDTO, error) {
	task, err := s.findTask(ctx, cmd.TaskID)
	if err != nil {
		return nil, err
	}

	if err := task.Assign(cmd.AssignedTo); err != nil {
		return nil, errors.ErrValidation(err.Error())
	}

	if err := s.saveAndPublish(ctx, task); err != nil {
		return nil, err
	}

	s.metrics.RecordTaskTransition(string(task.TaskType), "assigned")
	s.logger.Info("Assigned task", "taskId", cmd.TaskID, "assignedTo", task.AssignedTo)
	return ToTaskDTO(task), nil
}

// StartTask starts work on a task
func (s *TaskApplicationService) StartTask(ctx context.Context, cmd StartTaskCommand) (*TaskDTO, error) {
	task, err := s.findTask(ctx, cmd.TaskID)
	if err != nil {
		return nil, err
	}

	if err := task.Start(cmd.Operator); err != nil {
		return nil, errors.ErrValidation(err.Error())
	}

	if err := s.saveAndPublish(ctx, task); err != nil {
		return nil, err
	}

	s.metrics.RecordTaskTransition(string(task.TaskType), "started")
	s.logger.Info("Started task", "taskId", cmd.TaskID, "operator", task.AssignedTo)
	return ToTaskDTO(task), nil
}

// CompleteTask completes a task against the current freeze snapshot. The
// task becomes completed even when the stock document fails; those errors
// come back in the result for follow-up.
func (s *TaskApplicationService) CompleteTask(ctx context.Context, cmd CompleteTaskCommand) (*CompletionResultDTO, error) {
	task, err := s.findTask(ctx, cmd.TaskID)
	if err != nil {
		return nil, err
	}

	freezes, err := s.freezes.ListActiveFreezes(ctx)
	if err != nil {
		s.logger.WithError(err).Error("Failed to load stock freezes", "taskId", cmd.TaskID)
		return nil, fmt.Errorf("failed to load stock freezes: %w", err)
	}

	result, err := task.Complete(ctx, freezes, s.documents)
	if err != nil {
		return nil, errors.ErrValidation(err.Error())
	}

	if err := s.saveAndPublish(ctx, task); err != nil {
		return nil, err
	}

	s.metrics.RecordTaskTransition(string(task.TaskType), "completed")
	if len(result.Errors) > 0 {
		s.metrics.RecordTaskCompletionErrors(string(task.TaskType))
		s.logger.Warn("Completed task with errors", "taskId", cmd.TaskID, "errors", strings.Join(result.Errors, "; "))
	} else {
		s.logger.Info("Completed task", "taskId", cmd.TaskID, "documentRef", result.DocumentRef)
	}

	return ToCompletionResultDTO(task.TaskID, result), nil
}

// CancelTask cancels a task
func (s *TaskApplicationService) CancelTask(ctx context.Context, cmd CancelTaskCommand) (*TaskDTO, error) {
	task, err := s.findTask(ctx, cmd.TaskID)
	if err != nil {
		return nil, err
	}

	if err := task.Cancel(); err != nil {
		return nil, errors.ErrValidation(err.Error())
	}

	if err := s.saveAndPublish(ctx, task); err != nil {
		return nil, err
	}

	s.metrics.RecordTaskTransition(string(task.TaskType), "cancelled")
	s.logger.Info("Cancelled task", "taskId", cmd.TaskID)
	return ToTaskDTO(task), nil
}

// PreviewRoute computes the optimized pick route without persisting it.
// Items still missing a source bin get one proposed by the allocator; its
// shortfalls show up as per-stop error messages, all on a copy of the items
// so the stored task stays untouched.
func (s *TaskApplicationService) PreviewRoute(ctx context.Context, query GetRouteQuery) (*RouteDTO, error) {
	task, err := s.findTask(ctx, query.TaskID)
	if err != nil {
		return nil, err
	}
	if err := routableCheck(task); err != nil {
		return nil, err
	}

	// Allocate and sort a copy so a preview never mutates the stored order
	items := make([]domain.LineItem, len(task.Items))
	copy(items, task.Items)

	items, err = s.allocator.AllocateBins(ctx, items, task.SourceWarehouse)
	if err != nil {
		s.logger.WithError(err).Error("Bin allocation failed", "taskId", query.TaskID)
		return nil, fmt.Errorf("bin allocation failed: %w", err)
	}

	sorted, err := s.router.Sort(ctx, items)
	if err != nil {
		s.logger.WithError(err).Error("Route optimization failed", "taskId", query.TaskID)
		return nil, fmt.Errorf("route optimization failed: %w", err)
	}

	s.metrics.RecordRouteOptimized("preview")
	return s.buildRouteDTO(ctx, task.TaskID, sorted, false), nil
}

// ApplyRoute allocates bins for items still missing one, computes the
// optimized pick route and persists the reordered items on the task
func (s *TaskApplicationService) ApplyRoute(ctx context.Context, cmd ApplyRouteCommand) (*RouteDTO, error) {
	task, err := s.findTask(ctx, cmd.TaskID)
	if err != nil {
		return nil, err
	}
	if err := routableCheck(task); err != nil {
		return nil, err
	}

	items, err := s.allocator.AllocateBins(ctx, task.Items, task.SourceWarehouse)
	if err != nil {
		s.logger.WithError(err).Error("Bin allocation failed", "taskId", cmd.TaskID)
		return nil, fmt.Errorf("bin allocation failed: %w", err)
	}

	sorted, err := s.router.Sort(ctx, items)
	if err != nil {
		s.logger.WithError(err).Error("Route optimization failed", "taskId", cmd.TaskID)
		return nil, fmt.Errorf("route optimization failed: %w", err)
	}

	task.ReplaceItems(sorted)
	task.AddDomainEvent(&domain.RouteAppliedEvent{
		TaskID:    task.TaskID,
		ItemCount: len(sorted),
		AppliedAt: task.UpdatedAt,
	})

	if err := s.saveAndPublish(ctx, task); err != nil {
		return nil, err
	}

	s.metrics.RecordRouteOptimized("apply")
	s.logger.Info("Applied optimized route", "taskId", cmd.TaskID, "stops", len(sorted))
	return s.buildRouteDTO(ctx, task.TaskID, sorted, true), nil
}

// routableCheck restricts route operations to live pick tasks
func routableCheck(task *domain.Task) error {
	if task.TaskType != domain.TaskTypePick {
		return errors.ErrValidation("route optimization applies to pick tasks only")
	}
	if task.IsTerminal() {
		return errors.ErrConflict(fmt.Sprintf("task %s is %s", task.TaskID, task.Status))
	}
	return nil
}

func (s *TaskApplicationService) buildRouteDTO(ctx context.Context, taskID string, items []domain.LineItem, applied bool) *RouteDTO {
	stops := make([]RouteStopDTO, 0, len(items))
	locations := make(map[string]*domain.BinLocation)

	for _, item := range items {
		stop := RouteStopDTO{
			Sequence:     item.PickSequence,
			ItemCode:     item.ItemCode,
			Qty:          item.Qty,
			SourceBin:    item.SourceBin,
			ErrorMessage: item.ErrorMessage,
		}

		if item.SourceBin != "" {
			loc, seen := locations[item.SourceBin]
			if !seen {
				// Location enrichment is best effort; a stop without
				// coordinates is still a valid stop.
				loc, _ = s.catalog.GetBinLocation(ctx, item.SourceBin)
				locations[item.SourceBin] = loc
			}
			if loc != nil {
				stop.BinCode = loc.BinCode
				stop.ZoneType = string(loc.ZoneType)
				stop.Aisle = loc.Aisle
				stop.Rack = loc.Rack
				stop.Shelf = loc.Shelf
				stop.Level = loc.Level
			}
		}

		stops = append(stops, stop)
	}

	return &RouteDTO{TaskID: taskID, Applied: applied, Stops: stops}
}

// validateBins rejects items whose bins belong to a different warehouse than
// the task. Unknown bins pass; the catalog is an external system and the row
// may reference a bin created after this check.
func (s *TaskApplicationService) validateBins(ctx context.Context, task *domain.Task) error {
	check := func(binID, warehouse string) error {
		if binID == "" || warehouse == "" {
			return nil
		}
		bin, err := s.catalog.GetBin(ctx, binID)
		if err != nil {
			return fmt.Errorf("failed to look up bin %s: %w", binID, err)
		}
		if bin != nil && bin.Warehouse != warehouse {
			return errors.ErrValidation(fmt.Sprintf("bin %s belongs to %s, not %s", binID, bin.Warehouse, warehouse))
		}
		return nil
	}

	for _, item := range task.Items {
		if err := check(item.SourceBin, task.SourceWarehouse); err != nil {
			return err
		}
		if err := check(item.TargetBin, task.TargetWarehouse); err != nil {
			return err
		}
	}
	return nil
}

func (s *TaskApplicationService) findTask(ctx context.Context, taskID string) (*domain.Task, error) {
	task, err := s.repo.FindByID(ctx, taskID)
	if err != nil {
		s.logger.WithError(err).Error("Failed to get task", "taskId", taskID)
		return nil, fmt.Errorf("failed to get task: %w", err)
	}
	if task == nil {
		return nil, errors.ErrNotFoundWithID("task", taskID)
	}
	return task, nil
}

func (s *TaskApplicationService) saveAndPublish(ctx context.Context, task *domain.Task) error {
	if err := s.repo.Save(ctx, task); err != nil {
		s.logger.WithError(err).Error("Failed to save task", "taskId", task.TaskID)
		return fmt.Errorf("failed to save task: %w", err)
	}
	s.publishEvents(ctx, task)
	return nil
}

// publishEvents publishes the accumulated domain events. Publishing is best
// effort: the task state is already persisted, so a broker failure is logged
// and the events are dropped rather than failing the request.
func (s *TaskApplicationService) publishEvents(ctx context.Context, task *domain.Task) {
	events := task.GetDomainEvents()
	if len(events) == 0 {
		return
	}
	defer task.ClearDomainEvents()

	if s.producer == nil {
		return
	}

	envelopes := make([]*kafka.EventEnvelope, 0, len(events))
	for _, ev := range events {
		envelopes = append(envelopes, kafka.NewEnvelope(ev.EventType(), eventSource, task.TaskID, ev.OccurredAt(), ev))
	}

	if err := s.producer.PublishBatch(ctx, kafka.Topics.TaskEvents, envelopes); err != nil {
		s.logger.WithError(err).Error("Failed to publish task events", "taskId", task.TaskID, "events", len(envelopes))
	}
}

func (s *TaskApplicationService) recordAllocationOutcomes(items []domain.LineItem) {
	for _, item := range items {
		switch {
		case item.ErrorMessage != "":
			s.metrics.RecordItemAllocated("failed")
		case item.SourceBin != "":
			s.metrics.RecordItemAllocated("allocated")
		default:
			s.metrics.RecordItemAllocated("skipped")
		}
	}
}

func generateTaskID(taskType string) string {
	prefix := "TASK"
	if taskType != "" {
		prefix = strings.ToUpper(taskType)
	}
	return fmt.Sprintf("%s-%s", prefix, uuid.NewString()[:8])
}
