package domain

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// stubDocuments is a configurable DocumentService for tests
type stubDocuments struct {
	transferRef      string
	transferErr      error
	transferRows     []TransferRow
	transferSource   string
	transferTarget   string
	transferCalls    int
	reconcileRef     string
	reconcileErr     error
	reconcileRows    []ReconciliationRow
	reconcileCalls   int
}

func (s *stubDocuments) CreateTransferDocument(ctx context.Context, rows []TransferRow, sourceWarehouse, targetWarehouse string) (string, error) {
	s.transferCalls++
	s.transferRows = rows
	s.transferSource = sourceWarehouse
	s.transferTarget = targetWarehouse
	return s.transferRef, s.transferErr
}

func (s *stubDocuments) CreateReconciliationDocument(ctx context.Context, rows []ReconciliationRow, warehouse string) (string, error) {
	s.reconcileCalls++
	s.reconcileRows = rows
	return s.reconcileRef, s.reconcileErr
}

// Test fixtures
func createTestItems() []LineItem {
	return []LineItem{
		{ItemCode: "ITEM-001", Qty: 5, SourceBin: "BIN-A1"},
		{ItemCode: "ITEM-002", Qty: 3, SourceBin: "BIN-A2", BatchNo: "BATCH-7"},
	}
}

func TestNewTask(t *testing.T) {
	tests := []struct {
		name            string
		taskType        TaskType
		sourceWarehouse string
		targetWarehouse string
		items           []LineItem
		expectError     error
	}{
		{
			name:            "Valid pick task",
			taskType:        TaskTypePick,
			sourceWarehouse: "WH-MAIN",
			items:           createTestItems(),
		},
		{
			name:            "Valid transfer task",
			taskType:        TaskTypeTransfer,
			sourceWarehouse: "WH-MAIN",
			targetWarehouse: "WH-STAGING",
			items:           createTestItems(),
		},
		{
			name:            "Valid putaway task without source",
			taskType:        TaskTypePutaway,
			targetWarehouse: "WH-MAIN",
			items:           createTestItems(),
		},
		{
			name:     "Task shell without items is allowed",
			taskType: TaskTypeCount,
			items:    nil,
		},
		{
			name:        "Unknown task type rejected",
			taskType:    TaskType("inspect"),
			expectError: ErrInvalidTaskType,
		},
		{
			name:            "Pick without source warehouse rejected",
			taskType:        TaskTypePick,
			targetWarehouse: "WH-STAGING",
			items:           createTestItems(),
			expectError:     ErrSourceRequired,
		},
		{
			name:            "Transfer without target warehouse rejected",
			taskType:        TaskTypeTransfer,
			sourceWarehouse: "WH-MAIN",
			items:           createTestItems(),
			expectError:     ErrTargetRequired,
		},
		{
			name:        "Putaway without target warehouse rejected",
			taskType:    TaskTypePutaway,
			items:       createTestItems(),
			expectError: ErrTargetRequired,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			task, err := NewTask("TASK-001", tt.taskType, tt.sourceWarehouse, tt.targetWarehouse, tt.items)

			if tt.expectError != nil {
				assert.ErrorIs(t, err, tt.expectError)
				assert.Nil(t, task)
				return
			}

			require.NoError(t, err)
			require.NotNil(t, task)
			assert.Equal(t, TaskStatusPending, task.Status)
			assert.Equal(t, 5, task.Priority)
			assert.Equal(t, len(tt.items), task.TotalItems)
			assert.Equal(t, 0, task.CompletedItems)
			for _, item := range task.Items {
				assert.Equal(t, RowStatusPending, item.RowStatus)
			}

			events := task.GetDomainEvents()
			require.Len(t, events, 1)
			created, ok := events[0].(*TaskCreatedEvent)
			require.True(t, ok)
			assert.Equal(t, "TASK-001", created.TaskID)
		})
	}
}

func TestTaskAssign(t *testing.T) {
	t.Run("Assign pending task", func(t *testing.T) {
		task, _ := NewTask("TASK-001", TaskTypePick, "WH-MAIN", "", createTestItems())

		err := task.Assign("operator-1")

		require.NoError(t, err)
		assert.Equal(t, TaskStatusAssigned, task.Status)
		assert.Equal(t, "operator-1", task.AssignedTo)
		assert.NotNil(t, task.AssignedAt)
	})

	t.Run("Assign without user keeps existing assignee", func(t *testing.T) {
		task, _ := NewTask("TASK-001", TaskTypePick, "WH-MAIN", "", createTestItems())
		task.AssignedTo = "operator-1"

		err := task.Assign("")

		require.NoError(t, err)
		assert.Equal(t, "operator-1", task.AssignedTo)
	})

	t.Run("Assign without any user rejected", func(t *testing.T) {
		task, _ := NewTask("TASK-001", TaskTypePick, "WH-MAIN", "", createTestItems())

		err := task.Assign("")

		assert.ErrorIs(t, err, ErrAssigneeRequired)
		assert.Equal(t, TaskStatusPending, task.Status)
	})

	t.Run("Assign non-pending task rejected", func(t *testing.T) {
		task, _ := NewTask("TASK-001", TaskTypePick, "WH-MAIN", "", createTestItems())
		require.NoError(t, task.Assign("operator-1"))

		err := task.Assign("operator-2")

		assert.ErrorIs(t, err, ErrTaskNotPending)
		assert.Equal(t, "operator-1", task.AssignedTo)
	})
}

func TestTaskStart(t *testing.T) {
	t.Run("Start assigned task", func(t *testing.T) {
		task, _ := NewTask("TASK-001", TaskTypePick, "WH-MAIN", "", createTestItems())
		require.NoError(t, task.Assign("operator-1"))

		err := task.Start("")

		require.NoError(t, err)
		assert.Equal(t, TaskStatusInProgress, task.Status)
		assert.Equal(t, "operator-1", task.AssignedTo)
		assert.NotNil(t, task.StartedAt)
	})

	t.Run("Start pending task adopts operator", func(t *testing.T) {
		task, _ := NewTask("TASK-001", TaskTypePick, "WH-MAIN", "", createTestItems())

		err := task.Start("operator-2")

		require.NoError(t, err)
		assert.Equal(t, TaskStatusInProgress, task.Status)
		assert.Equal(t, "operator-2", task.AssignedTo)
	})

	t.Run("Start completed task rejected", func(t *testing.T) {
		task, _ := NewTask("TASK-001", TaskTypePick, "WH-MAIN", "", createTestItems())
		require.NoError(t, task.Start("operator-1"))
		_, err := task.Complete(context.Background(), nil, &stubDocuments{transferRef: "TRN-001"})
		require.NoError(t, err)

		assert.ErrorIs(t, task.Start("operator-1"), ErrTaskNotStartable)
	})
}

func TestTaskComplete(t *testing.T) {
	t.Run("Pick completion creates transfer and confirms rows", func(t *testing.T) {
		task, _ := NewTask("TASK-001", TaskTypePick, "WH-MAIN", "", createTestItems())
		task.Items[0].ActualQty = 4 // Short pick
		require.NoError(t, task.Start("operator-1"))
		docs := &stubDocuments{transferRef: "TRN-001"}

		result, err := task.Complete(context.Background(), nil, docs)

		require.NoError(t, err)
		assert.Equal(t, TaskStatusCompleted, result.Status)
		assert.Equal(t, "TRN-001", result.DocumentRef)
		assert.Empty(t, result.Errors)

		assert.Equal(t, TaskStatusCompleted, task.Status)
		assert.Equal(t, "TRN-001", task.StockDocumentRef)
		assert.Equal(t, 2, task.CompletedItems)
		assert.NotNil(t, task.CompletedAt)

		// Confirmed quantities: explicit actual kept, zero defaults to expected
		assert.Equal(t, 4.0, task.Items[0].ActualQty)
		assert.Equal(t, 3.0, task.Items[1].ActualQty)
		for _, item := range task.Items {
			assert.Equal(t, RowStatusCompleted, item.RowStatus)
		}

		// Pick without a target stages stock in place
		assert.Equal(t, 1, docs.transferCalls)
		assert.Equal(t, "WH-MAIN", docs.transferSource)
		assert.Equal(t, "WH-MAIN", docs.transferTarget)
		require.Len(t, docs.transferRows, 2)
		assert.Equal(t, 4.0, docs.transferRows[0].Qty)
		assert.Equal(t, "BATCH-7", docs.transferRows[1].BatchNo)
	})

	t.Run("Frozen stock blocks completion entirely", func(t *testing.T) {
		task, _ := NewTask("TASK-001", TaskTypePick, "WH-MAIN", "", createTestItems())
		require.NoError(t, task.Start("operator-1"))
		docs := &stubDocuments{transferRef: "TRN-001"}
		freezes := []StockFreeze{{ItemCode: "ITEM-002", Warehouse: "WH-MAIN"}}

		result, err := task.Complete(context.Background(), freezes, docs)

		require.Error(t, err)
		assert.Contains(t, err.Error(), "ITEM-002")
		assert.Contains(t, err.Error(), "frozen")
		assert.Nil(t, result)

		// Nothing moved: no rows confirmed, no document attempted
		assert.Equal(t, TaskStatusInProgress, task.Status)
		assert.Equal(t, 0, task.CompletedItems)
		for _, item := range task.Items {
			assert.Equal(t, RowStatusPending, item.RowStatus)
		}
		assert.Zero(t, docs.transferCalls)
	})

	t.Run("Freeze scoped to another warehouse does not block", func(t *testing.T) {
		task, _ := NewTask("TASK-001", TaskTypePick, "WH-MAIN", "", createTestItems())
		require.NoError(t, task.Start("operator-1"))
		freezes := []StockFreeze{{ItemCode: "ITEM-001", Warehouse: "WH-OTHER"}}

		result, err := task.Complete(context.Background(), freezes, &stubDocuments{transferRef: "TRN-001"})

		require.NoError(t, err)
		assert.Equal(t, TaskStatusCompleted, result.Status)
	})

	t.Run("Document failure degrades but still completes", func(t *testing.T) {
		task, _ := NewTask("TASK-001", TaskTypeTransfer, "WH-MAIN", "WH-STAGING", createTestItems())
		require.NoError(t, task.Start("operator-1"))
		docs := &stubDocuments{transferErr: errors.New("erp unreachable")}

		result, err := task.Complete(context.Background(), nil, docs)

		require.NoError(t, err)
		assert.Equal(t, TaskStatusCompleted, result.Status)
		assert.Empty(t, result.DocumentRef)
		require.Len(t, result.Errors, 1)
		assert.Contains(t, result.Errors[0], "erp unreachable")

		assert.Equal(t, TaskStatusCompleted, task.Status)
		assert.Equal(t, result.Errors, task.ErrorLog)
	})

	t.Run("Count completion reconciles discrepancies only", func(t *testing.T) {
		items := []LineItem{
			{ItemCode: "ITEM-001", Qty: 10, ActualQty: 8},
			{ItemCode: "ITEM-002", Qty: 5}, // Counted as expected
		}
		task, _ := NewTask("TASK-001", TaskTypeCount, "WH-MAIN", "", items)
		require.NoError(t, task.Start("operator-1"))
		docs := &stubDocuments{reconcileRef: "REC-001"}

		result, err := task.Complete(context.Background(), nil, docs)

		require.NoError(t, err)
		assert.Equal(t, "REC-001", result.DocumentRef)
		assert.Equal(t, -2.0, task.Items[0].DifferenceQty)
		assert.Equal(t, 0.0, task.Items[1].DifferenceQty)

		require.Len(t, docs.reconcileRows, 1)
		assert.Equal(t, "ITEM-001", docs.reconcileRows[0].ItemCode)
		assert.Equal(t, 8.0, docs.reconcileRows[0].Qty)
	})

	t.Run("Clean count produces no document", func(t *testing.T) {
		items := []LineItem{{ItemCode: "ITEM-001", Qty: 10, ActualQty: 10}}
		task, _ := NewTask("TASK-001", TaskTypeCount, "WH-MAIN", "", items)
		require.NoError(t, task.Start("operator-1"))
		docs := &stubDocuments{reconcileRef: "REC-001"}

		result, err := task.Complete(context.Background(), nil, docs)

		require.NoError(t, err)
		assert.Empty(t, result.DocumentRef)
		assert.Empty(t, result.Errors)
		assert.Zero(t, docs.reconcileCalls)
	})

	t.Run("Pack completion has no document side effect", func(t *testing.T) {
		task, _ := NewTask("TASK-001", TaskTypePack, "WH-MAIN", "", createTestItems())
		require.NoError(t, task.Start("operator-1"))
		docs := &stubDocuments{transferRef: "TRN-001"}

		result, err := task.Complete(context.Background(), nil, docs)

		require.NoError(t, err)
		assert.Equal(t, TaskStatusCompleted, result.Status)
		assert.Empty(t, result.DocumentRef)
		assert.Zero(t, docs.transferCalls)
		assert.Zero(t, docs.reconcileCalls)
	})

	t.Run("Completion without items rejected", func(t *testing.T) {
		task, _ := NewTask("TASK-001", TaskTypePack, "WH-MAIN", "", nil)
		require.NoError(t, task.Start("operator-1"))
		task.Items = nil

		_, err := task.Complete(context.Background(), nil, &stubDocuments{})

		assert.ErrorIs(t, err, ErrTaskHasNoItems)
	})

	t.Run("Pending task cannot be completed", func(t *testing.T) {
		task, _ := NewTask("TASK-001", TaskTypePick, "WH-MAIN", "", createTestItems())

		_, err := task.Complete(context.Background(), nil, &stubDocuments{})

		assert.ErrorIs(t, err, ErrTaskNotCompletable)
	})

	t.Run("Completed task cannot be completed again", func(t *testing.T) {
		task, _ := NewTask("TASK-001", TaskTypePick, "WH-MAIN", "", createTestItems())
		require.NoError(t, task.Start("operator-1"))
		_, err := task.Complete(context.Background(), nil, &stubDocuments{transferRef: "TRN-001"})
		require.NoError(t, err)

		_, err = task.Complete(context.Background(), nil, &stubDocuments{})
		assert.ErrorIs(t, err, ErrTaskNotCompletable)
	})
}

func TestTaskCancel(t *testing.T) {
	t.Run("Cancel in-progress task", func(t *testing.T) {
		task, _ := NewTask("TASK-001", TaskTypePick, "WH-MAIN", "", createTestItems())
		require.NoError(t, task.Start("operator-1"))

		err := task.Cancel()

		require.NoError(t, err)
		assert.Equal(t, TaskStatusCancelled, task.Status)
	})

	t.Run("Cancel twice is a no-op", func(t *testing.T) {
		task, _ := NewTask("TASK-001", TaskTypePick, "WH-MAIN", "", createTestItems())
		require.NoError(t, task.Cancel())

		err := task.Cancel()

		require.NoError(t, err)
		assert.Equal(t, TaskStatusCancelled, task.Status)
	})

	t.Run("Cancel completed task rejected", func(t *testing.T) {
		task, _ := NewTask("TASK-001", TaskTypePick, "WH-MAIN", "", createTestItems())
		require.NoError(t, task.Start("operator-1"))
		_, err := task.Complete(context.Background(), nil, &stubDocuments{transferRef: "TRN-001"})
		require.NoError(t, err)

		assert.ErrorIs(t, task.Cancel(), ErrTaskCompleted)
		assert.Equal(t, TaskStatusCompleted, task.Status)
	})
}

func TestTaskProgress(t *testing.T) {
	task, _ := NewTask("TASK-001", TaskTypePick, "WH-MAIN", "", createTestItems())
	assert.Equal(t, 0.0, task.GetProgress())

	task.Items[0].RowStatus = RowStatusCompleted
	task.UpdateSummary()
	assert.Equal(t, 50.0, task.GetProgress())

	task.Items[1].RowStatus = RowStatusCompleted
	task.UpdateSummary()
	assert.Equal(t, 100.0, task.GetProgress())

	empty, _ := NewTask("TASK-002", TaskTypeCount, "WH-MAIN", "", nil)
	assert.Equal(t, 0.0, empty.GetProgress())
}

func TestTaskReplaceItems(t *testing.T) {
	task, _ := NewTask("TASK-001", TaskTypePick, "WH-MAIN", "", createTestItems())

	reordered := []LineItem{
		{ItemCode: "ITEM-002", Qty: 3, SourceBin: "BIN-A2", PickSequence: 1, RowStatus: RowStatusPending},
		{ItemCode: "ITEM-001", Qty: 5, SourceBin: "BIN-A1", PickSequence: 2, RowStatus: RowStatusPending},
	}
	task.ReplaceItems(reordered)

	assert.Equal(t, 2, task.TotalItems)
	assert.Equal(t, "ITEM-002", task.Items[0].ItemCode)
	assert.Equal(t, 1, task.Items[0].PickSequence)
}

func TestTaskCompletedEventCarriesOutcome(t *testing.T) {
	task, _ := NewTask("TASK-001", TaskTypeTransfer, "WH-MAIN", "WH-STAGING", createTestItems())
	require.NoError(t, task.Start("operator-1"))
	task.ClearDomainEvents()

	_, err := task.Complete(context.Background(), nil, &stubDocuments{transferErr: errors.New("boom")})
	require.NoError(t, err)

	events := task.GetDomainEvents()
	require.Len(t, events, 1)
	completed, ok := events[0].(*TaskCompletedEvent)
	require.True(t, ok)
	assert.Equal(t, "wms.task.completed", completed.EventType())
	assert.Equal(t, 1, completed.ErrorCount)
	assert.Empty(t, completed.DocumentRef)
}
