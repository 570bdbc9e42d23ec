package domain

import (
	"context"
	"errors"
	"fmt"
)

// completionEffect attempts to produce the external stock document a
// completed task requires and returns its reference. Errors are surfaced to
// the task's error log by the caller, never aborting the transition.
type completionEffect func(ctx context.Context, t *Task, documents DocumentService) (string, error)

// completionEffects dispatches by task type. Pack has no entry: completion
// is a pure status change with no stock document.
var completionEffects = map[TaskType]completionEffect{
	TaskTypePutaway:  createTransferEntry,
	TaskTypeTransfer: createTransferEntry,
	TaskTypePick:     createPickTransferEntry,
	TaskTypeCount:    createReconciliationEntry,
}

// createTransferEntry builds a warehouse-to-warehouse transfer from every
// completed row, moving the actually handled quantity.
func createTransferEntry(ctx context.Context, t *Task, documents DocumentService) (string, error) {
	rows := completedTransferRows(t)
	if len(rows) == 0 {
		return "", errors.New("no completed items to create a transfer document for")
	}

	ref, err := documents.CreateTransferDocument(ctx, rows, t.SourceWarehouse, t.TargetWarehouse)
	if err != nil {
		return "", fmt.Errorf("transfer document creation failed: %v", err)
	}
	return ref, nil
}

// createPickTransferEntry is the pick variant: picked stock is staged in
// place when no explicit target warehouse is set.
func createPickTransferEntry(ctx context.Context, t *Task, documents DocumentService) (string, error) {
	rows := completedTransferRows(t)
	if len(rows) == 0 {
		return "", errors.New("no completed items to create a transfer document for")
	}

	target := firstNonEmpty(t.TargetWarehouse, t.SourceWarehouse)
	ref, err := documents.CreateTransferDocument(ctx, rows, t.SourceWarehouse, target)
	if err != nil {
		return "", fmt.Errorf("transfer document creation failed: %v", err)
	}
	return ref, nil
}

// createReconciliationEntry creates a stock reconciliation for count tasks.
// A clean count with no discrepancies produces no document at all.
func createReconciliationEntry(ctx context.Context, t *Task, documents DocumentService) (string, error) {
	warehouse := firstNonEmpty(t.SourceWarehouse, t.TargetWarehouse)

	rows := make([]ReconciliationRow, 0, len(t.Items))
	for _, row := range t.Items {
		if row.RowStatus != RowStatusCompleted || row.DifferenceQty == 0 {
			continue
		}
		rows = append(rows, ReconciliationRow{
			ItemCode: row.ItemCode,
			Qty:      row.ActualQty,
			BatchNo:  row.BatchNo,
			SerialNo: row.SerialNo,
		})
	}

	if len(rows) == 0 {
		return "", nil
	}

	ref, err := documents.CreateReconciliationDocument(ctx, rows, warehouse)
	if err != nil {
		return "", fmt.Errorf("reconciliation document creation failed: %v", err)
	}
	return ref, nil
}

func completedTransferRows(t *Task) []TransferRow {
	rows := make([]TransferRow, 0, len(t.Items))
	for _, row := range t.Items {
		if row.RowStatus != RowStatusCompleted {
			continue
		}
		qty := row.ActualQty
		if qty == 0 {
			qty = row.Qty
		}
		rows = append(rows, TransferRow{
			ItemCode: row.ItemCode,
			Qty:      qty,
			BatchNo:  row.BatchNo,
			SerialNo: row.SerialNo,
		})
	}
	return rows
}
