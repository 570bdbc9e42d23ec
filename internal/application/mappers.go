package application

import "github.com/wms-platform/task-service/internal/domain"

// ToTaskDTO converts a domain Task to TaskDTO
func ToTaskDTO(task *domain.Task) *TaskDTO {
	if task == nil {
		return nil
	}

	items := make([]LineItemDTO, 0, len(task.Items))
	for _, item := range task.Items {
		items = append(items, ToLineItemDTO(item))
	}

	return &TaskDTO{
		TaskID:           task.TaskID,
		TaskType:         string(task.TaskType),
		Status:           string(task.Status),
		SourceWarehouse:  task.SourceWarehouse,
		TargetWarehouse:  task.TargetWarehouse,
		AssignedTo:       task.AssignedTo,
		Priority:         task.Priority,
		RefDocType:       task.Reference.DocType,
		RefDocID:         task.Reference.DocID,
		Items:            items,
		TotalItems:       task.TotalItems,
		CompletedItems:   task.CompletedItems,
		Progress:         task.GetProgress(),
		StockDocumentRef: task.StockDocumentRef,
		ErrorLog:         task.ErrorLog,
		CreatedAt:        task.CreatedAt,
		UpdatedAt:        task.UpdatedAt,
		AssignedAt:       task.AssignedAt,
		StartedAt:        task.StartedAt,
		CompletedAt:      task.CompletedAt,
	}
}

// ToLineItemDTO converts a domain LineItem to LineItemDTO
func ToLineItemDTO(item domain.LineItem) LineItemDTO {
	return LineItemDTO{
		ItemCode:      item.ItemCode,
		Qty:           item.Qty,
		ActualQty:     item.ActualQty,
		UOM:           item.UOM,
		SourceBin:     item.SourceBin,
		TargetBin:     item.TargetBin,
		BatchNo:       item.BatchNo,
		SerialNo:      item.SerialNo,
		RowStatus:     string(item.RowStatus),
		DifferenceQty: item.DifferenceQty,
		PickSequence:  item.PickSequence,
		ErrorMessage:  item.ErrorMessage,
	}
}

// ToTaskDTOs converts a slice of domain Tasks to TaskDTOs
func ToTaskDTOs(tasks []*domain.Task) []TaskDTO {
	dtos := make([]TaskDTO, 0, len(tasks))
	for _, task := range tasks {
		if dto := ToTaskDTO(task); dto != nil {
			dtos = append(dtos, *dto)
		}
	}
	return dtos
}

// ToCompletionResultDTO converts a domain CompletionResult to its DTO
func ToCompletionResultDTO(taskID string, result *domain.CompletionResult) *CompletionResultDTO {
	if result == nil {
		return nil
	}
	return &CompletionResultDTO{
		TaskID:      taskID,
		Status:      string(result.Status),
		DocumentRef: result.DocumentRef,
		Errors:      result.Errors,
	}
}
