package application

import "time"

// TaskDTO represents a warehouse task in responses
type TaskDTO struct {
	TaskID           string        `json:"taskId"`
	TaskType         string        `json:"taskType"`
	Status           string        `json:"status"`
	SourceWarehouse  string        `json:"sourceWarehouse,omitempty"`
	TargetWarehouse  string        `json:"targetWarehouse,omitempty"`
	AssignedTo       string        `json:"assignedTo,omitempty"`
	Priority         int           `json:"priority"`
	RefDocType       string        `json:"refDocType,omitempty"`
	RefDocID         string        `json:"refDocId,omitempty"`
	Items            []LineItemDTO `json:"items"`
	TotalItems       int           `json:"totalItems"`
	CompletedItems   int           `json:"completedItems"`
	Progress         float64       `json:"progress"`
	StockDocumentRef string        `json:"stockDocumentRef,omitempty"`
	ErrorLog         []string      `json:"errorLog,omitempty"`
	CreatedAt        time.Time     `json:"createdAt"`
	UpdatedAt        time.Time     `json:"updatedAt"`
	AssignedAt       *time.Time    `json:"assignedAt,omitempty"`
	StartedAt        *time.Time    `json:"startedAt,omitempty"`
	CompletedAt      *time.Time    `json:"completedAt,omitempty"`
}

// LineItemDTO represents one item-quantity row of a task
type LineItemDTO struct {
	ItemCode      string  `json:"itemCode"`
	Qty           float64 `json:"qty"`
	ActualQty     float64 `json:"actualQty"`
	UOM           string  `json:"uom,omitempty"`
	SourceBin     string  `json:"sourceBin,omitempty"`
	TargetBin     string  `json:"targetBin,omitempty"`
	BatchNo       string  `json:"batchNo,omitempty"`
	SerialNo      string  `json:"serialNo,omitempty"`
	RowStatus     string  `json:"rowStatus"`
	DifferenceQty float64 `json:"differenceQty"`
	PickSequence  int     `json:"pickSequence"`
	ErrorMessage  string  `json:"errorMessage,omitempty"`
}

// CompletionResultDTO represents the outcome of a completion attempt
type CompletionResultDTO struct {
	TaskID      string   `json:"taskId"`
	Status      string   `json:"status"`
	DocumentRef string   `json:"documentRef,omitempty"`
	Errors      []string `json:"errors,omitempty"`
}

// RouteStopDTO is one stop of an optimized pick route, enriched with the
// positional data of the bin when it resolves. ErrorMessage carries the
// allocation shortfall for stops the allocator could not place.
type RouteStopDTO struct {
	Sequence     int     `json:"sequence"`
	ItemCode     string  `json:"itemCode"`
	Qty          float64 `json:"qty"`
	SourceBin    string  `json:"sourceBin,omitempty"`
	BinCode      string  `json:"binCode,omitempty"`
	ZoneType     string  `json:"zoneType,omitempty"`
	Aisle        string  `json:"aisle,omitempty"`
	Rack         string  `json:"rack,omitempty"`
	Shelf        string  `json:"shelf,omitempty"`
	Level        string  `json:"level,omitempty"`
	ErrorMessage string  `json:"errorMessage,omitempty"`
}

// RouteDTO represents an optimized pick route
type RouteDTO struct {
	TaskID  string         `json:"taskId"`
	Applied bool           `json:"applied"`
	Stops   []RouteStopDTO `json:"stops"`
}
