package domain

import "context"

// StockLevel is the warehouse-level quantity snapshot for one item
type StockLevel struct {
	ActualQty    float64 `json:"actualQty"`
	ReservedQty  float64 `json:"reservedQty"`
	AvailableQty float64 `json:"availableQty"`
	ProjectedQty float64 `json:"projectedQty"`
}

// StockLedger reads warehouse-level stock quantities
type StockLedger interface {
	GetAvailableQty(ctx context.Context, itemCode, warehouse string) (*StockLevel, error)
}

// BinCatalog reads the external bin catalog
type BinCatalog interface {
	ListActiveBins(ctx context.Context, warehouse string) ([]Bin, error)
	GetBinLocation(ctx context.Context, binID string) (*BinLocation, error)
	GetBin(ctx context.Context, binID string) (*Bin, error)
}

// FreezeRegistry reads the snapshot of active stock freezes
type FreezeRegistry interface {
	ListActiveFreezes(ctx context.Context) ([]StockFreeze, error)
}

// TransferRow is one line of an outbound transfer document
type TransferRow struct {
	ItemCode string  `json:"itemCode"`
	Qty      float64 `json:"qty"`
	BatchNo  string  `json:"batchNo,omitempty"`
	SerialNo string  `json:"serialNo,omitempty"`
}

// ReconciliationRow is one line of an outbound reconciliation document
type ReconciliationRow struct {
	ItemCode string  `json:"itemCode"`
	Qty      float64 `json:"qty"`
	BatchNo  string  `json:"batchNo,omitempty"`
	SerialNo string  `json:"serialNo,omitempty"`
}

// DocumentService creates the external stock-moving documents a completed
// task produces. Either call may fail; the task transition treats that as a
// degraded-but-final outcome.
type DocumentService interface {
	CreateTransferDocument(ctx context.Context, rows []TransferRow, sourceWarehouse, targetWarehouse string) (string, error)
	CreateReconciliationDocument(ctx context.Context, rows []ReconciliationRow, warehouse string) (string, error)
}
