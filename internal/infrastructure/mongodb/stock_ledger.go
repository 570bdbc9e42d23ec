package mongodb

import (
	"context"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/wms-platform/task-service/internal/domain"
)

// stockRecord is the stored shape of a warehouse-level stock balance.
// ProjectedQty includes inbound quantities and is maintained upstream; it is
// passed through, not derived here.
type stockRecord struct {
	ItemCode     string  `bson:"itemCode"`
	Warehouse    string  `bson:"warehouse"`
	ActualQty    float64 `bson:"actualQty"`
	ReservedQty  float64 `bson:"reservedQty"`
	ProjectedQty float64 `bson:"projectedQty"`
}

// StockLedger is a read model over the stock balances collection maintained
// by the inventory service
type StockLedger struct {
	collection *mongo.Collection
}

// NewStockLedger creates a new StockLedger
func NewStockLedger(db *mongo.Database) *StockLedger {
	ledger := &StockLedger{collection: db.Collection("stock_balances")}
	ledger.ensureIndexes(context.Background())
	return ledger
}

func (l *StockLedger) ensureIndexes(ctx context.Context) {
	indexes := []mongo.IndexModel{
		{Keys: bson.D{{Key: "itemCode", Value: 1}, {Key: "warehouse", Value: 1}}, Options: options.Index().SetUnique(true)},
	}
	l.collection.Indexes().CreateMany(ctx, indexes)
}

// GetAvailableQty returns the warehouse-level stock snapshot for an item.
// An item without a stock record has all-zero quantities rather than an
// error: unknown stock and no stock look the same to the allocator.
func (l *StockLedger) GetAvailableQty(ctx context.Context, itemCode, warehouse string) (*domain.StockLevel, error) {
	var rec stockRecord
	err := l.collection.FindOne(ctx, bson.M{"itemCode": itemCode, "warehouse": warehouse}).Decode(&rec)
	if err == mongo.ErrNoDocuments {
		return &domain.StockLevel{}, nil
	}
	if err != nil {
		return nil, err
	}

	return &domain.StockLevel{
		ActualQty:    rec.ActualQty,
		ReservedQty:  rec.ReservedQty,
		AvailableQty: rec.ActualQty - rec.ReservedQty,
		ProjectedQty: rec.ProjectedQty,
	}, nil
}
