package mongodb

import (
	"context"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/wms-platform/task-service/internal/domain"
)

// freezeRecord is the stored shape of a freeze. Only active records reach
// the domain; the status field stays an infrastructure concern.
type freezeRecord struct {
	ItemCode  string `bson:"itemCode,omitempty"`
	Warehouse string `bson:"warehouse,omitempty"`
	Bin       string `bson:"bin,omitempty"`
	BatchNo   string `bson:"batchNo,omitempty"`
	Status    string `bson:"status"`
}

// FreezeRegistry is a read model over the stock freezes collection
// maintained by the inventory service
type FreezeRegistry struct {
	collection *mongo.Collection
}

// NewFreezeRegistry creates a new FreezeRegistry
func NewFreezeRegistry(db *mongo.Database) *FreezeRegistry {
	return &FreezeRegistry{collection: db.Collection("stock_freezes")}
}

// ListActiveFreezes retrieves the snapshot of active freezes
func (r *FreezeRegistry) ListActiveFreezes(ctx context.Context) ([]domain.StockFreeze, error) {
	cursor, err := r.collection.Find(ctx, bson.M{"status": "active"})
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var records []freezeRecord
	if err := cursor.All(ctx, &records); err != nil {
		return nil, err
	}

	freezes := make([]domain.StockFreeze, 0, len(records))
	for _, rec := range records {
		freezes = append(freezes, domain.StockFreeze{
			ItemCode:  rec.ItemCode,
			Warehouse: rec.Warehouse,
			Bin:       rec.Bin,
			BatchNo:   rec.BatchNo,
		})
	}
	return freezes, nil
}
