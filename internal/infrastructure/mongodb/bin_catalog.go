package mongodb

import (
	"context"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/wms-platform/task-service/internal/domain"
)

// BinCatalog is a read model over the bins collection maintained by the
// facility service. The task service never writes to it.
type BinCatalog struct {
	collection *mongo.Collection
}

// NewBinCatalog creates a new BinCatalog
func NewBinCatalog(db *mongo.Database) *BinCatalog {
	catalog := &BinCatalog{collection: db.Collection("bins")}
	catalog.ensureIndexes(context.Background())
	return catalog
}

func (c *BinCatalog) ensureIndexes(ctx context.Context) {
	indexes := []mongo.IndexModel{
		{Keys: bson.D{{Key: "binId", Value: 1}}, Options: options.Index().SetUnique(true)},
		{Keys: bson.D{{Key: "warehouse", Value: 1}, {Key: "isActive", Value: 1}}},
	}
	c.collection.Indexes().CreateMany(ctx, indexes)
}

// ListActiveBins retrieves the active bins of a warehouse
func (c *BinCatalog) ListActiveBins(ctx context.Context, warehouse string) ([]domain.Bin, error) {
	filter := bson.M{"warehouse": warehouse, "isActive": true}

	cursor, err := c.collection.Find(ctx, filter)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var bins []domain.Bin
	err = cursor.All(ctx, &bins)
	return bins, err
}

// GetBin retrieves a bin by ID. A missing bin is (nil, nil).
func (c *BinCatalog) GetBin(ctx context.Context, binID string) (*domain.Bin, error) {
	var bin domain.Bin
	err := c.collection.FindOne(ctx, bson.M{"binId": binID}).Decode(&bin)
	if err == mongo.ErrNoDocuments {
		return nil, nil
	}
	return &bin, err
}

// GetBinLocation retrieves the positional slice of a bin. A missing bin is
// (nil, nil): routing treats it as an unresolvable stop.
func (c *BinCatalog) GetBinLocation(ctx context.Context, binID string) (*domain.BinLocation, error) {
	bin, err := c.GetBin(ctx, binID)
	if err != nil || bin == nil {
		return nil, err
	}
	loc := bin.Location()
	return &loc, nil
}
