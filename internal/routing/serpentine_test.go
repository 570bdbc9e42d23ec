package routing

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wms-platform/task-service/internal/domain"
)

// fakeCatalog is an in-memory domain.BinCatalog
type fakeCatalog struct {
	bins   map[string]domain.Bin
	listed []domain.Bin
	err    error
}

func (f *fakeCatalog) ListActiveBins(ctx context.Context, warehouse string) ([]domain.Bin, error) {
	return f.listed, f.err
}

func (f *fakeCatalog) GetBin(ctx context.Context, binID string) (*domain.Bin, error) {
	if f.err != nil {
		return nil, f.err
	}
	bin, ok := f.bins[binID]
	if !ok {
		return nil, nil
	}
	return &bin, nil
}

func (f *fakeCatalog) GetBinLocation(ctx context.Context, binID string) (*domain.BinLocation, error) {
	bin, err := f.GetBin(ctx, binID)
	if err != nil || bin == nil {
		return nil, err
	}
	loc := bin.Location()
	return &loc, nil
}

func pickingBin(binID, aisle, rack string) domain.Bin {
	return domain.Bin{
		BinID:    binID,
		BinCode:  binID,
		ZoneType: domain.ZonePicking,
		Aisle:    aisle,
		Rack:     rack,
		IsActive: true,
	}
}

func itemAt(itemCode, bin string) domain.LineItem {
	return domain.LineItem{ItemCode: itemCode, Qty: 1, SourceBin: bin}
}

func itemCodes(items []domain.LineItem) []string {
	codes := make([]string, len(items))
	for i, item := range items {
		codes[i] = item.ItemCode
	}
	return codes
}

func TestRouterSerpentineTraversal(t *testing.T) {
	// Two aisles, three racks each. The first aisle is walked rack-ascending,
	// the second rack-descending, so the picker exits where aisle B starts.
	catalog := &fakeCatalog{bins: map[string]domain.Bin{
		"A-1": pickingBin("A-1", "A", "1"),
		"A-2": pickingBin("A-2", "A", "2"),
		"A-3": pickingBin("A-3", "A", "3"),
		"B-1": pickingBin("B-1", "B", "1"),
		"B-2": pickingBin("B-2", "B", "2"),
		"B-3": pickingBin("B-3", "B", "3"),
	}}
	router := NewRouter(catalog)

	items := []domain.LineItem{
		itemAt("I-B1", "B-1"),
		itemAt("I-A3", "A-3"),
		itemAt("I-B3", "B-3"),
		itemAt("I-A1", "A-1"),
		itemAt("I-B2", "B-2"),
		itemAt("I-A2", "A-2"),
	}

	sorted, err := router.Sort(context.Background(), items)

	require.NoError(t, err)
	assert.Equal(t, []string{"I-A1", "I-A2", "I-A3", "I-B3", "I-B2", "I-B1"}, itemCodes(sorted))
	for i, item := range sorted {
		assert.Equal(t, i+1, item.PickSequence)
	}
}

func TestRouterSortIsIdempotent(t *testing.T) {
	catalog := &fakeCatalog{bins: map[string]domain.Bin{
		"A-1": pickingBin("A-1", "A", "1"),
		"A-2": pickingBin("A-2", "A", "2"),
		"B-1": pickingBin("B-1", "B", "1"),
	}}
	router := NewRouter(catalog)

	items := []domain.LineItem{
		itemAt("I-2", "A-2"),
		itemAt("I-3", "B-1"),
		itemAt("I-1", "A-1"),
	}

	once, err := router.Sort(context.Background(), items)
	require.NoError(t, err)
	twice, err := router.Sort(context.Background(), once)
	require.NoError(t, err)

	assert.Equal(t, once, twice)
}

func TestRouterNaturalAisleOrder(t *testing.T) {
	catalog := &fakeCatalog{bins: map[string]domain.Bin{
		"A2-1":  pickingBin("A2-1", "A2", "1"),
		"A10-1": pickingBin("A10-1", "A10", "1"),
	}}
	router := NewRouter(catalog)

	items := []domain.LineItem{
		itemAt("I-A10", "A10-1"),
		itemAt("I-A2", "A2-1"),
	}

	sorted, err := router.Sort(context.Background(), items)

	require.NoError(t, err)
	assert.Equal(t, []string{"I-A2", "I-A10"}, itemCodes(sorted))
}

func TestRouterZonePriorityBeforePosition(t *testing.T) {
	stockingBin := domain.Bin{BinID: "S-1", BinCode: "S-1", ZoneType: domain.ZoneStocking, Aisle: "A", Rack: "1"}
	catalog := &fakeCatalog{bins: map[string]domain.Bin{
		"S-1": stockingBin,
		"P-1": pickingBin("P-1", "Z", "9"),
	}}
	router := NewRouter(catalog)

	items := []domain.LineItem{
		itemAt("I-STOCK", "S-1"),
		itemAt("I-PICK", "P-1"),
	}

	sorted, err := router.Sort(context.Background(), items)

	require.NoError(t, err)
	// Picking zone wins even though its aisle sorts later
	assert.Equal(t, []string{"I-PICK", "I-STOCK"}, itemCodes(sorted))
}

func TestRouterItemsWithoutBinsSortLast(t *testing.T) {
	catalog := &fakeCatalog{bins: map[string]domain.Bin{
		"A-1": pickingBin("A-1", "A", "1"),
	}}
	router := NewRouter(catalog)

	items := []domain.LineItem{
		{ItemCode: "I-NOBIN", Qty: 1},
		itemAt("I-A1", "A-1"),
		{ItemCode: "I-UNKNOWN", Qty: 1, SourceBin: "MISSING"},
	}

	sorted, err := router.Sort(context.Background(), items)

	require.NoError(t, err)
	// A bin the catalog cannot resolve still ranks ahead of no bin at all
	assert.Equal(t, []string{"I-A1", "I-UNKNOWN", "I-NOBIN"}, itemCodes(sorted))
	assert.Equal(t, 3, sorted[2].PickSequence)
}

func TestRouterNoBinsKeepsOrder(t *testing.T) {
	router := NewRouter(&fakeCatalog{bins: map[string]domain.Bin{}})

	items := []domain.LineItem{
		{ItemCode: "I-1", Qty: 1},
		{ItemCode: "I-2", Qty: 1},
	}

	sorted, err := router.Sort(context.Background(), items)

	require.NoError(t, err)
	assert.Equal(t, []string{"I-1", "I-2"}, itemCodes(sorted))
	assert.Equal(t, 1, sorted[0].PickSequence)
	assert.Equal(t, 2, sorted[1].PickSequence)
}

func TestRouterCatalogError(t *testing.T) {
	router := NewRouter(&fakeCatalog{err: errors.New("catalog down")})

	_, err := router.Sort(context.Background(), []domain.LineItem{itemAt("I-1", "A-1")})

	require.Error(t, err)
	assert.Contains(t, err.Error(), "catalog down")
}

func TestRouterEmptyBatch(t *testing.T) {
	router := NewRouter(&fakeCatalog{})

	sorted, err := router.Sort(context.Background(), nil)

	require.NoError(t, err)
	assert.Empty(t, sorted)
}

// BenchmarkRouterSort benchmarks a serpentine pass over a full pick list
func BenchmarkRouterSort(b *testing.B) {
	bins := make(map[string]domain.Bin)
	items := make([]domain.LineItem, 0, 200)
	for aisle := 0; aisle < 10; aisle++ {
		for rack := 0; rack < 20; rack++ {
			binID := fmt.Sprintf("A%d-R%d", aisle+1, rack+1)
			bins[binID] = pickingBin(binID, fmt.Sprintf("A%d", aisle+1), fmt.Sprintf("R%d", rack+1))
			items = append(items, itemAt(fmt.Sprintf("ITEM-%03d", len(items)), binID))
		}
	}
	router := NewRouter(&fakeCatalog{bins: bins})
	ctx := context.Background()

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if _, err := router.Sort(ctx, items); err != nil {
			b.Fatal(err)
		}
	}
}
