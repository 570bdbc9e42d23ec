package routing

import (
	"context"
	"fmt"
	"sort"

	"github.com/wms-platform/task-service/internal/domain"
)

// Router orders line items into a serpentine (snake) traversal sequence:
// aisles are walked in natural order and rack direction alternates per
// aisle, so the picker never returns to an aisle's entrance.
type Router struct {
	catalog domain.BinCatalog
}

// NewRouter creates a new Router
func NewRouter(catalog domain.BinCatalog) *Router {
	return &Router{catalog: catalog}
}

// itemSortKey is the composite serpentine sort key for one item. Items
// whose bin is unknown to the catalog sort after every known zone; items
// without any bin sort after everything else.
type itemSortKey struct {
	zone  int
	aisle NaturalKey
	rack  NaturalKey
	shelf NaturalKey
	level NaturalKey
}

func (k itemSortKey) less(other itemSortKey) bool {
	if k.zone != other.zone {
		return k.zone < other.zone
	}
	if c := k.aisle.Compare(other.aisle); c != 0 {
		return c < 0
	}
	if c := k.rack.Compare(other.rack); c != 0 {
		return c < 0
	}
	if c := k.shelf.Compare(other.shelf); c != 0 {
		return c < 0
	}
	return k.level.Compare(other.level) < 0
}

const unroutableZone = 999

// Sort reorders items in serpentine order and stamps PickSequence 1..N.
// It is idempotent: sorting an already-sorted batch reproduces the same
// order and renumbers the sequence rather than accumulating it. When no
// item carries a source bin the original order is kept.
func (r *Router) Sort(ctx context.Context, items []domain.LineItem) ([]domain.LineItem, error) {
	if len(items) == 0 {
		return items, nil
	}

	locations, err := r.resolveLocations(ctx, items)
	if err != nil {
		return nil, err
	}
	if len(locations) == 0 {
		return stampSequence(items), nil
	}

	aisleIndex := aisleOrdering(locations)

	keys := make([]itemSortKey, len(items))
	for i, item := range items {
		keys[i] = sortKeyFor(item, locations, aisleIndex)
	}

	order := make([]int, len(items))
	for i := range order {
		order[i] = i
	}
	sort.SliceStable(order, func(a, b int) bool {
		return keys[order[a]].less(keys[order[b]])
	})

	sorted := make([]domain.LineItem, len(items))
	for rank, idx := range order {
		sorted[rank] = items[idx]
		sorted[rank].PickSequence = rank + 1
	}

	return sorted, nil
}

// resolveLocations fetches location data for every distinct source bin
func (r *Router) resolveLocations(ctx context.Context, items []domain.LineItem) (map[string]domain.BinLocation, error) {
	locations := make(map[string]domain.BinLocation)
	for _, item := range items {
		bin := item.SourceBin
		if bin == "" {
			continue
		}
		if _, seen := locations[bin]; seen {
			continue
		}
		loc, err := r.catalog.GetBinLocation(ctx, bin)
		if err != nil {
			return nil, fmt.Errorf("failed to resolve bin %s: %w", bin, err)
		}
		if loc != nil {
			locations[bin] = *loc
		}
	}
	return locations, nil
}

// aisleOrdering assigns each distinct aisle label a 0-based index in
// natural order. Odd-indexed aisles are traversed rack-descending.
func aisleOrdering(locations map[string]domain.BinLocation) map[string]int {
	seen := make(map[string]bool)
	aisles := make([]string, 0, len(locations))
	for _, loc := range locations {
		if loc.Aisle == "" || seen[loc.Aisle] {
			continue
		}
		seen[loc.Aisle] = true
		aisles = append(aisles, loc.Aisle)
	}

	sort.SliceStable(aisles, func(i, j int) bool {
		return NewNaturalKey(aisles[i]).Compare(NewNaturalKey(aisles[j])) < 0
	})

	index := make(map[string]int, len(aisles))
	for i, aisle := range aisles {
		index[aisle] = i
	}
	return index
}

func sortKeyFor(item domain.LineItem, locations map[string]domain.BinLocation, aisleIndex map[string]int) itemSortKey {
	if item.SourceBin == "" {
		return itemSortKey{zone: unroutableZone}
	}
	loc, ok := locations[item.SourceBin]
	if !ok {
		// A bin the catalog cannot resolve ranks as an unknown zone,
		// ahead of items that carry no bin at all.
		return itemSortKey{zone: domain.ZonePriority("")}
	}

	rackKey := NewNaturalKey(loc.Rack)
	if aisleIndex[loc.Aisle]%2 == 1 {
		rackKey = rackKey.Invert()
	}

	return itemSortKey{
		zone:  domain.ZonePriority(loc.ZoneType),
		aisle: NewNaturalKey(loc.Aisle),
		rack:  rackKey,
		shelf: NewNaturalKey(loc.Shelf),
		level: NewNaturalKey(loc.Level),
	}
}

func stampSequence(items []domain.LineItem) []domain.LineItem {
	for i := range items {
		items[i].PickSequence = i + 1
	}
	return items
}
