package routing

import (
	"context"
	"fmt"
	"sort"

	"github.com/wms-platform/task-service/internal/domain"
	"github.com/wms-platform/task-service/pkg/logging"
)

// Allocator assigns source bins to line items that lack one. It never
// reserves or decrements stock; it only proposes the routing location.
type Allocator struct {
	ledger  domain.StockLedger
	catalog domain.BinCatalog
	logger  *logging.Logger
}

// NewAllocator creates a new Allocator
func NewAllocator(ledger domain.StockLedger, catalog domain.BinCatalog, logger *logging.Logger) *Allocator {
	return &Allocator{
		ledger:  ledger,
		catalog: catalog,
		logger:  logger.WithComponent("allocator"),
	}
}

// AllocateBins fills SourceBin on items that don't have one. Allocation is
// best-effort across the whole batch: items without available stock keep an
// empty bin and get an explanatory ErrorMessage instead of failing the call.
// Items that already carry a source bin pass through unmodified.
func (a *Allocator) AllocateBins(ctx context.Context, items []domain.LineItem, warehouse string) ([]domain.LineItem, error) {
	if warehouse == "" || len(items) == 0 {
		return items, nil
	}

	bins, err := a.catalog.ListActiveBins(ctx, warehouse)
	if err != nil {
		return nil, fmt.Errorf("failed to list active bins for %s: %w", warehouse, err)
	}
	if len(bins) == 0 {
		return items, nil
	}

	// Rank: zone priority first (picking before stocking etc.), then FIFO
	// by bin creation within the same zone.
	sort.SliceStable(bins, func(i, j int) bool {
		pi, pj := domain.ZonePriority(bins[i].ZoneType), domain.ZonePriority(bins[j].ZoneType)
		if pi != pj {
			return pi < pj
		}
		return bins[i].CreatedAt.Before(bins[j].CreatedAt)
	})

	// Prefer a picking-zone bin whenever one exists, even over the ranked
	// minimum. Zone priority 0 already puts picking first, so this usually
	// selects the same bin; kept to preserve the established behavior.
	preferred := bins[0]
	for _, b := range bins {
		if b.ZoneType == domain.ZonePicking {
			preferred = b
			break
		}
	}

	for i := range items {
		if items[i].SourceBin != "" {
			continue
		}

		level, err := a.ledger.GetAvailableQty(ctx, items[i].ItemCode, warehouse)
		if err != nil {
			items[i].ErrorMessage = fmt.Sprintf("stock lookup failed for %s in %s: %v", items[i].ItemCode, warehouse, err)
			a.logger.WithError(err).Warn("Stock lookup failed", "itemCode", items[i].ItemCode, "warehouse", warehouse)
			continue
		}
		if level == nil || level.AvailableQty <= 0 {
			items[i].ErrorMessage = fmt.Sprintf("no available stock for %s in %s", items[i].ItemCode, warehouse)
			continue
		}

		// Stock is tracked at warehouse level, so the bin is a routing
		// suggestion, not a per-bin stock claim. A stale shortfall message
		// from an earlier pass no longer applies once a bin is assigned.
		items[i].SourceBin = preferred.BinID
		items[i].ErrorMessage = ""
	}

	return items, nil
}
