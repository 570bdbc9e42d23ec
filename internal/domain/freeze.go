package domain

// StockFreeze is one active freeze scope record from the external registry.
// An empty field means the freeze is unscoped on that dimension and matches
// anything there.
type StockFreeze struct {
	ItemCode  string `bson:"itemCode,omitempty" json:"itemCode,omitempty"`
	Warehouse string `bson:"warehouse,omitempty" json:"warehouse,omitempty"`
	Bin       string `bson:"bin,omitempty" json:"bin,omitempty"`
	BatchNo   string `bson:"batchNo,omitempty" json:"batchNo,omitempty"`
}

// FreezeQuery is the scope of a stock movement about to be committed
type FreezeQuery struct {
	ItemCode  string
	Warehouse string
	Bin       string
	BatchNo   string
}

// Matches reports whether this freeze applies to the query. Each dimension
// matches when the freeze leaves it unscoped, or when both sides are set and
// equal. A freeze scoped on a dimension the query leaves empty does NOT
// match: an unscoped query never trips a narrower freeze.
func (f StockFreeze) Matches(q FreezeQuery) bool {
	return dimensionMatches(f.ItemCode, q.ItemCode) &&
		dimensionMatches(f.Warehouse, q.Warehouse) &&
		dimensionMatches(f.Bin, q.Bin) &&
		dimensionMatches(f.BatchNo, q.BatchNo)
}

func dimensionMatches(frozen, queried string) bool {
	if frozen == "" {
		return true
	}
	return queried != "" && frozen == queried
}

// IsFrozen reports whether any freeze in the snapshot matches the query
func IsFrozen(freezes []StockFreeze, q FreezeQuery) bool {
	for _, f := range freezes {
		if f.Matches(q) {
			return true
		}
	}
	return false
}
