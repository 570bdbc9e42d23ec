package domain

import "time"

// ZoneType is the coarse classification of a bin's warehouse function
type ZoneType string

const (
	ZonePicking   ZoneType = "Picking"
	ZoneStocking  ZoneType = "Stocking"
	ZoneStaging   ZoneType = "Staging"
	ZoneReceiving ZoneType = "Receiving"
	ZoneReturn    ZoneType = "Return"
	ZoneDefective ZoneType = "Defective"
)

// zonePriorities drives both bin allocation and traversal ordering:
// lower sorts first, so picking-zone bins are visited before stocking,
// staging, and the rest.
var zonePriorities = map[ZoneType]int{
	ZonePicking:   0,
	ZoneStocking:  1,
	ZoneStaging:   2,
	ZoneReceiving: 3,
	ZoneReturn:    4,
	ZoneDefective: 5,
}

// ZonePriority returns the traversal priority for a zone type.
// Unknown zones sort after every known one.
func ZonePriority(zone ZoneType) int {
	if p, ok := zonePriorities[zone]; ok {
		return p
	}
	return 99
}

// Bin is a storage location from the external bin catalog. The task service
// only reads bins; it never creates, edits, or deletes them.
type Bin struct {
	BinID     string    `bson:"binId" json:"binId"`
	BinCode   string    `bson:"binCode" json:"binCode"`
	Warehouse string    `bson:"warehouse" json:"warehouse"`
	ZoneType  ZoneType  `bson:"zoneType" json:"zoneType"`
	Aisle     string    `bson:"aisle" json:"aisle"`
	Rack      string    `bson:"rack" json:"rack"`
	Shelf     string    `bson:"shelf" json:"shelf"`
	Level     string    `bson:"level" json:"level"`
	IsActive  bool      `bson:"isActive" json:"isActive"`
	CreatedAt time.Time `bson:"createdAt" json:"createdAt"` // FIFO tie-break
}

// BinLocation is the positional slice of a bin used for routing
type BinLocation struct {
	BinCode  string   `json:"binCode"`
	ZoneType ZoneType `json:"zoneType"`
	Aisle    string   `json:"aisle"`
	Rack     string   `json:"rack"`
	Shelf    string   `json:"shelf"`
	Level    string   `json:"level"`
}

// Location returns the positional slice of the bin
func (b Bin) Location() BinLocation {
	return BinLocation{
		BinCode:  b.BinCode,
		ZoneType: b.ZoneType,
		Aisle:    b.Aisle,
		Rack:     b.Rack,
		Shelf:    b.Shelf,
		Level:    b.Level,
	}
}
