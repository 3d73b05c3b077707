package models

// Location represents a storage location such as a cellar or rack wall.
type Location struct {
	LocationID  string `db:"location_id"`
	Name        string `db:"name"`
	Description string `db:"description"`
	AuditFields
}

// Bin represents one addressable slot inside a location. Capacity is
// advisory; it is never enforced on stock changes.
type Bin struct {
	BinID      string `db:"bin_id"`
	LocationID string `db:"location_id"`
	Code       string `db:"code"`
	Capacity   int64  `db:"capacity"`
	AuditFields
}
