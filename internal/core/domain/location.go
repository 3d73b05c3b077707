package domain

// Location is a physical storage place, optionally subdivided into bins.
type Location struct {
	LocationID  string `json:"locationID"` // Primary Key (UUID)
	Name        string `json:"name"`
	Description string `json:"description"` // Nullable
	Bins        []Bin  `json:"bins,omitempty"`
	AuditFields
}

// Bin is a subdivision of a location. Code is unique within the location.
// Capacity is advisory: it is surfaced as free space in listings but never
// enforced at write time.
type Bin struct {
	BinID      string `json:"binID"`      // Primary Key (UUID)
	LocationID string `json:"locationID"` // FK -> locations (Not Null)
	Code       string `json:"code"`       // Unique within the location
	Capacity   int64  `json:"capacity"`   // Advisory, 0 = unspecified
	AuditFields
}
