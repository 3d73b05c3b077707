package domain

// MaxWineCopies caps a wine and the copy duplicates derived from it at this
// many catalog rows in total.
const MaxWineCopies = 16

// WineType classifies a wine in the catalog.
type WineType string

const (
	Red       WineType = "RED"
	White     WineType = "WHITE"
	Rose      WineType = "ROSE"
	Sparkling WineType = "SPARKLING"
	Dessert   WineType = "DESSERT"
	Fortified WineType = "FORTIFIED"
)

// Wine is a catalog entry. Unique on (Name, WineDomain, Year).
// Closed is a soft flag maintained automatically: a wine with zero total
// stock across all its receipts is closed, any remaining stock reopens it.
type Wine struct {
	WineID         string         `json:"wineID"`         // Primary Key (UUID)
	Name           string         `json:"name"`           // User-visible name (Not Null)
	WineDomain     string         `json:"wineDomain"`     // Producer / domain
	WineType       WineType       `json:"wineType"`       // RED, WHITE, ...
	Year           int            `json:"year"`           // Vintage year, 0 when unknown
	Region         string         `json:"region"`         // Nullable
	Classification string         `json:"classification"` // Nullable
	Notes          string         `json:"notes"`          // Nullable
	Closed         bool           `json:"closed"`         // Maintained by the stock engine
	CopyOfID       *string        `json:"copyOfID"`       // Set when this wine is a copy of another
	Grapes         []GrapeVariety `json:"grapes,omitempty"`
	AuditFields
}

// GrapeVariety is a grape associated with one or more wines.
type GrapeVariety struct {
	GrapeID string `json:"grapeID"`
	Name    string `json:"name"`
}

// CopyOrigin returns the wine ID copies of this wine are counted against.
// A copy of a copy still counts toward the original's cap.
func (w Wine) CopyOrigin() string {
	if w.CopyOfID != nil {
		return *w.CopyOfID
	}
	return w.WineID
}
