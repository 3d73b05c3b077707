package models

// WineType classifies a wine by style.
type WineType string

const (
	Red       WineType = "RED"
	White     WineType = "WHITE"
	Rose      WineType = "ROSE"
	Sparkling WineType = "SPARKLING"
	Dessert   WineType = "DESSERT"
	Fortified WineType = "FORTIFIED"
)

// Wine represents one wine in the catalog. CopyOfID links a copy back to the
// wine it was duplicated from; NULL for originals.
type Wine struct {
	WineID         string   `db:"wine_id"`
	Name           string   `db:"name"`
	WineDomain     string   `db:"wine_domain"`
	WineType       WineType `db:"wine_type"`
	Year           int      `db:"year"`
	Region         string   `db:"region"`
	Classification string   `db:"classification"`
	Notes          string   `db:"notes"`
	Closed         bool     `db:"closed"`
	CopyOfID       *string  `db:"copy_of_id"`
	AuditFields
}

// GrapeVariety represents one entry in the grape catalog.
type GrapeVariety struct {
	GrapeID string `db:"grape_id"`
	Name    string `db:"name"`
}
