package dto

import (
	"time"

	"github.com/kelderman/wine_cellar_app/internal/core/domain"
)

// CreateWineRequest carries the payload for creating a catalog entry.
type CreateWineRequest struct {
	Name           string   `json:"name" binding:"required"`
	WineDomain     string   `json:"wineDomain" binding:"required"`
	WineType       string   `json:"wineType" binding:"required,oneof=RED WHITE ROSE SPARKLING DESSERT FORTIFIED"`
	Year           int      `json:"year" binding:"omitempty,gte=1800"`
	Region         string   `json:"region"`
	Classification string   `json:"classification"`
	Notes          string   `json:"notes"`
	GrapeIDs       []string `json:"grapeIDs"`
}

// UpdateWineRequest carries optional field updates for a wine.
type UpdateWineRequest struct {
	Name           *string   `json:"name"`
	WineDomain     *string   `json:"wineDomain"`
	WineType       *string   `json:"wineType" binding:"omitempty,oneof=RED WHITE ROSE SPARKLING DESSERT FORTIFIED"`
	Year           *int      `json:"year"`
	Region         *string   `json:"region"`
	Classification *string   `json:"classification"`
	Notes          *string   `json:"notes"`
	GrapeIDs       *[]string `json:"grapeIDs"`
}

// CreateGrapeRequest carries the payload for registering a grape variety.
type CreateGrapeRequest struct {
	Name string `json:"name" binding:"required"`
}

// WineResponse defines the data returned for a wine.
type WineResponse struct {
	WineID         string    `json:"wineID"`
	Name           string    `json:"name"`
	WineDomain     string    `json:"wineDomain"`
	WineType       string    `json:"wineType"`
	Year           int       `json:"year"`
	Region         string    `json:"region,omitempty"`
	Classification string    `json:"classification,omitempty"`
	Notes          string    `json:"notes,omitempty"`
	Closed         bool      `json:"closed"`
	CopyOfID       *string   `json:"copyOfID,omitempty"`
	Grapes         []string  `json:"grapes,omitempty"`
	CreatedAt      time.Time `json:"createdAt"`
}

// ToWineResponse converts a domain.Wine to WineResponse.
func ToWineResponse(w *domain.Wine) WineResponse {
	grapes := make([]string, len(w.Grapes))
	for i, g := range w.Grapes {
		grapes[i] = g.Name
	}
	return WineResponse{
		WineID:         w.WineID,
		Name:           w.Name,
		WineDomain:     w.WineDomain,
		WineType:       string(w.WineType),
		Year:           w.Year,
		Region:         w.Region,
		Classification: w.Classification,
		Notes:          w.Notes,
		Closed:         w.Closed,
		CopyOfID:       w.CopyOfID,
		Grapes:         grapes,
		CreatedAt:      w.CreatedAt,
	}
}

// ToWineResponses converts a slice of domain.Wine to []WineResponse.
func ToWineResponses(wines []domain.Wine) []WineResponse {
	responses := make([]WineResponse, len(wines))
	for i := range wines {
		responses[i] = ToWineResponse(&wines[i])
	}
	return responses
}
