package dto

import (
	"github.com/kelderman/wine_cellar_app/internal/core/domain"
)

// CreateLocationRequest carries the payload for creating a storage location.
type CreateLocationRequest struct {
	Name        string `json:"name" binding:"required"`
	Description string `json:"description"`
}

// UpdateLocationRequest carries optional field updates for a location.
type UpdateLocationRequest struct {
	Name        *string `json:"name"`
	Description *string `json:"description"`
}

// CreateBinRequest carries the payload for adding a bin to a location.
type CreateBinRequest struct {
	Code     string `json:"code" binding:"required"`
	Capacity int64  `json:"capacity" binding:"omitempty,gt=0"`
}

// UpdateBinRequest carries optional field updates for a bin.
type UpdateBinRequest struct {
	Code     *string `json:"code"`
	Capacity *int64  `json:"capacity"`
}

// BinResponse defines the data returned for a bin. FreeSpace is advisory:
// capacity minus on-hand quantity, nil when the bin has no capacity set.
type BinResponse struct {
	BinID     string `json:"binID"`
	Code      string `json:"code"`
	Capacity  int64  `json:"capacity,omitempty"`
	OnHand    int64  `json:"onHand"`
	FreeSpace *int64 `json:"freeSpace,omitempty"`
}

// LocationResponse defines the data returned for a location.
type LocationResponse struct {
	LocationID  string        `json:"locationID"`
	Name        string        `json:"name"`
	Description string        `json:"description,omitempty"`
	Bins        []BinResponse `json:"bins,omitempty"`
}

// ToBinResponse converts a domain.Bin plus its current on-hand total.
func ToBinResponse(b *domain.Bin, onHand int64) BinResponse {
	resp := BinResponse{
		BinID:    b.BinID,
		Code:     b.Code,
		Capacity: b.Capacity,
		OnHand:   onHand,
	}
	if b.Capacity > 0 {
		free := b.Capacity - onHand
		resp.FreeSpace = &free
	}
	return resp
}

// ToLocationResponse converts a domain.Location with per-bin on-hand totals.
func ToLocationResponse(l *domain.Location, onHandByBin map[string]int64) LocationResponse {
	resp := LocationResponse{
		LocationID:  l.LocationID,
		Name:        l.Name,
		Description: l.Description,
	}
	if len(l.Bins) > 0 {
		resp.Bins = make([]BinResponse, len(l.Bins))
		for i := range l.Bins {
			resp.Bins[i] = ToBinResponse(&l.Bins[i], onHandByBin[l.Bins[i].BinID])
		}
	}
	return resp
}
