package dto

import (
	"colisflow/internal/core/types"
	"colisflow/internal/domain/parcel"
)

// CreateParcelRequest registers a parcel. An empty reference is generated.
type CreateParcelRequest struct {
	Reference   string      `json:"reference"`
	ClientName  string      `json:"clientName" binding:"required"`
	Description string      `json:"description"`
	WeightKg    types.Money `json:"weightKg"`
	Status      string      `json:"status"`
}

// ToInput converts to the domain input.
func (r *CreateParcelRequest) ToInput() parcel.CreateInput {
	return parcel.CreateInput{
		Reference:   r.Reference,
		ClientName:  r.ClientName,
		Description: r.Description,
		WeightKg:    r.WeightKg,
		Status:      parcel.Status(r.Status),
	}
}

// ParcelListQuery filters GET /parcels.
type ParcelListQuery struct {
	PageQuery
	Search string `form:"search"`
	Status string `form:"status"`
}

// ToFilter converts to the domain filter.
func (q *ParcelListQuery) ToFilter() parcel.ListFilter {
	f := parcel.ListFilter{Search: q.Search, Limit: q.Limit, Offset: q.Offset}
	if q.Status != "" {
		s := parcel.Status(q.Status)
		f.Status = &s
	}
	return f
}
