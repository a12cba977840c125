package handlers

import (
	"context"

	"github.com/gin-gonic/gin"

	"colisflow/internal/core/id"
	"colisflow/internal/domain/parcel"
	"colisflow/internal/infrastructure/http/v1/dto"
)

// ParcelService is implemented by parcel.Service.
type ParcelService interface {
	Create(ctx context.Context, in parcel.CreateInput) (*parcel.Parcel, error)
	Get(ctx context.Context, parcelID id.ID) (*parcel.Parcel, error)
	List(ctx context.Context, filter parcel.ListFilter) ([]*parcel.Parcel, error)
}

// ParcelHandler serves parcel records.
type ParcelHandler struct {
	*BaseHandler
	service ParcelService
}

// NewParcelHandler creates a new parcel handler.
func NewParcelHandler(base *BaseHandler, service ParcelService) *ParcelHandler {
	return &ParcelHandler{BaseHandler: base, service: service}
}

// Create handles POST /parcels
func (h *ParcelHandler) Create(c *gin.Context) {
	var req dto.CreateParcelRequest
	if !h.BindJSON(c, &req) {
		return
	}
	p, err := h.service.Create(c.Request.Context(), req.ToInput())
	if err != nil {
		h.Error(c, err)
		return
	}
	h.Created(c, p)
}

// Get handles GET /parcels/:id
func (h *ParcelHandler) Get(c *gin.Context) {
	parcelID, ok := h.ParamID(c, "id")
	if !ok {
		return
	}
	p, err := h.service.Get(c.Request.Context(), parcelID)
	if err != nil {
		h.Error(c, err)
		return
	}
	h.OK(c, p)
}

// List handles GET /parcels
func (h *ParcelHandler) List(c *gin.Context) {
	var q dto.ParcelListQuery
	if !h.BindQuery(c, &q) {
		return
	}
	filter := q.ToFilter()
	items, err := h.service.List(c.Request.Context(), filter)
	if err != nil {
		h.Error(c, err)
		return
	}
	if items == nil {
		items = []*parcel.Parcel{}
	}
	h.OK(c, dto.ListResponse{Items: items, Limit: filter.Limit, Offset: filter.Offset})
}
