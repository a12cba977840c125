package handlers

import (
	"context"

	"github.com/gin-gonic/gin"

	"colisflow/internal/domain/audit"
	"colisflow/internal/infrastructure/http/v1/dto"
)

// AuditLister reads the audit trail.
type AuditLister interface {
	List(ctx context.Context, filter audit.Filter) ([]audit.Entry, error)
}

// AuditHandler serves the audit trail.
type AuditHandler struct {
	*BaseHandler
	store AuditLister
}

// NewAuditHandler creates a new audit handler.
func NewAuditHandler(base *BaseHandler, store AuditLister) *AuditHandler {
	return &AuditHandler{BaseHandler: base, store: store}
}

// List handles GET /audit
func (h *AuditHandler) List(c *gin.Context) {
	var q dto.AuditListQuery
	if !h.BindQuery(c, &q) {
		return
	}
	filter, err := q.ToFilter()
	if err != nil {
		h.Error(c, err)
		return
	}

	entries, err := h.store.List(c.Request.Context(), filter)
	if err != nil {
		h.Error(c, err)
		return
	}
	if entries == nil {
		entries = []audit.Entry{}
	}
	h.OK(c, dto.ListResponse{Items: entries, Limit: filter.Limit, Offset: filter.Offset})
}
