package handlers

import (
	"context"

	"github.com/gin-gonic/gin"

	"colisflow/internal/core/id"
	"colisflow/internal/domain/cash"
	"colisflow/internal/infrastructure/http/v1/dto"
)

// CashService is implemented by cash.Service.
type CashService interface {
	CreateRegister(ctx context.Context, in cash.RegisterInput) (*cash.Register, error)
	GetRegister(ctx context.Context, registerID id.ID) (*cash.Register, error)
	ListRegisters(ctx context.Context) ([]*cash.Register, error)
	GetBalance(ctx context.Context, registerID id.ID) (*cash.Balance, error)
	Replenish(ctx context.Context, registerID id.ID, in cash.Replenishment) (*cash.Movement, error)
	RecordCashIn(ctx context.Context, registerID id.ID, in cash.CashIn) (*cash.Movement, error)
	Disburse(ctx context.Context, registerID id.ID, in cash.Disbursement) (*cash.Movement, error)
	GetMovement(ctx context.Context, movementID id.ID) (*cash.Movement, error)
	ListMovements(ctx context.Context, filter cash.MovementFilter) (*cash.MovementPage, error)
	Report(ctx context.Context, req cash.ReportRequest) (*cash.Report, error)
	ReportDetail(ctx context.Context, req cash.ReportRequest) (*cash.Report, []cash.Movement, error)
}

// CashHandler serves registers and their movements.
type CashHandler struct {
	*BaseHandler
	service CashService
}

// NewCashHandler creates a new cash handler.
func NewCashHandler(base *BaseHandler, service CashService) *CashHandler {
	return &CashHandler{BaseHandler: base, service: service}
}

// --- Registers ---

// CreateRegister handles POST /registers
func (h *CashHandler) CreateRegister(c *gin.Context) {
	var req dto.CreateRegisterRequest
	if !h.BindJSON(c, &req) {
		return
	}
	in, err := req.ToInput()
	if err != nil {
		h.Error(c, err)
		return
	}

	reg, err := h.service.CreateRegister(c.Request.Context(), in)
	if err != nil {
		h.Error(c, err)
		return
	}
	h.Created(c, reg)
}

// ListRegisters handles GET /registers
func (h *CashHandler) ListRegisters(c *gin.Context) {
	regs, err := h.service.ListRegisters(c.Request.Context())
	if err != nil {
		h.Error(c, err)
		return
	}
	h.OK(c, dto.ListResponse{Items: regs, TotalCount: int64(len(regs)), Limit: len(regs)})
}

// GetRegister handles GET /registers/:id
func (h *CashHandler) GetRegister(c *gin.Context) {
	registerID, ok := h.ParamID(c, "id")
	if !ok {
		return
	}
	reg, err := h.service.GetRegister(c.Request.Context(), registerID)
	if err != nil {
		h.Error(c, err)
		return
	}
	h.OK(c, reg)
}

// Balance handles GET /registers/:id/balance
func (h *CashHandler) Balance(c *gin.Context) {
	registerID, ok := h.ParamID(c, "id")
	if !ok {
		return
	}
	bal, err := h.service.GetBalance(c.Request.Context(), registerID)
	if err != nil {
		h.Error(c, err)
		return
	}
	h.OK(c, bal)
}

// --- Movements ---

// Replenish handles POST /registers/:id/replenishments
func (h *CashHandler) Replenish(c *gin.Context) {
	registerID, ok := h.ParamID(c, "id")
	if !ok {
		return
	}
	var req dto.ReplenishmentRequest
	if !h.BindJSON(c, &req) {
		return
	}
	in, err := req.ToDomain()
	if err != nil {
		h.Error(c, err)
		return
	}

	m, err := h.service.Replenish(c.Request.Context(), registerID, in)
	if err != nil {
		h.Error(c, err)
		return
	}
	h.Created(c, m)
}

// CashIn handles POST /registers/:id/cash-ins
func (h *CashHandler) CashIn(c *gin.Context) {
	registerID, ok := h.ParamID(c, "id")
	if !ok {
		return
	}
	var req dto.CashInRequest
	if !h.BindJSON(c, &req) {
		return
	}
	in, err := req.ToDomain()
	if err != nil {
		h.Error(c, err)
		return
	}

	m, err := h.service.RecordCashIn(c.Request.Context(), registerID, in)
	if err != nil {
		h.Error(c, err)
		return
	}
	h.Created(c, m)
}

// Disburse handles POST /registers/:id/disbursements
func (h *CashHandler) Disburse(c *gin.Context) {
	registerID, ok := h.ParamID(c, "id")
	if !ok {
		return
	}
	var req dto.DisbursementRequest
	if !h.BindJSON(c, &req) {
		return
	}
	in, err := req.ToDomain()
	if err != nil {
		h.Error(c, err)
		return
	}

	m, err := h.service.Disburse(c.Request.Context(), registerID, in)
	if err != nil {
		h.Error(c, err)
		return
	}
	h.Created(c, m)
}

// ListMovements handles GET /movements
func (h *CashHandler) ListMovements(c *gin.Context) {
	var q dto.MovementListQuery
	if !h.BindQuery(c, &q) {
		return
	}
	filter, err := q.ToFilter()
	if err != nil {
		h.Error(c, err)
		return
	}

	page, err := h.service.ListMovements(c.Request.Context(), filter)
	if err != nil {
		h.Error(c, err)
		return
	}
	items := page.Items
	if items == nil {
		items = []cash.Movement{}
	}
	h.OK(c, dto.ListResponse{Items: items, TotalCount: page.TotalCount, Limit: filter.Limit, Offset: filter.Offset})
}

// GetMovement handles GET /movements/:id
func (h *CashHandler) GetMovement(c *gin.Context) {
	movementID, ok := h.ParamID(c, "id")
	if !ok {
		return
	}
	m, err := h.service.GetMovement(c.Request.Context(), movementID)
	if err != nil {
		h.Error(c, err)
		return
	}
	h.OK(c, m)
}
