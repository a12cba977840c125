package handlers

import (
	"context"

	"github.com/gin-gonic/gin"

	"colisflow/internal/domain/auth"
	"colisflow/internal/infrastructure/http/v1/dto"
)

// AuthService is implemented by auth.Service.
type AuthService interface {
	Login(ctx context.Context, creds auth.Credentials) (*auth.Token, *auth.User, error)
	Me(ctx context.Context) (*auth.User, error)
}

// AuthHandler handles authentication endpoints.
type AuthHandler struct {
	*BaseHandler
	service AuthService
}

// NewAuthHandler creates a new auth handler.
func NewAuthHandler(base *BaseHandler, service AuthService) *AuthHandler {
	return &AuthHandler{BaseHandler: base, service: service}
}

// Login handles POST /auth/login
func (h *AuthHandler) Login(c *gin.Context) {
	var req dto.LoginRequest
	if !h.BindJSON(c, &req) {
		return
	}

	token, user, err := h.service.Login(c.Request.Context(), req.ToCredentials())
	if err != nil {
		h.Error(c, err)
		return
	}

	h.OK(c, dto.LoginResponse{
		Token: dto.FromToken(token),
		User:  dto.FromUser(user),
	})
}

// Me handles GET /auth/me
func (h *AuthHandler) Me(c *gin.Context) {
	user, err := h.service.Me(c.Request.Context())
	if err != nil {
		h.Error(c, err)
		return
	}
	h.OK(c, dto.FromUser(user))
}
