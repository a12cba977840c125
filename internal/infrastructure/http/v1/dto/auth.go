package dto

import (
	"time"

	"colisflow/internal/domain/auth"
)

// LoginRequest for user login.
type LoginRequest struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
}

// ToCredentials converts to domain credentials.
func (r *LoginRequest) ToCredentials() auth.Credentials {
	return auth.Credentials{Username: r.Username, Password: r.Password}
}

// TokenResponse is an issued access token.
type TokenResponse struct {
	AccessToken string    `json:"accessToken"`
	TokenType   string    `json:"tokenType"`
	ExpiresAt   time.Time `json:"expiresAt"`
}

// UserResponse is the public view of an operator account.
type UserResponse struct {
	ID          string     `json:"id"`
	Username    string     `json:"username"`
	FullName    string     `json:"fullName"`
	Roles       []string   `json:"roles"`
	Permissions []string   `json:"permissions"`
	IsAdmin     bool       `json:"isAdmin"`
	LastLoginAt *time.Time `json:"lastLoginAt,omitempty"`
}

// LoginResponse is returned by POST /auth/login.
type LoginResponse struct {
	Token TokenResponse `json:"token"`
	User  UserResponse  `json:"user"`
}

// FromToken converts a domain token.
func FromToken(t *auth.Token) TokenResponse {
	return TokenResponse{AccessToken: t.AccessToken, TokenType: t.TokenType, ExpiresAt: t.ExpiresAt}
}

// FromUser converts a domain user. The password hash never leaves the service.
func FromUser(u *auth.User) UserResponse {
	roles := u.Roles
	if roles == nil {
		roles = []string{}
	}
	return UserResponse{
		ID:          u.ID.String(),
		Username:    u.Username,
		FullName:    u.FullName,
		Roles:       roles,
		Permissions: u.Permissions(),
		IsAdmin:     u.IsAdmin,
		LastLoginAt: u.LastLoginAt,
	}
}
