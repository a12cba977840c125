package auth

import (
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"

	appctx "colisflow/internal/core/context"
)

// JWTConfig holds JWT configuration.
type JWTConfig struct {
	Secret         string
	Issuer         string
	AccessTokenTTL time.Duration
}

// DefaultJWTConfig returns default JWT configuration.
func DefaultJWTConfig(secret string) JWTConfig {
	return JWTConfig{
		Secret:         secret,
		Issuer:         "colisflow",
		AccessTokenTTL: 8 * time.Hour,
	}
}

// Claims represents JWT claims.
type Claims struct {
	jwt.RegisteredClaims
	UserID      string   `json:"uid"`
	UserCode    string   `json:"code"`
	FullName    string   `json:"name,omitempty"`
	Roles       []string `json:"roles"`
	Permissions []string `json:"perms,omitempty"`
	IsAdmin     bool     `json:"adm,omitempty"`
}

// JWTService handles JWT operations.
type JWTService struct {
	config JWTConfig
	now    func() time.Time
}

// NewJWTService creates a new JWT service.
func NewJWTService(config JWTConfig) *JWTService {
	return &JWTService{config: config, now: time.Now}
}

// GenerateAccessToken signs an HS256 token for the user.
func (s *JWTService) GenerateAccessToken(u *User) (string, time.Time, error) {
	now := s.now()
	expiresAt := now.Add(s.config.AccessTokenTTL)

	claims := Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    s.config.Issuer,
			Subject:   u.ID.String(),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(expiresAt),
		},
		UserID:      u.ID.String(),
		UserCode:    u.Username,
		FullName:    u.FullName,
		Roles:       u.Roles,
		Permissions: u.Permissions(),
		IsAdmin:     u.IsAdmin,
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	tokenString, err := token.SignedString([]byte(s.config.Secret))
	if err != nil {
		return "", time.Time{}, fmt.Errorf("sign token: %w", err)
	}

	return tokenString, expiresAt, nil
}

// ValidateToken validates JWT and returns user context.
func (s *JWTService) ValidateToken(tokenString string) (*appctx.UserContext, error) {
	token, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return []byte(s.config.Secret), nil
	}, jwt.WithIssuer(s.config.Issuer), jwt.WithTimeFunc(s.now))

	if err != nil {
		return nil, fmt.Errorf("parse token: %w", err)
	}

	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid {
		return nil, fmt.Errorf("invalid token claims")
	}

	return &appctx.UserContext{
		UserID:      claims.UserID,
		UserCode:    claims.UserCode,
		FullName:    claims.FullName,
		Roles:       claims.Roles,
		Permissions: claims.Permissions,
		IsAdmin:     claims.IsAdmin,
	}, nil
}
