package middleware

import (
	"strings"

	"github.com/gin-gonic/gin"

	"colisflow/internal/core/apperror"
	appctx "colisflow/internal/core/context"
)

// JWTValidator validates bearer tokens.
type JWTValidator interface {
	ValidateToken(tokenString string) (*appctx.UserContext, error)
}

// Auth validates the bearer token and puts the user into the request context.
func Auth(validator JWTValidator) gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			abortUnauthorized(c, "missing authorization header")
			return
		}

		token, ok := bearerToken(authHeader)
		if !ok {
			abortUnauthorized(c, "invalid authorization header format")
			return
		}

		user, err := validator.ValidateToken(token)
		if err != nil {
			abortUnauthorized(c, "invalid token")
			return
		}

		setUser(c, user)
		c.Next()
	}
}

// OptionalAuth attaches the user when a valid token is present and lets the
// request through otherwise. The login route uses it so audit rows carry the
// caller when one is known.
func OptionalAuth(validator JWTValidator) gin.HandlerFunc {
	return func(c *gin.Context) {
		if token, ok := bearerToken(c.GetHeader("Authorization")); ok {
			if user, err := validator.ValidateToken(token); err == nil && user != nil {
				setUser(c, user)
			}
		}
		c.Next()
	}
}

func bearerToken(header string) (string, bool) {
	parts := strings.SplitN(header, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "bearer") || parts[1] == "" {
		return "", false
	}
	return parts[1], true
}

func setUser(c *gin.Context, user *appctx.UserContext) {
	c.Request = c.Request.WithContext(appctx.WithUser(c.Request.Context(), user))
	c.Set("user_id", user.UserID)
}

func abortUnauthorized(c *gin.Context, message string) {
	_ = c.Error(apperror.NewUnauthorized(message))
	c.Abort()
}
