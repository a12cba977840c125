// Package auth provides authentication and authorization domain logic.
package auth

import (
	"slices"
	"strings"
	"time"

	"colisflow/internal/core/apperror"
	"colisflow/internal/core/id"
)

// Permission strings checked by the HTTP layer.
const (
	PermRegisterRead   = "cash:register:read"
	PermRegisterCreate = "cash:register:create"
	PermMovementRead   = "cash:movement:read"
	PermMovementCreate = "cash:movement:create"
	PermReportRead     = "report:cash:read"
	PermAuditRead      = "audit:read"
	PermParcelRead     = "parcel:read"
	PermParcelCreate   = "parcel:create"
)

// Built-in roles.
const (
	RoleCashier    = "cashier"
	RoleAccountant = "accountant"
	RoleAuditor    = "auditor"
)

// RolePermissions maps each built-in role to the permissions it grants.
var RolePermissions = map[string][]string{
	RoleCashier: {
		PermRegisterRead, PermMovementRead, PermMovementCreate,
		PermParcelRead, PermParcelCreate,
	},
	RoleAccountant: {
		PermRegisterRead, PermRegisterCreate, PermMovementRead,
		PermReportRead, PermParcelRead,
	},
	RoleAuditor: {
		PermRegisterRead, PermMovementRead, PermReportRead, PermAuditRead,
	},
}

// User represents a back-office operator.
type User struct {
	ID           id.ID      `db:"id" json:"id"`
	Username     string     `db:"username" json:"username"`
	PasswordHash string     `db:"password_hash" json:"-"`
	FullName     string     `db:"full_name" json:"fullName,omitempty"`
	IsActive     bool       `db:"is_active" json:"isActive"`
	IsAdmin      bool       `db:"is_admin" json:"isAdmin"`
	Roles        []string   `db:"roles" json:"roles"`
	LastLoginAt  *time.Time `db:"last_login_at" json:"lastLoginAt,omitempty"`
	CreatedAt    time.Time  `db:"created_at" json:"createdAt"`
	UpdatedAt    time.Time  `db:"updated_at" json:"updatedAt"`
}

// NewUser creates an active user.
func NewUser(username, passwordHash string) *User {
	now := time.Now().UTC()
	return &User{
		ID:           id.New(),
		Username:     NormalizeUsername(username),
		PasswordHash: passwordHash,
		IsActive:     true,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
}

// NormalizeUsername trims and lowercases a login.
func NormalizeUsername(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

// Validate validates user data.
func (u *User) Validate() error {
	if u.Username == "" {
		return apperror.NewValidation("username is required").WithDetail("field", "username")
	}
	for _, r := range u.Roles {
		if _, ok := RolePermissions[r]; !ok {
			return apperror.NewValidation("unknown role").WithDetail("role", r)
		}
	}
	return nil
}

// CanLogin checks if user can login.
func (u *User) CanLogin() error {
	if !u.IsActive {
		return apperror.NewForbidden("account is disabled")
	}
	return nil
}

// Permissions flattens the user's roles into a sorted, de-duplicated list.
func (u *User) Permissions() []string {
	seen := make(map[string]struct{})
	var out []string
	for _, r := range u.Roles {
		for _, p := range RolePermissions[r] {
			if _, ok := seen[p]; ok {
				continue
			}
			seen[p] = struct{}{}
			out = append(out, p)
		}
	}
	slices.Sort(out)
	return out
}

// HasPermission checks if user has a specific permission.
func (u *User) HasPermission(perm string) bool {
	if u.IsAdmin {
		return true
	}
	return slices.Contains(u.Permissions(), perm)
}

// Credentials for login.
type Credentials struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// Token is an issued access token.
type Token struct {
	AccessToken string    `json:"accessToken"`
	ExpiresAt   time.Time `json:"expiresAt"`
	TokenType   string    `json:"tokenType"`
}
