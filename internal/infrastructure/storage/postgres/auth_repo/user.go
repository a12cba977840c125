// Package auth_repo provides the PostgreSQL implementation of auth.UserRepository.
package auth_repo

import (
	"context"
	"fmt"
	"time"

	"github.com/Masterminds/squirrel"
	"github.com/georgysavva/scany/v2/pgxscan"

	"colisflow/internal/core/apperror"
	"colisflow/internal/core/id"
	"colisflow/internal/domain/auth"
	"colisflow/internal/infrastructure/storage/postgres"
)

const usersTable = "users"

var _ auth.UserRepository = (*UserRepo)(nil)

// UserRepo stores operator accounts.
type UserRepo struct {
	txm  *postgres.TxManager
	cols []string
}

// NewUserRepo creates a new user repository.
func NewUserRepo(txm *postgres.TxManager) *UserRepo {
	return &UserRepo{txm: txm, cols: postgres.ExtractDBColumns[auth.User]()}
}

// Create inserts a user.
func (r *UserRepo) Create(ctx context.Context, user *auth.User) error {
	data := postgres.StructToMap(user)
	if user.Roles == nil {
		data["roles"] = []string{}
	}

	sql, args, err := postgres.Builder().
		Insert(usersTable).
		SetMap(data).
		ToSql()
	if err != nil {
		return fmt.Errorf("build insert: %w", err)
	}
	if _, err := r.txm.GetQuerier(ctx).Exec(ctx, sql, args...); err != nil {
		return postgres.MapError("user", "insert", err)
	}
	return nil
}

// GetByID retrieves a user by ID.
func (r *UserRepo) GetByID(ctx context.Context, userID id.ID) (*auth.User, error) {
	return r.getOne(ctx, squirrel.Eq{"id": userID}, userID.String())
}

// GetByUsername retrieves a user by login.
func (r *UserRepo) GetByUsername(ctx context.Context, username string) (*auth.User, error) {
	return r.getOne(ctx, squirrel.Eq{"username": username}, username)
}

func (r *UserRepo) getOne(ctx context.Context, where squirrel.Sqlizer, key string) (*auth.User, error) {
	sql, args, err := postgres.Builder().
		Select(r.cols...).
		From(usersTable).
		Where(where).
		Limit(1).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	var u auth.User
	if err := pgxscan.Get(ctx, r.txm.GetQuerier(ctx), &u, sql, args...); err != nil {
		if pgxscan.NotFound(err) {
			return nil, apperror.NewNotFound("user", key)
		}
		return nil, postgres.MapError("user", "select", err)
	}
	return &u, nil
}

// TouchLastLogin records a successful login.
func (r *UserRepo) TouchLastLogin(ctx context.Context, userID id.ID, at time.Time) error {
	sql, args, err := postgres.Builder().
		Update(usersTable).
		Set("last_login_at", at).
		Set("updated_at", at).
		Where(squirrel.Eq{"id": userID}).
		ToSql()
	if err != nil {
		return fmt.Errorf("build update: %w", err)
	}
	if _, err := r.txm.GetQuerier(ctx).Exec(ctx, sql, args...); err != nil {
		return postgres.MapError("user", "update", err)
	}
	return nil
}
