// Package cash_repo provides the PostgreSQL implementation of cash.Repository.
package cash_repo

import (
	"context"
	"fmt"

	"github.com/Masterminds/squirrel"
	"github.com/georgysavva/scany/v2/pgxscan"

	"colisflow/internal/core/apperror"
	"colisflow/internal/core/id"
	"colisflow/internal/domain/cash"
	"colisflow/internal/infrastructure/storage/postgres"
)

const (
	registersTable = "cash_registers"
	movementsTable = "cash_movements"
)

var _ cash.Repository = (*Repo)(nil)

// Repo stores registers and their movements.
type Repo struct {
	txm          *postgres.TxManager
	registerCols []string
	movementCols []string
}

// NewRepo creates a new cash repository.
func NewRepo(txm *postgres.TxManager) *Repo {
	return &Repo{
		txm:          txm,
		registerCols: postgres.ExtractDBColumns[cash.Register](),
		movementCols: postgres.ExtractDBColumns[cash.Movement](),
	}
}

// CreateRegister inserts a register.
func (r *Repo) CreateRegister(ctx context.Context, reg *cash.Register) error {
	sql, args, err := postgres.Builder().
		Insert(registersTable).
		SetMap(postgres.StructToMap(reg)).
		ToSql()
	if err != nil {
		return fmt.Errorf("build insert: %w", err)
	}
	if _, err := r.txm.GetQuerier(ctx).Exec(ctx, sql, args...); err != nil {
		return postgres.MapError("cash register", "insert", err)
	}
	return nil
}

// GetRegister retrieves a register by ID.
func (r *Repo) GetRegister(ctx context.Context, registerID id.ID) (*cash.Register, error) {
	return r.getRegister(ctx, registerID, false)
}

// GetRegisterForUpdate retrieves a register and holds its row lock until the
// surrounding transaction ends. Concurrent writers on the same register queue here.
func (r *Repo) GetRegisterForUpdate(ctx context.Context, registerID id.ID) (*cash.Register, error) {
	if r.txm.GetTx(ctx) == nil {
		return nil, apperror.NewInternal(fmt.Errorf("GetRegisterForUpdate requires transaction context"))
	}
	return r.getRegister(ctx, registerID, true)
}

func (r *Repo) getRegister(ctx context.Context, registerID id.ID, forUpdate bool) (*cash.Register, error) {
	q := postgres.Builder().
		Select(r.registerCols...).
		From(registersTable).
		Where(squirrel.Eq{"id": registerID})
	if forUpdate {
		q = q.Suffix("FOR UPDATE")
	}

	sql, args, err := q.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	var reg cash.Register
	if err := pgxscan.Get(ctx, r.txm.GetQuerier(ctx), &reg, sql, args...); err != nil {
		if pgxscan.NotFound(err) {
			return nil, apperror.NewNotFound("cash register", registerID.String())
		}
		return nil, postgres.MapError("cash register", "select", err)
	}
	return &reg, nil
}

// ListRegisters returns all registers ordered by code.
func (r *Repo) ListRegisters(ctx context.Context) ([]*cash.Register, error) {
	sql, args, err := postgres.Builder().
		Select(r.registerCols...).
		From(registersTable).
		OrderBy("code").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	var regs []*cash.Register
	if err := pgxscan.Select(ctx, r.txm.GetQuerier(ctx), &regs, sql, args...); err != nil {
		return nil, postgres.MapError("cash register", "select", err)
	}
	return regs, nil
}

// CreateMovement appends a movement.
func (r *Repo) CreateMovement(ctx context.Context, m *cash.Movement) error {
	sql, args, err := postgres.Builder().
		Insert(movementsTable).
		SetMap(postgres.StructToMap(m)).
		ToSql()
	if err != nil {
		return fmt.Errorf("build insert: %w", err)
	}
	if _, err := r.txm.GetQuerier(ctx).Exec(ctx, sql, args...); err != nil {
		return postgres.MapError("cash movement", "insert", err)
	}
	return nil
}

// GetMovement retrieves a movement by ID.
func (r *Repo) GetMovement(ctx context.Context, movementID id.ID) (*cash.Movement, error) {
	sql, args, err := postgres.Builder().
		Select(r.movementCols...).
		From(movementsTable).
		Where(squirrel.Eq{"id": movementID}).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	var m cash.Movement
	if err := pgxscan.Get(ctx, r.txm.GetQuerier(ctx), &m, sql, args...); err != nil {
		if pgxscan.NotFound(err) {
			return nil, apperror.NewNotFound("cash movement", movementID.String())
		}
		return nil, postgres.MapError("cash movement", "select", err)
	}
	return &m, nil
}

// ListMovements returns movements in ledger order (date, then insertion).
// A zero Limit returns every match.
func (r *Repo) ListMovements(ctx context.Context, filter cash.MovementFilter) ([]cash.Movement, error) {
	q := applyMovementFilter(
		postgres.Builder().Select(r.movementCols...).From(movementsTable),
		filter,
	).OrderBy("movement_date", "created_at", "id")

	if filter.Limit > 0 {
		q = q.Limit(uint64(filter.Limit))
	}
	if filter.Offset > 0 {
		q = q.Offset(uint64(filter.Offset))
	}

	sql, args, err := q.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	var items []cash.Movement
	if err := pgxscan.Select(ctx, r.txm.GetQuerier(ctx), &items, sql, args...); err != nil {
		return nil, postgres.MapError("cash movement", "select", err)
	}
	return items, nil
}

// CountMovements counts movements matching the filter, ignoring paging.
func (r *Repo) CountMovements(ctx context.Context, filter cash.MovementFilter) (int64, error) {
	sql, args, err := applyMovementFilter(
		postgres.Builder().Select("COUNT(*)").From(movementsTable),
		filter,
	).ToSql()
	if err != nil {
		return 0, fmt.Errorf("build query: %w", err)
	}

	var n int64
	if err := r.txm.GetQuerier(ctx).QueryRow(ctx, sql, args...).Scan(&n); err != nil {
		return 0, postgres.MapError("cash movement", "count", err)
	}
	return n, nil
}

// CategoryTotals sums amounts per category.
func (r *Repo) CategoryTotals(ctx context.Context, filter cash.TotalsFilter) ([]cash.CategoryTotal, error) {
	q := postgres.Builder().
		Select("category", "COALESCE(SUM(amount), 0) AS amount", "COUNT(*) AS movement_count").
		From(movementsTable).
		GroupBy("category").
		OrderBy("category")
	if filter.RegisterID != nil {
		q = q.Where(squirrel.Eq{"register_id": *filter.RegisterID})
	}
	if filter.Before != nil {
		q = q.Where(squirrel.Lt{"movement_date": *filter.Before})
	}

	sql, args, err := q.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	var rows []cash.CategoryTotal
	if err := pgxscan.Select(ctx, r.txm.GetQuerier(ctx), &rows, sql, args...); err != nil {
		return nil, postgres.MapError("cash movement", "aggregate", err)
	}
	return rows, nil
}

func applyMovementFilter(q squirrel.SelectBuilder, filter cash.MovementFilter) squirrel.SelectBuilder {
	if filter.RegisterID != nil {
		q = q.Where(squirrel.Eq{"register_id": *filter.RegisterID})
	}
	if filter.Category != nil {
		q = q.Where(squirrel.Eq{"category": string(*filter.Category)})
	}
	if filter.From != nil {
		q = q.Where(squirrel.GtOrEq{"movement_date": *filter.From})
	}
	if filter.To != nil {
		q = q.Where(squirrel.Lt{"movement_date": *filter.To})
	}
	return q
}
