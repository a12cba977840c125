// Package parcel_repo provides the PostgreSQL implementation of parcel.Repository.
package parcel_repo

import (
	"context"
	"fmt"
	"strings"

	"github.com/Masterminds/squirrel"
	"github.com/georgysavva/scany/v2/pgxscan"

	"colisflow/internal/core/apperror"
	"colisflow/internal/core/id"
	"colisflow/internal/domain/parcel"
	"colisflow/internal/infrastructure/storage/postgres"
)

const tableName = "parcels"

var _ parcel.Repository = (*Repo)(nil)

// Repo stores parcels.
type Repo struct {
	txm  *postgres.TxManager
	cols []string
}

// NewRepo creates a new parcel repository.
func NewRepo(txm *postgres.TxManager) *Repo {
	return &Repo{txm: txm, cols: postgres.ExtractDBColumns[parcel.Parcel]()}
}

// Create inserts a parcel.
func (r *Repo) Create(ctx context.Context, p *parcel.Parcel) error {
	data := postgres.StructToMap(p)
	delete(data, "created_at")
	delete(data, "updated_at")

	sql, args, err := postgres.Builder().
		Insert(tableName).
		SetMap(data).
		Suffix("RETURNING created_at, updated_at").
		ToSql()
	if err != nil {
		return fmt.Errorf("build insert: %w", err)
	}
	if err := r.txm.GetQuerier(ctx).QueryRow(ctx, sql, args...).Scan(&p.CreatedAt, &p.UpdatedAt); err != nil {
		return postgres.MapError("parcel", "insert", err)
	}
	return nil
}

// GetByID retrieves a parcel by ID.
func (r *Repo) GetByID(ctx context.Context, parcelID id.ID) (*parcel.Parcel, error) {
	return r.getOne(ctx, squirrel.Eq{"id": parcelID}, parcelID.String())
}

// GetByReference retrieves a parcel by its normalized reference.
func (r *Repo) GetByReference(ctx context.Context, reference string) (*parcel.Parcel, error) {
	return r.getOne(ctx, squirrel.Eq{"reference": reference}, reference)
}

func (r *Repo) getOne(ctx context.Context, where squirrel.Sqlizer, key string) (*parcel.Parcel, error) {
	sql, args, err := postgres.Builder().
		Select(r.cols...).
		From(tableName).
		Where(where).
		Limit(1).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	var p parcel.Parcel
	if err := pgxscan.Get(ctx, r.txm.GetQuerier(ctx), &p, sql, args...); err != nil {
		if pgxscan.NotFound(err) {
			return nil, apperror.NewNotFound("parcel", key)
		}
		return nil, postgres.MapError("parcel", "select", err)
	}
	return &p, nil
}

// List returns parcels newest first.
func (r *Repo) List(ctx context.Context, filter parcel.ListFilter) ([]*parcel.Parcel, error) {
	sql, args, err := listQuery(r.cols, filter).ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	var items []*parcel.Parcel
	if err := pgxscan.Select(ctx, r.txm.GetQuerier(ctx), &items, sql, args...); err != nil {
		return nil, postgres.MapError("parcel", "select", err)
	}
	return items, nil
}

func listQuery(cols []string, filter parcel.ListFilter) squirrel.SelectBuilder {
	q := postgres.Builder().
		Select(cols...).
		From(tableName).
		OrderBy("created_at DESC", "id DESC")

	if s := strings.TrimSpace(filter.Search); s != "" {
		pattern := "%" + s + "%"
		q = q.Where(squirrel.Or{
			squirrel.ILike{"reference": pattern},
			squirrel.ILike{"client_name": pattern},
		})
	}
	if filter.Status != nil {
		q = q.Where(squirrel.Eq{"status": string(*filter.Status)})
	}
	if filter.Limit > 0 {
		q = q.Limit(uint64(filter.Limit))
	}
	if filter.Offset > 0 {
		q = q.Offset(uint64(filter.Offset))
	}
	return q
}
