package postgres

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/Masterminds/squirrel"
	"github.com/georgysavva/scany/v2/pgxscan"
	"github.com/klauspost/compress/zstd"

	"colisflow/internal/domain/audit"
)

const auditTable = "sys_audit"

// CompressionAlgo specifies how the details column is stored.
type CompressionAlgo string

const (
	CompressionNone CompressionAlgo = "none"
	CompressionZstd CompressionAlgo = "zstd"
)

// DefaultCompressThreshold is the details size above which zstd is used.
const DefaultCompressThreshold = 10 * 1024

var _ audit.Store = (*AuditStore)(nil)

// auditRow is the storage shape of audit.Entry.
type auditRow struct {
	audit.Entry
	Details           []byte          `db:"details"`
	DetailsCompressed []byte          `db:"details_compressed"`
	CompressionAlgo   CompressionAlgo `db:"compression_algo"`
}

// AuditStore appends audit entries to sys_audit. It never updates or deletes.
type AuditStore struct {
	txManager         *TxManager
	encoder           *zstd.Encoder
	decoder           *zstd.Decoder
	compressThreshold int
	cols              []string
}

// NewAuditStore creates a store. threshold <= 0 selects DefaultCompressThreshold.
func NewAuditStore(txManager *TxManager, threshold int) (*AuditStore, error) {
	encoder, err := zstd.NewWriter(nil, zstd.WithEncoderLevel(zstd.SpeedDefault))
	if err != nil {
		return nil, fmt.Errorf("create zstd encoder: %w", err)
	}

	decoder, err := zstd.NewReader(nil)
	if err != nil {
		return nil, fmt.Errorf("create zstd decoder: %w", err)
	}

	if threshold <= 0 {
		threshold = DefaultCompressThreshold
	}

	return &AuditStore{
		txManager:         txManager,
		encoder:           encoder,
		decoder:           decoder,
		compressThreshold: threshold,
		cols:              ExtractDBColumns[auditRow](),
	}, nil
}

// Save inserts one entry. Details larger than the threshold are zstd-compressed.
func (s *AuditStore) Save(ctx context.Context, e *audit.Entry) error {
	row, err := s.encode(e)
	if err != nil {
		return err
	}

	sql, args, err := Builder().
		Insert(auditTable).
		SetMap(StructToMap(row)).
		ToSql()
	if err != nil {
		return fmt.Errorf("build insert: %w", err)
	}

	if _, err := s.txManager.GetQuerier(ctx).Exec(ctx, sql, args...); err != nil {
		return MapError("audit entry", "insert", err)
	}
	return nil
}

// List returns entries newest first, decompressing details as needed.
func (s *AuditStore) List(ctx context.Context, filter audit.Filter) ([]audit.Entry, error) {
	sql, args, err := auditListQuery(s.cols, filter).ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	var rows []auditRow
	if err := pgxscan.Select(ctx, s.txManager.GetQuerier(ctx), &rows, sql, args...); err != nil {
		return nil, MapError("audit entry", "select", err)
	}

	entries := make([]audit.Entry, 0, len(rows))
	for i := range rows {
		e, err := s.decode(&rows[i])
		if err != nil {
			return nil, err
		}
		entries = append(entries, e)
	}
	return entries, nil
}

func (s *AuditStore) encode(e *audit.Entry) (*auditRow, error) {
	row := &auditRow{Entry: *e, CompressionAlgo: CompressionNone}
	if e.Details == nil {
		return row, nil
	}

	raw, err := json.Marshal(e.Details)
	if err != nil {
		return nil, fmt.Errorf("marshal audit details: %w", err)
	}
	if len(raw) > s.compressThreshold {
		row.DetailsCompressed = s.encoder.EncodeAll(raw, nil)
		row.CompressionAlgo = CompressionZstd
		return row, nil
	}
	row.Details = raw
	return row, nil
}

func (s *AuditStore) decode(row *auditRow) (audit.Entry, error) {
	e := row.Entry
	raw := row.Details
	if row.CompressionAlgo == CompressionZstd && len(row.DetailsCompressed) > 0 {
		decompressed, err := s.decoder.DecodeAll(row.DetailsCompressed, nil)
		if err != nil {
			return e, fmt.Errorf("decompress audit %s: %w", e.ID, err)
		}
		raw = decompressed
	}
	if len(raw) > 0 {
		if err := json.Unmarshal(raw, &e.Details); err != nil {
			return e, fmt.Errorf("unmarshal audit %s: %w", e.ID, err)
		}
	}
	return e, nil
}

func auditListQuery(cols []string, f audit.Filter) squirrel.SelectBuilder {
	q := Builder().
		Select(cols...).
		From(auditTable).
		OrderBy("created_at DESC", "id DESC")

	if f.UserID != "" {
		q = q.Where(squirrel.Eq{"user_id": f.UserID})
	}
	if f.Entity != "" {
		q = q.Where(squirrel.Eq{"entity": f.Entity})
	}
	if f.EntityID != "" {
		q = q.Where(squirrel.Eq{"entity_id": f.EntityID})
	}
	if f.Action != "" {
		q = q.Where(squirrel.Eq{"action": string(f.Action)})
	}
	if f.Outcome != "" {
		q = q.Where(squirrel.Eq{"outcome": string(f.Outcome)})
	}
	if f.From != nil {
		q = q.Where(squirrel.GtOrEq{"created_at": *f.From})
	}
	if f.To != nil {
		q = q.Where(squirrel.Lt{"created_at": *f.To})
	}
	if f.Limit > 0 {
		q = q.Limit(uint64(f.Limit))
	}
	if f.Offset > 0 {
		q = q.Offset(uint64(f.Offset))
	}
	return q
}
