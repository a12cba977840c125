package postgres

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"colisflow/internal/core/apperror"
)

// IdempotencyStatus represents the state of an idempotent operation.
type IdempotencyStatus string

const (
	IdempotencyStatusPending IdempotencyStatus = "pending"
	IdempotencyStatusSuccess IdempotencyStatus = "success"
	IdempotencyStatusFailed  IdempotencyStatus = "failed"
)

// stalePendingAfter is how long a pending key may sit before another request reclaims it.
const stalePendingAfter = time.Minute

// IdempotencyRecord stores the result of an idempotent operation.
type IdempotencyRecord struct {
	Key         string            `db:"idempotency_key"`
	UserID      string            `db:"user_id"`
	Operation   string            `db:"operation"`
	Status      IdempotencyStatus `db:"status"`
	RequestHash string            `db:"request_hash"`
	Response    []byte            `db:"response"`
	StatusCode  int               `db:"response_status"`
	ContentType string            `db:"response_content_type"`
	UpdatedAt   time.Time         `db:"updated_at"`
}

// IdempotencyReplay is the cached HTTP response for replay.
type IdempotencyReplay struct {
	StatusCode  int
	ContentType string
	Body        []byte
}

// IdempotencyStore manages X-Idempotency-Key records for movement writes, so a
// retried POST cannot record the same cash movement twice.
type IdempotencyStore struct {
	txManager *TxManager
	ttl       time.Duration
}

// NewIdempotencyStore creates a new idempotency store.
func NewIdempotencyStore(txManager *TxManager, ttl time.Duration) *IdempotencyStore {
	return &IdempotencyStore{txManager: txManager, ttl: ttl}
}

// AcquireKey attempts to acquire an idempotency key.
// Returns:
//   - (nil, nil) if the key was acquired and the request should run
//   - (replay, nil) if the operation already completed
//   - (nil, err) if the key is in flight or was used for a different request
func (s *IdempotencyStore) AcquireKey(ctx context.Context, key, userID, operation, requestHash string) (*IdempotencyReplay, error) {
	now := time.Now().UTC()

	var (
		record   IdempotencyRecord
		inserted bool
	)
	err := s.txManager.GetQuerier(ctx).QueryRow(ctx, `
		INSERT INTO sys_idempotency (idempotency_key, user_id, operation, status, request_hash, created_at, updated_at, expires_at)
		VALUES ($1, $2, $3, $4, $5, $6, $6, $7)
		ON CONFLICT (idempotency_key) DO UPDATE SET
			expires_at = GREATEST(sys_idempotency.expires_at, EXCLUDED.expires_at)
		RETURNING user_id, operation, status, request_hash, response,
			response_status, response_content_type, updated_at, (xmax = 0) AS inserted
	`, key, userID, operation, IdempotencyStatusPending, requestHash, now, now.Add(s.ttl)).Scan(
		&record.UserID, &record.Operation, &record.Status, &record.RequestHash,
		&record.Response, &record.StatusCode, &record.ContentType, &record.UpdatedAt, &inserted,
	)
	if err != nil {
		return nil, fmt.Errorf("acquire idempotency key: %w", err)
	}

	if inserted {
		return nil, nil
	}

	if record.UserID != userID || record.Operation != operation || record.RequestHash != requestHash {
		return nil, apperror.NewIdempotencyMismatch(key).
			WithDetail("stored_operation", record.Operation).
			WithDetail("request_operation", operation)
	}

	switch record.Status {
	case IdempotencyStatusSuccess, IdempotencyStatusFailed:
		return &IdempotencyReplay{
			StatusCode:  normalizeReplayStatus(record.StatusCode),
			ContentType: normalizeReplayContentType(record.ContentType),
			Body:        record.Response,
		}, nil
	}

	if now.Sub(record.UpdatedAt) <= stalePendingAfter {
		return nil, apperror.NewIdempotencyConflict(key)
	}

	// The owner likely crashed; reclaim unless another request beat us to it.
	tag, err := s.txManager.GetQuerier(ctx).Exec(ctx, `
		UPDATE sys_idempotency
		SET updated_at = $1
		WHERE idempotency_key = $2 AND status = $3 AND updated_at = $4
	`, now, key, IdempotencyStatusPending, record.UpdatedAt)
	if err != nil {
		return nil, fmt.Errorf("reclaim stale key: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return nil, apperror.NewIdempotencyConflict(key)
	}
	return nil, nil
}

// CompleteKey stores the successful response for replay.
func (s *IdempotencyStore) CompleteKey(ctx context.Context, key string, statusCode int, contentType string, response any) error {
	body, err := json.Marshal(response)
	if err != nil {
		return fmt.Errorf("marshal response: %w", err)
	}
	return s.finish(ctx, key, IdempotencyStatusSuccess, statusCode, contentType, body)
}

// FailKey stores an error response for replay.
func (s *IdempotencyStore) FailKey(ctx context.Context, key string, statusCode int, contentType string, body []byte) error {
	return s.finish(ctx, key, IdempotencyStatusFailed, statusCode, contentType, body)
}

// ReleaseKey forgets a pending key so the client may retry, used after a
// server-side failure that should not be replayed.
func (s *IdempotencyStore) ReleaseKey(ctx context.Context, key string) error {
	_, err := s.txManager.GetQuerier(ctx).Exec(ctx,
		`DELETE FROM sys_idempotency WHERE idempotency_key = $1 AND status = $2`,
		key, IdempotencyStatusPending)
	if err != nil {
		return fmt.Errorf("release idempotency key: %w", err)
	}
	return nil
}

func (s *IdempotencyStore) finish(ctx context.Context, key string, status IdempotencyStatus, statusCode int, contentType string, body []byte) error {
	_, err := s.txManager.GetQuerier(ctx).Exec(ctx, `
		UPDATE sys_idempotency
		SET status = $1,
		    response = $2,
		    response_status = $3,
		    response_content_type = $4,
		    updated_at = $5
		WHERE idempotency_key = $6
	`, status, body, statusCode, contentType, time.Now().UTC(), key)
	if err != nil {
		return fmt.Errorf("finish idempotency key: %w", err)
	}
	return nil
}

func normalizeReplayStatus(status int) int {
	if status == 0 {
		return http.StatusOK
	}
	return status
}

func normalizeReplayContentType(ct string) string {
	if ct == "" {
		return "application/json"
	}
	return ct
}

// CleanupExpired removes expired idempotency records.
func (s *IdempotencyStore) CleanupExpired(ctx context.Context) (int64, error) {
	result, err := s.txManager.GetQuerier(ctx).Exec(ctx,
		`DELETE FROM sys_idempotency WHERE expires_at < $1`, time.Now().UTC())
	if err != nil {
		return 0, err
	}
	return result.RowsAffected(), nil
}
