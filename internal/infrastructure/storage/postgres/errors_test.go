package postgres

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"colisflow/internal/core/apperror"
)

func TestMapError(t *testing.T) {
	tests := []struct {
		name   string
		err    error
		status int
	}{
		{"unique", &pgconn.PgError{Code: pgUniqueViolation, ConstraintName: "cash_registers_code_key"}, http.StatusConflict},
		{"fk", fmt.Errorf("wrapped: %w", &pgconn.PgError{Code: pgForeignKeyViolation}), http.StatusConflict},
		{"check", &pgconn.PgError{Code: pgCheckViolation}, http.StatusBadRequest},
		{"timeout", &pgconn.PgError{Code: pgQueryCanceled}, http.StatusInternalServerError},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := MapError("cash register", "insert", tt.err)
			require.Error(t, err)
			_, ok := apperror.AsAppError(err)
			require.True(t, ok)
			assert.Equal(t, tt.status, apperror.GetHTTPStatus(err))
		})
	}
}

func TestMapError_Passthrough(t *testing.T) {
	assert.NoError(t, MapError("x", "insert", nil))

	base := errors.New("conn reset")
	err := MapError("parcel", "select", base)
	assert.ErrorIs(t, err, base)
	_, ok := apperror.AsAppError(err)
	assert.False(t, ok)
}
