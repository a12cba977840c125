package cash_repo

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"colisflow/internal/core/id"
	"colisflow/internal/domain/cash"
	"colisflow/internal/infrastructure/storage/postgres"
)

func TestApplyMovementFilter(t *testing.T) {
	regID := id.New()
	cat := cash.CategoryDisbursement
	from := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)
	to := from.AddDate(0, 1, 0)

	sql, args, err := applyMovementFilter(
		postgres.Builder().Select("id").From(movementsTable),
		cash.MovementFilter{RegisterID: &regID, Category: &cat, From: &from, To: &to},
	).ToSql()
	require.NoError(t, err)

	assert.Equal(t,
		"SELECT id FROM cash_movements WHERE register_id = $1 AND category = $2 AND movement_date >= $3 AND movement_date < $4",
		sql)
	assert.Equal(t, []any{regID.String(), "disbursement", from, to}, args)
}

func TestApplyMovementFilter_Empty(t *testing.T) {
	sql, args, err := applyMovementFilter(
		postgres.Builder().Select("id").From(movementsTable),
		cash.MovementFilter{},
	).ToSql()
	require.NoError(t, err)
	assert.Equal(t, "SELECT id FROM cash_movements", sql)
	assert.Empty(t, args)
}

func TestNewRepo_Columns(t *testing.T) {
	r := NewRepo(nil)
	assert.Contains(t, r.registerCols, "min_balance_alert")
	assert.Contains(t, r.movementCols, "transfer_reference")
	assert.NotContains(t, r.movementCols, "Settlement")
}
