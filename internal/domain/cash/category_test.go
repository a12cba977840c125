package cash

import (
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"colisflow/internal/core/apperror"
)

func TestParseCategory(t *testing.T) {
	for _, c := range Categories {
		parsed, err := ParseCategory(string(c))
		require.NoError(t, err)
		assert.Equal(t, c, parsed)
	}

	_, err := ParseCategory("cash_in")
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrUnknownCategory))

	appErr, ok := apperror.AsAppError(err)
	require.True(t, ok)
	assert.Equal(t, apperror.CodeValidation, appErr.Code)
}

func TestCategory_Direction(t *testing.T) {
	tests := []struct {
		category Category
		want     Direction
	}{
		{CategoryReplenishment, DirectionIn},
		{CategoryCashInCash, DirectionIn},
		{CategoryCashInCheck, DirectionIn},
		{CategoryCashInTransfer, DirectionIn},
		{CategoryDisbursement, DirectionOut},
	}
	for _, tt := range tests {
		t.Run(string(tt.category), func(t *testing.T) {
			got, err := tt.category.Direction()
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}

	_, err := Category("refund").Direction()
	assert.ErrorIs(t, err, ErrUnknownCategory)
}

func TestCategory_NumberPrefix(t *testing.T) {
	assert.Equal(t, "APR", CategoryReplenishment.NumberPrefix())
	assert.Equal(t, "ENC", CategoryCashInCheck.NumberPrefix())
	assert.Equal(t, "DEC", CategoryDisbursement.NumberPrefix())
}

func TestCategory_Scan(t *testing.T) {
	var c Category
	require.NoError(t, c.Scan([]byte("cash_in_transfer")))
	assert.Equal(t, CategoryCashInTransfer, c)

	assert.ErrorIs(t, c.Scan("withdrawal"), ErrUnknownCategory)
	assert.ErrorIs(t, c.Scan(nil), ErrUnknownCategory)
	assert.Error(t, c.Scan(42))
}

func TestCategory_JSON(t *testing.T) {
	var payload struct {
		Category Category `json:"category"`
	}
	require.NoError(t, json.Unmarshal([]byte(`{"category":"disbursement"}`), &payload))
	assert.Equal(t, CategoryDisbursement, payload.Category)

	err := json.Unmarshal([]byte(`{"category":"DISBURSEMENT"}`), &payload)
	assert.ErrorIs(t, err, ErrUnknownCategory)
}
