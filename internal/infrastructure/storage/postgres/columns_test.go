package postgres

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"colisflow/internal/core/id"
	"colisflow/internal/core/types"
	"colisflow/internal/domain/cash"
)

func TestExtractDBColumns_FlattensSettlement(t *testing.T) {
	cols := ExtractDBColumns[cash.Movement]()

	for _, expected := range []string{
		"id", "number", "register_id", "category", "movement_date", "amount",
		"receipt_number", "check_number", "bank", "transfer_reference",
		"parcel_id", "created_by", "balance_after",
	} {
		assert.Contains(t, cols, expected)
	}
}

func TestStructToMap_Movement(t *testing.T) {
	regID := id.New()
	m := cash.Movement{
		ID:         id.New(),
		Number:     "ENC-2024-00001",
		RegisterID: regID,
		Category:   cash.CategoryCashInCheck,
		Amount:     types.MustMoney("1500.00"),
		Settlement: cash.Settlement{CheckNumber: "CHK-9", Bank: "BOA"},
		CreatedBy:  "awa",
	}

	got := StructToMap(&m)
	require.NotNil(t, got)
	assert.Equal(t, regID, got["register_id"])
	assert.Equal(t, cash.CategoryCashInCheck, got["category"])
	assert.Equal(t, "CHK-9", got["check_number"])
	assert.Equal(t, "BOA", got["bank"])
	assert.Nil(t, got["parcel_id"])
	assert.Len(t, got, len(ExtractDBColumns[cash.Movement]()))
}

func TestStructToMap_NonStruct(t *testing.T) {
	assert.Nil(t, StructToMap(42))
}
