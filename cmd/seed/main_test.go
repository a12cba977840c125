package main

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"colisflow/internal/domain/parcel"
)

func TestDemoParcelRows(t *testing.T) {
	now := time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)
	rows := demoParcelRows(5, now)
	require.Len(t, rows, 5)

	for i, row := range rows {
		require.Len(t, row, len(parcelColumns))
		assert.Equal(t, demoReference(i+1), row[1])
		assert.True(t, parcel.Status(row[5].(string)).Valid())
		assert.Positive(t, row[4].(float64))
	}
	assert.Equal(t, "DEMO-00001", rows[0][1])
	assert.Equal(t, now, rows[4][6])
}
