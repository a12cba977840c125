package types

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewMoneyFromString(t *testing.T) {
	m, err := NewMoneyFromString("1250.50")
	require.NoError(t, err)
	assert.True(t, m.Equal(MustMoney("1250.5")))

	_, err = NewMoneyFromString("12,5")
	assert.Error(t, err)
}

func TestSum(t *testing.T) {
	assert.True(t, Sum().IsZero())
	assert.True(t, Sum(MustMoney("0.1"), MustMoney("0.2")).Equal(MustMoney("0.3")))
}

func TestHasValidScale(t *testing.T) {
	assert.True(t, HasValidScale(MustMoney("10")))
	assert.True(t, HasValidScale(MustMoney("10.25")))
	assert.False(t, HasValidScale(MustMoney("10.255")))
}
