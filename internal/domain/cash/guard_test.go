package cash

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"colisflow/internal/core/apperror"
	"colisflow/internal/core/types"
)

func TestCanWithdraw(t *testing.T) {
	balance := types.MustMoney("50000")

	tests := []struct {
		name      string
		requested string
		want      bool
		wantErr   bool
	}{
		{"equal to balance", "50000", true, false},
		{"below balance", "49999.99", true, false},
		{"one cent above", "50000.01", false, false},
		{"one unit above", "50001", false, false},
		{"zero", "0", false, true},
		{"negative", "-10", false, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ok, err := CanWithdraw(types.MustMoney(tt.requested), balance)
			if tt.wantErr {
				require.Error(t, err)
				appErr, isApp := apperror.AsAppError(err)
				require.True(t, isApp)
				assert.Equal(t, apperror.CodeValidation, appErr.Code)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, ok)
		})
	}
}

func TestCanWithdraw_ZeroIsValidationEvenOnEmptyRegister(t *testing.T) {
	_, err := CanWithdraw(types.Zero(), types.Zero())
	assert.False(t, apperror.IsInsufficientBalance(err))
	assert.Error(t, err)
}
