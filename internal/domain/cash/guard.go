package cash

import (
	"colisflow/internal/core/apperror"
	"colisflow/internal/core/types"
)

// CanWithdraw reports whether requested can be taken from balance. Draining the
// register to exactly zero is allowed. A non-positive request is a validation
// error, raised before any comparison.
//
// The check alone is not atomic; Service.Disburse runs it under the register
// row lock.
func CanWithdraw(requested, balance types.Money) (bool, error) {
	if !requested.IsPositive() {
		return false, apperror.NewValidation("withdrawal amount must be positive").
			WithDetail("field", "amount").
			WithDetail("value", requested.String())
	}
	return requested.LessThanOrEqual(balance), nil
}
