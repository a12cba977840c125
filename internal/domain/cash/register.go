package cash

import (
	"strings"
	"time"

	"colisflow/internal/core/apperror"
	"colisflow/internal/core/id"
	"colisflow/internal/core/types"
)

// Register is a till (caisse), optionally attached to an agency.
type Register struct {
	ID              id.ID       `db:"id" json:"id"`
	Code            string      `db:"code" json:"code"`
	Name            string      `db:"name" json:"name"`
	AgencyID        *id.ID      `db:"agency_id" json:"agencyId,omitempty"`
	OpeningBalance  types.Money `db:"opening_balance" json:"openingBalance"`
	MinBalanceAlert types.Money `db:"min_balance_alert" json:"minBalanceAlert"`
	CreatedAt       time.Time   `db:"created_at" json:"createdAt"`
	UpdatedAt       time.Time   `db:"updated_at" json:"updatedAt"`
}

// NewRegister creates a register; the code may be empty and assigned later.
func NewRegister(code, name string, opening, minAlert types.Money) *Register {
	return &Register{
		ID:              id.New(),
		Code:            strings.TrimSpace(code),
		Name:            strings.TrimSpace(name),
		OpeningBalance:  opening,
		MinBalanceAlert: minAlert,
	}
}

// Validate checks register fields.
func (r *Register) Validate() error {
	if r.Name == "" {
		return apperror.NewValidation("name is required").WithDetail("field", "name")
	}
	if len(r.Name) > 150 {
		return apperror.NewValidation("name is too long").WithDetail("field", "name").WithDetail("max", 150)
	}
	if len(r.Code) > 30 {
		return apperror.NewValidation("code is too long").WithDetail("field", "code").WithDetail("max", 30)
	}
	if r.OpeningBalance.IsNegative() {
		return apperror.NewValidation("opening balance cannot be negative").WithDetail("field", "openingBalance")
	}
	if r.MinBalanceAlert.IsNegative() {
		return apperror.NewValidation("minimum balance alert cannot be negative").WithDetail("field", "minBalanceAlert")
	}
	return nil
}

// Balance is the computed state of a register.
type Balance struct {
	RegisterID      id.ID       `json:"registerId"`
	RegisterCode    string      `json:"registerCode"`
	OpeningBalance  types.Money `json:"openingBalance"`
	TotalEntries    types.Money `json:"totalEntries"`
	TotalExits      types.Money `json:"totalExits"`
	Current         types.Money `json:"current"`
	MinBalanceAlert types.Money `json:"minBalanceAlert"`
	BelowAlert      bool        `json:"belowAlert"`
}

func newBalance(reg *Register, totals Totals) Balance {
	current := reg.OpeningBalance.Add(totals.NetBalance)
	return Balance{
		RegisterID:      reg.ID,
		RegisterCode:    reg.Code,
		OpeningBalance:  reg.OpeningBalance,
		TotalEntries:    totals.TotalEntries,
		TotalExits:      totals.TotalExits,
		Current:         current,
		MinBalanceAlert: reg.MinBalanceAlert,
		BelowAlert:      reg.MinBalanceAlert.IsPositive() && current.LessThan(reg.MinBalanceAlert),
	}
}
