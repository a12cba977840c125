package cash

import (
	"time"

	"colisflow/internal/core/apperror"
	"colisflow/internal/core/id"
	"colisflow/internal/core/types"
)

// Settlement carries the mode-specific references of a movement.
type Settlement struct {
	ReceiptNumber     string `db:"receipt_number" json:"receiptNumber,omitempty"`
	CheckNumber       string `db:"check_number" json:"checkNumber,omitempty"`
	Bank              string `db:"bank" json:"bank,omitempty"`
	TransferReference string `db:"transfer_reference" json:"transferReference,omitempty"`
}

// Movement is one immutable ledger entry (mouvement de caisse).
type Movement struct {
	ID         id.ID       `db:"id" json:"id"`
	Number     string      `db:"number" json:"number"`
	RegisterID id.ID       `db:"register_id" json:"registerId"`
	Category   Category    `db:"category" json:"category"`
	Date       time.Time   `db:"movement_date" json:"date"`
	Amount     types.Money `db:"amount" json:"amount"`
	Label      string      `db:"label" json:"label"`

	Settlement

	// ParcelID is a soft link: set only when the reference resolved at recording time.
	ParcelID        *id.ID `db:"parcel_id" json:"parcelId,omitempty"`
	ParcelReference string `db:"parcel_reference" json:"parcelReference,omitempty"`
	ClientName      string `db:"client_name" json:"clientName,omitempty"`

	CreatedBy string `db:"created_by" json:"createdBy"`

	// BalanceAfter is a display snapshot, never used to compute balances.
	BalanceAfter types.Money `db:"balance_after" json:"balanceAfter"`

	CreatedAt time.Time `db:"created_at" json:"createdAt"`
	UpdatedAt time.Time `db:"updated_at" json:"updatedAt"`
}

func newMovement(registerID id.ID, category Category, amount types.Money, date time.Time, label string) *Movement {
	return &Movement{
		ID:         id.New(),
		RegisterID: registerID,
		Category:   category,
		Date:       date,
		Amount:     amount,
		Label:      label,
	}
}

// Signed returns the amount with the sign derived from the category.
func (m *Movement) Signed() (types.Money, error) {
	dir, err := m.Category.Direction()
	if err != nil {
		return types.Zero(), err
	}
	if dir == DirectionOut {
		return m.Amount.Neg(), nil
	}
	return m.Amount, nil
}

// Validate checks the movement invariants before persistence.
func (m *Movement) Validate() error {
	if id.IsNil(m.RegisterID) {
		return apperror.NewValidation("register is required").WithDetail("field", "registerId")
	}
	if !m.Category.Valid() {
		return unknownCategory(string(m.Category))
	}
	if err := validateAmount(m.Amount); err != nil {
		return err
	}
	if m.Date.IsZero() {
		return apperror.NewValidation("movement date is required").WithDetail("field", "date")
	}
	if len(m.Label) > 255 {
		return apperror.NewValidation("label is too long").WithDetail("field", "label").WithDetail("max", 255)
	}
	return nil
}

func validateAmount(amount types.Money) error {
	if !amount.IsPositive() {
		return apperror.NewValidation("amount must be positive").
			WithDetail("field", "amount").
			WithDetail("value", amount.String())
	}
	if !types.HasValidScale(amount) {
		return apperror.NewValidation("amount has too many decimal places").
			WithDetail("field", "amount").
			WithDetail("scale", types.MoneyScale)
	}
	return nil
}

// MovementFilter selects movements for listing and reports.
// From is inclusive, To is exclusive.
type MovementFilter struct {
	RegisterID *id.ID
	Category   *Category
	From       *time.Time
	To         *time.Time
	Limit      int
	Offset     int
}
