// Package cash implements the cash-register (caisse) ledger: registers, immutable
// movements, the withdrawal guard and the reconciliation report.
package cash

import (
	"database/sql/driver"
	"encoding/json"
	"errors"
	"fmt"

	"colisflow/internal/core/apperror"
)

// Category is the closed set of movement kinds. The stored amount is always a
// positive magnitude; the sign of its effect is derived from the category.
type Category string

const (
	CategoryReplenishment  Category = "replenishment"    // approvisionnement
	CategoryCashInCash     Category = "cash_in_cash"     // entrée de caisse, espèces
	CategoryCashInCheck    Category = "cash_in_check"    // entrée de caisse, chèque
	CategoryCashInTransfer Category = "cash_in_transfer" // entrée de caisse, virement
	CategoryDisbursement   Category = "disbursement"     // décaissement
)

// Categories lists every category in report order.
var Categories = []Category{
	CategoryReplenishment,
	CategoryCashInCash,
	CategoryCashInCheck,
	CategoryCashInTransfer,
	CategoryDisbursement,
}

// ErrUnknownCategory is wrapped by every error caused by a value outside Categories.
var ErrUnknownCategory = errors.New("unknown cash movement category")

// Direction is the effect of a movement on the register balance.
type Direction int

const (
	DirectionIn Direction = iota + 1
	DirectionOut
)

func (d Direction) String() string {
	switch d {
	case DirectionIn:
		return "in"
	case DirectionOut:
		return "out"
	default:
		return "unknown"
	}
}

// ParseCategory converts a stored or user supplied value into a Category.
func ParseCategory(s string) (Category, error) {
	c := Category(s)
	if !c.Valid() {
		return "", unknownCategory(s)
	}
	return c, nil
}

func unknownCategory(v string) *apperror.AppError {
	return apperror.NewValidation("unknown movement category").
		WithDetail("value", v).
		WithCause(ErrUnknownCategory)
}

// Valid reports whether c belongs to the closed set.
func (c Category) Valid() bool {
	switch c {
	case CategoryReplenishment, CategoryCashInCash, CategoryCashInCheck,
		CategoryCashInTransfer, CategoryDisbursement:
		return true
	}
	return false
}

// Direction returns the balance effect of c.
func (c Category) Direction() (Direction, error) {
	switch c {
	case CategoryReplenishment, CategoryCashInCash, CategoryCashInCheck, CategoryCashInTransfer:
		return DirectionIn, nil
	case CategoryDisbursement:
		return DirectionOut, nil
	}
	return 0, unknownCategory(string(c))
}

// IsCashIn reports whether c is one of the three cash-in settlement modes.
func (c Category) IsCashIn() bool {
	return c == CategoryCashInCash || c == CategoryCashInCheck || c == CategoryCashInTransfer
}

// NumberPrefix is the prefix of the movement's sequential number.
func (c Category) NumberPrefix() string {
	switch {
	case c == CategoryReplenishment:
		return "APR"
	case c.IsCashIn():
		return "ENC"
	default:
		return "DEC"
	}
}

// Scan implements sql.Scanner; unknown stored values fail the row.
func (c *Category) Scan(src any) error {
	var s string
	switch v := src.(type) {
	case string:
		s = v
	case []byte:
		s = string(v)
	case nil:
		return fmt.Errorf("scan category: %w", ErrUnknownCategory)
	default:
		return fmt.Errorf("scan category from %T", src)
	}
	parsed, err := ParseCategory(s)
	if err != nil {
		return err
	}
	*c = parsed
	return nil
}

// Value implements driver.Valuer.
func (c Category) Value() (driver.Value, error) {
	if !c.Valid() {
		return nil, unknownCategory(string(c))
	}
	return string(c), nil
}

// UnmarshalJSON rejects unknown categories at decode time.
func (c *Category) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	parsed, err := ParseCategory(s)
	if err != nil {
		return err
	}
	*c = parsed
	return nil
}
