package cash

import (
	"colisflow/internal/core/apperror"
	"colisflow/internal/core/types"
)

// Totals is the aggregate of a set of movements. NetBalance is the period
// delta; the register balance adds the opening balance on top.
type Totals struct {
	TotalEntries types.Money `json:"totalEntries"`
	TotalExits   types.Money `json:"totalExits"`
	NetBalance   types.Money `json:"netBalance"`
}

// CategoryTotal is a pre-aggregated sum, as returned by the repository.
type CategoryTotal struct {
	Category Category    `db:"category"`
	Amount   types.Money `db:"amount"`
	Count    int64       `db:"movement_count"`
}

// Ledger accumulates movements. The zero value is ready to use.
type Ledger struct {
	entries    types.Money
	exits      types.Money
	byCategory map[Category]types.Money
	count      int64
}

// Add folds one amount of the given category. Unknown categories and negative
// amounts are rejected and leave the ledger unchanged.
func (l *Ledger) Add(c Category, amount types.Money) error {
	dir, err := c.Direction()
	if err != nil {
		return err
	}
	if amount.IsNegative() {
		return apperror.NewValidation("movement amount cannot be negative").
			WithDetail("category", string(c)).
			WithDetail("value", amount.String())
	}

	if l.byCategory == nil {
		l.byCategory = make(map[Category]types.Money, len(Categories))
	}
	switch dir {
	case DirectionIn:
		l.entries = l.entries.Add(amount)
	case DirectionOut:
		l.exits = l.exits.Add(amount)
	}
	l.byCategory[c] = l.byCategory[c].Add(amount)
	return nil
}

// Totals returns the current aggregate.
func (l *Ledger) Totals() Totals {
	return Totals{
		TotalEntries: l.entries,
		TotalExits:   l.exits,
		NetBalance:   l.entries.Sub(l.exits),
	}
}

// Category returns the accumulated amount for c (zero when absent).
func (l *Ledger) Category(c Category) types.Money {
	return l.byCategory[c]
}

// Count is the number of movements folded through AddMovement.
func (l *Ledger) Count() int64 {
	return l.count
}

// AddMovement folds one movement.
func (l *Ledger) AddMovement(m *Movement) error {
	if err := l.Add(m.Category, m.Amount); err != nil {
		return apperror.NewValidation("invalid movement in ledger").
			WithDetail("movement_id", m.ID.String()).
			WithCause(err)
	}
	l.count++
	return nil
}

// Accumulate folds movements into entry/exit totals. The result does not depend
// on order and an empty list yields zero totals.
func Accumulate(movements []Movement) (Totals, error) {
	var l Ledger
	for i := range movements {
		if err := l.AddMovement(&movements[i]); err != nil {
			return Totals{}, err
		}
	}
	return l.Totals(), nil
}

// FoldTotals aggregates repository category sums with the same sign rules.
func FoldTotals(rows []CategoryTotal) (Totals, error) {
	var l Ledger
	for _, r := range rows {
		if err := l.Add(r.Category, r.Amount); err != nil {
			return Totals{}, err
		}
	}
	return l.Totals(), nil
}
