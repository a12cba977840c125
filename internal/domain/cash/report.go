package cash

import (
	"time"

	"colisflow/internal/core/apperror"
	"colisflow/internal/core/id"
	"colisflow/internal/core/types"
)

const dateLayout = "2006-01-02"

// OpeningPolicy decides how the opening balance of a report period is derived.
type OpeningPolicy string

const (
	// OpeningCumulative: register opening balance plus every movement dated
	// before the first day of the range.
	OpeningCumulative OpeningPolicy = "cumulative"
	// OpeningConfigured: the register's configured opening balance only.
	OpeningConfigured OpeningPolicy = "configured"
)

// ParseOpeningPolicy validates a policy name.
func ParseOpeningPolicy(s string) (OpeningPolicy, error) {
	switch p := OpeningPolicy(s); p {
	case OpeningCumulative, OpeningConfigured:
		return p, nil
	}
	return "", apperror.NewValidation("unknown opening balance policy").WithDetail("value", s)
}

// DateRange is a range of calendar days, inclusive on both ends.
type DateRange struct {
	From time.Time
	To   time.Time
}

// NewDateRange truncates both bounds to their day and rejects inverted ranges.
func NewDateRange(from, to time.Time) (DateRange, error) {
	r := DateRange{From: startOfDay(from), To: startOfDay(to)}
	if r.To.Before(r.From) {
		return DateRange{}, apperror.NewValidation("date range end is before its start").
			WithDetail("from", r.From.Format(dateLayout)).
			WithDetail("to", r.To.Format(dateLayout))
	}
	return r, nil
}

// Start is the first instant of the range.
func (r DateRange) Start() time.Time {
	return startOfDay(r.From)
}

// End is the first instant after the range.
func (r DateRange) End() time.Time {
	return startOfDay(r.To).AddDate(0, 0, 1)
}

// Contains reports whether the calendar day of t, read in t's own location,
// is one of the range's days. This matches the DATE column a movement is
// stored in.
func (r DateRange) Contains(t time.Time) bool {
	y, m, d := t.Date()
	day := time.Date(y, m, d, 0, 0, 0, 0, r.From.Location())
	return !day.Before(r.Start()) && day.Before(r.End())
}

func startOfDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}

// CashInTotals splits cash-in by settlement mode.
type CashInTotals struct {
	Cash     types.Money `json:"cash"`
	Check    types.Money `json:"check"`
	Transfer types.Money `json:"transfer"`
	Total    types.Money `json:"total"`
}

// Report is the "grandes lignes" reconciliation summary. It is never persisted.
type Report struct {
	RegisterID     *id.ID        `json:"registerId,omitempty"`
	From           string        `json:"from"`
	To             string        `json:"to"`
	OpeningPolicy  OpeningPolicy `json:"openingPolicy,omitempty"`
	OpeningBalance types.Money   `json:"openingBalance"`
	Replenishment  types.Money   `json:"replenishment"`
	CashIn         CashInTotals  `json:"cashIn"`
	Disbursement   types.Money   `json:"disbursement"`
	TotalEntries   types.Money   `json:"totalEntries"`
	TotalExits     types.Money   `json:"totalExits"`
	ClosingBalance types.Money   `json:"closingBalance"`
	MovementCount  int64         `json:"movementCount"`
}

// BuildReport aggregates the movements dated inside rng. It performs no I/O and
// returns the same report for the same input, whatever the movement order.
func BuildReport(movements []Movement, opening types.Money, rng DateRange) (*Report, error) {
	var l Ledger
	for i := range movements {
		if !rng.Contains(movements[i].Date) {
			continue
		}
		if err := l.AddMovement(&movements[i]); err != nil {
			return nil, err
		}
	}

	totals := l.Totals()
	cashIn := CashInTotals{
		Cash:     l.Category(CategoryCashInCash),
		Check:    l.Category(CategoryCashInCheck),
		Transfer: l.Category(CategoryCashInTransfer),
	}
	cashIn.Total = types.Sum(cashIn.Cash, cashIn.Check, cashIn.Transfer)

	return &Report{
		From:           rng.From.Format(dateLayout),
		To:             rng.To.Format(dateLayout),
		OpeningBalance: opening,
		Replenishment:  l.Category(CategoryReplenishment),
		CashIn:         cashIn,
		Disbursement:   l.Category(CategoryDisbursement),
		TotalEntries:   totals.TotalEntries,
		TotalExits:     totals.TotalExits,
		ClosingBalance: opening.Add(totals.NetBalance),
		MovementCount:  l.Count(),
	}, nil
}
