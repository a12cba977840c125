package cash

import (
	"math/rand"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"colisflow/internal/core/id"
	"colisflow/internal/core/types"
)

var day = time.Date(2025, time.June, 10, 9, 30, 0, 0, time.UTC)

func mv(c Category, amount string, at time.Time) Movement {
	return Movement{
		ID:         id.New(),
		RegisterID: id.MustParse("0190a6d2-0000-7000-8000-000000000001"),
		Category:   c,
		Amount:     types.MustMoney(amount),
		Date:       at,
	}
}

func TestAccumulate_MixedCategories(t *testing.T) {
	totals, err := Accumulate([]Movement{
		mv(CategoryReplenishment, "100000", day),
		mv(CategoryCashInCash, "20000", day),
		mv(CategoryDisbursement, "30000", day),
	})
	require.NoError(t, err)

	assert.True(t, totals.TotalEntries.Equal(types.MustMoney("120000")))
	assert.True(t, totals.TotalExits.Equal(types.MustMoney("30000")))
	assert.True(t, totals.NetBalance.Equal(types.MustMoney("90000")))
}

func TestAccumulate_Empty(t *testing.T) {
	totals, err := Accumulate(nil)
	require.NoError(t, err)
	assert.True(t, totals.TotalEntries.IsZero())
	assert.True(t, totals.TotalExits.IsZero())
	assert.True(t, totals.NetBalance.IsZero())
}

func TestAccumulate_OrderIndependentAndMatchesSignedSum(t *testing.T) {
	rnd := rand.New(rand.NewSource(7))
	amounts := []string{"0.01", "15.50", "999.99", "25000", "3", "120.75"}

	for round := 0; round < 50; round++ {
		n := rnd.Intn(30)
		movements := make([]Movement, 0, n)
		for i := 0; i < n; i++ {
			c := Categories[rnd.Intn(len(Categories))]
			movements = append(movements, mv(c, amounts[rnd.Intn(len(amounts))], day))
		}

		signed := types.Zero()
		for i := range movements {
			s, err := movements[i].Signed()
			require.NoError(t, err)
			signed = signed.Add(s)
		}

		want, err := Accumulate(movements)
		require.NoError(t, err)
		assert.True(t, want.NetBalance.Equal(signed), "round %d", round)
		assert.True(t, want.TotalEntries.Sub(want.TotalExits).Equal(signed))

		rnd.Shuffle(len(movements), func(i, j int) { movements[i], movements[j] = movements[j], movements[i] })
		got, err := Accumulate(movements)
		require.NoError(t, err)
		assert.True(t, want.NetBalance.Equal(got.NetBalance))
		assert.True(t, want.TotalEntries.Equal(got.TotalEntries))
		assert.True(t, want.TotalExits.Equal(got.TotalExits))
	}
}

func TestAccumulate_UnknownCategory(t *testing.T) {
	_, err := Accumulate([]Movement{
		mv(CategoryReplenishment, "10", day),
		mv(Category("adjustment"), "10", day),
	})
	assert.ErrorIs(t, err, ErrUnknownCategory)
}

func TestFoldTotals(t *testing.T) {
	totals, err := FoldTotals([]CategoryTotal{
		{Category: CategoryReplenishment, Amount: types.MustMoney("500")},
		{Category: CategoryCashInTransfer, Amount: types.MustMoney("250.25")},
		{Category: CategoryDisbursement, Amount: types.MustMoney("100.25")},
	})
	require.NoError(t, err)
	assert.True(t, totals.NetBalance.Equal(types.MustMoney("650")))

	_, err = FoldTotals([]CategoryTotal{{Category: CategoryDisbursement, Amount: types.MustMoney("-1")}})
	assert.Error(t, err)
}
