package export

import (
	"bytes"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"colisflow/internal/core/id"
	"colisflow/internal/core/types"
	"colisflow/internal/domain/cash"
)

func sampleReport(t *testing.T) (*cash.Report, []cash.Movement) {
	t.Helper()
	day := time.Date(2024, 5, 2, 0, 0, 0, 0, time.UTC)
	regID := id.New()
	movements := []cash.Movement{
		{ID: id.New(), Number: "APR-2024-00001", RegisterID: regID, Category: cash.CategoryReplenishment,
			Date: day, Amount: types.MustMoney("100000"), BalanceAfter: types.MustMoney("100000"), CreatedBy: "awa"},
		{ID: id.New(), Number: "ENC-2024-00001", RegisterID: regID, Category: cash.CategoryCashInCheck,
			Date: day, Amount: types.MustMoney("25000.50"), BalanceAfter: types.MustMoney("125000.50"),
			Settlement: cash.Settlement{CheckNumber: "CHK-1", Bank: "BOA"}, CreatedBy: "awa"},
		{ID: id.New(), Number: "DEC-2024-00001", RegisterID: regID, Category: cash.CategoryDisbursement,
			Date: day, Amount: types.MustMoney("30000"), BalanceAfter: types.MustMoney("95000.50"), CreatedBy: "awa"},
	}
	rng, err := cash.NewDateRange(day, day)
	require.NoError(t, err)
	r, err := cash.BuildReport(movements, types.Zero(), rng)
	require.NoError(t, err)
	return r, movements
}

func TestWriteCashReport(t *testing.T) {
	r, movements := sampleReport(t)

	var buf bytes.Buffer
	require.NoError(t, WriteCashReport(&buf, "Caisse principale", r, movements))

	f, err := excelize.OpenReader(&buf)
	require.NoError(t, err)
	defer f.Close()

	assert.Equal(t, []string{summarySheet, movementsSheet}, f.GetSheetList())

	title, err := f.GetCellValue(summarySheet, "A1")
	require.NoError(t, err)
	assert.Equal(t, "Caisse principale", title)

	closing, err := f.GetCellValue(summarySheet, "B14", excelize.Options{RawCellValue: true})
	require.NoError(t, err)
	assert.Equal(t, "95000.5", closing)

	rows, err := f.GetRows(movementsSheet)
	require.NoError(t, err)
	require.Len(t, rows, 4)
	assert.Equal(t, "N°", rows[0][0])
	assert.Equal(t, "ENC-2024-00001", rows[2][0])
	assert.Equal(t, "Entrée chèque", rows[2][2])
	assert.Equal(t, "CHK-1", rows[2][7])

	out, err := f.GetCellValue(movementsSheet, "F4", excelize.Options{RawCellValue: true})
	require.NoError(t, err)
	assert.Equal(t, "30000", out)
	in, err := f.GetCellValue(movementsSheet, "E4", excelize.Options{RawCellValue: true})
	require.NoError(t, err)
	assert.Empty(t, in)
}

func TestWriteCashReport_NoMovements(t *testing.T) {
	day := time.Date(2024, 5, 2, 0, 0, 0, 0, time.UTC)
	rng, err := cash.NewDateRange(day, day)
	require.NoError(t, err)
	r, err := cash.BuildReport(nil, types.MustMoney("500"), rng)
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, WriteCashReport(&buf, "Toutes caisses", r, nil))
	assert.NotZero(t, buf.Len())
}

func TestFileNameAndLabels(t *testing.T) {
	r, _ := sampleReport(t)
	assert.Equal(t, "caisse_2024-05-02_2024-05-02.xlsx", FileName(r))
	assert.Equal(t, "Décaissement", CategoryLabel(cash.CategoryDisbursement))
	assert.Equal(t, "mystery", CategoryLabel(cash.Category("mystery")))
}
