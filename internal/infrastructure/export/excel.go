// Package export renders cash reports as spreadsheets.
package export

import (
	"fmt"
	"io"

	"github.com/xuri/excelize/v2"

	"colisflow/internal/core/types"
	"colisflow/internal/domain/cash"
)

// ContentTypeXLSX is the MIME type of the generated workbook.
const ContentTypeXLSX = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

const (
	summarySheet   = "Synthese"
	movementsSheet = "Mouvements"
	moneyFormat    = "#,##0.00"
)

var categoryLabels = map[cash.Category]string{
	cash.CategoryReplenishment:  "Approvisionnement",
	cash.CategoryCashInCash:     "Entrée espèces",
	cash.CategoryCashInCheck:    "Entrée chèque",
	cash.CategoryCashInTransfer: "Entrée virement",
	cash.CategoryDisbursement:   "Décaissement",
}

// CategoryLabel returns the display name of a category.
func CategoryLabel(c cash.Category) string {
	if l, ok := categoryLabels[c]; ok {
		return l
	}
	return string(c)
}

// FileName builds the attachment name for a report.
func FileName(r *cash.Report) string {
	return fmt.Sprintf("caisse_%s_%s.xlsx", r.From, r.To)
}

// WriteCashReport writes a two-sheet workbook: the summary lines and the
// movements the summary was built from.
func WriteCashReport(w io.Writer, title string, r *cash.Report, movements []cash.Movement) error {
	f := excelize.NewFile()
	defer func() { _ = f.Close() }()

	if err := f.SetSheetName("Sheet1", summarySheet); err != nil {
		return fmt.Errorf("rename sheet: %w", err)
	}
	if _, err := f.NewSheet(movementsSheet); err != nil {
		return fmt.Errorf("create sheet: %w", err)
	}

	money, err := f.NewStyle(&excelize.Style{CustomNumFmt: strPtr(moneyFormat)})
	if err != nil {
		return fmt.Errorf("create style: %w", err)
	}
	bold, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return fmt.Errorf("create style: %w", err)
	}

	if err := writeSummary(f, title, r, money, bold); err != nil {
		return err
	}
	if err := writeMovements(f, movements, money, bold); err != nil {
		return err
	}

	if err := f.Write(w); err != nil {
		return fmt.Errorf("write workbook: %w", err)
	}
	return nil
}

func writeSummary(f *excelize.File, title string, r *cash.Report, money, bold int) error {
	rows := [][]any{
		{title},
		{"Période", fmt.Sprintf("%s au %s", r.From, r.To)},
		{},
		{"Solde d'ouverture", r.OpeningBalance},
		{"Approvisionnements", r.Replenishment},
		{"Entrées espèces", r.CashIn.Cash},
		{"Entrées chèques", r.CashIn.Check},
		{"Entrées virements", r.CashIn.Transfer},
		{"Total entrées de caisse", r.CashIn.Total},
		{"Décaissements", r.Disbursement},
		{},
		{"Total entrées", r.TotalEntries},
		{"Total sorties", r.TotalExits},
		{"Solde de clôture", r.ClosingBalance},
		{"Nombre de mouvements", r.MovementCount},
	}

	for i, row := range rows {
		for j, v := range row {
			cell, err := excelize.CoordinatesToCellName(j+1, i+1)
			if err != nil {
				return err
			}
			if err := f.SetCellValue(summarySheet, cell, cellValue(v)); err != nil {
				return fmt.Errorf("set %s: %w", cell, err)
			}
			if _, ok := v.(types.Money); ok {
				if err := f.SetCellStyle(summarySheet, cell, cell, money); err != nil {
					return err
				}
			}
		}
	}

	if err := f.SetCellStyle(summarySheet, "A1", "A1", bold); err != nil {
		return err
	}
	if err := f.SetCellStyle(summarySheet, "A14", "B14", bold); err != nil {
		return err
	}
	return f.SetColWidth(summarySheet, "A", "A", 28)
}

var movementHeaders = []string{
	"N°", "Date", "Nature", "Libellé", "Entrée", "Sortie",
	"Reçu", "Chèque", "Banque", "Réf. virement", "Colis", "Client", "Solde après", "Saisi par",
}

func writeMovements(f *excelize.File, movements []cash.Movement, money, bold int) error {
	for j, h := range movementHeaders {
		cell, _ := excelize.CoordinatesToCellName(j+1, 1)
		if err := f.SetCellValue(movementsSheet, cell, h); err != nil {
			return err
		}
	}
	last, _ := excelize.CoordinatesToCellName(len(movementHeaders), 1)
	if err := f.SetCellStyle(movementsSheet, "A1", last, bold); err != nil {
		return err
	}

	for i := range movements {
		m := &movements[i]
		dir, err := m.Category.Direction()
		if err != nil {
			return err
		}
		var in, out any
		if dir == cash.DirectionIn {
			in = m.Amount.InexactFloat64()
		} else {
			out = m.Amount.InexactFloat64()
		}

		row := []any{
			m.Number, m.Date.Format("2006-01-02"), CategoryLabel(m.Category), m.Label, in, out,
			m.ReceiptNumber, m.CheckNumber, m.Bank, m.TransferReference,
			m.ParcelReference, m.ClientName, m.BalanceAfter.InexactFloat64(), m.CreatedBy,
		}
		start, _ := excelize.CoordinatesToCellName(1, i+2)
		if err := f.SetSheetRow(movementsSheet, start, &row); err != nil {
			return fmt.Errorf("write movement row %d: %w", i+2, err)
		}
	}

	if n := len(movements); n > 0 {
		for _, col := range []string{"E", "F", "M"} {
			if err := f.SetCellStyle(movementsSheet, col+"2", fmt.Sprintf("%s%d", col, n+1), money); err != nil {
				return err
			}
		}
	}
	return nil
}

func cellValue(v any) any {
	if m, ok := v.(types.Money); ok {
		return m.InexactFloat64()
	}
	return v
}

func strPtr(s string) *string { return &s }
