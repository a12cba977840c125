package cash

import (
	"strings"
	"time"

	"colisflow/internal/core/apperror"
	"colisflow/internal/core/types"
)

// SettlementMode is how a cash-in was paid.
type SettlementMode string

const (
	ModeCash     SettlementMode = "cash"
	ModeCheck    SettlementMode = "check"
	ModeTransfer SettlementMode = "transfer"
)

// Category maps the settlement mode to its cash-in category.
func (m SettlementMode) Category() (Category, error) {
	switch m {
	case ModeCash:
		return CategoryCashInCash, nil
	case ModeCheck:
		return CategoryCashInCheck, nil
	case ModeTransfer:
		return CategoryCashInTransfer, nil
	}
	return "", apperror.NewValidation("unknown settlement mode").
		WithDetail("field", "mode").
		WithDetail("value", string(m))
}

// CashIn is a request to record an entrée de caisse.
type CashIn struct {
	Mode            SettlementMode
	Amount          types.Money
	Date            time.Time
	Label           string
	Settlement      Settlement
	ParcelReference string
	ClientName      string
}

// Validate checks the amount and the fields the settlement mode requires:
// cash needs a receipt number, check needs check number and bank, transfer
// needs transfer reference, bank and receipt number.
func (in *CashIn) Validate() (Category, error) {
	category, err := in.Mode.Category()
	if err != nil {
		return "", err
	}
	if err := validateAmount(in.Amount); err != nil {
		return "", err
	}

	s := in.Settlement
	var missing []string
	require := func(field, value string) {
		if strings.TrimSpace(value) == "" {
			missing = append(missing, field)
		}
	}
	switch in.Mode {
	case ModeCash:
		require("receiptNumber", s.ReceiptNumber)
	case ModeCheck:
		require("checkNumber", s.CheckNumber)
		require("bank", s.Bank)
	case ModeTransfer:
		require("transferReference", s.TransferReference)
		require("bank", s.Bank)
		require("receiptNumber", s.ReceiptNumber)
	}
	if len(missing) > 0 {
		return "", apperror.NewValidation("missing settlement fields").
			WithDetail("mode", string(in.Mode)).
			WithDetail("fields", missing)
	}
	return category, nil
}

// settlementFor keeps only the references that belong to the mode.
func settlementFor(mode SettlementMode, s Settlement) Settlement {
	switch mode {
	case ModeCash:
		return Settlement{ReceiptNumber: strings.TrimSpace(s.ReceiptNumber)}
	case ModeCheck:
		return Settlement{
			CheckNumber:   strings.TrimSpace(s.CheckNumber),
			Bank:          strings.TrimSpace(s.Bank),
			ReceiptNumber: strings.TrimSpace(s.ReceiptNumber),
		}
	default:
		return Settlement{
			TransferReference: strings.TrimSpace(s.TransferReference),
			Bank:              strings.TrimSpace(s.Bank),
			ReceiptNumber:     strings.TrimSpace(s.ReceiptNumber),
		}
	}
}
