package dto

import (
	"colisflow/internal/core/types"
	"colisflow/internal/domain/cash"
)

// CreateRegisterRequest opens a new till.
type CreateRegisterRequest struct {
	Code            string      `json:"code"`
	Name            string      `json:"name" binding:"required"`
	AgencyID        string      `json:"agencyId"`
	OpeningBalance  types.Money `json:"openingBalance"`
	MinBalanceAlert types.Money `json:"minBalanceAlert"`
}

// ToInput converts to the domain input.
func (r *CreateRegisterRequest) ToInput() (cash.RegisterInput, error) {
	agency, err := ParseOptionalID("agencyId", r.AgencyID)
	if err != nil {
		return cash.RegisterInput{}, err
	}
	return cash.RegisterInput{
		Code:            r.Code,
		Name:            r.Name,
		AgencyID:        agency,
		OpeningBalance:  r.OpeningBalance,
		MinBalanceAlert: r.MinBalanceAlert,
	}, nil
}

// ReplenishmentRequest records an approvisionnement.
type ReplenishmentRequest struct {
	Amount types.Money `json:"amount"`
	Date   string      `json:"date"`
	Label  string      `json:"label"`
}

// ToDomain converts to the domain request. A missing date means today.
func (r *ReplenishmentRequest) ToDomain() (cash.Replenishment, error) {
	date, err := ParseDate("date", r.Date)
	if err != nil {
		return cash.Replenishment{}, err
	}
	return cash.Replenishment{Amount: r.Amount, Date: date, Label: r.Label}, nil
}

// CashInRequest records an entrée de caisse.
type CashInRequest struct {
	Mode              string      `json:"mode" binding:"required"`
	Amount            types.Money `json:"amount"`
	Date              string      `json:"date"`
	Label             string      `json:"label"`
	ReceiptNumber     string      `json:"receiptNumber"`
	CheckNumber       string      `json:"checkNumber"`
	Bank              string      `json:"bank"`
	TransferReference string      `json:"transferReference"`
	ParcelReference   string      `json:"parcelReference"`
	ClientName        string      `json:"clientName"`
}

// ToDomain converts to the domain request.
func (r *CashInRequest) ToDomain() (cash.CashIn, error) {
	date, err := ParseDate("date", r.Date)
	if err != nil {
		return cash.CashIn{}, err
	}
	return cash.CashIn{
		Mode:   cash.SettlementMode(r.Mode),
		Amount: r.Amount,
		Date:   date,
		Label:  r.Label,
		Settlement: cash.Settlement{
			ReceiptNumber:     r.ReceiptNumber,
			CheckNumber:       r.CheckNumber,
			Bank:              r.Bank,
			TransferReference: r.TransferReference,
		},
		ParcelReference: r.ParcelReference,
		ClientName:      r.ClientName,
	}, nil
}

// DisbursementRequest records a décaissement.
type DisbursementRequest struct {
	Amount     types.Money `json:"amount"`
	Date       string      `json:"date"`
	Label      string      `json:"label"`
	ClientName string      `json:"clientName"`
}

// ToDomain converts to the domain request.
func (r *DisbursementRequest) ToDomain() (cash.Disbursement, error) {
	date, err := ParseDate("date", r.Date)
	if err != nil {
		return cash.Disbursement{}, err
	}
	return cash.Disbursement{Amount: r.Amount, Date: date, Label: r.Label, ClientName: r.ClientName}, nil
}

// MovementListQuery filters GET /movements. Both dates are inclusive days.
type MovementListQuery struct {
	PageQuery
	RegisterID string `form:"registerId"`
	Category   string `form:"category"`
	From       string `form:"from"`
	To         string `form:"to"`
}

// ToFilter converts to the domain filter.
func (q *MovementListQuery) ToFilter() (cash.MovementFilter, error) {
	f := cash.MovementFilter{Limit: q.Limit, Offset: q.Offset}

	reg, err := ParseOptionalID("registerId", q.RegisterID)
	if err != nil {
		return f, err
	}
	f.RegisterID = reg

	if q.Category != "" {
		cat, err := cash.ParseCategory(q.Category)
		if err != nil {
			return f, err
		}
		f.Category = &cat
	}

	from, err := ParseDate("from", q.From)
	if err != nil {
		return f, err
	}
	if !from.IsZero() {
		f.From = &from
	}
	to, err := ParseDate("to", q.To)
	if err != nil {
		return f, err
	}
	if !to.IsZero() {
		f.To = dayAfter(to)
	}
	return f, nil
}

// ReportQuery selects the reconciliation period, both days inclusive.
type ReportQuery struct {
	RegisterID string `form:"registerId"`
	From       string `form:"from" binding:"required"`
	To         string `form:"to" binding:"required"`
}

// ToRequest converts to the domain request.
func (q *ReportQuery) ToRequest() (cash.ReportRequest, error) {
	var req cash.ReportRequest
	reg, err := ParseOptionalID("registerId", q.RegisterID)
	if err != nil {
		return req, err
	}
	from, err := ParseDate("from", q.From)
	if err != nil {
		return req, err
	}
	to, err := ParseDate("to", q.To)
	if err != nil {
		return req, err
	}
	return cash.ReportRequest{RegisterID: reg, From: from, To: to}, nil
}
