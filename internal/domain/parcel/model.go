// Package parcel provides the parcel (colis) records that cash-ins can be linked to.
package parcel

import (
	"strings"
	"time"

	"colisflow/internal/core/apperror"
	"colisflow/internal/core/id"
	"colisflow/internal/core/types"
)

// Status is the shipment state of a parcel.
type Status string

const (
	StatusReceived  Status = "received"
	StatusInTransit Status = "in_transit"
	StatusArrived   Status = "arrived"
	StatusDelivered Status = "delivered"
)

func (s Status) Valid() bool {
	switch s {
	case StatusReceived, StatusInTransit, StatusArrived, StatusDelivered:
		return true
	}
	return false
}

// Parcel is a shipment record (colis).
type Parcel struct {
	ID          id.ID       `db:"id" json:"id"`
	Reference   string      `db:"reference" json:"reference"`
	ClientName  string      `db:"client_name" json:"clientName"`
	Description string      `db:"description" json:"description,omitempty"`
	WeightKg    types.Money `db:"weight_kg" json:"weightKg"`
	Status      Status      `db:"status" json:"status"`
	CreatedAt   time.Time   `db:"created_at" json:"createdAt"`
	UpdatedAt   time.Time   `db:"updated_at" json:"updatedAt"`
}

// NormalizeReference upper-cases and trims a reference code for lookups.
func NormalizeReference(ref string) string {
	return strings.ToUpper(strings.TrimSpace(ref))
}

// Validate checks parcel fields.
func (p *Parcel) Validate() error {
	if strings.TrimSpace(p.ClientName) == "" {
		return apperror.NewValidation("client name is required").WithDetail("field", "clientName")
	}
	if p.WeightKg.IsNegative() {
		return apperror.NewValidation("weight cannot be negative").WithDetail("field", "weightKg")
	}
	if !p.Status.Valid() {
		return apperror.NewValidation("invalid parcel status").
			WithDetail("field", "status").
			WithDetail("value", string(p.Status))
	}
	return nil
}

// ListFilter filters parcel listings.
type ListFilter struct {
	Search string
	Status *Status
	Limit  int
	Offset int
}
