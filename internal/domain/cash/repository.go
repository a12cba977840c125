package cash

import (
	"context"
	"time"

	"colisflow/internal/core/id"
	"colisflow/internal/domain/parcel"
)

// Repository is the storage contract of the cash ledger. Methods run inside
// the transaction carried by ctx when there is one.
type Repository interface {
	CreateRegister(ctx context.Context, r *Register) error
	GetRegister(ctx context.Context, registerID id.ID) (*Register, error)

	// GetRegisterForUpdate locks the register row until the transaction ends.
	// Every movement write takes this lock first.
	GetRegisterForUpdate(ctx context.Context, registerID id.ID) (*Register, error)

	ListRegisters(ctx context.Context) ([]*Register, error)

	// CreateMovement appends a movement. There is no update or delete.
	CreateMovement(ctx context.Context, m *Movement) error
	GetMovement(ctx context.Context, movementID id.ID) (*Movement, error)
	ListMovements(ctx context.Context, filter MovementFilter) ([]Movement, error)
	CountMovements(ctx context.Context, filter MovementFilter) (int64, error)

	// CategoryTotals sums movement amounts per category.
	CategoryTotals(ctx context.Context, filter TotalsFilter) ([]CategoryTotal, error)
}

// TotalsFilter restricts CategoryTotals. Before is exclusive.
type TotalsFilter struct {
	RegisterID *id.ID
	Before     *time.Time
}

// ParcelLookup resolves parcel references for the cash-in soft link.
// A miss is (nil, nil).
type ParcelLookup interface {
	FindByReference(ctx context.Context, reference string) (*parcel.Parcel, error)
}

// Locker serializes movement recording per register ahead of the database
// transaction. The row lock taken in the transaction remains authoritative.
type Locker interface {
	Lock(ctx context.Context, registerID id.ID) (release func(), err error)
}

// NoopLocker is used when no distributed lock backend is configured.
type NoopLocker struct{}

func (NoopLocker) Lock(context.Context, id.ID) (func(), error) {
	return func() {}, nil
}
