package cash

import (
	"context"
	"fmt"
	"strings"
	"time"

	"colisflow/internal/core/apperror"
	appctx "colisflow/internal/core/context"
	"colisflow/internal/core/id"
	"colisflow/internal/core/numerator"
	"colisflow/internal/core/tx"
	"colisflow/internal/core/types"
	"colisflow/pkg/logger"
	"colisflow/pkg/metrics"
)

const registerCodePrefix = "CAI"

// Service provides the cash-register operations. Movement writes follow one
// discipline: lock the register row, compute the balance, validate, insert,
// all inside a single transaction.
type Service struct {
	repo    Repository
	txm     tx.Manager
	numbers numerator.Generator
	parcels ParcelLookup
	locker  Locker
	opening OpeningPolicy
	now     func() time.Time
}

// Option customizes a Service.
type Option func(*Service)

// WithLocker installs a cross-instance register lock.
func WithLocker(l Locker) Option {
	return func(s *Service) { s.locker = l }
}

// WithOpeningPolicy selects how report opening balances are derived.
func WithOpeningPolicy(p OpeningPolicy) Option {
	return func(s *Service) { s.opening = p }
}

// WithClock overrides time.Now (tests).
func WithClock(now func() time.Time) Option {
	return func(s *Service) { s.now = now }
}

// NewService creates a new cash service.
func NewService(repo Repository, txm tx.Manager, numbers numerator.Generator, parcels ParcelLookup, opts ...Option) *Service {
	s := &Service{
		repo:    repo,
		txm:     txm,
		numbers: numbers,
		parcels: parcels,
		locker:  NoopLocker{},
		opening: OpeningCumulative,
		now:     time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// --- Registers ---

// RegisterInput holds the fields of a new register.
type RegisterInput struct {
	Code            string
	Name            string
	AgencyID        *id.ID
	OpeningBalance  types.Money
	MinBalanceAlert types.Money
}

// CreateRegister validates and stores a register, numbering it when no code is given.
func (s *Service) CreateRegister(ctx context.Context, in RegisterInput) (*Register, error) {
	reg := NewRegister(in.Code, in.Name, in.OpeningBalance, in.MinBalanceAlert)
	reg.AgencyID = in.AgencyID
	reg.CreatedAt = s.now().UTC()
	reg.UpdatedAt = reg.CreatedAt
	if err := reg.Validate(); err != nil {
		return nil, err
	}

	if reg.Code == "" {
		code, err := s.numbers.GetNextNumber(ctx, numerator.Config{Prefix: registerCodePrefix, PadWidth: 3},
			&numerator.Options{Strategy: numerator.StrategyCached, RangeSize: 10}, s.now())
		if err != nil {
			return nil, fmt.Errorf("generate register code: %w", err)
		}
		reg.Code = code
	}

	if err := s.repo.CreateRegister(ctx, reg); err != nil {
		return nil, err
	}

	logger.Info(ctx, "cash register created", "register_id", reg.ID, "code", reg.Code)
	return reg, nil
}

// GetRegister returns one register.
func (s *Service) GetRegister(ctx context.Context, registerID id.ID) (*Register, error) {
	return s.repo.GetRegister(ctx, registerID)
}

// ListRegisters returns every register ordered by code.
func (s *Service) ListRegisters(ctx context.Context) ([]*Register, error) {
	return s.repo.ListRegisters(ctx)
}

// GetBalance computes the current balance of a register on read.
func (s *Service) GetBalance(ctx context.Context, registerID id.ID) (*Balance, error) {
	var b Balance
	err := s.snapshot(ctx, func(ctx context.Context) error {
		reg, err := s.repo.GetRegister(ctx, registerID)
		if err != nil {
			return err
		}
		b, err = s.balanceOf(ctx, reg)
		return err
	})
	if err != nil {
		return nil, err
	}
	return &b, nil
}

// Balances computes the balance of every register (used by the alert worker).
func (s *Service) Balances(ctx context.Context) ([]Balance, error) {
	var out []Balance
	err := s.snapshot(ctx, func(ctx context.Context) error {
		regs, err := s.repo.ListRegisters(ctx)
		if err != nil {
			return err
		}
		out = make([]Balance, 0, len(regs))
		for _, reg := range regs {
			b, err := s.balanceOf(ctx, reg)
			if err != nil {
				return err
			}
			out = append(out, b)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

func (s *Service) balanceOf(ctx context.Context, reg *Register) (Balance, error) {
	rows, err := s.repo.CategoryTotals(ctx, TotalsFilter{RegisterID: &reg.ID})
	if err != nil {
		return Balance{}, fmt.Errorf("register %s totals: %w", reg.ID, err)
	}
	totals, err := FoldTotals(rows)
	if err != nil {
		return Balance{}, err
	}
	return newBalance(reg, totals), nil
}

// --- Movements ---

// Replenishment is an approvisionnement request.
type Replenishment struct {
	Amount types.Money
	Date   time.Time
	Label  string
}

// Disbursement is a décaissement request.
type Disbursement struct {
	Amount     types.Money
	Date       time.Time
	Label      string
	ClientName string
}

// Replenish adds cash to the register.
func (s *Service) Replenish(ctx context.Context, registerID id.ID, in Replenishment) (*Movement, error) {
	m := newMovement(registerID, CategoryReplenishment, in.Amount, s.dateOrNow(in.Date), strings.TrimSpace(in.Label))
	if err := m.Validate(); err != nil {
		return nil, err
	}

	return s.record(ctx, m, func(balance types.Money) error {
		m.BalanceAfter = balance.Add(m.Amount)
		return nil
	})
}

// RecordCashIn records an entrée de caisse. Mode-specific fields are checked
// before any I/O. An unresolved parcel reference is logged and the movement is
// recorded without link.
func (s *Service) RecordCashIn(ctx context.Context, registerID id.ID, in CashIn) (*Movement, error) {
	category, err := in.Validate()
	if err != nil {
		return nil, err
	}

	m := newMovement(registerID, category, in.Amount, s.dateOrNow(in.Date), strings.TrimSpace(in.Label))
	m.Settlement = settlementFor(in.Mode, in.Settlement)
	m.ClientName = strings.TrimSpace(in.ClientName)
	if err := m.Validate(); err != nil {
		return nil, err
	}

	if ref := strings.TrimSpace(in.ParcelReference); ref != "" {
		s.linkParcel(ctx, m, ref)
	}

	return s.record(ctx, m, func(balance types.Money) error {
		m.BalanceAfter = balance.Add(m.Amount)
		return nil
	})
}

func (s *Service) linkParcel(ctx context.Context, m *Movement, reference string) {
	if s.parcels == nil {
		return
	}
	p, err := s.parcels.FindByReference(ctx, reference)
	if err != nil {
		logger.Warn(ctx, "parcel lookup failed, recording cash-in without link",
			"parcel_reference", reference, "error", err)
		return
	}
	if p == nil {
		logger.Warn(ctx, "parcel reference not found, recording cash-in without link",
			"parcel_reference", reference)
		return
	}

	parcelID := p.ID
	m.ParcelID = &parcelID
	m.ParcelReference = p.Reference
	if m.ClientName == "" {
		m.ClientName = p.ClientName
	}
}

// Disburse withdraws cash. The balance is read under the register row lock, so
// two concurrent disbursements cannot both pass against the same balance.
// A rejected request records nothing.
func (s *Service) Disburse(ctx context.Context, registerID id.ID, in Disbursement) (*Movement, error) {
	m := newMovement(registerID, CategoryDisbursement, in.Amount, s.dateOrNow(in.Date), strings.TrimSpace(in.Label))
	m.ClientName = strings.TrimSpace(in.ClientName)
	if err := m.Validate(); err != nil {
		return nil, err
	}

	return s.record(ctx, m, func(balance types.Money) error {
		ok, err := CanWithdraw(m.Amount, balance)
		if err != nil {
			return err
		}
		if !ok {
			metrics.WithdrawalsRejected.Inc()
			return apperror.NewInsufficientBalance(registerID.String(), m.Amount, balance)
		}
		m.BalanceAfter = balance.Sub(m.Amount)
		return nil
	})
}

// record runs the locked read-validate-insert sequence. apply receives the
// balance computed under the lock and fills in the snapshot or rejects.
func (s *Service) record(ctx context.Context, m *Movement, apply func(balance types.Money) error) (*Movement, error) {
	release, err := s.locker.Lock(ctx, m.RegisterID)
	if err != nil {
		return nil, err
	}
	defer release()

	err = s.txm.RunInTransaction(ctx, func(ctx context.Context) error {
		reg, err := s.repo.GetRegisterForUpdate(ctx, m.RegisterID)
		if err != nil {
			return err
		}

		balance, err := s.balanceOf(ctx, reg)
		if err != nil {
			return err
		}
		if err := apply(balance.Current); err != nil {
			return err
		}

		number, err := s.numbers.GetNextNumber(ctx, numerator.DefaultConfig(m.Category.NumberPrefix()), nil, m.Date)
		if err != nil {
			return fmt.Errorf("generate movement number: %w", err)
		}
		m.Number = number
		m.CreatedBy = appctx.GetUserCode(ctx)
		m.CreatedAt = s.now().UTC()
		m.UpdatedAt = m.CreatedAt

		return s.repo.CreateMovement(ctx, m)
	})
	if err != nil {
		return nil, err
	}

	metrics.RecordMovement(string(m.Category))
	logger.Info(ctx, "cash movement recorded",
		"movement_id", m.ID,
		"number", m.Number,
		"register_id", m.RegisterID,
		"category", m.Category,
		"amount", m.Amount.String(),
		"balance_after", m.BalanceAfter.String(),
	)
	return m, nil
}

func (s *Service) dateOrNow(d time.Time) time.Time {
	if d.IsZero() {
		return s.now()
	}
	return d
}

// GetMovement returns one movement.
func (s *Service) GetMovement(ctx context.Context, movementID id.ID) (*Movement, error) {
	return s.repo.GetMovement(ctx, movementID)
}

// MovementPage is one page of a movement listing.
type MovementPage struct {
	Items      []Movement
	TotalCount int64
}

// ListMovements lists movements in ledger order.
func (s *Service) ListMovements(ctx context.Context, filter MovementFilter) (*MovementPage, error) {
	if filter.Limit <= 0 || filter.Limit > 500 {
		filter.Limit = 50
	}
	if filter.Offset < 0 {
		filter.Offset = 0
	}

	items, err := s.repo.ListMovements(ctx, filter)
	if err != nil {
		return nil, err
	}
	total, err := s.repo.CountMovements(ctx, filter)
	if err != nil {
		return nil, err
	}
	return &MovementPage{Items: items, TotalCount: total}, nil
}

// --- Report ---

// ReportRequest selects the report scope. A nil RegisterID aggregates all registers.
type ReportRequest struct {
	RegisterID *id.ID
	From       time.Time
	To         time.Time
}

// Report fetches the movements of the range and builds the reconciliation report.
func (s *Service) Report(ctx context.Context, req ReportRequest) (*Report, error) {
	report, _, err := s.ReportDetail(ctx, req)
	return report, err
}

// ReportDetail is Report plus the movements it was built from, in ledger order.
// The spreadsheet export lists them on a second sheet.
func (s *Service) ReportDetail(ctx context.Context, req ReportRequest) (*Report, []Movement, error) {
	rng, err := NewDateRange(req.From, req.To)
	if err != nil {
		return nil, nil, err
	}

	var (
		report    *Report
		movements []Movement
	)
	err = s.snapshot(ctx, func(ctx context.Context) error {
		var err error
		report, movements, err = s.buildReport(ctx, req.RegisterID, rng)
		return err
	})
	if err != nil {
		return nil, nil, err
	}
	return report, movements, nil
}

// snapshot runs fn read-only when the transaction manager supports it, so the
// opening totals and the in-range movements come from the same ledger state.
func (s *Service) snapshot(ctx context.Context, fn func(ctx context.Context) error) error {
	if ro, ok := s.txm.(tx.ReadOnlyManager); ok {
		return ro.ReadOnly(ctx, fn)
	}
	return s.txm.RunInTransaction(ctx, fn)
}

func (s *Service) buildReport(ctx context.Context, registerID *id.ID, rng DateRange) (*Report, []Movement, error) {
	var regs []*Register
	if registerID != nil {
		reg, err := s.repo.GetRegister(ctx, *registerID)
		if err != nil {
			return nil, nil, err
		}
		regs = []*Register{reg}
	} else {
		var err error
		regs, err = s.repo.ListRegisters(ctx)
		if err != nil {
			return nil, nil, err
		}
	}

	opening := types.Zero()
	for _, reg := range regs {
		opening = opening.Add(reg.OpeningBalance)
	}

	if s.opening == OpeningCumulative {
		before := rng.Start()
		rows, err := s.repo.CategoryTotals(ctx, TotalsFilter{RegisterID: registerID, Before: &before})
		if err != nil {
			return nil, nil, fmt.Errorf("totals before %s: %w", before.Format(dateLayout), err)
		}
		prior, err := FoldTotals(rows)
		if err != nil {
			return nil, nil, err
		}
		opening = opening.Add(prior.NetBalance)
	}

	start, end := rng.Start(), rng.End()
	movements, err := s.repo.ListMovements(ctx, MovementFilter{
		RegisterID: registerID,
		From:       &start,
		To:         &end,
	})
	if err != nil {
		return nil, nil, err
	}

	report, err := BuildReport(movements, opening, rng)
	if err != nil {
		return nil, nil, err
	}
	report.RegisterID = registerID
	report.OpeningPolicy = s.opening
	return report, movements, nil
}
