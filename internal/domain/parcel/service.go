package parcel

import (
	"context"
	"fmt"
	"strings"
	"time"

	"colisflow/internal/core/apperror"
	"colisflow/internal/core/id"
	"colisflow/internal/core/numerator"
	"colisflow/internal/core/types"
	"colisflow/pkg/logger"
)

// Repository is the parcel storage contract.
type Repository interface {
	Create(ctx context.Context, p *Parcel) error
	GetByID(ctx context.Context, parcelID id.ID) (*Parcel, error)
	// GetByReference returns a NOT_FOUND AppError on a miss.
	GetByReference(ctx context.Context, reference string) (*Parcel, error)
	List(ctx context.Context, filter ListFilter) ([]*Parcel, error)
}

// CreateInput holds the fields of a new parcel.
type CreateInput struct {
	Reference   string
	ClientName  string
	Description string
	WeightKg    types.Money
	Status      Status
}

// Service provides parcel operations.
type Service struct {
	repo    Repository
	numbers numerator.Generator
}

// NewService creates a new parcel service.
func NewService(repo Repository, numbers numerator.Generator) *Service {
	return &Service{repo: repo, numbers: numbers}
}

// Create stores a parcel, generating a COL-YYYY-NNNNN reference when none is given.
func (s *Service) Create(ctx context.Context, in CreateInput) (*Parcel, error) {
	p := &Parcel{
		ID:          id.New(),
		Reference:   NormalizeReference(in.Reference),
		ClientName:  strings.TrimSpace(in.ClientName),
		Description: strings.TrimSpace(in.Description),
		WeightKg:    in.WeightKg,
		Status:      in.Status,
	}
	if p.Status == "" {
		p.Status = StatusReceived
	}
	if err := p.Validate(); err != nil {
		return nil, err
	}

	if p.Reference == "" {
		ref, err := s.numbers.GetNextNumber(ctx, numerator.DefaultConfig("COL"),
			&numerator.Options{Strategy: numerator.StrategyCached}, time.Now())
		if err != nil {
			return nil, fmt.Errorf("generate parcel reference: %w", err)
		}
		p.Reference = ref
	}

	if err := s.repo.Create(ctx, p); err != nil {
		return nil, err
	}
	logger.Info(ctx, "parcel created", "parcel_id", p.ID, "reference", p.Reference)
	return p, nil
}

// Get returns one parcel.
func (s *Service) Get(ctx context.Context, parcelID id.ID) (*Parcel, error) {
	return s.repo.GetByID(ctx, parcelID)
}

// List lists parcels newest first.
func (s *Service) List(ctx context.Context, filter ListFilter) ([]*Parcel, error) {
	if filter.Limit <= 0 || filter.Limit > 200 {
		filter.Limit = 50
	}
	return s.repo.List(ctx, filter)
}

// FindByReference resolves a reference code. A miss returns (nil, nil) so that
// callers can treat the link as optional.
func (s *Service) FindByReference(ctx context.Context, reference string) (*Parcel, error) {
	ref := NormalizeReference(reference)
	if ref == "" {
		return nil, nil
	}
	p, err := s.repo.GetByReference(ctx, ref)
	if err != nil {
		if apperror.IsNotFound(err) {
			return nil, nil
		}
		return nil, err
	}
	return p, nil
}
