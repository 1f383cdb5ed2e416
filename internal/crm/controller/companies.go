package controller

import (
	"context"
	"errors"
	"fmt"
	"time"

	e "github.com/gartstein/crm/internal/crm/errors"
	"github.com/gartstein/crm/internal/crm/events"
	"github.com/gartstein/crm/internal/crm/metrics"
	"github.com/gartstein/crm/internal/crm/models"
	"github.com/gartstein/crm/internal/crm/query"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// CompanyRepository defines the storage interface for Company objects.
type CompanyRepository interface {
	CreateCompany(ctx context.Context, company *models.Company) error
	GetCompany(ctx context.Context, id uuid.UUID) (*models.Company, error)
	UpdateCompany(ctx context.Context, update *models.CompanyUpdate, updatedAt time.Time) error
	SetCompanyDeletedAt(ctx context.Context, id uuid.UUID, deletedAt *time.Time, updatedAt time.Time) error
	DeleteCompany(ctx context.Context, id uuid.UUID) error
	CompanyEmailExists(ctx context.Context, email string, exclude uuid.UUID) (bool, error)
	ListCompanies(ctx context.Context, q query.Query) ([]*models.Company, int64, error)
}

// CompanyService provides methods to manage companies via repository
// operations and event production.
type CompanyService struct {
	repo     CompanyRepository
	producer EventProducer
	builder  *query.Builder
	observer observer
	logger   *zap.Logger
	now      func() time.Time
}

// NewCompanyService constructs a CompanyService. A nil builder uses the
// default pagination settings; nil metrics record nothing.
func NewCompanyService(
	repo CompanyRepository,
	producer EventProducer,
	builder *query.Builder,
	m *metrics.StoreMetrics,
	logger *zap.Logger,
) *CompanyService {
	if builder == nil {
		builder = query.NewBuilder(query.Config{})
	}
	return &CompanyService{
		repo:     repo,
		producer: producer,
		builder:  builder,
		observer: observer{entity: entityCompany, metrics: m},
		logger:   logger.Named("company_service"),
		now:      utcNow,
	}
}

// CreateCompany adds a new Company after validating input data,
// ensures the email is not taken by any company, and triggers an event.
func (s *CompanyService) CreateCompany(ctx context.Context, company *models.Company) (_ *models.Company, err error) {
	defer s.observer.observe(opCreate, time.Now(), &err)

	company.Normalize()
	if err := validateStruct(company); err != nil {
		return nil, err
	}

	exists, err := s.repo.CompanyEmailExists(ctx, company.Email, uuid.Nil)
	if err != nil {
		return nil, fmt.Errorf("failed to check email existence: %w", err)
	}
	if exists {
		return nil, e.ErrDuplicateEmail
	}

	id, err := uuid.NewV7()
	if err != nil {
		return nil, fmt.Errorf("failed to generate company id: %w", err)
	}
	now := s.now()
	company.ID = id
	company.CreatedAt = now
	company.UpdatedAt = now
	company.DeletedAt = nil

	if err := s.repo.CreateCompany(ctx, company); err != nil {
		return nil, fmt.Errorf("failed to create company: %w", err)
	}
	s.producer.Produce(events.NewCompanyEvent(events.CompanyCreated, company, now))
	return company, nil
}

// GetCompany retrieves a Company by ID, trashed or not.
func (s *CompanyService) GetCompany(ctx context.Context, id uuid.UUID) (_ *models.Company, err error) {
	defer s.observer.observe(opGet, time.Now(), &err)
	return s.get(ctx, id)
}

func (s *CompanyService) get(ctx context.Context, id uuid.UUID) (*models.Company, error) {
	company, err := s.repo.GetCompany(ctx, id)
	if err != nil {
		if errors.Is(err, e.ErrNotFound) {
			return nil, err
		}
		return nil, fmt.Errorf("failed to get company: %w", err)
	}
	return company, nil
}

// UpdateCompany modifies the specified Company fields and returns the
// stored result. Trashed companies cannot be updated.
func (s *CompanyService) UpdateCompany(ctx context.Context, update *models.CompanyUpdate) (_ *models.Company, err error) {
	defer s.observer.observe(opUpdate, time.Now(), &err)

	if update.ID == uuid.Nil {
		return nil, fmt.Errorf("%w: invalid company ID", e.ErrInvalidInput)
	}
	update.Normalize()

	current, err := s.get(ctx, update.ID)
	if err != nil {
		return nil, err
	}
	if current.IsDeleted() {
		return nil, fmt.Errorf("%w: cannot update a deleted company", e.ErrInvalidState)
	}

	merged := *current
	update.Apply(&merged)
	if err := validateStruct(&merged); err != nil {
		return nil, err
	}
	if merged.Email != current.Email {
		exists, err := s.repo.CompanyEmailExists(ctx, merged.Email, current.ID)
		if err != nil {
			return nil, fmt.Errorf("failed to check email existence: %w", err)
		}
		if exists {
			return nil, e.ErrDuplicateEmail
		}
	}

	now := s.now()
	if err := s.repo.UpdateCompany(ctx, update, now); err != nil {
		if errors.Is(err, e.ErrNotFound) {
			return nil, err
		}
		return nil, fmt.Errorf("failed to update company: %w", err)
	}

	updated, err := s.repo.GetCompany(ctx, update.ID)
	if err != nil {
		s.logger.Error("Failed to get company for event",
			zap.Error(err),
			zap.String("company_id", update.ID.String()),
		)
		return nil, err
	}
	s.producer.Produce(events.NewCompanyEvent(events.CompanyUpdated, updated, now))
	return updated, nil
}

// SoftDeleteCompany moves a company to the trash. A company already in the
// trash is left untouched and reported with a warning.
func (s *CompanyService) SoftDeleteCompany(ctx context.Context, id uuid.UUID) (res models.StatusResult, err error) {
	defer s.observer.observeResult(opSoftDelete, time.Now(), &res, &err)

	company, err := s.get(ctx, id)
	if err != nil {
		return models.StatusResult{}, err
	}
	if company.IsDeleted() {
		return models.StatusResult{Status: models.ResultWarning, Message: "Company is already deleted"}, nil
	}

	now := s.now()
	if err := s.repo.SetCompanyDeletedAt(ctx, id, &now, now); err != nil {
		return models.StatusResult{}, fmt.Errorf("failed to soft delete company: %w", err)
	}
	company.DeletedAt = &now
	company.UpdatedAt = now
	s.producer.Produce(events.NewCompanyEvent(events.CompanySoftDeleted, company, now))

	return models.StatusResult{Status: models.ResultSuccess, Message: "Company has been moved to trash"}, nil
}

// RestoreCompany takes a company out of the trash and returns it. Restoring
// a company that is not in the trash is an ErrInvalidState.
func (s *CompanyService) RestoreCompany(ctx context.Context, id uuid.UUID) (_ *models.Company, err error) {
	defer s.observer.observe(opRestore, time.Now(), &err)

	company, err := s.get(ctx, id)
	if err != nil {
		return nil, err
	}
	if !company.IsDeleted() {
		return nil, fmt.Errorf("%w: company is not in trash", e.ErrInvalidState)
	}

	now := s.now()
	if err := s.repo.SetCompanyDeletedAt(ctx, id, nil, now); err != nil {
		return nil, fmt.Errorf("failed to restore company: %w", err)
	}
	company.DeletedAt = nil
	company.UpdatedAt = now
	s.producer.Produce(events.NewCompanyEvent(events.CompanyRestored, company, now))

	return company, nil
}

// DeleteCompany permanently removes a Company by ID, in or out of the
// trash, and fires a deletion event. Its contacts are kept.
func (s *CompanyService) DeleteCompany(ctx context.Context, id uuid.UUID) (res models.StatusResult, err error) {
	defer s.observer.observeResult(opHardDelete, time.Now(), &res, &err)

	company, err := s.get(ctx, id)
	if err != nil {
		return models.StatusResult{}, err
	}

	if err := s.repo.DeleteCompany(ctx, id); err != nil {
		if errors.Is(err, e.ErrNotFound) {
			return models.StatusResult{}, err
		}
		return models.StatusResult{}, fmt.Errorf("failed to delete company: %w", err)
	}
	s.producer.Produce(events.NewCompanyEvent(events.CompanyDeleted, company, s.now()))

	return models.StatusResult{Status: models.ResultSuccess, Message: "Company permanently deleted"}, nil
}

// ListCompanies returns one page of companies filtered by status and search.
func (s *CompanyService) ListCompanies(ctx context.Context, params query.Params) (_ query.Page[*models.Company], err error) {
	defer s.observer.observe(opList, time.Now(), &err)

	q, err := s.builder.Build(params)
	if err != nil {
		return query.Page[*models.Company]{}, err
	}
	items, total, err := s.repo.ListCompanies(ctx, q)
	if err != nil {
		return query.Page[*models.Company]{}, fmt.Errorf("failed to list companies: %w", err)
	}
	return query.NewPage(items, total, q), nil
}
