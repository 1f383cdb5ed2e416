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

// ContactRepository defines the storage interface for Contact objects.
type ContactRepository interface {
	CreateContact(ctx context.Context, contact *models.Contact) error
	GetContact(ctx context.Context, id uuid.UUID) (*models.Contact, error)
	UpdateContact(ctx context.Context, update *models.ContactUpdate, updatedAt time.Time) error
	SetContactDeletedAt(ctx context.Context, id uuid.UUID, deletedAt *time.Time, updatedAt time.Time) error
	DeleteContact(ctx context.Context, id uuid.UUID) error
	ContactEmailExists(ctx context.Context, email string, exclude uuid.UUID) (bool, error)
	ListContacts(ctx context.Context, q query.Query) ([]*models.Contact, int64, error)
	CompanyExists(ctx context.Context, id uuid.UUID) (bool, error)
}

// ContactService manages contacts. Unlike companies, contacts can be
// updated while trashed, and restoring an active contact is a no-op.
type ContactService struct {
	repo     ContactRepository
	producer EventProducer
	builder  *query.Builder
	observer observer
	logger   *zap.Logger
	now      func() time.Time
}

func NewContactService(
	repo ContactRepository,
	producer EventProducer,
	builder *query.Builder,
	m *metrics.StoreMetrics,
	logger *zap.Logger,
) *ContactService {
	if builder == nil {
		builder = query.NewBuilder(query.Config{})
	}
	return &ContactService{
		repo:     repo,
		producer: producer,
		builder:  builder,
		observer: observer{entity: entityContact, metrics: m},
		logger:   logger.Named("contact_service"),
		now:      utcNow,
	}
}

func (s *ContactService) CreateContact(ctx context.Context, contact *models.Contact) (_ *models.Contact, err error) {
	defer s.observer.observe(opCreate, time.Now(), &err)

	contact.Normalize()
	if err := validateStruct(contact); err != nil {
		return nil, err
	}
	if contact.CompanyID != nil {
		if err := s.checkCompany(ctx, *contact.CompanyID); err != nil {
			return nil, err
		}
	}

	exists, err := s.repo.ContactEmailExists(ctx, contact.Email, uuid.Nil)
	if err != nil {
		return nil, fmt.Errorf("failed to check email existence: %w", err)
	}
	if exists {
		return nil, e.ErrDuplicateEmail
	}

	id, err := uuid.NewV7()
	if err != nil {
		return nil, fmt.Errorf("failed to generate contact id: %w", err)
	}
	now := s.now()
	contact.ID = id
	contact.CreatedAt = now
	contact.UpdatedAt = now
	contact.DeletedAt = nil

	if err := s.repo.CreateContact(ctx, contact); err != nil {
		return nil, fmt.Errorf("failed to create contact: %w", err)
	}
	s.producer.Produce(events.NewContactEvent(events.ContactCreated, contact, now))
	return contact, nil
}

// checkCompany rejects references to companies that do not exist.
// Trashed companies are valid targets.
func (s *ContactService) checkCompany(ctx context.Context, companyID uuid.UUID) error {
	exists, err := s.repo.CompanyExists(ctx, companyID)
	if err != nil {
		return fmt.Errorf("failed to check company existence: %w", err)
	}
	if !exists {
		return fmt.Errorf("%w: company %s does not exist", e.ErrInvalidInput, companyID)
	}
	return nil
}

func (s *ContactService) GetContact(ctx context.Context, id uuid.UUID) (_ *models.Contact, err error) {
	defer s.observer.observe(opGet, time.Now(), &err)
	return s.get(ctx, id)
}

func (s *ContactService) get(ctx context.Context, id uuid.UUID) (*models.Contact, error) {
	contact, err := s.repo.GetContact(ctx, id)
	if err != nil {
		if errors.Is(err, e.ErrNotFound) {
			return nil, err
		}
		return nil, fmt.Errorf("failed to get contact: %w", err)
	}
	return contact, nil
}

// UpdateContact applies a partial update, trashed contacts included.
func (s *ContactService) UpdateContact(ctx context.Context, update *models.ContactUpdate) (_ *models.Contact, err error) {
	defer s.observer.observe(opUpdate, time.Now(), &err)

	if update.ID == uuid.Nil {
		return nil, fmt.Errorf("%w: invalid contact ID", e.ErrInvalidInput)
	}
	update.Normalize()

	current, err := s.get(ctx, update.ID)
	if err != nil {
		return nil, err
	}

	merged := *current
	update.Apply(&merged)
	if err := validateStruct(&merged); err != nil {
		return nil, err
	}
	if update.CompanyID != nil && !update.DetachesCompany() {
		if err := s.checkCompany(ctx, *update.CompanyID); err != nil {
			return nil, err
		}
	}
	if merged.Email != current.Email {
		exists, err := s.repo.ContactEmailExists(ctx, merged.Email, current.ID)
		if err != nil {
			return nil, fmt.Errorf("failed to check email existence: %w", err)
		}
		if exists {
			return nil, e.ErrDuplicateEmail
		}
	}

	now := s.now()
	if err := s.repo.UpdateContact(ctx, update, now); err != nil {
		if errors.Is(err, e.ErrNotFound) {
			return nil, err
		}
		return nil, fmt.Errorf("failed to update contact: %w", err)
	}

	updated, err := s.repo.GetContact(ctx, update.ID)
	if err != nil {
		s.logger.Error("Failed to get contact for event",
			zap.Error(err),
			zap.String("contact_id", update.ID.String()),
		)
		return nil, err
	}
	s.producer.Produce(events.NewContactEvent(events.ContactUpdated, updated, now))
	return updated, nil
}

func (s *ContactService) SoftDeleteContact(ctx context.Context, id uuid.UUID) (res models.StatusResult, err error) {
	defer s.observer.observeResult(opSoftDelete, time.Now(), &res, &err)

	contact, err := s.get(ctx, id)
	if err != nil {
		return models.StatusResult{}, err
	}
	if contact.IsDeleted() {
		return models.StatusResult{Status: models.ResultWarning, Message: "Contact is already deleted"}, nil
	}
	return s.trash(ctx, contact)
}

// TrashContact moves a contact to the trash whatever its state. A contact
// that is already trashed gets a fresh deletion time.
func (s *ContactService) TrashContact(ctx context.Context, id uuid.UUID) (res models.StatusResult, err error) {
	defer s.observer.observe(opSoftDelete, time.Now(), &err)

	contact, err := s.get(ctx, id)
	if err != nil {
		return models.StatusResult{}, err
	}
	return s.trash(ctx, contact)
}

func (s *ContactService) trash(ctx context.Context, contact *models.Contact) (models.StatusResult, error) {
	now := s.now()
	if err := s.repo.SetContactDeletedAt(ctx, contact.ID, &now, now); err != nil {
		return models.StatusResult{}, fmt.Errorf("failed to soft delete contact: %w", err)
	}
	contact.DeletedAt = &now
	contact.UpdatedAt = now
	s.producer.Produce(events.NewContactEvent(events.ContactSoftDeleted, contact, now))

	return models.StatusResult{Status: models.ResultSuccess, Message: "Contact deleted successfully"}, nil
}

// RestoreContact takes a contact out of the trash. An active contact is
// reported with an info result and left untouched.
func (s *ContactService) RestoreContact(ctx context.Context, id uuid.UUID) (res models.StatusResult, err error) {
	defer s.observer.observeResult(opRestore, time.Now(), &res, &err)

	contact, err := s.get(ctx, id)
	if err != nil {
		return models.StatusResult{}, err
	}
	if !contact.IsDeleted() {
		return models.StatusResult{Status: models.ResultInfo, Message: "Contact is not deleted"}, nil
	}

	now := s.now()
	if err := s.repo.SetContactDeletedAt(ctx, id, nil, now); err != nil {
		return models.StatusResult{}, fmt.Errorf("failed to restore contact: %w", err)
	}
	contact.DeletedAt = nil
	contact.UpdatedAt = now
	s.producer.Produce(events.NewContactEvent(events.ContactRestored, contact, now))

	return models.StatusResult{Status: models.ResultSuccess, Message: "Contact restored successfully"}, nil
}

func (s *ContactService) DeleteContact(ctx context.Context, id uuid.UUID) (res models.StatusResult, err error) {
	defer s.observer.observeResult(opHardDelete, time.Now(), &res, &err)

	contact, err := s.get(ctx, id)
	if err != nil {
		return models.StatusResult{}, err
	}

	if err := s.repo.DeleteContact(ctx, id); err != nil {
		if errors.Is(err, e.ErrNotFound) {
			return models.StatusResult{}, err
		}
		return models.StatusResult{}, fmt.Errorf("failed to delete contact: %w", err)
	}
	s.producer.Produce(events.NewContactEvent(events.ContactDeleted, contact, s.now()))

	return models.StatusResult{Status: models.ResultSuccess, Message: "Contact permanently deleted"}, nil
}

// ListContacts returns one page of contacts filtered by status, search and
// company.
func (s *ContactService) ListContacts(ctx context.Context, params query.Params) (_ query.Page[*models.Contact], err error) {
	defer s.observer.observe(opList, time.Now(), &err)

	q, err := s.builder.Build(params)
	if err != nil {
		return query.Page[*models.Contact]{}, err
	}
	return s.list(ctx, q)
}

// ListCompanyContacts lists the contacts of one company. The company may be
// trashed but must exist.
func (s *ContactService) ListCompanyContacts(ctx context.Context, companyID uuid.UUID, params query.Params) (_ query.Page[*models.Contact], err error) {
	defer s.observer.observe(opList, time.Now(), &err)

	exists, err := s.repo.CompanyExists(ctx, companyID)
	if err != nil {
		return query.Page[*models.Contact]{}, fmt.Errorf("failed to check company existence: %w", err)
	}
	if !exists {
		return query.Page[*models.Contact]{}, fmt.Errorf("%w: company %s", e.ErrNotFound, companyID)
	}

	q, err := s.builder.Build(params)
	if err != nil {
		return query.Page[*models.Contact]{}, err
	}
	return s.list(ctx, q.WithCompany(companyID))
}

func (s *ContactService) list(ctx context.Context, q query.Query) (query.Page[*models.Contact], error) {
	items, total, err := s.repo.ListContacts(ctx, q)
	if err != nil {
		return query.Page[*models.Contact]{}, fmt.Errorf("failed to list contacts: %w", err)
	}
	return query.NewPage(items, total, q), nil
}
