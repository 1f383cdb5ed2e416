package controller

import (
	"context"
	"testing"
	"time"

	e "github.com/gartstein/crm/internal/crm/errors"
	"github.com/gartstein/crm/internal/crm/events"
	"github.com/gartstein/crm/internal/crm/models"
	"github.com/gartstein/crm/internal/crm/query"
	"github.com/gartstein/crm/internal/pkg/utils"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

// MockContactRepository implements the ContactRepository interface for testing
type MockContactRepository struct {
	createContact       func(context.Context, *models.Contact) error
	getContact          func(context.Context, uuid.UUID) (*models.Contact, error)
	updateContact       func(context.Context, *models.ContactUpdate, time.Time) error
	setContactDeletedAt func(context.Context, uuid.UUID, *time.Time, time.Time) error
	deleteContact       func(context.Context, uuid.UUID) error
	contactEmailExists  func(context.Context, string, uuid.UUID) (bool, error)
	listContacts        func(context.Context, query.Query) ([]*models.Contact, int64, error)
	companyExists       func(context.Context, uuid.UUID) (bool, error)
}

func (m *MockContactRepository) CreateContact(ctx context.Context, c *models.Contact) error {
	return m.createContact(ctx, c)
}

func (m *MockContactRepository) GetContact(ctx context.Context, id uuid.UUID) (*models.Contact, error) {
	return m.getContact(ctx, id)
}

func (m *MockContactRepository) UpdateContact(ctx context.Context, u *models.ContactUpdate, at time.Time) error {
	return m.updateContact(ctx, u, at)
}

func (m *MockContactRepository) SetContactDeletedAt(ctx context.Context, id uuid.UUID, deletedAt *time.Time, at time.Time) error {
	return m.setContactDeletedAt(ctx, id, deletedAt, at)
}

func (m *MockContactRepository) DeleteContact(ctx context.Context, id uuid.UUID) error {
	return m.deleteContact(ctx, id)
}

func (m *MockContactRepository) ContactEmailExists(ctx context.Context, email string, exclude uuid.UUID) (bool, error) {
	return m.contactEmailExists(ctx, email, exclude)
}

func (m *MockContactRepository) ListContacts(ctx context.Context, q query.Query) ([]*models.Contact, int64, error) {
	return m.listContacts(ctx, q)
}

func (m *MockContactRepository) CompanyExists(ctx context.Context, id uuid.UUID) (bool, error) {
	return m.companyExists(ctx, id)
}

func newTestContactService(t *testing.T, repo *MockContactRepository, producer *MockProducer) *ContactService {
	svc := NewContactService(repo, producer, nil, nil, zaptest.NewLogger(t))
	svc.now = func() time.Time { return fixedNow }
	return svc
}

func TestContactService_CreateContact(t *testing.T) {
	companyID := uuid.New()

	tests := []struct {
		name          string
		input         *models.Contact
		mockSetup     func(*MockContactRepository)
		expectedError error
	}{
		{
			name:  "successful creation with company",
			input: &models.Contact{FirstName: "Jane", LastName: "Doe", Email: "jane@acme.com", CompanyID: &companyID},
			mockSetup: func(mr *MockContactRepository) {
				mr.companyExists = func(_ context.Context, id uuid.UUID) (bool, error) {
					return id == companyID, nil
				}
				mr.contactEmailExists = func(_ context.Context, _ string, _ uuid.UUID) (bool, error) {
					return false, nil
				}
				mr.createContact = func(_ context.Context, _ *models.Contact) error {
					return nil
				}
			},
		},
		{
			name:  "unknown company",
			input: &models.Contact{FirstName: "Jane", LastName: "Doe", Email: "jane@acme.com", CompanyID: &companyID},
			mockSetup: func(mr *MockContactRepository) {
				mr.companyExists = func(_ context.Context, _ uuid.UUID) (bool, error) {
					return false, nil
				}
			},
			expectedError: e.ErrInvalidInput,
		},
		{
			name:          "missing last name",
			input:         &models.Contact{FirstName: "Jane", Email: "jane@acme.com"},
			mockSetup:     func(_ *MockContactRepository) {},
			expectedError: e.ErrInvalidInput,
		},
		{
			name:  "duplicate email",
			input: &models.Contact{FirstName: "Jane", LastName: "Doe", Email: "jane@acme.com"},
			mockSetup: func(mr *MockContactRepository) {
				mr.contactEmailExists = func(_ context.Context, _ string, _ uuid.UUID) (bool, error) {
					return true, nil
				}
			},
			expectedError: e.ErrDuplicateEmail,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mockRepo := &MockContactRepository{}
			mockProducer := &MockProducer{}
			tt.mockSetup(mockRepo)
			svc := newTestContactService(t, mockRepo, mockProducer)

			result, err := svc.CreateContact(context.Background(), tt.input)

			if tt.expectedError != nil {
				assert.ErrorIs(t, err, tt.expectedError)
				assert.Empty(t, mockProducer.types())
				return
			}
			require.NoError(t, err)
			assert.NotEqual(t, uuid.Nil, result.ID)
			assert.Equal(t, fixedNow, result.CreatedAt)
			assert.Equal(t, []events.EventType{events.ContactCreated}, mockProducer.types())
		})
	}
}

func TestContactService_UpdateContact(t *testing.T) {
	testID := uuid.New()
	deletedAt := fixedNow.Add(-time.Hour)
	trashed := func() *models.Contact {
		return &models.Contact{ID: testID, FirstName: "Jane", LastName: "Doe", Email: "jane@acme.com", DeletedAt: &deletedAt}
	}

	t.Run("trashed contact can be updated", func(t *testing.T) {
		calls := 0
		mockRepo := &MockContactRepository{
			getContact: func(_ context.Context, _ uuid.UUID) (*models.Contact, error) {
				calls++
				c := trashed()
				if calls > 1 {
					c.City = "Boston"
				}
				return c, nil
			},
			updateContact: func(_ context.Context, _ *models.ContactUpdate, _ time.Time) error {
				return nil
			},
		}
		mockProducer := &MockProducer{}
		svc := newTestContactService(t, mockRepo, mockProducer)

		result, err := svc.UpdateContact(context.Background(), &models.ContactUpdate{ID: testID, City: utils.Ptr("Boston")})

		require.NoError(t, err)
		assert.Equal(t, "Boston", result.City)
		assert.True(t, result.IsDeleted(), "update does not restore")
		assert.Equal(t, []events.EventType{events.ContactUpdated}, mockProducer.types())
	})

	t.Run("detaching skips the company check", func(t *testing.T) {
		mockRepo := &MockContactRepository{
			getContact: func(_ context.Context, _ uuid.UUID) (*models.Contact, error) {
				return trashed(), nil
			},
			updateContact: func(_ context.Context, u *models.ContactUpdate, _ time.Time) error {
				assert.True(t, u.DetachesCompany())
				return nil
			},
		}
		svc := newTestContactService(t, mockRepo, &MockProducer{})

		_, err := svc.UpdateContact(context.Background(), &models.ContactUpdate{ID: testID, CompanyID: utils.Ptr(uuid.Nil)})
		require.NoError(t, err)
	})

	t.Run("unknown company", func(t *testing.T) {
		mockRepo := &MockContactRepository{
			getContact: func(_ context.Context, _ uuid.UUID) (*models.Contact, error) {
				return trashed(), nil
			},
			companyExists: func(_ context.Context, _ uuid.UUID) (bool, error) {
				return false, nil
			},
		}
		svc := newTestContactService(t, mockRepo, &MockProducer{})

		_, err := svc.UpdateContact(context.Background(), &models.ContactUpdate{ID: testID, CompanyID: utils.Ptr(uuid.New())})
		assert.ErrorIs(t, err, e.ErrInvalidInput)
	})

	t.Run("malformed email", func(t *testing.T) {
		mockRepo := &MockContactRepository{
			getContact: func(_ context.Context, _ uuid.UUID) (*models.Contact, error) {
				return trashed(), nil
			},
		}
		svc := newTestContactService(t, mockRepo, &MockProducer{})

		_, err := svc.UpdateContact(context.Background(), &models.ContactUpdate{ID: testID, Email: utils.Ptr("jane")})
		assert.ErrorIs(t, err, e.ErrInvalidInput)
		assert.Contains(t, err.Error(), "email must be a valid email")
	})
}

func TestContactService_RestoreContact(t *testing.T) {
	testID := uuid.New()
	deletedAt := fixedNow.Add(-time.Hour)

	tests := []struct {
		name           string
		contact        *models.Contact
		expectedStatus models.ResultStatus
		expectedEvents []events.EventType
	}{
		{
			name:           "restores trashed contact",
			contact:        &models.Contact{ID: testID, DeletedAt: &deletedAt},
			expectedStatus: models.ResultSuccess,
			expectedEvents: []events.EventType{events.ContactRestored},
		},
		{
			name:           "active contact is an info no-op",
			contact:        &models.Contact{ID: testID},
			expectedStatus: models.ResultInfo,
			expectedEvents: []events.EventType{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mockRepo := &MockContactRepository{
				getContact: func(_ context.Context, _ uuid.UUID) (*models.Contact, error) {
					return tt.contact, nil
				},
				setContactDeletedAt: func(_ context.Context, _ uuid.UUID, _ *time.Time, _ time.Time) error {
					return nil
				},
			}
			mockProducer := &MockProducer{}
			svc := newTestContactService(t, mockRepo, mockProducer)

			res, err := svc.RestoreContact(context.Background(), testID)

			require.NoError(t, err)
			assert.Equal(t, tt.expectedStatus, res.Status)
			assert.Equal(t, tt.expectedEvents, mockProducer.types())
		})
	}
}

func TestContactService_TrashContact(t *testing.T) {
	testID := uuid.New()
	deletedAt := fixedNow.Add(-time.Hour)

	tests := []struct {
		name        string
		contact     *models.Contact
		trash       bool
		wantStatus  models.ResultStatus
		wantStamped bool
		wantEvents  []events.EventType
	}{
		{
			name:       "soft delete of trashed contact is a warning",
			contact:    &models.Contact{ID: testID, DeletedAt: &deletedAt},
			wantStatus: models.ResultWarning,
			wantEvents: []events.EventType{},
		},
		{
			name:        "trash of trashed contact stamps it again",
			contact:     &models.Contact{ID: testID, DeletedAt: &deletedAt},
			trash:       true,
			wantStatus:  models.ResultSuccess,
			wantStamped: true,
			wantEvents:  []events.EventType{events.ContactSoftDeleted},
		},
		{
			name:        "trash of active contact",
			contact:     &models.Contact{ID: testID},
			trash:       true,
			wantStatus:  models.ResultSuccess,
			wantStamped: true,
			wantEvents:  []events.EventType{events.ContactSoftDeleted},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var stamped *time.Time
			mockRepo := &MockContactRepository{
				getContact: func(_ context.Context, _ uuid.UUID) (*models.Contact, error) {
					c := *tt.contact
					return &c, nil
				},
				setContactDeletedAt: func(_ context.Context, _ uuid.UUID, at *time.Time, _ time.Time) error {
					stamped = at
					return nil
				},
			}
			mockProducer := &MockProducer{}
			svc := newTestContactService(t, mockRepo, mockProducer)

			action := svc.SoftDeleteContact
			if tt.trash {
				action = svc.TrashContact
			}
			res, err := action(context.Background(), testID)

			require.NoError(t, err)
			assert.Equal(t, tt.wantStatus, res.Status)
			assert.Equal(t, tt.wantEvents, mockProducer.types())
			if tt.wantStamped {
				require.NotNil(t, stamped)
				assert.Equal(t, fixedNow, *stamped)
				assert.Equal(t, "Contact deleted successfully", res.Message)
			} else {
				assert.Nil(t, stamped)
			}
		})
	}

	t.Run("missing contact", func(t *testing.T) {
		mockRepo := &MockContactRepository{
			getContact: func(_ context.Context, _ uuid.UUID) (*models.Contact, error) {
				return nil, e.ErrNotFound
			},
		}
		svc := newTestContactService(t, mockRepo, &MockProducer{})

		_, err := svc.TrashContact(context.Background(), testID)
		assert.ErrorIs(t, err, e.ErrNotFound)
	})
}

func TestContactService_ListCompanyContacts(t *testing.T) {
	companyID := uuid.New()

	t.Run("scopes to the company", func(t *testing.T) {
		var got query.Query
		mockRepo := &MockContactRepository{
			companyExists: func(_ context.Context, _ uuid.UUID) (bool, error) {
				return true, nil
			},
			listContacts: func(_ context.Context, q query.Query) ([]*models.Contact, int64, error) {
				got = q
				return nil, 0, nil
			},
		}
		svc := newTestContactService(t, mockRepo, &MockProducer{})

		page, err := svc.ListCompanyContacts(context.Background(), companyID, query.Params{})
		require.NoError(t, err)
		require.NotNil(t, got.CompanyID)
		assert.Equal(t, companyID, *got.CompanyID)
		assert.Empty(t, page.Items)
		assert.NotNil(t, page.Items)
		assert.Equal(t, 1, page.Pages)
	})

	t.Run("missing company", func(t *testing.T) {
		mockRepo := &MockContactRepository{
			companyExists: func(_ context.Context, _ uuid.UUID) (bool, error) {
				return false, nil
			},
		}
		svc := newTestContactService(t, mockRepo, &MockProducer{})

		_, err := svc.ListCompanyContacts(context.Background(), companyID, query.Params{})
		assert.ErrorIs(t, err, e.ErrNotFound)
	})
}
