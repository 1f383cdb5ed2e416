package controller

import (
	"context"
	"fmt"
	"testing"

	"github.com/gartstein/crm/internal/crm/db"
	e "github.com/gartstein/crm/internal/crm/errors"
	"github.com/gartstein/crm/internal/crm/events"
	"github.com/gartstein/crm/internal/crm/metrics"
	"github.com/gartstein/crm/internal/crm/models"
	"github.com/gartstein/crm/internal/crm/query"
	"github.com/gartstein/crm/internal/pkg/utils"
	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

type services struct {
	companies *CompanyService
	contacts  *ContactService
	producer  *MockProducer
}

func setupServices(t *testing.T) services {
	repo, err := db.NewRepository(&db.Config{URL: "sqlite:///:memory:"})
	require.NoError(t, err)
	t.Cleanup(func() { _ = repo.Close() })

	logger := zaptest.NewLogger(t)
	producer := &MockProducer{}
	builder := query.NewBuilder(query.Config{})
	m := metrics.NewStoreMetrics(prometheus.NewRegistry())
	return services{
		companies: NewCompanyService(repo, producer, builder, m, logger),
		contacts:  NewContactService(repo, producer, builder, m, logger),
		producer:  producer,
	}
}

func statusQuery(status string) query.Params {
	return query.Params{Status: status}
}

func TestScenario_CompanyLifecycle(t *testing.T) {
	ctx := context.Background()
	s := setupServices(t)

	created, err := s.companies.CreateCompany(ctx, &models.Company{Name: "Acme", Email: "a@acme.com", City: "Springfield"})
	require.NoError(t, err)

	got, err := s.companies.GetCompany(ctx, created.ID)
	require.NoError(t, err)
	assert.Nil(t, got.DeletedAt)
	assert.Equal(t, "Acme", got.Name)
	assert.Equal(t, "a@acme.com", got.Email)
	assert.Equal(t, "Springfield", got.City)
	assert.True(t, got.CreatedAt.Equal(created.CreatedAt))

	ids := func(status string) []uuid.UUID {
		page, err := s.companies.ListCompanies(ctx, statusQuery(status))
		require.NoError(t, err)
		out := []uuid.UUID{}
		for _, c := range page.Items {
			out = append(out, c.ID)
		}
		return out
	}

	res, err := s.companies.SoftDeleteCompany(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, models.ResultSuccess, res.Status)
	assert.NotContains(t, ids("active"), created.ID)
	assert.Contains(t, ids("trashed"), created.ID)
	assert.Contains(t, ids("all"), created.ID)

	res, err = s.companies.SoftDeleteCompany(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, models.ResultWarning, res.Status)
	trashed, err := s.companies.GetCompany(ctx, created.ID)
	require.NoError(t, err)
	assert.True(t, trashed.IsDeleted(), "second soft delete keeps the record trashed")

	_, err = s.companies.UpdateCompany(ctx, &models.CompanyUpdate{ID: created.ID, Name: utils.Ptr("Acme 2")})
	assert.ErrorIs(t, err, e.ErrInvalidState)

	restored, err := s.companies.RestoreCompany(ctx, created.ID)
	require.NoError(t, err)
	assert.Nil(t, restored.DeletedAt)
	assert.Contains(t, ids("active"), created.ID)

	_, err = s.companies.RestoreCompany(ctx, created.ID)
	assert.ErrorIs(t, err, e.ErrInvalidState)

	_, err = s.companies.CreateCompany(ctx, &models.Company{Name: "Other", Email: "a@acme.com"})
	assert.ErrorIs(t, err, e.ErrDuplicateEmail)

	res, err = s.companies.DeleteCompany(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, models.ResultSuccess, res.Status)
	_, err = s.companies.GetCompany(ctx, created.ID)
	assert.ErrorIs(t, err, e.ErrNotFound)
	_, err = s.companies.DeleteCompany(ctx, created.ID)
	assert.ErrorIs(t, err, e.ErrNotFound)

	assert.Equal(t, []events.EventType{
		events.CompanyCreated,
		events.CompanySoftDeleted,
		events.CompanyRestored,
		events.CompanyDeleted,
	}, s.producer.types())
}

func TestScenario_ContactLifecycle(t *testing.T) {
	ctx := context.Background()
	s := setupServices(t)

	contact, err := s.contacts.CreateContact(ctx, &models.Contact{FirstName: "Jane", LastName: "Doe", Email: "jane@example.com"})
	require.NoError(t, err)

	res, err := s.contacts.RestoreContact(ctx, contact.ID)
	require.NoError(t, err)
	assert.Equal(t, models.ResultInfo, res.Status)
	unchanged, err := s.contacts.GetContact(ctx, contact.ID)
	require.NoError(t, err)
	assert.True(t, unchanged.UpdatedAt.Equal(contact.UpdatedAt), "info restore writes nothing")

	_, err = s.contacts.SoftDeleteContact(ctx, contact.ID)
	require.NoError(t, err)

	updated, err := s.contacts.UpdateContact(ctx, &models.ContactUpdate{ID: contact.ID, City: utils.Ptr("Boston")})
	require.NoError(t, err)
	assert.Equal(t, "Boston", updated.City)
	assert.True(t, updated.IsDeleted())

	res, err = s.contacts.RestoreContact(ctx, contact.ID)
	require.NoError(t, err)
	assert.Equal(t, models.ResultSuccess, res.Status)

	_, err = s.contacts.DeleteContact(ctx, contact.ID)
	require.NoError(t, err)
	_, err = s.contacts.GetContact(ctx, contact.ID)
	assert.ErrorIs(t, err, e.ErrNotFound)
	_, err = s.contacts.DeleteContact(ctx, uuid.New())
	assert.ErrorIs(t, err, e.ErrNotFound)
}

func TestScenario_ContactPagination(t *testing.T) {
	ctx := context.Background()
	s := setupServices(t)

	for i := 0; i < 15; i++ {
		_, err := s.contacts.CreateContact(ctx, &models.Contact{
			FirstName: fmt.Sprintf("Contact%02d", i),
			LastName:  "Test",
			Email:     fmt.Sprintf("contact%02d@example.com", i),
		})
		require.NoError(t, err)
	}

	page, err := s.contacts.ListContacts(ctx, query.Params{Skip: utils.Ptr(10), Limit: utils.Ptr(10)})
	require.NoError(t, err)
	assert.Len(t, page.Items, 5)
	assert.Equal(t, int64(15), page.Total)
	assert.Equal(t, 2, page.Page)
	assert.Equal(t, 2, page.Pages)
	assert.Equal(t, "Contact10", page.Items[0].FirstName)

	page, err = s.contacts.ListContacts(ctx, query.Params{Search: "CONTACT0"})
	require.NoError(t, err)
	assert.Equal(t, int64(10), page.Total)
	assert.Len(t, page.Items, 10)
	assert.Equal(t, 1, page.Pages)
}

func TestScenario_SearchIsCaseInsensitive(t *testing.T) {
	ctx := context.Background()
	s := setupServices(t)

	_, err := s.companies.CreateCompany(ctx, &models.Company{Name: "Acme Corporation", Email: "info@acme.com"})
	require.NoError(t, err)

	for _, term := range []string{"acme", "ACME", "orp"} {
		page, err := s.companies.ListCompanies(ctx, query.Params{Search: term})
		require.NoError(t, err)
		assert.Equal(t, int64(1), page.Total, "term %q", term)
	}
}

func TestScenario_CompanyContacts(t *testing.T) {
	ctx := context.Background()
	s := setupServices(t)

	acme, err := s.companies.CreateCompany(ctx, &models.Company{Name: "Acme", Email: "info@acme.com"})
	require.NoError(t, err)
	globex, err := s.companies.CreateCompany(ctx, &models.Company{Name: "Globex", Email: "info@globex.com"})
	require.NoError(t, err)

	_, err = s.contacts.CreateContact(ctx, &models.Contact{FirstName: "A", LastName: "One", Email: "a@acme.com", CompanyID: &acme.ID})
	require.NoError(t, err)
	moved, err := s.contacts.CreateContact(ctx, &models.Contact{FirstName: "B", LastName: "Two", Email: "b@acme.com", CompanyID: &acme.ID})
	require.NoError(t, err)
	_, err = s.contacts.CreateContact(ctx, &models.Contact{FirstName: "C", LastName: "Three", Email: "c@globex.com", CompanyID: &globex.ID})
	require.NoError(t, err)

	_, err = s.contacts.CreateContact(ctx, &models.Contact{FirstName: "D", LastName: "Four", Email: "d@nowhere.com", CompanyID: utils.Ptr(uuid.New())})
	assert.ErrorIs(t, err, e.ErrInvalidInput)

	page, err := s.contacts.ListCompanyContacts(ctx, acme.ID, query.Params{})
	require.NoError(t, err)
	assert.Equal(t, int64(2), page.Total)

	_, err = s.contacts.UpdateContact(ctx, &models.ContactUpdate{ID: moved.ID, CompanyID: &globex.ID})
	require.NoError(t, err)

	page, err = s.contacts.ListContacts(ctx, query.Params{CompanyID: &globex.ID})
	require.NoError(t, err)
	assert.Equal(t, int64(2), page.Total)

	_, err = s.companies.DeleteCompany(ctx, globex.ID)
	require.NoError(t, err)
	_, err = s.contacts.ListCompanyContacts(ctx, globex.ID, query.Params{})
	assert.ErrorIs(t, err, e.ErrNotFound)

	orphan, err := s.contacts.GetContact(ctx, moved.ID)
	require.NoError(t, err)
	require.NotNil(t, orphan.CompanyID, "hard deleting a company keeps its contacts")
	assert.Equal(t, globex.ID, *orphan.CompanyID)
}

func TestScenario_CreateTrimsWhitespace(t *testing.T) {
	ctx := context.Background()
	s := setupServices(t)

	created, err := s.companies.CreateCompany(ctx, &models.Company{Name: "  Acme ", Email: " a@acme.com", City: "Springfield\t"})
	require.NoError(t, err)
	assert.Equal(t, "Acme", created.Name)
	assert.Equal(t, "a@acme.com", created.Email)

	got, err := s.companies.GetCompany(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, created.Name, got.Name)
	assert.Equal(t, created.Email, got.Email)
	assert.Equal(t, "Springfield", got.City)

	_, err = s.companies.CreateCompany(ctx, &models.Company{Name: "Acme 2", Email: "a@acme.com "})
	assert.ErrorIs(t, err, e.ErrDuplicateEmail)
}
