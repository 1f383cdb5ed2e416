package db

import (
	"context"
	"time"

	dbmodels "github.com/gartstein/crm/internal/crm/db/models"
	e "github.com/gartstein/crm/internal/crm/errors"
	"github.com/gartstein/crm/internal/crm/models"
	"github.com/gartstein/crm/internal/crm/query"
	"github.com/google/uuid"
	"github.com/samber/lo"
)

func (r *Repository) CreateContact(ctx context.Context, contact *models.Contact) error {
	result := r.db.WithContext(ctx).Create(dbmodels.NewContact(contact))
	if result.Error != nil {
		return translate(result.Error)
	}
	return nil
}

func (r *Repository) GetContact(ctx context.Context, id uuid.UUID) (*models.Contact, error) {
	var contact dbmodels.Contact
	result := r.db.WithContext(ctx).First(&contact, "id = ?", id)
	if result.Error != nil {
		return nil, translate(result.Error)
	}
	return contact.ToDomain(), nil
}

func (r *Repository) UpdateContact(ctx context.Context, update *models.ContactUpdate, updatedAt time.Time) error {
	changes := dbmodels.ContactChanges(update)
	changes["updated_at"] = updatedAt

	result := r.db.WithContext(ctx).Model(&dbmodels.Contact{}).
		Where("id = ?", update.ID).
		Updates(changes)

	if result.Error != nil {
		return translate(result.Error)
	}
	if result.RowsAffected == 0 {
		return e.ErrNotFound
	}
	return nil
}

func (r *Repository) SetContactDeletedAt(ctx context.Context, id uuid.UUID, deletedAt *time.Time, updatedAt time.Time) error {
	result := r.db.WithContext(ctx).Model(&dbmodels.Contact{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{
			"deleted_at": deletedAt,
			"updated_at": updatedAt,
		})

	if result.Error != nil {
		return translate(result.Error)
	}
	if result.RowsAffected == 0 {
		return e.ErrNotFound
	}
	return nil
}

func (r *Repository) DeleteContact(ctx context.Context, id uuid.UUID) error {
	result := r.db.WithContext(ctx).Delete(&dbmodels.Contact{}, "id = ?", id)
	if result.Error != nil {
		return translate(result.Error)
	}
	if result.RowsAffected == 0 {
		return e.ErrNotFound
	}
	return nil
}

func (r *Repository) ContactEmailExists(ctx context.Context, email string, exclude uuid.UUID) (bool, error) {
	var count int64
	result := r.db.WithContext(ctx).Model(&dbmodels.Contact{}).
		Where("email = ? AND id <> ?", email, exclude).
		Limit(1).
		Count(&count)
	return count > 0, result.Error
}

// ListContacts returns the window of contacts selected by q, optionally
// scoped to q.CompanyID, and the number of contacts matching its filters.
func (r *Repository) ListContacts(ctx context.Context, q query.Query) ([]*models.Contact, int64, error) {
	filters := append(
		q.Filters(dbmodels.ContactSearchColumns...),
		query.EqualsScope(dbmodels.ContactCompanyColumn, q.CompanyID),
	)

	var total int64
	result := r.db.WithContext(ctx).Model(&dbmodels.Contact{}).
		Scopes(filters...).
		Count(&total)
	if result.Error != nil {
		return nil, 0, result.Error
	}
	if total == 0 {
		return []*models.Contact{}, 0, nil
	}

	var rows []*dbmodels.Contact
	result = r.db.WithContext(ctx).
		Scopes(filters...).
		Scopes(query.PageScope(q)).
		Find(&rows)
	if result.Error != nil {
		return nil, 0, result.Error
	}

	return lo.Map(rows, func(row *dbmodels.Contact, _ int) *models.Contact {
		return row.ToDomain()
	}), total, nil
}
