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

func (r *Repository) CreateCompany(ctx context.Context, company *models.Company) error {
	result := r.db.WithContext(ctx).Create(dbmodels.NewCompany(company))
	if result.Error != nil {
		return translate(result.Error)
	}
	return nil
}

func (r *Repository) GetCompany(ctx context.Context, id uuid.UUID) (*models.Company, error) {
	var company dbmodels.Company
	result := r.db.WithContext(ctx).First(&company, "id = ?", id)
	if result.Error != nil {
		return nil, translate(result.Error)
	}
	return company.ToDomain(), nil
}

// UpdateCompany writes the provided fields and stamps updated_at.
func (r *Repository) UpdateCompany(ctx context.Context, update *models.CompanyUpdate, updatedAt time.Time) error {
	changes := dbmodels.CompanyChanges(update)
	changes["updated_at"] = updatedAt

	result := r.db.WithContext(ctx).Model(&dbmodels.Company{}).
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

// SetCompanyDeletedAt moves a company into (non-nil deletedAt) or out of the trash.
func (r *Repository) SetCompanyDeletedAt(ctx context.Context, id uuid.UUID, deletedAt *time.Time, updatedAt time.Time) error {
	result := r.db.WithContext(ctx).Model(&dbmodels.Company{}).
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

// DeleteCompany erases the row. Contacts referencing it are left untouched.
func (r *Repository) DeleteCompany(ctx context.Context, id uuid.UUID) error {
	result := r.db.WithContext(ctx).Delete(&dbmodels.Company{}, "id = ?", id)
	if result.Error != nil {
		return translate(result.Error)
	}
	if result.RowsAffected == 0 {
		return e.ErrNotFound
	}
	return nil
}

// CompanyEmailExists reports whether any company, trashed ones included,
// other than exclude uses the email.
func (r *Repository) CompanyEmailExists(ctx context.Context, email string, exclude uuid.UUID) (bool, error) {
	var count int64
	result := r.db.WithContext(ctx).Model(&dbmodels.Company{}).
		Where("email = ? AND id <> ?", email, exclude).
		Limit(1).
		Count(&count)
	return count > 0, result.Error
}

// CompanyExists reports whether a company with the id exists in any state.
func (r *Repository) CompanyExists(ctx context.Context, id uuid.UUID) (bool, error) {
	var count int64
	result := r.db.WithContext(ctx).Model(&dbmodels.Company{}).
		Where("id = ?", id).
		Limit(1).
		Count(&count)
	return count > 0, result.Error
}

// ListCompanies returns the window of companies selected by q and the
// number of companies matching its filters.
func (r *Repository) ListCompanies(ctx context.Context, q query.Query) ([]*models.Company, int64, error) {
	filters := q.Filters(dbmodels.CompanySearchColumns...)

	var total int64
	result := r.db.WithContext(ctx).Model(&dbmodels.Company{}).
		Scopes(filters...).
		Count(&total)
	if result.Error != nil {
		return nil, 0, result.Error
	}
	if total == 0 {
		return []*models.Company{}, 0, nil
	}

	var rows []*dbmodels.Company
	result = r.db.WithContext(ctx).
		Scopes(filters...).
		Scopes(query.PageScope(q)).
		Find(&rows)
	if result.Error != nil {
		return nil, 0, result.Error
	}

	return lo.Map(rows, func(row *dbmodels.Company, _ int) *models.Company {
		return row.ToDomain()
	}), total, nil
}
