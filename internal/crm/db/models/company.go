// Package models contains the persistence rows of the CRM,
// configured to work using GORM as the ORM.
package models

import (
	"time"

	domain "github.com/gartstein/crm/internal/crm/models"
	"github.com/google/uuid"
)

// Company is the companies table row.
// DeletedAt is a plain nullable column rather than gorm.DeletedAt so that
// trashed rows stay visible to every query unless a status scope says otherwise.
type Company struct {
	ID         uuid.UUID `gorm:"type:uuid;primaryKey"`
	Name       string    `gorm:"not null;index"`
	Email      string    `gorm:"not null;uniqueIndex"`
	Phone      string
	Address    string
	City       string
	Region     string
	Country    string
	PostalCode string
	CreatedAt  time.Time
	UpdatedAt  time.Time
	DeletedAt  *time.Time `gorm:"index"`
}

// TableName pins the table name.
func (Company) TableName() string {
	return "companies"
}

// CompanySearchColumns are matched by free-text company search.
var CompanySearchColumns = []string{"name", "email", "city", "phone"}

// NewCompany builds a row from the domain model.
func NewCompany(c *domain.Company) *Company {
	return &Company{
		ID:         c.ID,
		Name:       c.Name,
		Email:      c.Email,
		Phone:      c.Phone,
		Address:    c.Address,
		City:       c.City,
		Region:     c.Region,
		Country:    c.Country,
		PostalCode: c.PostalCode,
		CreatedAt:  c.CreatedAt,
		UpdatedAt:  c.UpdatedAt,
		DeletedAt:  c.DeletedAt,
	}
}

// ToDomain converts the row into the domain model.
func (c *Company) ToDomain() *domain.Company {
	return &domain.Company{
		ID:         c.ID,
		Name:       c.Name,
		Email:      c.Email,
		Phone:      c.Phone,
		Address:    c.Address,
		City:       c.City,
		Region:     c.Region,
		Country:    c.Country,
		PostalCode: c.PostalCode,
		CreatedAt:  c.CreatedAt,
		UpdatedAt:  c.UpdatedAt,
		DeletedAt:  c.DeletedAt,
	}
}

// CompanyChanges lists the columns touched by a partial update.
func CompanyChanges(u *domain.CompanyUpdate) map[string]interface{} {
	changes := map[string]interface{}{}
	setString(changes, "name", u.Name)
	setString(changes, "email", u.Email)
	setString(changes, "phone", u.Phone)
	setString(changes, "address", u.Address)
	setString(changes, "city", u.City)
	setString(changes, "region", u.Region)
	setString(changes, "country", u.Country)
	setString(changes, "postal_code", u.PostalCode)
	return changes
}

func setString(changes map[string]interface{}, column string, v *string) {
	if v != nil {
		changes[column] = *v
	}
}
