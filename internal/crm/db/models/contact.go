package models

import (
	"time"

	domain "github.com/gartstein/crm/internal/crm/models"
	"github.com/google/uuid"
)

// Contact is the contacts table row. CompanyID carries no foreign key
// constraint: removing a company leaves its contacts in place.
type Contact struct {
	ID         uuid.UUID `gorm:"type:uuid;primaryKey"`
	FirstName  string    `gorm:"not null;index"`
	LastName   string    `gorm:"not null;index"`
	Email      string    `gorm:"not null;uniqueIndex"`
	Phone      string
	Address    string
	City       string
	Region     string
	Country    string
	PostalCode string
	CompanyID  *uuid.UUID `gorm:"type:uuid;index"`
	CreatedAt  time.Time
	UpdatedAt  time.Time
	DeletedAt  *time.Time `gorm:"index"`
}

func (Contact) TableName() string {
	return "contacts"
}

// ContactSearchColumns are matched by free-text contact search.
var ContactSearchColumns = []string{"first_name", "last_name", "email", "phone", "city"}

// ContactCompanyColumn is the column scoping contacts to a company.
const ContactCompanyColumn = "company_id"

func NewContact(c *domain.Contact) *Contact {
	return &Contact{
		ID:         c.ID,
		FirstName:  c.FirstName,
		LastName:   c.LastName,
		Email:      c.Email,
		Phone:      c.Phone,
		Address:    c.Address,
		City:       c.City,
		Region:     c.Region,
		Country:    c.Country,
		PostalCode: c.PostalCode,
		CompanyID:  c.CompanyID,
		CreatedAt:  c.CreatedAt,
		UpdatedAt:  c.UpdatedAt,
		DeletedAt:  c.DeletedAt,
	}
}

func (c *Contact) ToDomain() *domain.Contact {
	return &domain.Contact{
		ID:         c.ID,
		FirstName:  c.FirstName,
		LastName:   c.LastName,
		Email:      c.Email,
		Phone:      c.Phone,
		Address:    c.Address,
		City:       c.City,
		Region:     c.Region,
		Country:    c.Country,
		PostalCode: c.PostalCode,
		CompanyID:  c.CompanyID,
		CreatedAt:  c.CreatedAt,
		UpdatedAt:  c.UpdatedAt,
		DeletedAt:  c.DeletedAt,
	}
}

// ContactChanges lists the columns touched by a partial update.
// A nil uuid company id clears the reference.
func ContactChanges(u *domain.ContactUpdate) map[string]interface{} {
	changes := map[string]interface{}{}
	setString(changes, "first_name", u.FirstName)
	setString(changes, "last_name", u.LastName)
	setString(changes, "email", u.Email)
	setString(changes, "phone", u.Phone)
	setString(changes, "address", u.Address)
	setString(changes, "city", u.City)
	setString(changes, "region", u.Region)
	setString(changes, "country", u.Country)
	setString(changes, "postal_code", u.PostalCode)
	if u.CompanyID != nil {
		if *u.CompanyID == uuid.Nil {
			changes[ContactCompanyColumn] = nil
		} else {
			changes[ContactCompanyColumn] = *u.CompanyID
		}
	}
	return changes
}
