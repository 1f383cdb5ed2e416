package models

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

// Contact defines the domain model for a person, optionally attached to a company.
type Contact struct {
	ID         uuid.UUID `json:"id"`
	FirstName  string    `json:"firstName" validate:"required"`
	LastName   string    `json:"lastName" validate:"required"`
	Email      string    `json:"email" validate:"required,email"`
	Phone      string    `json:"phone"`
	Address    string    `json:"address"`
	City       string    `json:"city"`
	Region     string    `json:"region"`
	Country    string    `json:"country"`
	PostalCode string    `json:"postalCode"`
	// CompanyID references Company.ID. The reference is not enforced when
	// the company is removed.
	CompanyID *uuid.UUID `json:"companyId"`
	CreatedAt time.Time  `json:"createdAt"`
	UpdatedAt time.Time  `json:"updatedAt"`
	DeletedAt *time.Time `json:"deletedAt"`
}

// IsDeleted reports whether the contact is soft-deleted.
func (c *Contact) IsDeleted() bool {
	return c.DeletedAt != nil
}

func (c *Contact) Normalize() {
	for _, f := range []*string{&c.FirstName, &c.LastName, &c.Email, &c.Phone, &c.Address, &c.City, &c.Region, &c.Country, &c.PostalCode} {
		*f = strings.TrimSpace(*f)
	}
	if c.CompanyID != nil && *c.CompanyID == uuid.Nil {
		c.CompanyID = nil
	}
}

// ContactUpdate carries a partial contact update.
// A CompanyID pointing at uuid.Nil detaches the contact from its company.
type ContactUpdate struct {
	ID         uuid.UUID
	FirstName  *string
	LastName   *string
	Email      *string
	Phone      *string
	Address    *string
	City       *string
	Region     *string
	Country    *string
	PostalCode *string
	CompanyID  *uuid.UUID
}

func (u *ContactUpdate) Normalize() {
	trimAll(u.FirstName, u.LastName, u.Email, u.Phone, u.Address, u.City, u.Region, u.Country, u.PostalCode)
}

// Apply copies the provided fields onto c.
func (u *ContactUpdate) Apply(c *Contact) {
	assign(&c.FirstName, u.FirstName)
	assign(&c.LastName, u.LastName)
	assign(&c.Email, u.Email)
	assign(&c.Phone, u.Phone)
	assign(&c.Address, u.Address)
	assign(&c.City, u.City)
	assign(&c.Region, u.Region)
	assign(&c.Country, u.Country)
	assign(&c.PostalCode, u.PostalCode)
	if u.CompanyID != nil {
		if *u.CompanyID == uuid.Nil {
			c.CompanyID = nil
		} else {
			id := *u.CompanyID
			c.CompanyID = &id
		}
	}
}

// DetachesCompany reports whether the update clears the company reference.
func (u *ContactUpdate) DetachesCompany() bool {
	return u.CompanyID != nil && *u.CompanyID == uuid.Nil
}
