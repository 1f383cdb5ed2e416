// Package models defines the core domain models of the CRM: companies,
// contacts and the status results returned by lifecycle operations.
package models

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

// Company defines the domain model for a company entity.
type Company struct {
	// ID is the unique identifier for the company.
	ID uuid.UUID `json:"id"`
	// Name is the company’s name.
	Name string `json:"name" validate:"required"`
	// Email is unique across active and trashed companies.
	Email      string `json:"email" validate:"required,email"`
	Phone      string `json:"phone"`
	Address    string `json:"address"`
	City       string `json:"city"`
	Region     string `json:"region"`
	Country    string `json:"country"`
	PostalCode string `json:"postalCode"`
	// CreatedAt records the timestamp when the company was created.
	CreatedAt time.Time `json:"createdAt"`
	// UpdatedAt records the timestamp of the last mutation.
	UpdatedAt time.Time `json:"updatedAt"`
	// DeletedAt is set while the company sits in the trash.
	DeletedAt *time.Time `json:"deletedAt"`
}

// IsDeleted reports whether the company is soft-deleted.
func (c *Company) IsDeleted() bool {
	return c.DeletedAt != nil
}

// Normalize trims surrounding whitespace from the text fields.
func (c *Company) Normalize() {
	for _, f := range []*string{&c.Name, &c.Email, &c.Phone, &c.Address, &c.City, &c.Region, &c.Country, &c.PostalCode} {
		*f = strings.TrimSpace(*f)
	}
}

// CompanyUpdate represents the fields that can be updated for a Company.
// Pointer types are used to allow partial updates.
type CompanyUpdate struct {
	// ID is the unique identifier for the company to update.
	ID         uuid.UUID
	Name       *string
	Email      *string
	Phone      *string
	Address    *string
	City       *string
	Region     *string
	Country    *string
	PostalCode *string
}

func (u *CompanyUpdate) Normalize() {
	trimAll(u.Name, u.Email, u.Phone, u.Address, u.City, u.Region, u.Country, u.PostalCode)
}

// Apply copies the provided fields onto c.
func (u *CompanyUpdate) Apply(c *Company) {
	assign(&c.Name, u.Name)
	assign(&c.Email, u.Email)
	assign(&c.Phone, u.Phone)
	assign(&c.Address, u.Address)
	assign(&c.City, u.City)
	assign(&c.Region, u.Region)
	assign(&c.Country, u.Country)
	assign(&c.PostalCode, u.PostalCode)
}

func trimAll(fields ...*string) {
	for _, f := range fields {
		if f != nil {
			*f = strings.TrimSpace(*f)
		}
	}
}

func assign(dst *string, src *string) {
	if src != nil {
		*dst = *src
	}
}
