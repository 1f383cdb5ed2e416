package events

import (
	"time"

	"github.com/gartstein/crm/internal/crm/models"
	"github.com/google/uuid"
)

type EventType string

const (
	CompanyCreated     EventType = "company_created"
	CompanyUpdated     EventType = "company_updated"
	CompanySoftDeleted EventType = "company_soft_deleted"
	CompanyRestored    EventType = "company_restored"
	CompanyDeleted     EventType = "company_deleted"

	ContactCreated     EventType = "contact_created"
	ContactUpdated     EventType = "contact_updated"
	ContactSoftDeleted EventType = "contact_soft_deleted"
	ContactRestored    EventType = "contact_restored"
	ContactDeleted     EventType = "contact_deleted"
)

type Entity string

const (
	EntityCompany Entity = "company"
	EntityContact Entity = "contact"
)

// Event is a change notification for one company or contact. Exactly one of
// Company and Contact is set, matching Entity.
type Event struct {
	Type       EventType       `json:"type"`
	Entity     Entity          `json:"entity"`
	EntityID   uuid.UUID       `json:"entityId"`
	OccurredAt time.Time       `json:"occurredAt"`
	Company    *models.Company `json:"company,omitempty"`
	Contact    *models.Contact `json:"contact,omitempty"`
}

func NewCompanyEvent(eventType EventType, company *models.Company, at time.Time) Event {
	return Event{
		Type:       eventType,
		Entity:     EntityCompany,
		EntityID:   company.ID,
		OccurredAt: at,
		Company:    company,
	}
}

func NewContactEvent(eventType EventType, contact *models.Contact, at time.Time) Event {
	return Event{
		Type:       eventType,
		Entity:     EntityContact,
		EntityID:   contact.ID,
		OccurredAt: at,
		Contact:    contact,
	}
}
