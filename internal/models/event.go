package models

import "time"

// Contact event types.
const (
	ContactCreated = "contact.created"
	ContactUpdated = "contact.updated"
	ContactDeleted = "contact.deleted"
)

// ContactEvent describes a change applied to a contact record.
type ContactEvent struct {
	Type       string    `json:"type"`
	ContactID  uint      `json:"contact_id"`
	FullName   string    `json:"nome_completo,omitempty"`
	Email      string    `json:"email,omitempty"`
	OccurredAt time.Time `json:"occurred_at"`
}

// NewContactEvent builds an event of the given type for c.
func NewContactEvent(eventType string, c Contact) ContactEvent {
	return ContactEvent{
		Type:       eventType,
		ContactID:  c.ID,
		FullName:   c.FullName,
		Email:      c.Email,
		OccurredAt: time.Now().UTC(),
	}
}
