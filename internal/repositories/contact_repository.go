package repositories

import (
	"context"
	"errors"

	"agenda/internal/models"
)

// ErrContactNotFound is returned when no contact matches the requested ID.
var ErrContactNotFound = errors.New("contact not found")

// ContactRepository defines the interface for contact data access.
type ContactRepository interface {
	GetAll(ctx context.Context) ([]models.Contact, error)
	GetByID(ctx context.Context, id uint) (*models.Contact, error)
	Create(ctx context.Context, contact *models.Contact) error
	Update(ctx context.Context, contact *models.Contact) error
	Delete(ctx context.Context, id uint) error
}
