package repositories

import (
	"context"
	"errors"
	"fmt"

	"agenda/internal/models"

	"gorm.io/gorm"
)

// GORMContactRepository is a GORM implementation of ContactRepository.
type GORMContactRepository struct {
	db *gorm.DB
}

// NewGORMContactRepository creates a new instance of GORMContactRepository.
func NewGORMContactRepository(db *gorm.DB) *GORMContactRepository {
	return &GORMContactRepository{
		db: db,
	}
}

// GetAll retrieves all contacts in creation order.
func (r *GORMContactRepository) GetAll(ctx context.Context) ([]models.Contact, error) {
	var contacts []models.Contact
	if err := r.db.WithContext(ctx).Order("id ASC").Find(&contacts).Error; err != nil {
		return nil, fmt.Errorf("failed to get all contacts: %w", err)
	}
	return contacts, nil
}

// GetByID retrieves a single contact by its ID.
func (r *GORMContactRepository) GetByID(ctx context.Context, id uint) (*models.Contact, error) {
	var contact models.Contact
	if err := r.db.WithContext(ctx).First(&contact, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("contact with ID %d: %w", id, ErrContactNotFound)
		}
		return nil, fmt.Errorf("failed to get contact by ID %d: %w", id, err)
	}
	return &contact, nil
}

// Create inserts a new contact; the store assigns its ID.
func (r *GORMContactRepository) Create(ctx context.Context, contact *models.Contact) error {
	contact.ID = 0
	if err := r.db.WithContext(ctx).Create(contact).Error; err != nil {
		return fmt.Errorf("failed to create contact: %w", err)
	}
	return nil
}

// Update overwrites the editable fields of an existing contact.
func (r *GORMContactRepository) Update(ctx context.Context, contact *models.Contact) error {
	res := r.db.WithContext(ctx).
		Model(&models.Contact{}).
		Where("id = ?", contact.ID).
		Updates(map[string]interface{}{
			"nome_completo": contact.FullName,
			"telefone":      contact.Phone,
			"email":         contact.Email,
			"observacao":    contact.Note,
		})
	if res.Error != nil {
		return fmt.Errorf("failed to update contact: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("contact with ID %d: %w", contact.ID, ErrContactNotFound)
	}
	return nil
}

// Delete removes a contact by its ID.
func (r *GORMContactRepository) Delete(ctx context.Context, id uint) error {
	res := r.db.WithContext(ctx).Delete(&models.Contact{}, "id = ?", id)
	if res.Error != nil {
		return fmt.Errorf("failed to delete contact: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("contact with ID %d: %w", id, ErrContactNotFound)
	}
	return nil
}
