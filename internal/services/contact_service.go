package services

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"agenda/internal/metrics"
	"agenda/internal/models"
	"agenda/internal/repositories"

	"go.uber.org/zap"
)

var (
	// ErrContactIDRequired is returned when a request names no contact.
	ErrContactIDRequired = errors.New("contact id is required")
	// ErrContactNotFound is returned when the named contact does not exist.
	ErrContactNotFound = repositories.ErrContactNotFound
)

// EventPublisher delivers contact change events to interested consumers.
type EventPublisher interface {
	PublishContactEvent(event models.ContactEvent) error
}

// ContactService handles business logic related to contacts.
type ContactService struct {
	repo      repositories.ContactRepository
	validator *ContactValidator
	events    EventPublisher
	logger    *zap.Logger
}

// NewContactService creates a new ContactService. events may be nil.
func NewContactService(repo repositories.ContactRepository, validator *ContactValidator, events EventPublisher, logger *zap.Logger) *ContactService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ContactService{
		repo:      repo,
		validator: validator,
		events:    events,
		logger:    logger,
	}
}

// ParseContactID resolves a raw id form value.
func ParseContactID(raw string) (uint, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return 0, ErrContactIDRequired
	}
	id, err := strconv.ParseUint(raw, 10, 64)
	if err != nil || id == 0 {
		return 0, fmt.Errorf("contact id %q: %w", raw, ErrContactNotFound)
	}
	return uint(id), nil
}

// EmailDomain returns the institutional domain contact emails must use.
func (s *ContactService) EmailDomain() string {
	return s.validator.Domain()
}

// ListContacts retrieves every contact in creation order.
func (s *ContactService) ListContacts(ctx context.Context) ([]models.Contact, error) {
	return s.repo.GetAll(ctx)
}

// GetContact retrieves the contact named by rawID.
func (s *ContactService) GetContact(ctx context.Context, rawID string) (*models.Contact, error) {
	id, err := ParseContactID(rawID)
	if err != nil {
		return nil, err
	}
	return s.repo.GetByID(ctx, id)
}

// RegisterContact validates form and stores it as a new contact.
func (s *ContactService) RegisterContact(ctx context.Context, form models.ContactForm) (*models.Contact, error) {
	form = Normalize(form)
	if fieldErrors := s.validator.Validate(form); fieldErrors != nil {
		metrics.ContactOperation("register", metrics.OutcomeInvalid)
		return nil, &ValidationError{Fields: fieldErrors}
	}

	var contact models.Contact
	form.Apply(&contact)
	if err := s.repo.Create(ctx, &contact); err != nil {
		metrics.ContactOperation("register", metrics.OutcomeError)
		return nil, fmt.Errorf("failed to register contact: %w", err)
	}

	metrics.ContactOperation("register", metrics.OutcomeSuccess)
	s.publish(models.NewContactEvent(models.ContactCreated, contact))
	return &contact, nil
}

// EditContact overwrites the contact named by rawID with form.
func (s *ContactService) EditContact(ctx context.Context, rawID string, form models.ContactForm) (*models.Contact, error) {
	contact, err := s.GetContact(ctx, rawID)
	if err != nil {
		metrics.ContactOperation("edit", outcomeOf(err))
		return nil, err
	}

	form = Normalize(form)
	if fieldErrors := s.validator.Validate(form); fieldErrors != nil {
		metrics.ContactOperation("edit", metrics.OutcomeInvalid)
		return nil, &ValidationError{Fields: fieldErrors}
	}

	form.Apply(contact)
	if err := s.repo.Update(ctx, contact); err != nil {
		metrics.ContactOperation("edit", outcomeOf(err))
		return nil, fmt.Errorf("failed to edit contact %d: %w", contact.ID, err)
	}

	metrics.ContactOperation("edit", metrics.OutcomeSuccess)
	s.publish(models.NewContactEvent(models.ContactUpdated, *contact))
	return contact, nil
}

// DeleteContact removes the contact named by rawID.
func (s *ContactService) DeleteContact(ctx context.Context, rawID string) error {
	contact, err := s.GetContact(ctx, rawID)
	if err != nil {
		metrics.ContactOperation("delete", outcomeOf(err))
		return err
	}

	if err := s.repo.Delete(ctx, contact.ID); err != nil {
		metrics.ContactOperation("delete", outcomeOf(err))
		return fmt.Errorf("failed to delete contact %d: %w", contact.ID, err)
	}

	metrics.ContactOperation("delete", metrics.OutcomeSuccess)
	s.publish(models.NewContactEvent(models.ContactDeleted, *contact))
	return nil
}

func (s *ContactService) publish(event models.ContactEvent) {
	if s.events == nil {
		return
	}
	if err := s.events.PublishContactEvent(event); err != nil {
		s.logger.Warn("failed to publish contact event",
			zap.String("type", event.Type),
			zap.Uint("contact_id", event.ContactID),
			zap.Error(err))
	}
}

func outcomeOf(err error) string {
	if errors.Is(err, ErrContactNotFound) || errors.Is(err, ErrContactIDRequired) {
		return metrics.OutcomeNotFound
	}
	return metrics.OutcomeError
}
