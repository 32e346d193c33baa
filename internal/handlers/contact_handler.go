package handlers

import (
	"errors"

	"agenda/internal/models"
	"agenda/internal/services"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

const (
	msgSelectContact   = "Selecione um contato."
	msgContactNotFound = "Contato não encontrado."
	msgInvalidFields   = "Verifique os dados informados."
)

// ContactHandler handles the agenda pages.
type ContactHandler struct {
	service *services.ContactService
	logger  *zap.Logger
}

// NewContactHandler creates a new ContactHandler.
func NewContactHandler(service *services.ContactService, logger *zap.Logger) *ContactHandler {
	return &ContactHandler{
		service: service,
		logger:  logger,
	}
}

// RegisterRoutes registers the contact routes behind authRequired.
func (h *ContactHandler) RegisterRoutes(router fiber.Router, authRequired fiber.Handler) {
	router.Get("/", authRequired, h.HandleHome)
	router.Get("/index/", authRequired, h.HandleHome)
	router.Get("/show_contact/", authRequired, h.HandleShowContacts)
	router.Get("/register_contact/", authRequired, h.HandleRegisterPage)
	router.Post("/register_contact/", authRequired, h.HandleRegisterContact)
	router.Get("/edit_contact/", authRequired, h.HandleEditPage)
	router.Post("/edit_contact/", authRequired, h.HandleEditContact)
	router.Get("/delete_contact/", authRequired, h.HandleDeletePage)
	router.Post("/delete_contact/", authRequired, h.HandleDeleteContact)
}

// HandleHome renders the landing page.
func (h *ContactHandler) HandleHome(c *fiber.Ctx) error {
	return render(c, TemplateIndex, fiber.Map{})
}

// HandleShowContacts lists every contact.
func (h *ContactHandler) HandleShowContacts(c *fiber.Ctx) error {
	contacts, err := h.service.ListContacts(c.UserContext())
	if err != nil {
		return err
	}
	return render(c, TemplateShowContact, fiber.Map{
		"contacts": contacts,
	})
}

// HandleRegisterPage renders an empty contact form.
func (h *ContactHandler) HandleRegisterPage(c *fiber.Ctx) error {
	return render(c, TemplateRegisterContact, fiber.Map{
		"form":   models.ContactForm{},
		"errors": services.FieldErrors{},
		"domain": h.service.EmailDomain(),
	})
}

// HandleRegisterContact stores a new contact.
func (h *ContactHandler) HandleRegisterContact(c *fiber.Ctx) error {
	form := h.parseContactForm(c)

	contact, err := h.service.RegisterContact(c.UserContext(), form)
	if err != nil {
		var validationErr *services.ValidationError
		if errors.As(err, &validationErr) {
			return render(c, TemplateRegisterContact, fiber.Map{
				"form":    form,
				"errors":  validationErr.Fields,
				"domain":  h.service.EmailDomain(),
				"error":   true,
				"message": msgInvalidFields,
			})
		}
		return err
	}

	h.logger.Info("contact registered", zap.Uint("contact_id", contact.ID))
	return c.Redirect("/", fiber.StatusFound)
}

// HandleEditPage renders the edit form. With ?id=N the form is pre-filled
// with that contact.
func (h *ContactHandler) HandleEditPage(c *fiber.Ctx) error {
	selected := c.Query("id")
	form := models.ContactForm{}
	bind := fiber.Map{}

	if selected != "" {
		contact, err := h.service.GetContact(c.UserContext(), selected)
		switch {
		case err == nil:
			form = models.FormFromContact(*contact)
		case errors.Is(err, services.ErrContactIDRequired):
			bind["error"] = true
			bind["message"] = msgSelectContact
		case errors.Is(err, services.ErrContactNotFound):
			bind["error"] = true
			bind["message"] = msgContactNotFound
		default:
			return err
		}
	}

	return h.renderContactPicker(c, TemplateEditContact, selected, form, services.FieldErrors{}, bind)
}

// HandleEditContact overwrites the selected contact.
func (h *ContactHandler) HandleEditContact(c *fiber.Ctx) error {
	form := h.parseContactForm(c)
	rawID := c.FormValue("id")

	contact, err := h.service.EditContact(c.UserContext(), rawID, form)
	if err != nil {
		var validationErr *services.ValidationError
		switch {
		case errors.As(err, &validationErr):
			return h.renderContactPicker(c, TemplateEditContact, rawID, form, validationErr.Fields, fiber.Map{
				"error":   true,
				"message": msgInvalidFields,
			})
		case errors.Is(err, services.ErrContactIDRequired):
			return h.renderContactPicker(c, TemplateEditContact, rawID, form, services.FieldErrors{}, fiber.Map{
				"error":   true,
				"message": msgSelectContact,
			})
		case errors.Is(err, services.ErrContactNotFound):
			return h.renderContactPicker(c, TemplateEditContact, rawID, form, services.FieldErrors{}, fiber.Map{
				"error":   true,
				"message": msgContactNotFound,
			})
		}
		return err
	}

	h.logger.Info("contact edited", zap.Uint("contact_id", contact.ID))
	return c.Redirect("/", fiber.StatusFound)
}

// HandleDeletePage renders the contacts available for deletion.
func (h *ContactHandler) HandleDeletePage(c *fiber.Ctx) error {
	return h.renderContactPicker(c, TemplateDeleteContact, "", models.ContactForm{}, services.FieldErrors{}, fiber.Map{})
}

// HandleDeleteContact removes the selected contact.
func (h *ContactHandler) HandleDeleteContact(c *fiber.Ctx) error {
	rawID := c.FormValue("id")

	if err := h.service.DeleteContact(c.UserContext(), rawID); err != nil {
		message := ""
		switch {
		case errors.Is(err, services.ErrContactIDRequired):
			message = msgSelectContact
		case errors.Is(err, services.ErrContactNotFound):
			message = msgContactNotFound
		default:
			return err
		}
		return h.renderContactPicker(c, TemplateDeleteContact, rawID, models.ContactForm{}, services.FieldErrors{}, fiber.Map{
			"error":   true,
			"message": message,
		})
	}

	h.logger.Info("contact deleted", zap.String("contact_id", rawID))
	return c.Redirect("/", fiber.StatusFound)
}

// renderContactPicker renders a page that lets the user pick one of the
// stored contacts.
func (h *ContactHandler) renderContactPicker(c *fiber.Ctx, name, selected string, form models.ContactForm, fieldErrors services.FieldErrors, bind fiber.Map) error {
	contacts, err := h.service.ListContacts(c.UserContext())
	if err != nil {
		return err
	}
	bind["contacts"] = contacts
	bind["selected"] = selected
	bind["form"] = form
	bind["errors"] = fieldErrors
	bind["domain"] = h.service.EmailDomain()
	return render(c, name, bind)
}

// parseContactForm reads the submitted contact fields. A body that cannot be
// parsed yields an empty form, which validation then rejects field by field.
func (h *ContactHandler) parseContactForm(c *fiber.Ctx) models.ContactForm {
	var form models.ContactForm
	if err := c.BodyParser(&form); err != nil {
		h.logger.Debug("failed to parse contact form", zap.String("path", c.Path()), zap.Error(err))
		return models.ContactForm{}
	}
	return form
}
