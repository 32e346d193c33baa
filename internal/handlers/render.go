package handlers

import (
	"agenda/internal/middleware"

	"github.com/gofiber/fiber/v2"
)

// Template names rendered by the handlers.
const (
	TemplateLogin           = "login.html"
	TemplateLogout          = "logout.html"
	TemplateIndex           = "index.html"
	TemplateShowContact     = "show_contact.html"
	TemplateRegisterContact = "register_contact.html"
	TemplateEditContact     = "edit_contact.html"
	TemplateDeleteContact   = "delete_contact.html"
)

// render writes a page with status 200. Every binding carries the error
// flag and, when logged in, the current user.
func render(c *fiber.Ctx, name string, bind fiber.Map) error {
	if _, ok := bind["error"]; !ok {
		bind["error"] = false
	}
	if session, ok := middleware.CurrentSession(c); ok {
		bind["user"] = session
	}
	return c.Status(fiber.StatusOK).Render(name, bind)
}
