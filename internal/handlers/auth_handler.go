package handlers

import (
	"errors"
	"time"

	"agenda/internal/metrics"
	"agenda/internal/middleware"
	"agenda/internal/services"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

const msgInvalidLogin = "E-mail ou senha inválidos."

// AuthHandler handles login and logout.
type AuthHandler struct {
	authService *services.AuthService
	cookieName  string
	validate    *validator.Validate
	logger      *zap.Logger
}

// NewAuthHandler creates a new AuthHandler writing sessions to cookieName.
func NewAuthHandler(authService *services.AuthService, cookieName string, logger *zap.Logger) *AuthHandler {
	return &AuthHandler{
		authService: authService,
		cookieName:  cookieName,
		validate:    validator.New(),
		logger:      logger,
	}
}

// RegisterRoutes registers the authentication routes.
func (h *AuthHandler) RegisterRoutes(router fiber.Router) {
	router.Get("/login/", h.HandleLoginPage)
	router.Post("/login/", h.HandleLogin)
	router.Get("/logout/", h.HandleLogoutRedirect)
	router.Post("/logout/", h.HandleLogout)
}

// LoginRequest represents the login form.
type LoginRequest struct {
	Email    string `form:"email" validate:"required"`
	Password string `form:"password" validate:"required"`
	Next     string `form:"next"`
}

// HandleLoginPage renders the login form, or sends logged-in users home.
func (h *AuthHandler) HandleLoginPage(c *fiber.Ctx) error {
	if _, ok := middleware.CurrentSession(c); ok {
		return c.Redirect("/", fiber.StatusFound)
	}
	return render(c, TemplateLogin, fiber.Map{
		"form": LoginRequest{Next: c.Query("next")},
	})
}

// HandleLogin checks the submitted credentials and opens a session.
func (h *AuthHandler) HandleLogin(c *fiber.Ctx) error {
	var req LoginRequest
	if err := c.BodyParser(&req); err != nil {
		h.logger.Debug("failed to parse login form", zap.Error(err))
	}
	if req.Next == "" {
		req.Next = c.Query("next")
	}

	if err := h.validate.Struct(req); err != nil {
		metrics.LoginAttempt(metrics.OutcomeInvalid)
		return h.loginFailed(c, req)
	}

	user, err := h.authService.Authenticate(c.UserContext(), req.Email, req.Password)
	if err != nil {
		if errors.Is(err, services.ErrInvalidCredentials) {
			metrics.LoginAttempt(metrics.OutcomeInvalid)
			h.logger.Info("login rejected", zap.String("identifier", req.Email))
			return h.loginFailed(c, req)
		}
		metrics.LoginAttempt(metrics.OutcomeError)
		return err
	}

	token, expiresAt, err := h.authService.IssueToken(user)
	if err != nil {
		metrics.LoginAttempt(metrics.OutcomeError)
		return err
	}

	c.Cookie(&fiber.Cookie{
		Name:     h.cookieName,
		Value:    token,
		Path:     "/",
		Expires:  expiresAt,
		HTTPOnly: true,
		Secure:   c.Protocol() == "https",
		SameSite: fiber.CookieSameSiteLaxMode,
	})
	metrics.LoginAttempt(metrics.OutcomeSuccess)
	h.logger.Info("user logged in", zap.String("user_id", user.ID), zap.String("username", user.Username))

	return c.Redirect(middleware.SafeNext(req.Next), fiber.StatusFound)
}

func (h *AuthHandler) loginFailed(c *fiber.Ctx, req LoginRequest) error {
	req.Password = ""
	return render(c, TemplateLogin, fiber.Map{
		"form":    req,
		"error":   true,
		"message": msgInvalidLogin,
	})
}

// HandleLogout ends the session and confirms it.
func (h *AuthHandler) HandleLogout(c *fiber.Ctx) error {
	if session, ok := middleware.CurrentSession(c); ok {
		h.logger.Info("user logged out", zap.String("user_id", session.UserID))
	}
	c.Cookie(&fiber.Cookie{
		Name:     h.cookieName,
		Value:    "",
		Path:     "/",
		Expires:  time.Unix(0, 0),
		HTTPOnly: true,
		SameSite: fiber.CookieSameSiteLaxMode,
	})
	middleware.ClearSession(c)
	return render(c, TemplateLogout, fiber.Map{})
}

// HandleLogoutRedirect sends GET requests home without ending the session.
func (h *AuthHandler) HandleLogoutRedirect(c *fiber.Ctx) error {
	return c.Redirect("/", fiber.StatusFound)
}
