package middleware_test

import (
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"agenda/internal/middleware"
	"agenda/internal/models"
	"agenda/internal/services"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

const cookieName = "agenda_session"

func setupApp(authService *services.AuthService) *fiber.App {
	app := fiber.New()
	app.Use(middleware.RequestLogger(zap.NewNop()))
	app.Use(middleware.LoadSession(authService, cookieName, zap.NewNop()))
	app.Get("/public/", func(c *fiber.Ctx) error {
		if session, ok := middleware.CurrentSession(c); ok {
			return c.SendString("hello " + session.Username)
		}
		return c.SendString("hello anonymous")
	})
	app.Get("/show_contact/", middleware.AuthRequired(), func(c *fiber.Ctx) error {
		session, _ := middleware.CurrentSession(c)
		return c.SendString("contacts for " + session.Username)
	})
	return app
}

func body(t *testing.T, resp *http.Response) string {
	t.Helper()
	defer resp.Body.Close()
	b, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return string(b)
}

func TestAuthRequired_RedirectsToLogin(t *testing.T) {
	app := setupApp(services.NewAuthService(nil, "secret", time.Hour))

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/show_contact/", nil), -1)
	require.NoError(t, err)
	assert.Equal(t, http.StatusFound, resp.StatusCode)
	assert.Equal(t, "/login/?next=/show_contact/", resp.Header.Get("Location"))
}

func TestAuthRequired_WithSession(t *testing.T) {
	authService := services.NewAuthService(nil, "secret", time.Hour)
	app := setupApp(authService)

	token, _, err := authService.IssueToken(&models.User{ID: "u-1", Username: "admin"})
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodGet, "/show_contact/", nil)
	req.AddCookie(&http.Cookie{Name: cookieName, Value: token})
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "contacts for admin", body(t, resp))
}

func TestLoadSession_IgnoresForeignToken(t *testing.T) {
	app := setupApp(services.NewAuthService(nil, "secret", time.Hour))
	forged, _, err := services.NewAuthService(nil, "other", time.Hour).IssueToken(&models.User{ID: "u-1", Username: "mallory"})
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodGet, "/public/", nil)
	req.AddCookie(&http.Cookie{Name: cookieName, Value: forged})
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	assert.Equal(t, "hello anonymous", body(t, resp))

	req = httptest.NewRequest(http.MethodGet, "/show_contact/", nil)
	req.AddCookie(&http.Cookie{Name: cookieName, Value: forged})
	resp, err = app.Test(req, -1)
	require.NoError(t, err)
	assert.Equal(t, http.StatusFound, resp.StatusCode)
}

func TestLoginURL(t *testing.T) {
	assert.Equal(t, "/login/", middleware.LoginURL(""))
	assert.Equal(t, "/login/?next=/edit_contact/", middleware.LoginURL("/edit_contact/"))
	assert.Equal(t, "/login/?next=/edit_contact/%3Fid%3D3", middleware.LoginURL("/edit_contact/?id=3"))
}

func TestSafeNext(t *testing.T) {
	assert.Equal(t, "/show_contact/", middleware.SafeNext("/show_contact/"))
	assert.Equal(t, "/", middleware.SafeNext(""))
	assert.Equal(t, "/", middleware.SafeNext("https://evil.example"))
	assert.Equal(t, "/", middleware.SafeNext("//evil.example"))
	assert.Equal(t, "/", middleware.SafeNext("/\\evil.example"))
}
