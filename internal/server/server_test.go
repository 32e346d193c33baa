package server_test

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"agenda/internal/config"
	"agenda/internal/database"
	"agenda/internal/models"
	"agenda/internal/server"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type recordingPublisher struct {
	events []models.ContactEvent
}

func (p *recordingPublisher) PublishContactEvent(event models.ContactEvent) error {
	p.events = append(p.events, event)
	return nil
}

func testConfig() *config.Config {
	return &config.Config{
		SessionSecret:       "secret",
		SessionTTL:          time.Hour,
		SessionCookie:       "agenda_session",
		InstitutionalDomain: "fatec.sp.gov.br",
	}
}

func TestHealth(t *testing.T) {
	db, err := database.OpenInMemory()
	require.NoError(t, err)
	defer database.Close(db)

	app := server.New(testConfig(), db, zap.NewNop(), server.WithEvents(&recordingPublisher{}))

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/health", nil), -1)
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	var body map[string]interface{}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	assert.Equal(t, "healthy", body["status"])
	assert.Equal(t, true, body["events"])
}

func TestMetricsEndpoint(t *testing.T) {
	db, err := database.OpenInMemory()
	require.NoError(t, err)
	defer database.Close(db)

	app := server.New(testConfig(), db, zap.NewNop())

	_, err = app.Test(httptest.NewRequest(http.MethodGet, "/login/", nil), -1)
	require.NoError(t, err)

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/metrics", nil), -1)
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	b, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.Contains(t, string(b), "agenda_http_requests_total")
}

func TestLoginPageRendersEmbeddedTemplate(t *testing.T) {
	db, err := database.OpenInMemory()
	require.NoError(t, err)
	defer database.Close(db)

	app := server.New(testConfig(), db, zap.NewNop())

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/login/?next=/show_contact/", nil), -1)
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.True(t, strings.HasPrefix(resp.Header.Get("Content-Type"), "text/html"))

	b, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.Contains(t, string(b), `name="next" value="/show_contact/"`)
}

func TestUnknownRouteIsNotFound(t *testing.T) {
	db, err := database.OpenInMemory()
	require.NoError(t, err)
	defer database.Close(db)

	app := server.New(testConfig(), db, zap.NewNop())

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/api/v1/products", nil), -1)
	require.NoError(t, err)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}
