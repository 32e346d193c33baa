package rabbitmq

import (
	"encoding/json"
	"testing"
	"time"

	"agenda/internal/models"

	amqp "github.com/streadway/amqp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEncodeDecodeContactEvent(t *testing.T) {
	at := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	event := models.ContactEvent{
		Type:       models.ContactCreated,
		ContactID:  7,
		FullName:   "Renan Marques",
		Email:      "renan@fatec.sp.gov.br",
		OccurredAt: at,
	}

	msg, err := EncodeContactEvent(event)
	require.NoError(t, err)
	assert.Equal(t, "application/json", msg.ContentType)
	assert.Equal(t, models.ContactCreated, msg.Type)
	assert.Equal(t, amqp.Persistent, msg.DeliveryMode)
	assert.Equal(t, at, msg.Timestamp)

	var raw map[string]interface{}
	require.NoError(t, json.Unmarshal(msg.Body, &raw))
	assert.Equal(t, "Renan Marques", raw["nome_completo"])
	assert.EqualValues(t, 7, raw["contact_id"])

	decoded, err := DecodeContactEvent(amqp.Delivery{Body: msg.Body})
	require.NoError(t, err)
	assert.Equal(t, event, decoded)
}

func TestDecodeContactEvent_FallsBackToMessageType(t *testing.T) {
	decoded, err := DecodeContactEvent(amqp.Delivery{Type: models.ContactDeleted, Body: []byte(`{"contact_id":3}`)})
	require.NoError(t, err)
	assert.Equal(t, models.ContactDeleted, decoded.Type)
	assert.Equal(t, uint(3), decoded.ContactID)
}

func TestDecodeContactEvent_Malformed(t *testing.T) {
	_, err := DecodeContactEvent(amqp.Delivery{Body: []byte("not json")})
	assert.Error(t, err)
}

func TestClosedClient(t *testing.T) {
	c := &Client{}
	assert.NoError(t, c.Close())
	assert.ErrorIs(t, c.PublishContactEvent(models.ContactEvent{Type: models.ContactUpdated}), ErrChannelClosed)
	assert.ErrorIs(t, c.ConsumeContactEvents(func(models.ContactEvent) error { return nil }), ErrChannelClosed)
}
