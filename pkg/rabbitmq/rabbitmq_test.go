package rabbitmq

import (
	"bytes"
	"encoding/json"
	"errors"
	"log"
	"os"
	"testing"
	"time"

	"bookstore/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleEvent() models.OrderEvent {
	return models.OrderEvent{
		OrderNumber: 7,
		Username:    "alice",
		Titles:      []string{"Dune", "Emma"},
		Total:       14.99,
		PlacedAt:    time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC),
	}
}

func TestHandleDelivery(t *testing.T) {
	body, err := json.Marshal(sampleEvent())
	require.NoError(t, err)

	var got models.OrderEvent
	err = handleDelivery(body, func(event models.OrderEvent) error {
		got = event
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, sampleEvent(), got)
}

func TestHandleDelivery_HandlerError(t *testing.T) {
	body, err := json.Marshal(sampleEvent())
	require.NoError(t, err)

	boom := errors.New("boom")
	err = handleDelivery(body, func(models.OrderEvent) error { return boom })
	assert.ErrorIs(t, err, boom)
}

func TestHandleDelivery_BadBody(t *testing.T) {
	called := false
	err := handleDelivery([]byte("not json"), func(models.OrderEvent) error {
		called = true
		return nil
	})
	assert.Error(t, err)
	assert.False(t, called)
}

func TestClientWithoutChannel(t *testing.T) {
	c := &Client{queue: DefaultQueue}

	assert.Error(t, c.PublishOrderPlaced(sampleEvent()))
	assert.Error(t, c.ConsumeOrderEvents(LogOrderEvent))
	assert.NoError(t, c.Close())
}

func TestLogOrderEvent(t *testing.T) {
	var buf bytes.Buffer
	log.SetOutput(&buf)
	defer log.SetOutput(os.Stderr)

	require.NoError(t, LogOrderEvent(sampleEvent()))
	assert.Contains(t, buf.String(), "Order #7 placed by alice: 2 item(s), total 14.99")
}
