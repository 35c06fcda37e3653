package queue

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func quietLogger() *logrus.Logger {
	l, _ := test.NewNullLogger()
	return l
}

func TestFormatLine(t *testing.T) {
	at := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)

	line := formatLine(Event{Type: EventProductAdded, ProductID: 7, Name: "Blouse", Category: "women", NewPrice: 50, OccurredAt: at})
	assert.Equal(t, "[2024-05-01T12:00:00Z] product.added | product_id=7 | name=\"Blouse\" | category=\"women\" | new_price=50.00\n", line)

	line = formatLine(Event{Type: EventUserRegistered, UserID: "u1", Email: "a@x.com", OccurredAt: at})
	assert.Equal(t, "[2024-05-01T12:00:00Z] user.registered | user_id=u1 | email=\"a@x.com\"\n", line)
}

func TestHandleMessage_AppendsLines(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "logs")
	c := NewConsumer("", dir, quietLogger())

	for _, id := range []int64{1, 2} {
		body, err := json.Marshal(Event{Type: EventProductRemoved, ProductID: id, Name: "p"})
		require.NoError(t, err)
		require.NoError(t, c.handleMessage(body))
	}

	data, err := os.ReadFile(filepath.Join(dir, "catalog.log"))
	require.NoError(t, err)
	lines := strings.Split(strings.TrimSpace(string(data)), "\n")
	require.Len(t, lines, 2)
	assert.Contains(t, lines[0], "product_id=1")
	assert.Contains(t, lines[1], "product_id=2")
}

func TestHandleMessage_Rejects(t *testing.T) {
	c := NewConsumer("", t.TempDir(), quietLogger())
	assert.Error(t, c.handleMessage([]byte("not json")))
	assert.Error(t, c.handleMessage([]byte(`{"name":"x"}`)))
}

func TestNewPublishing(t *testing.T) {
	pub, err := newPublishing(Event{Type: EventUserRegistered, UserID: "u1"})
	require.NoError(t, err)

	assert.Equal(t, "application/json", pub.ContentType)
	assert.Equal(t, amqp.Persistent, pub.DeliveryMode)
	assert.Equal(t, EventUserRegistered, pub.Type)
	assert.False(t, pub.Timestamp.IsZero())

	var got Event
	require.NoError(t, json.Unmarshal(pub.Body, &got))
	assert.Equal(t, "u1", got.UserID)
	assert.Equal(t, pub.Timestamp.Unix(), got.OccurredAt.Unix())
}
