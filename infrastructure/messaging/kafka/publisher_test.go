package kafka

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEventPublisher_Publish(t *testing.T) {
	w := &fakeWriter{}
	p := NewEventPublisher(w)

	require.NoError(t, p.Publish(context.Background(), "order.placed", "order-1", `{"order_id":"order-1"}`))
	require.Len(t, w.written, 1)
	assert.Equal(t, "order-1", string(w.written[0].Key))
	assert.Equal(t, `{"order_id":"order-1"}`, string(w.written[0].Value))
	assert.Equal(t, "order.placed", header(w.written[0], "event_type"))
}

func TestEventPublisher_PropagatesWriteError(t *testing.T) {
	p := NewEventPublisher(&fakeWriter{failures: 1})
	assert.Error(t, p.Publish(context.Background(), "order.placed", "order-1", "{}"))
}

func TestPublishJSON(t *testing.T) {
	w := &fakeWriter{}
	require.NoError(t, PublishJSON(context.Background(), w, "k", map[string]int{"n": 1}))

	var got map[string]int
	require.NoError(t, json.Unmarshal(w.written[0].Value, &got))
	assert.Equal(t, 1, got["n"])
}

func TestNewClient(t *testing.T) {
	c := NewClient([]string{"a:9092, b:9092", " ", "c:9092"})
	assert.Equal(t, []string{"a:9092", "b:9092", "c:9092"}, c.Brokers)
	assert.True(t, c.Enabled())
	assert.False(t, NewClient(nil).Enabled())

	w := c.NewWriter("order-events")
	assert.Equal(t, "order-events", w.Topic)
}
