package events

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHubBroadcastReachesSubscribers(t *testing.T) {
	hub := NewHub()
	_, first := hub.Subscribe()
	_, second := hub.Subscribe()
	assert.Equal(t, 2, hub.SubscriberCount())

	hub.Broadcast(map[string]string{"decision": "granted"})

	for _, channel := range []<-chan []byte{first, second} {
		select {
		case payload := <-channel:
			var event map[string]string
			require.NoError(t, json.Unmarshal(payload, &event))
			assert.Equal(t, "granted", event["decision"])
		default:
			t.Fatal("subscriber did not receive the event")
		}
	}
}

func TestHubUnsubscribeClosesChannel(t *testing.T) {
	hub := NewHub()
	id, channel := hub.Subscribe()

	hub.Unsubscribe(id)
	assert.Equal(t, 0, hub.SubscriberCount())

	_, open := <-channel
	assert.False(t, open)

	// Double unsubscribe is a no-op.
	hub.Unsubscribe(id)
}

func TestHubBroadcastNeverBlocksOnSlowSubscriber(t *testing.T) {
	hub := NewHub()
	_, channel := hub.Subscribe()

	// Overfill the buffer; the extra events drop instead of stalling.
	for i := 0; i < subscriberBuffer*2; i++ {
		hub.Broadcast(map[string]int{"seq": i})
	}
	assert.Len(t, channel, subscriberBuffer)
}

func TestHubBroadcastUnmarshalableEvent(t *testing.T) {
	hub := NewHub()
	_, channel := hub.Subscribe()

	hub.Broadcast(func() {}) // not JSON-serializable, dropped with a log line
	assert.Len(t, channel, 0)
}
