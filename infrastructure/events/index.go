package events

import (
	"encoding/json"
	"net/http"
	"sync"

	"facegate.io/infrastructure/logger"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
)

const subscriberBuffer = 16

// Hub fans attempt events out to connected WebSocket subscribers. Broadcast
// never blocks the verification path: a subscriber whose buffer is full
// misses events instead of stalling the pipeline.
type Hub struct {
	mutex       sync.RWMutex
	subscribers map[string]chan []byte
}

// AttemptHub is the process-wide feed of verification attempts.
var AttemptHub = NewHub()

func NewHub() *Hub {
	return &Hub{subscribers: map[string]chan []byte{}}
}

// Subscribe registers a new listener and returns its id and channel. The
// channel closes on Unsubscribe.
func (h *Hub) Subscribe() (string, <-chan []byte) {
	id := uuid.NewString()
	channel := make(chan []byte, subscriberBuffer)
	h.mutex.Lock()
	h.subscribers[id] = channel
	h.mutex.Unlock()
	return id, channel
}

func (h *Hub) Unsubscribe(id string) {
	h.mutex.Lock()
	defer h.mutex.Unlock()
	if channel, ok := h.subscribers[id]; ok {
		close(channel)
		delete(h.subscribers, id)
	}
}

// Broadcast marshals event once and offers it to every subscriber without
// blocking.
func (h *Hub) Broadcast(event any) {
	payload, err := json.Marshal(event)
	if err != nil {
		logger.Error("events - could not marshal event", logger.LoggerOptions{
			Key:  "error",
			Data: err,
		})
		return
	}

	h.mutex.RLock()
	defer h.mutex.RUnlock()
	for _, channel := range h.subscribers {
		select {
		case channel <- payload:
		default:
			// slow subscriber; drop rather than stall verification
		}
	}
}

// SubscriberCount reports connected listeners, for the health surface.
func (h *Hub) SubscriberCount() int {
	h.mutex.RLock()
	defer h.mutex.RUnlock()
	return len(h.subscribers)
}

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 4096,
	CheckOrigin: func(r *http.Request) bool {
		// Auth happens in middleware before the upgrade; cross-origin kiosk
		// dashboards are expected.
		return true
	},
}

// ServeWS upgrades the request and streams attempt events until the client
// disconnects. Write failures drop the subscriber.
func ServeWS(ctx *gin.Context) {
	conn, err := upgrader.Upgrade(ctx.Writer, ctx.Request, nil)
	if err != nil {
		logger.Error("events - websocket upgrade failed", logger.LoggerOptions{
			Key:  "error",
			Data: err,
		})
		return
	}
	defer conn.Close()

	id, channel := AttemptHub.Subscribe()
	defer AttemptHub.Unsubscribe(id)

	logger.Info("events - subscriber connected", logger.LoggerOptions{
		Key:  "subscriber",
		Data: id,
	})

	// Drain client frames so close handshakes and pings are processed.
	go func() {
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				conn.Close()
				return
			}
		}
	}()

	for payload := range channel {
		if err := conn.WriteMessage(websocket.TextMessage, payload); err != nil {
			return
		}
	}
}
