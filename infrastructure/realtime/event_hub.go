package realtime

import (
	"context"
	"io"
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"subtitle-credit/domain/model"
)

// Event is one server-sent event delivered to the owner of a job or payment.
type Event struct {
	Type string      `json:"type"`
	At   time.Time   `json:"at"`
	Data interface{} `json:"data"`
}

// Hub fans job and payment events out to per-user SSE subscribers.
// It satisfies repository.IEventPublisher so it can sit next to the message bus.
type Hub struct {
	mu    sync.RWMutex
	users map[string]map[chan Event]struct{}
}

func NewHub() *Hub {
	return &Hub{users: make(map[string]map[chan Event]struct{})}
}

// Publish never blocks: slow subscribers miss events.
func (h *Hub) Publish(_ context.Context, eventType string, payload interface{}) error {
	var userID string
	switch p := payload.(type) {
	case model.JobEvent:
		userID = p.UserID
	case model.PaymentEvent:
		userID = p.UserID
	}
	if userID == "" {
		return nil
	}

	evt := Event{Type: eventType, At: time.Now().UTC(), Data: payload}
	h.mu.RLock()
	defer h.mu.RUnlock()
	for ch := range h.users[userID] {
		select {
		case ch <- evt:
		default:
		}
	}
	return nil
}

// Serve streams the caller's events until the client goes away.
func (h *Hub) Serve(c *gin.Context) {
	userID := c.GetString("user_id")
	if userID == "" {
		c.Status(http.StatusUnauthorized)
		return
	}
	c.Header("Cache-Control", "no-cache")
	c.Header("Connection", "keep-alive")
	c.Header("X-Accel-Buffering", "no")

	ch := h.subscribe(userID)
	defer h.unsubscribe(userID, ch)

	c.SSEvent("ready", gin.H{"user_id": userID})
	c.Writer.Flush()

	c.Stream(func(_ io.Writer) bool {
		select {
		case <-c.Request.Context().Done():
			return false
		case evt := <-ch:
			c.SSEvent(evt.Type, evt)
			return true
		}
	})
}

// Subscribers reports how many streams are open for userID.
func (h *Hub) Subscribers(userID string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.users[userID])
}

func (h *Hub) subscribe(userID string) chan Event {
	ch := make(chan Event, 8)
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.users[userID] == nil {
		h.users[userID] = make(map[chan Event]struct{})
	}
	h.users[userID][ch] = struct{}{}
	return ch
}

func (h *Hub) unsubscribe(userID string, ch chan Event) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if subs := h.users[userID]; subs != nil {
		delete(subs, ch)
		close(ch)
		if len(subs) == 0 {
			delete(h.users, userID)
		}
	}
}
