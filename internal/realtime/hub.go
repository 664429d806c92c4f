package realtime

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/yungbote/tickethub-backend/internal/pkg/logger"
)

type SSEEvent string

const (
	SSEEventTicketCreated SSEEvent = "TicketCreated"
	SSEEventTicketUpdated SSEEvent = "TicketUpdated"
	SSEEventTicketDeleted SSEEvent = "TicketDeleted"
)

// AdminChannel receives every ticket event.
const AdminChannel = "admin"

type SSEMessage struct {
	Channel string   `json:"channel"`
	Event   SSEEvent `json:"event"`
	Data    any      `json:"data,omitempty"`
}

const (
	outboundBuffer    = 32
	heartbeatInterval = 15 * time.Second
)

type SSEHub struct {
	mu            sync.RWMutex
	logger        *logger.Logger
	subscriptions map[string]map[*SSEClient]bool
	// closed is set by CloseAll; later subscribers are closed on arrival.
	closed bool
}

func NewSSEHub(log *logger.Logger) *SSEHub {
	return &SSEHub{
		logger:        log.With("component", "SSEHub"),
		subscriptions: make(map[string]map[*SSEClient]bool),
	}
}

func (hub *SSEHub) NewSSEClient(userID uuid.UUID) *SSEClient {
	id := uuid.New()
	return &SSEClient{
		ID:       id,
		UserID:   userID,
		Channels: make(map[string]bool),
		Outbound: make(chan SSEMessage, outboundBuffer),
		done:     make(chan struct{}),
		Logger:   hub.logger.With("clientID", id),
	}
}

func (hub *SSEHub) AddChannel(client *SSEClient, channel string) {
	hub.mu.Lock()
	defer hub.mu.Unlock()

	channel = strings.TrimSpace(channel)
	if channel == "" || client.closed {
		return
	}
	if hub.closed {
		hub.closeClientLocked(client)
		return
	}

	client.Channels[channel] = true

	clients, exists := hub.subscriptions[channel]
	if !exists {
		clients = make(map[*SSEClient]bool)
		hub.subscriptions[channel] = clients
	}
	clients[client] = true

	hub.logger.Debug("SSE client subscribed", "clientID", client.ID, "channel", channel)
}

func (hub *SSEHub) RemoveChannel(client *SSEClient, channel string) {
	hub.mu.Lock()
	defer hub.mu.Unlock()

	channel = strings.TrimSpace(channel)
	if channel == "" {
		return
	}
	delete(client.Channels, channel)
	hub.unsubscribeLocked(client, channel)
	hub.logger.Debug("SSE client unsubscribed from channel", "clientID", client.ID, "channel", channel)
}

func (hub *SSEHub) unsubscribeLocked(client *SSEClient, channel string) {
	if subMap, ok := hub.subscriptions[channel]; ok {
		delete(subMap, client)
		if len(subMap) == 0 {
			delete(hub.subscriptions, channel)
		}
	}
}

// Subscribers reports how many clients listen on channel.
func (hub *SSEHub) Subscribers(channel string) int {
	hub.mu.RLock()
	defer hub.mu.RUnlock()
	return len(hub.subscriptions[channel])
}

func (hub *SSEHub) Broadcast(msg SSEMessage) {
	hub.mu.RLock()
	defer hub.mu.RUnlock()

	if msg.Channel == "" {
		return
	}
	clientsMap, ok := hub.subscriptions[msg.Channel]
	if !ok {
		return
	}
	for c := range clientsMap {
		select {
		case c.Outbound <- msg:
		default:
			hub.logger.Warn("Dropping SSE message; outbound buffer full", "clientID", c.ID, "event", msg.Event)
		}
	}
}

// ServeHTTP streams the client's messages until the request ends or the
// client is closed.
func (hub *SSEHub) ServeHTTP(w http.ResponseWriter, r *http.Request, client *SSEClient) {
	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.Header().Set("X-Accel-Buffering", "no")

	flusher, ok := w.(http.Flusher)
	if !ok {
		http.Error(w, "Streaming unsupported!", http.StatusInternalServerError)
		return
	}
	w.WriteHeader(http.StatusOK)
	flusher.Flush()

	ctx := r.Context()
	heartbeat := time.NewTicker(heartbeatInterval)
	defer heartbeat.Stop()

	for {
		select {
		case <-ctx.Done():
			client.Logger.Debug("SSE client context done", "err", ctx.Err())
			return
		case <-client.done:
			return
		case <-heartbeat.C:
			_, _ = fmt.Fprint(w, ": ping\n\n")
			flusher.Flush()
		case msg, ok := <-client.Outbound:
			if !ok {
				return
			}
			jsonBytes, err := json.Marshal(msg)
			if err != nil {
				client.Logger.Warn("Failed to marshal SSE message", "error", err)
				continue
			}
			_, _ = fmt.Fprintf(w, "event: %s\ndata: %s\n\n", msg.Event, jsonBytes)
			flusher.Flush()
		}
	}
}

// CloseClient unsubscribes the client and closes its outbound channel. It is
// safe to call more than once.
func (hub *SSEHub) CloseClient(client *SSEClient) {
	hub.mu.Lock()
	defer hub.mu.Unlock()
	hub.closeClientLocked(client)
}

func (hub *SSEHub) closeClientLocked(client *SSEClient) {
	if client.closed {
		return
	}
	client.closed = true
	close(client.done)
	for ch := range client.Channels {
		hub.unsubscribeLocked(client, ch)
	}
	client.Channels = make(map[string]bool)
	close(client.Outbound)
	hub.logger.Debug("SSE client closed", "clientID", client.ID)
}

// CloseAll ends every connected stream and turns away streams that
// subscribe afterwards.
func (hub *SSEHub) CloseAll() {
	hub.mu.Lock()
	defer hub.mu.Unlock()
	hub.closed = true
	clients := make(map[*SSEClient]struct{})
	for _, subs := range hub.subscriptions {
		for c := range subs {
			clients[c] = struct{}{}
		}
	}
	for c := range clients {
		hub.closeClientLocked(c)
	}
}
