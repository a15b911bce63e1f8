package server

import (
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	pkgEvents "github.com/lacquerai/rankview/pkg/events"
	"github.com/rs/zerolog/log"
)

const (
	// writeWait bounds a single websocket write.
	writeWait = 10 * time.Second
	// clientQueue is the number of events a client may fall behind by before
	// it is dropped.
	clientQueue = 32
)

// streamClient is one websocket connection and its outgoing queue. Only
// writeLoop writes to conn.
type streamClient struct {
	conn *websocket.Conn
	send chan []byte
}

func (c *streamClient) writeLoop() {
	defer c.conn.Close()

	for msg := range c.send {
		_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
		if err := c.conn.WriteMessage(websocket.TextMessage, msg); err != nil {
			log.Debug().Err(err).Msg("Stream write failed")
			return
		}
	}

	_ = c.conn.WriteControl(websocket.CloseMessage,
		websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""),
		time.Now().Add(writeWait))
}

// Hub fans events out to connected websocket clients. It implements
// events.Listener so the runner can feed it directly. Broadcasting never
// waits on a client.
type Hub struct {
	mu      sync.Mutex
	clients map[*streamClient]bool
	last    []byte
	metrics *Metrics
}

// NewHub creates a hub with no clients.
func NewHub(metrics *Metrics) *Hub {
	return &Hub{
		clients: make(map[*streamClient]bool),
		metrics: metrics,
	}
}

// StartListening broadcasts every event received on the channel.
func (h *Hub) StartListening(progressChan <-chan pkgEvents.Event) {
	for event := range progressChan {
		h.Broadcast(event)
	}
}

// StopListening implements the events.Listener interface.
func (h *Hub) StopListening() {}

// Broadcast queues event for every client. Clients whose queue is full are
// dropped. Dataset events are remembered and replayed to new clients.
func (h *Hub) Broadcast(event pkgEvents.Event) {
	eventJSON, err := json.Marshal(event)
	if err != nil {
		log.Error().Err(err).Msg("Failed to encode event")
		return
	}

	h.mu.Lock()
	defer h.mu.Unlock()

	if event.Type == pkgEvents.EventDatasetLoaded || event.Type == pkgEvents.EventDatasetRejected {
		h.last = eventJSON
	}

	for client := range h.clients {
		select {
		case client.send <- eventJSON:
		default:
			log.Debug().Msg("Dropping slow stream client")
			h.removeLocked(client)
		}
	}
}

// Clients returns the number of connected clients.
func (h *Hub) Clients() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.clients)
}

// add registers conn and starts its writer.
func (h *Hub) add(conn *websocket.Conn) *streamClient {
	client := &streamClient{conn: conn, send: make(chan []byte, clientQueue)}

	h.mu.Lock()
	defer h.mu.Unlock()

	if h.last != nil {
		client.send <- h.last
	}
	h.clients[client] = true
	if h.metrics != nil {
		h.metrics.streamClients.Set(float64(len(h.clients)))
	}

	go client.writeLoop()
	return client
}

func (h *Hub) remove(client *streamClient) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.removeLocked(client)
}

// removeLocked unregisters client. Closing its queue stops the writer, which
// closes the connection.
func (h *Hub) removeLocked(client *streamClient) {
	if !h.clients[client] {
		return
	}
	delete(h.clients, client)
	close(client.send)
	if h.metrics != nil {
		h.metrics.streamClients.Set(float64(len(h.clients)))
	}
}

// streamEvents upgrades the request to a websocket and keeps it registered
// until the client disconnects.
func (s *Server) streamEvents(w http.ResponseWriter, r *http.Request) {
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Error().Err(err).Msg("WebSocket upgrade failed")
		return
	}

	client := s.hub.add(conn)
	defer s.hub.remove(client)

	// Clients never send anything meaningful; reading detects disconnects.
	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			return
		}
	}
}
