package server

import (
	"context"
	"net/http"
	"sync"
	"time"

	"github.com/coder/websocket"
	"github.com/coder/websocket/wsjson"
	"go.uber.org/zap"

	"github.com/goliatone/go-formbuilder/pkg/controls"
	"github.com/goliatone/go-formbuilder/pkg/editor"
	"github.com/goliatone/go-formbuilder/pkg/model"
)

// MessageTypeForm tags pushed form snapshots.
const MessageTypeForm = "form"

const (
	sendBuffer   = 16
	writeTimeout = 5 * time.Second
)

// FormData is the form state sent to clients.
type FormData struct {
	Revision     uint64                                 `json:"revision"`
	Definition   *model.Definition                      `json:"definition"`
	BuilderCode  string                                 `json:"builderCode"`
	HTMLTemplate string                                 `json:"htmlTemplate"`
	Layout       string                                 `json:"layout,omitempty"`
	Valid        bool                                   `json:"valid"`
	Errors       map[string][]controls.ValidationError `json:"errors,omitempty"`
}

// Message is a frame pushed over the websocket.
type Message struct {
	Type string   `json:"type"`
	Data FormData `json:"data"`
}

// NewFormData converts a session snapshot.
func NewFormData(snap editor.Snapshot) FormData {
	def := snap.Definition
	if def == nil {
		def = model.NewDefinition()
	}
	return FormData{
		Revision:     snap.Revision,
		Definition:   def,
		BuilderCode:  snap.Output.BuilderCode,
		HTMLTemplate: snap.Output.HTMLTemplate,
		Layout:       snap.Layout,
		Valid:        snap.Valid,
		Errors:       snap.Errors,
	}
}

type client struct {
	send chan Message
}

// Hub fans snapshots out to websocket clients. Each client gets the current
// snapshot on connect and every later one; clients that fall behind are
// disconnected.
type Hub struct {
	current func() editor.Snapshot
	logger  *zap.Logger

	mu      sync.Mutex
	clients map[*client]struct{}
	closed  bool
}

// NewHub creates a hub. current supplies the snapshot sent on connect.
func NewHub(current func() editor.Snapshot, logger *zap.Logger) *Hub {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Hub{
		current: current,
		logger:  logger,
		clients: make(map[*client]struct{}),
	}
}

// Publish queues snap for every connected client. It never blocks.
func (h *Hub) Publish(snap editor.Snapshot) {
	msg := Message{Type: MessageTypeForm, Data: NewFormData(snap)}

	h.mu.Lock()
	defer h.mu.Unlock()
	for c := range h.clients {
		select {
		case c.send <- msg:
		default:
			h.logger.Warn("dropping slow websocket client")
			h.dropLocked(c)
		}
	}
}

// Len returns the number of connected clients.
func (h *Hub) Len() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.clients)
}

// Close disconnects every client and refuses new ones.
func (h *Hub) Close() {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.closed = true
	for c := range h.clients {
		h.dropLocked(c)
	}
}

func (h *Hub) dropLocked(c *client) {
	if _, ok := h.clients[c]; !ok {
		return
	}
	delete(h.clients, c)
	close(c.send)
}

func (h *Hub) register() (*client, bool) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.closed {
		return nil, false
	}
	c := &client{send: make(chan Message, sendBuffer)}
	if h.current != nil {
		c.send <- Message{Type: MessageTypeForm, Data: NewFormData(h.current())}
	}
	h.clients[c] = struct{}{}
	return c, true
}

func (h *Hub) unregister(c *client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.dropLocked(c)
}

// ServeHTTP upgrades the request and streams snapshots until the client
// disconnects or the hub closes. Incoming frames are ignored.
func (h *Hub) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := websocket.Accept(w, r, &websocket.AcceptOptions{
		OriginPatterns: []string{"*"},
	})
	if err != nil {
		h.logger.Warn("websocket accept", zap.Error(err))
		return
	}
	defer conn.CloseNow()

	c, ok := h.register()
	if !ok {
		conn.Close(websocket.StatusGoingAway, "server shutting down")
		return
	}
	defer h.unregister(c)

	ctx := conn.CloseRead(r.Context())
	var sent bool
	var last uint64
	for {
		select {
		case <-ctx.Done():
			return
		case msg, ok := <-c.send:
			if !ok {
				conn.Close(websocket.StatusGoingAway, "disconnected")
				return
			}
			// A publish racing the connect can repeat the initial snapshot.
			if sent && msg.Data.Revision <= last {
				continue
			}
			if err := h.write(ctx, conn, msg); err != nil {
				if websocket.CloseStatus(err) == -1 {
					h.logger.Debug("websocket write", zap.Error(err))
				}
				return
			}
			sent, last = true, msg.Data.Revision
		}
	}
}

func (h *Hub) write(ctx context.Context, conn *websocket.Conn, msg Message) error {
	ctx, cancel := context.WithTimeout(ctx, writeTimeout)
	defer cancel()
	return wsjson.Write(ctx, conn, msg)
}
