package websocket

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"time"

	json "github.com/goccy/go-json"
	"github.com/gorilla/websocket"
)

// MockExchange is an in-process WebSocket server speaking the exchange's
// frame protocol, for tests: it acknowledges subscribe frames, records
// login frames and lets tests broadcast channel events to every client.
type MockExchange struct {
	server *httptest.Server
	url    string

	mu          sync.Mutex
	connections map[*websocket.Conn]bool
	received    [][]byte
	logins      int

	// SuppressPongs makes the server swallow ping control frames so
	// liveness expiry can be exercised. Set before connecting.
	SuppressPongs bool

	rejectConnections bool
}

// NewMockExchange starts a mock exchange server. Callers own Close.
func NewMockExchange() *MockExchange {
	m := &MockExchange{
		connections: make(map[*websocket.Conn]bool),
	}

	m.server = httptest.NewServer(http.HandlerFunc(m.handleConnection))
	m.url = "ws" + strings.TrimPrefix(m.server.URL, "http")

	return m
}

// URL returns the WebSocket URL of the server.
func (m *MockExchange) URL() string {
	return m.url
}

// Close shuts the server down.
func (m *MockExchange) Close() {
	m.server.Close()
}

// SetRejectConnections makes the server refuse upgrades.
func (m *MockExchange) SetRejectConnections(reject bool) {
	m.mu.Lock()
	m.rejectConnections = reject
	m.mu.Unlock()
}

// ConnectionCount returns the number of live client connections.
func (m *MockExchange) ConnectionCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.connections)
}

// LoginCount returns how many login frames have been received.
func (m *MockExchange) LoginCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.logins
}

// Received returns a copy of all text frames received from clients.
func (m *MockExchange) Received() [][]byte {
	m.mu.Lock()
	defer m.mu.Unlock()

	frames := make([][]byte, len(m.received))
	copy(frames, m.received)
	return frames
}

// Broadcast sends one frame to every connected client.
func (m *MockExchange) Broadcast(frame []byte) {
	m.mu.Lock()
	defer m.mu.Unlock()

	for conn := range m.connections {
		_ = conn.SetWriteDeadline(time.Now().Add(5 * time.Second))
		if err := conn.WriteMessage(websocket.TextMessage, frame); err != nil {
			delete(m.connections, conn)
		}
	}
}

// DropConnections forcibly closes every client connection without a close
// handshake.
func (m *MockExchange) DropConnections() {
	m.mu.Lock()
	defer m.mu.Unlock()

	for conn := range m.connections {
		_ = conn.Close()
		delete(m.connections, conn)
	}
}

func (m *MockExchange) handleConnection(w http.ResponseWriter, r *http.Request) {
	m.mu.Lock()
	reject := m.rejectConnections
	m.mu.Unlock()
	if reject {
		w.WriteHeader(http.StatusForbidden)
		return
	}

	upgrader := websocket.Upgrader{
		ReadBufferSize:  1024,
		WriteBufferSize: 1024,
		CheckOrigin: func(r *http.Request) bool {
			return true
		},
	}

	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		return
	}

	if m.SuppressPongs {
		// The default gorilla handler answers pings with pongs; replace it
		// with a sink so the client's liveness window runs out.
		conn.SetPingHandler(func(string) error { return nil })
	}

	m.mu.Lock()
	m.connections[conn] = true
	m.mu.Unlock()

	defer func() {
		m.mu.Lock()
		delete(m.connections, conn)
		m.mu.Unlock()
		conn.Close()
	}()

	for {
		messageType, message, err := conn.ReadMessage()
		if err != nil {
			return
		}
		if messageType != websocket.TextMessage {
			continue
		}

		m.mu.Lock()
		m.received = append(m.received, message)
		m.mu.Unlock()

		m.handleFrame(conn, message)
	}
}

// handleFrame acknowledges the op frames a client sends on startup.
func (m *MockExchange) handleFrame(conn *websocket.Conn, message []byte) {
	var frame struct {
		Op      string `json:"op"`
		Channel string `json:"channel"`
		Market  string `json:"market"`
	}
	if err := json.Unmarshal(message, &frame); err != nil {
		return
	}

	var reply []byte
	switch frame.Op {
	case "login":
		m.mu.Lock()
		m.logins++
		m.mu.Unlock()
		return
	case "subscribe":
		reply, _ = json.Marshal(map[string]string{
			"type":    "subscribed",
			"channel": frame.Channel,
			"market":  frame.Market,
		})
	case "unsubscribe":
		reply, _ = json.Marshal(map[string]string{
			"type":    "unsubscribed",
			"channel": frame.Channel,
			"market":  frame.Market,
		})
	case "ping":
		reply, _ = json.Marshal(map[string]string{"type": "pong"})
	default:
		return
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	_ = conn.SetWriteDeadline(time.Now().Add(5 * time.Second))
	_ = conn.WriteMessage(websocket.TextMessage, reply)
}
