package ws

import (
	"encoding/json"
	"errors"
	"sync"
	"time"

	"github.com/gorilla/websocket"
)

// mockWebSocketConn feeds queued client messages to the session and records
// every text message written back.
type mockWebSocketConn struct {
	incoming chan []byte
	written  chan PanelMessage

	mu     sync.Mutex
	closed bool
	done   chan struct{}
}

func newMockWebSocketConn() *mockWebSocketConn {
	return &mockWebSocketConn{
		incoming: make(chan []byte, 16),
		written:  make(chan PanelMessage, 64),
		done:     make(chan struct{}),
	}
}

func (m *mockWebSocketConn) sendJSON(v any) {
	payload, _ := json.Marshal(v)
	m.incoming <- payload
}

func (m *mockWebSocketConn) ReadMessage() (int, []byte, error) {
	select {
	case msg := <-m.incoming:
		return websocket.TextMessage, msg, nil
	case <-m.done:
		return 0, nil, &websocket.CloseError{Code: websocket.CloseNormalClosure}
	}
}

func (m *mockWebSocketConn) WriteMessage(messageType int, data []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.closed {
		return websocket.ErrCloseSent
	}
	if messageType != websocket.TextMessage {
		return nil
	}
	var message PanelMessage
	if err := json.Unmarshal(data, &message); err != nil {
		return err
	}
	m.written <- message
	return nil
}

func (m *mockWebSocketConn) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.closed {
		return errors.New("already closed")
	}
	m.closed = true
	close(m.done)
	return nil
}

func (m *mockWebSocketConn) SetWriteDeadline(t time.Time) error { return nil }

func (m *mockWebSocketConn) SetReadDeadline(t time.Time) error { return nil }

func (m *mockWebSocketConn) SetPongHandler(h func(appData string) error) {}

func (m *mockWebSocketConn) SetReadLimit(size int64) {}
