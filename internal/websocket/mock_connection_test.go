package websocket

import (
	"errors"
	"sync"
	"time"
)

// mockConnection replays queued inbound messages and records outbound ones.
// ReadMessage fails once the queue is empty, which ends the session.
type mockConnection struct {
	mu sync.Mutex

	reads    []mockMessage
	readIdx  int
	written  []mockMessage
	closed   bool
	writeErr error

	readLimit    int64
	readDeadline time.Time
	pongHandler  func(string) error
}

type mockMessage struct {
	Type int
	Data []byte
}

func newMockConnection(messages ...string) *mockConnection {
	m := &mockConnection{}
	for _, msg := range messages {
		m.reads = append(m.reads, mockMessage{Type: 1, Data: []byte(msg)})
	}
	return m
}

func (m *mockConnection) WriteMessage(messageType int, data []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.closed {
		return errors.New("connection closed")
	}
	if m.writeErr != nil {
		return m.writeErr
	}
	m.written = append(m.written, mockMessage{Type: messageType, Data: append([]byte(nil), data...)})
	return nil
}

func (m *mockConnection) ReadMessage() (int, []byte, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.closed {
		return 0, nil, errors.New("connection closed")
	}
	if m.readIdx >= len(m.reads) {
		return 0, nil, errors.New("no more messages")
	}
	msg := m.reads[m.readIdx]
	m.readIdx++
	return msg.Type, msg.Data, nil
}

func (m *mockConnection) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.closed = true
	return nil
}

func (m *mockConnection) SetReadDeadline(t time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.readDeadline = t
	return nil
}

func (m *mockConnection) SetWriteDeadline(time.Time) error { return nil }

func (m *mockConnection) SetReadLimit(limit int64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.readLimit = limit
}

func (m *mockConnection) SetPongHandler(h func(string) error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.pongHandler = h
}

func (m *mockConnection) RemoteAddr() string { return "127.0.0.1:8080" }

// textMessages returns the payloads of written text frames
func (m *mockConnection) textMessages() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []string
	for _, w := range m.written {
		if w.Type == 1 {
			out = append(out, string(w.Data))
		}
	}
	return out
}

func (m *mockConnection) isClosed() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.closed
}
