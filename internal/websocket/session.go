package websocket

import (
	"bytes"
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"github.com/IsnaAyustin/final-project-ds/internal/config"
	"github.com/IsnaAyustin/final-project-ds/internal/infrastructure"
)

// heartbeat is sent by browser clients to keep idle connections open
const heartbeat = `{"type":"heartbeat"}`

var (
	newline = []byte{'\n'}
	space   = []byte{' '}
)

// Options are the timing and size limits of a session
type Options struct {
	// Time allowed to write a message to the peer
	WriteWait time.Duration
	// Time allowed to read the next pong message from the peer
	PongWait time.Duration
	// Send pings to peer with this period. Must be less than PongWait
	PingPeriod time.Duration
	// Maximum message size allowed from peer
	MaxMessageSize int64
}

// NewOptions derives session limits from configuration
func NewOptions(cfg config.WebSocketConfig) Options {
	opts := Options{
		WriteWait:      config.WebSocketWriteWait,
		PongWait:       cfg.PongWait,
		PingPeriod:     cfg.PingPeriod,
		MaxMessageSize: cfg.MaxMessageSize,
	}
	if opts.PongWait <= 0 {
		opts.PongWait = config.WebSocketPongWait
	}
	if opts.PingPeriod <= 0 || opts.PingPeriod >= opts.PongWait {
		opts.PingPeriod = (opts.PongWait * 9) / 10
	}
	if opts.MaxMessageSize <= 0 {
		opts.MaxMessageSize = config.WebSocketMaxMessageSize
	}
	return opts
}

// Session serves one WebSocket connection. Every inbound message is passed
// to the handler in order and its reply is queued for the write pump.
type Session struct {
	conn    Connection
	handler Handler
	opts    Options

	// Buffered channel of outbound messages
	send chan []byte
	// Closed when the write pump exits
	writerDone chan struct{}

	id          string
	traceID     string
	connectedAt time.Time

	logger  *slog.Logger
	metrics *OTelMetrics

	messagesSent     int64
	messagesReceived int64
}

// NewSession creates a session over conn
func NewSession(conn Connection, handler Handler, opts Options, traceID string, logger *slog.Logger, metrics *OTelMetrics) *Session {
	if logger == nil {
		logger = infrastructure.GetLogger()
	}
	id := uuid.New().String()
	return &Session{
		conn:        conn,
		handler:     handler,
		opts:        opts,
		send:        make(chan []byte, 16),
		writerDone:  make(chan struct{}),
		id:          id,
		traceID:     traceID,
		connectedAt: time.Now(),
		logger: logger.With(
			slog.String("component", "websocket.session"),
			slog.String("session_id", id),
			slog.String("remote_addr", conn.RemoteAddr()),
		),
		metrics: metrics,
	}
}

// ID returns the session identifier
func (s *Session) ID() string {
	return s.id
}

// Serve runs the session until the peer disconnects or ctx is cancelled
func (s *Session) Serve(ctx context.Context) {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()
	if s.traceID != "" {
		ctx = infrastructure.WithTraceID(ctx, s.traceID)
	}

	s.metrics.RecordConnection(ctx)
	s.logger.InfoContext(ctx, "WebSocket session started")

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		s.writePump(ctx)
	}()

	// Unblock ReadMessage when the server shuts down
	go func() {
		<-ctx.Done()
		s.conn.Close()
	}()

	s.readPump(ctx)
	close(s.send)
	wg.Wait()
	s.conn.Close()

	s.metrics.RecordDisconnection(ctx, time.Since(s.connectedAt))
	s.logger.InfoContext(ctx, "WebSocket session ended",
		slog.Duration("connection_duration", time.Since(s.connectedAt)),
		slog.Int64("messages_received", s.messagesReceived),
		slog.Int64("messages_sent", s.messagesSent))
}

// readPump answers inbound messages until the connection fails
func (s *Session) readPump(ctx context.Context) {
	s.conn.SetReadLimit(s.opts.MaxMessageSize)
	s.conn.SetReadDeadline(time.Now().Add(s.opts.PongWait))
	s.conn.SetPongHandler(func(string) error {
		return s.conn.SetReadDeadline(time.Now().Add(s.opts.PongWait))
	})

	for {
		_, message, err := s.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure, websocket.CloseNormalClosure) {
				s.logger.WarnContext(ctx, "Unexpected WebSocket close error",
					slog.String("error", err.Error()))
			}
			return
		}
		message = bytes.TrimSpace(bytes.Replace(message, newline, space, -1))
		s.messagesReceived++
		s.metrics.RecordMessage(ctx, "in", len(message))

		if string(message) == heartbeat {
			s.conn.SetReadDeadline(time.Now().Add(s.opts.PongWait))
			continue
		}

		start := time.Now()
		reply := s.handler.Handle(ctx, message)
		s.metrics.RecordLatency(ctx, time.Since(start))
		if reply == nil {
			continue
		}

		select {
		case s.send <- reply:
		case <-s.writerDone:
			s.metrics.RecordDroppedMessage(ctx)
			return
		}
	}
}

// writePump sends queued replies and keeps the connection alive with pings
func (s *Session) writePump(ctx context.Context) {
	ticker := time.NewTicker(s.opts.PingPeriod)
	defer func() {
		ticker.Stop()
		close(s.writerDone)
		s.conn.Close()
	}()

	for {
		select {
		case message, ok := <-s.send:
			s.conn.SetWriteDeadline(time.Now().Add(s.opts.WriteWait))
			if !ok {
				s.conn.WriteMessage(websocket.CloseMessage,
					websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
				return
			}
			if err := s.conn.WriteMessage(websocket.TextMessage, message); err != nil {
				s.logger.ErrorContext(ctx, "Error writing message to WebSocket",
					slog.String("error", err.Error()))
				return
			}
			s.messagesSent++
			s.metrics.RecordMessage(ctx, "out", len(message))

		case <-ticker.C:
			s.conn.SetWriteDeadline(time.Now().Add(s.opts.WriteWait))
			if err := s.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				s.logger.DebugContext(ctx, "Failed to send ping message",
					slog.String("error", err.Error()))
				return
			}
		}
	}
}
