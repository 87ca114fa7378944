package websocket

import (
	"context"
	"errors"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// OTelMetrics provides OpenTelemetry metrics for WebSocket sessions.
// A nil *OTelMetrics records nothing.
type OTelMetrics struct {
	connectionsTotal   metric.Int64Counter
	connectionsActive  metric.Int64UpDownCounter
	connectionDuration metric.Float64Histogram

	messagesTotal   metric.Int64Counter
	messageBytes    metric.Int64Counter
	messageLatency  metric.Float64Histogram
	droppedMessages metric.Int64Counter
}

// NewOTelMetrics creates the WebSocket instruments on meter
func NewOTelMetrics(meter metric.Meter) (*OTelMetrics, error) {
	var errs []error
	counter := func(name, desc string) metric.Int64Counter {
		c, err := meter.Int64Counter(name, metric.WithDescription(desc))
		errs = append(errs, err)
		return c
	}
	seconds := func(name, desc string) metric.Float64Histogram {
		h, err := meter.Float64Histogram(name, metric.WithDescription(desc), metric.WithUnit("s"))
		errs = append(errs, err)
		return h
	}

	active, err := meter.Int64UpDownCounter("websocket_connections_active",
		metric.WithDescription("Number of active WebSocket connections"))
	errs = append(errs, err)

	m := &OTelMetrics{
		connectionsTotal:   counter("websocket_connections_total", "Total number of WebSocket connections"),
		connectionsActive:  active,
		connectionDuration: seconds("websocket_connection_duration_seconds", "Duration of WebSocket connections"),
		messagesTotal:      counter("websocket_messages_total", "Total number of WebSocket messages"),
		messageBytes:       counter("websocket_message_bytes_total", "Total bytes of WebSocket messages"),
		messageLatency:     seconds("websocket_message_latency_seconds", "Time to answer one WebSocket message"),
		droppedMessages:    counter("websocket_dropped_messages_total", "Replies dropped because the peer went away"),
	}
	if err := errors.Join(errs...); err != nil {
		return nil, err
	}
	return m, nil
}

// RecordConnection records a new connection
func (m *OTelMetrics) RecordConnection(ctx context.Context) {
	if m == nil {
		return
	}
	m.connectionsTotal.Add(ctx, 1)
	m.connectionsActive.Add(ctx, 1)
}

// RecordDisconnection records a closed connection and its lifetime
func (m *OTelMetrics) RecordDisconnection(ctx context.Context, duration time.Duration) {
	if m == nil {
		return
	}
	m.connectionsActive.Add(ctx, -1)
	m.connectionDuration.Record(ctx, duration.Seconds())
}

// RecordMessage records one message in direction "in" or "out"
func (m *OTelMetrics) RecordMessage(ctx context.Context, direction string, size int) {
	if m == nil {
		return
	}
	attrs := metric.WithAttributes(attribute.String("direction", direction))
	m.messagesTotal.Add(ctx, 1, attrs)
	m.messageBytes.Add(ctx, int64(size), attrs)
}

// RecordLatency records the time taken to answer a message
func (m *OTelMetrics) RecordLatency(ctx context.Context, d time.Duration) {
	if m == nil {
		return
	}
	m.messageLatency.Record(ctx, d.Seconds())
}

// RecordDroppedMessage records a reply that could not be delivered
func (m *OTelMetrics) RecordDroppedMessage(ctx context.Context) {
	if m == nil {
		return
	}
	m.droppedMessages.Add(ctx, 1)
}
