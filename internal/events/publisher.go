// Package events publishes cart activity to NATS for downstream consumers.
// Publishing is best effort: it happens after the database commit and a
// failed publish never fails the originating request.
package events

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/jackc/pgx/v5/pgtype"
	"github.com/nats-io/nats.go"

	"github.com/shoptrack/shoptrack/internal/domain"
)

// Publisher emits cart events to interested consumers.
type Publisher interface {
	PublishCartEvent(event domain.CartEvent)
	Close()
}

// cartEventMessage is the wire form of a published event.
type cartEventMessage struct {
	ID                     string    `json:"id"`
	CartID                 string    `json:"cart_id"`
	UserID                 string    `json:"user_id"`
	ProductID              *string   `json:"product_id,omitempty"`
	EventType              string    `json:"event_type"`
	QuantityChanged        int32     `json:"quantity_changed"`
	Timestamp              time.Time `json:"timestamp"`
	SessionDurationSeconds int32     `json:"session_duration_seconds"`
}

// NATSPublisher publishes cart events as JSON to per-type subjects.
type NATSPublisher struct {
	conn   *nats.Conn
	logger *slog.Logger
}

func NewNATSPublisher(url string, logger *slog.Logger) (*NATSPublisher, error) {
	conn, err := nats.Connect(url,
		nats.Name("shoptrack"),
		nats.MaxReconnects(-1),
		nats.ReconnectWait(2*time.Second),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to NATS: %w", err)
	}
	return &NATSPublisher{conn: conn, logger: logger}, nil
}

func (p *NATSPublisher) PublishCartEvent(event domain.CartEvent) {
	msg := cartEventMessage{
		ID:                     uuidString(event.ID),
		CartID:                 uuidString(event.CartID),
		UserID:                 uuidString(event.UserID),
		EventType:              string(event.EventType),
		QuantityChanged:        event.QuantityChanged,
		Timestamp:              event.Timestamp.Time,
		SessionDurationSeconds: event.SessionDurationSeconds,
	}
	if event.ProductID.Valid {
		s := uuidString(event.ProductID)
		msg.ProductID = &s
	}

	payload, err := json.Marshal(msg)
	if err != nil {
		p.logger.Error("failed to marshal cart event", "error", err)
		return
	}

	subject := "shoptrack.cart.events." + msg.EventType
	if err := p.conn.Publish(subject, payload); err != nil {
		p.logger.Warn("failed to publish cart event",
			"subject", subject,
			"event_type", msg.EventType,
			"error", err,
		)
	}
}

func (p *NATSPublisher) Close() {
	p.conn.Drain()
}

// NoopPublisher discards events. Used when NATS is not configured.
type NoopPublisher struct{}

func (NoopPublisher) PublishCartEvent(domain.CartEvent) {}
func (NoopPublisher) Close()                            {}

func uuidString(id pgtype.UUID) string {
	if !id.Valid {
		return ""
	}
	b := id.Bytes
	return fmt.Sprintf("%x-%x-%x-%x-%x", b[0:4], b[4:6], b[6:8], b[8:10], b[10:16])
}
