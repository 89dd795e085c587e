package queue

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/rs/zerolog"
)

// AuditConsumer drains the event queues and appends one JSON line per event
// to an audit log.
type AuditConsumer struct {
	url   string
	log   zerolog.Logger
	audit zerolog.Logger
}

// NewAuditConsumer opens (or creates) the audit log at path.
func NewAuditConsumer(url, path string, log zerolog.Logger) (*AuditConsumer, io.Closer, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, nil, fmt.Errorf("mkdir audit dir: %w", err)
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		return nil, nil, fmt.Errorf("open audit log: %w", err)
	}
	return newAuditConsumer(url, f, log), f, nil
}

func newAuditConsumer(url string, w io.Writer, log zerolog.Logger) *AuditConsumer {
	return &AuditConsumer{
		url:   url,
		log:   log.With().Str("component", "audit-consumer").Logger(),
		audit: zerolog.New(w).With().Timestamp().Logger(),
	}
}

// Run connects, consumes and reconnects with exponential backoff until ctx is
// cancelled. It always returns ctx.Err().
func (c *AuditConsumer) Run(ctx context.Context) error {
	backoff := time.Second
	for {
		conn, err := amqp.Dial(c.url)
		if err != nil {
			c.log.Warn().Err(err).Dur("retry_in", backoff).Msg("dial broker failed")
			if !sleep(ctx, backoff) {
				return ctx.Err()
			}
			if backoff < 30*time.Second {
				backoff *= 2
			}
			continue
		}
		backoff = time.Second

		err = c.consume(ctx, conn)
		_ = conn.Close()
		if ctx.Err() != nil {
			return ctx.Err()
		}
		c.log.Warn().Err(err).Msg("consume loop ended; reconnecting")
		if !sleep(ctx, 2*time.Second) {
			return ctx.Err()
		}
	}
}

func (c *AuditConsumer) consume(ctx context.Context, conn *amqp.Connection) error {
	ch, err := conn.Channel()
	if err != nil {
		return fmt.Errorf("channel open: %w", err)
	}
	defer func() { _ = ch.Close() }()

	if err := ch.Qos(50, 0, false); err != nil {
		c.log.Warn().Err(err).Msg("set QoS failed")
	}

	applications, err := declareAndConsume(ch, ApplicationSubmittedQueue)
	if err != nil {
		return err
	}
	castings, err := declareAndConsume(ch, CastingPublishedQueue)
	if err != nil {
		return err
	}

	for {
		var d amqp.Delivery
		var ok bool
		select {
		case <-ctx.Done():
			return ctx.Err()
		case d, ok = <-applications:
		case d, ok = <-castings:
		}
		if !ok {
			return errors.New("deliveries channel closed")
		}
		if err := c.Handle(d.RoutingKey, d.Body); err != nil {
			c.log.Error().Err(err).Str("queue", d.RoutingKey).Msg("handle message failed")
			_ = d.Nack(false, false) // no requeue
			continue
		}
		_ = d.Ack(false)
	}
}

func declareAndConsume(ch *amqp.Channel, queue string) (<-chan amqp.Delivery, error) {
	if _, err := ch.QueueDeclare(queue, true, false, false, false, nil); err != nil {
		return nil, fmt.Errorf("queue declare %s: %w", queue, err)
	}
	msgs, err := ch.Consume(queue, "", false, false, false, false, nil)
	if err != nil {
		return nil, fmt.Errorf("queue consume %s: %w", queue, err)
	}
	return msgs, nil
}

// Handle decodes one message from queue and writes its audit line.
func (c *AuditConsumer) Handle(queue string, body []byte) error {
	switch queue {
	case ApplicationSubmittedQueue:
		var ev ApplicationSubmittedEvent
		if err := json.Unmarshal(body, &ev); err != nil {
			return fmt.Errorf("unmarshal: %w", err)
		}
		c.audit.Info().
			Str("event", queue).
			Uint64("application_id", ev.ApplicationID).
			Uint64("performer_id", ev.PerformerID).
			Uint64("casting_id", ev.CastingID).
			Str("casting_title", ev.CastingTitle).
			Str("sent_at", ev.SentAt).
			Msg("application submitted")
	case CastingPublishedQueue:
		var ev CastingPublishedEvent
		if err := json.Unmarshal(body, &ev); err != nil {
			return fmt.Errorf("unmarshal: %w", err)
		}
		c.audit.Info().
			Str("event", queue).
			Uint64("casting_id", ev.CastingID).
			Uint64("director_id", ev.DirectorID).
			Uint64("production_id", ev.ProductionID).
			Str("title", ev.Title).
			Str("category", ev.Category).
			Str("deadline", ev.Deadline).
			Str("published_at", ev.PublishedAt).
			Msg("casting published")
	default:
		return fmt.Errorf("unknown queue %q", queue)
	}
	return nil
}

func sleep(ctx context.Context, d time.Duration) bool {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return false
	case <-t.C:
		return true
	}
}
