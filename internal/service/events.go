package service

import (
	"context"
	"encoding/json"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/rs/zerolog"

	"github.com/audire/casting-portal/internal/metrics"
	"github.com/audire/casting-portal/internal/queue"
)

// Events publishes domain events. Failures are logged and counted, never
// surfaced to the request that caused them.
type Events interface {
	ApplicationSubmitted(ctx context.Context, ev queue.ApplicationSubmittedEvent)
	CastingPublished(ctx context.Context, ev queue.CastingPublishedEvent)
}

// NopEvents drops every event. Used when the broker is disabled.
type NopEvents struct{}

func (NopEvents) ApplicationSubmitted(context.Context, queue.ApplicationSubmittedEvent) {}
func (NopEvents) CastingPublished(context.Context, queue.CastingPublishedEvent)         {}

const publishTimeout = 3 * time.Second

// AMQPEvents dials the broker per event and publishes a persistent JSON
// message to the event's durable queue on the default exchange.
type AMQPEvents struct {
	URL string
	Log zerolog.Logger
}

func (p *AMQPEvents) ApplicationSubmitted(ctx context.Context, ev queue.ApplicationSubmittedEvent) {
	p.publish(ctx, queue.ApplicationSubmittedQueue, ev)
}

func (p *AMQPEvents) CastingPublished(ctx context.Context, ev queue.CastingPublishedEvent) {
	p.publish(ctx, queue.CastingPublishedQueue, ev)
}

func (p *AMQPEvents) publish(ctx context.Context, queueName string, event any) {
	if err := p.send(ctx, queueName, event); err != nil {
		metrics.EventsPublishFailedTotal.WithLabelValues(queueName).Inc()
		p.Log.Warn().Err(err).Str("queue", queueName).Msg("publish event failed")
	}
}

func (p *AMQPEvents) send(ctx context.Context, queueName string, event any) error {
	body, err := json.Marshal(event)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(ctx, publishTimeout)
	defer cancel()

	conn, err := amqp.DialConfig(p.URL, amqp.Config{Dial: amqp.DefaultDial(publishTimeout)})
	if err != nil {
		return err
	}
	defer func() { _ = conn.Close() }()

	ch, err := conn.Channel()
	if err != nil {
		return err
	}
	defer func() { _ = ch.Close() }()

	if _, err := ch.QueueDeclare(queueName, true, false, false, false, nil); err != nil {
		return err
	}

	return ch.PublishWithContext(ctx, "", queueName, false, false, amqp.Publishing{
		ContentType:  "application/json",
		DeliveryMode: amqp.Persistent,
		Timestamp:    time.Now().UTC(),
		Body:         body,
	})
}
