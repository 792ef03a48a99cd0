// Package service holds integrations the HTTP layer calls after a request's
// main work has committed.
package service

import (
	"context"
	"encoding/json"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"

	"github.com/iliyamo/event-ticketing/internal/logger"
	"github.com/iliyamo/event-ticketing/internal/queue"
)

// ActivityPublisher publishes activity events to a durable RabbitMQ queue.
// Errors are logged and returned so callers can ignore failures without
// interrupting the request.
type ActivityPublisher struct {
	URL   string
	Queue string
}

func NewActivityPublisher(url, queueName string) *ActivityPublisher {
	return &ActivityPublisher{URL: url, Queue: queueName}
}

// Publish sends ev as a persistent JSON message.  A connection is opened per
// call; layout writes are infrequent.
func (p *ActivityPublisher) Publish(ctx context.Context, ev queue.ActivityEvent) error {
	log := logger.FromContext(ctx).WithField("queue", p.Queue)
	if ev.OccurredAt.IsZero() {
		ev.OccurredAt = time.Now().UTC()
	}
	if ev.CorrelationID == "" {
		ev.CorrelationID = logger.CorrelationIDFrom(ctx)
	}
	body, err := json.Marshal(ev)
	if err != nil {
		logger.Errorf(ctx, "rabbitmq: marshal %s event failed: %v", ev.Action, err)
		return err
	}

	conn, err := amqp.Dial(p.URL)
	if err != nil {
		log.WithError(err).Warn("rabbitmq: dial failed")
		return err
	}
	defer func() { _ = conn.Close() }()

	ch, err := conn.Channel()
	if err != nil {
		log.WithError(err).Warn("rabbitmq: channel open failed")
		return err
	}
	defer func() { _ = ch.Close() }()

	// Durable so messages survive broker restarts.
	if _, err := ch.QueueDeclare(p.Queue, true, false, false, false, nil); err != nil {
		log.WithError(err).Warn("rabbitmq: queue declare failed")
		return err
	}

	pub := amqp.Publishing{
		ContentType:   "application/json",
		DeliveryMode:  amqp.Persistent,
		Timestamp:     ev.OccurredAt,
		CorrelationId: ev.CorrelationID,
		Body:          body,
	}
	if err := ch.PublishWithContext(ctx, "", p.Queue, false, false, pub); err != nil {
		log.WithError(err).Warn("rabbitmq: publish failed")
		return err
	}
	return nil
}
