package queue

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/sirupsen/logrus"

	"github.com/iliyamo/event-ticketing/internal/logger"
	"github.com/iliyamo/event-ticketing/internal/model"
)

// ActivitySink persists activity entries.  *repository.ActivityRepo
// satisfies it.
type ActivitySink interface {
	Insert(ctx context.Context, a *model.ActivityLog) error
}

// Consumer drains the activity queue into an ActivitySink.
type Consumer struct {
	url   string
	queue string
	sink  ActivitySink
	log   *logrus.Entry
}

func NewConsumer(url, queueName string, sink ActivitySink) *Consumer {
	return &Consumer{
		url:   url,
		queue: queueName,
		sink:  sink,
		log:   logger.L().WithField("component", "activity-consumer"),
	}
}

// Run connects to RabbitMQ, declares the queue (durable) and consumes until
// ctx is cancelled.  Broker failures are retried with exponential backoff;
// a message that cannot be handled is rejected without requeue so the loop
// keeps running.
func (c *Consumer) Run(ctx context.Context) error {
	backoff := time.Second
	for {
		conn, err := amqp.Dial(c.url)
		if err != nil {
			c.log.WithError(err).Warnf("failed to dial broker; retrying in %s", backoff)
			if !sleep(ctx, backoff) {
				return ctx.Err()
			}
			if backoff < 30*time.Second {
				backoff *= 2
			}
			continue
		}
		backoff = time.Second // reset after successful connect

		err = c.consumeLoop(ctx, conn)
		_ = conn.Close()
		if ctx.Err() != nil {
			return ctx.Err()
		}
		c.log.WithError(err).Warn("consume loop ended; reconnecting")
		if !sleep(ctx, 2*time.Second) {
			return ctx.Err()
		}
	}
}

func (c *Consumer) consumeLoop(ctx context.Context, conn *amqp.Connection) error {
	ch, err := conn.Channel()
	if err != nil {
		return fmt.Errorf("channel open: %w", err)
	}
	defer func() { _ = ch.Close() }()

	if err := ch.Qos(50, 0, false); err != nil {
		c.log.WithError(err).Warn("set QoS failed")
	}
	if _, err := ch.QueueDeclare(c.queue, true, false, false, false, nil); err != nil {
		return fmt.Errorf("queue declare: %w", err)
	}
	msgs, err := ch.Consume(c.queue, "", false, false, false, false, nil)
	if err != nil {
		return fmt.Errorf("queue consume: %w", err)
	}

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case d, ok := <-msgs:
			if !ok {
				return errors.New("deliveries channel closed")
			}
			if err := c.Handle(ctx, d.Body); err != nil {
				c.log.WithError(err).Error("handle message failed")
				_ = d.Nack(false, false) // reject, do not requeue to avoid tight loops
				continue
			}
			_ = d.Ack(false)
		}
	}
}

// Handle decodes one message and stores it as an activity entry.
func (c *Consumer) Handle(ctx context.Context, body []byte) error {
	var ev ActivityEvent
	if err := json.Unmarshal(body, &ev); err != nil {
		return fmt.Errorf("unmarshal: %w", err)
	}
	if ev.Action == "" || ev.EventID == 0 {
		return errors.New("message without action or event id")
	}
	ctx = logger.WithCorrelationID(ctx, ev.CorrelationID)

	entry := &model.ActivityLog{
		EventID: &ev.EventID,
		Action:  ev.Action,
		Details: json.RawMessage(body),
	}
	if ev.UserID != 0 {
		entry.UserID = &ev.UserID
	}
	if err := c.sink.Insert(ctx, entry); err != nil {
		return fmt.Errorf("insert activity: %w", err)
	}
	logger.FromContext(ctx).WithFields(logrus.Fields{"event_id": ev.EventID, "action": ev.Action}).Debug("activity stored")
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
