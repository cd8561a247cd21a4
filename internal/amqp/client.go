// Package amqp publishes and consumes the application's domain events.
// Every method is nil-safe so the broker stays optional: with no
// AMQP_URL configured the rest of the program runs unchanged.
package amqp

import (
	"context"
	"errors"
	"fmt"
	"net"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"

	"bitacora/internal/log"
)

const (
	TypeBatchIngested = "batch.ingested"
	TypeRecordEdited  = "record.edited"
)

type Client struct {
	conn     *amqp.Connection
	channel  *amqp.Channel
	exchange string
	queue    string
	logger   *log.Logger
}

// New dials the broker and declares the exchange plus the audit queue.
// A nil *Client is returned together with the error so callers can keep
// the nil and carry on without eventing.
func New(url, exchange, queue string, logger *log.Logger) (*Client, error) {
	conn, err := amqp.Dial(url)
	if err != nil {
		return nil, fmt.Errorf("dial amqp: %w", err)
	}

	channel, err := conn.Channel()
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("open channel: %w", err)
	}

	if err := channel.ExchangeDeclare(exchange, "topic", true, false, false, false, nil); err != nil {
		channel.Close()
		conn.Close()
		return nil, fmt.Errorf("declare exchange: %w", err)
	}

	q, err := channel.QueueDeclare(queue, true, false, false, false, nil)
	if err != nil {
		channel.Close()
		conn.Close()
		return nil, fmt.Errorf("declare queue: %w", err)
	}

	for _, key := range []string{TypeBatchIngested, TypeRecordEdited} {
		if err := channel.QueueBind(q.Name, key, exchange, false, nil); err != nil {
			channel.Close()
			conn.Close()
			return nil, fmt.Errorf("bind queue: %w", err)
		}
	}

	return &Client{
		conn:     conn,
		channel:  channel,
		exchange: exchange,
		queue:    q.Name,
		logger:   logger,
	}, nil
}

// PublishBatchIngested emits a batch.ingested event. No-op on a nil client.
func (c *Client) PublishBatchIngested(ctx context.Context, batchID, source string, count int) error {
	if c == nil {
		return nil
	}
	msg := BatchIngestedMessage{
		BatchID:   batchID,
		Source:    source,
		Count:     count,
		Timestamp: time.Now().UTC(),
	}
	body, err := msg.ToJSON()
	if err != nil {
		return fmt.Errorf("encode batch message: %w", err)
	}
	return c.publish(ctx, TypeBatchIngested, body)
}

// PublishRecordEdited emits a record.edited event. No-op on a nil client.
func (c *Client) PublishRecordEdited(ctx context.Context, index int) error {
	if c == nil {
		return nil
	}
	msg := RecordEditedMessage{Index: index, Timestamp: time.Now().UTC()}
	body, err := msg.ToJSON()
	if err != nil {
		return fmt.Errorf("encode edit message: %w", err)
	}
	return c.publish(ctx, TypeRecordEdited, body)
}

func (c *Client) publish(ctx context.Context, routingKey string, body []byte) error {
	err := c.channel.PublishWithContext(ctx, c.exchange, routingKey, false, false, amqp.Publishing{
		ContentType:  "application/json",
		Type:         routingKey,
		Body:         body,
		DeliveryMode: amqp.Persistent,
		Timestamp:    time.Now(),
	})
	if err != nil {
		return fmt.Errorf("publish %s: %w", routingKey, err)
	}
	if c.logger != nil {
		c.logger.Debug("event published", log.FieldEventType, routingKey)
	}
	return nil
}

// ConsumeMessages delivers queued events to the matching handler until
// the context is cancelled. Handler errors Nack with requeue.
func (c *Client) ConsumeMessages(ctx context.Context, onBatch func(BatchIngestedMessage) error, onEdit func(RecordEditedMessage) error) error {
	if c == nil {
		return errors.New("amqp client not configured")
	}

	deliveries, err := c.channel.Consume(c.queue, "", false, false, false, false, nil)
	if err != nil {
		return fmt.Errorf("start consumer: %w", err)
	}

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case d, ok := <-deliveries:
			if !ok {
				return errors.New("delivery channel closed")
			}
			if err := c.dispatch(d, onBatch, onEdit); err != nil {
				if c.logger != nil {
					c.logger.Error("message handling failed", log.FieldError, err.Error(), log.FieldEventType, d.Type)
				}
				d.Nack(false, true)
				continue
			}
			d.Ack(false)
		}
	}
}

func (c *Client) dispatch(d amqp.Delivery, onBatch func(BatchIngestedMessage) error, onEdit func(RecordEditedMessage) error) error {
	switch d.Type {
	case TypeBatchIngested:
		msg, err := BatchIngestedFromJSON(d.Body)
		if err != nil {
			return fmt.Errorf("decode batch message: %w", err)
		}
		return onBatch(msg)
	case TypeRecordEdited:
		msg, err := RecordEditedFromJSON(d.Body)
		if err != nil {
			return fmt.Errorf("decode edit message: %w", err)
		}
		return onEdit(msg)
	default:
		return fmt.Errorf("unknown message type %q", d.Type)
	}
}

func (c *Client) Close() error {
	if c == nil {
		return nil
	}
	var errs []error
	if c.channel != nil {
		if err := c.channel.Close(); err != nil {
			errs = append(errs, err)
		}
	}
	if c.conn != nil {
		if err := c.conn.Close(); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

func isConnectionError(err error) bool {
	if err == nil {
		return false
	}
	var amqpErr *amqp.Error
	if errors.As(err, &amqpErr) {
		return amqpErr.Code == amqp.ChannelError || amqpErr.Code == amqp.ConnectionForced
	}
	var netErr net.Error
	return errors.As(err, &netErr)
}

func exponentialBackoff(attempt int, base, max time.Duration) time.Duration {
	d := base
	for i := 0; i < attempt; i++ {
		d *= 2
		if d >= max {
			return max
		}
	}
	return d
}
