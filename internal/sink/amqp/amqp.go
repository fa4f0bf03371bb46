// Package amqp relays completed checkouts to a RabbitMQ queue.
package amqp

import (
	"context"
	"time"

	"github.com/go-faster/errors"
	"github.com/go-faster/jx"
	"github.com/google/uuid"
	amqp "github.com/rabbitmq/amqp091-go"

	"github.com/xenking/menukart/internal/domain/order"
)

var _ order.Sink = (*Sink)(nil)

// Publisher is the subset of *amqp.Channel used by Sink.
type Publisher interface {
	PublishWithContext(ctx context.Context, exchange, key string, mandatory, immediate bool, msg amqp.Publishing) error
}

// Sink publishes each checkout as a persistent JSON message to a queue on
// the default exchange.
type Sink struct {
	pub   Publisher
	queue string
	now   func() time.Time
	close func() error
}

// New creates a Sink over an existing publisher.
func New(pub Publisher, queue string) *Sink {
	return &Sink{pub: pub, queue: queue, now: time.Now, close: func() error { return nil }}
}

// Dial connects to the broker at url and declares a durable queue.
func Dial(url, queue string) (*Sink, error) {
	conn, err := amqp.Dial(url)
	if err != nil {
		return nil, errors.Wrap(err, "dial broker")
	}
	ch, err := conn.Channel()
	if err != nil {
		_ = conn.Close()
		return nil, errors.Wrap(err, "open channel")
	}
	if _, err := ch.QueueDeclare(
		queue,
		true,  // durable
		false, // delete when unused
		false, // exclusive
		false, // no-wait
		nil,
	); err != nil {
		_ = conn.Close()
		return nil, errors.Wrapf(err, "declare queue %q", queue)
	}

	s := New(ch, queue)
	s.close = func() error {
		if err := ch.Close(); err != nil {
			_ = conn.Close()
			return err
		}
		return conn.Close()
	}
	return s, nil
}

// Close releases the broker connection when the Sink owns it.
func (s *Sink) Close() error {
	return s.close()
}

// Deliver publishes c.
func (s *Sink) Deliver(ctx context.Context, c order.Checkout) error {
	id := uuid.New().String()
	now := s.now()

	msg := amqp.Publishing{
		ContentType:  "application/json",
		DeliveryMode: amqp.Persistent,
		MessageId:    id,
		Timestamp:    now,
		Type:         "menukart.checkout",
		Body:         EncodeCheckout(id, now, c),
	}
	if err := s.pub.PublishWithContext(ctx, "", s.queue, false, false, msg); err != nil {
		return errors.Wrapf(err, "publish checkout %s", id)
	}
	return nil
}

// EncodeCheckout renders the message body.
func EncodeCheckout(id string, at time.Time, c order.Checkout) []byte {
	var e jx.Encoder
	e.Obj(func(e *jx.Encoder) {
		e.Field("id", func(e *jx.Encoder) { e.Str(id) })
		e.Field("createdAt", func(e *jx.Encoder) { e.Str(at.UTC().Format(time.RFC3339)) })
		e.Field("destination", func(e *jx.Encoder) { e.Str(c.Destination) })
		e.Field("link", func(e *jx.Encoder) { e.Str(c.Link) })
		e.Field("items", func(e *jx.Encoder) { e.Int(c.Transcript.Items) })
		e.Field("total", func(e *jx.Encoder) { e.RawStr(c.Transcript.Total.String()) })
		e.Field("text", func(e *jx.Encoder) { e.Str(c.Transcript.Text) })
	})
	return e.Bytes()
}
