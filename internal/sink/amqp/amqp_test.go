package amqp

import (
	"context"
	"testing"
	"time"

	"github.com/go-faster/errors"
	"github.com/go-faster/jx"
	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/xenking/menukart/internal/domain/order"
)

// --- Mock implementations ---

type mockPublisher struct {
	exchange string
	key      string
	msgs     []amqp.Publishing
	err      error
}

func (m *mockPublisher) PublishWithContext(_ context.Context, exchange, key string, _, _ bool, msg amqp.Publishing) error {
	m.exchange = exchange
	m.key = key
	m.msgs = append(m.msgs, msg)
	return m.err
}

// --- Tests ---

func testCheckout() order.Checkout {
	return order.Checkout{
		Destination: "5491122512344",
		Link:        "https://wa.me/5491122512344?text=hola",
		Transcript: order.Transcript{
			Text:  "¡Hola!\n1. Muzzarella",
			Total: decimal.NewFromInt(8500),
			Items: 1,
		},
	}
}

func TestSink_Deliver(t *testing.T) {
	pub := &mockPublisher{}
	s := New(pub, "orders")
	s.now = func() time.Time { return time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC) }

	require.NoError(t, s.Deliver(context.Background(), testCheckout()))
	require.Len(t, pub.msgs, 1)
	assert.Equal(t, "", pub.exchange)
	assert.Equal(t, "orders", pub.key)

	msg := pub.msgs[0]
	assert.Equal(t, "application/json", msg.ContentType)
	assert.Equal(t, amqp.Persistent, msg.DeliveryMode)
	assert.NotEmpty(t, msg.MessageId)

	var (
		fields = map[string]string{}
		items  int
		total  string
	)
	d := jx.DecodeBytes(msg.Body)
	require.NoError(t, d.Obj(func(d *jx.Decoder, key string) error {
		switch key {
		case "items":
			v, err := d.Int()
			items = v
			return err
		case "total":
			v, err := d.Num()
			total = v.String()
			return err
		default:
			v, err := d.Str()
			fields[key] = v
			return err
		}
	}))
	assert.Equal(t, msg.MessageId, fields["id"])
	assert.Equal(t, "2026-03-01T12:00:00Z", fields["createdAt"])
	assert.Equal(t, "5491122512344", fields["destination"])
	assert.Equal(t, "https://wa.me/5491122512344?text=hola", fields["link"])
	assert.Equal(t, "¡Hola!\n1. Muzzarella", fields["text"])
	assert.Equal(t, 1, items)
	assert.Equal(t, "8500", total)
}

func TestSink_DeliverError(t *testing.T) {
	pub := &mockPublisher{err: errors.New("channel closed")}
	err := New(pub, "orders").Deliver(context.Background(), testCheckout())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "channel closed")
}
