package order

import (
	"context"

	"github.com/go-faster/sdk/zctx"
	"go.uber.org/zap"

	"github.com/xenking/menukart/internal/domain/cart"
)

// Checkout is a completed handoff.
type Checkout struct {
	Destination string
	Link        string
	Transcript  Transcript
}

// Sink receives completed checkouts, e.g. to relay them to a queue.
type Sink interface {
	Deliver(ctx context.Context, c Checkout) error
}

// Service formats carts and hands them to the messaging channel.
type Service struct {
	formatter   Formatter
	baseURL     string
	destination string
	sinks       []Sink
}

// NewService creates an order Service.
func NewService(f Formatter, baseURL, destination string, sinks ...Sink) *Service {
	return &Service{
		formatter:   f,
		baseURL:     baseURL,
		destination: destination,
		sinks:       sinks,
	}
}

// Checkout builds the transcript and link for items and notifies sinks.
// A failing sink is logged and does not fail the checkout.
func (s *Service) Checkout(ctx context.Context, items []cart.LineItem) (*Checkout, error) {
	t, err := s.formatter.Format(items)
	if err != nil {
		return nil, err
	}
	link, err := BuildLink(s.baseURL, s.destination, t)
	if err != nil {
		return nil, err
	}

	c := Checkout{Destination: s.destination, Link: link, Transcript: t}
	for _, sink := range s.sinks {
		if err := sink.Deliver(ctx, c); err != nil {
			zctx.From(ctx).Warn("Checkout sink failed", zap.Error(err))
		}
	}
	return &c, nil
}
