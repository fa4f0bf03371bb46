// Package shop is the application shell that owns the catalog, the option
// session and the cart ledger for one customer.
package shop

import (
	"context"
	"sync"

	"github.com/go-faster/errors"
	"github.com/go-faster/sdk/zctx"
	"github.com/shopspring/decimal"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/metric/noop"
	"go.uber.org/zap"

	"github.com/xenking/menukart/internal/domain/cart"
	"github.com/xenking/menukart/internal/domain/catalog"
	"github.com/xenking/menukart/internal/domain/order"
	"github.com/xenking/menukart/internal/domain/pricing"
	"github.com/xenking/menukart/internal/domain/session"
)

// AllCategories selects every category.
const AllCategories = "all"

// ErrUnavailable is returned when adding a product marked unavailable.
var ErrUnavailable = errors.New("product unavailable")

// Listing is a product as shown in the menu.
type Listing struct {
	Product catalog.Product
	Price   pricing.Display
}

// AddResult is the outcome of Add: either an item went straight to the cart
// or a configuration session was opened.
type AddResult struct {
	Item    *cart.LineItem
	Session *session.View
}

// CartView is a snapshot of the ledger with its derived totals.
type CartView struct {
	Items     []cart.LineItem
	Total     decimal.Decimal
	ItemCount int
	Entries   int
}

// Option configures a Service.
type Option func(*Service)

// WithMeterProvider sets the meter provider for cart metrics.
func WithMeterProvider(mp metric.MeterProvider) Option {
	return func(s *Service) {
		s.meterProvider = mp
	}
}

// WithClearOnCheckout empties the cart after a successful checkout.
func WithClearOnCheckout(clear bool) Option {
	return func(s *Service) {
		s.clearOnCheckout = clear
	}
}

// Service serializes every operation on the owned state. It owns exactly one
// cart and one selection session, shared by every caller.
type Service struct {
	mu       sync.Mutex
	store    *catalog.Store
	orders   *order.Service
	ledger   cart.Ledger
	session  session.Session
	category string

	clearOnCheckout bool
	meterProvider   metric.MeterProvider
	metrics         metrics
}

type metrics struct {
	mutations   metric.Int64Counter
	confirms    metric.Int64Counter
	validations metric.Int64Counter
	checkouts   metric.Int64Counter
}

// New creates a Service.
func New(store *catalog.Store, orders *order.Service, opts ...Option) (*Service, error) {
	s := &Service{
		store:         store,
		orders:        orders,
		category:      AllCategories,
		meterProvider: noop.NewMeterProvider(),
	}
	for _, opt := range opts {
		opt(s)
	}

	meter := s.meterProvider.Meter("github.com/xenking/menukart/internal/shop")
	var err error
	if s.metrics.mutations, err = meter.Int64Counter("menukart.cart.mutations",
		metric.WithDescription("Cart ledger mutations by operation"),
	); err != nil {
		return nil, errors.Wrap(err, "create mutations counter")
	}
	if s.metrics.confirms, err = meter.Int64Counter("menukart.session.confirmations",
		metric.WithDescription("Confirmed option sessions"),
	); err != nil {
		return nil, errors.Wrap(err, "create confirmations counter")
	}
	if s.metrics.validations, err = meter.Int64Counter("menukart.session.validation_failures",
		metric.WithDescription("Rejected option selections"),
	); err != nil {
		return nil, errors.Wrap(err, "create validation counter")
	}
	if s.metrics.checkouts, err = meter.Int64Counter("menukart.checkouts",
		metric.WithDescription("Completed checkouts"),
	); err != nil {
		return nil, errors.Wrap(err, "create checkouts counter")
	}
	return s, nil
}

// Load replaces the catalog from src. A failed load keeps the previous one.
func (s *Service) Load(ctx context.Context, src catalog.Source) error {
	if err := s.store.Load(ctx, src); err != nil {
		return err
	}
	zctx.From(ctx).Info("Catalog loaded")
	return nil
}

// Ready reports whether a catalog has been loaded.
func (s *Service) Ready() bool {
	return s.store.Loaded()
}

// Categories returns the catalog categories in order.
func (s *Service) Categories() ([]catalog.Category, error) {
	return s.store.Categories()
}

// SelectCategory sets the active category filter. Empty id or AllCategories
// selects every category.
func (s *Service) SelectCategory(id string) error {
	if id == "" {
		id = AllCategories
	}
	if id != AllCategories {
		if _, err := s.store.Category(id); err != nil {
			return err
		}
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.category = id
	return nil
}

// ActiveCategory returns the active category filter.
func (s *Service) ActiveCategory() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.category
}

// Listing returns the available products of the active category.
func (s *Service) Listing() ([]Listing, error) {
	return s.ListingFor(s.ActiveCategory())
}

// ListingFor returns the available products of category id.
func (s *Service) ListingFor(id string) ([]Listing, error) {
	filter := id
	if filter == AllCategories {
		filter = catalog.AllCategories
	}
	products, err := s.store.Products(filter)
	if err != nil {
		return nil, err
	}
	out := make([]Listing, len(products))
	for i, p := range products {
		out[i] = Listing{Product: p, Price: pricing.DisplayPrice(p)}
	}
	return out, nil
}

// Add puts a simple product in the cart or opens a configuration session
// for any other kind, discarding an unconfirmed session.
func (s *Service) Add(ctx context.Context, productID string) (AddResult, error) {
	p, err := s.store.Product(productID)
	if err != nil {
		return AddResult{}, err
	}
	if !p.Available {
		return AddResult{}, errors.Wrapf(ErrUnavailable, "product %s", p.ID)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	lg := zctx.From(ctx).With(zap.String("product_id", p.ID))
	if !p.Configurable() {
		li := s.ledger.Upsert(p.ID, cart.Signature(p.ID, "", false), p.Name, p.BasePrice)
		s.recordMutation(ctx, "add")
		lg.Debug("Added to cart", zap.Int("quantity", li.Quantity))
		return AddResult{Item: &li}, nil
	}

	if err := s.session.Open(p); err != nil {
		return AddResult{}, err
	}
	v, _ := s.session.View()
	lg.Debug("Session opened", zap.Stringer("kind", p.Kind))
	return AddResult{Session: &v}, nil
}

// Session returns the open session, if any.
func (s *Service) Session() (session.View, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.session.View()
}

// SelectVariant chooses a variant in the open session.
func (s *Service) SelectVariant(i int) (session.View, error) {
	return s.mutateSession(func(ss *session.Session) error { return ss.SelectVariant(i) })
}

// SetAddOn checks or unchecks an add-on in the open session.
func (s *Service) SetAddOn(i int, checked bool) (session.View, error) {
	return s.mutateSession(func(ss *session.Session) error { return ss.SetAddOn(i, checked) })
}

// AdjustCounter changes a counter add-on in the open session.
func (s *Service) AdjustCounter(i, delta int) (session.View, error) {
	return s.mutateSession(func(ss *session.Session) error { return ss.Adjust(i, delta) })
}

func (s *Service) mutateSession(fn func(*session.Session) error) (session.View, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := fn(&s.session); err != nil {
		return session.View{}, err
	}
	v, _ := s.session.View()
	return v, nil
}

// Confirm prices the open session and adds the result to the cart. On a
// validation error the session stays open and the cart is unchanged.
func (s *Service) Confirm(ctx context.Context) (cart.LineItem, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	c, err := s.session.Confirm()
	if err != nil {
		var vErr *pricing.ValidationError
		if errors.As(err, &vErr) {
			s.metrics.validations.Add(ctx, 1)
			zctx.From(ctx).Debug("Selection rejected", zap.String("reason", vErr.Reason))
		}
		return cart.LineItem{}, err
	}

	res := c.Resolution
	li := s.ledger.Upsert(
		c.Product.ID,
		cart.Signature(c.Product.ID, res.Summary, res.HasSummary),
		cart.DisplayName(c.Product.Name, res.Summary, res.HasSummary),
		res.UnitPrice,
	)
	s.metrics.confirms.Add(ctx, 1, metric.WithAttributes(attribute.String("kind", c.Product.Kind.String())))
	s.recordMutation(ctx, "add")
	zctx.From(ctx).Debug("Session confirmed",
		zap.String("signature", li.Signature),
		zap.Int("quantity", li.Quantity),
	)
	return li, nil
}

// CancelSession discards the open session.
func (s *Service) CancelSession() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.session.Cancel()
}

// ChangeQuantity adds delta to a line item. The returned item has Quantity 0
// when it was removed.
func (s *Service) ChangeQuantity(ctx context.Context, signature string, delta int) (cart.LineItem, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	li, err := s.ledger.ChangeQuantity(signature, delta)
	if err != nil {
		return cart.LineItem{}, err
	}
	s.recordMutation(ctx, "change")
	return li, nil
}

// SetQuantity sets a line item from raw user input, see cart.ParseQuantity.
func (s *Service) SetQuantity(ctx context.Context, signature, raw string) (cart.LineItem, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	li, err := s.ledger.SetQuantity(signature, cart.ParseQuantity(raw))
	if err != nil {
		return cart.LineItem{}, err
	}
	s.recordMutation(ctx, "set")
	return li, nil
}

// Remove deletes a line item and reports whether it existed.
func (s *Service) Remove(ctx context.Context, signature string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.ledger.Remove(signature) {
		return false
	}
	s.recordMutation(ctx, "remove")
	return true
}

// Cart returns a snapshot of the ledger.
func (s *Service) Cart() CartView {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.cartView()
}

func (s *Service) cartView() CartView {
	return CartView{
		Items:     s.ledger.Items(),
		Total:     s.ledger.Total(),
		ItemCount: s.ledger.ItemCount(),
		Entries:   s.ledger.Len(),
	}
}

// Checkout formats the cart into an order transcript and link.
func (s *Service) Checkout(ctx context.Context) (*order.Checkout, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	c, err := s.orders.Checkout(ctx, s.ledger.Items())
	if err != nil {
		return nil, err
	}
	s.metrics.checkouts.Add(ctx, 1)
	zctx.From(ctx).Info("Checkout",
		zap.Int("items", c.Transcript.Items),
		zap.String("total", c.Transcript.Total.String()),
	)
	if s.clearOnCheckout {
		s.ledger.Clear()
		s.recordMutation(ctx, "clear")
	}
	return c, nil
}

func (s *Service) recordMutation(ctx context.Context, op string) {
	s.metrics.mutations.Add(ctx, 1, metric.WithAttributes(attribute.String("op", op)))
}
