package catalog

import (
	"context"
	"sync/atomic"

	"github.com/go-faster/errors"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.opentelemetry.io/otel/trace/noop"
)

// AllCategories selects every category in Products.
const AllCategories = ""

// snapshot is an indexed, immutable catalog.
type snapshot struct {
	catalog    *Catalog
	products   map[string]int
	categories map[string]int
}

func newSnapshot(c *Catalog) *snapshot {
	s := &snapshot{
		catalog:    c,
		products:   make(map[string]int, len(c.Products)),
		categories: make(map[string]int, len(c.Categories)),
	}
	for i, p := range c.Products {
		s.products[p.ID] = i
	}
	for i, cat := range c.Categories {
		s.categories[cat.ID] = i
	}
	return s
}

// Store holds the loaded catalog. It is empty until Load succeeds and is
// read-only afterwards; a failed reload leaves the previous catalog intact.
type Store struct {
	current atomic.Pointer[snapshot]
	tracer  trace.Tracer
}

// StoreOption configures a Store.
type StoreOption func(*Store)

// WithTracerProvider sets the provider used to trace catalog loads.
func WithTracerProvider(tp trace.TracerProvider) StoreOption {
	return func(s *Store) {
		s.tracer = tp.Tracer("github.com/xenking/menukart/internal/domain/catalog")
	}
}

// NewStore returns an empty Store.
func NewStore(opts ...StoreOption) *Store {
	s := &Store{tracer: noop.NewTracerProvider().Tracer("")}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Load fetches a catalog from src and replaces the current one.
func (s *Store) Load(ctx context.Context, src Source) error {
	ctx, span := s.tracer.Start(ctx, "catalog.Load")
	defer span.End()

	c, err := src.Load(ctx)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "load failed")
		return err
	}
	if err := Validate(c); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "invalid catalog")
		return err
	}

	span.SetAttributes(
		attribute.Int("catalog.categories", len(c.Categories)),
		attribute.Int("catalog.products", len(c.Products)),
	)
	s.current.Store(newSnapshot(c))
	return nil
}

// Loaded reports whether a catalog has been loaded.
func (s *Store) Loaded() bool {
	return s.current.Load() != nil
}

func (s *Store) snapshot() (*snapshot, error) {
	snap := s.current.Load()
	if snap == nil {
		return nil, ErrNotLoaded
	}
	return snap, nil
}

// Categories returns all categories in document order.
func (s *Store) Categories() ([]Category, error) {
	snap, err := s.snapshot()
	if err != nil {
		return nil, err
	}
	out := make([]Category, len(snap.catalog.Categories))
	copy(out, snap.catalog.Categories)
	return out, nil
}

// Category returns a single category by id.
func (s *Store) Category(id string) (Category, error) {
	snap, err := s.snapshot()
	if err != nil {
		return Category{}, err
	}
	i, ok := snap.categories[id]
	if !ok {
		return Category{}, errors.Wrapf(ErrNotFound, "category %q", id)
	}
	return snap.catalog.Categories[i], nil
}

// Product returns a single product by id, available or not.
func (s *Store) Product(id string) (Product, error) {
	snap, err := s.snapshot()
	if err != nil {
		return Product{}, err
	}
	i, ok := snap.products[id]
	if !ok {
		return Product{}, errors.Wrapf(ErrNotFound, "product %q", id)
	}
	return snap.catalog.Products[i], nil
}

// Products returns the available products of a category in document order.
// AllCategories returns available products across every category.
func (s *Store) Products(categoryID string) ([]Product, error) {
	snap, err := s.snapshot()
	if err != nil {
		return nil, err
	}
	var out []Product
	for _, p := range snap.catalog.Products {
		if !p.Available {
			continue
		}
		if categoryID != AllCategories && p.Category != categoryID {
			continue
		}
		out = append(out, p)
	}
	return out, nil
}
