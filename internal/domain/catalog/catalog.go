// Package catalog holds the menu's categories and products.
//
// A Catalog is immutable once loaded: every product is validated at load
// time so pricing code never has to re-check coercions at use sites.
package catalog

import (
	"context"
	"fmt"

	"github.com/go-faster/errors"
	"github.com/shopspring/decimal"
)

var (
	// ErrNotFound is returned when a requested product or category does not exist.
	ErrNotFound = errors.New("not found")
	// ErrNotLoaded is returned by lookups performed before a catalog is loaded.
	ErrNotLoaded = errors.New("catalog not loaded")
)

// Kind tags how a product is configured before it reaches the cart.
type Kind int

const (
	// KindSimple products have a fixed price and skip configuration.
	KindSimple Kind = iota
	// KindVariant products require exactly one mutually exclusive option.
	KindVariant
	// KindAddOns products accept optional extras (checkbox or counter).
	KindAddOns
)

func (k Kind) String() string {
	switch k {
	case KindSimple:
		return "simple"
	case KindVariant:
		return "variant"
	case KindAddOns:
		return "addons"
	default:
		return fmt.Sprintf("Kind(%d)", int(k))
	}
}

// ParseKind maps a document value to a Kind. An empty value means simple.
func ParseKind(s string) (Kind, error) {
	switch s {
	case "", "simple":
		return KindSimple, nil
	case "variant":
		return KindVariant, nil
	case "addons":
		return KindAddOns, nil
	default:
		return 0, errors.Errorf("unknown product kind %q", s)
	}
}

// Control selects the input used for add-ons.
type Control int

const (
	// ControlCheckbox toggles each add-on on or off.
	ControlCheckbox Control = iota
	// ControlCounter assigns a non-negative count to each add-on.
	ControlCounter
)

func (c Control) String() string {
	switch c {
	case ControlCheckbox:
		return "checkbox"
	case ControlCounter:
		return "counter"
	default:
		return fmt.Sprintf("Control(%d)", int(c))
	}
}

// ParseControl maps a document value to a Control. An empty value means checkbox.
func ParseControl(s string) (Control, error) {
	switch s {
	case "", "checkbox":
		return ControlCheckbox, nil
	case "counter":
		return ControlCounter, nil
	default:
		return 0, errors.Errorf("unknown add-on control %q", s)
	}
}

// Option is a named, priced choice: a variant or an add-on.
// A zero Price means the option carries no price of its own.
type Option struct {
	Name  string
	Price decimal.Decimal
}

// Product is an immutable catalog entry.
type Product struct {
	ID          string
	Name        string
	Description string
	Image       string
	Category    string
	BasePrice   decimal.Decimal
	Kind        Kind
	Variants    []Option
	AddOns      []Option
	Control     Control
	Available   bool
}

// Configurable reports whether adding the product requires an option session.
func (p Product) Configurable() bool {
	return p.Kind != KindSimple
}

// Category groups products for filtering.
type Category struct {
	ID   string
	Name string
	Icon string
}

// Catalog is the loaded menu document.
type Catalog struct {
	Categories []Category
	Products   []Product
}

// Source retrieves a catalog. Implementations return *LoadError when the
// source is unreachable and *FormatError when the document is malformed.
type Source interface {
	Load(ctx context.Context) (*Catalog, error)
}

// LoadError indicates the catalog source could not be read.
type LoadError struct {
	Source string
	// Status is the upstream status code when the source reported one.
	Status int
	Err    error
}

func (e *LoadError) Error() string {
	if e.Status != 0 {
		return fmt.Sprintf("load catalog from %s: status %d", e.Source, e.Status)
	}
	return fmt.Sprintf("load catalog from %s: %v", e.Source, e.Err)
}

func (e *LoadError) Unwrap() error { return e.Err }

// FormatError indicates the catalog document does not have the expected shape.
type FormatError struct {
	Err error
}

func (e *FormatError) Error() string {
	return fmt.Sprintf("malformed catalog: %v", e.Err)
}

func (e *FormatError) Unwrap() error { return e.Err }
