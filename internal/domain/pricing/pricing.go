// Package pricing derives listing prices and resolved unit prices for
// catalog products.
package pricing

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/go-faster/errors"
	"github.com/shopspring/decimal"

	"github.com/xenking/menukart/internal/domain/catalog"
)

// Validation failure reasons.
const (
	ReasonNoVariant  = "no variant selected"
	ReasonNoQuantity = "no quantity selected"
)

// perUnitToken marks counter products priced per unit rather than per pack.
const perUnitToken = "unidad"

// ValidationError reports a selection that cannot be priced. The caller may
// correct the selection and retry.
type ValidationError struct {
	Reason string
}

func (e *ValidationError) Error() string {
	return e.Reason
}

// Selection is the user's choice of options for one product.
// Only the field matching the product's kind and control is consulted.
type Selection struct {
	// Variant is the chosen variant index, or -1 for none.
	Variant int
	// Checked holds selected add-on indices (checkbox control).
	Checked map[int]bool
	// Counts holds per add-on counts (counter control).
	Counts map[int]int
}

// NoSelection returns an empty selection with no variant chosen.
func NoSelection() Selection {
	return Selection{Variant: -1}
}

// Resolution is the priced outcome of a configuration.
type Resolution struct {
	UnitPrice decimal.Decimal
	// Summary is the human-readable option suffix; valid only when HasSummary.
	Summary    string
	HasSummary bool
}

// Display is the price shown in a catalog listing.
type Display struct {
	Amount decimal.Decimal
	// From marks a "starting at" price derived from the cheapest variant.
	From bool
}

// DisplayPrice returns the listing price of p. Variant products with no base
// price show the cheapest priced variant; zero-priced variants are ignored.
func DisplayPrice(p catalog.Product) Display {
	if p.Kind != catalog.KindVariant || p.BasePrice.IsPositive() {
		return Display{Amount: p.BasePrice}
	}

	var (
		lowest decimal.Decimal
		found  bool
	)
	for _, v := range p.Variants {
		if !v.Price.IsPositive() {
			continue
		}
		if !found || v.Price.LessThan(lowest) {
			lowest = v.Price
			found = true
		}
	}
	if !found {
		return Display{Amount: decimal.Zero}
	}
	return Display{Amount: lowest, From: true}
}

// Resolve prices a product under sel. It returns *ValidationError when a
// required choice is missing or refers to an option that does not exist.
func Resolve(p catalog.Product, sel Selection) (Resolution, error) {
	switch p.Kind {
	case catalog.KindSimple:
		return Resolution{UnitPrice: p.BasePrice}, nil
	case catalog.KindVariant:
		return resolveVariant(p, sel)
	case catalog.KindAddOns:
		if p.Control == catalog.ControlCounter {
			return resolveCounter(p, sel)
		}
		return resolveCheckbox(p, sel)
	default:
		return Resolution{}, errors.Errorf("unsupported product kind %s", p.Kind)
	}
}

// resolveVariant replaces the base price with the variant's own price when
// it has one.
func resolveVariant(p catalog.Product, sel Selection) (Resolution, error) {
	i := sel.Variant
	if i < 0 || i >= len(p.Variants) {
		return Resolution{}, &ValidationError{Reason: ReasonNoVariant}
	}
	v := p.Variants[i]

	price := p.BasePrice
	if v.Price.IsPositive() {
		price = v.Price
	}
	return Resolution{UnitPrice: price, Summary: v.Name, HasSummary: true}, nil
}

func resolveCheckbox(p catalog.Product, sel Selection) (Resolution, error) {
	for i, checked := range sel.Checked {
		if checked && (i < 0 || i >= len(p.AddOns)) {
			return Resolution{}, &ValidationError{Reason: fmt.Sprintf("unknown add-on %d", i)}
		}
	}

	price := p.BasePrice
	var names []string
	for i, a := range p.AddOns {
		if !sel.Checked[i] {
			continue
		}
		names = append(names, a.Name)
		price = price.Add(a.Price)
	}
	if len(names) == 0 {
		return Resolution{UnitPrice: price}, nil
	}
	return Resolution{UnitPrice: price, Summary: strings.Join(names, ", "), HasSummary: true}, nil
}

// resolveCounter summarizes per-flavor counts. Counts only affect the price
// of products whose name carries the per-unit token; other counter products
// are sold as a pack at the base price.
func resolveCounter(p catalog.Product, sel Selection) (Resolution, error) {
	for i, n := range sel.Counts {
		if n < 0 || (n > 0 && (i < 0 || i >= len(p.AddOns))) {
			return Resolution{}, &ValidationError{Reason: fmt.Sprintf("invalid count for add-on %d", i)}
		}
	}

	var (
		parts []string
		units int64
	)
	for i, a := range p.AddOns {
		n := sel.Counts[i]
		if n <= 0 {
			continue
		}
		parts = append(parts, a.Name+" x"+strconv.Itoa(n))
		units += int64(n)
	}
	if units == 0 {
		return Resolution{}, &ValidationError{Reason: ReasonNoQuantity}
	}

	price := p.BasePrice
	if PricedPerUnit(p) {
		price = price.Mul(decimal.NewFromInt(units))
	}
	return Resolution{UnitPrice: price, Summary: strings.Join(parts, ", "), HasSummary: true}, nil
}

// PricedPerUnit reports whether counter selections multiply the base price.
func PricedPerUnit(p catalog.Product) bool {
	return strings.Contains(strings.ToLower(p.Name), perUnitToken)
}
