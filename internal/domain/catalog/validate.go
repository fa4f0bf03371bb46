package catalog

import (
	"github.com/go-faster/errors"
	"github.com/shopspring/decimal"
)

// Validate checks the invariants pricing relies on: unique non-empty ids,
// named products, and prices that are non-negative whole amounts.
// Violations are reported as *FormatError.
func Validate(c *Catalog) error {
	if err := validate(c); err != nil {
		return &FormatError{Err: err}
	}
	return nil
}

func validate(c *Catalog) error {
	categories := make(map[string]struct{}, len(c.Categories))
	for i, cat := range c.Categories {
		if cat.ID == "" {
			return errors.Errorf("categories[%d]: empty id", i)
		}
		if _, dup := categories[cat.ID]; dup {
			return errors.Errorf("categories[%d]: duplicate id %q", i, cat.ID)
		}
		categories[cat.ID] = struct{}{}
	}

	products := make(map[string]struct{}, len(c.Products))
	for i, p := range c.Products {
		if p.ID == "" {
			return errors.Errorf("products[%d]: empty id", i)
		}
		if _, dup := products[p.ID]; dup {
			return errors.Errorf("products[%d]: duplicate id %q", i, p.ID)
		}
		products[p.ID] = struct{}{}

		if p.Name == "" {
			return errors.Errorf("product %q: empty name", p.ID)
		}
		if err := validateAmount(p.BasePrice); err != nil {
			return errors.Wrapf(err, "product %q: price", p.ID)
		}
		for j, v := range p.Variants {
			if err := validateOption(v); err != nil {
				return errors.Wrapf(err, "product %q: variants[%d]", p.ID, j)
			}
		}
		for j, a := range p.AddOns {
			if err := validateOption(a); err != nil {
				return errors.Wrapf(err, "product %q: addOns[%d]", p.ID, j)
			}
		}
	}
	return nil
}

func validateOption(o Option) error {
	if o.Name == "" {
		return errors.New("empty name")
	}
	return validateAmount(o.Price)
}

func validateAmount(v decimal.Decimal) error {
	if v.IsNegative() {
		return errors.Errorf("negative amount %s", v)
	}
	if !v.Equal(v.Truncate(0)) {
		return errors.Errorf("fractional amount %s", v)
	}
	return nil
}
