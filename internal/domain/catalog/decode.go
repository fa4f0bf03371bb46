package catalog

import (
	"github.com/go-faster/errors"
	"github.com/go-faster/jx"
	"github.com/shopspring/decimal"
)

// Decode parses and validates a catalog document:
//
//	{"categories": [{id, name, icon}],
//	 "products": [{id, name, description, image, price, kind, available,
//	               category, variants?, addOns?, addOnControl?}]}
//
// Any deviation from that shape is reported as *FormatError.
func Decode(data []byte) (*Catalog, error) {
	c, err := decodeDocument(jx.DecodeBytes(data))
	if err != nil {
		return nil, &FormatError{Err: err}
	}
	if err := Validate(c); err != nil {
		return nil, err
	}
	return c, nil
}

func decodeDocument(d *jx.Decoder) (*Catalog, error) {
	if d.Next() != jx.Object {
		return nil, errors.New("document must be an object")
	}

	var (
		c             Catalog
		hasCategories bool
		hasProducts   bool
	)
	err := d.Obj(func(d *jx.Decoder, key string) error {
		switch key {
		case "categories":
			hasCategories = true
			return decodeArray(d, key, func(d *jx.Decoder) error {
				cat, err := decodeCategory(d)
				if err != nil {
					return errors.Wrapf(err, "categories[%d]", len(c.Categories))
				}
				c.Categories = append(c.Categories, cat)
				return nil
			})
		case "products":
			hasProducts = true
			return decodeArray(d, key, func(d *jx.Decoder) error {
				p, err := decodeProduct(d)
				if err != nil {
					return errors.Wrapf(err, "products[%d]", len(c.Products))
				}
				c.Products = append(c.Products, p)
				return nil
			})
		default:
			return d.Skip()
		}
	})
	if err != nil {
		return nil, err
	}

	if !hasCategories {
		return nil, errors.New(`missing "categories"`)
	}
	if !hasProducts {
		return nil, errors.New(`missing "products"`)
	}
	return &c, nil
}

func decodeCategory(d *jx.Decoder) (Category, error) {
	var c Category
	if d.Next() != jx.Object {
		return c, errors.New("category must be an object")
	}
	err := d.Obj(func(d *jx.Decoder, key string) error {
		var err error
		switch key {
		case "id":
			c.ID, err = decodeID(d)
		case "name":
			c.Name, err = decodeString(d, key)
		case "icon":
			c.Icon, err = decodeOptString(d, key)
		default:
			err = d.Skip()
		}
		return err
	})
	return c, err
}

func decodeProduct(d *jx.Decoder) (Product, error) {
	var (
		p       Product
		kind    string
		control string
	)
	if d.Next() != jx.Object {
		return p, errors.New("product must be an object")
	}
	err := d.Obj(func(d *jx.Decoder, key string) error {
		var err error
		switch key {
		case "id":
			p.ID, err = decodeID(d)
		case "name":
			p.Name, err = decodeString(d, key)
		case "description":
			p.Description, err = decodeOptString(d, key)
		case "image":
			p.Image, err = decodeOptString(d, key)
		case "category":
			p.Category, err = decodeOptString(d, key)
		case "price":
			p.BasePrice, err = decodePrice(d, key)
		case "kind":
			kind, err = decodeOptString(d, key)
		case "available":
			p.Available, err = decodeOptBool(d, key)
		case "variants":
			p.Variants, err = decodeOptions(d, key)
		case "addOns":
			p.AddOns, err = decodeOptions(d, key)
		case "addOnControl":
			control, err = decodeOptString(d, key)
		default:
			err = d.Skip()
		}
		return err
	})
	if err != nil {
		return p, err
	}

	if p.Kind, err = ParseKind(kind); err != nil {
		return p, err
	}
	if p.Control, err = ParseControl(control); err != nil {
		return p, err
	}
	return p, nil
}

func decodeOptions(d *jx.Decoder, field string) ([]Option, error) {
	if d.Next() == jx.Null {
		return nil, d.Null()
	}
	var opts []Option
	err := decodeArray(d, field, func(d *jx.Decoder) error {
		if d.Next() != jx.Object {
			return errors.Errorf("%s[%d]: option must be an object", field, len(opts))
		}
		var o Option
		if err := d.Obj(func(d *jx.Decoder, key string) error {
			var err error
			switch key {
			case "name":
				o.Name, err = decodeString(d, key)
			case "price":
				o.Price, err = decodePrice(d, key)
			default:
				err = d.Skip()
			}
			return err
		}); err != nil {
			return errors.Wrapf(err, "%s[%d]", field, len(opts))
		}
		opts = append(opts, o)
		return nil
	})
	return opts, err
}

func decodeArray(d *jx.Decoder, field string, f func(d *jx.Decoder) error) error {
	if d.Next() != jx.Array {
		return errors.Errorf("%q must be an array", field)
	}
	return d.Arr(f)
}

// decodeID accepts both string and numeric identifiers.
func decodeID(d *jx.Decoder) (string, error) {
	switch d.Next() {
	case jx.String:
		return d.Str()
	case jx.Number:
		n, err := d.Num()
		if err != nil {
			return "", errors.Wrap(err, "id")
		}
		return n.String(), nil
	default:
		return "", errors.New(`"id" must be a string or a number`)
	}
}

func decodeString(d *jx.Decoder, field string) (string, error) {
	if d.Next() != jx.String {
		return "", errors.Errorf("%q must be a string", field)
	}
	return d.Str()
}

func decodeOptString(d *jx.Decoder, field string) (string, error) {
	if d.Next() == jx.Null {
		return "", d.Null()
	}
	return decodeString(d, field)
}

func decodeOptBool(d *jx.Decoder, field string) (bool, error) {
	switch d.Next() {
	case jx.Null:
		return false, d.Null()
	case jx.Bool:
		return d.Bool()
	default:
		return false, errors.Errorf("%q must be a boolean", field)
	}
}

// decodePrice reads a number; null is treated as a missing (zero) price.
func decodePrice(d *jx.Decoder, field string) (decimal.Decimal, error) {
	switch d.Next() {
	case jx.Null:
		return decimal.Zero, d.Null()
	case jx.Number:
		n, err := d.Num()
		if err != nil {
			return decimal.Zero, errors.Wrapf(err, "%q", field)
		}
		v, err := decimal.NewFromString(n.String())
		if err != nil {
			return decimal.Zero, errors.Wrapf(err, "%q", field)
		}
		return v, nil
	default:
		return decimal.Zero, errors.Errorf("%q must be a number", field)
	}
}
