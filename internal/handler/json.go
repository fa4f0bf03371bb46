package handler

import (
	"io"
	"net/http"

	"github.com/go-faster/jx"
	"github.com/shopspring/decimal"

	"github.com/xenking/menukart/internal/domain/cart"
	"github.com/xenking/menukart/internal/domain/catalog"
	"github.com/xenking/menukart/internal/domain/pricing"
	"github.com/xenking/menukart/internal/domain/session"
	"github.com/xenking/menukart/internal/shop"
)

const maxBodySize = 64 << 10

func writeJSON(w http.ResponseWriter, status int, fn func(e *jx.Encoder)) {
	var e jx.Encoder
	fn(&e)
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, _ = w.Write(e.Bytes())
}

// decodeBody decodes a JSON object body, calling field for every key.
// field must consume or skip the value.
func decodeBody(r *http.Request, field func(d *jx.Decoder, key string) error) error {
	data, err := io.ReadAll(io.LimitReader(r.Body, maxBodySize))
	if err != nil {
		return badRequest("read body: %v", err)
	}
	if len(data) == 0 {
		return badRequest("empty body")
	}
	d := jx.DecodeBytes(data)
	if err := d.ObjBytes(func(d *jx.Decoder, key []byte) error {
		return field(d, string(key))
	}); err != nil {
		return badRequest("decode body: %v", err)
	}
	return nil
}

// decodeRaw reads a string or number value as its raw text.
func decodeRaw(d *jx.Decoder) (string, error) {
	switch d.Next() {
	case jx.Number:
		n, err := d.Num()
		if err != nil {
			return "", err
		}
		return n.String(), nil
	case jx.Null:
		return "", d.Null()
	default:
		return d.Str()
	}
}

func (h *Handler) encodeAmount(e *jx.Encoder, name string, v decimal.Decimal) {
	e.Field(name, func(e *jx.Encoder) { e.RawStr(v.String()) })
	e.Field(name+"Label", func(e *jx.Encoder) { e.Str(h.money.Format(v)) })
}

func encodeCategory(e *jx.Encoder, c catalog.Category) {
	e.Obj(func(e *jx.Encoder) {
		e.Field("id", func(e *jx.Encoder) { e.Str(c.ID) })
		e.Field("name", func(e *jx.Encoder) { e.Str(c.Name) })
		if c.Icon != "" {
			e.Field("icon", func(e *jx.Encoder) { e.Str(c.Icon) })
		}
	})
}

func (h *Handler) encodeOptions(e *jx.Encoder, opts []catalog.Option) {
	e.Arr(func(e *jx.Encoder) {
		for _, o := range opts {
			e.Obj(func(e *jx.Encoder) {
				e.Field("name", func(e *jx.Encoder) { e.Str(o.Name) })
				h.encodeAmount(e, "price", o.Price)
			})
		}
	})
}

func (h *Handler) encodeProduct(e *jx.Encoder, p catalog.Product, display pricing.Display) {
	e.Obj(func(e *jx.Encoder) {
		e.Field("id", func(e *jx.Encoder) { e.Str(p.ID) })
		e.Field("name", func(e *jx.Encoder) { e.Str(p.Name) })
		e.Field("description", func(e *jx.Encoder) { e.Str(p.Description) })
		e.Field("image", func(e *jx.Encoder) { e.Str(h.imageURL(p.Image)) })
		e.Field("category", func(e *jx.Encoder) { e.Str(p.Category) })
		e.Field("kind", func(e *jx.Encoder) { e.Str(p.Kind.String()) })
		e.Field("available", func(e *jx.Encoder) { e.Bool(p.Available) })
		e.Field("price", func(e *jx.Encoder) { e.RawStr(display.Amount.String()) })
		e.Field("priceLabel", func(e *jx.Encoder) {
			if display.From {
				e.Str(h.money.FormatFrom(display.Amount))
				return
			}
			e.Str(h.money.Format(display.Amount))
		})
		e.Field("fromPrice", func(e *jx.Encoder) { e.Bool(display.From) })
		switch p.Kind {
		case catalog.KindVariant:
			e.Field("variants", func(e *jx.Encoder) { h.encodeOptions(e, p.Variants) })
		case catalog.KindAddOns:
			e.Field("addOnControl", func(e *jx.Encoder) { e.Str(p.Control.String()) })
			e.Field("addOns", func(e *jx.Encoder) { h.encodeOptions(e, p.AddOns) })
		}
	})
}

func (h *Handler) encodeLineItem(e *jx.Encoder, li cart.LineItem) {
	e.Obj(func(e *jx.Encoder) {
		e.Field("signature", func(e *jx.Encoder) { e.Str(li.Signature) })
		e.Field("productId", func(e *jx.Encoder) { e.Str(li.ProductID) })
		e.Field("name", func(e *jx.Encoder) { e.Str(li.DisplayName) })
		e.Field("quantity", func(e *jx.Encoder) { e.Int(li.Quantity) })
		h.encodeAmount(e, "unitPrice", li.UnitPrice)
		h.encodeAmount(e, "subtotal", li.Subtotal())
	})
}

func (h *Handler) encodeCart(e *jx.Encoder, v shop.CartView) {
	e.Obj(func(e *jx.Encoder) {
		e.Field("items", func(e *jx.Encoder) {
			e.Arr(func(e *jx.Encoder) {
				for _, li := range v.Items {
					h.encodeLineItem(e, li)
				}
			})
		})
		h.encodeAmount(e, "total", v.Total)
		e.Field("itemCount", func(e *jx.Encoder) { e.Int(v.ItemCount) })
		e.Field("entries", func(e *jx.Encoder) { e.Int(v.Entries) })
	})
}

// selectionOf rebuilds the pricing selection held by a session view.
func selectionOf(v session.View) pricing.Selection {
	sel := pricing.Selection{Variant: v.Variant}
	for i, checked := range v.Checked {
		if checked {
			if sel.Checked == nil {
				sel.Checked = make(map[int]bool)
			}
			sel.Checked[i] = true
		}
	}
	for i, n := range v.Counts {
		if n > 0 {
			if sel.Counts == nil {
				sel.Counts = make(map[int]int)
			}
			sel.Counts[i] = n
		}
	}
	return sel
}

// encodeSession writes the open session, or {"open":false}. The preview
// carries the price the current selection would confirm at, or null while
// the selection is incomplete.
func (h *Handler) encodeSession(e *jx.Encoder, v session.View, open bool) {
	e.Obj(func(e *jx.Encoder) {
		e.Field("open", func(e *jx.Encoder) { e.Bool(open) })
		if !open {
			return
		}
		e.Field("product", func(e *jx.Encoder) { h.encodeProduct(e, v.Product, pricing.DisplayPrice(v.Product)) })
		e.Field("variant", func(e *jx.Encoder) {
			if v.Variant < 0 {
				e.Null()
				return
			}
			e.Int(v.Variant)
		})
		if v.Checked != nil {
			e.Field("checked", func(e *jx.Encoder) {
				e.Arr(func(e *jx.Encoder) {
					for _, c := range v.Checked {
						e.Bool(c)
					}
				})
			})
		}
		if v.Counts != nil {
			e.Field("counts", func(e *jx.Encoder) {
				e.Arr(func(e *jx.Encoder) {
					for _, n := range v.Counts {
						e.Int(n)
					}
				})
			})
		}
		e.Field("preview", func(e *jx.Encoder) {
			res, err := pricing.Resolve(v.Product, selectionOf(v))
			if err != nil {
				e.Null()
				return
			}
			e.Obj(func(e *jx.Encoder) {
				h.encodeAmount(e, "unitPrice", res.UnitPrice)
				if res.HasSummary {
					e.Field("summary", func(e *jx.Encoder) { e.Str(res.Summary) })
				}
			})
		})
	})
}
