package handler

import (
	"net/http"

	"github.com/go-faster/jx"

	"github.com/xenking/menukart/internal/domain/cart"
)

func (h *Handler) getCart(w http.ResponseWriter, _ *http.Request) {
	v := h.shop.Cart()
	writeJSON(w, http.StatusOK, func(e *jx.Encoder) { h.encodeCart(e, v) })
}

// addItem adds {"productId": id}. Simple products answer 201 with the line
// item; configurable products answer 202 with the opened session.
func (h *Handler) addItem(w http.ResponseWriter, r *http.Request) {
	var id string
	err := decodeBody(r, func(d *jx.Decoder, key string) error {
		if key != "productId" {
			return d.Skip()
		}
		v, err := d.Str()
		id = v
		return err
	})
	if err == nil && id == "" {
		err = badRequest("productId is required")
	}
	if err != nil {
		fail(w, r, err)
		return
	}

	res, err := h.shop.Add(r.Context(), id)
	if err != nil {
		fail(w, r, err)
		return
	}
	if res.Session != nil {
		v := *res.Session
		writeJSON(w, http.StatusAccepted, func(e *jx.Encoder) {
			e.Obj(func(e *jx.Encoder) {
				e.Field("session", func(e *jx.Encoder) { h.encodeSession(e, v, true) })
			})
		})
		return
	}
	h.writeItem(w, http.StatusCreated, *res.Item)
}

// changeQuantity applies {"signature": s, "delta": n}.
func (h *Handler) changeQuantity(w http.ResponseWriter, r *http.Request) {
	var (
		sig      string
		delta    int
		hasDelta bool
	)
	err := decodeBody(r, func(d *jx.Decoder, key string) error {
		var err error
		switch key {
		case "signature":
			sig, err = d.Str()
		case "delta":
			delta, err = d.Int()
			hasDelta = true
		default:
			err = d.Skip()
		}
		return err
	})
	if err == nil && (sig == "" || !hasDelta) {
		err = badRequest("signature and delta are required")
	}
	if err != nil {
		fail(w, r, err)
		return
	}

	li, err := h.shop.ChangeQuantity(r.Context(), sig, delta)
	if err != nil {
		fail(w, r, err)
		return
	}
	h.writeItem(w, http.StatusOK, li)
}

// setQuantity applies {"signature": s, "quantity": raw}. The quantity may be
// free text and is parsed leniently.
func (h *Handler) setQuantity(w http.ResponseWriter, r *http.Request) {
	var sig, raw string
	err := decodeBody(r, func(d *jx.Decoder, key string) error {
		var err error
		switch key {
		case "signature":
			sig, err = d.Str()
		case "quantity":
			raw, err = decodeRaw(d)
		default:
			err = d.Skip()
		}
		return err
	})
	if err == nil && sig == "" {
		err = badRequest("signature is required")
	}
	if err != nil {
		fail(w, r, err)
		return
	}

	li, err := h.shop.SetQuantity(r.Context(), sig, raw)
	if err != nil {
		fail(w, r, err)
		return
	}
	h.writeItem(w, http.StatusOK, li)
}

// removeItem removes ?signature=. Unknown signatures are a no-op.
func (h *Handler) removeItem(w http.ResponseWriter, r *http.Request) {
	sig := r.URL.Query().Get("signature")
	if sig == "" {
		fail(w, r, badRequest("signature is required"))
		return
	}
	removed := h.shop.Remove(r.Context(), sig)
	v := h.shop.Cart()
	writeJSON(w, http.StatusOK, func(e *jx.Encoder) {
		e.Obj(func(e *jx.Encoder) {
			e.Field("removed", func(e *jx.Encoder) { e.Bool(removed) })
			e.Field("cart", func(e *jx.Encoder) { h.encodeCart(e, v) })
		})
	})
}

// writeItem responds with the affected line item and the resulting cart.
// A removed item is reported with quantity 0.
func (h *Handler) writeItem(w http.ResponseWriter, status int, li cart.LineItem) {
	v := h.shop.Cart()
	writeJSON(w, status, func(e *jx.Encoder) {
		e.Obj(func(e *jx.Encoder) {
			e.Field("item", func(e *jx.Encoder) { h.encodeLineItem(e, li) })
			e.Field("cart", func(e *jx.Encoder) { h.encodeCart(e, v) })
		})
	})
}
