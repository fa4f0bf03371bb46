package handler

import (
	"net/http"

	"github.com/go-faster/jx"

	"github.com/xenking/menukart/internal/domain/session"
)

func (h *Handler) getSession(w http.ResponseWriter, _ *http.Request) {
	v, open := h.shop.Session()
	writeJSON(w, http.StatusOK, func(e *jx.Encoder) { h.encodeSession(e, v, open) })
}

// selectVariant applies {"index": i}.
func (h *Handler) selectVariant(w http.ResponseWriter, r *http.Request) {
	var index indexParam
	err := decodeBody(r, index.field(nil))
	if err == nil {
		err = index.require()
	}
	if err != nil {
		fail(w, r, err)
		return
	}
	h.writeSession(w, r)(h.shop.SelectVariant(index.value))
}

// setAddOn applies {"index": i, "checked": bool}.
func (h *Handler) setAddOn(w http.ResponseWriter, r *http.Request) {
	var (
		index   indexParam
		checked bool
	)
	err := decodeBody(r, index.field(func(d *jx.Decoder, key string) error {
		if key != "checked" {
			return d.Skip()
		}
		v, err := d.Bool()
		checked = v
		return err
	}))
	if err == nil {
		err = index.require()
	}
	if err != nil {
		fail(w, r, err)
		return
	}
	h.writeSession(w, r)(h.shop.SetAddOn(index.value, checked))
}

// adjustCounter applies {"index": i, "delta": n}.
func (h *Handler) adjustCounter(w http.ResponseWriter, r *http.Request) {
	var (
		index indexParam
		delta int
	)
	err := decodeBody(r, index.field(func(d *jx.Decoder, key string) error {
		if key != "delta" {
			return d.Skip()
		}
		v, err := d.Int()
		delta = v
		return err
	}))
	if err == nil {
		err = index.require()
	}
	if err != nil {
		fail(w, r, err)
		return
	}
	h.writeSession(w, r)(h.shop.AdjustCounter(index.value, delta))
}

// confirm prices the open session and adds it to the cart. On a validation
// failure the session stays open.
func (h *Handler) confirm(w http.ResponseWriter, r *http.Request) {
	li, err := h.shop.Confirm(r.Context())
	if err != nil {
		fail(w, r, err)
		return
	}
	h.writeItem(w, http.StatusCreated, li)
}

func (h *Handler) cancel(w http.ResponseWriter, _ *http.Request) {
	h.shop.CancelSession()
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) writeSession(w http.ResponseWriter, r *http.Request) func(session.View, error) {
	return func(v session.View, err error) {
		if err != nil {
			fail(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, func(e *jx.Encoder) { h.encodeSession(e, v, true) })
	}
}

// indexParam decodes the "index" field shared by session requests.
type indexParam struct {
	value int
	set   bool
}

func (p *indexParam) field(next func(d *jx.Decoder, key string) error) func(d *jx.Decoder, key string) error {
	return func(d *jx.Decoder, key string) error {
		if key == "index" {
			v, err := d.Int()
			p.value, p.set = v, true
			return err
		}
		if next == nil {
			return d.Skip()
		}
		return next(d, key)
	}
}

func (p *indexParam) require() error {
	if !p.set {
		return badRequest("index is required")
	}
	return nil
}
