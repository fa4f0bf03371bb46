package handler

import (
	"net/http"

	"github.com/go-faster/jx"
)

func (h *Handler) info(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, func(e *jx.Encoder) {
		e.Obj(func(e *jx.Encoder) {
			e.Field("businessName", func(e *jx.Encoder) { e.Str(h.businessName) })
			e.Field("currency", func(e *jx.Encoder) { e.Str(h.money.Symbol) })
			e.Field("ready", func(e *jx.Encoder) { e.Bool(h.shop.Ready()) })
		})
	})
}

func (h *Handler) listCategories(w http.ResponseWriter, r *http.Request) {
	cats, err := h.shop.Categories()
	if err != nil {
		fail(w, r, err)
		return
	}
	active := h.shop.ActiveCategory()
	writeJSON(w, http.StatusOK, func(e *jx.Encoder) {
		e.Obj(func(e *jx.Encoder) {
			e.Field("active", func(e *jx.Encoder) { e.Str(active) })
			e.Field("categories", func(e *jx.Encoder) {
				e.Arr(func(e *jx.Encoder) {
					for _, c := range cats {
						encodeCategory(e, c)
					}
				})
			})
		})
	})
}

// selectCategory sets the active filter from {"category": id}.
func (h *Handler) selectCategory(w http.ResponseWriter, r *http.Request) {
	var id string
	err := decodeBody(r, func(d *jx.Decoder, key string) error {
		if key != "category" {
			return d.Skip()
		}
		v, err := d.Str()
		id = v
		return err
	})
	if err == nil {
		err = h.shop.SelectCategory(id)
	}
	if err != nil {
		fail(w, r, err)
		return
	}
	h.writeListing(w, r, h.shop.ActiveCategory())
}

// listProducts lists the active category, or the one named by ?category=.
func (h *Handler) listProducts(w http.ResponseWriter, r *http.Request) {
	category := r.URL.Query().Get("category")
	if category == "" {
		category = h.shop.ActiveCategory()
	}
	h.writeListing(w, r, category)
}

func (h *Handler) writeListing(w http.ResponseWriter, r *http.Request, category string) {
	listing, err := h.shop.ListingFor(category)
	if err != nil {
		fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, func(e *jx.Encoder) {
		e.Obj(func(e *jx.Encoder) {
			e.Field("category", func(e *jx.Encoder) { e.Str(category) })
			e.Field("products", func(e *jx.Encoder) {
				e.Arr(func(e *jx.Encoder) {
					for _, l := range listing {
						h.encodeProduct(e, l.Product, l.Price)
					}
				})
			})
		})
	})
}
