package handler

import (
	"net/http"

	"github.com/go-faster/jx"
)

// checkout formats the cart into the order transcript and messaging link.
func (h *Handler) checkout(w http.ResponseWriter, r *http.Request) {
	c, err := h.shop.Checkout(r.Context())
	if err != nil {
		fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, func(e *jx.Encoder) {
		e.Obj(func(e *jx.Encoder) {
			e.Field("link", func(e *jx.Encoder) { e.Str(c.Link) })
			e.Field("text", func(e *jx.Encoder) { e.Str(c.Transcript.Text) })
			e.Field("items", func(e *jx.Encoder) { e.Int(c.Transcript.Items) })
			h.encodeAmount(e, "total", c.Transcript.Total)
		})
	})
}
