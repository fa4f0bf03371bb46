package handler

import (
	"fmt"
	"net/http"

	"github.com/go-faster/errors"
	"github.com/go-faster/sdk/zctx"
	"go.uber.org/zap"

	"github.com/xenking/menukart/internal/domain/cart"
	"github.com/xenking/menukart/internal/domain/catalog"
	"github.com/xenking/menukart/internal/domain/order"
	"github.com/xenking/menukart/internal/domain/pricing"
	"github.com/xenking/menukart/internal/domain/session"
	"github.com/xenking/menukart/internal/shop"
	"github.com/xenking/menukart/pkg/httpmiddleware"
)

// badRequestError reports a malformed request body or parameter.
type badRequestError struct {
	msg string
}

func (e *badRequestError) Error() string { return e.msg }

func badRequest(format string, args ...any) error {
	return &badRequestError{msg: fmt.Sprintf(format, args...)}
}

// statusFor maps domain errors to HTTP status codes. Unknown errors map to 500.
func statusFor(err error) int {
	var (
		bad  *badRequestError
		vErr *pricing.ValidationError
	)
	switch {
	case errors.As(err, &bad):
		return http.StatusBadRequest
	case errors.As(err, &vErr), errors.Is(err, session.ErrInvalidOption):
		return http.StatusUnprocessableEntity
	case errors.Is(err, order.ErrEmptyCart),
		errors.Is(err, session.ErrInvalidState),
		errors.Is(err, shop.ErrUnavailable):
		return http.StatusConflict
	case errors.Is(err, catalog.ErrNotFound), errors.Is(err, cart.ErrItemNotFound):
		return http.StatusNotFound
	case errors.Is(err, catalog.ErrNotLoaded):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

// fail writes err as a JSON error. Server-side failures are logged and their
// details withheld from the client.
func fail(w http.ResponseWriter, r *http.Request, err error) {
	status := statusFor(err)
	msg := err.Error()

	var vErr *pricing.ValidationError
	if errors.As(err, &vErr) {
		msg = vErr.Reason
	}
	if status >= http.StatusInternalServerError && status != http.StatusServiceUnavailable {
		zctx.From(r.Context()).Error("Request failed", zap.Error(err))
		var cfgErr *order.ConfigurationError
		if errors.As(err, &cfgErr) {
			msg = cfgErr.Error()
		} else {
			msg = "internal error"
		}
	}
	writeError(w, status, msg)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	httpmiddleware.WriteError(w, status, msg)
}
