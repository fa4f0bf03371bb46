package app

import (
	"context"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/go-faster/sdk/app"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"go.opentelemetry.io/otel/trace"

	"github.com/xenking/menukart/pkg/httpmiddleware"
)

// unmatchedRoute names spans of requests no route matched.
const unmatchedRoute = "unmatched"

// instrument traces and measures every request with otelhttp. Spans start
// with the method only; nameSpanByRoute renames them once routing is done.
func instrument(m *app.Telemetry) httpmiddleware.Middleware {
	return func(next http.Handler) http.Handler {
		return otelhttp.NewHandler(next, "menukart",
			otelhttp.WithTracerProvider(m.TracerProvider()),
			otelhttp.WithMeterProvider(m.MeterProvider()),
			otelhttp.WithSpanNameFormatter(func(_ string, r *http.Request) string {
				return r.Method
			}),
		)
	}
}

// nameSpanByRoute renames the request span after the chi route pattern that
// served it, keeping span names bounded. The route context is created here so
// the router fills it in and it stays readable after the handler returns.
func nameSpanByRoute() httpmiddleware.Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			rctx := chi.RouteContext(r.Context())
			if rctx == nil {
				rctx = chi.NewRouteContext()
				r = r.WithContext(context.WithValue(r.Context(), chi.RouteCtxKey, rctx))
			}
			next.ServeHTTP(w, r)
			trace.SpanFromContext(r.Context()).SetName(r.Method + " " + routeName(rctx))
		})
	}
}

// routeName returns the matched pattern. The API has no wildcard routes, so a
// trailing "/*" only appears when a mounted subrouter found no match.
func routeName(rctx *chi.Context) string {
	pattern := rctx.RoutePattern()
	if pattern == "" || strings.HasSuffix(pattern, "/*") {
		return unmatchedRoute
	}
	return pattern
}
