// Package remote loads the catalog document over HTTP.
package remote

import (
	"context"
	"io"
	"net/http"
	"time"

	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"

	"github.com/xenking/menukart/internal/domain/catalog"
)

// maxDocumentSize bounds the catalog document read from upstream.
const maxDocumentSize = 8 << 20

var _ catalog.Source = (*Source)(nil)

// Options configures a Source.
type Options struct {
	Client         *http.Client
	TracerProvider trace.TracerProvider
	MeterProvider  metric.MeterProvider
}

// Source fetches a catalog document with a GET request.
type Source struct {
	url    string
	client *http.Client
}

// New creates a Source for url. Without a client, an instrumented client
// with a 30s timeout is used.
func New(url string, opts Options) *Source {
	client := opts.Client
	if client == nil {
		var otelOpts []otelhttp.Option
		if opts.TracerProvider != nil {
			otelOpts = append(otelOpts, otelhttp.WithTracerProvider(opts.TracerProvider))
		}
		if opts.MeterProvider != nil {
			otelOpts = append(otelOpts, otelhttp.WithMeterProvider(opts.MeterProvider))
		}
		client = &http.Client{
			Timeout:   30 * time.Second,
			Transport: otelhttp.NewTransport(http.DefaultTransport, otelOpts...),
		}
	}
	return &Source{url: url, client: client}
}

// Load fetches and decodes the document. Transport failures and non-2xx
// responses yield *catalog.LoadError.
func (s *Source) Load(ctx context.Context) (*catalog.Catalog, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.url, http.NoBody)
	if err != nil {
		return nil, &catalog.LoadError{Source: s.url, Err: err}
	}
	req.Header.Set("Accept", "application/json")
	// Catalog edits must be visible on the next load.
	req.Header.Set("Cache-Control", "no-cache")

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, &catalog.LoadError{Source: s.url, Err: err}
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, &catalog.LoadError{Source: s.url, Status: resp.StatusCode}
	}

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxDocumentSize))
	if err != nil {
		return nil, &catalog.LoadError{Source: s.url, Err: err}
	}
	return catalog.Decode(data)
}
