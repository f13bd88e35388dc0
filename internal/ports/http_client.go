package ports

import (
	"context"
	"net/http"
)

// HTTPClient abstracts HTTP operations for dependency injection.
// The standard *http.Client satisfies this interface.
type HTTPClient interface {
	// Do sends an HTTP request and returns an HTTP response.
	Do(req *http.Request) (*http.Response, error)
}

// Fetcher retrieves the solar-event document from an endpoint.
type Fetcher interface {
	// Fetch performs one request and returns the whole body as text.
	// The connection is closed before Fetch returns.
	Fetch(ctx context.Context, endpoint string) (string, error)
}
