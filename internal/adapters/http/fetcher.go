// Package http implements the solar-event fetch over HTTPS.
package http

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/bft-labs/sunshade/internal/domain"
	"github.com/bft-labs/sunshade/internal/ports"
	"github.com/bft-labs/sunshade/pkg/log"
	"github.com/bft-labs/sunshade/pkg/utf8stream"
)

// DefaultUserAgent is sent when ClientConfig.UserAgent is empty.
const DefaultUserAgent = "sunshade/1"

// Fetcher implements ports.Fetcher.
type Fetcher struct {
	client    ports.HTTPClient
	logger    log.Logger
	chunkSize int
}

// NewFetcher creates a fetcher reading the body in chunks of chunkSize bytes.
// A nil logger discards log output.
func NewFetcher(client ports.HTTPClient, logger log.Logger, chunkSize int) *Fetcher {
	if logger == nil {
		logger = log.NewNoopLogger()
	}
	if chunkSize <= 0 {
		chunkSize = utf8stream.DefaultChunkSize
	}
	return &Fetcher{
		client:    client,
		logger:    logger,
		chunkSize: chunkSize,
	}
}

// Fetch sends one GET to endpoint and returns the body as text. A status
// outside 2xx yields *domain.StatusError and the body is not read.
func (f *Fetcher) Fetch(ctx context.Context, endpoint string) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return "", fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("accept", "text/plain")

	resp, err := f.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("%w: send request: %w", domain.ErrTransport, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode/100 != 2 {
		return "", &domain.StatusError{Code: resp.StatusCode}
	}

	text, err := utf8stream.ReadAll(resp.Body, f.chunkSize)
	if err != nil {
		var incomplete *utf8stream.IncompleteError
		switch {
		case errors.As(err, &incomplete):
			f.logger.Warn("response body interrupted",
				log.Int("received", len(text)),
				log.Err(err),
			)
			return text, fmt.Errorf("%w: %w", domain.ErrTransport, err)
		case errors.Is(err, utf8stream.ErrMalformedStream):
			return "", fmt.Errorf("%w: %w", domain.ErrMalformedStream, err)
		default:
			return "", err
		}
	}

	f.logger.Debug("fetched solar events",
		log.Int("status", resp.StatusCode),
		log.Int("bytes", len(text)),
	)
	return text, nil
}
