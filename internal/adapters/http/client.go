package http

import (
	"crypto/tls"
	"crypto/x509"
	"fmt"
	"net/http"
	"os"
	"time"
)

// DefaultTimeout bounds a whole request including the body read.
const DefaultTimeout = 30 * time.Second

// ClientConfig configures NewClient.
type ClientConfig struct {
	// Timeout for the whole exchange. Zero means DefaultTimeout.
	Timeout time.Duration
	// CAFile is an optional PEM bundle trusted in addition to the system roots.
	CAFile string
	// UserAgent overrides the default User-Agent header.
	UserAgent string
}

type userAgentTransport struct {
	transport http.RoundTripper
	userAgent string
}

// RoundTrip sets the User-Agent on a clone of req.
func (t *userAgentTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	req = req.Clone(req.Context())
	req.Header.Set("User-Agent", t.userAgent)
	return t.transport.RoundTrip(req)
}

// NewClient returns an HTTP client that validates server certificates
// (TLS 1.2 or newer) and never follows redirects.
func NewClient(cfg ClientConfig) (*http.Client, error) {
	roots, err := rootPool(cfg.CAFile)
	if err != nil {
		return nil, err
	}

	transport := http.DefaultTransport.(*http.Transport).Clone()
	transport.TLSClientConfig = &tls.Config{
		MinVersion: tls.VersionTLS12,
		RootCAs:    roots,
	}
	// Exactly one exchange per cycle.
	transport.DisableKeepAlives = true

	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	ua := cfg.UserAgent
	if ua == "" {
		ua = DefaultUserAgent
	}

	return &http.Client{
		Transport: &userAgentTransport{transport: transport, userAgent: ua},
		Timeout:   timeout,
		CheckRedirect: func(*http.Request, []*http.Request) error {
			return http.ErrUseLastResponse
		},
	}, nil
}

func rootPool(caFile string) (*x509.CertPool, error) {
	pool, err := x509.SystemCertPool()
	if err != nil || pool == nil {
		pool = x509.NewCertPool()
	}
	if caFile == "" {
		return pool, nil
	}
	pem, err := os.ReadFile(caFile)
	if err != nil {
		return nil, fmt.Errorf("read ca file: %w", err)
	}
	if !pool.AppendCertsFromPEM(pem) {
		return nil, fmt.Errorf("ca file %s: no certificates found", caFile)
	}
	return pool, nil
}
