package http

import (
	"context"
	"encoding/pem"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bft-labs/sunshade/internal/domain"
	"github.com/bft-labs/sunshade/internal/solar"
)

// writeCA stores the test server certificate as a PEM bundle.
func writeCA(t *testing.T, srv *httptest.Server) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "ca.pem")
	block := pem.EncodeToMemory(&pem.Block{Type: "CERTIFICATE", Bytes: srv.Certificate().Raw})
	require.NoError(t, os.WriteFile(path, block, 0o600))
	return path
}

func newTLSFetcher(t *testing.T, handler http.Handler) (*Fetcher, *httptest.Server) {
	t.Helper()
	srv := httptest.NewTLSServer(handler)
	t.Cleanup(srv.Close)
	client, err := NewClient(ClientConfig{CAFile: writeCA(t, srv), UserAgent: "sunshade-test"})
	require.NoError(t, err)
	return NewFetcher(client, nil, 256), srv
}

func TestFetcher_Fetch_Success(t *testing.T) {
	const body = `{"results":{"sunrise":"6:01:02 AM","sunset":"6:03:04 PM"},"status":"OK"}`
	var gotAccept, gotUA, gotMethod string
	f, srv := newTLSFetcher(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotMethod = r.Method
		gotAccept = r.Header.Get("accept")
		gotUA = r.Header.Get("User-Agent")
		_, _ = io.WriteString(w, body)
	}))

	text, err := f.Fetch(context.Background(), srv.URL+"/json")
	require.NoError(t, err)
	assert.Equal(t, body, text)
	assert.Equal(t, http.MethodGet, gotMethod)
	assert.Equal(t, "text/plain", gotAccept)
	assert.Equal(t, "sunshade-test", gotUA)
}

func TestFetcher_Fetch_ChunkBoundaryInsideCharacter(t *testing.T) {
	// The 3-byte sun sign occupies bytes 255..257, straddling the first
	// 256-byte chunk.
	prefix := `{"pad":"`
	pad := strings.Repeat("a", 255-len(prefix))
	body := prefix + pad + "☀" + `","results":{"sunrise":"7:12:03 AM","sunset":"4:59:45 PM"},"status":"OK"}`
	require.Equal(t, 255, strings.Index(body, "☀"))

	f, srv := newTLSFetcher(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = io.WriteString(w, body)
	}))

	text, err := f.Fetch(context.Background(), srv.URL)
	require.NoError(t, err)
	assert.Equal(t, body, text)

	p, err := solar.Parse(text)
	require.NoError(t, err)
	assert.Equal(t, "7:12:03 AM", p.Sunrise)
	assert.Equal(t, "4:59:45 PM", p.Sunset)
}

func TestFetcher_Fetch_NonSuccessStatus(t *testing.T) {
	for _, code := range []int{http.StatusNotFound, http.StatusInternalServerError, http.StatusServiceUnavailable} {
		f, srv := newTLSFetcher(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(code)
			_, _ = io.WriteString(w, "nope")
		}))

		text, err := f.Fetch(context.Background(), srv.URL)
		assert.Empty(t, text)
		assert.ErrorIs(t, err, domain.ErrProtocol)
		var se *domain.StatusError
		require.ErrorAs(t, err, &se)
		assert.Equal(t, code, se.Code)
	}
}

func TestFetcher_Fetch_RedirectNotFollowed(t *testing.T) {
	followed := false
	mux := http.NewServeMux()
	mux.HandleFunc("/old", func(w http.ResponseWriter, r *http.Request) {
		http.Redirect(w, r, "/new", http.StatusFound)
	})
	mux.HandleFunc("/new", func(w http.ResponseWriter, r *http.Request) {
		followed = true
		_, _ = io.WriteString(w, `{}`)
	})
	f, srv := newTLSFetcher(t, mux)

	_, err := f.Fetch(context.Background(), srv.URL+"/old")
	var se *domain.StatusError
	require.ErrorAs(t, err, &se)
	assert.Equal(t, http.StatusFound, se.Code)
	assert.False(t, followed)
}

func TestFetcher_Fetch_MalformedBody(t *testing.T) {
	f, srv := newTLSFetcher(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("{\"x\":\"\xff\"}"))
	}))

	text, err := f.Fetch(context.Background(), srv.URL)
	assert.Empty(t, text)
	assert.ErrorIs(t, err, domain.ErrMalformedStream)
	assert.NotErrorIs(t, err, domain.ErrTransport)
}

func TestFetcher_Fetch_UntrustedCertificate(t *testing.T) {
	srv := httptest.NewTLSServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Error("handler reached over an untrusted connection")
	}))
	defer srv.Close()

	client, err := NewClient(ClientConfig{})
	require.NoError(t, err)
	_, err = NewFetcher(client, nil, 0).Fetch(context.Background(), srv.URL)
	assert.ErrorIs(t, err, domain.ErrTransport)
}

// fakeClient returns a canned response or error.
type fakeClient struct {
	resp *http.Response
	err  error
}

func (c *fakeClient) Do(*http.Request) (*http.Response, error) {
	return c.resp, c.err
}

// trackingBody records whether it was read and closed.
type trackingBody struct {
	r      io.Reader
	read   bool
	closed bool
}

func (b *trackingBody) Read(p []byte) (int, error) {
	b.read = true
	return b.r.Read(p)
}

func (b *trackingBody) Close() error {
	b.closed = true
	return nil
}

func TestFetcher_Fetch_StatusBodyClosedUnread(t *testing.T) {
	body := &trackingBody{r: strings.NewReader("error page")}
	client := &fakeClient{resp: &http.Response{StatusCode: http.StatusBadGateway, Body: body}}

	_, err := NewFetcher(client, nil, 256).Fetch(context.Background(), "https://example.invalid")
	assert.ErrorIs(t, err, domain.ErrProtocol)
	assert.False(t, body.read)
	assert.True(t, body.closed)
}

func TestFetcher_Fetch_TransportError(t *testing.T) {
	cause := errors.New("connection refused")
	_, err := NewFetcher(&fakeClient{err: cause}, nil, 256).Fetch(context.Background(), "https://example.invalid")
	assert.ErrorIs(t, err, domain.ErrTransport)
	assert.ErrorIs(t, err, cause)
}

// failingReader yields data then a non-EOF error.
type failingReader struct {
	data string
	err  error
	done bool
}

func (r *failingReader) Read(p []byte) (int, error) {
	if r.done {
		return 0, r.err
	}
	r.done = true
	return copy(p, r.data), nil
}

func TestFetcher_Fetch_InterruptedBody(t *testing.T) {
	cause := errors.New("connection reset")
	body := io.NopCloser(&failingReader{data: `{"results":`, err: cause})
	client := &fakeClient{resp: &http.Response{StatusCode: http.StatusOK, Body: body}}

	text, err := NewFetcher(client, nil, 256).Fetch(context.Background(), "https://example.invalid")
	assert.Equal(t, `{"results":`, text)
	assert.ErrorIs(t, err, domain.ErrTransport)
	assert.ErrorIs(t, err, cause)
	assert.NotErrorIs(t, err, domain.ErrMalformedStream)
}

func TestNewClient_CAFile(t *testing.T) {
	_, err := NewClient(ClientConfig{CAFile: filepath.Join(t.TempDir(), "missing.pem")})
	assert.Error(t, err)

	bad := filepath.Join(t.TempDir(), "bad.pem")
	require.NoError(t, os.WriteFile(bad, []byte("not a certificate"), 0o600))
	_, err = NewClient(ClientConfig{CAFile: bad})
	assert.ErrorContains(t, err, "no certificates")
}

func TestNewClient_Defaults(t *testing.T) {
	client, err := NewClient(ClientConfig{})
	require.NoError(t, err)
	assert.Equal(t, DefaultTimeout, client.Timeout)
	ua, ok := client.Transport.(*userAgentTransport)
	require.True(t, ok)
	assert.Equal(t, DefaultUserAgent, ua.userAgent)
}
