package fetch

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestClient(t *testing.T, maxRetries int) *Client {
	t.Helper()

	c, err := NewClient(Options{
		Timeout:    time.Second,
		RetryDelay: time.Millisecond,
		MaxRetries: maxRetries,
	})
	require.NoError(t, err)

	return c
}

func TestBytesRetriesTransientErrors(t *testing.T) {
	var attempts atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch attempts.Add(1) {
		case 1:
			http.Error(w, "down", http.StatusBadGateway)
		case 2:
			http.Error(w, "slow down", http.StatusTooManyRequests)
		default:
			_, _ = io.WriteString(w, "ok")
		}
	}))
	defer srv.Close()

	b, err := newTestClient(t, -1).Bytes(context.Background(), srv.URL)

	require.NoError(t, err)
	assert.Equal(t, "ok", string(b))
	assert.Equal(t, int32(3), attempts.Load())
}

func TestBytesFailsFastOnClientError(t *testing.T) {
	var attempts atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		attempts.Add(1)
		http.NotFound(w, r)
	}))
	defer srv.Close()

	_, err := newTestClient(t, -1).Bytes(context.Background(), srv.URL)

	require.ErrorIs(t, err, ErrPermanent)
	assert.Equal(t, int32(1), attempts.Load())
}

func TestBytesRejectsUnsupportedScheme(t *testing.T) {
	_, err := newTestClient(t, -1).Bytes(context.Background(), "ftp://example.com/x")
	assert.ErrorIs(t, err, ErrPermanent)

	_, err = newTestClient(t, -1).Bytes(context.Background(), "not a url")
	assert.ErrorIs(t, err, ErrPermanent)
}

func TestRetryCapIsHonoured(t *testing.T) {
	var attempts atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		attempts.Add(1)
		http.Error(w, "nope", http.StatusInternalServerError)
	}))
	defer srv.Close()

	_, err := newTestClient(t, 2).Bytes(context.Background(), srv.URL)

	require.ErrorIs(t, err, ErrRetriesExhausted)
	assert.Equal(t, int32(3), attempts.Load())
}

func TestUnlimitedRetryStopsOnCancel(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "nope", http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	_, err := newTestClient(t, -1).Bytes(ctx, srv.URL)

	assert.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestDocumentDecodesCharset(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html; charset=iso-8859-1")
		_, _ = w.Write([]byte("<html><body><h1>Caf\xe9</h1></body></html>"))
	}))
	defer srv.Close()

	doc, err := newTestClient(t, 0).Document(context.Background(), srv.URL)

	require.NoError(t, err)
	assert.Equal(t, "Café", doc.Find("h1").Text())
}

func TestJSON(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = io.WriteString(w, `{"title":"t","n":3}`)
	}))
	defer srv.Close()

	var v struct {
		Title string `json:"title"`
		N     int    `json:"n"`
	}
	require.NoError(t, newTestClient(t, 0).JSON(context.Background(), srv.URL, &v))
	assert.Equal(t, "t", v.Title)
	assert.Equal(t, 3, v.N)
}

func TestHeadersInjected(t *testing.T) {
	dir := t.TempDir()
	cookieFile := filepath.Join(dir, "cookies.txt")
	require.NoError(t, os.WriteFile(cookieFile, []byte("\n  session=abc \nignored=1\n"), 0644))

	var ua, cookie string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ua = r.Header.Get("User-Agent")
		cookie = r.Header.Get("Cookie")
	}))
	defer srv.Close()

	c, err := NewClient(Options{
		UserAgent:  "noveld-test",
		Cookie:     "a=1",
		CookieFile: cookieFile,
	})
	require.NoError(t, err)

	_, err = c.Bytes(context.Background(), srv.URL)
	require.NoError(t, err)

	assert.Equal(t, "noveld-test", ua)
	assert.Equal(t, "a=1; session=abc", cookie)
}

func TestOpenDoesNotRetry(t *testing.T) {
	var attempts atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		attempts.Add(1)
		http.Error(w, "down", http.StatusBadGateway)
	}))
	defer srv.Close()

	_, err := newTestClient(t, -1).Open(context.Background(), srv.URL)

	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrPermanent)
	assert.Equal(t, int32(1), attempts.Load())
}
