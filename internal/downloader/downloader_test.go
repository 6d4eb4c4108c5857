package downloader

import (
	"bytes"
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/brogergvhs/noveld/internal/fetch"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newClient(t *testing.T, maxRetries int) *fetch.Client {
	t.Helper()
	c, err := fetch.NewClient(fetch.Options{RetryDelay: time.Millisecond, MaxRetries: maxRetries})
	require.NoError(t, err)
	return c
}

func TestDownloadWritesFile(t *testing.T) {
	payload := bytes.Repeat([]byte("abc"), 50000)

	var attempts atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if attempts.Add(1) == 1 {
			http.Error(w, "busy", http.StatusServiceUnavailable)
			return
		}
		_, _ = w.Write(payload)
	}))
	defer srv.Close()

	out := filepath.Join(t.TempDir(), "ch1.mp3")
	var last int64

	n, err := New(newClient(t, -1)).Download(context.Background(), srv.URL, out, func(done int64) { last = done })

	require.NoError(t, err)
	assert.Equal(t, int64(len(payload)), n)
	assert.Equal(t, int64(len(payload)), last)

	got, err := os.ReadFile(out)
	require.NoError(t, err)
	assert.Equal(t, payload, got)
}

func TestDownloadRemovesPartialFile(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.NotFound(w, r)
	}))
	defer srv.Close()

	out := filepath.Join(t.TempDir(), "ch1.mp3")
	require.NoError(t, os.WriteFile(out, []byte("stale"), 0644))

	_, err := New(newClient(t, 3)).Download(context.Background(), srv.URL, out, nil)

	require.ErrorIs(t, err, fetch.ErrPermanent)
	assert.NoFileExists(t, out)
}

func TestDownloadRejectsEmptyURL(t *testing.T) {
	_, err := New(newClient(t, 0)).Download(context.Background(), "", filepath.Join(t.TempDir(), "x"), nil)
	assert.Error(t, err)
}

type failingWriter struct{}

func (failingWriter) Write([]byte) (int, error) { return 0, errors.New("disk full") }

func TestCopyWithProgress(t *testing.T) {
	var buf bytes.Buffer
	var seen []int64

	n, err := copyWithProgress(&buf, strings.NewReader("hello world"), func(done int64) {
		seen = append(seen, done)
	})

	require.NoError(t, err)
	assert.Equal(t, int64(11), n)
	assert.Equal(t, "hello world", buf.String())
	assert.Equal(t, int64(11), seen[len(seen)-1])

	_, err = copyWithProgress(failingWriter{}, strings.NewReader("x"), nil)
	assert.EqualError(t, err, "disk full")
}
