// Package fetch performs blocking page and stream retrievals for the site
// strategies. Transient failures (network errors, timeouts, 5xx, 429) are
// retried with a fixed delay; how many times is configurable and a negative
// limit retries until the context is cancelled.
package fetch

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/http/cookiejar"
	"os"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	cloudflarebp "github.com/DaRealFreak/cloudflare-bp-go"
	"golang.org/x/net/html/charset"
)

const (
	DefaultTimeout    = 10 * time.Second
	DefaultRetryDelay = 3 * time.Second
	DefaultUserAgent  = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/124.0.0.0 Safari/537.36"
)

var (
	// ErrPermanent marks failures that retrying cannot fix (bad URL, 4xx).
	ErrPermanent = errors.New("permanent fetch failure")

	ErrRetriesExhausted = errors.New("retries exhausted")
)

type Logger interface {
	Debugf(format string, args ...any)
	Warnf(format string, args ...any)
}

type nopLogger struct{}

func (nopLogger) Debugf(string, ...any) {}
func (nopLogger) Warnf(string, ...any)  {}

type Options struct {
	Timeout    time.Duration
	RetryDelay time.Duration
	// MaxRetries caps retries after the first attempt; negative means no cap.
	MaxRetries int
	UserAgent  string
	Cookie     string
	CookieFile string
	Cloudflare bool
	Transport  http.RoundTripper
	Logger     Logger
}

type Client struct {
	page       *http.Client
	stream     *http.Client
	retryDelay time.Duration
	maxRetries int
	log        Logger
}

func NewClient(opts Options) (*Client, error) {
	if opts.Timeout <= 0 {
		opts.Timeout = DefaultTimeout
	}
	if opts.RetryDelay <= 0 {
		opts.RetryDelay = DefaultRetryDelay
	}
	if opts.UserAgent == "" {
		opts.UserAgent = DefaultUserAgent
	}
	if opts.Logger == nil {
		opts.Logger = nopLogger{}
	}

	jar, err := cookiejar.New(nil)
	if err != nil {
		return nil, err
	}

	var base http.RoundTripper
	if opts.Transport != nil {
		base = opts.Transport
	} else {
		base = &http.Transport{
			Proxy:                 http.ProxyFromEnvironment,
			DialContext:           (&net.Dialer{Timeout: opts.Timeout}).DialContext,
			TLSHandshakeTimeout:   opts.Timeout,
			ResponseHeaderTimeout: opts.Timeout,
			MaxIdleConns:          100,
			MaxIdleConnsPerHost:   16,
			ForceAttemptHTTP2:     true,
		}
	}

	if opts.Cloudflare {
		base = cloudflarebp.AddCloudFlareByPass(base)
	}

	rt := roundTripper{
		base:         base,
		ua:           opts.UserAgent,
		cookieHeader: joinCookies(opts.Cookie, opts.CookieFile),
		log:          opts.Logger,
	}

	c := &Client{
		page:       &http.Client{Timeout: opts.Timeout, Transport: rt, Jar: jar},
		stream:     &http.Client{Transport: rt, Jar: jar},
		retryDelay: opts.RetryDelay,
		maxRetries: opts.MaxRetries,
		log:        opts.Logger,
	}

	opts.Logger.Debugf("HTTP client initialized (timeout=%s, retryDelay=%s, maxRetries=%d, cloudflare=%t)\n",
		opts.Timeout, opts.RetryDelay, opts.MaxRetries, opts.Cloudflare)

	return c, nil
}

type roundTripper struct {
	base         http.RoundTripper
	ua           string
	cookieHeader string
	log          Logger
}

func (rt roundTripper) RoundTrip(req *http.Request) (*http.Response, error) {
	if rt.ua != "" && req.Header.Get("User-Agent") == "" {
		req.Header.Set("User-Agent", rt.ua)
	}

	if rt.cookieHeader != "" && req.Header.Get("Cookie") == "" {
		req.Header.Set("Cookie", rt.cookieHeader)
	}

	rt.log.Debugf("HTTP %s %s\n", req.Method, req.URL.String())

	return rt.base.RoundTrip(req)
}

func joinCookies(inline, file string) string {
	s := strings.TrimSpace(inline)
	if file == "" {
		return s
	}

	b, err := os.ReadFile(file)
	if err != nil {
		return s
	}

	// first non-empty line
	sc := bufio.NewScanner(strings.NewReader(string(b)))
	for sc.Scan() {
		line := strings.TrimSpace(sc.Text())
		if line == "" {
			continue
		}
		if s == "" {
			return line
		}
		return s + "; " + line
	}

	return s
}

// Retry runs attempt until it succeeds, fails permanently, the retry budget
// is spent or ctx is done. Every retry waits the fixed delay.
func (c *Client) Retry(ctx context.Context, target string, attempt func(ctx context.Context) error) error {
	for n := 0; ; n++ {
		err := attempt(ctx)
		if err == nil {
			return nil
		}
		if errors.Is(err, ErrPermanent) {
			return err
		}
		if ctxErr := ctx.Err(); ctxErr != nil {
			return ctxErr
		}
		if c.maxRetries >= 0 && n >= c.maxRetries {
			return fmt.Errorf("%w: %s after %d attempts: %v", ErrRetriesExhausted, target, n+1, err)
		}

		c.log.Warnf("Fetching %s failed (%v), retrying in %s\n", target, err, c.retryDelay)

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(c.retryDelay):
		}
	}
}

// Open issues a single GET without retrying. Status codes are classified:
// 5xx and 429 are transient, every other non-2xx is permanent. The caller
// closes the body. Open does not apply the page timeout, so it suits large
// downloads.
func (c *Client) Open(ctx context.Context, target string) (*http.Response, error) {
	return c.do(ctx, c.stream, target)
}

func (c *Client) do(ctx context.Context, hc *http.Client, target string) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrPermanent, err)
	}
	if req.URL.Scheme != "http" && req.URL.Scheme != "https" {
		return nil, fmt.Errorf("%w: unsupported URL %q", ErrPermanent, target)
	}

	resp, err := hc.Do(req)
	if err != nil {
		return nil, err
	}

	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		return resp, nil
	}

	_ = resp.Body.Close()
	if resp.StatusCode >= 500 || resp.StatusCode == http.StatusTooManyRequests {
		return nil, fmt.Errorf("HTTP %d", resp.StatusCode)
	}

	return nil, fmt.Errorf("%w: HTTP %d for %s", ErrPermanent, resp.StatusCode, target)
}

// Bytes returns the raw response body.
func (c *Client) Bytes(ctx context.Context, target string) ([]byte, error) {
	var body []byte
	err := c.Retry(ctx, target, func(ctx context.Context) error {
		resp, err := c.do(ctx, c.page, target)
		if err != nil {
			return err
		}
		defer func() {
			_ = resp.Body.Close()
		}()

		body, err = io.ReadAll(resp.Body)
		return err
	})

	return body, err
}

// Text returns the response body decoded to UTF-8 using the declared or
// sniffed charset.
func (c *Client) Text(ctx context.Context, target string) (string, error) {
	var text string
	err := c.Retry(ctx, target, func(ctx context.Context) error {
		resp, err := c.do(ctx, c.page, target)
		if err != nil {
			return err
		}
		defer func() {
			_ = resp.Body.Close()
		}()

		r, err := charset.NewReader(resp.Body, resp.Header.Get("Content-Type"))
		if err != nil {
			return fmt.Errorf("%w: %v", ErrPermanent, err)
		}

		b, err := io.ReadAll(r)
		text = string(b)
		return err
	})

	return text, err
}

// Document fetches and parses an HTML page.
func (c *Client) Document(ctx context.Context, target string) (*goquery.Document, error) {
	text, err := c.Text(ctx, target)
	if err != nil {
		return nil, err
	}

	return goquery.NewDocumentFromReader(strings.NewReader(text))
}

// JSON fetches target and decodes the body into v.
func (c *Client) JSON(ctx context.Context, target string, v any) error {
	b, err := c.Bytes(ctx, target)
	if err != nil {
		return err
	}

	if err := json.Unmarshal(b, v); err != nil {
		return fmt.Errorf("decode %s: %w", target, err)
	}

	return nil
}
