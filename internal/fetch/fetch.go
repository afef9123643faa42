// Package fetch downloads article bodies and listings documents over HTTP
// with bounded retries and optional on-disk revalidation.
package fetch

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/hyperifyio/toursplice/internal/cache"
)

// DefaultMaxBytes caps a response body.
const DefaultMaxBytes = 8 << 20

// DefaultContentTypes are the media types accepted when Client.ContentTypes
// is empty: HTML for article bodies, JSON and YAML for listings.
var DefaultContentTypes = []string{
	"text/html",
	"application/xhtml+xml",
	"application/json",
	"text/json",
	"application/yaml",
	"application/x-yaml",
	"text/yaml",
	"text/x-yaml",
	"text/plain",
}

// StatusError is returned for a non-2xx, non-304 response.
type StatusError struct {
	Code int
}

func (e *StatusError) Error() string {
	if e.Code >= 500 {
		return fmt.Sprintf("server error: %d", e.Code)
	}
	return fmt.Sprintf("unexpected status: %d", e.Code)
}

// ErrContentType is returned when the response media type is not accepted.
var ErrContentType = errors.New("unsupported content type")

// Client wraps http.Client and provides timeouts and limited retry on transient errors.
type Client struct {
	HTTPClient *http.Client
	UserAgent  string
	// MaxAttempts includes the initial attempt. Minimum 1.
	MaxAttempts int
	// PerRequestTimeout bounds each request.
	PerRequestTimeout time.Duration
	// Optional on-disk cache for GET bodies and validators.
	Cache *cache.HTTPCache
	// CacheMaxAge serves cached entries younger than this without a request.
	CacheMaxAge time.Duration
	// If true, bypass cache entirely and fetch fresh (no conditional headers),
	// but still save the latest response to cache.
	BypassCache bool
	// ContentTypes overrides DefaultContentTypes; entries match as prefixes.
	ContentTypes []string
	// MaxBytes caps the body size. Zero means DefaultMaxBytes.
	MaxBytes int64

	// RedirectMaxHops caps redirect following to avoid loops. Zero means default (5).
	RedirectMaxHops int
	// MaxConcurrent limits concurrent in-flight requests per client instance.
	// Zero means unlimited.
	MaxConcurrent int

	// internal limiter initialized on first use when MaxConcurrent > 0
	limiter     chan struct{}
	limiterOnce sync.Once
}

// IsURL reports whether s is an http or https URL rather than a file path.
func IsURL(s string) bool {
	u, err := url.Parse(strings.TrimSpace(s))
	return err == nil && isHTTPScheme(u) && u.Host != ""
}

func (c *Client) getHTTPClient() *http.Client {
	if c.HTTPClient != nil {
		// Clone to attach our redirect policy without mutating caller's client
		base := *c.HTTPClient
		base.CheckRedirect = c.checkRedirectFunc()
		return &base
	}
	return &http.Client{Timeout: c.PerRequestTimeout, CheckRedirect: c.checkRedirectFunc()}
}

// response is the outcome of a single attempt.
type response struct {
	body         []byte
	contentType  string
	etag         string
	lastModified string
	status       int
}

// Get issues a GET with context, user-agent, and bounded retry for transient
// errors. It returns the body and its content type.
func (c *Client) Get(ctx context.Context, rawURL string) ([]byte, string, error) {
	var etag, lastMod string
	if c.Cache != nil && !c.BypassCache {
		if meta, body, ok := c.Cache.Fresh(ctx, rawURL, c.CacheMaxAge); ok {
			return body, meta.ContentType, nil
		}
		if meta, err := c.Cache.LoadMeta(ctx, rawURL); err == nil && meta != nil {
			etag = meta.ETag
			lastMod = meta.LastModified
		}
	}
	attempts := c.MaxAttempts
	if attempts <= 0 {
		attempts = 1
	}
	var lastErr error
	for i := 0; i < attempts; i++ {
		resp, err := c.tryOnce(ctx, rawURL, etag, lastMod)
		if err == nil {
			return c.finish(ctx, rawURL, resp)
		}
		if !isTransient(err) || i == attempts-1 {
			return nil, "", err
		}
		lastErr = err
		select {
		case <-ctx.Done():
			return nil, "", ctx.Err()
		case <-time.After(time.Duration(i+1) * 200 * time.Millisecond):
		}
	}
	if lastErr == nil {
		lastErr = errors.New("unknown error")
	}
	return nil, "", lastErr
}

// finish stores a 200 response and answers a 304 from the cache.
func (c *Client) finish(ctx context.Context, rawURL string, r response) ([]byte, string, error) {
	if c.Cache == nil {
		return r.body, r.contentType, nil
	}
	if r.status == http.StatusNotModified {
		cached, err := c.Cache.LoadBody(ctx, rawURL)
		if err != nil {
			return nil, "", fmt.Errorf("not modified but cache is empty: %w", err)
		}
		ct, etag, lastMod := r.contentType, r.etag, r.lastModified
		if meta, err := c.Cache.LoadMeta(ctx, rawURL); err == nil {
			if meta.ContentType != "" {
				ct = meta.ContentType
			}
			if etag == "" {
				etag = meta.ETag
			}
			if lastMod == "" {
				lastMod = meta.LastModified
			}
		}
		// refresh SavedAt so the entry counts as fresh again
		_ = c.Cache.Save(ctx, rawURL, ct, etag, lastMod, cached)
		return cached, ct, nil
	}
	_ = c.Cache.Save(ctx, rawURL, r.contentType, r.etag, r.lastModified, r.body)
	return r.body, r.contentType, nil
}

func (c *Client) tryOnce(ctx context.Context, rawURL string, etag string, lastMod string) (response, error) {
	c.acquire()
	defer c.release()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return response{}, fmt.Errorf("new request: %w", err)
	}
	if !isHTTPScheme(req.URL) {
		return response{}, fmt.Errorf("unsupported URL scheme: %q", req.URL.String())
	}
	if c.UserAgent != "" {
		req.Header.Set("User-Agent", c.UserAgent)
	}
	if etag != "" {
		req.Header.Set("If-None-Match", etag)
	}
	if lastMod != "" {
		req.Header.Set("If-Modified-Since", lastMod)
	}

	httpClient := c.getHTTPClient()
	if c.PerRequestTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(req.Context(), c.PerRequestTimeout)
		defer cancel()
		req = req.WithContext(ctx)
	}

	resp, err := httpClient.Do(req)
	if err != nil {
		return response{}, err
	}
	defer resp.Body.Close()

	out := response{
		contentType:  resp.Header.Get("Content-Type"),
		etag:         resp.Header.Get("ETag"),
		lastModified: resp.Header.Get("Last-Modified"),
		status:       resp.StatusCode,
	}
	if resp.StatusCode == http.StatusNotModified {
		return out, nil
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return response{status: resp.StatusCode}, &StatusError{Code: resp.StatusCode}
	}
	if !c.allowedContentType(out.contentType) {
		return response{status: resp.StatusCode}, fmt.Errorf("%w: %s", ErrContentType, out.contentType)
	}
	limit := c.MaxBytes
	if limit <= 0 {
		limit = DefaultMaxBytes
	}
	b, err := io.ReadAll(io.LimitReader(resp.Body, limit+1))
	if err != nil {
		return response{status: resp.StatusCode}, fmt.Errorf("read body: %w", err)
	}
	if int64(len(b)) > limit {
		return response{status: resp.StatusCode}, fmt.Errorf("body exceeds %d bytes", limit)
	}
	out.body = b
	return out, nil
}

func isTransient(err error) bool {
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var se *StatusError
	return errors.As(err, &se) && se.Code >= 500
}

func (c *Client) checkRedirectFunc() func(req *http.Request, via []*http.Request) error {
	max := c.RedirectMaxHops
	if max <= 0 {
		max = 5
	}
	return func(req *http.Request, via []*http.Request) error {
		if len(via) >= max {
			return errors.New("too many redirects")
		}
		// Only allow http/https during redirects
		if req.URL == nil || !isHTTPScheme(req.URL) {
			return errors.New("redirect to unsupported scheme")
		}
		return nil
	}
}

func isHTTPScheme(u *url.URL) bool {
	if u == nil {
		return false
	}
	scheme := strings.ToLower(u.Scheme)
	return scheme == "http" || scheme == "https"
}

func (c *Client) allowedContentType(ct string) bool {
	ct = strings.ToLower(strings.TrimSpace(ct))
	allowed := c.ContentTypes
	if len(allowed) == 0 {
		allowed = DefaultContentTypes
	}
	for _, a := range allowed {
		if strings.HasPrefix(ct, a) {
			return true
		}
	}
	return false
}

func (c *Client) acquire() {
	if c.MaxConcurrent <= 0 {
		return
	}
	c.limiterOnce.Do(func() {
		c.limiter = make(chan struct{}, c.MaxConcurrent)
	})
	c.limiter <- struct{}{}
}

func (c *Client) release() {
	if c.MaxConcurrent <= 0 || c.limiter == nil {
		return
	}
	select {
	case <-c.limiter:
	default:
	}
}
