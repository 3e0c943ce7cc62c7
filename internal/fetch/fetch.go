// Package fetch wraps the HTTP client used for all page, profile and feed
// requests: proxy support, timeouts, bounded retry with linear backoff, and
// a politeness pause between consecutive profile fetches.
package fetch

import (
	"context"
	"fmt"
	"net"
	"net/http"
	"net/url"
	"os"
	"time"
)

// A desktop browser UA cuts down on 403s from roster sites. Overridable via
// settings or the ROTISSERIE_UA environment variable.
const defaultUA = "Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/124.0 Safari/537.36"

// Client is a retrying HTTP client.
type Client struct {
	http  *http.Client
	retry int
	ua    string
	pause time.Duration
}

// Options are the client construction parameters.
type Options struct {
	ProxyHTTP  string
	ProxyHTTPS string
	Timeout    time.Duration
	Retry      int
	UserAgent  string
	Pause      time.Duration // politeness delay honored by Pause()
}

// New builds a client with proxy and timeout configuration.
func New(opts Options) (*Client, error) {
	transport := &http.Transport{
		Proxy: func(req *http.Request) (*url.URL, error) {
			if req.URL.Scheme == "https" && opts.ProxyHTTPS != "" {
				return url.Parse(opts.ProxyHTTPS)
			}
			if req.URL.Scheme == "http" && opts.ProxyHTTP != "" {
				return url.Parse(opts.ProxyHTTP)
			}
			return http.ProxyFromEnvironment(req)
		},
		DialContext:           (&net.Dialer{Timeout: 10 * time.Second}).DialContext,
		TLSHandshakeTimeout:   10 * time.Second,
		ResponseHeaderTimeout: 15 * time.Second,
		ExpectContinueTimeout: 1 * time.Second,
	}
	cl := &http.Client{Transport: transport}
	if opts.Timeout <= 0 {
		opts.Timeout = 25 * time.Second
	}
	cl.Timeout = opts.Timeout
	ua := opts.UserAgent
	if env := os.Getenv("ROTISSERIE_UA"); env != "" {
		ua = env
	}
	if ua == "" {
		ua = defaultUA
	}
	return &Client{http: cl, retry: opts.Retry, ua: ua, pause: opts.Pause}, nil
}

// Get issues a GET with bounded retry and linear backoff. Non-2xx responses
// count as failures.
func (c *Client) Get(ctx context.Context, url string) (*http.Response, error) {
	var lastErr error
	attempts := c.retry + 1
	for i := 0; i < attempts; i++ {
		req, reqErr := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
		if reqErr != nil {
			lastErr = fmt.Errorf("new request: %w", reqErr)
			break
		}
		req.Header.Set("User-Agent", c.ua)
		req.Header.Set("Accept", "text/html,application/xhtml+xml,application/xml;q=0.9,*/*;q=0.8")
		resp, err := c.http.Do(req)
		if err == nil && resp.StatusCode >= 200 && resp.StatusCode < 300 {
			return resp, nil
		}
		if err == nil {
			lastErr = fmt.Errorf("http status: %s", resp.Status)
			if resp.Body != nil {
				resp.Body.Close()
			}
		} else {
			lastErr = err
		}
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(time.Duration(i+1) * 300 * time.Millisecond):
		}
	}
	return nil, lastErr
}

// Pause sleeps for the configured politeness delay, or returns early when the
// context is canceled. Callers invoke it between consecutive profile fetches.
func (c *Client) Pause(ctx context.Context) {
	if c.pause <= 0 {
		return
	}
	select {
	case <-ctx.Done():
	case <-time.After(c.pause):
	}
}
