package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/dmitrijs2005/gophtodo/internal/common"
	"github.com/dmitrijs2005/gophtodo/internal/logging"
)

// DefaultTimeout is the per-request timeout used when none is configured.
const DefaultTimeout = 10 * time.Second

// maxBodySize bounds how much of a response body is read.
const maxBodySize = 4 << 20

// TokenSource yields the current bearer token; empty means none.
type TokenSource interface {
	Token() string
}

// UnauthorizedHook runs when any response comes back 401.
type UnauthorizedHook func(ctx context.Context)

type hookEntry struct {
	fn UnauthorizedHook
}

// Dispatcher sends every API request. It attaches the bearer token before the
// request leaves and intercepts 401 responses after it returns, running the
// registered hooks (local session clear, redirect to login) before the error
// reaches the caller. Base URL and timeout are fixed at construction.
type Dispatcher struct {
	baseURL string
	http    *http.Client
	tokens  TokenSource
	log     logging.Logger

	mu    sync.RWMutex
	hooks []*hookEntry
}

// NewDispatcher validates baseURL and builds a Dispatcher with the given
// timeout (DefaultTimeout when zero).
func NewDispatcher(baseURL string, timeout time.Duration, tokens TokenSource, log logging.Logger) (*Dispatcher, error) {
	u, err := url.Parse(baseURL)
	if err != nil {
		return nil, fmt.Errorf("parse base url: %w", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return nil, fmt.Errorf("base url %q: scheme must be http or https", baseURL)
	}
	if timeout <= 0 {
		timeout = DefaultTimeout
	}

	return &Dispatcher{
		baseURL: strings.TrimRight(u.String(), "/"),
		http:    &http.Client{Timeout: timeout},
		tokens:  tokens,
		log:     log.With("component", "dispatcher"),
	}, nil
}

// Timeout reports the fixed request timeout.
func (d *Dispatcher) Timeout() time.Duration {
	return d.http.Timeout
}

// OnUnauthorized registers h and returns a function that unregisters it.
func (d *Dispatcher) OnUnauthorized(h UnauthorizedHook) (remove func()) {
	e := &hookEntry{fn: h}

	d.mu.Lock()
	d.hooks = append(d.hooks, e)
	d.mu.Unlock()

	return func() {
		d.mu.Lock()
		defer d.mu.Unlock()
		for i, h := range d.hooks {
			if h == e {
				d.hooks = append(d.hooks[:i], d.hooks[i+1:]...)
				return
			}
		}
	}
}

// Do sends a JSON request and decodes a JSON response into out (when out is
// non-nil and the body is not empty). Non-2xx responses are returned as
// *APIError; transport failures wrap ErrUnavailable.
func (d *Dispatcher) Do(ctx context.Context, method, path string, query url.Values, body, out any) error {
	req, err := d.newRequest(ctx, method, path, query, body)
	if err != nil {
		return err
	}
	d.authorize(req)

	resp, err := d.http.Do(req)
	if err != nil {
		d.log.Debug(ctx, "request failed", "method", method, "path", path, "error", err)
		return fmt.Errorf("%w: %s %s: %v", ErrUnavailable, method, path, err)
	}
	defer resp.Body.Close()

	return d.handleResponse(ctx, method, path, resp, out)
}

func (d *Dispatcher) newRequest(ctx context.Context, method, path string, query url.Values, body any) (*http.Request, error) {
	target := d.baseURL + "/" + strings.TrimLeft(path, "/")
	if len(query) > 0 {
		target += "?" + query.Encode()
	}

	var reader io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("encode %s %s body: %w", method, path, err)
		}
		reader = bytes.NewReader(b)
	}

	req, err := http.NewRequestWithContext(ctx, method, target, reader)
	if err != nil {
		return nil, fmt.Errorf("new request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	return req, nil
}

// authorize is the request interceptor.
func (d *Dispatcher) authorize(req *http.Request) {
	if token := d.tokens.Token(); token != "" {
		req.Header.Set(common.AuthorizationHeaderName, common.BearerValue(token))
	}
}

// handleResponse is the response interceptor.
func (d *Dispatcher) handleResponse(ctx context.Context, method, path string, resp *http.Response, out any) error {
	// The status alone decides a 401; a body that fails to read must not
	// keep a rejected token alive.
	if resp.StatusCode == http.StatusUnauthorized {
		d.log.Warn(ctx, "unauthorized response, invalidating session", "method", method, "path", path)
		d.fireUnauthorized(ctx)
	}

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxBodySize))
	if err != nil {
		if resp.StatusCode == http.StatusUnauthorized {
			return &APIError{Method: method, Path: path, Status: resp.StatusCode}
		}
		return fmt.Errorf("%w: read %s %s response: %v", ErrUnavailable, method, path, err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return &APIError{Method: method, Path: path, Status: resp.StatusCode, Detail: parseDetail(data)}
	}

	if out == nil || len(bytes.TrimSpace(data)) == 0 {
		return nil
	}
	if err := json.Unmarshal(data, out); err != nil {
		return fmt.Errorf("decode %s %s response: %w", method, path, err)
	}
	return nil
}

func (d *Dispatcher) fireUnauthorized(ctx context.Context) {
	d.mu.RLock()
	hooks := make([]*hookEntry, len(d.hooks))
	copy(hooks, d.hooks)
	d.mu.RUnlock()

	for _, h := range hooks {
		h.fn(ctx)
	}
}
