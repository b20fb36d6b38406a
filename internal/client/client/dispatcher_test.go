package client

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"net/url"
	"sync/atomic"
	"testing"
	"time"

	"github.com/dmitrijs2005/gophtodo/internal/client/storage"
	"github.com/dmitrijs2005/gophtodo/internal/logging"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestDispatcher(t *testing.T, baseURL string, token string) (*Dispatcher, *storage.MemoryTokenStore) {
	t.Helper()
	tokens := storage.NewMemoryTokenStore(token)
	d, err := NewDispatcher(baseURL, time.Second, tokens, logging.Nop())
	require.NoError(t, err)
	return d, tokens
}

func TestNewDispatcher_Validation(t *testing.T) {
	_, err := NewDispatcher("ftp://example.com", 0, storage.NewMemoryTokenStore(""), logging.Nop())
	require.Error(t, err)

	_, err = NewDispatcher("://bad", 0, storage.NewMemoryTokenStore(""), logging.Nop())
	require.Error(t, err)

	d, err := NewDispatcher("http://localhost:8000/api/", 0, storage.NewMemoryTokenStore(""), logging.Nop())
	require.NoError(t, err)
	assert.Equal(t, DefaultTimeout, d.Timeout())
	assert.Equal(t, "http://localhost:8000/api", d.baseURL)
}

func TestDispatcher_AttachesBearerWhenTokenPresent(t *testing.T) {
	var gotAuth, gotCT, gotPath, gotQuery string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		gotCT = r.Header.Get("Content-Type")
		gotPath = r.URL.Path
		gotQuery = r.URL.RawQuery
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"ok":true}`))
	}))
	defer srv.Close()

	d, _ := newTestDispatcher(t, srv.URL+"/api", "tok-123")

	var out struct {
		OK bool `json:"ok"`
	}
	err := d.Do(context.Background(), http.MethodGet, "/todos", url.Values{"page": {"2"}}, nil, &out)
	require.NoError(t, err)

	assert.True(t, out.OK)
	assert.Equal(t, "Bearer tok-123", gotAuth)
	assert.Equal(t, "application/json", gotCT)
	assert.Equal(t, "/api/todos", gotPath)
	assert.Equal(t, "page=2", gotQuery)
}

func TestDispatcher_NoTokenSendsUnauthenticated(t *testing.T) {
	var hadAuth atomic.Bool
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, ok := r.Header["Authorization"]
		hadAuth.Store(ok)
		w.WriteHeader(http.StatusNoContent)
	}))
	defer srv.Close()

	d, _ := newTestDispatcher(t, srv.URL, "")
	require.NoError(t, d.Do(context.Background(), http.MethodPost, "/auth/logout", nil, nil, nil))
	assert.False(t, hadAuth.Load())
}

func TestDispatcher_ReadsLatestTokenPerRequest(t *testing.T) {
	var seen []string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = append(seen, r.Header.Get("Authorization"))
	}))
	defer srv.Close()

	d, tokens := newTestDispatcher(t, srv.URL, "a")
	ctx := context.Background()

	require.NoError(t, d.Do(ctx, http.MethodGet, "/auth/me", nil, nil, nil))
	require.NoError(t, tokens.SetToken(ctx, "b"))
	require.NoError(t, d.Do(ctx, http.MethodGet, "/auth/me", nil, nil, nil))

	assert.Equal(t, []string{"Bearer a", "Bearer b"}, seen)
}

func TestDispatcher_SendsJSONBody(t *testing.T) {
	var got map[string]string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		w.WriteHeader(http.StatusCreated)
	}))
	defer srv.Close()

	d, _ := newTestDispatcher(t, srv.URL, "")
	err := d.Do(context.Background(), http.MethodPost, "/auth/login", nil, map[string]string{"email": "a@b.com"}, nil)
	require.NoError(t, err)
	assert.Equal(t, "a@b.com", got["email"])
}

func TestDispatcher_401RunsHooksBeforeReturning(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		_, _ = w.Write([]byte(`{"detail":"Could not validate credentials"}`))
	}))
	defer srv.Close()

	d, _ := newTestDispatcher(t, srv.URL, "stale")

	var order []string
	d.OnUnauthorized(func(context.Context) { order = append(order, "clear") })
	d.OnUnauthorized(func(context.Context) { order = append(order, "redirect") })

	err := d.Do(context.Background(), http.MethodGet, "/todos", nil, nil, nil)
	order = append(order, "returned")

	require.ErrorIs(t, err, ErrUnauthorized)
	assert.Equal(t, []string{"clear", "redirect", "returned"}, order)

	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusUnauthorized, apiErr.Status)
	assert.Equal(t, "Could not validate credentials", apiErr.Detail)
}

func TestDispatcher_RemoveHook(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	}))
	defer srv.Close()

	d, _ := newTestDispatcher(t, srv.URL, "")

	var calls int
	remove := d.OnUnauthorized(func(context.Context) { calls++ })
	remove()
	remove()

	_ = d.Do(context.Background(), http.MethodGet, "/auth/me", nil, nil, nil)
	assert.Zero(t, calls)
}

func TestDispatcher_OtherStatusesPassThrough(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
		_, _ = w.Write([]byte(`{"detail":"Internal server error"}`))
	}))
	defer srv.Close()

	d, _ := newTestDispatcher(t, srv.URL, "tok")

	var calls int
	d.OnUnauthorized(func(context.Context) { calls++ })

	err := d.Do(context.Background(), http.MethodGet, "/todos", nil, nil, nil)
	require.Error(t, err)
	assert.False(t, errors.Is(err, ErrUnauthorized))
	assert.Equal(t, KindServer, Classify(err))
	assert.Equal(t, "Internal server error", Detail(err))
	assert.Zero(t, calls)
}

func TestDispatcher_TransportErrorIsUnavailable(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	base := srv.URL
	srv.Close()

	d, _ := newTestDispatcher(t, base, "")
	err := d.Do(context.Background(), http.MethodGet, "/auth/me", nil, nil, nil)
	require.ErrorIs(t, err, ErrUnavailable)
	assert.Equal(t, KindNetwork, Classify(err))
}

func TestDispatcher_TimeoutIsNetworkError(t *testing.T) {
	release := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-release:
		case <-r.Context().Done():
		}
	}))
	defer srv.Close()
	defer close(release)

	tokens := storage.NewMemoryTokenStore("")
	d, err := NewDispatcher(srv.URL, 50*time.Millisecond, tokens, logging.Nop())
	require.NoError(t, err)

	err = d.Do(context.Background(), http.MethodGet, "/auth/me", nil, nil, nil)
	require.ErrorIs(t, err, ErrUnavailable)
	assert.Equal(t, KindNetwork, Classify(err))
}

func TestDispatcher_BadJSONResponse(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{not json`))
	}))
	defer srv.Close()

	d, _ := newTestDispatcher(t, srv.URL, "")
	var out map[string]any
	err := d.Do(context.Background(), http.MethodGet, "/auth/me", nil, nil, &out)
	require.ErrorContains(t, err, "decode GET /auth/me response")
}

func TestDispatcher_401WithTruncatedBodyStillRunsHooks(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, buf, err := w.(http.Hijacker).Hijack()
		if err != nil {
			return
		}
		defer conn.Close()
		_, _ = buf.WriteString("HTTP/1.1 401 Unauthorized\r\n" +
			"Content-Type: application/json\r\n" +
			"Content-Length: 100\r\n\r\n" +
			`{"detail":`)
		_ = buf.Flush()
	}))
	defer srv.Close()

	d, _ := newTestDispatcher(t, srv.URL, "stale")

	var fired atomic.Bool
	d.OnUnauthorized(func(context.Context) { fired.Store(true) })

	err := d.Do(context.Background(), http.MethodGet, "/auth/me", nil, nil, nil)

	require.ErrorIs(t, err, ErrUnauthorized)
	assert.True(t, fired.Load())
	assert.Equal(t, KindAuth, Classify(err))
	assert.NotErrorIs(t, err, ErrUnavailable)
}
