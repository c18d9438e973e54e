package transport

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/goborsa/borsa/internal/core"
)

func newTestClient() *Client {
	return New(Options{Timeout: 5 * time.Second, UserAgent: "borsa-test/1.0"}, nil)
}

func TestClient_GetJSON(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "borsa-test/1.0", r.Header.Get("User-Agent"))
		w.Write([]byte(`{"name":"AKBNK","price":57.25}`))
	}))
	defer srv.Close()

	var out struct {
		Name  string  `json:"name"`
		Price float64 `json:"price"`
	}
	err := newTestClient().GetJSON(context.Background(), srv.URL, nil, &out)
	require.NoError(t, err)
	assert.Equal(t, "AKBNK", out.Name)
	assert.Equal(t, 57.25, out.Price)
}

func TestClient_StatusMapping(t *testing.T) {
	tests := []struct {
		status int
		want   *core.Error
	}{
		{http.StatusTooManyRequests, core.ErrRateLimit},
		{http.StatusUnauthorized, core.ErrAuthentication},
		{http.StatusForbidden, core.ErrAuthentication},
		{http.StatusNotFound, core.ErrAPI},
		{http.StatusInternalServerError, core.ErrAPI},
	}
	for _, tc := range tests {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(tc.status)
		}))
		_, err := newTestClient().GetBytes(context.Background(), srv.URL, nil)
		srv.Close()

		require.Error(t, err, "status %d", tc.status)
		assert.True(t, errors.Is(err, tc.want), "status %d mapped to %v", tc.status, err)

		var e *core.Error
		if tc.want == core.ErrAPI && errors.As(err, &e) {
			assert.Equal(t, tc.status, e.Status)
		}
	}
}

func TestClient_NetworkErrorIsAPIError(t *testing.T) {
	// Closed server: connection refused.
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	srv.Close()

	_, err := newTestClient().GetBytes(context.Background(), srv.URL, nil)
	assert.True(t, errors.Is(err, core.ErrAPI))
}

func TestClient_MalformedJSON(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"broken`))
	}))
	defer srv.Close()

	var out map[string]any
	err := newTestClient().GetJSON(context.Background(), srv.URL, nil, &out)
	assert.True(t, errors.Is(err, core.ErrAPI))
}

func TestClient_PostForm(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, r.ParseForm())
		assert.Equal(t, "NNF", r.PostForm.Get("fonkod"))
		assert.Equal(t, "application/x-www-form-urlencoded", r.Header.Get("Content-Type"))
		w.Write([]byte(`ok`))
	}))
	defer srv.Close()

	body, err := newTestClient().PostForm(context.Background(), srv.URL, url.Values{"fonkod": {"NNF"}}, nil)
	require.NoError(t, err)
	assert.Equal(t, "ok", string(body))
}

func TestClient_ExtraHeaders(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "Bearer tok123", r.Header.Get("Authorization"))
		w.Write([]byte(`{}`))
	}))
	defer srv.Close()

	_, err := newTestClient().GetBytes(context.Background(), srv.URL, map[string]string{"Authorization": "Bearer tok123"})
	require.NoError(t, err)
}
