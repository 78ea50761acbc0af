package http

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClient_GetSendsHeaders(t *testing.T) {
	var gotKey, gotAccept string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotKey = r.Header.Get("X-API-Key")
		gotAccept = r.Header.Get("Accept")
		w.WriteHeader(http.StatusTeapot)
		_, _ = w.Write([]byte(`{"ok":true}`))
	}))
	defer srv.Close()

	c := NewClient(time.Second, WithHeader("X-API-Key", "secret"))
	status, body, err := c.Get(context.Background(), srv.URL)

	require.NoError(t, err)
	assert.Equal(t, http.StatusTeapot, status)
	assert.JSONEq(t, `{"ok":true}`, string(body))
	assert.Equal(t, "secret", gotKey)
	assert.Equal(t, "application/json", gotAccept)
}

func TestClient_EmptyHeaderIsSkipped(t *testing.T) {
	c := NewClient(time.Second, WithHeader("X-API-Key", ""))
	assert.Empty(t, c.headers)
}

func TestClient_RateLimitHonoursContext(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	c := NewClient(time.Second, WithRateLimit(1, 1))

	_, _, err := c.Get(context.Background(), srv.URL)
	require.NoError(t, err)

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()
	_, _, err = c.Get(ctx, srv.URL)
	assert.ErrorContains(t, err, "rate limit wait")
}

func TestWithRateLimit_NonPositiveIsUnlimited(t *testing.T) {
	assert.Nil(t, NewClient(time.Second, WithRateLimit(0, 5)).limiter)
	assert.NotNil(t, NewClient(time.Second, WithRateLimit(60, 0)).limiter)
}
