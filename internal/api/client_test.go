package api

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeEnvelope(w http.ResponseWriter, status, code int, data any, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	raw, _ := json.Marshal(data)
	_ = json.NewEncoder(w).Encode(map[string]any{
		"code":    code,
		"data":    json.RawMessage(raw),
		"message": message,
	})
}

func TestCallAttachesBearerToken(t *testing.T) {
	var got string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got = r.Header.Get("Authorization")
		writeEnvelope(w, http.StatusOK, 200, map[string]string{"id": "p1"}, "ok")
	}))
	defer srv.Close()

	c, err := NewClient(srv.URL)
	require.NoError(t, err)
	c.SetAccessToken("tok-123")

	var out struct {
		ID string `json:"id"`
	}
	require.NoError(t, c.get(context.Background(), "/products/p1", &out))
	assert.Equal(t, "Bearer tok-123", got)
	assert.Equal(t, "p1", out.ID)
}

func TestCallRefreshesOnceAndRetries(t *testing.T) {
	var refreshes, calls int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/auth/refresh":
			atomic.AddInt32(&refreshes, 1)
			writeEnvelope(w, http.StatusOK, 200, map[string]string{"accessToken": "fresh"}, "ok")
		default:
			atomic.AddInt32(&calls, 1)
			if r.Header.Get("Authorization") != "Bearer fresh" {
				writeEnvelope(w, http.StatusUnauthorized, 401, nil, "token expired")
				return
			}
			writeEnvelope(w, http.StatusOK, 200, []any{}, "ok")
		}
	}))
	defer srv.Close()

	c, err := NewClient(srv.URL)
	require.NoError(t, err)
	c.SetAccessToken("stale")

	_, err = c.ListAddresses(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int32(1), atomic.LoadInt32(&refreshes))
	assert.Equal(t, int32(2), atomic.LoadInt32(&calls), "original call plus exactly one retry")
	assert.Equal(t, "fresh", c.AccessToken())
}

func TestCallNoRefreshWithoutToken(t *testing.T) {
	var refreshes int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/auth/refresh" {
			atomic.AddInt32(&refreshes, 1)
		}
		writeEnvelope(w, http.StatusUnauthorized, 401, nil, "login required")
	}))
	defer srv.Close()

	c, err := NewClient(srv.URL)
	require.NoError(t, err)

	_, err = c.ListAddresses(context.Background())
	require.Error(t, err)
	assert.True(t, IsUnauthorized(err))
	assert.Equal(t, int32(0), atomic.LoadInt32(&refreshes), "anonymous 401 must not trigger refresh")
}

func TestRefreshFailureSurfacesSessionExpired(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/auth/refresh" {
			writeEnvelope(w, http.StatusUnauthorized, 401, nil, "refresh token invalid")
			return
		}
		writeEnvelope(w, http.StatusUnauthorized, 401, nil, "token expired")
	}))
	defer srv.Close()

	c, err := NewClient(srv.URL)
	require.NoError(t, err)
	c.SetAccessToken("stale")

	_, err = c.ListAddresses(context.Background())
	require.Error(t, err)
	assert.True(t, IsSessionExpired(err))
	assert.Equal(t, "Session expired. Please login again.", Message(err))
	assert.Empty(t, c.AccessToken(), "failed refresh must clear the token")
}

// Issuing many concurrent calls that all hit an expired token must produce
// exactly one refresh request, with every caller resolving on that shared
// outcome.
func TestConcurrent401sShareOneRefresh(t *testing.T) {
	const workers = 8

	var refreshes int32
	arrived := make(chan struct{}, workers)
	release := make(chan struct{})

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/auth/refresh":
			atomic.AddInt32(&refreshes, 1)
			time.Sleep(50 * time.Millisecond) // hold the flight open for stragglers
			writeEnvelope(w, http.StatusOK, 200, map[string]string{"accessToken": "fresh"}, "ok")
		default:
			if r.Header.Get("Authorization") == "Bearer fresh" {
				writeEnvelope(w, http.StatusOK, 200, []any{}, "ok")
				return
			}
			// Hold every stale call until all workers are in flight, then
			// fail them together.
			arrived <- struct{}{}
			<-release
			writeEnvelope(w, http.StatusUnauthorized, 401, nil, "token expired")
		}
	}))
	defer srv.Close()

	c, err := NewClient(srv.URL)
	require.NoError(t, err)
	c.SetAccessToken("stale")

	var wg sync.WaitGroup
	errs := make([]error, workers)
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, errs[i] = c.ListAddresses(context.Background())
		}(i)
	}

	for i := 0; i < workers; i++ {
		<-arrived
	}
	close(release)
	wg.Wait()

	for i, err := range errs {
		assert.NoError(t, err, "worker %d", i)
	}
	assert.Equal(t, int32(1), atomic.LoadInt32(&refreshes), "expected a single shared refresh")
}

func TestDomainFailureSurfacesBackendMessage(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		writeEnvelope(w, http.StatusUnprocessableEntity, 422, nil, "Size M is out of stock")
	}))
	defer srv.Close()

	c, err := NewClient(srv.URL)
	require.NoError(t, err)

	_, err = c.CreateOrder(context.Background(), CreateOrderRequest{})
	require.Error(t, err)
	assert.False(t, IsUnauthorized(err))
	assert.Equal(t, "Size M is out of stock", Message(err))
}

func TestTransportFailureMapsToGenericMessage(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	srv.Close() // connection refused from here on

	c, err := NewClient(srv.URL)
	require.NoError(t, err)

	_, err = c.FeaturedProducts(context.Background())
	require.Error(t, err)
	assert.Equal(t, genericFailureMessage, Message(err))
}

func TestMalformedEnvelopeMapsToGenericMessage(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
		_, _ = w.Write([]byte("<html>upstream timeout</html>"))
	}))
	defer srv.Close()

	c, err := NewClient(srv.URL)
	require.NoError(t, err)

	_, err = c.FeaturedProducts(context.Background())
	require.Error(t, err)
	var ae *Error
	require.ErrorAs(t, err, &ae)
	assert.Equal(t, http.StatusBadGateway, ae.Code)
	assert.Equal(t, genericFailureMessage, Message(err))
}

func TestEnvelopeCode201IsSuccess(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		writeEnvelope(w, http.StatusCreated, 201, map[string]any{
			"user":   map[string]string{"id": "u1", "role": "user"},
			"tokens": map[string]string{"accessToken": "tok"},
		}, "created")
	}))
	defer srv.Close()

	c, err := NewClient(srv.URL)
	require.NoError(t, err)

	res, err := c.Register(context.Background(), RegisterRequest{Name: "A"})
	require.NoError(t, err)
	assert.Equal(t, "u1", res.User.ID)
	assert.Equal(t, "tok", res.Tokens.AccessToken)
}
