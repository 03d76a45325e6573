package accesswatch_test

import (
	"context"
	"crypto/md5"
	"encoding/hex"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/robotwatch/pkg/accesswatch"
)

func md5hex(s string) string {
	sum := md5.Sum([]byte(s))
	return hex.EncodeToString(sum[:])
}

type recordingCache struct {
	mu   sync.Mutex
	data map[string][]byte
}

func newRecordingCache() *recordingCache {
	return &recordingCache{data: map[string][]byte{}}
}

func (c *recordingCache) Get(_ context.Context, key string) ([]byte, bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	v, ok := c.data[key]
	return v, ok, nil
}

func (c *recordingCache) Set(_ context.Context, key string, val []byte) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.data[key] = val
	return nil
}

func (c *recordingCache) keys() []string {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]string, 0, len(c.data))
	for k := range c.data {
		out = append(out, k)
	}
	return out
}

func newTestServer(t *testing.T, calls *atomic.Int32) *httptest.Server {
	t.Helper()
	mux := http.NewServeMux()
	mux.HandleFunc("GET /1.1/address/{ip}", func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		assert.Equal(t, "secret", r.Header.Get("Api-Key"))
		assert.Equal(t, "application/json", r.Header.Get("Accept"))
		assert.Equal(t, "test-agent", r.Header.Get("User-Agent"))
		if r.PathValue("ip") == "0.0.0.0" {
			w.WriteHeader(http.StatusBadRequest)
			_, _ = w.Write([]byte(`{"code":400,"message":"invalid address"}`))
			return
		}
		_ = json.NewEncoder(w).Encode(map[string]any{
			"value": r.PathValue("ip"), "hostname": "", "country_code": "US", "flags": []string{"cloud"},
		})
	})
	mux.HandleFunc("POST /1.1/user-agent", func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		var body map[string]string
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		_ = json.NewEncoder(w).Encode(map[string]any{"value": body["value"], "type": "robot"})
	})
	mux.HandleFunc("POST /1.1/identity", func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		var body map[string]string
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		_ = json.NewEncoder(w).Encode(map[string]any{
			"type":       "robot",
			"address":    map[string]any{"value": body["address"]},
			"user_agent": map[string]any{"value": body["user_agent"]},
			"robot":      map[string]any{"id": 7, "name": "ExampleBot", "url": "https://access.watch/robots/ok/7"},
			"reputation": map[string]any{"status": "ok"},
		})
	})
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv
}

func newClient(t *testing.T, srv *httptest.Server, opts ...accesswatch.Option) *accesswatch.Client {
	t.Helper()
	opts = append([]accesswatch.Option{
		accesswatch.WithBaseURL(srv.URL + "/"),
		accesswatch.WithUserAgent("test-agent"),
	}, opts...)
	c, err := accesswatch.NewClient("secret", opts...)
	require.NoError(t, err)
	return c
}

func TestClient_Address(t *testing.T) {
	var calls atomic.Int32
	srv := newTestServer(t, &calls)
	c := newClient(t, srv)

	rec, err := c.Address(context.Background(), "203.0.113.5")
	require.NoError(t, err)
	assert.Equal(t, "203.0.113.5", rec.String("value"))
	assert.Equal(t, "US", rec.String("country_code"))
	assert.Equal(t, accesswatch.Record{
		"value": "203.0.113.5", "country_code": "US", "flags": []any{"cloud"},
	}, rec.Project(accesswatch.AddressKeys))
}

func TestClient_UserAgent(t *testing.T) {
	var calls atomic.Int32
	srv := newTestServer(t, &calls)
	c := newClient(t, srv)

	rec, err := c.UserAgent(context.Background(), "ExampleBot/1.0")
	require.NoError(t, err)
	assert.Equal(t, "ExampleBot/1.0", rec.String("value"))
	assert.Equal(t, "robot", rec.String("type"))
}

func TestClient_Identity(t *testing.T) {
	var calls atomic.Int32
	srv := newTestServer(t, &calls)
	c := newClient(t, srv)

	id, err := c.Identity(context.Background(), "203.0.113.5", "ExampleBot/1.0")
	require.NoError(t, err)
	assert.Equal(t, "robot", id.Type)
	assert.Equal(t, "203.0.113.5", id.Address.String("value"))
	assert.Equal(t, "ExampleBot", id.Robot.String("name"))
	assert.Equal(t, "ok", id.Reputation.String("status"))
}

func TestClient_APIError(t *testing.T) {
	var calls atomic.Int32
	srv := newTestServer(t, &calls)
	c := newClient(t, srv)

	_, err := c.Address(context.Background(), "0.0.0.0")
	require.Error(t, err)
	assert.ErrorIs(t, err, accesswatch.ErrRequestFailed)

	var apiErr *accesswatch.APIError
	require.True(t, errors.As(err, &apiErr))
	assert.Equal(t, http.StatusBadRequest, apiErr.Status)
	assert.Equal(t, "invalid address", apiErr.Message)
	assert.Contains(t, err.Error(), "invalid address")
}

func TestClient_NonJSONError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "upstream down", http.StatusBadGateway)
	}))
	defer srv.Close()
	c := newClient(t, srv)

	_, err := c.UserAgent(context.Background(), "x")
	var apiErr *accesswatch.APIError
	require.True(t, errors.As(err, &apiErr))
	assert.Equal(t, http.StatusBadGateway, apiErr.Status)
	assert.Equal(t, "Bad Gateway", apiErr.Message)
}

func TestClient_Cache(t *testing.T) {
	var calls atomic.Int32
	srv := newTestServer(t, &calls)
	cache := newRecordingCache()
	c := newClient(t, srv, accesswatch.WithCache(cache))
	ctx := context.Background()

	for range 3 {
		_, err := c.Address(ctx, "203.0.113.5")
		require.NoError(t, err)
		_, err = c.UserAgent(ctx, "ExampleBot/1.0")
		require.NoError(t, err)
		_, err = c.Identity(ctx, "203.0.113.5", "ExampleBot/1.0")
		require.NoError(t, err)
	}
	assert.Equal(t, int32(3), calls.Load())

	assert.ElementsMatch(t, []string{
		"ip-203.0.113.5",
		"ua-" + md5hex("ExampleBot/1.0"),
		"identity-" + md5hex("203.0.113.5") + "-" + md5hex("ExampleBot/1.0"),
	}, cache.keys())
}

func TestClient_ErrorsAreNotCached(t *testing.T) {
	var calls atomic.Int32
	srv := newTestServer(t, &calls)
	c := newClient(t, srv, accesswatch.WithCache(newRecordingCache()))

	for range 2 {
		_, err := c.Address(context.Background(), "0.0.0.0")
		require.Error(t, err)
	}
	assert.Equal(t, int32(2), calls.Load())
}

func TestClient_CollapsesConcurrentMisses(t *testing.T) {
	var calls atomic.Int32
	release := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		<-release
		_, _ = w.Write([]byte(`{"value":"203.0.113.5"}`))
	}))
	defer srv.Close()
	c := newClient(t, srv)

	var wg sync.WaitGroup
	for range 8 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			rec, err := c.Address(context.Background(), "203.0.113.5")
			assert.NoError(t, err)
			assert.Equal(t, "203.0.113.5", rec.String("value"))
		}()
	}
	time.Sleep(50 * time.Millisecond)
	close(release)
	wg.Wait()

	assert.GreaterOrEqual(t, calls.Load(), int32(1))
	assert.Less(t, calls.Load(), int32(8))
}

func TestNewClient_Validation(t *testing.T) {
	_, err := accesswatch.NewClient("")
	assert.ErrorIs(t, err, accesswatch.ErrMissingAPIKey)

	_, err = accesswatch.NewClient("", accesswatch.WithBaseURL("http://localhost:8080"))
	assert.NoError(t, err, "self-hosted servers may run without a key")

	_, err = accesswatch.NewClient("k", accesswatch.WithBaseURL("ftp://example.com"))
	assert.ErrorIs(t, err, accesswatch.ErrInvalidBaseURL)

	_, err = accesswatch.NewClient("k", accesswatch.WithBaseURL("not a url"))
	assert.ErrorIs(t, err, accesswatch.ErrInvalidBaseURL)
}
