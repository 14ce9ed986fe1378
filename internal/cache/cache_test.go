package cache

import (
	"io"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/ngmaloney/reefcast/internal/database"
	"github.com/ngmaloney/reefcast/internal/observability"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newStore(t *testing.T) (*Store, *clockwork.FakeClock) {
	t.Helper()
	db, err := database.Open(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	clock := clockwork.NewFakeClockAt(time.Date(2025, 7, 4, 6, 0, 0, 0, time.UTC))
	return NewStore(db).WithClock(clock), clock
}

func TestTTL(t *testing.T) {
	assert.Equal(t, 10*time.Minute, TTL(SourceBuoy))
	assert.Equal(t, time.Hour, TTL(SourceTides))
	assert.Equal(t, 30*time.Minute, TTL(SourceNWS))
	assert.Equal(t, 5*time.Minute, TTL(SourceAlerts))
	assert.Equal(t, 15*time.Minute, TTL(SourceUSGS))
	assert.Equal(t, time.Hour, TTL(SourcePacIOOS))
	assert.Equal(t, 30*time.Minute, TTL(SourceCWB))
	assert.Equal(t, 10*time.Minute, TTL("unknown"))
}

func TestKey(t *testing.T) {
	a := Key("https://example.test/a")
	assert.Len(t, a, 64)
	assert.Equal(t, a, Key("https://example.test/a"))
	assert.NotEqual(t, a, Key("https://example.test/b"))
}

func TestStore_Expiry(t *testing.T) {
	store, clock := newStore(t)

	require.NoError(t, store.Set("k", SourceBuoy, "u", []byte("body"), "text/plain", 10*time.Minute))

	entry, ok, err := store.Get("k")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "body", string(entry.Body))
	assert.Equal(t, "text/plain", entry.ContentType)

	clock.Advance(9 * time.Minute)
	_, ok, _ = store.Get("k")
	assert.True(t, ok)

	clock.Advance(time.Minute)
	_, ok, err = store.Get("k")
	require.NoError(t, err)
	assert.False(t, ok)

	n, err := store.Purge()
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)
}

func TestStore_Overwrite(t *testing.T) {
	store, _ := newStore(t)

	require.NoError(t, store.Set("k", SourceNWS, "u", []byte("one"), "", time.Minute))
	require.NoError(t, store.Set("k", SourceNWS, "u", []byte("two"), "", time.Minute))

	entry, ok, err := store.Get("k")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "two", string(entry.Body))
}

func TestStore_Clear(t *testing.T) {
	store, _ := newStore(t)

	require.NoError(t, store.Set("a", SourceBuoy, "u1", []byte("a"), "", time.Hour))
	require.NoError(t, store.Set("b", SourceTides, "u2", []byte("b"), "", time.Hour))

	require.NoError(t, store.Clear(SourceBuoy))
	_, ok, _ := store.Get("a")
	assert.False(t, ok)
	_, ok, _ = store.Get("b")
	assert.True(t, ok)

	require.NoError(t, store.Clear(""))
	_, ok, _ = store.Get("b")
	assert.False(t, ok)
}

func TestTransport_CachesSuccessfulGets(t *testing.T) {
	var calls atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"ok":true}`))
	}))
	defer server.Close()

	store, clock := newStore(t)
	metrics := observability.NewMetricsForTesting()
	client := NewClient(store, SourceAlerts, 5*time.Second, metrics, nil)

	for i := 0; i < 3; i++ {
		resp, err := client.Get(server.URL + "/alerts")
		require.NoError(t, err)
		body, _ := io.ReadAll(resp.Body)
		resp.Body.Close()
		assert.Equal(t, `{"ok":true}`, string(body))
		assert.Equal(t, "application/json", resp.Header.Get("Content-Type"))
	}
	assert.Equal(t, int32(1), calls.Load())
	assert.Equal(t, 2.0, testutil.ToFloat64(metrics.CacheLookups.WithLabelValues(SourceAlerts, "hit")))
	assert.Equal(t, 1.0, testutil.ToFloat64(metrics.CacheLookups.WithLabelValues(SourceAlerts, "miss")))

	clock.Advance(6 * time.Minute)
	resp, err := client.Get(server.URL + "/alerts")
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, int32(2), calls.Load())
}

func TestTransport_DoesNotCacheErrors(t *testing.T) {
	var calls atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer server.Close()

	store, _ := newStore(t)
	client := NewClient(store, SourceUSGS, 5*time.Second, nil, nil)

	for i := 0; i < 2; i++ {
		resp, err := client.Get(server.URL)
		require.NoError(t, err)
		resp.Body.Close()
		assert.Equal(t, http.StatusServiceUnavailable, resp.StatusCode)
	}
	assert.Equal(t, int32(2), calls.Load())
}

func TestNewClient_NilStore(t *testing.T) {
	client := NewClient(nil, SourceBuoy, 3*time.Second, nil, nil)
	assert.Nil(t, client.Transport)
	assert.Equal(t, 3*time.Second, client.Timeout)
}
