package cache

import (
	"bytes"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/ngmaloney/reefcast/internal/observability"
)

// Transport serves GET requests from the store while fresh and records
// successful responses. Everything else passes straight through.
type Transport struct {
	Base    http.RoundTripper
	Store   *Store
	Source  string
	TTL     time.Duration
	Metrics *observability.Metrics // optional
	Logger  *slog.Logger           // optional
}

// NewClient returns an HTTP client whose responses for source are cached in store.
// A nil store yields a plain client.
func NewClient(store *Store, source string, timeout time.Duration, metrics *observability.Metrics, logger *slog.Logger) *http.Client {
	if store == nil {
		return &http.Client{Timeout: timeout}
	}
	return &http.Client{
		Timeout: timeout,
		Transport: &Transport{
			Store:   store,
			Source:  source,
			TTL:     TTL(source),
			Metrics: metrics,
			Logger:  logger,
		},
	}
}

func (t *Transport) base() http.RoundTripper {
	if t.Base != nil {
		return t.Base
	}
	return http.DefaultTransport
}

// RoundTrip implements http.RoundTripper
func (t *Transport) RoundTrip(req *http.Request) (*http.Response, error) {
	if req.Method != http.MethodGet {
		return t.base().RoundTrip(req)
	}

	url := req.URL.String()
	key := Key(url)

	entry, ok, err := t.Store.Get(key)
	if err != nil && t.Logger != nil {
		t.Logger.Warn("cache read failed", "source", t.Source, "error", err)
	}
	if ok {
		t.observe("hit")
		return cachedResponse(req, entry), nil
	}
	t.observe("miss")

	resp, err := t.base().RoundTrip(req)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode != http.StatusOK {
		return resp, nil
	}

	body, err := io.ReadAll(resp.Body)
	resp.Body.Close()
	if err != nil {
		return nil, fmt.Errorf("failed to read response body: %w", err)
	}
	resp.Body = io.NopCloser(bytes.NewReader(body))

	ttl := t.TTL
	if ttl <= 0 {
		ttl = TTL(t.Source)
	}
	if err := t.Store.Set(key, t.Source, url, body, resp.Header.Get("Content-Type"), ttl); err != nil && t.Logger != nil {
		t.Logger.Warn("cache write failed", "source", t.Source, "error", err)
	}
	return resp, nil
}

func (t *Transport) observe(result string) {
	if t.Metrics != nil {
		t.Metrics.CacheLookups.WithLabelValues(t.Source, result).Inc()
	}
}

func cachedResponse(req *http.Request, entry *Entry) *http.Response {
	header := make(http.Header)
	if entry.ContentType != "" {
		header.Set("Content-Type", entry.ContentType)
	}
	header.Set("X-Cache", "HIT")
	return &http.Response{
		Status:        "200 OK",
		StatusCode:    http.StatusOK,
		Proto:         "HTTP/1.1",
		ProtoMajor:    1,
		ProtoMinor:    1,
		Header:        header,
		Body:          io.NopCloser(bytes.NewReader(entry.Body)),
		ContentLength: int64(len(entry.Body)),
		Request:       req,
	}
}
