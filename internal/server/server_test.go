package server

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"cinerate/internal/api"
	"cinerate/internal/ratings"
	"cinerate/internal/services"
	"cinerate/internal/testsupport"
)

type ratingsStub struct {
	mu     sync.Mutex
	titles []string
	ids    []string
	result *ratings.Result
}

func (r *ratingsStub) GetRatings(ctx context.Context, raw string) *ratings.Result {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.titles = append(r.titles, raw)
	if id, ok := services.RequestIDFromContext(ctx); ok {
		r.ids = append(r.ids, id)
	}
	return r.result
}

type cacheStub struct {
	count    int
	countErr error
	evicted  chan struct{}
}

func (c *cacheStub) EvictExpired(context.Context) (int, error) {
	if c.evicted != nil {
		close(c.evicted)
	}
	return 2, nil
}

func (c *cacheStub) Count(context.Context) (int, error) { return c.count, c.countErr }

func newTestServer(t *testing.T, result *ratings.Result) (*Server, *ratingsStub) {
	t.Helper()
	stub := &ratingsStub{result: result}
	srv, err := New(testsupport.NewConfig(t), stub, &cacheStub{count: 3}, nil)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	return srv, stub
}

func matrixResult() *ratings.Result {
	return &ratings.Result{
		IMDbID:     "tt0133093",
		IMDbURL:    "https://www.imdb.com/title/tt0133093/",
		IMDbRating: ratings.Optional("8.7"),
	}
}

func TestHandleMessageReturnsResult(t *testing.T) {
	srv, stub := newTestServer(t, matrixResult())

	body := strings.NewReader(`{"type":"GET_RATINGS","movieTitle":"The Matrix 1999"}`)
	req := httptest.NewRequest(http.MethodPost, "/api/messages", body)
	w := httptest.NewRecorder()
	srv.Handler().ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200 OK, got %d: %s", w.Code, w.Body.String())
	}
	var payload map[string]any
	if err := json.Unmarshal(w.Body.Bytes(), &payload); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if payload["imdbId"] != "tt0133093" || payload["imdbRating"] != "8.7" {
		t.Fatalf("unexpected payload %v", payload)
	}
	if v, ok := payload["imdbVotes"]; !ok || v != nil {
		t.Fatalf("expected explicit null imdbVotes, got %v (present=%v)", v, ok)
	}
	if len(stub.titles) != 1 || stub.titles[0] != "The Matrix 1999" {
		t.Fatalf("unexpected titles %q", stub.titles)
	}
	id := w.Header().Get(RequestIDHeader)
	if id == "" || len(stub.ids) != 1 || stub.ids[0] != id {
		t.Fatalf("request id not propagated: header=%q ctx=%q", id, stub.ids)
	}
	if w.Header().Get("Access-Control-Allow-Origin") != "*" {
		t.Fatal("missing CORS header")
	}
}

func TestHandleMessageNullResult(t *testing.T) {
	srv, _ := newTestServer(t, nil)

	req := httptest.NewRequest(http.MethodPost, "/api/messages", strings.NewReader(`{"type":"GET_RATINGS","movieTitle":"Unknown"}`))
	w := httptest.NewRecorder()
	srv.Handler().ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200 OK, got %d", w.Code)
	}
	if got := strings.TrimSpace(w.Body.String()); got != "null" {
		t.Fatalf("expected null body, got %q", got)
	}
}

func TestHandleMessageRejectsBadInput(t *testing.T) {
	srv, stub := newTestServer(t, nil)
	cases := map[string]string{
		"unknown type": `{"type":"SET_RATINGS","movieTitle":"x"}`,
		"bad json":     `{"type":`,
		"empty":        ``,
	}
	for name, body := range cases {
		t.Run(name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodPost, "/api/messages", strings.NewReader(body))
			w := httptest.NewRecorder()
			srv.Handler().ServeHTTP(w, req)
			if w.Code != http.StatusBadRequest {
				t.Fatalf("expected 400, got %d", w.Code)
			}
			var resp api.ErrorResponse
			if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil || resp.Error == "" {
				t.Fatalf("expected error payload, got %q", w.Body.String())
			}
		})
	}
	if len(stub.titles) != 0 {
		t.Fatalf("gateway should not be called, got %q", stub.titles)
	}
}

func TestHandleRatingsQuery(t *testing.T) {
	srv, stub := newTestServer(t, matrixResult())

	req := httptest.NewRequest(http.MethodGet, "/api/ratings?title=The+Matrix", nil)
	req.Header.Set(RequestIDHeader, "abc-123")
	w := httptest.NewRecorder()
	srv.Handler().ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200 OK, got %d", w.Code)
	}
	if w.Header().Get(RequestIDHeader) != "abc-123" {
		t.Fatalf("expected caller request id to be echoed, got %q", w.Header().Get(RequestIDHeader))
	}
	if len(stub.titles) != 1 || stub.titles[0] != "The Matrix" {
		t.Fatalf("unexpected titles %q", stub.titles)
	}
}

func TestMethodNotAllowed(t *testing.T) {
	srv, _ := newTestServer(t, nil)
	for _, tc := range []struct{ method, path string }{
		{http.MethodGet, "/api/messages"},
		{http.MethodPost, "/api/ratings"},
		{http.MethodDelete, "/api/status"},
	} {
		req := httptest.NewRequest(tc.method, tc.path, nil)
		w := httptest.NewRecorder()
		srv.Handler().ServeHTTP(w, req)
		if w.Code != http.StatusMethodNotAllowed {
			t.Fatalf("%s %s: expected 405, got %d", tc.method, tc.path, w.Code)
		}
	}
}

func TestPreflight(t *testing.T) {
	srv, _ := newTestServer(t, nil)
	req := httptest.NewRequest(http.MethodOptions, "/api/messages", nil)
	w := httptest.NewRecorder()
	srv.Handler().ServeHTTP(w, req)
	if w.Code != http.StatusNoContent {
		t.Fatalf("expected 204, got %d", w.Code)
	}
	if !strings.Contains(w.Header().Get("Access-Control-Allow-Methods"), "POST") {
		t.Fatalf("unexpected allow methods %q", w.Header().Get("Access-Control-Allow-Methods"))
	}
}

func TestHandleStatus(t *testing.T) {
	stub := &ratingsStub{}
	cache := &cacheStub{count: 7}
	srv, err := New(testsupport.NewConfig(t), stub, cache, nil)
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	req := httptest.NewRequest(http.MethodGet, "/api/status", nil)
	w := httptest.NewRecorder()
	srv.Handler().ServeHTTP(w, req)

	var resp api.StatusResponse
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if resp.Running || resp.CacheBackend != "memory" || resp.CacheEntries != 7 {
		t.Fatalf("unexpected status %#v", resp)
	}

	cache.countErr = errors.New("boom")
	w = httptest.NewRecorder()
	srv.Handler().ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/status", nil))
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200 even when count fails, got %d", w.Code)
	}
}

func TestStartRunsSweepAndHoldsLock(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	cache := &cacheStub{evicted: make(chan struct{})}
	srv, err := New(cfg, &ratingsStub{result: matrixResult()}, cache, nil)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)

	if err := srv.Start(ctx); err != nil {
		t.Fatalf("Start: %v", err)
	}
	t.Cleanup(srv.Stop)

	select {
	case <-srv.SweepDone():
	case <-time.After(5 * time.Second):
		t.Fatal("startup sweep did not finish")
	}

	resp, err := http.Get("http://" + srv.Addr() + "/api/status")
	if err != nil {
		t.Fatalf("GET status: %v", err)
	}
	defer resp.Body.Close()
	var status api.StatusResponse
	if err := json.NewDecoder(resp.Body).Decode(&status); err != nil {
		t.Fatalf("decode status: %v", err)
	}
	if !status.Running {
		t.Fatal("expected running status")
	}

	second, err := New(cfg, &ratingsStub{}, &cacheStub{}, nil)
	if err != nil {
		t.Fatalf("New second: %v", err)
	}
	if err := second.Start(ctx); err == nil {
		second.Stop()
		t.Fatal("expected second server to fail acquiring the lock")
	}

	srv.Stop()
	if srv.Running() {
		t.Fatal("expected server to be stopped")
	}
}
