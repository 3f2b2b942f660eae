package app_test

import (
	"context"
	"testing"
	"time"

	"cinerate/internal/app"
	"cinerate/internal/config"
	"cinerate/internal/testsupport"
)

func TestOpenStackResolvesThroughConfiguredServices(t *testing.T) {
	up := testsupport.NewUpstream(t, map[string]testsupport.Film{
		"the matrix": {IMDbID: "tt0133093", Title: "The Matrix", Year: 1999, Rating: "8.7", Votes: "2,100,000"},
	})
	cfg := testsupport.NewConfig(t,
		testsupport.WithUpstream(up),
		testsupport.WithCacheBackend(config.CacheBackendSQLite),
	)

	stack, err := app.OpenStack(cfg, nil)
	if err != nil {
		t.Fatalf("OpenStack: %v", err)
	}
	t.Cleanup(func() { _ = stack.Close() })

	result := stack.Gateway.GetRatings(context.Background(), "The Matrix (1999)")
	if result == nil || result.IMDbID != "tt0133093" {
		t.Fatalf("unexpected result %#v", result)
	}
	if result.IMDbURL != "https://www.imdb.com/title/tt0133093" {
		t.Fatalf("expected synthesized url, got %q", result.IMDbURL)
	}
	count, err := stack.Cache.Count(context.Background())
	if err != nil || count != 1 {
		t.Fatalf("Count = %d, %v", count, err)
	}
}

func TestServeStopsOnCancel(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	ctx, cancel := context.WithCancel(context.Background())

	done := make(chan error, 1)
	go func() {
		done <- app.Serve(ctx, cfg, nil)
	}()

	time.Sleep(100 * time.Millisecond)
	cancel()

	select {
	case err := <-done:
		if err != nil {
			t.Fatalf("Serve returned error: %v", err)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("Serve did not return after cancel")
	}
}
