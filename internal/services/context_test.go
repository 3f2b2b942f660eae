package services_test

import (
	"context"
	"testing"

	"cinerate/internal/services"
)

func TestContextHelpers(t *testing.T) {
	ctx := context.Background()
	ctx = services.WithRequestID(ctx, "req-123")
	ctx = services.WithTitle(ctx, "The Matrix 1999")

	if rid, ok := services.RequestIDFromContext(ctx); !ok || rid != "req-123" {
		t.Fatalf("unexpected request id: %v %v", rid, ok)
	}
	if title, ok := services.TitleFromContext(ctx); !ok || title != "The Matrix 1999" {
		t.Fatalf("unexpected title: %v %v", title, ok)
	}
}

func TestBlankValuesPreserveContext(t *testing.T) {
	ctx := context.Background()
	ctx = services.WithTitle(ctx, "")
	ctx = services.WithRequestID(ctx, "")
	if _, ok := services.TitleFromContext(ctx); ok {
		t.Fatal("expected no title value")
	}
	if _, ok := services.RequestIDFromContext(ctx); ok {
		t.Fatal("expected no request id value")
	}
}
