package services_test

import (
	"errors"
	"strings"
	"testing"

	"cinerate/internal/services"
)

func TestWrapIncludesContext(t *testing.T) {
	base := errors.New("boom")
	err := services.Wrap(services.ErrStatus, "imdbot", "search", "returned 503", base)
	if err == nil {
		t.Fatal("expected error")
	}
	if !errors.Is(err, services.ErrStatus) {
		t.Fatalf("expected marker to be retained, got %v", err)
	}
	if !errors.Is(err, base) {
		t.Fatalf("expected wrapped error to contain base error, got %v", err)
	}
	msg := err.Error()
	for _, fragment := range []string{"imdbot", "search", "returned 503"} {
		if !strings.Contains(msg, fragment) {
			t.Fatalf("expected %q in error string %q", fragment, msg)
		}
	}
}

func TestWrapDefaultsMarker(t *testing.T) {
	err := services.Wrap(nil, "", "", "", nil)
	if !errors.Is(err, services.ErrTransport) {
		t.Fatalf("expected transport marker by default, got %v", err)
	}
	if !strings.Contains(err.Error(), "service failure") {
		t.Fatalf("expected placeholder detail, got %q", err.Error())
	}
}

func TestKindMapping(t *testing.T) {
	cases := map[string]error{
		"transport": services.Wrap(services.ErrTransport, "omdb", "fetch", "", errors.New("dial")),
		"status":    services.Wrap(services.ErrStatus, "omdb", "fetch", "", nil),
		"decode":    services.Wrap(services.ErrDecode, "imdbot", "search", "", nil),
		"storage":   services.Wrap(services.ErrStorage, "ratingcache", "get", "", nil),
		"not_found": services.Wrap(services.ErrNotFound, "omdb", "fetch", "", nil),
		"unknown":   errors.New("plain"),
	}
	for want, err := range cases {
		if got := services.Kind(err); got != want {
			t.Fatalf("Kind(%v) = %q, want %q", err, got, want)
		}
	}
	if got := services.Kind(nil); got != "" {
		t.Fatalf("expected empty kind for nil, got %q", got)
	}
}
