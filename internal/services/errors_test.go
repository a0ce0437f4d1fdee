package services_test

import (
	"errors"
	"fmt"
	"strings"
	"testing"

	"altnames/internal/services"
)

func TestWrapIncludesContext(t *testing.T) {
	base := errors.New("boom")
	err := services.Wrap(services.ErrMaterialize, "materialize", "extract", "unzip failed", base)
	if err == nil {
		t.Fatal("expected error")
	}
	if !errors.Is(err, services.ErrMaterialize) {
		t.Fatalf("expected marker to be retained, got %v", err)
	}
	if !errors.Is(err, base) {
		t.Fatalf("expected wrapped error to contain base error, got %v", err)
	}
	msg := err.Error()
	for _, fragment := range []string{"materialize", "extract", "unzip failed"} {
		if !strings.Contains(msg, fragment) {
			t.Fatalf("expected %q in error string %q", fragment, msg)
		}
	}
}

func TestWrapWithoutFragments(t *testing.T) {
	err := services.Wrap(nil, "", "", "", nil)
	if !errors.Is(err, services.ErrExternalTool) {
		t.Fatalf("expected default marker, got %v", err)
	}
	if !strings.Contains(err.Error(), "refresh failure") {
		t.Fatalf("expected fallback detail, got %q", err.Error())
	}
}

func TestClassify(t *testing.T) {
	cases := []struct {
		name string
		err  error
		want services.Kind
	}{
		{"nil", nil, services.KindNone},
		{"token", services.Wrap(services.ErrTokenStore, "token", "read", "", errors.New("eio")), services.KindTokenStore},
		{"fetch", services.Wrap(services.ErrFetch, "fetch", "head", "", nil), services.KindFetch},
		{"materialize over tool", fmt.Errorf("outer: %w", services.Wrap(services.ErrMaterialize, "materialize", "download", "", services.ErrExternalTool)), services.KindMaterialize},
		{"transform", services.Wrap(services.ErrTransform, "transform", "parse", "", nil), services.KindTransform},
		{"lock", services.Wrap(services.ErrLocked, "refresh", "lock", "", nil), services.KindLock},
		{"preflight", services.Wrap(services.ErrPreflight, "preflight", "deps", "aria2", nil), services.KindPreflight},
		{"unknown", errors.New("plain"), services.KindUnknown},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := services.Classify(tc.err); got != tc.want {
				t.Fatalf("Classify() = %q, want %q", got, tc.want)
			}
		})
	}
}
