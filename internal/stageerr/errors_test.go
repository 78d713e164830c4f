package stageerr

import (
	"errors"
	"fmt"
	"strings"
	"testing"
)

func TestErrorMatchesSentinel(t *testing.T) {
	err := New("navigate", KindStructuralMismatch, "step %q", "module-table")
	if !errors.Is(err, ErrStructuralMismatch) {
		t.Fatalf("expected structural mismatch, got %v", err)
	}
	if errors.Is(err, ErrMalformedType) {
		t.Fatalf("unexpected match against malformed type")
	}
}

func TestErrorMatchesThroughWrapping(t *testing.T) {
	inner := New("chunk", KindNotFound, "id %s", "5308")
	outer := fmt.Errorf("run pipeline: %w", inner)
	if !errors.Is(outer, ErrNotFound) {
		t.Fatalf("expected not found through wrap")
	}
	kind, ok := KindOf(outer)
	if !ok || kind != KindNotFound {
		t.Fatalf("KindOf = %v, %v", kind, ok)
	}
}

func TestErrorMessageNamesStage(t *testing.T) {
	cause := errors.New("connection refused")
	err := Wrap("fetch", KindNetwork, cause, "GET %s", "https://example.test/")
	msg := err.Error()
	for _, want := range []string{"fetch", "network error", "GET https://example.test/", "connection refused"} {
		if !strings.Contains(msg, want) {
			t.Errorf("message %q missing %q", msg, want)
		}
	}
	if !errors.Is(err, cause) {
		t.Errorf("expected cause to be reachable")
	}
}

func TestKindOfPlainError(t *testing.T) {
	if _, ok := KindOf(errors.New("plain")); ok {
		t.Fatal("plain error should carry no kind")
	}
}
