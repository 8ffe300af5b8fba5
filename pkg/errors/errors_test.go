package errors

import (
	"fmt"
	"net/http"
	"testing"
)

func TestWrapPreservesCause(t *testing.T) {
	t.Parallel()

	cause := fmt.Errorf("boom")
	err := Wrap(CodeDependency, cause, "loading catalog")

	if err.Unwrap() != cause {
		t.Fatalf("expected cause to be preserved")
	}
	if err.Code() != CodeDependency {
		t.Fatalf("unexpected code: %s", err.Code())
	}
}

func TestAsUnwrapsThroughChains(t *testing.T) {
	t.Parallel()

	inner := New(CodeNotFound, "package not found")
	wrapped := fmt.Errorf("outer: %w", inner)

	typed := As(wrapped)
	if typed == nil || typed.Code() != CodeNotFound {
		t.Fatalf("expected typed error, got %v", typed)
	}
}

func TestPackageNotFoundDetails(t *testing.T) {
	t.Parallel()

	err := PackageNotFound(42)
	if !HasCode(err, CodeNotFound) {
		t.Fatalf("expected not-found code")
	}
	details, ok := err.Details().(map[string]any)
	if !ok || details["ref_id"] != 42 {
		t.Fatalf("unexpected details: %#v", err.Details())
	}
}

func TestMetadataForUnknownCode(t *testing.T) {
	t.Parallel()

	meta := MetadataFor(Code("NOPE"))
	if meta.HTTPStatus != http.StatusInternalServerError {
		t.Fatalf("expected internal fallback, got %d", meta.HTTPStatus)
	}
}
