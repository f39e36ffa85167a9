package apperr

import (
	"errors"
	"fmt"
	"testing"
)

func TestKindOf_Direct(t *testing.T) {
	err := New(KindWIPLimitReached, "column is full")
	if got := KindOf(err); got != KindWIPLimitReached {
		t.Errorf("KindOf = %q, want %q", got, KindWIPLimitReached)
	}
}

func TestKindOf_WrappedChain(t *testing.T) {
	inner := New(KindNotFound, "issue not found")
	err := fmt.Errorf("handler: %w", inner)
	if got := KindOf(err); got != KindNotFound {
		t.Errorf("KindOf through fmt.Errorf = %q, want %q", got, KindNotFound)
	}
}

func TestKindOf_UnknownError(t *testing.T) {
	if got := KindOf(errors.New("disk on fire")); got != KindUnavailable {
		t.Errorf("KindOf = %q, want %q", got, KindUnavailable)
	}
}

func TestWrap_PreservesCause(t *testing.T) {
	cause := errors.New("duplicate entry")
	err := Wrap(KindKeyTaken, cause, "key %q already exists", "CRM")
	if !errors.Is(err, cause) {
		t.Error("wrapped cause lost from chain")
	}
	if got := err.Error(); got != `key_taken: key "CRM" already exists: duplicate entry` {
		t.Errorf("Error() = %q", got)
	}
}

func TestWithField(t *testing.T) {
	err := New(KindInvalidPayload, "bad title").
		WithField("title", "required").
		WithField("type", "enum")
	if err.Fields["title"] != "required" {
		t.Errorf(`Fields["title"] = %q, want "required"`, err.Fields["title"])
	}
	if err.Fields["type"] != "enum" {
		t.Errorf(`Fields["type"] = %q, want "enum"`, err.Fields["type"])
	}
}

func TestIsKind(t *testing.T) {
	err := New(KindOwnerOnly, "owner only")
	if !IsKind(err, KindOwnerOnly) {
		t.Error("IsKind = false, want true")
	}
	if IsKind(err, KindForbidden) {
		t.Error("IsKind matched the wrong kind")
	}
	if IsKind(nil, KindUnavailable) {
		t.Error("IsKind(nil) = true, want false")
	}
}
