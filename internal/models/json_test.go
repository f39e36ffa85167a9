package models

import (
	"reflect"
	"testing"
)

func TestEncodeDecodeStrings(t *testing.T) {
	cases := []struct {
		in   []string
		want string
	}{
		{nil, "[]"},
		{[]string{}, "[]"},
		{[]string{"bug"}, `["bug"]`},
		{[]string{"bug", "needs-qa"}, `["bug","needs-qa"]`},
	}
	for _, tc := range cases {
		if got := EncodeStrings(tc.in); got != tc.want {
			t.Errorf("EncodeStrings(%v) = %q, want %q", tc.in, got, tc.want)
		}
	}

	if got := DecodeStrings(`["a","b"]`); !reflect.DeepEqual(got, []string{"a", "b"}) {
		t.Errorf("DecodeStrings = %v", got)
	}
	if got := DecodeStrings(""); got != nil {
		t.Errorf("DecodeStrings(empty) = %v, want nil", got)
	}
	if got := DecodeStrings("null"); got != nil {
		t.Errorf("DecodeStrings(null) = %v, want nil", got)
	}
	if got := DecodeStrings("{broken"); got != nil {
		t.Errorf("DecodeStrings(garbage) = %v, want nil", got)
	}
}

func TestHasString(t *testing.T) {
	raw := `["bug","needs-qa"]`
	if !HasString(raw, "needs-qa") {
		t.Error("HasString missed an existing value")
	}
	if HasString(raw, "Needs-QA") {
		t.Error("HasString is case sensitive by contract; exact match only")
	}
	if HasString("[]", "bug") {
		t.Error("HasString matched in an empty array")
	}
}
