package idgen

import (
	"strings"
	"testing"
)

func TestNanoID_Length(t *testing.T) {
	for _, length := range []int{8, 12, 16} {
		gen := NanoID(length)
		id := gen()
		if len(id) != length {
			t.Fatalf("NanoID(%d): got length %d", length, len(id))
		}
	}
}

func TestNanoID_Alphabet(t *testing.T) {
	gen := NanoID(100)
	id := gen()
	for _, c := range id {
		if !((c >= '0' && c <= '9') || (c >= 'a' && c <= 'z')) {
			t.Fatalf("NanoID: unexpected character %q in %q", c, id)
		}
	}
}

func TestUUIDv7_Format(t *testing.T) {
	id := UUIDv7()()
	parts := strings.Split(id, "-")
	if len(parts) != 5 {
		t.Fatalf("UUIDv7: expected 5 parts, got %d in %q", len(parts), id)
	}
	if len(id) != 36 {
		t.Fatalf("UUIDv7: expected length 36, got %d", len(id))
	}
}

func TestUUIDv7_Uniqueness(t *testing.T) {
	gen := UUIDv7()
	seen := make(map[string]struct{}, 100)
	for i := 0; i < 100; i++ {
		id := gen()
		if _, ok := seen[id]; ok {
			t.Fatalf("UUIDv7: duplicate at iteration %d", i)
		}
		seen[id] = struct{}{}
	}
}

func TestPrefixed(t *testing.T) {
	gen := Prefixed("run_", NanoID(8))
	id := gen()
	if !strings.HasPrefix(id, "run_") {
		t.Fatalf("Prefixed: %q lacks prefix", id)
	}
	if len(id) != len("run_")+8 {
		t.Fatalf("Prefixed: unexpected length %d", len(id))
	}
}

func TestTimestamped(t *testing.T) {
	id := Timestamped(NanoID(6))()
	if !strings.Contains(id, "_") {
		t.Fatalf("Timestamped: %q lacks separator", id)
	}
	if len(id) != len("20060102T150405Z")+1+6 {
		t.Fatalf("Timestamped: unexpected length %d in %q", len(id), id)
	}
}
