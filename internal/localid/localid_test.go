package localid

import (
	"testing"
	"time"
)

func TestNewShape(t *testing.T) {
	id := New()

	if !IsValid(id) {
		t.Errorf("Expected valid local id, got %q", id)
	}
}

func TestNewUnique(t *testing.T) {
	seen := make(map[string]bool)
	for i := 0; i < 1000; i++ {
		id := New()
		if seen[id] {
			t.Fatalf("Duplicate local id generated: %s", id)
		}
		seen[id] = true
	}
}

func TestAtOrdering(t *testing.T) {
	earlier := At(time.UnixMilli(1700000000000))
	later := At(time.UnixMilli(1700000000001))

	if earlier >= later {
		t.Errorf("Expected %s < %s", earlier, later)
	}
}

func TestIsValid(t *testing.T) {
	cases := []struct {
		id    string
		valid bool
	}{
		{"1700000000000-12ab34cd", true},
		{"0000000000001-00000000", true},
		{"1700000000000-12AB34CD", false}, // uppercase hex
		{"170000000000-12ab34cd", false},  // short timestamp
		{"1700000000000-12ab34c", false},  // short suffix
		{"1700000000000_12ab34cd", false}, // wrong separator
		{"", false},
	}

	for _, tc := range cases {
		if got := IsValid(tc.id); got != tc.valid {
			t.Errorf("IsValid(%q) = %v, want %v", tc.id, got, tc.valid)
		}
	}
}

func TestValidate(t *testing.T) {
	if err := Validate(New()); err != nil {
		t.Errorf("Expected generated id to validate, got %v", err)
	}
	if err := Validate("not-an-id"); err == nil {
		t.Error("Expected error for malformed id")
	}
}

func TestTimestampRoundTrip(t *testing.T) {
	at := time.UnixMilli(1700000000123)
	id := At(at)

	got, err := Timestamp(id)
	if err != nil {
		t.Fatalf("Timestamp failed: %v", err)
	}
	if !got.Equal(at) {
		t.Errorf("Expected %v, got %v", at, got)
	}
}

func TestTimestampRejectsMalformed(t *testing.T) {
	if _, err := Timestamp("garbage"); err == nil {
		t.Error("Expected error for malformed id")
	}
}
