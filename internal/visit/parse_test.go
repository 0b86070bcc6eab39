package visit

import (
	"errors"
	"testing"
)

// TestNormalizeDate tests the optional yyyy-MM-dd contract
func TestNormalizeDate(t *testing.T) {
	if v, err := normalizeDate(nil); err != nil || v != nil {
		t.Errorf("Expected nil for absent date, got %v, %v", v, err)
	}

	good := "2026-09-15"
	v, err := normalizeDate(&good)
	if err != nil {
		t.Fatalf("Expected no error, got: %v", err)
	}
	if v == nil || *v != "2026-09-15" {
		t.Errorf("Expected '2026-09-15', got %v", v)
	}

	// An empty string is a present, malformed value, not an absent one
	for _, bad := range []string{"", "15-09-2026", "2026/09/15", "2026-13-01", "not a date"} {
		s := bad
		if _, err := normalizeDate(&s); !errors.Is(err, ErrInvalidDate) {
			t.Errorf("Expected ErrInvalidDate for %q, got: %v", bad, err)
		}
	}
}

// TestNormalizeTime tests the optional HH:mm contract
func TestNormalizeTime(t *testing.T) {
	if v, err := normalizeTime(nil); err != nil || v != nil {
		t.Errorf("Expected nil for absent time, got %v, %v", v, err)
	}

	good := "09:30"
	v, err := normalizeTime(&good)
	if err != nil {
		t.Fatalf("Expected no error, got: %v", err)
	}
	if v == nil || *v != "09:30" {
		t.Errorf("Expected '09:30', got %v", v)
	}

	for _, bad := range []string{"", "9.30", "25:00", "10:61", "morning"} {
		s := bad
		if _, err := normalizeTime(&s); !errors.Is(err, ErrInvalidTime) {
			t.Errorf("Expected ErrInvalidTime for %q, got: %v", bad, err)
		}
	}
}

// TestWireID tests the -1 sentinel translation
func TestWireID(t *testing.T) {
	if got := wireID(nil); got != -1 {
		t.Errorf("Expected -1 for nil, got %d", got)
	}
	id := 7
	if got := wireID(&id); got != 7 {
		t.Errorf("Expected 7, got %d", got)
	}
	sentinel := -1
	if got := wireID(&sentinel); got != -1 {
		t.Errorf("Expected -1, got %d", got)
	}
}
