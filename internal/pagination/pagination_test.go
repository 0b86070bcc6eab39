package pagination

import (
	"net/http/httptest"
	"testing"
)

// TestParseParams tests query string parsing with defaults and the cap
func TestParseParams(t *testing.T) {
	tests := []struct {
		name      string
		url       string
		wantPage  int
		wantLimit int
	}{
		{"defaults when absent", "/clinic/patients", DefaultPage, DefaultLimit},
		{"explicit values", "/clinic/patients?page=3&limit=10", 3, 10},
		{"limit capped", "/clinic/patients?limit=500", DefaultPage, MaxLimit},
		{"non-numeric falls back", "/clinic/patients?page=abc&limit=xyz", DefaultPage, DefaultLimit},
		{"non-positive falls back", "/clinic/patients?page=0&limit=-5", DefaultPage, DefaultLimit},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := httptest.NewRequest("GET", tt.url, nil)
			got := ParseParams(r)
			if got.Page != tt.wantPage {
				t.Errorf("Expected page %d, got %d", tt.wantPage, got.Page)
			}
			if got.Limit != tt.wantLimit {
				t.Errorf("Expected limit %d, got %d", tt.wantLimit, got.Limit)
			}
		})
	}
}

// TestCalculateMeta tests page metadata derivation
func TestCalculateMeta(t *testing.T) {
	p := Params{Page: 2, Limit: 5}
	meta := p.CalculateMeta(12)

	if meta.TotalPages != 3 {
		t.Errorf("Expected 3 total pages, got %d", meta.TotalPages)
	}
	if meta.TotalRecords != 12 {
		t.Errorf("Expected 12 total records, got %d", meta.TotalRecords)
	}
	if !meta.HasNext || !meta.HasPrevious {
		t.Errorf("Expected both neighbours for the middle page, got next=%v previous=%v", meta.HasNext, meta.HasPrevious)
	}

	empty := Params{Page: 1, Limit: 20}
	meta = empty.CalculateMeta(0)
	if meta.TotalPages != 1 {
		t.Errorf("Expected an empty result to report one page, got %d", meta.TotalPages)
	}
	if meta.HasNext || meta.HasPrevious {
		t.Error("Expected no neighbours for a single empty page")
	}
}

// TestCalculateOffset tests the page to SQL OFFSET conversion
func TestCalculateOffset(t *testing.T) {
	p := Params{Page: 3, Limit: 20}
	if got := p.CalculateOffset(); got != 40 {
		t.Errorf("Expected offset 40, got %d", got)
	}
	first := Params{Page: 1, Limit: 20}
	if got := first.CalculateOffset(); got != 0 {
		t.Errorf("Expected offset 0 for the first page, got %d", got)
	}
}
