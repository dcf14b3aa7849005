package dataset

import (
	"math"
	"testing"
)

func TestSeriesStats(t *testing.T) {
	s := NewSeries("v", []interface{}{2.0, 4.0, nil, 6.0, 8.0})

	if got := s.Mean(); got != 5.0 {
		t.Fatalf("Mean() = %v, want 5", got)
	}
	if got := s.Min(); got != 2.0 {
		t.Fatalf("Min() = %v, want 2", got)
	}
	if got := s.Max(); got != 8.0 {
		t.Fatalf("Max() = %v, want 8", got)
	}
	if got := s.Median(); got != 5.0 {
		t.Fatalf("Median() = %v, want 5", got)
	}
	if got := s.Sum(); got != 20.0 {
		t.Fatalf("Sum() = %v, want 20", got)
	}
	if got := s.Std(); math.Abs(got-2.581988897) > 1e-6 {
		t.Fatalf("Std() = %v, want ~2.582", got)
	}
}

func TestValueCounts(t *testing.T) {
	s := NewSeries("c", []interface{}{"a", "b", "a", "c", "a", "b", nil})
	counts := s.ValueCounts()
	if len(counts) != 3 {
		t.Fatalf("expected 3 distinct values, got %d", len(counts))
	}
	if counts[0].Value != "a" || counts[0].Count != 3 {
		t.Fatalf("expected a:3 first, got %v:%d", counts[0].Value, counts[0].Count)
	}
}

func TestSanitizeCell(t *testing.T) {
	if SanitizeCell(math.NaN()) != nil {
		t.Fatal("NaN should sanitize to nil")
	}
	if SanitizeCell(math.Inf(1)) != nil || SanitizeCell(math.Inf(-1)) != nil {
		t.Fatal("infinities should sanitize to nil")
	}
	if SanitizeCell(3.5) != 3.5 {
		t.Fatal("finite value should pass through")
	}
	if SanitizeCell("x") != "x" {
		t.Fatal("string should pass through")
	}
}
