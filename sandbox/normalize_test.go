package sandbox

import (
	"math"
	"testing"

	"dida/dataset"
)

func TestNormalizeScalar(t *testing.T) {
	tests := []struct {
		name  string
		value interface{}
		want  interface{}
	}{
		{"float", 3.5, 3.5},
		{"int coerced", 42, int64(42)},
		{"uint coerced", uint8(7), int64(7)},
		{"float32 coerced", float32(2), 2.0},
		{"string", "hello", "hello"},
		{"bool", true, true},
		{"nan to nil", math.NaN(), nil},
		{"inf to nil", math.Inf(1), nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Normalize(tt.value)
			if got.Kind != KindScalar {
				t.Fatalf("Kind = %v, want scalar", got.Kind)
			}
			if got.Scalar != tt.want {
				t.Fatalf("Scalar = %v (%T), want %v (%T)", got.Scalar, got.Scalar, tt.want, tt.want)
			}
		})
	}
}

func TestNormalizeNil(t *testing.T) {
	if got := Normalize(nil); got.Kind != KindNone {
		t.Fatalf("Kind = %v, want none", got.Kind)
	}
}

func TestNormalizeTableCapsRows(t *testing.T) {
	values := make([]interface{}, 50)
	for i := range values {
		values[i] = float64(i)
	}
	values[3] = math.NaN()
	table, err := dataset.FromColumns([]*dataset.Series{dataset.NewSeries("v", values)})
	if err != nil {
		t.Fatalf("FromColumns failed: %v", err)
	}

	got := Normalize(table)
	if got.Kind != KindTable {
		t.Fatalf("Kind = %v, want table", got.Kind)
	}
	if len(got.Rows) != DefaultMaxRows {
		t.Fatalf("got %d rows, want %d", len(got.Rows), DefaultMaxRows)
	}
	if got.Rows[3]["v"] != nil {
		t.Fatalf("NaN cell survived normalization: %v", got.Rows[3]["v"])
	}
	if got.Rows[4]["v"] != 4.0 {
		t.Fatalf("finite cell mangled: %v", got.Rows[4]["v"])
	}
}

func TestNormalizeSeries(t *testing.T) {
	s := dataset.NewSeries("v", []interface{}{1.0, math.Inf(-1), "x"})
	got := Normalize(s)
	if got.Kind != KindSeries {
		t.Fatalf("Kind = %v, want series", got.Kind)
	}
	if len(got.Points) != 3 {
		t.Fatalf("got %d points, want 3", len(got.Points))
	}
	if got.Points[1].Value != nil {
		t.Fatalf("-Inf survived normalization: %v", got.Points[1].Value)
	}
	if got.Points[2].Value != "x" {
		t.Fatalf("string point mangled: %v", got.Points[2].Value)
	}
}
