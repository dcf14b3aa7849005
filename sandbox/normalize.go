package sandbox

import (
	"math"
	"reflect"
	"time"

	"dida/dataset"
)

// ResultKind tags the shape of a normalized result.
type ResultKind string

const (
	KindNone   ResultKind = "none"
	KindScalar ResultKind = "scalar"
	KindTable  ResultKind = "table"
	KindSeries ResultKind = "series"
)

// DefaultMaxRows caps table and series results for transport.
const DefaultMaxRows = 20

// IndexValue is one point of a normalized series result.
type IndexValue struct {
	Index interface{} `json:"index"`
	Value interface{} `json:"value"`
}

// NormalizedResult is a transport-safe rendering of a captured sandbox
// value: exactly one of Scalar, Rows, or Points is populated according to
// Kind, and no cell contains NaN, an infinity, or a non-plain numeric type.
type NormalizedResult struct {
	Kind   ResultKind               `json:"kind"`
	Scalar interface{}              `json:"scalar,omitempty"`
	Rows   []map[string]interface{} `json:"rows,omitempty"`
	Points []IndexValue             `json:"points,omitempty"`
}

// Normalize shapes a raw captured value for transport, dispatching on its
// runtime shape: table, series, or scalar.
func Normalize(value interface{}) *NormalizedResult {
	return NormalizeN(value, DefaultMaxRows)
}

// NormalizeN is Normalize with an explicit row cap.
func NormalizeN(value interface{}, maxRows int) *NormalizedResult {
	switch v := value.(type) {
	case nil:
		return &NormalizedResult{Kind: KindNone}
	case *dataset.Table:
		return normalizeTable(v, maxRows)
	case *dataset.Series:
		return normalizeSeries(v, maxRows)
	default:
		return normalizeScalar(v)
	}
}

func normalizeTable(t *dataset.Table, maxRows int) *NormalizedResult {
	records := t.Records(maxRows)
	for _, record := range records {
		for key, cell := range record {
			record[key] = sanitizeValue(cell)
		}
	}
	return &NormalizedResult{Kind: KindTable, Rows: records}
}

func normalizeSeries(s *dataset.Series, maxRows int) *NormalizedResult {
	n := s.Len()
	if maxRows > 0 && maxRows < n {
		n = maxRows
	}
	points := make([]IndexValue, n)
	for i := 0; i < n; i++ {
		points[i] = IndexValue{Index: i, Value: sanitizeValue(s.Value(i))}
	}
	return &NormalizedResult{Kind: KindSeries, Points: points}
}

func normalizeScalar(v interface{}) *NormalizedResult {
	return &NormalizedResult{Kind: KindScalar, Scalar: sanitizeValue(v)}
}

// sanitizeValue coerces a cell to a plain transport value: non-finite and
// missing numerics become nil, every integer kind becomes int64, every float
// kind becomes float64. Strings, bools, and timestamps pass through.
func sanitizeValue(v interface{}) interface{} {
	switch val := v.(type) {
	case nil:
		return nil
	case float64:
		if math.IsNaN(val) || math.IsInf(val, 0) {
			return nil
		}
		return val
	case bool, string, time.Time:
		return val
	}

	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Float32, reflect.Float64:
		f := rv.Float()
		if math.IsNaN(f) || math.IsInf(f, 0) {
			return nil
		}
		return f
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return rv.Int()
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return int64(rv.Uint())
	}
	return v
}
