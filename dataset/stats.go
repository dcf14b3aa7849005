package dataset

import (
	"sort"

	"gonum.org/v1/gonum/stat"
)

// Float returns the cell at index i as a float64 when it is numeric.
func (s *Series) Float(i int) (float64, bool) {
	f, ok := s.Values[i].(float64)
	return f, ok
}

// Floats returns all numeric non-null values in order. Non-numeric cells are
// skipped.
func (s *Series) Floats() []float64 {
	out := make([]float64, 0, len(s.Values))
	for _, v := range s.Values {
		if f, ok := v.(float64); ok {
			out = append(out, f)
		}
	}
	return out
}

// Mean returns the mean of the numeric values, or 0 for an empty column.
func (s *Series) Mean() float64 {
	xs := s.Floats()
	if len(xs) == 0 {
		return 0
	}
	return stat.Mean(xs, nil)
}

// Std returns the sample standard deviation of the numeric values.
func (s *Series) Std() float64 {
	xs := s.Floats()
	if len(xs) < 2 {
		return 0
	}
	return stat.StdDev(xs, nil)
}

// Min returns the smallest numeric value.
func (s *Series) Min() float64 {
	xs := s.Floats()
	if len(xs) == 0 {
		return 0
	}
	min := xs[0]
	for _, x := range xs[1:] {
		if x < min {
			min = x
		}
	}
	return min
}

// Max returns the largest numeric value.
func (s *Series) Max() float64 {
	xs := s.Floats()
	if len(xs) == 0 {
		return 0
	}
	max := xs[0]
	for _, x := range xs[1:] {
		if x > max {
			max = x
		}
	}
	return max
}

// Median returns the median of the numeric values.
func (s *Series) Median() float64 {
	return s.Quantile(0.5)
}

// Quantile returns the empirical q-quantile of the numeric values.
func (s *Series) Quantile(q float64) float64 {
	xs := s.Floats()
	if len(xs) == 0 {
		return 0
	}
	sorted := make([]float64, len(xs))
	copy(sorted, xs)
	sort.Float64s(sorted)
	return stat.Quantile(q, stat.Empirical, sorted, nil)
}

// Sum returns the sum of the numeric values.
func (s *Series) Sum() float64 {
	total := 0.0
	for _, x := range s.Floats() {
		total += x
	}
	return total
}

// ValueCount is one entry of a value histogram.
type ValueCount struct {
	Value string
	Count int
}

// ValueCounts returns a histogram of the non-null values, most frequent
// first; ties break on value order for determinism.
func (s *Series) ValueCounts() []ValueCount {
	counts := make(map[string]int)
	for _, v := range s.Values {
		if v == nil {
			continue
		}
		counts[CellString(v)]++
	}
	out := make([]ValueCount, 0, len(counts))
	for value, count := range counts {
		out = append(out, ValueCount{Value: value, Count: count})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Count != out[j].Count {
			return out[i].Count > out[j].Count
		}
		return out[i].Value < out[j].Value
	})
	return out
}
