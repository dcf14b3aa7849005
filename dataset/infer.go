package dataset

import "time"

// DType is the inferred logical type of a column.
type DType string

const (
	TypeNumeric     DType = "numeric"
	TypeCategorical DType = "categorical"
	TypeDatetime    DType = "datetime"
	TypeBoolean     DType = "boolean"
	TypeText        DType = "text"
	TypeUnknown     DType = "unknown"
)

// Unique-ratio cutoffs for string columns. A string column whose distinct
// share stays below CategoricalUniqueRatio is categorical; below
// TextUniqueRatio it is text; above that it falls back to categorical.
const (
	CategoricalUniqueRatio = 0.05
	TextUniqueRatio        = 0.5
)

// InferType inspects the non-null cells of a series and reports its logical
// type. A column with no non-null cells is unknown.
func (s *Series) InferType() DType {
	var numeric, boolean, datetime, str, total int
	for _, v := range s.Values {
		switch v.(type) {
		case nil:
			continue
		case float64:
			numeric++
		case bool:
			boolean++
		case time.Time:
			datetime++
		case string:
			str++
		}
		total++
	}
	if total == 0 {
		return TypeUnknown
	}

	switch {
	case numeric == total:
		return TypeNumeric
	case datetime == total:
		return TypeDatetime
	case boolean == total:
		return TypeBoolean
	case str == total:
		ratio := float64(s.UniqueCount()) / float64(s.Len())
		if ratio < CategoricalUniqueRatio {
			return TypeCategorical
		}
		if ratio < TextUniqueRatio {
			return TypeCategorical
		}
		return TypeText
	}
	return TypeUnknown
}

// IsNumeric reports whether the column's inferred type is numeric.
func (s *Series) IsNumeric() bool {
	return s.InferType() == TypeNumeric
}
