package mlprep

import (
	"dida/dataset"
)

// TargetAnalysis summarizes the target column for advisory prompting.
type TargetAnalysis struct {
	DType        string                 `json:"dtype"`
	UniqueCount  int                    `json:"unique_count"`
	NullCount    int                    `json:"null_count"`
	SampleValues []interface{}          `json:"sample_values"`
	Distribution map[string]interface{} `json:"distribution"`
}

// FeatureAnalysis summarizes the feature columns for advisory prompting.
type FeatureAnalysis struct {
	NumericalCount   int      `json:"numerical_count"`
	CategoricalCount int      `json:"categorical_count"`
	HighCardinality  []string `json:"high_cardinality"`
	MissingFeatures  []string `json:"missing_features"`
}

// AnalyzeTarget profiles the target column. Low-cardinality targets get a
// value-count histogram, numeric high-cardinality targets get summary
// statistics instead.
func AnalyzeTarget(target *dataset.Series) TargetAnalysis {
	analysis := TargetAnalysis{
		DType:        string(target.InferType()),
		UniqueCount:  target.UniqueCount(),
		NullCount:    target.NullCount(),
		Distribution: make(map[string]interface{}),
	}

	nonNull := target.NonNull()
	limit := 5
	if len(nonNull) < limit {
		limit = len(nonNull)
	}
	analysis.SampleValues = make([]interface{}, limit)
	for i := 0; i < limit; i++ {
		analysis.SampleValues[i] = dataset.SanitizeCell(nonNull[i])
	}

	if analysis.UniqueCount <= DistributionHistogramMax {
		for _, vc := range target.ValueCounts() {
			analysis.Distribution[dataset.CellString(vc.Value)] = vc.Count
		}
	} else if target.IsNumeric() {
		analysis.Distribution["mean"] = target.Mean()
		analysis.Distribution["std"] = target.Std()
		analysis.Distribution["min"] = target.Min()
		analysis.Distribution["max"] = target.Max()
	}

	return analysis
}

// AnalyzeFeatures profiles every column other than the target, flagging
// high-cardinality categoricals and columns with missing values.
func AnalyzeFeatures(table *dataset.Table, targetColumn string) FeatureAnalysis {
	var analysis FeatureAnalysis
	for _, name := range table.ColumnNames() {
		if name == targetColumn {
			continue
		}
		col, _ := table.Column(name)
		if col.IsNumeric() {
			analysis.NumericalCount++
		} else {
			analysis.CategoricalCount++
			if col.UniqueCount() > HighCardinalityThreshold {
				analysis.HighCardinality = append(analysis.HighCardinality, name)
			}
		}
		if col.NullCount() > 0 {
			analysis.MissingFeatures = append(analysis.MissingFeatures, name)
		}
	}
	return analysis
}
