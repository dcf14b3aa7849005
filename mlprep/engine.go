// Package mlprep implements the deterministic machine-learning preparation
// pipeline: target analysis, problem-type detection, categorical encoding,
// numerical scaling, and seeded stratified splitting. Advisory text from
// the language model is merged on top by the owning agent, never here.
package mlprep

import (
	"fmt"
	"math"
	"math/rand"
	"sort"

	"dida/dataset"
)

// ProblemType is the detected learning task.
type ProblemType string

const (
	ProblemClassification ProblemType = "classification"
	ProblemRegression     ProblemType = "regression"
)

// EncodingStrategy selects how categorical features are encoded.
type EncodingStrategy string

const (
	EncodeAuto   EncodingStrategy = "auto"
	EncodeOneHot EncodingStrategy = "onehot"
	EncodeLabel  EncodingStrategy = "label"
)

// ScalingStrategy selects how numerical features are scaled.
type ScalingStrategy string

const (
	ScaleStandard ScalingStrategy = "standard"
	ScaleMinMax   ScalingStrategy = "minmax"
	ScaleRobust   ScalingStrategy = "robust"
)

// Fixed policy thresholds for problem-type detection, encoding and splits.
const (
	// A numeric target with more distinct values than this is regression.
	RegressionCardinalityThreshold = 20
	// One-hot encoding applies up to this many distinct values under auto.
	OneHotMaxCardinality = 10
	// Majority-to-minority class ratio above this triggers a warning.
	ImbalanceRatioThreshold = 3.0
	// Categorical features beyond this cardinality are flagged in analysis.
	HighCardinalityThreshold = 50
	// Distribution histograms switch to summary stats above this.
	DistributionHistogramMax = 20
)

// Options configures one preparation run.
type Options struct {
	TestFraction float64
	Seed         int64
	Scaling      ScalingStrategy
	Encoding     EncodingStrategy
}

// withDefaults fills unset options.
func (o Options) withDefaults() Options {
	if o.TestFraction <= 0 || o.TestFraction >= 1 {
		o.TestFraction = 0.2
	}
	if o.Seed == 0 {
		o.Seed = 42
	}
	if o.Scaling == "" {
		o.Scaling = ScaleStandard
	}
	if o.Encoding == "" {
		o.Encoding = EncodeAuto
	}
	return o
}

// validate rejects strategy values outside the known set.
func (o Options) validate() error {
	switch o.Scaling {
	case ScaleStandard, ScaleMinMax, ScaleRobust:
	default:
		return fmt.Errorf("unknown scaling strategy %q (valid: standard, minmax, robust)", o.Scaling)
	}
	switch o.Encoding {
	case EncodeAuto, EncodeOneHot, EncodeLabel:
	default:
		return fmt.Errorf("unknown encoding strategy %q (valid: auto, onehot, label)", o.Encoding)
	}
	return nil
}

// Outcome is the result of one preparation run. The four split artifacts
// are independent values the caller persists separately.
type Outcome struct {
	XTrain *dataset.Table
	XTest  *dataset.Table
	YTrain *dataset.Series
	YTest  *dataset.Series

	ProblemType       ProblemType
	EncodedColumns    []string
	ScaledColumns     []string
	TargetEncoded     bool
	ClassDistribution map[string]int
	Warnings          []string
}

// DetectProblemType applies the fixed cardinality policy: a numeric target
// with more than RegressionCardinalityThreshold distinct values is
// regression, everything else is classification.
func DetectProblemType(target *dataset.Series) ProblemType {
	if target.IsNumeric() && target.UniqueCount() > RegressionCardinalityThreshold {
		return ProblemRegression
	}
	return ProblemClassification
}

// Prepare runs the deterministic pipeline against table and targetColumn.
// The input table is never modified.
func Prepare(table *dataset.Table, targetColumn string, opts Options, logFunc func(string)) (*Outcome, error) {
	log := func(msg string) {
		if logFunc != nil {
			logFunc(msg)
		}
	}
	opts = opts.withDefaults()
	if err := opts.validate(); err != nil {
		return nil, err
	}

	target, ok := table.Column(targetColumn)
	if !ok {
		return nil, fmt.Errorf("target column %q not found in dataset", targetColumn)
	}

	problemType := DetectProblemType(target)
	log(fmt.Sprintf("[MLPREP] Detected problem type: %s", problemType))

	features := table.Copy()
	if err := features.DropColumn(targetColumn); err != nil {
		return nil, err
	}
	y := target.Copy()

	encodedCols, oneHotCols, err := encodeCategorical(features, opts.Encoding)
	if err != nil {
		return nil, err
	}
	log(fmt.Sprintf("[MLPREP] Encoded %d categorical columns", len(encodedCols)))

	targetEncoded := false
	if problemType == ProblemClassification && !y.IsNumeric() {
		y = labelEncodeSeries(y)
		targetEncoded = true
		log("[MLPREP] Label-encoded non-numeric classification target")
	}

	scaledCols := scaleNumerical(features, opts.Scaling, oneHotCols)
	log(fmt.Sprintf("[MLPREP] Scaled %d numerical columns with %s strategy", len(scaledCols), opts.Scaling))

	trainIdx, testIdx := splitIndices(y, problemType, opts.TestFraction, opts.Seed)

	outcome := &Outcome{
		XTrain:         features.SelectRows(trainIdx),
		XTest:          features.SelectRows(testIdx),
		YTrain:         selectSeries(y, trainIdx),
		YTest:          selectSeries(y, testIdx),
		ProblemType:    problemType,
		EncodedColumns: encodedCols,
		ScaledColumns:  scaledCols,
		TargetEncoded:  targetEncoded,
	}

	if problemType == ProblemClassification {
		outcome.ClassDistribution = classHistogram(outcome.YTrain)
		if warning := imbalanceWarning(outcome.ClassDistribution); warning != "" {
			outcome.Warnings = append(outcome.Warnings, warning)
			log(fmt.Sprintf("[MLPREP] %s", warning))
		}
	}

	return outcome, nil
}

// sortedDistinct returns the distinct non-null values of a series as
// strings in sorted order, so encodings are deterministic.
func sortedDistinct(s *dataset.Series) []string {
	seen := make(map[string]struct{})
	for _, v := range s.Values {
		if v == nil {
			continue
		}
		seen[dataset.CellString(v)] = struct{}{}
	}
	out := make([]string, 0, len(seen))
	for v := range seen {
		out = append(out, v)
	}
	sort.Strings(out)
	return out
}

// encodeCategorical rewrites every non-numeric feature column in place:
// one-hot (dropping the first category) when the cardinality is within
// policy under auto or onehot, integer label codes otherwise. A column
// with no non-null values is dropped. It returns the names of the columns
// produced by encoding and the subset that are one-hot dummies.
func encodeCategorical(features *dataset.Table, strategy EncodingStrategy) ([]string, map[string]bool, error) {
	var encoded []string
	oneHot := make(map[string]bool)
	for _, name := range features.ColumnNames() {
		col, _ := features.Column(name)
		if col.IsNumeric() {
			continue
		}

		uniqueCount := col.UniqueCount()
		if uniqueCount == 0 {
			// Only nulls; the column carries no information.
			if err := features.DropColumn(name); err != nil {
				return nil, nil, err
			}
			continue
		}

		useOneHot := false
		switch strategy {
		case EncodeOneHot:
			useOneHot = uniqueCount <= OneHotMaxCardinality
		case EncodeLabel:
			useOneHot = false
		default: // auto
			useOneHot = uniqueCount <= OneHotMaxCardinality
		}

		if useOneHot {
			categories := sortedDistinct(col)
			// Drop the first category to avoid collinearity.
			for _, category := range categories[1:] {
				dummyName := fmt.Sprintf("%s_%s", name, category)
				values := make([]interface{}, col.Len())
				for i, v := range col.Values {
					if v == nil {
						values[i] = 0.0
						continue
					}
					if dataset.CellString(v) == category {
						values[i] = 1.0
					} else {
						values[i] = 0.0
					}
				}
				if err := features.AddColumn(dataset.NewSeries(dummyName, values)); err != nil {
					return nil, nil, err
				}
				encoded = append(encoded, dummyName)
				oneHot[dummyName] = true
			}
			if err := features.DropColumn(name); err != nil {
				return nil, nil, err
			}
		} else {
			replaced := labelEncodeSeries(col)
			if err := features.AddColumn(replaced); err != nil {
				return nil, nil, err
			}
			encoded = append(encoded, name)
		}
	}
	return encoded, oneHot, nil
}

// labelEncodeSeries maps distinct values to integer codes assigned in
// sorted value order. Missing cells become their own category.
func labelEncodeSeries(s *dataset.Series) *dataset.Series {
	hasNull := s.NullCount() > 0
	categories := sortedDistinct(s)
	codes := make(map[string]float64, len(categories))
	offset := 0.0
	if hasNull {
		// The missing marker sorts before every real category.
		offset = 1.0
	}
	for i, category := range categories {
		codes[category] = float64(i) + offset
	}

	values := make([]interface{}, s.Len())
	for i, v := range s.Values {
		if v == nil {
			values[i] = 0.0
			continue
		}
		values[i] = codes[dataset.CellString(v)]
	}
	return dataset.NewSeries(s.Name, values)
}

// scaleNumerical rescales every numeric feature column in place (skipping
// one-hot dummies) and returns the touched column names.
func scaleNumerical(features *dataset.Table, strategy ScalingStrategy, skip map[string]bool) []string {
	var scaled []string
	for _, name := range features.ColumnNames() {
		if skip[name] {
			continue
		}
		col, _ := features.Column(name)
		if !col.IsNumeric() {
			continue
		}
		scaleSeries(col, strategy)
		scaled = append(scaled, name)
	}
	return scaled
}

// scaleSeries rescales the numeric cells of a series in place. Missing
// cells stay missing. Degenerate spreads (zero std, zero range, zero IQR)
// leave values centered but undivided.
func scaleSeries(s *dataset.Series, strategy ScalingStrategy) {
	var center, spread float64
	switch strategy {
	case ScaleMinMax:
		center = s.Min()
		spread = s.Max() - s.Min()
	case ScaleRobust:
		center = s.Median()
		spread = s.Quantile(0.75) - s.Quantile(0.25)
	default: // standard
		center = s.Mean()
		spread = s.Std()
	}
	if spread == 0 || math.IsNaN(spread) {
		spread = 1
	}

	for i, v := range s.Values {
		if f, ok := v.(float64); ok {
			s.Values[i] = (f - center) / spread
		}
	}
}

// splitIndices partitions row indices into train and test sets. For
// classification it stratifies by target value so class proportions are
// preserved; for regression it shuffles the whole index space.
func splitIndices(y *dataset.Series, problemType ProblemType, testFraction float64, seed int64) (train, test []int) {
	rng := rand.New(rand.NewSource(seed))

	if problemType == ProblemClassification {
		groups := make(map[string][]int)
		var order []string
		for i := 0; i < y.Len(); i++ {
			key := dataset.CellString(y.Value(i))
			if _, seen := groups[key]; !seen {
				order = append(order, key)
			}
			groups[key] = append(groups[key], i)
		}
		sort.Strings(order)

		for _, key := range order {
			indices := groups[key]
			rng.Shuffle(len(indices), func(a, b int) {
				indices[a], indices[b] = indices[b], indices[a]
			})
			nTest := int(math.Round(testFraction * float64(len(indices))))
			test = append(test, indices[:nTest]...)
			train = append(train, indices[nTest:]...)
		}
	} else {
		indices := make([]int, y.Len())
		for i := range indices {
			indices[i] = i
		}
		rng.Shuffle(len(indices), func(a, b int) {
			indices[a], indices[b] = indices[b], indices[a]
		})
		nTest := int(math.Round(testFraction * float64(len(indices))))
		test = indices[:nTest]
		train = indices[nTest:]
	}

	sort.Ints(train)
	sort.Ints(test)
	return train, test
}

// selectSeries returns a new series with the given row indices.
func selectSeries(s *dataset.Series, indices []int) *dataset.Series {
	values := make([]interface{}, len(indices))
	for i, idx := range indices {
		values[i] = s.Values[idx]
	}
	return dataset.NewSeries(s.Name, values)
}

// classHistogram counts target values in a partition.
func classHistogram(y *dataset.Series) map[string]int {
	histogram := make(map[string]int)
	for _, v := range y.Values {
		histogram[dataset.CellString(v)]++
	}
	return histogram
}

// imbalanceWarning returns a warning when the majority-to-minority ratio
// exceeds the fixed policy threshold, or "" when balanced enough.
func imbalanceWarning(distribution map[string]int) string {
	if len(distribution) < 2 {
		return ""
	}
	maxClass, minClass := 0, math.MaxInt
	for _, count := range distribution {
		if count > maxClass {
			maxClass = count
		}
		if count < minClass {
			minClass = count
		}
	}
	if minClass == 0 {
		return ""
	}
	ratio := float64(maxClass) / float64(minClass)
	if ratio > ImbalanceRatioThreshold {
		return fmt.Sprintf("Class imbalance detected: ratio %.1f:1. Consider using SMOTE or class weights.", ratio)
	}
	return ""
}
