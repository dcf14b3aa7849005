package agent

import (
	"context"
	"encoding/json"
	"fmt"

	"dida/dataset"
	"dida/llm"
	"dida/mlprep"
)

const mlPrepSystemPrompt = `You are a machine learning advisor. You receive an analysis of a prepared dataset (target profile, feature profile, detected problem type) and recommend how to model it.

Respond with ONLY a JSON object:
{
  "recommended_algorithms": ["algorithm names, most suitable first"],
  "best_practices": ["modeling advice specific to this dataset"],
  "warnings": ["risks the user should know about"]
}`

// MLPrepOptions configures one preparation request.
type MLPrepOptions struct {
	TargetColumn string  `json:"target_column"`
	TestFraction float64 `json:"test_fraction"`
	Seed         int64   `json:"seed"`
	Scaling      string  `json:"scaling"`
	Encoding     string  `json:"encoding"`
}

// MLPrepReport is the transport-facing summary of one preparation run.
type MLPrepReport struct {
	ProblemType           string         `json:"problem_type"`
	TargetColumn          string         `json:"target_column"`
	TrainRows             int            `json:"train_rows"`
	TestRows              int            `json:"test_rows"`
	FeatureCount          int            `json:"feature_count"`
	EncodedColumns        []string       `json:"encoded_columns"`
	ScaledColumns         []string       `json:"scaled_columns"`
	TargetEncoded         bool           `json:"target_encoded"`
	ClassDistribution     map[string]int `json:"class_distribution,omitempty"`
	RecommendedAlgorithms []string       `json:"recommended_algorithms"`
	BestPractices         []string       `json:"best_practices"`
	Warnings              []string       `json:"warnings"`
}

// MLPrepAgent runs the deterministic preparation engine and layers the
// model's advisory recommendations on top. Engine output never depends on
// the model; an advisory failure degrades to stock recommendations.
type MLPrepAgent struct {
	Base
}

// NewMLPrepAgent builds an ML prep agent bound to one session's client.
func NewMLPrepAgent(client llm.Client, logFunc func(string)) *MLPrepAgent {
	return &MLPrepAgent{Base{Name: "MLPREP", Client: client, Log: logFunc}}
}

type mlPrepAdvice struct {
	RecommendedAlgorithms []string `json:"recommended_algorithms"`
	BestPractices         []string `json:"best_practices"`
	Warnings              []string `json:"warnings"`
}

// defaultAdvice is the fallback used when the advisory call fails.
func defaultAdvice(problemType mlprep.ProblemType) mlPrepAdvice {
	if problemType == mlprep.ProblemRegression {
		return mlPrepAdvice{
			RecommendedAlgorithms: []string{"Random Forest Regressor", "Gradient Boosting", "Linear Regression"},
			BestPractices:         []string{"Evaluate with cross-validation", "Check residual plots for heteroscedasticity"},
		}
	}
	return mlPrepAdvice{
		RecommendedAlgorithms: []string{"Random Forest Classifier", "Gradient Boosting", "Logistic Regression"},
		BestPractices:         []string{"Evaluate with stratified cross-validation", "Inspect the confusion matrix, not just accuracy"},
	}
}

// Prepare validates the request, runs the deterministic pipeline, and asks
// the model for modeling advice. A missing target column fails before any
// model call.
func (a *MLPrepAgent) Prepare(ctx context.Context, table *dataset.Table, opts MLPrepOptions) (*mlprep.Outcome, *MLPrepReport, error) {
	if !table.HasColumn(opts.TargetColumn) {
		return nil, nil, &ConfigurationError{
			Field:  "target_column",
			Reason: fmt.Sprintf("column %q does not exist in the dataset", opts.TargetColumn),
		}
	}
	switch mlprep.ScalingStrategy(opts.Scaling) {
	case "", mlprep.ScaleStandard, mlprep.ScaleMinMax, mlprep.ScaleRobust:
	default:
		return nil, nil, &ConfigurationError{
			Field:  "scaling",
			Reason: fmt.Sprintf("unknown strategy %q (valid: standard, minmax, robust)", opts.Scaling),
		}
	}
	switch mlprep.EncodingStrategy(opts.Encoding) {
	case "", mlprep.EncodeAuto, mlprep.EncodeOneHot, mlprep.EncodeLabel:
	default:
		return nil, nil, &ConfigurationError{
			Field:  "encoding",
			Reason: fmt.Sprintf("unknown strategy %q (valid: auto, onehot, label)", opts.Encoding),
		}
	}

	engineOpts := mlprep.Options{
		TestFraction: opts.TestFraction,
		Seed:         opts.Seed,
		Scaling:      mlprep.ScalingStrategy(opts.Scaling),
		Encoding:     mlprep.EncodingStrategy(opts.Encoding),
	}
	outcome, err := mlprep.Prepare(table, opts.TargetColumn, engineOpts, a.Log)
	if err != nil {
		return nil, nil, err
	}

	advice := a.advise(ctx, table, opts.TargetColumn, outcome)

	report := &MLPrepReport{
		ProblemType:           string(outcome.ProblemType),
		TargetColumn:          opts.TargetColumn,
		TrainRows:             outcome.XTrain.NumRows(),
		TestRows:              outcome.XTest.NumRows(),
		FeatureCount:          outcome.XTrain.NumCols(),
		EncodedColumns:        outcome.EncodedColumns,
		ScaledColumns:         outcome.ScaledColumns,
		TargetEncoded:         outcome.TargetEncoded,
		ClassDistribution:     outcome.ClassDistribution,
		RecommendedAlgorithms: advice.RecommendedAlgorithms,
		BestPractices:         advice.BestPractices,
		Warnings:              append(advice.Warnings, outcome.Warnings...),
	}
	a.log("Prepared %s run: %d train rows, %d test rows, %d features",
		report.ProblemType, report.TrainRows, report.TestRows, report.FeatureCount)
	return outcome, report, nil
}

// advise asks the model for recommendations, falling back to stock advice
// when the call or parse fails.
func (a *MLPrepAgent) advise(ctx context.Context, table *dataset.Table, targetColumn string, outcome *mlprep.Outcome) mlPrepAdvice {
	target, _ := table.Column(targetColumn)
	analysis := struct {
		ProblemType    mlprep.ProblemType     `json:"problem_type"`
		Target         mlprep.TargetAnalysis  `json:"target"`
		Features       mlprep.FeatureAnalysis `json:"features"`
		EncodedColumns []string               `json:"encoded_columns"`
		ScaledColumns  []string               `json:"scaled_columns"`
	}{
		ProblemType:    outcome.ProblemType,
		Target:         mlprep.AnalyzeTarget(target),
		Features:       mlprep.AnalyzeFeatures(table, targetColumn),
		EncodedColumns: outcome.EncodedColumns,
		ScaledColumns:  outcome.ScaledColumns,
	}

	payload, err := json.MarshalIndent(analysis, "", "  ")
	if err != nil {
		a.log("Failed to encode advisory payload: %v", err)
		return defaultAdvice(outcome.ProblemType)
	}

	var advice mlPrepAdvice
	if err := a.completeJSON(ctx, mlPrepSystemPrompt, string(payload), &advice); err != nil {
		a.log("Advisory call failed, using defaults: %v", err)
		return defaultAdvice(outcome.ProblemType)
	}
	if len(advice.RecommendedAlgorithms) == 0 {
		advice.RecommendedAlgorithms = defaultAdvice(outcome.ProblemType).RecommendedAlgorithms
	}
	return advice
}
