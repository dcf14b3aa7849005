package agent

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"dida/dataset"
	"dida/llm"
)

func mlTable(t *testing.T) *dataset.Table {
	t.Helper()
	var age, churn []interface{}
	for i := 0; i < 50; i++ {
		age = append(age, float64(20+i))
		churn = append(churn, fmt.Sprintf("c%d", i%2))
	}
	table, err := dataset.FromColumns([]*dataset.Series{
		dataset.NewSeries("age", age),
		dataset.NewSeries("churn", churn),
	})
	if err != nil {
		t.Fatalf("FromColumns failed: %v", err)
	}
	return table
}

func TestMLPrepMissingTargetSkipsModelCall(t *testing.T) {
	called := false
	client := llm.CompleteFunc(func(ctx context.Context, system, user string) (string, error) {
		called = true
		return "{}", nil
	})
	agent := NewMLPrepAgent(client, nil)

	_, _, err := agent.Prepare(context.Background(), mlTable(t), MLPrepOptions{TargetColumn: "missing"})
	var cfgErr *ConfigurationError
	if !errors.As(err, &cfgErr) {
		t.Fatalf("expected ConfigurationError, got %T: %v", err, err)
	}
	if called {
		t.Fatal("model must not be called when the target is invalid")
	}
}

func TestMLPrepUnknownStrategySkipsModelCall(t *testing.T) {
	cases := []struct {
		name  string
		opts  MLPrepOptions
		field string
	}{
		{"scaling", MLPrepOptions{TargetColumn: "churn", Scaling: "zscore"}, "scaling"},
		{"encoding", MLPrepOptions{TargetColumn: "churn", Encoding: "ordinal"}, "encoding"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			called := false
			client := llm.CompleteFunc(func(ctx context.Context, system, user string) (string, error) {
				called = true
				return "{}", nil
			})
			agent := NewMLPrepAgent(client, nil)

			_, _, err := agent.Prepare(context.Background(), mlTable(t), tc.opts)
			var cfgErr *ConfigurationError
			if !errors.As(err, &cfgErr) {
				t.Fatalf("expected ConfigurationError, got %T: %v", err, err)
			}
			if cfgErr.Field != tc.field {
				t.Fatalf("error field = %q, want %q", cfgErr.Field, tc.field)
			}
			if called {
				t.Fatal("model must not be called for an unknown strategy")
			}
		})
	}
}

func TestMLPrepAdvisoryFailureDegrades(t *testing.T) {
	client := llm.CompleteFunc(func(ctx context.Context, system, user string) (string, error) {
		return "", fmt.Errorf("upstream unavailable")
	})
	agent := NewMLPrepAgent(client, nil)

	outcome, report, err := agent.Prepare(context.Background(), mlTable(t), MLPrepOptions{TargetColumn: "churn"})
	if err != nil {
		t.Fatalf("Prepare should survive advisory failure: %v", err)
	}
	if report.ProblemType != "classification" {
		t.Fatalf("problem type = %s, want classification", report.ProblemType)
	}
	if len(report.RecommendedAlgorithms) == 0 {
		t.Fatal("expected fallback algorithm recommendations")
	}
	if outcome.XTrain.NumRows()+outcome.XTest.NumRows() != 50 {
		t.Fatal("split rows do not cover the dataset")
	}
}

func TestMLPrepMergesAdvice(t *testing.T) {
	client := llm.CompleteFunc(func(ctx context.Context, system, user string) (string, error) {
		return `{"recommended_algorithms": ["Gradient Boosting"], "best_practices": ["tune the learning rate"], "warnings": ["small dataset"]}`, nil
	})
	agent := NewMLPrepAgent(client, nil)

	_, report, err := agent.Prepare(context.Background(), mlTable(t), MLPrepOptions{TargetColumn: "churn"})
	if err != nil {
		t.Fatalf("Prepare failed: %v", err)
	}
	if len(report.RecommendedAlgorithms) != 1 || report.RecommendedAlgorithms[0] != "Gradient Boosting" {
		t.Fatalf("advice not merged: %v", report.RecommendedAlgorithms)
	}
	foundWarning := false
	for _, w := range report.Warnings {
		if w == "small dataset" {
			foundWarning = true
		}
	}
	if !foundWarning {
		t.Fatalf("advisory warning missing: %v", report.Warnings)
	}
}
