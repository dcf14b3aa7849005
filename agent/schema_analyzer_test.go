package agent

import (
	"context"
	"fmt"
	"reflect"
	"testing"

	"dida/dataset"
	"dida/llm"
)

// customerTable builds a dataset with an obvious primary key, a column
// with missing values, and a low-cardinality city column.
func customerTable(t *testing.T) *dataset.Table {
	t.Helper()
	n := 100
	ids := make([]interface{}, n)
	ages := make([]interface{}, n)
	cities := make([]interface{}, n)
	cityNames := []string{"NYC", "LA", "SF", "Chicago", "Boston", "Austin", "Denver", "Seattle"}
	for i := 0; i < n; i++ {
		ids[i] = float64(i + 1)
		if i%10 == 0 {
			ages[i] = nil
		} else {
			ages[i] = float64(20 + i%40)
		}
		cities[i] = cityNames[i%len(cityNames)]
	}
	table, err := dataset.FromColumns([]*dataset.Series{
		dataset.NewSeries("id", ids),
		dataset.NewSeries("age", ages),
		dataset.NewSeries("city", cities),
	})
	if err != nil {
		t.Fatalf("FromColumns failed: %v", err)
	}
	return table
}

const schemaStubReply = "```json\n" + `{
  "column_insights": [
    {"column": "id", "meaning": "customer identifier", "issues": [], "suggested_action": ""},
    {"column": "age", "meaning": "customer age in years", "issues": ["missing values"], "suggested_action": "impute with median"},
    {"column": "city", "meaning": "customer city", "issues": [], "suggested_action": ""}
  ],
  "suggested_target": "age",
  "domain_insights": ["looks like a customer roster"],
  "warnings": ["age has 10% missing values"],
  "questions": [],
  "quality_score": 82.5
}` + "\n```"

func TestSchemaAnalyzerMergesStatsAndInsights(t *testing.T) {
	client := llm.CompleteFunc(func(ctx context.Context, system, user string) (string, error) {
		return schemaStubReply, nil
	})
	analyzer := NewSchemaAnalyzer(client, nil)

	report, err := analyzer.Analyze(context.Background(), customerTable(t))
	if err != nil {
		t.Fatalf("Analyze failed: %v", err)
	}

	if report.RowCount != 100 || len(report.Columns) != 3 {
		t.Fatalf("got %d rows / %d columns", report.RowCount, len(report.Columns))
	}

	byName := make(map[string]ColumnReport)
	for _, c := range report.Columns {
		byName[c.Name] = c
	}

	id := byName["id"]
	if !id.IsPrimaryKey {
		t.Fatal("id should be detected as primary key")
	}
	if id.Meaning != "customer identifier" {
		t.Fatalf("id meaning not merged: %q", id.Meaning)
	}

	age := byName["age"]
	if age.IsPrimaryKey {
		t.Fatal("age must not be a primary key")
	}
	if age.NullCount != 10 || age.NullPercentage != 10.0 {
		t.Fatalf("age nulls = %d (%.1f%%), want 10 (10%%)", age.NullCount, age.NullPercentage)
	}

	city := byName["city"]
	if city.DataType != string(dataset.TypeCategorical) {
		t.Fatalf("city type = %s, want categorical", city.DataType)
	}

	if report.SuggestedTarget != "age" || report.QualityScore != 82.5 {
		t.Fatalf("model fields not merged: target=%q score=%v", report.SuggestedTarget, report.QualityScore)
	}
}

func TestSchemaAnalyzerIdempotent(t *testing.T) {
	table := customerTable(t)
	before := table.Fingerprint()
	client := llm.CompleteFunc(func(ctx context.Context, system, user string) (string, error) {
		return schemaStubReply, nil
	})
	analyzer := NewSchemaAnalyzer(client, nil)

	first, err := analyzer.Analyze(context.Background(), table)
	if err != nil {
		t.Fatalf("Analyze failed: %v", err)
	}
	second, err := analyzer.Analyze(context.Background(), table)
	if err != nil {
		t.Fatalf("second Analyze failed: %v", err)
	}
	if !reflect.DeepEqual(first, second) {
		t.Fatal("repeated analysis of an unchanged table differs")
	}
	if table.Fingerprint() != before {
		t.Fatal("schema analysis modified the dataset")
	}
}

func TestSchemaAnalyzerMalformedReply(t *testing.T) {
	client := llm.CompleteFunc(func(ctx context.Context, system, user string) (string, error) {
		return "the schema looks fine to me", nil
	})
	_, err := NewSchemaAnalyzer(client, nil).Analyze(context.Background(), customerTable(t))
	if err == nil {
		t.Fatal("expected error for non-JSON reply")
	}
}

func TestSchemaAnalyzerUpstreamFailure(t *testing.T) {
	client := llm.CompleteFunc(func(ctx context.Context, system, user string) (string, error) {
		return "", fmt.Errorf("upstream unavailable")
	})
	_, err := NewSchemaAnalyzer(client, nil).Analyze(context.Background(), customerTable(t))
	if err == nil {
		t.Fatal("expected upstream error to propagate")
	}
}
