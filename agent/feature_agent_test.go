package agent

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"dida/dataset"
	"dida/llm"
	"dida/sandbox"
)

func TestFeatureEngineerAddsColumns(t *testing.T) {
	payload, err := json.Marshal(featureDecision{
		NewFeatures: []string{"revenue_per_unit"},
		Code: `df.AddComputed("revenue_per_unit", func(row map[string]interface{}) interface{} {
	revenue, _ := row["revenue"].(float64)
	units, _ := row["units"].(float64)
	if units == 0 {
		return nil
	}
	return revenue / units
})`,
		Summary: "unit economics feature",
	})
	if err != nil {
		t.Fatalf("marshal stub: %v", err)
	}
	client := llm.CompleteFunc(func(ctx context.Context, system, user string) (string, error) {
		return "```json\n" + string(payload) + "\n```", nil
	})
	agent := NewFeatureAgent(client, sandbox.NewExecutor(10*time.Second, nil), nil)

	table, err := dataset.FromColumns([]*dataset.Series{
		dataset.NewSeries("revenue", []interface{}{100.0, 90.0}),
		dataset.NewSeries("units", []interface{}{4.0, 0.0}),
	})
	if err != nil {
		t.Fatalf("FromColumns failed: %v", err)
	}
	before := table.Fingerprint()

	engineered, result, err := agent.Engineer(context.Background(), table, "add unit economics")
	if err != nil {
		t.Fatalf("Engineer failed: %v", err)
	}
	if !engineered.HasColumn("revenue_per_unit") {
		t.Fatal("new feature column missing")
	}
	col, _ := engineered.Column("revenue_per_unit")
	if col.Values[0] != 25.0 {
		t.Fatalf("feature value = %v, want 25", col.Values[0])
	}
	if col.Values[1] != nil {
		t.Fatalf("division by zero should yield nil, got %v", col.Values[1])
	}
	if len(result.NewFeatures) != 1 {
		t.Fatalf("feature metadata missing: %+v", result)
	}
	// Input is only replaced by the caller adopting the returned table.
	if table.Fingerprint() != before {
		t.Fatal("feature pass modified the input table")
	}
}
