package agent

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"dida/dataset"
	"dida/llm"
	"dida/sandbox"
)

func dirtyTable(t *testing.T) *dataset.Table {
	t.Helper()
	table, err := dataset.FromColumns([]*dataset.Series{
		dataset.NewSeries("name", []interface{}{"alice", "bob", "bob", "carol"}),
		dataset.NewSeries("score", []interface{}{90.0, 80.0, 80.0, nil}),
	})
	if err != nil {
		t.Fatalf("FromColumns failed: %v", err)
	}
	return table
}

func stubCleaning(t *testing.T, code string) string {
	t.Helper()
	payload, err := json.Marshal(cleaningDecision{
		Steps:   []string{"drop duplicate rows", "fill missing scores"},
		Code:    code,
		Summary: "removed duplicates, imputed scores",
	})
	if err != nil {
		t.Fatalf("marshal stub: %v", err)
	}
	return "```json\n" + string(payload) + "\n```"
}

func newTestCleaningAgent(reply string) *CleaningAgent {
	client := llm.CompleteFunc(func(ctx context.Context, system, user string) (string, error) {
		return reply, nil
	})
	return NewCleaningAgent(client, sandbox.NewExecutor(10*time.Second, nil), nil)
}

func TestCleaningAppliesOnSuccess(t *testing.T) {
	agent := newTestCleaningAgent(stubCleaning(t,
		"df = df.DropDuplicates()\ndf.FillNulls(\"score\", 0.0)"))

	table := dirtyTable(t)
	cleaned, result, err := agent.Clean(context.Background(), table)
	if err != nil {
		t.Fatalf("Clean failed: %v", err)
	}
	if cleaned.NumRows() != 3 {
		t.Fatalf("expected 3 rows after dedupe, got %d", cleaned.NumRows())
	}
	col, _ := cleaned.Column("score")
	if col.NullCount() != 0 {
		t.Fatal("missing scores not filled")
	}
	if len(result.Steps) != 2 || result.Summary == "" {
		t.Fatalf("cleaning metadata missing: %+v", result)
	}
	if len(result.Preview) != 3 {
		t.Fatalf("expected 3 preview rows, got %d", len(result.Preview))
	}
}

func TestCleaningFailureLeavesTableUntouched(t *testing.T) {
	agent := newTestCleaningAgent(stubCleaning(t, "syscall.Kill(1, 9)"))

	table := dirtyTable(t)
	before := table.Fingerprint()
	_, _, err := agent.Clean(context.Background(), table)
	if err == nil {
		t.Fatal("expected execution error")
	}
	var execErr *ExecutionError
	if !errors.As(err, &execErr) {
		t.Fatalf("expected ExecutionError, got %T: %v", err, err)
	}
	if table.Fingerprint() != before {
		t.Fatal("failed cleaning modified the dataset")
	}
}

func TestCleaningRejectsEmptyCode(t *testing.T) {
	agent := newTestCleaningAgent(stubCleaning(t, ""))
	_, _, err := agent.Clean(context.Background(), dirtyTable(t))
	var malformed *MalformedResponseError
	if !errors.As(err, &malformed) {
		t.Fatalf("expected MalformedResponseError, got %T: %v", err, err)
	}
}
