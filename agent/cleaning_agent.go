package agent

import (
	"context"
	"fmt"
	"strings"

	"dida/dataset"
	"dida/llm"
	"dida/sandbox"
)

const cleaningSystemPrompt = `You are a data cleaning specialist. You receive a dataset summary with quality statistics and produce code that cleans the dataset: handle missing values, remove duplicates, fix inconsistent values, drop unusable columns.

%s

Your code must transform df itself (reassign df or mutate it). Do not assign to result.

Respond with ONLY a JSON object:
{
  "steps": ["human-readable description of each cleaning step"],
  "code": "sandbox code applying the steps to df",
  "summary": "one-paragraph summary of what was cleaned and why"
}`

// CleaningAgent generates and applies a cleaning pass over the session
// dataset. The caller's table is replaced only when execution succeeds;
// any failure leaves it untouched.
type CleaningAgent struct {
	Base
	Exec *sandbox.Executor
}

// NewCleaningAgent builds a cleaning agent bound to one session's client.
func NewCleaningAgent(client llm.Client, exec *sandbox.Executor, logFunc func(string)) *CleaningAgent {
	return &CleaningAgent{Base: Base{Name: "CLEANING", Client: client, Log: logFunc}, Exec: exec}
}

type cleaningDecision struct {
	Steps   []string `json:"steps"`
	Code    string   `json:"code"`
	Summary string   `json:"summary"`
}

// qualityContext renders the statistics the cleaning prompt is built from:
// per-column missing counts and the duplicate row count.
func qualityContext(table *dataset.Table) string {
	var b strings.Builder
	b.WriteString("Missing values per column:\n")
	for _, name := range table.ColumnNames() {
		col, _ := table.Column(name)
		if n := col.NullCount(); n > 0 {
			fmt.Fprintf(&b, "  %s: %d\n", name, n)
		}
	}
	duplicates := table.NumRows() - table.DropDuplicates().NumRows()
	fmt.Fprintf(&b, "Duplicate rows: %d\n", duplicates)
	return b.String()
}

// Clean asks the model for a cleaning pass, executes it, and returns the
// cleaned table with a description of what was done. Execution failure is
// a typed error and the input table is left as it was.
func (a *CleaningAgent) Clean(ctx context.Context, table *dataset.Table) (*dataset.Table, *CleaningResult, error) {
	system := fmt.Sprintf(cleaningSystemPrompt, sandboxRules)
	user := fmt.Sprintf("%s\n\n%s", datasetContext(table), qualityContext(table))

	var decision cleaningDecision
	if err := a.completeJSON(ctx, system, user, &decision); err != nil {
		return nil, nil, err
	}
	if strings.TrimSpace(decision.Code) == "" {
		a.log("Model produced no cleaning code")
		return nil, nil, &MalformedResponseError{Raw: decision.Summary, Err: fmt.Errorf("cleaning response contained no code")}
	}

	a.log("Applying %d cleaning steps", len(decision.Steps))
	execResult := a.Exec.Run(ctx, decision.Code, table)
	if !execResult.Success {
		a.log("Cleaning execution failed: %s", execResult.Error)
		return nil, nil, &ExecutionError{Message: execResult.Error}
	}

	cleaned := execResult.Table
	result := &CleaningResult{
		Steps:   decision.Steps,
		Code:    decision.Code,
		Summary: decision.Summary,
		Preview: cleaned.Preview(dataset.DefaultPreviewRows),
	}
	a.log("Cleaning complete: %d rows -> %d rows", table.NumRows(), cleaned.NumRows())
	return cleaned, result, nil
}
