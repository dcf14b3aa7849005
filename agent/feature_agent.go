package agent

import (
	"context"
	"fmt"
	"strings"

	"dida/dataset"
	"dida/llm"
	"dida/sandbox"
)

const featureSystemPrompt = `You are a feature engineering specialist. You receive a dataset summary and optional user instructions, and produce code that derives new feature columns: ratios, aggregates, date parts, binned ranges, interaction terms.

%s

Your code must add the new columns to df (use df.AddComputed or df.AddColumn). Do not drop existing columns unless instructed. Do not assign to result.

Respond with ONLY a JSON object:
{
  "new_features": ["name of each new column"],
  "code": "sandbox code deriving the features",
  "summary": "one-paragraph summary of the features and their rationale"
}`

// FeatureAgent generates and applies a feature-engineering pass. Like
// cleaning, the session dataset is replaced only on successful execution.
type FeatureAgent struct {
	Base
	Exec *sandbox.Executor
}

// NewFeatureAgent builds a feature agent bound to one session's client.
func NewFeatureAgent(client llm.Client, exec *sandbox.Executor, logFunc func(string)) *FeatureAgent {
	return &FeatureAgent{Base: Base{Name: "FEATURE", Client: client, Log: logFunc}, Exec: exec}
}

type featureDecision struct {
	NewFeatures []string `json:"new_features"`
	Code        string   `json:"code"`
	Summary     string   `json:"summary"`
}

// Engineer asks the model for derived features and applies them. An empty
// instructions string lets the model choose features on its own.
func (a *FeatureAgent) Engineer(ctx context.Context, table *dataset.Table, instructions string) (*dataset.Table, *FeatureResult, error) {
	system := fmt.Sprintf(featureSystemPrompt, sandboxRules)

	var user strings.Builder
	user.WriteString(datasetContext(table))
	if strings.TrimSpace(instructions) != "" {
		fmt.Fprintf(&user, "\n\nUser instructions: %s", instructions)
	} else {
		user.WriteString("\n\nNo specific instructions; propose the most useful features for this dataset.")
	}

	var decision featureDecision
	if err := a.completeJSON(ctx, system, user.String(), &decision); err != nil {
		return nil, nil, err
	}
	if strings.TrimSpace(decision.Code) == "" {
		a.log("Model produced no feature code")
		return nil, nil, &MalformedResponseError{Raw: decision.Summary, Err: fmt.Errorf("feature response contained no code")}
	}

	a.log("Deriving %d features", len(decision.NewFeatures))
	execResult := a.Exec.Run(ctx, decision.Code, table)
	if !execResult.Success {
		a.log("Feature execution failed: %s", execResult.Error)
		return nil, nil, &ExecutionError{Message: execResult.Error}
	}

	engineered := execResult.Table
	result := &FeatureResult{
		NewFeatures: decision.NewFeatures,
		Code:        decision.Code,
		Summary:     decision.Summary,
		Preview:     engineered.Preview(dataset.DefaultPreviewRows),
	}
	a.log("Feature engineering complete: %d -> %d columns", table.NumCols(), engineered.NumCols())
	return engineered, result, nil
}
