package agent

import (
	"context"
	"fmt"
	"strings"

	"dida/dataset"
	"dida/llm"
	"dida/sandbox"
)

const chatSystemPrompt = `You are a data analyst assistant. The user asks questions about their dataset; you answer by writing analysis code when computation is needed, or directly when it is not.

%s

Respond with ONLY a JSON object:
{
  "thought": "brief reasoning about what the question needs",
  "code": "sandbox code computing the answer, or empty string if no computation is needed",
  "response": "natural-language answer for the user"
}
When you write code, phrase response so it reads naturally next to the computed result.`

// ChatAgent answers conversational questions about a dataset, generating
// and executing analysis code when the question calls for computation.
// Chat never mutates the session dataset.
type ChatAgent struct {
	Base
	Exec *sandbox.Executor
}

// NewChatAgent builds a chat agent bound to one session's client.
func NewChatAgent(client llm.Client, exec *sandbox.Executor, logFunc func(string)) *ChatAgent {
	return &ChatAgent{Base: Base{Name: "CHAT", Client: client, Log: logFunc}, Exec: exec}
}

// chatDecision is the model's structured reply for one chat turn.
type chatDecision struct {
	Thought  string `json:"thought"`
	Code     string `json:"code"`
	Response string `json:"response"`
}

// Ask handles one conversational turn. When the model emits code, it runs
// in the sandbox against a copy of the dataset; scalar results are folded
// into the reply text, tabular results ride alongside it, and execution
// failures are reported in the reply rather than failing the turn.
func (a *ChatAgent) Ask(ctx context.Context, table *dataset.Table, message string, history []ChatMessage) (*ChatResult, error) {
	system := fmt.Sprintf(chatSystemPrompt, sandboxRules)

	var user strings.Builder
	user.WriteString(datasetContext(table))
	if h := renderHistory(history); h != "" {
		user.WriteString("\n\n")
		user.WriteString(h)
	}
	fmt.Fprintf(&user, "\nUser question: %s", message)

	var decision chatDecision
	if err := a.completeJSON(ctx, system, user.String(), &decision); err != nil {
		return nil, err
	}

	result := &ChatResult{Response: decision.Response, Code: decision.Code}
	if strings.TrimSpace(decision.Code) == "" {
		a.log("Answered without code")
		return result, nil
	}

	a.log("Executing %d chars of generated code", len(decision.Code))
	execResult := a.Exec.Run(ctx, decision.Code, table)
	if !execResult.Success {
		a.log("Execution failed: %s", execResult.Error)
		result.Response += fmt.Sprintf("\n\n(Error executing code: %s)", execResult.Error)
		return result, nil
	}

	normalized := sandbox.Normalize(execResult.Result)
	switch normalized.Kind {
	case sandbox.KindScalar:
		result.Response += fmt.Sprintf("\n\nResult: %v", normalized.Scalar)
	case sandbox.KindTable, sandbox.KindSeries:
		result.Data = normalized
	}
	result.ChartImage = execResult.Image
	return result, nil
}
