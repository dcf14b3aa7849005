// Package agent houses the task agents that turn natural-language requests
// into generated analysis code, run it against the session dataset through
// the sandbox, and shape the results for transport.
package agent

import (
	"context"
	"fmt"

	"dida/llm"
)

// Base carries the collaborators shared by every task agent: a completion
// client bound to the caller's session and an optional logger.
type Base struct {
	Name   string
	Client llm.Client
	Log    func(string)
}

func (b *Base) log(format string, args ...interface{}) {
	if b.Log != nil {
		b.Log(fmt.Sprintf("[%s] %s", b.Name, fmt.Sprintf(format, args...)))
	}
}

// complete sends one system+user prompt pair and returns the raw reply.
func (b *Base) complete(ctx context.Context, system, user string) (string, error) {
	b.log("Sending completion request (%d prompt chars)", len(system)+len(user))
	reply, err := b.Client.Complete(ctx, system, user)
	if err != nil {
		return "", fmt.Errorf("completion failed: %w", err)
	}
	b.log("Received %d chars", len(reply))
	return reply, nil
}

// completeJSON sends one prompt pair and parses the structured reply into v.
func (b *Base) completeJSON(ctx context.Context, system, user string, v interface{}) error {
	reply, err := b.complete(ctx, system, user)
	if err != nil {
		return err
	}
	if err := ParseJSON(reply, v); err != nil {
		b.log("Malformed response: %.200s", reply)
		return err
	}
	return nil
}
