// Package llm wraps the language-model boundary: one completion call in,
// raw text out. Failures propagate unchanged to the caller; the package
// never retries.
package llm

import "context"

// Client performs one completion exchange. Implementations must not retry:
// upstream failures (quota, network, credentials) propagate to the caller
// as-is.
type Client interface {
	Complete(ctx context.Context, system, user string) (string, error)
}

// KeyResolver resolves the API key to use for a session. An empty session
// ID resolves to the system-level key.
type KeyResolver interface {
	ResolveKey(sessionID string) (string, error)
}

// CompleteFunc adapts a plain function to the Client interface; used by
// tests to stub deterministic model responses.
type CompleteFunc func(ctx context.Context, system, user string) (string, error)

// Complete implements Client.
func (f CompleteFunc) Complete(ctx context.Context, system, user string) (string, error) {
	return f(ctx, system, user)
}
