package ai

import "context"

// Completer sends one system+user prompt pair and returns the raw reply.
type Completer interface {
	Complete(ctx context.Context, system, user string) (string, error)
}
