package translate

import "context"

// ContextReader looks up the stored profile text for a collection.
type ContextReader interface {
	Get(ctx context.Context, key string) (string, bool, error)
}

// Completer turns a prompt into model output.
type Completer interface {
	Complete(ctx context.Context, prompt string) (string, error)
}
