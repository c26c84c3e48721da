package tools

import "context"

// Tool a named capability the model can ask the loop to invoke
type Tool interface {
	Name() string        // Tool name, as written after "Action:"
	Description() string // Tool description (rendered into the prompt)
	Invoke(ctx context.Context, input string) (string, error)
}
