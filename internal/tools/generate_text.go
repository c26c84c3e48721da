package tools

import (
	"context"
	"fmt"
	"strings"

	"github.com/hession/reagent/internal/logger"
)

// Completer turns a prompt into generated text
type Completer interface {
	Complete(ctx context.Context, prompt string) (string, error)
}

// GenerateTextTool writes a short paragraph about a topic
type GenerateTextTool struct {
	completer Completer
	template  string // must contain {topic}
}

// NewGenerateTextTool creates a new text generation tool.
// An empty template falls back to "write paragraph about {topic}".
func NewGenerateTextTool(completer Completer, template string) *GenerateTextTool {
	if strings.TrimSpace(template) == "" {
		template = "write paragraph about {topic}"
	}
	return &GenerateTextTool{
		completer: completer,
		template:  template,
	}
}

func (t *GenerateTextTool) Name() string {
	return "generate_text"
}

func (t *GenerateTextTool) Description() string {
	return "Write a description on a given topic within 100 words"
}

func (t *GenerateTextTool) Invoke(ctx context.Context, input string) (string, error) {
	if t.completer == nil {
		return "", fmt.Errorf("generate_text: no completion client configured")
	}

	logger.Info("write paragraph enter with topic=%q", input)

	prompt := strings.ReplaceAll(t.template, "{topic}", input)
	text, err := t.completer.Complete(ctx, prompt)
	if err != nil {
		return "", fmt.Errorf("generate_text: %w", err)
	}
	return text, nil
}
