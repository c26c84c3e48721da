package agent

import (
	"fmt"
	"strings"

	"github.com/hession/reagent/internal/tools"
)

// Template placeholders
const (
	placeholderTools      = "{tools}"
	placeholderToolNames  = "{tool_names}"
	placeholderInput      = "{input}"
	placeholderScratchpad = "{agent_scratchpad}"
)

const (
	observationPrefix = "Observation: "
	thoughtPrefix     = "Thought: "
)

// Renderer formats the instruction template. Tool descriptions and names
// are bound at construction; question and scratchpad vary per call.
type Renderer struct {
	template string
}

// NewRenderer binds the registry's tools into template
func NewRenderer(template string, registry *tools.Registry) (*Renderer, error) {
	for _, p := range []string{placeholderInput, placeholderScratchpad} {
		if !strings.Contains(template, p) {
			return nil, fmt.Errorf("prompt template is missing placeholder %s", p)
		}
	}

	bound := strings.NewReplacer(
		placeholderTools, registry.Describe(),
		placeholderToolNames, strings.Join(registry.Names(), ","),
	).Replace(template)

	return &Renderer{template: bound}, nil
}

// Render produces the prompt for question given the history so far.
// Substitution is a single pass, so placeholders inside the question or
// observations are left as written.
func (r *Renderer) Render(question string, history []Entry) string {
	return strings.NewReplacer(
		placeholderInput, question,
		placeholderScratchpad, FormatScratchpad(history),
	).Replace(r.template)
}

// FormatScratchpad replays each action log followed by its observation
func FormatScratchpad(history []Entry) string {
	var b strings.Builder
	for _, e := range history {
		b.WriteString(e.Action.Log())
		b.WriteString("\n")
		b.WriteString(observationPrefix)
		b.WriteString(e.Observation)
		b.WriteString("\n")
		b.WriteString(thoughtPrefix)
	}
	return b.String()
}
