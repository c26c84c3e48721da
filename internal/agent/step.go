package agent

import "fmt"

// Step is what one completion parses into: an *Action or a *Finish
type Step interface {
	isStep()
	// Log is the raw completion text the step was parsed from
	Log() string
}

// Action requests one tool invocation
type Action struct {
	Tool      string
	ToolInput string
	RawLog    string
}

func (*Action) isStep() {}

func (a *Action) Log() string { return a.RawLog }

func (a *Action) String() string {
	return fmt.Sprintf("tool=%q tool_input=%q", a.Tool, a.ToolInput)
}

// Finish ends the loop with the model's answer
type Finish struct {
	ReturnValues map[string]string
	RawLog       string
}

func (*Finish) isStep() {}

func (f *Finish) Log() string { return f.RawLog }

// Output returns the "output" return value
func (f *Finish) Output() string {
	return f.ReturnValues[OutputKey]
}

func (f *Finish) String() string {
	return fmt.Sprintf("return_values=%v", f.ReturnValues)
}

// Entry pairs an action with the observation its tool returned
type Entry struct {
	Action      *Action
	Observation string
}
