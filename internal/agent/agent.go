package agent

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/hession/reagent/internal/logger"
	"github.com/hession/reagent/internal/tools"
)

const (
	// DefaultMaxIterations caps a run when no limit is configured
	DefaultMaxIterations = 15
)

// Completer turns a rendered prompt into completion text
type Completer interface {
	Complete(ctx context.Context, prompt string) (string, error)
}

// Agent runs the ReAct loop: render, complete, parse, act, repeat
type Agent struct {
	llm                Completer
	registry           *tools.Registry
	renderer           *Renderer
	maxIterations      int
	maxDuration        time.Duration
	stepHandler        func(step Step)
	observationHandler func(action *Action, observation string)
	now                func() time.Time
}

// Option agent configuration option
type Option func(*Agent)

// WithMaxIterations bounds the number of completions per run
func WithMaxIterations(n int) Option {
	return func(a *Agent) {
		a.maxIterations = n
	}
}

// WithMaxDuration bounds the wall-clock time of a run, zero meaning no bound.
// The bound is checked before each completion.
func WithMaxDuration(d time.Duration) Option {
	return func(a *Agent) {
		a.maxDuration = d
	}
}

// WithStepHandler sets the handler called with every parsed step
func WithStepHandler(handler func(step Step)) Option {
	return func(a *Agent) {
		a.stepHandler = handler
	}
}

// WithObservationHandler sets the handler called after every tool invocation
func WithObservationHandler(handler func(action *Action, observation string)) Option {
	return func(a *Agent) {
		a.observationHandler = handler
	}
}

// Result outcome of a finished run
type Result struct {
	RunID        string
	ReturnValues map[string]string
	History      []Entry
	Iterations   int
	Elapsed      time.Duration
}

// Output returns the "output" return value
func (r *Result) Output() string {
	return r.ReturnValues[OutputKey]
}

// New creates a new Agent instance
func New(llm Completer, registry *tools.Registry, template string, opts ...Option) (*Agent, error) {
	if llm == nil {
		return nil, fmt.Errorf("agent requires a completion client")
	}
	if registry == nil {
		return nil, fmt.Errorf("agent requires a tool registry")
	}

	renderer, err := NewRenderer(template, registry)
	if err != nil {
		return nil, err
	}

	a := &Agent{
		llm:           llm,
		registry:      registry,
		renderer:      renderer,
		maxIterations: DefaultMaxIterations,
		now:           time.Now,
	}

	for _, opt := range opts {
		opt(a)
	}

	if a.maxIterations <= 0 {
		a.maxIterations = DefaultMaxIterations
	}

	return a, nil
}

// Run answers question. It returns when the model gives a final answer, or
// with an error on a parse failure, an unknown tool, a tool or transport
// failure, a canceled context, or an exceeded limit.
func (a *Agent) Run(ctx context.Context, question string) (*Result, error) {
	runID := uuid.New().String()
	start := a.now()
	var history []Entry

	log := logger.With("run_id", runID)
	log.Info("started: %q (max_iterations=%d, max_duration=%s)", question, a.maxIterations, a.maxDuration)

	for i := 0; ; i++ {
		elapsed := a.now().Sub(start)
		if i >= a.maxIterations {
			return nil, exceeded(log, "max_iterations", i, elapsed)
		}
		if a.maxDuration > 0 && elapsed >= a.maxDuration {
			return nil, exceeded(log, "max_duration", i, elapsed)
		}
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		prompt := a.renderer.Render(question, history)
		text, err := a.llm.Complete(ctx, prompt)
		if err != nil {
			log.Error("completion %d failed: %v", i+1, err)
			return nil, fmt.Errorf("failed to call LLM: %w", err)
		}

		step, err := Parse(text)
		if err != nil {
			log.Error("%v", err)
			return nil, err
		}

		if a.stepHandler != nil {
			a.stepHandler(step)
		}

		switch s := step.(type) {
		case *Finish:
			result := &Result{
				RunID:        runID,
				ReturnValues: s.ReturnValues,
				History:      history,
				Iterations:   i + 1,
				Elapsed:      a.now().Sub(start),
			}
			log.Info("finished after %d iteration(s): %v", result.Iterations, result.ReturnValues)
			return result, nil

		case *Action:
			observation, err := a.execute(ctx, log, s)
			if err != nil {
				log.Error("%v", err)
				return nil, err
			}
			history = append(history, Entry{Action: s, Observation: observation})

			if a.observationHandler != nil {
				a.observationHandler(s, observation)
			}
		}
	}
}

// execute resolves the action's tool and invokes it
func (a *Agent) execute(ctx context.Context, log *logger.Scope, action *Action) (string, error) {
	tool, err := a.registry.Find(action.Tool)
	if err != nil {
		return "", err
	}

	log.With("tool", action.Tool).Debug("invoking with input %q", action.ToolInput)
	observation, err := tool.Invoke(ctx, action.ToolInput)
	if err != nil {
		return "", fmt.Errorf("tool %s failed: %w", action.Tool, err)
	}
	return observation, nil
}

func exceeded(log *logger.Scope, limit string, iterations int, elapsed time.Duration) error {
	err := &LoopExceededError{Limit: limit, Iterations: iterations, Elapsed: elapsed}
	log.Warn("%v", err)
	return err
}

// Tools returns the registry the agent dispatches to
func (a *Agent) Tools() *tools.Registry {
	return a.registry
}
