package agent

import (
	"errors"
	"fmt"
	"time"
)

var (
	// ErrParse is matched by every *ParseError
	ErrParse = errors.New("could not parse LLM output")

	// ErrLoopExceeded is matched by every *LoopExceededError
	ErrLoopExceeded = errors.New("agent loop exceeded its limit")
)

// ParseError completion text that is neither an action nor a final answer
type ParseError struct {
	Text   string // Raw completion text
	Reason string // What was missing or conflicting
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("%v: %s: `%s`", ErrParse, e.Reason, e.Text)
}

func (e *ParseError) Unwrap() error {
	return ErrParse
}

// LoopExceededError the loop hit its iteration or wall-clock bound
type LoopExceededError struct {
	Limit      string // "max_iterations" or "max_duration"
	Iterations int
	Elapsed    time.Duration
}

func (e *LoopExceededError) Error() string {
	return fmt.Sprintf("%v: %s reached after %d iteration(s) in %s",
		ErrLoopExceeded, e.Limit, e.Iterations, e.Elapsed.Round(time.Millisecond))
}

func (e *LoopExceededError) Unwrap() error {
	return ErrLoopExceeded
}
