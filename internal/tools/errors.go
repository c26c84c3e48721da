package tools

import (
	"errors"
	"fmt"
)

var (
	// ErrToolNotFound is matched by every lookup miss
	ErrToolNotFound = errors.New("tool not found")

	// ErrToolExists is returned when registering a duplicate name
	ErrToolExists = errors.New("tool already exists")
)

// NotFoundError reports the name that failed to resolve
type NotFoundError struct {
	Name      string
	Available []string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("tool with name %q not found (available: %v)", e.Name, e.Available)
}

func (e *NotFoundError) Unwrap() error {
	return ErrToolNotFound
}
