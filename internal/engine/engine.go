// Package engine drives a MATLAB-compatible numerical session used to run
// the supplemental programs and save their figures.
package engine

import (
	"context"
	"fmt"
	"regexp"
	"strings"
)

// Output holds what one invocation wrote to the session's streams.
type Output struct {
	Stdout string
	Stderr string
}

// Session is a single long-lived engine instance. Calls are sequential;
// state set by one call (working directory, workspace, open figures)
// persists into the next.
type Session interface {
	Cd(dir string) error
	AddPath(dir string) error
	Clear() error
	CloseAll() error
	Invoke(name string) (Output, error)
	Delete(pattern string) error
	SaveFigures(dir, prefix string) error
	Close() error
}

// Starter launches sessions.
type Starter interface {
	Start(ctx context.Context) (Session, error)
	String() string
}

// ExecutionError is an error raised by code running inside the engine.
// The session remains usable after one.
type ExecutionError struct {
	Command string
	Message string
}

func (e *ExecutionError) Error() string {
	return fmt.Sprintf("engine: %s: %s", e.Command, e.Message)
}

// Reset puts s into a clean state in dir: working directory changed, dir
// on the search path, workspace cleared, figure windows closed.
func Reset(s Session, dir string) error {
	if err := s.Cd(dir); err != nil {
		return fmt.Errorf("changing directory: %w", err)
	}
	if err := s.AddPath(dir); err != nil {
		return fmt.Errorf("adding path: %w", err)
	}
	if err := s.Clear(); err != nil {
		return fmt.Errorf("clearing workspace: %w", err)
	}
	if err := s.CloseAll(); err != nil {
		return fmt.Errorf("closing figures: %w", err)
	}
	return nil
}

var identRe = regexp.MustCompile(`^[A-Za-z][A-Za-z0-9_]*$`)

// ValidName reports whether name can be invoked as a script.
func ValidName(name string) bool {
	return identRe.MatchString(name)
}

// quote returns s as a single-quoted engine string literal.
func quote(s string) string {
	return "'" + strings.ReplaceAll(s, "'", "''") + "'"
}
