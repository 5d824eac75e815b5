package engine

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
)

// DefaultPrompt is the interactive prompt MATLAB prints before reading
// each line; it is stripped from captured output.
const DefaultPrompt = ">> "

// Launcher starts an engine process and wraps it in a ReplSession.
type Launcher struct {
	Command  string
	Args     []string
	ImageExt string
	Prompt   string

	// Flush appends explicit stream flushes to every command. Start turns
	// it on for Octave, which buffers stdout when it is not a terminal.
	Flush bool
}

// IsOctave reports whether command names an Octave binary.
func IsOctave(command string) bool {
	base := strings.ToLower(filepath.Base(command))
	base = strings.TrimSuffix(base, ".exe")
	return strings.HasPrefix(base, "octave")
}

func (l *Launcher) String() string {
	return strings.Join(append([]string{l.Command}, l.Args...), " ")
}

// Start launches the engine and waits until it has processed a first
// no-op command, so the startup banner is not attributed to a program.
func (l *Launcher) Start(ctx context.Context) (Session, error) {
	cmd := exec.CommandContext(ctx, l.Command, l.Args...)
	cmd.Env = os.Environ()

	stdin, err := cmd.StdinPipe()
	if err != nil {
		return nil, err
	}
	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return nil, err
	}
	stderr, err := cmd.StderrPipe()
	if err != nil {
		return nil, err
	}
	if err := cmd.Start(); err != nil {
		return nil, fmt.Errorf("engine: starting %s: %w", l.Command, err)
	}
	slog.Debug("engine started", "command", l.String(), "pid", cmd.Process.Pid)

	s := newReplSession(stdin, stdout, stderr, cmd.Wait, l.ImageExt, l.Prompt, l.Flush || IsOctave(l.Command))
	if out, err := s.exec("1;"); err != nil {
		s.Close()
		return nil, fmt.Errorf("engine: %s did not respond: %w", l.Command, err)
	} else if out.Stdout != "" {
		slog.Debug("engine banner", "output", strings.TrimSpace(out.Stdout))
	}
	return s, nil
}

// Preflight checks that the engine binary is available on PATH.
func Preflight(command string) error {
	if _, err := exec.LookPath(command); err != nil {
		return fmt.Errorf("engine binary %q not found in PATH", command)
	}
	return nil
}
