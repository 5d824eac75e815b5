package engine

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strings"
	"sync"

	"github.com/google/uuid"
)

const markerPrefix = "@@spdocs"

// ErrSessionEnded is returned when the engine stops producing output
// before acknowledging a command.
var ErrSessionEnded = errors.New("engine: session ended unexpectedly")

// ReplSession talks to an engine over its standard streams. Every command
// is sent as one line wrapped in try/catch and followed by sentinel lines
// on stdout and stderr carrying a fresh nonce, so output can be attributed
// to the command that produced it.
type ReplSession struct {
	stdin  io.WriteCloser
	stdout *bufio.Reader
	stderr <-chan string
	wait   func() error

	imageExt string
	prompt   string
	flush    bool

	mu     sync.Mutex
	closed bool
}

func newReplSession(stdin io.WriteCloser, stdout, stderr io.Reader, wait func() error, imageExt, prompt string, flush bool) *ReplSession {
	chunks := make(chan string, 1)
	go splitStderr(stderr, chunks)
	return &ReplSession{
		stdin:    stdin,
		stdout:   bufio.NewReader(stdout),
		stderr:   chunks,
		wait:     wait,
		imageExt: imageExt,
		prompt:   prompt,
		flush:    flush,
	}
}

// splitStderr forwards stderr text in chunks, one per "done" sentinel.
func splitStderr(r io.Reader, chunks chan<- string) {
	defer close(chunks)
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	var lines []string
	for scanner.Scan() {
		line := scanner.Text()
		if strings.HasPrefix(line, markerPrefix+" ") && strings.HasSuffix(line, " done") {
			chunks <- joinOutput(lines)
			lines = nil
			continue
		}
		lines = append(lines, line)
	}
}

// wrap builds the single command line for code tagged with nonce. With
// flush set, stdout is flushed before the stderr sentinel and stderr after
// it, for engines that block-buffer their streams on a pipe.
func wrap(code, nonce string, flush bool) string {
	m := markerPrefix + " " + nonce
	var flushOut, flushErr string
	if flush {
		flushOut, flushErr = " fflush(stdout);", " fflush(stderr);"
	}
	return fmt.Sprintf(
		"try, %s, fprintf('\\n%s ok\\n'); catch, fprintf('\\n%s err %%s\\n', strrep(lasterr, char(10), '\\n')); end,%s fprintf(2, '\\n%s done\\n');%s\n",
		code, m, m, flushOut, m, flushErr)
}

// exec runs one command and returns its captured output.
func (s *ReplSession) exec(code string) (Output, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return Output{}, ErrSessionEnded
	}

	nonce := uuid.NewString()
	if _, err := io.WriteString(s.stdin, wrap(code, nonce, s.flush)); err != nil {
		return Output{}, fmt.Errorf("engine: sending command: %w", err)
	}

	marker := markerPrefix + " " + nonce + " "
	var lines []string
	var execErr error
	for {
		line, err := s.stdout.ReadString('\n')
		if err != nil && line == "" {
			return Output{Stdout: joinOutput(lines)}, ErrSessionEnded
		}
		line = strings.TrimRight(line, "\r\n")
		line = s.stripPrompt(line)
		if rest, ok := strings.CutPrefix(line, marker); ok {
			if msg, failed := strings.CutPrefix(rest, "err "); failed {
				execErr = &ExecutionError{Command: code, Message: strings.ReplaceAll(msg, `\n`, "\n")}
			} else if rest == "err" {
				execErr = &ExecutionError{Command: code}
			}
			break
		}
		lines = append(lines, line)
		if err != nil {
			return Output{Stdout: joinOutput(lines)}, ErrSessionEnded
		}
	}

	out := Output{Stdout: joinOutput(lines)}
	stderr, ok := <-s.stderr
	if !ok {
		return out, ErrSessionEnded
	}
	out.Stderr = stderr
	return out, execErr
}

func (s *ReplSession) stripPrompt(line string) string {
	if s.prompt == "" {
		return line
	}
	for strings.HasPrefix(line, s.prompt) {
		line = line[len(s.prompt):]
	}
	return line
}

// joinOutput rebuilds text from lines, dropping the blank line the
// sentinel's leading newline introduces.
func joinOutput(lines []string) string {
	if n := len(lines); n > 0 && lines[n-1] == "" {
		lines = lines[:n-1]
	}
	if len(lines) == 0 {
		return ""
	}
	return strings.Join(lines, "\n") + "\n"
}

func (s *ReplSession) run(code string) error {
	_, err := s.exec(code)
	return err
}

func (s *ReplSession) Cd(dir string) error {
	return s.run("cd(" + quote(filepath.ToSlash(dir)) + ")")
}

func (s *ReplSession) AddPath(dir string) error {
	return s.run("addpath(" + quote(filepath.ToSlash(dir)) + ")")
}

func (s *ReplSession) Clear() error {
	return s.run("clear")
}

func (s *ReplSession) CloseAll() error {
	return s.run("close all")
}

// Invoke runs the script name from the current directory.
func (s *ReplSession) Invoke(name string) (Output, error) {
	if !ValidName(name) {
		return Output{}, fmt.Errorf("engine: %q is not a valid script name", name)
	}
	return s.exec(name)
}

// Delete removes files matching pattern in the current directory.
func (s *ReplSession) Delete(pattern string) error {
	return s.run("delete(" + quote(pattern) + ")")
}

// SaveFigures writes every open figure to dir as <prefix>_figNN<ext>,
// numbered in figure-handle order.
func (s *ReplSession) SaveFigures(dir, prefix string) error {
	code := fmt.Sprintf(
		"spdocsH__ = sort(double(findobj(0, 'Type', 'figure'))); "+
			"for spdocsI__ = 1:numel(spdocsH__), saveas(spdocsH__(spdocsI__), fullfile(%s, sprintf('%%s_fig%%02d%s', %s, spdocsI__))); end, "+
			"clear spdocsH__ spdocsI__",
		quote(filepath.ToSlash(dir)), s.imageExt, quote(prefix))
	return s.run(code)
}

// Close asks the engine to exit and waits for it.
func (s *ReplSession) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return nil
	}
	s.closed = true

	_, writeErr := io.WriteString(s.stdin, "exit\n")
	s.stdin.Close()
	io.Copy(io.Discard, s.stdout)
	for range s.stderr {
	}
	waitErr := s.wait()
	if writeErr != nil && waitErr == nil {
		return fmt.Errorf("engine: sending exit: %w", writeErr)
	}
	if waitErr != nil {
		return fmt.Errorf("engine: waiting for exit: %w", waitErr)
	}
	return nil
}
