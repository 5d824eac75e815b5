package runner

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/jorge-barreto/spdocs/internal/artifacts"
	"github.com/jorge-barreto/spdocs/internal/discover"
	"github.com/jorge-barreto/spdocs/internal/engine"
	"github.com/jorge-barreto/spdocs/internal/runlog"
	"github.com/jorge-barreto/spdocs/internal/ux"
)

// Recorder persists a finished run log somewhere besides the text file.
type Recorder interface {
	Record(ctx context.Context, l *runlog.Log) error
}

// Runner executes programs one at a time in a single engine session.
type Runner struct {
	Programs    discover.Set
	Starter     engine.Starter
	ImageExt    string
	SaveFigures bool
	Only        []string
	RunLogPath  string
	History     Recorder

	// Now defaults to time.Now.
	Now func() time.Time
}

func (r *Runner) now() time.Time {
	if r.Now != nil {
		return r.Now()
	}
	return time.Now()
}

// Selected returns the ids to run, in sorted order.
func (r *Runner) Selected() ([]string, error) {
	if len(r.Only) == 0 {
		return r.Programs.IDs(), nil
	}
	var ids []string
	seen := make(map[string]bool)
	for _, id := range r.Only {
		if _, ok := r.Programs[id]; !ok {
			return nil, fmt.Errorf("unknown program %q", id)
		}
		if !seen[id] {
			seen[id] = true
			ids = append(ids, id)
		}
	}
	sort.Strings(ids)
	return ids, nil
}

// Run executes the selected programs, writes the run log and returns it.
// A program that fails is recorded and the batch continues. Cancelling ctx
// stops the batch before the next program; the partial log is still written.
func (r *Runner) Run(ctx context.Context) (*runlog.Log, error) {
	ids, err := r.Selected()
	if err != nil {
		return nil, err
	}

	log := &runlog.Log{
		RunID:   uuid.NewString(),
		Engine:  r.Starter.String(),
		Started: r.now(),
	}

	// The session outlives ctx so an interrupted batch can still shut the
	// engine down through Close.
	sess, err := r.Starter.Start(context.WithoutCancel(ctx))
	if err != nil {
		return nil, err
	}

	total := len(ids)
	var interrupted error
	for i, id := range ids {
		if ctx.Err() != nil {
			interrupted = ctx.Err()
			break
		}
		ux.ProgramHeader(i, total, id)
		entry := r.runProgram(sess, r.Programs[id])
		log.Add(entry)
		if entry.Success {
			ux.ProgramComplete(id, entry.Elapsed)
		} else {
			ux.ProgramFail(id, entry.Error)
		}
	}

	if err := sess.Close(); err != nil {
		fmt.Fprintf(os.Stderr, "warning: engine shutdown: %v\n", err)
	}
	log.Finished = r.now()

	if r.RunLogPath != "" {
		if err := log.Write(r.RunLogPath); err != nil {
			return log, err
		}
	}
	if r.History != nil {
		if err := r.History.Record(context.WithoutCancel(ctx), log); err != nil {
			fmt.Fprintf(os.Stderr, "warning: recording run history: %v\n", err)
		}
	}

	ux.RunSummary(len(log.Entries), len(log.Failed()), r.RunLogPath)
	return log, interrupted
}

// runProgram resets the session, invokes the program and collects its
// outputs. Every failure lands on the returned entry.
func (r *Runner) runProgram(sess engine.Session, prog *discover.Program) runlog.Entry {
	start := r.now()
	entry := runlog.Entry{Program: prog.ID}
	var problems []string

	if err := engine.Reset(sess, prog.Dir); err != nil {
		// Without the right working directory nothing below is safe to run.
		entry.Error = err.Error()
		entry.Elapsed = r.now().Sub(start)
		return entry
	}

	out, invokeErr := sess.Invoke(prog.Invocation)
	stderr := out.Stderr
	if invokeErr != nil {
		msg := invokeErr.Error()
		var execErr *engine.ExecutionError
		if errors.As(invokeErr, &execErr) && execErr.Message != "" {
			msg = execErr.Message
		}
		problems = append(problems, msg)
		stderr = appendLine(stderr, msg)
	}
	slog.Debug("program finished", "program", prog.ID, "stdout", len(out.Stdout), "stderr", len(stderr), "error", invokeErr)

	if err := writeCapture(filepath.Join(prog.Dir, prog.ID+artifacts.StdoutSuffix), out.Stdout); err != nil {
		problems = append(problems, err.Error())
	}
	if err := writeCapture(filepath.Join(prog.Dir, prog.ID+artifacts.StderrSuffix), stderr); err != nil {
		problems = append(problems, err.Error())
	}

	if r.SaveFigures {
		if err := sess.Delete("*" + r.ImageExt); err != nil {
			problems = append(problems, fmt.Sprintf("deleting stale figures: %v", err))
		} else if err := sess.SaveFigures(prog.Dir, prog.ID); err != nil {
			problems = append(problems, fmt.Sprintf("saving figures: %v", err))
		}
	}

	entry.Success = len(problems) == 0
	entry.Error = strings.Join(problems, "\n")
	entry.Elapsed = r.now().Sub(start)
	return entry
}

// writeCapture saves a captured stream, or removes a stale capture when
// the stream was empty this time.
func writeCapture(path, content string) error {
	if strings.TrimSpace(content) == "" {
		if err := os.Remove(path); err != nil && !errors.Is(err, os.ErrNotExist) {
			return fmt.Errorf("removing stale %s: %w", filepath.Base(path), err)
		}
		return nil
	}
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		return fmt.Errorf("writing %s: %w", filepath.Base(path), err)
	}
	return nil
}

func appendLine(s, line string) string {
	if s != "" && !strings.HasSuffix(s, "\n") {
		s += "\n"
	}
	return s + line + "\n"
}

// DryRunPrint prints the batch plan without starting the engine.
func (r *Runner) DryRunPrint() error {
	ids, err := r.Selected()
	if err != nil {
		return err
	}
	ux.DryRun(r.Starter.String(), ids, r.Programs, r.SaveFigures)
	return nil
}
