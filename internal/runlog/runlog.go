// Package runlog records the outcome of each program in an execution batch
// and renders the plain-text run log.
package runlog

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"
)

type Entry struct {
	Program string
	Success bool
	Error   string
	Elapsed time.Duration
}

// Status is "succeeded" or "failed".
func (e Entry) Status() string {
	if e.Success {
		return "succeeded"
	}
	return "failed"
}

// Log is the ordered record of one batch.
type Log struct {
	RunID    string
	Engine   string
	Started  time.Time
	Finished time.Time
	Entries  []Entry
}

// Add appends an entry.
func (l *Log) Add(e Entry) {
	l.Entries = append(l.Entries, e)
}

// Failed returns the entries that did not succeed.
func (l *Log) Failed() []Entry {
	var failed []Entry
	for _, e := range l.Entries {
		if !e.Success {
			failed = append(failed, e)
		}
	}
	return failed
}

// String renders the log: a header, one block per program, and the end time.
func (l *Log) String() string {
	var b strings.Builder
	b.WriteString("Program run log\n")
	b.WriteString("===============\n\n")
	fmt.Fprintf(&b, "run id:   %s\n", l.RunID)
	fmt.Fprintf(&b, "engine:   %s\n", l.Engine)
	fmt.Fprintf(&b, "started:  %s\n", formatTime(l.Started))

	for _, e := range l.Entries {
		fmt.Fprintf(&b, "\n%s\n", e.Program)
		fmt.Fprintf(&b, "  status:  %s\n", e.Status())
		if e.Error != "" {
			b.WriteString("  error:\n")
			for _, line := range strings.Split(strings.TrimRight(e.Error, "\n"), "\n") {
				fmt.Fprintf(&b, "    %s\n", line)
			}
		}
		fmt.Fprintf(&b, "  elapsed: %s\n", FormatElapsed(e.Elapsed))
	}

	fmt.Fprintf(&b, "\n%d programs, %d failed\n", len(l.Entries), len(l.Failed()))
	fmt.Fprintf(&b, "finished: %s\n", formatTime(l.Finished))
	return b.String()
}

// Write saves the rendered log to path, creating the parent directory.
func (l *Log) Write(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("runlog: creating %s: %w", filepath.Dir(path), err)
	}
	if err := os.WriteFile(path, []byte(l.String()), 0644); err != nil {
		return fmt.Errorf("runlog: writing %s: %w", path, err)
	}
	return nil
}

// FormatElapsed renders seconds with millisecond precision, e.g. "1.250 s".
func FormatElapsed(d time.Duration) string {
	return fmt.Sprintf("%.3f s", d.Seconds())
}

func formatTime(t time.Time) string {
	if t.IsZero() {
		return "-"
	}
	return t.Format(time.RFC3339)
}
