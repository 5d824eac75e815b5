package runlog

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func sampleLog() *Log {
	start := time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC)
	l := &Log{
		RunID:   "run-1",
		Engine:  "matlab -nodesktop",
		Started: start,
	}
	l.Add(Entry{Program: "sp_02_01", Success: false, Error: "Undefined function 'foo'.\nError in sp_02_01 (line 3)", Elapsed: 500 * time.Millisecond})
	l.Add(Entry{Program: "sp_07_01", Success: true, Elapsed: 1250 * time.Millisecond})
	l.Finished = start.Add(2 * time.Second)
	return l
}

func TestString_Blocks(t *testing.T) {
	s := sampleLog().String()
	for _, want := range []string{
		"run id:   run-1\n",
		"started:  2024-03-01T10:00:00Z\n",
		"\nsp_02_01\n  status:  failed\n  error:\n    Undefined function 'foo'.\n    Error in sp_02_01 (line 3)\n  elapsed: 0.500 s\n",
		"\nsp_07_01\n  status:  succeeded\n  elapsed: 1.250 s\n",
		"2 programs, 1 failed\n",
		"finished: 2024-03-01T10:00:02Z\n",
	} {
		if !strings.Contains(s, want) {
			t.Fatalf("log missing %q:\n%s", want, s)
		}
	}
	if strings.Index(s, "sp_02_01") > strings.Index(s, "sp_07_01") {
		t.Fatal("entries out of order")
	}
}

func TestFailed(t *testing.T) {
	failed := sampleLog().Failed()
	if len(failed) != 1 || failed[0].Program != "sp_02_01" {
		t.Fatalf("got %+v", failed)
	}
}

func TestWrite(t *testing.T) {
	path := filepath.Join(t.TempDir(), "gen_md", "run_log.txt")
	l := sampleLog()
	if err := l.Write(path); err != nil {
		t.Fatal(err)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if string(data) != l.String() {
		t.Fatal("written log differs from String()")
	}
}

func TestFormatElapsed(t *testing.T) {
	if got := FormatElapsed(1500 * time.Millisecond); got != "1.500 s" {
		t.Fatalf("got %q", got)
	}
}

func TestString_ZeroTimes(t *testing.T) {
	s := (&Log{}).String()
	if !strings.Contains(s, "started:  -\n") || !strings.Contains(s, "finished: -\n") {
		t.Fatalf("got:\n%s", s)
	}
}
