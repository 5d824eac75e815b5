package artifacts

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

var testLayout = Layout{
	SourceExt:       ".m",
	ImageExt:        ".png",
	TextExts:        []string{".txt", ".dat"},
	InlineLineLimit: 200,
}

func write(t *testing.T, dir, name, content string) {
	t.Helper()
	if err := os.WriteFile(filepath.Join(dir, name), []byte(content), 0644); err != nil {
		t.Fatal(err)
	}
}

func lines(n int) string {
	return strings.Repeat("x\n", n)
}

func TestScan_FiguresNumberedAlphabetically(t *testing.T) {
	dir := t.TempDir()
	write(t, dir, "sp_01_01.m", "")
	write(t, dir, "fig02.png", "")
	write(t, dir, "fig01.png", "")
	write(t, dir, "a_first.png", "")

	out, err := Scan(dir, "sp_01_01", testLayout)
	if err != nil {
		t.Fatal(err)
	}
	want := []string{"a_first.png", "fig01.png", "fig02.png"}
	if len(out.Figures) != len(want) {
		t.Fatalf("figures = %+v", out.Figures)
	}
	for i, f := range out.Figures {
		if filepath.Base(f.Path) != want[i] || f.Ordinal != i+1 {
			t.Fatalf("figure %d = %+v", i, f)
		}
	}

	again, err := Scan(dir, "sp_01_01", testLayout)
	if err != nil {
		t.Fatal(err)
	}
	for i := range out.Figures {
		if again.Figures[i] != out.Figures[i] {
			t.Fatalf("ordinals changed between scans: %+v vs %+v", again.Figures, out.Figures)
		}
	}
}

func TestScan_TextOutputs(t *testing.T) {
	dir := t.TempDir()
	write(t, dir, "sp_01_01.m", "")
	write(t, dir, "sp_01_01_out.txt", "hello\nworld")
	write(t, dir, "sp_01_01_err.txt", "oops\n")
	write(t, dir, "profile.dat", lines(3))

	out, err := Scan(dir, "sp_01_01", testLayout)
	if err != nil {
		t.Fatal(err)
	}
	if len(out.Figures) != 0 || len(out.Texts) != 3 {
		t.Fatalf("got %+v", out)
	}
	byName := map[string]TextOutput{}
	for _, tx := range out.Texts {
		byName[filepath.Base(tx.Path)] = tx
	}
	stdout := byName["sp_01_01_out.txt"]
	if !stdout.IsStdoutLog || stdout.LineCount != 2 || stdout.Label() != "Standard output" {
		t.Fatalf("stdout = %+v", stdout)
	}
	if !byName["sp_01_01_err.txt"].IsStderrLog {
		t.Fatalf("stderr = %+v", byName["sp_01_01_err.txt"])
	}
	dat := byName["profile.dat"]
	if dat.IsStdoutLog || dat.LineCount != 3 || dat.Label() != "`profile.dat`" {
		t.Fatalf("dat = %+v", dat)
	}
}

func TestScan_StdoutLogNeedsProgramPrefix(t *testing.T) {
	dir := t.TempDir()
	write(t, dir, "other_out.txt", "x\n")
	out, err := Scan(dir, "sp_01_01", testLayout)
	if err != nil {
		t.Fatal(err)
	}
	if out.Texts[0].IsStdoutLog {
		t.Fatal("file without program prefix flagged as stdout log")
	}
}

func TestScan_InlineThreshold(t *testing.T) {
	dir := t.TempDir()
	write(t, dir, "a200.txt", lines(200))
	write(t, dir, "b201.txt", lines(201))

	out, err := Scan(dir, "sp_01_01", testLayout)
	if err != nil {
		t.Fatal(err)
	}
	if out.Texts[0].LineCount != 200 || !out.Texts[0].Inline() {
		t.Fatalf("200-line file should be inlined: %+v", out.Texts[0])
	}
	if out.Texts[1].LineCount != 201 || out.Texts[1].Inline() {
		t.Fatalf("201-line file should be link-only: %+v", out.Texts[1])
	}
}

func TestScan_UnexpectedExtension(t *testing.T) {
	dir := t.TempDir()
	write(t, dir, "sp_01_01.m", "")
	write(t, dir, "result.csv", "1,2\n")

	_, err := Scan(dir, "sp_01_01", testLayout)
	var ue *UnexpectedFileError
	if !errors.As(err, &ue) {
		t.Fatalf("expected UnexpectedFileError, got %v", err)
	}
	if ue.Ext != ".csv" {
		t.Fatalf("Ext = %q", ue.Ext)
	}
}

func TestScan_IgnoresDotFilesAndDirs(t *testing.T) {
	dir := t.TempDir()
	write(t, dir, ".DS_Store", "")
	os.Mkdir(filepath.Join(dir, "sub"), 0755)

	out, err := Scan(dir, "sp_01_01", testLayout)
	if err != nil {
		t.Fatal(err)
	}
	if !out.Empty() {
		t.Fatalf("expected no outputs, got %+v", out)
	}
}

func TestCountLines(t *testing.T) {
	dir := t.TempDir()
	cases := map[string]int{
		"":          0,
		"a":         1,
		"a\n":       1,
		"a\nb":      2,
		"a\nb\n\n":  3,
	}
	i := 0
	for content, want := range cases {
		name := filepath.Join(dir, strings.Repeat("f", i+1)+".txt")
		i++
		os.WriteFile(name, []byte(content), 0644)
		got, err := CountLines(name)
		if err != nil {
			t.Fatal(err)
		}
		if got != want {
			t.Errorf("CountLines(%q) = %d, want %d", content, got, want)
		}
	}
}
