// Package artifacts lists the figures and text outputs a program run left
// in its directory.
package artifacts

import (
	"bufio"
	"bytes"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

const (
	// StdoutSuffix and StderrSuffix follow the program id in the names of
	// the captured output logs, e.g. "sp_07_01_out.txt".
	StdoutSuffix = "_out.txt"
	StderrSuffix = "_err.txt"
)

// Layout carries the extension conventions the scanner classifies by.
type Layout struct {
	SourceExt       string
	ImageExt        string
	TextExts        []string
	InlineLineLimit int
}

type Figure struct {
	Path    string
	Ordinal int // 1-based, in alphabetical path order
}

type TextOutput struct {
	Path        string
	LineCount   int
	IsStdoutLog bool
	IsStderrLog bool
	InlineLimit int // longest file, in lines, rendered inline
}

// Inline reports whether the file is short enough to embed in the page.
func (t TextOutput) Inline() bool {
	return t.LineCount <= t.InlineLimit
}

// Label is the caption shown above the output in the rendered page.
func (t TextOutput) Label() string {
	switch {
	case t.IsStdoutLog:
		return "Standard output"
	case t.IsStderrLog:
		return "Standard error"
	default:
		return "`" + filepath.Base(t.Path) + "`"
	}
}

type Outputs struct {
	Figures []Figure
	Texts   []TextOutput
}

// Empty reports whether no artifacts of either kind exist.
func (o Outputs) Empty() bool {
	return len(o.Figures) == 0 && len(o.Texts) == 0
}

// UnexpectedFileError reports a file in a program directory whose
// extension is neither source, image, nor a recognised text output.
type UnexpectedFileError struct {
	Path string
	Ext  string
}

func (e *UnexpectedFileError) Error() string {
	return fmt.Sprintf("artifacts: unexpected file type %q: %s", e.Ext, e.Path)
}

// Scan lists the outputs found in dir for program id.
func Scan(dir, id string, layout Layout) (Outputs, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return Outputs{}, fmt.Errorf("artifacts: reading %s: %w", dir, err)
	}

	var figs, texts []string
	for _, e := range entries {
		name := e.Name()
		if e.IsDir() || strings.HasPrefix(name, ".") {
			continue
		}
		ext := filepath.Ext(name)
		switch {
		case ext == layout.SourceExt:
		case ext == layout.ImageExt:
			figs = append(figs, filepath.Join(dir, name))
		case contains(layout.TextExts, ext):
			texts = append(texts, filepath.Join(dir, name))
		default:
			return Outputs{}, &UnexpectedFileError{Path: filepath.Join(dir, name), Ext: ext}
		}
	}
	sort.Strings(figs)
	sort.Strings(texts)

	var out Outputs
	for i, p := range figs {
		out.Figures = append(out.Figures, Figure{Path: p, Ordinal: i + 1})
	}
	for _, p := range texts {
		n, err := CountLines(p)
		if err != nil {
			return Outputs{}, err
		}
		name := filepath.Base(p)
		out.Texts = append(out.Texts, TextOutput{
			Path:        p,
			LineCount:   n,
			IsStdoutLog: name == id+StdoutSuffix,
			IsStderrLog: name == id+StderrSuffix,
			InlineLimit: layout.InlineLineLimit,
		})
	}
	slog.Debug("scanned artifacts", "program", id, "figures", len(out.Figures), "texts", len(out.Texts))
	return out, nil
}

// CountLines counts newline-terminated lines plus a trailing unterminated one.
func CountLines(path string) (int, error) {
	f, err := os.Open(path)
	if err != nil {
		return 0, fmt.Errorf("artifacts: %w", err)
	}
	defer f.Close()

	r := bufio.NewReader(f)
	buf := make([]byte, 32*1024)
	count := 0
	var last byte
	for {
		n, err := r.Read(buf)
		if n > 0 {
			count += bytes.Count(buf[:n], []byte{'\n'})
			last = buf[n-1]
		}
		if err == io.EOF {
			break
		}
		if err != nil {
			return 0, fmt.Errorf("artifacts: reading %s: %w", path, err)
		}
	}
	if last != 0 && last != '\n' {
		count++
	}
	return count, nil
}

func contains(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}
