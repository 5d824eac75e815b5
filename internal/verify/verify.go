// Package verify parses written pages back with goldmark and checks that
// their front matter and section structure match what the site expects.
package verify

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"sort"

	"github.com/yuin/goldmark"
	meta "github.com/yuin/goldmark-meta"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/parser"
	"github.com/yuin/goldmark/text"

	"github.com/jorge-barreto/spdocs/internal/manifest"
	"github.com/jorge-barreto/spdocs/internal/render"
	"github.com/jorge-barreto/spdocs/internal/site"
)

// Problem is one finding against one page.
type Problem struct {
	Path    string
	Message string
}

func (p Problem) String() string {
	return p.Path + ": " + p.Message
}

// Expect lists the pages a site should contain.
type Expect struct {
	ProgramIDs []string
	Chapters   []int
}

var md = goldmark.New(goldmark.WithExtensions(meta.Meta))

var generatedRe = regexp.MustCompile(`^(sp_\d{2}_\d{2}|ch\d{2})\.md$`)

// Site checks every expected page under outDir and reports generated-looking
// pages that nothing expects any more.
func Site(outDir string, exp Expect) ([]Problem, error) {
	var problems []Problem
	expected := make(map[string]bool)

	for _, ch := range exp.Chapters {
		path := site.ChapterPath(outDir, ch)
		expected[filepath.Base(path)] = true
		src, err := os.ReadFile(path)
		if errors.Is(err, os.ErrNotExist) {
			problems = append(problems, Problem{path, "missing"})
			continue
		} else if err != nil {
			return nil, fmt.Errorf("verify: %w", err)
		}
		for _, msg := range ChapterPage(src, ch) {
			problems = append(problems, Problem{path, msg})
		}
	}

	for _, id := range exp.ProgramIDs {
		path := site.PagePath(outDir, id)
		expected[filepath.Base(path)] = true
		src, err := os.ReadFile(path)
		if errors.Is(err, os.ErrNotExist) {
			problems = append(problems, Problem{path, "missing"})
			continue
		} else if err != nil {
			return nil, fmt.Errorf("verify: %w", err)
		}
		for _, msg := range ProgramPage(src, id) {
			problems = append(problems, Problem{path, msg})
		}
	}

	entries, err := os.ReadDir(outDir)
	if err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("verify: %w", err)
	}
	var stale []string
	for _, e := range entries {
		if !e.IsDir() && generatedRe.MatchString(e.Name()) && !expected[e.Name()] {
			stale = append(stale, e.Name())
		}
	}
	sort.Strings(stale)
	for _, name := range stale {
		problems = append(problems, Problem{filepath.Join(outDir, name), "stale page: no matching program or chapter"})
	}
	return problems, nil
}

type page struct {
	front    map[string]interface{}
	headings []string // level-1 headings in order
}

func parse(src []byte) (*page, error) {
	ctx := parser.NewContext()
	doc := md.Parser().Parse(text.NewReader(src), parser.WithContext(ctx))
	front, err := meta.TryGet(ctx)
	if err != nil {
		return nil, err
	}
	p := &page{front: front}
	ast.Walk(doc, func(n ast.Node, entering bool) (ast.WalkStatus, error) {
		h, ok := n.(*ast.Heading)
		if !ok || !entering {
			return ast.WalkContinue, nil
		}
		if h.Level == 1 {
			p.headings = append(p.headings, headingText(h, src))
		}
		return ast.WalkSkipChildren, nil
	})
	return p, nil
}

func headingText(h *ast.Heading, src []byte) string {
	var buf bytes.Buffer
	for c := h.FirstChild(); c != nil; c = c.NextSibling() {
		if t, ok := c.(*ast.Text); ok {
			buf.Write(t.Segment.Value(src))
		}
	}
	return buf.String()
}

func (p *page) str(key string) string {
	s, _ := p.front[key].(string)
	return s
}

// ProgramPage checks one program page and returns its problems.
func ProgramPage(src []byte, id string) []string {
	p, err := parse(src)
	if err != nil {
		return []string{fmt.Sprintf("front matter: %v", err)}
	}
	if len(p.front) == 0 {
		return []string{"no front matter"}
	}

	var problems []string
	for _, key := range []string{"title", "permalink", "parent"} {
		if p.str(key) == "" {
			problems = append(problems, fmt.Sprintf("front matter %q is missing or empty", key))
		}
	}
	if c, n, err := manifest.ParseID(id); err == nil {
		if want := render.ProgramPermalink(c, n); p.str("permalink") != "" && p.str("permalink") != want {
			problems = append(problems, fmt.Sprintf("permalink %q, want %q", p.str("permalink"), want))
		}
	}
	if got := nestedString(p.front["program"], "sp_id"); got != id {
		problems = append(problems, fmt.Sprintf("program.sp_id %q, want %q", got, id))
	}
	if !hasInOrder(p.headings, "Code", "Output") {
		problems = append(problems, fmt.Sprintf("top-level sections %v, want Code then Output", p.headings))
	}
	return problems
}

// ChapterPage checks one chapter index page.
func ChapterPage(src []byte, chapter int) []string {
	p, err := parse(src)
	if err != nil {
		return []string{fmt.Sprintf("front matter: %v", err)}
	}
	var problems []string
	if p.str("title") == "" {
		problems = append(problems, `front matter "title" is missing or empty`)
	}
	if want := render.ChapterPermalink(chapter); p.str("permalink") != want {
		problems = append(problems, fmt.Sprintf("permalink %q, want %q", p.str("permalink"), want))
	}
	if hc, _ := p.front["has_children"].(bool); !hc {
		problems = append(problems, "has_children is not true")
	}
	if _, ok := p.front["nav_order"].(int); !ok {
		problems = append(problems, "nav_order is missing")
	}
	return problems
}

// nestedString reads key from a nested YAML mapping, whichever map type
// the decoder produced.
func nestedString(v interface{}, key string) string {
	switch m := v.(type) {
	case map[string]interface{}:
		s, _ := m[key].(string)
		return s
	case map[interface{}]interface{}:
		s, _ := m[key].(string)
		return s
	}
	return ""
}

func hasInOrder(got []string, want ...string) bool {
	i := 0
	for _, g := range got {
		if i < len(want) && g == want[i] {
			i++
		}
	}
	return i == len(want)
}
