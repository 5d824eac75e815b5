package render

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"gopkg.in/yaml.v3"

	"github.com/jorge-barreto/spdocs/internal/artifacts"
	"github.com/jorge-barreto/spdocs/internal/discover"
	"github.com/jorge-barreto/spdocs/internal/manifest"
)

var meta0701 = manifest.ProgramMeta{
	ChapterNum:   7,
	ChapterTitle: "7. Soil Temperature",
	SPNum:        1,
	SPTitle:      "Soil temperature profile",
	SPID:         "sp_07_01",
	SPIDBook:     "7.1",
}

func setup(t *testing.T, aux ...string) (*Renderer, *discover.Program) {
	t.Helper()
	root := t.TempDir()
	dir := filepath.Join(root, "sp_07_01")
	os.MkdirAll(dir, 0755)
	os.WriteFile(filepath.Join(dir, "sp_07_01.m"), []byte("\n% main\nx = 1;\n\n"), 0644)
	p := &discover.Program{ID: "sp_07_01", Dir: dir, Main: filepath.Join(dir, "sp_07_01.m")}
	for _, a := range aux {
		path := filepath.Join(dir, a)
		os.WriteFile(path, []byte("% "+a), 0644)
		p.Aux = append(p.Aux, path)
	}
	r := &Renderer{
		Root:    root,
		RepoURL: "https://github.com/o/r/tree/master",
		RawURL:  "https://raw.githubusercontent.com/o/r/pages",
	}
	return r, p
}

func splitFrontMatter(t *testing.T, page string) (FrontMatter, string) {
	t.Helper()
	if !strings.HasPrefix(page, "---\n") {
		t.Fatalf("page does not start with front matter:\n%s", page)
	}
	rest := page[len("---\n"):]
	end := strings.Index(rest, "\n---")
	if end < 0 {
		t.Fatalf("unterminated front matter:\n%s", page)
	}
	var fm FrontMatter
	if err := yaml.Unmarshal([]byte(rest[:end]), &fm); err != nil {
		t.Fatal(err)
	}
	return fm, rest[end+len("\n---"):]
}

func TestProgramPermalinkAndTitle(t *testing.T) {
	if got := ProgramPermalink(7, 1); got != "/ch07/01.html" {
		t.Fatalf("permalink = %q", got)
	}
	if got := ProgramTitle(meta0701); got != "Supplemental Program 7.1" {
		t.Fatalf("title = %q", got)
	}
	if got := ChapterPermalink(12); got != "/ch12/" {
		t.Fatalf("chapter permalink = %q", got)
	}
}

func TestProgramPage_FrontMatter(t *testing.T) {
	r, p := setup(t, "helper.m")
	page, err := r.ProgramPage(meta0701, p, artifacts.Outputs{})
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(page, generatedNote) {
		t.Fatal("missing generated note")
	}
	fm, _ := splitFrontMatter(t, page)
	if fm.Title != "Supplemental Program 7.1" || fm.Permalink != "/ch07/01.html" || fm.Parent != "7. Soil Temperature" {
		t.Fatalf("front matter = %+v", fm)
	}
	if fm.Program != meta0701 {
		t.Fatalf("program = %+v", fm.Program)
	}
	if fm.Source.Main != "sp_07_01/sp_07_01.m" {
		t.Fatalf("main path = %q", fm.Source.Main)
	}
	if len(fm.Source.Aux) != 1 || fm.Source.Aux[0] != "sp_07_01/helper.m" {
		t.Fatalf("aux paths = %v", fm.Source.Aux)
	}
}

func TestProgramPage_MainProgramBlock(t *testing.T) {
	r, p := setup(t)
	page, err := r.ProgramPage(meta0701, p, artifacts.Outputs{})
	if err != nil {
		t.Fatal(err)
	}
	for _, want := range []string{
		"# Code\n\n## Main program\n\n<details>",
		"`sp_07_01.m`",
		"[View on GitHub {% octicon mark-github %}](https://github.com/o/r/tree/master/sp_07_01/sp_07_01.m)",
		"```matlab\n% main\nx = 1;\n```\n{: #main-program-code}",
	} {
		if !strings.Contains(page, want) {
			t.Fatalf("page missing %q:\n%s", want, page)
		}
	}
}

func TestProgramPage_NoAuxNoOutputs(t *testing.T) {
	r, p := setup(t)
	page, err := r.ProgramPage(meta0701, p, artifacts.Outputs{})
	if err != nil {
		t.Fatal(err)
	}
	if strings.Contains(page, "Aux. programs") {
		t.Fatal("aux heading emitted without aux programs")
	}
	if strings.Contains(page, "## Figures") || strings.Contains(page, "## Text outputs") {
		t.Fatal("output headings emitted without outputs")
	}
	if !strings.HasSuffix(page, "# Output") {
		t.Fatalf("expected empty output body, page ends with %q", page[len(page)-40:])
	}
	if page != strings.TrimSpace(page) {
		t.Fatal("page not trimmed")
	}
}

func TestProgramPage_AuxPrograms(t *testing.T) {
	r, p := setup(t, "a.m", "B.m")
	page, err := r.ProgramPage(meta0701, p, artifacts.Outputs{})
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(page, "## Aux. programs") {
		t.Fatal("missing aux heading")
	}
	if n := strings.Count(page, auxCodeIAL); n != 2 {
		t.Fatalf("aux IAL count = %d, want 2", n)
	}
	if strings.Index(page, "`a.m`") > strings.Index(page, "`B.m`") {
		t.Fatal("aux order not preserved")
	}
	if strings.Count(page, mainCodeIAL) != 1 {
		t.Fatal("main IAL must appear exactly once")
	}
}

func TestFigures(t *testing.T) {
	r, p := setup(t)
	figs := []artifacts.Figure{
		{Path: filepath.Join(p.Dir, "fig01.png"), Ordinal: 1},
		{Path: filepath.Join(p.Dir, "fig02.png"), Ordinal: 2},
	}
	s, err := r.Figures(figs)
	if err != nil {
		t.Fatal(err)
	}
	want := "## Figures\n\nFigure 1\n\n<img src=\"https://raw.githubusercontent.com/o/r/pages/sp_07_01/fig01.png\">\n\nFigure 2"
	if !strings.HasPrefix(s, want) {
		t.Fatalf("got:\n%s", s)
	}
	if empty, _ := r.Figures(nil); empty != "" {
		t.Fatalf("expected empty string, got %q", empty)
	}
}

func TestTextOutputs_InlineAndLinkOnly(t *testing.T) {
	r, p := setup(t)
	short := filepath.Join(p.Dir, "sp_07_01_out.txt")
	long := filepath.Join(p.Dir, "big.dat")
	os.WriteFile(short, []byte("T = 280\n"), 0644)
	os.WriteFile(long, []byte(strings.Repeat("1\n", 201)), 0644)

	s, err := r.TextOutputs([]artifacts.TextOutput{
		{Path: long, LineCount: 201, InlineLimit: 200},
		{Path: short, LineCount: 1, IsStdoutLog: true, InlineLimit: 200},
	})
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(s, "### Standard output\n\n```text\nT = 280\n```") {
		t.Fatalf("stdout not inlined:\n%s", s)
	}
	if !strings.Contains(s, "[`big.dat`](https://raw.githubusercontent.com/o/r/pages/sp_07_01/big.dat) (201 lines") {
		t.Fatalf("long file not linked:\n%s", s)
	}
	if strings.Contains(s, "1\n1\n1\n") {
		t.Fatal("long file content was inlined")
	}
}

func TestProgramPage_Deterministic(t *testing.T) {
	r, p := setup(t, "aux.m")
	first, err := r.ProgramPage(meta0701, p, artifacts.Outputs{})
	if err != nil {
		t.Fatal(err)
	}
	second, err := r.ProgramPage(meta0701, p, artifacts.Outputs{})
	if err != nil {
		t.Fatal(err)
	}
	if first != second {
		t.Fatal("rendering is not deterministic")
	}
}

func TestChapterPage(t *testing.T) {
	page, err := ChapterPage(manifest.Chapter{Number: 7, Title: "Soil Temperature"}, 3)
	if err != nil {
		t.Fatal(err)
	}
	want := "---\ntitle: 7. Soil Temperature\npermalink: /ch07/\nnav_order: 3\nhas_children: true\n---\n\nThis is a chapter page."
	if page != want {
		t.Fatalf("got:\n%s\nwant:\n%s", page, want)
	}
}

func TestFence(t *testing.T) {
	if f := fence("plain"); f != "```" {
		t.Fatalf("got %q", f)
	}
	if f := fence("has ```` inside"); f != "`````" {
		t.Fatalf("got %q", f)
	}
}
