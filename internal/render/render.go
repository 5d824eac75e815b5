// Package render builds the Markdown pages for supplemental programs and
// chapter indexes.
package render

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/jorge-barreto/spdocs/internal/artifacts"
	"github.com/jorge-barreto/spdocs/internal/discover"
	"github.com/jorge-barreto/spdocs/internal/manifest"
)

const (
	mainCodeIAL = "{: #main-program-code}"
	auxCodeIAL  = "{: .aux-program-code}"
	linkSep     = `<span class="program-code-link-sep">|</span>`

	chapterBody = "This is a chapter page."
)

// Renderer turns discovered programs into page text. Links are built from
// the configured base URLs and repo-relative paths; nothing is fetched.
type Renderer struct {
	Root    string // project root, for repo-relative paths
	RepoURL string // browsable source base, e.g. https://github.com/o/r/tree/master
	RawURL  string // raw content base for figures and text outputs

	// ReadFile defaults to os.ReadFile.
	ReadFile func(string) ([]byte, error)
}

func (r *Renderer) read(path string) (string, error) {
	read := r.ReadFile
	if read == nil {
		read = os.ReadFile
	}
	data, err := read(path)
	if err != nil {
		return "", fmt.Errorf("render: %w", err)
	}
	return string(data), nil
}

// RepoRel returns path relative to the project root with forward slashes.
func (r *Renderer) RepoRel(path string) (string, error) {
	rel, err := filepath.Rel(r.Root, path)
	if err != nil {
		return "", fmt.Errorf("render: %w", err)
	}
	return filepath.ToSlash(rel), nil
}

// ProgramPage renders the complete page for one program.
func (r *Renderer) ProgramPage(meta manifest.ProgramMeta, prog *discover.Program, out artifacts.Outputs) (string, error) {
	mainRel, err := r.RepoRel(prog.Main)
	if err != nil {
		return "", err
	}
	src := SourcePaths{Main: mainRel}
	for _, a := range prog.Aux {
		rel, err := r.RepoRel(a)
		if err != nil {
			return "", err
		}
		src.Aux = append(src.Aux, rel)
	}

	header, err := frontMatterBlock(NewFrontMatter(meta, src), generatedNote)
	if err != nil {
		return "", err
	}

	mainSection, err := r.programCode(prog.Main, mainRel, mainCodeIAL)
	if err != nil {
		return "", err
	}
	auxSection, err := r.auxPrograms(prog.Aux, src.Aux)
	if err != nil {
		return "", err
	}
	figures, err := r.Figures(out.Figures)
	if err != nil {
		return "", err
	}
	texts, err := r.TextOutputs(out.Texts)
	if err != nil {
		return "", err
	}

	doc := joinSections(
		header,
		"# Code",
		"## Main program",
		mainSection,
		auxSection,
		"# Output",
		figures,
		texts,
	)
	return strings.TrimSpace(doc), nil
}

func (r *Renderer) auxPrograms(paths, rels []string) (string, error) {
	if len(paths) == 0 {
		return "", nil
	}
	blocks := []string{"## Aux. programs"}
	for i, p := range paths {
		s, err := r.programCode(p, rels[i], auxCodeIAL)
		if err != nil {
			return "", err
		}
		blocks = append(blocks, s)
	}
	return joinSections(blocks...), nil
}

// programCode renders one source file as a collapsible block tagged with
// the given kramdown IAL.
func (r *Renderer) programCode(path, rel, ial string) (string, error) {
	code, err := r.read(path)
	if err != nil {
		return "", err
	}
	code = strings.TrimSpace(code)
	f := fence(code)

	var b strings.Builder
	b.WriteString("<details>\n")
	b.WriteString("  <summary markdown=\"span\">\n")
	fmt.Fprintf(&b, "    `%s`\n", filepath.Base(path))
	fmt.Fprintf(&b, "    %s\n", linkSep)
	fmt.Fprintf(&b, "    [View on GitHub {%% octicon mark-github %%}](%s/%s)\n", r.RepoURL, rel)
	b.WriteString("  </summary>\n\n")
	fmt.Fprintf(&b, "%smatlab\n%s\n%s\n", f, code, f)
	b.WriteString(ial + "\n\n")
	b.WriteString("</details>")
	return b.String(), nil
}

// Figures renders the figures section, or "" when there are none.
func (r *Renderer) Figures(figs []artifacts.Figure) (string, error) {
	if len(figs) == 0 {
		return "", nil
	}
	blocks := []string{"## Figures"}
	for _, f := range figs {
		rel, err := r.RepoRel(f.Path)
		if err != nil {
			return "", err
		}
		blocks = append(blocks, fmt.Sprintf("Figure %d\n\n<img src=\"%s/%s\">", f.Ordinal, r.RawURL, rel))
	}
	return joinSections(blocks...), nil
}

// TextOutputs renders the text outputs section, or "" when there are none.
// Files over the inline limit are linked rather than embedded.
func (r *Renderer) TextOutputs(texts []artifacts.TextOutput) (string, error) {
	if len(texts) == 0 {
		return "", nil
	}
	blocks := []string{"## Text outputs"}
	for _, t := range texts {
		rel, err := r.RepoRel(t.Path)
		if err != nil {
			return "", err
		}
		url := r.RawURL + "/" + rel
		heading := fmt.Sprintf("### %s", t.Label())

		if !t.Inline() {
			blocks = append(blocks, heading, fmt.Sprintf(
				"[`%s`](%s) (%d lines, too long to display here)",
				filepath.Base(t.Path), url, t.LineCount))
			continue
		}
		content, err := r.read(t.Path)
		if err != nil {
			return "", err
		}
		content = strings.TrimRight(content, "\n")
		f := fence(content)
		blocks = append(blocks, heading, fmt.Sprintf("%stext\n%s\n%s", f, content, f))
	}
	return joinSections(blocks...), nil
}

// ChapterPage renders the index page for a chapter at position navOrder
// in the sorted chapter list.
func ChapterPage(ch manifest.Chapter, navOrder int) (string, error) {
	header, err := frontMatterBlock(ChapterFrontMatter{
		Title:       ch.DisplayTitle(),
		Permalink:   ChapterPermalink(ch.Number),
		NavOrder:    navOrder,
		HasChildren: true,
	}, "")
	if err != nil {
		return "", err
	}
	return joinSections(header, chapterBody), nil
}

// joinSections joins the non-empty parts with a blank line between them.
func joinSections(parts ...string) string {
	var kept []string
	for _, p := range parts {
		if strings.TrimSpace(p) != "" {
			kept = append(kept, p)
		}
	}
	return strings.Join(kept, "\n\n")
}

// fence returns a backtick fence longer than any backtick run in content.
func fence(content string) string {
	longest, run := 0, 0
	for _, c := range content {
		if c == '`' {
			run++
			if run > longest {
				longest = run
			}
			continue
		}
		run = 0
	}
	if longest < 3 {
		return "```"
	}
	return strings.Repeat("`", longest+1)
}
