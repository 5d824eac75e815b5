package render

import (
	"bytes"
	"fmt"

	"gopkg.in/yaml.v3"

	"github.com/jorge-barreto/spdocs/internal/manifest"
)

const generatedNote = "# note: this file is automatically generated!"

// SourcePaths holds repo-relative source paths, main first.
type SourcePaths struct {
	Main string   `yaml:"main_program_repo_rel_path"`
	Aux  []string `yaml:"aux_program_repo_rel_paths"`
}

// FrontMatter is the complete header of a program page. Jekyll and
// Just-the-Docs read the top-level fields; the nested groups carry the
// program metadata for templates.
type FrontMatter struct {
	Title     string               `yaml:"title"`
	Permalink string               `yaml:"permalink"`
	Parent    string               `yaml:"parent"`
	Program   manifest.ProgramMeta `yaml:"program"`
	Source    SourcePaths          `yaml:"source"`
}

// ChapterFrontMatter is the header of a chapter index page.
type ChapterFrontMatter struct {
	Title       string `yaml:"title"`
	Permalink   string `yaml:"permalink"`
	NavOrder    int    `yaml:"nav_order"`
	HasChildren bool   `yaml:"has_children"`
}

// ProgramPermalink returns "/ch<NN>/<NN>.html".
func ProgramPermalink(chapter, program int) string {
	return fmt.Sprintf("/ch%02d/%02d.html", chapter, program)
}

// ChapterPermalink returns "/ch<NN>/".
func ChapterPermalink(chapter int) string {
	return fmt.Sprintf("/ch%02d/", chapter)
}

// ProgramTitle returns e.g. "Supplemental Program 7.1".
func ProgramTitle(meta manifest.ProgramMeta) string {
	return "Supplemental Program " + meta.SPIDBook
}

// NewFrontMatter assembles the header for one program page.
func NewFrontMatter(meta manifest.ProgramMeta, src SourcePaths) FrontMatter {
	if src.Aux == nil {
		src.Aux = []string{}
	}
	return FrontMatter{
		Title:     ProgramTitle(meta),
		Permalink: ProgramPermalink(meta.ChapterNum, meta.SPNum),
		Parent:    meta.ChapterTitle,
		Program:   meta,
		Source:    src,
	}
}

// frontMatterBlock serializes v between "---" delimiters. A non-empty note
// is emitted as the first line inside the block.
func frontMatterBlock(v any, note string) (string, error) {
	var buf bytes.Buffer
	buf.WriteString("---\n")
	if note != "" {
		buf.WriteString(note + "\n")
	}
	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)
	if err := enc.Encode(v); err != nil {
		return "", fmt.Errorf("render: encoding front matter: %w", err)
	}
	if err := enc.Close(); err != nil {
		return "", fmt.Errorf("render: encoding front matter: %w", err)
	}
	buf.WriteString("---")
	return buf.String(), nil
}
