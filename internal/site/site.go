// Package site writes the generated program and chapter pages.
package site

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/jorge-barreto/spdocs/internal/artifacts"
	"github.com/jorge-barreto/spdocs/internal/config"
	"github.com/jorge-barreto/spdocs/internal/discover"
	"github.com/jorge-barreto/spdocs/internal/manifest"
	"github.com/jorge-barreto/spdocs/internal/render"
)

// PagePath returns the location of the page for id under outDir.
func PagePath(outDir, id string) string {
	return filepath.Join(outDir, id+".md")
}

// ChapterPath returns the location of the index page for a chapter.
func ChapterPath(outDir string, chapter int) string {
	return filepath.Join(outDir, fmt.Sprintf("ch%02d.md", chapter))
}

// WritePage writes doc to <outDir>/<id>.md, creating outDir if needed and
// overwriting any existing page.
func WritePage(outDir, id, doc string) (string, error) {
	if err := os.MkdirAll(outDir, 0755); err != nil {
		return "", fmt.Errorf("site: creating %s: %w", outDir, err)
	}
	path := PagePath(outDir, id)
	if err := replaceFile(path, []byte(doc+"\n")); err != nil {
		return "", fmt.Errorf("site: writing %s: %w", path, err)
	}
	return path, nil
}

// WriteChapters writes one index page per chapter, ordered by number.
func WriteChapters(outDir string, chapters []manifest.Chapter) ([]string, error) {
	if err := os.MkdirAll(outDir, 0755); err != nil {
		return nil, fmt.Errorf("site: creating %s: %w", outDir, err)
	}
	var written []string
	for i, ch := range chapters {
		doc, err := render.ChapterPage(ch, i)
		if err != nil {
			return written, err
		}
		path := ChapterPath(outDir, ch.Number)
		if err := replaceFile(path, []byte(doc+"\n")); err != nil {
			return written, fmt.Errorf("site: writing %s: %w", path, err)
		}
		written = append(written, path)
	}
	return written, nil
}

// Project is everything page generation needs, loaded and cross-checked.
type Project struct {
	Config   *config.Config
	Manifest *manifest.Manifest
	Index    map[string]manifest.ProgramMeta
	Programs discover.Set
}

// LoadProject discovers programs, loads the manifest and verifies that the
// two agree. Any inconsistency is returned before anything is written.
func LoadProject(cfg *config.Config) (*Project, error) {
	programs, err := discover.Discover(cfg.Root, cfg.SourceExt)
	if err != nil {
		return nil, err
	}
	m, err := manifest.Load(cfg.ManifestPath())
	if err != nil {
		return nil, fmt.Errorf("loading manifest: %w", err)
	}
	if err := m.CheckPrograms(programs.IDs()); err != nil {
		return nil, err
	}
	index, err := m.Index()
	if err != nil {
		return nil, err
	}
	return &Project{Config: cfg, Manifest: m, Index: index, Programs: programs}, nil
}

// Layout returns the artifact conventions from the project config.
func (p *Project) Layout() artifacts.Layout {
	return artifacts.Layout{
		SourceExt:       p.Config.SourceExt,
		ImageExt:        p.Config.ImageExt,
		TextExts:        p.Config.TextExts,
		InlineLineLimit: p.Config.InlineLineLimit,
	}
}

// Renderer returns a page renderer configured for the project.
func (p *Project) Renderer() *render.Renderer {
	return &render.Renderer{
		Root:    p.Config.Root,
		RepoURL: p.Config.RepoURL,
		RawURL:  p.Config.RawURL,
	}
}

// RenderProgram scans the artifacts of one program and renders its page.
func (p *Project) RenderProgram(id string) (string, error) {
	prog, ok := p.Programs[id]
	if !ok {
		return "", fmt.Errorf("site: unknown program %q", id)
	}
	out, err := artifacts.Scan(prog.Dir, id, p.Layout())
	if err != nil {
		return "", err
	}
	return p.Renderer().ProgramPage(p.Index[id], prog, out)
}

// Result lists the pages a Generate call wrote.
type Result struct {
	Chapters []string
	Programs []string
}

// Generate renders every program page before writing anything, then writes
// the chapter indexes followed by the program pages. onWrite, if non-nil,
// is called after each page is written.
func Generate(p *Project, onWrite func(path string)) (*Result, error) {
	outDir := p.Config.OutPath()
	ids := p.Programs.IDs()

	docs := make(map[string]string, len(ids))
	for _, id := range ids {
		doc, err := p.RenderProgram(id)
		if err != nil {
			return nil, err
		}
		docs[id] = doc
	}

	res := &Result{}
	chapters, err := WriteChapters(outDir, p.Manifest.SortedChapters())
	res.Chapters = chapters
	if err != nil {
		return res, err
	}
	for _, path := range chapters {
		if onWrite != nil {
			onWrite(path)
		}
	}
	for _, id := range ids {
		path, err := WritePage(outDir, id, docs[id])
		if err != nil {
			return res, err
		}
		res.Programs = append(res.Programs, path)
		slog.Debug("wrote page", "program", id, "path", path)
		if onWrite != nil {
			onWrite(path)
		}
	}
	return res, nil
}
