package scaffold

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"github.com/jorge-barreto/spdocs/internal/config"
	"github.com/jorge-barreto/spdocs/internal/discover"
	"github.com/jorge-barreto/spdocs/internal/manifest"
	"github.com/jorge-barreto/spdocs/internal/ux"
)

var configTemplate = `# spdocs project configuration. Paths are relative to this file.
manifest: ` + config.DefaultManifest + `
out-dir: ` + config.DefaultOutDir + `
run-log: ` + config.DefaultRunLog + `

# Source links point at the repository tree; figures and text outputs
# at raw file content.
repo-url: https://github.com/OWNER/REPO/tree/master
raw-url: https://raw.githubusercontent.com/OWNER/REPO/master

inline-line-limit: ` + fmt.Sprint(config.DefaultInlineLineLimit) + `

engine:
  command: ` + config.DefaultEngineCommand + `
  args: [-nodesktop, -nosplash]
`

// Init writes spdocs.yaml and a manifest skeleton into targetDir. The
// manifest lists every program directory already present, with
// placeholder titles. Existing files are never overwritten.
func Init(targetDir string) error {
	configPath := filepath.Join(targetDir, config.FileName)
	manifestPath := filepath.Join(targetDir, config.DefaultManifest)
	for _, p := range []string{configPath, manifestPath} {
		if _, err := os.Stat(p); err == nil {
			return fmt.Errorf("%s already exists", p)
		}
	}

	doc, n, err := manifestSkeleton(targetDir)
	if err != nil {
		return err
	}

	if err := os.MkdirAll(filepath.Dir(manifestPath), 0755); err != nil {
		return fmt.Errorf("creating %s: %w", filepath.Dir(config.DefaultManifest), err)
	}
	if err := os.WriteFile(configPath, []byte(configTemplate), 0644); err != nil {
		return fmt.Errorf("writing %s: %w", config.FileName, err)
	}
	if err := os.WriteFile(manifestPath, doc, 0644); err != nil {
		return fmt.Errorf("writing %s: %w", config.DefaultManifest, err)
	}

	fmt.Printf("\n%s\n\n", ux.Bold.Inherit(ux.Green).Render("✓ Initialized spdocs project"))
	fmt.Printf("  Created:\n")
	fmt.Printf("    %s  project configuration\n", ux.Cyan.Render(config.FileName))
	fmt.Printf("    %s  manifest with %d programs\n\n", ux.Cyan.Render(config.DefaultManifest), n)
	fmt.Printf("  Next steps:\n")
	fmt.Printf("    1. Set %s and %s in %s\n", ux.Cyan.Render("repo-url"), ux.Cyan.Render("raw-url"), config.FileName)
	fmt.Printf("    2. Fill in chapter and program titles in %s\n", ux.Cyan.Render(config.DefaultManifest))
	fmt.Printf("    3. Run %s\n\n", ux.Cyan.Render("spdocs pages"))
	return nil
}

// manifestSkeleton builds a manifest for the program directories under
// root. Chapters are inferred from the ids.
func manifestSkeleton(root string) ([]byte, int, error) {
	dirs, err := discover.Dirs(root)
	if err != nil {
		return nil, 0, err
	}
	m := manifest.Manifest{
		Chapters: []manifest.Chapter{},
		Programs: []manifest.Program{},
	}
	seen := make(map[int]bool)
	for _, dir := range dirs {
		id := filepath.Base(dir)
		ch, num, err := manifest.ParseID(id)
		if err != nil {
			return nil, 0, err
		}
		if !seen[ch] {
			seen[ch] = true
			m.Chapters = append(m.Chapters, manifest.Chapter{Number: ch, Title: fmt.Sprintf("Chapter %d", ch)})
		}
		m.Programs = append(m.Programs, manifest.Program{ID: id, Title: fmt.Sprintf("Program %d.%d", ch, num)})
	}
	m.Chapters = m.SortedChapters()

	var buf bytes.Buffer
	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)
	if err := enc.Encode(m); err != nil {
		return nil, 0, fmt.Errorf("encoding manifest: %w", err)
	}
	if err := enc.Close(); err != nil {
		return nil, 0, fmt.Errorf("encoding manifest: %w", err)
	}
	return buf.Bytes(), len(m.Programs), nil
}
