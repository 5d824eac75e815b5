// Package manifest loads the chapter and supplemental program listing that
// drives page generation and checks it against the programs on disk.
package manifest

import (
	"fmt"
	"os"
	"sort"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

// idPrefixLen is the length of the "sp_" prefix stripped before parsing
// chapter and program numbers out of an id.
const idPrefixLen = 3

type Chapter struct {
	Number int    `yaml:"number"`
	Title  string `yaml:"title"`
}

// DisplayTitle is the chapter title as shown in navigation, e.g. "7. Soil Temperature".
func (c Chapter) DisplayTitle() string {
	return fmt.Sprintf("%d. %s", c.Number, c.Title)
}

type Program struct {
	ID    string `yaml:"id"`
	Title string `yaml:"title"`
}

type Manifest struct {
	Chapters []Chapter `yaml:"book_chapters"`
	Programs []Program `yaml:"supplemental_programs"`
}

// ProgramMeta is the per-program record carried into page front matter.
type ProgramMeta struct {
	ChapterNum   int    `yaml:"chapter_num"`
	ChapterTitle string `yaml:"chapter_title"`
	SPNum        int    `yaml:"sp_num"`
	SPTitle      string `yaml:"sp_title"`
	SPID         string `yaml:"sp_id"`
	SPIDBook     string `yaml:"sp_id_book"`
}

// Load reads and parses the manifest at path.
func Load(path string) (*Manifest, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return Parse(data)
}

// Parse decodes a manifest document.
func Parse(data []byte) (*Manifest, error) {
	var m Manifest
	if err := yaml.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("manifest: %w", err)
	}
	return &m, nil
}

// ParseID extracts the chapter and program numbers from an id such as "sp_07_01".
func ParseID(id string) (chapter, program int, err error) {
	if len(id) <= idPrefixLen {
		return 0, 0, fmt.Errorf("manifest: malformed program id %q", id)
	}
	parts := strings.Split(id[idPrefixLen:], "_")
	if len(parts) != 2 {
		return 0, 0, fmt.Errorf("manifest: malformed program id %q", id)
	}
	chapter, err = strconv.Atoi(parts[0])
	if err != nil {
		return 0, 0, fmt.Errorf("manifest: malformed chapter number in %q: %w", id, err)
	}
	program, err = strconv.Atoi(parts[1])
	if err != nil {
		return 0, 0, fmt.Errorf("manifest: malformed program number in %q: %w", id, err)
	}
	return chapter, program, nil
}

// ChapterTitles maps chapter number to display title.
func (m *Manifest) ChapterTitles() map[int]string {
	titles := make(map[int]string, len(m.Chapters))
	for _, c := range m.Chapters {
		titles[c.Number] = c.DisplayTitle()
	}
	return titles
}

// SortedChapters returns the chapters ordered by number.
func (m *Manifest) SortedChapters() []Chapter {
	chapters := append([]Chapter(nil), m.Chapters...)
	sort.SliceStable(chapters, func(i, j int) bool {
		return chapters[i].Number < chapters[j].Number
	})
	return chapters
}

// Index builds the per-program metadata lookup keyed by id.
func (m *Manifest) Index() (map[string]ProgramMeta, error) {
	titles := m.ChapterTitles()
	index := make(map[string]ProgramMeta, len(m.Programs))
	for _, p := range m.Programs {
		if _, dup := index[p.ID]; dup {
			return nil, fmt.Errorf("manifest: duplicate program id %q", p.ID)
		}
		ch, num, err := ParseID(p.ID)
		if err != nil {
			return nil, err
		}
		title, ok := titles[ch]
		if !ok {
			return nil, fmt.Errorf("manifest: program %q belongs to undeclared chapter %d", p.ID, ch)
		}
		index[p.ID] = ProgramMeta{
			ChapterNum:   ch,
			ChapterTitle: title,
			SPNum:        num,
			SPTitle:      p.Title,
			SPID:         p.ID,
			SPIDBook:     fmt.Sprintf("%d.%d", ch, num),
		}
	}
	return index, nil
}

// MismatchError reports ids present on only one side of the manifest/disk check.
type MismatchError struct {
	MissingOnDisk     []string // in the manifest, no directory
	MissingInManifest []string // directory present, not in the manifest
}

func (e *MismatchError) Error() string {
	var parts []string
	if len(e.MissingOnDisk) > 0 {
		parts = append(parts, "no program directory for "+strings.Join(e.MissingOnDisk, ", "))
	}
	if len(e.MissingInManifest) > 0 {
		parts = append(parts, "not listed in manifest: "+strings.Join(e.MissingInManifest, ", "))
	}
	return "manifest: program set does not match source tree: " + strings.Join(parts, "; ")
}

// CheckPrograms verifies that the manifest's program ids are exactly the
// discovered directory ids.
func (m *Manifest) CheckPrograms(discovered []string) error {
	declared := make(map[string]bool, len(m.Programs))
	for _, p := range m.Programs {
		declared[p.ID] = true
	}
	onDisk := make(map[string]bool, len(discovered))
	for _, id := range discovered {
		onDisk[id] = true
	}

	var mm MismatchError
	for id := range declared {
		if !onDisk[id] {
			mm.MissingOnDisk = append(mm.MissingOnDisk, id)
		}
	}
	for id := range onDisk {
		if !declared[id] {
			mm.MissingInManifest = append(mm.MissingInManifest, id)
		}
	}
	if len(mm.MissingOnDisk) == 0 && len(mm.MissingInManifest) == 0 {
		return nil
	}
	sort.Strings(mm.MissingOnDisk)
	sort.Strings(mm.MissingInManifest)
	return &mm
}
