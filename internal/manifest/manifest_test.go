package manifest

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

const sample = `
book_chapters:
  - number: 7
    title: Soil Temperature
  - number: 2
    title: Quantitative Description of Ecosystems
supplemental_programs:
  - id: sp_07_01
    title: Soil temperature profile
  - id: sp_02_01
    title: Leaf area profile
`

func TestParse(t *testing.T) {
	m, err := Parse([]byte(sample))
	if err != nil {
		t.Fatal(err)
	}
	if len(m.Chapters) != 2 || len(m.Programs) != 2 {
		t.Fatalf("got %+v", m)
	}
	titles := m.ChapterTitles()
	if titles[7] != "7. Soil Temperature" {
		t.Fatalf("title = %q", titles[7])
	}
	chs := m.SortedChapters()
	if chs[0].Number != 2 || chs[1].Number != 7 {
		t.Fatalf("sorted = %+v", chs)
	}
}

func TestLoad_File(t *testing.T) {
	path := filepath.Join(t.TempDir(), "data.yml")
	os.WriteFile(path, []byte(sample), 0644)
	m, err := Load(path)
	if err != nil {
		t.Fatal(err)
	}
	if m.Programs[0].ID != "sp_07_01" {
		t.Fatalf("got %q", m.Programs[0].ID)
	}
}

func TestIndex(t *testing.T) {
	m, _ := Parse([]byte(sample))
	idx, err := m.Index()
	if err != nil {
		t.Fatal(err)
	}
	got := idx["sp_07_01"]
	want := ProgramMeta{
		ChapterNum:   7,
		ChapterTitle: "7. Soil Temperature",
		SPNum:        1,
		SPTitle:      "Soil temperature profile",
		SPID:         "sp_07_01",
		SPIDBook:     "7.1",
	}
	if got != want {
		t.Fatalf("got %+v, want %+v", got, want)
	}
}

func TestIndex_UndeclaredChapter(t *testing.T) {
	m := &Manifest{Programs: []Program{{ID: "sp_09_01", Title: "x"}}}
	if _, err := m.Index(); err == nil || !strings.Contains(err.Error(), "undeclared chapter 9") {
		t.Fatalf("got %v", err)
	}
}

func TestIndex_DuplicateID(t *testing.T) {
	m := &Manifest{
		Chapters: []Chapter{{Number: 1, Title: "a"}},
		Programs: []Program{{ID: "sp_01_01"}, {ID: "sp_01_01"}},
	}
	if _, err := m.Index(); err == nil || !strings.Contains(err.Error(), "duplicate") {
		t.Fatalf("got %v", err)
	}
}

func TestParseID(t *testing.T) {
	ch, num, err := ParseID("sp_14_03")
	if err != nil || ch != 14 || num != 3 {
		t.Fatalf("got %d %d %v", ch, num, err)
	}
	for _, bad := range []string{"sp_", "sp_14", "sp_a_01", "sp_01_b", "sp_01_02_03"} {
		if _, _, err := ParseID(bad); err == nil {
			t.Errorf("ParseID(%q) should fail", bad)
		}
	}
}

func TestCheckPrograms_Match(t *testing.T) {
	m, _ := Parse([]byte(sample))
	if err := m.CheckPrograms([]string{"sp_02_01", "sp_07_01"}); err != nil {
		t.Fatal(err)
	}
}

func TestCheckPrograms_Mismatch(t *testing.T) {
	m, _ := Parse([]byte(sample))
	err := m.CheckPrograms([]string{"sp_02_01", "sp_08_01"})
	var mm *MismatchError
	if !errors.As(err, &mm) {
		t.Fatalf("expected MismatchError, got %v", err)
	}
	if len(mm.MissingOnDisk) != 1 || mm.MissingOnDisk[0] != "sp_07_01" {
		t.Fatalf("MissingOnDisk = %v", mm.MissingOnDisk)
	}
	if len(mm.MissingInManifest) != 1 || mm.MissingInManifest[0] != "sp_08_01" {
		t.Fatalf("MissingInManifest = %v", mm.MissingInManifest)
	}
}

func TestCheckPrograms_SameSizeDifferentSets(t *testing.T) {
	m, _ := Parse([]byte(sample))
	if err := m.CheckPrograms([]string{"sp_02_01", "sp_02_02"}); err == nil {
		t.Fatal("expected mismatch error")
	}
}
