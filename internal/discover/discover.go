// Package discover finds the supplemental program directories under a
// project root and identifies each one's main and auxiliary source files.
package discover

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strings"
)

var dirNameRe = regexp.MustCompile(`^sp_\d{2}_\d{2}$`)

// Program is the source listing of one supplemental program directory.
type Program struct {
	ID   string   // directory name, e.g. "sp_07_01"
	Dir  string   // absolute directory path
	Main string   // path of the main source file
	Aux  []string // other source files, case-insensitive by stem

	// Invocation is the name the engine calls to run Main.
	Invocation string
}

// Set maps program id to its listing.
type Set map[string]*Program

// IDs returns the program ids in sorted order.
func (s Set) IDs() []string {
	ids := make([]string, 0, len(s))
	for id := range s {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// LookupError reports a program directory without exactly one main file.
type LookupError struct {
	Dir     string
	Pattern string
	Matches []string
}

func (e *LookupError) Error() string {
	if len(e.Matches) == 0 {
		return fmt.Sprintf("discover: no main program %s in %s", e.Pattern, e.Dir)
	}
	return fmt.Sprintf("discover: %d candidates for main program %s in %s: %s",
		len(e.Matches), e.Pattern, e.Dir, strings.Join(e.Matches, ", "))
}

// IsProgramDir reports whether name follows the sp_<CC>_<PP> convention.
func IsProgramDir(name string) bool {
	return dirNameRe.MatchString(name)
}

// Dirs lists the program directories directly under root, sorted by name.
func Dirs(root string) ([]string, error) {
	entries, err := os.ReadDir(root)
	if err != nil {
		return nil, fmt.Errorf("discover: reading %s: %w", root, err)
	}
	var dirs []string
	for _, e := range entries {
		if e.IsDir() && IsProgramDir(e.Name()) {
			dirs = append(dirs, filepath.Join(root, e.Name()))
		}
	}
	return dirs, nil
}

// Discover scans root for program directories and their source files.
func Discover(root, sourceExt string) (Set, error) {
	dirs, err := Dirs(root)
	if err != nil {
		return nil, err
	}
	set := make(Set, len(dirs))
	for _, dir := range dirs {
		p, err := Load(dir, sourceExt)
		if err != nil {
			return nil, err
		}
		set[p.ID] = p
		slog.Debug("discovered program", "id", p.ID, "aux", len(p.Aux))
	}
	return set, nil
}

// Load reads a single program directory.
func Load(dir, sourceExt string) (*Program, error) {
	id := filepath.Base(dir)
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("discover: reading %s: %w", dir, err)
	}

	mainName := id + sourceExt
	var mains, aux []string
	for _, e := range entries {
		if e.IsDir() || filepath.Ext(e.Name()) != sourceExt {
			continue
		}
		// Exact match only: SP_07_01.m next to sp_07_01.m is an aux file.
		if e.Name() == mainName {
			mains = append(mains, e.Name())
			continue
		}
		aux = append(aux, e.Name())
	}
	if len(mains) != 1 {
		return nil, &LookupError{Dir: dir, Pattern: mainName, Matches: mains}
	}

	SortByStem(aux)
	p := &Program{
		ID:         id,
		Dir:        dir,
		Main:       filepath.Join(dir, mains[0]),
		Invocation: strings.TrimSuffix(mains[0], sourceExt),
	}
	for _, name := range aux {
		p.Aux = append(p.Aux, filepath.Join(dir, name))
	}
	return p, nil
}

// SortByStem orders file names case-insensitively by stem. Names equal
// under case folding fall back to byte order so the result is total.
func SortByStem(names []string) {
	sort.SliceStable(names, func(i, j int) bool {
		a := strings.ToLower(stem(names[i]))
		b := strings.ToLower(stem(names[j]))
		if a != b {
			return a < b
		}
		return names[i] < names[j]
	})
}

func stem(name string) string {
	return strings.TrimSuffix(name, filepath.Ext(name))
}
