package ux

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"

	"github.com/jorge-barreto/spdocs/internal/discover"
)

var (
	Bold   = lipgloss.NewStyle().Bold(true)
	Dim    = lipgloss.NewStyle().Faint(true)
	Red    = lipgloss.NewStyle().Foreground(lipgloss.Color("1"))
	Green  = lipgloss.NewStyle().Foreground(lipgloss.Color("2"))
	Yellow = lipgloss.NewStyle().Foreground(lipgloss.Color("3"))
	Cyan   = lipgloss.NewStyle().Foreground(lipgloss.Color("6"))
)

func timestamp() string {
	return Dim.Render("[" + time.Now().Format("15:04:05") + "]")
}

// ProgramHeader prints a timestamped header before a program runs.
func ProgramHeader(index, total int, id string) {
	fmt.Printf("\n%s %s\n", timestamp(), Bold.Render(fmt.Sprintf("Program %d/%d: %s", index+1, total, id)))
}

// ProgramComplete prints a program success message.
func ProgramComplete(id string, elapsed time.Duration) {
	fmt.Printf("%s  %s\n", timestamp(), Green.Render(fmt.Sprintf("✓ %s finished (%.1fs)", id, elapsed.Seconds())))
}

// ProgramFail prints a program failure message with the first line of the error.
func ProgramFail(id, errMsg string) {
	first, _, _ := strings.Cut(errMsg, "\n")
	fmt.Printf("%s  %s\n", timestamp(), Red.Render(fmt.Sprintf("✗ %s failed: %s", id, first)))
}

// RunSummary prints the batch totals and where the run log went.
func RunSummary(total, failed int, logPath string) {
	style := Green
	if failed > 0 {
		style = Yellow
	}
	fmt.Printf("\n%s %s\n", timestamp(), Bold.Inherit(style).Render(
		fmt.Sprintf("══ %d programs run, %d failed ══", total, failed)))
	if logPath != "" {
		fmt.Printf("%s run log: %s\n", Dim.Render("→"), logPath)
	}
}

// PageWritten prints one line per written page, relative to root when possible.
func PageWritten(root, path string) {
	if rel, err := filepath.Rel(root, path); err == nil {
		path = rel
	}
	fmt.Printf("  %s %s\n", Cyan.Render("wrote"), path)
}

// PagesSummary prints the totals after page generation.
func PagesSummary(chapters, programs int) {
	fmt.Printf("\n%s\n", Bold.Inherit(Green).Render(
		fmt.Sprintf("══ %d chapter pages, %d program pages ══", chapters, programs)))
}

// Error prints a top-level error.
func Error(err error) {
	fmt.Fprintf(os.Stderr, "%s %v\n", Red.Render("error:"), err)
}

// DryRun prints the execution plan.
func DryRun(engineCmd string, ids []string, programs discover.Set, saveFigures bool) {
	fmt.Printf("\n%s\n\n", Bold.Render(fmt.Sprintf("Dry run: %d programs with %s", len(ids), engineCmd)))
	for i, id := range ids {
		p := programs[id]
		fmt.Printf("  %s %s\n", Cyan.Render(fmt.Sprintf("%d.", i+1)), Bold.Render(id))
		fmt.Printf("     dir: %s\n", p.Dir)
		fmt.Printf("     run: %s\n", p.Invocation)
		if len(p.Aux) > 0 {
			var names []string
			for _, a := range p.Aux {
				names = append(names, filepath.Base(a))
			}
			fmt.Printf("     aux: %s\n", strings.Join(names, ", "))
		}
	}
	if !saveFigures {
		fmt.Printf("\n  %s\n", Yellow.Render("figures will not be re-saved"))
	}
	fmt.Println()
}
