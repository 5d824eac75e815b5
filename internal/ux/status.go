package ux

import (
	"fmt"
	"sort"

	"github.com/jorge-barreto/spdocs/internal/runlog"
)

// RenderHistory prints past runs, newest first, with their failed programs.
func RenderHistory(runs []*runlog.Log) {
	if len(runs) == 0 {
		fmt.Printf("%s\n", Dim.Render("(no recorded runs)"))
		return
	}
	for _, l := range runs {
		failed := l.Failed()
		state := Green.Render("ok")
		if len(failed) > 0 {
			state = Red.Render(fmt.Sprintf("%d failed", len(failed)))
		}
		fmt.Printf("%s  %s  %d programs  %s\n",
			Bold.Render(l.Started.Format("2006-01-02 15:04:05")),
			Dim.Render(l.RunID),
			len(l.Entries), state)
		for _, e := range failed {
			fmt.Printf("    %s %s\n", Red.Render("✗"), e.Program)
		}
	}
	fmt.Println()
}

// RenderFailureCounts prints how many recorded runs failed each program,
// most failures first.
func RenderFailureCounts(counts map[string]int) {
	if len(counts) == 0 {
		fmt.Printf("%s\n", Green.Render("no recorded failures"))
		return
	}
	ids := make([]string, 0, len(counts))
	for id := range counts {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool {
		if counts[ids[i]] != counts[ids[j]] {
			return counts[ids[i]] > counts[ids[j]]
		}
		return ids[i] < ids[j]
	})
	for _, id := range ids {
		fmt.Printf("  %-10s %s\n", Bold.Render(id), Red.Render(fmt.Sprintf("%d", counts[id])))
	}
}
