package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"

	cli "github.com/urfave/cli/v3"

	"github.com/jorge-barreto/spdocs/internal/config"
	"github.com/jorge-barreto/spdocs/internal/discover"
	"github.com/jorge-barreto/spdocs/internal/docs"
	"github.com/jorge-barreto/spdocs/internal/engine"
	"github.com/jorge-barreto/spdocs/internal/history"
	"github.com/jorge-barreto/spdocs/internal/runner"
	"github.com/jorge-barreto/spdocs/internal/scaffold"
	"github.com/jorge-barreto/spdocs/internal/site"
	"github.com/jorge-barreto/spdocs/internal/ux"
	"github.com/jorge-barreto/spdocs/internal/verify"
)

func main() {
	app := &cli.Command{
		Name:        "spdocs",
		Usage:       "Generate documentation pages for supplemental programs",
		Description: "Run 'spdocs docs' for documentation on project layout, the manifest, and page format.",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "root", Usage: "Project root (default: directory holding spdocs.yaml, else cwd)"},
			&cli.BoolFlag{Name: "verbose", Aliases: []string{"v"}, Usage: "Print debug records on stderr"},
		},
		Before: func(ctx context.Context, cmd *cli.Command) (context.Context, error) {
			level := slog.LevelWarn
			if cmd.Bool("verbose") {
				level = slog.LevelDebug
			}
			slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})))
			return ctx, nil
		},
		Commands: []*cli.Command{
			initCmd(),
			pagesCmd(),
			runCmd(),
			checkCmd(),
			historyCmd(),
			docsCmd(),
		},
	}

	if err := app.Run(context.Background(), os.Args); err != nil {
		ux.Error(err)
		os.Exit(1)
	}
}

// loadConfig finds the project root and loads spdocs.yaml from it.
func loadConfig(cmd *cli.Command) (*config.Config, error) {
	root := cmd.Root().String("root")
	if root == "" {
		cwd, err := os.Getwd()
		if err != nil {
			return nil, err
		}
		root = config.FindProjectRoot(cwd)
	}
	root, err := filepath.Abs(root)
	if err != nil {
		return nil, err
	}
	cfg, err := config.Load(filepath.Join(root, config.FileName), root)
	if err != nil {
		return nil, fmt.Errorf("loading config: %w", err)
	}
	slog.Debug("config loaded", "root", cfg.Root, "manifest", cfg.ManifestPath(), "out", cfg.OutPath())
	return cfg, nil
}

func initCmd() *cli.Command {
	return &cli.Command{
		Name:  "init",
		Usage: "Write spdocs.yaml and a manifest skeleton",
		Action: func(ctx context.Context, cmd *cli.Command) error {
			dir := cmd.Root().String("root")
			if dir == "" {
				var err error
				if dir, err = os.Getwd(); err != nil {
					return err
				}
			}
			return scaffold.Init(dir)
		},
	}
}

func pagesCmd() *cli.Command {
	return &cli.Command{
		Name:  "pages",
		Usage: "Write chapter and program pages",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "out", Usage: "Output directory (overrides out-dir)"},
			&cli.StringFlag{Name: "manifest", Usage: "Manifest path (overrides manifest)"},
			&cli.BoolFlag{Name: "check", Usage: "Verify pages after writing"},
		},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			cfg, err := loadConfig(cmd)
			if err != nil {
				return err
			}
			if out := cmd.String("out"); out != "" {
				cfg.OutDir = absOrRel(out)
			}
			if m := cmd.String("manifest"); m != "" {
				cfg.Manifest = absOrRel(m)
			}

			p, err := site.LoadProject(cfg)
			if err != nil {
				return err
			}
			res, err := site.Generate(p, func(path string) { ux.PageWritten(cfg.Root, path) })
			if err != nil {
				return err
			}
			ux.PagesSummary(len(res.Chapters), len(res.Programs))

			if cmd.Bool("check") {
				return checkProject(p)
			}
			return nil
		},
	}
}

// absOrRel makes a flag path relative to the cwd absolute, so it is not
// re-resolved against the project root.
func absOrRel(p string) string {
	if abs, err := filepath.Abs(p); err == nil {
		return abs
	}
	return p
}

func checkCmd() *cli.Command {
	return &cli.Command{
		Name:  "check",
		Usage: "Verify written pages against the manifest",
		Action: func(ctx context.Context, cmd *cli.Command) error {
			cfg, err := loadConfig(cmd)
			if err != nil {
				return err
			}
			p, err := site.LoadProject(cfg)
			if err != nil {
				return err
			}
			return checkProject(p)
		},
	}
}

func checkProject(p *site.Project) error {
	exp := verify.Expect{ProgramIDs: p.Programs.IDs()}
	for _, ch := range p.Manifest.SortedChapters() {
		exp.Chapters = append(exp.Chapters, ch.Number)
	}
	problems, err := verify.Site(p.Config.OutPath(), exp)
	if err != nil {
		return err
	}
	if len(problems) == 0 {
		fmt.Printf("%s\n", ux.Green.Render(fmt.Sprintf("✓ %d pages ok", len(exp.ProgramIDs)+len(exp.Chapters))))
		return nil
	}
	for _, pr := range problems {
		fmt.Printf("  %s %s\n", ux.Red.Render("✗"), pr)
	}
	return fmt.Errorf("%d page problems", len(problems))
}

func runCmd() *cli.Command {
	return &cli.Command{
		Name:  "run",
		Usage: "Run programs in the engine and save their outputs",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "only", Usage: "Comma-separated program ids to run"},
			&cli.BoolFlag{Name: "no-figures", Usage: "Do not delete or re-save figures"},
			&cli.StringFlag{Name: "engine", Usage: "Engine command line (overrides engine in spdocs.yaml)"},
			&cli.BoolFlag{Name: "history", Value: true, Usage: "Record the run in the history database"},
			&cli.BoolFlag{Name: "dry-run", Usage: "Print the batch plan without starting the engine"},
		},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			cfg, err := loadConfig(cmd)
			if err != nil {
				return err
			}
			if e := strings.Fields(cmd.String("engine")); len(e) > 0 {
				cfg.Engine.Command = e[0]
				cfg.Engine.Args = e[1:]
			}

			programs, err := discover.Discover(cfg.Root, cfg.SourceExt)
			if err != nil {
				return err
			}

			r := &runner.Runner{
				Programs: programs,
				Starter: &engine.Launcher{
					Command:  cfg.Engine.Command,
					Args:     cfg.Engine.Args,
					ImageExt: cfg.ImageExt,
					Prompt:   engine.DefaultPrompt,
				},
				ImageExt:    cfg.ImageExt,
				SaveFigures: !cmd.Bool("no-figures"),
				Only:        splitList(cmd.String("only")),
				RunLogPath:  cfg.RunLogPath(),
			}

			if cmd.Bool("dry-run") {
				return r.DryRunPrint()
			}

			if err := engine.Preflight(cfg.Engine.Command); err != nil {
				return err
			}

			if cmd.Bool("history") {
				store, err := history.Open(cfg.HistoryPath())
				if err != nil {
					return err
				}
				defer store.Close()
				r.History = store
			}

			ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM, syscall.SIGHUP)
			defer stop()

			log, err := r.Run(ctx)
			if err != nil {
				return err
			}
			if failed := log.Failed(); len(failed) > 0 {
				return fmt.Errorf("%d of %d programs failed (see %s)", len(failed), len(log.Entries), cfg.RunLogPath())
			}
			return nil
		},
	}
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

func historyCmd() *cli.Command {
	return &cli.Command{
		Name:  "history",
		Usage: "List recorded runs",
		Flags: []cli.Flag{
			&cli.IntFlag{Name: "limit", Value: 10, Usage: "Number of runs to show"},
			&cli.BoolFlag{Name: "failures", Usage: "Show how often each program has failed"},
		},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			cfg, err := loadConfig(cmd)
			if err != nil {
				return err
			}
			store, err := history.Open(cfg.HistoryPath())
			if err != nil {
				return err
			}
			defer store.Close()

			if cmd.Bool("failures") {
				counts, err := store.ProgramFailures(ctx)
				if err != nil {
					return err
				}
				ux.RenderFailureCounts(counts)
				return nil
			}

			runs, err := store.Recent(ctx, int(cmd.Int("limit")))
			if err != nil {
				return err
			}
			ux.RenderHistory(runs)
			return nil
		},
	}
}

func docsCmd() *cli.Command {
	return &cli.Command{
		Name:      "docs",
		Usage:     "Show documentation",
		ArgsUsage: "[topic]",
		Action: func(ctx context.Context, cmd *cli.Command) error {
			name := cmd.Args().First()
			if name == "" {
				fmt.Print("\nAvailable topics:\n\n")
				for _, t := range docs.All() {
					fmt.Printf("  %-14s %s\n", t.Name, t.Summary)
				}
				fmt.Println("\nRun 'spdocs docs <topic>' to read a topic.")
				return nil
			}
			t, err := docs.Lookup(name)
			if err != nil {
				return err
			}
			fmt.Print(t.Content)
			return nil
		},
	}
}
