package config

import (
	"fmt"
	"net/url"
	"strings"
)

const (
	DefaultManifest        = "gen_md/data.yml"
	DefaultOutDir          = "docs/pages"
	DefaultRunLog          = "gen_md/matlab_run_log.txt"
	DefaultHistoryDB       = "gen_md/.spdocs/history.db"
	DefaultRepoURL         = "https://github.com/zmoon92/bonanmodeling/tree/master"
	DefaultRawURL          = "https://raw.githubusercontent.com/zmoon92/bonanmodeling/gh-pages-dev"
	DefaultSourceExt       = ".m"
	DefaultImageExt        = ".png"
	DefaultInlineLineLimit = 200
	DefaultEngineCommand   = "matlab"
)

var (
	defaultTextExts   = []string{".txt", ".dat"}
	defaultEngineArgs = []string{"-nodesktop", "-nosplash"}
)

// Validate checks the config for errors and sets defaults.
func Validate(cfg *Config) error {
	if cfg.Root == "" {
		return fmt.Errorf("config: project root is required")
	}
	if cfg.Manifest == "" {
		cfg.Manifest = DefaultManifest
	}
	if cfg.OutDir == "" {
		cfg.OutDir = DefaultOutDir
	}
	if cfg.RunLog == "" {
		cfg.RunLog = DefaultRunLog
	}
	if cfg.HistoryDB == "" {
		cfg.HistoryDB = DefaultHistoryDB
	}
	if cfg.RepoURL == "" {
		cfg.RepoURL = DefaultRepoURL
	}
	if cfg.RawURL == "" {
		cfg.RawURL = DefaultRawURL
	}
	if cfg.SourceExt == "" {
		cfg.SourceExt = DefaultSourceExt
	}
	if cfg.ImageExt == "" {
		cfg.ImageExt = DefaultImageExt
	}
	if len(cfg.TextExts) == 0 {
		cfg.TextExts = append([]string(nil), defaultTextExts...)
	}
	// 0, explicit or omitted, selects the default.
	if cfg.InlineLineLimit == 0 {
		cfg.InlineLineLimit = DefaultInlineLineLimit
	}
	if cfg.Engine.Command == "" {
		cfg.Engine.Command = DefaultEngineCommand
		if len(cfg.Engine.Args) == 0 {
			cfg.Engine.Args = append([]string(nil), defaultEngineArgs...)
		}
	}

	if cfg.InlineLineLimit < 0 {
		return fmt.Errorf("config: 'inline-line-limit' must not be negative (0 selects the default %d)", DefaultInlineLineLimit)
	}
	for name, u := range map[string]string{"repo-url": cfg.RepoURL, "raw-url": cfg.RawURL} {
		parsed, err := url.Parse(u)
		if err != nil || parsed.Scheme == "" || parsed.Host == "" {
			return fmt.Errorf("config: '%s' %q is not an absolute URL", name, u)
		}
	}
	cfg.RepoURL = strings.TrimRight(cfg.RepoURL, "/")
	cfg.RawURL = strings.TrimRight(cfg.RawURL, "/")

	exts := map[string]string{"source-ext": cfg.SourceExt, "image-ext": cfg.ImageExt}
	for i, e := range cfg.TextExts {
		exts[fmt.Sprintf("text-exts[%d]", i)] = e
	}
	seen := make(map[string]string)
	for name, e := range exts {
		if !strings.HasPrefix(e, ".") || strings.ContainsAny(e, `/\`) {
			return fmt.Errorf("config: '%s' %q must be a file extension starting with '.'", name, e)
		}
		if prev, ok := seen[e]; ok {
			return fmt.Errorf("config: extension %q used by both '%s' and '%s'", e, prev, name)
		}
		seen[e] = name
	}
	return nil
}
