package main

import (
	"context"
	"io"
	"log/slog"
	"os"

	"github.com/shirou/gopsutil/v3/disk"
	"github.com/spf13/cobra"

	"github.com/t3sl4/release-util/internal/config"
	"github.com/t3sl4/release-util/internal/exitcodes"
	"github.com/t3sl4/release-util/internal/prefs"
	"github.com/t3sl4/release-util/internal/release"
	ui "github.com/t3sl4/release-util/internal/ui"
)

// ReleaseService abstracts the GitHub release client for testability.
type ReleaseService interface {
	ResolveLatest(ctx context.Context, owner, repo string) (release.ReleaseInfo, error)
	ResolveByTag(ctx context.Context, owner, repo, tag string) (release.ReleaseInfo, error)
	ResolveLatestTag(ctx context.Context, owner, repo string) (string, error)
	ResolveRedirectTag(ctx context.Context, releaseURL string) (string, error)
	ListAssets(ctx context.Context, owner, repo, tag string) ([]release.Asset, error)
	DownloadSelected(ctx context.Context, assets []release.Asset, destDir string, progress func(release.Asset) release.ProgressFunc) ([]string, error)
	DownloadFile(ctx context.Context, sourceURL, destPath string, onProgress release.ProgressFunc) error
	VerifyAsset(ctx context.Context, assets []release.Asset, assetName, path string) error
}

// Picker runs an interactive multi-select and returns the chosen indices.
type Picker func(title string, items []ui.PickItem) ([]int, error)

// FreeSpace reports the bytes available on the volume holding path.
type FreeSpace func(path string) (uint64, error)

// Deps holds all injectable dependencies for command handlers.
type Deps struct {
	Cfg       config.Config
	Releases  ReleaseService
	Prefs     prefs.Store
	Cache     *release.TagCache
	Printer   ui.Printer
	Output    io.Writer // progress bars
	Log       *slog.Logger
	Pick      Picker
	FreeSpace FreeSpace
}

// newDeps creates production dependencies from the command's flags and
// the layered config.
func newDeps(cmd *cobra.Command) (*Deps, error) {
	cfg, err := config.Load(cmd.Flags())
	if err != nil {
		return nil, exitcodes.WrapError(exitcodes.InvalidArgs, "load config", err)
	}

	log := newLogger(os.Stderr)
	log.Debug("config loaded", "file", cfg.ConfigPath(), "api_base", cfg.APIBase, "timeout", cfg.Timeout)
	store, err := prefs.Open(cfg.PrefsPath())
	if err != nil {
		return nil, err
	}

	return &Deps{
		Cfg: cfg,
		Releases: release.New(release.Options{
			APIBase:       cfg.APIBase,
			Token:         cfg.Token,
			UserAgent:     cfg.UserAgent,
			Timeout:       cfg.Timeout,
			ChunkSize:     cfg.ChunkSize,
			RequireLength: cfg.RequireLength,
			Logger:        log,
		}),
		Prefs:     prefs.Layered{Override: prefs.NewEnvStore(), Base: store},
		Cache:     release.NewTagCache(cfg.HomeDir),
		Printer:   getPrinter(),
		Output:    os.Stdout,
		Log:       log,
		Pick:      pickAssets,
		FreeSpace: diskFree,
	}, nil
}

func getPrinter() ui.Printer { return ui.NewPrinterFromGlobal(flagOutput) }

// newLogger returns the diagnostic logger: debug with --debug, info with
// --verbose, warnings only otherwise.
func newLogger(w io.Writer) *slog.Logger {
	level := slog.LevelWarn
	switch {
	case flagDebug:
		level = slog.LevelDebug
	case flagVerbose:
		level = slog.LevelInfo
	}
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: level}))
}

func pickAssets(title string, items []ui.PickItem) ([]int, error) {
	return ui.Pick(title, items)
}

func diskFree(path string) (uint64, error) {
	usage, err := disk.Usage(path)
	if err != nil {
		return 0, err
	}
	return usage.Free, nil
}
