package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/t3sl4/release-util/internal/archive"
	"github.com/t3sl4/release-util/internal/exitcodes"
	"github.com/t3sl4/release-util/internal/release"
	ui "github.com/t3sl4/release-util/internal/ui"
)

type downloadOptions struct {
	tag         string
	asset       string
	dest        string
	verify      bool
	extract     bool
	interactive bool
}

func init() {
	var opts downloadOptions
	downloadCmd := &cobra.Command{
		Use:   "download OWNER REPO",
		Short: "Download release assets with progress",
		Long: `Download the assets of the latest release of OWNER/REPO, or of --tag.

Every asset is downloaded unless --asset names one or --interactive is
given. Files are written to --dest as <dest>/<asset name>; --dest is
created if it does not exist. Asset names that are not plain file names
are refused before anything is written. A failed transfer leaves the
partial file in place and stops the run.`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			if opts.interactive && opts.asset != "" {
				return exitcodes.InvalidArgsError("--interactive and --asset are mutually exclusive")
			}
			if opts.interactive && (flagNonInteractive || !ui.IsInteractive()) {
				return exitcodes.InvalidArgsError("--interactive requires a terminal")
			}
			d, err := newDeps(cmd)
			if err != nil {
				return err
			}
			return handleDownload(cmd.Context(), d, args[0], args[1], opts)
		},
	}
	f := downloadCmd.Flags()
	f.StringVar(&opts.tag, "tag", "", "Release tag (default latest)")
	f.StringVar(&opts.asset, "asset", "", "Download only the asset with this name")
	f.StringVar(&opts.dest, "dest", ".", "Destination directory")
	f.BoolVar(&opts.verify, "verify", false, "Verify SHA-256 against checksums.txt or <asset>.sha256")
	f.BoolVar(&opts.extract, "extract", false, "Extract .tar.gz, .tgz, .tar.lz4, .tar and .zip assets into --dest")
	f.BoolVar(&opts.interactive, "interactive", false, "Choose assets from a list")
	f.Bool("require-size", false, "Fail when the server does not report a file size")
	rootCmd.AddCommand(downloadCmd)
}

type downloadedFile struct {
	Name      string `json:"name" yaml:"name"`
	Path      string `json:"path" yaml:"path"`
	Size      int64  `json:"size" yaml:"size"`
	Verified  bool   `json:"verified" yaml:"verified"`
	Extracted bool   `json:"extracted" yaml:"extracted"`
}

type downloadResult struct {
	Owner string           `json:"owner" yaml:"owner"`
	Repo  string           `json:"repo" yaml:"repo"`
	Tag   string           `json:"tag,omitempty" yaml:"tag,omitempty"`
	Dest  string           `json:"dest" yaml:"dest"`
	Files []downloadedFile `json:"files" yaml:"files"`
}

func handleDownload(ctx context.Context, d *Deps, owner, repo string, opts downloadOptions) error {
	p := d.Printer
	assets, err := d.Releases.ListAssets(ctx, owner, repo, opts.tag)
	if err != nil {
		return err
	}

	selected, err := chooseAssets(d, assets, opts)
	if err != nil {
		return err
	}
	if len(selected) == 0 {
		p.Warn(fmt.Sprintf("%s/%s has no assets to download", owner, repo))
		return nil
	}

	if err := os.MkdirAll(opts.dest, 0o755); err != nil {
		return fmt.Errorf("create destination: %w", err)
	}
	checkFreeSpace(d, opts.dest, selected)

	if !p.Structured() {
		label := "latest release"
		if opts.tag != "" {
			label = opts.tag
		}
		p.Header(fmt.Sprintf("%s/%s %s", owner, repo, label))
	}

	var progress func(release.Asset) release.ProgressFunc
	var bar *ui.ProgressBar
	if !p.Structured() && !ui.GetGlobal().Quiet {
		progress = func(a release.Asset) release.ProgressFunc {
			if bar != nil {
				bar.Finish()
			}
			bar = ui.NewProgressBar(d.Output, a.Name, a.Size)
			return bar.Callback()
		}
	}
	paths, err := d.Releases.DownloadSelected(ctx, selected, opts.dest, progress)
	if bar != nil {
		bar.Finish()
	}
	if err != nil {
		d.Log.Warn("download stopped", "completed", len(paths), "requested", len(selected))
		return err
	}

	res := downloadResult{Owner: owner, Repo: repo, Tag: opts.tag, Dest: opts.dest}
	for i, path := range paths {
		a := selected[i]
		f := downloadedFile{Name: a.Name, Path: path, Size: a.Size}

		if opts.verify && !isChecksumFile(a.Name) {
			if _, err := release.FindChecksumAsset(assets, a.Name); err != nil {
				p.Warn(fmt.Sprintf("%s: %v, skipping verification", a.Name, err))
			} else {
				if err := d.Releases.VerifyAsset(ctx, assets, a.Name, path); err != nil {
					return err
				}
				f.Verified = true
			}
		}

		if opts.extract && archive.IsArchive(a.Name) {
			logEntry := func(n, _ int64, entry string) {
				d.Log.Debug("extract", "archive", a.Name, "entry", entry, "n", n)
			}
			if err := archive.Extract(path, opts.dest, logEntry); err != nil {
				return fmt.Errorf("extract %s: %w", a.Name, err)
			}
			f.Extracted = true
		}
		res.Files = append(res.Files, f)
	}

	if p.Structured() {
		return p.Emit(res)
	}
	for _, f := range res.Files {
		var notes []string
		if f.Verified {
			notes = append(notes, "checksum ok")
		}
		if f.Extracted {
			notes = append(notes, "extracted")
		}
		line := f.Path
		if len(notes) > 0 {
			line += " " + p.Colors.Description("("+strings.Join(notes, ", ")+")")
		}
		p.Success(line)
	}
	return nil
}

// chooseAssets applies --asset or the interactive picker to assets.
func chooseAssets(d *Deps, assets []release.Asset, opts downloadOptions) ([]release.Asset, error) {
	if !opts.interactive {
		selected, err := release.SelectAssets(assets, opts.asset)
		if err != nil {
			return nil, exitcodes.NotFoundErrorf("select asset: %v", err)
		}
		return selected, nil
	}
	if len(assets) == 0 {
		return nil, nil
	}

	items := make([]ui.PickItem, len(assets))
	for i, a := range assets {
		items[i] = ui.PickItem{Name: a.Name}
		if a.Size > 0 {
			items[i].Detail = ui.FormatBytes(a.Size)
		}
	}
	idx, err := d.Pick("Select assets to download", items)
	if err != nil {
		return nil, err
	}
	selected := make([]release.Asset, 0, len(idx))
	for _, i := range idx {
		selected = append(selected, assets[i])
	}
	return selected, nil
}

// checkFreeSpace warns when the known asset sizes exceed the free space
// on dest. Unknown sizes and lookup failures are not fatal.
func checkFreeSpace(d *Deps, dest string, assets []release.Asset) {
	if d.FreeSpace == nil {
		return
	}
	var need int64
	for _, a := range assets {
		if a.Size > 0 {
			need += a.Size
		}
	}
	if need == 0 {
		return
	}
	free, err := d.FreeSpace(dest)
	if err != nil {
		d.Log.Debug("disk usage unavailable", "path", dest, "err", err)
		return
	}
	if uint64(need) > free {
		d.Printer.Warn(fmt.Sprintf("need %s but only %s free on %s",
			ui.FormatBytes(need), ui.FormatBytes(int64(free)), filepath.Clean(dest)))
	}
}

func isChecksumFile(name string) bool {
	return name == release.ChecksumsAssetName || strings.HasSuffix(name, ".sha256")
}
