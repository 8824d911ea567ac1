package main

import (
	"context"
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/t3sl4/release-util/internal/release"
	ui "github.com/t3sl4/release-util/internal/ui"
)

func init() {
	var clean bool
	fetchCmd := &cobra.Command{
		Use:   "fetch URL DEST",
		Short: "Download a single URL to a file",
		Long: `Download URL to the file DEST. The parent directory of DEST must exist.

With --clean an existing DEST is removed before the transfer starts, so a
partial file from an earlier failed run never lingers.`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			d, err := newDeps(cmd)
			if err != nil {
				return err
			}
			return handleFetch(cmd.Context(), d, args[0], args[1], clean)
		},
	}
	fetchCmd.Flags().BoolVar(&clean, "clean", false, "Remove DEST before downloading")
	fetchCmd.Flags().Bool("require-size", false, "Fail when the server does not report a file size")
	rootCmd.AddCommand(fetchCmd)
}

type fetchResult struct {
	URL     string `json:"url" yaml:"url"`
	Path    string `json:"path" yaml:"path"`
	Bytes   int64  `json:"bytes" yaml:"bytes"`
	Removed bool   `json:"removed_existing" yaml:"removed_existing"`
}

func handleFetch(ctx context.Context, d *Deps, sourceURL, dest string, clean bool) error {
	p := d.Printer
	res := fetchResult{URL: sourceURL, Path: dest}

	if clean {
		removed, err := release.RemoveIfExists(dest)
		if err != nil {
			return fmt.Errorf("remove %s: %w", dest, err)
		}
		res.Removed = removed
		if removed {
			d.Log.Info("removed existing file", "path", dest)
		}
	}

	var bar *ui.ProgressBar
	onProgress := func(transferred, total int64) { res.Bytes = transferred }
	if !p.Structured() && !ui.GetGlobal().Quiet {
		bar = ui.NewProgressBar(d.Output, filepath.Base(dest), -1)
		cb := bar.Callback()
		onProgress = func(transferred, total int64) {
			res.Bytes = transferred
			cb(transferred, total)
		}
	}

	err := d.Releases.DownloadFile(ctx, sourceURL, dest, onProgress)
	if bar != nil {
		bar.Finish()
	}
	if err != nil {
		return err
	}

	if p.Structured() {
		return p.Emit(res)
	}
	p.Success(fmt.Sprintf("%s (%s)", dest, ui.FormatBytes(res.Bytes)))
	return nil
}
