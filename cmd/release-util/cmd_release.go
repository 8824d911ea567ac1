package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/t3sl4/release-util/internal/release"
	ui "github.com/t3sl4/release-util/internal/ui"
)

func init() {
	var withAssets bool
	releaseCmd := &cobra.Command{
		Use:   "release OWNER REPO [TAG]",
		Short: "Show release title, notes and assets",
		Long:  "Show the latest release of OWNER/REPO, or the release tagged TAG.",
		Args:  cobra.RangeArgs(2, 3),
		RunE: func(cmd *cobra.Command, args []string) error {
			d, err := newDeps(cmd)
			if err != nil {
				return err
			}
			tag := ""
			if len(args) == 3 {
				tag = args[2]
			}
			return handleRelease(cmd.Context(), d, args[0], args[1], tag, withAssets)
		},
	}
	releaseCmd.Flags().BoolVar(&withAssets, "assets", false, "Also list asset sizes")
	rootCmd.AddCommand(releaseCmd)
}

type releaseWithAssets struct {
	Release release.ReleaseInfo `json:"release" yaml:"release"`
	Assets  []release.Asset     `json:"asset_details" yaml:"asset_details"`
}

func handleRelease(ctx context.Context, d *Deps, owner, repo, tag string, withAssets bool) error {
	var (
		info release.ReleaseInfo
		err  error
	)
	if tag == "" {
		info, err = d.Releases.ResolveLatest(ctx, owner, repo)
	} else {
		info, err = d.Releases.ResolveByTag(ctx, owner, repo, tag)
	}
	if err != nil {
		return err
	}

	var assets []release.Asset
	if withAssets {
		if assets, err = d.Releases.ListAssets(ctx, owner, repo, tag); err != nil {
			return err
		}
	}

	if d.Printer.Structured() {
		if withAssets {
			return d.Printer.Emit(releaseWithAssets{Release: info, Assets: assets})
		}
		return d.Printer.Emit(info)
	}
	fmt.Fprint(d.Printer.Out(), ui.RenderRelease(d.Printer.Colors, info))
	if withAssets && len(assets) > 0 {
		fmt.Fprintln(d.Printer.Out())
		fmt.Fprint(d.Printer.Out(), ui.RenderAssets(d.Printer.Colors, assets))
	}
	return nil
}
