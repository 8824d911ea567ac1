package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/t3sl4/release-util/internal/exitcodes"
	"github.com/t3sl4/release-util/internal/prefs"
	"github.com/t3sl4/release-util/internal/release"
)

type checkOptions struct {
	node    string
	key     string
	noCache bool
	strict  bool
}

func init() {
	var opts checkOptions
	checkCmd := &cobra.Command{
		Use:   "check OWNER REPO",
		Short: "Compare a locally recorded version with the latest tag",
		Long: `Look up the version recorded for --node/--key (see "local") and compare it
with the latest release tag of OWNER/REPO. An unset local version counts as
0.0.0. Latest tags are cached for 10 minutes unless --no-cache is given.`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			if opts.node == "" || opts.key == "" {
				return exitcodes.InvalidArgsError("--node and --key are required")
			}
			d, err := newDeps(cmd)
			if err != nil {
				return err
			}
			return handleCheck(cmd.Context(), d, args[0], args[1], opts)
		},
	}
	f := checkCmd.Flags()
	f.StringVar(&opts.node, "node", "", "Node the version is recorded under")
	f.StringVar(&opts.key, "key", "", "Key the version is recorded under")
	f.BoolVar(&opts.noCache, "no-cache", false, "Always query the latest tag")
	f.BoolVar(&opts.strict, "strict", false, "Exit non-zero when the local version is not the latest")
	rootCmd.AddCommand(checkCmd)
}

type checkResult struct {
	Owner    string `json:"owner" yaml:"owner"`
	Repo     string `json:"repo" yaml:"repo"`
	Local    string `json:"local" yaml:"local"`
	Latest   string `json:"latest" yaml:"latest"`
	UpToDate bool   `json:"up_to_date" yaml:"up_to_date"`
	Newer    bool   `json:"newer_available" yaml:"newer_available"`
	Cached   bool   `json:"cached" yaml:"cached"`
}

func handleCheck(ctx context.Context, d *Deps, owner, repo string, opts checkOptions) error {
	lookup := func(owner, repo string) (string, error) {
		return d.Releases.ResolveLatestTag(ctx, owner, repo)
	}

	res := checkResult{Owner: owner, Repo: repo}
	var err error
	if opts.noCache || d.Cache == nil {
		res.Latest, err = lookup(owner, repo)
	} else {
		res.Latest, res.Cached, err = d.Cache.LatestTag(owner, repo, lookup)
	}
	if err != nil {
		return err
	}

	res.Local = prefs.LocalVersion(d.Prefs, opts.node, opts.key)
	res.UpToDate = release.Equal(res.Local, res.Latest)
	res.Newer = !res.UpToDate && release.IsNewer(res.Local, res.Latest)
	d.Log.Debug("version check", "local", res.Local, "latest", res.Latest, "cached", res.Cached)

	p := d.Printer
	if p.Structured() {
		if err := p.Emit(res); err != nil {
			return err
		}
	} else {
		p.KeyValueLine("Local", res.Local, "")
		p.KeyValueLine("Latest", res.Latest, "blue")
		switch {
		case res.UpToDate:
			p.Success("Up to date")
		case res.Newer:
			p.Warn(fmt.Sprintf("Update available: %s → %s", res.Local, res.Latest))
		default:
			p.Warn(fmt.Sprintf("Local version %s differs from latest %s", res.Local, res.Latest))
		}
	}

	if opts.strict && !res.UpToDate {
		return silentErr{exitcodes.ValidationErrf("%s is not the latest release %s", res.Local, res.Latest)}
	}
	return nil
}
