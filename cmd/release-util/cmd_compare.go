package main

import (
	"strconv"

	"github.com/spf13/cobra"

	"github.com/t3sl4/release-util/internal/exitcodes"
	"github.com/t3sl4/release-util/internal/release"
	ui "github.com/t3sl4/release-util/internal/ui"
)

func init() {
	var strict bool
	compareCmd := &cobra.Command{
		Use:   "compare V1 V2",
		Short: "Compare two version strings",
		Long: `Print "true" when V1 and V2 name the same version, "false" otherwise.

Versions are compared as exact strings: "v1.2.0" and "1.2.0" differ.`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return handleCompare(getPrinter(), args[0], args[1], strict)
		},
	}
	compareCmd.Flags().BoolVar(&strict, "strict", false, "Exit non-zero when the versions differ")
	rootCmd.AddCommand(compareCmd)
}

type compareResult struct {
	V1    string `json:"v1" yaml:"v1"`
	V2    string `json:"v2" yaml:"v2"`
	Equal bool   `json:"equal" yaml:"equal"`
}

func handleCompare(p ui.Printer, v1, v2 string, strict bool) error {
	res := compareResult{V1: v1, V2: v2, Equal: release.Equal(v1, v2)}

	if p.Structured() {
		if err := p.Emit(res); err != nil {
			return err
		}
	} else {
		p.Println(strconv.FormatBool(res.Equal))
	}

	if strict && !res.Equal {
		return silentErr{exitcodes.ValidationErrf("%s differs from %s", v1, v2)}
	}
	return nil
}
