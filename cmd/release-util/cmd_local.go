package main

import (
	"github.com/spf13/cobra"

	"github.com/t3sl4/release-util/internal/exitcodes"
	"github.com/t3sl4/release-util/internal/prefs"
)

func init() {
	var node, key string
	localCmd := &cobra.Command{
		Use:   "local",
		Short: "Read or record a local version",
		Long: `Versions are stored per node and key in <home>/prefs.yaml. An environment
variable named NODE_KEY (upper case, with ".", "/" and "-" replaced by "_")
overrides the stored value.`,
	}
	localCmd.PersistentFlags().StringVar(&node, "node", "", "Node name")
	localCmd.PersistentFlags().StringVar(&key, "key", "", "Key name")

	requireNodeKey := func() error {
		if node == "" || key == "" {
			return exitcodes.InvalidArgsError("--node and --key are required")
		}
		return nil
	}

	localCmd.AddCommand(&cobra.Command{
		Use:   "get",
		Short: "Print the local version (0.0.0 when unset)",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := requireNodeKey(); err != nil {
				return err
			}
			d, err := newDeps(cmd)
			if err != nil {
				return err
			}
			return handleLocalGet(d, node, key)
		},
	})
	localCmd.AddCommand(&cobra.Command{
		Use:   "set VALUE",
		Short: "Record the local version",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := requireNodeKey(); err != nil {
				return err
			}
			d, err := newDeps(cmd)
			if err != nil {
				return err
			}
			return handleLocalSet(d, node, key, args[0])
		},
	})
	rootCmd.AddCommand(localCmd)
}

type localValue struct {
	Node    string `json:"node" yaml:"node"`
	Key     string `json:"key" yaml:"key"`
	Version string `json:"version" yaml:"version"`
}

func handleLocalGet(d *Deps, node, key string) error {
	v := localValue{Node: node, Key: key, Version: prefs.LocalVersion(d.Prefs, node, key)}
	if d.Printer.Structured() {
		return d.Printer.Emit(v)
	}
	d.Printer.Println(v.Version)
	return nil
}

func handleLocalSet(d *Deps, node, key, value string) error {
	if value == "" {
		return exitcodes.InvalidArgsError("version must not be empty")
	}
	if err := d.Prefs.Set(node, key, value); err != nil {
		return err
	}
	if _, overridden := prefs.NewEnvStore().Get(node, key); overridden {
		d.Printer.Warn(prefs.EnvName(node, key) + " is set and overrides the stored value")
	}

	v := localValue{Node: node, Key: key, Version: value}
	if d.Printer.Structured() {
		return d.Printer.Emit(v)
	}
	d.Printer.Success(node + "/" + key + " = " + value)
	return nil
}
