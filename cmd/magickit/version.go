package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/gobeaver/magickit"
)

type versionInfo struct {
	Engine  string `json:"engine" yaml:"engine"`
	Version int    `json:"version" yaml:"version"`
	Release string `json:"release" yaml:"release"`
}

func newVersionCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the engine version",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := opts.config(cmd)
			if err != nil {
				return err
			}
			engine, err := magickit.LookupEngine(cfg.Engine)
			if err != nil {
				return err
			}

			v := engine.Version()
			info := versionInfo{Engine: engine.Name(), Version: v, Release: release(v)}
			return printValue(cmd.OutOrStdout(), opts.format, info, fmt.Sprintf("%s version: %d (file %s)", info.Engine, info.Version, info.Release))
		},
	}
}

// release formats a libmagic version number such as 545 as "5.45".
func release(v int) string {
	return fmt.Sprintf("%d.%02d", v/100, v%100)
}
