package main

import (
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/gobeaver/magickit"
)

// options are the persistent flags shared by every command.
type options struct {
	engine     string
	flags      string
	database   []string
	fromMemory bool
	logLevel   string
	format     string

	logger *slog.Logger
}

func newRootCmd() *cobra.Command {
	opts := &options{}

	cmd := &cobra.Command{
		Use:   "magickit",
		Short: "Identify file types with libmagic",
		Long: `magickit classifies files by content using the libmagic database, like file(1).

Settings are read from BEAVER_MAGICKIT_* environment variables; flags override them.`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			logger, err := newLogger(cmd.ErrOrStderr(), opts.logLevel)
			if err != nil {
				return err
			}
			opts.logger = logger
			return nil
		},
	}

	pf := cmd.PersistentFlags()
	pf.StringVar(&opts.engine, "engine", magickit.DefaultEngine, "classification engine (libmagic, memory)")
	pf.StringVar(&opts.flags, "flags", "", `cookie flags, e.g. "MIME_TYPE | SYMLINK"`)
	pf.StringSliceVarP(&opts.database, "database", "m", nil, "magic database files (default: the engine's database)")
	pf.BoolVar(&opts.fromMemory, "from-memory", false, "read database files in-process and load them from memory")
	pf.StringVar(&opts.logLevel, "log-level", "warn", "log level (debug, info, warn, error)")
	pf.StringVarP(&opts.format, "format", "o", "text", "output format (text, json, yaml)")

	cmd.AddCommand(newScanCmd(opts))
	cmd.AddCommand(newWatchCmd(opts))
	cmd.AddCommand(newVersionCmd(opts))
	cmd.AddCommand(newDBCmd(opts))

	return cmd
}

// config merges environment configuration with the flags set on cmd.
func (o *options) config(cmd *cobra.Command) (*magickit.Config, error) {
	cfg, err := magickit.GetConfig()
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	f := cmd.Flags()
	if f.Changed("engine") {
		cfg.Engine = o.engine
	}
	if f.Changed("flags") {
		cfg.Flags = o.flags
	}
	if f.Changed("database") {
		paths, err := magickit.NewDatabasePaths(o.database...)
		if err != nil {
			return nil, err
		}
		cfg.Database = paths.String()
	}
	if f.Changed("from-memory") {
		cfg.DatabaseFromMemory = o.fromMemory
	}
	return cfg, nil
}

// open opens an unloaded cookie as configured, for the db commands.
func (o *options) open(cfg *magickit.Config) (*magickit.Unloaded, error) {
	flags, err := magickit.ParseFlags(cfg.Flags)
	if err != nil {
		return nil, err
	}
	engine, err := magickit.LookupEngine(cfg.Engine)
	if err != nil {
		return nil, err
	}
	return engine.Open(flags)
}
