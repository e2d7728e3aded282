package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/gofrs/flock"
	"github.com/spf13/cobra"

	"github.com/gobeaver/magickit"
)

func newDBCmd(opts *options) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "db",
		Short: "Check, compile and list magic databases",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "check <file>...",
		Short: "Validate magic database files",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withCookie(cmd, opts, args, func(c *magickit.Unloaded, paths magickit.DatabasePaths) error {
				if err := c.Check(paths); err != nil {
					return err
				}
				return printValue(cmd.OutOrStdout(), opts.format, map[string]any{"checked": paths.Paths()}, "ok")
			})
		},
	})

	var lockPath string
	compile := &cobra.Command{
		Use:   "compile <file>...",
		Short: "Compile magic database files into <name>.mgc in the working directory",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if lockPath == "" {
				wd, err := os.Getwd()
				if err != nil {
					return err
				}
				lockPath = filepath.Join(wd, ".magickit-compile.lock")
			}

			// concurrent compiles into the same directory would interleave writes
			fileLock := flock.New(lockPath)
			if err := fileLock.Lock(); err != nil {
				return fmt.Errorf("failed to acquire lock %s: %w", lockPath, err)
			}
			// the lock file stays; removing it would let a waiter and a newcomer
			// lock different inodes
			defer fileLock.Unlock()
			opts.logger.Debug("compile lock acquired", "lock", lockPath)

			return withCookie(cmd, opts, args, func(c *magickit.Unloaded, paths magickit.DatabasePaths) error {
				if err := c.Compile(paths); err != nil {
					return err
				}
				var outputs []string
				for _, p := range paths.Paths() {
					outputs = append(outputs, filepath.Base(p)+".mgc")
				}
				return printValue(cmd.OutOrStdout(), opts.format, map[string]any{"compiled": outputs}, fmt.Sprintf("compiled %v", outputs))
			})
		},
	}
	compile.Flags().StringVar(&lockPath, "lock", "", "lock file serializing compiles (default: .magickit-compile.lock in the working directory)")
	cmd.AddCommand(compile)

	cmd.AddCommand(&cobra.Command{
		Use:   "list [file]...",
		Short: "Print the rules of magic database files (default: the engine's database)",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withCookie(cmd, opts, args, func(c *magickit.Unloaded, paths magickit.DatabasePaths) error {
				return c.List(paths)
			})
		},
	})

	return cmd
}

// withCookie opens an unloaded cookie for the database files in args and closes
// it after fn.
func withCookie(cmd *cobra.Command, opts *options, args []string, fn func(c *magickit.Unloaded, paths magickit.DatabasePaths) error) error {
	cfg, err := opts.config(cmd)
	if err != nil {
		return err
	}
	paths, err := magickit.NewDatabasePaths(args...)
	if err != nil {
		return err
	}

	cookie, err := opts.open(cfg)
	if err != nil {
		return err
	}
	defer cookie.Close()

	if err := fn(cookie, paths); err != nil {
		opts.logger.Error("database operation failed", "paths", paths.String(), "function", magickit.FunctionOf(err), "explanation", magickit.ExplanationOf(err))
		return err
	}
	return nil
}
