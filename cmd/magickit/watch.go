package main

import (
	"context"
	"io/fs"
	"os"
	"os/signal"
	"path/filepath"
	"strings"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/cobra"

	"github.com/gobeaver/magickit"
)

func newWatchCmd(opts *options) *cobra.Command {
	var include, exclude []string

	cmd := &cobra.Command{
		Use:   "watch <dir>...",
		Short: "Classify files as they are created or written",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := opts.config(cmd)
			if err != nil {
				return err
			}
			p, err := newPrinter(cmd.OutOrStdout(), opts.format)
			if err != nil {
				return err
			}
			filter, err := newPathFilter(include, exclude)
			if err != nil {
				return err
			}

			d, err := magickit.NewDescriber(cfg)
			if err != nil {
				return err
			}
			defer d.Close()

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
			defer stop()

			return watch(ctx, opts, d, p, filter, args, nil)
		},
	}

	cmd.Flags().StringSliceVar(&include, "include", nil, "only report files matching these glob patterns")
	cmd.Flags().StringSliceVar(&exclude, "exclude", nil, "skip files matching these glob patterns")

	return cmd
}

// watch reports every regular file created or written below dirs until ctx is
// done. New subdirectories are watched as they appear. ready, if not nil, is
// closed once the initial watches are in place.
func watch(ctx context.Context, opts *options, d magickit.Describer, p printer, filter *pathFilter, dirs []string, ready chan<- struct{}) error {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer w.Close()

	for _, dir := range dirs {
		if err := addTree(w, dir); err != nil {
			return err
		}
	}
	if ready != nil {
		close(ready)
	}
	opts.logger.Info("watching", "dirs", dirs)

	for {
		select {
		case <-ctx.Done():
			return nil

		case event, ok := <-w.Events:
			if !ok {
				return nil
			}
			if !event.Has(fsnotify.Create) && !event.Has(fsnotify.Write) {
				continue
			}

			info, err := os.Stat(event.Name)
			if err != nil {
				// removed again before we got to it
				continue
			}
			if info.IsDir() {
				if event.Has(fsnotify.Create) {
					if err := addTree(w, event.Name); err != nil {
						opts.logger.Warn("cannot watch directory", "path", event.Name, "error", err)
					}
				}
				continue
			}
			if !info.Mode().IsRegular() || !filter.match(relativeTo(dirs, event.Name)) {
				continue
			}

			if err := p.Print(describe(opts, d, event.Name)); err != nil {
				return err
			}
			if err := p.Flush(); err != nil {
				return err
			}

		case err, ok := <-w.Errors:
			if !ok {
				return nil
			}
			opts.logger.Warn("watch error", "error", err)
		}
	}
}

func addTree(w *fsnotify.Watcher, root string) error {
	return filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return w.Add(path)
		}
		return nil
	})
}

// relativeTo returns path relative to the first dir containing it.
func relativeTo(dirs []string, path string) string {
	for _, dir := range dirs {
		rel, err := filepath.Rel(dir, path)
		if err == nil && rel != ".." && !strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
			return rel
		}
	}
	return filepath.Base(path)
}
