package main

import (
	"context"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"runtime"

	"github.com/gobwas/glob"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/gobeaver/magickit"
)

type scanOptions struct {
	include []string
	exclude []string
	jobs    int
}

func newScanCmd(opts *options) *cobra.Command {
	so := &scanOptions{}

	cmd := &cobra.Command{
		Use:   "scan <path>...",
		Short: "Classify files, walking directories recursively",
		Long: `Classify each file and print "path: description".

Directories are walked recursively. Files that cannot be classified are logged
and the scan continues.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := opts.config(cmd)
			if err != nil {
				return err
			}
			p, err := newPrinter(cmd.OutOrStdout(), opts.format)
			if err != nil {
				return err
			}

			filter, err := newPathFilter(so.include, so.exclude)
			if err != nil {
				return err
			}
			files, err := collectFiles(opts, args, filter)
			if err != nil {
				return err
			}

			results, err := scanFiles(cmd.Context(), opts, cfg, files, so.jobs)
			if err != nil {
				return err
			}
			for _, r := range results {
				if err := p.Print(r); err != nil {
					return err
				}
			}
			return p.Flush()
		},
	}

	cmd.Flags().StringSliceVar(&so.include, "include", nil, "only scan files matching these glob patterns")
	cmd.Flags().StringSliceVar(&so.exclude, "exclude", nil, "skip files matching these glob patterns")
	cmd.Flags().IntVarP(&so.jobs, "jobs", "j", runtime.GOMAXPROCS(0), "number of parallel workers, each with its own cookie")

	return cmd
}

// pathFilter selects paths by include and exclude glob patterns. Patterns are
// matched against the slash-separated path relative to the scanned root, and
// '*' does not cross '/'.
type pathFilter struct {
	include []glob.Glob
	exclude []glob.Glob
}

func newPathFilter(include, exclude []string) (*pathFilter, error) {
	f := &pathFilter{}
	for _, pattern := range include {
		g, err := glob.Compile(pattern, '/')
		if err != nil {
			return nil, fmt.Errorf("invalid include pattern %q: %w", pattern, err)
		}
		f.include = append(f.include, g)
	}
	for _, pattern := range exclude {
		g, err := glob.Compile(pattern, '/')
		if err != nil {
			return nil, fmt.Errorf("invalid exclude pattern %q: %w", pattern, err)
		}
		f.exclude = append(f.exclude, g)
	}
	return f, nil
}

func (f *pathFilter) match(rel string) bool {
	rel = filepath.ToSlash(rel)
	for _, g := range f.exclude {
		if g.Match(rel) {
			return false
		}
	}
	if len(f.include) == 0 {
		return true
	}
	for _, g := range f.include {
		if g.Match(rel) {
			return true
		}
	}
	return false
}

// collectFiles expands args into the files to scan. A path that does not exist
// is an error; walk errors below it are logged and skipped.
func collectFiles(opts *options, args []string, filter *pathFilter) ([]string, error) {
	var files []string
	for _, root := range args {
		info, err := os.Stat(root)
		if err != nil {
			return nil, err
		}
		if !info.IsDir() {
			if filter.match(filepath.Base(root)) {
				files = append(files, root)
			}
			continue
		}

		err = filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
			if err != nil {
				opts.logger.Error("walk failed", "root", root, "path", path, "error", err)
				return nil
			}
			if d.IsDir() {
				return nil
			}
			rel, err := filepath.Rel(root, path)
			if err != nil {
				rel = path
			}
			if filter.match(rel) {
				files = append(files, path)
			}
			return nil
		})
		if err != nil {
			return nil, err
		}
	}
	return files, nil
}

// scanFiles classifies files with up to jobs workers. Each worker opens its own
// cookie, since a cookie serializes its calls. Results keep the order of files.
func scanFiles(ctx context.Context, opts *options, cfg *magickit.Config, files []string, jobs int) ([]result, error) {
	if jobs < 1 {
		jobs = 1
	}
	jobs = min(jobs, max(len(files), 1))

	results := make([]result, len(files))
	next := make(chan int)

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		defer close(next)
		for i := range files {
			select {
			case next <- i:
			case <-ctx.Done():
				return ctx.Err()
			}
		}
		return nil
	})

	for w := 0; w < jobs; w++ {
		g.Go(func() error {
			d, err := magickit.NewDescriber(cfg)
			if err != nil {
				return err
			}
			defer d.Close()

			for i := range next {
				results[i] = describe(opts, d, files[i])
			}
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}

func describe(opts *options, d magickit.Describer, path string) result {
	desc, err := d.File(path)
	if err != nil {
		opts.logger.Error("classification failed", "path", path, "function", magickit.FunctionOf(err), "error", err)
		return result{Path: path, Error: err.Error()}
	}
	opts.logger.Debug("classified", "path", path, "description", desc)
	return result{Path: path, Description: desc}
}
