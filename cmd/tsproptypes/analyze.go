package main

import (
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/spf13/cobra"

	"github.com/gnana997/tsproptypes/pkg/proptypes"
	"github.com/gnana997/tsproptypes/pkg/scanner"
)

func newParseCmd(opts *options) *cobra.Command {
	var project string

	cmd := &cobra.Command{
		Use:   "parse <files...>",
		Short: "Print the components of the given files",
		Long: `Parse analyzes the given files and prints one program per file.

Imports resolve only between the given files unless --project names a
directory whose sources join the program.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := opts.scanConfig()

			targets := make([]string, len(args))
			for i, a := range args {
				abs, err := filepath.Abs(a)
				if err != nil {
					return fmt.Errorf("failed to resolve %s: %w", a, err)
				}
				targets[i] = abs
			}
			related := targets
			if project != "" {
				files, err := scanner.DiscoverFiles(project, cfg)
				if err != nil {
					return err
				}
				related = append(files, targets...)
			}

			s, err := opts.newScanner()
			if err != nil {
				return err
			}
			defer s.Close()

			result, err := s.ParseTargets(cmd.Context(), targets, related, cfg)
			if err != nil {
				return err
			}
			if err := proptypes.Write(cmd.OutOrStdout(), opts.outputFormat(), result.Programs()...); err != nil {
				return err
			}
			if result.Stats.FilesFailed > 0 {
				return fmt.Errorf("%d of %d files failed", result.Stats.FilesFailed, len(targets))
			}
			return nil
		},
	}
	cmd.Flags().StringVarP(&project, "project", "p", "", "Directory whose sources resolve imports")
	return cmd
}

func newScanCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "scan [dir]",
		Short: "Print the components of every source under a directory",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			dir, err := dirArg(args)
			if err != nil {
				return err
			}
			s, err := opts.newScanner()
			if err != nil {
				return err
			}
			defer s.Close()

			result, err := s.Run(cmd.Context(), dir, opts.scanConfig())
			if err != nil {
				return err
			}
			return proptypes.Write(cmd.OutOrStdout(), opts.outputFormat(), result.Programs()...)
		},
	}
}

func newWatchCmd(opts *options) *cobra.Command {
	var debounce int

	cmd := &cobra.Command{
		Use:   "watch [dir]",
		Short: "Scan a directory and rescan it whenever a source changes",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			dir, err := dirArg(args)
			if err != nil {
				return err
			}
			s, err := opts.newScanner()
			if err != nil {
				return err
			}
			defer s.Close()

			cfg := opts.scanConfig()
			format := opts.outputFormat()
			out := cmd.OutOrStdout()

			result, err := s.Run(cmd.Context(), dir, cfg)
			if err != nil {
				return err
			}
			if err := proptypes.Write(out, format, result.Programs()...); err != nil {
				return err
			}

			var mu sync.Mutex
			w, err := scanner.NewWatcher(s, dir, scanner.WatchOptions{
				Config:   cfg,
				Debounce: time.Duration(debounce) * time.Millisecond,
				Logger:   opts.logger,
			}, func(ev scanner.WatchEvent) {
				mu.Lock()
				defer mu.Unlock()
				if ev.Err != nil {
					opts.logger.Error("rescan failed", "error", ev.Err)
					return
				}
				opts.logger.Info("rescanned", "changed", ev.Changed, "components", ev.Result.Stats.Components)
				if err := proptypes.Write(out, format, ev.Result.Programs()...); err != nil {
					opts.logger.Error("failed to write results", "error", err)
				}
			})
			if err != nil {
				return err
			}
			if err := w.Start(); err != nil {
				return err
			}
			defer w.Stop()

			<-cmd.Context().Done()
			return nil
		},
	}
	cmd.Flags().IntVar(&debounce, "debounce", int(scanner.DefaultDebounce.Milliseconds()), "Milliseconds to wait for more changes before rescanning")
	return cmd
}

func dirArg(args []string) (string, error) {
	dir := "."
	if len(args) > 0 {
		dir = args[0]
	}
	info, err := os.Stat(dir)
	if err != nil {
		return "", fmt.Errorf("failed to read directory: %w", err)
	}
	if !info.IsDir() {
		return "", fmt.Errorf("not a directory: %s", dir)
	}
	return dir, nil
}
