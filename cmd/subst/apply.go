// Copyright 2025 walteh LLC
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package main

import (
	"fmt"
	"io"
	"strconv"

	"github.com/pterm/pterm"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"github.com/walteh/subst/pkg/config"
	"github.com/walteh/subst/pkg/log"
	"github.com/walteh/subst/pkg/operation"
	"github.com/walteh/subst/pkg/status"
	"github.com/walteh/subst/pkg/units"
	"gitlab.com/tozd/go/errors"
)

type applyOpts struct {
	dryRun      bool
	backup      bool
	root        string
	concurrency int
	quiet       bool
}

func newApplyCmd(root *rootOpts) *cobra.Command {
	opts := &applyOpts{}

	cmd := &cobra.Command{
		Use:   "apply",
		Short: "Apply the config's replacements to every selected file",
		Long: `Apply walks the config root, picks files by the include and exclude globs,
and rewrites each one with the rules whose file filter matches it.
Changed files are written atomically. With --dry-run nothing is written.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			cfg, err := config.Load(ctx, root.configFile)
			if err != nil {
				return errors.Errorf("loading config: %w", err)
			}
			if opts.root != "" {
				cfg.Root = opts.root
			}
			if opts.concurrency > 0 {
				cfg.Concurrency = opts.concurrency
			}

			console := io.Discard
			if !opts.quiet {
				console = cmd.OutOrStdout()
			}
			logger := log.New(console, *zerolog.Ctx(ctx))
			logger.Header(cfg.String())
			if opts.dryRun {
				logger.Info("dry run, no files will be written")
			}

			op, err := operation.New(operation.Options{
				Config:  cfg,
				Console: logger,
				DryRun:  opts.dryRun,
				Backup:  opts.backup,
			})
			if err != nil {
				return err
			}

			res, applyErr := op.Apply(ctx)
			if res != nil && !opts.quiet {
				table, err := summaryTable(res)
				if err != nil {
					return errors.Errorf("rendering summary: %w", err)
				}
				logger.LogNewline()
				fmt.Fprintln(cmd.OutOrStdout(), table)
			}

			if applyErr != nil {
				return applyErr
			}
			if res.Summary.Files == 0 {
				logger.Warning("no files matched the include and exclude globs")
				return nil
			}
			logger.Success(summaryLine(res))
			return nil
		},
	}

	cmd.Flags().BoolVarP(&opts.dryRun, "dry-run", "n", false, "report changes without writing files")
	cmd.Flags().BoolVar(&opts.backup, "backup", false, "keep a .bak copy of every rewritten file")
	cmd.Flags().StringVar(&opts.root, "root", "", "override the config root directory")
	cmd.Flags().IntVarP(&opts.concurrency, "concurrency", "j", 0, "files processed at once (0 uses the config)")
	cmd.Flags().BoolVarP(&opts.quiet, "quiet", "q", false, "only print errors")

	return cmd
}

// summaryTable renders the per-status counts of a run
func summaryTable(res *operation.Result) (string, error) {
	s := res.Summary
	data := pterm.TableData{
		{"status", "files"},
		{status.StatusModified.String(), strconv.Itoa(s.Modified)},
		{status.StatusUnchanged.String(), strconv.Itoa(s.Unchanged)},
		{status.StatusSkipped.String(), strconv.Itoa(s.Skipped)},
		{status.StatusFailed.String(), strconv.Itoa(s.Failed)},
		{"replacements", strconv.Itoa(s.Replacements)},
		{"size", fmt.Sprintf("%s -> %s", s.BytesBefore.Format(units.Binary, 1), s.BytesAfter.Format(units.Binary, 1))},
	}
	return pterm.DefaultTable.WithHasHeader().WithData(data).Srender()
}

func summaryLine(res *operation.Result) string {
	verb := "modified"
	if res.DryRun {
		verb = "would modify"
	}
	return fmt.Sprintf("%s %d of %d files (%d replacements)", verb, res.Summary.Modified, res.Summary.Files, res.Summary.Replacements)
}
