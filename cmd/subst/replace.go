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
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"github.com/walteh/subst/pkg/config"
	"github.com/walteh/subst/pkg/text"
	"gitlab.com/tozd/go/errors"
	"golang.org/x/text/language"
)

type replaceOpts struct {
	pairs      []string
	comparison string
	language   string
	timeout    time.Duration
	spans      bool
}

func newReplaceCmd(root *rootOpts) *cobra.Command {
	opts := &replaceOpts{}

	cmd := &cobra.Command{
		Use:   "replace [text...]",
		Short: "Replace pairs in text given as arguments or on stdin",
		Long: `Replace applies every --pair old=new to the input in one pass.
Without --pair, the rules of the config file that have no file filter are used.
With --spans, the matches are listed instead of the replaced text.`,
		Example: `  subst replace -p cat=dog -p dog=cat "cat chases dog"
  echo "Hello" | subst replace -p hello=bye --comparison ordinal-ignore-case`,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			logger := zerolog.Ctx(ctx)

			pairs, textOpts, err := opts.resolve(cmd, root)
			if err != nil {
				return err
			}

			input := strings.Join(args, " ")
			if len(args) == 0 {
				b, err := io.ReadAll(cmd.InOrStdin())
				if err != nil {
					return errors.Errorf("reading stdin: %w", err)
				}
				input = string(b)
			}

			r, err := text.Compile(pairs, textOpts)
			if err != nil {
				return errors.Errorf("compiling pairs: %w", err)
			}
			logger.Debug().Int("pairs", len(pairs)).Str("comparison", r.Comparison().String()).Msg("compiled")

			out := cmd.OutOrStdout()
			if opts.spans {
				spans, err := r.FindAll(ctx, input)
				if err != nil {
					return err
				}
				for _, s := range spans {
					fmt.Fprintf(out, "%d\t%d\t%q\t%q\n", s.Start, s.Length, input[s.Start:s.End()], s.Replacement)
				}
				return nil
			}

			result, err := r.Replace(ctx, input)
			if err != nil {
				return err
			}
			fmt.Fprint(out, result)
			if len(args) > 0 {
				fmt.Fprintln(out)
			}
			return nil
		},
	}

	cmd.Flags().StringArrayVarP(&opts.pairs, "pair", "p", nil, "replacement as old=new (repeatable, first listed wins ties)")
	cmd.Flags().StringVar(&opts.comparison, "comparison", "", "ordinal, ordinal-ignore-case, culture or culture-ignore-case")
	cmd.Flags().StringVar(&opts.language, "language", "", "BCP 47 tag used by the culture comparisons")
	cmd.Flags().DurationVar(&opts.timeout, "timeout", 0, "scan timeout (0 uses the default, negative disables)")
	cmd.Flags().BoolVar(&opts.spans, "spans", false, "print matches as offset, length, match and replacement")

	return cmd
}

// resolve builds the pairs and engine options from flags, falling back to
// the config file when no pair flag is given
func (o *replaceOpts) resolve(cmd *cobra.Command, root *rootOpts) ([]text.Pair, text.Options, error) {
	var textOpts text.Options
	var pairs []text.Pair

	if len(o.pairs) > 0 {
		parsed, err := parsePairs(o.pairs)
		if err != nil {
			return nil, textOpts, err
		}
		pairs = parsed
		textOpts.Comparison = text.Ordinal
	} else {
		cfg, err := config.Load(cmd.Context(), root.configFile)
		if err != nil {
			return nil, textOpts, errors.Errorf("no --pair given and config unusable: %w", err)
		}
		textOpts = cfg.TextOptions()
		for _, rule := range cfg.Rules() {
			if rule.FileFilterGlob == "" {
				pairs = append(pairs, text.Pair{Old: rule.FromText, New: rule.ToText})
			}
		}
	}

	if cmd.Flags().Changed("comparison") {
		cmp, err := text.ParseComparison(o.comparison)
		if err != nil {
			return nil, textOpts, err
		}
		textOpts.Comparison = cmp
	}
	if o.language != "" {
		tag, err := language.Parse(o.language)
		if err != nil {
			return nil, textOpts, errors.Errorf("language %q: %w", o.language, err)
		}
		textOpts.Language = tag
	}
	if cmd.Flags().Changed("timeout") {
		textOpts.Timeout = o.timeout
	}

	return pairs, textOpts, nil
}

// parsePairs splits old=new flags on the first '='. Old may not be empty.
func parsePairs(raw []string) ([]text.Pair, error) {
	pairs := make([]text.Pair, 0, len(raw))
	for i, s := range raw {
		old, replacement, ok := strings.Cut(s, "=")
		if !ok {
			return nil, errors.Errorf("pair %d %q: expected old=new", i, s)
		}
		if old == "" {
			return nil, errors.Errorf("pair %d %q: old must not be empty", i, s)
		}
		pairs = append(pairs, text.Pair{Old: old, New: replacement})
	}
	return pairs, nil
}
