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

package text

import (
	"context"
	"strings"
	"time"
	"unicode/utf8"

	"gitlab.com/tozd/go/errors"
	"golang.org/x/text/language"
	"golang.org/x/text/unicode/norm"
)

// DefaultTimeout bounds the scan step when Options.Timeout is zero
const DefaultTimeout = 2 * time.Second

// 🔄 Pair is one substitution: every occurrence of Old becomes New
type Pair struct {
	Old string
	New string
}

// 📍 MatchSpan is a resolved occurrence in the source, in byte offsets
type MatchSpan struct {
	Start       int
	Length      int
	Replacement string
}

// End returns the offset just past the match
func (s MatchSpan) End() int {
	return s.Start + s.Length
}

// ⚙️ Options configures a Replacer
type Options struct {
	Comparison Comparison
	// Timeout bounds one scan. Zero means DefaultTimeout, negative disables it.
	Timeout time.Duration
	// Language is the culture used by the cultural comparisons
	Language language.Tag
}

// 🔧 Replacer replaces all pairs in one left-to-right pass. It is immutable
// once compiled and safe for concurrent use.
type Replacer struct {
	opts         Options
	ac           *automaton
	replacements []string // per pattern, resolved through the case-folded lookup table
}

// 🏭 Compile validates pairs and builds the matcher. An empty pair set or an
// empty Old value is rejected before any scanning.
func Compile(pairs []Pair, opts Options) (*Replacer, error) {
	if len(pairs) == 0 {
		return nil, errors.Errorf("%w: at least one replacement pair is required", ErrInvalidArgument)
	}
	if !opts.Comparison.valid() {
		return nil, errors.Errorf("%w: unknown comparison %d", ErrInvalidArgument, int(opts.Comparison))
	}
	if opts.Timeout == 0 {
		opts.Timeout = DefaultTimeout
	}

	f := newFolder(opts.Comparison, opts.Language)

	// later pairs overwrite earlier ones with the same folded key
	table := make(map[string]string, len(pairs))
	patterns := make([][]rune, len(pairs))
	lookup := make([]string, len(pairs))
	for i, p := range pairs {
		if p.Old == "" {
			return nil, errors.Errorf("%w: pair %d has an empty old value", ErrInvalidArgument, i)
		}
		old := f.normalizePattern(p.Old)
		keys := make([]rune, 0, utf8.RuneCountInString(old))
		for _, r := range old {
			keys = append(keys, f.matchKey(r))
		}
		patterns[i] = keys
		lookup[i] = f.lookupKey(old)
		table[lookup[i]] = p.New
	}

	r := &Replacer{
		opts:         opts,
		ac:           buildAutomaton(patterns),
		replacements: make([]string, len(pairs)),
	}
	for i, key := range lookup {
		r.replacements[i] = table[key]
	}
	return r, nil
}

// 🎯 Replace compiles pairs and applies them to source in one call
func Replace(ctx context.Context, source string, pairs []Pair, cmp Comparison) (string, error) {
	r, err := Compile(pairs, Options{Comparison: cmp})
	if err != nil {
		return "", err
	}
	return r.Replace(ctx, source)
}

// Comparison returns the comparison the replacer was compiled with
func (r *Replacer) Comparison() Comparison {
	return r.opts.Comparison
}

// Replace returns source with every match substituted. Source comes back
// unchanged when it is empty or nothing matches.
func (r *Replacer) Replace(ctx context.Context, source string) (string, error) {
	spans, err := r.FindAll(ctx, source)
	if err != nil {
		return "", err
	}
	return Assemble(source, spans), nil
}

// 🔍 FindAll runs the scan phase only. Spans are sorted by Start and never overlap.
func (r *Replacer) FindAll(ctx context.Context, source string) ([]MatchSpan, error) {
	if source == "" {
		return nil, nil
	}

	if r.opts.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, r.opts.Timeout)
		defer cancel()
	}

	f := newFolder(r.opts.Comparison, r.opts.Language)
	in := keySource(f, source)

	hits, err := r.ac.scan(in.keys, func(pos int) error {
		return r.checkContext(ctx, in.offsets[pos])
	})
	if err != nil {
		return nil, err
	}
	if err := r.checkContext(ctx, len(source)); err != nil {
		return nil, err
	}

	var spans []MatchSpan
	for _, h := range hits {
		// a culture match must cover whole normalisation segments
		if !in.boundary[h.start] || !in.boundary[h.end] {
			continue
		}
		spans = append(spans, MatchSpan{
			Start:       in.offsets[h.start],
			Length:      in.offsets[h.end] - in.offsets[h.start],
			Replacement: r.replacements[h.pattern],
		})
	}
	return spans, nil
}

// keyedSource is the source as match keys. offsets[k] is the byte offset in
// the original source of the segment holding key k, and boundary[k] is set
// when key k starts that segment. Both have one extra entry for the end.
type keyedSource struct {
	keys     []rune
	offsets  []int
	boundary []bool
}

// keySource folds source for matching. Cultural comparisons see the source
// NFC-normalised segment by segment, the same form their patterns are in.
func keySource(f *folder, source string) keyedSource {
	in := keyedSource{
		keys:     make([]rune, 0, len(source)),
		offsets:  make([]int, 0, len(source)+1),
		boundary: make([]bool, 0, len(source)+1),
	}

	if !f.cmp.IsCultural() {
		for off, c := range source {
			in.keys = append(in.keys, f.matchKey(c))
			in.offsets = append(in.offsets, off)
			in.boundary = append(in.boundary, true)
		}
	} else {
		var it norm.Iter
		it.InitString(norm.NFC, source)
		for !it.Done() {
			start := it.Pos()
			first := true
			for _, c := range string(it.Next()) {
				in.keys = append(in.keys, f.matchKey(c))
				in.offsets = append(in.offsets, start)
				in.boundary = append(in.boundary, first)
				first = false
			}
		}
	}

	in.offsets = append(in.offsets, len(source))
	in.boundary = append(in.boundary, true)
	return in
}

func (r *Replacer) checkContext(ctx context.Context, offset int) error {
	switch err := ctx.Err(); {
	case err == nil:
		return nil
	case errors.Is(err, context.DeadlineExceeded):
		timeout := r.opts.Timeout
		if timeout < 0 {
			timeout = 0
		}
		return &PatternTimeoutError{Timeout: timeout, Offset: offset}
	default:
		return errors.Errorf("scan aborted at offset %d: %w", offset, err)
	}
}

// 🧩 Assemble rebuilds source with spans substituted. Spans must be sorted
// and non-overlapping, as FindAll returns them.
func Assemble(source string, spans []MatchSpan) string {
	if len(spans) == 0 {
		return source
	}

	size := len(source)
	for _, s := range spans {
		size += len(s.Replacement) - s.Length
	}

	var sb strings.Builder
	sb.Grow(size)
	last := 0
	for _, s := range spans {
		sb.WriteString(source[last:s.Start])
		sb.WriteString(s.Replacement)
		last = s.End()
	}
	sb.WriteString(source[last:])
	return sb.String()
}
