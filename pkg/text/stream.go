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
	"io"

	"github.com/bmatcuk/doublestar/v4"
	"gitlab.com/tozd/go/errors"
)

// SimultaneousReplacer implements TextReplacer by applying every rule in a
// single pass, so one rule's output is never rewritten by another rule
type SimultaneousReplacer struct {
	opts Options
}

// NewSimultaneousReplacer creates a new SimultaneousReplacer
func NewSimultaneousReplacer(opts Options) *SimultaneousReplacer {
	return &SimultaneousReplacer{opts: opts}
}

// ReplaceText implements TextReplacer.ReplaceText
func (r *SimultaneousReplacer) ReplaceText(ctx context.Context, content io.Reader, rules []ReplacementRule) (*ReplacementResult, error) {
	originalContent, err := io.ReadAll(content)
	if err != nil {
		return nil, errors.Errorf("reading content: %w", err)
	}

	result := &ReplacementResult{
		OriginalContent: originalContent,
		ModifiedContent: originalContent,
	}

	// nothing to do, and the engine rejects an empty pair set
	if len(rules) == 0 {
		return result, nil
	}

	if err := r.ValidateRules(rules); err != nil {
		return nil, err
	}

	compiled, err := Compile(Pairs(rules), r.opts)
	if err != nil {
		return nil, errors.Errorf("compiling rules: %w", err)
	}

	source := string(originalContent)
	spans, err := compiled.FindAll(ctx, source)
	if err != nil {
		return nil, errors.Errorf("scanning content: %w", err)
	}
	if len(spans) == 0 {
		return result, nil
	}

	modified := Assemble(source, spans)
	result.ReplacementCount = len(spans)
	result.WasModified = modified != source
	result.ModifiedContent = []byte(modified)
	return result, nil
}

// ValidateRules implements TextReplacer.ValidateRules
func (r *SimultaneousReplacer) ValidateRules(rules []ReplacementRule) error {
	for i, rule := range rules {
		if rule.FromText == "" {
			return errors.Errorf("%w: rule %d: from_text is required", ErrInvalidArgument, i)
		}
		if rule.FileFilterGlob != "" && !doublestar.ValidatePattern(rule.FileFilterGlob) {
			return errors.Errorf("%w: rule %d: invalid file_filter_glob %q", ErrInvalidArgument, i, rule.FileFilterGlob)
		}
	}
	return nil
}

// RulesForFile returns the rules whose FileFilterGlob matches path, keeping their order
func RulesForFile(rules []ReplacementRule, path string) []ReplacementRule {
	var out []ReplacementRule
	for _, rule := range rules {
		if rule.FileFilterGlob == "" {
			out = append(out, rule)
			continue
		}
		if ok, err := doublestar.Match(rule.FileFilterGlob, path); err == nil && ok {
			out = append(out, rule)
		}
	}
	return out
}
