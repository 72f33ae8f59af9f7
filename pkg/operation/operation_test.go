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

package operation

import (
	"bytes"
	"context"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/walteh/subst/pkg/config"
	"github.com/walteh/subst/pkg/log"
	"github.com/walteh/subst/pkg/status"
	"github.com/walteh/subst/pkg/text"
	"gitlab.com/tozd/go/errors"
)

func stringPtr(s string) *string {
	return &s
}

func writeTree(t *testing.T, dir string, files map[string]string) {
	t.Helper()
	for path, content := range files {
		abs := filepath.Join(dir, filepath.FromSlash(path))
		require.NoError(t, os.MkdirAll(filepath.Dir(abs), 0755))
		require.NoError(t, os.WriteFile(abs, []byte(content), 0644))
	}
}

func readTree(t *testing.T, dir string, paths []string) map[string]string {
	t.Helper()
	out := make(map[string]string, len(paths))
	for _, path := range paths {
		content, err := os.ReadFile(filepath.Join(dir, filepath.FromSlash(path)))
		require.NoError(t, err)
		out[path] = string(content)
	}
	return out
}

func statuses(files []status.FileInfo) map[string]status.FileStatus {
	out := make(map[string]status.FileStatus, len(files))
	for _, f := range files {
		out[f.Path] = f.Status
	}
	return out
}

func TestApply(t *testing.T) {
	tests := []struct {
		name         string
		files        map[string]string
		cfg          config.Config
		dryRun       bool
		wantContent  map[string]string
		wantStatus   map[string]status.FileStatus
		wantReplaced int
	}{
		{
			name: "replaces_in_every_file",
			files: map[string]string{
				"a.txt":     "foo and baz",
				"pkg/b.go":  "package foo",
				"docs/c.md": "nothing here",
			},
			cfg: config.Config{
				Replacements: []config.Replacement{
					{Old: "foo", New: "bar"},
					{Old: "baz", New: "qux"},
				},
			},
			wantContent: map[string]string{
				"a.txt":     "bar and qux",
				"pkg/b.go":  "package bar",
				"docs/c.md": "nothing here",
			},
			wantStatus: map[string]status.FileStatus{
				"a.txt":     status.StatusModified,
				"pkg/b.go":  status.StatusModified,
				"docs/c.md": status.StatusUnchanged,
			},
			wantReplaced: 3,
		},
		{
			name: "per_rule_file_filter",
			files: map[string]string{
				"a.txt":    "foo baz",
				"pkg/b.go": "foo baz",
			},
			cfg: config.Config{
				Replacements: []config.Replacement{
					{Old: "foo", New: "bar"},
					{Old: "baz", New: "qux", File: stringPtr("**/*.go")},
				},
			},
			wantContent: map[string]string{
				"a.txt":    "bar baz",
				"pkg/b.go": "bar qux",
			},
			wantStatus: map[string]status.FileStatus{
				"a.txt":    status.StatusModified,
				"pkg/b.go": status.StatusModified,
			},
			wantReplaced: 3,
		},
		{
			name: "rule_filter_matches_nothing",
			files: map[string]string{
				"a.txt": "foo",
			},
			cfg: config.Config{
				Replacements: []config.Replacement{
					{Old: "foo", New: "bar", File: stringPtr("*.go")},
				},
			},
			wantContent: map[string]string{"a.txt": "foo"},
			wantStatus:  map[string]status.FileStatus{"a.txt": status.StatusSkipped},
		},
		{
			name: "include_and_exclude",
			files: map[string]string{
				"src/a.go":        "foo",
				"src/vendor/b.go": "foo",
				"README.md":       "foo",
			},
			cfg: config.Config{
				Include:      []string{"src/**/*.go"},
				Exclude:      []string{"**/vendor/**"},
				Replacements: []config.Replacement{{Old: "foo", New: "bar"}},
			},
			wantContent: map[string]string{
				"src/a.go":        "bar",
				"src/vendor/b.go": "foo",
				"README.md":       "foo",
			},
			wantStatus:   map[string]status.FileStatus{"src/a.go": status.StatusModified},
			wantReplaced: 1,
		},
		{
			name: "swaps_are_simultaneous",
			files: map[string]string{
				"swap.txt": "ab ba",
			},
			cfg: config.Config{
				Replacements: []config.Replacement{
					{Old: "a", New: "b"},
					{Old: "b", New: "a"},
				},
			},
			wantContent:  map[string]string{"swap.txt": "ba ab"},
			wantStatus:   map[string]status.FileStatus{"swap.txt": status.StatusModified},
			wantReplaced: 4,
		},
		{
			name: "ignore_case_comparison",
			files: map[string]string{
				"a.txt": "Hello HELLO hello",
			},
			cfg: config.Config{
				Comparison:   "ordinal-ignore-case",
				Replacements: []config.Replacement{{Old: "hello", New: "bye"}},
			},
			wantContent:  map[string]string{"a.txt": "bye bye bye"},
			wantStatus:   map[string]status.FileStatus{"a.txt": status.StatusModified},
			wantReplaced: 3,
		},
		{
			name: "binary_files_are_skipped",
			files: map[string]string{
				"image.bin": "foo\x00foo",
				"a.txt":     "foo",
			},
			cfg: config.Config{
				Replacements: []config.Replacement{{Old: "foo", New: "bar"}},
			},
			wantContent: map[string]string{
				"image.bin": "foo\x00foo",
				"a.txt":     "bar",
			},
			wantStatus: map[string]status.FileStatus{
				"image.bin": status.StatusSkipped,
				"a.txt":     status.StatusModified,
			},
			wantReplaced: 1,
		},
		{
			name: "files_over_size_limit_are_skipped",
			files: map[string]string{
				"big.txt": "foo foo foo",
				"a.txt":   "foo",
			},
			cfg: config.Config{
				MaxFileSize:  "8 B",
				Replacements: []config.Replacement{{Old: "foo", New: "bar"}},
			},
			wantContent: map[string]string{
				"big.txt": "foo foo foo",
				"a.txt":   "bar",
			},
			wantStatus: map[string]status.FileStatus{
				"big.txt": status.StatusSkipped,
				"a.txt":   status.StatusModified,
			},
			wantReplaced: 1,
		},
		{
			name: "identity_replacement_is_unchanged",
			files: map[string]string{
				"a.txt": "foo",
			},
			cfg: config.Config{
				Replacements: []config.Replacement{{Old: "foo", New: "foo"}},
			},
			wantContent:  map[string]string{"a.txt": "foo"},
			wantStatus:   map[string]status.FileStatus{"a.txt": status.StatusUnchanged},
			wantReplaced: 1,
		},
		{
			name: "dry_run_leaves_files_alone",
			files: map[string]string{
				"a.txt": "foo",
			},
			cfg: config.Config{
				Replacements: []config.Replacement{{Old: "foo", New: "bar"}},
			},
			dryRun:       true,
			wantContent:  map[string]string{"a.txt": "foo"},
			wantStatus:   map[string]status.FileStatus{"a.txt": status.StatusModified},
			wantReplaced: 1,
		},
		{
			name: "git_metadata_is_never_touched",
			files: map[string]string{
				".git/config": "foo",
				"a.txt":       "foo",
			},
			cfg: config.Config{
				Replacements: []config.Replacement{{Old: "foo", New: "bar"}},
			},
			wantContent: map[string]string{
				".git/config": "foo",
				"a.txt":       "bar",
			},
			wantStatus:   map[string]status.FileStatus{"a.txt": status.StatusModified},
			wantReplaced: 1,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dir := t.TempDir()
			writeTree(t, dir, tt.files)

			cfg := tt.cfg
			cfg.Root = dir
			cfg.Concurrency = 2

			ctx := zerolog.New(io.Discard).WithContext(context.Background())

			op, err := New(Options{Config: &cfg, DryRun: tt.dryRun})
			require.NoError(t, err)

			res, err := op.Apply(ctx)
			require.NoError(t, err)

			assert.NotEmpty(t, res.RunID)
			assert.Equal(t, tt.dryRun, res.DryRun)
			assert.Equal(t, tt.wantStatus, statuses(res.Files))
			assert.Equal(t, tt.wantReplaced, res.Summary.Replacements)

			paths := make([]string, 0, len(tt.wantContent))
			for p := range tt.wantContent {
				paths = append(paths, p)
			}
			assert.Equal(t, tt.wantContent, readTree(t, dir, paths))
		})
	}
}

func TestApplySkipsConfigFile(t *testing.T) {
	dir := t.TempDir()
	writeTree(t, dir, map[string]string{
		".subst.yaml": "replacements:\n  - old: foo\n    new: bar\n",
		"a.txt":       "foo",
	})

	ctx := context.Background()
	cfg, err := config.Load(ctx, filepath.Join(dir, ".subst.yaml"))
	require.NoError(t, err)

	op, err := New(Options{Config: cfg})
	require.NoError(t, err)

	files, err := op.Plan(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"a.txt"}, files)

	_, err = op.Apply(ctx)
	require.NoError(t, err)

	got := readTree(t, dir, []string{".subst.yaml", "a.txt"})
	assert.Equal(t, "bar", got["a.txt"])
	assert.Contains(t, got[".subst.yaml"], "old: foo", "config file must not be rewritten")
}

func TestApplyBackup(t *testing.T) {
	dir := t.TempDir()
	writeTree(t, dir, map[string]string{"a.txt": "foo", "b.txt": "nothing"})

	cfg := config.Config{
		Root:         dir,
		Replacements: []config.Replacement{{Old: "foo", New: "bar"}},
	}
	op, err := New(Options{Config: &cfg, Backup: true})
	require.NoError(t, err)

	_, err = op.Apply(context.Background())
	require.NoError(t, err)

	got := readTree(t, dir, []string{"a.txt", "a.txt.bak"})
	assert.Equal(t, "bar", got["a.txt"])
	assert.Equal(t, "foo", got["a.txt.bak"])

	_, err = os.Stat(filepath.Join(dir, "b.txt.bak"))
	assert.True(t, os.IsNotExist(err), "unchanged files are not backed up")
}

// failingReplacer fails on every file
type failingReplacer struct{}

func (failingReplacer) ReplaceText(ctx context.Context, content io.Reader, rules []text.ReplacementRule) (*text.ReplacementResult, error) {
	return nil, errors.New("replacer exploded")
}

func (failingReplacer) ValidateRules(rules []text.ReplacementRule) error {
	return nil
}

func TestApplyFailure(t *testing.T) {
	dir := t.TempDir()
	writeTree(t, dir, map[string]string{"a.txt": "foo"})

	cfg := config.Config{
		Root:         dir,
		Replacements: []config.Replacement{{Old: "foo", New: "bar"}},
	}
	op, err := New(Options{Config: &cfg, Replacer: failingReplacer{}})
	require.NoError(t, err)

	res, err := op.Apply(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "processing a.txt")
	assert.Contains(t, err.Error(), "replacer exploded")

	require.NotNil(t, res)
	assert.Equal(t, 1, res.Summary.Failed)
	assert.Equal(t, "foo", readTree(t, dir, []string{"a.txt"})["a.txt"])
}

func TestApplyWithConsole(t *testing.T) {
	dir := t.TempDir()
	writeTree(t, dir, map[string]string{"a.txt": "foo", "b.txt": "x"})

	cfg := config.Config{
		Root:         dir,
		Replacements: []config.Replacement{{Old: "foo", New: "bar"}},
	}
	buf := &bytes.Buffer{}
	op, err := New(Options{Config: &cfg, Console: log.New(buf, zerolog.Nop())})
	require.NoError(t, err)

	res, err := op.Apply(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 2, res.Summary.Files)

	out := buf.String()
	assert.Contains(t, out, "1 rules")
	assert.Regexp(t, `a\.txt\s+.*1\s+.*modified`, out)
	assert.Regexp(t, `b\.txt\s+.*unchanged`, out)
}

func TestNew(t *testing.T) {
	tests := []struct {
		name        string
		opts        Options
		errContains string
	}{
		{
			name:        "missing_config",
			opts:        Options{},
			errContains: "config is required",
		},
		{
			name:        "invalid_config",
			opts:        Options{Config: &config.Config{}},
			errContains: "at least one replacement is required",
		},
		{
			name: "valid",
			opts: Options{Config: &config.Config{
				Root:         t.TempDir(),
				Replacements: []config.Replacement{{Old: "a", New: "b"}},
			}},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			op, err := New(tt.opts)
			if tt.errContains != "" {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.errContains)
				return
			}
			require.NoError(t, err)
			assert.NotNil(t, op)
		})
	}
}

func TestPlanMissingRoot(t *testing.T) {
	cfg := config.Config{
		Root:         filepath.Join(t.TempDir(), "missing"),
		Replacements: []config.Replacement{{Old: "a", New: "b"}},
	}
	op, err := New(Options{Config: &cfg})
	require.NoError(t, err)

	_, err = op.Plan(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "checking root")
}
