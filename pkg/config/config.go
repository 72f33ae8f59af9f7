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

package config

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/rs/zerolog"
	"github.com/walteh/subst/pkg/text"
	"github.com/walteh/subst/pkg/units"
	"gitlab.com/tozd/go/errors"
	"golang.org/x/text/language"
)

// DefaultConcurrency is the number of files processed at once when unset
const DefaultConcurrency = 4

// 🔌 Parser is the interface for config parsers
type Parser interface {
	// 📝 Parse parses the config from bytes
	Parse(ctx context.Context, data []byte) (*Config, error)

	// 🔍 CanParse checks if this parser can handle the given file
	CanParse(filename string) bool
}

var (
	// 🗺️ parsers is a list of available parsers
	parsers []Parser
)

// 📝 Register registers a parser
func Register(p Parser) {
	parsers = append(parsers, p)
}

// 🎯 GetParser returns a parser that can handle the given file
func GetParser(filename string) Parser {
	for _, p := range parsers {
		if p.CanParse(filename) {
			return p
		}
	}
	return nil
}

// 🔄 Replacement represents a string replacement in files
type Replacement struct {
	Old  string  `json:"old" yaml:"old" toml:"old"`                                // Literal text to find
	New  string  `json:"new" yaml:"new" toml:"new"`                                // Literal text to put in its place
	File *string `json:"file,omitempty" yaml:"file,omitempty" toml:"file,omitempty"` // Optional doublestar glob limiting the rule
}

// 📚 Config represents a replacement table and where to apply it
type Config struct {
	Comparison   string        `json:"comparison,omitempty" yaml:"comparison,omitempty" toml:"comparison,omitempty"`
	Language     string        `json:"language,omitempty" yaml:"language,omitempty" toml:"language,omitempty"`
	Timeout      string        `json:"timeout,omitempty" yaml:"timeout,omitempty" toml:"timeout,omitempty"`
	Root         string        `json:"root,omitempty" yaml:"root,omitempty" toml:"root,omitempty"`
	Include      []string      `json:"include,omitempty" yaml:"include,omitempty" toml:"include,omitempty"`
	Exclude      []string      `json:"exclude,omitempty" yaml:"exclude,omitempty" toml:"exclude,omitempty"`
	Concurrency  int           `json:"concurrency,omitempty" yaml:"concurrency,omitempty" toml:"concurrency,omitempty"`
	MaxFileSize  string        `json:"max_file_size,omitempty" yaml:"max_file_size,omitempty" toml:"max_file_size,omitempty"` // e.g. "10 MiB"; larger files are skipped
	Replacements []Replacement `json:"replacements" yaml:"replacements" toml:"replacements"`

	// resolved by Validate
	comparison text.Comparison
	language   language.Tag
	timeout    time.Duration
	maxSize    units.StorageCapacity
	location   string
}

// 🎯 Load loads the configuration from a file. A relative or missing root is
// resolved against the directory holding the file.
func Load(ctx context.Context, path string) (*Config, error) {
	logger := zerolog.Ctx(ctx)
	logger.Debug().Str("path", path).Msg("loading configuration")

	// Read config file
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Errorf("reading config file: %w", err)
	}

	cfg, err := parse(ctx, path, data)
	if err != nil {
		return nil, err
	}

	cfg.location = path
	switch {
	case cfg.Root == "":
		cfg.Root = filepath.Dir(path)
	case !filepath.IsAbs(cfg.Root):
		cfg.Root = filepath.Join(filepath.Dir(path), cfg.Root)
	}

	// Validate
	if err := cfg.Validate(); err != nil {
		return nil, errors.Errorf("validating config: %w", err)
	}

	logger.Debug().
		Str("comparison", cfg.comparison.String()).
		Int("replacements", len(cfg.Replacements)).
		Str("root", cfg.Root).
		Msg("configuration loaded")

	return cfg, nil
}

// parse picks a parser by file name. Extensionless ".subst" files are tried
// as YAML first, then as HCL.
func parse(ctx context.Context, path string, data []byte) (*Config, error) {
	if p := GetParser(path); p != nil {
		cfg, err := p.Parse(ctx, data)
		if err != nil {
			return nil, errors.Errorf("parsing config: %w", err)
		}
		return cfg, nil
	}

	if filepath.Base(path) != ".subst" && filepath.Ext(path) != ".subst" {
		return nil, errors.Errorf("no parser found for file: %s", path)
	}

	cfg, yamlErr := (&YAMLParser{}).Parse(ctx, data)
	if yamlErr == nil {
		return cfg, nil
	}
	cfg, hclErr := (&HCLParser{}).Parse(ctx, data)
	if hclErr == nil {
		return cfg, nil
	}
	return nil, errors.Errorf("failed to parse %s as YAML (%v) or HCL: %w", path, yamlErr, hclErr)
}

// 🔍 Validate checks the configuration, applies defaults and resolves the
// comparison, language and timeout
func (cfg *Config) Validate() error {
	if len(cfg.Replacements) == 0 {
		return errors.Errorf("at least one replacement is required")
	}
	for i, r := range cfg.Replacements {
		if r.Old == "" {
			return errors.Errorf("replacements[%d].old is required", i)
		}
		if r.File != nil && !doublestar.ValidatePattern(*r.File) {
			return errors.Errorf("replacements[%d].file: invalid glob %q", i, *r.File)
		}
	}

	cmp, err := text.ParseComparison(cfg.Comparison)
	if err != nil {
		return errors.Errorf("comparison: %w", err)
	}
	cfg.comparison = cmp

	cfg.language = language.Und
	if cfg.Language != "" {
		tag, err := language.Parse(cfg.Language)
		if err != nil {
			return errors.Errorf("language %q: %w", cfg.Language, err)
		}
		cfg.language = tag
	}

	cfg.timeout = 0
	if cfg.Timeout != "" {
		d, err := time.ParseDuration(cfg.Timeout)
		if err != nil {
			return errors.Errorf("timeout %q: %w", cfg.Timeout, err)
		}
		cfg.timeout = d
	}

	cfg.maxSize = 0
	if cfg.MaxFileSize != "" {
		size, err := units.ParseStorageCapacity(cfg.MaxFileSize)
		if err != nil {
			return errors.Errorf("max_file_size %q: %w", cfg.MaxFileSize, err)
		}
		if size < 0 {
			return errors.Errorf("max_file_size must not be negative, got %s", cfg.MaxFileSize)
		}
		cfg.maxSize = size
	}

	if cfg.Concurrency < 0 {
		return errors.Errorf("concurrency must not be negative, got %d", cfg.Concurrency)
	}
	if cfg.Concurrency == 0 {
		cfg.Concurrency = DefaultConcurrency
	}

	// Clean up paths and set defaults
	if cfg.Root == "" {
		cfg.Root = "."
	}
	cfg.Root = filepath.Clean(cfg.Root)
	if len(cfg.Include) == 0 {
		cfg.Include = []string{"**"}
	}
	for _, globs := range [][]string{cfg.Include, cfg.Exclude} {
		for _, g := range globs {
			if !doublestar.ValidatePattern(g) {
				return errors.Errorf("invalid glob %q", g)
			}
		}
	}

	return nil
}

// TextOptions returns the engine options described by the config
func (cfg *Config) TextOptions() text.Options {
	return text.Options{
		Comparison: cfg.comparison,
		Timeout:    cfg.timeout,
		Language:   cfg.language,
	}
}

// Rules returns the replacements as text rules, in file order
func (cfg *Config) Rules() []text.ReplacementRule {
	rules := make([]text.ReplacementRule, len(cfg.Replacements))
	for i, r := range cfg.Replacements {
		rules[i] = text.ReplacementRule{FromText: r.Old, ToText: r.New}
		if r.File != nil {
			rules[i].FileFilterGlob = *r.File
		}
	}
	return rules
}

// SizeLimit returns the size above which files are skipped, zero for no limit
func (cfg *Config) SizeLimit() units.StorageCapacity {
	return cfg.maxSize
}

// Location returns the path the config was loaded from, if any
func (cfg *Config) Location() string {
	return cfg.location
}

// 📝 String returns a string representation of the config
func (cfg *Config) String() string {
	return fmt.Sprintf("%d replacements (%s) in %s [%s]",
		len(cfg.Replacements), cfg.comparison, cfg.Root, strings.Join(cfg.Include, ", "))
}
