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
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// 🧪 TestParserRegistration tests the parser registration system
func TestParserRegistration(t *testing.T) {
	// Save original parsers
	originalParsers := parsers
	defer func() {
		parsers = originalParsers
	}()

	// Reset parsers
	parsers = nil

	// Create mock parser
	mockParser := &struct {
		Parser
		canParse bool
	}{
		canParse: true,
	}

	// Test registration
	Register(mockParser)
	assert.Len(t, parsers, 1, "should have 1 parser registered")
	assert.Equal(t, mockParser, parsers[0], "registered parser should match")
}

// 🧪 TestParserSelection tests parser selection by file extension
func TestParserSelection(t *testing.T) {
	tests := []struct {
		name     string
		filename string
		want     Parser
	}{
		{name: "yaml_file", filename: "config.yaml", want: &YAMLParser{}},
		{name: "yml_file", filename: "config.yml", want: &YAMLParser{}},
		{name: "json_file", filename: "config.json", want: &JSONParser{}},
		{name: "json_upper", filename: "CONFIG.JSON", want: &JSONParser{}},
		{name: "hcl_file", filename: "config.hcl", want: &HCLParser{}},
		{name: "toml_file", filename: "config.toml", want: &TOMLParser{}},
		{name: "unknown_extension", filename: "config.txt", want: nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := GetParser(tt.filename)
			if tt.want == nil {
				assert.Nil(t, got, "should return nil for unknown extension")
				return
			}
			require.NotNil(t, got, "should return a parser")
			assert.IsType(t, tt.want, got, "should return correct parser type")
		})
	}
}

type parseCase struct {
	name        string
	config      string
	errContains string
	check       func(t *testing.T, cfg *Config)
}

func runParseCases(t *testing.T, p Parser, tests []parseCase) {
	t.Helper()
	ctx := context.Background()
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg, err := p.Parse(ctx, []byte(tt.config))
			if tt.errContains != "" {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.errContains)
				return
			}

			require.NoError(t, err)
			if tt.check != nil {
				tt.check(t, cfg)
			}
		})
	}
}

// 🧪 TestHCLParsing tests HCL config parsing
func TestHCLParsing(t *testing.T) {
	runParseCases(t, &HCLParser{}, []parseCase{
		{
			name: "valid_hcl",
			config: `
comparison  = "ordinal-ignore-case"
root        = "src"
include     = ["**/*.go"]
exclude     = ["vendor/**"]
concurrency = 8
max_file_size = "2 MB"

replacement {
  old = tab
  new = "    "
}

replacement {
  old  = "foo"
  new  = "bar"
  file = "*.go"
}
`,
			check: func(t *testing.T, cfg *Config) {
				assert.Equal(t, "ordinal-ignore-case", cfg.Comparison)
				assert.Equal(t, "src", cfg.Root)
				assert.Equal(t, []string{"**/*.go"}, cfg.Include)
				assert.Equal(t, []string{"vendor/**"}, cfg.Exclude)
				assert.Equal(t, 8, cfg.Concurrency)
				assert.Equal(t, "2 MB", cfg.MaxFileSize)
				require.Len(t, cfg.Replacements, 2)
				assert.Equal(t, "\t", cfg.Replacements[0].Old, "tab variable should expand")
				assert.Nil(t, cfg.Replacements[0].File)
				require.NotNil(t, cfg.Replacements[1].File)
				assert.Equal(t, "*.go", *cfg.Replacements[1].File)
			},
		},
		{
			name: "invalid_hcl_syntax",
			config: `
replacement {
  old =
}`,
			errContains: "parsing HCL",
		},
		{
			name: "invalid_block_type",
			config: `
unknown_block {
  foo = "bar"
}`,
			errContains: "decoding HCL",
		},
	})
}

// 🧪 TestJSONParsing tests JSON config parsing
func TestJSONParsing(t *testing.T) {
	runParseCases(t, &JSONParser{}, []parseCase{
		{
			name: "valid_json",
			config: `{
				"comparison": "culture-ignore-case",
				"language": "de",
				"replacements": [
					{"old": "foo", "new": "bar"},
					{"old": "baz", "new": "qux", "file": "specific.go"}
				]
			}`,
			check: func(t *testing.T, cfg *Config) {
				assert.Equal(t, "culture-ignore-case", cfg.Comparison)
				assert.Equal(t, "de", cfg.Language)
				require.Len(t, cfg.Replacements, 2)
				require.NotNil(t, cfg.Replacements[1].File)
				assert.Equal(t, "specific.go", *cfg.Replacements[1].File)
			},
		},
		{
			name:        "unknown_field",
			config:      `{"replacements": [], "provider": {}}`,
			errContains: "parsing JSON",
		},
		{
			name:        "invalid_json",
			config:      `{"replacements": [`,
			errContains: "parsing JSON",
		},
	})
}

// 🧪 TestTOMLParsing tests TOML config parsing
func TestTOMLParsing(t *testing.T) {
	runParseCases(t, &TOMLParser{}, []parseCase{
		{
			name: "valid_toml",
			config: `
comparison = "ordinal"
timeout = "250ms"

[[replacements]]
old = "\t"
new = "  "

[[replacements]]
old = "colour"
new = "color"
file = "docs/**"
`,
			check: func(t *testing.T, cfg *Config) {
				assert.Equal(t, "ordinal", cfg.Comparison)
				assert.Equal(t, "250ms", cfg.Timeout)
				require.Len(t, cfg.Replacements, 2)
				assert.Equal(t, "\t", cfg.Replacements[0].Old)
				require.NotNil(t, cfg.Replacements[1].File)
				assert.Equal(t, "docs/**", *cfg.Replacements[1].File)
			},
		},
		{
			name: "unknown_field",
			config: `
destination = "/tmp"

[[replacements]]
old = "a"
new = "b"
`,
			errContains: "unknown fields destination",
		},
		{
			name:        "invalid_toml",
			config:      `[[replacements`,
			errContains: "parsing TOML",
		},
	})
}

// 🧪 TestYAMLParsing tests YAML config parsing
func TestYAMLParsing(t *testing.T) {
	runParseCases(t, &YAMLParser{}, []parseCase{
		{
			name: "valid_yaml",
			config: `
comparison: culture
replacements:
  - old: "a"
    new: "b"
`,
			check: func(t *testing.T, cfg *Config) {
				assert.Equal(t, "culture", cfg.Comparison)
				require.Len(t, cfg.Replacements, 1)
			},
		},
		{
			name:        "wrong_type",
			config:      "replacements: nope\n",
			errContains: "parsing YAML",
		},
	})
}
