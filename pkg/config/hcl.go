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
	"strings"

	"github.com/hashicorp/hcl/v2"
	"github.com/hashicorp/hcl/v2/gohcl"
	"github.com/hashicorp/hcl/v2/hclparse"
	"github.com/zclconf/go-cty/cty"
	"gitlab.com/tozd/go/errors"
)

func init() {
	Register(&HCLParser{})
}

// 🔧 HCLParser implements the Parser interface for HCL files
type HCLParser struct{}

// 🔍 CanParse checks if this parser can handle the given file
func (p *HCLParser) CanParse(filename string) bool {
	return strings.HasSuffix(filename, ".hcl")
}

// 📝 Parse parses the config from HCL. Each replacement is its own block:
//
//	replacement {
//	  old  = "\t"
//	  new  = "    "
//	  file = "**/*.go"
//	}
func (p *HCLParser) Parse(ctx context.Context, data []byte) (*Config, error) {
	parser := hclparse.NewParser()
	hclFile, diags := parser.ParseHCL(data, "config.hcl")
	if diags.HasErrors() {
		return nil, errors.Errorf("parsing HCL: %s", diags.Error())
	}

	// Create evaluation context
	evalCtx := &hcl.EvalContext{
		Variables: map[string]cty.Value{
			"tab":     cty.StringVal("\t"),
			"newline": cty.StringVal("\n"),
		},
	}

	// Define HCL schema
	type hclConfig struct {
		Comparison   *string  `hcl:"comparison,optional"`
		Language     *string  `hcl:"language,optional"`
		Timeout      *string  `hcl:"timeout,optional"`
		Root         *string  `hcl:"root,optional"`
		Include      []string `hcl:"include,optional"`
		Exclude      []string `hcl:"exclude,optional"`
		Concurrency  *int     `hcl:"concurrency,optional"`
		MaxFileSize  *string  `hcl:"max_file_size,optional"`
		Replacements []struct {
			Old  string  `hcl:"old"`
			New  string  `hcl:"new"`
			File *string `hcl:"file,optional"`
		} `hcl:"replacement,block"`
	}

	// Decode HCL
	var hclCfg hclConfig
	diags = gohcl.DecodeBody(hclFile.Body, evalCtx, &hclCfg)
	if diags.HasErrors() {
		return nil, errors.Errorf("decoding HCL: %s", diags.Error())
	}

	// Convert to model
	cfg := &Config{
		Include: hclCfg.Include,
		Exclude: hclCfg.Exclude,
	}
	if hclCfg.Comparison != nil {
		cfg.Comparison = *hclCfg.Comparison
	}
	if hclCfg.Language != nil {
		cfg.Language = *hclCfg.Language
	}
	if hclCfg.Timeout != nil {
		cfg.Timeout = *hclCfg.Timeout
	}
	if hclCfg.Root != nil {
		cfg.Root = *hclCfg.Root
	}
	if hclCfg.Concurrency != nil {
		cfg.Concurrency = *hclCfg.Concurrency
	}
	if hclCfg.MaxFileSize != nil {
		cfg.MaxFileSize = *hclCfg.MaxFileSize
	}
	for _, r := range hclCfg.Replacements {
		cfg.Replacements = append(cfg.Replacements, Replacement{
			Old:  r.Old,
			New:  r.New,
			File: r.File,
		})
	}

	return cfg, nil
}
