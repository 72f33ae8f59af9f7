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

	"github.com/rs/zerolog"
	"github.com/walteh/subst/pkg/log"
	"github.com/walteh/subst/pkg/status"
	"github.com/walteh/subst/pkg/text"
	"github.com/walteh/subst/pkg/units"
	"gitlab.com/tozd/go/errors"
)

// binarySniffLen is how many leading bytes are checked for NUL
const binarySniffLen = 8000

// 📄 fileOperation replaces text in one file
type fileOperation struct {
	op     *operator
	status *status.Manager
	path   string
}

// Execute implements Operation.Execute
func (f *fileOperation) Execute(ctx context.Context) error {
	defer f.status.Advance(ctx)

	info, err := f.process(ctx)
	if err != nil {
		info.Status = status.StatusFailed
		info.Error = err
	}
	f.track(ctx, info)

	if err != nil {
		return errors.Errorf("processing %s: %w", f.path, err)
	}
	return nil
}

func (f *fileOperation) process(ctx context.Context) (status.FileInfo, error) {
	logger := zerolog.Ctx(ctx).With().Str("path", f.path).Logger()
	info := status.FileInfo{Path: f.path}

	rules := text.RulesForFile(f.op.rules, f.path)
	if len(rules) == 0 {
		info.Status = status.StatusSkipped
		return info, nil
	}

	if limit := f.op.config.SizeLimit(); limit > 0 {
		size, err := f.status.FileSize(ctx, f.path)
		if err != nil {
			return info, err
		}
		if size > limit {
			logger.Debug().Stringer("size", size).Stringer("limit", limit).Msg("skipping large file")
			info.Status = status.StatusSkipped
			info.SizeBefore, info.SizeAfter = size, size
			return info, nil
		}
	}

	content, err := f.status.ReadFile(ctx, f.path)
	if err != nil {
		return info, err
	}
	info.SizeBefore = units.StorageCapacity(len(content))
	info.SizeAfter = info.SizeBefore

	if isBinary(content) {
		logger.Debug().Msg("skipping binary file")
		info.Status = status.StatusSkipped
		return info, nil
	}

	result, err := f.op.replacer.ReplaceText(ctx, bytes.NewReader(content), rules)
	if err != nil {
		return info, err
	}
	info.Replacements = result.ReplacementCount

	if !result.WasModified {
		info.Status = status.StatusUnchanged
		return info, nil
	}

	info.Status = status.StatusModified
	info.SizeAfter = units.StorageCapacity(len(result.ModifiedContent))

	if f.op.dryRun {
		logger.Debug().Int("replacements", info.Replacements).Msg("dry run, not writing")
		return info, nil
	}

	if f.op.backup {
		if err := f.status.BackupFile(ctx, f.path); err != nil {
			return info, err
		}
	}
	if err := f.status.WriteFileAtomic(ctx, f.path, result.ModifiedContent); err != nil {
		return info, err
	}
	return info, nil
}

func (f *fileOperation) track(ctx context.Context, info status.FileInfo) {
	f.status.TrackFile(ctx, info)

	if f.op.console == nil {
		return
	}
	f.op.console.LogFileOperation(ctx, log.FileOperation{
		Path:         info.Path,
		Status:       info.Status.String(),
		Replacements: info.Replacements,
		Size:         info.SizeAfter.String(),
		DryRun:       f.op.dryRun,
	})
}

func isBinary(content []byte) bool {
	return bytes.IndexByte(content[:min(len(content), binarySniffLen)], 0) >= 0
}
