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
	"context"

	"github.com/rs/zerolog"
	"gitlab.com/tozd/go/errors"
	"golang.org/x/sync/errgroup"
)

// ⚙️ Operation is one unit of work
type Operation interface {
	Execute(ctx context.Context) error
}

// 🏃 OperationRunner executes operations
type OperationRunner struct {
	logger *zerolog.Logger
	limit  int
}

// 🏗️ NewRunner creates a new runner. A limit of zero or less runs everything at once.
func NewRunner(logger *zerolog.Logger, limit int) *OperationRunner {
	if logger == nil {
		nop := zerolog.Nop()
		logger = &nop
	}
	return &OperationRunner{
		logger: logger,
		limit:  limit,
	}
}

// 🏃 Run executes a single operation
func (r *OperationRunner) Run(ctx context.Context, op Operation) error {
	return r.RunAll(ctx, []Operation{op})
}

// ⚡ RunAll executes ops concurrently, at most limit at a time. The first
// error cancels the operations that have not started yet.
func (r *OperationRunner) RunAll(ctx context.Context, ops []Operation) error {
	g, gctx := errgroup.WithContext(ctx)
	if r.limit > 0 {
		g.SetLimit(r.limit)
	}

	for _, op := range ops {
		op := op
		g.Go(func() error {
			if gctx.Err() != nil {
				return nil
			}
			return op.Execute(gctx)
		})
	}

	if err := g.Wait(); err != nil {
		r.logger.Debug().Err(err).Msg("operation failed")
		return err
	}

	// Wait for completion or context cancellation
	if err := ctx.Err(); err != nil {
		return errors.Errorf("operation cancelled: %w", err)
	}
	return nil
}
