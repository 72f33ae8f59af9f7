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
	"fmt"
	"time"

	"gitlab.com/tozd/go/errors"
)

var (
	// ErrInvalidArgument is returned synchronously for an empty pair set or an empty old value
	ErrInvalidArgument = errors.Base("invalid argument")

	// ErrPatternTimeout matches any *PatternTimeoutError
	ErrPatternTimeout = errors.Base("pattern scan timed out")
)

// ⏱️ PatternTimeoutError is returned when the scan step runs past its deadline
type PatternTimeoutError struct {
	Timeout time.Duration // configured bound, zero when only the caller's deadline applied
	Offset  int           // byte offset the scan had reached
}

func (e *PatternTimeoutError) Error() string {
	if e.Timeout > 0 {
		return fmt.Sprintf("%s after %s at offset %d", ErrPatternTimeout, e.Timeout, e.Offset)
	}
	return fmt.Sprintf("%s at offset %d", ErrPatternTimeout, e.Offset)
}

// Is lets errors.Is(err, ErrPatternTimeout) match
func (e *PatternTimeoutError) Is(target error) bool {
	return target == ErrPatternTimeout
}

// Unwrap exposes context.DeadlineExceeded
func (e *PatternTimeoutError) Unwrap() error {
	return context.DeadlineExceeded
}
