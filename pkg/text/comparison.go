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
	"strings"
	"unicode"
	"unicode/utf8"

	"gitlab.com/tozd/go/errors"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
	"golang.org/x/text/unicode/norm"
)

// 🔤 Comparison selects how pattern runes are compared with source runes
type Comparison int

const (
	CultureSensitive  Comparison = iota // culture rules, case-sensitive
	Ordinal                             // exact rune comparison
	OrdinalIgnoreCase                   // rune comparison after simple case folding
	CultureIgnoreCase                   // culture rules, case-insensitive
)

var comparisonNames = map[Comparison]string{
	CultureSensitive:  "culture",
	Ordinal:           "ordinal",
	OrdinalIgnoreCase: "ordinal-ignore-case",
	CultureIgnoreCase: "culture-ignore-case",
}

// String returns the config name of the comparison
func (c Comparison) String() string {
	if name, ok := comparisonNames[c]; ok {
		return name
	}
	return "unknown"
}

// IgnoresCase reports whether the comparison is case-insensitive
func (c Comparison) IgnoresCase() bool {
	return c == OrdinalIgnoreCase || c == CultureIgnoreCase
}

// IsCultural reports whether the comparison follows culture rules
func (c Comparison) IsCultural() bool {
	return c == CultureSensitive || c == CultureIgnoreCase
}

func (c Comparison) valid() bool {
	_, ok := comparisonNames[c]
	return ok
}

// 🔍 ParseComparison parses a comparison name as used in config files.
// Dashes, underscores and case are ignored, so "OrdinalIgnoreCase" works too.
func ParseComparison(s string) (Comparison, error) {
	key := strings.NewReplacer("-", "", "_", "", " ", "").Replace(strings.ToLower(strings.TrimSpace(s)))
	switch key {
	case "culture", "culturesensitive", "currentculture":
		return CultureSensitive, nil
	case "", "ordinal":
		return Ordinal, nil
	case "ordinalignorecase":
		return OrdinalIgnoreCase, nil
	case "cultureignorecase", "currentcultureignorecase":
		return CultureIgnoreCase, nil
	}
	return Ordinal, errors.Errorf("%w: unknown comparison %q", ErrInvalidArgument, s)
}

// MarshalText implements encoding.TextMarshaler
func (c Comparison) MarshalText() ([]byte, error) {
	if !c.valid() {
		return nil, errors.Errorf("%w: unknown comparison %d", ErrInvalidArgument, int(c))
	}
	return []byte(c.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler
func (c *Comparison) UnmarshalText(b []byte) error {
	parsed, err := ParseComparison(string(b))
	if err != nil {
		return err
	}
	*c = parsed
	return nil
}

// foldOrdinal maps every rune of a simple case orbit onto one rune.
// Going through upper case first collapses ſ onto s and the kelvin sign onto k.
func foldOrdinal(r rune) rune {
	return unicode.ToLower(unicode.ToUpper(r))
}

// folder turns runes into match keys. Cultural folders wrap a cases.Caser,
// which is stateful, so a folder must not be shared between goroutines.
type folder struct {
	cmp   Comparison
	lower cases.Caser
	cache map[rune]rune
}

func newFolder(cmp Comparison, tag language.Tag) *folder {
	f := &folder{cmp: cmp}
	if cmp.IsCultural() {
		f.lower = cases.Lower(tag)
		f.cache = make(map[rune]rune)
	}
	return f
}

// matchKey is the key used when comparing a pattern rune with a source rune
func (f *folder) matchKey(r rune) rune {
	switch f.cmp {
	case OrdinalIgnoreCase:
		return foldOrdinal(r)
	case CultureIgnoreCase:
		return f.cultureLower(r)
	default:
		return r
	}
}

// lookupKey is the key used for the replacement table. It always ignores
// case, whatever the comparison.
func (f *folder) lookupKey(s string) string {
	var sb strings.Builder
	sb.Grow(len(s))
	for _, r := range s {
		if f.cmp.IsCultural() {
			sb.WriteRune(f.cultureLower(r))
		} else {
			sb.WriteRune(foldOrdinal(r))
		}
	}
	return sb.String()
}

// normalizePattern prepares a pattern for the automaton
func (f *folder) normalizePattern(s string) string {
	if f.cmp.IsCultural() {
		return norm.NFC.String(s)
	}
	return s
}

// cultureLower lowers a single rune with the culture's rules. When the culture
// would expand the rune into several (İ outside Turkish), plain Unicode lowering
// is used so that one source rune always maps to one key.
func (f *folder) cultureLower(r rune) rune {
	if k, ok := f.cache[r]; ok {
		return k
	}
	k := unicode.ToLower(r)
	if lowered := f.lower.String(string(r)); utf8.RuneCountInString(lowered) == 1 {
		k, _ = utf8.DecodeRuneInString(lowered)
	}
	f.cache[r] = k
	return k
}
