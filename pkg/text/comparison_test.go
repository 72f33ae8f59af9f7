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
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/text/language"
)

func TestParseComparison(t *testing.T) {
	tests := []struct {
		input   string
		want    Comparison
		wantErr bool
	}{
		{input: "", want: Ordinal},
		{input: "ordinal", want: Ordinal},
		{input: "Ordinal", want: Ordinal},
		{input: "ordinal-ignore-case", want: OrdinalIgnoreCase},
		{input: "OrdinalIgnoreCase", want: OrdinalIgnoreCase},
		{input: "ordinal_ignore_case", want: OrdinalIgnoreCase},
		{input: "culture", want: CultureSensitive},
		{input: "CurrentCulture", want: CultureSensitive},
		{input: "culture-ignore-case", want: CultureIgnoreCase},
		{input: "CurrentCultureIgnoreCase", want: CultureIgnoreCase},
		{input: "fuzzy", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := ParseComparison(tt.input)
			if tt.wantErr {
				require.Error(t, err)
				assert.ErrorIs(t, err, ErrInvalidArgument)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestComparisonText(t *testing.T) {
	for c := range comparisonNames {
		b, err := c.MarshalText()
		require.NoError(t, err)

		var back Comparison
		require.NoError(t, back.UnmarshalText(b))
		assert.Equal(t, c, back, "%s should survive a text round trip", c)
	}

	_, err := Comparison(-1).MarshalText()
	assert.Error(t, err)
	assert.Equal(t, "unknown", Comparison(-1).String())
}

func TestComparisonFlags(t *testing.T) {
	assert.True(t, OrdinalIgnoreCase.IgnoresCase())
	assert.True(t, CultureIgnoreCase.IgnoresCase())
	assert.False(t, Ordinal.IgnoresCase())
	assert.True(t, CultureSensitive.IsCultural())
	assert.False(t, OrdinalIgnoreCase.IsCultural())
}

func TestFolderKeys(t *testing.T) {
	t.Run("ordinal_ignore_case_folds_orbits", func(t *testing.T) {
		f := newFolder(OrdinalIgnoreCase, language.Und)
		assert.Equal(t, f.matchKey('s'), f.matchKey('S'))
		assert.Equal(t, f.matchKey('s'), f.matchKey('ſ'), "long s folds onto s")
		assert.Equal(t, f.matchKey('k'), f.matchKey('K'), "kelvin sign folds onto k")
	})

	t.Run("ordinal_keeps_case", func(t *testing.T) {
		f := newFolder(Ordinal, language.Und)
		assert.NotEqual(t, f.matchKey('a'), f.matchKey('A'))
	})

	t.Run("lookup_key_always_ignores_case", func(t *testing.T) {
		for _, cmp := range []Comparison{Ordinal, OrdinalIgnoreCase, CultureSensitive, CultureIgnoreCase} {
			f := newFolder(cmp, language.Und)
			assert.Equal(t, f.lookupKey("hello"), f.lookupKey("HeLLo"), "%s", cmp)
		}
	})

	t.Run("turkish_culture", func(t *testing.T) {
		f := newFolder(CultureIgnoreCase, language.Turkish)
		assert.Equal(t, 'ı', f.matchKey('I'))
		assert.Equal(t, 'i', f.matchKey('İ'))
	})
}
