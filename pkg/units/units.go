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

// Package units formats storage capacities with binary (KiB, MiB) or
// decimal (kB, MB) unit prefixes.
package units

import (
	"math"
	"strconv"
	"strings"
	"unicode"

	"gitlab.com/tozd/go/errors"
)

// 📏 Prefix is a unit prefix with its multiplier
type Prefix struct {
	Symbol string
	Name   string
	Factor float64
}

// System picks the prefix family used for formatting
type System int

const (
	Binary  System = iota // powers of 1024: KiB, MiB, ...
	Decimal               // powers of 1000: kB, MB, ...
)

var (
	// BinaryPrefixes are the IEC prefixes, smallest first
	BinaryPrefixes = []Prefix{
		{"Ki", "kibi", 1 << 10},
		{"Mi", "mebi", 1 << 20},
		{"Gi", "gibi", 1 << 30},
		{"Ti", "tebi", 1 << 40},
		{"Pi", "pebi", 1 << 50},
		{"Ei", "exbi", 1 << 60},
		{"Zi", "zebi", 1 << 70},
		{"Yi", "yobi", 1 << 80},
	}

	// DecimalPrefixes are the SI prefixes, smallest first
	DecimalPrefixes = []Prefix{
		{"k", "kilo", 1e3},
		{"M", "mega", 1e6},
		{"G", "giga", 1e9},
		{"T", "tera", 1e12},
		{"P", "peta", 1e15},
		{"E", "exa", 1e18},
		{"Z", "zetta", 1e21},
		{"Y", "yotta", 1e24},
	}
)

// Prefixes returns the prefix family of the system
func (s System) Prefixes() []Prefix {
	if s == Decimal {
		return DecimalPrefixes
	}
	return BinaryPrefixes
}

// 💾 StorageCapacity is an amount of data in bytes
type StorageCapacity int64

const (
	Byte     StorageCapacity = 1
	Kibibyte                 = 1024 * Byte
	Mebibyte                 = 1024 * Kibibyte
	Gibibyte                 = 1024 * Mebibyte
	Kilobyte                 = 1000 * Byte
	Megabyte                 = 1000 * Kilobyte
	Gigabyte                 = 1000 * Megabyte
)

// String formats with binary prefixes and one decimal
func (c StorageCapacity) String() string {
	return c.Format(Binary, 1)
}

// Format picks the largest prefix not exceeding the value and prints it with
// the given number of decimals, trailing zeros trimmed. Values under one unit
// are printed as whole bytes.
func (c StorageCapacity) Format(system System, precision int) string {
	return format(float64(c), system, precision)
}

func format(v float64, system System, precision int) string {
	sign := ""
	if v < 0 {
		sign, v = "-", -v
	}

	prefixes := system.Prefixes()
	var chosen *Prefix
	for i := range prefixes {
		if v >= prefixes[i].Factor {
			chosen = &prefixes[i]
		}
	}
	if chosen == nil {
		return sign + strconv.FormatFloat(v, 'f', 0, 64) + " B"
	}

	if precision < 0 {
		precision = 0
	}
	num := strconv.FormatFloat(v/chosen.Factor, 'f', precision, 64)
	if strings.Contains(num, ".") {
		num = strings.TrimRight(strings.TrimRight(num, "0"), ".")
	}
	return sign + num + " " + chosen.Symbol + "B"
}

// 🔍 ParseStorageCapacity parses "512", "1.5 MiB", "10kB" or "2 GB".
// Prefix lookup is exact for binary prefixes and case-insensitive for decimal ones.
func ParseStorageCapacity(s string) (StorageCapacity, error) {
	in := strings.TrimSpace(s)
	split := strings.IndexFunc(in, func(r rune) bool {
		return !(unicode.IsDigit(r) || r == '.' || r == '-' || r == '+')
	})
	numPart, unitPart := in, ""
	if split >= 0 {
		numPart, unitPart = strings.TrimSpace(in[:split]), strings.TrimSpace(in[split:])
	}

	v, err := strconv.ParseFloat(numPart, 64)
	if err != nil {
		return 0, errors.Errorf("parsing capacity %q: %w", s, err)
	}

	factor, err := unitFactor(unitPart)
	if err != nil {
		return 0, errors.Errorf("parsing capacity %q: %w", s, err)
	}

	total := v * factor
	if math.IsInf(total, 0) || math.Abs(total) >= math.MaxInt64 {
		return 0, errors.Errorf("parsing capacity %q: out of range", s)
	}
	return StorageCapacity(math.Round(total)), nil
}

func unitFactor(u string) (float64, error) {
	if u == "" || u == "B" || strings.EqualFold(u, "bytes") {
		return 1, nil
	}
	u = strings.TrimSuffix(u, "B")
	for _, p := range BinaryPrefixes {
		if u == p.Symbol {
			return p.Factor, nil
		}
	}
	for _, p := range DecimalPrefixes {
		if strings.EqualFold(u, p.Symbol) {
			return p.Factor, nil
		}
	}
	return 0, errors.Errorf("unknown unit %q", u)
}
