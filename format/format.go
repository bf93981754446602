// Copyright 2024
// SPDX-License-Identifier: Apache-2.0
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
// http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Package format implements the `##(.n){BB,MM,KK,%,bps,∅}` numeric mask
// grammar used for every value rendered into a WBR deck (spec.md §4.2).
package format

import (
	"fmt"
	"math"
	"regexp"
	"strconv"

	"github.com/wbr-io/wbrctl/wbrerr"
)

// Unit is the suffix/operation half of a mask.
type Unit string

const (
	UnitNone Unit = ""
	UnitBB   Unit = "BB"
	UnitMM   Unit = "MM"
	UnitKK   Unit = "KK"
	UnitPct  Unit = "%"
	UnitBps  Unit = "bps"
)

// Mask is a parsed `##(.n)<unit>` specification.
type Mask struct {
	Precision int // -1 means unspecified (caller picks a default)
	Unit      Unit
}

var maskPattern = regexp.MustCompile(`^##(?:\.([0-3]))?(BB|MM|KK|%|bps)?$`)

// Parse parses a mask string such as "##.2MM" or "##bps". Returns a
// ConfigError if the string doesn't match the grammar (spec.md §4.3
// "malformed yScaling mask").
func Parse(mask string) (Mask, error) {
	m := maskPattern.FindStringSubmatch(mask)
	if m == nil {
		return Mask{}, wbrerr.New(wbrerr.ConfigError, "yScaling", fmt.Sprintf("malformed mask %q", mask))
	}
	precision := -1
	if m[1] != "" {
		precision, _ = strconv.Atoi(m[1])
	}
	return Mask{Precision: precision, Unit: Unit(m[2])}, nil
}

// divisor/multiplier and suffix per spec.md §4.2 table.
func (u Unit) op(v float64) float64 {
	switch u {
	case UnitBB:
		return v / 1e9
	case UnitMM:
		return v / 1e6
	case UnitKK:
		return v / 1e3
	case UnitPct:
		return v * 100
	case UnitBps:
		return v * 10000
	default:
		return v
	}
}

func (u Unit) suffix() string {
	switch u {
	case UnitBB:
		return "B"
	case UnitMM:
		return "M"
	case UnitKK:
		return "K"
	case UnitPct:
		return "%"
	case UnitBps:
		return "bps"
	default:
		return ""
	}
}

func (u Unit) defaultPrecision() int {
	if u == UnitBps {
		return 0
	}
	return 2
}

// NA is the literal rendered for undefined values (spec.md §4.6 "Evaluation
// Error... substituting N/A").
const NA = "N/A"

// Format applies mask to v and returns the display string. A NaN or ±Inf
// input (the metric engine's metric.NA is NaN) renders as NA, so no
// NaN/Inf text is emitted (spec.md §9 "Division semantics").
func (m Mask) Format(v float64) string {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return NA
	}
	precision := m.Precision
	if precision < 0 {
		precision = m.Unit.defaultPrecision()
	}
	scaled := m.Unit.op(v)
	return strconv.FormatFloat(scaled, 'f', precision, 64) + m.Unit.suffix()
}

// FormatString is a convenience for values that may already be the NA
// sentinel (e.g. read back from a prior render, or straight from a source
// row that contained the literal "N/A" per spec.md §4.2).
func (m Mask) FormatString(s string) string {
	if s == NA {
		return NA
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return NA
	}
	return m.Format(v)
}

// ComparisonMethod is the `%`/`bps` unit used for WOW/MOM/YOY and table
// comparison columns, independent of the metric's own display mask
// (spec.md §4.2 "Comparisons formatted under metricComparisonMethod").
type ComparisonMethod string

const (
	ComparisonPercent ComparisonMethod = "%"
	ComparisonBps     ComparisonMethod = "bps"
)

// FormatComparison renders a ratio (e.g. 0.015 for 1.5%) under the given
// comparison method: 2 decimals for %, integer for bps.
func FormatComparison(v float64, method ComparisonMethod) string {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return NA
	}
	switch method {
	case ComparisonBps:
		return strconv.FormatFloat(v*10000, 'f', 0, 64) + "bps"
	default:
		return strconv.FormatFloat(v*100, 'f', 2, 64) + "%"
	}
}
