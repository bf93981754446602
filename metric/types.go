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

// Package metric evaluates config.MetricDef definitions against a merged
// table.DailyTable, producing the period rollups the Deck Builder renders
// (spec.md §4.6 "Metric Engine").
package metric

import (
	"math"

	"github.com/rs/zerolog"
)

// NA is the sentinel value for a period that could not be computed (spec.md
// §9 "Division semantics" — divide-by-zero and missing operands propagate
// as N/A rather than 0 or an error).
var NA = math.NaN()

// IsNA reports whether v is the N/A sentinel.
func IsNA(v float64) bool {
	return math.IsNaN(v)
}

// Series is one metric's fully materialized rollups: six trailing weeks and
// twelve trailing months, current-year and prior-year, plus the three
// to-date windows (spec.md §2, §4.6).
type Series struct {
	Name string

	// WeeksCY/WeeksPY are oldest-first, length 6 (spec.md §4.1
	// LastSixWeeksCY/PY ordering).
	WeeksCY [6]float64
	WeeksPY [6]float64

	// MonthsCY/MonthsPY are oldest-first, length 12.
	MonthsCY [12]float64
	MonthsPY [12]float64

	MTDCY, MTDPY float64
	QTDCY, QTDPY float64
	YTDCY, YTDPY float64
}

// MarshalZerologObject lets callers log a materialized series cheaply,
// mirroring data/metric.go's MarshalZerologObject idiom.
func (s *Series) MarshalZerologObject(e *zerolog.Event) {
	e.Str("Metric", s.Name)
	e.Float64("LatestWeekCY", s.WeeksCY[5])
	e.Float64("LatestWeekPY", s.WeeksPY[5])
	e.Float64("YTDCY", s.YTDCY)
}

// Result is every evaluated series, keyed by metric name. Reserved-suffix
// growth derivatives are not stored here; Lookup computes them and caches
// them in a GrowthCache.
type Result struct {
	Series map[string]*Series
}
