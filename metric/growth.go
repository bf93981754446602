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
package metric

import "strings"

// growthSuffixes lists the reserved metric-name suffixes the engine
// auto-synthesizes from a declared metric's Series (spec.md §3 invariant 1,
// §4.6 "growth derivatives").
var growthSuffixes = []string{"WOW", "MOM", "YOY"}

// Lookup resolves name to a single value: a declared metric's latest week
// if name names one directly, or an auto-synthesized growth ratio if name
// carries a reserved WOW/MOM/YOY suffix over a declared base metric, taken
// at the latest period. Results are memoized in cache for the remainder of
// the build. The Deck Builder's tables and summary table use WeeksYOY/
// MonthsYOY/QTDYOY/YTDYOY for per-period YOY rows; their WOW/MOM rows
// render the single latest-period value Lookup returns.
func Lookup(result *Result, cache *GrowthCache, name string) (float64, bool) {
	if s, ok := result.Series[name]; ok {
		return s.WeeksCY[len(s.WeeksCY)-1], true
	}

	for _, suffix := range growthSuffixes {
		if !strings.HasSuffix(name, suffix) {
			continue
		}
		if v, ok := cache.get(name); ok {
			return v, true
		}

		base := strings.TrimSuffix(name, suffix)
		series, ok := result.Series[base]
		if !ok {
			return 0, false
		}

		var v float64
		switch suffix {
		case "WOW":
			v = WOW(series)
		case "MOM":
			v = MOM(series)
		case "YOY":
			last := len(series.WeeksCY) - 1
			v = growthRatio(series.WeeksCY[last], series.WeeksPY[last])
		}
		cache.set(name, v)
		return v, true
	}

	return 0, false
}

// growthRatio computes (curr-prev)/prev, propagating NA through either
// operand or a zero prior-period denominator (spec.md §9 "Division
// semantics").
func growthRatio(curr, prev float64) float64 {
	if IsNA(curr) || IsNA(prev) || prev == 0 {
		return NA
	}
	return (curr - prev) / prev
}

// WeeksYOY computes M.YOY for every one of base's 6 trailing weeks,
// index-aligned with base.WeeksCY/WeeksPY (spec.md §4.6 "Growth
// derivatives... M.YOY evaluated per period" and §8 "YOY symmetry").
func WeeksYOY(base *Series) [6]float64 {
	var out [6]float64
	for i := range base.WeeksCY {
		out[i] = growthRatio(base.WeeksCY[i], base.WeeksPY[i])
	}
	return out
}

// MonthsYOY mirrors WeeksYOY over base's 12 trailing months.
func MonthsYOY(base *Series) [12]float64 {
	var out [12]float64
	for i := range base.MonthsCY {
		out[i] = growthRatio(base.MonthsCY[i], base.MonthsPY[i])
	}
	return out
}

// MTDYOY, QTDYOY, YTDYOY compute M.YOY over the matching to-date window.
func MTDYOY(base *Series) float64 { return growthRatio(base.MTDCY, base.MTDPY) }
func QTDYOY(base *Series) float64 { return growthRatio(base.QTDCY, base.QTDPY) }
func YTDYOY(base *Series) float64 { return growthRatio(base.YTDCY, base.YTDPY) }

// WeeksWOW computes a week-over-week ratio for every trailing week, each
// against its own immediately preceding week; the oldest week in the
// window has no preceding week inside it and is NA. M.WOW as spec.md §4.6
// defines it (the latest week against its predecessor) is WeeksWOW's last
// element, which is what WOW below returns.
func WeeksWOW(base *Series) [6]float64 {
	var out [6]float64
	out[0] = NA
	for i := 1; i < len(base.WeeksCY); i++ {
		out[i] = growthRatio(base.WeeksCY[i], base.WeeksCY[i-1])
	}
	return out
}

// MonthsMOM mirrors WeeksWOW over base's 12 trailing months.
func MonthsMOM(base *Series) [12]float64 {
	var out [12]float64
	out[0] = NA
	for i := 1; i < len(base.MonthsCY); i++ {
		out[i] = growthRatio(base.MonthsCY[i], base.MonthsCY[i-1])
	}
	return out
}

// WOW and MOM are the single scalars spec.md §4.6 defines: the latest
// period against the one immediately before it.
func WOW(base *Series) float64 {
	w := WeeksWOW(base)
	return w[len(w)-1]
}

func MOM(base *Series) float64 {
	m := MonthsMOM(base)
	return m[len(m)-1]
}
