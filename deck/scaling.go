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
package deck

import "math"

// niceNum rounds a range to a "nice" value (1, 2, 5, or 10 times a power of
// ten), Heckbert's classic axis-labeling algorithm (spec.md §4.9 "niceNum
// axis scaling"). When round is true the nearest nice value is returned;
// otherwise the smallest nice value that is >= v.
func niceNum(v float64, round bool) float64 {
	if v == 0 {
		return 0
	}
	exp := math.Floor(math.Log10(v))
	frac := v / math.Pow(10, exp)

	var niceFrac float64
	switch {
	case round:
		switch {
		case frac < 1.5:
			niceFrac = 1
		case frac < 3:
			niceFrac = 2
		case frac < 7:
			niceFrac = 5
		default:
			niceFrac = 10
		}
	default:
		switch {
		case frac <= 1:
			niceFrac = 1
		case frac <= 2:
			niceFrac = 2
		case frac <= 5:
			niceFrac = 5
		default:
			niceFrac = 10
		}
	}
	return niceFrac * math.Pow(10, exp)
}

// Axis holds the computed Y-axis bounds and tick spacing for a graph block.
type Axis struct {
	Min, Max, Tick float64
}

// ComputeAxis derives nice-rounded axis bounds spanning [min, max] with
// approximately numTicks gridlines (spec.md §4.9).
func ComputeAxis(min, max float64, numTicks int) Axis {
	if numTicks <= 0 {
		numTicks = 5
	}
	if min == max {
		if min == 0 {
			return Axis{Min: 0, Max: 1, Tick: 0.2}
		}
		max = min + math.Abs(min)*0.1
	}
	if min > max {
		min, max = max, min
	}

	span := niceNum(max-min, false)
	tick := niceNum(span/float64(numTicks-1), true)
	niceMin := math.Floor(min/tick) * tick
	niceMax := math.Ceil(max/tick) * tick

	return Axis{Min: niceMin, Max: niceMax, Tick: tick}
}
