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
package testharness

import (
	"time"

	"github.com/wbr-io/wbrctl/table"
)

// dailySeries builds a DailyTable with one numeric column, one row per day
// from end going back (len(values)-1) days, values[i] landing on
// end.AddDate(0,0,-(len(values)-1-i)) so values[len(values)-1] lands on end
// itself.
func dailySeries(column string, end time.Time, values []float64) *table.DailyTable {
	out := table.New(column)
	n := len(values)
	for i, v := range values {
		date := end.AddDate(0, 0, -(n - 1 - i))
		out.Rows = append(out.Rows, table.Row{
			Date:    date,
			Columns: map[string]float64{column: v},
		})
	}
	out.SortByDate()
	return out
}

// ascendingSeries returns [1, 2, ..., n] scaled by unit (e.g. 1e6), the
// "1e6, 2e6, ... " literal input spec.md §8 scenario 1 describes.
func ascendingSeries(n int, unit float64) []float64 {
	out := make([]float64, n)
	for i := range out {
		out[i] = float64(i+1) * unit
	}
	return out
}

// constantSeries returns a table with both cols set to the same value every
// day for n days ending on end (spec.md §8 scenario 2's "identical data").
func constantSeries(colA, colB string, end time.Time, n int, v float64) *table.DailyTable {
	out := table.New(colA, colB)
	for i := 0; i < n; i++ {
		date := end.AddDate(0, 0, -(n - 1 - i))
		out.Rows = append(out.Rows, table.Row{
			Date:    date,
			Columns: map[string]float64{colA: v, colB: v},
		})
	}
	out.SortByDate()
	return out
}

// oneSeriesPerDay builds a constant-value-1 daily table spanning
// [start, end] inclusive, for exercising to-date rollups across fiscal
// boundaries (spec.md §8 scenario 4).
func oneSeriesPerDay(column string, start, end time.Time) *table.DailyTable {
	out := table.New(column)
	for d := start; !d.After(end); d = d.AddDate(0, 0, 1) {
		out.Rows = append(out.Rows, table.Row{Date: d, Columns: map[string]float64{column: 1}})
	}
	out.SortByDate()
	return out
}
