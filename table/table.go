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

// Package table defines DailyTable, the canonical time-indexed row set
// that flows from the Source Loader through the Merger into the Metric
// Engine (spec.md §3 "Runtime entities").
package table

import (
	"sort"
	"time"

	"github.com/rs/zerolog"
)

// Row is one day's worth of named numeric columns. Multiple rows may share
// a Date (spec.md §4.5 "Rows with multiple entries per date are allowed");
// the Metric Engine's aggregation functions combine them later.
type Row struct {
	Date    time.Time
	Columns map[string]float64
	// Raw carries non-numeric column values (e.g. a Country string used by
	// a filter predicate) that survive merging but aren't directly
	// aggregated.
	Raw map[string]string
}

// DailyTable is an ordered-by-Date, column-named table. It is never
// mutated in place (spec.md §9 "Single-writer dataframes") — every
// transformation (rename, join, filter) returns a new DailyTable.
type DailyTable struct {
	// ColumnOrder preserves (alias, columnOrderInSource) ordering for
	// deterministic merging (spec.md §5).
	ColumnOrder []string
	Rows        []Row
}

// New creates an empty table with the given column order.
func New(columns ...string) *DailyTable {
	return &DailyTable{ColumnOrder: append([]string(nil), columns...)}
}

// MarshalZerologObject lets callers log a DailyTable's shape cheaply.
func (t *DailyTable) MarshalZerologObject(e *zerolog.Event) {
	e.Int("Rows", len(t.Rows))
	e.Strs("Columns", t.ColumnOrder)
	if len(t.Rows) > 0 {
		e.Time("FirstDate", t.Rows[0].Date)
		e.Time("LastDate", t.Rows[len(t.Rows)-1].Date)
	}
}

// SortByDate sorts rows ascending by Date in place; callers that need a
// pristine copy should clone first via Clone().
func (t *DailyTable) SortByDate() {
	sort.SliceStable(t.Rows, func(i, j int) bool {
		return t.Rows[i].Date.Before(t.Rows[j].Date)
	})
}

// Clone returns a deep-enough copy (rows copied, column maps copied) so
// the receiver can still be safely reused by the caller.
func (t *DailyTable) Clone() *DailyTable {
	out := &DailyTable{ColumnOrder: append([]string(nil), t.ColumnOrder...)}
	out.Rows = make([]Row, len(t.Rows))
	for i, r := range t.Rows {
		cols := make(map[string]float64, len(r.Columns))
		for k, v := range r.Columns {
			cols[k] = v
		}
		var raw map[string]string
		if r.Raw != nil {
			raw = make(map[string]string, len(r.Raw))
			for k, v := range r.Raw {
				raw[k] = v
			}
		}
		out.Rows[i] = Row{Date: r.Date, Columns: cols, Raw: raw}
	}
	return out
}

// RenameColumns returns a new table with every column renamed via rename
// (columns absent from rename are dropped; Date is implicit and never
// passed to rename). Used by the Source Merger to namespace
// `sourceAlias.columnName` (spec.md §4.5, §3 invariant 3).
func (t *DailyTable) RenameColumns(prefix string) *DailyTable {
	newOrder := make([]string, len(t.ColumnOrder))
	for i, c := range t.ColumnOrder {
		newOrder[i] = prefix + "." + c
	}
	out := &DailyTable{ColumnOrder: newOrder}
	out.Rows = make([]Row, len(t.Rows))
	for i, r := range t.Rows {
		cols := make(map[string]float64, len(r.Columns))
		for k, v := range r.Columns {
			cols[prefix+"."+k] = v
		}
		var raw map[string]string
		if r.Raw != nil {
			raw = make(map[string]string, len(r.Raw))
			for k, v := range r.Raw {
				raw[prefix+"."+k] = v
			}
		}
		out.Rows[i] = Row{Date: r.Date, Columns: cols, Raw: raw}
	}
	return out
}

// ColumnOnDates returns the numeric values of column `col` for every row
// whose Date falls in [first, last] (inclusive), along with the dates, in
// ascending date order. Rows missing the column are skipped.
func (t *DailyTable) ColumnOnDates(col string, first, last time.Time) (dates []time.Time, values []float64) {
	for _, r := range t.Rows {
		if r.Date.Before(first) || r.Date.After(last) {
			continue
		}
		v, ok := r.Columns[col]
		if !ok {
			continue
		}
		dates = append(dates, r.Date)
		values = append(values, v)
	}
	return dates, values
}

// RawOnDates is ColumnOnDates for the Raw (string) columns, used by filter
// predicates.
func (t *DailyTable) RawOnDates(col string, first, last time.Time) (dates []time.Time, values []string) {
	for _, r := range t.Rows {
		if r.Date.Before(first) || r.Date.After(last) {
			continue
		}
		v, ok := r.Raw[col]
		if !ok {
			continue
		}
		dates = append(dates, r.Date)
		values = append(values, v)
	}
	return dates, values
}
