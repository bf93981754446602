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

// Package merge joins the per-alias DailyTables the Source Loader produces
// into one namespaced table (spec.md §4.5 "Source Merger").
package merge

import (
	"sort"

	"github.com/wbr-io/wbrctl/table"
)

// Merge performs a deterministic full outer join on Date across every
// (alias, table) pair, namespacing every column as "alias.column" (spec.md
// §3 invariant 3, §4.5). Input tables are never mutated (spec.md §9
// "Single-writer dataframes"); Merge always returns a fresh DailyTable.
func Merge(tables map[string]*table.DailyTable) *table.DailyTable {
	aliases := make([]string, 0, len(tables))
	for alias := range tables {
		aliases = append(aliases, alias)
	}
	sort.Strings(aliases)

	namespaced := make(map[string]*table.DailyTable, len(aliases))
	var order []string
	for _, alias := range aliases {
		renamed := tables[alias].RenameColumns(alias)
		namespaced[alias] = renamed
		order = append(order, renamed.ColumnOrder...)
	}

	dateSet := map[string]bool{}
	for _, t := range namespaced {
		for _, r := range t.Rows {
			dateSet[r.Date.Format("2006-01-02")] = true
		}
	}

	dates := make([]string, 0, len(dateSet))
	for d := range dateSet {
		dates = append(dates, d)
	}
	sort.Strings(dates)

	out := table.New(order...)
	for _, dateStr := range dates {
		row := table.Row{Columns: map[string]float64{}, Raw: map[string]string{}}
		dateSet := false
		for _, alias := range aliases {
			t := namespaced[alias]
			for _, r := range t.Rows {
				if r.Date.Format("2006-01-02") != dateStr {
					continue
				}
				if !dateSet {
					row.Date = r.Date
					dateSet = true
				}
				for k, v := range r.Columns {
					row.Columns[k] = v
				}
				for k, v := range r.Raw {
					row.Raw[k] = v
				}
			}
		}
		out.Rows = append(out.Rows, row)
	}

	return out
}

// Override replaces merged entirely with override when override is
// non-nil (spec.md §4.5 "an ambient uploaded CSV overrides the merged
// table outright, not column-by-column").
func Override(merged, override *table.DailyTable) *table.DailyTable {
	if override == nil {
		return merged
	}
	return override
}
