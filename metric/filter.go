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

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/wbr-io/wbrctl/config"
	"github.com/wbr-io/wbrctl/table"
)

var filterOperators = []string{"==", "!=", ">=", "<=", ">", "<"}

// parseFilterQuery splits a filter's `query` string (e.g. `sales.country ==
// 'US'`) into a field reference, comparison operator, and literal operand
// (spec.md §3 "filter.query").
func parseFilterQuery(query string) (field, op, literal string, err error) {
	for _, candidate := range filterOperators {
		if idx := strings.Index(query, candidate); idx >= 0 {
			field = strings.TrimSpace(query[:idx])
			op = candidate
			literal = strings.TrimSpace(query[idx+len(candidate):])
			literal = strings.Trim(literal, `'"`)
			if field == "" || literal == "" {
				return "", "", "", fmt.Errorf("malformed filter query %q", query)
			}
			return field, op, literal, nil
		}
	}
	return "", "", "", fmt.Errorf("filter query %q has no recognized comparison operator", query)
}

func matchesPredicate(row table.Row, field, op, literal string) bool {
	if raw, ok := row.Raw[field]; ok {
		return compareStrings(raw, op, literal)
	}
	if v, ok := row.Columns[field]; ok {
		if lit, err := strconv.ParseFloat(literal, 64); err == nil {
			return compareFloats(v, op, lit)
		}
	}
	return false
}

func compareStrings(a, op, b string) bool {
	switch op {
	case "==":
		return a == b
	case "!=":
		return a != b
	default:
		return false
	}
}

func compareFloats(a float64, op string, b float64) bool {
	switch op {
	case "==":
		return a == b
	case "!=":
		return a != b
	case ">":
		return a > b
	case "<":
		return a < b
	case ">=":
		return a >= b
	case "<=":
		return a <= b
	}
	return false
}

// filteredColumnOnDates returns the BaseColumn values of every row in
// [first, last] matching the filter's query predicate.
func filteredColumnOnDates(t *table.DailyTable, f *config.FilterSpec, first, last time.Time) []float64 {
	field, op, literal, err := parseFilterQuery(f.Query)
	if err != nil {
		return nil
	}

	var out []float64
	for _, r := range t.Rows {
		if r.Date.Before(first) || r.Date.After(last) {
			continue
		}
		if !matchesPredicate(r, field, op, literal) {
			continue
		}
		if v, ok := r.Columns[f.BaseColumn]; ok {
			out = append(out, v)
		}
	}
	return out
}
