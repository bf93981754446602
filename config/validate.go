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
package config

import (
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/hashicorp/go-multierror"
	"github.com/wbr-io/wbrctl/format"
	"github.com/wbr-io/wbrctl/wbrerr"
)

var structValidator = validator.New()

// reservedSuffixes are never allowed as the tail of a declared metric name
// (spec.md §4.3 "metric whose name ends in WOW|MOM|YOY (reserved)").
var reservedSuffixes = []string{"WOW", "MOM", "YOY"}

// Validate runs both validation layers and aggregates every error found
// (spec.md §4.3 "Validation is total... where feasible"). It returns a
// *multierror.Error wrapping one or more *wbrerr.Error values, or nil.
func Validate(cfg *Config) error {
	var result *multierror.Error

	if err := structValidator.Struct(cfg); err != nil {
		if verrs, ok := err.(validator.ValidationErrors); ok {
			for _, fe := range verrs {
				result = multierror.Append(result, wbrerr.New(wbrerr.ConfigError, fe.Namespace(),
					fmt.Sprintf("failed %q validation", fe.Tag())))
			}
		} else {
			result = multierror.Append(result, wbrerr.Wrap(wbrerr.ConfigError, "", err))
		}
	}

	for name := range cfg.Metrics {
		for _, suffix := range reservedSuffixes {
			if strings.HasSuffix(name, suffix) {
				result = multierror.Append(result, wbrerr.New(wbrerr.ConfigError, "metrics."+name,
					fmt.Sprintf("metric name must not end in reserved suffix %q", suffix)))
			}
		}
	}

	for name, m := range cfg.Metrics {
		switch m.Kind() {
		case KindBasic:
			if m.Column == "" {
				result = multierror.Append(result, wbrerr.New(wbrerr.ConfigError, "metrics."+name+".column", "basic metric requires column"))
			}
			if !validAggF(m.AggF) {
				result = multierror.Append(result, wbrerr.New(wbrerr.ConfigError, "metrics."+name+".aggf", fmt.Sprintf("unknown aggf %q", m.AggF)))
			}
		case KindFilter:
			if !validAggF(m.AggF) {
				result = multierror.Append(result, wbrerr.New(wbrerr.ConfigError, "metrics."+name+".aggf", fmt.Sprintf("unknown aggf %q", m.AggF)))
			}
		case KindFunction:
			if !validFuncOp(m.Function.Op) {
				result = multierror.Append(result, wbrerr.New(wbrerr.ConfigError, "metrics."+name+".function", fmt.Sprintf("unknown op %q", m.Function.Op)))
			}
			for _, operand := range m.Function.Operands {
				if operand.IsMetric() {
					if _, ok := resolveMetricRef(cfg, operand.Metric.Name); !ok {
						result = multierror.Append(result, wbrerr.New(wbrerr.ConfigError, "metrics."+name+".function",
							fmt.Sprintf("operand references undefined metric %q", operand.Metric.Name)))
					}
				} else if !operand.IsValue() {
					result = multierror.Append(result, wbrerr.New(wbrerr.ConfigError, "metrics."+name+".function", "operand must be a metric or a value"))
				}
			}
		}

		if m.MetricComparisonMethod != "" && m.MetricComparisonMethod != ComparisonPercent && m.MetricComparisonMethod != ComparisonBps {
			result = multierror.Append(result, wbrerr.New(wbrerr.ConfigError, "metrics."+name+".metricComparisonMethod",
				fmt.Sprintf("must be %% or bps, got %q", m.MetricComparisonMethod)))
		}
	}

	if cycle, ok := findCycle(cfg); ok {
		result = multierror.Append(result, wbrerr.New(wbrerr.ConfigError, "metrics",
			fmt.Sprintf("function-metric dependency cycle: %s", strings.Join(cycle, " -> "))))
	}

	for i, block := range cfg.Deck {
		path := fmt.Sprintf("deck[%d]", i)
		if err := validateBlock(cfg, path, block); err != nil {
			result = multierror.Append(result, err)
		}
	}

	if result != nil {
		return result.ErrorOrNil()
	}
	return nil
}

func validAggF(f AggFunc) bool {
	switch f {
	case AggSum, AggMean, AggMin, AggMax, AggLast:
		return true
	}
	return false
}

func validFuncOp(op FuncOp) bool {
	switch op {
	case FuncSum, FuncDifference, FuncDivide, FuncProduct:
		return true
	}
	return false
}

func validateBlock(cfg *Config, path string, b Block) error {
	var result *multierror.Error
	switch b.UIType {
	case UITypeGraph6_12:
		if _, err := format.Parse(b.YScaling); err != nil && b.YScaling != "" {
			result = multierror.Append(result, wbrerr.New(wbrerr.ConfigError, path+".yScaling", err.Error()))
		}
		for j, series := range b.YAxis {
			if _, ok := resolveMetricRef(cfg, series.Metric); !ok {
				result = multierror.Append(result, wbrerr.New(wbrerr.ConfigError, fmt.Sprintf("%s.yAxis[%d].metric", path, j),
					fmt.Sprintf("undefined metric %q", series.Metric)))
			}
		}
	case UIType6WeeksTable, UIType12MonthsTable:
		for j, row := range b.Rows {
			if row.Metric == "" {
				continue
			}
			if _, ok := resolveMetricRef(cfg, row.Metric); !ok {
				result = multierror.Append(result, wbrerr.New(wbrerr.ConfigError, fmt.Sprintf("%s.rows[%d].metric", path, j),
					fmt.Sprintf("undefined metric %q", row.Metric)))
			}
		}
	case UITypeSection, UITypeEmbeddedContent:
		// no metric references to validate
	default:
		result = multierror.Append(result, wbrerr.New(wbrerr.ConfigError, path+".uiType", fmt.Sprintf("unknown uiType %q", b.UIType)))
	}
	if result != nil {
		return result.ErrorOrNil()
	}
	return nil
}

// resolveMetricRef reports whether name resolves to a declared metric or
// an auto-generated `<base>{WOW,MOM,YOY}` derivative (spec.md §3 invariant
// 1).
func resolveMetricRef(cfg *Config, name string) (*MetricDef, bool) {
	if m, ok := cfg.Metrics[name]; ok {
		return m, true
	}
	for _, suffix := range reservedSuffixes {
		if strings.HasSuffix(name, suffix) {
			base := strings.TrimSuffix(name, suffix)
			if m, ok := cfg.Metrics[base]; ok {
				return m, true
			}
		}
	}
	return nil, false
}

// findCycle runs a topological sort over the function-metric dependency
// graph (functionMetric -> operandMetric) and returns the first back-edge
// cycle found, if any (spec.md §4.3, §9 "Cycle detection").
func findCycle(cfg *Config) ([]string, bool) {
	const (
		white = 0
		gray  = 1
		black = 2
	)
	color := make(map[string]int, len(cfg.Metrics))
	var path []string

	var visit func(name string) ([]string, bool)
	visit = func(name string) ([]string, bool) {
		m, ok := cfg.Metrics[name]
		if !ok || m.Kind() != KindFunction {
			return nil, false
		}
		color[name] = gray
		path = append(path, name)
		defer func() { path = path[:len(path)-1] }()

		for _, operand := range m.Function.Operands {
			if !operand.IsMetric() {
				continue
			}
			dep := operand.Metric.Name
			switch color[dep] {
			case gray:
				return append(append([]string{}, path...), dep), true
			case white:
				if cycle, found := visit(dep); found {
					return cycle, true
				}
			}
		}
		color[name] = black
		return nil, false
	}

	for name := range cfg.Metrics {
		if color[name] == white {
			if cycle, found := visit(name); found {
				return cycle, true
			}
		}
	}
	return nil, false
}
