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
	"time"

	"github.com/wbr-io/wbrctl/calendar"
	"github.com/wbr-io/wbrctl/config"
	"github.com/wbr-io/wbrctl/table"
	"github.com/wbr-io/wbrctl/wbrerr"
)

// Evaluate materializes every declared metric's six-week, twelve-month, and
// to-date rollups (spec.md §4.6). Function metrics are evaluated lazily,
// per period, via evalMetric's recursion; config.Validate having already
// rejected cyclic graphs, a cycle surfaced here is an EvaluationError rather
// than a panic.
func Evaluate(cfg *config.Config, cal *calendar.Calendar, merged *table.DailyTable) (*Result, error) {
	result := &Result{Series: make(map[string]*Series, len(cfg.Metrics))}
	for name := range cfg.Metrics {
		result.Series[name] = &Series{Name: name}
	}

	weeksCY := cal.LastSixWeeksCY()
	weeksPY := cal.LastSixWeeksPY()
	for i := 0; i < 6; i++ {
		if err := fillPeriod(cfg, merged, result, weeksCY[i].Start, weeksCY[i].End, func(s *Series, v float64) { s.WeeksCY[i] = v }); err != nil {
			return nil, err
		}
		if err := fillPeriod(cfg, merged, result, weeksPY[i].Start, weeksPY[i].End, func(s *Series, v float64) { s.WeeksPY[i] = v }); err != nil {
			return nil, err
		}
	}

	monthsCY := cal.LastTwelveMonthsCY()
	monthsPY := cal.LastTwelveMonthsPY()
	for i := 0; i < 12; i++ {
		first, last := monthsCY[i].FirstDay(), monthsCY[i].Clamp(cal.WeekEnding)
		if err := fillPeriod(cfg, merged, result, first, last, func(s *Series, v float64) { s.MonthsCY[i] = v }); err != nil {
			return nil, err
		}
		pyFirst, pyLast := monthsPY[i].FirstDay(), monthsPY[i].LastDay()
		if err := fillPeriod(cfg, merged, result, pyFirst, pyLast, func(s *Series, v float64) { s.MonthsPY[i] = v }); err != nil {
			return nil, err
		}
	}

	mtdFirst, mtdLast := cal.MTD()
	if err := fillPeriod(cfg, merged, result, mtdFirst, mtdLast, func(s *Series, v float64) { s.MTDCY = v }); err != nil {
		return nil, err
	}
	pyFirst, pyLast := calendar.PriorYearRange(mtdFirst, mtdLast)
	if err := fillPeriod(cfg, merged, result, pyFirst, pyLast, func(s *Series, v float64) { s.MTDPY = v }); err != nil {
		return nil, err
	}

	qtdFirst, qtdLast := cal.QTD()
	if err := fillPeriod(cfg, merged, result, qtdFirst, qtdLast, func(s *Series, v float64) { s.QTDCY = v }); err != nil {
		return nil, err
	}
	pyFirst, pyLast = calendar.PriorYearRange(qtdFirst, qtdLast)
	if err := fillPeriod(cfg, merged, result, pyFirst, pyLast, func(s *Series, v float64) { s.QTDPY = v }); err != nil {
		return nil, err
	}

	ytdFirst, ytdLast := cal.YTD()
	if err := fillPeriod(cfg, merged, result, ytdFirst, ytdLast, func(s *Series, v float64) { s.YTDCY = v }); err != nil {
		return nil, err
	}
	pyFirst, pyLast = calendar.PriorYearRange(ytdFirst, ytdLast)
	if err := fillPeriod(cfg, merged, result, pyFirst, pyLast, func(s *Series, v float64) { s.YTDPY = v }); err != nil {
		return nil, err
	}

	return result, nil
}

// fillPeriod evaluates every declared metric over [first, last] and writes
// each into its Series via assign.
func fillPeriod(cfg *config.Config, merged *table.DailyTable, result *Result, first, last time.Time, assign func(*Series, float64)) error {
	memo := map[string]float64{}
	visiting := map[string]bool{}
	for name := range cfg.Metrics {
		v, err := evalMetric(cfg, merged, name, first, last, memo, visiting)
		if err != nil {
			return err
		}
		assign(result.Series[name], v)
	}
	return nil
}

// evalMetric computes one metric's value over [first, last], recursing into
// function-metric operands and memoizing within this period's evaluation.
func evalMetric(cfg *config.Config, merged *table.DailyTable, name string, first, last time.Time, memo map[string]float64, visiting map[string]bool) (float64, error) {
	if v, ok := memo[name]; ok {
		return v, nil
	}

	m, ok := cfg.Metrics[name]
	if !ok {
		return 0, wbrerr.New(wbrerr.EvaluationError, "metrics."+name, "undefined metric")
	}
	if visiting[name] {
		return 0, wbrerr.New(wbrerr.EvaluationError, "metrics."+name, "cyclic metric dependency")
	}
	visiting[name] = true
	defer delete(visiting, name)

	var val float64
	switch m.Kind() {
	case config.KindBasic:
		_, vals := merged.ColumnOnDates(m.Column, first, last)
		val = aggregate(m.AggF, vals)
	case config.KindFilter:
		vals := filteredColumnOnDates(merged, m.Filter, first, last)
		val = aggregate(m.AggF, vals)
	case config.KindFunction:
		operandVals := make([]float64, len(m.Function.Operands))
		for i, operand := range m.Function.Operands {
			if operand.IsValue() {
				operandVals[i] = operand.Value.N
				continue
			}
			v, err := evalMetric(cfg, merged, operand.Metric.Name, first, last, memo, visiting)
			if err != nil {
				return 0, err
			}
			operandVals[i] = v
		}
		val = applyFuncOp(m.Function.Op, operandVals)
	}

	memo[name] = val
	return val, nil
}

// aggregate applies an AggFunc over the per-day values of one period. An
// empty period (no matching rows) resolves to NA rather than 0 (spec.md §9
// "Division semantics" extends to empty-window aggregation).
func aggregate(f config.AggFunc, vals []float64) float64 {
	if len(vals) == 0 {
		return NA
	}
	switch f {
	case config.AggSum:
		sum := 0.0
		for _, v := range vals {
			sum += v
		}
		return sum
	case config.AggMean:
		sum := 0.0
		for _, v := range vals {
			sum += v
		}
		return sum / float64(len(vals))
	case config.AggMin:
		min := vals[0]
		for _, v := range vals[1:] {
			if v < min {
				min = v
			}
		}
		return min
	case config.AggMax:
		max := vals[0]
		for _, v := range vals[1:] {
			if v > max {
				max = v
			}
		}
		return max
	case config.AggLast:
		return vals[len(vals)-1]
	default:
		return NA
	}
}

// applyFuncOp combines already-aggregated operand values (spec.md §9
// "aggregate first, then combine" — rates are sum(A)/sum(B) per period, not
// the mean of daily ratios). NA propagates through every operator.
func applyFuncOp(op config.FuncOp, operands []float64) float64 {
	for _, v := range operands {
		if IsNA(v) {
			return NA
		}
	}
	if len(operands) == 0 {
		return NA
	}

	switch op {
	case config.FuncSum:
		sum := 0.0
		for _, v := range operands {
			sum += v
		}
		return sum
	case config.FuncDifference:
		result := operands[0]
		for _, v := range operands[1:] {
			result -= v
		}
		return result
	case config.FuncDivide:
		if len(operands) != 2 || operands[1] == 0 {
			return NA
		}
		return operands[0] / operands[1]
	case config.FuncProduct:
		result := 1.0
		for _, v := range operands {
			result *= v
		}
		return result
	default:
		return NA
	}
}
