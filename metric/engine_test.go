// Copyright 2024
// SPDX-License-Identifier: Apache-2.0
package metric

import (
	"testing"
	"time"

	"github.com/wbr-io/wbrctl/calendar"
	"github.com/wbr-io/wbrctl/config"
	"github.com/wbr-io/wbrctl/table"
)

func day(s string) time.Time {
	t, _ := time.Parse("2006-01-02", s)
	return t
}

func buildMerged() *table.DailyTable {
	t := table.New("sales.revenue", "sales.cost", "sales.country")
	t.Rows = []table.Row{
		{Date: day("2024-01-01"), Columns: map[string]float64{"sales.revenue": 100, "sales.cost": 40}, Raw: map[string]string{"sales.country": "US"}},
		{Date: day("2024-01-02"), Columns: map[string]float64{"sales.revenue": 200, "sales.cost": 50}, Raw: map[string]string{"sales.country": "CA"}},
	}
	return t
}

func TestAggregateSumAndEmptyIsNA(t *testing.T) {
	if got := aggregate(config.AggSum, []float64{1, 2, 3}); got != 6 {
		t.Errorf("expected 6, got %v", got)
	}
	if got := aggregate(config.AggSum, nil); !IsNA(got) {
		t.Errorf("expected NA for empty period, got %v", got)
	}
}

func TestApplyFuncOpDivideByZeroIsNA(t *testing.T) {
	if got := applyFuncOp(config.FuncDivide, []float64{10, 0}); !IsNA(got) {
		t.Errorf("expected NA for divide by zero, got %v", got)
	}
	if got := applyFuncOp(config.FuncDivide, []float64{10, 2}); got != 5 {
		t.Errorf("expected 5, got %v", got)
	}
}

func TestApplyFuncOpPropagatesNA(t *testing.T) {
	if got := applyFuncOp(config.FuncSum, []float64{1, NA, 3}); !IsNA(got) {
		t.Errorf("expected NA to propagate through sum, got %v", got)
	}
}

func TestEvalMetricBasicSum(t *testing.T) {
	cfg := &config.Config{Metrics: map[string]*config.MetricDef{
		"revenue": {Name: "revenue", Column: "sales.revenue", AggF: config.AggSum},
	}}
	merged := buildMerged()
	v, err := evalMetric(cfg, merged, "revenue", day("2024-01-01"), day("2024-01-02"), map[string]float64{}, map[string]bool{})
	if err != nil {
		t.Fatalf("evalMetric: %v", err)
	}
	if v != 300 {
		t.Errorf("expected 300, got %v", v)
	}
}

func TestEvalMetricFunctionAggregateFirst(t *testing.T) {
	cfg := &config.Config{Metrics: map[string]*config.MetricDef{
		"revenue": {Name: "revenue", Column: "sales.revenue", AggF: config.AggSum},
		"cost":    {Name: "cost", Column: "sales.cost", AggF: config.AggSum},
		"margin": {Name: "margin", Function: &config.FunctionSpec{
			Op: config.FuncDivide,
			Operands: []config.Operand{
				{Metric: &config.MetricRef{Name: "cost"}},
				{Metric: &config.MetricRef{Name: "revenue"}},
			},
		}},
	}}
	merged := buildMerged()
	v, err := evalMetric(cfg, merged, "margin", day("2024-01-01"), day("2024-01-02"), map[string]float64{}, map[string]bool{})
	if err != nil {
		t.Fatalf("evalMetric: %v", err)
	}
	want := 90.0 / 300.0
	if v != want {
		t.Errorf("expected sum(cost)/sum(revenue)=%v, got %v", want, v)
	}
}

func TestEvalMetricFilter(t *testing.T) {
	cfg := &config.Config{Metrics: map[string]*config.MetricDef{
		"usRevenue": {Name: "usRevenue", AggF: config.AggSum, Filter: &config.FilterSpec{
			BaseColumn: "sales.revenue",
			Query:      "sales.country == 'US'",
		}},
	}}
	merged := buildMerged()
	v, err := evalMetric(cfg, merged, "usRevenue", day("2024-01-01"), day("2024-01-02"), map[string]float64{}, map[string]bool{})
	if err != nil {
		t.Fatalf("evalMetric: %v", err)
	}
	if v != 100 {
		t.Errorf("expected 100 (US-only row), got %v", v)
	}
}

func TestGrowthLookupWOW(t *testing.T) {
	result := &Result{Series: map[string]*Series{
		"revenue": {Name: "revenue"},
	}}
	result.Series["revenue"].WeeksCY = [6]float64{10, 20, 30, 40, 100, 150}
	cache := NewGrowthCache()
	v, ok := Lookup(result, cache, "revenueWOW")
	if !ok {
		t.Fatal("expected WOW lookup to resolve")
	}
	want := (150.0 - 100.0) / 100.0
	if v != want {
		t.Errorf("expected %v, got %v", want, v)
	}
}

func TestCalendarIntegrationSmoke(t *testing.T) {
	cal := calendar.New(day("2024-01-07"), time.December)
	weeks := cal.LastSixWeeksCY()
	if len(weeks) != 6 {
		t.Fatalf("expected 6 weeks, got %d", len(weeks))
	}
}
