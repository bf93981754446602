// Copyright 2024
// SPDX-License-Identifier: Apache-2.0
package deck

import (
	"testing"
	"time"

	"github.com/wbr-io/wbrctl/calendar"
	"github.com/wbr-io/wbrctl/config"
	"github.com/wbr-io/wbrctl/metric"
)

func day(s string) time.Time {
	t, _ := time.Parse("2006-01-02", s)
	return t
}

func TestAssignLineStylesFirstWinsOnDuplicate(t *testing.T) {
	series := []config.YAxisSeries{
		{Metric: "revenue", LineStyle: config.LinePrimary},
		{Metric: "cost", LineStyle: config.LinePrimary},
	}
	styles := assignLineStyles(series)
	if styles["revenue"] != config.LinePrimary {
		t.Errorf("expected first metric to keep its style")
	}
	if _, ok := styles["cost"]; ok {
		t.Errorf("expected duplicate-style metric to be dropped, first wins")
	}
}

func TestStableBlockIDPrefersExplicitThenTitleThenUUID(t *testing.T) {
	if got := stableBlockID(config.Block{ID: "fixed"}, 0); got != "fixed" {
		t.Errorf("expected explicit id to win, got %q", got)
	}
	if got := stableBlockID(config.Block{Title: "Revenue Trend"}, 0); got == "" {
		t.Errorf("expected a non-empty slug id")
	}
	a := stableBlockID(config.Block{UIType: config.UITypeSection}, 0)
	b := stableBlockID(config.Block{UIType: config.UITypeSection}, 0)
	if a != b {
		t.Errorf("expected deterministic uuid for identical (uiType, index), got %q vs %q", a, b)
	}
}

func TestBuildEndToEndProducesExpectedBlockCount(t *testing.T) {
	cfg := &config.Config{
		Setup: config.Setup{Title: "Weekly Business Review", BlockStartingNumber: 1},
		Metrics: map[string]*config.MetricDef{
			"revenue": {Name: "revenue", Column: "sales.revenue", AggF: config.AggSum},
		},
		Deck: []config.Block{
			{UIType: config.UITypeSection, Title: "Overview"},
			{UIType: config.UITypeGraph6_12, Title: "Revenue", YAxis: []config.YAxisSeries{{Metric: "revenue"}}},
		},
	}
	cal := calendar.New(day("2024-03-29"), time.December)
	result := &metric.Result{Series: map[string]*metric.Series{
		"revenue": {Name: "revenue", WeeksCY: [6]float64{1, 2, 3, 4, 5, 6}},
	}}
	cache := metric.NewGrowthCache()

	out, err := Build(cfg, cal, result, cache, nil, nil)
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	if len(out.Blocks) != 2 {
		t.Fatalf("expected 2 blocks, got %d", len(out.Blocks))
	}
	if out.Blocks[0].Number != 0 {
		t.Errorf("expected section block to carry no number, got %d", out.Blocks[0].Number)
	}
	if out.Blocks[1].Number != 1 {
		t.Errorf("expected first numbered block to be 1, got %d", out.Blocks[1].Number)
	}
}
