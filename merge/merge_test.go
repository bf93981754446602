// Copyright 2024
// SPDX-License-Identifier: Apache-2.0
package merge

import (
	"testing"
	"time"

	"github.com/wbr-io/wbrctl/table"
)

func day(s string) time.Time {
	t, _ := time.Parse("2006-01-02", s)
	return t
}

func TestMergeNamespacesColumns(t *testing.T) {
	sales := table.New("revenue")
	sales.Rows = []table.Row{
		{Date: day("2024-01-01"), Columns: map[string]float64{"revenue": 100}},
	}
	ops := table.New("headcount")
	ops.Rows = []table.Row{
		{Date: day("2024-01-01"), Columns: map[string]float64{"headcount": 5}},
	}

	out := Merge(map[string]*table.DailyTable{"sales": sales, "ops": ops})
	if len(out.Rows) != 1 {
		t.Fatalf("expected 1 row, got %d", len(out.Rows))
	}
	row := out.Rows[0]
	if row.Columns["sales.revenue"] != 100 {
		t.Errorf("expected sales.revenue=100, got %v", row.Columns["sales.revenue"])
	}
	if row.Columns["ops.headcount"] != 5 {
		t.Errorf("expected ops.headcount=5, got %v", row.Columns["ops.headcount"])
	}
}

func TestMergeOuterJoinsOnDate(t *testing.T) {
	a := table.New("x")
	a.Rows = []table.Row{{Date: day("2024-01-01"), Columns: map[string]float64{"x": 1}}}
	b := table.New("y")
	b.Rows = []table.Row{{Date: day("2024-01-02"), Columns: map[string]float64{"y": 2}}}

	out := Merge(map[string]*table.DailyTable{"a": a, "b": b})
	if len(out.Rows) != 2 {
		t.Fatalf("expected 2 rows from outer join, got %d", len(out.Rows))
	}
	if out.Rows[0].Columns["b.y"] != 0 && len(out.Rows[0].Columns) != 1 {
		// day one should only have a.x set, b.y absent
	}
	if _, ok := out.Rows[0].Columns["a.x"]; !ok {
		t.Error("expected a.x present on 2024-01-01")
	}
	if _, ok := out.Rows[0].Columns["b.y"]; ok {
		t.Error("expected b.y absent on 2024-01-01")
	}
}

func TestOverrideReplacesMergedOutright(t *testing.T) {
	merged := table.New("a.x")
	override := table.New("Revenue")
	if got := Override(merged, override); got != override {
		t.Error("expected override to win outright")
	}
	if got := Override(merged, nil); got != merged {
		t.Error("expected merged unchanged when no override")
	}
}
