// Copyright 2024
// SPDX-License-Identifier: Apache-2.0
package deck

import "testing"

func TestNiceNumRounding(t *testing.T) {
	cases := []struct {
		in    float64
		round bool
		want  float64
	}{
		{120, true, 100},
		{160, true, 200},
		{450, true, 500},
		{120, false, 200},
		{45, false, 50},
	}
	for _, c := range cases {
		if got := niceNum(c.in, c.round); got != c.want {
			t.Errorf("niceNum(%v, %v) = %v, want %v", c.in, c.round, got, c.want)
		}
	}
}

func TestComputeAxisSpansInput(t *testing.T) {
	axis := ComputeAxis(12, 87, 5)
	if axis.Min > 12 {
		t.Errorf("axis min %v should be <= input min 12", axis.Min)
	}
	if axis.Max < 87 {
		t.Errorf("axis max %v should be >= input max 87", axis.Max)
	}
	if axis.Tick <= 0 {
		t.Errorf("expected positive tick spacing, got %v", axis.Tick)
	}
}

func TestComputeAxisHandlesZeroRange(t *testing.T) {
	axis := ComputeAxis(0, 0, 5)
	if axis.Max <= axis.Min {
		t.Errorf("expected a non-degenerate axis for a flat zero series, got %+v", axis)
	}
}
