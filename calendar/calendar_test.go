// Copyright 2024
// SPDX-License-Identifier: Apache-2.0
package calendar

import (
	"testing"
	"time"
)

func mustDate(s string) time.Time {
	d, err := time.Parse("2006-01-02", s)
	if err != nil {
		panic(err)
	}
	return d
}

func TestLastSixWeeksCYOrdering(t *testing.T) {
	c := New(mustDate("2021-09-25"), time.December)
	weeks := c.LastSixWeeksCY()
	if len(weeks) != 6 {
		t.Fatalf("expected 6 weeks, got %d", len(weeks))
	}
	// oldest first, newest (week ending 2021-09-25) last
	if !weeks[5].End.Equal(mustDate("2021-09-25")) {
		t.Errorf("expected last week to end 2021-09-25, got %s", weeks[5].End)
	}
	if !weeks[0].End.Equal(mustDate("2021-08-21")) {
		t.Errorf("expected first week to end 2021-08-21 (35 days back), got %s", weeks[0].End)
	}
	for i := 0; i < 5; i++ {
		if weeks[i].End.AddDate(0, 0, 7) != weeks[i+1].End {
			t.Errorf("weeks not contiguous at index %d", i)
		}
	}
}

func TestPriorYearPreservesWeekday(t *testing.T) {
	w := Week{Start: mustDate("2021-09-19"), End: mustDate("2021-09-25")}
	py := w.PriorYear()
	if py.End.Weekday() != w.End.Weekday() {
		t.Errorf("expected weekday to be preserved, got %s vs %s", py.End.Weekday(), w.End.Weekday())
	}
	if py.End != mustDate("2020-09-26") {
		t.Errorf("expected PY end 2020-09-26 (364 days back), got %s", py.End)
	}
}

func TestLastTwelveMonthsCYNewestLast(t *testing.T) {
	c := New(mustDate("2021-09-25"), time.December)
	months := c.LastTwelveMonthsCY()
	if len(months) != 12 {
		t.Fatalf("expected 12 months, got %d", len(months))
	}
	last := months[11]
	if last.Year != 2021 || last.Month != time.September {
		t.Errorf("expected last month Sep 2021, got %v %v", last.Month, last.Year)
	}
	first := months[0]
	if first.Year != 2020 || first.Month != time.October {
		t.Errorf("expected first month Oct 2020, got %v %v", first.Month, first.Year)
	}
}

func TestFiscalYearEndMonthShiftsQuarters(t *testing.T) {
	c := New(mustDate("2022-05-31"), time.May)
	first, last := c.FiscalYearBounds(c.WeekEnding)
	if first != mustDate("2021-06-01") {
		t.Errorf("expected FY start 2021-06-01, got %s", first)
	}
	if last != mustDate("2022-05-31") {
		t.Errorf("expected FY end 2022-05-31, got %s", last)
	}

	qFirst, qLast := c.QuarterBounds(c.WeekEnding)
	if qFirst != mustDate("2022-03-01") || qLast != mustDate("2022-05-31") {
		t.Errorf("expected Q4 to be Mar-May 2022, got %s to %s", qFirst, qLast)
	}
}

func TestTrailingTwelveMonthsXAxisShape(t *testing.T) {
	c := New(mustDate("2021-09-25"), time.December)
	labels := c.TrailingTwelveMonthsXAxis()
	if len(labels) != 18 {
		t.Fatalf("expected 18 labels, got %d", len(labels))
	}
	if labels[6] != " " {
		t.Errorf("expected gap label at index 6, got %q", labels[6])
	}
	if labels[17] != "Sep" {
		t.Errorf("expected last month label Sep, got %q", labels[17])
	}
}

func TestMonthClampsToWeekEnding(t *testing.T) {
	c := New(mustDate("2021-09-25"), time.December)
	months := c.LastTwelveMonthsCY()
	last := months[11]
	if last.Clamp(c.WeekEnding) != c.WeekEnding {
		t.Errorf("expected current month to clamp to week ending, got %s", last.Clamp(c.WeekEnding))
	}
}
