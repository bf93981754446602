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

// Package calendar computes the week/month/quarter/year boundaries a WBR
// deck is built around, anchored to a single week-ending date and aware of
// a configurable fiscal year end month.
package calendar

import (
	"strconv"
	"time"
)

// Calendar anchors every rollup window computed for one build to a single
// week-ending date and fiscal year end month.
type Calendar struct {
	WeekEnding         time.Time
	FiscalYearEndMonth time.Month
}

// New normalizes weekEnding to a pure date (midnight UTC, no time-of-day)
// per spec.md §9 "Date handling".
func New(weekEnding time.Time, fiscalYearEndMonth time.Month) *Calendar {
	if fiscalYearEndMonth == 0 {
		fiscalYearEndMonth = time.December
	}
	y, m, d := weekEnding.Date()
	return &Calendar{
		WeekEnding:         time.Date(y, m, d, 0, 0, 0, 0, time.UTC),
		FiscalYearEndMonth: fiscalYearEndMonth,
	}
}

// Week is the 7 days ending on End (inclusive).
type Week struct {
	Start time.Time
	End   time.Time
}

// Days returns the inclusive day set of the week, oldest first.
func (w Week) Days() []time.Time {
	days := make([]time.Time, 0, 7)
	for d := w.Start; !d.After(w.End); d = d.AddDate(0, 0, 1) {
		days = append(days, d)
	}
	return days
}

// WeekEndingOffset returns the week ending `offset` weeks before
// WeekEnding; offset 0 is the current week.
func (c *Calendar) WeekEndingOffset(offset int) Week {
	end := c.WeekEnding.AddDate(0, 0, -7*offset)
	return Week{Start: end.AddDate(0, 0, -6), End: end}
}

// LastSixWeeksCY returns the trailing 6 weeks ending at WeekEnding, oldest
// to newest — the deck x-axis order (spec.md §4.1).
func (c *Calendar) LastSixWeeksCY() []Week {
	weeks := make([]Week, 6)
	for k := 0; k < 6; k++ {
		weeks[5-k] = c.WeekEndingOffset(k)
	}
	return weeks
}

// PriorYear returns the week whose end is exactly 364 days before w.End,
// preserving weekday (spec.md §4.1).
func (w Week) PriorYear() Week {
	end := w.End.AddDate(0, 0, -364)
	return Week{Start: end.AddDate(0, 0, -6), End: end}
}

// LastSixWeeksPY mirrors LastSixWeeksCY's prior-year counterparts, same
// ordering.
func (c *Calendar) LastSixWeeksPY() []Week {
	cy := c.LastSixWeeksCY()
	py := make([]Week, len(cy))
	for i, w := range cy {
		py[i] = w.PriorYear()
	}
	return py
}

// Month is a calendar month, identified by its first and last day.
type Month struct {
	Year  int
	Month time.Month
}

func (m Month) FirstDay() time.Time {
	return time.Date(m.Year, m.Month, 1, 0, 0, 0, 0, time.UTC)
}

func (m Month) LastDay() time.Time {
	return m.FirstDay().AddDate(0, 1, -1)
}

// Clamp returns the last day of the month, or `upTo` when the month
// contains `upTo` — used for the current, partial month in a 12-month
// trailing window (spec.md §4.6 "Monthly CY[k]... over all days of that
// calendar month ≤ E").
func (m Month) Clamp(upTo time.Time) time.Time {
	last := m.LastDay()
	if last.After(upTo) {
		return upTo
	}
	return last
}

func monthOf(d time.Time) Month {
	return Month{Year: d.Year(), Month: d.Month()}
}

// LastTwelveMonthsCY returns the 12 calendar months ending with the month
// that contains E (that last month is partial; see Clamp), oldest first
// (newest last, spec.md §4.1).
func (c *Calendar) LastTwelveMonthsCY() []Month {
	months := make([]Month, 12)
	cur := monthOf(c.WeekEnding)
	for k := 0; k < 12; k++ {
		idx := 11 - k
		y, m := cur.Year, int(cur.Month)-k
		for m <= 0 {
			m += 12
			y--
		}
		months[idx] = Month{Year: y, Month: time.Month(m)}
	}
	return months
}

// PriorYear returns the same month number one year earlier.
func (m Month) PriorYear() Month {
	return Month{Year: m.Year - 1, Month: m.Month}
}

// LastTwelveMonthsPY mirrors LastTwelveMonthsCY's prior-year counterparts.
func (c *Calendar) LastTwelveMonthsPY() []Month {
	cy := c.LastTwelveMonthsCY()
	py := make([]Month, len(cy))
	for i, m := range cy {
		py[i] = m.PriorYear()
	}
	return py
}

// fiscalQuarterOf returns the fiscal quarter (1-4) and fiscal year
// containing d, anchored so FiscalYearEndMonth is the last month of Q4.
func (c *Calendar) fiscalQuarterOf(d time.Time) (quarter, fiscalYear int) {
	// Shift so the fiscal year starts the month after FiscalYearEndMonth.
	fyStartMonth := c.FiscalYearEndMonth%12 + 1
	monthsSinceFYStart := int(d.Month()) - int(fyStartMonth)
	if monthsSinceFYStart < 0 {
		monthsSinceFYStart += 12
	}
	quarter = monthsSinceFYStart/3 + 1

	fiscalYear = d.Year()
	if d.Month() < fyStartMonth {
		// Still inside the fiscal year that started the previous
		// calendar year.
	} else {
		fiscalYear++
	}
	return quarter, fiscalYear
}

// QuarterBounds returns the first and last day of the fiscal quarter
// containing d.
func (c *Calendar) QuarterBounds(d time.Time) (first, last time.Time) {
	quarter, fiscalYear := c.fiscalQuarterOf(d)
	fyStartMonth := int(c.FiscalYearEndMonth%12 + 1)

	startMonthOffset := (quarter - 1) * 3
	startMonth := fyStartMonth + startMonthOffset
	startYear := fiscalYear - 1
	for startMonth > 12 {
		startMonth -= 12
		startYear++
	}

	first = time.Date(startYear, time.Month(startMonth), 1, 0, 0, 0, 0, time.UTC)
	last = first.AddDate(0, 3, -1)
	return first, last
}

// FiscalYearBounds returns the first and last day of the fiscal year
// containing d.
func (c *Calendar) FiscalYearBounds(d time.Time) (first, last time.Time) {
	_, fiscalYear := c.fiscalQuarterOf(d)
	fyStartMonth := int(c.FiscalYearEndMonth%12 + 1)
	startYear := fiscalYear - 1
	first = time.Date(startYear, time.Month(fyStartMonth), 1, 0, 0, 0, 0, time.UTC)
	last = first.AddDate(1, 0, -1)
	return first, last
}

// MTD returns [first day of month containing E, E].
func (c *Calendar) MTD() (first, last time.Time) {
	m := monthOf(c.WeekEnding)
	return m.FirstDay(), c.WeekEnding
}

// QTD returns [first day of fiscal quarter containing E, E].
func (c *Calendar) QTD() (first, last time.Time) {
	first, _ = c.QuarterBounds(c.WeekEnding)
	return first, c.WeekEnding
}

// YTD returns [first day of fiscal year containing E, E].
func (c *Calendar) YTD() (first, last time.Time) {
	first, _ = c.FiscalYearBounds(c.WeekEnding)
	return first, c.WeekEnding
}

// PriorYearRange shifts a [first,last] day range back one fiscal/calendar
// year, preserving month and day.
func PriorYearRange(first, last time.Time) (time.Time, time.Time) {
	return first.AddDate(-1, 0, 0), last.AddDate(-1, 0, 0)
}

var monthAbbrev = [...]string{"Jan", "Feb", "Mar", "Apr", "May", "Jun", "Jul", "Aug", "Sep", "Oct", "Nov", "Dec"}

// TrailingTwelveMonthsXAxis returns the 18-label x-axis for a 6/12 block:
// 6 week labels, a blank separator, then 12 month abbreviations
// (spec.md §4.1).
func (c *Calendar) TrailingTwelveMonthsXAxis() []string {
	labels := make([]string, 0, 18)
	weeks := c.LastSixWeeksCY()
	for _, w := range weeks {
		labels = append(labels, weekLabel(w))
	}
	labels = append(labels, " ")
	for _, m := range c.LastTwelveMonthsCY() {
		labels = append(labels, monthAbbrev[m.Month-1])
	}
	return labels
}

// FiscalYearXAxis mirrors TrailingTwelveMonthsXAxis but spans the fiscal
// year containing E for the month labels, per spec.md §4.1 "fiscal_year".
func (c *Calendar) FiscalYearXAxis() []string {
	labels := make([]string, 0, 18)
	weeks := c.LastSixWeeksCY()
	for _, w := range weeks {
		labels = append(labels, weekLabel(w))
	}
	labels = append(labels, " ")

	first, _ := c.FiscalYearBounds(c.WeekEnding)
	for i := 0; i < 12; i++ {
		m := first.AddDate(0, i, 0)
		labels = append(labels, monthAbbrev[m.Month()-1])
	}
	return labels
}

// weekLabel formats a week as "wk N" using the ISO week number of its
// ending date.
func weekLabel(w Week) string {
	_, isoWeek := w.End.ISOWeek()
	return "wk " + strconv.Itoa(isoWeek)
}
