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
package testharness

import (
	"fmt"
	"strings"
	"time"

	"github.com/wbr-io/wbrctl/annotation"
	"github.com/wbr-io/wbrctl/calendar"
	"github.com/wbr-io/wbrctl/config"
	"github.com/wbr-io/wbrctl/deck"
	"github.com/wbr-io/wbrctl/metric"
	"github.com/wbr-io/wbrctl/table"
)

var scenario1WeekEnding = time.Date(2021, time.September, 25, 0, 0, 0, 0, time.UTC)
var scenario1Values = ascendingSeries(730, 1e6)

// Scenarios is the registry the Ginkgo specs and RunAll both iterate, one
// entry per spec.md §8 end-to-end scenario.
var Scenarios = []Scenario{
	scenarioBasic612(),
	scenarioFunctionMetric(),
	scenarioFilter(),
	scenarioFiscalYear(),
	scenarioMultiSourceMerge(),
	scenarioAnnotation(),
}

// scenarioBasic612 is spec.md §8 scenario 1.
func scenarioBasic612() Scenario {
	return Scenario{
		Name: "basic 6/12",
		YAML: `
setup:
  weekEnding: 25-Sep-2021
  blockStartingNumber: 1
metrics:
  impressions:
    column: daily.Impressions
    aggf: sum
deck:
  - uiType: 6_12Graph
    title: Impressions
    yScaling: "##.2MM"
    yAxis:
      - metric: impressions
`,
		Tables: map[string]*table.DailyTable{
			"daily": dailySeries("Impressions", scenario1WeekEnding, scenario1Values),
		},
		Verify: func(cfg *config.Config, cal *calendar.Calendar, result *metric.Result, d *deck.Deck) error {
			s, ok := result.Series["impressions"]
			if !ok {
				return fmt.Errorf("impressions series missing")
			}
			n := len(scenario1Values)
			wantLastWeek := 0.0
			for _, v := range scenario1Values[n-7:] {
				wantLastWeek += v
			}
			if s.WeeksCY[5] != wantLastWeek {
				return fmt.Errorf("last week total = %v, want %v", s.WeeksCY[5], wantLastWeek)
			}
			if len(d.Blocks) != 1 {
				return fmt.Errorf("expected 1 block, got %d", len(d.Blocks))
			}
			block := d.Blocks[0]
			if len(block.XAxis) != 18 {
				return fmt.Errorf("expected 18 x-axis labels, got %d", len(block.XAxis))
			}
			if block.Number != 1 {
				return fmt.Errorf("expected block number 1, got %d", block.Number)
			}
			for i := 0; i < 6; i++ {
				if !strings.HasPrefix(block.XAxis[i], "wk ") {
					return fmt.Errorf("x-axis label %d = %q, want a wk-prefixed label", i, block.XAxis[i])
				}
			}
			if block.XAxis[6] != " " {
				return fmt.Errorf("expected a blank separator label at index 6, got %q", block.XAxis[6])
			}
			if len(block.YAxis) != 1 || len(block.YAxis[0].Values) != 18 {
				return fmt.Errorf("expected one 18-point series")
			}
			return nil
		},
	}
}

// scenarioFunctionMetric is spec.md §8 scenario 2.
func scenarioFunctionMetric() Scenario {
	weekEnding := time.Date(2021, time.September, 25, 0, 0, 0, 0, time.UTC)
	return Scenario{
		Name: "function metric (aggregate first, then combine)",
		YAML: `
setup:
  weekEnding: 25-Sep-2021
metrics:
  clicks:
    column: daily.Clicks
    aggf: sum
  impressions:
    column: daily.Impressions
    aggf: sum
  clickThruRate:
    function:
      divide:
        - metric: {name: clicks}
        - metric: {name: impressions}
    metricComparisonMethod: bps
deck:
  - uiType: 6_WeeksTable
    title: CTR
    yScaling: "##bps"
    rows:
      - metric: clickThruRate
        rowHeader: CTR
`,
		Tables: map[string]*table.DailyTable{
			"daily": constantSeries("Clicks", "Impressions", weekEnding, 400, 1000),
		},
		Verify: func(cfg *config.Config, cal *calendar.Calendar, result *metric.Result, d *deck.Deck) error {
			s, ok := result.Series["clickThruRate"]
			if !ok {
				return fmt.Errorf("clickThruRate series missing")
			}
			if s.WeeksCY[5] != 1.0 {
				return fmt.Errorf("weekly CTR = %v, want 1.0 (sum(Clicks)/sum(Impressions), not mean of daily ratios)", s.WeeksCY[5])
			}
			if len(d.Blocks) != 1 || len(d.Blocks[0].Rows) != 1 {
				return fmt.Errorf("expected 1 block with 1 row")
			}
			row := d.Blocks[0].Rows[0]
			// 6_WeeksTable rowData is the 6 weekly values plus [QTD, YTD]
			// (spec.md §4.8); 400 constant days cover every window, so CTR
			// renders "10000bps" in every column.
			if len(row.Values) != 8 {
				return fmt.Errorf("rendered CTR row has %d columns, want 8 (6 weeks + QTD + YTD)", len(row.Values))
			}
			for i, v := range row.Values {
				if v != "10000bps" {
					return fmt.Errorf("rendered CTR column %d = %q, want \"10000bps\"", i, v)
				}
			}
			return nil
		},
	}
}

// scenarioFilter is spec.md §8 scenario 3.
func scenarioFilter() Scenario {
	weekEnding := time.Date(2021, time.September, 25, 0, 0, 0, 0, time.UTC)
	tbl := table.New("RevenueUSD")
	for i := 0; i < 14; i++ {
		date := weekEnding.AddDate(0, 0, -(13 - i))
		country := "US"
		if i%2 == 0 {
			country = "JP"
		}
		tbl.Rows = append(tbl.Rows, table.Row{
			Date:    date,
			Columns: map[string]float64{"RevenueUSD": 100},
			Raw:     map[string]string{"Country": country},
		})
	}
	tbl.SortByDate()

	return Scenario{
		Name: "filter metrics only sum their own predicate",
		YAML: `
setup:
  weekEnding: 25-Sep-2021
metrics:
  usRevenue:
    filter: {baseColumn: daily.RevenueUSD, query: "daily.Country == 'US'"}
    aggf: sum
  jpRevenue:
    filter: {baseColumn: daily.RevenueUSD, query: "daily.Country == 'JP'"}
    aggf: sum
deck:
  - uiType: 6_WeeksTable
    title: Revenue by country
    rows:
      - metric: usRevenue
        rowHeader: US
      - metric: jpRevenue
        rowHeader: JP
`,
		Tables: map[string]*table.DailyTable{"daily": tbl},
		Verify: func(cfg *config.Config, cal *calendar.Calendar, result *metric.Result, d *deck.Deck) error {
			us, jp := result.Series["usRevenue"], result.Series["jpRevenue"]
			if us == nil || jp == nil {
				return fmt.Errorf("missing filter series")
			}
			// Last 7 of the 14 days are i=7..13, alternating US/JP from i=7
			// (odd index is US since i%2==0 is JP) - 4 US + 3 JP; what
			// matters is each series only ever sums its own country's rows.
			if us.WeeksCY[5]+jp.WeeksCY[5] != 700 {
				return fmt.Errorf("US (%v) + JP (%v) should equal the full week's 7*100, got %v",
					us.WeeksCY[5], jp.WeeksCY[5], us.WeeksCY[5]+jp.WeeksCY[5])
			}
			if us.WeeksCY[5] == jp.WeeksCY[5] && us.WeeksCY[5] != 350 {
				return fmt.Errorf("unexpected equal split")
			}
			return nil
		},
	}
}

// scenarioFiscalYear is spec.md §8 scenario 4.
func scenarioFiscalYear() Scenario {
	weekEnding := time.Date(2022, time.May, 31, 0, 0, 0, 0, time.UTC)
	start := weekEnding.AddDate(-2, 0, 0)

	return Scenario{
		Name: "fiscal year end month shifts YTD/QTD",
		YAML: `
setup:
  weekEnding: 31-May-2022
  fiscalYearEndMonth: MAY
metrics:
  daily:
    column: daily.Units
    aggf: sum
deck:
  - uiType: section
    title: Fiscal
`,
		Tables: map[string]*table.DailyTable{
			"daily": oneSeriesPerDay("Units", start, weekEnding),
		},
		Verify: func(cfg *config.Config, cal *calendar.Calendar, result *metric.Result, d *deck.Deck) error {
			s := result.Series["daily"]
			if s == nil {
				return fmt.Errorf("missing series")
			}
			ytdFirst, ytdLast := cal.YTD()
			wantDays := float64(int(ytdLast.Sub(ytdFirst).Hours()/24) + 1)
			if s.YTDCY != wantDays {
				return fmt.Errorf("YTDCY = %v, want %v (days in the fiscal year to date)", s.YTDCY, wantDays)
			}
			if ytdFirst.Month() != time.June {
				return fmt.Errorf("fiscal year with fiscalYearEndMonth=MAY should start in June, got %s", ytdFirst.Month())
			}
			qtdFirst, qtdLast := cal.QTD()
			wantQDays := float64(int(qtdLast.Sub(qtdFirst).Hours()/24) + 1)
			if s.QTDCY != wantQDays {
				return fmt.Errorf("QTDCY = %v, want %v", s.QTDCY, wantQDays)
			}
			return nil
		},
	}
}

// scenarioMultiSourceMerge is spec.md §8 scenario 5.
func scenarioMultiSourceMerge() Scenario {
	weekEnding := time.Date(2021, time.September, 25, 0, 0, 0, 0, time.UTC)
	return Scenario{
		Name: "multi-source DB+CSV merge",
		YAML: `
setup:
  weekEnding: 25-Sep-2021
metrics:
  pageViews:
    column: main.PageViews
    aggf: sum
  mobilePV:
    column: ext.MobilePV
    aggf: sum
deck:
  - uiType: 6_12Graph
    title: Page views
    yAxis:
      - metric: pageViews
        lineStyle: primary
      - metric: mobilePV
        lineStyle: secondary
`,
		Tables: map[string]*table.DailyTable{
			"main": dailySeries("PageViews", weekEnding, ascendingSeries(60, 10)),
			"ext":  dailySeries("MobilePV", weekEnding, ascendingSeries(60, 5)),
		},
		Verify: func(cfg *config.Config, cal *calendar.Calendar, result *metric.Result, d *deck.Deck) error {
			if result.Series["pageViews"] == nil || result.Series["mobilePV"] == nil {
				return fmt.Errorf("expected both namespaced metrics to resolve through the merged columns")
			}
			block := d.Blocks[0]
			if len(block.YAxis) != 2 {
				return fmt.Errorf("expected 2 series on the merged graph, got %d", len(block.YAxis))
			}
			if block.YAxis[0].LineStyle != "primary" || block.YAxis[1].LineStyle != "secondary" {
				return fmt.Errorf("expected primary/secondary line styles, got %q/%q",
					block.YAxis[0].LineStyle, block.YAxis[1].LineStyle)
			}
			return nil
		},
	}
}

// scenarioAnnotation is spec.md §8 scenario 6.
func scenarioAnnotation() Scenario {
	weekEnding := time.Date(2021, time.September, 25, 0, 0, 0, 0, time.UTC)
	inWindow := time.Date(2021, time.September, 8, 0, 0, 0, 0, time.UTC)
	outOfWindow := time.Date(2019, time.January, 1, 0, 0, 0, 0, time.UTC)

	return Scenario{
		Name: "annotation windowing",
		YAML: `
setup:
  weekEnding: 25-Sep-2021
metrics:
  clicks:
    column: daily.Clicks
    aggf: sum
deck:
  - uiType: 6_12Graph
    title: Clicks
    yAxis:
      - metric: clicks
`,
		Tables: map[string]*table.DailyTable{
			"daily": dailySeries("Clicks", weekEnding, ascendingSeries(400, 1)),
		},
		Annotations: []annotation.Event{
			{MetricName: "clicks", Date: inWindow, Text: "Campaign launch"},
			{MetricName: "clicks", Date: outOfWindow, Text: "Old"},
		},
		Verify: func(cfg *config.Config, cal *calendar.Calendar, result *metric.Result, d *deck.Deck) error {
			block := d.Blocks[0]
			if len(block.Annotations) != 1 {
				return fmt.Errorf("expected exactly 1 in-window annotation, got %d", len(block.Annotations))
			}
			if block.Annotations[0].Text != "Campaign launch" {
				return fmt.Errorf("expected the in-window annotation to survive, got %q", block.Annotations[0].Text)
			}
			if len(d.EventErrors) != 0 {
				return fmt.Errorf("out-of-window drop is silent, not a warning; got eventErrors %v", d.EventErrors)
			}
			return nil
		},
	}
}
