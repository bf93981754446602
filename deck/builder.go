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
package deck

import (
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/gosimple/slug"
	"github.com/rs/zerolog/log"
	"github.com/wbr-io/wbrctl/annotation"
	"github.com/wbr-io/wbrctl/calendar"
	"github.com/wbr-io/wbrctl/config"
	"github.com/wbr-io/wbrctl/format"
	"github.com/wbr-io/wbrctl/metric"
)

// Build renders cfg's deck sequence against an already-evaluated metric
// Result, the same dispatch-by-discriminator shape data/asset.go's
// SaveFiles uses for MIME types (here, dispatched by block.UIType).
func Build(cfg *config.Config, cal *calendar.Calendar, result *metric.Result, cache *metric.GrowthCache, events []annotation.Event, annotationWarnings []error) (*Deck, error) {
	deck := &Deck{
		Title:               cfg.Setup.Title,
		WeekEnding:          cfg.Setup.WeekEnding,
		BlockStartingNumber: cfg.Setup.BlockStartingNumber,
		XAxisMonthlyDisplay: "trailing_twelve_months",
	}
	for _, b := range cfg.Deck {
		if b.UIType == config.UITypeGraph6_12 && b.XAxisMonthlyDisplay == "fiscal_year" {
			deck.XAxisMonthlyDisplay = "fiscal_year"
			break
		}
	}
	for _, w := range annotationWarnings {
		deck.EventErrors = append(deck.EventErrors, w.Error())
	}

	number := cfg.Setup.BlockStartingNumber
	for i, b := range cfg.Deck {
		block, err := buildBlock(cfg, cal, result, cache, events, b, i, number)
		if err != nil {
			return nil, err
		}
		if b.UIType != config.UITypeSection {
			number++
		}
		deck.Blocks = append(deck.Blocks, *block)
	}
	return deck, nil
}

func buildBlock(cfg *config.Config, cal *calendar.Calendar, result *metric.Result, cache *metric.GrowthCache, events []annotation.Event, b config.Block, index, number int) (*Block, error) {
	id := stableBlockID(b, index)

	switch b.UIType {
	case config.UITypeGraph6_12:
		return build612Graph(cfg, cal, result, cache, events, b, id, number)
	case config.UIType6WeeksTable:
		return buildWeeksTable(cfg, cal, result, cache, b, id, number)
	case config.UIType12MonthsTable:
		return buildMonthsTable(cfg, cal, result, cache, b, id, number)
	case config.UITypeSection:
		return &Block{ID: id, UIType: b.UIType, Title: b.Title}, nil
	case config.UITypeEmbeddedContent:
		return &Block{ID: id, UIType: b.UIType, Title: b.Title, Source: b.Source, Width: b.Width, Height: b.Height, Number: number}, nil
	default:
		return nil, fmt.Errorf("unknown uiType %q", b.UIType)
	}
}

func stableBlockID(b config.Block, index int) string {
	if b.ID != "" {
		return b.ID
	}
	if b.Title != "" {
		return slug.Make(b.Title)
	}
	return uuid.NewSHA1(uuid.NameSpaceOID, []byte(fmt.Sprintf("%s:%d", b.UIType, index))).String()
}

func build612Graph(cfg *config.Config, cal *calendar.Calendar, result *metric.Result, cache *metric.GrowthCache, events []annotation.Event, b config.Block, id string, number int) (*Block, error) {
	block := &Block{ID: id, UIType: b.UIType, Title: b.Title, Number: number}
	block.XAxis = xAxisFor(cal, b.XAxisMonthlyDisplay)

	// Graph series values are left as floats (rather than mask-formatted
	// strings, as the table blocks below do): the front end's own axis
	// renderer applies yScaling to tick labels, leaving the plotted points
	// unrounded.
	styles := assignLineStyles(b.YAxis)
	var allVals []float64
	for _, ys := range b.YAxis {
		series, ok := result.Series[ys.Metric]
		if !ok {
			continue
		}
		values := make([]float64, 0, 18)
		values = append(values, series.WeeksCY[:]...)
		values = append(values, series.MonthsCY[:]...)

		rendered := Series{LegendName: legendName(ys), LineStyle: string(styles[ys.Metric])}
		isTarget := styles[ys.Metric] == config.LineTarget
		if isTarget {
			rendered.Target = values
		} else {
			rendered.Values = values
		}
		block.YAxis = append(block.YAxis, rendered)
		allVals = append(allVals, values...)

		// A target line is scatter-only and carries no prior-year
		// counterpart (spec.md §4.8).
		if b.GraphPriorYearFlag && !isTarget {
			pyValues := make([]float64, 0, 18)
			pyValues = append(pyValues, series.WeeksPY[:]...)
			pyValues = append(pyValues, series.MonthsPY[:]...)
			block.YAxis = append(block.YAxis, Series{
				LegendName: legendName(ys) + " (PY)",
				LineStyle:  string(styles[ys.Metric]),
				Values:     pyValues,
			})
			allVals = append(allVals, pyValues...)
		}
	}

	if len(allVals) > 0 {
		min, max := allVals[0], allVals[0]
		for _, v := range allVals {
			if metric.IsNA(v) {
				continue
			}
			if v < min {
				min = v
			}
			if v > max {
				max = v
			}
		}
		axis := ComputeAxis(min, max, 5)
		block.AxisMin, block.AxisMax, block.AxisTick = axis.Min, axis.Max, axis.Tick
	}

	block.Table = buildSummaryTable(cfg, result, b)

	blockMetrics := make(map[string]bool, len(b.YAxis))
	for _, ys := range b.YAxis {
		blockMetrics[ys.Metric] = true
	}
	for _, e := range events {
		if !blockMetrics[e.MetricName] {
			continue
		}
		block.Annotations = append(block.Annotations, Annotation{Date: e.Date.Format("2006-01-02"), Text: e.Text})
	}

	return block, nil
}

// xAxisFor resolves the 18-label x-axis for a block, dispatching on its own
// xAxisMonthlyDisplay the same way build612Graph does (spec.md §4.1).
func xAxisFor(cal *calendar.Calendar, monthlyDisplay string) []string {
	if monthlyDisplay == "fiscal_year" {
		return cal.FiscalYearXAxis()
	}
	return cal.TrailingTwelveMonthsXAxis()
}

// metricComparisonMethod looks up M's declared comparisonMethod, defaulting
// to percent when unset or M is undeclared (format.FormatComparison's own
// default, kept consistent here).
func metricComparisonMethod(cfg *config.Config, name string) format.ComparisonMethod {
	if m, ok := cfg.Metrics[name]; ok && m.MetricComparisonMethod == config.ComparisonBps {
		return format.ComparisonBps
	}
	return format.ComparisonPercent
}

// buildSummaryTable renders the fixed nine-column summary table beneath a
// 6_12Graph block, one row per yAxis metric (spec.md §4.6 "Summary-table
// semantics for a 6/12 block").
func buildSummaryTable(cfg *config.Config, result *metric.Result, b config.Block) *Table {
	if len(b.YAxis) == 0 {
		return nil
	}
	mask := resolveMask(b.YScaling)
	table := &Table{TableHeader: []string{"Metric", "LastWeek", "YOY", "MTD", "YOY", "QTD", "YOY", "YTD", "YOY"}}
	for _, ys := range b.YAxis {
		series, ok := result.Series[ys.Metric]
		if !ok {
			continue
		}
		method := metricComparisonMethod(cfg, ys.Metric)
		last := len(series.WeeksCY) - 1
		table.TableBody = append(table.TableBody, []string{
			legendName(ys),
			mask.Format(series.WeeksCY[last]),
			format.FormatComparison(metric.WeeksYOY(series)[last], method),
			mask.Format(series.MTDCY),
			format.FormatComparison(metric.MTDYOY(series), method),
			mask.Format(series.QTDCY),
			format.FormatComparison(metric.QTDYOY(series), method),
			mask.Format(series.YTDCY),
			format.FormatComparison(metric.YTDYOY(series), method),
		})
	}
	return table
}

// resolveMask parses yScaling, falling back to an unspecified-precision,
// unitless mask when it's empty or malformed — config.Validate rejects a
// malformed mask before Build ever runs, so this is a defensive default,
// not an error path a valid config can reach.
func resolveMask(yScaling string) format.Mask {
	if m, err := format.Parse(yScaling); err == nil {
		return m
	}
	return format.Mask{Precision: -1, Unit: format.UnitNone}
}

func legendName(ys config.YAxisSeries) string {
	if ys.LegendName != "" {
		return ys.LegendName
	}
	return ys.Metric
}

// assignLineStyles resolves each series' rendering style, first-wins when
// two metrics in the same block declare the same lineStyle (spec.md §9
// "Repeated lineStyle" open question, resolved here with a logged warning
// rather than a validation error).
func assignLineStyles(series []config.YAxisSeries) map[string]config.LineStyle {
	out := make(map[string]config.LineStyle, len(series))
	used := map[config.LineStyle]string{}
	for _, ys := range series {
		style := ys.LineStyle
		if style == "" {
			style = config.LinePrimary
		}
		if owner, taken := used[style]; taken && owner != ys.Metric {
			log.Warn().Str("LineStyle", string(style)).Str("Metric", ys.Metric).Str("FirstOwner", owner).
				Msg("duplicate lineStyle in block, first metric wins")
			continue
		}
		used[style] = ys.Metric
		out[ys.Metric] = style
	}
	return out
}

// buildWeeksTable renders a 6_WeeksTable block: headers covering the 6
// trailing weeks plus QTD/YTD, and one row per rowDef carrying the matching
// 8 values (spec.md §4.8 "the 6 weekly CY values plus [QTD, YTD]").
func buildWeeksTable(cfg *config.Config, cal *calendar.Calendar, result *metric.Result, cache *metric.GrowthCache, b config.Block, id string, number int) (*Block, error) {
	block := &Block{ID: id, UIType: b.UIType, Title: b.Title, Number: number}
	axis := xAxisFor(cal, b.XAxisMonthlyDisplay)
	block.Headers = append(append([]string{}, axis[:6]...), "QTD", "YTD")

	mask := resolveMask(b.YScaling)
	for _, rowDef := range b.Rows {
		row := Row{RowHeader: rowDef.RowHeader, RowStyle: rowDef.RowStyle}
		if rowDef.Metric == "" {
			block.Rows = append(block.Rows, row)
			continue
		}
		if series, ok := result.Series[rowDef.Metric]; ok {
			for _, v := range series.WeeksCY {
				row.Values = append(row.Values, mask.Format(v))
			}
			row.Values = append(row.Values, mask.Format(series.QTDCY), mask.Format(series.YTDCY))
			block.Rows = append(block.Rows, row)
			continue
		}
		if base, ok := strings.CutSuffix(rowDef.Metric, "YOY"); ok {
			if baseSeries, ok := result.Series[base]; ok {
				method := metricComparisonMethod(cfg, base)
				weeks := metric.WeeksYOY(baseSeries)
				for _, v := range weeks {
					row.Values = append(row.Values, format.FormatComparison(v, method))
				}
				row.Values = append(row.Values,
					format.FormatComparison(metric.QTDYOY(baseSeries), method),
					format.FormatComparison(metric.YTDYOY(baseSeries), method))
				block.Rows = append(block.Rows, row)
				continue
			}
		}
		v, found := metric.Lookup(result, cache, rowDef.Metric)
		if !found {
			return nil, fmt.Errorf("row references undefined metric %q", rowDef.Metric)
		}
		row.Values = []string{mask.Format(v)}
		block.Rows = append(block.Rows, row)
	}
	return block, nil
}

// buildMonthsTable renders a 12_MonthsTable block: headers covering the 12
// trailing months, and one row per rowDef carrying the matching 12 values.
func buildMonthsTable(cfg *config.Config, cal *calendar.Calendar, result *metric.Result, cache *metric.GrowthCache, b config.Block, id string, number int) (*Block, error) {
	block := &Block{ID: id, UIType: b.UIType, Title: b.Title, Number: number}
	axis := xAxisFor(cal, b.XAxisMonthlyDisplay)
	block.Headers = append([]string{}, axis[7:19]...)

	mask := resolveMask(b.YScaling)
	for _, rowDef := range b.Rows {
		row := Row{RowHeader: rowDef.RowHeader, RowStyle: rowDef.RowStyle}
		if rowDef.Metric == "" {
			block.Rows = append(block.Rows, row)
			continue
		}
		if series, ok := result.Series[rowDef.Metric]; ok {
			for _, v := range series.MonthsCY {
				row.Values = append(row.Values, mask.Format(v))
			}
			block.Rows = append(block.Rows, row)
			continue
		}
		if base, ok := strings.CutSuffix(rowDef.Metric, "YOY"); ok {
			if baseSeries, ok := result.Series[base]; ok {
				method := metricComparisonMethod(cfg, base)
				for _, v := range metric.MonthsYOY(baseSeries) {
					row.Values = append(row.Values, format.FormatComparison(v, method))
				}
				block.Rows = append(block.Rows, row)
				continue
			}
		}
		v, found := metric.Lookup(result, cache, rowDef.Metric)
		if !found {
			return nil, fmt.Errorf("row references undefined metric %q", rowDef.Metric)
		}
		row.Values = []string{mask.Format(v)}
		block.Rows = append(block.Rows, row)
	}
	return block, nil
}
