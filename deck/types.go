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

// Package deck renders a materialized metric.Result into the nested JSON
// block document the front end consumes (spec.md §4.8 "Deck Builder").
package deck

import "github.com/wbr-io/wbrctl/config"

// Series is one rendered graph line: labeled points plus the line style
// the Deck Builder assigned it. A lineStyle=target series is scatter-only
// and carries its points in Target instead of Values, with no prior-year
// counterpart (spec.md §4.8 "lineStyle=target emits a scatter-only series
// in Target.current instead of metric").
type Series struct {
	LegendName string    `json:"legendName"`
	LineStyle  string    `json:"lineStyle"`
	Values     []float64 `json:"values,omitempty"`
	Target     []float64 `json:"target,omitempty"`
}

// Annotation is one rendered annotation marker on a graph block.
type Annotation struct {
	Date string `json:"date"`
	Text string `json:"text"`
}

// Row is one rendered table row.
type Row struct {
	RowHeader string   `json:"rowHeader"`
	RowStyle  string   `json:"rowStyle,omitempty"`
	Values    []string `json:"values"`
}

// Table is a 6_12Graph block's fixed nine-column summary table (spec.md
// §4.6 "Summary-table semantics for a 6/12 block", §4.8 tableBody shape):
// one row per yAxis metric, [name, LastWeek, YOY, MTD, YOY, QTD, YOY, YTD, YOY].
type Table struct {
	TableHeader []string   `json:"tableHeader"`
	TableBody   [][]string `json:"tableBody"`
}

// Block is one rendered deck entry; the fields populated depend on UIType,
// the same dispatch-by-discriminator shape data/asset.go's SaveFiles uses
// for MIME type (here, dispatched by uiType instead).
type Block struct {
	ID       string         `json:"id"`
	Number   int            `json:"number,omitempty"`
	UIType   config.UIType  `json:"uiType"`
	Title    string         `json:"title,omitempty"`
	XAxis    []string       `json:"xAxis,omitempty"`
	YAxis    []Series       `json:"yAxis,omitempty"`
	AxisMin  float64        `json:"axisMin,omitempty"`
	AxisMax  float64        `json:"axisMax,omitempty"`
	AxisTick float64        `json:"axisTick,omitempty"`
	Table    *Table         `json:"table,omitempty"`

	// Headers labels the columns of Rows for 6_WeeksTable/12_MonthsTable
	// blocks (spec.md §4.8 "headers:[…]").
	Headers []string `json:"headers,omitempty"`
	Rows    []Row    `json:"rows,omitempty"`

	Annotations []Annotation `json:"annotations,omitempty"`

	// embedded_content / section fields
	Source string `json:"source,omitempty"`
	Width  string `json:"width,omitempty"`
	Height string `json:"height,omitempty"`
}

// Deck is the full rendered document for one build (spec.md §3 "Deck",
// §6 response body).
type Deck struct {
	Title               string   `json:"title"`
	WeekEnding          string   `json:"weekEnding"`
	BlockStartingNumber int      `json:"blockStartingNumber"`
	XAxisMonthlyDisplay string   `json:"xAxisMonthlyDisplay,omitempty"`
	EventErrors         []string `json:"eventErrors,omitempty"`
	Blocks              []Block  `json:"blocks"`
}
