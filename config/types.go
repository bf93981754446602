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

// Package config holds the user-authored YAML data model (spec.md §3) and
// its two-layer validation (spec.md §4.3).
package config

import "time"

// AggFunc is the aggregation function a basic or filter metric applies.
type AggFunc string

const (
	AggSum  AggFunc = "sum"
	AggMean AggFunc = "mean"
	AggMin  AggFunc = "min"
	AggMax  AggFunc = "max"
	AggLast AggFunc = "last"
)

// FuncOp is the operator a function metric applies to its operands.
type FuncOp string

const (
	FuncSum        FuncOp = "sum"
	FuncDifference FuncOp = "difference"
	FuncDivide     FuncOp = "divide"
	FuncProduct    FuncOp = "product"
)

// ComparisonMethod mirrors format.ComparisonMethod at the config layer so
// this package has no dependency on format.
type ComparisonMethod string

const (
	ComparisonPercent ComparisonMethod = "%"
	ComparisonBps     ComparisonMethod = "bps"
)

// Setup is the `setup` config block.
type Setup struct {
	WeekEnding          string `yaml:"weekEnding" validate:"required"`
	WeekNumber          int    `yaml:"weekNumber,omitempty"`
	Title               string `yaml:"title,omitempty"`
	FiscalYearEndMonth  string `yaml:"fiscalYearEndMonth,omitempty"`
	BlockStartingNumber int    `yaml:"blockStartingNumber,omitempty"`
	Tooltip             bool   `yaml:"tooltip,omitempty"`
	DBConfigURL         string `yaml:"dbConfigUrl,omitempty"`

	// ParsedWeekEnding is populated by Parse after validating the
	// DD-MMM-YYYY format (spec.md §3 "weekEnding (mandatory,
	// DD-MMM-YYYY)").
	ParsedWeekEnding time.Time `yaml:"-"`
}

// FilterSpec is a filter metric's `filter` block.
type FilterSpec struct {
	BaseColumn string `yaml:"baseColumn" validate:"required"`
	Query      string `yaml:"query" validate:"required"`
}

// MetricRef names the metric a function-metric operand resolves to.
type MetricRef struct {
	Name string `yaml:"name"`
}

// ValueRef is a function-metric operand's literal numeric value.
type ValueRef struct {
	N float64 `yaml:"n"`
}

// Operand is one operand of a function metric: either a metric reference
// or a literal value.
type Operand struct {
	Metric *MetricRef `yaml:"metric,omitempty"`
	Value  *ValueRef  `yaml:"value,omitempty"`
}

// FunctionSpec is a function metric's `function` block: a single op key
// mapping to an ordered operand list.
type FunctionSpec struct {
	Op       FuncOp
	Operands []Operand
}

// MetricDef is a discriminated union over basic/filter/function metrics,
// matching spec.md §9 "Tagged metric variants... model them as a
// discriminated union".
type MetricDef struct {
	Name string `yaml:"-"`

	// Basic
	Column string  `yaml:"column,omitempty"`
	AggF   AggFunc `yaml:"aggf,omitempty"`

	// Filter
	Filter *FilterSpec `yaml:"filter,omitempty"`

	// Function
	Function *FunctionSpec `yaml:"function,omitempty"`

	MetricComparisonMethod ComparisonMethod `yaml:"metricComparisonMethod,omitempty"`
}

// Kind classifies a MetricDef for the engine's dispatch-by-kind switch.
type Kind int

const (
	KindBasic Kind = iota
	KindFilter
	KindFunction
)

func (m *MetricDef) Kind() Kind {
	switch {
	case m.Filter != nil:
		return KindFilter
	case m.Function != nil:
		return KindFunction
	default:
		return KindBasic
	}
}

// LineStyle is the rendering style of a 6/12Graph series.
type LineStyle string

const (
	LinePrimary   LineStyle = "primary"
	LineSecondary LineStyle = "secondary"
	LineTertiary  LineStyle = "tertiary"
	LineQuaternary LineStyle = "quaternary"
	LineTarget    LineStyle = "target"
)

// UIType is the block discriminator of a deck entry.
type UIType string

const (
	UITypeGraph6_12      UIType = "6_12Graph"
	UIType6WeeksTable    UIType = "6_WeeksTable"
	UIType12MonthsTable  UIType = "12_MonthsTable"
	UITypeSection        UIType = "section"
	UITypeEmbeddedContent UIType = "embedded_content"
)

// YAxisSeries is one metric line on a 6_12Graph block.
type YAxisSeries struct {
	Metric              string    `yaml:"metric" validate:"required"`
	LegendName          string    `yaml:"legendName,omitempty"`
	LineStyle           LineStyle `yaml:"lineStyle,omitempty"`
	Axes                int       `yaml:"axes,omitempty"`
}

// RowDef is one row of a 6_WeeksTable/12_MonthsTable block.
type RowDef struct {
	Metric    string `yaml:"metric,omitempty"`
	RowHeader string `yaml:"rowHeader,omitempty"`
	RowStyle  string `yaml:"rowStyle,omitempty"`
}

// Block is one entry in the `deck` sequence.
type Block struct {
	UIType              UIType        `yaml:"uiType" validate:"required"`
	Title               string        `yaml:"title,omitempty"`
	YScaling            string        `yaml:"yScaling,omitempty"`
	BoxTotalScale       string        `yaml:"boxTotalScale,omitempty"`
	Tooltip             bool          `yaml:"tooltip,omitempty"`
	GraphPriorYearFlag  bool          `yaml:"graphPriorYearFlag,omitempty"`
	XAxisMonthlyDisplay string        `yaml:"xAxisMonthlyDisplay,omitempty"`
	YAxis               []YAxisSeries `yaml:"yAxis,omitempty"`
	Rows                []RowDef      `yaml:"rows,omitempty"`

	// embedded_content fields
	ID     string `yaml:"id,omitempty"`
	Source string `yaml:"source,omitempty"`
	Width  string `yaml:"width,omitempty"`
	Height string `yaml:"height,omitempty"`
}

// Config is the full parsed YAML document.
type Config struct {
	Setup       Setup                  `yaml:"setup" validate:"required"`
	DataSources map[string]interface{} `yaml:"dataSources,omitempty"`
	Annotations interface{}            `yaml:"annotations,omitempty"`
	Metrics     map[string]*MetricDef  `yaml:"metrics,omitempty"`
	Deck        []Block                `yaml:"deck,omitempty"`

	// ParsedDataSources/ParsedAnnotations are populated from the loosely
	// typed fields above by parse.go, since dataSources/annotations are
	// shaped too irregularly for a single static yaml struct (spec.md §3).
	ParsedDataSources  ParsedDataSources
	ParsedAnnotations  ParsedAnnotations
}

// ParsedDataSources is dataSources after disambiguating the csvFiles
// special key from named connections.
type ParsedDataSources struct {
	// Connections maps connection name -> alias -> query.
	Connections map[string]map[string]string
	// CSVFiles maps alias -> urlOrPath.
	CSVFiles map[string]string
}

// ParsedAnnotations is annotations after disambiguating the flat-list form
// from the dict form.
type ParsedAnnotations struct {
	CSVFiles    []string
	Connections map[string]map[string]string
}

// ConnectionType is a connector implementation identifier.
type ConnectionType string

const (
	ConnPostgres  ConnectionType = "postgres"
	ConnRedshift  ConnectionType = "redshift"
	ConnSnowflake ConnectionType = "snowflake"
	ConnAthena    ConnectionType = "athena"
)

// SecretRef is the `{service:aws, secretName}` indirection spec.md §6
// describes for connection config.
type SecretRef struct {
	Service    string `yaml:"service"`
	SecretName string `yaml:"secretName"`
}

// ConnectionDef is one entry of connections.yaml.
type ConnectionDef struct {
	Name   string                 `yaml:"name" validate:"required"`
	Type   ConnectionType         `yaml:"type" validate:"required"`
	Config map[string]interface{} `yaml:"config"`
}

// ConnectionsFile is the top-level connections.yaml document.
type ConnectionsFile struct {
	Version     string          `yaml:"version"`
	Connections []ConnectionDef `yaml:"connections"`
}
