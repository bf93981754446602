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
package config

import (
	"fmt"
	"time"

	"github.com/wbr-io/wbrctl/wbrerr"
	"gopkg.in/yaml.v3"
)

// UnmarshalYAML implements the `function: {op: [operands]}` shape, where
// op is exactly one of sum/difference/divide/product (spec.md §3
// "function").
func (f *FunctionSpec) UnmarshalYAML(value *yaml.Node) error {
	var raw map[string][]Operand
	if err := value.Decode(&raw); err != nil {
		return err
	}
	if len(raw) != 1 {
		return fmt.Errorf("function block must have exactly one operator key, got %d", len(raw))
	}
	for op, operands := range raw {
		f.Op = FuncOp(op)
		f.Operands = operands
	}
	return nil
}

// IsMetric and IsValue report which of an operand's two forms is set: a
// metric reference or a literal value.
func (o Operand) IsMetric() bool { return o.Metric != nil }
func (o Operand) IsValue() bool  { return o.Value != nil }

// Parse parses raw YAML bytes into a Config, disambiguating the loosely
// typed dataSources/annotations blocks and parsing setup.weekEnding.
func Parse(raw []byte) (*Config, error) {
	var cfg Config
	if err := yaml.Unmarshal(raw, &cfg); err != nil {
		return nil, wbrerr.Wrap(wbrerr.ConfigError, "", err)
	}

	for name, def := range cfg.Metrics {
		def.Name = name
	}

	if err := parseWeekEnding(&cfg.Setup); err != nil {
		return nil, err
	}

	ds, err := parseDataSources(cfg.DataSources)
	if err != nil {
		return nil, err
	}
	cfg.ParsedDataSources = ds

	ann, err := parseAnnotations(cfg.Annotations)
	if err != nil {
		return nil, err
	}
	cfg.ParsedAnnotations = ann

	return &cfg, nil
}

// ReparseWeekEnding re-derives cfg.Setup.ParsedWeekEnding after a caller has
// overridden setup.weekEnding post-Parse (spec.md §6's POST /report query
// param overrides).
func ReparseWeekEnding(cfg *Config) error {
	return parseWeekEnding(&cfg.Setup)
}

func parseWeekEnding(s *Setup) error {
	t, err := time.Parse("02-Jan-2006", s.WeekEnding)
	if err != nil {
		return wbrerr.New(wbrerr.ConfigError, "setup.weekEnding",
			fmt.Sprintf("expected DD-MMM-YYYY, got %q", s.WeekEnding))
	}
	s.ParsedWeekEnding = t
	if s.FiscalYearEndMonth == "" {
		s.FiscalYearEndMonth = "DEC"
	}
	if s.BlockStartingNumber == 0 {
		s.BlockStartingNumber = 1
	}
	return nil
}

var monthsByAbbrev = map[string]time.Month{
	"JAN": time.January, "FEB": time.February, "MAR": time.March,
	"APR": time.April, "MAY": time.May, "JUN": time.June,
	"JUL": time.July, "AUG": time.August, "SEP": time.September,
	"OCT": time.October, "NOV": time.November, "DEC": time.December,
}

// ResolvedFiscalYearEndMonth resolves the setup's configured abbreviation to a
// time.Month, defaulting to December.
func (s *Setup) ResolvedFiscalYearEndMonth() (time.Month, error) {
	if s.FiscalYearEndMonth == "" {
		return time.December, nil
	}
	m, ok := monthsByAbbrev[s.FiscalYearEndMonth]
	if !ok {
		return 0, wbrerr.New(wbrerr.ConfigError, "setup.fiscalYearEndMonth",
			fmt.Sprintf("unknown month abbreviation %q", s.FiscalYearEndMonth))
	}
	return m, nil
}

// parseDataSources disambiguates the `csvFiles` special key from named
// connections in the loosely typed dataSources map.
func parseDataSources(raw map[string]interface{}) (ParsedDataSources, error) {
	out := ParsedDataSources{
		Connections: map[string]map[string]string{},
		CSVFiles:    map[string]string{},
	}
	for key, val := range raw {
		m, ok := val.(map[string]interface{})
		if !ok {
			return out, wbrerr.New(wbrerr.ConfigError, "dataSources."+key, "expected a mapping")
		}
		if key == "csvFiles" {
			for alias, v := range m {
				entry, ok := v.(map[string]interface{})
				if !ok {
					return out, wbrerr.New(wbrerr.ConfigError, "dataSources.csvFiles."+alias, "expected a mapping with urlOrPath")
				}
				path, _ := entry["urlOrPath"].(string)
				if path == "" {
					return out, wbrerr.New(wbrerr.ConfigError, "dataSources.csvFiles."+alias, "missing urlOrPath")
				}
				out.CSVFiles[alias] = path
			}
			continue
		}

		queries := map[string]string{}
		for alias, v := range m {
			entry, ok := v.(map[string]interface{})
			if !ok {
				return out, wbrerr.New(wbrerr.ConfigError, "dataSources."+key+"."+alias, "expected a mapping with query")
			}
			q, _ := entry["query"].(string)
			if q == "" {
				return out, wbrerr.New(wbrerr.ConfigError, "dataSources."+key+"."+alias, "missing query")
			}
			queries[alias] = q
		}
		out.Connections[key] = queries
	}
	return out, nil
}

// parseAnnotations disambiguates the flat-list form from the
// `{csvFiles, dataSources}` dict form of the `annotations` block.
func parseAnnotations(raw interface{}) (ParsedAnnotations, error) {
	var out ParsedAnnotations
	if raw == nil {
		return out, nil
	}

	switch v := raw.(type) {
	case []interface{}:
		for _, item := range v {
			s, ok := item.(string)
			if !ok {
				return out, wbrerr.New(wbrerr.ConfigError, "annotations", "flat list entries must be strings")
			}
			out.CSVFiles = append(out.CSVFiles, s)
		}
		return out, nil
	case map[string]interface{}:
		if csv, ok := v["csvFiles"]; ok {
			list, ok := csv.([]interface{})
			if !ok {
				return out, wbrerr.New(wbrerr.ConfigError, "annotations.csvFiles", "expected a list")
			}
			for _, item := range list {
				s, _ := item.(string)
				out.CSVFiles = append(out.CSVFiles, s)
			}
		}
		if ds, ok := v["dataSources"]; ok {
			dsMap, ok := ds.(map[string]interface{})
			if !ok {
				return out, wbrerr.New(wbrerr.ConfigError, "annotations.dataSources", "expected a mapping")
			}
			parsed, err := parseDataSources(dsMap)
			if err != nil {
				return out, err
			}
			out.Connections = parsed.Connections
		}
		return out, nil
	default:
		return out, wbrerr.New(wbrerr.ConfigError, "annotations", "expected a list or a mapping")
	}
}
