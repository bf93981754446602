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

// Package testharness is the Test Harness component (spec.md §2.9): it
// re-runs the engine against each of spec.md §8's end-to-end scenarios and
// diffs the result against the scenario's own expectations. Unlike a golden
// file comparison against testconfig.yml fixtures, each scenario here
// carries its expectations as a Verify closure checked against the engine's
// actual output, so the same source builds both the input and the check.
package testharness

import (
	"github.com/wbr-io/wbrctl/annotation"
	"github.com/wbr-io/wbrctl/calendar"
	"github.com/wbr-io/wbrctl/config"
	"github.com/wbr-io/wbrctl/deck"
	"github.com/wbr-io/wbrctl/merge"
	"github.com/wbr-io/wbrctl/metric"
	"github.com/wbr-io/wbrctl/table"
)

// Scenario is one named, self-contained engine run: a YAML config plus the
// named DailyTables its dataSources would have produced (already
// un-namespaced, the shape a connector/CSV loader hands the Merger), run
// through Merge → Evaluate → Resolve → Build, then checked by Verify.
type Scenario struct {
	Name        string
	YAML        string
	Tables      map[string]*table.DailyTable
	Annotations []annotation.Event
	Verify      func(cfg *config.Config, cal *calendar.Calendar, result *metric.Result, d *deck.Deck) error
}

// Result is one scenario's outcome, the shape GET /wbr-unit-test returns
// (spec.md §6 "returns {scenarios:[…]}").
type Result struct {
	Name    string `json:"name"`
	Passed  bool   `json:"passed"`
	Message string `json:"message,omitempty"`
}

// Run executes s end to end and returns the built deck for further
// inspection (used directly by the Ginkgo specs; RunAll below wraps this
// for the HTTP surface).
func Run(s Scenario) (*config.Config, *calendar.Calendar, *metric.Result, *deck.Deck, error) {
	cfg, err := config.Parse([]byte(s.YAML))
	if err != nil {
		return nil, nil, nil, nil, err
	}
	if err := config.Validate(cfg); err != nil {
		return nil, nil, nil, nil, err
	}

	fiscalMonth, err := cfg.Setup.ResolvedFiscalYearEndMonth()
	if err != nil {
		return nil, nil, nil, nil, err
	}
	cal := calendar.New(cfg.Setup.ParsedWeekEnding, fiscalMonth)

	merged := merge.Merge(s.Tables)
	result, err := metric.Evaluate(cfg, cal, merged)
	if err != nil {
		return cfg, cal, nil, nil, err
	}
	cache := metric.NewGrowthCache()

	events, warnings := annotation.Resolve(cfg, cal, s.Annotations)

	d, err := deck.Build(cfg, cal, result, cache, events, warnings)
	if err != nil {
		return cfg, cal, result, nil, err
	}
	return cfg, cal, result, d, nil
}

// RunAll runs every registered scenario and reports pass/fail, the body of
// GET /wbr-unit-test.
func RunAll() []Result {
	out := make([]Result, 0, len(Scenarios))
	for _, s := range Scenarios {
		cfg, cal, result, d, err := Run(s)
		if err != nil {
			out = append(out, Result{Name: s.Name, Passed: false, Message: err.Error()})
			continue
		}
		if err := s.Verify(cfg, cal, result, d); err != nil {
			out = append(out, Result{Name: s.Name, Passed: false, Message: err.Error()})
			continue
		}
		out = append(out, Result{Name: s.Name, Passed: true})
	}
	return out
}
