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

// Package pipeline wires the engine's stages together end to end: parse,
// validate, load, merge, evaluate, annotate, build — the single sequence
// cmd/run.go drives for the subscription/library/provider pipeline in the
// teacher, here driving config.Parse through deck.Build instead.
package pipeline

import (
	"context"

	"github.com/rs/zerolog/log"
	"github.com/wbr-io/wbrctl/annotation"
	"github.com/wbr-io/wbrctl/calendar"
	"github.com/wbr-io/wbrctl/config"
	"github.com/wbr-io/wbrctl/deck"
	"github.com/wbr-io/wbrctl/merge"
	"github.com/wbr-io/wbrctl/metric"
	"github.com/wbr-io/wbrctl/source"
	"github.com/wbr-io/wbrctl/table"
	"github.com/wbr-io/wbrctl/wbrerr"
)

// maxSourceConcurrency bounds the Source Loader's fan-out worker pool
// (spec.md §5's "bounded worker pool" over independent source fetches).
const maxSourceConcurrency = 8

// Overrides carries the query-param overrides spec.md §6 lists for
// POST /report (weekEnding, weekNumber, title, fiscalYearEndMonth,
// blockStartingNumber, tooltip); a zero value field leaves the config's
// own setting in place.
type Overrides struct {
	WeekEnding          string
	WeekNumber          int
	Title               string
	FiscalYearEndMonth  string
	BlockStartingNumber int
	Tooltip             *bool
}

func (o Overrides) apply(cfg *config.Config) error {
	if o.WeekEnding != "" {
		cfg.Setup.WeekEnding = o.WeekEnding
	}
	if o.WeekNumber != 0 {
		cfg.Setup.WeekNumber = o.WeekNumber
	}
	if o.Title != "" {
		cfg.Setup.Title = o.Title
	}
	if o.FiscalYearEndMonth != "" {
		cfg.Setup.FiscalYearEndMonth = o.FiscalYearEndMonth
	}
	if o.BlockStartingNumber != 0 {
		cfg.Setup.BlockStartingNumber = o.BlockStartingNumber
	}
	if o.Tooltip != nil {
		cfg.Setup.Tooltip = *o.Tooltip
	}
	return config.ReparseWeekEnding(cfg)
}

// Run executes the full pipeline for an already-parsed config: validate,
// load every declared source concurrently, merge and apply csvOverride (if
// non-nil, spec.md §9's "CSV override replaces merged table outright"),
// evaluate metrics, resolve annotations, and build the deck document.
func Run(ctx context.Context, cfg *config.Config, csvOverride *table.DailyTable, overrides Overrides) (*deck.Deck, error) {
	if err := overrides.apply(cfg); err != nil {
		return nil, err
	}
	if err := config.Validate(cfg); err != nil {
		return nil, err
	}

	fiscalMonth, err := cfg.Setup.ResolvedFiscalYearEndMonth()
	if err != nil {
		return nil, err
	}
	cal := calendar.New(cfg.Setup.ParsedWeekEnding, fiscalMonth)

	connFile, err := source.LoadConnectionsFile(ctx, cfg.Setup.DBConfigURL)
	if err != nil {
		return nil, err
	}
	reg, err := source.NewRegistry(ctx, connFile)
	if err != nil {
		return nil, err
	}
	defer reg.Close()

	tables, err := source.Load(ctx, reg, cfg.ParsedDataSources, maxSourceConcurrency)
	if err != nil {
		return nil, err
	}

	merged := merge.Merge(tables)
	if csvOverride != nil {
		merged = merge.Override(merged, csvOverride)
	}
	if merged == nil || len(merged.Rows) == 0 {
		return nil, wbrerr.New(wbrerr.DataError, "dataSources", "no rows available for the configured weekEnding")
	}

	result, err := metric.Evaluate(cfg, cal, merged)
	if err != nil {
		return nil, err
	}
	cache := metric.NewGrowthCache()

	events, warnings, err := loadAnnotations(ctx, reg, cfg, cal)
	if err != nil {
		return nil, err
	}

	return deck.Build(cfg, cal, result, cache, events, warnings)
}

// loadAnnotations loads every declared annotation source (CSV and DB),
// resolving spec.md §7's "EvaluationError/AnnotationWarning recovered
// locally" requirement by logging and dropping per-event failures rather
// than aborting the build.
func loadAnnotations(ctx context.Context, reg *source.Registry, cfg *config.Config, cal *calendar.Calendar) ([]annotation.Event, []error, error) {
	var all []annotation.Event

	for _, path := range cfg.ParsedAnnotations.CSVFiles {
		events, err := annotation.LoadCSV(ctx, path)
		if err != nil {
			log.Warn().Err(err).Str("Path", path).Msg("failed to load annotation CSV, skipping")
			continue
		}
		all = append(all, events...)
	}

	for connName, aliasQueries := range cfg.ParsedAnnotations.Connections {
		conn, ok := reg.Get(connName)
		if !ok {
			log.Warn().Str("Connection", connName).Msg("annotation connection not found, skipping")
			continue
		}
		pgConn, ok := conn.(source.PostgresLike)
		if !ok {
			log.Warn().Str("Connection", connName).Msg("annotation connection is not a postgres-family connector, skipping")
			continue
		}
		for _, query := range aliasQueries {
			events, err := annotation.LoadDB(ctx, pgConn.Pool(), query)
			if err != nil {
				log.Warn().Err(err).Str("Connection", connName).Msg("failed to load annotation query, skipping")
				continue
			}
			all = append(all, events...)
		}
	}

	resolved, warnings := annotation.Resolve(cfg, cal, all)
	for _, w := range warnings {
		log.Warn().Err(w).Msg("annotation dropped")
	}
	return resolved, warnings, nil
}
