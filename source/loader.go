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
package source

import (
	"context"
	"sync"

	"github.com/hashicorp/go-multierror"
	"github.com/rs/zerolog/log"
	"github.com/wbr-io/wbrctl/config"
	"github.com/wbr-io/wbrctl/table"
	"github.com/wbr-io/wbrctl/wbrerr"
)

// loadJob is one independently-fetchable (alias, table) unit: either a
// connection query or a CSV file.
type loadJob struct {
	alias string
	fetch func(ctx context.Context) (*table.DailyTable, error)
}

type loadResult struct {
	alias string
	tbl   *table.DailyTable
	err   error
}

// Load fans the configured sources out over a bounded pool of at most
// maxConcurrency worker goroutines (the same bounded worker-pool idiom the
// run command uses to fan subscriptions into a shared output channel) and
// returns one DailyTable per alias, keyed exactly as declared under
// dataSources (spec.md §4.4, §5).
func Load(ctx context.Context, reg *Registry, sources config.ParsedDataSources, maxConcurrency int) (map[string]*table.DailyTable, error) {
	var jobs []loadJob

	for connName, queries := range sources.Connections {
		conn, ok := reg.Get(connName)
		if !ok {
			return nil, wbrerr.New(wbrerr.ConnectionError, "dataSources."+connName, "no such connection configured")
		}
		for alias, query := range queries {
			alias, query, conn := alias, query, conn
			jobs = append(jobs, loadJob{
				alias: alias,
				fetch: func(ctx context.Context) (*table.DailyTable, error) {
					return conn.Query(ctx, query)
				},
			})
		}
	}

	for alias, urlOrPath := range sources.CSVFiles {
		alias, urlOrPath := alias, urlOrPath
		jobs = append(jobs, loadJob{
			alias: alias,
			fetch: func(ctx context.Context) (*table.DailyTable, error) {
				return LoadCSV(ctx, urlOrPath)
			},
		})
	}

	if maxConcurrency <= 0 {
		maxConcurrency = 8
	}

	jobChan := make(chan loadJob, len(jobs))
	resultChan := make(chan loadResult, len(jobs))

	var wg sync.WaitGroup
	workers := maxConcurrency
	if workers > len(jobs) {
		workers = len(jobs)
	}
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for job := range jobChan {
				tbl, err := job.fetch(ctx)
				resultChan <- loadResult{alias: job.alias, tbl: tbl, err: err}
			}
		}()
	}

	for _, job := range jobs {
		jobChan <- job
	}
	close(jobChan)

	go func() {
		wg.Wait()
		close(resultChan)
	}()

	out := make(map[string]*table.DailyTable, len(jobs))
	var errs *multierror.Error
	for res := range resultChan {
		if res.err != nil {
			log.Error().Err(res.err).Str("Alias", res.alias).Msg("loading source failed")
			errs = multierror.Append(errs, wbrerr.Wrap(wbrerr.ConnectionError, "dataSources."+res.alias, res.err))
			continue
		}
		out[res.alias] = res.tbl
	}

	if errs != nil {
		return out, errs.ErrorOrNil()
	}
	return out, nil
}
