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

// Package annotation loads and windows the dated event rows the Deck
// Builder overlays on 6_12Graph blocks (spec.md §4.7 "Annotation
// Resolver").
package annotation

import (
	"context"
	"io"
	"os"
	"strings"
	"time"

	"github.com/georgysavva/scany/v2/pgxscan"
	"github.com/gocarina/gocsv"
	"github.com/go-resty/resty/v2"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"
	"github.com/wbr-io/wbrctl/calendar"
	"github.com/wbr-io/wbrctl/config"
	"github.com/wbr-io/wbrctl/wbrerr"
)

// Event is one annotation row, shaped like data/holiday.go's MarketHoliday
// (a dated, CSV/DB-sourced event row), minus the persistence methods this
// package never needs.
type Event struct {
	MetricName string    `db:"metric_name" csv:"metricName" yaml:"metricName"`
	Date       time.Time `db:"event_date" csv:"date" yaml:"date"`
	Text       string    `db:"text" csv:"text" yaml:"text"`
}

func (e Event) MarshalZerologObject(ev *zerolog.Event) {
	ev.Str("MetricName", e.MetricName)
	ev.Time("Date", e.Date)
}

var annotationCSVClient = resty.New().SetTimeout(30 * time.Second)

// LoadCSV decodes an annotations CSV (metricName,date,text columns) from a
// URL or local path.
func LoadCSV(ctx context.Context, urlOrPath string) ([]Event, error) {
	var body io.ReadCloser
	if strings.HasPrefix(urlOrPath, "http://") || strings.HasPrefix(urlOrPath, "https://") {
		resp, err := annotationCSVClient.R().SetContext(ctx).SetDoNotParseResponse(true).Get(urlOrPath)
		if err != nil {
			return nil, err
		}
		body = resp.RawBody()
	} else {
		f, err := os.Open(urlOrPath)
		if err != nil {
			return nil, err
		}
		body = f
	}
	defer body.Close()

	var events []Event
	if err := gocsv.Unmarshal(body, &events); err != nil {
		return nil, err
	}
	return events, nil
}

// LoadDB runs query against pool and scans the result directly into
// Events, the same pgxscan.Select idiom library/database.go's
// Subscriptions uses for a fixed-shape row.
func LoadDB(ctx context.Context, pool *pgxpool.Pool, query string) ([]Event, error) {
	var events []Event
	err := pgxscan.Select(ctx, pool, &events, query)
	return events, err
}

// Window returns the trailing 6-current-year-week and 6-prior-year-week
// bounds annotations are filtered to (spec.md §4.7 "trailing 6 CY + 6 PY
// weeks").
func Window(cal *calendar.Calendar) (cyFirst, cyLast, pyFirst, pyLast time.Time) {
	weeksCY := cal.LastSixWeeksCY()
	weeksPY := cal.LastSixWeeksPY()
	return weeksCY[0].Start, weeksCY[5].End, weeksPY[0].Start, weeksPY[5].End
}

// Resolve windows events to the trailing 12-week span, drops rows whose
// MetricName isn't declared in cfg (recording a non-fatal warning for each),
// and dedups same (MetricName, Date) rows with last-in-input-order winning
// (spec.md §9 "Annotation tie-break" open question, resolved here).
func Resolve(cfg *config.Config, cal *calendar.Calendar, events []Event) (resolved []Event, warnings []error) {
	cyFirst, cyLast, pyFirst, pyLast := Window(cal)

	type key struct {
		metric string
		date   string
	}
	byKey := map[key]Event{}
	var order []key

	for _, e := range events {
		inWindow := (!e.Date.Before(cyFirst) && !e.Date.After(cyLast)) ||
			(!e.Date.Before(pyFirst) && !e.Date.After(pyLast))
		if !inWindow {
			continue
		}
		if _, ok := cfg.Metrics[e.MetricName]; !ok {
			warnings = append(warnings, wbrerr.New(wbrerr.AnnotationWarning, "annotations",
				"references undefined metric "+e.MetricName))
			continue
		}
		k := key{metric: e.MetricName, date: e.Date.Format("2006-01-02")}
		if _, seen := byKey[k]; !seen {
			order = append(order, k)
		}
		byKey[k] = e
	}

	resolved = make([]Event, 0, len(order))
	for _, k := range order {
		resolved = append(resolved, byKey[k])
	}
	return resolved, warnings
}
