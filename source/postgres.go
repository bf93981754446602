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
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/wbr-io/wbrctl/config"
	"github.com/wbr-io/wbrctl/table"
)

// postgresConnector serves both `postgres` and `redshift` connections:
// Redshift speaks the Postgres wire protocol, so pgxpool connects to it
// directly (spec.md §4.4 "redshift may reuse the postgres driver").
// Redshift lower-cases unquoted identifiers, so its date column is
// canonicalized from "date" rather than "Date".
type postgresConnector struct {
	pool       *pgxpool.Pool
	lowerDates bool
}

func newPostgresConnector(ctx context.Context, def config.ConnectionDef) (Connector, error) {
	dsn, err := resolveConfigString(ctx, def.Config, "url")
	if err != nil {
		return nil, err
	}
	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		return nil, err
	}
	return &postgresConnector{pool: pool, lowerDates: def.Type == config.ConnRedshift}, nil
}

func (c *postgresConnector) Query(ctx context.Context, query string) (*table.DailyTable, error) {
	rows, err := c.pool.Query(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	fields := rows.FieldDescriptions()
	colNames := make([]string, len(fields))
	dateCol := -1
	dateColName := "Date"
	if c.lowerDates {
		dateColName = "date"
	}
	for i, f := range fields {
		colNames[i] = string(f.Name)
		if colNames[i] == dateColName {
			dateCol = i
		}
	}
	if dateCol == -1 {
		return nil, fmt.Errorf("query result has no %q column", dateColName)
	}

	var order []string
	for _, name := range colNames {
		if name == dateColName {
			continue
		}
		order = append(order, canonicalizeColumn(name))
	}

	out := table.New(order...)
	for rows.Next() {
		vals, err := rows.Values()
		if err != nil {
			return nil, err
		}

		date, ok := vals[dateCol].(time.Time)
		if !ok {
			return nil, fmt.Errorf("%q column is not a timestamp", dateColName)
		}

		row := table.Row{Date: date, Columns: map[string]float64{}, Raw: map[string]string{}}
		for i, v := range vals {
			if i == dateCol {
				continue
			}
			name := canonicalizeColumn(colNames[i])
			switch n := v.(type) {
			case float64:
				row.Columns[name] = n
			case int64:
				row.Columns[name] = float64(n)
			case int32:
				row.Columns[name] = float64(n)
			case nil:
				// absent value, leave unset
			default:
				row.Raw[name] = fmt.Sprintf("%v", n)
			}
		}
		out.Rows = append(out.Rows, row)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	out.SortByDate()
	return out, nil
}

func (c *postgresConnector) Close() {
	c.pool.Close()
}

// Pool satisfies PostgresLike, letting the annotation loader scan its own
// fixed-shape Event rows through the same pgxpool connection.
func (c *postgresConnector) Pool() *pgxpool.Pool {
	return c.pool
}

// canonicalizeColumn restores the mixed-case column name Redshift's
// lower-casing would otherwise destroy is not attempted here beyond the
// Date column itself: non-date columns keep whatever case the query
// returned, since aliasing in the query is the user's tool for that.
func canonicalizeColumn(name string) string {
	return strings.TrimSpace(name)
}
