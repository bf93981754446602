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
	"strconv"
	"time"

	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/athena"
	"github.com/aws/aws-sdk-go-v2/service/athena/types"
	"github.com/wbr-io/wbrctl/config"
	"github.com/wbr-io/wbrctl/table"
	"golang.org/x/time/rate"
)

// athenaConnector submits a query with StartQueryExecution, then polls
// GetQueryExecution at a rate bounded by pollLimiter rather than busy-waiting, the same idiom the
// example pack uses for rate-limited polling against a third-party API.
type athenaConnector struct {
	client      *athena.Client
	database    string
	outputS3    string
	pollLimiter *rate.Limiter
}

func newAthenaConnector(ctx context.Context, def config.ConnectionDef) (Connector, error) {
	database, err := resolveConfigString(ctx, def.Config, "database")
	if err != nil {
		return nil, err
	}
	outputS3, err := resolveConfigString(ctx, def.Config, "outputLocation")
	if err != nil {
		return nil, err
	}

	cfg, err := awsconfig.LoadDefaultConfig(ctx)
	if err != nil {
		return nil, err
	}

	return &athenaConnector{
		client:      athena.NewFromConfig(cfg),
		database:    database,
		outputS3:    outputS3,
		pollLimiter: rate.NewLimiter(rate.Every(500*time.Millisecond), 1),
	}, nil
}

func (c *athenaConnector) Query(ctx context.Context, query string) (*table.DailyTable, error) {
	start, err := c.client.StartQueryExecution(ctx, &athena.StartQueryExecutionInput{
		QueryString: &query,
		QueryExecutionContext: &types.QueryExecutionContext{
			Database: &c.database,
		},
		ResultConfiguration: &types.ResultConfiguration{
			OutputLocation: &c.outputS3,
		},
	})
	if err != nil {
		return nil, err
	}

	for {
		if err := c.pollLimiter.Wait(ctx); err != nil {
			return nil, err
		}

		exec, err := c.client.GetQueryExecution(ctx, &athena.GetQueryExecutionInput{
			QueryExecutionId: start.QueryExecutionId,
		})
		if err != nil {
			return nil, err
		}

		switch exec.QueryExecution.Status.State {
		case types.QueryExecutionStateSucceeded:
			return c.fetchResults(ctx, *start.QueryExecutionId)
		case types.QueryExecutionStateFailed, types.QueryExecutionStateCancelled:
			reason := ""
			if exec.QueryExecution.Status.StateChangeReason != nil {
				reason = *exec.QueryExecution.Status.StateChangeReason
			}
			return nil, fmt.Errorf("athena query %s: %s", exec.QueryExecution.Status.State, reason)
		}
	}
}

func (c *athenaConnector) fetchResults(ctx context.Context, executionID string) (*table.DailyTable, error) {
	var (
		colNames []string
		dateCol  = -1
		out      *table.DailyTable
		token    *string
	)

	for {
		res, err := c.client.GetQueryResults(ctx, &athena.GetQueryResultsInput{
			QueryExecutionId: &executionID,
			NextToken:        token,
		})
		if err != nil {
			return nil, err
		}

		if colNames == nil {
			for i, col := range res.ResultSet.ResultSetMetadata.ColumnInfo {
				colNames = append(colNames, *col.Name)
				if *col.Name == "Date" {
					dateCol = i
				}
			}
			if dateCol == -1 {
				return nil, fmt.Errorf("query result has no Date column")
			}
			var order []string
			for i, name := range colNames {
				if i != dateCol {
					order = append(order, name)
				}
			}
			out = table.New(order...)
		}

		for i, row := range res.ResultSet.Rows {
			// Athena repeats the header row as data row 0 of the first page.
			if token == nil && i == 0 {
				continue
			}
			r, err := athenaRowToTableRow(row, colNames, dateCol)
			if err != nil {
				return nil, err
			}
			out.Rows = append(out.Rows, r)
		}

		if res.NextToken == nil {
			break
		}
		token = res.NextToken
	}

	out.SortByDate()
	return out, nil
}

func athenaRowToTableRow(row types.Row, colNames []string, dateCol int) (table.Row, error) {
	r := table.Row{Columns: map[string]float64{}, Raw: map[string]string{}}
	for i, datum := range row.Data {
		var v string
		if datum.VarCharValue != nil {
			v = *datum.VarCharValue
		}
		if i == dateCol {
			d, err := time.Parse("2006-01-02", v)
			if err != nil {
				return r, fmt.Errorf("Date column: %w", err)
			}
			r.Date = d
			continue
		}
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			r.Columns[colNames[i]] = f
		} else {
			r.Raw[colNames[i]] = v
		}
	}
	return r, nil
}

func (c *athenaConnector) Close() {}
