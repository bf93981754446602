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
	"io"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/gocarina/gocsv"
	"github.com/go-resty/resty/v2"
	"github.com/wbr-io/wbrctl/table"
)

var csvClient = resty.New().SetTimeout(30 * time.Second)

// LoadCSV reads urlOrPath (an http(s) URL fetched with resty, or a local
// filesystem path) and decodes it into a DailyTable. The first column
// whose header is "Date" is canonicalized as the table's date axis;
// remaining columns are parsed as floats where possible and otherwise kept
// as Raw strings (spec.md §4.4 "ambient CSV sources").
func LoadCSV(ctx context.Context, urlOrPath string) (*table.DailyTable, error) {
	var body io.ReadCloser
	if strings.HasPrefix(urlOrPath, "http://") || strings.HasPrefix(urlOrPath, "https://") {
		resp, err := csvClient.R().SetContext(ctx).SetDoNotParseResponse(true).Get(urlOrPath)
		if err != nil {
			return nil, err
		}
		if resp.StatusCode() >= 300 {
			resp.RawBody().Close()
			return nil, fmt.Errorf("fetching %s: status %d", urlOrPath, resp.StatusCode())
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

	tbl, err := ParseCSV(body)
	if err != nil {
		return nil, fmt.Errorf("parsing csv %s: %w", urlOrPath, err)
	}
	return tbl, nil
}

// ParseCSV decodes r (an already-open CSV stream, e.g. an uploaded
// multipart file in httpapi's POST /report handler) into a DailyTable.
// csvFiles/uploaded-CSV schemas are user-defined (spec.md §3 "csvFiles"),
// so records are decoded into generic maps rather than a fixed struct;
// gocsv's CSVReader still provides the dialect-correct line reader the rest
// of the codebase's CSV handling uses.
func ParseCSV(r io.Reader) (*table.DailyTable, error) {
	reader := gocsv.DefaultCSVReader(r)
	header, err := reader.Read()
	if err != nil {
		return nil, err
	}

	var records []map[string]string
	for {
		row, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, err
		}
		record := make(map[string]string, len(header))
		for i, col := range header {
			if i < len(row) {
				record[col] = row[i]
			}
		}
		records = append(records, record)
	}

	tbl, err := recordsToTable(records)
	if err != nil {
		return nil, err
	}
	// recordsToTable sees only maps; take the column order from the header.
	order := make([]string, 0, len(header))
	for _, col := range header {
		if col != "Date" {
			order = append(order, col)
		}
	}
	tbl.ColumnOrder = order
	return tbl, nil
}

func recordsToTable(records []map[string]string) (*table.DailyTable, error) {
	var order []string
	seen := map[string]bool{"Date": true}
	for _, rec := range records {
		for col := range rec {
			if !seen[col] {
				seen[col] = true
				order = append(order, col)
			}
		}
	}

	out := table.New(order...)
	for _, rec := range records {
		dateStr, ok := rec["Date"]
		if !ok {
			return nil, fmt.Errorf("csv row missing Date column")
		}
		date, err := parseCSVDate(dateStr)
		if err != nil {
			return nil, err
		}

		row := table.Row{Date: date, Columns: map[string]float64{}, Raw: map[string]string{}}
		for col, val := range rec {
			if col == "Date" {
				continue
			}
			if f, err := strconv.ParseFloat(val, 64); err == nil {
				row.Columns[col] = f
			} else {
				row.Raw[col] = val
			}
		}
		out.Rows = append(out.Rows, row)
	}
	out.SortByDate()
	return out, nil
}

var csvDateLayouts = []string{"2006-01-02", "01/02/2006", "02-Jan-2006"}

func parseCSVDate(s string) (time.Time, error) {
	for _, layout := range csvDateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("could not parse Date value %q", s)
}
