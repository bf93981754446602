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
package httpapi

import (
	"io"
	"net/http"
	"strconv"

	json "github.com/goccy/go-json"
	"github.com/rs/zerolog/log"
	"github.com/wbr-io/wbrctl/config"
	"github.com/wbr-io/wbrctl/pipeline"
	"github.com/wbr-io/wbrctl/source"
	"github.com/wbr-io/wbrctl/table"
	"github.com/wbr-io/wbrctl/testharness"
	"github.com/wbr-io/wbrctl/wbrerr"
)

const maxUploadBytes = 32 << 20 // 32MiB, generous for a weekly config+CSV pair

// handleUnitTest is GET /wbr-unit-test: runs every registered scenario and
// reports pass/fail (spec.md §6 "returns {scenarios:[…]}").
func handleUnitTest(w http.ResponseWriter, r *http.Request) {
	results := testharness.RunAll()
	writeJSON(w, http.StatusOK, map[string]any{"scenarios": results})
}

// handleReport is POST /report: a multipart form carrying a `config` YAML
// file and an optional `csv` override file, plus the query-param overrides
// spec.md §6 lists (weekEnding, weekNumber, title, fiscalYearEndMonth,
// blockStartingNumber, tooltip). outputType/password are accepted but only
// outputType=JSON (the default) is served here; HTML rendering and the
// password gate belong to the external publish surface this repo doesn't
// implement (SPEC_FULL.md §6).
func handleReport(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseMultipartForm(maxUploadBytes); err != nil {
		writeError(w, wbrerr.New(wbrerr.ConfigError, "", "request body is not a valid multipart form"))
		return
	}

	configFile, _, err := r.FormFile("config")
	if err != nil {
		writeError(w, wbrerr.New(wbrerr.ConfigError, "config", "missing required \"config\" multipart file"))
		return
	}
	defer configFile.Close()

	raw, err := io.ReadAll(configFile)
	if err != nil {
		writeError(w, wbrerr.Wrap(wbrerr.ConfigError, "config", err))
		return
	}

	cfg, err := config.Parse(raw)
	if err != nil {
		writeError(w, err)
		return
	}

	var csvOverride *table.DailyTable
	if csvFile, _, err := r.FormFile("csv"); err == nil {
		defer csvFile.Close()
		tbl, err := source.ParseCSV(csvFile)
		if err != nil {
			writeError(w, wbrerr.Wrap(wbrerr.DataError, "csv", err))
			return
		}
		csvOverride = tbl
	}

	overrides, err := parseOverrides(r)
	if err != nil {
		writeError(w, err)
		return
	}

	d, err := pipeline.Run(r.Context(), cfg, csvOverride, overrides)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, d)
}

func parseOverrides(r *http.Request) (pipeline.Overrides, error) {
	q := r.URL.Query()
	o := pipeline.Overrides{
		WeekEnding:         q.Get("weekEnding"),
		Title:              q.Get("title"),
		FiscalYearEndMonth: q.Get("fiscalYearEndMonth"),
	}

	if v := q.Get("weekNumber"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return o, wbrerr.New(wbrerr.ConfigError, "weekNumber", "must be an integer")
		}
		o.WeekNumber = n
	}
	if v := q.Get("blockStartingNumber"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return o, wbrerr.New(wbrerr.ConfigError, "blockStartingNumber", "must be an integer")
		}
		o.BlockStartingNumber = n
	}
	if v := q.Get("tooltip"); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return o, wbrerr.New(wbrerr.ConfigError, "tooltip", "must be a boolean")
		}
		o.Tooltip = &b
	}
	return o, nil
}

// writeError maps a wbrerr.Kind to an HTTP status the way
// Straye-AS-relation-api/internal/domain/errors.go maps its ErrorType
// constants: ConfigError/DataError are the caller's fault (400),
// ConnectionError is a dependency outage (502), everything else (a bug,
// or a Kind-less error escaping some other package) is a sanitized 500.
func writeError(w http.ResponseWriter, err error) {
	kind, _ := wbrerr.KindOf(err)
	status := http.StatusInternalServerError
	switch kind {
	case wbrerr.ConfigError, wbrerr.DataError:
		status = http.StatusBadRequest
	case wbrerr.ConnectionError:
		status = http.StatusBadGateway
	}

	log.Error().Err(err).Int("Status", status).Msg("report request failed")
	detail := err.Error()
	if status == http.StatusInternalServerError {
		detail = "internal error"
	}
	writeJSON(w, status, map[string]any{
		"type":   string(kind),
		"detail": detail,
	})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Error().Err(err).Msg("failed to encode response")
	}
}
