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
package cmd

import (
	"fmt"
	"os"
	"time"

	"github.com/charmbracelet/huh"
	"github.com/gosimple/slug"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
	"github.com/wbr-io/wbrctl/source"
	"gopkg.in/yaml.v3"
)

var initCSVPath string
var initWeekEnding string
var initOutputPath string

// initCmd gathers a CSV sample and a weekEnding date, then writes a
// starter config with one basic metric and one 6_12Graph block per
// numeric column — the same "one metric + one block per column" starter
// shape spec.md §6's POST /download_yaml contract describes, offered here
// as a local wizard rather than an HTTP route.
var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Interview a sample CSV and write a starter WBR config",
	Run: func(cmd *cobra.Command, args []string) {
		form := huh.NewForm(
			huh.NewGroup(
				huh.NewInput().
					Title("Path to a sample CSV (must have a Date column):").
					Value(&initCSVPath).
					Validate(func(s string) error {
						if s == "" {
							return fmt.Errorf("a CSV path is required")
						}
						if _, err := os.Stat(s); err != nil {
							return err
						}
						return nil
					}),

				huh.NewInput().
					Title("Week ending date (DD-Mon-YYYY, e.g. 29-Mar-2024):").
					Value(&initWeekEnding).
					Validate(func(s string) error {
						_, err := time.Parse("02-Jan-2006", s)
						return err
					}),

				huh.NewInput().
					Title("Where should the starter config be written?").
					Value(&initOutputPath).
					Placeholder("wbr.yaml"),
			),
		)

		if err := form.Run(); err != nil {
			log.Fatal().Err(err).Msg("error gathering config settings")
		}
		if initOutputPath == "" {
			initOutputPath = "wbr.yaml"
		}

		tbl, err := source.LoadCSV(cmd.Context(), initCSVPath)
		if err != nil {
			log.Fatal().Err(err).Msg("could not read sample CSV")
		}

		var numeric []string
		for _, col := range tbl.ColumnOrder {
			for _, row := range tbl.Rows {
				if _, ok := row.Columns[col]; ok {
					numeric = append(numeric, col)
					break
				}
			}
		}

		doc := starterConfig(initWeekEnding, initCSVPath, numeric)
		out, err := yaml.Marshal(doc)
		if err != nil {
			log.Fatal().Err(err).Msg("could not marshal starter config")
		}

		if err := os.WriteFile(initOutputPath, out, 0644); err != nil {
			log.Fatal().Err(err).Str("FileName", initOutputPath).Msg("could not write starter config")
		}

		log.Info().Str("FileName", initOutputPath).Int("Metrics", len(numeric)).Msg("starter config written")
	},
}

// starterConfig builds the YAML document as a small ordered struct so the
// top-level keys in the emitted file follow the order a hand-written config
// would use (setup, dataSources, metrics, deck), rather than config.Config's
// Go field order or yaml.v3's sorted map keys.
func starterConfig(weekEnding, csvPath string, columns []string) any {
	metrics := make(map[string]any, len(columns))
	deck := make([]any, 0, len(columns))

	for _, col := range columns {
		name := slug.Make(col)
		metrics[name] = map[string]any{
			"column": "daily." + col,
			"aggf":   "sum",
		}
		deck = append(deck, map[string]any{
			"uiType": "6_12Graph",
			"title":  col,
			"yAxis": []any{
				map[string]any{"metric": name},
			},
		})
	}

	return struct {
		Setup       map[string]any `yaml:"setup"`
		DataSources map[string]any `yaml:"dataSources"`
		Metrics     map[string]any `yaml:"metrics"`
		Deck        []any          `yaml:"deck"`
	}{
		Setup: map[string]any{
			"weekEnding": weekEnding,
		},
		DataSources: map[string]any{
			"csvFiles": map[string]any{
				"daily": map[string]any{"urlOrPath": csvPath},
			},
		},
		Metrics: metrics,
		Deck:    deck,
	}
}

func init() {
	rootCmd.AddCommand(initCmd)
}
