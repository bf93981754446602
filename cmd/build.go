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
	"context"
	"os"

	json "github.com/goccy/go-json"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
	"github.com/wbr-io/wbrctl/config"
	"github.com/wbr-io/wbrctl/pipeline"
	"github.com/wbr-io/wbrctl/source"
	"github.com/wbr-io/wbrctl/table"
)

var (
	buildConfigPath string
	buildCSVPath    string
	buildOutputPath string
)

// buildCmd runs the full pipeline for one config file: parse, load every
// declared source, merge, evaluate, annotate, and render the deck,
// writing the resulting JSON document to stdout or --out.
var buildCmd = &cobra.Command{
	Use:   "build",
	Short: "Build a WBR deck from a config file",
	Run: func(cmd *cobra.Command, args []string) {
		ctx := context.Background()

		raw, err := os.ReadFile(buildConfigPath)
		if err != nil {
			log.Fatal().Err(err).Str("FileName", buildConfigPath).Msg("could not read config file")
		}

		cfg, err := config.Parse(raw)
		if err != nil {
			log.Fatal().Err(err).Msg("could not parse config")
		}

		var csvOverride *table.DailyTable
		if buildCSVPath != "" {
			tbl, err := source.LoadCSV(ctx, buildCSVPath)
			if err != nil {
				log.Fatal().Err(err).Str("FileName", buildCSVPath).Msg("could not read CSV override")
			}
			csvOverride = tbl
		}

		d, err := pipeline.Run(ctx, cfg, csvOverride, pipeline.Overrides{})
		if err != nil {
			log.Fatal().Err(err).Msg("build failed")
		}

		out, err := json.MarshalIndent(d, "", "  ")
		if err != nil {
			log.Fatal().Err(err).Msg("could not marshal deck")
		}

		if buildOutputPath == "" {
			os.Stdout.Write(out)
			os.Stdout.Write([]byte("\n"))
			return
		}
		if err := os.WriteFile(buildOutputPath, out, 0644); err != nil {
			log.Fatal().Err(err).Str("FileName", buildOutputPath).Msg("could not write deck")
		}
		log.Info().Str("FileName", buildOutputPath).Msg("deck written")
	},
}

func init() {
	rootCmd.AddCommand(buildCmd)
	buildCmd.Flags().StringVarP(&buildConfigPath, "file", "f", "wbr.yaml", "path to the WBR config file")
	buildCmd.Flags().StringVar(&buildCSVPath, "csv", "", "optional CSV file overriding the merged data source")
	buildCmd.Flags().StringVarP(&buildOutputPath, "out", "o", "", "write the deck JSON here instead of stdout")
}
