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
	"os"

	"github.com/hashicorp/go-multierror"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
	"github.com/wbr-io/wbrctl/config"
)

var validateConfigPath string

// validateCmd runs config.Validate without loading any data sources,
// printing every accumulated error rather than stopping at the first one
// (spec.md §4.3 "Config Validator... collects every violation").
var validateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Check a WBR config file for errors without running it",
	Run: func(cmd *cobra.Command, args []string) {
		raw, err := os.ReadFile(validateConfigPath)
		if err != nil {
			log.Fatal().Err(err).Str("FileName", validateConfigPath).Msg("could not read config file")
		}

		cfg, err := config.Parse(raw)
		if err != nil {
			log.Error().Err(err).Msg("config is invalid")
			os.Exit(1)
		}

		if err := config.Validate(cfg); err != nil {
			if merr, ok := err.(*multierror.Error); ok {
				for _, e := range merr.Errors {
					log.Error().Err(e).Msg("config is invalid")
				}
			} else {
				log.Error().Err(err).Msg("config is invalid")
			}
			os.Exit(1)
		}

		log.Info().Str("FileName", validateConfigPath).Msg("config is valid")
	},
}

func init() {
	rootCmd.AddCommand(validateCmd)
	validateCmd.Flags().StringVarP(&validateConfigPath, "file", "f", "wbr.yaml", "path to the WBR config file")
}
