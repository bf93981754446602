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
	"net/http"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
	"github.com/wbr-io/wbrctl/httpapi"
)

var serveAddr string

// serveCmd mounts the two routes spec.md §6 names as this repo's HTTP
// contract (GET /wbr-unit-test, POST /report).
var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the WBR HTTP contract (POST /report, GET /wbr-unit-test)",
	Run: func(cmd *cobra.Command, args []string) {
		log.Info().Str("Addr", serveAddr).Msg("starting wbrctl server")
		if err := http.ListenAndServe(serveAddr, httpapi.NewRouter()); err != nil {
			log.Fatal().Err(err).Msg("server exited")
		}
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)
	serveCmd.Flags().StringVar(&serveAddr, "addr", ":8080", "address to listen on")
}
