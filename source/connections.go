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
	"io"
	"os"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/wbr-io/wbrctl/config"
	"github.com/wbr-io/wbrctl/wbrerr"
	"gopkg.in/yaml.v3"
)

var connectionsFileClient = resty.New().SetTimeout(30 * time.Second)

// LoadConnectionsFile reads setup.dbConfigUrl (an http(s) URL or a local
// path, spec.md §6 "connections.yaml"), returning an empty file when
// urlOrPath is blank: a config with no connections legitimately has
// nothing to load.
func LoadConnectionsFile(ctx context.Context, urlOrPath string) (*config.ConnectionsFile, error) {
	if urlOrPath == "" {
		return &config.ConnectionsFile{}, nil
	}

	var body io.ReadCloser
	if strings.HasPrefix(urlOrPath, "http://") || strings.HasPrefix(urlOrPath, "https://") {
		resp, err := connectionsFileClient.R().SetContext(ctx).SetDoNotParseResponse(true).Get(urlOrPath)
		if err != nil {
			return nil, wbrerr.Wrap(wbrerr.ConnectionError, "setup.dbConfigUrl", err)
		}
		if resp.StatusCode() >= 300 {
			resp.RawBody().Close()
			return nil, wbrerr.New(wbrerr.ConnectionError, "setup.dbConfigUrl", "fetching connections.yaml: non-2xx response")
		}
		body = resp.RawBody()
	} else {
		f, err := os.Open(urlOrPath)
		if err != nil {
			return nil, wbrerr.Wrap(wbrerr.ConnectionError, "setup.dbConfigUrl", err)
		}
		body = f
	}
	defer body.Close()

	raw, err := io.ReadAll(body)
	if err != nil {
		return nil, wbrerr.Wrap(wbrerr.ConnectionError, "setup.dbConfigUrl", err)
	}

	var cf config.ConnectionsFile
	if err := yaml.Unmarshal(raw, &cf); err != nil {
		return nil, wbrerr.Wrap(wbrerr.ConfigError, "setup.dbConfigUrl", err)
	}
	return &cf, nil
}
