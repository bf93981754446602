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

// Package source loads DailyTables from the connectors and CSV files named
// in a config's dataSources block (spec.md §4.4 "Source Loader").
package source

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/wbr-io/wbrctl/config"
	"github.com/wbr-io/wbrctl/table"
	"github.com/wbr-io/wbrctl/wbrerr"
)

// Connector runs a query against a configured data source and returns the
// result as a DailyTable, with a "Date" column canonicalized by the
// implementation (spec.md §4.4 "every connector must canonicalize its date
// column to Date").
type Connector interface {
	Query(ctx context.Context, query string) (*table.DailyTable, error)
	Close()
}

// PostgresLike is implemented by connectors backed by a pgxpool.Pool
// (postgres, redshift), letting the annotation loader reuse the same live
// pool for its fixed-shape Event scans instead of opening a second
// connection.
type PostgresLike interface {
	Pool() *pgxpool.Pool
}

// Registry holds live connectors keyed by the connection name they were
// built from (connections.yaml's `name` field).
type Registry struct {
	connectors map[string]Connector
}

// NewRegistry builds a Connector for every entry of connectionsFile,
// resolving any {service, secretName} indirections via secrets.go.
func NewRegistry(ctx context.Context, connectionsFile *config.ConnectionsFile) (*Registry, error) {
	if connectionsFile == nil {
		connectionsFile = &config.ConnectionsFile{}
	}
	reg := &Registry{connectors: make(map[string]Connector, len(connectionsFile.Connections))}
	for _, def := range connectionsFile.Connections {
		conn, err := newConnector(ctx, def)
		if err != nil {
			reg.Close()
			return nil, wbrerr.Wrap(wbrerr.ConnectionError, "connections."+def.Name, err)
		}
		reg.connectors[def.Name] = conn
	}
	return reg, nil
}

// Get returns the connector registered under name.
func (r *Registry) Get(name string) (Connector, bool) {
	c, ok := r.connectors[name]
	return c, ok
}

// Close releases every connector held by the registry.
func (r *Registry) Close() {
	for _, c := range r.connectors {
		c.Close()
	}
}

func newConnector(ctx context.Context, def config.ConnectionDef) (Connector, error) {
	switch def.Type {
	case config.ConnPostgres, config.ConnRedshift:
		return newPostgresConnector(ctx, def)
	case config.ConnSnowflake:
		return newSnowflakeConnector(ctx, def)
	case config.ConnAthena:
		return newAthenaConnector(ctx, def)
	default:
		return nil, fmt.Errorf("unknown connection type %q", def.Type)
	}
}

// resolveConfigString reads a string-valued config entry, transparently
// resolving a nested `{service: aws, secretName: ...}` map into the
// looked-up secret value (spec.md §6 "connection config values may be a
// secret reference").
func resolveConfigString(ctx context.Context, cfg map[string]interface{}, key string) (string, error) {
	v, ok := cfg[key]
	if !ok {
		return "", fmt.Errorf("missing config key %q", key)
	}
	switch val := v.(type) {
	case string:
		return val, nil
	case map[string]interface{}:
		service, _ := val["service"].(string)
		secretName, _ := val["secretName"].(string)
		if service != "aws" || secretName == "" {
			return "", fmt.Errorf("config key %q: unsupported secret reference", key)
		}
		return ResolveAWSSecret(ctx, secretName)
	default:
		return "", fmt.Errorf("config key %q: expected string or secret reference", key)
	}
}
