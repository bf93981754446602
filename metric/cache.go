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
package metric

import "github.com/alphadose/haxmap"

// GrowthCache memoizes WOW/MOM/YOY derivative lookups for the lifetime of
// one build (spec.md §9 "Reserved-suffix auto metrics... cache results per
// build"). Deck blocks frequently reference the same derivative from
// multiple call sites within a build. The Deck Builder renders blocks one
// after another; the lock-free haxmap keeps the cache safe for concurrent
// use as well (see DESIGN.md).
type GrowthCache struct {
	values *haxmap.Map[string, float64]
}

// NewGrowthCache returns an empty cache, scoped to one Evaluate/Build call.
func NewGrowthCache() *GrowthCache {
	return &GrowthCache{values: haxmap.New[string, float64]()}
}

func (c *GrowthCache) get(key string) (float64, bool) {
	return c.values.Get(key)
}

func (c *GrowthCache) set(key string, v float64) {
	c.values.Set(key, v)
}
