// Copyright 2024
// SPDX-License-Identifier: Apache-2.0
package annotation

import (
	"testing"
	"time"

	"github.com/wbr-io/wbrctl/calendar"
	"github.com/wbr-io/wbrctl/config"
)

func day(s string) time.Time {
	t, _ := time.Parse("2006-01-02", s)
	return t
}

func TestResolveDropsUnknownMetric(t *testing.T) {
	cfg := &config.Config{Metrics: map[string]*config.MetricDef{"revenue": {Name: "revenue"}}}
	cal := calendar.New(day("2024-03-29"), time.December)
	events := []Event{
		{MetricName: "revenue", Date: day("2024-03-25"), Text: "promo"},
		{MetricName: "unknownMetric", Date: day("2024-03-25"), Text: "ghost"},
	}
	resolved, warnings := Resolve(cfg, cal, events)
	if len(resolved) != 1 {
		t.Fatalf("expected 1 resolved event, got %d", len(resolved))
	}
	if len(warnings) != 1 {
		t.Fatalf("expected 1 warning for unknown metric, got %d", len(warnings))
	}
}

func TestResolveDedupeLastInInputOrderWins(t *testing.T) {
	cfg := &config.Config{Metrics: map[string]*config.MetricDef{"revenue": {Name: "revenue"}}}
	cal := calendar.New(day("2024-03-29"), time.December)
	events := []Event{
		{MetricName: "revenue", Date: day("2024-03-25"), Text: "first"},
		{MetricName: "revenue", Date: day("2024-03-25"), Text: "second"},
	}
	resolved, _ := Resolve(cfg, cal, events)
	if len(resolved) != 1 {
		t.Fatalf("expected dedup to 1 event, got %d", len(resolved))
	}
	if resolved[0].Text != "second" {
		t.Errorf("expected last-in-input-order to win, got %q", resolved[0].Text)
	}
}

func TestResolveDropsOutOfWindowEvents(t *testing.T) {
	cfg := &config.Config{Metrics: map[string]*config.MetricDef{"revenue": {Name: "revenue"}}}
	cal := calendar.New(day("2024-03-29"), time.December)
	events := []Event{
		{MetricName: "revenue", Date: day("2020-01-01"), Text: "ancient"},
	}
	resolved, warnings := Resolve(cfg, cal, events)
	if len(resolved) != 0 || len(warnings) != 0 {
		t.Errorf("expected out-of-window event silently dropped, got resolved=%d warnings=%d", len(resolved), len(warnings))
	}
}
