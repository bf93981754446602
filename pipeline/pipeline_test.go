// Copyright 2024
// SPDX-License-Identifier: Apache-2.0
package pipeline

import (
	"testing"

	"github.com/wbr-io/wbrctl/config"
)

func TestOverridesApplyReparsesWeekEnding(t *testing.T) {
	cfg := &config.Config{Setup: config.Setup{WeekEnding: "29-Mar-2024"}}
	if err := config.ReparseWeekEnding(cfg); err != nil {
		t.Fatalf("seed parse: %v", err)
	}

	o := Overrides{WeekEnding: "05-Apr-2024", Title: "Override Title"}
	if err := o.apply(cfg); err != nil {
		t.Fatalf("apply: %v", err)
	}
	if cfg.Setup.Title != "Override Title" {
		t.Errorf("expected title override to apply")
	}
	if got := cfg.Setup.ParsedWeekEnding.Format("2006-01-02"); got != "2024-04-05" {
		t.Errorf("expected weekEnding override to reparse, got %s", got)
	}
}

func TestOverridesApplyRejectsBadWeekEnding(t *testing.T) {
	cfg := &config.Config{Setup: config.Setup{WeekEnding: "29-Mar-2024"}}
	o := Overrides{WeekEnding: "not-a-date"}
	if err := o.apply(cfg); err == nil {
		t.Errorf("expected malformed weekEnding override to error")
	}
}
