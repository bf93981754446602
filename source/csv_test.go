// Copyright 2024
// SPDX-License-Identifier: Apache-2.0
package source

import (
	"testing"
	"time"
)

func TestParseCSVDateLayouts(t *testing.T) {
	cases := map[string]time.Time{
		"2024-03-15": time.Date(2024, 3, 15, 0, 0, 0, 0, time.UTC),
		"03/15/2024": time.Date(2024, 3, 15, 0, 0, 0, 0, time.UTC),
		"15-Mar-2024": time.Date(2024, 3, 15, 0, 0, 0, 0, time.UTC),
	}
	for in, want := range cases {
		got, err := parseCSVDate(in)
		if err != nil {
			t.Fatalf("parseCSVDate(%q): %v", in, err)
		}
		if !got.Equal(want) {
			t.Errorf("parseCSVDate(%q) = %v, want %v", in, got, want)
		}
	}
}

func TestParseCSVDateRejectsUnknownFormat(t *testing.T) {
	if _, err := parseCSVDate("not-a-date"); err == nil {
		t.Error("expected error for unparseable date")
	}
}

func TestRecordsToTableSplitsNumericAndRaw(t *testing.T) {
	records := []map[string]string{
		{"Date": "2024-01-01", "Revenue": "100.5", "Country": "US"},
		{"Date": "2024-01-02", "Revenue": "200", "Country": "CA"},
	}
	tbl, err := recordsToTable(records)
	if err != nil {
		t.Fatalf("recordsToTable: %v", err)
	}
	if len(tbl.Rows) != 2 {
		t.Fatalf("expected 2 rows, got %d", len(tbl.Rows))
	}
	if tbl.Rows[0].Columns["Revenue"] != 100.5 {
		t.Errorf("expected Revenue=100.5, got %v", tbl.Rows[0].Columns["Revenue"])
	}
	if tbl.Rows[0].Raw["Country"] != "US" {
		t.Errorf("expected Country=US, got %v", tbl.Rows[0].Raw["Country"])
	}
}

func TestRecordsToTableMissingDateErrors(t *testing.T) {
	records := []map[string]string{{"Revenue": "1"}}
	if _, err := recordsToTable(records); err == nil {
		t.Error("expected error for missing Date column")
	}
}
