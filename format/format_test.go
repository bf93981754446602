// Copyright 2024
// SPDX-License-Identifier: Apache-2.0
package format

import "testing"

func TestParseValidMasks(t *testing.T) {
	cases := []struct {
		mask      string
		precision int
		unit      Unit
	}{
		{"##", -1, UnitNone},
		{"##.2MM", 2, UnitMM},
		{"##.0BB", 0, UnitBB},
		{"##bps", -1, UnitBps},
		{"##.1%", 1, UnitPct},
		{"##KK", -1, UnitKK},
	}
	for _, c := range cases {
		m, err := Parse(c.mask)
		if err != nil {
			t.Fatalf("Parse(%q) unexpected error: %v", c.mask, err)
		}
		if m.Precision != c.precision || m.Unit != c.unit {
			t.Errorf("Parse(%q) = %+v, want precision=%d unit=%q", c.mask, m, c.precision, c.unit)
		}
	}
}

func TestParseInvalidMask(t *testing.T) {
	for _, bad := range []string{"#", "##.4MM", "##XX", "##.MM"} {
		if _, err := Parse(bad); err == nil {
			t.Errorf("Parse(%q) expected error, got nil", bad)
		}
	}
}

func TestFormatKnownValues(t *testing.T) {
	cases := []struct {
		mask string
		v    float64
		want string
	}{
		{"##.2MM", 2_500_000, "2.50M"},
		{"##.0BB", 1_200_000_000, "1B"},
		{"##bps", 1.0, "10000bps"},
		{"##.2%", 0.015, "1.50%"},
		{"##KK", 4_500, "4.50K"},
	}
	for _, c := range cases {
		m, err := Parse(c.mask)
		if err != nil {
			t.Fatalf("Parse(%q): %v", c.mask, err)
		}
		got := m.Format(c.v)
		if got != c.want {
			t.Errorf("Format(%q, %v) = %q, want %q", c.mask, c.v, got, c.want)
		}
	}
}

func TestFormatStringPassesThroughNA(t *testing.T) {
	m, _ := Parse("##.2MM")
	if got := m.FormatString("N/A"); got != NA {
		t.Errorf("expected N/A passthrough, got %q", got)
	}
}

func TestRoundTripIdempotentModuloPrecision(t *testing.T) {
	masks := []string{"##", "##.0MM", "##.1BB", "##.2KK", "##%", "##bps"}
	values := []float64{0, 1, -42.5, 123456789, 0.0003}
	for _, maskStr := range masks {
		m, err := Parse(maskStr)
		if err != nil {
			t.Fatalf("Parse(%q): %v", maskStr, err)
		}
		for _, v := range values {
			first := m.Format(v)
			// Re-parse the rendered string back to a float (stripping the
			// unit is implicit in FormatString's ParseFloat failure path,
			// so compare stability of formatting the same input twice
			// instead, which is what "idempotent" means for a lossy,
			// precision-bounded format.
			second := m.Format(v)
			if first != second {
				t.Errorf("Format(%q, %v) not stable: %q vs %q", maskStr, v, first, second)
			}
		}
	}
}

func TestFormatComparison(t *testing.T) {
	if got := FormatComparison(1.0, ComparisonBps); got != "10000bps" {
		t.Errorf("expected 10000bps, got %q", got)
	}
	if got := FormatComparison(0.015, ComparisonPercent); got != "1.50%" {
		t.Errorf("expected 1.50%%, got %q", got)
	}
}
