package core

import (
	"encoding/json"
	"testing"
)

func TestParseDecimalToCents(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    int64
		wantErr bool
	}{
		{name: "dot separator", input: "12.34", want: 1234},
		{name: "comma separator", input: "12,34", want: 1234},
		{name: "integer only", input: "7", want: 700},
		{name: "single fractional digit", input: "4.5", want: 450},
		{name: "third digit rounds down", input: "12.344", want: 1234},
		{name: "third digit rounds up", input: "12.345", want: 1235},
		{name: "zero", input: "0", want: 0},
		{name: "zero with fraction", input: "0.00", want: 0},
		{name: "negative", input: "-3.25", want: -325},
		{name: "explicit plus", input: "+3.25", want: 325},
		{name: "leading whitespace", input: "  8.10", want: 810},
		{name: "empty", input: "", wantErr: true},
		{name: "letters", input: "abc", wantErr: true},
		{name: "two separators", input: "1.2.3", wantErr: true},
		{name: "mixed digits", input: "12x.30", wantErr: true},
		{name: "overflow", input: "92233720368547758080.00", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseDecimalToCents(tt.input)
			if tt.wantErr {
				if err == nil {
					t.Fatalf("ParseDecimalToCents(%q) expected error, got %d", tt.input, got)
				}
				return
			}
			if err != nil {
				t.Fatalf("ParseDecimalToCents(%q) unexpected error: %v", tt.input, err)
			}
			if got != tt.want {
				t.Errorf("ParseDecimalToCents(%q) = %d, want %d", tt.input, got, tt.want)
			}
		})
	}
}

func TestMoneyString(t *testing.T) {
	tests := []struct {
		cents int64
		want  string
	}{
		{0, "0.00"},
		{5, "0.05"},
		{450, "4.50"},
		{123456, "1234.56"},
		{-325, "-3.25"},
	}

	for _, tt := range tests {
		if got := (Money{Cents: tt.cents}).String(); got != tt.want {
			t.Errorf("Money{%d}.String() = %q, want %q", tt.cents, got, tt.want)
		}
	}
}

func TestMoneyJSONRoundTrip(t *testing.T) {
	out, err := json.Marshal(Money{Cents: 450})
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	if string(out) != `"4.50"` {
		t.Errorf("marshal = %s, want \"4.50\"", out)
	}

	var m Money
	if err := json.Unmarshal([]byte(`"4.50"`), &m); err != nil {
		t.Fatalf("unmarshal string: %v", err)
	}
	if m.Cents != 450 {
		t.Errorf("unmarshal string = %d cents, want 450", m.Cents)
	}

	// Bare JSON numbers are tolerated for lenient clients.
	if err := json.Unmarshal([]byte(`4.5`), &m); err != nil {
		t.Fatalf("unmarshal number: %v", err)
	}
	if m.Cents != 450 {
		t.Errorf("unmarshal number = %d cents, want 450", m.Cents)
	}
}
