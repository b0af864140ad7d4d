package schedule

import (
	"errors"
	"strings"
	"testing"

	"github.com/lampctl/lampseq/internal/outlet"
)

func testMap(t *testing.T) *outlet.Map {
	t.Helper()
	m, err := outlet.NewMap([]outlet.Outlet{
		{Name: "halogen", Index: 1},
		{Name: "neon", Index: 2},
	})
	if err != nil {
		t.Fatalf("NewMap() error = %v", err)
	}
	return m
}

func TestPairs(t *testing.T) {
	tests := []struct {
		name    string
		raw     string
		want    []Entry
		wantErr bool
		errText string
	}{
		{
			name: "two lamps",
			raw:  "halogen 2 neon 0.5",
			want: []Entry{{"halogen", 2}, {"neon", 0.5}},
		},
		{
			name: "single lamp",
			raw:  "neon 3",
			want: []Entry{{"neon", 3}},
		},
		{
			name: "empty line",
			raw:  "",
			want: []Entry{},
		},
		{
			name: "extra whitespace",
			raw:  "  halogen   1.5  ",
			want: []Entry{{"halogen", 1.5}},
		},
		{
			name: "negative duration parses",
			raw:  "neon -1",
			want: []Entry{{"neon", -1}},
		},
		{
			name:    "odd token count",
			raw:     "halogen 2 neon",
			wantErr: true,
			errText: "odd token count",
		},
		{
			name:    "non-numeric time",
			raw:     "halogen fast",
			wantErr: true,
			errText: "fast",
		},
		{
			name:    "nan time",
			raw:     "halogen NaN",
			wantErr: true,
			errText: "NaN",
		},
		{
			name:    "infinite time",
			raw:     "halogen +Inf",
			wantErr: true,
			errText: "Inf",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Pairs(tt.raw)
			if tt.wantErr {
				if !errors.Is(err, ErrValidation) {
					t.Fatalf("Pairs(%q) error = %v, want ErrValidation", tt.raw, err)
				}
				if !strings.Contains(err.Error(), tt.errText) {
					t.Errorf("Pairs(%q) error %v should contain %q", tt.raw, err, tt.errText)
				}
				return
			}
			if err != nil {
				t.Fatalf("Pairs(%q) error = %v", tt.raw, err)
			}
			if len(got) != len(tt.want) {
				t.Fatalf("Pairs(%q) = %d entries, want %d", tt.raw, len(got), len(tt.want))
			}
			for i := range got {
				if got[i] != tt.want[i] {
					t.Errorf("Pairs(%q)[%d] = %+v, want %+v", tt.raw, i, got[i], tt.want[i])
				}
			}
		})
	}
}

func TestParse_ValidatesLamps(t *testing.T) {
	m := testMap(t)

	entries, err := Parse(m, "halogen 2 neon 3")
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}
	if len(entries) != 2 {
		t.Fatalf("Parse() = %d entries, want 2", len(entries))
	}

	// Unknown lamp rejects the whole line and names the lamp.
	_, err = Parse(m, "halogen 2 hgcd 3")
	if !errors.Is(err, ErrValidation) {
		t.Fatalf("Parse() error = %v, want ErrValidation", err)
	}
	if !errors.Is(err, outlet.ErrUnknownLamp) {
		t.Errorf("Parse() error = %v, want wrapped ErrUnknownLamp", err)
	}
	if !strings.Contains(err.Error(), "hgcd") {
		t.Errorf("Parse() error %v should name hgcd", err)
	}
}
