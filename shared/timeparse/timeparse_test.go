package timeparse_test

import (
	"testing"
	"unibook/shared/constant"
	"unibook/shared/timeparse"
)

func TestBackend(t *testing.T) {
	tests := []struct {
		name   string
		raw    string
		wantOK bool
	}{
		{
			name:   "legacy locale format",
			raw:    "25/12/2025 09:30:00",
			wantOK: true,
		},
		{
			name:   "RFC3339",
			raw:    "2025-12-25T09:30:00Z",
			wantOK: true,
		},
		{
			name:   "bare date",
			raw:    "2025-12-25",
			wantOK: true,
		},
		{
			name:   "empty string",
			raw:    "",
			wantOK: false,
		},
		{
			name:   "garbage",
			raw:    "not a timestamp",
			wantOK: false,
		},
		{
			name:   "US-style date does not parse as legacy",
			raw:    "12/25/2025 09:30:00",
			wantOK: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, ok := timeparse.Backend(tt.raw)
			if ok != tt.wantOK {
				t.Errorf("Backend(%q) ok = %v, want %v", tt.raw, ok, tt.wantOK)
			}
		})
	}
}

func TestBackendLegacyBeatsRFC3339Ambiguity(t *testing.T) {
	got, ok := timeparse.Backend("01/02/2025 00:00:00")
	if !ok {
		t.Fatal("expected legacy timestamp to parse")
	}

	// Day first, month second.
	if got.Day() != 1 || got.Month() != 2 {
		t.Errorf("legacy format parsed as %v, want day=1 month=February", got)
	}
}

func TestFormatBackend(t *testing.T) {
	tests := []struct {
		name   string
		raw    string
		layout string
		want   string
	}{
		{
			name:   "legacy timestamp renders as day",
			raw:    "25/12/2025 09:30:00",
			layout: constant.DayFormat,
			want:   "2025-12-25",
		},
		{
			name:   "bare date round-trips",
			raw:    "2025-12-25",
			layout: constant.DayFormat,
			want:   "2025-12-25",
		},
		{
			name:   "unparsable renders as N/A",
			raw:    "soon",
			layout: constant.DayFormat,
			want:   timeparse.NotAvailable,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := timeparse.FormatBackend(tt.raw, tt.layout); got != tt.want {
				t.Errorf("FormatBackend(%q) = %q, want %q", tt.raw, got, tt.want)
			}
		})
	}
}
