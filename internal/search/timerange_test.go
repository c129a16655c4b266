package search

import (
	"testing"
	"time"
)

func TestParseTimeRange(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		wantErr bool
		start   string
		end     string
	}{
		{name: "closed range", input: "2018-01-01~2020-01-01", start: "2018-01-01", end: "2020-01-01"},
		{name: "open start", input: "~2020-01-01", end: "2020-01-01"},
		{name: "open end", input: "2018-01-01~", start: "2018-01-01"},
		{name: "single day", input: "2020-05-05~2020-05-05", start: "2020-05-05", end: "2020-05-05"},
		{name: "both empty", input: "~", wantErr: true},
		{name: "no separator", input: "2018-01-01", wantErr: true},
		{name: "start after end", input: "2020-01-01~2018-01-01", wantErr: true},
		{name: "garbage start", input: "notadate~2020-01-01", wantErr: true},
		{name: "garbage end", input: "2018-01-01~notadate", wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r, err := ParseTimeRange(tt.input)
			if tt.wantErr {
				if err == nil {
					t.Fatalf("ParseTimeRange(%q) expected error, got %+v", tt.input, r)
				}
				return
			}
			if err != nil {
				t.Fatalf("ParseTimeRange(%q): %v", tt.input, err)
			}
			if tt.start == "" && !r.Start.IsZero() {
				t.Errorf("expected open start, got %v", r.Start)
			}
			if tt.start != "" && r.Start.Format("2006-01-02") != tt.start {
				t.Errorf("start = %v, want %s", r.Start, tt.start)
			}
			if tt.end == "" && !r.End.IsZero() {
				t.Errorf("expected open end, got %v", r.End)
			}
			if tt.end != "" && r.End.Format("2006-01-02") != tt.end {
				t.Errorf("end = %v, want %s", r.End, tt.end)
			}
		})
	}
}

func TestEpochBoundsInclusive(t *testing.T) {
	r, err := ParseTimeRange("2020-01-01~2020-01-02")
	if err != nil {
		t.Fatal(err)
	}
	start, end := r.EpochBounds()
	if start == nil || end == nil {
		t.Fatal("expected both bounds set")
	}
	wantStart := time.Date(2020, 1, 1, 0, 0, 0, 0, time.UTC).Unix()
	wantEnd := time.Date(2020, 1, 2, 23, 59, 59, 0, time.UTC).Unix()
	if *start != wantStart {
		t.Errorf("start = %d, want %d", *start, wantStart)
	}
	if *end != wantEnd {
		t.Errorf("end = %d, want %d", *end, wantEnd)
	}
}

func TestEpochBoundsOpenSides(t *testing.T) {
	r, err := ParseTimeRange("~2020-01-01")
	if err != nil {
		t.Fatal(err)
	}
	start, end := r.EpochBounds()
	if start != nil {
		t.Errorf("expected nil start, got %d", *start)
	}
	if end == nil {
		t.Fatal("expected end bound set")
	}
}
