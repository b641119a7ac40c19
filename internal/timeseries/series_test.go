package timeseries

import (
	"errors"
	"testing"
	"time"
)

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func TestMakeWhole(t *testing.T) {
	tests := []struct {
		name        string
		input       []Observation
		wantLen     int
		wantMissing []int // indices expected to be missing
		wantErr     bool
	}{
		{
			name: "contiguous input unchanged",
			input: []Observation{
				{Date: date(2020, 1, 1), Value: 10},
				{Date: date(2020, 1, 2), Value: 11},
				{Date: date(2020, 1, 3), Value: 12},
			},
			wantLen: 3,
		},
		{
			name: "interior gap filled with missing",
			input: []Observation{
				{Date: date(2020, 1, 1), Value: 10},
				{Date: date(2020, 1, 5), Value: 14},
			},
			wantLen:     5,
			wantMissing: []int{1, 2, 3},
		},
		{
			name: "unsorted input sorted chronologically",
			input: []Observation{
				{Date: date(2020, 3, 3), Value: 3},
				{Date: date(2020, 3, 1), Value: 1},
				{Date: date(2020, 3, 2), Value: 2},
			},
			wantLen: 3,
		},
		{
			name: "explicit missing marker preserved",
			input: []Observation{
				{Date: date(2020, 1, 1), Value: 10},
				{Date: date(2020, 1, 2), Missing: true},
				{Date: date(2020, 1, 3), Value: 12},
			},
			wantLen:     3,
			wantMissing: []int{1},
		},
		{
			name: "single date rejected",
			input: []Observation{
				{Date: date(2020, 1, 1), Value: 10},
			},
			wantErr: true,
		},
		{
			name:    "empty input rejected",
			input:   nil,
			wantErr: true,
		},
		{
			name: "duplicate date rejected",
			input: []Observation{
				{Date: date(2020, 1, 1), Value: 10},
				{Date: date(2020, 1, 1), Value: 11},
				{Date: date(2020, 1, 2), Value: 12},
			},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			series, err := MakeWhole(tt.input)
			if tt.wantErr {
				if err == nil {
					t.Fatal("expected error, got nil")
				}
				if !errors.Is(err, ErrInvalidInput) {
					t.Fatalf("expected ErrInvalidInput, got %v", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if len(series) != tt.wantLen {
				t.Fatalf("expected %d entries, got %d", tt.wantLen, len(series))
			}
			for i := 1; i < len(series); i++ {
				if got := DaysBetween(series[i-1].Date, series[i].Date); got != 1 {
					t.Errorf("entries %d and %d are %d days apart, want 1", i-1, i, got)
				}
			}
			missing := make(map[int]bool)
			for _, i := range tt.wantMissing {
				missing[i] = true
			}
			for i, obs := range series {
				if obs.Missing != missing[i] {
					t.Errorf("entry %d: missing=%v, want %v", i, obs.Missing, missing[i])
				}
			}
		})
	}
}

func TestMakeWholeIdempotent(t *testing.T) {
	input := []Observation{
		{Date: date(2020, 1, 1), Value: 10},
		{Date: date(2020, 1, 4), Value: 13},
		{Date: date(2020, 1, 6), Value: 15},
	}

	once, err := MakeWhole(input)
	if err != nil {
		t.Fatalf("first pass: %v", err)
	}
	twice, err := MakeWhole(once)
	if err != nil {
		t.Fatalf("second pass: %v", err)
	}

	if len(once) != len(twice) {
		t.Fatalf("length changed: %d vs %d", len(once), len(twice))
	}
	for i := range once {
		if !once[i].Date.Equal(twice[i].Date) || once[i].Value != twice[i].Value || once[i].Missing != twice[i].Missing {
			t.Errorf("entry %d differs: %+v vs %+v", i, once[i], twice[i])
		}
	}
}

func TestSeriesIndexAndAt(t *testing.T) {
	series, err := MakeWhole([]Observation{
		{Date: date(2020, 1, 1), Value: 1},
		{Date: date(2020, 1, 10), Value: 10},
	})
	if err != nil {
		t.Fatal(err)
	}

	if got := series.Index(date(2020, 1, 5)); got != 4 {
		t.Errorf("Index(jan 5) = %d, want 4", got)
	}
	if got := series.Index(date(2019, 12, 31)); got != -1 {
		t.Errorf("Index before span = %d, want -1", got)
	}
	if got := series.Index(date(2020, 1, 11)); got != -1 {
		t.Errorf("Index after span = %d, want -1", got)
	}
	if obs, ok := series.At(date(2020, 1, 10)); !ok || obs.Value != 10 {
		t.Errorf("At(jan 10) = %+v, %v", obs, ok)
	}
}

func TestDayOfYear(t *testing.T) {
	tests := []struct {
		date time.Time
		want int
	}{
		{date(2020, 1, 1), 1},
		{date(2021, 1, 1), 1},
		{date(2020, 2, 28), 59},
		{date(2021, 2, 28), 59},
		{date(2020, 2, 29), 60}, // leap day occupies bucket 60
		{date(2020, 3, 1), 61},
		{date(2021, 3, 1), 61}, // aligned with leap years
		{date(2020, 12, 31), 366},
		{date(2021, 12, 31), 366},
	}

	for _, tt := range tests {
		if got := DayOfYear(tt.date); got != tt.want {
			t.Errorf("DayOfYear(%s) = %d, want %d", tt.date.Format("2006-01-02"), got, tt.want)
		}
	}
}

func TestWrapDOY(t *testing.T) {
	tests := []struct {
		in   int
		want int
	}{
		{1, 1},
		{366, 366},
		{367, 1},
		{0, 366},
		{-4, 361},
		{370, 4},
	}
	for _, tt := range tests {
		if got := WrapDOY(tt.in); got != tt.want {
			t.Errorf("WrapDOY(%d) = %d, want %d", tt.in, got, tt.want)
		}
	}
}
