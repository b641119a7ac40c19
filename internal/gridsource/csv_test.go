package gridsource

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/seastate/heatwave/internal/timeseries"
)

func writeCSV(t *testing.T, contents string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "observations.csv")
	if err := os.WriteFile(path, []byte(contents), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestCSVSourceLoad(t *testing.T) {
	path := writeCSV(t, `pixel_id,date,value
px-0-0,2020-01-01,12.1
px-0-0,2020-01-02,
px-0-0,2020-01-03,12.3
px-1-0,2020-01-01,14.0
px-1-0,2020-01-02,14.5
`)

	pixels, err := NewCSVSource(path).Load(context.Background())
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	if len(pixels) != 2 {
		t.Fatalf("got %d pixels, want 2", len(pixels))
	}
	if pixels[0].PixelID != "px-0-0" || pixels[1].PixelID != "px-1-0" {
		t.Fatalf("pixel order: %s, %s", pixels[0].PixelID, pixels[1].PixelID)
	}

	obs := pixels[0].Observations
	if len(obs) != 3 {
		t.Fatalf("px-0-0 has %d observations, want 3", len(obs))
	}
	if !obs[1].Missing {
		t.Error("empty value field should be missing")
	}
	if obs[2].Value != 12.3 {
		t.Errorf("third value = %g, want 12.3", obs[2].Value)
	}
	want := time.Date(2020, 1, 1, 0, 0, 0, 0, time.UTC)
	if !obs[0].Date.Equal(want) {
		t.Errorf("first date = %s", obs[0].Date)
	}
}

func TestCSVSourceNAMarkers(t *testing.T) {
	path := writeCSV(t, `px-0-0,2020-01-01,NA
px-0-0,2020-01-02,NaN
px-0-0,2020-01-03,11.5
`)

	pixels, err := NewCSVSource(path).Load(context.Background())
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	obs := pixels[0].Observations
	if !obs[0].Missing || !obs[1].Missing || obs[2].Missing {
		t.Errorf("NA markers not honored: %+v", obs)
	}
}

func TestCSVSourceBadInput(t *testing.T) {
	tests := []struct {
		name     string
		contents string
	}{
		{"unparseable date", "px-0-0,01/02/2020,11.5\n"},
		{"unparseable value", "px-0-0,2020-01-01,warm\n"},
		{"wrong column count", "px-0-0,2020-01-01\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := writeCSV(t, tt.contents)
			_, err := NewCSVSource(path).Load(context.Background())
			if err == nil {
				t.Fatal("expected error")
			}
			if !errors.Is(err, timeseries.ErrInvalidInput) {
				t.Fatalf("expected ErrInvalidInput, got %v", err)
			}
		})
	}
}

func TestCSVSourceMissingFile(t *testing.T) {
	_, err := NewCSVSource(filepath.Join(t.TempDir(), "nope.csv")).Load(context.Background())
	if err == nil {
		t.Fatal("expected error for missing file")
	}
}
