package gridsource

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/seastate/heatwave/internal/timeseries"
)

// CSVSource reads pixel series from a flat CSV export with the columns
// pixel_id, date (YYYY-MM-DD), value. An empty value field marks a missing
// observation. A header row is detected and skipped.
type CSVSource struct {
	Path string
}

// NewCSVSource creates a source over the given CSV file.
func NewCSVSource(path string) *CSVSource {
	return &CSVSource{Path: path}
}

// Load reads the whole file and groups rows by pixel. Unparseable dates or
// values fail with timeseries.ErrInvalidInput so one bad export is caught
// before any detection runs.
func (s *CSVSource) Load(ctx context.Context) ([]PixelSeries, error) {
	f, err := os.Open(s.Path)
	if err != nil {
		return nil, fmt.Errorf("opening observations file: %w", err)
	}
	defer f.Close()

	reader := csv.NewReader(f)
	reader.FieldsPerRecord = 3

	byPixel := make(map[string][]timeseries.Observation)
	line := 0
	for {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("%w: reading %s: %v", timeseries.ErrInvalidInput, s.Path, err)
		}
		line++

		if line == 1 && strings.EqualFold(strings.TrimSpace(record[0]), "pixel_id") {
			continue
		}

		obs, err := parseRow(record)
		if err != nil {
			return nil, fmt.Errorf("%s line %d: %w", s.Path, line, err)
		}
		pixelID := strings.TrimSpace(record[0])
		byPixel[pixelID] = append(byPixel[pixelID], obs)
	}

	pixels := make([]PixelSeries, 0, len(byPixel))
	for id, obs := range byPixel {
		pixels = append(pixels, PixelSeries{PixelID: id, Observations: obs})
	}
	sort.Slice(pixels, func(i, j int) bool { return pixels[i].PixelID < pixels[j].PixelID })
	return pixels, nil
}

func parseRow(record []string) (timeseries.Observation, error) {
	date, err := time.Parse("2006-01-02", strings.TrimSpace(record[1]))
	if err != nil {
		return timeseries.Observation{}, fmt.Errorf("%w: unparseable date %q", timeseries.ErrInvalidInput, record[1])
	}

	raw := strings.TrimSpace(record[2])
	if raw == "" || strings.EqualFold(raw, "na") || strings.EqualFold(raw, "nan") {
		return timeseries.Observation{Date: date, Missing: true}, nil
	}

	value, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return timeseries.Observation{}, fmt.Errorf("%w: unparseable value %q", timeseries.ErrInvalidInput, record[2])
	}
	return timeseries.Observation{Date: date, Value: value}, nil
}
