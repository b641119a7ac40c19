package restserver

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/seastate/heatwave/internal/database"
)

// Handlers holds the REST endpoint implementations
type Handlers struct {
	db     *database.Client
	logger *zap.SugaredLogger
}

// NewHandlers creates the handler set over a connected database client
func NewHandlers(db *database.Client, logger *zap.SugaredLogger) *Handlers {
	return &Handlers{db: db, logger: logger}
}

type eventResponse struct {
	PixelID             string   `json:"pixel_id"`
	JobID               string   `json:"job_id"`
	Mode                string   `json:"mode"`
	Start               string   `json:"start_date"`
	End                 string   `json:"end_date"`
	Peak                string   `json:"peak_date"`
	Duration            int      `json:"duration_days"`
	IntensityMean       float64  `json:"intensity_mean"`
	IntensityMax        float64  `json:"intensity_max"`
	IntensityCumulative float64  `json:"intensity_cumulative"`
	IntensityVar        *float64 `json:"intensity_var,omitempty"`
	RateOnset           *float64 `json:"rate_onset,omitempty"`
	RateDecline         *float64 `json:"rate_decline,omitempty"`
}

type countResponse struct {
	PixelID string `json:"pixel_id"`
	Year    int    `json:"year"`
	Count   int    `json:"count"`
}

type jobResponse struct {
	ID          string    `json:"id"`
	Mode        string    `json:"mode"`
	PixelCount  int       `json:"pixel_count"`
	FailedCount int       `json:"failed_count"`
	StartedAt   time.Time `json:"started_at"`
	FinishedAt  time.Time `json:"finished_at"`
}

// Health reports liveness
func (h *Handlers) Health(w http.ResponseWriter, req *http.Request) {
	h.writeJSON(w, map[string]string{"status": "ok"})
}

// EventsForPixel returns the stored events for one pixel, ordered by start date
func (h *Handlers) EventsForPixel(w http.ResponseWriter, req *http.Request) {
	pixelID := mux.Vars(req)["pixel"]

	records, err := h.db.EventsForPixel(req.Context(), pixelID)
	if err != nil {
		h.logger.Errorf("fetching events for %s: %v", pixelID, err)
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}

	events := make([]eventResponse, len(records))
	for i, rec := range records {
		events[i] = eventResponse{
			PixelID:             rec.PixelID,
			JobID:               rec.JobID,
			Mode:                rec.Mode,
			Start:               rec.Start.Format("2006-01-02"),
			End:                 rec.End.Format("2006-01-02"),
			Peak:                rec.Peak.Format("2006-01-02"),
			Duration:            rec.Duration,
			IntensityMean:       rec.IntensityMean,
			IntensityMax:        rec.IntensityMax,
			IntensityCumulative: rec.IntensityCumulative,
		}
		if rec.IntensityVar.Valid {
			v := rec.IntensityVar.Float64
			events[i].IntensityVar = &v
		}
		if rec.RateOnset.Valid {
			v := rec.RateOnset.Float64
			events[i].RateOnset = &v
		}
		if rec.RateDecline.Valid {
			v := rec.RateDecline.Float64
			events[i].RateDecline = &v
		}
	}
	h.writeJSON(w, events)
}

// CountsForPixel returns the stored annual event counts for one pixel
func (h *Handlers) CountsForPixel(w http.ResponseWriter, req *http.Request) {
	pixelID := mux.Vars(req)["pixel"]

	rows, err := h.db.CountsForPixel(req.Context(), pixelID)
	if err != nil {
		h.logger.Errorf("fetching counts for %s: %v", pixelID, err)
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}

	counts := make([]countResponse, len(rows))
	for i, row := range rows {
		counts[i] = countResponse{PixelID: row.PixelID, Year: row.Year, Count: row.Count}
	}
	h.writeJSON(w, counts)
}

// Job returns the summary of one batch run
func (h *Handlers) Job(w http.ResponseWriter, req *http.Request) {
	jobID := mux.Vars(req)["id"]

	job, err := h.db.Job(req.Context(), jobID)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		http.Error(w, "job not found", http.StatusNotFound)
		return
	}
	if err != nil {
		h.logger.Errorf("fetching job %s: %v", jobID, err)
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}

	h.writeJSON(w, jobResponse{
		ID:          job.ID,
		Mode:        job.Mode,
		PixelCount:  job.PixelCount,
		FailedCount: job.FailedCount,
		StartedAt:   job.StartedAt,
		FinishedAt:  job.FinishedAt,
	})
}

func (h *Handlers) writeJSON(w http.ResponseWriter, payload any) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		h.logger.Errorf("encoding response: %v", err)
	}
}
