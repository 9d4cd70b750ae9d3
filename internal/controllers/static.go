package controllers

import (
	"context"
	"encoding/json"
	"log"
	"net/http"

	"github.com/rahul4469/medi-buddy/internal/models"
	"github.com/rahul4469/medi-buddy/internal/views"
)

// ToneCounter reports how many recorded outcomes ended in each tone.
type ToneCounter interface {
	CountByTone(ctx context.Context) (map[models.Tone]int, error)
}

// StaticController handles the home page and the read-only endpoints.
type StaticController struct {
	forms     *models.FormRegistry
	counter   ToneCounter
	templates StaticTemplates
}

// StaticTemplates holds templates for static pages.
type StaticTemplates struct {
	Home *views.Template
}

// NewStaticController creates a new StaticController. counter may be nil
// when history is disabled.
func NewStaticController(forms *models.FormRegistry, counter ToneCounter, templates StaticTemplates) *StaticController {
	return &StaticController{
		forms:     forms,
		counter:   counter,
		templates: templates,
	}
}

// HomeData holds data for the home page template.
type HomeData struct {
	Forms []*models.FormSpec
	Stats *StatsData
}

// StatsData is the tone breakdown of recorded outcomes.
type StatsData struct {
	Total int         `json:"total"`
	Tones []ToneCount `json:"tones"`
}

// ToneCount is one row of StatsData.
type ToneCount struct {
	Tone  models.Tone `json:"tone"`
	Count int         `json:"count"`
}

// GetHome renders the home page.
func (c *StaticController) GetHome(w http.ResponseWriter, r *http.Request) {
	data := &views.TemplateData{
		Title: "Home",
		Data: HomeData{
			Forms: c.forms.All(),
		},
	}

	if c.counter != nil {
		stats, err := c.stats(r.Context())
		if err != nil {
			log.Printf("Failed to load prediction stats: %v", err)
			data.Warning = "Prediction statistics are unavailable right now."
		} else {
			data.Data = HomeData{Forms: c.forms.All(), Stats: stats}
		}
	}

	c.templates.Home.ExecuteHTTP(w, r, data)
}

// GetStats returns the tone breakdown as JSON.
func (c *StaticController) GetStats(w http.ResponseWriter, r *http.Request) {
	if c.counter == nil {
		writeJSONError(w, http.StatusNotFound, models.ErrHistoryDisabled.Error())
		return
	}

	stats, err := c.stats(r.Context())
	if err != nil {
		log.Printf("Failed to load prediction stats: %v", err)
		writeJSONError(w, http.StatusInternalServerError, "failed to load stats")
		return
	}

	writeJSON(w, http.StatusOK, stats)
}

func (c *StaticController) stats(ctx context.Context) (*StatsData, error) {
	counts, err := c.counter.CountByTone(ctx)
	if err != nil {
		return nil, err
	}

	stats := &StatsData{}
	for _, tone := range []models.Tone{models.ToneSuccess, models.ToneDanger, models.ToneWarning} {
		stats.Tones = append(stats.Tones, ToneCount{Tone: tone, Count: counts[tone]})
		stats.Total += counts[tone]
	}
	return stats, nil
}

// Pinger reports whether a backing store is reachable.
type Pinger interface {
	Health(ctx context.Context) error
}

// HealthCheck returns a health handler for monitoring. db may be nil when
// history is disabled; otherwise it is pinged on every request.
func HealthCheck(db Pinger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if db != nil {
			if err := db.Health(r.Context()); err != nil {
				log.Printf("Health check failed: %v", err)
				writeJSON(w, http.StatusServiceUnavailable, map[string]string{
					"status":   "unavailable",
					"database": "unreachable",
				})
				return
			}
		}
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	}
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Printf("Failed to write JSON response: %v", err)
	}
}

func writeJSONError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}
