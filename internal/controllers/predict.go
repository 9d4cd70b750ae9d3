package controllers

import (
	"context"
	"errors"
	"log"
	"net/http"
	"net/url"
	"time"

	"github.com/gorilla/csrf"
	"github.com/rahul4469/medi-buddy/internal/middleware"
	"github.com/rahul4469/medi-buddy/internal/models"
	"github.com/rahul4469/medi-buddy/internal/views"
)

// maxFormMemory bounds multipart parsing of a submission.
const maxFormMemory = 1 << 20

// recentLimit is how many past outcomes a form page lists.
const recentLimit = 5

// Predictor sends one submission to the prediction service.
type Predictor interface {
	Predict(ctx context.Context, form *models.FormSpec, values url.Values) models.Outcome
}

// History stores submission outcomes. The controller works without one.
type History interface {
	Record(ctx context.Context, event *models.PredictionEvent) error
	Recent(ctx context.Context, formID string, limit int) ([]*models.PredictionEvent, error)
}

// PredictController handles the prediction forms. One controller serves
// every form; the form itself comes from the request context.
type PredictController struct {
	predictor Predictor
	history   History
	templates PredictTemplates
}

// PredictTemplates holds the templates for prediction pages.
type PredictTemplates struct {
	Form *views.Template
}

// NewPredictController creates a new PredictController. history may be nil.
func NewPredictController(predictor Predictor, history History, templates PredictTemplates) *PredictController {
	return &PredictController{
		predictor: predictor,
		history:   history,
		templates: templates,
	}
}

// FormPageData holds data for the form template.
type FormPageData struct {
	Form   *models.FormSpec
	Values url.Values
	Banner models.Banner
	Recent []*models.PredictionEvent
}

// Value returns the submitted value of a field, for refilling the form.
func (d *FormPageData) Value(name string) string {
	return d.Values.Get(name)
}

// GetForm renders an empty form with a hidden banner.
func (c *PredictController) GetForm(w http.ResponseWriter, r *http.Request) {
	form := middleware.MustCurrentForm(r)

	c.render(w, r, &FormPageData{
		Form:   form,
		Banner: models.NewBanner(),
	})
}

// PostForm handles a plain form post and renders the page again with the
// banner filled in.
func (c *PredictController) PostForm(w http.ResponseWriter, r *http.Request) {
	form := middleware.MustCurrentForm(r)

	values, banner := c.submit(r, form)

	c.render(w, r, &FormPageData{
		Form:   form,
		Values: values,
		Banner: banner,
	})
}

// PostAPI handles a script submission and answers with the banner as JSON.
// The status is 200 for every outcome; the tone carries the result.
func (c *PredictController) PostAPI(w http.ResponseWriter, r *http.Request) {
	form := middleware.MustCurrentForm(r)

	_, banner := c.submit(r, form)

	writeJSON(w, http.StatusOK, banner)
}

// GetHistory lists the latest recorded outcomes for a form.
func (c *PredictController) GetHistory(w http.ResponseWriter, r *http.Request) {
	form := middleware.MustCurrentForm(r)

	if c.history == nil {
		writeJSONError(w, http.StatusNotFound, models.ErrHistoryDisabled.Error())
		return
	}

	events, err := c.history.Recent(r.Context(), form.ID, recentLimit)
	if err != nil {
		log.Printf("Failed to load history for %s: %v", form.ID, err)
		writeJSONError(w, http.StatusInternalServerError, "failed to load history")
		return
	}
	if events == nil {
		events = []*models.PredictionEvent{}
	}

	writeJSON(w, http.StatusOK, events)
}

// submit runs one submission: parse, predict, render, record.
func (c *PredictController) submit(r *http.Request, form *models.FormSpec) (url.Values, models.Banner) {
	start := time.Now()

	var outcome models.Outcome
	values, err := parseSubmission(r)
	if err != nil {
		log.Printf("Invalid submission for %s: %v", form.ID, err)
		outcome = models.TransportError{Err: err}
	} else {
		outcome = c.predictor.Predict(r.Context(), form, values)
	}

	banner := models.RenderOutcome(models.NewBanner(), outcome, form.NegativeIndicator)

	if c.history != nil {
		event := models.NewPredictionEvent(form.ID, outcome, banner, time.Since(start))
		if err := c.history.Record(r.Context(), event); err != nil {
			log.Printf("Failed to record prediction for %s: %v", form.ID, err)
		}
	}

	return values, banner
}

func (c *PredictController) render(w http.ResponseWriter, r *http.Request, page *FormPageData) {
	if c.history != nil {
		recent, err := c.history.Recent(r.Context(), page.Form.ID, recentLimit)
		if err != nil {
			log.Printf("Failed to load recent predictions for %s: %v", page.Form.ID, err)
		}
		page.Recent = recent
	}

	data := &views.TemplateData{
		Title:     page.Form.Title,
		CSRFToken: csrf.Token(r),
		Data:      page,
	}
	c.templates.Form.ExecuteHTTP(w, r, data)
}

// parseSubmission accepts url-encoded and multipart bodies.
func parseSubmission(r *http.Request) (url.Values, error) {
	err := r.ParseMultipartForm(maxFormMemory)
	if err != nil && !errors.Is(err, http.ErrNotMultipart) {
		return nil, err
	}
	return r.PostForm, nil
}
