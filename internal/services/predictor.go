package services

import (
	"context"
	"fmt"
	"io"
	"log"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/rahul4469/medi-buddy/internal/models"
	"github.com/tidwall/gjson"
)

// maxResponseBytes caps how much of a prediction response is read.
const maxResponseBytes = 1 << 20

// PredictionService talks to the external model service. It sends one
// request per submission and never retries.
type PredictionService struct {
	baseURL    string
	httpClient *http.Client
}

// NewPredictionService creates a client for the service at baseURL.
// A zero timeout leaves outbound requests bounded only by their context.
func NewPredictionService(baseURL string, timeout time.Duration) *PredictionService {
	return &PredictionService{
		baseURL: strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{
			Timeout: timeout,
		},
	}
}

// Predict posts the form values to the form's endpoint and classifies the
// response. It never returns nil; failures come back as TransportError and
// are logged here.
func (s *PredictionService) Predict(ctx context.Context, form *models.FormSpec, values url.Values) models.Outcome {
	outcome, err := s.predict(ctx, form, values)
	if err != nil {
		log.Printf("Prediction request for %s failed: %v", form.ID, err)
		return models.TransportError{Err: err}
	}
	return outcome
}

func (s *PredictionService) predict(ctx context.Context, form *models.FormSpec, values url.Values) (models.Outcome, error) {
	req, err := http.NewRequestWithContext(
		ctx,
		http.MethodPost,
		s.baseURL+form.EndpointPath,
		strings.NewReader(form.Payload(values)),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.Header.Set("Accept", "application/json")

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to call prediction service: %w", err)
	}
	defer resp.Body.Close()

	// The status code is not inspected: the service reports business
	// errors in the body and anything else fails the JSON checks below.
	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}

	return ParsePrediction(body)
}

// ParsePrediction classifies a raw response body. A non-empty "error" wins
// over "result"; a body that is not JSON or lacks a string "result" is
// malformed.
func ParsePrediction(body []byte) (models.Outcome, error) {
	if !gjson.ValidBytes(body) {
		return nil, fmt.Errorf("%w: body is not JSON", models.ErrMalformedResponse)
	}

	parsed := gjson.ParseBytes(body)
	if !parsed.IsObject() {
		return nil, fmt.Errorf("%w: expected an object", models.ErrMalformedResponse)
	}

	if errField := parsed.Get("error"); truthy(errField) {
		// Objects and arrays are shown as their raw JSON text, e.g.
		// ["a"] rather than a.
		return models.DomainError{Message: errField.String()}, nil
	}

	result := parsed.Get("result")
	if result.Type != gjson.String {
		return nil, fmt.Errorf("%w: missing result", models.ErrMalformedResponse)
	}

	return models.Result{Text: result.String()}, nil
}

// truthy reports whether an "error" value counts as set. Empty strings,
// zero, false and null do not.
func truthy(r gjson.Result) bool {
	switch r.Type {
	case gjson.String:
		return r.Str != ""
	case gjson.Number:
		return r.Num != 0
	case gjson.True, gjson.JSON:
		return true
	default:
		return false
	}
}
