package main

import (
	"context"
	"errors"
	"html"
	"io"
	"net/http"
	"net/http/cookiejar"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/rahul4469/medi-buddy/internal/config"
	"github.com/rahul4469/medi-buddy/internal/models"
	"github.com/rahul4469/medi-buddy/internal/services"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubPredictor struct {
	outcome models.Outcome
	calls   int
}

func (s *stubPredictor) Predict(ctx context.Context, form *models.FormSpec, values url.Values) models.Outcome {
	s.calls++
	return s.outcome
}

func testConfig() *config.Config {
	cfg := &config.Config{}
	cfg.Server.Environment = "development"
	cfg.Security.CSRFSecret = "0123456789abcdef0123456789abcdef"
	cfg.Prediction.BaseURL = "http://localhost:5000"
	cfg.Prediction.Timeout = time.Second
	return cfg
}

func newTestServer(t *testing.T, predictor *stubPredictor) http.Handler {
	t.Helper()
	forms, err := models.NewFormRegistry(models.DefaultForms()...)
	require.NoError(t, err)

	h, err := newRouter(testConfig(), routerDeps{Forms: forms, Predictor: predictor})
	require.NoError(t, err)
	return h
}

func TestRouterPages(t *testing.T) {
	h := newTestServer(t, &stubPredictor{})

	tests := []struct {
		path string
		code int
	}{
		{path: "/", code: http.StatusOK},
		{path: "/healthz", code: http.StatusOK},
		{path: "/diabetes", code: http.StatusOK},
		{path: "/heart", code: http.StatusOK},
		{path: "/parkinsons", code: http.StatusOK},
		{path: "/breast-cancer", code: http.StatusOK},
		{path: "/kidney", code: http.StatusNotFound},
		{path: "/static/html/heart.html", code: http.StatusMovedPermanently},
		{path: "/api/stats", code: http.StatusNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			rr := httptest.NewRecorder()
			h.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, tt.path, nil))
			assert.Equal(t, tt.code, rr.Code)
		})
	}
}

type downDatabase struct{}

func (downDatabase) Health(ctx context.Context) error {
	return errors.New("connection refused")
}

func TestRouterHealthPingsDatabase(t *testing.T) {
	forms, err := models.NewFormRegistry(models.DefaultForms()...)
	require.NoError(t, err)
	h, err := newRouter(testConfig(), routerDeps{Forms: forms, Predictor: &stubPredictor{}, Health: downDatabase{}})
	require.NoError(t, err)

	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/healthz", nil))

	assert.Equal(t, http.StatusServiceUnavailable, rr.Code)
}

func TestRouterMarksDevelopmentPages(t *testing.T) {
	h := newTestServer(t, &stubPredictor{})

	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/", nil))

	require.Equal(t, http.StatusOK, rr.Code)
	assert.Contains(t, rr.Body.String(), `<span class="badge text-bg-warning align-middle">dev</span>`)
}

func TestRouterRejectsPostWithoutCSRFToken(t *testing.T) {
	predictor := &stubPredictor{outcome: models.Result{Text: "The person is not diabetic"}}
	h := newTestServer(t, predictor)

	req := httptest.NewRequest(http.MethodPost, "/api/predict/diabetes", strings.NewReader("age=40"))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)

	assert.Equal(t, http.StatusForbidden, rr.Code)
	assert.Equal(t, 0, predictor.calls)
}

func TestRouterPostWithCSRFToken(t *testing.T) {
	predictor := &stubPredictor{outcome: models.Result{Text: "The person is not diabetic"}}
	h := newTestServer(t, predictor)

	// Fetch the page to obtain the CSRF cookie and token.
	page := httptest.NewRecorder()
	h.ServeHTTP(page, httptest.NewRequest(http.MethodGet, "/diabetes", nil))
	require.Equal(t, http.StatusOK, page.Code)

	token := extractMeta(t, page.Body.String(), "csrf-token")

	req := httptest.NewRequest(http.MethodPost, "/api/predict/diabetes", strings.NewReader("age=40"))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.Header.Set("X-CSRF-Token", token)
	for _, c := range page.Result().Cookies() {
		req.AddCookie(c)
	}

	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)

	assert.Equal(t, http.StatusOK, rr.Code)
	assert.JSONEq(t, `{"visible":true,"tone":"success","message":"The person is not diabetic"}`, rr.Body.String())
	assert.Equal(t, 1, predictor.calls)
}

func TestServerWritesSlowPredictions(t *testing.T) {
	tests := []struct {
		name  string
		delay time.Duration
		want  []string
	}{
		{
			name:  "answer inside the prediction timeout",
			delay: 400 * time.Millisecond,
			want:  []string{`alert alert-success mt-4`, "The person is not diabetic"},
		},
		{
			name:  "answer after the prediction timeout",
			delay: 3 * time.Second,
			want:  []string{`alert alert-warning mt-4`, models.FallbackMessage},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			backend := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				select {
				case <-time.After(tt.delay):
				case <-r.Context().Done():
					return
				}
				io.WriteString(w, `{"result":"The person is not diabetic"}`)
			}))
			defer backend.Close()

			cfg := testConfig()
			cfg.Prediction.BaseURL = backend.URL
			cfg.Prediction.Timeout = 800 * time.Millisecond
			cfg.Server.WriteTimeout = 2 * time.Second
			require.Greater(t, cfg.Server.WriteTimeout, cfg.Prediction.Timeout)

			forms, err := models.NewFormRegistry(models.DefaultForms()...)
			require.NoError(t, err)
			h, err := newRouter(cfg, routerDeps{
				Forms:     forms,
				Predictor: services.NewPredictionService(cfg.Prediction.BaseURL, cfg.Prediction.Timeout),
			})
			require.NoError(t, err)

			ts := httptest.NewUnstartedServer(h)
			ts.Config = newHTTPServer(cfg, h)
			ts.Start()
			defer ts.Close()

			jar, err := cookiejar.New(nil)
			require.NoError(t, err)
			client := ts.Client()
			client.Jar = jar

			page, err := client.Get(ts.URL + "/diabetes")
			require.NoError(t, err)
			body, err := io.ReadAll(page.Body)
			page.Body.Close()
			require.NoError(t, err)
			token := extractMeta(t, string(body), "csrf-token")

			resp, err := client.PostForm(ts.URL+"/diabetes", url.Values{
				"gorilla.csrf.Token": {token},
				"glucose":            {"148"},
			})
			require.NoError(t, err)
			defer resp.Body.Close()
			body, err = io.ReadAll(resp.Body)
			require.NoError(t, err)

			assert.Equal(t, http.StatusOK, resp.StatusCode)
			for _, want := range tt.want {
				assert.Contains(t, string(body), want)
			}
		})
	}
}

func extractMeta(t *testing.T, body, name string) string {
	t.Helper()
	marker := `<meta name="` + name + `" content="`
	start := strings.Index(body, marker)
	require.NotEqual(t, -1, start, "meta %s not found", name)
	rest := body[start+len(marker):]
	end := strings.Index(rest, `"`)
	require.NotEqual(t, -1, end)
	return html.UnescapeString(rest[:end])
}
