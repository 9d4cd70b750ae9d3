package main

import (
	"context"
	"fmt"
	"log"
	"net/http"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/gorilla/csrf"
	"github.com/rahul4469/medi-buddy/internal/config"
	"github.com/rahul4469/medi-buddy/internal/controllers"
	"github.com/rahul4469/medi-buddy/internal/middleware"
	"github.com/rahul4469/medi-buddy/internal/models"
	"github.com/rahul4469/medi-buddy/internal/services"
	"github.com/rahul4469/medi-buddy/internal/views"
	"github.com/rahul4469/medi-buddy/migrations"
	"github.com/rahul4469/medi-buddy/templates"
)

func main() {
	cfg := config.MustLoad()

	err := run(cfg)
	if err != nil {
		log.Fatal(err)
	}
}

func run(cfg *config.Config) error {
	ctx := context.Background()

	// Setup Forms ---------------
	forms, err := models.NewFormRegistry(models.DefaultForms()...)
	if err != nil {
		return fmt.Errorf("failed to register forms: %w", err)
	}

	// Setup the Database (optional) ---------------
	var history *models.HistoryService
	var database *models.Database
	if cfg.Database.Enabled() {
		log.Println("Connecting to database...")
		db, err := models.NewDatabase(ctx, models.DefaultDatabaseConfig(cfg.Database.URL))
		if err != nil {
			return err
		}
		defer db.Close()
		log.Println("Database connected successfully")

		if err := db.Migrate(migrations.FS); err != nil {
			return err
		}
		history = models.NewHistoryService(db.Pool)
		database = db
	} else {
		log.Println("DATABASE_URL not set, prediction history disabled")
	}

	// Setup Services ---------------
	predictionService := services.NewPredictionService(cfg.Prediction.BaseURL, cfg.Prediction.Timeout)

	deps := routerDeps{
		Forms:     forms,
		Predictor: predictionService,
	}
	// Leave the interfaces nil rather than holding a nil pointer.
	if history != nil {
		deps.History = history
		deps.Counter = history
		deps.Health = database
	}

	r, err := newRouter(cfg, deps)
	if err != nil {
		return err
	}

	srv := newHTTPServer(cfg, r)

	// Start the Server
	log.Printf("Starting server at %s (prediction service %s, timeout %s)", srv.Addr, cfg.Prediction.BaseURL, cfg.Prediction.Timeout)
	return srv.ListenAndServe()
}

func newHTTPServer(cfg *config.Config, h http.Handler) *http.Server {
	return &http.Server{
		Addr:         cfg.Server.Address(),
		Handler:      h,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}
}

type routerDeps struct {
	Forms     *models.FormRegistry
	Predictor controllers.Predictor
	History   controllers.History
	Counter   controllers.ToneCounter
	Health    controllers.Pinger
}

func newRouter(cfg *config.Config, deps routerDeps) (http.Handler, error) {
	// Setup Templates ---------------
	nav := views.Navigation(deps.Forms.All())
	homeTpl, err := views.ParseFS(templates.FS, "pages/home.gohtml")
	if err != nil {
		return nil, err
	}
	formTpl, err := views.ParseFS(templates.FS, "pages/form.gohtml")
	if err != nil {
		return nil, err
	}

	// Setup Controllers ---------------
	staticCtrl := controllers.NewStaticController(deps.Forms, deps.Counter, controllers.StaticTemplates{
		Home: homeTpl.WithNav(nav).WithDevelopment(cfg.IsDevelopment()),
	})
	predictCtrl := controllers.NewPredictController(deps.Predictor, deps.History, controllers.PredictTemplates{
		Form: formTpl.WithNav(nav).WithDevelopment(cfg.IsDevelopment()),
	})

	formMw := middleware.NewFormMiddleware(deps.Forms)
	csrfMw := csrf.Protect(
		[]byte(cfg.Security.CSRFSecret),
		csrf.Secure(cfg.Security.SecureCookies),
		csrf.Path("/"),
		csrf.TrustedOrigins(cfg.Security.TrustedOrigins),
	)

	// Setup router and routes
	r := chi.NewRouter()
	r.Use(chimw.RequestID)
	r.Use(chimw.Logger)
	r.Use(chimw.Recoverer)
	if !cfg.Security.SecureCookies {
		r.Use(middleware.Plaintext)
	}

	r.Get("/healthz", controllers.HealthCheck(deps.Health))
	r.Get("/static/html/{page}.html", formMw.LegacyPages)

	r.Group(func(r chi.Router) {
		r.Use(csrfMw)

		r.Get("/", staticCtrl.GetHome)

		r.Route("/api", func(r chi.Router) {
			r.Get("/stats", staticCtrl.GetStats)
			r.With(formMw.SetForm).Post("/predict/{form}", predictCtrl.PostAPI)
			r.With(formMw.SetForm).Get("/history/{form}", predictCtrl.GetHistory)
		})

		r.With(formMw.SetForm).Get("/{form}", predictCtrl.GetForm)
		r.With(formMw.SetForm).Post("/{form}", predictCtrl.PostForm)
	})

	return r, nil
}
