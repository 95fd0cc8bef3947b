package main

import (
	"context"
	"log"
	"log/slog"
	"net/http"
	"os"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	api "github.com/grade-pilot/gradepilot/internal/api/http"
	"github.com/grade-pilot/gradepilot/internal/assess"
	auth "github.com/grade-pilot/gradepilot/internal/auth/middleware"
	"github.com/grade-pilot/gradepilot/internal/config"
	"github.com/grade-pilot/gradepilot/internal/db"
	"github.com/grade-pilot/gradepilot/internal/llm"
	"github.com/grade-pilot/gradepilot/internal/rbac"
	"github.com/grade-pilot/gradepilot/internal/rubric"
	"github.com/grade-pilot/gradepilot/internal/scoring"
)

func main() {
	cfg := config.FromEnv()
	logger := slog.New(slog.NewTextHandler(os.Stderr, nil))

	// --- DB ---
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	dbh, err := db.Open(ctx, db.Driver(cfg.DBDriver), cfg.DBDSN)
	if err != nil {
		log.Fatalf("db open failed: %v", err)
	}
	store := assess.NewSQLStore(dbh, cfg.DBDriver)

	// --- Rubric catalog (loaded once, immutable) ---
	catalog, err := rubric.LoadDir(cfg.RubricDir)
	if err != nil {
		log.Fatalf("load rubrics from %s: %v", cfg.RubricDir, err)
	}
	if len(catalog) == 0 {
		log.Printf("warning: no rubrics found in %s", cfg.RubricDir)
	}

	// --- Model-call collaborator (optional) ---
	var assessor assess.Assessor
	if cfg.GeminiAPIKey != "" {
		assessor = llm.NewGemini(cfg.GeminiAPIKey, cfg.GeminiModel)
	}

	engine := scoring.NewEngine(scoring.WithLogger(logger))
	svc := assess.NewService(catalog, engine, assessor, store, logger)

	// --- Auth ---
	authSvc := auth.NewAuthService(cfg.AuthHMACSecret, cfg.AdminUser, cfg.AdminPassHash)

	// --- Router ---
	r := chi.NewRouter()
	r.Use(middleware.RequestID, middleware.RealIP, middleware.Logger, middleware.Recoverer)
	r.Use(middleware.Timeout(60 * time.Second))

	origins := cfg.CORSOriginsOffline
	if cfg.Mode == config.ModeOnline {
		origins = cfg.CORSOriginsOnline
	}
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   origins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Authorization", "Content-Type"},
		ExposedHeaders:   []string{"Content-Length", "Content-Disposition"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	r.Post("/auth/login", auth.LoginHandler(authSvc, dbh))

	// Protected API (JWT → role in context → RBAC)
	r.Group(func(pr chi.Router) {
		pr.Use(auth.JWTMiddleware(authSvc))

		pr.With(rbac.Require("rubric:view")).
			Get("/rubrics", api.ListRubricsHandler(svc))
		pr.With(rbac.Require("rubric:view")).
			Get("/rubrics/{rubricID}", api.GetRubricHandler(svc))
		pr.With(rbac.Require("rubric:preview")).
			Post("/rubrics/{rubricID}/preview", api.PreviewRubricHandler(svc))

		pr.With(rbac.Require("assessment:create")).
			Post("/assessments", api.CreateAssessmentHandler(svc))
		pr.With(rbac.Require("assessment:export")).
			Get("/assessments/export", api.ExportAssessmentsHandler(svc))
		pr.With(rbac.Require("assessment:view")).
			Get("/assessments", api.ListAssessmentsHandler(svc))
		pr.With(rbac.Require("assessment:view")).
			Get("/assessments/{assessmentID}", api.GetAssessmentHandler(svc))
	})

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(200) })
	r.Get("/readyz", func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(200) })

	log.Printf("listening on %s (mode=%s, db=%s, rubrics=%d, llm=%v)",
		cfg.HTTPAddr, cfg.Mode, cfg.DBDriver, len(catalog), assessor != nil)
	log.Fatal(http.ListenAndServe(cfg.HTTPAddr, r))
}
