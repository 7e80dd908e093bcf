package main

import (
	"errors"
	"log"
	"net/http"
	"path/filepath"
	"time"

	"github.com/go-chi/httprate"
	"github.com/gorilla/mux"
	"github.com/matchminds/backend/internal/auth"
	"github.com/matchminds/backend/internal/compatibility"
	"github.com/matchminds/backend/internal/config"
	"github.com/matchminds/backend/internal/database"
	"github.com/matchminds/backend/internal/insight"
	"github.com/matchminds/backend/internal/middleware"
	"github.com/matchminds/backend/internal/model"
	"github.com/matchminds/backend/internal/questionnaire"
	"github.com/matchminds/backend/internal/session"
	"github.com/matchminds/backend/internal/suggestions"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/cors"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Invalid configuration: %v", err)
	}

	// Initialize database
	db, err := database.Connect(cfg.DSN())
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer db.Close()

	if err := database.Migrate(db); err != nil {
		log.Fatalf("Failed to run migrations: %v", err)
	}

	// Load trained artifacts
	bundle, err := model.LoadBundle(cfg.ArtifactDir)
	if errors.Is(err, model.ErrArtifactMissing) {
		log.Fatalf("No trained model in %s: %v", cfg.ArtifactDir, err)
	}
	if err != nil {
		log.Fatalf("Failed to load artifacts: %v", err)
	}

	bank, err := questionnaire.Load(cfg.QuestionnairePath)
	if err != nil {
		log.Fatalf("Failed to load questionnaire: %v", err)
	}

	rows, err := suggestions.LoadRows(filepath.Join(cfg.ArtifactDir, model.ClusteredFile))
	if err != nil {
		log.Fatalf("Failed to load clustered dataset: %v", err)
	}

	// Initialize services
	sessions := session.NewIssuer(cfg.JWTSecret)
	tips := insight.NewGenerator(cfg.InsightMode, cfg.AnthropicModel, cfg.AnthropicAPIKey)
	store := compatibility.NewStore(db)

	compatService, err := compatibility.NewService(bundle, bank, cfg.CacheSize, store, sessions, tips)
	if err != nil {
		log.Fatalf("Failed to initialize compatibility service: %v", err)
	}
	selector := suggestions.NewSelector(rows, bundle.Model.Fingerprint(), uint64(time.Now().UnixNano()))
	compatService.OnReload(selector.Reload)

	// Initialize handlers
	authHandler := auth.NewHandler(cfg.AdminPasswordHash, cfg.JWTSecret)
	compatHandler := compatibility.NewHandler(compatService, store)
	suggestionHandler := suggestions.NewHandler(selector, sessions)

	// Setup router
	r := mux.NewRouter()
	api := r.PathPrefix("/api/v1").Subrouter()
	api.Use(httprate.LimitByIP(cfg.RateLimitPerMinute, time.Minute))

	// Public routes
	api.HandleFunc("/questionnaire", compatHandler.GetQuestionnaire).Methods("GET")
	api.HandleFunc("/form/progress", compatHandler.FormProgress).Methods("POST")
	api.HandleFunc("/compatibility", compatHandler.CheckCompatibility).Methods("POST")
	api.HandleFunc("/suggestions", suggestionHandler.GetSuggestions).Methods("GET")
	api.HandleFunc("/admin/login", authHandler.Login).Methods("POST")

	// Admin routes
	admin := api.PathPrefix("/admin").Subrouter()
	admin.Use(middleware.AuthMiddleware(cfg.JWTSecret))
	admin.HandleFunc("/checks", compatHandler.ListChecks).Methods("GET")
	admin.HandleFunc("/stats", compatHandler.GetStats).Methods("GET")
	admin.HandleFunc("/reload", compatHandler.Reload).Methods("POST")

	// Health check
	r.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"status":"ok"}`))
	}).Methods("GET")
	r.Handle("/metrics", promhttp.Handler()).Methods("GET")

	// CORS
	c := cors.New(cors.Options{
		AllowedOrigins:   cfg.CORSOrigins,
		AllowedMethods:   []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders:   []string{"Authorization", "Content-Type"},
		AllowCredentials: true,
	})

	handler := c.Handler(r)

	log.Printf("Server starting on :%s (%d features, %d clusters)", cfg.Port, len(bundle.Schema), bundle.Model.K())
	if err := http.ListenAndServe(":"+cfg.Port, handler); err != nil {
		log.Fatalf("Server failed: %v", err)
	}
}
