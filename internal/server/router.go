package server

import (
	"net/http"

	"github.com/bloodlink/backend/internal/config"
	"github.com/bloodlink/backend/internal/handlers"
	"github.com/bloodlink/backend/internal/httpx"
	appmw "github.com/bloodlink/backend/internal/middleware"
	"github.com/bloodlink/backend/internal/services"
	"github.com/bloodlink/backend/internal/token"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"gorm.io/gorm"
)

// New constructs the root http.Handler with all routes and middlewares applied.
func New(db *gorm.DB, cfg config.Config) http.Handler {
	tokens := token.NewService(cfg.JWTSecret)
	stock := services.NewStockService(db)
	reports := services.NewReportService(db)

	authHandler := handlers.NewAuthHandler(db, tokens)
	donorHandler := handlers.NewDonorHandler(db, reports)
	requestHandler := handlers.NewRequestHandler(db)
	adminHandler := handlers.NewAdminHandler(db, stock, reports)

	r := chi.NewRouter()
	r.Use(chimw.RequestID)
	r.Use(chimw.Logger)
	r.Use(chimw.Recoverer)
	r.Use(chimw.StripSlashes)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: cfg.CORSOrigins,
		AllowedMethods: []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders: []string{"Content-Type", "Authorization"},
	}))

	r.Get("/", func(w http.ResponseWriter, _ *http.Request) {
		httpx.JSON(w, http.StatusOK, map[string]string{
			"message": "BloodLink API Server",
			"version": "1.0.0",
			"status":  "running",
		})
	})
	r.Get("/api/health", func(w http.ResponseWriter, _ *http.Request) {
		if err := db.Exec("SELECT 1").Error; err != nil {
			httpx.JSON(w, http.StatusServiceUnavailable, map[string]string{"status": "degraded"})
			return
		}
		httpx.JSON(w, http.StatusOK, map[string]string{
			"status":   "healthy",
			"database": "connected",
		})
	})

	r.Route("/api/auth", authHandler.Register)
	r.Route("/api/donors", donorHandler.Register)
	r.Route("/api/blood-requests", requestHandler.Register)
	r.Route("/api/admin", func(ar chi.Router) {
		if cfg.AdminAuthRequired {
			ar.Use(appmw.RequireAuth(tokens))
			ar.Use(appmw.RequireRole("admin"))
		}
		adminHandler.Register(ar)
	})

	r.NotFound(func(w http.ResponseWriter, _ *http.Request) {
		httpx.JSONError(w, http.StatusNotFound, "Endpoint not found", nil)
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, _ *http.Request) {
		httpx.JSONError(w, http.StatusMethodNotAllowed, "method_not_allowed", nil)
	})

	return r
}
