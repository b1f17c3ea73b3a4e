// internal/server/server.go

package server

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/nats-io/nats.go"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"octopal/internal/config"
	"octopal/internal/domain/feed"
	"octopal/internal/domain/progression"
	"octopal/internal/server/handlers"
)

// serviceName labels HTTP metrics emitted by this server.
const serviceName = "octopal-api"

// Server represents the HTTP server
type Server struct {
	server *http.Server
	router *chi.Mux
}

// NewServer creates a new HTTP server
func NewServer(
	cfg config.ServerConfig,
	natsConn *nats.Conn,
	eventsTopic string,
	analyzer feed.Analyzer,
	fetcher feed.Fetcher,
	engine progression.Engine,
) *Server {
	router := chi.NewRouter()

	// Middleware
	router.Use(middleware.RequestID)
	router.Use(middleware.RealIP)
	router.Use(middleware.Logger)
	router.Use(middleware.Recoverer)
	router.Use(middleware.Timeout(60 * time.Second))
	router.Use(prometheusMiddleware(serviceName))

	// CORS configuration
	router.Use(cors.Handler(cors.Options{
		AllowedOrigins:   cfg.CorsOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-CSRF-Token"},
		ExposedHeaders:   []string{"Link"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	// Create handler dependencies
	analysisHandler := handlers.NewAnalysisHandler(analyzer, fetcher, engine)
	progressionHandler := handlers.NewProgressionHandler(engine)

	// Routes
	router.Route("/api", func(r chi.Router) {
		// Health check
		r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
			w.Write([]byte("OK"))
		})

		// API version
		r.Route("/v1", func(r chi.Router) {
			// Analysis API
			r.Route("/analysis", func(r chi.Router) {
				r.Post("/", analysisHandler.AnalyzeBatch)
				r.Post("/item", analysisHandler.AnalyzeItem)
				r.Get("/feed", analysisHandler.AnalyzeFeed)
			})

			// Reports API
			r.Post("/reports", progressionHandler.SubmitReport)

			// Progression API
			r.Post("/points", progressionHandler.AwardPoints)
			r.Get("/stats", progressionHandler.GetStats)
			r.Route("/badges", func(r chi.Router) {
				r.Get("/", progressionHandler.GetBadges)
				r.Get("/progress", progressionHandler.GetBadgeProgress)
			})
			r.Route("/challenges", func(r chi.Router) {
				r.Get("/", progressionHandler.GetChallenges)
				r.Post("/progress", progressionHandler.UpdateChallengeProgress)
			})
			r.Get("/level", progressionHandler.GetLevel)
			r.Get("/leaderboard", progressionHandler.GetLeaderboard)
		})
	})

	// Prometheus metrics endpoint
	router.Handle("/metrics", promhttp.Handler())

	// WebSocket endpoint for real-time progression notifications
	router.Get("/ws/progression", handlers.ProgressionWebSocketHandler(natsConn, eventsTopic))

	// Create HTTP server
	httpServer := &http.Server{
		Addr:         fmt.Sprintf("%s:%d", cfg.Host, cfg.Port),
		Handler:      router,
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
	}

	return &Server{
		server: httpServer,
		router: router,
	}
}

// ListenAndServe starts the HTTP server
func (s *Server) ListenAndServe() error {
	return s.server.ListenAndServe()
}

// Shutdown gracefully shuts down the HTTP server
func (s *Server) Shutdown(ctx context.Context) error {
	return s.server.Shutdown(ctx)
}
