package api

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"
	"github.com/ridgeline-labs/site-backend/config"
	"github.com/rs/zerolog/log"
)

type Server struct {
	*http.Server
	startupTime time.Time
}

func NewServer(c map[string]string, deps Dependencies) (Server, error) {
	if deps.Leads == nil {
		return Server{}, fmt.Errorf("lead service is required")
	}
	if deps.Content == nil {
		return Server{}, fmt.Errorf("content library is required")
	}

	// Ensure correct port is set
	port := config.GetString(c, "PORT", "8080")
	address := fmt.Sprintf("0.0.0.0:%s", port) // Bind to 0.0.0.0 for external access

	// Capture startup time
	startupTime := time.Now()

	router := newRouter(deps, withConfig(c), withStartupTime(startupTime))

	// Get timeout values from config with sensible defaults
	readTimeout := time.Duration(config.GetInt(c, "READ_TIMEOUT_SECONDS", 180)) * time.Second
	writeTimeout := time.Duration(config.GetInt(c, "WRITE_TIMEOUT_SECONDS", 180)) * time.Second
	idleTimeout := time.Duration(config.GetInt(c, "IDLE_TIMEOUT_SECONDS", 180)) * time.Second

	server := &http.Server{
		Addr:         address,
		Handler:      router,
		ReadTimeout:  readTimeout,  // Timeout for reading the entire request
		WriteTimeout: writeTimeout, // Timeout for writing the response
		IdleTimeout:  idleTimeout,  // Timeout for idle connections
	}

	return Server{server, startupTime}, nil
}

type router struct {
	config      map[string]string
	startupTime time.Time
}

func withConfig(c map[string]string) func(*router) {
	return func(r *router) {
		r.config = c
	}
}

func withStartupTime(startupTime time.Time) func(*router) {
	return func(r *router) {
		r.startupTime = startupTime
	}
}

func newRouter(deps Dependencies, opts ...func(*router)) *chi.Mux {
	var router router
	for _, opt := range opts {
		opt(&router)
	}
	c := router.config

	chiRouter := chi.NewRouter()
	chiRouter.Use(LogInternalServerErrors)
	chiRouter.Use(ColoredHTTPLoggingMiddleware)
	chiRouter.Use(requestMetrics)

	acceptedOrigins := config.GetList(c, "ACCEPTED_ORIGINS")
	if len(acceptedOrigins) == 0 {
		acceptedOrigins = []string{"*"}
	}
	chiRouter.Use(cors.Handler(cors.Options{
		AllowedOrigins:   acceptedOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-Admin-Token"},
		ExposedHeaders:   []string{"Content-Disposition", "Retry-After", "X-RateLimit-Remaining"},
		AllowCredentials: false,
		MaxAge:           300,
	}))

	maintenanceLogger := log.With().Str("handlerName", "maintenance").Logger()
	chiRouter.Use(maintenanceMiddleware(maintenanceConfig{
		enabled:     config.GetBool(c, "MAINTENANCE_MODE", false),
		redirectURL: config.GetString(c, "MAINTENANCE_REDIRECT_URL", ""),
		retryAfter:  time.Duration(config.GetInt(c, "MAINTENANCE_RETRY_AFTER_SECONDS", 3600)) * time.Second,
	}, NewResponder(maintenanceLogger)))

	// Initialize all handlers
	maxUpload := maxUploadBytes(config.GetInt(c, "MEDIA_MAX_UPLOAD_MB", 50))
	handlers := initializeHandlers(deps, router.startupTime, maxUpload)

	admin := newAdminMiddleware(config.GetString(c, "ADMIN_TOKEN", ""))

	limiterLogger := log.With().Str("handlerName", "rateLimit").Logger()
	formLimiter := newFormLimiter(
		int64(config.GetInt(c, "RATE_LIMIT_FORMS", 10)),
		time.Duration(config.GetInt(c, "RATE_LIMIT_WINDOW_SECONDS", 60))*time.Second,
	)

	setupRoutes(chiRouter, handlers, admin, rateLimit(formLimiter, NewResponder(limiterLogger)))

	return chiRouter
}

func (s Server) Start(errChannel chan<- error) {
	log.Info().Msgf("Server started on: %s", s.Addr)
	errChannel <- s.ListenAndServe()
}

func (s Server) ShutdownGracefully(timeout time.Duration) {
	log.Info().Msg("Gracefully shutting down...")

	gracefullCtx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	if err := s.Shutdown(gracefullCtx); err != nil {
		log.Error().Msgf("Error shutting down the server: %v", err)
	} else {
		log.Info().Msg("HttpServer gracefully shut down")
	}
}
