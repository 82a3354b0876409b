package http

import (
	"context"
	"net/http"
	"time"

	"github.com/gorilla/mux"

	"github.com/fixora/projectledger/internal/logger"
)

// Server represents the HTTP server
type Server struct {
	addr   string
	logger logger.Logger
	server *http.Server
}

// ServerConfig represents server configuration
type ServerConfig struct {
	Addr            string
	ReadTimeout     time.Duration
	WriteTimeout    time.Duration
	IdleTimeout     time.Duration
	CORSOrigins     []string
	CORSCredentials bool
}

// NewRouter builds the routed, middleware-wrapped handler
func NewRouter(ledger Ledger, log logger.Logger, config ServerConfig) http.Handler {
	router := mux.NewRouter()

	NewHandler(ledger).RegisterRoutes(router)

	router.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		writeSuccess(w, http.StatusOK, "healthy", map[string]string{"status": "ok"})
	}).Methods("GET")

	router.Use(recoveryMiddleware(log))
	router.Use(correlationMiddleware)
	router.Use(loggingMiddleware(log))

	var handler http.Handler = router
	if len(config.CORSOrigins) > 0 {
		handler = corsMiddleware(config.CORSOrigins, config.CORSCredentials)(handler)
	}
	return handler
}

// NewServer creates a new HTTP server
func NewServer(config ServerConfig, ledger Ledger, log logger.Logger) *Server {
	return &Server{
		addr:   config.Addr,
		logger: log,
		server: &http.Server{
			Addr:         config.Addr,
			Handler:      NewRouter(ledger, log, config),
			ReadTimeout:  config.ReadTimeout,
			WriteTimeout: config.WriteTimeout,
			IdleTimeout:  config.IdleTimeout,
		},
	}
}

// Start starts the HTTP server
func (s *Server) Start() error {
	s.logger.Info(context.Background(), "Starting HTTP server", map[string]interface{}{"addr": s.addr})
	return s.server.ListenAndServe()
}

// Shutdown gracefully shuts down the HTTP server
func (s *Server) Shutdown(ctx context.Context) error {
	s.logger.Info(ctx, "Shutting down HTTP server", nil)
	return s.server.Shutdown(ctx)
}
