package server

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/cors"

	mockwire "github.com/mockwire-testing/mockwire-go"
	"github.com/mockwire-testing/mockwire-go/internal/config"
	"github.com/mockwire-testing/mockwire-go/internal/controllers"
	"github.com/mockwire-testing/mockwire-go/internal/util"
)

// Config represents mockwired server configuration.
type Config struct {
	Port          int
	Host          string
	LogLevel      string
	EndpointsFile string
	Origin        []string
}

// Server hosts a mocker behind a real listener: every non-admin
// request is answered by the engine, and the admin API under
// /_mockwire manages endpoints, state, requests and logs at runtime.
type Server struct {
	config     *Config
	httpServer *http.Server
	logger     *util.Logger
	mocker     *mockwire.Mocker
}

// New creates a mockwired server.
func New(cfg *Config) (*Server, error) {
	logger := util.NewLogger(cfg.LogLevel).WithScope("mockwired")

	mocker, err := mockwire.New(mockwire.WithConfig(mockwire.Config{
		LogLevel:       cfg.LogLevel,
		LogRequests:    true,
		RecordRequests: true,
	}))
	if err != nil {
		return nil, err
	}

	s := &Server{
		config: cfg,
		logger: logger,
		mocker: mocker,
	}

	addr := fmt.Sprintf("%s:%d", cfg.Host, cfg.Port)
	s.httpServer = &http.Server{
		Addr:         addr,
		Handler:      s.createRouter(),
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 30 * time.Second,
	}

	return s, nil
}

// createRouter wires the admin API and the catch-all mock handler.
func (s *Server) createRouter() http.Handler {
	router := mux.NewRouter()

	endpointsController := controllers.NewEndpointsController(s.mocker, s.logger)
	stateController := controllers.NewStateController(s.mocker, s.logger)
	requestsController := controllers.NewRequestsController(s.mocker)
	logsController := controllers.NewLogsController(s.mocker)

	admin := router.PathPrefix("/_mockwire").Subrouter()
	admin.HandleFunc("/endpoints", endpointsController.Get).Methods("GET")
	admin.HandleFunc("/endpoints", endpointsController.Post).Methods("POST")
	admin.HandleFunc("/endpoints", endpointsController.Delete).Methods("DELETE")
	admin.HandleFunc("/state", stateController.Get).Methods("GET")
	admin.HandleFunc("/state/{key}", stateController.Put).Methods("PUT")
	admin.HandleFunc("/state", stateController.Delete).Methods("DELETE")
	admin.HandleFunc("/requests", requestsController.Get).Methods("GET")
	admin.HandleFunc("/requests", requestsController.Delete).Methods("DELETE")
	admin.HandleFunc("/logs", logsController.Get).Methods("GET")
	admin.HandleFunc("/config", s.handleConfig).Methods("GET")
	admin.Handle("/metrics", promhttp.Handler()).Methods("GET")

	router.HandleFunc("/", s.handleHome).Methods("GET").Headers("Accept", "application/json")

	// Everything else is a mock request.
	router.PathPrefix("/").Handler(withMetrics(s.mocker))

	allowedOrigins := s.config.Origin
	if len(allowedOrigins) == 0 {
		allowedOrigins = []string{"*"}
	}
	corsHandler := cors.New(cors.Options{
		AllowedOrigins: allowedOrigins,
		AllowedMethods: []string{"GET", "POST", "PUT", "DELETE", "PATCH", "OPTIONS"},
		AllowedHeaders: []string{"*"},
	})

	return corsHandler.Handler(router)
}

// handleHome handles GET / for API clients.
func (s *Server) handleHome(w http.ResponseWriter, r *http.Request) {
	response := map[string]interface{}{
		"_links": map[string]interface{}{
			"endpoints": map[string]string{"href": "/_mockwire/endpoints"},
			"state":     map[string]string{"href": "/_mockwire/state"},
			"requests":  map[string]string{"href": "/_mockwire/requests"},
			"logs":      map[string]string{"href": "/_mockwire/logs"},
			"config":    map[string]string{"href": "/_mockwire/config"},
			"metrics":   map[string]string{"href": "/_mockwire/metrics"},
		},
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(response)
}

// handleConfig handles GET /_mockwire/config.
func (s *Server) handleConfig(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]interface{}{
		"options": map[string]interface{}{
			"port":          s.config.Port,
			"host":          s.config.Host,
			"logLevel":      s.config.LogLevel,
			"endpointsFile": s.config.EndpointsFile,
		},
		"mocker": s.mocker.Config(),
	})
}

// LoadEndpoints applies an endpoint file to the mocker.
func (s *Server) LoadEndpoints(path string) (int, error) {
	f, err := config.Load(path)
	if err != nil {
		return 0, err
	}
	return config.Apply(f, s.mocker)
}

// Mocker returns the server's mocker.
func (s *Server) Mocker() *mockwire.Mocker {
	return s.mocker
}

// Start starts the server.
func (s *Server) Start() error {
	s.logger.Infof("mockwired serving mocks on http://%s:%d/ (admin under /_mockwire)", s.config.Host, s.config.Port)
	return s.httpServer.ListenAndServe()
}

// Stop stops the server gracefully.
func (s *Server) Stop() error {
	s.logger.Info("shutting down")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	return s.httpServer.Shutdown(ctx)
}
