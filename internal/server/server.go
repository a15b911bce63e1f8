package server

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/gorilla/mux"
	"github.com/gorilla/websocket"
	"github.com/lacquerai/rankview/internal/cache"
	"github.com/lacquerai/rankview/internal/dataset"
	"github.com/lacquerai/rankview/internal/engine"
	"github.com/lacquerai/rankview/internal/execcontext"
	"github.com/lacquerai/rankview/internal/ranking"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog/log"
)

// Config holds the server configuration
type Config struct {
	Host          string
	Port          int
	EnableMetrics bool
	EnableCORS    bool
	// DataFile is loaded into the cache at startup when set.
	DataFile string
	// Identifier is the column labelling each ranked row.
	Identifier string
	// Top is the default number of ranked rows.
	Top int
	// Labels draws value labels next to each bar.
	Labels bool
	// MaxUploadBytes caps the size of an uploaded table.
	MaxUploadBytes int64
	// PreviewRows is the number of raw rows shown under the chart.
	PreviewRows     int
	ReadTimeout     time.Duration
	WriteTimeout    time.Duration
	IdleTimeout     time.Duration
	ShutdownTimeout time.Duration
}

// DefaultConfig returns a default server configuration
func DefaultConfig() *Config {
	return &Config{
		Host:            "localhost",
		Port:            8080,
		EnableMetrics:   true,
		EnableCORS:      true,
		Identifier:      dataset.DefaultIdentifier,
		Top:             ranking.DefaultN,
		Labels:          true,
		MaxUploadBytes:  10 << 20,
		PreviewRows:     10,
		ReadTimeout:     15 * time.Second,
		WriteTimeout:    15 * time.Second,
		IdleTimeout:     60 * time.Second,
		ShutdownTimeout: 30 * time.Second,
	}
}

// Server serves the interactive ranking dashboard and its JSON API.
type Server struct {
	config   *Config
	runner   *engine.Runner
	cache    *cache.TableCache
	metrics  *Metrics
	hub      *Hub
	server   *http.Server
	upgrader websocket.Upgrader

	mu       sync.Mutex
	listener net.Listener
}

// New creates a server registering its metrics with the default registry.
func New(config *Config) (*Server, error) {
	return NewWithRegistry(config, prometheus.DefaultRegisterer)
}

// NewWithRegistry creates a server registering its metrics with registerer.
// A nil registerer leaves the metrics unregistered.
func NewWithRegistry(config *Config, registerer prometheus.Registerer) (*Server, error) {
	if config == nil {
		config = DefaultConfig()
	}
	if config.MaxUploadBytes <= 0 {
		config.MaxUploadBytes = DefaultConfig().MaxUploadBytes
	}
	if config.PreviewRows < 0 {
		config.PreviewRows = 0
	}

	metrics := NewMetrics(registerer)
	hub := NewHub(metrics)

	s := &Server{
		config:  config,
		cache:   cache.New(),
		metrics: metrics,
		hub:     hub,
		upgrader: websocket.Upgrader{
			CheckOrigin: func(r *http.Request) bool {
				return config.EnableCORS // Allow all origins if CORS enabled
			},
		},
	}

	s.runner = engine.NewRunner(hub, engine.WithConfig(engine.Config{
		Identifier: config.Identifier,
		Candidates: dataset.Vocabulary,
		N:          config.Top,
		Labels:     config.Labels,
	}))

	return s, nil
}

// LoadFile reads the table at path and makes it the current table.
func (s *Server) LoadFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return &dataset.LoadError{Source: path, Err: err}
	}

	_, _, err = s.loadTable(execcontext.Discard(context.Background()), data, fileBase(path))
	return err
}

// Handler returns the HTTP handler with every route registered.
func (s *Server) Handler() http.Handler {
	router := mux.NewRouter()

	// Apply CORS middleware to all routes if enabled
	if s.config.EnableCORS {
		router.Use(s.corsMiddleware)
	}
	router.Use(s.loggingMiddleware)

	router.HandleFunc("/", s.dashboard).Methods(http.MethodGet)
	router.HandleFunc("/upload", s.uploadForm).Methods(http.MethodPost)

	// Preflight requests are answered by corsMiddleware, which only runs for
	// matched routes, so each API route also accepts OPTIONS.
	methods := func(method string) []string {
		if s.config.EnableCORS {
			return []string{method, http.MethodOptions}
		}
		return []string{method}
	}

	api := router.PathPrefix("/api/v1").Subrouter()
	api.HandleFunc("/datasets", s.createDataset).Methods(methods(http.MethodPost)...)
	api.HandleFunc("/datasets/current", s.currentDataset).Methods(methods(http.MethodGet)...)
	api.HandleFunc("/rankings/{metric}", s.getRanking).Methods(methods(http.MethodGet)...)
	api.HandleFunc("/charts/{metric:[^/.]+}.{format:png|svg}", s.getChart).Methods(methods(http.MethodGet)...)
	api.HandleFunc("/stream", s.streamEvents).Methods(http.MethodGet)

	if s.config.EnableMetrics {
		router.Handle("/metrics", promhttp.Handler())
	}

	router.HandleFunc("/health", s.healthCheck)

	return router
}

// Start starts the HTTP server
func (s *Server) Start() error {
	if s.config.DataFile != "" {
		if err := s.LoadFile(s.config.DataFile); err != nil {
			return fmt.Errorf("loading %s: %w", s.config.DataFile, err)
		}
	}

	addr := fmt.Sprintf("%s:%d", s.config.Host, s.config.Port)
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return fmt.Errorf("listening on %s: %w", addr, err)
	}

	s.mu.Lock()
	s.listener = ln
	s.server = &http.Server{
		Handler:      s.Handler(),
		ReadTimeout:  s.config.ReadTimeout,
		WriteTimeout: s.config.WriteTimeout,
		IdleTimeout:  s.config.IdleTimeout,
	}
	srv := s.server
	s.mu.Unlock()

	log.Info().
		Str("addr", ln.Addr().String()).
		Str("dataset", s.currentSource()).
		Bool("metrics", s.config.EnableMetrics).
		Msg("Starting dashboard server")

	go func() {
		if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error().Err(err).Msg("Server stopped unexpectedly")
		}
	}()

	return nil
}

// Stop stops the HTTP server gracefully
func (s *Server) Stop(ctx context.Context) error {
	s.mu.Lock()
	srv := s.server
	s.mu.Unlock()

	if srv == nil {
		return nil
	}

	log.Info().Msg("Shutting down server...")
	return srv.Shutdown(ctx)
}

// StartWithGracefulShutdown starts the server and blocks until SIGINT or
// SIGTERM, then shuts it down.
func (s *Server) StartWithGracefulShutdown() error {
	if err := s.Start(); err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	<-ctx.Done()
	log.Info().Msg("Received shutdown signal")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), s.config.ShutdownTimeout)
	defer cancel()

	if err := s.Stop(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("Server shutdown error")
		return err
	}

	log.Info().Msg("Server shutdown complete")
	return nil
}

// GetAddr returns the server address, including the assigned port when the
// server listens on port 0.
func (s *Server) GetAddr() string {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.listener != nil {
		return s.listener.Addr().String()
	}
	return fmt.Sprintf("%s:%d", s.config.Host, s.config.Port)
}

func (s *Server) currentSource() string {
	if t := s.cache.Current(); t != nil {
		return t.Source
	}
	return ""
}

// Endpoint describes one HTTP route.
type Endpoint struct {
	Method      string `json:"method"`
	Path        string `json:"path"`
	Description string `json:"description"`
	Response    string `json:"response,omitempty"`
}

// Endpoints lists the routes served by Handler.
func Endpoints() []Endpoint {
	return []Endpoint{
		{http.MethodGet, "/", "Dashboard page with upload form, metric selector and chart", "text/html"},
		{http.MethodPost, "/upload", "Upload a CSV table from the dashboard form (field \"file\")", "text/html"},
		{http.MethodPost, "/api/v1/datasets", "Upload a CSV table as multipart field \"file\" or a text/csv body", "dataset_summary"},
		{http.MethodGet, "/api/v1/datasets/current", "Summary of the cached table", "dataset_summary"},
		{http.MethodGet, "/api/v1/rankings/{metric}", "Top-N rows of a metric; query n", "ranking_response"},
		{http.MethodGet, "/api/v1/charts/{metric}.{png|svg}", "Ranked bar chart image; query n and labels", "image/png, image/svg+xml"},
		{http.MethodGet, "/api/v1/stream", "WebSocket stream of dataset and ranking events", "events"},
		{http.MethodGet, "/metrics", "Prometheus metrics", "text/plain"},
		{http.MethodGet, "/health", "Liveness check", "health_response"},
	}
}
