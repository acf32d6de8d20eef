package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/cors"
	"github.com/sirupsen/logrus"
	"price-hunter/extractor"
	"price-hunter/internal/types"
)

// ErrorResponse is the body sent when a request fails
type ErrorResponse struct {
	Error   string `json:"error"`
	Details string `json:"details,omitempty"`
}

// ProductSearcher runs price searches for the API
type ProductSearcher interface {
	SearchProducts(ctx context.Context, query string, selection types.SourceSelection) (*types.Candidate, error)
	Suggest(ctx context.Context, prefix string) []string
	Close()
}

// Server holds the API server configuration
type Server struct {
	logger        *logrus.Logger
	searcher      ProductSearcher
	searchTimeout time.Duration
	httpServer    *http.Server
}

// NewServer creates a new API server
func NewServer() *Server {
	// Load .env file if present
	_ = godotenv.Load()

	// Setup logging
	logger := logrus.New()

	// Set timestamp format with milliseconds
	logger.SetFormatter(&logrus.TextFormatter{
		FullTimestamp:   true,
		TimestampFormat: "2006-01-02 15:04:05.000",
	})

	if levelStr := os.Getenv("LOG_LEVEL"); levelStr != "" {
		if level, err := logrus.ParseLevel(levelStr); err == nil {
			logger.SetLevel(level)
		}
	} else {
		logger.SetLevel(logrus.InfoLevel)
	}

	config := types.LoadConfigFromEnv()
	return newServer(logger, extractor.NewExtractor(config, logger), config.Timeout+30*time.Second)
}

func newServer(logger *logrus.Logger, searcher ProductSearcher, searchTimeout time.Duration) *Server {
	return &Server{
		logger:        logger,
		searcher:      searcher,
		searchTimeout: searchTimeout,
	}
}

// Handler returns the routes wrapped in CORS handling
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/search", s.handleSearch)
	mux.HandleFunc("/autosuggest", s.handleAutosuggest)
	mux.HandleFunc("/health", s.handleHealth)

	c := cors.New(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{http.MethodGet, http.MethodOptions},
		AllowedHeaders: []string{"Content-Type"},
	})
	return c.Handler(mux)
}

// handleSearch finds the cheapest offer for the query parameter
func (s *Server) handleSearch(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		s.sendJSON(w, http.StatusMethodNotAllowed, ErrorResponse{Error: "Method not allowed"})
		return
	}

	params := r.URL.Query()
	query := strings.TrimSpace(params.Get("query"))
	if query == "" {
		s.sendJSON(w, http.StatusBadRequest, ErrorResponse{Error: "Search query is required"})
		return
	}

	selection := extractor.ParseSelection(params)
	s.logger.Infof("API search for %q (kabum=%t, google=%t, mercadolivre=%t)", query,
		selection[extractor.SourceKabum], selection[extractor.SourceGoogle], selection[extractor.SourceMercadoLivre])

	ctx, cancel := context.WithTimeout(r.Context(), s.searchTimeout)
	defer cancel()

	winner, err := s.searcher.SearchProducts(ctx, query, selection)
	if err != nil {
		s.logger.Errorf("Search error: %v", err)
		s.sendJSON(w, http.StatusInternalServerError, ErrorResponse{
			Error:   "Failed to search products",
			Details: err.Error(),
		})
		return
	}

	s.sendJSON(w, http.StatusOK, winner)
}

// handleAutosuggest returns query completions; failures yield an empty list
func (s *Server) handleAutosuggest(w http.ResponseWriter, r *http.Request) {
	prefix := strings.TrimSpace(r.URL.Query().Get("q"))
	if prefix == "" {
		s.sendJSON(w, http.StatusOK, []string{})
		return
	}

	s.sendJSON(w, http.StatusOK, s.searcher.Suggest(r.Context(), prefix))
}

// handleHealth handles the health check endpoint
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	s.sendJSON(w, http.StatusOK, map[string]string{"status": "healthy"})
}

func (s *Server) sendJSON(w http.ResponseWriter, statusCode int, body interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		s.logger.Errorf("Failed to encode response: %v", err)
	}
}

// Start serves requests until SIGINT or SIGTERM, then shuts down gracefully
func (s *Server) Start(port string) error {
	s.httpServer = &http.Server{
		Addr:         ":" + port,
		Handler:      s.Handler(),
		ReadTimeout:  30 * time.Second,
		WriteTimeout: s.searchTimeout + 10*time.Second, // browser searches can take over a minute
		IdleTimeout:  60 * time.Second,
	}

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)

	errCh := make(chan error, 1)
	go func() {
		s.logger.Infof("Starting API server on port %s", port)
		s.logger.Info("Available endpoints:")
		s.logger.Info("  GET /search?query=...&kabum=&google=&mercadolivre= - Cheapest offer")
		s.logger.Info("  GET /autosuggest?q=...                             - Query suggestions")
		s.logger.Info("  GET /health                                        - Health check")
		if err := s.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return err
	case <-stop:
	}

	s.logger.Info("Shutting down server...")
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := s.httpServer.Shutdown(ctx); err != nil {
		return fmt.Errorf("server shutdown failed: %w", err)
	}
	return nil
}

// Close releases the searcher's clients
func (s *Server) Close() {
	s.searcher.Close()
}

func main() {
	// Get port from environment variable, default to 3000
	serverPort := "3000"
	if envPort := os.Getenv("API_PORT"); envPort != "" {
		serverPort = envPort
		fmt.Printf("Using port from environment variable API_PORT: %s\n", serverPort)
	} else {
		fmt.Printf("No API_PORT environment variable found, using default: %s\n", serverPort)
	}

	server := NewServer()
	defer server.Close()

	if err := server.Start(serverPort); err != nil {
		log.Fatal(err)
	}
}
