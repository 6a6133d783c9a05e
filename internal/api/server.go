package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/kjannette/holdings-tracker/internal/models"
)

const maxBodyBytes = 1 << 20

// HoldingStore is the persistence the holding routes need.
type HoldingStore interface {
	Insert(ctx context.Context, in models.HoldingInput) (*models.Holding, error)
	ListAll(ctx context.Context) ([]models.Holding, error)
	UpdateByID(ctx context.Context, id uuid.UUID, patch models.HoldingPatch) (*models.Holding, error)
	DeleteByID(ctx context.Context, id uuid.UUID) error
}

// Valuator prices the current portfolio.
type Valuator interface {
	Valuate(ctx context.Context) (*models.Valuation, error)
}

type Pinger interface {
	Ping(ctx context.Context) error
}

type Options struct {
	Port            int
	CORSAllowOrigin string
}

type Server struct {
	holdings   HoldingStore
	valuator   Valuator
	db         Pinger
	log        *zap.Logger
	handler    http.Handler
	httpServer *http.Server
}

func NewServer(holdings HoldingStore, valuator Valuator, db Pinger, opts Options, log *zap.Logger) *Server {
	if log == nil {
		log = zap.NewNop()
	}
	s := &Server{
		holdings: holdings,
		valuator: valuator,
		db:       db,
		log:      log.Named("api"),
	}

	mux := http.NewServeMux()

	// Holding routes
	mux.HandleFunc("POST /holdings", s.handleAddHolding)
	mux.HandleFunc("GET /holdings", s.handleListHoldings)
	mux.HandleFunc("PUT /holdings/{id}", s.handleUpdateHolding)
	mux.HandleFunc("DELETE /holdings/{id}", s.handleDeleteHolding)

	// Valuation
	mux.HandleFunc("GET /prices", s.handlePrices)

	mux.HandleFunc("GET /health", s.handleHealth)

	s.handler = s.logMiddleware(corsMiddleware(mux, opts.CORSAllowOrigin))

	s.httpServer = &http.Server{
		Addr:        fmt.Sprintf(":%d", opts.Port),
		Handler:     s.handler,
		ReadTimeout: 10 * time.Second,
		// GET /prices waits on every quote, so leave room beyond a single quote timeout.
		WriteTimeout: 60 * time.Second,
	}

	return s
}

// Handler exposes the routed handler with middleware applied.
func (s *Server) Handler() http.Handler {
	return s.handler
}

func (s *Server) Start() error {
	s.log.Info("REST API server started", zap.String("addr", s.httpServer.Addr))
	return s.httpServer.ListenAndServe()
}

func (s *Server) Shutdown(ctx context.Context) error {
	return s.httpServer.Shutdown(ctx)
}

// --- middleware ---

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(code int) {
	r.status = code
	r.ResponseWriter.WriteHeader(code)
}

func (s *Server) logMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r)

		fields := []zap.Field{
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.Int("status", rec.status),
			zap.Duration("duration", time.Since(start)),
		}
		if rec.status >= 500 {
			s.log.Warn("request", fields...)
			return
		}
		s.log.Debug("request", fields...)
	})
}

func corsMiddleware(next http.Handler, allowOrigin string) http.Handler {
	if allowOrigin == "" {
		allowOrigin = "*"
	}
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", allowOrigin)
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type")

		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusOK)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// --- request helpers ---

var errInvalidID = errors.New("invalid holding id")

func parseID(r *http.Request) (uuid.UUID, error) {
	id, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		return uuid.Nil, errInvalidID
	}
	return id, nil
}

// decodeJSON reads exactly one JSON object into dst, rejecting unknown fields.
func decodeJSON(w http.ResponseWriter, r *http.Request, dst any) error {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	dec.DisallowUnknownFields()

	if err := dec.Decode(dst); err != nil {
		if errors.Is(err, io.EOF) {
			return errors.New("request body is empty")
		}
		return fmt.Errorf("malformed request body: %v", err)
	}
	if dec.More() {
		return errors.New("request body must contain a single JSON object")
	}
	return nil
}

// --- response helpers ---

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}
