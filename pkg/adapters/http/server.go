// Package http exposes the simulator as a JSON API.
package http

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/aretw0/mrsim"
	"github.com/aretw0/mrsim/internal/config"
	"github.com/aretw0/mrsim/pkg/domain"
	"github.com/aretw0/mrsim/pkg/observability"
	"github.com/aretw0/mrsim/pkg/ports"
	"github.com/aretw0/mrsim/pkg/schema"
)

// MaxDocumentBytes bounds the size of a simulation document.
const MaxDocumentBytes = 8 << 20

// Server serves simulation requests. Each request builds its own Simulator
// from the base options and the document's simulation settings.
type Server struct {
	options []mrsim.Option
	hooks   domain.LifecycleHooks
	store   ports.SpectrumStore
	metrics http.Handler
	logger  *slog.Logger
	Streams *StreamManager
}

// Option configures a Server.
type Option func(*Server)

// WithSimulatorOptions sets options applied to every Simulator before the
// document settings.
func WithSimulatorOptions(opts ...mrsim.Option) Option {
	return func(s *Server) { s.options = append(s.options, opts...) }
}

// WithHooks adds lifecycle hooks to every run, next to the event stream.
func WithHooks(h domain.LifecycleHooks) Option {
	return func(s *Server) { s.hooks = h }
}

// WithStore enables keyed runs and the /spectra routes.
func WithStore(store ports.SpectrumStore) Option {
	return func(s *Server) { s.store = store }
}

// WithMetrics mounts h on /metrics.
func WithMetrics(h http.Handler) Option {
	return func(s *Server) { s.metrics = h }
}

// WithLogger sets the request logger.
func WithLogger(l *slog.Logger) Option {
	return func(s *Server) { s.logger = l }
}

// NewServer creates a Server.
func NewServer(opts ...Option) *Server {
	s := &Server{Streams: NewStreamManager(), logger: slog.Default()}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// NewHandler creates the HTTP handler for a new Server.
func NewHandler(opts ...Option) http.Handler {
	return NewServer(opts...).Routes()
}

// Routes returns the router of s.
func (s *Server) Routes() http.Handler {
	r := chi.NewRouter()
	r.Post("/simulate", s.Simulate)
	r.Post("/transitions", s.Transitions)
	r.Get("/spectra", s.ListSpectra)
	r.Get("/spectra/{key}", s.GetSpectrum)
	r.Get("/events", s.SubscribeEvents)
	r.Get("/health", s.GetHealth)
	r.Get("/info", s.GetInfo)
	r.Get("/schema", s.GetSchema)
	if s.metrics != nil {
		r.Method(http.MethodGet, "/metrics", s.metrics)
	}
	return enableCORS(r)
}

func enableCORS(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type")
		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusOK)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// fieldError is one entry of a 400 response.
type fieldError struct {
	Key    string `json:"key,omitempty"`
	Reason string `json:"reason"`
}

type errorResponse struct {
	Error  string       `json:"error"`
	Fields []fieldError `json:"fields,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("response encode failed", "error", err)
	}
}

func (s *Server) writeError(w http.ResponseWriter, status int, err error) {
	resp := errorResponse{Error: err.Error()}
	for _, e := range schema.ValidationErrors(err) {
		var ve *schema.ValidationError
		if errors.As(e, &ve) {
			resp.Fields = append(resp.Fields, fieldError{Key: ve.Key, Reason: ve.Reason})
			continue
		}
		resp.Fields = append(resp.Fields, fieldError{Reason: e.Error()})
	}
	if status >= http.StatusInternalServerError {
		s.logger.Error("request failed", "status", status, "error", err)
	} else {
		s.logger.Warn("request rejected", "status", status, "error", err)
	}
	writeJSON(w, status, resp)
}

// statusFor maps a run error to a response status.
func statusFor(err error) int {
	var aggr *schema.AggregateError
	switch {
	case errors.As(err, &aggr),
		errors.Is(err, domain.ErrUnknownIsotope),
		errors.Is(err, domain.ErrLengthMismatch):
		return http.StatusBadRequest
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return http.StatusServiceUnavailable
	}
	return http.StatusInternalServerError
}

// readDocument decodes the request body. JSON is the default; a YAML
// content type is read as YAML.
func readDocument(w http.ResponseWriter, r *http.Request) (*config.Document, error) {
	data, err := io.ReadAll(http.MaxBytesReader(w, r.Body, MaxDocumentBytes))
	if err != nil {
		return nil, fmt.Errorf("failed to read request body: %w", err)
	}
	format := config.FormatJSON
	if strings.Contains(r.Header.Get("Content-Type"), "yaml") {
		format = config.FormatYAML
	}
	return config.Parse(data, format)
}

func (s *Server) simulator(doc *config.Document) (*mrsim.Simulator, error) {
	docOpts, err := doc.Settings.Options()
	if err != nil {
		return nil, &schema.AggregateError{Errors: []error{
			&schema.ValidationError{Key: "simulation", Reason: err.Error(), Err: err},
		}}
	}
	opts := append([]mrsim.Option{}, s.options...)
	opts = append(opts, docOpts...)
	opts = append(opts, mrsim.WithHooks(observability.Chain(s.hooks, s.Streams.Hooks())))
	if s.store != nil {
		opts = append(opts, mrsim.WithStore(s.store))
	}
	return mrsim.New(opts...)
}

// Simulate handles POST /simulate. The optional key query parameter stores
// the spectrum.
func (s *Server) Simulate(w http.ResponseWriter, r *http.Request) {
	doc, err := readDocument(w, r)
	if err != nil {
		s.writeError(w, http.StatusBadRequest, err)
		return
	}
	key := r.URL.Query().Get("key")
	if key != "" && s.store == nil {
		s.writeError(w, http.StatusServiceUnavailable, errors.New("no spectrum store configured"))
		return
	}
	sim, err := s.simulator(doc)
	if err != nil {
		s.writeError(w, http.StatusBadRequest, err)
		return
	}
	req := doc.Simulation()
	req.Key = key
	res, err := sim.Run(r.Context(), req)
	if err != nil {
		s.writeError(w, statusFor(err), err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

// Transitions handles POST /transitions.
func (s *Server) Transitions(w http.ResponseWriter, r *http.Request) {
	doc, err := readDocument(w, r)
	if err != nil {
		s.writeError(w, http.StatusBadRequest, err)
		return
	}
	if err := doc.Method.Validate(); err != nil {
		s.writeError(w, http.StatusBadRequest, err)
		return
	}
	sim, err := s.simulator(doc)
	if err != nil {
		s.writeError(w, http.StatusBadRequest, err)
		return
	}
	systems, err := sim.Transitions(r.Context(), doc.Method, doc.SpinSystems)
	if err != nil {
		s.writeError(w, statusFor(err), err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"systems": systems})
}

// ListSpectra handles GET /spectra.
func (s *Server) ListSpectra(w http.ResponseWriter, r *http.Request) {
	if s.store == nil {
		s.writeError(w, http.StatusServiceUnavailable, errors.New("no spectrum store configured"))
		return
	}
	keys, err := s.store.List(r.Context())
	if err != nil {
		s.writeError(w, http.StatusInternalServerError, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"keys": keys})
}

// GetSpectrum handles GET /spectra/{key}.
func (s *Server) GetSpectrum(w http.ResponseWriter, r *http.Request) {
	if s.store == nil {
		s.writeError(w, http.StatusServiceUnavailable, errors.New("no spectrum store configured"))
		return
	}
	spectrum, err := s.store.Load(r.Context(), chi.URLParam(r, "key"))
	if errors.Is(err, ports.ErrSpectrumNotFound) {
		s.writeError(w, http.StatusNotFound, err)
		return
	}
	if err != nil {
		s.writeError(w, http.StatusInternalServerError, err)
		return
	}
	writeJSON(w, http.StatusOK, spectrum)
}

// GetHealth handles GET /health.
func (s *Server) GetHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// GetSchema describes the unit type of every document field.
func (s *Server) GetSchema(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, config.Schemas())
}

// GetInfo handles GET /info.
func (s *Server) GetInfo(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"app":     "mrsim-http",
		"version": strings.TrimSpace(mrsim.Version),
		"store":   s.store != nil,
	})
}
