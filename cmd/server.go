package main

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"time"

	"llm-monitor/internal/analytics"
	"llm-monitor/internal/llm"
	"llm-monitor/internal/logger"
	"llm-monitor/internal/metrics"
	"llm-monitor/internal/models"

	"github.com/gorilla/handlers"
	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const (
	version     = "1.0.0"
	homeMessage = "LLM System Monitoring Backend Running 🚀"

	errNoFile = "No file uploaded"
)

// Summarizer turns an analysis into model-written text.
type Summarizer interface {
	Summarize(ctx context.Context, result models.AnalysisResult) (string, error)
	Model() string
}

type ServerOptions struct {
	Analyzer       *analytics.Analyzer
	Summarizer     Summarizer
	Logger         *logger.Logger
	Registry       *prometheus.Registry
	Metrics        *metrics.Collector
	MaxUploadBytes int64
	AllowedOrigins []string
}

type Server struct {
	router         *mux.Router
	analyzer       *analytics.Analyzer
	summarizer     Summarizer
	log            *logger.Logger
	registry       *prometheus.Registry
	metrics        *metrics.Collector
	maxUploadBytes int64
	allowedOrigins []string
}

func NewServer(opts ServerOptions) *Server {
	s := &Server{
		router:         mux.NewRouter(),
		analyzer:       opts.Analyzer,
		summarizer:     opts.Summarizer,
		log:            opts.Logger,
		registry:       opts.Registry,
		metrics:        opts.Metrics,
		maxUploadBytes: opts.MaxUploadBytes,
		allowedOrigins: opts.AllowedOrigins,
	}

	if s.analyzer == nil {
		s.analyzer = analytics.NewAnalyzer(analytics.DefaultThresholds())
	}
	if s.log == nil {
		s.log = logger.NewNop()
	}
	if s.registry == nil {
		s.registry = prometheus.NewRegistry()
	}
	if s.metrics == nil {
		s.metrics = metrics.New(s.registry)
	}
	if s.maxUploadBytes <= 0 {
		s.maxUploadBytes = 32 << 20
	}
	if len(s.allowedOrigins) == 0 {
		s.allowedOrigins = []string{"*"}
	}

	s.setupRoutes()
	return s
}

func (s *Server) setupRoutes() {
	s.router.Use(s.requestIDMiddleware, s.instrumentMiddleware, s.recoverMiddleware)

	s.router.HandleFunc("/", s.homeHandler).Methods(http.MethodGet)
	s.router.HandleFunc("/health", s.healthHandler).Methods(http.MethodGet)
	s.router.HandleFunc("/analyze", s.analyzeHandler).Methods(http.MethodPost)
	s.router.Handle("/metrics", promhttp.HandlerFor(s.registry, promhttp.HandlerOpts{})).Methods(http.MethodGet)
}

// Handler returns the router wrapped with CORS handling.
func (s *Server) Handler() http.Handler {
	return handlers.CORS(
		handlers.AllowedOrigins(s.allowedOrigins),
		handlers.AllowedMethods([]string{http.MethodGet, http.MethodPost, http.MethodOptions}),
		handlers.AllowedHeaders([]string{"Content-Type", "X-Request-ID"}),
		handlers.ExposedHeaders([]string{"X-Request-ID"}),
	)(s.router)
}

func (s *Server) homeHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	io.WriteString(w, homeMessage)
}

func (s *Server) healthHandler(w http.ResponseWriter, r *http.Request) {
	model := ""
	if s.summarizer != nil {
		model = s.summarizer.Model()
	}

	writeJSON(w, models.HealthStatus{
		Status:    "healthy",
		Timestamp: time.Now().UTC().Format(time.RFC3339),
		Version:   version,
		LLMModel:  model,
	})
}

func (s *Server) analyzeHandler(w http.ResponseWriter, r *http.Request) {
	log := requestLogger(r.Context(), s.log)
	r.Body = http.MaxBytesReader(w, r.Body, s.maxUploadBytes)

	file, header, err := r.FormFile("file")
	if err != nil {
		if errors.Is(err, http.ErrMissingFile) || errors.Is(err, http.ErrNotMultipart) {
			s.metrics.ObserveAnalysis("missing_file", 0, nil)
			writeError(w, errNoFile)
			return
		}
		log.WithError(err).Warn("failed to read upload")
		s.metrics.ObserveAnalysis("upload_error", 0, nil)
		writeError(w, err.Error())
		return
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		log.WithError(err).Warn("failed to read upload")
		s.metrics.ObserveAnalysis("upload_error", 0, nil)
		writeError(w, err.Error())
		return
	}

	result, err := s.analyzer.Analyze(header.Filename, data)
	if err != nil {
		outcome := "parse_error"
		var verr *analytics.ValidationError
		if errors.As(err, &verr) {
			outcome = "validation_error"
		}
		log.WithFields("file", header.Filename, "outcome", outcome).WithError(err).Warn("analysis rejected")
		s.metrics.ObserveAnalysis(outcome, 0, nil)
		writeError(w, err.Error())
		return
	}
	s.metrics.ObserveAnalysis("success", result.Samples, result.Alerts)

	summary, err := s.summarizer.Summarize(r.Context(), result)
	if err != nil {
		log.WithError(err).Warn("LLM summary unavailable")
	}

	log.Infow("analysis complete",
		"file", header.Filename,
		"rows", result.Samples,
		"alerts", len(result.Alerts),
	)

	writeJSON(w, models.AnalyzeResponse{
		Alerts:   result.Alerts,
		Analysis: llm.AnalysisText(summary, err),
	})
}

// writeJSON always answers 200; failures are signalled by an "error" key.
func writeJSON(w http.ResponseWriter, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	enc := json.NewEncoder(w)
	enc.SetEscapeHTML(false)
	enc.Encode(v)
}

func writeError(w http.ResponseWriter, msg string) {
	writeJSON(w, models.ErrorResponse{Error: msg})
}
