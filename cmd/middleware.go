package main

import (
	"context"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"llm-monitor/internal/logger"

	"github.com/google/uuid"
	"github.com/gorilla/mux"
)

type ctxKey int

const requestIDKey ctxKey = iota

const requestIDHeader = "X-Request-ID"

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(code int) {
	r.status = code
	r.ResponseWriter.WriteHeader(code)
}

func (s *Server) requestIDMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := r.Header.Get(requestIDHeader)
		if _, err := uuid.Parse(id); err != nil {
			id = uuid.NewString()
		}
		w.Header().Set(requestIDHeader, id)
		next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), requestIDKey, id)))
	})
}

// recoverMiddleware keeps the body-only error contract even on panics.
func (s *Server) recoverMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			if rec := recover(); rec != nil {
				requestLogger(r.Context(), s.log).Errorw("panic while handling request", "panic", rec)
				writeError(w, fmt.Sprint(rec))
			}
		}()
		next.ServeHTTP(w, r)
	})
}

func (s *Server) instrumentMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}

		next.ServeHTTP(rec, r)

		endpoint := r.URL.Path
		if route := mux.CurrentRoute(r); route != nil {
			if tpl, err := route.GetPathTemplate(); err == nil {
				endpoint = tpl
			}
		}

		duration := time.Since(start)
		s.metrics.ObserveRequest(r.Method, endpoint, strconv.Itoa(rec.status), duration)
		requestLogger(r.Context(), s.log).Infow("request",
			"method", r.Method,
			"path", endpoint,
			"status", rec.status,
			"duration", duration,
		)
	})
}

func requestLogger(ctx context.Context, base *logger.Logger) *logger.Logger {
	if id, ok := ctx.Value(requestIDKey).(string); ok {
		return base.WithFields("request_id", id)
	}
	return base
}
