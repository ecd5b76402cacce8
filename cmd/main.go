package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"llm-monitor/internal/analytics"
	"llm-monitor/internal/cache"
	"llm-monitor/internal/config"
	"llm-monitor/internal/llm"
	"llm-monitor/internal/logger"
	"llm-monitor/internal/metrics"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
)

func (s *Server) Run(addr string) error {
	// No WriteTimeout: a local model can take minutes to answer.
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       60 * time.Second,
		IdleTimeout:       30 * time.Second,
	}

	done := make(chan struct{})
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		<-quit
		s.log.Info("Server is shutting down...")

		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		srv.SetKeepAlivesEnabled(false)
		if err := srv.Shutdown(ctx); err != nil {
			s.log.Errorf("Could not gracefully shutdown the server: %v", err)
		}
		close(done)
	}()

	s.log.Infof("Server is ready to handle requests at %s", addr)
	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return fmt.Errorf("could not listen on %s: %w", addr, err)
	}

	<-done
	s.log.Info("Server stopped")
	return nil
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	log, err := logger.New(cfg.Log.Level, cfg.Log.Development)
	if err != nil {
		return fmt.Errorf("failed to build logger: %w", err)
	}
	defer log.Sync()

	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	collector := metrics.New(registry)

	llmOpts := []llm.Option{
		llm.WithLogger(log.WithFields("component", "llm")),
		llm.WithObserver(collector),
	}

	if cfg.CacheEnabled() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		summaries, err := cache.NewRedisClient(ctx, cache.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
			TTL:      cfg.Redis.TTL,
		})
		cancel()
		if err != nil {
			return err
		}
		defer summaries.Close()

		llmOpts = append(llmOpts, llm.WithCache(summaries))
		log.Infow("summary cache enabled", "addr", cfg.Redis.Addr, "ttl", cfg.Redis.TTL)
	}

	summarizer := llm.NewClient(llm.Config{
		Endpoint: cfg.LLM.Endpoint,
		Model:    cfg.LLM.Model,
		Timeout:  cfg.LLM.Timeout,
	}, llmOpts...)

	server := NewServer(ServerOptions{
		Analyzer:       analytics.NewAnalyzer(analytics.DefaultThresholds()),
		Summarizer:     summarizer,
		Logger:         log,
		Registry:       registry,
		Metrics:        collector,
		MaxUploadBytes: cfg.MaxUploadBytes,
		AllowedOrigins: cfg.AllowedOrigins,
	})

	log.Infow("starting", "llm_endpoint", cfg.LLM.Endpoint, "llm_model", cfg.LLM.Model)
	return server.Run(":" + cfg.Port)
}

func main() {
	if err := run(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
