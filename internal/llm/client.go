package llm

import (
	"bytes"
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"llm-monitor/internal/logger"
	"llm-monitor/internal/models"
)

const (
	DefaultEndpoint = "http://localhost:11434/api/generate"
	DefaultModel    = "llama3"
)

type Config struct {
	Endpoint string
	Model    string
	// Timeout of zero leaves the HTTP client without a deadline.
	Timeout time.Duration
}

func DefaultConfig() Config {
	return Config{Endpoint: DefaultEndpoint, Model: DefaultModel}
}

// Cache stores generated text by prompt key. Implementations must be safe
// for concurrent use.
type Cache interface {
	Get(ctx context.Context, key string) (string, bool, error)
	Set(ctx context.Context, key, value string) error
}

// Observer receives call outcomes, e.g. for metrics.
type Observer interface {
	ObserveGeneration(outcome string, duration time.Duration)
	ObserveCacheLookup(hit bool)
}

const (
	OutcomeSuccess        = "success"
	OutcomeServerError    = "server_error"
	OutcomeTransportError = "transport_error"
)

type Client struct {
	cfg        Config
	httpClient *http.Client
	cache      Cache
	observer   Observer
	log        *logger.Logger
}

type Option func(*Client)

func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.httpClient = hc }
}

func WithCache(cache Cache) Option {
	return func(c *Client) { c.cache = cache }
}

func WithObserver(o Observer) Option {
	return func(c *Client) { c.observer = o }
}

func WithLogger(l *logger.Logger) Option {
	return func(c *Client) { c.log = l }
}

func NewClient(cfg Config, opts ...Option) *Client {
	if cfg.Endpoint == "" {
		cfg.Endpoint = DefaultEndpoint
	}
	if cfg.Model == "" {
		cfg.Model = DefaultModel
	}

	c := &Client{
		cfg:        cfg,
		httpClient: &http.Client{Timeout: cfg.Timeout},
		log:        logger.NewNop(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func (c *Client) Model() string {
	return c.cfg.Model
}

// Summarize asks the model for an analysis of result.
func (c *Client) Summarize(ctx context.Context, result models.AnalysisResult) (string, error) {
	return c.Generate(ctx, BuildPrompt(result))
}

// Generate sends a single non-streaming generation request. Errors are
// *ServerError or *TransportError.
func (c *Client) Generate(ctx context.Context, prompt string) (string, error) {
	key := c.cacheKey(prompt)
	if text, ok := c.lookup(ctx, key); ok {
		return text, nil
	}

	start := time.Now()
	text, err := c.generate(ctx, prompt)
	c.observe(err, time.Since(start))
	if err != nil {
		return "", err
	}

	if c.cache != nil {
		if err := c.cache.Set(ctx, key, text); err != nil {
			c.log.WithError(err).Warn("failed to cache summary")
		}
	}
	return text, nil
}

func (c *Client) generate(ctx context.Context, prompt string) (string, error) {
	body, err := json.Marshal(models.GenerateRequest{
		Model:  c.cfg.Model,
		Prompt: prompt,
		Stream: false,
	})
	if err != nil {
		return "", &TransportError{Err: fmt.Errorf("failed to marshal request: %w", err)}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.cfg.Endpoint, bytes.NewReader(body))
	if err != nil {
		return "", &TransportError{Err: err}
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", &TransportError{Err: err}
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", &TransportError{Err: fmt.Errorf("failed to read response: %w", err)}
	}

	if resp.StatusCode != http.StatusOK {
		return "", &ServerError{StatusCode: resp.StatusCode, Body: string(raw)}
	}

	var out models.GenerateResponse
	if err := json.Unmarshal(raw, &out); err != nil {
		return "", &TransportError{Err: fmt.Errorf("failed to decode response: %w", err)}
	}
	return out.Response, nil
}

func (c *Client) cacheKey(prompt string) string {
	sum := sha256.Sum256([]byte(c.cfg.Model + "\x00" + prompt))
	return hex.EncodeToString(sum[:])
}

func (c *Client) lookup(ctx context.Context, key string) (string, bool) {
	if c.cache == nil {
		return "", false
	}

	text, ok, err := c.cache.Get(ctx, key)
	if err != nil {
		c.log.WithError(err).Warn("summary cache lookup failed")
		return "", false
	}
	if c.observer != nil {
		c.observer.ObserveCacheLookup(ok)
	}
	return text, ok
}

func (c *Client) observe(err error, d time.Duration) {
	if c.observer == nil {
		return
	}

	outcome := OutcomeSuccess
	switch err.(type) {
	case nil:
	case *ServerError:
		outcome = OutcomeServerError
	default:
		outcome = OutcomeTransportError
	}
	c.observer.ObserveGeneration(outcome, d)
}
