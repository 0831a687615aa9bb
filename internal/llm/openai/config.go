package openai

import (
	"log/slog"
	"net/http"
	"os"
	"time"
)

// Config for the OpenAI-compatible chat/completions client.
type Config struct {
	APIKey      string        // optional; falls back to env LLM_API_KEY, local servers need none
	BaseURL     string        // default http://localhost:1234/v1
	Model       string        // e.g., "qwen/qwen3-4b-thinking-2507"
	MaxTokens   int           // completion budget
	Temperature float32       // low for determinism
	Timeout     time.Duration // bound on the single call
}

type Client struct {
	cfg        Config
	httpClient *http.Client
	log        *slog.Logger
}

func NewClient(cfg Config, logger *slog.Logger) *Client {
	if cfg.APIKey == "" {
		cfg.APIKey = os.Getenv("LLM_API_KEY")
	}
	if cfg.BaseURL == "" {
		cfg.BaseURL = "http://localhost:1234/v1"
	}
	if cfg.Model == "" {
		cfg.Model = "qwen/qwen3-4b-thinking-2507"
	}
	if cfg.MaxTokens <= 0 {
		cfg.MaxTokens = 4096
	}
	if cfg.Temperature < 0 {
		cfg.Temperature = 0.1
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 120 * time.Second
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Client{
		cfg: cfg,
		// the per-call deadline comes from ctx; the client has no own timeout
		httpClient: &http.Client{},
		log:        logger,
	}
}

// WithHTTPClient swaps the transport, mainly for tests.
func (c *Client) WithHTTPClient(hc *http.Client) *Client {
	if hc != nil {
		c.httpClient = hc
	}
	return c
}
