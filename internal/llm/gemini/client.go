// Package gemini is an llm.Extractor backed by the Gemini API. The quote
// schema travels as ResponseSchema; keywords Gemini's dialect lacks
// (minimum, additionalProperties) are enforced by the validator instead.
package gemini

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/generative-ai-go/genai"
	"github.com/google/uuid"
	"google.golang.org/api/googleapi"
	"google.golang.org/api/option"

	"github.com/joseph-ayodele/tkp/internal/common"
	"github.com/joseph-ayodele/tkp/internal/llm"
)

const providerName = "gemini"

type Config struct {
	APIKey      string
	Model       string
	MaxTokens   int
	Temperature float32
	Timeout     time.Duration
	Options     []option.ClientOption // extra client options (endpoint overrides in tests)
}

type Client struct {
	cfg    Config
	schema *genai.Schema
	log    *slog.Logger
}

func NewClient(cfg Config, logger *slog.Logger) (*Client, error) {
	cfg.APIKey = strings.TrimSpace(cfg.APIKey)
	cfg.Model = strings.TrimSpace(cfg.Model)
	if cfg.APIKey == "" {
		return nil, common.NewAppError("CONFIG_ERROR", "GEMINI_API_KEY is empty", common.ErrInput)
	}
	if cfg.Model == "" {
		cfg.Model = "gemini-2.5-flash"
	}
	if cfg.MaxTokens <= 0 {
		cfg.MaxTokens = 4096
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 120 * time.Second
	}
	if logger == nil {
		logger = slog.Default()
	}
	schema, err := ToGenaiSchema(llm.BuildQuoteJSONSchema())
	if err != nil {
		return nil, fmt.Errorf("convert schema: %w", err)
	}
	return &Client{cfg: cfg, schema: schema, log: logger}, nil
}

// Extract implements llm.Extractor. One GenerateContent call, no retries.
func (c *Client) Extract(ctx context.Context, req llm.ExtractRequest) (llm.ExtractResult, error) {
	rid := common.RequestIDFromContext(ctx)
	if rid == "" {
		rid = uuid.New().String()
	}
	start := time.Now()

	prompt := llm.BuildUserPrompt(req.Prompt)
	if prompt == "" {
		return llm.ExtractResult{}, common.InputError("prompt is required")
	}

	callCtx, cancel := common.WithTimeout(ctx, c.cfg.Timeout)
	defer cancel()

	c.log.Info("llm.extract.start",
		"req_id", rid,
		"provider", providerName,
		"model", c.cfg.Model,
		"temp", c.cfg.Temperature,
		"prompt_len", len(prompt),
		"system_len", len(req.SystemContext),
	)

	opts := append([]option.ClientOption{option.WithAPIKey(c.cfg.APIKey)}, c.cfg.Options...)
	cl, err := genai.NewClient(callCtx, opts...)
	if err != nil {
		return llm.ExtractResult{}, &llm.NetworkError{Provider: providerName, Err: err}
	}
	defer func() {
		if err := cl.Close(); err != nil {
			c.log.Warn("llm.gemini.close_error", "req_id", rid, "error", err)
		}
	}()

	m := cl.GenerativeModel(c.cfg.Model)
	m.GenerationConfig = genai.GenerationConfig{
		Temperature:      ptr(c.cfg.Temperature),
		MaxOutputTokens:  ptr(int32(c.cfg.MaxTokens)),
		ResponseMIMEType: "application/json",
		ResponseSchema:   c.schema,
	}
	if req.SystemContext != "" {
		m.SystemInstruction = &genai.Content{Parts: []genai.Part{genai.Text(req.SystemContext)}}
	}

	resp, err := m.GenerateContent(callCtx, genai.Text(prompt))
	if err != nil {
		ne := &llm.NetworkError{Provider: providerName, Err: err}
		var gerr *googleapi.Error
		if errors.As(err, &gerr) {
			ne.Status = gerr.Code
			ne.Body = gerr.Body
		}
		c.log.Error("llm.extract.http_error",
			"req_id", rid, "status", ne.Status, "error", err,
			"elapsed_ms", time.Since(start).Milliseconds(),
		)
		return llm.ExtractResult{}, ne
	}

	text, ok := firstText(resp)
	if !ok {
		c.log.Error("llm.extract.no_choices", "req_id", rid,
			"elapsed_ms", time.Since(start).Milliseconds())
		return llm.ExtractResult{}, &llm.NetworkError{
			Provider: providerName, Status: 200,
			Err: errors.New("no text candidate in response"),
		}
	}

	content := llm.CleanContent(text)
	elapsed := time.Since(start)
	c.log.Info("llm.extract.ok",
		"req_id", rid,
		"model", c.cfg.Model,
		"content_len", len(content),
		"elapsed_ms", elapsed.Milliseconds(),
	)
	return llm.ExtractResult{Content: content, Model: c.cfg.Model, Elapsed: elapsed}, nil
}

func firstText(resp *genai.GenerateContentResponse) (string, bool) {
	if resp == nil || len(resp.Candidates) == 0 {
		return "", false
	}
	for _, cand := range resp.Candidates {
		if cand.Content == nil {
			continue
		}
		for _, p := range cand.Content.Parts {
			if t, ok := p.(genai.Text); ok {
				return string(t), true
			}
		}
	}
	return "", false
}

func ptr[T any](v T) *T { return &v }
