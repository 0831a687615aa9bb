package openai

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/joseph-ayodele/tkp/internal/common"
	"github.com/joseph-ayodele/tkp/internal/llm"
)

const providerName = "openai"

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatRequest struct {
	Model          string         `json:"model"`
	Messages       []chatMessage  `json:"messages"`
	MaxTokens      int            `json:"max_tokens"`
	Temperature    float32        `json:"temperature"`
	ResponseFormat map[string]any `json:"response_format"`
}

type chatResponse struct {
	Choices []struct {
		Message struct {
			Content *string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
}

// Extract implements llm.Extractor with one chat/completions call constrained
// by the quote JSON schema.
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

	c.log.Info("llm.extract.start",
		"req_id", rid,
		"provider", providerName,
		"model", c.cfg.Model,
		"temp", c.cfg.Temperature,
		"max_tokens", c.cfg.MaxTokens,
		"prompt_len", len(prompt),
		"system_len", len(req.SystemContext),
	)

	body := chatRequest{
		Model: c.cfg.Model,
		Messages: []chatMessage{
			{Role: "system", Content: req.SystemContext},
			{Role: "user", Content: prompt},
		},
		MaxTokens:      c.cfg.MaxTokens,
		Temperature:    c.cfg.Temperature,
		ResponseFormat: llm.ResponseFormat(llm.BuildQuoteJSONSchema()),
	}

	headers := map[string]string{}
	if c.cfg.APIKey != "" {
		headers["Authorization"] = "Bearer " + c.cfg.APIKey
	}

	callCtx, cancel := common.WithTimeout(ctx, c.cfg.Timeout)
	defer cancel()

	endpoint := strings.TrimRight(c.cfg.BaseURL, "/") + "/chat/completions"
	raw, status, err := llm.SendJSON(callCtx, c.httpClient, endpoint, body, headers, c.log)
	if err != nil {
		var ne *llm.NetworkError
		if errors.As(err, &ne) {
			ne.Provider = providerName
		}
		c.log.Error("llm.extract.http_error",
			"req_id", rid, "status", status, "error", err,
			"elapsed_ms", time.Since(start).Milliseconds(),
		)
		return llm.ExtractResult{}, err
	}

	var cc chatResponse
	if err := json.Unmarshal(raw, &cc); err != nil {
		c.log.Error("llm.extract.decode_error",
			"req_id", rid, "error", err, "raw_bytes", len(raw),
			"elapsed_ms", time.Since(start).Milliseconds(),
		)
		return llm.ExtractResult{}, &llm.NetworkError{
			Provider: providerName, Status: status, Body: string(raw),
			Err: fmt.Errorf("decode completion envelope: %w", err),
		}
	}
	if len(cc.Choices) == 0 || cc.Choices[0].Message.Content == nil {
		c.log.Error("llm.extract.no_choices",
			"req_id", rid, "raw", string(raw),
			"elapsed_ms", time.Since(start).Milliseconds(),
		)
		return llm.ExtractResult{}, &llm.NetworkError{
			Provider: providerName, Status: status, Body: string(raw),
			Err: errors.New("no completion content in response"),
		}
	}

	content := llm.CleanContent(*cc.Choices[0].Message.Content)
	elapsed := time.Since(start)
	c.log.Info("llm.extract.ok",
		"req_id", rid,
		"model", c.cfg.Model,
		"content_len", len(content),
		"elapsed_ms", elapsed.Milliseconds(),
	)
	return llm.ExtractResult{Content: content, Model: c.cfg.Model, Elapsed: elapsed}, nil
}
