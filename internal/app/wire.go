// Package app assembles the quote pipeline from configuration. Both the
// HTTP daemon and the CLI build their dependencies here.
package app

import (
	"fmt"
	"log/slog"

	"github.com/joseph-ayodele/tkp/internal/async"
	"github.com/joseph-ayodele/tkp/internal/common"
	"github.com/joseph-ayodele/tkp/internal/document"
	"github.com/joseph-ayodele/tkp/internal/llm"
	"github.com/joseph-ayodele/tkp/internal/llm/gemini"
	"github.com/joseph-ayodele/tkp/internal/llm/openai"
	"github.com/joseph-ayodele/tkp/internal/quote"
	"github.com/joseph-ayodele/tkp/internal/refdocs"
)

// Pipeline is everything needed to answer a prompt and render the result.
type Pipeline struct {
	Runner   *async.Runner
	Renderer *document.Renderer
	Docs     *refdocs.Loader
}

// NewExtractor picks the model client named by cfg.Provider.
func NewExtractor(cfg common.LLMConfig, logger *slog.Logger) (llm.Extractor, error) {
	switch cfg.Provider {
	case "", "openai":
		return openai.NewClient(openai.Config{
			APIKey:      cfg.APIKey,
			BaseURL:     cfg.BaseURL,
			Model:       cfg.Model,
			MaxTokens:   cfg.MaxTokens,
			Temperature: cfg.Temperature,
			Timeout:     cfg.Timeout,
		}, logger), nil
	case "gemini":
		c, err := gemini.NewClient(gemini.Config{
			APIKey:      cfg.GeminiAPIKey,
			Model:       cfg.GeminiModel,
			MaxTokens:   cfg.MaxTokens,
			Temperature: cfg.Temperature,
			Timeout:     cfg.Timeout,
		}, logger)
		if err != nil {
			return nil, err
		}
		return c, nil
	default:
		return nil, common.NewAppError("CONFIG_ERROR", fmt.Sprintf("unknown LLM provider %q", cfg.Provider), common.ErrInput)
	}
}

// NewPipeline wires loader, extractor, validator, assembler, runner and
// renderer. recorder may be nil.
func NewPipeline(cfg *common.Config, recorder quote.Recorder, logger *slog.Logger) (*Pipeline, error) {
	extractor, err := NewExtractor(cfg.LLM, logger)
	if err != nil {
		return nil, err
	}
	return NewPipelineWith(cfg, extractor, recorder, logger)
}

// NewPipelineWith is NewPipeline with a caller-supplied extractor.
func NewPipelineWith(cfg *common.Config, extractor llm.Extractor, recorder quote.Recorder, logger *slog.Logger) (*Pipeline, error) {
	if logger == nil {
		logger = slog.Default()
	}
	validator, err := quote.NewValidator(cfg.LLM.StrictSchema, logger)
	if err != nil {
		return nil, fmt.Errorf("schema: %w", err)
	}
	docs := refdocs.NewLoader(cfg.Reference.Dir, logger)

	asm := quote.NewAssembler(extractor, validator, docs, quote.Options{
		MaterialsFile:    cfg.Reference.MaterialsFile,
		InstructionsFile: cfg.Reference.InstructionsFile,
		MaxPromptLength:  cfg.Pipeline.MaxPromptLength,
	}, recorder, logger)

	runner := async.NewRunner(asm, logger,
		async.WithWorkers(cfg.Pipeline.Workers),
		async.WithQueueSize(cfg.Pipeline.QueueSize),
		async.WithJobTimeout(cfg.Pipeline.JobTimeout),
	)

	renderer := document.NewRenderer(cfg.Document.Format, document.Sender{
		Name:     cfg.Document.SenderName,
		Contacts: cfg.Document.SenderContacts,
	}, logger)

	return &Pipeline{Runner: runner, Renderer: renderer, Docs: docs}, nil
}
