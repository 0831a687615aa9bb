package quote

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/joseph-ayodele/tkp/constants"
	"github.com/joseph-ayodele/tkp/internal/common"
	"github.com/joseph-ayodele/tkp/internal/llm"
)

// ContextSource yields the system message for the model.
type ContextSource interface {
	SystemContext(materials, instructions string) (string, error)
}

// Recorder observes finished runs. Implementations must be safe for
// concurrent use.
type Recorder interface {
	ObserveQuote(status constants.OutcomeStatus, elapsed time.Duration)
}

// Options names the reference documents fed to the model.
type Options struct {
	MaterialsFile    string
	InstructionsFile string
	// MaxPromptLength caps the user prompt in runes; zero means no limit.
	MaxPromptLength int
}

// Assembler runs one request end to end: reference context, one model
// call, validation, pricing.
type Assembler struct {
	extractor llm.Extractor
	validator *Validator
	docs      ContextSource
	opts      Options
	recorder  Recorder
	log       *slog.Logger
}

func NewAssembler(extractor llm.Extractor, validator *Validator, docs ContextSource, opts Options, recorder Recorder, logger *slog.Logger) *Assembler {
	if logger == nil {
		logger = slog.Default()
	}
	if opts.MaterialsFile == "" {
		opts.MaterialsFile = "materials.csv"
	}
	if opts.InstructionsFile == "" {
		opts.InstructionsFile = "instructions.txt"
	}
	return &Assembler{
		extractor: extractor,
		validator: validator,
		docs:      docs,
		opts:      opts,
		recorder:  recorder,
		log:       logger,
	}
}

// Assemble returns either a costed quote or a NoResults outcome. All other
// results are errors classified by the common error kinds.
func (a *Assembler) Assemble(ctx context.Context, prompt string) (Outcome, error) {
	start := time.Now()
	reqID := common.RequestIDFromContext(ctx)
	if reqID == "" {
		reqID = uuid.NewString()
		ctx = common.WithRequestID(ctx, reqID)
	}
	log := a.log.With("req_id", reqID)

	out, raw, err := a.run(ctx, prompt)
	status := Status(out, err)
	elapsed := time.Since(start)
	if a.recorder != nil {
		a.recorder.ObserveQuote(status, elapsed)
	}

	switch status {
	case constants.OutcomeOK:
		log.Info("quote.assemble.ok",
			"id", out.Quote.ID,
			"items", out.Quote.ItemsCount,
			"total", out.Quote.TotalCost,
			"elapsed_ms", elapsed.Milliseconds())
	case constants.OutcomeNoResults:
		log.Info("quote.assemble.no_results", "elapsed_ms", elapsed.Milliseconds())
	case constants.OutcomeInputError, constants.OutcomeCanceled:
		log.Info("quote.assemble.rejected", "status", status, "err", err)
	default:
		log.Error("quote.assemble.failed",
			"status", status,
			"err", err,
			"raw", raw,
			"elapsed_ms", elapsed.Milliseconds())
	}
	return out, err
}

func (a *Assembler) run(ctx context.Context, prompt string) (Outcome, string, error) {
	prompt = llm.BuildUserPrompt(prompt)
	if prompt == "" {
		return Outcome{}, "", common.InputError("Prompt is required")
	}
	if a.opts.MaxPromptLength > 0 {
		v := common.NewValidator().Field("prompt", prompt, common.MaxLength(a.opts.MaxPromptLength))
		if err := common.ValidateAndReturnError(v); err != nil {
			return Outcome{}, "", err
		}
	}

	system, err := a.docs.SystemContext(a.opts.MaterialsFile, a.opts.InstructionsFile)
	if err != nil {
		return Outcome{}, "", fmt.Errorf("%w: %v", common.ErrInternal, err)
	}

	res, err := a.extractor.Extract(ctx, llm.ExtractRequest{SystemContext: system, Prompt: prompt})
	if err != nil {
		return Outcome{}, "", err
	}

	raw, err := a.validator.Validate(res.Content)
	if err != nil {
		return Outcome{}, res.Content, err
	}

	if raw.IsEmpty() {
		return Outcome{NoResults: &NoResults{
			Query:       raw.Query,
			Complexity:  raw.Complexity,
			Description: raw.Description,
			Notes:       raw.Notes,
		}}, res.Content, nil
	}

	q := Cost(raw)
	return Outcome{Quote: &q}, res.Content, nil
}

// Status maps a pipeline result onto its outcome label.
func Status(out Outcome, err error) constants.OutcomeStatus {
	switch {
	case err == nil && out.NoResults != nil:
		return constants.OutcomeNoResults
	case err == nil:
		return constants.OutcomeOK
	case errors.Is(err, context.Canceled):
		return constants.OutcomeCanceled
	case errors.Is(err, common.ErrInput):
		return constants.OutcomeInputError
	case errors.Is(err, common.ErrNetwork):
		return constants.OutcomeNetworkError
	case errors.Is(err, common.ErrParse):
		return constants.OutcomeParseError
	case errors.Is(err, common.ErrFormat):
		return constants.OutcomeFormatError
	case errors.Is(err, common.ErrValue):
		return constants.OutcomeValueError
	default:
		return constants.OutcomeFailed
	}
}

// UserMessage is the client-facing text for a pipeline error.
func UserMessage(err error) string {
	var um interface{ UserMessage() string }
	if errors.As(err, &um) {
		return um.UserMessage()
	}
	var app *common.AppError
	if errors.As(err, &app) && errors.Is(err, common.ErrInput) {
		return app.Message
	}
	if errors.Is(err, common.ErrNetwork) {
		return "Ошибка при обращении к LLM"
	}
	return "Внутренняя ошибка сервера"
}

// Raw returns the model reply attached to err, if any.
func Raw(err error) string {
	var rc RawCarrier
	if errors.As(err, &rc) {
		return strings.TrimSpace(rc.RawResponse())
	}
	return ""
}
