// Package server exposes the quote pipeline and document rendering over HTTP.
package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/joseph-ayodele/tkp/internal/common"
	"github.com/joseph-ayodele/tkp/internal/document"
	"github.com/joseph-ayodele/tkp/internal/metrics"
	"github.com/joseph-ayodele/tkp/internal/quote"
)

const (
	msgBadPayload  = "Неверный формат данных: требуется объект с полем response.found_items"
	msgEmptyItems  = "Список товаров пуст или некорректен"
	msgPromptEmpty = "Prompt is required"

	maxSenderLength = 200
)

// QuoteRunner runs the pipeline for one prompt.
type QuoteRunner interface {
	Run(ctx context.Context, prompt string) (quote.Outcome, error)
}

// DocumentObserver is told about every render attempt.
type DocumentObserver interface {
	ObserveDocument(format string, err error)
}

type Handler struct {
	runner   QuoteRunner
	renderer *document.Renderer
	observer DocumentObserver
	logger   *slog.Logger
}

func NewHandler(runner QuoteRunner, renderer *document.Renderer, observer DocumentObserver, logger *slog.Logger) *Handler {
	if logger == nil {
		logger = slog.Default()
	}
	return &Handler{runner: runner, renderer: renderer, observer: observer, logger: logger}
}

// NewRouter wires the API routes, health and metrics.
func NewRouter(h *Handler) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery(), requestID(), accessLog(h.logger), metrics.GinMiddleware())

	r.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	api := r.Group("/api")
	api.POST("/llm", h.Quote)
	api.POST("/generate-tkp", h.GenerateTKP)
	return r
}

// Quote handles POST /api/llm.
func (h *Handler) Quote(c *gin.Context) {
	var req llmRequest
	if err := c.ShouldBindJSON(&req); err != nil || strings.TrimSpace(req.Prompt) == "" {
		c.JSON(http.StatusBadRequest, errorBody{Error: msgPromptEmpty})
		return
	}

	out, err := h.runner.Run(c.Request.Context(), req.Prompt)
	if err != nil {
		body := errorBody{Error: quote.UserMessage(err)}
		if errors.Is(err, common.ErrParse) || errors.Is(err, common.ErrFormat) {
			body.RawResponse = quote.Raw(err)
		}
		c.JSON(common.HTTPStatus(err), body)
		return
	}

	if nr := out.NoResults; nr != nil {
		c.JSON(http.StatusNotFound, errorBody{
			Error: nr.Message(),
			Details: &noResultsDetails{
				Query:      nr.Query,
				Complexity: string(nr.Complexity),
				Notes:      nr.Notes,
			},
		})
		return
	}

	c.JSON(http.StatusOK, llmResponse{Response: toQuoteBody(*out.Quote)})
}

// GenerateTKP handles POST /api/generate-tkp. The optional format query
// parameter selects docx (default) or xlsx.
func (h *Handler) GenerateTKP(c *gin.Context) {
	var p tkpPayload
	if err := c.ShouldBindJSON(&p); err != nil || p.Response == nil || p.Response.FoundItems == nil {
		c.JSON(http.StatusBadRequest, errorBody{Error: msgBadPayload})
		return
	}
	if len(p.Response.FoundItems) == 0 {
		c.JSON(http.StatusBadRequest, errorBody{Error: msgEmptyItems})
		return
	}

	v := common.NewValidator().
		Field("senderName", p.SenderName, common.MaxLength(maxSenderLength)).
		Field("senderContacts", p.SenderContacts, common.MaxLength(maxSenderLength))
	if err := common.ValidateAndReturnError(v); err != nil {
		c.JSON(http.StatusBadRequest, errorBody{Error: v.ErrorMessage()})
		return
	}

	format := c.Query("format")
	art, err := h.renderer.Render(c.Request.Context(), p.toQuote(), document.Options{
		Format: format,
		Sender: document.Sender{Name: p.SenderName, Contacts: p.SenderContacts},
	})
	if h.observer != nil {
		// unregistered formats share one label
		label, ok := h.renderer.ResolveFormat(format)
		if !ok {
			label = "unsupported"
		}
		h.observer.ObserveDocument(label, err)
	}
	if err != nil {
		msg := err.Error()
		var app *common.AppError
		if errors.As(err, &app) {
			msg = app.Message
		}
		c.JSON(common.HTTPStatus(err), errorBody{Error: msg})
		return
	}

	c.Header("Content-Disposition", fmt.Sprintf(`attachment; filename="%s"`, art.Filename))
	c.Data(http.StatusOK, art.ContentType, art.Bytes)
}
