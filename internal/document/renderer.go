package document

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"strings"
	"time"

	"github.com/joseph-ayodele/tkp/constants"
	"github.com/joseph-ayodele/tkp/internal/common"
	"github.com/joseph-ayodele/tkp/internal/quote"
)

// Encoder turns a laid-out document into file bytes.
type Encoder interface {
	Format() string
	ContentType() string
	Encode(doc QuoteDocument) ([]byte, error)
}

// Artifact is a rendered file ready to be sent or saved.
type Artifact struct {
	Bytes       []byte
	ContentType string
	Filename    string
	Format      string
}

// Options override the renderer defaults for one call. Zero fields keep
// the defaults.
type Options struct {
	Format string
	Sender Sender
}

type Renderer struct {
	encoders      map[string]Encoder
	defaultFormat string
	sender        Sender
	now           func() time.Time
	logger        *slog.Logger
}

// NewRenderer registers the DOCX and XLSX encoders.
func NewRenderer(defaultFormat string, sender Sender, logger *slog.Logger) *Renderer {
	if logger == nil {
		logger = slog.Default()
	}
	if defaultFormat == "" {
		defaultFormat = constants.DocumentDOCX
	}
	r := &Renderer{
		encoders:      make(map[string]Encoder),
		defaultFormat: defaultFormat,
		sender:        sender.withDefaults(),
		now:           time.Now,
		logger:        logger,
	}
	r.Register(DOCXEncoder{})
	r.Register(XLSXEncoder{})
	return r
}

// Register adds or replaces the encoder for enc.Format().
func (r *Renderer) Register(enc Encoder) {
	r.encoders[strings.ToLower(enc.Format())] = enc
}

// Formats lists the registered formats.
func (r *Renderer) Formats() []string {
	out := make([]string, 0, len(r.encoders))
	for f := range r.encoders {
		out = append(out, f)
	}
	sort.Strings(out)
	return out
}

// ResolveFormat maps a requested format to a registered one. An empty
// request means the default; ok is false when nothing is registered for it.
func (r *Renderer) ResolveFormat(requested string) (format string, ok bool) {
	format = strings.ToLower(strings.TrimSpace(requested))
	if format == "" {
		format = r.defaultFormat
	}
	_, ok = r.encoders[format]
	return format, ok
}

// Render never returns bytes together with an error.
func (r *Renderer) Render(ctx context.Context, q quote.CostedQuote, opts Options) (Artifact, error) {
	start := time.Now()
	reqID := common.RequestIDFromContext(ctx)

	format, ok := r.ResolveFormat(opts.Format)
	if !ok {
		return Artifact{}, common.NewAppError("UNSUPPORTED_FORMAT",
			fmt.Sprintf("unsupported document format %q (supported: %s)", format, strings.Join(r.Formats(), ", ")),
			common.ErrUnsupportedFormat)
	}

	sender := opts.Sender
	if sender.Name == "" {
		sender.Name = r.sender.Name
	}
	if sender.Contacts == "" {
		sender.Contacts = r.sender.Contacts
	}

	date := r.now()
	doc, err := Build(q, sender, date)
	if err != nil {
		r.logger.Info("document.render.rejected", "req_id", reqID, "quote_id", q.ID, "err", err)
		return Artifact{}, err
	}

	enc := r.encoders[format]
	b, err := enc.Encode(doc)
	if err != nil {
		r.logger.Error("document.render.failed", "req_id", reqID, "quote_id", q.ID, "format", format, "err", err)
		return Artifact{}, common.GenerationError("Ошибка при генерации документа", err)
	}

	r.logger.Info("document.render.ok",
		"req_id", reqID,
		"quote_id", q.ID,
		"format", format,
		"items", q.ItemsCount,
		"bytes", len(b),
		"elapsed_ms", time.Since(start).Milliseconds(),
	)
	return Artifact{
		Bytes:       b,
		ContentType: enc.ContentType(),
		Filename:    Filename(q.ID, date, enc.Format()),
		Format:      enc.Format(),
	}, nil
}

// Filename is tkp_<id>_<YYYY-MM-DD>.<ext>, dated in UTC.
func Filename(id int64, date time.Time, ext string) string {
	return fmt.Sprintf("tkp_%d_%s.%s", id, date.UTC().Format("2006-01-02"), ext)
}
