package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"text/tabwriter"

	"github.com/joseph-ayodele/tkp/internal/app"
	"github.com/joseph-ayodele/tkp/internal/common"
	"github.com/joseph-ayodele/tkp/internal/document"
	"github.com/joseph-ayodele/tkp/internal/quote"
)

const (
	exitOK        = 0
	exitFailure   = 1
	exitInput     = 2
	exitNoResults = 3
	exitCanceled  = 130
)

func main() {
	os.Exit(run(os.Args[1:], os.Stdin, os.Stdout))
}

func run(args []string, stdin io.Reader, stdout io.Writer) int {
	fs := flag.NewFlagSet("tkp", flag.ContinueOnError)
	out := fs.String("o", "", "write the proposal to this file (or directory)")
	format := fs.String("format", "", "document format: docx or xlsx")
	sender := fs.String("sender", "", "sender name printed on the proposal")
	contacts := fs.String("contacts", "", "sender contacts printed on the proposal")
	asJSON := fs.Bool("json", false, "print the quote as JSON instead of a table")
	if err := fs.Parse(args); err != nil {
		return exitInput
	}

	cfg := common.LoadConfig()
	logger := common.NewLogger(common.LogConfig{Level: cfg.Log.Level, Format: "text"})
	if err := cfg.Validate(); err != nil {
		logger.Error("config.invalid", "err", err)
		return exitInput
	}

	prompt := strings.Join(fs.Args(), " ")
	if prompt == "" || prompt == "-" {
		b, err := io.ReadAll(stdin)
		if err != nil {
			logger.Error("stdin.read.failed", "err", err)
			return exitInput
		}
		prompt = string(b)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	cfg.Pipeline.Workers = 1
	pipe, err := app.NewPipeline(cfg, nil, logger)
	if err != nil {
		logger.Error("pipeline.init.failed", "err", err)
		return exitFailure
	}
	defer pipe.Runner.Shutdown(context.Background())

	job, err := pipe.Runner.Submit(ctx, prompt)
	if err != nil {
		logger.Error("submit.failed", "err", err)
		return exitFailure
	}
	res, err := job.Wait(ctx)
	if err != nil {
		return reportError(stdout, err)
	}
	if res.NoResults != nil {
		fmt.Fprintln(stdout, res.NoResults.Message())
		return exitNoResults
	}

	q := *res.Quote
	if *asJSON {
		enc := json.NewEncoder(stdout)
		enc.SetIndent("", "  ")
		if err := enc.Encode(q); err != nil {
			return exitFailure
		}
	} else {
		printQuote(stdout, q)
	}

	if *out == "" {
		return exitOK
	}
	art, err := pipe.Renderer.Render(ctx, q, document.Options{
		Format: *format,
		Sender: document.Sender{Name: *sender, Contacts: *contacts},
	})
	if err != nil {
		return reportError(stdout, err)
	}
	path := *out
	if st, err := os.Stat(path); err == nil && st.IsDir() {
		path = filepath.Join(path, art.Filename)
	}
	if err := os.WriteFile(path, art.Bytes, 0o644); err != nil {
		logger.Error("write.failed", "path", path, "err", err)
		return exitFailure
	}
	fmt.Fprintf(stdout, "\nsaved %s\n", path)
	return exitOK
}

func reportError(w io.Writer, err error) int {
	fmt.Fprintln(w, "error:", quote.UserMessage(err))
	if raw := quote.Raw(err); raw != "" {
		fmt.Fprintln(w, "raw response:", raw)
	}
	switch {
	case errors.Is(err, context.Canceled):
		return exitCanceled
	case errors.Is(err, common.ErrInput), errors.Is(err, common.ErrUnsupportedFormat):
		return exitInput
	default:
		return exitFailure
	}
}

func printQuote(w io.Writer, q quote.CostedQuote) {
	fmt.Fprintf(w, "ТКП #%d  [%s]\n", q.ID, q.Complexity.Label())
	if q.Query != "" {
		fmt.Fprintf(w, "Запрос: %s\n", q.Query)
	}
	if q.Description != "" {
		fmt.Fprintf(w, "Описание: %s\n", q.Description)
	}
	fmt.Fprintln(w)

	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', tabwriter.AlignRight)
	fmt.Fprintln(tw, "№\tНаименование\tАртикул\tКол-во\tЦена\tСумма\t")
	for i, it := range q.Items {
		article := it.Article
		if article == "" {
			article = "-"
		}
		fmt.Fprintf(tw, "%d\t%s\t%s\t%s\t%s\t%s\t\n", i+1, it.Name, article, it.Count, it.UnitCost, it.LineTotal)
	}
	fmt.Fprintf(tw, "\t\t\t\tИТОГО:\t%s\t\n", q.TotalCost)
	_ = tw.Flush()

	if q.Notes != "" {
		fmt.Fprintf(w, "\nПримечания: %s\n", q.Notes)
	}
}
