package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/joho/godotenv"

	"github.com/docintel/docintel/internal/chunk"
	"github.com/docintel/docintel/internal/common"
	"github.com/docintel/docintel/internal/index"
	"github.com/docintel/docintel/internal/llm"
	"github.com/docintel/docintel/internal/llm/openai"
	"github.com/docintel/docintel/internal/normalize"
	"github.com/docintel/docintel/internal/pipeline"
	"github.com/docintel/docintel/internal/repository"
	"github.com/docintel/docintel/internal/retrieve"
	"github.com/docintel/docintel/internal/validate"
	"github.com/docintel/docintel/internal/workflow"
)

// analyze runs the whole pipeline over one local file and prints the report
// as JSON. Useful for trying workflows without standing up the daemon.
func main() {
	wf := flag.String("workflow", "auto", "workflow to run (auto or a document type, e.g. invoice)")
	verbose := flag.Bool("v", false, "verbose logging")
	flag.Parse()

	if flag.NArg() != 1 {
		fmt.Fprintln(os.Stderr, "usage: analyze [-workflow name] [-v] <file>")
		os.Exit(2)
	}
	path := flag.Arg(0)

	level := slog.LevelWarn
	if *verbose {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
	slog.SetDefault(logger)

	_ = godotenv.Load()

	cfg := common.LoadConfig()
	if err := cfg.Validate(); err != nil {
		fmt.Fprintf(os.Stderr, "configuration: %v\n", err)
		os.Exit(1)
	}

	if err := run(context.Background(), cfg, logger, path, *wf); err != nil {
		fmt.Fprintf(os.Stderr, "analyze: %v\n", err)
		if hint := common.RemediationHint(err); hint != "" {
			fmt.Fprintf(os.Stderr, "hint: %s\n", hint)
		}
		os.Exit(1)
	}
}

func run(ctx context.Context, cfg *common.Config, logger *slog.Logger, path, wf string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}

	store, err := repository.Open(cfg.Store.Path, logger)
	if err != nil {
		return err
	}
	defer store.Close()

	client := openai.NewClient(openai.Config{
		APIKey:         cfg.LLM.APIKey,
		BaseURL:        cfg.LLM.BaseURL,
		Model:          cfg.LLM.Model,
		EmbeddingModel: cfg.Embed.Model,
		Temperature:    cfg.LLM.Temperature,
		Timeout:        cfg.LLM.Timeout,
	}, logger)

	splitter, err := chunk.NewSplitter(cfg.Pipeline.ChunkSize, cfg.Pipeline.ChunkOverlap)
	if err != nil {
		return err
	}

	engine := llm.NewEngine(client, retrieve.NewRetriever(cfg.Pipeline.MinContextChars, logger), cfg.LLM.Timeout, logger)
	orch := workflow.NewOrchestrator(engine, validate.NewRunner(logger), logger)

	proc := pipeline.NewProcessor(
		normalize.NewService(cfg.Pipeline.MinTextLength, logger),
		splitter,
		client,
		index.NewRegistry(cfg.Pipeline.MaxIndexedDocs, logger),
		orch,
		store,
		logger,
	)

	doc, err := proc.Ingest(ctx, normalize.RawUpload{Data: data, Hint: filepath.Base(path)})
	if err != nil {
		return err
	}
	if err := proc.RunDocument(ctx, doc.ID, wf); err != nil {
		return err
	}

	report, err := proc.Report(ctx, doc.ID)
	if err != nil {
		return err
	}

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(report)
}
