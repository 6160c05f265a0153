package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/docintel/docintel/internal/async"
	"github.com/docintel/docintel/internal/chunk"
	"github.com/docintel/docintel/internal/common"
	"github.com/docintel/docintel/internal/export"
	"github.com/docintel/docintel/internal/index"
	"github.com/docintel/docintel/internal/llm"
	"github.com/docintel/docintel/internal/llm/openai"
	"github.com/docintel/docintel/internal/normalize"
	"github.com/docintel/docintel/internal/pipeline"
	"github.com/docintel/docintel/internal/repository"
	"github.com/docintel/docintel/internal/retrieve"
	"github.com/docintel/docintel/internal/server"
	"github.com/docintel/docintel/internal/validate"
	"github.com/docintel/docintel/internal/workflow"
)

func main() {
	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))
	slog.SetDefault(logger)

	_ = godotenv.Load()

	cfg := common.LoadConfig()
	if err := cfg.Validate(); err != nil {
		logger.Error("invalid configuration", "error", err)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	store, err := repository.Open(cfg.Store.Path, logger)
	if err != nil {
		logger.Error("failed to open store", "path", cfg.Store.Path, "error", err)
		os.Exit(1)
	}
	defer store.Close()

	if err := store.HealthCheck(ctx, 5*time.Second); err != nil {
		logger.Error("store health check failed", "error", err)
		os.Exit(1)
	}

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
		logger.Error("invalid chunking configuration", "error", err)
		os.Exit(1)
	}

	retriever := retrieve.NewRetriever(cfg.Pipeline.MinContextChars, logger)
	engine := llm.NewEngine(client, retriever, cfg.LLM.Timeout, logger)
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

	queue := async.NewRunnerQueue(proc, logger,
		async.WithWorkers(cfg.Pipeline.Workers),
		async.WithQueueSize(512),
		async.WithRunTimeout(cfg.Pipeline.RunTimeout),
	)

	srv := server.New(proc, queue, export.NewService(logger), store, logger)
	httpServer := &http.Server{
		Addr:    cfg.Server.HTTPAddr,
		Handler: srv.Router(),
	}

	logger.Info("docanalyzerd listening", "addr", cfg.Server.HTTPAddr)
	go func() {
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("http serve error", "error", err)
			os.Exit(1)
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()
	queue.Shutdown(shutdownCtx)
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		logger.Error("http shutdown error", "error", err)
	}
}
