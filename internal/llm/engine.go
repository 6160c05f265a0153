package llm

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/docintel/docintel/internal/retrieve"
)

const systemPrompt = `You are a precise document analysis engine. You read document excerpts and reply with structured JSON exactly in the requested shape. You never invent values that are not supported by the text.`

// Engine runs one schema extraction end to end: retrieve context, build the
// prompt, make exactly one completion call, and parse the reply tolerantly.
// There are no retries; a bad reply surfaces as ParseSucceeded=false.
type Engine struct {
	client    CompletionClient
	retriever *retrieve.Retriever
	timeout   time.Duration
	logger    *slog.Logger
}

func NewEngine(client CompletionClient, retriever *retrieve.Retriever, timeout time.Duration, logger *slog.Logger) *Engine {
	if logger == nil {
		logger = slog.Default()
	}
	return &Engine{
		client:    client,
		retriever: retriever,
		timeout:   timeout,
		logger:    logger,
	}
}

// Extract assembles context from the searcher and runs the schema against
// the model. The returned error is reserved for transport-level failures;
// an unparseable reply is a valid Result with ParseSucceeded=false.
func (e *Engine) Extract(ctx context.Context, searcher retrieve.Searcher, schema Schema) (*Result, error) {
	reqID := uuid.NewString()
	start := time.Now()
	e.logger.Info("llm.extract.start", "req_id", reqID, "schema", schema.Name)

	rctx, err := e.retriever.Retrieve(ctx, searcher, schema.Intents)
	if err != nil {
		return nil, fmt.Errorf("retrieving context for %s: %w", schema.Name, err)
	}

	budget := schema.ContextBudget
	if budget <= 0 {
		budget = DefaultContextBudget
	}
	user := buildUserPrompt(schema.Instructions, rctx.Text, budget)

	callCtx := ctx
	if e.timeout > 0 {
		var cancel context.CancelFunc
		callCtx, cancel = context.WithTimeout(ctx, e.timeout)
		defer cancel()
	}

	reply, err := e.client.Complete(callCtx, systemPrompt, user)
	if err != nil {
		e.logger.Error("llm.extract.failed",
			"req_id", reqID,
			"schema", schema.Name,
			"error", err,
			"elapsed_ms", time.Since(start).Milliseconds())
		return nil, fmt.Errorf("completion for %s: %w", schema.Name, err)
	}

	result := &Result{
		SchemaName:   schema.Name,
		Raw:          reply,
		Intent:       rctx.Intent,
		Insufficient: rctx.Insufficient,
	}

	fields, ok := ParseTolerant(reply)
	if !ok {
		e.logger.Warn("llm.extract.parse_failed",
			"req_id", reqID,
			"schema", schema.Name,
			"reply_len", len(reply),
			"elapsed_ms", time.Since(start).Milliseconds())
		return result, nil
	}

	NormalizeAmounts(fields, schema.ArithmeticFields)
	result.Fields = fields
	result.ParseSucceeded = true

	e.logger.Info("llm.extract.done",
		"req_id", reqID,
		"schema", schema.Name,
		"intent", rctx.Intent,
		"fields", len(fields),
		"elapsed_ms", time.Since(start).Milliseconds())
	return result, nil
}

// buildUserPrompt embeds the retrieved context under the task instructions,
// truncating the context to the schema's budget. The cut is on a rune
// boundary so a multi-byte character is never split.
func buildUserPrompt(instructions, context string, budget int) string {
	if runes := []rune(context); len(runes) > budget {
		context = string(runes[:budget]) + "\n[...truncated...]"
	}
	return fmt.Sprintf("%s\n\nDocument excerpts:\n---\n%s\n---", instructions, context)
}
