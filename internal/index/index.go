package index

import (
	"context"
	"log/slog"
	"math"
	"sort"
	"time"

	"github.com/google/uuid"

	"github.com/docintel/docintel/internal/chunk"
	"github.com/docintel/docintel/internal/common"
)

// Embedder turns text into fixed-dimension vectors. Implementations batch
// where the backing service allows it.
type Embedder interface {
	Embed(ctx context.Context, texts []string) ([][]float32, error)
}

// SearchResult pairs a chunk with its cosine similarity to the query.
type SearchResult struct {
	Chunk chunk.Chunk
	Score float32
}

// Index holds one document's chunks and their embeddings. It is immutable
// after Build and safe for concurrent Search calls.
type Index struct {
	documentID uuid.UUID
	chunks     []chunk.Chunk
	embeddings [][]float32
	dimension  int
	embedder   Embedder
	logger     *slog.Logger
}

// Build embeds every chunk and assembles the searchable index. All chunks
// must belong to the same document.
func Build(ctx context.Context, documentID uuid.UUID, chunks []chunk.Chunk, embedder Embedder, logger *slog.Logger) (*Index, error) {
	if logger == nil {
		logger = slog.Default()
	}
	if len(chunks) == 0 {
		return nil, common.NewAppError("INDEX_ERROR", "no chunks to index", common.ErrInvalidInput)
	}
	for _, c := range chunks {
		if c.DocumentID != documentID {
			return nil, common.NewAppError("INDEX_ERROR", "chunk belongs to a different document", common.ErrInvalidInput)
		}
	}

	start := time.Now()
	texts := make([]string, len(chunks))
	for i, c := range chunks {
		texts[i] = c.Text
	}

	embeddings, err := embedder.Embed(ctx, texts)
	if err != nil {
		return nil, common.WrapError(err, "embedding chunks")
	}
	if len(embeddings) != len(chunks) {
		return nil, common.NewAppError("INDEX_ERROR", "embedding count does not match chunk count", common.ErrInternal)
	}

	dim := 0
	if len(embeddings) > 0 {
		dim = len(embeddings[0])
	}
	for _, e := range embeddings {
		if len(e) != dim {
			return nil, common.NewAppError("INDEX_ERROR", "inconsistent embedding dimensions", common.ErrInternal)
		}
	}

	logger.Info("index.build.done",
		"doc_id", documentID.String(),
		"chunks", len(chunks),
		"dimension", dim,
		"elapsed_ms", time.Since(start).Milliseconds())

	return &Index{
		documentID: documentID,
		chunks:     chunks,
		embeddings: embeddings,
		dimension:  dim,
		embedder:   embedder,
		logger:     logger,
	}, nil
}

func (ix *Index) DocumentID() uuid.UUID { return ix.documentID }
func (ix *Index) Len() int              { return len(ix.chunks) }

// Search embeds the query and returns up to k chunks ordered by descending
// cosine similarity. A k larger than the index returns everything; every
// result carries the index's own document ID.
func (ix *Index) Search(ctx context.Context, query string, k int) ([]SearchResult, error) {
	if k <= 0 {
		return nil, nil
	}

	vectors, err := ix.embedder.Embed(ctx, []string{query})
	if err != nil {
		return nil, common.WrapError(err, "embedding query")
	}
	if len(vectors) != 1 || len(vectors[0]) != ix.dimension {
		return nil, common.NewAppError("INDEX_ERROR", "query embedding has wrong dimension", common.ErrInternal)
	}
	queryVec := vectors[0]

	results := make([]SearchResult, len(ix.chunks))
	for i, c := range ix.chunks {
		results[i] = SearchResult{
			Chunk: c,
			Score: cosineSimilarity(queryVec, ix.embeddings[i]),
		}
	}
	sort.SliceStable(results, func(a, b int) bool {
		return results[a].Score > results[b].Score
	})

	if k < len(results) {
		results = results[:k]
	}
	return results, nil
}

func cosineSimilarity(a, b []float32) float32 {
	var dot, normA, normB float64
	for i := range a {
		dot += float64(a[i]) * float64(b[i])
		normA += float64(a[i]) * float64(a[i])
		normB += float64(b[i]) * float64(b[i])
	}
	if normA == 0 || normB == 0 {
		return 0
	}
	return float32(dot / (math.Sqrt(normA) * math.Sqrt(normB)))
}
