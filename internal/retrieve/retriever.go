package retrieve

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"github.com/docintel/docintel/internal/index"
)

// Searcher is the slice of the vector index the retriever needs.
type Searcher interface {
	Search(ctx context.Context, query string, k int) ([]index.SearchResult, error)
}

// Intent is one retrieval strategy: a query phrased for a particular aspect
// of the document, tried in declaration order.
type Intent struct {
	Name  string
	Query string
}

const (
	intentK = 4
	// broadK deliberately exceeds any realistic chunk count so the broad
	// dump returns the whole document.
	broadK = 50
)

// Context is the assembled extraction context. Insufficient is set when even
// the broad dump could not reach the minimum size; extraction still proceeds
// on whatever text is here.
type Context struct {
	Text         string
	Intent       string
	Insufficient bool
}

// Retriever assembles extraction context by cascading through intents.
type Retriever struct {
	minContextChars int
	logger          *slog.Logger
}

func NewRetriever(minContextChars int, logger *slog.Logger) *Retriever {
	if logger == nil {
		logger = slog.Default()
	}
	return &Retriever{minContextChars: minContextChars, logger: logger}
}

// Retrieve tries each intent in order and returns the first whose joined
// results clear the minimum size. If none do, it falls back to the longest
// candidate seen; if that is still too small it takes a broad dump of the
// index and flags the context as insufficient when even that is short.
func (r *Retriever) Retrieve(ctx context.Context, s Searcher, intents []Intent) (*Context, error) {
	start := time.Now()

	best := &Context{}
	for _, intent := range intents {
		results, err := s.Search(ctx, intent.Query, intentK)
		if err != nil {
			return nil, err
		}
		text := joinResults(results)
		if len(text) >= r.minContextChars {
			r.logger.Info("retrieve.hit",
				"intent", intent.Name,
				"context_len", len(text),
				"elapsed_ms", time.Since(start).Milliseconds())
			return &Context{Text: text, Intent: intent.Name}, nil
		}
		if len(text) > len(best.Text) {
			best = &Context{Text: text, Intent: intent.Name}
		}
	}

	// Broad dump: no intent produced enough, pull everything the index has.
	results, err := s.Search(ctx, "", broadK)
	if err != nil {
		return nil, err
	}
	if text := joinResults(results); len(text) > len(best.Text) {
		best = &Context{Text: text, Intent: "broad"}
	}

	best.Insufficient = len(best.Text) < r.minContextChars
	r.logger.Warn("retrieve.fallback",
		"intent", best.Intent,
		"context_len", len(best.Text),
		"insufficient", best.Insufficient,
		"elapsed_ms", time.Since(start).Milliseconds())
	return best, nil
}

func joinResults(results []index.SearchResult) string {
	parts := make([]string, 0, len(results))
	for _, r := range results {
		if t := strings.TrimSpace(r.Chunk.Text); t != "" {
			parts = append(parts, t)
		}
	}
	return strings.Join(parts, "\n\n")
}
