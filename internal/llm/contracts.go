package llm

import (
	"context"

	"github.com/docintel/docintel/internal/retrieve"
)

// CompletionClient is the single inference call the engine depends on.
type CompletionClient interface {
	Complete(ctx context.Context, system, user string) (string, error)
}

// Schema describes one structured extraction: how to find its context, how
// to ask for it, and which reply fields carry amounts used in arithmetic.
type Schema struct {
	// Name identifies the schema in reports and logs, e.g. "invoice.financials".
	Name string

	// Intents are the retrieval strategies tried in order to assemble context.
	Intents []retrieve.Intent

	// Instructions is the task portion of the user prompt. It must describe
	// the exact JSON shape expected back.
	Instructions string

	// ContextBudget caps how many characters of retrieved context are
	// embedded in the prompt. Zero means DefaultContextBudget.
	ContextBudget int

	// ArithmeticFields lists reply keys (at any nesting depth) whose values
	// feed validation math. Unparsable values in these positions become 0;
	// other malformed numerics become null.
	ArithmeticFields []string

	// RequiredFields lists top-level keys whose absence produces a
	// validation finding.
	RequiredFields []string
}

// Result is one schema's extraction outcome. ParseSucceeded=false means the
// reply could not be interpreted; Fields is then empty and Raw preserves the
// reply for diagnosis. A failed parse is never passed off as zero values.
type Result struct {
	SchemaName     string
	Fields         map[string]any
	Raw            string
	ParseSucceeded bool
	Intent         string
	Insufficient   bool
}

// DefaultContextBudget bounds prompt size when a schema does not set one.
const DefaultContextBudget = 6000
