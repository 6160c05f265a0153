package constants

// RunState is the canonical state of a pipeline run over one document.
type RunState string

// Stable values (logged and persisted as these exact strings).
const (
	RunStateDetecting   RunState = "DETECTING"   // classifying the document
	RunStateExtracting  RunState = "EXTRACTING"  // schema extractions in flight
	RunStateValidating  RunState = "VALIDATING"  // deterministic cross-checks
	RunStateAggregating RunState = "AGGREGATING" // merging sections into the report
	RunStateDone        RunState = "DONE"        // terminal success (possibly partial sections)
	RunStateFailed      RunState = "FAILED"      // terminal failure before any report could form
)
