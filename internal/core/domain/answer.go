package domain

// AnswerKind identifies how an assistant answer was produced.
type AnswerKind string

// Answer kinds.
const (
	AnswerSmalltalk     AnswerKind = "smalltalk"
	AnswerClarification AnswerKind = "clarification"
	AnswerComparison    AnswerKind = "comparison"
	AnswerGrounded      AnswerKind = "grounded"
	AnswerListing       AnswerKind = "listing"
)

// Answer is the assistant's reply to a shopper question.
type Answer struct {
	Kind AnswerKind `json:"kind"`
	Text string     `json:"text"`

	// Hits is the grounded evidence the answer was built from.
	Hits []Hit `json:"hits,omitempty"`
}

// IngestStats summarises one catalog ingestion run.
type IngestStats struct {
	Cards    int
	Passages int
	Skipped  int
}
