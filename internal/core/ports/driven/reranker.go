package driven

import "context"

// Reranker scores (query, passage) pairs with a learned relevance model.
// Scores are higher-is-better and are not comparable with dense distances.
type Reranker interface {
	// Score returns one relevance score per text, in input order.
	// The whole batch is scored in a single call.
	Score(ctx context.Context, query string, texts []string) ([]float64, error)

	// ModelName returns the name of the scoring model.
	ModelName() string

	// Ping validates the service is reachable.
	Ping(ctx context.Context) error

	// Close releases resources.
	Close() error
}
