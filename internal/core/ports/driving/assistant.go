package driving

import (
	"context"

	"github.com/kush-lhmm/sampann-search/internal/core/domain"
)

// AssistantService answers shopper questions from grounded catalog evidence.
type AssistantService interface {
	// Ask answers a single message. A lack of grounded evidence is not an
	// error: the answer carries a clarification instead.
	Ask(ctx context.Context, message string) (*domain.Answer, error)
}
