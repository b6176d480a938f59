package chat

import (
	"context"
	"time"

	"katutubo-llm/pkg/llm"
)

// Retriever finds a cached FAQ answer close enough to the prompt.
type Retriever interface {
	Search(ctx context.Context, prompt string) (answer string, ok bool, err error)
}

// Inferer generates the assistant reply.
type Inferer interface {
	Infer(ctx context.Context, question string, history llm.History, retrieved string) (string, error)
}

// Exchange is one completed request, as written to the exchange log.
type Exchange struct {
	Prompt       string
	Response     string
	HistoryTurns int
	UsedFAQ      bool
	FAQAnswer    string
	Latency      time.Duration
	CreatedAt    time.Time
}

// ExchangeLog persists exchanges. Failures never fail the request.
type ExchangeLog interface {
	Record(ctx context.Context, ex Exchange) error
}

type nopLog struct{}

func (nopLog) Record(context.Context, Exchange) error { return nil }

// NopLog discards every exchange.
var NopLog ExchangeLog = nopLog{}
