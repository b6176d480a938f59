package database

import (
	"context"

	"katutubo-llm/internal/core/chat"
	"katutubo-llm/internal/database/model"
)

// ExchangeLog writes exchanges through the shared connection.
type ExchangeLog struct{}

func (ExchangeLog) Record(ctx context.Context, ex chat.Exchange) error {
	row := model.Exchange{
		Prompt:       ex.Prompt,
		Response:     ex.Response,
		HistoryTurns: ex.HistoryTurns,
		UsedFAQ:      ex.UsedFAQ,
		FAQAnswer:    ex.FAQAnswer,
		LatencyMs:    ex.Latency.Milliseconds(),
		CreatedAt:    ex.CreatedAt,
	}
	return CreateEntity(ctx, &row)
}
