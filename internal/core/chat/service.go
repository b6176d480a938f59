// Package chat turns a prompt and its history into a model response, using a
// cached FAQ answer as context when one is close enough.
package chat

import (
	"context"
	"time"

	"katutubo-llm/config"
	"katutubo-llm/pkg/llm"
	"katutubo-llm/pkg/logger"
)

type Service struct {
	retriever Retriever
	engine    Inferer
	exchanges ExchangeLog
	now       func() time.Time
}

func NewService(retriever Retriever, engine Inferer, exchanges ExchangeLog) *Service {
	if exchanges == nil {
		exchanges = NopLog
	}
	return &Service{retriever: retriever, engine: engine, exchanges: exchanges, now: time.Now}
}

// Run answers req. Retrieval and inference errors are returned as is; a
// failure to record the exchange is only logged.
func (s *Service) Run(ctx context.Context, req llm.InferRequest) (llm.InferResponse, error) {
	start := s.now()
	logger.Info("%v: Prompt: %s", config.ModuleChat, req.Prompt)

	faq, ok, err := s.retriever.Search(ctx, req.Prompt)
	if err != nil {
		return llm.InferResponse{}, err
	}
	if ok {
		logger.Info("%v: Similar FAQ: %s", config.ModuleChat, faq)
	} else {
		logger.Info("%v: Similar FAQ: none", config.ModuleChat)
		faq = ""
	}

	answer, err := s.engine.Infer(ctx, req.Prompt, req.History, faq)
	if err != nil {
		return llm.InferResponse{}, err
	}

	ex := Exchange{
		Prompt:       req.Prompt,
		Response:     answer,
		HistoryTurns: len(req.History),
		UsedFAQ:      ok,
		FAQAnswer:    faq,
		Latency:      s.now().Sub(start),
		CreatedAt:    start,
	}
	if err := s.exchanges.Record(ctx, ex); err != nil {
		logger.Error(err, "%v: failed to record exchange", config.ModuleChat)
	}
	return llm.InferResponse{Response: answer}, nil
}
