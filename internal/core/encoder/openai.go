// Package encoder turns text into embedding vectors using a remote encoder model.
package encoder

import (
	"context"
	"errors"
	"fmt"
	"time"

	"katutubo-llm/config"
	"katutubo-llm/internal/core/openaicompat"
	"katutubo-llm/pkg/logger"

	openai "github.com/openai/openai-go/v3"
)

type openAIEmbeddingRequest struct {
	Model string   `json:"model"`
	Input []string `json:"input"`
}

type openAIEmbeddingResponse struct {
	Data []struct {
		Embedding []float64 `json:"embedding"`
		Index     int       `json:"index"`
	} `json:"data"`
	Error *struct {
		Message string `json:"message"`
		Type    string `json:"type"`
	} `json:"error"`
}

// OpenAI calls an OpenAI-compatible /embeddings endpoint (hosted API, TEI,
// vLLM or Infinity serving a sentence-transformers model).
type OpenAI struct {
	client openai.Client
	model  string
}

func NewOpenAI(baseURL, apiKey, model string, timeout time.Duration) *OpenAI {
	return &OpenAI{
		client: openaicompat.New(baseURL, apiKey, timeout),
		model:  model,
	}
}

// Embed returns the vector for a single text.
func (e *OpenAI) Embed(ctx context.Context, text string) ([]float32, error) {
	if text == "" {
		return nil, errors.New("text is empty")
	}
	var out openAIEmbeddingResponse
	req := openAIEmbeddingRequest{Model: e.model, Input: []string{text}}
	if err := e.client.Post(ctx, "/embeddings", req, &out); err != nil {
		logger.Error(err, "%v: openai embedding failed", config.ModuleEncoder)
		return nil, err
	}
	if out.Error != nil {
		return nil, errors.New(out.Error.Message)
	}
	if len(out.Data) == 0 {
		return nil, fmt.Errorf("no embedding returned by %s", e.model)
	}
	src := out.Data[0].Embedding
	vec := make([]float32, len(src))
	for k := range src {
		vec[k] = float32(src[k])
	}
	logger.Debug("%v: embedded %d chars into %d dims", config.ModuleEncoder, len(text), len(vec))
	return vec, nil
}
