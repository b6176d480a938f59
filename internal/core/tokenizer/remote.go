package tokenizer

import (
	"context"
	"errors"
	"time"

	"katutubo-llm/internal/core/openaicompat"

	openai "github.com/openai/openai-go/v3"
)

type tokenizeRequest struct {
	Model  string `json:"model"`
	Prompt string `json:"prompt"`
}

type tokenizeResponse struct {
	Count  int   `json:"count"`
	Tokens []int `json:"tokens"`
}

// Remote asks the serving engine's /tokenize endpoint (vLLM layout), so counts
// match the model tokenizer exactly, special tokens included.
type Remote struct {
	client openai.Client
	model  string
}

// NewRemote expects the server root (http://host:8000), not the /v1 prefix.
func NewRemote(baseURL, apiKey, model string, timeout time.Duration) *Remote {
	return &Remote{
		client: openaicompat.New(baseURL, apiKey, timeout),
		model:  model,
	}
}

func (r *Remote) Count(ctx context.Context, text string) (int, error) {
	var out tokenizeResponse
	if err := r.client.Post(ctx, "/tokenize", tokenizeRequest{Model: r.model, Prompt: text}, &out); err != nil {
		return 0, err
	}
	if out.Count > 0 {
		return out.Count, nil
	}
	if len(out.Tokens) > 0 {
		return len(out.Tokens), nil
	}
	if text == "" {
		return 0, nil
	}
	return 0, errors.New("tokenize: empty response")
}
