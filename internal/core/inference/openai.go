package inference

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

// completionRequest carries the vLLM/TGI sampling extensions next to the
// standard completion fields.
type completionRequest struct {
	Model             string  `json:"model"`
	Prompt            string  `json:"prompt"`
	MaxTokens         int     `json:"max_tokens"`
	Temperature       float64 `json:"temperature"`
	TopP              float64 `json:"top_p"`
	TopK              int     `json:"top_k"`
	RepetitionPenalty float64 `json:"repetition_penalty"`
	Stream            bool    `json:"stream"`
}

type completionResponse struct {
	Choices []struct {
		Text         string `json:"text"`
		FinishReason string `json:"finish_reason"`
	} `json:"choices"`
	Error *struct {
		Message string `json:"message"`
	} `json:"error"`
}

// OpenAI calls an OpenAI-compatible /completions endpoint.
type OpenAI struct {
	client openai.Client
	model  string
}

// NewOpenAI targets model, or the adapter when one is set: servers with LoRA
// support expose each adapter as its own model name.
func NewOpenAI(baseURL, apiKey, model, adapter string, timeout time.Duration) *OpenAI {
	if adapter != "" {
		model = adapter
	}
	return &OpenAI{client: openaicompat.New(baseURL, apiKey, timeout), model: model}
}

func (g *OpenAI) Complete(ctx context.Context, prompt string, p Params) (string, error) {
	req := completionRequest{
		Model:             g.model,
		Prompt:            prompt,
		MaxTokens:         p.MaxNewTokens,
		Temperature:       p.Temperature,
		TopP:              p.TopP,
		TopK:              p.TopK,
		RepetitionPenalty: p.RepetitionPenalty,
	}
	if !p.DoSample {
		req.Temperature = 0
	}
	var out completionResponse
	if err := g.client.Post(ctx, "/completions", req, &out); err != nil {
		logger.Error(err, "%v: completion request failed", config.ModuleInference)
		return "", err
	}
	if out.Error != nil {
		return "", errors.New(out.Error.Message)
	}
	if len(out.Choices) == 0 {
		return "", fmt.Errorf("no completion returned by %s", g.model)
	}
	return out.Choices[0].Text, nil
}
