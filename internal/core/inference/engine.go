// Package inference runs prompts through the fine-tuned language model.
package inference

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"katutubo-llm/config"
	"katutubo-llm/internal/core/prompt"
	"katutubo-llm/pkg/apperror/status"
	"katutubo-llm/pkg/llm"
	"katutubo-llm/pkg/logger"
)

// TextGenerator returns the raw decoded output of the model for prompt. The
// output may or may not echo the prompt.
type TextGenerator interface {
	Complete(ctx context.Context, prompt string, params Params) (string, error)
}

// Engine owns the model handle. Calls are serialized; the handle is not
// re-entrant.
type Engine struct {
	mu        sync.Mutex
	builder   *prompt.Builder
	generator TextGenerator
	params    Params
}

func NewEngine(builder *prompt.Builder, generator TextGenerator) *Engine {
	return &Engine{builder: builder, generator: generator, params: DefaultParams}
}

// Generate runs one completion and returns the text after the prompt, trimmed.
func (e *Engine) Generate(ctx context.Context, text string) (string, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	start := time.Now()
	raw, err := e.generator.Complete(ctx, text, e.params)
	if err != nil {
		return "", status.New(status.InferenceGenerateFailed,
			fmt.Errorf("%v: generate: %w", config.ModuleInference, err))
	}
	logger.Debug("%v: generated %d chars in %s", config.ModuleInference, len(raw), time.Since(start))
	return strings.TrimSpace(strings.TrimPrefix(raw, text)), nil
}

// Infer builds the prompt for question and generates the answer. A non-empty
// retrieved context replaces the history.
func (e *Engine) Infer(ctx context.Context, question string, history llm.History, retrieved string) (string, error) {
	doc, err := e.builder.Build(ctx, question, history, retrieved)
	if err != nil {
		return "", err
	}
	if doc.OverBudget {
		logger.Warn("%v: prompt is %d tokens, over the %d budget with no history left to drop",
			config.ModuleInference, doc.Tokens, e.builder.MaxTokens())
	}
	if doc.TurnsDropped > 0 && !doc.WithContext {
		logger.Debug("%v: dropped %d oldest turns to fit the budget", config.ModuleInference, doc.TurnsDropped)
	}
	return e.Generate(ctx, doc.Text)
}
