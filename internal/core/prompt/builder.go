// Package prompt assembles the bounded-length text fed to the language model.
package prompt

import (
	"context"
	"fmt"
	"strings"

	"katutubo-llm/config"
	"katutubo-llm/internal/core/tokenizer"
	"katutubo-llm/pkg/apperror/status"
	"katutubo-llm/pkg/llm"
)

// DefaultMaxTokens is the prompt budget before history is trimmed.
const DefaultMaxTokens = 512

// Document is one built prompt. Tokens is only measured when history is
// considered; a context prompt is never trimmed and so never measured.
type Document struct {
	Text         string
	Tokens       int
	TurnsKept    int
	TurnsDropped int
	WithContext  bool
	// OverBudget is set when preamble and question alone exceed the budget.
	// The prompt is still used as is.
	OverBudget bool
}

func (d Document) String() string { return d.Text }

type Builder struct {
	tokenizer    tokenizer.Tokenizer
	systemPrompt string
	maxTokens    int
}

func NewBuilder(tok tokenizer.Tokenizer, systemPrompt string, maxTokens int) *Builder {
	if systemPrompt == "" {
		systemPrompt = config.DefaultSystemPrompt
	}
	if maxTokens <= 0 {
		maxTokens = DefaultMaxTokens
	}
	return &Builder{tokenizer: tok, systemPrompt: systemPrompt, maxTokens: maxTokens}
}

// MaxTokens is the configured budget.
func (b *Builder) MaxTokens() int { return b.maxTokens }

// Build returns the prompt for question. A non-empty retrieved context replaces
// the chat history entirely. Without context, the oldest turns are dropped one
// at a time until the prompt fits the budget or no turns are left; the
// preamble and the question are never shortened.
func (b *Builder) Build(ctx context.Context, question string, history llm.History, retrieved string) (Document, error) {
	preamble := b.preamble()
	current := questionBlock(question)

	if retrieved != "" {
		return Document{
			Text:         preamble + contextBlock(retrieved) + current,
			TurnsDropped: len(history),
			WithContext:  true,
		}, nil
	}

	turns := make([]string, 0, len(history))
	for _, t := range history {
		turns = append(turns, turnBlock(t))
	}

	for {
		text := preamble + strings.Join(turns, "") + current
		n, err := b.tokenizer.Count(ctx, text)
		if err != nil {
			return Document{}, status.New(status.InferenceTokenizeFailed,
				fmt.Errorf("%v: count tokens: %w", config.ModulePrompt, err))
		}
		if n <= b.maxTokens || len(turns) == 0 {
			return Document{
				Text:         text,
				Tokens:       n,
				TurnsKept:    len(turns),
				TurnsDropped: len(history) - len(turns),
				OverBudget:   n > b.maxTokens,
			}, nil
		}
		turns = turns[1:]
	}
}

func (b *Builder) preamble() string {
	return "[" + b.systemPrompt + "]\n"
}

func contextBlock(retrieved string) string {
	return "\nHere's the relevant information:\n" + retrieved + "\n"
}

func turnBlock(t llm.ChatTurn) string {
	return "\nquestion: " + t.User + "\nanswer: " + t.Assistant
}

func questionBlock(question string) string {
	return "\nquestion: " + question + "\nanswer: "
}
