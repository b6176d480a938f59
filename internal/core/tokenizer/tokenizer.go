// Package tokenizer measures prompt length in model tokens.
package tokenizer

import "context"

// Tokenizer counts the tokens of text for the target model.
type Tokenizer interface {
	Count(ctx context.Context, text string) (int, error)
}
