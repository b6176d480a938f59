package tokenizer

import (
	"context"
	"unicode/utf8"
)

// Approx estimates token counts at a fixed number of runes per token.
// Token approximation: ~4 chars per token; coarse, but it never needs the model.
type Approx struct {
	charsPerToken int
}

func NewApprox(charsPerToken int) *Approx {
	if charsPerToken <= 0 {
		charsPerToken = 4
	}
	return &Approx{charsPerToken: charsPerToken}
}

// Count rounds up so a non-empty text is never zero tokens.
func (a *Approx) Count(_ context.Context, text string) (int, error) {
	n := utf8.RuneCountInString(text)
	return (n + a.charsPerToken - 1) / a.charsPerToken, nil
}
