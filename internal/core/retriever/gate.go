// Package retriever decides whether a cached FAQ answer is close enough to a
// prompt to be used as context.
package retriever

import (
	"context"
	"fmt"
	"time"

	"katutubo-llm/config"
	"katutubo-llm/pkg/apperror/status"
	"katutubo-llm/pkg/logger"
)

type Options struct {
	Threshold     float64
	EmbedTimeout  time.Duration
	SearchTimeout time.Duration
}

// Gate is read-only and safe for concurrent use if its collaborators are.
type Gate struct {
	embedder Embedder
	index    VectorIndex
	opts     Options
}

func NewGate(embedder Embedder, index VectorIndex, opts Options) *Gate {
	if opts.Threshold <= 0 {
		opts.Threshold = DefaultThreshold
	}
	if opts.EmbedTimeout <= 0 {
		opts.EmbedTimeout = 30 * time.Second
	}
	if opts.SearchTimeout <= 0 {
		opts.SearchTimeout = 5 * time.Second
	}
	return &Gate{embedder: embedder, index: index, opts: opts}
}

// Search returns the best cached answer for prompt when its score is at or
// above the threshold. Embedding or store failures are RetrievalErrors.
func (g *Gate) Search(ctx context.Context, prompt string) (string, bool, error) {
	embedCtx, cancelEmbed := context.WithTimeout(ctx, g.opts.EmbedTimeout)
	defer cancelEmbed()
	vec, err := g.embedder.Embed(embedCtx, prompt)
	if err != nil {
		return "", false, status.New(status.RetrievalEmbedFailed,
			fmt.Errorf("similarity search failed: embed prompt: %w", err))
	}

	searchCtx, cancelSearch := context.WithTimeout(ctx, g.opts.SearchTimeout)
	defer cancelSearch()
	start := time.Now()
	hit, ok, err := g.index.Nearest(searchCtx, vec)
	if err != nil {
		return "", false, status.New(status.RetrievalSearchFailed,
			fmt.Errorf("similarity search failed: %w", err))
	}
	if !ok {
		logger.Debug("%v: no candidates (%s)", config.ModuleRetriever, time.Since(start))
		return "", false, nil
	}

	logger.WithFields(map[string]interface{}{
		"hit_id":    hit.ID,
		"score":     hit.Score,
		"threshold": g.opts.Threshold,
		"elapsed":   time.Since(start).String(),
	}).Debug("retriever: nearest neighbour")

	// a match without an answer payload is no match
	if !g.Accept(hit.Score) || hit.Answer == "" {
		return "", false, nil
	}
	return hit.Answer, true, nil
}

// Accept reports whether score clears the inclusive threshold.
func (g *Gate) Accept(score float64) bool {
	return score >= g.opts.Threshold
}

// Ping probes the vector store.
func (g *Gate) Ping(ctx context.Context) error {
	if err := g.index.Ping(ctx); err != nil {
		return status.New(status.RetrievalStoreUnavailable, err)
	}
	return nil
}
