package retriever

import "context"

// DefaultThreshold is the minimum similarity for a cached answer to be used.
const DefaultThreshold = 0.6

// Hit is the nearest FAQ entry for a query vector. Score is a similarity:
// higher is closer.
type Hit struct {
	ID     string
	Score  float64
	Answer string
}

// Embedder encodes text into the vector space of the FAQ collection.
type Embedder interface {
	Embed(ctx context.Context, text string) ([]float32, error)
}

// VectorIndex returns the single nearest neighbour of a vector. ok is false
// when the collection holds no candidate at all.
type VectorIndex interface {
	Nearest(ctx context.Context, vector []float32) (hit Hit, ok bool, err error)
	Ping(ctx context.Context) error
	Close() error
}
