// Package similarity finds the single most semantically similar pair among a
// list of short text items, using embedding vectors from an external service.
//
// Embedding fetches dominate the cost (one network round trip per item), so
// they fan out with a bounded concurrency cap. The pair scan itself is the
// exhaustive O(N^2) comparison, which is fine at the tens-of-items scale
// this system targets.
package similarity

import (
	"context"
	"errors"
	"fmt"
	"math"
	"sync"
)

// Embedder obtains one embedding vector per input text.
type Embedder interface {
	Embedding(ctx context.Context, input string) ([]float64, error)
}

// InsufficientInputError indicates fewer than two items were provided, so no
// pair exists to compare.
type InsufficientInputError struct {
	Count int
}

// Error implements the error interface for InsufficientInputError.
func (e *InsufficientInputError) Error() string {
	return fmt.Sprintf("need at least 2 items to compare, got %d", e.Count)
}

// EmbeddingError indicates an embedding fetch failed for some item. The
// whole computation aborts; there are no partial results.
type EmbeddingError struct {
	Index int   // Item whose fetch failed
	Err   error // Underlying upstream error
}

// Error implements the error interface for EmbeddingError.
func (e *EmbeddingError) Error() string {
	return fmt.Sprintf("failed to embed item %d: %v", e.Index, e.Err)
}

// Unwrap returns the underlying error for error wrapping support.
func (e *EmbeddingError) Unwrap() error {
	return e.Err
}

// IsInsufficientInputError checks if the error is or wraps an InsufficientInputError.
func IsInsufficientInputError(err error) bool {
	if err == nil {
		return false
	}
	var ie *InsufficientInputError
	return errors.As(err, &ie)
}

// IsEmbeddingError checks if the error is or wraps an EmbeddingError.
func IsEmbeddingError(err error) bool {
	if err == nil {
		return false
	}
	var ee *EmbeddingError
	return errors.As(err, &ee)
}

// Pair is the winning item pair. IndexA < IndexB by convention so unordered
// pairs are never reported twice.
type Pair struct {
	IndexA int
	IndexB int
	TextA  string
	TextB  string
	Score  float64 // Cosine similarity in [-1, 1]
}

// Searcher runs the most-similar-pair computation against an Embedder.
type Searcher struct {
	embedder    Embedder
	concurrency int
}

// NewSearcher creates a Searcher with the given embedding fan-out cap.
// A cap below 1 is treated as 1 (fully sequential).
func NewSearcher(embedder Embedder, concurrency int) *Searcher {
	if concurrency < 1 {
		concurrency = 1
	}
	return &Searcher{
		embedder:    embedder,
		concurrency: concurrency,
	}
}

// MostSimilarPair returns the pair of items with maximal cosine similarity.
//
// Fails with *InsufficientInputError for fewer than two items and with
// *EmbeddingError if any single embedding fetch fails. Among equal maxima
// the first pair in scan order wins: the best is only replaced on a strictly
// greater score.
func (s *Searcher) MostSimilarPair(ctx context.Context, items []string) (*Pair, error) {
	if len(items) < 2 {
		return nil, &InsufficientInputError{Count: len(items)}
	}

	vectors, err := s.embedAll(ctx, items)
	if err != nil {
		return nil, err
	}

	best := Pair{IndexA: -1, IndexB: -1, Score: math.Inf(-1)}
	for i := 0; i < len(items); i++ {
		for j := i + 1; j < len(items); j++ {
			if score := Cosine(vectors[i], vectors[j]); score > best.Score {
				best = Pair{IndexA: i, IndexB: j, Score: score}
			}
		}
	}

	best.TextA = items[best.IndexA]
	best.TextB = items[best.IndexB]
	return &best, nil
}

// embedAll fetches one vector per item with bounded concurrency. Result
// slots are indexed so vectors[i] always corresponds to items[i] regardless
// of completion order. The first failure cancels the remaining fetches and
// discards everything already fetched.
func (s *Searcher) embedAll(ctx context.Context, items []string) ([][]float64, error) {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	vectors := make([][]float64, len(items))
	sem := make(chan struct{}, s.concurrency)

	var (
		wg       sync.WaitGroup
		once     sync.Once
		firstErr error
	)

	for i, item := range items {
		wg.Add(1)
		go func(index int, text string) {
			defer wg.Done()

			select {
			case sem <- struct{}{}:
				defer func() { <-sem }()
			case <-ctx.Done():
				return
			}

			vec, err := s.embedder.Embedding(ctx, text)
			if err != nil {
				once.Do(func() {
					firstErr = &EmbeddingError{Index: index, Err: err}
					cancel()
				})
				return
			}
			vectors[index] = vec
		}(i, item)
	}

	wg.Wait()

	if firstErr != nil {
		return nil, firstErr
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return vectors, nil
}

// Cosine computes cosine similarity: dot(a,b) / (||a|| * ||b||).
// When either vector has zero magnitude the similarity is exactly 0.0,
// guarding the degenerate division without raising.
func Cosine(a, b []float64) float64 {
	n := len(a)
	if len(b) < n {
		n = len(b)
	}

	var dot, normA, normB float64
	for i := 0; i < n; i++ {
		dot += a[i] * b[i]
	}
	for _, v := range a {
		normA += v * v
	}
	for _, v := range b {
		normB += v * v
	}

	if normA == 0 || normB == 0 {
		return 0.0
	}

	return dot / (math.Sqrt(normA) * math.Sqrt(normB))
}
