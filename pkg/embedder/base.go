// Package embedder provides interfaces for text embedding providers.
//
// It defines the Provider interface that all embedding implementations must
// satisfy, enabling text-to-vector conversion for semantic ranking and
// similarity search.
package embedder

import "context"

// Provider defines the interface for embedding providers.
//
// A provider maps text to fixed-length vectors. Callers treat it as a black
// box that may be unavailable: everywhere in the feed engine an embedding
// failure degrades to an absent vector rather than a fatal error.
type Provider interface {
	// Embed converts a text string into a vector embedding.
	//
	// Returns the embedding vector and any error.
	Embed(ctx context.Context, text string) ([]float32, error)

	// EmbedBatch converts multiple text strings into vector embeddings.
	//
	// More efficient than calling Embed repeatedly; the result order
	// matches the input order.
	EmbedBatch(ctx context.Context, texts []string) ([][]float32, error)

	// Dimensions returns the fixed dimensionality of vectors produced by
	// this provider.
	Dimensions() int

	// Close closes the provider and releases resources.
	Close() error
}
