package embedding

import (
	"context"
	"math"
)

// Task types hint the provider at how the embedding will be used. Providers
// that don't distinguish (e.g. Ollama) ignore them.
const (
	TaskDocument = "RETRIEVAL_DOCUMENT"
	TaskQuery    = "RETRIEVAL_QUERY"
)

// Provider defines the interface for generating text embeddings.
type Provider interface {
	Generate(ctx context.Context, text string, taskType string) ([]float32, error)
}

// normalizeVector scales a vector to unit length. Cosine distance search
// assumes normalized vectors.
func normalizeVector(vec []float32) []float32 {
	var magnitude float64
	for _, v := range vec {
		magnitude += float64(v) * float64(v)
	}
	magnitude = math.Sqrt(magnitude)
	if magnitude == 0 {
		return vec
	}

	normalized := make([]float32, len(vec))
	for i, v := range vec {
		normalized[i] = float32(float64(v) / magnitude)
	}
	return normalized
}
