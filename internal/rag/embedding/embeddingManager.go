package embedding

import (
	"context"
	"math"
)

type Role string

const (
	RoleDocument Role = "document"
	RoleQuery    Role = "query"
)

type Embedder interface {
	Embed(ctx context.Context, text string, role Role) ([]float32, error)
	Ping(ctx context.Context) error
}

// Normalize returns v scaled to unit L2 norm. A near-zero norm skips the
// division and returns the vector as received.
func Normalize(v []float32) []float32 {
	var sum float64
	for _, x := range v {
		sum += float64(x) * float64(x)
	}
	norm := math.Sqrt(sum)
	if norm < 1e-12 {
		return v
	}
	out := make([]float32, len(v))
	for i, x := range v {
		out[i] = float32(float64(x) / norm)
	}
	return out
}
