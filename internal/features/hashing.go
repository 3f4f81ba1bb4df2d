package features

import (
	"context"
	"hash/fnv"
	"math"
	"strings"
	"unicode"
)

// DefaultHashingDimensions is the vector length of the hashing embedder.
const DefaultHashingDimensions = 256

// HashingEmbedder maps the words of a text into a fixed number of buckets and
// L2-normalizes the counts. Vectors are non-negative, so the cosine of two
// hashing embeddings stays in [0, 1].
type HashingEmbedder struct {
	dims int
}

// NewHashingEmbedder creates a HashingEmbedder with dims buckets.
func NewHashingEmbedder(dims int) *HashingEmbedder {
	if dims <= 0 {
		dims = DefaultHashingDimensions
	}
	return &HashingEmbedder{dims: dims}
}

func (h *HashingEmbedder) Dimensions() int { return h.dims }

// Embed implements Embedder. Texts without words produce a zero vector.
func (h *HashingEmbedder) Embed(ctx context.Context, text string) ([]float32, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	vec := make([]float64, h.dims)
	for _, word := range tokenize(text) {
		hasher := fnv.New64a()
		_, _ = hasher.Write([]byte(word))
		sum := hasher.Sum64()
		vec[sum%uint64(h.dims)]++
	}

	var norm float64
	for _, v := range vec {
		norm += v * v
	}
	norm = math.Sqrt(norm)

	out := make([]float32, h.dims)
	if norm == 0 {
		return out, nil
	}
	for i, v := range vec {
		out[i] = float32(v / norm)
	}
	return out, nil
}

func tokenize(text string) []string {
	return strings.FieldsFunc(strings.ToLower(text), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r) && r != '+' && r != '#'
	})
}
