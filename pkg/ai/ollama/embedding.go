package ollama

import (
	"context"
	"strings"

	"github.com/ollama/ollama/api"
)

// GenerateEmbedding computes the embedding vector for the given input text
// using the configured embedding model. Empty input yields a zero vector of
// the configured dimensionality rather than a backend round-trip.
func (c *OllamaClient) GenerateEmbedding(ctx context.Context, input []byte) ([]float32, error) {
	if len(strings.TrimSpace(string(input))) == 0 {
		return make([]float32, c.embedDim), nil
	}

	if err := c.reqLock.Acquire(ctx, 1); err != nil {
		return nil, err
	}
	defer c.reqLock.Release(1)

	res, err := c.Client.Embed(ctx, &api.EmbedRequest{
		Model: c.embeddingModel,
		Input: string(input),
	})
	if err != nil {
		return nil, err
	}

	out := make([]float32, 0, c.embedDim)
	for _, v := range res.Embeddings {
		for _, val := range v {
			if c.embedDim > 0 && len(out) >= c.embedDim {
				break
			}
			out = append(out, float32(val))
		}
	}
	return out, nil
}

// GenerateEmbeddings embeds multiple inputs one at a time, preserving input
// order. The Ollama embed endpoint is effectively single-slot, so there is no
// batch fast path to use.
func (c *OllamaClient) GenerateEmbeddings(ctx context.Context, inputs [][]byte) ([][]float32, error) {
	out := make([][]float32, 0, len(inputs))
	for _, input := range inputs {
		embedding, err := c.GenerateEmbedding(ctx, input)
		if err != nil {
			return nil, err
		}
		out = append(out, embedding)
	}
	return out, nil
}
