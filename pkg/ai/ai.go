package ai

import "context"

// GenerateOptions holds configuration for generation requests.
type GenerateOptions struct {
	Model         string   // model identifier to use for generation
	SystemPrompts []string // system prompts prepended to the request
	Temperature   float64  // sampling temperature
}

// GenerateOption is a functional option for configuring generation requests.
type GenerateOption func(*GenerateOptions)

// WithModel sets the model to use for generation.
func WithModel(model string) GenerateOption {
	return func(o *GenerateOptions) {
		o.Model = model
	}
}

// WithSystemPrompts sets the system prompts prepended to the request.
func WithSystemPrompts(prompts ...string) GenerateOption {
	return func(o *GenerateOptions) {
		o.SystemPrompts = prompts
	}
}

// WithTemperature sets the sampling temperature. Extraction uses a near-zero
// temperature to keep structured output as deterministic as the backend
// allows.
func WithTemperature(temp float64) GenerateOption {
	return func(o *GenerateOptions) {
		o.Temperature = temp
	}
}

// Client is the interface to a generation and embedding backend. All calls
// are blocking network operations; cancellation and deadlines travel through
// the context and implementations are expected to honor them.
type Client interface {
	// GenerateCompletion sends a single-turn prompt and returns plain text.
	GenerateCompletion(
		ctx context.Context,
		prompt string,
		opts ...GenerateOption,
	) (string, error)

	// GenerateCompletionWithFormat sends a prompt and decodes the response
	// into out, constrained by a JSON schema derived from out's type. name
	// and description label the schema for the backend.
	GenerateCompletionWithFormat(
		ctx context.Context,
		name string,
		description string,
		prompt string,
		out any,
		opts ...GenerateOption,
	) error

	// GenerateEmbedding computes the embedding vector for the input text.
	GenerateEmbedding(ctx context.Context, input []byte) ([]float32, error)

	// GenerateEmbeddings computes embeddings for multiple inputs, preserving
	// input order. Backends without a batch endpoint embed one at a time.
	GenerateEmbeddings(ctx context.Context, inputs [][]byte) ([][]float32, error)
}
