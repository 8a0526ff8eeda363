package openai

import (
	"github.com/openai/openai-go/v3"
	"github.com/openai/openai-go/v3/option"
)

// OpenAIClient implements the ai.Client interface against an OpenAI-compatible
// API. Separate clients are kept for embeddings and chat so each can point at
// a different endpoint.
type OpenAIClient struct {
	embeddingModel  string
	chatModel       string
	extractionModel string

	ChatClient      *openai.Client
	EmbeddingClient *openai.Client
}

// NewOpenAIClientParams configures a new OpenAIClient.
//
// EmbeddingModel is used for embedding requests, ChatModel for plain
// completions, and ExtractionModel for structured-output requests. The URL
// fields may be left empty to use the default OpenAI endpoint.
type NewOpenAIClientParams struct {
	EmbeddingModel  string
	ChatModel       string
	ExtractionModel string

	EmbeddingURL string
	EmbeddingKey string
	ChatURL      string
	ChatKey      string
}

// NewOpenAIClient creates a client for an OpenAI-compatible backend.
func NewOpenAIClient(params NewOpenAIClientParams) *OpenAIClient {
	extractionModel := params.ExtractionModel
	if extractionModel == "" {
		extractionModel = params.ChatModel
	}

	return &OpenAIClient{
		embeddingModel:  params.EmbeddingModel,
		chatModel:       params.ChatModel,
		extractionModel: extractionModel,

		ChatClient:      newClient(params.ChatURL, params.ChatKey),
		EmbeddingClient: newClient(params.EmbeddingURL, params.EmbeddingKey),
	}
}

func newClient(baseURL string, apiKey string) *openai.Client {
	opts := []option.RequestOption{}
	if baseURL != "" {
		opts = append(opts, option.WithBaseURL(baseURL))
	}
	if apiKey != "" {
		opts = append(opts, option.WithAPIKey(apiKey))
	}
	client := openai.NewClient(opts...)
	return &client
}
