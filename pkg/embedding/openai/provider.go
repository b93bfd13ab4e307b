package openai

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"voice-shopping-be/pkg/embedding"

	openaisdk "github.com/openai/openai-go/v3"
	"github.com/openai/openai-go/v3/option"
)

const DefaultModel = openaisdk.EmbeddingModelTextEmbedding3Small

// Provider embeds text through the OpenAI embeddings endpoint.
// Vectors are truncated or zero padded to the configured dimension.
type Provider struct {
	client    openaisdk.Client
	model     openaisdk.EmbeddingModel
	dimension int
}

func NewProvider(apiKey, baseURL, model string, dimension int) *Provider {
	opts := []option.RequestOption{option.WithAPIKey(apiKey)}
	if strings.TrimSpace(baseURL) != "" {
		opts = append(opts, option.WithBaseURL(baseURL))
	}
	embeddingModel := DefaultModel
	if model != "" {
		embeddingModel = openaisdk.EmbeddingModel(model)
	}
	return &Provider{
		client:    openaisdk.NewClient(opts...),
		model:     embeddingModel,
		dimension: dimension,
	}
}

func (p *Provider) Generate(ctx context.Context, text string, taskType string) (*embedding.EmbeddingResponse, error) {
	params := openaisdk.EmbeddingNewParams{
		Model: p.model,
		Input: openaisdk.EmbeddingNewParamsInputUnion{
			OfArrayOfStrings: []string{text},
		},
	}
	if p.dimension > 0 {
		params.Dimensions = openaisdk.Int(int64(p.dimension))
	}

	resp, err := p.client.Embeddings.New(ctx, params)
	if err != nil {
		return nil, fmt.Errorf("create embeddings: %w", err)
	}
	if len(resp.Data) == 0 {
		return nil, errors.New("no embedding returned")
	}

	return &embedding.EmbeddingResponse{
		Embedding: embedding.EmbeddingResponseEmbedding{
			Values: convertVector(resp.Data[0].Embedding, p.dimension),
		},
	}, nil
}

func convertVector(input []float64, expected int) []float32 {
	if expected <= 0 {
		expected = len(input)
	}
	vec := make([]float32, expected)
	for i := 0; i < len(input) && i < expected; i++ {
		vec[i] = float32(input[i])
	}
	return vec
}
