// Package openai implements the collaborator contract against the OpenAI API.
package openai

import (
	"context"
	"fmt"

	oai "github.com/sashabaranov/go-openai"
)

type Provider struct {
	client        *oai.Client
	embedModel    oai.EmbeddingModel
	generateModel string
}

// New creates a provider. Empty model names fall back to small defaults.
func New(apiKey, embedModel, generateModel string) *Provider {
	em := oai.EmbeddingModel(embedModel)
	if embedModel == "" {
		em = oai.SmallEmbedding3
	}
	if generateModel == "" {
		generateModel = oai.GPT4oMini
	}
	return &Provider{client: oai.NewClient(apiKey), embedModel: em, generateModel: generateModel}
}

func (p *Provider) Embed(ctx context.Context, text string) ([]float32, error) {
	if text == "" {
		return nil, fmt.Errorf("empty text")
	}
	resp, err := p.client.CreateEmbeddings(ctx, oai.EmbeddingRequest{
		Input: []string{text},
		Model: p.embedModel,
	})
	if err != nil {
		return nil, fmt.Errorf("openai embeddings: %w", err)
	}
	if len(resp.Data) == 0 {
		return nil, fmt.Errorf("openai embeddings: empty response")
	}
	return resp.Data[0].Embedding, nil
}

func (p *Provider) Generate(ctx context.Context, prompt, purpose string) (string, error) {
	resp, err := p.client.CreateChatCompletion(ctx, oai.ChatCompletionRequest{
		Model: p.generateModel,
		Messages: []oai.ChatCompletionMessage{
			{Role: oai.ChatMessageRoleUser, Content: prompt},
		},
		User: purpose,
	})
	if err != nil {
		return "", fmt.Errorf("openai completion: %w", err)
	}
	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("openai completion: no choices")
	}
	return resp.Choices[0].Message.Content, nil
}
