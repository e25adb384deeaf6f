package summarizer

import (
	"context"
	"fmt"

	"google.golang.org/genai"

	"github.com/nguyentantai21042004/edusummarize/internal/config"
	"github.com/nguyentantai21042004/edusummarize/internal/logger"
)

// contentGenerator is the part of *genai.Models the summarizer calls.
type contentGenerator interface {
	GenerateContent(ctx context.Context, model string, contents []*genai.Content, config *genai.GenerateContentConfig) (*genai.GenerateContentResponse, error)
}

type implSummarizer struct {
	generator contentGenerator
	model     string
	logger    logger.Logger
}

// New creates a Gemini-backed Summarizer. The client is built once and
// shared by every request.
func New(ctx context.Context, cfg *config.Config, log logger.Logger) (Summarizer, error) {
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  cfg.Gemini.APIKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("create gemini client: %w", err)
	}

	return newWithGenerator(client.Models, cfg.Gemini.Model, log), nil
}

func newWithGenerator(gen contentGenerator, model string, log logger.Logger) *implSummarizer {
	return &implSummarizer{
		generator: gen,
		model:     model,
		logger:    log,
	}
}
