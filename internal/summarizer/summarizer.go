package summarizer

import (
	"context"
	"fmt"
	"strings"

	"google.golang.org/genai"
)

const summaryPrompt = "You are an AI assistant. Here is a transcript annotated with minute markers:\n\n" +
	"%s" +
	"\n\nGenerate concise bullet-point summaries for each section, " +
	"prefixing each bullet with its timestamp (e.g. “- [00:00] …”)."

// BuildPrompt embeds the transcript verbatim in the summary instruction.
func BuildPrompt(transcript string) string {
	return fmt.Sprintf(summaryPrompt, transcript)
}

// Summarize sends one request to Gemini and returns its text unmodified.
func (s *implSummarizer) Summarize(ctx context.Context, transcript string) (string, error) {
	s.logger.Info(ctx, "Summarizing transcript (%d chars) with %s", len(transcript), s.model)

	result, err := s.generator.GenerateContent(ctx, s.model, genai.Text(BuildPrompt(transcript)), nil)
	if err != nil {
		return "", fmt.Errorf("summarization failed: %w", err)
	}

	text := responseText(result)
	if text == "" {
		return "", fmt.Errorf("summarization failed: empty response from Gemini")
	}

	return text, nil
}

func responseText(result *genai.GenerateContentResponse) string {
	if result == nil || len(result.Candidates) == 0 || result.Candidates[0].Content == nil {
		return ""
	}

	var b strings.Builder
	for _, part := range result.Candidates[0].Content.Parts {
		if part != nil && part.Text != "" {
			b.WriteString(part.Text)
		}
	}
	return b.String()
}
