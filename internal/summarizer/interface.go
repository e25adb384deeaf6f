package summarizer

import "context"

// Summarizer turns a minute-marked transcript into timestamped bullet points.
type Summarizer interface {
	Summarize(ctx context.Context, transcript string) (string, error)
}
